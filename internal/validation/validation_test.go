package validation

import (
	"testing"

	"crm-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(issues []FieldIssue) []string {
	names := make([]string, 0, len(issues))
	for _, issue := range issues {
		names = append(names, issue.Field)
	}
	return names
}

func TestCreateLeadRequestRequiresName(t *testing.T) {
	req := CreateLeadRequest{Email: "jane@example.com"}
	req.ApplyDefaults()

	issues := Validate(&req)
	require.Len(t, issues, 1)
	assert.Equal(t, "name", issues[0].Field)
}

func TestCreateLeadRequestDefaults(t *testing.T) {
	req := CreateLeadRequest{Name: "Jane"}
	req.ApplyDefaults()

	assert.Equal(t, model.PriorityMedium, req.Priority)
	assert.NotNil(t, req.CustomFieldValues)
	assert.Empty(t, Validate(&req))
}

func TestCreateLeadRequestRejectsBadValues(t *testing.T) {
	negative := -50.0
	req := CreateLeadRequest{
		Name:     "Jane",
		Email:    "not-an-email",
		Priority: "EXTREME",
		JobValue: &negative,
	}

	issues := Validate(&req)
	assert.ElementsMatch(t, []string{"email", "priority", "jobValue"}, fieldNames(issues))
}

func TestUpdateLeadRequestPartial(t *testing.T) {
	// An empty partial update is valid; nothing is required
	assert.Empty(t, Validate(&UpdateLeadRequest{}))

	empty := ""
	issues := Validate(&UpdateLeadRequest{Name: &empty})
	require.Len(t, issues, 1)
	assert.Equal(t, "name", issues[0].Field)
}

func TestUpdateLeadStatusRequest(t *testing.T) {
	issues := Validate(&UpdateLeadStatusRequest{})
	require.Len(t, issues, 1)
	assert.Equal(t, "statusId", issues[0].Field)

	assert.Empty(t, Validate(&UpdateLeadStatusRequest{StatusID: "abc"}))
}

func TestPublicLeadRequestDefaults(t *testing.T) {
	req := PublicLeadRequest{Name: "Walk In"}
	req.ApplyDefaults()

	assert.Equal(t, "website", req.Source)
	assert.NotNil(t, req.CustomFieldValues)
	assert.Empty(t, Validate(&req))
}

func TestPublicLeadRequestKeepsExplicitSource(t *testing.T) {
	req := PublicLeadRequest{Name: "Walk In", Source: "landing-page"}
	req.ApplyDefaults()
	assert.Equal(t, "landing-page", req.Source)
}

func TestCreateAppointmentRequest(t *testing.T) {
	issues := Validate(&CreateAppointmentRequest{})
	assert.ElementsMatch(t, []string{"type", "title", "startsAt"}, fieldNames(issues))

	issues = Validate(&CreateAppointmentRequest{
		Type:     "LUNCH",
		Title:    "Catch up",
		StartsAt: "2026-09-01T10:00:00Z",
	})
	require.Len(t, issues, 1)
	assert.Equal(t, "type", issues[0].Field)

	assert.Empty(t, Validate(&CreateAppointmentRequest{
		Type:     "SITE_VISIT",
		Title:    "Roof inspection",
		StartsAt: "2026-09-01T10:00:00Z",
	}))
}

func TestSendMessageRequest(t *testing.T) {
	issues := Validate(&SendMessageRequest{Channel: "FAX", To: "+447700900123"})
	require.Len(t, issues, 1)
	assert.Equal(t, "channel", issues[0].Field)

	assert.Empty(t, Validate(&SendMessageRequest{
		Channel: "EMAIL",
		To:      "jane@example.com",
		Body:    "Hello",
	}))
}
