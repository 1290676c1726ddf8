package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesTokens(t *testing.T) {
	vars := map[string]interface{}{
		"lead": map[string]interface{}{
			"name":  "Jane Smith",
			"phone": "07700900123",
		},
		"tenant": map[string]interface{}{
			"name": "Acme Roofing",
		},
	}

	out := Render("Hi {{lead.name}}, this is {{tenant.name}}.", vars)
	assert.Equal(t, "Hi Jane Smith, this is Acme Roofing.", out)
}

func TestRenderAllowsWhitespaceInsideTokens(t *testing.T) {
	vars := map[string]interface{}{
		"lead": map[string]interface{}{"name": "Bob"},
	}

	assert.Equal(t, "Bob", Render("{{ lead.name }}", vars))
	assert.Equal(t, "Bob", Render("{{lead.name }}", vars))
}

func TestRenderLeavesUnresolvedTokensVerbatim(t *testing.T) {
	vars := map[string]interface{}{
		"lead": map[string]interface{}{"name": "Bob"},
	}

	out := Render("Hi {{lead.name}}, ref {{lead.reference}}", vars)
	assert.Equal(t, "Hi Bob, ref {{lead.reference}}", out)
}

func TestRenderTreatsNilValueAsUnresolved(t *testing.T) {
	vars := map[string]interface{}{
		"lead": map[string]interface{}{"email": nil},
	}

	assert.Equal(t, "{{lead.email}}", Render("{{lead.email}}", vars))
}

func TestRenderStopsWhenPathHitsNonMap(t *testing.T) {
	vars := map[string]interface{}{
		"lead": map[string]interface{}{"name": "Bob"},
	}

	// "name" is a string, it has no "first" below it
	assert.Equal(t, "{{lead.name.first}}", Render("{{lead.name.first}}", vars))
}

func TestRenderFormatsNumbers(t *testing.T) {
	vars := map[string]interface{}{
		"lead": map[string]interface{}{
			"jobValue":       float64(2500),
			"estimatedValue": 1250.5,
		},
	}

	assert.Equal(t, "2500", Render("{{lead.jobValue}}", vars))
	assert.Equal(t, "1250.5", Render("{{lead.estimatedValue}}", vars))
}

func TestRenderWithNoTokens(t *testing.T) {
	assert.Equal(t, "plain text", Render("plain text", nil))
	assert.Equal(t, "", Render("", nil))
}
