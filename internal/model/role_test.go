package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleManager))
	assert.True(t, RoleAdmin.AtLeast(RoleAgent))
	assert.True(t, RoleManager.AtLeast(RoleAgent))
	assert.True(t, RoleAgent.AtLeast(RoleAgent))

	assert.False(t, RoleAgent.AtLeast(RoleManager))
	assert.False(t, RoleManager.AtLeast(RoleAdmin))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("MANAGER")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, role)

	_, err = ParseRole("manager")
	assert.Error(t, err)

	_, err = ParseRole("OWNER")
	assert.Error(t, err)
}

func TestRoleStringRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleAgent, RoleManager, RoleAdmin} {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}
}

func TestRoleJSON(t *testing.T) {
	data, err := json.Marshal(RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, `"ADMIN"`, string(data))

	var role Role
	require.NoError(t, json.Unmarshal([]byte(`"AGENT"`), &role))
	assert.Equal(t, RoleAgent, role)

	assert.Error(t, json.Unmarshal([]byte(`"SUPERUSER"`), &role))
}

func TestRoleScan(t *testing.T) {
	var role Role
	require.NoError(t, role.Scan("MANAGER"))
	assert.Equal(t, RoleManager, role)

	require.NoError(t, role.Scan([]byte("ADMIN")))
	assert.Equal(t, RoleAdmin, role)

	assert.Error(t, role.Scan(42))
}

func TestLeadValue(t *testing.T) {
	job := 1000.0
	estimated := 1500.0

	lead := Lead{}
	assert.Equal(t, 0.0, lead.Value())
	assert.False(t, lead.HasValue())

	lead.JobValue = &job
	assert.Equal(t, 1000.0, lead.Value())
	assert.True(t, lead.HasValue())

	// Estimated value wins when both are present
	lead.EstimatedValue = &estimated
	assert.Equal(t, 1500.0, lead.Value())
}
