package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("crm-service")
	require.NoError(t, err)

	assert.Equal(t, "crm-service", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "system@crm.local", cfg.Public.SystemUserEmail)
	assert.Nil(t, cfg.Public.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_NAME", "crm_test")
	t.Setenv("ALLOWED_EMBED_ORIGINS", "https://acme.example, https://widgets.example")

	cfg, err := Load("crm-service")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "crm_test", cfg.DB.DBName)
	assert.Equal(t, []string{"https://acme.example", "https://widgets.example"}, cfg.Public.AllowedOrigins)
}

func TestGetDSN(t *testing.T) {
	db := DBConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		DBName:   "crm",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=crm sslmode=disable",
		db.GetDSN())
}
