package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.CORSOrigins)
	assert.Equal(t, "50051", cfg.GRPC.Port)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://admin.vgroup.co.th, https://vgroup.la ,")
	t.Setenv("REDIS_DB", "3")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://admin.vgroup.co.th", "https://vgroup.la"}, cfg.App.CORSOrigins)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestPostgresDSN(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: "5432", User: "vg", Password: "secret", Name: "vgroup", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=vg password=secret dbname=vgroup sslmode=disable", cfg.PostgresDSN())

	cfg.DSN = "postgres://vg@db/vgroup"
	assert.Equal(t, "postgres://vg@db/vgroup", cfg.PostgresDSN())
}
