package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"DATABASE_URL":        "postgres://localhost/arena",
		"JWT_SECRET":          "secret",
		"ADMIN_SERVICE_TOKEN": "admin",
	}))
	require.NoError(t, err)

	assert.Equal(t, 5200, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 168*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.Jobs.ReconcileInterval)
	assert.Equal(t, 10*time.Minute, cfg.Jobs.JoinAttemptTTL)
	assert.False(t, cfg.R2.Enabled())
}

func TestFromViperMemoryDriverNeedsNoURL(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"DB_DRIVER":           "MEMORY",
		"JWT_SECRET":          "secret",
		"ADMIN_SERVICE_TOKEN": "admin",
		"ALLOWED_ORIGINS":     " https://a.example , https://b.example,",
	}))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestFromViperRejectsMissingSecrets(t *testing.T) {
	_, err := fromViper(newViper(map[string]any{"DB_DRIVER": "memory", "ADMIN_SERVICE_TOKEN": "admin"}))
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, err = fromViper(newViper(map[string]any{"JWT_SECRET": "s", "ADMIN_SERVICE_TOKEN": "admin"}))
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = fromViper(newViper(map[string]any{"DB_DRIVER": "sqlite", "JWT_SECRET": "s", "ADMIN_SERVICE_TOKEN": "a"}))
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestR2Enabled(t *testing.T) {
	c := R2Config{AccountID: "acc", AccessKeyID: "id", AccessKeySecret: "secret", Bucket: "b"}
	assert.True(t, c.Enabled())
	c.Bucket = ""
	assert.False(t, c.Enabled())
}
