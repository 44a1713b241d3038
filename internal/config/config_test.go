package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("OTP_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 6, cfg.OTP.Length)
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	assert.Equal(t, "car-images", cfg.Storage.Bucket)
	assert.Equal(t, "seyyar://reset-password", cfg.SMTP.ResetURL)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:    StoreConfig{Driver: StoreDriverPostgres},
			Database: DatabaseConfig{Host: "localhost", DBName: "seyyar"},
			JWT:      JWTConfig{Secret: "secret"},
			OTP:      OTPConfig{Length: 6, MaxAttempts: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid postgres", func(c *Config) {}, false},
		{"memory needs no database", func(c *Config) { c.Store.Driver = StoreDriverMemory; c.Database = DatabaseConfig{} }, false},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"missing database", func(c *Config) { c.Database.Host = "" }, true},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"otp too short", func(c *Config) { c.OTP.Length = 2 }, true},
		{"no otp attempts", func(c *Config) { c.OTP.MaxAttempts = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
