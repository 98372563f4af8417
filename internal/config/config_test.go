// AngelaMos | 2026
// config_test.go

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{Environment: "development"},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{URL: "postgres://localhost/climate"},
		Redis:    RedisConfig{URL: "redis://localhost:6379"},
		Auth: AuthConfig{
			PrivateKeyPath: "keys/private.pem",
			PublicKeyPath:  "keys/public.pem",
			ResetSecret:    "test-reset-secret-0123456789abcdef",
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    "admin@email.com",
			AdminPassword: "super secret",
			AdminTOTPSeed: "JBSWY3DPEHPK3PXP",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing database url", func(c *Config) {
			c.Database.URL = ""
		}, true},
		{"missing redis url", func(c *Config) {
			c.Redis.URL = ""
		}, true},
		{"short reset secret", func(c *Config) {
			c.Auth.ResetSecret = "too short"
		}, true},
		{"missing admin email", func(c *Config) {
			c.Bootstrap.AdminEmail = ""
		}, true},
		{"missing admin password", func(c *Config) {
			c.Bootstrap.AdminPassword = ""
		}, true},
		{"missing admin totp seed", func(c *Config) {
			c.Bootstrap.AdminTOTPSeed = ""
		}, true},
		{"wildcard cors with credentials", func(c *Config) {
			c.CORS.AllowCredentials = true
			c.CORS.AllowedOrigins = []string{"*"}
		}, true},
		{"insecure otel in production", func(c *Config) {
			c.App.Environment = "production"
			c.Otel.Enabled = true
			c.Otel.Insecure = true
		}, true},
		{"zero read timeout", func(c *Config) {
			c.Server.ReadTimeout = 0
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 9090}
	assert.Equal(t, "127.0.0.1:9090", cfg.Address())
}
