package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
service_name = "portal"
environment = "staging"

[http]
port = 8181

[database]
dsn = "portal:secret@tcp(127.0.0.1:3306)/portal?parseTime=true"

[mail]
driver = "smtp"
host = "smtp.example.org"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesFileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 8181, cfg.HTTP.Port)
	assert.Equal(t, "smtp", cfg.Mail.Driver)
	assert.Equal(t, "smtp.example.org", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "portal_session", cfg.Session.CookieName)
	assert.Equal(t, 480, cfg.Session.TTLMinutes)
	assert.False(t, cfg.Workflow.StrictTransitions)
	assert.False(t, cfg.IsDev())
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("APP_HTTP_PORT", "9999")
	t.Setenv("APP_WORKFLOW_STRICT_TRANSITIONS", "true")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.HTTP.Port)
	assert.True(t, cfg.Workflow.StrictTransitions)
}

func TestLoadRequiresFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			ServiceName: "portal",
			HTTP:        HTTPConfig{Port: 8080},
			Database:    DatabaseConfig{Driver: "mysql", DSN: "dsn"},
			Session:     SessionConfig{TTLMinutes: 60},
			Mail:        MailConfig{Driver: "log"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing service", func(c *Config) { c.ServiceName = "" }, true},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, true},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, true},
		{"zero ttl", func(c *Config) { c.Session.TTLMinutes = 0 }, true},
		{"unknown mail driver", func(c *Config) { c.Mail.Driver = "pigeon" }, true},
		{"kafka mail without kafka", func(c *Config) { c.Mail.Driver = "kafka" }, true},
		{"kafka mail with kafka", func(c *Config) { c.Mail.Driver = "kafka"; c.Kafka.Enabled = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "dev", c.Environment)
			}
		})
	}
}
