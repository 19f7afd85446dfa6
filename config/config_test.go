package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: "$2a$10$hash",
		JWTSecret:         "0123456789abcdef0123456789abcdef",
		StorePolicy:       "fail-open",
		SubmitCooldown:    time.Minute,
		LockoutAttempts:   3,
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SUBMIT_COOLDOWN", "90s")
	t.Setenv("LOCKOUT_ATTEMPTS", "not-a-number")
	t.Setenv("STORE_POLICY", "FAIL-CLOSED")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.SubmitCooldown)
	assert.Equal(t, 3, cfg.LockoutAttempts)
	assert.Equal(t, "fail-closed", cfg.StorePolicy)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing admin", mutate: func(c *Config) { c.AdminEmail = "" }, wantErr: "ADMIN_EMAIL"},
		{name: "short secret", mutate: func(c *Config) { c.JWTSecret = "short" }, wantErr: "JWT_SECRET"},
		{name: "bad policy", mutate: func(c *Config) { c.StorePolicy = "maybe" }, wantErr: "STORE_POLICY"},
		{name: "half slack", mutate: func(c *Config) { c.SlackToken = "xoxb" }, wantErr: "SLACK_BOT_TOKEN"},
		{name: "no attempts", mutate: func(c *Config) { c.LockoutAttempts = 0 }, wantErr: "LOCKOUT_ATTEMPTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEventPreset(t *testing.T) {
	ev, err := ParseEvent([]byte(ExampleEvent()))
	require.NoError(t, err)
	assert.Equal(t, "Exact Live Delft", ev.Name)
	assert.Equal(t, 10, ev.Countdown)
	assert.Equal(t, []string{"main"}, ev.SessionIDs)

	cfg := validConfig()
	cfg.LockoutDuration = time.Second
	ev.Lockout.Attempts = 5
	ev.Apply(cfg)
	assert.Equal(t, 5, cfg.LockoutAttempts)
	assert.Equal(t, 30*time.Second, cfg.LockoutDuration)
	assert.Equal(t, 60*time.Second, cfg.SubmitCooldown)

	_, err = ParseEvent([]byte("lockout:\n  duration: soon\n"))
	assert.Error(t, err)

	var none *Event
	none.Apply(cfg)
}

func TestLoadEvent(t *testing.T) {
	ev, err := LoadEvent("")
	require.NoError(t, err)
	assert.Nil(t, ev)

	ev, err = LoadEvent(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Nil(t, ev)

	path := filepath.Join(t.TempDir(), "event.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_context: Groene daken\n"), 0o600))
	ev, err = LoadEvent(path)
	require.NoError(t, err)
	assert.Equal(t, "Groene daken", ev.DefaultContext)
}
