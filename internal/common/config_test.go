package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Backend.RESTAPI = "https://api.teleton.cl/"
	cfg.Backend.MailsAPIURL = "https://mails.teleton.cl"
	return cfg
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.True(t, cfg.Monitor.Enabled)
	assert.Equal(t, "kb", cfg.Monitor.Job)
	assert.Equal(t, 5*time.Second, cfg.MonitorInterval())
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout())
	assert.Equal(t, 2*time.Minute, cfg.ReplyTimeout())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromFiles_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	local := filepath.Join(dir, "local.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
[backend]
rest_api = "https://api.teleton.cl"
mails_api_url = "https://mails.teleton.cl"

[monitor]
interval = "2s"
failure_threshold = 3
`), 0644))
	require.NoError(t, os.WriteFile(local, []byte(`
[monitor]
interval = "500ms"

[websocket]
throttle_intervals = { kb_status_changed = "1s" }
`), 0644))

	cfg, err := LoadFromFiles(base, local)
	require.NoError(t, err)

	assert.Equal(t, "https://api.teleton.cl", cfg.Backend.RESTAPI)
	assert.Equal(t, 500*time.Millisecond, cfg.MonitorInterval())
	assert.Equal(t, 3, cfg.Monitor.FailureThreshold)
	assert.Equal(t, "1s", cfg.WebSocket.ThrottleIntervals["kb_status_changed"])
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFiles_Errors(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	broken := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[monitor\ninterval ="), 0644))
	_, err = LoadFromFiles(broken)
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("VITE_REST_API", "https://vite.teleton.cl")
	t.Setenv("TELETON_MAILS_API_URL", "https://mails.teleton.cl")
	t.Setenv("TELETON_MONITOR_ENABLED", "false")
	t.Setenv("TELETON_MONITOR_FAILURE_THRESHOLD", "9")
	t.Setenv("TELETON_LOG_OUTPUT", "stdout, ,file")
	t.Setenv("TELETON_SCHEDULER_QUERIES_REFRESH", "")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "https://vite.teleton.cl", cfg.Backend.RESTAPI)
	assert.Equal(t, "https://mails.teleton.cl", cfg.Backend.MailsAPIURL)
	assert.False(t, cfg.Monitor.Enabled)
	assert.Equal(t, 9, cfg.Monitor.FailureThreshold)
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)
	assert.Empty(t, cfg.Scheduler.QueriesRefresh)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, 9000, "0.0.0.0")
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing rest api", func(c *Config) { c.Backend.RESTAPI = "" }, true},
		{"mails api not a url", func(c *Config) { c.Backend.MailsAPIURL = "mails" }, true},
		{"bad interval", func(c *Config) { c.Monitor.Interval = "soon" }, true},
		{"zero interval", func(c *Config) { c.Monitor.Interval = "0s" }, true},
		{"bad interval ignored when disabled", func(c *Config) {
			c.Monitor.Enabled = false
			c.Monitor.Interval = "soon"
		}, false},
		{"negative threshold", func(c *Config) { c.Monitor.FailureThreshold = -1 }, true},
		{"bad cron", func(c *Config) { c.Scheduler.QueriesRefresh = "every minute" }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
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

func TestConfig_StatusEndpoint(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "https://api.teleton.cl/kb-status", cfg.StatusEndpoint())

	cfg.Monitor.Job = "ingest"
	assert.Equal(t, "https://api.teleton.cl/ingest-status", cfg.StatusEndpoint())
}

func TestConfig_DurationFallbacks(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Backend.Timeout = "-1s"
	cfg.Chat.ReplyPollInterval = "nope"

	assert.Equal(t, 10*time.Second, cfg.BackendTimeout())
	assert.Equal(t, 5*time.Second, cfg.ReplyPollInterval())

	cfg.Environment = " Prod "
	assert.True(t, cfg.IsProduction())
}
