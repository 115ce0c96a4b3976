package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Backend     BackendConfig   `toml:"backend"`
	Monitor     MonitorConfig   `toml:"monitor"`
	Chat        ChatConfig      `toml:"chat"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host"`
}

// BackendConfig points at the RAG backend REST API
type BackendConfig struct {
	RESTAPI     string `toml:"rest_api" validate:"required,url"`      // Base URL of the backend REST API (VITE_REST_API)
	MailsAPIURL string `toml:"mails_api_url" validate:"required,url"` // Mail API base URL (VITE_MAILS_API_URL)
	Timeout     string `toml:"timeout"`                               // HTTP timeout, e.g. "10s"
	RateLimit   int    `toml:"rate_limit" validate:"min=0"`           // Requests per second to the backend (0 = client default)
}

// MonitorConfig controls polling of the knowledge-base job status
type MonitorConfig struct {
	Enabled          bool   `toml:"enabled"`
	Job              string `toml:"job" validate:"required"`  // Job name; polled at <rest_api>/<job>-status
	Interval         string `toml:"interval"`                 // Poll interval, e.g. "5s"
	FailureThreshold int    `toml:"failure_threshold"`        // Consecutive failures before the status is reported stale (0 = never)
}

// ChatConfig controls how long chat replies are awaited
type ChatConfig struct {
	ReplyPollInterval string `toml:"reply_poll_interval"` // e.g. "5s"
	ReplyTimeout      string `toml:"reply_timeout"`       // e.g. "2m"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// WebSocketConfig contains configuration for dashboard status push
type WebSocketConfig struct {
	// Whitelist of event types to broadcast. Empty list allows all events.
	AllowedEvents []string `toml:"allowed_events"`
	// Throttle intervals per event type, e.g. {"kb_status_changed": "1s"}
	ThrottleIntervals map[string]string `toml:"throttle_intervals"`
}

// SchedulerConfig holds cron schedules for background refreshes
type SchedulerConfig struct {
	QueriesRefresh string `toml:"queries_refresh"` // Cron schedule for refreshing unanswered queries ("" disables)
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Backend: BackendConfig{
			Timeout: "10s",
		},
		Monitor: MonitorConfig{
			Enabled:          true,
			Job:              "kb",
			Interval:         "5s",
			FailureThreshold: 5,
		},
		Chat: ChatConfig{
			ReplyPollInterval: "5s",
			ReplyTimeout:      "2m",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/teleton",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		WebSocket: WebSocketConfig{
			ThrottleIntervals: map[string]string{},
		},
		Scheduler: SchedulerConfig{
			QueriesRefresh: "*/5 * * * *",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier ones. Flag overrides are applied separately by ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TELETON_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("TELETON_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TELETON_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Backend configuration (VITE_* names kept for compatibility with the SPA deployment env)
	if restAPI := os.Getenv("TELETON_REST_API"); restAPI != "" {
		config.Backend.RESTAPI = restAPI
	} else if restAPI := os.Getenv("VITE_REST_API"); restAPI != "" {
		config.Backend.RESTAPI = restAPI
	}
	if mailsAPI := os.Getenv("TELETON_MAILS_API_URL"); mailsAPI != "" {
		config.Backend.MailsAPIURL = mailsAPI
	} else if mailsAPI := os.Getenv("VITE_MAILS_API_URL"); mailsAPI != "" {
		config.Backend.MailsAPIURL = mailsAPI
	}
	if timeout := os.Getenv("TELETON_BACKEND_TIMEOUT"); timeout != "" {
		config.Backend.Timeout = timeout
	}
	if limit := os.Getenv("TELETON_BACKEND_RATE_LIMIT"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			config.Backend.RateLimit = l
		}
	}

	// Monitor configuration
	if enabled := os.Getenv("TELETON_MONITOR_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Monitor.Enabled = e
		}
	}
	if job := os.Getenv("TELETON_MONITOR_JOB"); job != "" {
		config.Monitor.Job = job
	}
	if interval := os.Getenv("TELETON_MONITOR_INTERVAL"); interval != "" {
		config.Monitor.Interval = interval
	}
	if threshold := os.Getenv("TELETON_MONITOR_FAILURE_THRESHOLD"); threshold != "" {
		if t, err := strconv.Atoi(threshold); err == nil {
			config.Monitor.FailureThreshold = t
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("TELETON_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("TELETON_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("TELETON_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Scheduler configuration
	if schedule, ok := os.LookupEnv("TELETON_SCHEDULER_QUERIES_REFRESH"); ok {
		config.Scheduler.QueriesRefresh = schedule
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the resolved configuration. Both backend URLs are required,
// matching the env schema the dashboard refused to start without.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Monitor.Enabled {
		interval, err := time.ParseDuration(c.Monitor.Interval)
		if err != nil {
			return fmt.Errorf("invalid monitor interval %q: %w", c.Monitor.Interval, err)
		}
		if interval <= 0 {
			return fmt.Errorf("monitor interval must be positive, got %s", interval)
		}
	}
	if c.Monitor.FailureThreshold < 0 {
		return fmt.Errorf("monitor failure_threshold must not be negative, got %d", c.Monitor.FailureThreshold)
	}

	if c.Scheduler.QueriesRefresh != "" {
		if err := ValidateSchedule(c.Scheduler.QueriesRefresh); err != nil {
			return fmt.Errorf("invalid scheduler.queries_refresh: %w", err)
		}
	}

	return nil
}

// ValidateSchedule validates a standard 5-field cron expression
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// StatusEndpoint returns the URL polled for the monitored job's status
func (c *Config) StatusEndpoint() string {
	return strings.TrimRight(c.Backend.RESTAPI, "/") + "/" + c.Monitor.Job + "-status"
}

// MonitorInterval returns the parsed poll interval (default 5s)
func (c *Config) MonitorInterval() time.Duration {
	return parseDurationOr(c.Monitor.Interval, 5*time.Second)
}

// BackendTimeout returns the parsed backend HTTP timeout (default 10s)
func (c *Config) BackendTimeout() time.Duration {
	return parseDurationOr(c.Backend.Timeout, 10*time.Second)
}

// ReplyPollInterval returns the chat reply poll interval (default 5s)
func (c *Config) ReplyPollInterval() time.Duration {
	return parseDurationOr(c.Chat.ReplyPollInterval, 5*time.Second)
}

// ReplyTimeout returns how long a chat reply is awaited (default 2m)
func (c *Config) ReplyTimeout() time.Duration {
	return parseDurationOr(c.Chat.ReplyTimeout, 2*time.Minute)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
