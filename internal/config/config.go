package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeout     = "10s"
	DefaultMethod      = "GET"
	DefaultConcurrency = 1
	DefaultStoreDriver = "bolt"
)

var (
	ErrCheckNotFound  = errors.New("check not found")
	ErrDuplicateCheck = errors.New("check already exists")
)

// configPathOverride is set from the --config flag.
var configPathOverride string

// Config represents the lookout configuration
type Config struct {
	StatuspageURL string        `yaml:"statuspage_url,omitempty"`
	Concurrency   int           `yaml:"concurrency,omitempty"`
	Store         StoreConfig   `yaml:"store"`
	Notifications Notifications `yaml:"notifications"`
	Logging       LoggingConfig `yaml:"logging"`
	Checks        []CheckConfig `yaml:"checks"`
}

// StoreConfig selects and configures the durable key-value backend
type StoreConfig struct {
	Driver   string         `yaml:"driver"` // "bolt", "redis", "postgres" or "memory"
	Bolt     BoltConfig     `yaml:"bolt,omitempty"`
	Redis    RedisConfig    `yaml:"redis,omitempty"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
}

// Persistent reports whether values outlive the process. Only the memory
// driver forgets everything on exit.
func (s StoreConfig) Persistent() bool {
	return s.Driver != "memory"
}

type BoltConfig struct {
	// Path defaults to lookout.db next to the config file.
	Path string `yaml:"path,omitempty"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type PostgresConfig struct {
	DSN   string `yaml:"dsn,omitempty"`
	Table string `yaml:"table,omitempty"`
}

// Notifications toggles the notification channels. Credentials come from the Env.
type Notifications struct {
	Telegram   ChannelToggle    `yaml:"telegram"`
	Statuspage StatuspageToggle `yaml:"statuspage"`
	Desktop    ChannelToggle    `yaml:"desktop"`
}

type ChannelToggle struct {
	Enabled bool `yaml:"enabled"`
}

type StatuspageToggle struct {
	Enabled bool `yaml:"enabled"`
	// MinInterval is the spacing between Statuspage API calls, e.g. "1.1s".
	MinInterval string `yaml:"min_interval,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // "text", "json" or "auto"
}

// SetConfigPath overrides the default config location
func SetConfigPath(path string) {
	configPathOverride = path
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	if configPathOverride != "" {
		return configPathOverride, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "lookout", "config.yml"), nil
}

// GetSecretsPath returns the default dotenv secrets file that sits next to the config
func GetSecretsPath() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(configPath), "secrets.env"), nil
}

// GetStorePath returns the default bolt database file that sits next to the config
func GetStorePath() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(configPath), "lookout.db"), nil
}

// InitConfig creates the config directory and file with default content
func InitConfig(force bool) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(getDefaultConfig()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadConfig reads, parses and validates the config file
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML document and applies defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes the config back to the file
func SaveConfig(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Concurrency < 1 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DefaultStoreDriver
	}
	if c.Store.Postgres.Table == "" {
		c.Store.Postgres.Table = "lookout_kv"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "auto"
	}
}

// Validate checks the config for problems that would break a run
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "bolt", "memory":
	case "redis":
		if c.Store.Redis.Addr == "" {
			return errors.New("store.redis.addr is required for the redis driver")
		}
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return errors.New("store.postgres.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if interval := c.Notifications.Statuspage.MinInterval; interval != "" {
		if _, err := time.ParseDuration(interval); err != nil {
			return fmt.Errorf("invalid notifications.statuspage.min_interval: %w", err)
		}
	}

	seen := make(map[string]bool, len(c.Checks))
	for i, check := range c.Checks {
		if err := check.Validate(); err != nil {
			return fmt.Errorf("checks[%d]: %w", i, err)
		}
		if seen[check.Name] {
			return fmt.Errorf("checks[%d]: %w: %s", i, ErrDuplicateCheck, check.Name)
		}
		seen[check.Name] = true
	}

	return nil
}

// AddCheck adds a new check to the config
func (c *Config) AddCheck(check CheckConfig) error {
	if err := check.Validate(); err != nil {
		return err
	}

	for _, existing := range c.Checks {
		if existing.Name == check.Name {
			return fmt.Errorf("%w: '%s'", ErrDuplicateCheck, check.Name)
		}
	}

	c.Checks = append(c.Checks, check)
	return nil
}

// RemoveCheck removes a check by name from the config
func (c *Config) RemoveCheck(name string) error {
	for i, check := range c.Checks {
		if check.Name == name {
			c.Checks = append(c.Checks[:i], c.Checks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: '%s'", ErrCheckNotFound, name)
}

// FindCheck returns the check with the given name
func (c *Config) FindCheck(name string) (*CheckConfig, error) {
	for i := range c.Checks {
		if c.Checks[i].Name == name {
			return &c.Checks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: '%s'", ErrCheckNotFound, name)
}

// getDefaultConfig returns the default configuration as YAML
func getDefaultConfig() string {
	return fmt.Sprintf(`# Lookout Configuration
# Every "lookout run" is one stateless activation. Schedule it with cron,
# a systemd timer or "lookout watch".

# Optional public status page, linked from chat messages
# statuspage_url: https://example.statuspage.io

# How many checks are probed at the same time
concurrency: %d

# Where state survives between runs. "bolt" is a local file
# (lookout.db next to this config); "memory" only suits --dry-run.
store:
  driver: %s
  # bolt:
  #   path: /var/lib/lookout/lookout.db
  # driver: redis
  # redis:
  #   addr: localhost:6379
  #   prefix: "lookout:"

notifications:
  # Needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID
  telegram:
    enabled: false
  # Needs STATUSPAGE_IO_API_KEY and STATUSPAGE_IO_PAGE_ID
  statuspage:
    enabled: false
  desktop:
    enabled: false

logging:
  level: info
  format: auto

# Secrets such as ${CF_ACCESS_CLIENT_ID} are read from the environment
# or from secrets.env next to this file.
checks:
  - name: example-api
    target: https://api.example.com
    method: %s
    expected_codes: [200]
    timeout: %s
    retry_count: 1
`, DefaultConcurrency, DefaultStoreDriver, DefaultMethod, DefaultTimeout)
}
