// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	EditStatusLocked     = "locked"
	EditStatusChangeable = "changeable"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type MediaConfig struct {
	Driver         string `yaml:"driver"` // disk or s3
	Dir            string `yaml:"dir"`
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	BaseURL        string `yaml:"base_url"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type PaymentsConfig struct {
	Currency      string        `yaml:"currency"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	PollAttempts  uint          `yaml:"poll_attempts"`
	StaleAfter    time.Duration `yaml:"stale_after"`
	VotesPerHour  int           `yaml:"votes_per_hour"`
	CallbackToken string        `yaml:"-"` // Loaded from environment
}

type EmailConfig struct {
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type WizardConfig struct {
	DraftTTL         time.Duration `yaml:"draft_ttl"`
	EditStatusPolicy string        `yaml:"edit_status_policy"`
}

type SchedulerConfig struct {
	DraftSweep   string `yaml:"draft_sweep"`
	PaymentSweep string `yaml:"payment_sweep"`
}

type Config struct {
	App struct {
		Name          string `yaml:"name"`
		Environment   string `yaml:"environment"`
		Port          int    `yaml:"port"`
		BaseURL       string `yaml:"base_url"`
		DefaultRegion string `yaml:"default_phone_region"`
		TrustProxy    bool   `yaml:"trust_proxy"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Media     MediaConfig     `yaml:"media"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Email     EmailConfig     `yaml:"email"`
	Wizard    WizardConfig    `yaml:"wizard"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// Load reads the .env file next to configPath (if any) and the YAML config,
// fills defaults and validates the result.
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	cfg.Payments.CallbackToken = os.Getenv("PAYMENTS_CALLBACK_TOKEN")
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML config bytes and applies defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.DefaultRegion == "" {
		c.App.DefaultRegion = "US"
	}
	if c.Media.Driver == "" {
		c.Media.Driver = "disk"
	}
	if c.Media.Driver == "disk" && c.Media.Dir == "" {
		c.Media.Dir = "data/media"
	}
	if c.Media.BaseURL == "" {
		c.Media.BaseURL = "/media"
	}
	if c.Media.MaxUploadBytes == 0 {
		c.Media.MaxUploadBytes = 10 << 20
	}
	if c.Payments.Currency == "" {
		c.Payments.Currency = "NPR"
	}
	if c.Payments.PollInterval == 0 {
		c.Payments.PollInterval = 3 * time.Second
	}
	if c.Payments.PollAttempts == 0 {
		c.Payments.PollAttempts = 40
	}
	if c.Payments.StaleAfter == 0 {
		c.Payments.StaleAfter = 30 * time.Minute
	}
	if c.Payments.VotesPerHour == 0 {
		c.Payments.VotesPerHour = 30
	}
	if c.Wizard.DraftTTL == 0 {
		c.Wizard.DraftTTL = 2 * time.Hour
	}
	if c.Wizard.EditStatusPolicy == "" {
		c.Wizard.EditStatusPolicy = EditStatusLocked
	}
	if c.Scheduler.DraftSweep == "" {
		c.Scheduler.DraftSweep = "*/10 * * * *"
	}
	if c.Scheduler.PaymentSweep == "" {
		c.Scheduler.PaymentSweep = "*/5 * * * *"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Media.Driver {
	case "disk":
		if c.Media.Dir == "" {
			return fmt.Errorf("media dir is required for disk storage")
		}
	case "s3":
		if c.Media.Bucket == "" || c.Media.Region == "" {
			return fmt.Errorf("media bucket and region are required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported media driver: %s", c.Media.Driver)
	}
	if c.Media.MaxUploadBytes < 0 {
		return fmt.Errorf("media max_upload_bytes must be 0 or greater")
	}

	if c.Payments.PollInterval < 0 || c.Payments.StaleAfter < 0 {
		return fmt.Errorf("payment durations must not be negative")
	}
	if c.Payments.VotesPerHour < 0 {
		return fmt.Errorf("payments votes_per_hour must be 0 or greater")
	}

	switch c.Wizard.EditStatusPolicy {
	case EditStatusLocked, EditStatusChangeable:
	default:
		return fmt.Errorf("wizard edit_status_policy must be %q or %q", EditStatusLocked, EditStatusChangeable)
	}

	for name, expr := range map[string]string{
		"draft_sweep":   c.Scheduler.DraftSweep,
		"payment_sweep": c.Scheduler.PaymentSweep,
	} {
		if _, err := cron.ParseStandard(strings.TrimSpace(expr)); err != nil {
			return fmt.Errorf("scheduler %s: invalid cron expression %q: %w", name, expr, err)
		}
	}

	return nil
}

// EmailEnabled reports whether receipt emails can be sent.
func (c *Config) EmailEnabled() bool {
	return c.Email.Region != "" && c.Email.Sender != ""
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
