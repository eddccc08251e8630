package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Remote struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"remote"`
	Pool struct {
		UsernamesFile string `yaml:"usernames_file"`
		RetiredFile   string `yaml:"retired_file"`
	} `yaml:"pool"`
	Accounts struct {
		TokensFile string `yaml:"tokens_file"`
		StateFile  string `yaml:"state_file"`
	} `yaml:"accounts"`
	Schedule struct {
		CycleIntervalSeconds int    `yaml:"cycle_interval_seconds"`
		WindowStart          string `yaml:"window_start"` // "15:04" local to each account
		WindowEnd            string `yaml:"window_end"`
		SummaryCron          string `yaml:"summary_cron"`
	} `yaml:"schedule"`
	Policy struct {
		GoldExpiringDays    int `yaml:"gold_expiring_days"`
		EngagementThreshold int `yaml:"engagement_threshold"`
		Workers             int `yaml:"workers"`
	} `yaml:"policy"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"` // fallback proxy for accounts without their own
}

// CycleInterval returns the configured cycle interval as a duration.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Schedule.CycleIntervalSeconds) * time.Second
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("REMOTE_BASE_URL"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("CYCLE_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Schedule.CycleIntervalSeconds = n
		}
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Policy.Workers = n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Pool.UsernamesFile == "" {
		cfg.Pool.UsernamesFile = "usernames.txt"
	}
	if cfg.Pool.RetiredFile == "" {
		cfg.Pool.RetiredFile = "usernames_done.txt"
	}
	if cfg.Accounts.TokensFile == "" {
		cfg.Accounts.TokensFile = "accounts.txt"
	}
	if cfg.Accounts.StateFile == "" {
		cfg.Accounts.StateFile = "data/roster_state.json"
	}
	if cfg.Schedule.CycleIntervalSeconds == 0 {
		cfg.Schedule.CycleIntervalSeconds = 900
	}
	if cfg.Schedule.WindowStart == "" {
		cfg.Schedule.WindowStart = "09:00"
	}
	if cfg.Schedule.WindowEnd == "" {
		cfg.Schedule.WindowEnd = "23:00"
	}
	if cfg.Schedule.SummaryCron == "" {
		cfg.Schedule.SummaryCron = "0 0 9 * * *"
	}
	if cfg.Policy.GoldExpiringDays == 0 {
		cfg.Policy.GoldExpiringDays = 7
	}
	if cfg.Policy.EngagementThreshold == 0 {
		cfg.Policy.EngagementThreshold = 5
	}
	if cfg.Policy.Workers == 0 {
		cfg.Policy.Workers = 4
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/swipe_sentinel.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well-formed.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url is required")
	}
	if c.Schedule.CycleIntervalSeconds <= 0 {
		return fmt.Errorf("schedule.cycle_interval_seconds must be positive")
	}
	if c.Policy.Workers <= 0 {
		return fmt.Errorf("policy.workers must be positive")
	}
	if _, err := time.Parse("15:04", c.Schedule.WindowStart); err != nil {
		return fmt.Errorf("schedule.window_start: %w", err)
	}
	if _, err := time.Parse("15:04", c.Schedule.WindowEnd); err != nil {
		return fmt.Errorf("schedule.window_end: %w", err)
	}
	return nil
}
