package config

import (
	"fmt"
	"os"
	"time"

	"github.com/a8m/envsubst"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Core struct {
		// AdminUser defines the default super administrator account that will be created on startup
		AdminUser     string `yaml:"admin_user"`
		AdminPassword string `yaml:"admin_password"`
		AdminEmail    string `yaml:"admin_email"`
	} `yaml:"core"`

	Advanced struct {
		LogLevel       string        `yaml:"log_level"`
		LogJson        bool          `yaml:"log_json"`
		StartupTimeout time.Duration `yaml:"startup_timeout"`
	} `yaml:"advanced"`

	Sessions struct {
		// Lifetime is the absolute validity window of newly created platform sessions.
		Lifetime time.Duration `yaml:"lifetime"`
		// IdleTimeout is the inactivity window after which a session is reported as idle.
		IdleTimeout time.Duration `yaml:"idle_timeout"`
	} `yaml:"sessions"`

	Notifications struct {
		// ForwardCritical forwards notifications with derived critical priority via email.
		ForwardCritical bool `yaml:"forward_critical"`
		// ForwardAddress is the recipient for forwarded critical notifications.
		ForwardAddress string `yaml:"forward_address"`
	} `yaml:"notifications"`

	Statistics struct {
		// ListeningAddress is the address and port for the prometheus exporter, empty disables it.
		ListeningAddress string        `yaml:"listening_address"`
		CollectInterval  time.Duration `yaml:"collect_interval"`
	} `yaml:"statistics"`

	Mail MailConfig `yaml:"mail"`

	Database DatabaseConfig `yaml:"database"`

	Web WebConfig `yaml:"web"`
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Core.AdminUser = "admin"
	cfg.Core.AdminPassword = "lglportal"
	cfg.Core.AdminEmail = "admin@lgl.local"

	cfg.Advanced.LogLevel = "info"
	cfg.Advanced.StartupTimeout = 30 * time.Second

	cfg.Sessions.Lifetime = 24 * time.Hour
	cfg.Sessions.IdleTimeout = 30 * time.Minute

	cfg.Statistics.CollectInterval = 1 * time.Minute

	cfg.Mail = MailConfig{
		Host:       "127.0.0.1",
		Port:       25,
		Encryption: MailEncryptionNone,
		From:       "LGL Portal <noreply@lgl.local>",
	}

	cfg.Database = DatabaseConfig{
		Type: "sqlite",
		DSN:  "data/lgl.db",
	}

	cfg.Web = WebConfig{
		ListeningAddress:  ":8888",
		SessionIdentifier: "lglPortalSession",
	}

	return cfg
}

// GetConfig returns the configuration, loaded from the yaml file that is
// specified by the LGL_PORTAL_CONFIG environment variable (config.yaml by
// default). Environment variable references in the file are substituted
// before decoding. A missing config file is not an error, defaults apply.
func GetConfig() (*Config, error) {
	cfg := defaultConfig()

	cfgFileName := "config.yaml"
	if envCfgFileName := os.Getenv("LGL_PORTAL_CONFIG"); envCfgFileName != "" {
		cfgFileName = envCfgFileName
	}

	if err := loadConfigFile(cfg, cfgFileName); err != nil {
		return nil, fmt.Errorf("failed to load config from yaml: %w", err)
	}

	cfg.Web.Sanitize()

	return cfg, nil
}

func loadConfigFile(cfg any, filename string) error {
	data, err := envsubst.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // ignore missing config file, defaults apply
		}
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", filename, err)
	}

	return nil
}
