package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultPath           = "/etc/condor/config.yaml"
	DefaultHTTPAddr       = "0.0.0.0:8080"
	DefaultDashboardDir   = "/var/lib/condor/dashboards"
	DefaultLogLevel       = "info"
	DefaultMQTTPort       = 1883
	DefaultTopicPrefix    = "condor"
	DefaultUpdateInterval = 60
	DefaultSettleMillis   = 100
)

// CoreConfig configures the hub itself.
type CoreConfig struct {
	HTTPAddr     string `mapstructure:"http_addr"`
	DashboardDir string `mapstructure:"dashboard_dir"`
	LogLevel     string `mapstructure:"log_level"`
}

// MQTTConfig configures the optional MQTT bridge. The bridge is disabled
// when the section is absent or Host is empty.
type MQTTConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	TLS         bool   `mapstructure:"tls"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

// Enabled reports whether a broker is configured.
func (m *MQTTConfig) Enabled() bool {
	return m != nil && m.Host != ""
}

// AirfryerConfig configures the airfryer plugin. A nil section disables
// the plugin entirely.
type AirfryerConfig struct {
	Address               string `mapstructure:"address"`
	ClientID              string `mapstructure:"client_id"`
	ClientSecret          string `mapstructure:"client_secret"`
	Model                 string `mapstructure:"model"`
	CommandPath           string `mapstructure:"command_path"`
	UpdateIntervalSeconds int    `mapstructure:"update_interval_seconds"`
	SettleMillis          int    `mapstructure:"settle_ms"`
	ReplaceTimestamp      bool   `mapstructure:"replace_timestamp"`
}

// Config is the root of the condor configuration file.
type Config struct {
	Core     CoreConfig      `mapstructure:"core"`
	MQTT     *MQTTConfig     `mapstructure:"mqtt"`
	Airfryer *AirfryerConfig `mapstructure:"airfryer"`
}

// Load parses the YAML config file, applies defaults, and validates.
// Values may be overridden via CONDOR_* environment variables, e.g.
// CONDOR_AIRFRYER_CLIENT_SECRET.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("CONDOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Core.HTTPAddr == "" {
		cfg.Core.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.Core.DashboardDir == "" {
		cfg.Core.DashboardDir = DefaultDashboardDir
	}
	if cfg.Core.LogLevel == "" {
		cfg.Core.LogLevel = DefaultLogLevel
	}

	if cfg.MQTT != nil {
		if cfg.MQTT.Port == 0 {
			cfg.MQTT.Port = DefaultMQTTPort
		}
		if cfg.MQTT.TopicPrefix == "" {
			cfg.MQTT.TopicPrefix = DefaultTopicPrefix
		}
	}

	if cfg.Airfryer != nil {
		if cfg.Airfryer.UpdateIntervalSeconds == 0 {
			cfg.Airfryer.UpdateIntervalSeconds = DefaultUpdateInterval
		}
		if cfg.Airfryer.SettleMillis == 0 {
			cfg.Airfryer.SettleMillis = DefaultSettleMillis
		}
	}
}

// Validate enforces required invariants beyond YAML typing.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	if cfg.Airfryer != nil {
		if cfg.Airfryer.Address == "" {
			return fmt.Errorf("airfryer.address is required")
		}
		if cfg.Airfryer.ClientID == "" || cfg.Airfryer.ClientSecret == "" {
			return fmt.Errorf("airfryer.client_id and airfryer.client_secret are required")
		}
		if cfg.Airfryer.UpdateIntervalSeconds < 0 {
			return fmt.Errorf("airfryer.update_interval_seconds must not be negative")
		}
	}

	return nil
}
