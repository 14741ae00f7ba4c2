package configuration

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"pi-monitor/internal/helper"
	"pi-monitor/internal/indicator"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type ConfigReader struct {
	viper *viper.Viper
}

func NewConfigReader() *ConfigReader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigReader{viper: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("recipients", []string{})
	v.SetDefault("notify_on_start", true)
	v.SetDefault("notify_recovery", true)

	v.SetDefault("heartbeat.file", HEARTBEAT_PATH)
	v.SetDefault("heartbeat.hours", DefaultHours)

	v.SetDefault("mail.server", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.user", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.subject", DefaultSubject)
	v.SetDefault("mail.tls", "mandatory")

	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.token", "")

	v.SetDefault("hardware.enabled", false)
	v.SetDefault("hardware.button_pin", indicator.DefaultButtonPin)
	v.SetDefault("hardware.light_pin", indicator.DefaultLightPin)
	v.SetDefault("hardware.buzzer_pin", indicator.DefaultBuzzerPin)
	v.SetDefault("hardware.buzz_hz", indicator.DefaultBuzzHz)

	v.SetDefault("api.enabled", true)
	v.SetDefault("api.bind", "127.0.0.1")
	v.SetDefault("api.port", "8000")

	v.SetDefault("probe.follow_redirects", true)
	v.SetDefault("probe.insecure_skip_verify", false)

	v.SetDefault("database", DB_PATH)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

func (cr *ConfigReader) ReadConfig(filePath string) error {
	cr.viper.SetConfigFile(filePath)
	cr.viper.SetConfigType("yaml")

	if err := cr.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", filePath, err)
	}

	return nil
}

// ParseConfig decodes and validates what ReadConfig loaded.
func (cr *ConfigReader) ParseConfig() (*MonitorConfig, error) {
	var raw fileConfig
	if err := cr.viper.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	return raw.validate()
}

// Load reads, defaults and validates the configuration file at path.
func Load(path string) (*MonitorConfig, error) {
	reader := NewConfigReader()
	if err := reader.ReadConfig(path); err != nil {
		return nil, err
	}

	return reader.ParseConfig()
}

func (raw fileConfig) validate() (*MonitorConfig, error) {
	interval := helper.ParseDuration(raw.Interval, DefaultInterval)
	if interval.Seconds() < 1 {
		return nil, fmt.Errorf("interval must be at least 1s, got %s", interval)
	}

	if raw.Heartbeat.Hours < 0 {
		return nil, fmt.Errorf("heartbeat.hours must not be negative")
	}

	if len(raw.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured")
	}

	cfg := &MonitorConfig{
		Interval:       interval,
		Recipients:     raw.Recipients,
		NotifyOnStart:  raw.NotifyOnStart,
		NotifyRecovery: raw.NotifyRecovery,
		Heartbeat:      raw.Heartbeat,
		Mail:           raw.Mail,
		Webhook:        raw.Webhook,
		Hardware:       raw.Hardware,
		API:            raw.API,
		Probe:          raw.Probe,
		Database:       raw.Database,
		Log:            raw.Log,
	}
	if cfg.Mail.Subject == "" {
		cfg.Mail.Subject = DefaultSubject
	}

	seen := make(map[string]bool, len(raw.Servers))
	for i, entry := range raw.Servers {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("servers[%d]: name is required", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("servers[%d]: duplicate name %q", i, name)
		}
		seen[name] = true

		if err := validateURL(entry.URL); err != nil {
			return nil, fmt.Errorf("servers[%d] %s: %w", i, name, err)
		}

		maxFails := entry.MaxFails
		if maxFails == 0 {
			maxFails = DefaultMaxFails
		}
		if maxFails < 1 {
			return nil, fmt.Errorf("servers[%d] %s: max_fails must be at least 1", i, name)
		}

		timeout := helper.ParseDuration(entry.Timeout, DefaultTimeout)
		if timeout <= 0 {
			return nil, fmt.Errorf("servers[%d] %s: timeout must be positive, got %q", i, name, entry.Timeout)
		}

		cfg.Servers = append(cfg.Servers, Server{
			Name:         name,
			URL:          entry.URL,
			Timeout:      timeout,
			MaxFails:     maxFails,
			AssertString: entry.AssertString,
		})
	}

	if len(cfg.Recipients) == 0 {
		log.Warn().Msg("no recipients configured, alerts will only be logged")
	}

	return cfg, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}

	return nil
}

// JSONToYAML converts a JSON configuration document into the YAML file
// format, rejecting documents that would not load.
func JSONToYAML(jsonConfig []byte) ([]byte, error) {
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(jsonConfig)); err != nil {
		return nil, fmt.Errorf("error while reading JSON: %w", err)
	}

	check := NewConfigReader()
	if err := check.viper.MergeConfigMap(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("error while merging JSON: %w", err)
	}
	if _, err := check.ParseConfig(); err != nil {
		return nil, err
	}

	yamlData, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("error marshalling to YAML: %w", err)
	}

	return yamlData, nil
}
