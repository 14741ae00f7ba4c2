package configuration

import "time"

const (
	CONFIG_DIR     = "/etc/pi-monitor"
	CONFIG_PATH    = CONFIG_DIR + "/config.yml"
	STATE_DIR      = "/var/lib/pi-monitor"
	DB_PATH        = STATE_DIR + "/deliveries.db"
	HEARTBEAT_PATH = STATE_DIR + "/heartbeat"
	ENV_PREFIX     = "PIMON"
)

const (
	DefaultInterval = "60s"
	DefaultTimeout  = "10s"
	DefaultMaxFails = 3
	DefaultHours    = 24
	DefaultSubject  = "Pi Monitor"
)

// AppConfig holds values set from command line flags.
type AppConfig struct {
	ConfigFile string
	DBFile     string
	LogFile    string
	LogLevel   string
}

var Config AppConfig

type Server struct {
	Name         string
	URL          string
	Timeout      time.Duration
	MaxFails     int
	AssertString string
}

type HeartbeatConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Hours int    `mapstructure:"hours" yaml:"hours"`
}

type MailConfig struct {
	Server   string `mapstructure:"server" yaml:"server"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	From     string `mapstructure:"from" yaml:"from"`
	Subject  string `mapstructure:"subject" yaml:"subject"`
	TLS      string `mapstructure:"tls" yaml:"tls"`
}

type WebhookConfig struct {
	URL   string `mapstructure:"url" yaml:"url"`
	Token string `mapstructure:"token" yaml:"token"`
}

type HardwareConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	ButtonPin string `mapstructure:"button_pin" yaml:"button_pin"`
	LightPin  string `mapstructure:"light_pin" yaml:"light_pin"`
	BuzzerPin string `mapstructure:"buzzer_pin" yaml:"buzzer_pin"`
	BuzzHz    int    `mapstructure:"buzz_hz" yaml:"buzz_hz"`
}

type APIConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Bind    string `mapstructure:"bind" yaml:"bind"`
	Port    string `mapstructure:"port" yaml:"port"`
}

type ProbeConfig struct {
	FollowRedirects    bool `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// MonitorConfig is the validated content of the configuration file.
type MonitorConfig struct {
	Interval       time.Duration
	Recipients     []string
	NotifyOnStart  bool
	NotifyRecovery bool
	Heartbeat      HeartbeatConfig
	Mail           MailConfig
	Webhook        WebhookConfig
	Hardware       HardwareConfig
	API            APIConfig
	Probe          ProbeConfig
	Database       string
	Log            LogConfig
	Servers        []Server
}

// serverEntry and fileConfig mirror the YAML document before durations are
// parsed.
type serverEntry struct {
	Name         string `mapstructure:"name" yaml:"name"`
	URL          string `mapstructure:"url" yaml:"url"`
	Timeout      string `mapstructure:"timeout" yaml:"timeout"`
	MaxFails     int    `mapstructure:"max_fails" yaml:"max_fails"`
	AssertString string `mapstructure:"assert_string" yaml:"assert_string"`
}

type fileConfig struct {
	Interval       string          `mapstructure:"interval"`
	Recipients     []string        `mapstructure:"recipients"`
	NotifyOnStart  bool            `mapstructure:"notify_on_start"`
	NotifyRecovery bool            `mapstructure:"notify_recovery"`
	Heartbeat      HeartbeatConfig `mapstructure:"heartbeat"`
	Mail           MailConfig      `mapstructure:"mail"`
	Webhook        WebhookConfig   `mapstructure:"webhook"`
	Hardware       HardwareConfig  `mapstructure:"hardware"`
	API            APIConfig       `mapstructure:"api"`
	Probe          ProbeConfig     `mapstructure:"probe"`
	Database       string          `mapstructure:"database"`
	Log            LogConfig       `mapstructure:"log"`
	Servers        []serverEntry   `mapstructure:"servers"`
}
