package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
interval: 30s
recipients: [ops@example.com, oncall@example.com]
notify_recovery: false
heartbeat:
  file: /tmp/hb
  hours: 12
mail:
  server: smtp.example.com
  user: pi@example.com
servers:
  - name: Example
    url: https://example.com
    timeout: 5
    max_fails: 2
    assert_string: Example Domain
  - name: Intranet
    url: http://10.0.0.5:8080/health
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, []string{"ops@example.com", "oncall@example.com"}, cfg.Recipients)
	assert.True(t, cfg.NotifyOnStart)
	assert.False(t, cfg.NotifyRecovery)
	assert.Equal(t, HeartbeatConfig{File: "/tmp/hb", Hours: 12}, cfg.Heartbeat)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, DefaultSubject, cfg.Mail.Subject)
	assert.Equal(t, "mandatory", cfg.Mail.TLS)
	assert.True(t, cfg.API.Enabled)
	assert.Equal(t, "8000", cfg.API.Port)
	assert.True(t, cfg.Probe.FollowRedirects)
	assert.Equal(t, "GPIO11", cfg.Hardware.ButtonPin)

	require.Len(t, cfg.Servers, 2)
	assert.Equal(t, Server{
		Name:         "Example",
		URL:          "https://example.com",
		Timeout:      5 * time.Second,
		MaxFails:     2,
		AssertString: "Example Domain",
	}, cfg.Servers[0])
	assert.Equal(t, 10*time.Second, cfg.Servers[1].Timeout)
	assert.Equal(t, DefaultMaxFails, cfg.Servers[1].MaxFails)
	assert.Empty(t, cfg.Servers[1].AssertString)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
servers:
  - name: Example
    url: https://example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Interval)
	assert.Equal(t, DefaultHours, cfg.Heartbeat.Hours)
	assert.Equal(t, HEARTBEAT_PATH, cfg.Heartbeat.File)
	assert.Equal(t, DB_PATH, cfg.Database)
	assert.Empty(t, cfg.Recipients)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PIMON_MAIL_PASSWORD", "s3cret")
	t.Setenv("PIMON_INTERVAL", "2m")
	path := writeConfig(t, `
mail:
  password: placeholder
servers:
  - name: Example
    url: https://example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Mail.Password)
	assert.Equal(t, 2*time.Minute, cfg.Interval)
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name:    "no servers",
			content: "interval: 60s\n",
		},
		{
			name: "missing name",
			content: `
servers:
  - url: https://example.com
`,
		},
		{
			name: "duplicate names",
			content: `
servers:
  - {name: a, url: https://a.example.com}
  - {name: a, url: https://b.example.com}
`,
		},
		{
			name: "relative url",
			content: `
servers:
  - {name: a, url: /health}
`,
		},
		{
			name: "unsupported scheme",
			content: `
servers:
  - {name: a, url: "ftp://example.com"}
`,
		},
		{
			name: "negative max_fails",
			content: `
servers:
  - {name: a, url: https://a.example.com, max_fails: -1}
`,
		},
		{
			name: "zero timeout",
			content: `
servers:
  - {name: a, url: https://a.example.com, timeout: 0s}
`,
		},
		{
			name: "negative timeout",
			content: `
servers:
  - {name: a, url: https://a.example.com, timeout: -5s}
`,
		},
		{
			name: "sub-second interval",
			content: `
interval: 500ms
servers:
  - {name: a, url: https://a.example.com}
`,
		},
		{
			name: "negative heartbeat hours",
			content: `
heartbeat: {hours: -1}
servers:
  - {name: a, url: https://a.example.com}
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadSubSecondTimeouts(t *testing.T) {
	path := writeConfig(t, `
servers:
  - {name: a, url: https://a.example.com, timeout: 500ms}
  - {name: b, url: https://b.example.com, timeout: 1.5s}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Servers[0].Timeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Servers[1].Timeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestJSONToYAML(t *testing.T) {
	out, err := JSONToYAML([]byte(`{
		"interval": "45s",
		"recipients": ["ops@example.com"],
		"servers": [{"name": "Example", "url": "https://example.com", "max_fails": 2}]
	}`))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "45s", doc["interval"])

	cfg, err := Load(writeConfig(t, string(out)))
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Interval)
	assert.Equal(t, 2, cfg.Servers[0].MaxFails)
}

func TestJSONToYAMLRejectsInvalid(t *testing.T) {
	_, err := JSONToYAML([]byte(`{"servers": []}`))
	assert.Error(t, err)

	_, err = JSONToYAML([]byte(`not json`))
	assert.Error(t, err)
}
