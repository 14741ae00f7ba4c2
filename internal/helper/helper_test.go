package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		defaultValue string
		expected     time.Duration
	}{
		{name: "days", input: "19d", defaultValue: "1d", expected: 19 * 24 * time.Hour},
		{name: "minutes", input: "19m", defaultValue: "1m", expected: 19 * time.Minute},
		{name: "months", input: "2M", defaultValue: "1s", expected: 60 * 24 * time.Hour},
		{name: "compound", input: "1h30m", defaultValue: "1s", expected: 90 * time.Minute},
		{name: "bare seconds", input: "60", defaultValue: "1s", expected: time.Minute},
		{name: "milliseconds", input: "500ms", defaultValue: "10s", expected: 500 * time.Millisecond},
		{name: "fractional seconds", input: "1.5s", defaultValue: "10s", expected: 1500 * time.Millisecond},
		{name: "zero is kept", input: "0s", defaultValue: "10s", expected: 0},
		{name: "days and hours", input: "1d12h", defaultValue: "1s", expected: 36 * time.Hour},
		{name: "trailing garbage falls back", input: "5m later", defaultValue: "19s", expected: 19 * time.Second},
		{name: "invalid falls back to default", input: "soon", defaultValue: "19s", expected: 19 * time.Second},
		{name: "empty falls back to default", input: "", defaultValue: "10s", expected: 10 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseDuration(tc.input, tc.defaultValue))
		})
	}
}
