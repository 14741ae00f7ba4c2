package helper

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	durationPattern = regexp.MustCompile(`(\d+)([smhdM])`)
	durationFormat  = regexp.MustCompile(`^(\d+[smhdM])+$`)
)

// ParseDuration parses Go durations ("500ms", "1.5s", "1h30m") and the day
// and month units "2d" and "1M". A bare number is read as seconds. Invalid
// input falls back to defaultValue.
func ParseDuration(input string, defaultValue string) time.Duration {
	input = strings.TrimSpace(input)
	if seconds, err := strconv.Atoi(input); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if d, err := time.ParseDuration(input); err == nil {
		return d
	}

	var matches [][]string
	if durationFormat.MatchString(input) {
		matches = durationPattern.FindAllStringSubmatch(input, -1)
	}
	if len(matches) == 0 {
		if input != "" {
			log.Warn().Msgf("invalid duration string: %s", input)
		}
		return ParseDuration(defaultValue, "1s")
	}

	var total time.Duration
	for _, match := range matches {
		value, _ := strconv.Atoi(match[1])

		switch match[2] {
		case "s":
			total += time.Duration(value) * time.Second
		case "m":
			total += time.Duration(value) * time.Minute
		case "h":
			total += time.Duration(value) * time.Hour
		case "d":
			total += time.Duration(value) * 24 * time.Hour
		case "M":
			total += time.Duration(value) * 24 * time.Hour * 30
		}
	}

	return total
}

// OutboundIP returns the local address the host would use to reach the
// internet. No packets are sent: dialing UDP only selects a route.
func OutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("failed to resolve outbound address: %w", err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected local address type %T", conn.LocalAddr())
	}

	return addr.IP.String(), nil
}
