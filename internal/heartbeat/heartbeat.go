// Package heartbeat sends a periodic "still running" notification, gated by
// a timestamp persisted in a one-line text file.
package heartbeat

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pi-monitor/internal/incident"
	"pi-monitor/internal/notify"

	"github.com/rs/zerolog/log"
)

// TimeFormat is the on-disk timestamp layout, e.g. "Mar 04 2025 09:15PM".
const TimeFormat = "Jan 02 2006 03:04PM"

type Heartbeat struct {
	Path    string
	Hours   int
	Subject string
	Notify  notify.Broadcaster
}

// Check compares now with the persisted timestamp. On first run, or when the
// file cannot be read, it only records now. Once more than Hours full hours
// have elapsed it notifies every recipient and records now. It reports
// whether a notification was issued.
func (h *Heartbeat) Check(ctx context.Context, now time.Time) bool {
	last, err := h.read()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", h.Path).Msg("[heartbeat] unreadable, starting over")
		}
		h.write(now)
		return false
	}

	hours := int(math.Floor(now.Sub(last).Seconds() / 3600))
	log.Debug().Int("hours", hours).Int("threshold", h.Hours).Msg("[heartbeat] checked")

	if hours <= h.Hours {
		return false
	}

	h.Notify.Broadcast(ctx, notify.Message{
		Kind:    incident.Heartbeat,
		Subject: h.Subject + " Still Running",
		Body:    fmt.Sprintf("%s still running fine (last heartbeat %d hours ago)", h.Subject, hours),
	})
	h.write(now)

	return true
}

// Last returns the persisted timestamp, if any.
func (h *Heartbeat) Last() (time.Time, bool) {
	last, err := h.read()
	return last, err == nil
}

func (h *Heartbeat) read() (time.Time, error) {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		return time.Time{}, err
	}

	line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	last, err := time.ParseInLocation(TimeFormat, line, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid heartbeat timestamp %q: %w", line, err)
	}

	return last, nil
}

func (h *Heartbeat) write(now time.Time) {
	if dir := filepath.Dir(h.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("[heartbeat] failed to create directory")
			return
		}
	}

	if err := os.WriteFile(h.Path, []byte(now.In(time.Local).Format(TimeFormat)), 0644); err != nil {
		log.Error().Err(err).Str("file", h.Path).Msg("[heartbeat] failed to write")
	}
}
