package monitor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"pi-monitor/internal/incident"
	"pi-monitor/internal/net/config"
)

// EndpointHealth tracks the health of one monitored URL across cycles.
//
// Only the probe goroutine of the running cycle and the owner loop write to
// it; the mutex exists so that snapshots taken by the status API never see a
// half-applied outcome.
type EndpointHealth struct {
	Name       string
	URL        string
	Timeout    time.Duration
	MaxFails   int
	AssertText string

	mu           sync.Mutex
	failCount    int
	status       incident.Status
	detail       string
	lastChecked  time.Time
	notifiedFail bool
	assertPass   bool
}

// EndpointSnapshot is a point-in-time copy of an endpoint's state.
type EndpointSnapshot struct {
	Name         string          `json:"name"`
	URL          string          `json:"url"`
	MaxFails     int             `json:"max_fails"`
	Status       incident.Status `json:"status"`
	Detail       string          `json:"detail,omitempty"`
	FailCount    int             `json:"fail_count"`
	LastChecked  time.Time       `json:"last_checked"`
	NotifiedFail bool            `json:"notified_fail"`
	AssertPass   bool            `json:"assert_pass"`
}

func NewEndpointHealth(name, url string, timeout time.Duration, maxFails int, assertText string) *EndpointHealth {
	return &EndpointHealth{
		Name:       name,
		URL:        url,
		Timeout:    timeout,
		MaxFails:   maxFails,
		AssertText: assertText,
		status:     incident.Unknown,
	}
}

// Apply folds one probe outcome into the endpoint's state.
func (e *EndpointHealth) Apply(outcome config.Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastChecked = outcome.CheckedAt

	switch {
	case outcome.Kind == config.TransportFailure:
		e.status = incident.TransportError
		e.detail = outcome.Description
		e.failCount++
	case outcome.StatusCode != 200:
		e.status = incident.HTTPError
		e.detail = fmt.Sprintf("unexpected status code: %d", outcome.StatusCode)
		e.failCount++
	case !strings.Contains(outcome.Body, e.AssertText):
		e.status = incident.AssertFailed
		e.detail = ""
		e.failCount++
		e.assertPass = false
	default:
		e.status = incident.OK
		e.detail = ""
		e.failCount = 0
		e.notifiedFail = false
		e.assertPass = true
	}
}

// Reset is the manual override: the endpoint is considered healthy again
// regardless of what the last probe said.
func (e *EndpointHealth) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status = incident.OK
	e.detail = ""
	e.failCount = 0
	e.notifiedFail = false
	e.assertPass = true
}

// shouldAlert reports whether the endpoint belongs in this cycle's alert.
func (e *EndpointHealth) shouldAlert() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.status != incident.OK && e.failCount >= e.MaxFails && !e.notifiedFail
}

func (e *EndpointHealth) markNotified() {
	e.mu.Lock()
	e.notifiedFail = true
	e.mu.Unlock()
}

func (e *EndpointHealth) isNotified() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.notifiedFail
}

func (e *EndpointHealth) isOK() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.status == incident.OK
}

func (e *EndpointHealth) Snapshot() EndpointSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return EndpointSnapshot{
		Name:         e.Name,
		URL:          e.URL,
		MaxFails:     e.MaxFails,
		Status:       e.status,
		Detail:       e.detail,
		FailCount:    e.failCount,
		LastChecked:  e.lastChecked,
		NotifiedFail: e.notifiedFail,
		AssertPass:   e.assertPass,
	}
}

// StatusText renders the status the way it appears in alert mails.
func (s EndpointSnapshot) StatusText() string {
	if s.Detail == "" {
		return string(s.Status)
	}
	if s.Status == incident.TransportError {
		return s.Detail
	}
	return fmt.Sprintf("%s (%s)", s.Status, s.Detail)
}
