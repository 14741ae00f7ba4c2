package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"pi-monitor/internal/heartbeat"
	"pi-monitor/internal/incident"
	"pi-monitor/internal/indicator"
	"pi-monitor/internal/net/config"
	"pi-monitor/internal/notify"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const lastCheckedFormat = "2006-01-02 15:04:05"

// Prober performs a single bounded probe and never fails past its boundary.
type Prober interface {
	Check(ctx context.Context, url string, timeout time.Duration) config.Outcome
}

// HeartbeatChecker is satisfied by *heartbeat.Heartbeat.
type HeartbeatChecker interface {
	Check(ctx context.Context, now time.Time) bool
}

var _ HeartbeatChecker = (*heartbeat.Heartbeat)(nil)

type Options struct {
	Endpoints      []*EndpointHealth
	Prober         Prober
	Notify         notify.Broadcaster
	Indicator      indicator.Indicator
	Heartbeat      HeartbeatChecker
	Interval       time.Duration
	Subject        string
	NotifyRecovery bool
	// StartupMessage, when set, is broadcast once when Run starts.
	StartupMessage string
}

// CycleReport summarizes one probe round.
type CycleReport struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Alerting  []string      `json:"alerting"`
	Recovered []string      `json:"recovered"`
}

// Status is the read-only view served by the local API.
type Status struct {
	Interval   time.Duration      `json:"interval"`
	AlarmOn    bool               `json:"alarm_on"`
	LastCycle  *CycleReport       `json:"last_cycle,omitempty"`
	Cycles     int                `json:"cycles"`
	Endpoints  []EndpointSnapshot `json:"endpoints"`
	ServerTime time.Time          `json:"server_time"`
}

// Monitor owns every endpoint's health and the alarm indicator. Cycles and
// manual resets are serialized through the owner loop started by Run.
type Monitor struct {
	endpoints      []*EndpointHealth
	prober         Prober
	notify         notify.Broadcaster
	indicator      indicator.Indicator
	heartbeat      HeartbeatChecker
	interval       time.Duration
	subject        string
	notifyRecovery bool
	startupMessage string
	now            func() time.Time

	ticks  chan chan struct{}
	resets chan struct{}

	mu        sync.RWMutex
	alarmOn   bool
	lastCycle *CycleReport
	cycles    int
}

func NewMonitor(opts Options) (*Monitor, error) {
	if len(opts.Endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints to monitor")
	}
	if opts.Prober == nil {
		return nil, fmt.Errorf("prober is required")
	}
	if opts.Notify == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if opts.Indicator == nil {
		opts.Indicator = indicator.NewConsole()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Subject == "" {
		opts.Subject = "Pi Monitor"
	}

	m := &Monitor{
		endpoints:      opts.Endpoints,
		prober:         opts.Prober,
		notify:         opts.Notify,
		indicator:      opts.Indicator,
		heartbeat:      opts.Heartbeat,
		interval:       opts.Interval,
		subject:        opts.Subject,
		notifyRecovery: opts.NotifyRecovery,
		startupMessage: opts.StartupMessage,
		now:            time.Now,
		ticks:          make(chan chan struct{}),
		resets:         make(chan struct{}, 1),
	}

	m.indicator.OnButtonPress(m.RequestReset)

	return m, nil
}

// RunCycle probes every endpoint concurrently, waits for all of them, and
// then alerts once for the endpoints that just crossed their threshold.
func (m *Monitor) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{
		ID:        uuid.NewString(),
		StartedAt: m.now(),
	}

	wasNotified := make([]bool, len(m.endpoints))
	for i, ep := range m.endpoints {
		wasNotified[i] = ep.isNotified()
	}

	var wg sync.WaitGroup
	for _, ep := range m.endpoints {
		wg.Add(1)
		go func(ep *EndpointHealth) {
			defer wg.Done()
			m.checkEndpoint(ctx, ep)
		}(ep)
	}
	wg.Wait()

	var alerting []*EndpointHealth
	var recovered []*EndpointHealth
	for i, ep := range m.endpoints {
		if ep.shouldAlert() {
			alerting = append(alerting, ep)
		}
		if wasNotified[i] && ep.isOK() {
			recovered = append(recovered, ep)
		}
	}

	if len(alerting) > 0 {
		m.setAlarm(true)
		m.sendDownEmail(ctx, report.ID, alerting)
		for _, ep := range alerting {
			ep.markNotified()
			report.Alerting = append(report.Alerting, ep.Name)
		}
	} else {
		m.setAlarm(false)
	}

	if len(recovered) > 0 {
		for _, ep := range recovered {
			report.Recovered = append(report.Recovered, ep.Name)
		}
		if m.notifyRecovery {
			m.sendRecoveredEmail(ctx, report.ID, recovered)
		}
	}

	report.Duration = m.now().Sub(report.StartedAt)

	m.mu.Lock()
	m.lastCycle = &report
	m.cycles++
	m.mu.Unlock()

	log.Info().
		Str("cycle", report.ID).
		Int("endpoints", len(m.endpoints)).
		Int("alerting", len(report.Alerting)).
		Int("recovered", len(report.Recovered)).
		Str("duration", report.Duration.String()).
		Msg("cycle complete")

	return report
}

func (m *Monitor) checkEndpoint(ctx context.Context, ep *EndpointHealth) {
	outcome := m.prober.Check(ctx, ep.URL, ep.Timeout)
	ep.Apply(outcome)

	s := ep.Snapshot()
	event := log.Info()
	if s.Status != incident.OK {
		event = log.Warn()
	}
	event.Str("name", s.Name).
		Str("status", s.StatusText()).
		Int("fails", s.FailCount).
		Str("response_time", outcome.ResponseTime.String()).
		Msgf("%s - checked", s.URL)
}

func (m *Monitor) sendDownEmail(ctx context.Context, cycleID string, down []*EndpointHealth) {
	var b strings.Builder
	for _, ep := range down {
		s := ep.Snapshot()
		fmt.Fprintf(&b, "%s %s %s - %s\n", s.Name, s.LastChecked.Format(lastCheckedFormat), s.URL, s.StatusText())
	}

	log.Warn().Str("cycle", cycleID).Int("count", len(down)).Msg("New Incident detected! - sending alert")

	m.notify.Broadcast(ctx, notify.Message{
		Kind:    incident.Alert,
		CycleID: cycleID,
		Subject: m.subject,
		Body:    b.String(),
	})
}

func (m *Monitor) sendRecoveredEmail(ctx context.Context, cycleID string, up []*EndpointHealth) {
	var b strings.Builder
	for _, ep := range up {
		s := ep.Snapshot()
		fmt.Fprintf(&b, "%s %s %s - %s\n", s.Name, s.LastChecked.Format(lastCheckedFormat), s.URL, s.StatusText())
	}

	log.Info().Str("cycle", cycleID).Int("count", len(up)).Msg("Incident Solved - sending recovery notice")

	m.notify.Broadcast(ctx, notify.Message{
		Kind:    incident.Recovery,
		CycleID: cycleID,
		Subject: m.subject + " Recovered",
		Body:    b.String(),
	})
}

// Reset is the manual override behind the reset button.
func (m *Monitor) Reset() {
	for _, ep := range m.endpoints {
		ep.Reset()
	}
	m.setAlarm(false)
	log.Info().Int("endpoints", len(m.endpoints)).Msg("manual reset applied")
}

// RequestReset asks the owner loop to apply a manual reset between cycles.
// It never blocks; presses arriving while one is pending are merged.
func (m *Monitor) RequestReset() {
	select {
	case m.resets <- struct{}{}:
	default:
	}
}

func (m *Monitor) setAlarm(on bool) {
	if on {
		m.indicator.AlarmOn()
	} else {
		m.indicator.AlarmOff()
	}

	m.mu.Lock()
	m.alarmOn = on
	m.mu.Unlock()
}

func (m *Monitor) Snapshot() Status {
	m.mu.RLock()
	status := Status{
		Interval:   m.interval,
		AlarmOn:    m.alarmOn,
		Cycles:     m.cycles,
		ServerTime: m.now(),
	}
	if m.lastCycle != nil {
		last := *m.lastCycle
		status.LastCycle = &last
	}
	m.mu.RUnlock()

	status.Endpoints = make([]EndpointSnapshot, 0, len(m.endpoints))
	for _, ep := range m.endpoints {
		status.Endpoints = append(status.Endpoints, ep.Snapshot())
	}

	return status
}
