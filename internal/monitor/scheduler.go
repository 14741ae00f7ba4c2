package monitor

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"pi-monitor/internal/incident"
	"pi-monitor/internal/notify"
)

// Run is the owner loop. It runs a cycle immediately, then one per interval,
// and applies manual resets between cycles until ctx is cancelled. A cycle
// that is still running when the next tick fires causes that tick to be
// skipped; two cycles never overlap.
func (m *Monitor) Run(ctx context.Context) error {
	log.Info().Int("endpoints", len(m.endpoints)).Str("interval", m.interval.String()).Msg("Starting uptime monitoring")

	if m.startupMessage != "" {
		m.notify.Broadcast(ctx, notify.Message{
			Kind:    incident.Startup,
			Subject: m.subject + " Started Successfully",
			Body:    m.startupMessage,
		})
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{}),
		cron.SkipIfStillRunning(cronLogger{}),
	), cron.WithLogger(cronLogger{}))
	c.Schedule(cron.Every(m.interval), cron.FuncJob(func() { m.trigger(ctx) }))
	c.Start()
	defer func() {
		stopped := c.Stop()
		<-stopped.Done()
		log.Info().Msg("Monitoring stopped")
	}()

	m.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case done := <-m.ticks:
			m.cycle(ctx)
			close(done)
		case <-m.resets:
			m.Reset()
		}
	}
}

// trigger hands one tick to the owner loop and waits for the cycle to finish
// so that SkipIfStillRunning sees the job as busy for the whole cycle.
func (m *Monitor) trigger(ctx context.Context) {
	done := make(chan struct{})

	select {
	case m.ticks <- done:
	case <-ctx.Done():
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// cycle runs to completion even when ctx is cancelled mid-way; ctx only
// stops the owner loop between cycles.
func (m *Monitor) cycle(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	if m.heartbeat != nil {
		m.heartbeat.Check(ctx, m.now())
	}
	m.RunCycle(ctx)
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		log.Warn().Msg("cron: previous cycle still running, tick skipped")
		return
	}
	log.Debug().Fields(pairs(keysAndValues)).Msgf("cron: %s", msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(pairs(keysAndValues)).Msgf("cron: %s", msg)
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
