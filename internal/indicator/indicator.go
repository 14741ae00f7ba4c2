// Package indicator drives the physical alarm (light and buzzer) and the
// manual reset button.
package indicator

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Indicator is the hardware boundary. AlarmOn and AlarmOff are idempotent.
type Indicator interface {
	AlarmOn()
	AlarmOff()
	// OnButtonPress registers the callback run when the reset button is
	// pressed. The callback runs on the indicator's goroutine and must not
	// block.
	OnButtonPress(fn func())
	Close() error
}

// Console stands in for the board on hosts without GPIO: it only logs
// alarm transitions.
type Console struct {
	mu      sync.Mutex
	active  bool
	pressed func()
}

func NewConsole() *Console {
	return &Console{}
}

func (c *Console) AlarmOn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return
	}
	c.active = true
	log.Warn().Msg("[indicator] alarm on")
}

func (c *Console) AlarmOff() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}
	c.active = false
	log.Info().Msg("[indicator] alarm off")
}

func (c *Console) OnButtonPress(fn func()) {
	c.mu.Lock()
	c.pressed = fn
	c.mu.Unlock()
}

// Press simulates the reset button.
func (c *Console) Press() {
	c.mu.Lock()
	fn := c.pressed
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (c *Console) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.active
}

func (c *Console) Close() error {
	return nil
}
