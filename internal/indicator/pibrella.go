package indicator

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Pibrella board defaults (BCM numbering).
const (
	DefaultButtonPin = "GPIO11"
	DefaultLightPin  = "GPIO27"
	DefaultBuzzerPin = "GPIO18"
	DefaultBuzzHz    = 50
)

const (
	pulsePeriod    = 500 * time.Millisecond
	debounceWindow = 300 * time.Millisecond
)

type PibrellaConfig struct {
	ButtonPin string
	LightPin  string
	BuzzerPin string
	BuzzHz    int
}

// Pibrella pulses the red light and sounds the buzzer while the alarm is on
// and watches the button for manual resets.
type Pibrella struct {
	button gpio.PinIO
	light  gpio.PinIO
	buzzer gpio.PinIO
	buzzHz int

	mu        sync.Mutex
	pulseStop chan struct{}
	pressed   func()

	done chan struct{}
	wg   sync.WaitGroup
}

func NewPibrella(cfg PibrellaConfig) (*Pibrella, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize gpio host: %w", err)
	}

	if cfg.ButtonPin == "" {
		cfg.ButtonPin = DefaultButtonPin
	}
	if cfg.LightPin == "" {
		cfg.LightPin = DefaultLightPin
	}
	if cfg.BuzzerPin == "" {
		cfg.BuzzerPin = DefaultBuzzerPin
	}
	if cfg.BuzzHz <= 0 {
		cfg.BuzzHz = DefaultBuzzHz
	}

	p := &Pibrella{buzzHz: cfg.BuzzHz, done: make(chan struct{})}

	var err error
	if p.button, err = lookupPin(cfg.ButtonPin); err != nil {
		return nil, err
	}
	if p.light, err = lookupPin(cfg.LightPin); err != nil {
		return nil, err
	}
	if p.buzzer, err = lookupPin(cfg.BuzzerPin); err != nil {
		return nil, err
	}

	if err := p.light.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to configure light pin %s: %w", cfg.LightPin, err)
	}
	if err := p.buzzer.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to configure buzzer pin %s: %w", cfg.BuzzerPin, err)
	}
	if err := p.button.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("failed to configure button pin %s: %w", cfg.ButtonPin, err)
	}

	p.wg.Add(1)
	go p.watchButton()

	log.Info().
		Str("button", cfg.ButtonPin).
		Str("light", cfg.LightPin).
		Str("buzzer", cfg.BuzzerPin).
		Msg("[indicator] pibrella ready")

	return p, nil
}

func lookupPin(name string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %s not found", name)
	}
	return pin, nil
}

func (p *Pibrella) AlarmOn() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pulseStop != nil {
		return
	}

	if err := p.buzzer.PWM(gpio.DutyHalf, physic.Frequency(p.buzzHz)*physic.Hertz); err != nil {
		log.Warn().Err(err).Msg("[indicator] buzzer pwm unavailable, driving pin high")
		_ = p.buzzer.Out(gpio.High)
	}

	stop := make(chan struct{})
	p.pulseStop = stop
	p.wg.Add(1)
	go p.pulse(stop)

	log.Warn().Msg("[indicator] alarm on")
}

func (p *Pibrella) AlarmOff() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pulseStop == nil {
		return
	}
	close(p.pulseStop)
	p.pulseStop = nil

	_ = p.buzzer.Out(gpio.Low)
	log.Info().Msg("[indicator] alarm off")
}

func (p *Pibrella) OnButtonPress(fn func()) {
	p.mu.Lock()
	p.pressed = fn
	p.mu.Unlock()
}

func (p *Pibrella) pulse(stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(pulsePeriod)
	defer ticker.Stop()

	level := gpio.High
	_ = p.light.Out(level)
	for {
		select {
		case <-stop:
			_ = p.light.Out(gpio.Low)
			return
		case <-p.done:
			_ = p.light.Out(gpio.Low)
			return
		case <-ticker.C:
			level = !level
			_ = p.light.Out(level)
		}
	}
}

func (p *Pibrella) watchButton() {
	defer p.wg.Done()

	var last time.Time
	for {
		select {
		case <-p.done:
			return
		default:
		}

		if !p.button.WaitForEdge(time.Second) {
			continue
		}
		if time.Since(last) < debounceWindow {
			continue
		}
		last = time.Now()

		p.mu.Lock()
		fn := p.pressed
		p.mu.Unlock()

		log.Info().Msg("[indicator] reset button pressed")
		if fn != nil {
			fn()
		}
	}
}

func (p *Pibrella) Close() error {
	p.AlarmOff()
	close(p.done)
	p.wg.Wait()

	if err := p.button.Halt(); err != nil {
		return fmt.Errorf("failed to release button pin: %w", err)
	}
	return nil
}
