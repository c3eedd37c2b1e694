// Package avertv controls the AVerMedia AVerTV USB2.0 (07ca:0026) capture
// device: a DC1100 video controller, a TVP5150AM1 video decoder and an LG
// TALN-M205T tuner, the latter two reached over the controller's serial bus.
//
// A Device owns the register transport and a cache of per-source state
// (video standard and capture frame for each of TV, Composite and S-Video).
// The cache is best effort: it follows what the Device itself programmed and
// what it read back, and goes stale if registers are changed behind its back.
//
// A Device is not safe for concurrent use.
package avertv

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kevmo314/go-avertv/pkg/decoder"
	"github.com/kevmo314/go-avertv/pkg/geometry"
	"github.com/kevmo314/go-avertv/pkg/gpio"
	"github.com/kevmo314/go-avertv/pkg/sbi"
	"github.com/kevmo314/go-avertv/pkg/transport"
	"github.com/kevmo314/go-avertv/pkg/tuner"
)

// VideoSource is one of the device's three video inputs.
type VideoSource int

const (
	SourceTV VideoSource = iota
	SourceComposite
	SourceSVideo
)

var VideoSources = []VideoSource{SourceTV, SourceComposite, SourceSVideo}

func (s VideoSource) String() string {
	switch s {
	case SourceTV:
		return "TV"
	case SourceComposite:
		return "Composite"
	case SourceSVideo:
		return "S-Video"
	}
	return fmt.Sprintf("VideoSource(%d)", int(s))
}

func (s VideoSource) Valid() bool {
	return s >= SourceTV && s <= SourceSVideo
}

// Next returns the source after s in the cycle TV, Composite, S-Video.
func (s VideoSource) Next() VideoSource {
	return (s + 1) % VideoSource(len(VideoSources))
}

// ParseVideoSource accepts the names returned by String, case sensitive.
func ParseVideoSource(name string) (VideoSource, error) {
	for _, s := range VideoSources {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSource, name)
}

// SourceState is the cached configuration of one video source.
type SourceState struct {
	Standard decoder.Standard
	Frame    geometry.Frame
}

// DefaultFrame is a 640x480 capture frame at the origin.
var DefaultFrame = geometry.Frame{End: geometry.Position{X: 1280, Y: 240}}

// Color holds the picture adjustments. Brightness, contrast and saturation
// range over [0, 1]; hue over [-0.5, 0.5].
type Color struct {
	Brightness float64
	Contrast   float64
	Hue        float64
	Saturation float64
}

var DefaultColor = Color{
	Brightness: decoder.DefaultBrightness,
	Contrast:   decoder.DefaultContrast,
	Hue:        decoder.DefaultHue,
	Saturation: decoder.DefaultSaturation,
}

const DefaultClockDivider = 0x1E

type Options struct {
	Logger       *slog.Logger
	SBIMaxTries  int
	ClockDivider uint8
	TunerSettle  time.Duration
	// Sleep replaces time.Sleep for the tuner settle delay.
	Sleep func(time.Duration)
}

type resetCloser interface {
	Reset() error
	Close() error
}

type Device struct {
	regs    transport.RegisterTransport
	bus     *sbi.Bus
	decoder *decoder.Controller
	tuner   *tuner.Controller
	gpio    *gpio.Controller
	log     *slog.Logger

	clockDivider uint8

	source    VideoSource
	slots     [3]SourceState
	effective decoder.Standard
	autoSw    bool
	size      geometry.Size
	frequency float64
	lock      decoder.Lock
	audio     gpio.AudioSource
	paused    bool
	// route to restore on Resume
	resumeAudio gpio.AudioSource
	color       Color
	defaults    Color
}

// New builds a Device on regs. It performs no I/O.
func New(regs transport.RegisterTransport, opts Options) *Device {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ClockDivider == 0 {
		opts.ClockDivider = DefaultClockDivider
	}
	bus := sbi.New(regs, sbi.Config{MaxTries: opts.SBIMaxTries, Logger: opts.Logger})
	dec := decoder.New(bus, regs, opts.Logger)
	d := &Device{
		regs:         regs,
		bus:          bus,
		decoder:      dec,
		tuner:        tuner.New(bus, dec, tuner.Config{Settle: opts.TunerSettle, Sleep: opts.Sleep, Logger: opts.Logger}),
		gpio:         gpio.New(regs),
		log:          opts.Logger,
		clockDivider: opts.ClockDivider,
		frequency:    tuner.DefaultFrequency,
		color:        DefaultColor,
		defaults:     DefaultColor,
	}
	for i := range d.slots {
		d.slots[i] = SourceState{Standard: decoder.Autoswitch, Frame: DefaultFrame}
	}
	d.size = DefaultFrame.Size()
	return d
}

// check applies the error policy: serial bus timeouts are logged and
// dropped, anything else is returned wrapped with op.
func (d *Device) check(op string, err error) error {
	if err == nil {
		return nil
	}
	if !transport.IsFatal(err) && errors.Is(err, sbi.ErrTimeout) {
		d.log.Warn("serial bus timeout", "op", op, "source", d.source, "err", err)
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Bus exposes the serial bus for diagnostics.
func (d *Device) Bus() *sbi.Bus { return d.bus }

// Registers exposes the raw register transport for diagnostics.
func (d *Device) Registers() transport.RegisterTransport { return d.regs }

func (d *Device) Source() VideoSource { return d.source }

// SourceState returns the cached state of s.
func (d *Device) SourceState(s VideoSource) SourceState {
	if !s.Valid() {
		return SourceState{}
	}
	return d.slots[s]
}

// CaptureSize is the pixel size of the active capture frame.
func (d *Device) CaptureSize() geometry.Size { return d.size }

// Frequency is the last tuned frequency in MHz.
func (d *Device) Frequency() float64 { return d.frequency }

// Lock is the sync lock observed after the last tune.
func (d *Device) Lock() decoder.Lock { return d.lock }

func (d *Device) AudioSource() gpio.AudioSource { return d.audio }

func (d *Device) Color() Color { return d.color }

// EffectiveStandard returns the standard the decoder switched to on its own
// at the last detection, and whether it did.
func (d *Device) EffectiveStandard() (decoder.Standard, bool) {
	return d.effective, d.autoSw
}

// Reset issues a USB port reset when the transport supports it.
func (d *Device) Reset() error {
	rc, ok := d.regs.(resetCloser)
	if !ok {
		return errors.New("avertv: transport does not support reset")
	}
	return rc.Reset()
}

// Close releases the transport when it owns a device handle.
func (d *Device) Close() error {
	if rc, ok := d.regs.(resetCloser); ok {
		return rc.Close()
	}
	return nil
}
