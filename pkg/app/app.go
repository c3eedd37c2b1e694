// Package app drives an avertv.Device the way the front ends use it: it
// restores the saved state at startup, keeps the loopback streamer in step
// with the capture size, walks the channel list and saves the state on the
// way out. All methods serialise on one mutex so the console and signal
// handling can share a Device.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	avertv "github.com/kevmo314/go-avertv"
	"github.com/kevmo314/go-avertv/pkg/config"
	"github.com/kevmo314/go-avertv/pkg/decoder"
	"github.com/kevmo314/go-avertv/pkg/geometry"
	"github.com/kevmo314/go-avertv/pkg/settings"
	"github.com/kevmo314/go-avertv/pkg/status"
)

var ErrNoChannels = errors.New("app: no channels configured")

// Streamer is the loopback helper as the App sees it.
type Streamer interface {
	Start(size geometry.Size) (uuid.UUID, error)
	Stop() error
}

type Options struct {
	Device       *avertv.Device
	Settings     *settings.Settings
	SettingsPath string
	Channels     []config.Channel
	// Streamer and Publisher may be nil.
	Streamer  Streamer
	Publisher status.Publisher
	// SourceSwitchSettle is the pause between stopping the streamer and
	// reprogramming the device.
	SourceSwitchSettle time.Duration
	Sleep              func(time.Duration)
	Logger             *slog.Logger
}

type App struct {
	mu sync.Mutex

	dev       *avertv.Device
	settings  *settings.Settings
	path      string
	channels  []config.Channel
	channel   int
	streamer  Streamer
	streamID  uuid.UUID
	publisher status.Publisher
	settle    time.Duration
	sleep     func(time.Duration)
	log       *slog.Logger
	session   uuid.UUID
}

func New(o Options) *App {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Settings == nil {
		o.Settings = settings.Default()
	}
	if o.Publisher == nil {
		o.Publisher = status.Noop{}
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	session := uuid.New()
	return &App{
		dev:       o.Device,
		settings:  o.Settings,
		path:      o.SettingsPath,
		channels:  o.Channels,
		streamer:  o.Streamer,
		publisher: o.Publisher,
		settle:    o.SourceSwitchSettle,
		sleep:     o.Sleep,
		log:       o.Logger.With("session", session),
		session:   session,
	}
}

// Start lights the LED, restores the saved state, selects the saved source,
// reads back the video standard and starts the streamer.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.dev.SetLED(true); err != nil {
		return err
	}

	st := ToState(a.settings)
	a.channel = a.settings.ChannelIndex
	if a.channel < 0 || a.channel >= len(a.channels) {
		a.channel = 0
	}
	if len(a.channels) > 0 && st.Source == avertv.SourceTV {
		st.Frequency = a.channels[a.channel].Frequency
	}
	if err := a.dev.Restore(st); err != nil {
		a.log.Warn("saved settings rejected, using defaults", "err", err)
	}

	if err := a.dev.SelectVideoSource(a.dev.Source()); err != nil {
		return err
	}
	if err := a.dev.SetColor(a.dev.Color()); err != nil {
		return err
	}
	if _, err := a.dev.DetectVideoStandard(); err != nil {
		return err
	}
	if err := a.startStreamer(); err != nil {
		return err
	}
	a.publish("start")
	return nil
}

func (a *App) startStreamer() error {
	if a.streamer == nil {
		return nil
	}
	id, err := a.streamer.Start(a.dev.CaptureSize())
	if err != nil {
		return fmt.Errorf("start streamer: %w", err)
	}
	a.streamID = id
	return nil
}

func (a *App) stopStreamer() error {
	if a.streamer == nil {
		return nil
	}
	if err := a.streamer.Stop(); err != nil {
		return fmt.Errorf("stop streamer: %w", err)
	}
	return nil
}

// CycleSource moves to the next source in the order TV, Composite,
// S-Video.
func (a *App) CycleSource() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectSource(a.dev.Source().Next())
}

func (a *App) SelectSource(src avertv.VideoSource) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectSource(src)
}

func (a *App) selectSource(src avertv.VideoSource) error {
	if !src.Valid() {
		return avertv.ErrInvalidSource
	}
	if err := a.stopStreamer(); err != nil {
		return err
	}
	a.sleep(a.settle)

	if src == avertv.SourceTV && len(a.channels) > 0 {
		st := a.dev.Snapshot()
		st.Frequency = a.channels[a.channel].Frequency
		if err := a.dev.Restore(st); err != nil {
			return err
		}
	}
	if err := a.dev.SelectVideoSource(src); err != nil {
		return err
	}
	if err := a.startStreamer(); err != nil {
		return err
	}
	a.publish("source")
	return nil
}

func (a *App) NextChannel() error { return a.stepChannel(1) }
func (a *App) PrevChannel() error { return a.stepChannel(-1) }

func (a *App) stepChannel(delta int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.channels) == 0 {
		return ErrNoChannels
	}
	n := len(a.channels)
	return a.setChannel(((a.channel+delta)%n + n) % n)
}

// SetChannel tunes to entry i of the channel list.
func (a *App) SetChannel(i int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.channels) {
		return fmt.Errorf("app: channel %d out of range [0, %d)", i, len(a.channels))
	}
	return a.setChannel(i)
}

func (a *App) setChannel(i int) error {
	a.channel = i
	ch := a.channels[i]
	if a.dev.Source() != avertv.SourceTV {
		a.log.Info("channel selected, tuner idle", "channel", ch.Name, "source", a.dev.Source())
		return nil
	}
	lock, err := a.dev.ChangeChannel(ch.Frequency)
	if err != nil {
		return err
	}
	a.log.Info("channel changed", "channel", ch.Name, "mhz", ch.Frequency, "locked", lock.Detected())
	a.publish("channel")
	return nil
}

// Channel returns the current entry of the channel list.
func (a *App) Channel() (config.Channel, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.channels) == 0 {
		return config.Channel{}, false
	}
	return a.channels[a.channel], true
}

// SetCaptureGeometry resizes the capture window and restarts the streamer
// with the new size. Capture is stopped while the streamer is replaced.
func (a *App) SetCaptureGeometry(x, y, w, h int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.dev.SetCaptureGeometry(x, y, w, h); err != nil {
		return err
	}
	if err := a.dev.StopCapture(); err != nil {
		return err
	}
	if err := a.stopStreamer(); err != nil {
		return err
	}
	if err := a.startStreamer(); err != nil {
		return err
	}
	if !a.dev.Paused() {
		if err := a.dev.StartCapture(); err != nil {
			return err
		}
	}
	a.publish("geometry")
	return nil
}

// Pause stops capture and mutes the audio. The streamer keeps running.
func (a *App) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setPaused(true)
}

// Resume restarts capture and restores the audio route muted by Pause.
func (a *App) Resume() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setPaused(false)
}

// TogglePause pauses a running device and resumes a paused one.
func (a *App) TogglePause() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setPaused(!a.dev.Paused())
}

func (a *App) setPaused(pause bool) error {
	if pause == a.dev.Paused() {
		return nil
	}
	if pause {
		if err := a.dev.Pause(); err != nil {
			return err
		}
		a.publish("pause")
		return nil
	}
	if err := a.dev.Resume(); err != nil {
		return err
	}
	a.publish("resume")
	return nil
}

// AdjustColor applies fn to the current color and programs the result.
func (a *App) AdjustColor(fn func(*avertv.Color)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := a.dev.Color()
	fn(&c)
	if err := a.dev.SetColor(c); err != nil {
		return err
	}
	a.publish("color")
	return nil
}

func (a *App) ResetColor() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.dev.ResetColor(); err != nil {
		return err
	}
	a.publish("color")
	return nil
}

func (a *App) SetVideoStandard(s decoder.Standard) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.dev.SetVideoStandard(s); err != nil {
		return err
	}
	a.publish("standard")
	return nil
}

func (a *App) DetectStandard() (decoder.Detection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	det, err := a.dev.DetectVideoStandard()
	if err != nil {
		return det, err
	}
	a.publish("standard")
	return det, nil
}

func (a *App) SetLED(on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dev.SetLED(on)
}

// Do runs fn with exclusive access to the device.
func (a *App) Do(fn func(d *avertv.Device) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn(a.dev)
}

// Shutdown stops the streamer and capture, mutes the audio, turns the LED
// off and saves the state the device had before muting. Every step is
// attempted; the errors are joined.
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	FromState(a.dev.Snapshot(), a.settings)
	a.settings.ChannelIndex = a.channel

	var errs []error
	errs = append(errs, a.stopStreamer())
	errs = append(errs, a.dev.StopCapture())
	errs = append(errs, a.dev.ShutdownAudioRouting())
	errs = append(errs, a.dev.SetLED(false))
	if a.path != "" {
		if err := a.settings.Save(a.path); err != nil {
			errs = append(errs, fmt.Errorf("save settings: %w", err))
		} else {
			a.log.Info("settings saved", "path", a.path)
		}
	}
	errs = append(errs, a.publisher.Close())
	return errors.Join(errs...)
}

// Status describes the current state as a status event.
func (a *App) Status(reason string) status.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.event(reason)
}

func (a *App) event(reason string) status.Event {
	d := a.dev
	lock := d.Lock()
	size := d.CaptureSize()
	c := d.Color()
	e := status.Event{
		Session:        a.session.String(),
		Reason:         reason,
		Source:         d.Source().String(),
		Standard:       d.VideoStandard().String(),
		Audio:          d.AudioSource().String(),
		Paused:         d.Paused(),
		VerticalLock:   lock.Vertical,
		HorizontalLock: lock.Horizontal,
		Width:          size.Width,
		Height:         size.Height,
		Color: status.Color{
			Brightness: c.Brightness,
			Contrast:   c.Contrast,
			Hue:        c.Hue,
			Saturation: c.Saturation,
		},
		Timestamp: time.Now().UTC(),
	}
	if eff, ok := d.EffectiveStandard(); ok {
		e.EffectiveStandard = eff.String()
	}
	if d.Source() == avertv.SourceTV {
		e.FrequencyMHz = d.Frequency()
		if len(a.channels) > 0 {
			e.Channel = a.channels[a.channel].Name
		}
	}
	if a.streamID != uuid.Nil {
		e.Streamer = a.streamID.String()
	}
	return e
}

func (a *App) publish(reason string) {
	if err := a.publisher.Publish(a.event(reason)); err != nil {
		a.log.Warn("status publish failed", "reason", reason, "err", err)
	}
}
