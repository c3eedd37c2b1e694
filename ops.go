package avertv

import (
	"github.com/kevmo314/go-avertv/pkg/decoder"
	"github.com/kevmo314/go-avertv/pkg/geometry"
	"github.com/kevmo314/go-avertv/pkg/gpio"
	"github.com/kevmo314/go-avertv/pkg/registers"
)

func (d *Device) programFrame(f geometry.Frame) error {
	clamped, size, err := d.decoder.SetCaptureWindow(f)
	if err := d.check("set capture window", err); err != nil {
		return err
	}
	d.slots[d.source].Frame = clamped
	d.size = size
	return nil
}

func (d *Device) readBackFrame() error {
	f, err := d.decoder.CaptureWindow()
	if err := d.check("read capture window", err); err != nil {
		return err
	}
	d.slots[d.source].Frame = f
	d.size = f.Size()
	return nil
}

// SetCaptureGeometry programs a w x h capture window at (x, y) in pixels for
// the active source. The origin is clamped at zero and the size at 720x576;
// the bottom edge is further limited by the decoder's last field line.
func (d *Device) SetCaptureGeometry(x, y, w, h int) error {
	return d.programFrame(geometry.ToDecoderFrame(x, y, w, h))
}

// CaptureGeometry reads the capture window from the device, refreshes the
// active source's cache and returns the window in pixels.
func (d *Device) CaptureGeometry() (x, y, w, h int, err error) {
	if err := d.readBackFrame(); err != nil {
		return 0, 0, 0, 0, err
	}
	start, _, size := geometry.ToPixelRect(d.slots[d.source].Frame)
	return start.X, start.Y, size.Width, size.Height, nil
}

func (d *Device) SetBrightness(v float64) error {
	v = min(max(v, 0), 1)
	if err := d.check("set brightness", d.decoder.SetBrightness(v)); err != nil {
		return err
	}
	d.color.Brightness = v
	return nil
}

func (d *Device) SetContrast(v float64) error {
	v = min(max(v, 0), 1)
	if err := d.check("set contrast", d.decoder.SetContrast(v)); err != nil {
		return err
	}
	d.color.Contrast = v
	return nil
}

func (d *Device) SetSaturation(v float64) error {
	v = min(max(v, 0), 1)
	if err := d.check("set saturation", d.decoder.SetSaturation(v)); err != nil {
		return err
	}
	d.color.Saturation = v
	return nil
}

func (d *Device) SetHue(v float64) error {
	v = min(max(v, -0.5), 0.5)
	if err := d.check("set hue", d.decoder.SetHue(v)); err != nil {
		return err
	}
	d.color.Hue = v
	return nil
}

// SetColor applies all four picture adjustments.
func (d *Device) SetColor(c Color) error {
	if err := d.SetBrightness(c.Brightness); err != nil {
		return err
	}
	if err := d.SetContrast(c.Contrast); err != nil {
		return err
	}
	if err := d.SetHue(c.Hue); err != nil {
		return err
	}
	return d.SetSaturation(c.Saturation)
}

// SetColorDefaults replaces the values ResetColor goes back to.
func (d *Device) SetColorDefaults(c Color) { d.defaults = c }

func (d *Device) ResetColor() error { return d.SetColor(d.defaults) }

// Tune retunes to mhz and reports the sync lock seen after the settle
// delay. No lock is not an error.
func (d *Device) Tune(mhz float64) (decoder.Lock, error) {
	lock, err := d.tuner.Tune(mhz)
	if err := d.check("tune", err); err != nil {
		return lock, err
	}
	d.frequency = mhz
	d.lock = lock
	if !lock.Detected() {
		d.log.Info("no video detected", "mhz", mhz, "vertical_lock", lock.Vertical, "horizontal_lock", lock.Horizontal)
	}
	return lock, nil
}

// ChangeChannel stops capture around a retune. A paused device stays
// stopped.
func (d *Device) ChangeChannel(mhz float64) (decoder.Lock, error) {
	if err := d.StopCapture(); err != nil {
		return decoder.Lock{}, err
	}
	lock, err := d.Tune(mhz)
	if err != nil || d.paused {
		return lock, err
	}
	return lock, d.StartCapture()
}

// Pause stops capture and mutes the audio mux, remembering the route.
// Pausing twice is a no-op.
func (d *Device) Pause() error {
	if d.paused {
		return nil
	}
	if err := d.StopCapture(); err != nil {
		return err
	}
	prev := d.audio
	if err := d.routeAudio(gpio.AudioNone); err != nil {
		return err
	}
	d.paused = true
	d.resumeAudio = prev
	return nil
}

// Resume restarts capture and puts back the audio route Pause muted.
func (d *Device) Resume() error {
	if !d.paused {
		return nil
	}
	if err := d.StartCapture(); err != nil {
		return err
	}
	if err := d.routeAudio(d.resumeAudio); err != nil {
		return err
	}
	d.paused = false
	return nil
}

func (d *Device) Paused() bool { return d.paused }

func (d *Device) SetLED(on bool) error {
	return d.check("set led", d.gpio.SetLED(on))
}

// ShutdownAudioRouting mutes the audio mux.
func (d *Device) ShutdownAudioRouting() error {
	return d.routeAudio(gpio.AudioNone)
}

func (d *Device) StartCapture() error {
	return d.check("start capture", d.gpio.StartCapture())
}

func (d *Device) StopCapture() error {
	return d.check("stop capture", d.gpio.StopCapture())
}

// VideoStandard returns the active source's cached standard.
func (d *Device) VideoStandard() decoder.Standard {
	return d.slots[d.source].Standard
}

// SetVideoStandard forces the decoder to s and records it for the active
// source.
func (d *Device) SetVideoStandard(s decoder.Standard) error {
	if err := d.check("set video standard", d.decoder.SetVideoStandard(s)); err != nil {
		return err
	}
	d.slots[d.source].Standard = s
	return nil
}

// DetectVideoStandard reads the standard the decoder is locked to. A
// standard the decoder picked on its own in autoswitch mode is recorded as
// the effective standard and leaves the cache alone; a recognized standard
// that was not autoswitched becomes the active source's cached standard. An
// unrecognized reading changes nothing.
func (d *Device) DetectVideoStandard() (decoder.Detection, error) {
	det, err := d.decoder.DetectStandard()
	if err := d.check("detect video standard", err); err != nil {
		return det, err
	}
	switch {
	case !det.Recognized:
		d.log.Warn("unrecognized video standard", "status5", det.Raw, "source", d.source)
	case det.AutoSwitched:
		d.effective, d.autoSw = det.Standard, true
		d.log.Info("video standard detected", "standard", det.Standard, "autoswitched", true, "source", d.source)
	default:
		d.slots[d.source].Standard = det.Standard
		d.effective, d.autoSw = det.Standard, false
		d.log.Info("video standard detected", "standard", det.Standard, "autoswitched", false, "source", d.source)
	}
	return det, nil
}

func (d *Device) VerticalLineCount() (int, error) {
	n, err := d.decoder.VerticalLineCount()
	return n, d.check("vertical line count", err)
}

func (d *Device) SetRegisterBit(index registers.Address, bit uint) error {
	return d.check("set register bit", d.gpio.SetRegisterBit(index, bit))
}

func (d *Device) ClearRegisterBit(index registers.Address, bit uint) error {
	return d.check("clear register bit", d.gpio.ClearRegisterBit(index, bit))
}
