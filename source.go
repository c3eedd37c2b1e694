package avertv

import (
	"github.com/kevmo314/go-avertv/pkg/decoder"
	"github.com/kevmo314/go-avertv/pkg/gpio"
)

type inputProbe struct {
	input decoder.Input
	misc  uint8
}

// Decoder input programming per source. TV walks through the composite and
// S-Video inputs before settling on AIP1A.
var inputProbes = map[VideoSource][]inputProbe{
	SourceTV: {
		{decoder.InputCompositeAIP1B, decoder.MiscComposite},
		{decoder.InputSVideo, decoder.MiscSVideoProbe},
		{decoder.InputCompositeAIP1A, decoder.MiscComposite},
	},
	SourceComposite: {
		{decoder.InputCompositeAIP1B, decoder.MiscComposite},
	},
	SourceSVideo: {
		{decoder.InputSVideo, decoder.MiscSVideo},
	},
}

// SelectVideoSource brings the device up on target using target's cached
// standard and capture frame, and starts capture. TV also retunes to the
// cached frequency.
//
// Serial bus timeouts along the way are logged and the sequence carries on.
// A transport error aborts it.
func (d *Device) SelectVideoSource(target VideoSource) error {
	if !target.Valid() {
		return ErrInvalidSource
	}
	d.source = target
	d.paused = false
	slot := d.slots[target]
	d.log.Info("selecting video source",
		"source", target,
		"standard", slot.Standard,
		"frame", slot.Frame,
		"frequency", d.frequency)

	if err := d.check("configure pins", d.gpio.ConfigurePins()); err != nil {
		return err
	}
	if err := d.check("timing generator", d.gpio.ApplyTimingGenerator()); err != nil {
		return err
	}
	if err := d.check("configure pll", d.gpio.ConfigurePLL()); err != nil {
		return err
	}
	if err := d.check("clock divider", d.bus.SetClockDivider(d.clockDivider)); err != nil {
		return err
	}
	if err := d.check("decoder init", d.decoder.Init()); err != nil {
		return err
	}
	if target == SourceTV {
		if err := d.routeAudio(gpio.AudioNone); err != nil {
			return err
		}
	}
	for _, p := range inputProbes[target] {
		if err := d.check("select input", d.decoder.SelectInput(p.input, p.misc)); err != nil {
			return err
		}
	}
	if err := d.check("set video standard", d.decoder.SetVideoStandard(slot.Standard)); err != nil {
		return err
	}
	if err := d.check("revision select", d.decoder.SetRevisionSelect(false)); err != nil {
		return err
	}
	if err := d.programFrame(slot.Frame); err != nil {
		return err
	}
	if err := d.readBackFrame(); err != nil {
		return err
	}

	audio := gpio.AudioAux
	if target == SourceTV {
		audio = gpio.AudioTvTuner
	}
	if err := d.routeAudio(audio); err != nil {
		return err
	}
	if target == SourceTV {
		if _, err := d.Tune(d.frequency); err != nil {
			return err
		}
	}
	return d.StartCapture()
}

func (d *Device) routeAudio(src gpio.AudioSource) error {
	if err := d.check("route audio", d.gpio.RouteAudio(src)); err != nil {
		return err
	}
	d.audio = src
	return nil
}
