package avertv

import (
	"fmt"

	"github.com/kevmo314/go-avertv/pkg/gpio"
	"github.com/kevmo314/go-avertv/pkg/tuner"
)

// State is the part of a Device that outlives a run.
type State struct {
	Source    VideoSource
	Audio     gpio.AudioSource
	Sources   map[VideoSource]SourceState
	Frequency float64
	Color     Color
}

// Snapshot captures the cache for persisting. A paused device reports the
// audio route it will resume to.
func (d *Device) Snapshot() State {
	s := State{
		Source:    d.source,
		Audio:     d.audio,
		Sources:   make(map[VideoSource]SourceState, len(d.slots)),
		Frequency: d.frequency,
		Color:     d.color,
	}
	if d.paused {
		s.Audio = d.resumeAudio
	}
	for _, src := range VideoSources {
		s.Sources[src] = d.slots[src]
	}
	return s
}

// Restore loads a persisted state into the cache without touching the
// hardware. Sources missing from s keep their current state, as does the
// frequency when s.Frequency is zero. Call
// SelectVideoSource and SetColor to apply it.
func (d *Device) Restore(s State) error {
	if !s.Source.Valid() {
		return fmt.Errorf("restore: %w: %v", ErrInvalidSource, s.Source)
	}
	if !s.Audio.Valid() {
		return fmt.Errorf("restore: %w: %v", gpio.ErrInvalidAudioSource, s.Audio)
	}
	if s.Frequency != 0 {
		if err := tuner.CheckFrequency(s.Frequency); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	for src, st := range s.Sources {
		if !src.Valid() {
			return fmt.Errorf("restore: %w: %v", ErrInvalidSource, src)
		}
		if !st.Standard.Valid() {
			return fmt.Errorf("restore %v: invalid video standard %v", src, st.Standard)
		}
	}
	for src, st := range s.Sources {
		d.slots[src] = st
	}
	d.source = s.Source
	d.audio = s.Audio
	d.size = d.slots[d.source].Frame.Size()
	if s.Frequency != 0 {
		d.frequency = s.Frequency
	}
	d.color = s.Color
	return nil
}
