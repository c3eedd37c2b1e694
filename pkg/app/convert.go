package app

import (
	avertv "github.com/kevmo314/go-avertv"
	"github.com/kevmo314/go-avertv/pkg/decoder"
	"github.com/kevmo314/go-avertv/pkg/geometry"
	"github.com/kevmo314/go-avertv/pkg/gpio"
	"github.com/kevmo314/go-avertv/pkg/settings"
)

func sourceSettings(s *settings.Settings, src avertv.VideoSource) *settings.Source {
	switch src {
	case avertv.SourceTV:
		return &s.TV
	case avertv.SourceComposite:
		return &s.Composite
	case avertv.SourceSVideo:
		return &s.SVideo
	}
	return nil
}

// ToState converts persisted settings into a device state. Values are not
// validated here; Device.Restore rejects what it cannot use.
func ToState(s *settings.Settings) avertv.State {
	st := avertv.State{
		Source:    avertv.VideoSource(s.VideoSource),
		Audio:     gpio.AudioSource(s.AudioSource),
		Sources:   make(map[avertv.VideoSource]avertv.SourceState, len(avertv.VideoSources)),
		Frequency: s.TunerFrequency,
		Color: avertv.Color{
			Brightness: s.Color.Brightness,
			Contrast:   s.Color.Contrast,
			Hue:        s.Color.Hue,
			Saturation: s.Color.Saturation,
		},
	}
	for _, src := range avertv.VideoSources {
		p := sourceSettings(s, src)
		st.Sources[src] = avertv.SourceState{
			Standard: decoder.Standard(p.VideoStandard),
			Frame: geometry.Frame{
				Start: geometry.Position{X: p.CaptureStartX, Y: p.CaptureStartY},
				End:   geometry.Position{X: p.CaptureEndX, Y: p.CaptureEndY},
			},
		}
	}
	return st
}

// FromState writes st into s, leaving fields st does not carry alone.
func FromState(st avertv.State, s *settings.Settings) {
	s.VideoSource = int(st.Source)
	s.AudioSource = int(st.Audio)
	s.TunerFrequency = st.Frequency
	s.Color = settings.Color{
		Brightness: st.Color.Brightness,
		Contrast:   st.Color.Contrast,
		Hue:        st.Color.Hue,
		Saturation: st.Color.Saturation,
	}
	for src, ss := range st.Sources {
		p := sourceSettings(s, src)
		if p == nil {
			continue
		}
		*p = settings.Source{
			VideoStandard: int(ss.Standard),
			CaptureStartX: ss.Frame.Start.X,
			CaptureStartY: ss.Frame.Start.Y,
			CaptureEndX:   ss.Frame.End.X,
			CaptureEndY:   ss.Frame.End.Y,
		}
	}
}
