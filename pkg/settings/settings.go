// Package settings persists the device state between runs as YAML.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Source is the persisted state of one video input. Coordinates are in
// decoder units.
type Source struct {
	VideoStandard int `yaml:"video_standard"`
	CaptureStartX int `yaml:"capture_start_x"`
	CaptureStartY int `yaml:"capture_start_y"`
	CaptureEndX   int `yaml:"capture_end_x"`
	CaptureEndY   int `yaml:"capture_end_y"`
}

type Color struct {
	Brightness float64 `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
	Hue        float64 `yaml:"hue"`
	Saturation float64 `yaml:"saturation"`
}

type Settings struct {
	// VideoSource is 0 for TV, 1 for Composite, 2 for S-Video.
	VideoSource int `yaml:"video_source"`
	// AudioSource is 0 for none, 1 for aux, 2 for the tuner.
	AudioSource    int     `yaml:"audio_source"`
	TunerFrequency float64 `yaml:"tuner_frequency"`
	ChannelIndex   int     `yaml:"channel_index"`
	Color          Color   `yaml:"color"`

	TV        Source `yaml:"tv"`
	Composite Source `yaml:"composite"`
	SVideo    Source `yaml:"svideo"`
}

func defaultSource() Source {
	return Source{CaptureEndX: 1280, CaptureEndY: 240}
}

func Default() *Settings {
	return &Settings{
		TunerFrequency: 500.25,
		Color:          Color{Brightness: 0.5, Contrast: 0.5, Hue: 0, Saturation: 0.5},
		TV:             defaultSource(),
		Composite:      defaultSource(),
		SVideo:         defaultSource(),
	}
}

// Load reads the settings at path. When the file does not exist the
// defaults are written there and returned.
func Load(path string) (*Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.Save(path); err != nil {
			return nil, fmt.Errorf("writing default settings: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return s, nil
}

// Save writes the settings to path through a temporary file in the same
// directory, so a crash never leaves a truncated file behind.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
