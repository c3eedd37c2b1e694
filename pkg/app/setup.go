package app

import (
	"fmt"
	"log/slog"

	avertv "github.com/kevmo314/go-avertv"
	"github.com/kevmo314/go-avertv/pkg/config"
	"github.com/kevmo314/go-avertv/pkg/settings"
	"github.com/kevmo314/go-avertv/pkg/status"
	"github.com/kevmo314/go-avertv/pkg/streamer"
)

// FromConfig opens the device named in cfg and builds an App around it with
// the saved settings, the streamer and the status publisher cfg enables.
func FromConfig(cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	dev, err := avertv.Open(avertv.OpenOptions{
		Options: avertv.Options{
			Logger:       log,
			SBIMaxTries:  cfg.Device.SBIMaxTries,
			ClockDivider: cfg.Device.ClockDivider,
			TunerSettle:  cfg.Device.TunerSettle,
		},
		VendorID:  cfg.Device.VendorID,
		ProductID: cfg.Device.ProductID,
		Path:      cfg.Device.Path,
		Timeout:   cfg.Device.TransferTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}

	s, err := settings.Load(cfg.SettingsFile)
	if err != nil {
		dev.Close()
		return nil, err
	}

	pub, err := status.New(cfg.MQTT, log)
	if err != nil {
		log.Warn("status publishing disabled", "err", err)
		pub = status.Noop{}
	}

	o := Options{
		Device:             dev,
		Settings:           s,
		SettingsPath:       cfg.SettingsFile,
		Channels:           cfg.Channels,
		Publisher:          pub,
		SourceSwitchSettle: cfg.Device.SourceSwitchSettle,
		Logger:             log,
	}
	if cfg.Streamer.Enabled {
		o.Streamer = streamer.New(streamer.Config{
			Binary:      cfg.Streamer.Binary,
			Device:      cfg.Streamer.Device,
			Args:        cfg.Streamer.Args,
			StopTimeout: cfg.Streamer.StopTimeout,
			Logger:      log,
		})
	}
	return New(o), nil
}

// Close releases the device. Call it after Shutdown.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dev.Close()
}
