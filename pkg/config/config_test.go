package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
device:
  vendor_id: 0x07ca
  product_id: 0x0026
  path: /dev/bus/usb/001/004
  sbi_max_tries: 200
  tuner_settle: 750ms
settings_file: /var/lib/avertv/settings.yaml
streamer:
  enabled: true
  binary: /usr/local/bin/m026-streamer
  device: /dev/video7
mqtt:
  enabled: true
  broker: tcp://broker:1883
  qos: 0
channels:
  - name: E5
    frequency: 175.25
  - name: E21
    frequency: 471.25
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.VendorID != 0x07CA || cfg.Device.ProductID != 0x0026 {
		t.Errorf("Device IDs = %04x:%04x, want 07ca:0026", cfg.Device.VendorID, cfg.Device.ProductID)
	}
	if cfg.Device.Path != "/dev/bus/usb/001/004" {
		t.Errorf("Device.Path = %q, want %q", cfg.Device.Path, "/dev/bus/usb/001/004")
	}
	if cfg.Device.SBIMaxTries != 200 {
		t.Errorf("Device.SBIMaxTries = %d, want 200", cfg.Device.SBIMaxTries)
	}
	if cfg.Device.TunerSettle != 750*time.Millisecond {
		t.Errorf("Device.TunerSettle = %v, want 750ms", cfg.Device.TunerSettle)
	}
	if cfg.Device.ClockDivider != 0x1E {
		t.Errorf("Device.ClockDivider = 0x%02x, want default 0x1e", cfg.Device.ClockDivider)
	}
	if cfg.Streamer.Device != "/dev/video7" {
		t.Errorf("Streamer.Device = %q, want %q", cfg.Streamer.Device, "/dev/video7")
	}
	if len(cfg.Streamer.Args) == 0 {
		t.Error("Streamer.Args lost its defaults")
	}
	if len(cfg.Channels) != 2 || cfg.Channels[1].Frequency != 471.25 {
		t.Errorf("Channels = %+v", cfg.Channels)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Device.SBIMaxTries != 1000 {
		t.Errorf("Device.SBIMaxTries = %d, want 1000", cfg.Device.SBIMaxTries)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("device: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AVERTV_DEVICE_PATH", "/dev/bus/usb/002/009")
	t.Setenv("AVERTV_MQTT_ENABLED", "true")
	t.Setenv("AVERTV_MQTT_BROKER", "tcp://env:1883")
	t.Setenv("AVERTV_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Device.Path != "/dev/bus/usb/002/009" {
		t.Errorf("Device.Path = %q", cfg.Device.Path)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker != "tcp://env:1883" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestEnvOverrides_BadBool(t *testing.T) {
	t.Setenv("AVERTV_MQTT_ENABLED", "maybe")
	if _, err := Load(""); err == nil {
		t.Error("Load() expected error for bad AVERTV_MQTT_ENABLED")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"zero tries", func(c *Config) { c.Device.SBIMaxTries = 0 }, "sbi_max_tries"},
		{"bad qos", func(c *Config) { c.MQTT.QoS = 3 }, "mqtt.qos"},
		{"no settings file", func(c *Config) { c.SettingsFile = "" }, "settings_file"},
		{"streamer without binary", func(c *Config) {
			c.Streamer.Enabled = true
			c.Streamer.Binary = ""
		}, "streamer.binary"},
		{"channel out of range", func(c *Config) {
			c.Channels = []Channel{{Name: "X", Frequency: 1200}}
		}, "channels[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}
