// Package config loads the YAML configuration of the avertv tools.
//
// Values are layered: built-in defaults, then the file, then AVERTV_*
// environment variables, then validation.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kevmo314/go-avertv/pkg/tuner"
)

type Config struct {
	Device       DeviceConfig   `yaml:"device"`
	SettingsFile string         `yaml:"settings_file"`
	Streamer     StreamerConfig `yaml:"streamer"`
	MQTT         MQTTConfig     `yaml:"mqtt"`
	Logging      LoggingConfig  `yaml:"logging"`
	Channels     []Channel      `yaml:"channels"`
}

type DeviceConfig struct {
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`
	// Path is a usbfs node such as /dev/bus/usb/001/004. Empty scans the
	// bus.
	Path            string        `yaml:"path"`
	TransferTimeout time.Duration `yaml:"transfer_timeout"`
	SBIMaxTries     int           `yaml:"sbi_max_tries"`
	ClockDivider    uint8         `yaml:"clock_divider"`
	TunerSettle     time.Duration `yaml:"tuner_settle"`
	// SourceSwitchSettle is the pause between stopping the streamer and
	// reprogramming the device on a source change.
	SourceSwitchSettle time.Duration `yaml:"source_switch_settle"`
}

type StreamerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Binary  string `yaml:"binary"`
	// Device is the v4l2 loopback device the streamer feeds.
	Device string `yaml:"device"`
	// Args are passed to Binary after substituting {device}, {width} and
	// {height}.
	Args        []string      `yaml:"args"`
	StopTimeout time.Duration `yaml:"stop_timeout"`
}

type MQTTConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Broker      string        `yaml:"broker"`
	ClientID    string        `yaml:"client_id"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	TopicPrefix string        `yaml:"topic_prefix"`
	QoS         int           `yaml:"qos"`
	Timeout     time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type Channel struct {
	Name      string  `yaml:"name"`
	Frequency float64 `yaml:"frequency"`
}

// Load reads path on top of the defaults. A missing file is not an error;
// the defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			VendorID:           0x07CA,
			ProductID:          0x0026,
			TransferTimeout:    time.Second,
			SBIMaxTries:        1000,
			ClockDivider:       0x1E,
			TunerSettle:        500 * time.Millisecond,
			SourceSwitchSettle: time.Second,
		},
		SettingsFile: "avertv-settings.yaml",
		Streamer: StreamerConfig{
			Binary:      "m026-streamer",
			Device:      "/dev/video20",
			Args:        []string{"-d", "{device}", "-w", "{width}", "-h", "{height}"},
			StopTimeout: 3 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "avertv",
			TopicPrefix: "avertv",
			QoS:         1,
			Timeout:     5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

func applyEnvOverrides(cfg *Config) error {
	// Device
	if v := os.Getenv("AVERTV_DEVICE_PATH"); v != "" {
		cfg.Device.Path = v
	}
	if v := os.Getenv("AVERTV_SETTINGS_FILE"); v != "" {
		cfg.SettingsFile = v
	}

	// Streamer
	if v := os.Getenv("AVERTV_STREAMER_BINARY"); v != "" {
		cfg.Streamer.Binary = v
	}
	if v := os.Getenv("AVERTV_STREAMER_DEVICE"); v != "" {
		cfg.Streamer.Device = v
	}

	// MQTT
	if v := os.Getenv("AVERTV_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("AVERTV_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("AVERTV_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("AVERTV_MQTT_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AVERTV_MQTT_ENABLED: %w", err)
		}
		cfg.MQTT.Enabled = b
	}

	// Logging
	if v := os.Getenv("AVERTV_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Device.VendorID == 0 || c.Device.ProductID == 0 {
		errs = append(errs, "device.vendor_id and device.product_id are required")
	}
	if c.Device.SBIMaxTries < 1 {
		errs = append(errs, "device.sbi_max_tries must be at least 1")
	}
	if c.Device.TransferTimeout < 0 || c.Device.TunerSettle < 0 || c.Device.SourceSwitchSettle < 0 {
		errs = append(errs, "device durations must not be negative")
	}
	if c.SettingsFile == "" {
		errs = append(errs, "settings_file is required")
	}
	if c.Streamer.Enabled {
		if c.Streamer.Binary == "" {
			errs = append(errs, "streamer.binary is required when the streamer is enabled")
		}
		if c.Streamer.StopTimeout <= 0 {
			errs = append(errs, "streamer.stop_timeout must be positive")
		}
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, "mqtt.broker is required when mqtt is enabled")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	for i, ch := range c.Channels {
		if err := tuner.CheckFrequency(ch.Frequency); err != nil {
			errs = append(errs, fmt.Sprintf("channels[%d] %q: %v", i, ch.Name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
