// Package tuner programs the LG TALN-M205T analog tuner through the serial
// bus. The tuner sits behind a two-level address: a slave address followed
// by a subaddress select.
package tuner

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/kevmo314/go-avertv/pkg/decoder"
	"github.com/kevmo314/go-avertv/pkg/sbi"
)

const (
	slaveAddress     = 0x42
	frequencySubaddr = 0xC2
	ifSubaddr        = 0x86

	controlByte = 0x8E
	vfrqOffset  = 618

	// DefaultSettle is how long the tuner needs after a retune before the
	// decoder's lock bits mean anything.
	DefaultSettle = 500 * time.Millisecond

	// DefaultFrequency is used when no frequency was ever tuned.
	DefaultFrequency = 500.25

	// Tunable range in MHz.
	MinFrequency = 40.0
	MaxFrequency = 900.0
)

var ErrFrequencyRange = errors.New("tuner: frequency out of range")

// CheckFrequency reports whether mhz is inside [MinFrequency, MaxFrequency].
func CheckFrequency(mhz float64) error {
	if !(mhz >= MinFrequency && mhz <= MaxFrequency) {
		return fmt.Errorf("%w: %.2f MHz outside %.0f-%.0f", ErrFrequencyRange, mhz, MinFrequency, MaxFrequency)
	}
	return nil
}

// Band select bytes.
const (
	BandNone uint8 = 0x00
	BandLow  uint8 = 0x01
	BandMid  uint8 = 0x02
	BandHigh uint8 = 0x08
)

// FrequencyToBand returns the band select byte for mhz. Upper bounds are
// inclusive; the gaps between bands select BandNone.
func FrequencyToBand(mhz float64) uint8 {
	switch {
	case mhz > 45 && mhz <= 142:
		return BandLow
	case mhz > 147 && mhz <= 425:
		return BandMid
	case mhz > 431 && mhz <= 900:
		return BandHigh
	}
	return BandNone
}

// TuningWord returns the 16-bit divider word for mhz.
func TuningWord(mhz float64) uint16 {
	return uint16(math.Round(16*mhz) + vfrqOffset)
}

// StatusReader reads the decoder's sync lock.
type StatusReader interface {
	SyncLock() (decoder.Lock, error)
}

type Config struct {
	// Settle defaults to DefaultSettle if zero.
	Settle time.Duration
	Logger *slog.Logger
	// Sleep replaces time.Sleep, for tests.
	Sleep func(time.Duration)
}

type Controller struct {
	bus    *sbi.Bus
	status StatusReader
	settle time.Duration
	sleep  func(time.Duration)
	log    *slog.Logger
}

func New(bus *sbi.Bus, status StatusReader, cfg Config) *Controller {
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{bus: bus, status: status, settle: cfg.Settle, sleep: cfg.Sleep, log: cfg.Logger}
}

// SetFrequency writes the tuning word and the band select byte. The
// tuning word's high byte travels in the register slot of the transfer.
// Frequencies outside the tunable range fail with ErrFrequencyRange before
// anything is written.
func (c *Controller) SetFrequency(mhz float64) error {
	if err := CheckFrequency(mhz); err != nil {
		return err
	}
	vfrq := TuningWord(mhz)
	band := FrequencyToBand(mhz)

	var to sbi.Timeouts
	if err := to.Check(c.bus.Select(slaveAddress)); err != nil {
		return err
	}
	if err := to.Check(c.bus.Select(frequencySubaddr)); err != nil {
		return err
	}
	if err := to.Check(c.bus.Write(uint8(vfrq>>8), uint8(vfrq))); err != nil {
		return err
	}
	if err := to.Check(c.bus.Write(controlByte, band)); err != nil {
		return err
	}
	c.log.Debug("tuner frequency set", "mhz", mhz, "vfrq", vfrq, "band", band)
	return to.Err()
}

// Tune sets the frequency, waits for the tuner to settle and reads the
// decoder's sync lock. The IF/AGC setup is written afterwards whatever the
// lock state. A missing lock is not an error; errors carry only transfer
// failures and serial bus timeouts.
func (c *Controller) Tune(mhz float64) (decoder.Lock, error) {
	var to sbi.Timeouts
	if err := to.Check(c.SetFrequency(mhz)); err != nil {
		return decoder.Lock{}, err
	}
	c.sleep(c.settle)
	lock, err := c.status.SyncLock()
	if err := to.Check(err); err != nil {
		return decoder.Lock{}, err
	}
	if err := to.Check(c.bus.Tx(slaveAddress<<8|ifSubaddr, []byte{0x00, 0xD6, 0x70, 0x49}, nil)); err != nil {
		return lock, err
	}
	c.log.Info("tuned", "mhz", mhz, "vertical_lock", lock.Vertical, "horizontal_lock", lock.Horizontal)
	return lock, to.Err()
}
