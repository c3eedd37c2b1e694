// Package sbi drives the DC1100's serial bus bridge, which reaches the
// devices behind the controller (video decoder, tuner) through a handful of
// bridge registers.
//
// A write loads the target register and data, triggers the transfer and
// polls the status register for completion. A read loads the target
// register, triggers a read and polls the status register before fetching the
// data register. The bridge transfers to whichever device was last selected;
// Write and Read never select on their own.
package sbi

import (
	"errors"
	"fmt"
	"log/slog"

	"tinygo.org/x/drivers"

	"github.com/kevmo314/go-avertv/pkg/registers"
	"github.com/kevmo314/go-avertv/pkg/transport"
)

// DefaultMaxTries bounds the status polling loop.
const DefaultMaxTries = 1000

// Control and status codes of SICTL.
const (
	ctrlWrite = 0x05 // retry on failed ACK, access now
	ctrlRead  = 0x20 // read now

	statusWriteDone = 0x04
	statusReadDone  = 0x01
)

// ErrTimeout is returned when the status register did not report
// completion within MaxTries polls. It is not fatal: the device is usually
// still usable.
var ErrTimeout = errors.New("sbi: timeout")

type Config struct {
	// MaxTries defaults to DefaultMaxTries if zero.
	MaxTries int
	Logger   *slog.Logger
}

type Bus struct {
	regs     transport.RegisterTransport
	maxTries int
	log      *slog.Logger
}

var _ drivers.I2C = (*Bus)(nil)

func New(regs transport.RegisterTransport, cfg Config) *Bus {
	if cfg.MaxTries <= 0 {
		cfg.MaxTries = DefaultMaxTries
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Bus{regs: regs, maxTries: cfg.MaxTries, log: cfg.Logger}
}

// Select routes subsequent transfers to the device with the given address
// byte.
func (b *Bus) Select(addr uint8) error {
	return b.regs.WriteRegister(registers.SerialDeviceSelect, addr)
}

// SetClockDivider sets the serial clock divider.
func (b *Bus) SetClockDivider(cd uint8) error {
	return b.regs.WriteRegister(registers.SerialClockDivider, cd)
}

// Write stores data into register reg of the selected device.
func (b *Bus) Write(reg, data uint8) error {
	if err := b.regs.WriteRegister(registers.SerialWriteAddress, reg); err != nil {
		return err
	}
	if err := b.regs.WriteRegister(registers.SerialWriteData, data); err != nil {
		return err
	}
	if err := b.regs.WriteRegister(registers.SerialControl, ctrlWrite); err != nil {
		return err
	}
	if err := b.poll(statusWriteDone); err != nil {
		return fmt.Errorf("write reg 0x%02x: %w", reg, err)
	}
	return nil
}

// Read fetches register reg of the selected device. On ErrTimeout the data
// register is still read and its value returned alongside the error.
func (b *Bus) Read(reg uint8) (uint8, error) {
	if err := b.regs.WriteRegister(registers.SerialReadAddress, reg); err != nil {
		return 0, err
	}
	if err := b.regs.WriteRegister(registers.SerialControl, ctrlRead); err != nil {
		return 0, err
	}
	perr := b.poll(statusReadDone)
	v, err := b.regs.ReadRegister(registers.SerialReadData)
	if err != nil {
		return 0, err
	}
	if perr != nil {
		return v, fmt.Errorf("read reg 0x%02x: %w", reg, perr)
	}
	return v, nil
}

func (b *Bus) poll(done uint8) error {
	for i := 0; i < b.maxTries; i++ {
		v, err := b.regs.ReadRegister(registers.SerialStatus)
		if err != nil {
			return err
		}
		if v == done {
			return nil
		}
	}
	return ErrTimeout
}

// Tx implements drivers.I2C on top of the bridge. An addr above 0xFF is a
// two-level address: the high byte is selected first, then the low byte.
// w[0] names the first register; the rest of w is written to consecutive
// registers and r is filled from consecutive registers starting at w[0].
//
// A timeout on one register does not stop the transaction; the timeouts are
// joined and returned at the end. Transport errors return immediately.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if len(w) == 0 {
		if len(r) == 0 {
			return nil
		}
		return errors.New("sbi: read without register")
	}
	if addr > 0xFF {
		if err := b.Select(uint8(addr >> 8)); err != nil {
			return err
		}
	}
	if err := b.Select(uint8(addr)); err != nil {
		return err
	}

	var to Timeouts
	reg := w[0]
	for i, data := range w[1:] {
		if err := to.Check(b.Write(reg+uint8(i), data)); err != nil {
			return err
		}
	}
	for i := range r {
		v, err := b.Read(reg + uint8(i))
		if err := to.Check(err); err != nil {
			return err
		}
		r[i] = v
	}
	if err := to.Err(); err != nil {
		b.log.Debug("sbi transaction timed out", "addr", fmt.Sprintf("0x%x", addr), "reg", fmt.Sprintf("0x%02x", reg), "timeouts", to.Len())
		return err
	}
	return nil
}

// Timeouts collects ErrTimeout results of a multi-step sequence so the
// sequence can carry on past them. The zero value is ready to use.
type Timeouts struct {
	errs []error
}

// Check records err if it is a timeout and returns nil; any other error is
// returned unchanged.
func (t *Timeouts) Check(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) {
		t.errs = append(t.errs, err)
		return nil
	}
	return err
}

func (t *Timeouts) Len() int { return len(t.errs) }

// Err joins the recorded timeouts, or returns nil if there were none.
func (t *Timeouts) Err() error { return errors.Join(t.errs...) }
