// Package transporttest provides an in-memory DC1100 register space for
// tests. It records every transfer and emulates the serial bus bridge so
// that code above the SBI sees the downstream chips' register files.
package transporttest

import (
	"fmt"
	"sync"

	"github.com/kevmo314/go-avertv/pkg/registers"
	"github.com/kevmo314/go-avertv/pkg/transport"
)

// Op is one recorded register transfer.
type Op struct {
	Write bool
	Index registers.Address
	Value uint8
}

func W(index registers.Address, value uint8) Op { return Op{Write: true, Index: index, Value: value} }
func R(index registers.Address) Op              { return Op{Index: index} }

func (o Op) String() string {
	if o.Write {
		return fmt.Sprintf("W %s=0x%02x", o.Index, o.Value)
	}
	return fmt.Sprintf("R %s", o.Index)
}

// Fake is a RegisterTransport. Reads of unknown registers return zero.
// Recorded read ops carry Value zero so expectations can be written without
// knowing what the register held.
type Fake struct {
	mu sync.Mutex

	Regs map[registers.Address]uint8
	// Chips holds the register file of each device behind the serial bus,
	// keyed by the select byte written to the device select register.
	Chips map[uint8]map[uint8]uint8
	Ops   []Op

	// StallSBI keeps the serial status register from ever reporting
	// completion.
	StallSBI bool
	// Err, when set, is returned (wrapped in a *transport.Error) by the
	// next transfer for which it returns non-nil.
	Err func(op Op) error

	selected uint8
}

func New() *Fake {
	return &Fake{
		Regs:  make(map[registers.Address]uint8),
		Chips: make(map[uint8]map[uint8]uint8),
	}
}

var _ transport.RegisterTransport = (*Fake)(nil)

func (f *Fake) WriteRegister(index registers.Address, value uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	op := W(index, value)
	f.Ops = append(f.Ops, op)
	if f.Err != nil {
		if err := f.Err(op); err != nil {
			return &transport.Error{Op: "write", Index: index, Err: err}
		}
	}
	f.Regs[index] = value

	switch index {
	case registers.SerialDeviceSelect:
		f.selected = value
	case registers.SerialControl:
		f.Regs[registers.SerialStatus] = 0
		if f.StallSBI {
			return nil
		}
		switch value {
		case 0x05:
			f.chip(f.selected)[f.Regs[registers.SerialWriteAddress]] = f.Regs[registers.SerialWriteData]
			f.Regs[registers.SerialStatus] = 0x04
		case 0x20:
			f.Regs[registers.SerialReadData] = f.chip(f.selected)[f.Regs[registers.SerialReadAddress]]
			f.Regs[registers.SerialStatus] = 0x01
		}
	}
	return nil
}

func (f *Fake) ReadRegister(index registers.Address) (uint8, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	op := R(index)
	f.Ops = append(f.Ops, op)
	if f.Err != nil {
		if err := f.Err(op); err != nil {
			return 0, &transport.Error{Op: "read", Index: index, Err: err}
		}
	}
	return f.Regs[index], nil
}

func (f *Fake) chip(addr uint8) map[uint8]uint8 {
	c, ok := f.Chips[addr]
	if !ok {
		c = make(map[uint8]uint8)
		f.Chips[addr] = c
	}
	return c
}

// Chip returns the register file of the device with the given select byte.
func (f *Fake) Chip(addr uint8) map[uint8]uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chip(addr)
}

// Reset forgets recorded ops.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ops = nil
}

// Recorded returns a copy of the recorded ops.
func (f *Fake) Recorded() []Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Op(nil), f.Ops...)
}

// SBIWrite is the transfer sequence of one completed serial bus write
// against the fake.
func SBIWrite(reg, data uint8) []Op {
	return []Op{
		W(registers.SerialWriteAddress, reg),
		W(registers.SerialWriteData, data),
		W(registers.SerialControl, 0x05),
		R(registers.SerialStatus),
	}
}

// SBIRead is the transfer sequence of one completed serial bus read.
func SBIRead(reg uint8) []Op {
	return []Op{
		W(registers.SerialReadAddress, reg),
		W(registers.SerialControl, 0x20),
		R(registers.SerialStatus),
		R(registers.SerialReadData),
	}
}

// Select is the transfer of one device select.
func Select(addr uint8) []Op {
	return []Op{W(registers.SerialDeviceSelect, addr)}
}

// Seq concatenates op groups.
func Seq(groups ...[]Op) []Op {
	var out []Op
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Diff returns a description of the first mismatch between got and want, or
// the empty string when they are equal.
func Diff(got, want []Op) string {
	n := len(got)
	if len(want) < n {
		n = len(want)
	}
	for i := 0; i < n; i++ {
		if got[i] != want[i] {
			return fmt.Sprintf("op %d = %v, want %v", i, got[i], want[i])
		}
	}
	if len(got) != len(want) {
		return fmt.Sprintf("got %d ops, want %d", len(got), len(want))
	}
	return ""
}
