package transporttest

import (
	"errors"
	"testing"

	"github.com/kevmo314/go-avertv/pkg/registers"
	"github.com/kevmo314/go-avertv/pkg/transport"
)

func TestFakeEmulatesSerialBus(t *testing.T) {
	f := New()
	_ = f.WriteRegister(registers.SerialDeviceSelect, 0xBA)
	_ = f.WriteRegister(registers.SerialWriteAddress, 0x28)
	_ = f.WriteRegister(registers.SerialWriteData, 0x04)
	_ = f.WriteRegister(registers.SerialControl, 0x05)

	if got := f.Chip(0xBA)[0x28]; got != 0x04 {
		t.Errorf("chip 0xBA reg 0x28 = 0x%02x, want 0x04", got)
	}
	if got, _ := f.ReadRegister(registers.SerialStatus); got != 0x04 {
		t.Errorf("status after write = 0x%02x, want 0x04", got)
	}

	_ = f.WriteRegister(registers.SerialReadAddress, 0x28)
	_ = f.WriteRegister(registers.SerialControl, 0x20)
	if got, _ := f.ReadRegister(registers.SerialStatus); got != 0x01 {
		t.Errorf("status after read = 0x%02x, want 0x01", got)
	}
	if got, _ := f.ReadRegister(registers.SerialReadData); got != 0x04 {
		t.Errorf("read data = 0x%02x, want 0x04", got)
	}
}

func TestFakeStall(t *testing.T) {
	f := New()
	f.StallSBI = true
	_ = f.WriteRegister(registers.SerialControl, 0x05)
	if got, _ := f.ReadRegister(registers.SerialStatus); got != 0 {
		t.Errorf("status = 0x%02x, want 0", got)
	}
}

func TestFakeErr(t *testing.T) {
	f := New()
	boom := errors.New("boom")
	f.Err = func(op Op) error {
		if op.Index == registers.DecoderControl {
			return boom
		}
		return nil
	}
	if err := f.WriteRegister(registers.GPIOValueLow, 1); err != nil {
		t.Fatalf("WriteRegister() = %v, want nil", err)
	}
	err := f.WriteRegister(registers.DecoderControl, 0xB3)
	if !transport.IsFatal(err) || !errors.Is(err, boom) {
		t.Errorf("WriteRegister() = %v, want transport error wrapping boom", err)
	}
}

func TestDiff(t *testing.T) {
	a := SBIWrite(0x28, 0x02)
	if d := Diff(a, SBIWrite(0x28, 0x02)); d != "" {
		t.Errorf("Diff() = %q, want empty", d)
	}
	if d := Diff(a, SBIWrite(0x28, 0x04)); d == "" {
		t.Error("Diff() = empty, want mismatch")
	}
	if d := Diff(a, a[:2]); d == "" {
		t.Error("Diff() = empty, want length mismatch")
	}
}
