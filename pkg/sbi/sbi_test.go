package sbi

import (
	"errors"
	"testing"

	"github.com/kevmo314/go-avertv/pkg/registers"
	"github.com/kevmo314/go-avertv/pkg/transport"
	tt "github.com/kevmo314/go-avertv/pkg/transport/transporttest"
)

func TestWrite(t *testing.T) {
	f := tt.New()
	b := New(f, Config{})
	if err := b.Select(0xBA); err != nil {
		t.Fatal(err)
	}
	if err := b.Write(0x28, 0x04); err != nil {
		t.Fatalf("Write() = %v, want nil", err)
	}
	want := tt.Seq(tt.Select(0xBA), tt.SBIWrite(0x28, 0x04))
	if d := tt.Diff(f.Recorded(), want); d != "" {
		t.Error(d)
	}
	if got := f.Chip(0xBA)[0x28]; got != 0x04 {
		t.Errorf("reg 0x28 = 0x%02x, want 0x04", got)
	}
}

func TestRead(t *testing.T) {
	f := tt.New()
	f.Chip(0xBA)[0x8C] = 0x83
	b := New(f, Config{})
	_ = b.Select(0xBA)
	f.Reset()

	v, err := b.Read(0x8C)
	if err != nil {
		t.Fatalf("Read() = %v, want nil", err)
	}
	if v != 0x83 {
		t.Errorf("Read() = 0x%02x, want 0x83", v)
	}
	if d := tt.Diff(f.Recorded(), tt.SBIRead(0x8C)); d != "" {
		t.Error(d)
	}
}

func TestWriteTimeout(t *testing.T) {
	f := tt.New()
	f.StallSBI = true
	b := New(f, Config{MaxTries: 7})

	err := b.Write(0x01, 0x02)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Write() = %v, want ErrTimeout", err)
	}
	polls := 0
	for _, op := range f.Recorded() {
		if !op.Write && op.Index == registers.SerialStatus {
			polls++
		}
	}
	if polls != 7 {
		t.Errorf("status polls = %d, want 7", polls)
	}
}

func TestReadTimeoutStillReadsData(t *testing.T) {
	f := tt.New()
	f.StallSBI = true
	f.Regs[registers.SerialReadData] = 0x55
	b := New(f, Config{MaxTries: 3})

	v, err := b.Read(0x88)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Read() error = %v, want ErrTimeout", err)
	}
	if v != 0x55 {
		t.Errorf("Read() = 0x%02x, want 0x55", v)
	}
	ops := f.Recorded()
	if last := ops[len(ops)-1]; last != tt.R(registers.SerialReadData) {
		t.Errorf("last op = %v, want data register read", last)
	}
}

func TestDefaultMaxTries(t *testing.T) {
	f := tt.New()
	f.StallSBI = true
	b := New(f, Config{})
	_ = b.Write(0, 0)
	if got := len(f.Recorded()) - 3; got != DefaultMaxTries {
		t.Errorf("status polls = %d, want %d", got, DefaultMaxTries)
	}
}

func TestTransportErrorIsFatal(t *testing.T) {
	f := tt.New()
	f.Err = func(op tt.Op) error {
		if op.Index == registers.SerialControl {
			return errors.New("pipe")
		}
		return nil
	}
	b := New(f, Config{})
	err := b.Write(0x00, 0x01)
	if !transport.IsFatal(err) {
		t.Errorf("Write() = %v, want transport error", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("transport failure reported as timeout")
	}
}

func TestTxSingleAddress(t *testing.T) {
	f := tt.New()
	b := New(f, Config{})
	if err := b.Tx(0xBA, []byte{0x09, 0x80, 0x81}, nil); err != nil {
		t.Fatalf("Tx() = %v", err)
	}
	want := tt.Seq(tt.Select(0xBA), tt.SBIWrite(0x09, 0x80), tt.SBIWrite(0x0A, 0x81))
	if d := tt.Diff(f.Recorded(), want); d != "" {
		t.Error(d)
	}

	r := make([]byte, 2)
	if err := b.Tx(0xBA, []byte{0x09}, r); err != nil {
		t.Fatalf("Tx() = %v", err)
	}
	if r[0] != 0x80 || r[1] != 0x81 {
		t.Errorf("Tx() read = % x, want 80 81", r)
	}
}

func TestTxTwoLevelAddress(t *testing.T) {
	f := tt.New()
	b := New(f, Config{})
	if err := b.Tx(0x4286, []byte{0x00, 0xD6}, nil); err != nil {
		t.Fatalf("Tx() = %v", err)
	}
	want := tt.Seq(tt.Select(0x42), tt.Select(0x86), tt.SBIWrite(0x00, 0xD6))
	if d := tt.Diff(f.Recorded(), want); d != "" {
		t.Error(d)
	}
}

func TestTxContinuesAfterTimeout(t *testing.T) {
	f := tt.New()
	f.StallSBI = true
	b := New(f, Config{MaxTries: 1})
	err := b.Tx(0xBA, []byte{0x00, 1, 2}, nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Tx() = %v, want ErrTimeout", err)
	}
	writes := 0
	for _, op := range f.Recorded() {
		if op == tt.W(registers.SerialControl, 0x05) {
			writes++
		}
	}
	if writes != 2 {
		t.Errorf("write triggers = %d, want 2", writes)
	}
}

func TestTxEmptyWrite(t *testing.T) {
	b := New(tt.New(), Config{})
	if err := b.Tx(0xBA, nil, nil); err != nil {
		t.Errorf("Tx(nil, nil) = %v, want nil", err)
	}
	if err := b.Tx(0xBA, nil, make([]byte, 1)); err == nil {
		t.Error("Tx(nil, r) = nil, want error")
	}
}
