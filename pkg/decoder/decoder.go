// Package decoder controls the TVP5150AM1 video decoder behind the serial
// bus, plus the capture window registers of the DC1100 that frame its
// output.
//
// The controller keeps no state: every call selects the decoder, performs
// its transfers and returns what it read.
package decoder

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kevmo314/go-avertv/pkg/sbi"
	"github.com/kevmo314/go-avertv/pkg/transport"
)

// Address is the decoder's select byte on the serial bus.
const Address = 0xBA

const (
	regInputSelect    = 0x00
	regMiscControls   = 0x03
	regBrightness     = 0x09
	regSaturation     = 0x0A
	regHue            = 0x0B
	regContrast       = 0x0C
	regSharedPins     = 0x0F
	regVideoStandard  = 0x28
	regRevisionSelect = 0x30
	regROMVersion     = 0x82
	regLineCountHigh  = 0x84
	regLineCountLow   = 0x85
	regStatus1        = 0x88
)

// Input is a value of the video input source selection register.
type Input uint8

const (
	InputCompositeAIP1A Input = 0x00
	InputSVideo         Input = 0x01 // luminance on AIP1A, chrominance on AIP1B
	InputCompositeAIP1B Input = 0x02
)

// Miscellaneous control register values used during input selection.
const (
	MiscComposite     = 0x6F
	MiscSVideoProbe   = 0x2F
	MiscSVideo        = 0x0D
	sharedPinsDefault = 0x0A
)

var (
	ErrInvalidStatus   = errors.New("decoder: status register must be 1 to 5")
	ErrInvalidStandard = errors.New("decoder: reserved video standard")
)

type Controller struct {
	bus  *sbi.Bus
	regs transport.RegisterTransport
	log  *slog.Logger
}

func New(bus *sbi.Bus, regs transport.RegisterTransport, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{bus: bus, regs: regs, log: log}
}

func (c *Controller) write(reg, v uint8) error {
	return c.bus.Tx(Address, []byte{reg, v}, nil)
}

func (c *Controller) read(reg uint8) (uint8, error) {
	var r [1]byte
	err := c.bus.Tx(Address, []byte{reg}, r[:])
	return r[0], err
}

// Init prepares the decoder for capture: shared pins, BT.656.3 timing and
// the default miscellaneous controls. The ROM version register is read
// first as a presence probe; its value is only logged.
func (c *Controller) Init() error {
	var to sbi.Timeouts
	if err := to.Check(c.bus.Select(Address)); err != nil {
		return err
	}
	rom, err := c.bus.Read(regROMVersion)
	if err := to.Check(err); err != nil {
		return err
	}
	c.log.Debug("decoder rom version", "value", fmt.Sprintf("0x%02x", rom))
	for _, w := range [][2]uint8{
		{regSharedPins, sharedPinsDefault},
		{regRevisionSelect, 0x01},
		{regMiscControls, MiscComposite},
	} {
		if err := to.Check(c.bus.Write(w[0], w[1])); err != nil {
			return err
		}
	}
	return to.Err()
}

// SelectInput reads the miscellaneous controls register, then programs the
// input source and the miscellaneous controls.
func (c *Controller) SelectInput(in Input, misc uint8) error {
	var to sbi.Timeouts
	if _, err := c.read(regMiscControls); to.Check(err) != nil {
		return err
	}
	if err := to.Check(c.bus.Select(Address)); err != nil {
		return err
	}
	if err := to.Check(c.bus.Write(regInputSelect, uint8(in))); err != nil {
		return err
	}
	if err := to.Check(c.bus.Write(regMiscControls, misc)); err != nil {
		return err
	}
	return to.Err()
}

// SetRevisionSelect picks BT.656.3 timing when on, BT.656.4/5 otherwise.
func (c *Controller) SetRevisionSelect(bt6563 bool) error {
	var v uint8
	if bt6563 {
		v = 0x01
	}
	return c.write(regRevisionSelect, v)
}

func (c *Controller) VideoStandard() (Standard, error) {
	v, err := c.read(regVideoStandard)
	return Standard(v), err
}

func (c *Controller) SetVideoStandard(s Standard) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidStandard, s)
	}
	return c.write(regVideoStandard, uint8(s))
}

// Status reads status register n, 1 to 5.
func (c *Controller) Status(n int) (uint8, error) {
	if n < 1 || n > 5 {
		return 0, ErrInvalidStatus
	}
	return c.read(regStatus1 + uint8(n-1))
}

// DetectStandard reads status register #5 and decodes the detected
// standard.
func (c *Controller) DetectStandard() (Detection, error) {
	s5, err := c.Status(5)
	return ParseStatus5(s5), err
}

// Lock is the sync lock state reported by status register #1.
type Lock struct {
	Vertical, Horizontal bool
}

// Detected reports whether both syncs are locked.
func (l Lock) Detected() bool { return l.Vertical && l.Horizontal }

func ParseStatus1(s1 uint8) Lock {
	return Lock{Vertical: s1&(1<<2) != 0, Horizontal: s1&(1<<1) != 0}
}

// SyncLock reads the sync lock bits of status register #1.
func (c *Controller) SyncLock() (Lock, error) {
	s1, err := c.Status(1)
	return ParseStatus1(s1), err
}

// VerticalLineCount returns the number of lines per frame the decoder
// measures on its input.
func (c *Controller) VerticalLineCount() (int, error) {
	var r [2]byte
	err := c.bus.Tx(Address, []byte{regLineCountHigh}, r[:])
	return 256*int(r[0]) + int(r[1]), err
}
