package decoder

import (
	"github.com/kevmo314/go-avertv/pkg/geometry"
	"github.com/kevmo314/go-avertv/pkg/registers"
)

// SetCaptureWindow programs the capture frame. The end line is clamped to
// geometry.MaxFieldLine before it is written; the clamped frame and its
// pixel size are returned.
func (c *Controller) SetCaptureWindow(f geometry.Frame) (geometry.Frame, geometry.Size, error) {
	f = geometry.ClampFieldLines(f)
	for _, w := range []struct {
		low, high registers.Address
		v         int
	}{
		{registers.CaptureStartXLow, registers.CaptureStartXHigh, f.Start.X},
		{registers.CaptureStartYLow, registers.CaptureStartYHigh, f.Start.Y},
		{registers.CaptureEndXLow, registers.CaptureEndXHigh, f.End.X},
		{registers.CaptureEndYLow, registers.CaptureEndYHigh, f.End.Y},
	} {
		if err := c.regs.WriteRegister(w.low, uint8(w.v&0xFF)); err != nil {
			return f, f.Size(), err
		}
		if err := c.regs.WriteRegister(w.high, uint8((w.v>>8)&0xFF)); err != nil {
			return f, f.Size(), err
		}
	}
	return f, f.Size(), nil
}

// CaptureWindow reads the capture frame back from the controller.
func (c *Controller) CaptureWindow() (geometry.Frame, error) {
	var v [4]int
	for i, p := range [][2]registers.Address{
		{registers.CaptureStartXLow, registers.CaptureStartXHigh},
		{registers.CaptureEndXLow, registers.CaptureEndXHigh},
		{registers.CaptureStartYLow, registers.CaptureStartYHigh},
		{registers.CaptureEndYLow, registers.CaptureEndYHigh},
	} {
		lo, err := c.regs.ReadRegister(p[0])
		if err != nil {
			return geometry.Frame{}, err
		}
		hi, err := c.regs.ReadRegister(p[1])
		if err != nil {
			return geometry.Frame{}, err
		}
		v[i] = 256*int(hi) + int(lo)
	}
	return geometry.Frame{
		Start: geometry.Position{X: v[0], Y: v[2]},
		End:   geometry.Position{X: v[1], Y: v[3]},
	}, nil
}
