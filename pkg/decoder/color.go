package decoder

// Color defaults applied on reset.
const (
	DefaultBrightness = 0.5
	DefaultContrast   = 0.5
	DefaultSaturation = 0.5
	DefaultHue        = 0.0
)

const hueGuard = 0.4985

// EncodeLevel maps v in [0, 1] onto a register byte. Out of range values
// are clamped.
func EncodeLevel(v float64) uint8 {
	v = min(max(v, 0), 1)
	return uint8(int(v * 255))
}

// EncodeHue maps v in [-0.5, 0.5] onto the signed hue register. Values past
// the guard band snap to 127/255 and -128/255.
func EncodeHue(v float64) uint8 {
	if v > hueGuard {
		v = 127.0 / 255
	}
	if v < -hueGuard {
		v = -128.0 / 255
	}
	h := int(v * 255)
	if h < 0 {
		h = 255 + h
	}
	return uint8(h)
}

func (c *Controller) SetBrightness(v float64) error {
	return c.write(regBrightness, EncodeLevel(v))
}

func (c *Controller) SetContrast(v float64) error {
	return c.write(regContrast, EncodeLevel(v))
}

func (c *Controller) SetSaturation(v float64) error {
	return c.write(regSaturation, EncodeLevel(v))
}

func (c *Controller) SetHue(v float64) error {
	return c.write(regHue, EncodeHue(v))
}
