package decoder

import "fmt"

// Standard is the content of the video standard register. Only the even
// codes are defined; odd codes are reserved.
type Standard uint8

const (
	Autoswitch Standard = 0x00
	NTSCMJ     Standard = 0x02 // (M, J) NTSC ITU-R BT.601
	PALBGHIN   Standard = 0x04 // (B, G, H, I, N) PAL ITU-R BT.601
	PALM       Standard = 0x06 // (M) PAL ITU-R BT.601
	PALNc      Standard = 0x08 // (Combination-N) PAL ITU-R BT.601
	NTSC443    Standard = 0x0A // NTSC 4.43 ITU-R BT.601
	SECAM      Standard = 0x0C // SECAM ITU-R BT.601
)

// Standards lists the defined codes in register order.
var Standards = []Standard{Autoswitch, NTSCMJ, PALBGHIN, PALM, PALNc, NTSC443, SECAM}

func (s Standard) String() string {
	switch s {
	case Autoswitch:
		return "Autoswitch"
	case NTSCMJ:
		return "NTSC (M, J)"
	case PALBGHIN:
		return "PAL (B, G, H, I, N)"
	case PALM:
		return "PAL (M)"
	case PALNc:
		return "PAL (Nc)"
	case NTSC443:
		return "NTSC 4.43"
	case SECAM:
		return "SECAM"
	}
	return fmt.Sprintf("Reserved(0x%02x)", uint8(s))
}

// Valid reports whether s is one of the defined codes.
func (s Standard) Valid() bool {
	return s <= SECAM && s%2 == 0
}

// Detection is the decoded content of status register #5.
type Detection struct {
	Raw uint8
	// Standard is the detected standard. It is meaningful only when
	// Recognized is set.
	Standard   Standard
	Recognized bool
	// AutoSwitched is set when the decoder switched to Standard on its own
	// while in autoswitch mode.
	AutoSwitched bool
}

const statusAutoSwitched = 1 << 7

// ParseStatus5 decodes the standard field (bits 0 to 3) and the autoswitch
// flag (bit 7) of status register #5.
func ParseStatus5(s5 uint8) Detection {
	d := Detection{Raw: s5, AutoSwitched: s5&statusAutoSwitched != 0}
	switch s5 & 0x0F {
	case 1:
		d.Standard = NTSCMJ
	case 3:
		d.Standard = PALBGHIN
	case 5:
		d.Standard = PALM
	case 7:
		d.Standard = PALNc
	case 9:
		d.Standard = NTSC443
	case 11:
		d.Standard = SECAM
	default:
		return d
	}
	d.Recognized = true
	return d
}
