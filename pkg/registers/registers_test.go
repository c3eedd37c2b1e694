package registers

import "testing"

func TestAddressString(t *testing.T) {
	tests := []struct {
		addr Address
		want string
	}{
		{SerialControl, "SICTL(0x200)"},
		{CaptureEndYHigh, "CFEPO.ENY_H(0x117)"},
		{Address(0x2ff), "0x2ff"},
	}
	for _, tt := range tests {
		if got := tt.addr.String(); got != tt.want {
			t.Errorf("Address(0x%03x).String() = %q, want %q", uint16(tt.addr), got, tt.want)
		}
	}
}

func TestBlocksDoNotOverlap(t *testing.T) {
	for i, a := range Blocks {
		for _, b := range Blocks[i+1:] {
			aEnd := int(a.Start) + a.Len
			bEnd := int(b.Start) + b.Len
			if int(a.Start) < bEnd && int(b.Start) < aEnd {
				t.Errorf("block %s overlaps %s", a.Name, b.Name)
			}
		}
	}
}
