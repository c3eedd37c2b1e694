package geometry

import "testing"

func TestToDecoderFrame(t *testing.T) {
	tests := []struct {
		name       string
		x, y, w, h int
		want       Frame
	}{
		{"origin", 0, 0, 640, 480, Frame{Position{0, 0}, Position{1280, 240}}},
		{"offset", 10, 20, 100, 100, Frame{Position{20, 10}, Position{220, 60}}},
		{"negative origin", -5, -8, 100, 100, Frame{Position{0, 0}, Position{200, 50}}},
		{"oversize", 0, 0, 1000, 1000, Frame{Position{0, 0}, Position{1440, 288}}},
		{"odd y", 0, 3, 10, 10, Frame{Position{0, 1}, Position{20, 6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToDecoderFrame(tt.x, tt.y, tt.w, tt.h); got != tt.want {
				t.Errorf("ToDecoderFrame(%d, %d, %d, %d) = %v, want %v", tt.x, tt.y, tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	f := ToDecoderFrame(32, 40, 640, 480)
	start, end, size := ToPixelRect(f)
	if start != (Position{32, 40}) {
		t.Errorf("start = %v, want {32 40}", start)
	}
	if end != (Position{672, 520}) {
		t.Errorf("end = %v, want {672 520}", end)
	}
	if size != (Size{640, 480}) {
		t.Errorf("size = %v, want {640 480}", size)
	}
}

func TestRoundTripOddY(t *testing.T) {
	start, _, _ := ToPixelRect(ToDecoderFrame(0, 3, 10, 10))
	if start.Y != 2 {
		t.Errorf("start.Y = %d, want 2", start.Y)
	}
}

func TestClampFieldLines(t *testing.T) {
	f := ClampFieldLines(Frame{Position{0, 0}, Position{1280, 500}})
	if f.End.Y != MaxFieldLine {
		t.Errorf("End.Y = %d, want %d", f.End.Y, MaxFieldLine)
	}
	if got := f.Size(); got != (Size{640, 574}) {
		t.Errorf("Size() = %v, want {640 574}", got)
	}

	in := Frame{Position{0, 0}, Position{1280, 240}}
	if got := ClampFieldLines(in); got != in {
		t.Errorf("ClampFieldLines(%v) = %v, want unchanged", in, got)
	}
}
