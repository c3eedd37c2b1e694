// Package geometry converts between pixel rectangles and the decoder's
// capture frame coordinates. The decoder counts x in half-pixels and y in
// field lines, so x doubles and y halves on the way in.
package geometry

const (
	MaxWidth  = 720
	MaxHeight = 576
	// MaxFieldLine is the last field line the decoder can capture.
	MaxFieldLine = 287
)

type Position struct {
	X, Y int
}

type Size struct {
	Width, Height int
}

// Frame is a capture window in decoder coordinates.
type Frame struct {
	Start, End Position
}

// Size returns the pixel size of the frame.
func (f Frame) Size() Size {
	return Size{
		Width:  (f.End.X - f.Start.X) / 2,
		Height: (f.End.Y - f.Start.Y) * 2,
	}
}

// ToPixelRect converts a decoder frame to pixel coordinates.
func ToPixelRect(f Frame) (start, end Position, size Size) {
	start = Position{X: f.Start.X / 2, Y: f.Start.Y * 2}
	end = Position{X: f.End.X / 2, Y: f.End.Y * 2}
	return start, end, f.Size()
}

// ToDecoderFrame converts a pixel rectangle to decoder coordinates.
// Negative origins become zero and the size is capped at 720x576; no other
// validation happens here.
func ToDecoderFrame(x, y, w, h int) Frame {
	x = max(x, 0)
	y = max(y, 0)
	w = min(w, MaxWidth)
	h = min(h, MaxHeight)
	return Frame{
		Start: Position{X: 2 * x, Y: y / 2},
		End:   Position{X: 2 * (x + w), Y: (y + h) / 2},
	}
}

// ClampFieldLines caps the frame's end line at MaxFieldLine.
func ClampFieldLines(f Frame) Frame {
	f.End.Y = min(f.End.Y, MaxFieldLine)
	return f
}
