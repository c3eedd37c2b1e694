//go:build integration

package avertv

import (
	"os"
	"testing"
)

// Needs an AVerTV USB2.0 attached. AVERTV_USB_PATH selects a usbfs node;
// otherwise the bus is scanned.
func TestHardwareBringUp(t *testing.T) {
	d, err := Open(OpenOptions{Path: os.Getenv("AVERTV_USB_PATH")})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	if err := d.SetLED(true); err != nil {
		t.Fatal(err)
	}
	if err := d.SelectVideoSource(SourceComposite); err != nil {
		t.Fatal(err)
	}
	det, err := d.DetectVideoStandard()
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("status #5 0x%02x: %v (recognized %v, autoswitched %v)", det.Raw, det.Standard, det.Recognized, det.AutoSwitched)

	n, err := d.VerticalLineCount()
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("vertical line count %d", n)

	x, y, w, h, err := d.CaptureGeometry()
	if err != nil {
		t.Fatal(err)
	}
	if w != 640 || h != 480 {
		t.Errorf("CaptureGeometry() = %d,%d %dx%d, want 640x480", x, y, w, h)
	}

	if err := d.StopCapture(); err != nil {
		t.Fatal(err)
	}
	if err := d.ShutdownAudioRouting(); err != nil {
		t.Fatal(err)
	}
	if err := d.SetLED(false); err != nil {
		t.Fatal(err)
	}
}
