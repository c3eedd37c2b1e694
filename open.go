package avertv

import (
	"fmt"
	"time"

	usb "github.com/kevmo314/go-usb"

	"github.com/kevmo314/go-avertv/pkg/transport"
)

const (
	VendorID  = 0x07CA
	ProductID = 0x0026
)

type OpenOptions struct {
	Options
	// VendorID and ProductID default to the AVerTV USB2.0.
	VendorID  uint16
	ProductID uint16
	// Path is a usbfs node. When empty the bus is scanned for the first
	// matching device.
	Path    string
	Timeout time.Duration
}

// Open finds the device and opens it. The device is not configured; call
// SelectVideoSource to bring it up.
func Open(o OpenOptions) (*Device, error) {
	if o.VendorID == 0 {
		o.VendorID = VendorID
	}
	if o.ProductID == 0 {
		o.ProductID = ProductID
	}
	path := o.Path
	if path == "" {
		var err error
		if path, err = Find(o.VendorID, o.ProductID); err != nil {
			return nil, err
		}
	}
	u, err := transport.OpenUSB(path, o.Timeout)
	if err != nil {
		return nil, err
	}
	if err := u.Probe(); err != nil {
		u.Close()
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	d := New(u, o.Options)
	d.log.Info("device opened", "path", path, "vid", fmt.Sprintf("%04x", o.VendorID), "pid", fmt.Sprintf("%04x", o.ProductID))
	return d, nil
}

// NewDevice wraps an already open usbfs file descriptor, as handed out by
// platforms that broker USB access.
func NewDevice(fd uintptr, opts Options) (*Device, error) {
	u, err := transport.NewUSB(fd, 0)
	if err != nil {
		return nil, err
	}
	return New(u, opts), nil
}

// Find returns the usbfs path of the first device matching vid:pid.
func Find(vid, pid uint16) (string, error) {
	devices, err := usb.DeviceList()
	if err != nil {
		return "", fmt.Errorf("list usb devices: %w", err)
	}
	for _, dev := range devices {
		if dev.Descriptor.VendorID == vid && dev.Descriptor.ProductID == pid {
			return dev.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %04x:%04x", ErrDeviceNotFound, vid, pid)
}
