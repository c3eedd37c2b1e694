package transport

import (
	"fmt"
	"sync/atomic"
	"time"

	usb "github.com/kevmo314/go-usb"
	"golang.org/x/sys/unix"

	"github.com/kevmo314/go-avertv/pkg/registers"
	"github.com/kevmo314/go-avertv/pkg/requests"
)

const DefaultTimeout = time.Second

// USBDEVFS_RESET, _IO('U', 20).
const usbdevfsReset = 0x5514

// USB is a RegisterTransport backed by vendor control transfers on an open
// device handle.
type USB struct {
	handle  *usb.DeviceHandle
	fd      int
	timeout time.Duration
	closed  atomic.Bool
}

// NewUSB wraps an already open usbfs file descriptor.
func NewUSB(fd uintptr, timeout time.Duration) (*USB, error) {
	handle, err := usb.WrapSysDevice(int(fd))
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &USB{handle: handle, fd: int(fd), timeout: timeout}, nil
}

// OpenUSB opens the usbfs node at path, e.g. /dev/bus/usb/001/004.
func OpenUSB(path string, timeout time.Duration) (*USB, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	u, err := NewUSB(uintptr(fd), timeout)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("wrap %s: %w", path, err)
	}
	return u, nil
}

func (u *USB) WriteRegister(index registers.Address, value uint8) error {
	if u.closed.Load() {
		return &Error{Op: "write", Index: index, Err: ErrClosed}
	}
	if _, err := u.handle.ControlTransfer(
		uint8(requests.RequestTypeVendorDeviceSetRequest), /* bmRequestType */
		uint8(requests.RequestCodeSetRegister),            /* bRequest */
		uint16(value),                                     /* wValue */
		uint16(index),                                     /* wIndex */
		nil,
		u.timeout,
	); err != nil {
		return &Error{Op: "write", Index: index, Err: err}
	}
	return nil
}

func (u *USB) ReadRegister(index registers.Address) (uint8, error) {
	if u.closed.Load() {
		return 0, &Error{Op: "read", Index: index, Err: ErrClosed}
	}
	buf := make([]byte, 1)
	n, err := u.handle.ControlTransfer(
		uint8(requests.RequestTypeVendorDeviceGetRequest), /* bmRequestType */
		uint8(requests.RequestCodeGetRegister),            /* bRequest */
		0,                                                 /* wValue */
		uint16(index),                                     /* wIndex */
		buf,
		u.timeout,
	)
	if err != nil {
		return 0, &Error{Op: "read", Index: index, Err: err}
	}
	if n != 1 {
		return 0, &Error{Op: "read", Index: index, Err: ErrShortRead}
	}
	return buf[0], nil
}

// Reset issues a USB port reset on the device.
func (u *USB) Reset() error {
	if u.closed.Load() {
		return ErrClosed
	}
	if err := unix.IoctlSetInt(u.fd, usbdevfsReset, 0); err != nil {
		return fmt.Errorf("usb reset: %w", err)
	}
	return nil
}

func (u *USB) Close() error {
	if u.closed.Swap(true) {
		return nil
	}
	return u.handle.Close()
}

// Probe reads one register to check that the device answers.
func (u *USB) Probe() error {
	_, err := u.ReadRegister(registers.GPIOValueLow)
	return err
}
