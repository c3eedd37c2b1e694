// Package transport moves single bytes in and out of the DC1100 register
// space. Every call is exactly one USB control transfer; retries belong to
// the layers above.
package transport

import (
	"errors"
	"fmt"

	"github.com/kevmo314/go-avertv/pkg/registers"
)

var (
	ErrClosed    = errors.New("transport closed")
	ErrShortRead = errors.New("short register read")
)

// RegisterTransport reads and writes byte-wide controller registers.
type RegisterTransport interface {
	WriteRegister(index registers.Address, value uint8) error
	ReadRegister(index registers.Address) (uint8, error)
}

// Error reports a failed register transfer. It is fatal to the command that
// issued it.
type Error struct {
	Op    string
	Index registers.Address
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Index, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsFatal reports whether err carries a transport failure.
func IsFatal(err error) bool {
	var te *Error
	return errors.As(err, &te)
}
