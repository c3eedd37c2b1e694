package avertv

import "errors"

var (
	ErrDeviceNotFound = errors.New("avertv: device not found")
	ErrInvalidSource  = errors.New("avertv: invalid video source")
)
