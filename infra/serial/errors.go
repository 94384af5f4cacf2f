package serial

import "errors"

var (
	// ErrOpen is returned when the serial device cannot be opened.
	ErrOpen = errors.New("serial: open failed")
	// ErrClosed is returned by Write after Close.
	ErrClosed = errors.New("serial: client closed")
)
