package pcc

import "errors"

// ErrInvalidArgument is returned when a command argument is out of range.
// Nothing is written in that case.
var ErrInvalidArgument = errors.New("pcc: invalid argument")
