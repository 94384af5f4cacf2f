package payloads

import "errors"

// ErrInvalidPayload is returned when a payload does not match the shape
// registered for its topic or is not valid JSON.
var ErrInvalidPayload = errors.New("invalid payload")
