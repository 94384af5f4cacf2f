package mqtt

import "errors"

var (
	// ErrConnect is returned when the initial broker connection fails.
	ErrConnect = errors.New("mqtt connect failed")
	// ErrNotConnected is returned when publishing without a connection.
	ErrNotConnected = errors.New("mqtt not connected")
	// ErrPublish is returned when the broker does not accept a publish.
	ErrPublish = errors.New("mqtt publish failed")
	// ErrSubscribe is returned when a subscription is rejected.
	ErrSubscribe = errors.New("mqtt subscribe failed")
	// ErrHandlerPayload is returned by typed handlers given the wrong payload type.
	ErrHandlerPayload = errors.New("unexpected payload type")
)
