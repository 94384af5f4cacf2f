package mqtt

import "fmt"

// Handler processes one received message. Payload is the value returned by
// payloads.Deserialize for the message topic.
type Handler func(topic string, payload any) error

// Handle adapts a function taking a concrete payload type.
//
//	mqtt.Handle(func(p payloads.PCMServo) error { return pcc.SetServoOpenClose(p.Servo, pcc.ServoOpen) })
func Handle[T any](fn func(T) error) Handler {
	return func(topic string, payload any) error {
		p, ok := payload.(T)
		if !ok {
			var want T
			return fmt.Errorf("%w: %s: want %T, got %T", ErrHandlerPayload, topic, want, payload)
		}
		return fn(p)
	}
}

// HandleEmpty adapts a function for topics that carry no data.
func HandleEmpty(fn func() error) Handler {
	return func(string, any) error { return fn() }
}

// HandleRaw adapts a function that wants the topic and the decoded payload
// as is, usually a fallback for wildcard subscriptions.
func HandleRaw(fn func(topic string, payload any) error) Handler {
	return Handler(fn)
}
