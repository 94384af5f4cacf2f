// Package mqtt provides Module, the base for AVR services that talk over
// the MQTT bus. A Module subscribes to the topics of its handler map (or to
// every avr/ topic), decodes each message with the payloads registry before
// dispatching it, and remembers the last payload it sent per topic.
// Transport, reconnection and delivery guarantees are left to Eclipse Paho.
package mqtt
