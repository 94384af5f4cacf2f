// Package payloads defines the JSON message bodies exchanged on the AVR MQTT
// bus. Each topic carries exactly one payload shape; the registry maps topic
// names to their Go types and the serializer converts between raw bytes,
// loosely typed values and the registered types.
package payloads
