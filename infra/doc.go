// Package infra contains technical adapters such as the MQTT module, the
// serial link and metrics exporters. These packages depend only on the
// payload definitions in core.
package infra
