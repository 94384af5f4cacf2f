// Package pcc drives the peripheral control computer, the board that runs
// the LED strip, the laser and the servos. Each Driver method encodes one
// command frame and writes it to the serial link. The board state is not
// tracked.
package pcc
