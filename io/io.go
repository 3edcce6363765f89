// Package io defines the basic interfaces for the output pins the video
// hardware drives. The board exposes two sync pins and a 12 bit colour bus;
// consumers (a monitor model, tests) are handed levels once per signal
// period rather than once per clock, since a pin level only changes on a
// period boundary.
package io

// PinOut1 is a single output pin (H-Sync or V-Sync).
type PinOut1 interface {
	// Set drives the pin high (true) or low (false).
	Set(level bool)
}

// PixelBus receives the 12 bit GBR colour levels as the pixel state machine
// shifts them out. Each value holds blue in bits 8-11, green in bits 4-7 and
// red in bits 0-3, matching the board's pin assignment.
type PixelBus interface {
	// Pixel presents one colour level on the bus for one pixel period.
	Pixel(level uint16)
}
