package vga

import "picovga/pio"

// SyncPolarity describes a sync pulse as active-high or active-low.
type SyncPolarity int

const (
	// PolarityPositive is an active-high pulse.
	PolarityPositive SyncPolarity = iota
	// PolarityNegative is an active-low pulse.
	PolarityNegative
)

// enabled is the pin level during the pulse.
func (p SyncPolarity) enabled() bool {
	return p == PolarityPositive
}

// disabled is the pin level outside the pulse.
func (p SyncPolarity) disabled() bool {
	return p == PolarityNegative
}

// scanlineTimingBuffer holds the four timing FIFO words for one scan-line:
// front porch, sync pulse, back porch, visible portion.
type scanlineTimingBuffer struct {
	data [4]uint32
}

// Words implements dma.ReadSource.
func (b *scanlineTimingBuffer) Words() []uint32 {
	return b.data[:]
}

// makeTiming builds one timing FIFO word. period is in system clock ticks
// (10 per pixel clock). hsync and vsync give the pin levels for the period
// and raiseIRQ selects the side-set instruction that fires the scan-line
// interrupt at the start of the period.
func makeTiming(period uint32, hsync, vsync, raiseIRQ bool) uint32 {
	command := uint32(pio.InstrNop)
	if raiseIRQ {
		command = uint32(pio.InstrSetIRQ)
	}
	var value uint32
	if hsync {
		value |= 1 << 0
	}
	if vsync {
		value |= 1 << 1
	}
	value |= (period - 6) << 2
	return value | command<<16
}

// newVisibleLine builds the timing buffer used while pixels are on screen.
// timings are (front porch, sync, back porch, visible) in pixel clocks.
// The back porch is shortened by a few ticks to cover interrupt and state
// machine start latency and the visible period stretched to match, so the
// line length stays exact. The IRQ fires at the start of the visible
// portion to start pixels moving.
func newVisibleLine(hsync, vsync SyncPolarity, timings [4]uint32) scanlineTimingBuffer {
	return scanlineTimingBuffer{
		data: [4]uint32{
			makeTiming(timings[0]*10, hsync.disabled(), vsync.disabled(), false),
			makeTiming(timings[1]*10, hsync.enabled(), vsync.disabled(), false),
			makeTiming(timings[2]*10-5, hsync.disabled(), vsync.disabled(), false),
			makeTiming(timings[3]*10+5, hsync.disabled(), vsync.disabled(), true),
		},
	}
}

// newVBlankPorch builds the timing buffer for the vertical front and back
// porch lines.
func newVBlankPorch(hsync, vsync SyncPolarity, timings [4]uint32) scanlineTimingBuffer {
	return scanlineTimingBuffer{
		data: [4]uint32{
			makeTiming(timings[0]*10, hsync.disabled(), vsync.disabled(), false),
			makeTiming(timings[1]*10, hsync.enabled(), vsync.disabled(), false),
			makeTiming(timings[2]*10, hsync.disabled(), vsync.disabled(), false),
			makeTiming(timings[3]*10, hsync.disabled(), vsync.disabled(), false),
		},
	}
}

// newVBlankSync builds the timing buffer for the vertical sync pulse lines.
func newVBlankSync(hsync, vsync SyncPolarity, timings [4]uint32) scanlineTimingBuffer {
	return scanlineTimingBuffer{
		data: [4]uint32{
			makeTiming(timings[0]*10, hsync.disabled(), vsync.enabled(), false),
			makeTiming(timings[1]*10, hsync.enabled(), vsync.enabled(), false),
			makeTiming(timings[2]*10, hsync.disabled(), vsync.enabled(), false),
			makeTiming(timings[3]*10, hsync.disabled(), vsync.enabled(), false),
		},
	}
}

// timingBuffer holds the scan-line buffers for the different vertical
// regions of the frame, plus the line numbers where each region ends.
type timingBuffer struct {
	visibleLine       scanlineTimingBuffer
	vblankPorchBuffer scanlineTimingBuffer
	vblankSyncBuffer  scanlineTimingBuffer

	visibleLinesEndAt uint32
	frontPorchEndsAt  uint32
	syncPulseEndsAt   uint32
	backPorchEndsAt   uint32
}

// bufferForLine returns the scan-line buffer to play for the given line.
func (t *timingBuffer) bufferForLine(line uint32) *scanlineTimingBuffer {
	switch {
	case line <= t.visibleLinesEndAt:
		return &t.visibleLine
	case line <= t.frontPorchEndsAt:
		return &t.vblankPorchBuffer
	case line <= t.syncPulseEndsAt:
		return &t.vblankSyncBuffer
	default:
		return &t.vblankPorchBuffer
	}
}

// make640x480 builds the timing for 640x480 @ 60 Hz. Negative sync
// polarity on both axes.
func make640x480() timingBuffer {
	horiz := [4]uint32{16, 96, 48, 640}
	return timingBuffer{
		visibleLine:       newVisibleLine(PolarityNegative, PolarityNegative, horiz),
		vblankPorchBuffer: newVBlankPorch(PolarityNegative, PolarityNegative, horiz),
		vblankSyncBuffer:  newVBlankSync(PolarityNegative, PolarityNegative, horiz),
		visibleLinesEndAt: 479,
		frontPorchEndsAt:  479 + 10,
		syncPulseEndsAt:   479 + 10 + 2,
		backPorchEndsAt:   479 + 10 + 2 + 33,
	}
}

// make640x400 builds the timing for 640x400 @ 70 Hz. The vertical sync
// pulse is positive, which is how the monitor tells the two standards
// apart.
func make640x400() timingBuffer {
	horiz := [4]uint32{16, 96, 48, 640}
	return timingBuffer{
		visibleLine:       newVisibleLine(PolarityNegative, PolarityPositive, horiz),
		vblankPorchBuffer: newVBlankPorch(PolarityNegative, PolarityPositive, horiz),
		vblankSyncBuffer:  newVBlankSync(PolarityNegative, PolarityPositive, horiz),
		visibleLinesEndAt: 399,
		frontPorchEndsAt:  399 + 12,
		syncPulseEndsAt:   399 + 12 + 2,
		backPorchEndsAt:   399 + 12 + 2 + 35,
	}
}
