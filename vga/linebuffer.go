package vga

import "sync/atomic"

const (
	// MaxPixelsPerLine is the widest visible line we support.
	MaxPixelsPerLine = 640
	// MaxPixelPairsPerLine is the line width in packed pixel pairs.
	MaxPixelPairsPerLine = MaxPixelsPerLine / 2
	// MaxVisibleLines is the tallest visible region we support.
	MaxVisibleLines = 480
)

// LineBuffer is one scan-line's worth of packed pixel pairs, prefixed by
// the length word the pixel FIFO expects. The words are contiguous so a
// single DMA transfer plays length then pixels.
//
// Two of these ping-pong between the render loop and the interrupt
// sequencer. The handoff uses only the two atomics: readyForDrawing set
// with a line number hands the buffer to the render loop, and clearing it
// hands the finished pixels back for playout. No locks anywhere on this
// path, both sides poll.
type LineBuffer struct {
	words           [1 + MaxPixelPairsPerLine]uint32
	readyForDrawing atomic.Bool
	lineNumber      atomic.Uint32
}

// Words implements dma.ReadSource. The transfer covers the length word
// plus every pair slot regardless of mode; the pixel state machine stops
// reading after length+1 pairs.
func (lb *LineBuffer) Words() []uint32 {
	return lb.words[:]
}

// SetLength stores the FIFO length word, which must be one less than the
// number of pixel pairs that follow.
func (lb *LineBuffer) SetLength(pairs int) {
	lb.words[0] = uint32(pairs - 1)
}

// PairWords returns the pixel pair slots as raw FIFO words. The render
// loop writes RGBPair values straight in, the frame grabber reads them
// back out.
func (lb *LineBuffer) PairWords() []uint32 {
	return lb.words[1:]
}

// Pair returns pair n as a typed value.
func (lb *LineBuffer) Pair(n int) RGBPair {
	return RGBPair(lb.words[1+n])
}

// SetReady hands the buffer to the render loop, telling it which visible
// line to draw here. The line number is stored before the flag so the
// render loop never sees a stale line with a fresh flag.
func (lb *LineBuffer) SetReady(line uint32) {
	lb.lineNumber.Store(line)
	lb.readyForDrawing.Store(true)
}

// MarkRenderingDone hands the rendered buffer back for playout.
func (lb *LineBuffer) MarkRenderingDone() {
	lb.readyForDrawing.Store(false)
}

// IsReadyForRendering reports whether the render loop owns the buffer.
func (lb *LineBuffer) IsReadyForRendering() bool {
	return lb.readyForDrawing.Load()
}

// IsRenderingDone reports whether the buffer holds finished pixels.
func (lb *LineBuffer) IsRenderingDone() bool {
	return !lb.IsReadyForRendering()
}

// LineNumber returns the visible line this buffer is assigned to.
func (lb *LineBuffer) LineNumber() uint32 {
	return lb.lineNumber.Load()
}
