package vga

import "testing"

func TestLineBufferLayout(t *testing.T) {
	lb := &LineBuffer{}
	lb.SetLength(320)
	if got, want := lb.Words()[0], uint32(319); got != want {
		t.Errorf("length word: got %d want %d", got, want)
	}
	if got, want := len(lb.Words()), 1+MaxPixelPairsPerLine; got != want {
		t.Errorf("word count: got %d want %d", got, want)
	}

	// PairWords aliases the DMA words after the length.
	lb.PairWords()[5] = uint32(NewRGBPair(0x111, 0x222))
	if got, want := lb.Words()[6], uint32(NewRGBPair(0x111, 0x222)); got != want {
		t.Errorf("pair 5 via Words: got %#08x want %#08x", got, want)
	}
	if got, want := lb.Pair(5), NewRGBPair(0x111, 0x222); got != want {
		t.Errorf("Pair(5): got %#08x want %#08x", got, want)
	}
}

func TestLineBufferHandoff(t *testing.T) {
	lb := &LineBuffer{}
	if lb.IsReadyForRendering() {
		t.Fatal("fresh buffer claims to be ready for rendering")
	}
	if !lb.IsRenderingDone() {
		t.Fatal("fresh buffer claims rendering in progress")
	}

	lb.SetReady(42)
	if !lb.IsReadyForRendering() {
		t.Fatal("SetReady did not hand the buffer over")
	}
	if got := lb.LineNumber(); got != 42 {
		t.Errorf("LineNumber: got %d want 42", got)
	}

	lb.MarkRenderingDone()
	if !lb.IsRenderingDone() {
		t.Fatal("MarkRenderingDone did not hand the buffer back")
	}
}
