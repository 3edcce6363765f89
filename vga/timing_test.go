package vga

import (
	"testing"

	"picovga/pio"
)

// decodeLine runs a scan-line buffer through a real timing machine and
// returns the decoded periods.
func decodeLine(t *testing.T, buf *scanlineTimingBuffer) pio.LineTiming {
	t.Helper()
	fifo := &pio.FIFO{}
	for _, w := range buf.Words() {
		fifo.Push(w)
	}
	tm, err := pio.NewTiming(&pio.TimingDef{Fifo: fifo, Irq: &pio.IRQFlag{}})
	if err != nil {
		t.Fatalf("NewTiming: %v", err)
	}
	lt, err := tm.StepLine()
	if err != nil {
		t.Fatalf("StepLine: %v", err)
	}
	return lt
}

func TestScanLineLength(t *testing.T) {
	// Every kind of scan-line must take exactly 800 pixel clocks,
	// whatever internal fudging the visible line does.
	const wantCycles = 800 * pio.CyclesPerPixel

	for _, tb := range []struct {
		name   string
		timing timingBuffer
	}{
		{"640x480", make640x480()},
		{"640x400", make640x400()},
	} {
		t.Run(tb.name, func(t *testing.T) {
			for _, line := range []struct {
				name string
				buf  *scanlineTimingBuffer
			}{
				{"visible", &tb.timing.visibleLine},
				{"porch", &tb.timing.vblankPorchBuffer},
				{"sync", &tb.timing.vblankSyncBuffer},
			} {
				lt := decodeLine(t, line.buf)
				if got := lt.Cycles(); got != uint32(wantCycles) {
					t.Errorf("%s line length: got %d want %d", line.name, got, wantCycles)
				}
			}
		})
	}
}

func TestVisibleLineIRQ(t *testing.T) {
	tb := make640x480()

	lt := decodeLine(t, &tb.visibleLine)
	want := [4]bool{false, false, false, true}
	for i, p := range lt.Periods {
		if p.RaiseIRQ != want[i] {
			t.Errorf("visible period %d RaiseIRQ: got %t want %t", i, p.RaiseIRQ, want[i])
		}
	}

	// Blanking lines never raise the scan-line interrupt.
	for _, buf := range []*scanlineTimingBuffer{&tb.vblankPorchBuffer, &tb.vblankSyncBuffer} {
		lt := decodeLine(t, buf)
		for i, p := range lt.Periods {
			if p.RaiseIRQ {
				t.Errorf("blanking period %d raises IRQ", i)
			}
		}
	}
}

func TestSyncPolarities(t *testing.T) {
	// 640x480 pulses low on both axes; 640x400 pulses high on v-sync,
	// which is how the monitor distinguishes the two standards.
	tests := []struct {
		name       string
		timing     timingBuffer
		vsyncLevel bool
	}{
		{"640x480", make640x480(), false},
		{"640x400", make640x400(), true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			vis := decodeLine(t, &test.timing.visibleLine)
			// H-sync is active low in both standards: high everywhere but
			// period 1.
			for i, p := range vis.Periods {
				want := i != 1
				if p.HSync != want {
					t.Errorf("visible period %d HSync: got %t want %t", i, p.HSync, want)
				}
			}

			pulse := decodeLine(t, &test.timing.vblankSyncBuffer)
			for i, p := range pulse.Periods {
				if p.VSync != test.vsyncLevel {
					t.Errorf("pulse period %d VSync: got %t want %t", i, p.VSync, test.vsyncLevel)
				}
			}
			porch := decodeLine(t, &test.timing.vblankPorchBuffer)
			for i, p := range porch.Periods {
				if p.VSync == test.vsyncLevel {
					t.Errorf("porch period %d VSync at active level", i)
				}
			}
		})
	}
}

func TestVerticalBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		timing  timingBuffer
		visible uint32
		porch   uint32
		sync    uint32
		last    uint32
	}{
		{"640x480", make640x480(), 479, 489, 491, 524},
		{"640x400", make640x400(), 399, 411, 413, 448},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tb := test.timing
			if tb.visibleLinesEndAt != test.visible || tb.frontPorchEndsAt != test.porch ||
				tb.syncPulseEndsAt != test.sync || tb.backPorchEndsAt != test.last {
				t.Errorf("boundaries: got %d/%d/%d/%d want %d/%d/%d/%d",
					tb.visibleLinesEndAt, tb.frontPorchEndsAt, tb.syncPulseEndsAt, tb.backPorchEndsAt,
					test.visible, test.porch, test.sync, test.last)
			}

			if got := tb.bufferForLine(0); got != &tb.visibleLine {
				t.Error("line 0 not a visible line")
			}
			if got := tb.bufferForLine(test.visible); got != &tb.visibleLine {
				t.Error("last visible line not a visible line")
			}
			if got := tb.bufferForLine(test.visible + 1); got != &tb.vblankPorchBuffer {
				t.Error("first front porch line not a porch line")
			}
			if got := tb.bufferForLine(test.porch + 1); got != &tb.vblankSyncBuffer {
				t.Error("first sync line not a sync line")
			}
			if got := tb.bufferForLine(test.sync + 1); got != &tb.vblankPorchBuffer {
				t.Error("first back porch line not a porch line")
			}
			if got := tb.bufferForLine(test.last); got != &tb.vblankPorchBuffer {
				t.Error("last line not a porch line")
			}
		})
	}
}
