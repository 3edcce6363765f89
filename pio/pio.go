// Package pio models the programmable I/O block that generates the video
// signal: two state machines fed from TX FIFOs by DMA. The timing machine
// consumes one 32 bit control word per scan-line period, drives the sync
// pins and busy-waits the encoded cycle count; the pixel machine waits on a
// flag the timing machine raises at the start of the visible period, then
// shifts out a line's worth of packed pixel pairs at a fixed ten clocks per
// pixel.
//
// The microprograms are carried as their assembled instruction words. The
// model does not interpret them instruction by instruction; they pin down
// the contract with real silicon (shift counts, wait conditions, per-pixel
// delay) and the machines implement exactly that contract.
package pio

import (
	"errors"
	"fmt"

	"picovga/io"
)

// Program is an assembled state machine microprogram.
type Program struct {
	Name string
	Code []uint16
}

// TimingProgram is the scan-line timing loop:
//
//	out pins, 2     ; H-Sync and V-Sync levels
//	out x, 14       ; period length for the busy-wait
//	out exec, 16    ; one inline instruction (IRQ set or a no-op)
//	jmp x-- loop    ; spin until the period has elapsed
var TimingProgram = Program{
	Name: "timing",
	Code: []uint16{0x6002, 0x602E, 0x60F0, 0x0043},
}

// PixelProgram is the pixel shifter:
//
//	wait 1 irq 0        ; hold for the timing machine's visible trigger
//	out x, 32           ; line length in pixel pairs, minus one
//	out pins, 16 [9]    ; first pixel of the pair, ten clocks
//	out pins, 16 [8]    ; second pixel, ten clocks counting the jump
//	jmp x-- loop
//	mov pins, null      ; blank the bus after the visible region
var PixelProgram = Program{
	Name: "pixels",
	Code: []uint16{0x20C0, 0x6020, 0x6910, 0x6810, 0x0042, 0xA003},
}

// Inline instructions the timing control words carry in their top 16 bits.
const (
	// InstrSetIRQ sets IRQ flag 0, releasing the pixel machine.
	InstrSetIRQ = uint16(0xC000)
	// InstrNop is "mov y, y".
	InstrNop = uint16(0xA042)
)

// CyclesPerPixel is how many system clocks the pixel machine spends per
// pixel. The system clock runs at an integer multiple of the pixel rate; a
// fractional divider would add per-line jitter, so only the integer delay
// encoded in PixelProgram is permitted.
const CyclesPerPixel = 10

// fifoDepth matches a joined TX FIFO.
const fifoDepth = 8

// FIFO is a TX FIFO between a DMA channel and a state machine. When the
// machine drains it below full the refill hook runs, standing in for the
// DREQ line that paces the DMA channel.
type FIFO struct {
	words  [fifoDepth]uint32
	head   int
	count  int
	refill func()
}

// SetRefill installs the DREQ hook. May be nil.
func (f *FIFO) SetRefill(fn func()) {
	f.refill = fn
}

// Push appends one word. Returns false if the FIFO is full.
func (f *FIFO) Push(w uint32) bool {
	if f.count == fifoDepth {
		return false
	}
	f.words[(f.head+f.count)%fifoDepth] = w
	f.count++
	return true
}

// Pop removes the oldest word, asking the DMA side for more first if the
// FIFO has run dry.
func (f *FIFO) Pop() (uint32, bool) {
	if f.count == 0 && f.refill != nil {
		f.refill()
	}
	if f.count == 0 {
		return 0, false
	}
	w := f.words[f.head]
	f.head = (f.head + 1) % fifoDepth
	f.count--
	return w, true
}

// Len returns the number of queued words.
func (f *FIFO) Len() int {
	return f.count
}

// Full reports whether another Push would fail.
func (f *FIFO) Full() bool {
	return f.count == fifoDepth
}

// IRQFlag is the flag register shared by the two machines. The timing
// machine sets flag 0 at the start of each visible period; the pixel
// machine's wait instruction consumes it.
type IRQFlag struct {
	set bool
}

func (i *IRQFlag) Set() {
	i.set = true
}

// Take returns the flag state and clears it, matching "wait 1 irq 0".
func (i *IRQFlag) Take() bool {
	s := i.set
	i.set = false
	return s
}

// Period is one decoded timing control word.
type Period struct {
	// Cycles is the period length in system clocks, loop overhead included.
	Cycles uint32
	// HSync and VSync are the pin levels held for the period.
	HSync bool
	VSync bool
	// RaiseIRQ is true when the word carried the visible-period trigger.
	RaiseIRQ bool
}

// LineTiming is the four periods of one scan-line in FIFO order:
// front porch, sync pulse, back porch, visible.
type LineTiming struct {
	Periods [4]Period
}

// Cycles returns the total length of the scan-line in system clocks.
func (l LineTiming) Cycles() uint32 {
	var n uint32
	for _, p := range l.Periods {
		n += p.Cycles
	}
	return n
}

// TimingMachine runs TimingProgram against a TX FIFO.
type TimingMachine struct {
	fifo  *FIFO
	irq   *IRQFlag
	hsync io.PinOut1
	vsync io.PinOut1
}

// TimingDef describes a timing machine. HSync and VSync may be nil if
// nothing observes the pins.
type TimingDef struct {
	Fifo  *FIFO
	Irq   *IRQFlag
	HSync io.PinOut1
	VSync io.PinOut1
}

// NewTiming returns an initialized timing machine.
func NewTiming(def *TimingDef) (*TimingMachine, error) {
	if def.Fifo == nil {
		return nil, errors.New("timing machine needs a FIFO")
	}
	if def.Irq == nil {
		return nil, errors.New("timing machine needs the shared IRQ flag")
	}
	return &TimingMachine{
		fifo:  def.Fifo,
		irq:   def.Irq,
		hsync: def.HSync,
		vsync: def.VSync,
	}, nil
}

// StepLine consumes the four control words of one scan-line and returns the
// decoded periods. The pins are left at the last period's levels, exactly as
// the real machine holds them into the next line's front porch.
func (t *TimingMachine) StepLine() (LineTiming, error) {
	var lt LineTiming
	for i := range lt.Periods {
		w, ok := t.fifo.Pop()
		if !ok {
			return lt, fmt.Errorf("timing FIFO underrun at period %d", i)
		}
		p := Period{
			HSync: w&0x1 != 0,
			VSync: w&0x2 != 0,
			// The encoder subtracts the fixed decode overhead; the wait
			// loop spends it again, so the period plays out at full length.
			Cycles:   ((w >> 2) & 0x3FFF) + 6,
			RaiseIRQ: uint16(w>>16) == InstrSetIRQ,
		}
		if t.hsync != nil {
			t.hsync.Set(p.HSync)
		}
		if t.vsync != nil {
			t.vsync.Set(p.VSync)
		}
		if p.RaiseIRQ {
			t.irq.Set()
		}
		lt.Periods[i] = p
	}
	return lt, nil
}

// PixelMachine runs PixelProgram against a TX FIFO.
type PixelMachine struct {
	fifo *FIFO
	irq  *IRQFlag
	bus  io.PixelBus
}

// PixelDef describes a pixel machine. Bus may be nil if nothing observes
// the colour pins.
type PixelDef struct {
	Fifo *FIFO
	Irq  *IRQFlag
	Bus  io.PixelBus
}

// NewPixel returns an initialized pixel machine.
func NewPixel(def *PixelDef) (*PixelMachine, error) {
	if def.Fifo == nil {
		return nil, errors.New("pixel machine needs a FIFO")
	}
	if def.Irq == nil {
		return nil, errors.New("pixel machine needs the shared IRQ flag")
	}
	return &PixelMachine{
		fifo: def.Fifo,
		irq:  def.Irq,
		bus:  def.Bus,
	}, nil
}

// StepLine shifts out one visible line if the timing machine has raised the
// trigger, returning the emitted pixels and the cycles spent. With no
// trigger pending the machine stays parked in its wait instruction and
// returns nil.
func (p *PixelMachine) StepLine() ([]uint16, uint32, error) {
	if !p.irq.Take() {
		return nil, 0, nil
	}
	length, ok := p.fifo.Pop()
	if !ok {
		return nil, 0, errors.New("pixel FIFO underrun reading line length")
	}
	// The length word is one less than the pair count, required by the
	// jmp x-- loop construct.
	pairs := int(length) + 1
	pixels := make([]uint16, 0, pairs*2)
	var cycles uint32
	for i := 0; i < pairs; i++ {
		w, ok := p.fifo.Pop()
		if !ok {
			return nil, cycles, fmt.Errorf("pixel FIFO underrun at pair %d of %d", i, pairs)
		}
		first := uint16(w) & 0xFFF
		second := uint16(w>>16) & 0xFFF
		if p.bus != nil {
			p.bus.Pixel(first)
			p.bus.Pixel(second)
		}
		pixels = append(pixels, first, second)
		cycles += 2 * CyclesPerPixel
	}
	// mov pins, null: the bus is blanked after the visible region.
	if p.bus != nil {
		p.bus.Pixel(0)
	}
	return pixels, cycles, nil
}
