package vga

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"picovga/dma"
	"picovga/io"
	"picovga/irq"
	"picovga/memory"
	"picovga/pio"
)

var (
	// ErrUnsupportedMode is returned by SetMode for any mode the hardware
	// cannot generate.
	ErrUnsupportedMode = errors.New("unsupported video mode")
	// ErrBadPaletteIndex is returned for palette accesses out of range.
	ErrBadPaletteIndex = errors.New("palette index out of range")
)

// Timer provides a monotonic cycle count for the render statistics.
type Timer interface {
	Cycles() uint32
}

// wallClock is the default Timer: microseconds since creation.
type wallClock struct {
	start time.Time
}

func (w *wallClock) Cycles() uint32 {
	return uint32(time.Since(w.start).Microseconds())
}

// Def defines a video subsystem. All fields are optional: pins and bus may
// be nil if nothing observes them, Timer defaults to a wall clock and the
// zero Mode is 640x480 text with the 8x16 font.
type Def struct {
	// HSync is the horizontal sync pin.
	HSync io.PinOut1
	// VSync is the vertical sync pin.
	VSync io.PinOut1
	// Pixels is the 12 bit colour bus.
	Pixels io.PixelBus
	// Timer is the cycle counter used for render statistics.
	Timer Timer
	// Mode is the initial video mode.
	Mode Mode
	// Debug enables tracing of mode changes and interrupt sequencing.
	Debug bool
}

// Subsystem is the video generator. One instance owns the timing and pixel
// state machines, the DMA controller feeding them, the glyph grid, the
// double-buffered scan-line pipeline and the console drawn on top.
//
// The only lock is the critical section shared by SetMode and the
// interrupt sequencer, standing in for the interrupt disable a real
// handler gets for free. Everything on the render/playout path is atomics.
type Subsystem struct {
	critical sync.Mutex

	modeReg atomic.Uint32
	timing  timingBuffer

	font    atomic.Pointer[Font]
	numCols atomic.Uint32
	numRows atomic.Uint32

	grid    [MaxTextCols * MaxTextRows]GlyphAttr
	palette [NumPaletteEntries]RGBColour
	lut     *[lookupEntries]RGBPair

	// buffers[0] draws the even scan-lines, buffers[1] the odd ones.
	buffers [2]*LineBuffer

	currentTimingLine  atomic.Uint32
	currentPlayoutLine atomic.Uint32
	clashCount         atomic.Uint32
	renderWaits        atomic.Uint32
	renderCycles       atomic.Uint64
	frameCount         atomic.Uint32

	ctl      *dma.Controller
	timingCh *dma.Channel
	pixelCh  *dma.Channel
	timingSM *pio.TimingMachine
	pixelSM  *pio.PixelMachine
	irqLine  irq.Sender

	timer        Timer
	core1Started atomic.Bool
	halt         atomic.Bool
	debug        bool

	console TextConsole
}

// Init sets up the video subsystem: palette and colour lookup, state
// machines, DMA channels armed for line 0, and both line buffers handed to
// the render loop. The caller still has to start RenderLoop on its own
// core and drive StepLine.
func Init(def *Def) (*Subsystem, error) {
	s := &Subsystem{
		palette: buildPalette(),
		buffers: [2]*LineBuffer{new(LineBuffer), new(LineBuffer)},
		ctl:     dma.New(),
		timer:   def.Timer,
		debug:   def.Debug,
	}
	if s.timer == nil {
		s.timer = &wallClock{start: time.Now()}
	}
	s.lut = buildLookup(&s.palette)

	if err := s.SetMode(def.Mode); err != nil {
		return nil, err
	}

	sharedIRQ := &pio.IRQFlag{}
	timingFifo := &pio.FIFO{}
	pixelFifo := &pio.FIFO{}

	var err error
	s.timingSM, err = pio.NewTiming(&pio.TimingDef{
		Fifo:  timingFifo,
		Irq:   sharedIRQ,
		HSync: def.HSync,
		VSync: def.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("timing state machine: %w", err)
	}
	s.pixelSM, err = pio.NewPixel(&pio.PixelDef{
		Fifo: pixelFifo,
		Irq:  sharedIRQ,
		Bus:  def.Pixels,
	})
	if err != nil {
		return nil, fmt.Errorf("pixel state machine: %w", err)
	}

	s.timingCh = s.ctl.Channel(dma.TimingChan)
	s.pixelCh = s.ctl.Channel(dma.PixelChan)
	if err := s.timingCh.Arm(s.timing.bufferForLine(0), 4, timingFifo); err != nil {
		return nil, fmt.Errorf("timing channel: %w", err)
	}
	if err := s.pixelCh.Arm(s.buffers[0], 1+MaxPixelPairsPerLine, pixelFifo); err != nil {
		return nil, fmt.Errorf("pixel channel: %w", err)
	}
	// The FIFOs pull more words as the state machines drain them, the
	// same role DREQ pacing plays in hardware.
	timingFifo.SetRefill(s.timingCh.Pump)
	pixelFifo.SetRefill(s.pixelCh.Pump)
	s.ctl.EnableIRQ(1<<dma.TimingChan | 1<<dma.PixelChan)
	s.Install(s.ctl)

	// Hand both buffers to the render loop so lines 0 and 1 are drawn
	// before playout starts.
	s.buffers[0].SetReady(0)
	s.buffers[1].SetReady(1)

	if s.debug {
		log.Printf("video up in mode %s", s.GetMode())
	}
	return s, nil
}

// Install implements irq.Receiver; the sequencer polls this line.
func (s *Subsystem) Install(sender irq.Sender) {
	s.irqLine = sender
}

// GetMode returns the current video mode.
func (s *Subsystem) GetMode() Mode {
	return ModeFromByte(uint8(s.modeReg.Load()))
}

// SetMode switches video mode. Only 640x480 and 640x400 text modes with no
// line doubling are supported; anything else returns ErrUnsupportedMode
// with the subsystem untouched.
func (s *Subsystem) SetMode(m Mode) error {
	s.critical.Lock()
	defer s.critical.Unlock()

	if !m.IsText() || m.IsHorizDouble() || m.IsVertDouble() {
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, m)
	}
	switch m.Timing() {
	case Timing640x480:
		s.timing = make640x480()
	case Timing640x400:
		s.timing = make640x400()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, m)
	}

	s.modeReg.Store(uint32(m.AsByte()))
	if m.Format() == FormatText8x8 {
		s.font.Store(&font8)
	} else {
		s.font.Store(&font16)
	}
	cols, rows := m.TextCols(), m.TextRows()
	s.numCols.Store(uint32(cols))
	s.numRows.Store(uint32(rows))
	s.console.SetFramebuffer(&s.grid, cols, rows)
	if s.debug {
		log.Printf("mode change to %s (%dx%d text)", m, cols, rows)
	}
	return nil
}

// ModeNeedsExtraMemory reports whether a mode's framebuffer is too big
// for the built-in video memory. Every mode SetMode accepts fits, so
// this is always false.
func (s *Subsystem) ModeNeedsExtraMemory(m Mode) bool {
	return false
}

// Console returns the text console drawing into the glyph grid.
func (s *Subsystem) Console() *TextConsole {
	return &s.console
}

// VideoMemory exposes the glyph grid as a byte addressable bank: even
// addresses read and write the glyph, odd addresses the attribute.
func (s *Subsystem) VideoMemory() memory.Bank {
	return gridBank{s: s}
}

// ScanLine returns the visible line currently playing out.
func (s *Subsystem) ScanLine() uint32 {
	return s.currentPlayoutLine.Load()
}

// VisibleScanLines returns the number of visible lines in the current mode.
func (s *Subsystem) VisibleScanLines() int {
	return s.GetMode().VisibleLines()
}

// TotalScanLines returns the number of scan-lines in a whole frame,
// blanking included, for the current mode.
func (s *Subsystem) TotalScanLines() int {
	return int(s.timing.backPorchEndsAt) + 1
}

// WaitForScanLine blocks until the playout line reaches line, or the
// subsystem shuts down. Lines past the visible region wait for the last
// visible line instead, so the wait is always bounded by one frame.
// Useful for tear-free updates.
func (s *Subsystem) WaitForScanLine(line uint32) {
	if last := uint32(s.VisibleScanLines() - 1); line > last {
		line = last
	}
	for s.currentPlayoutLine.Load() != line && !s.halt.Load() {
		runtime.Gosched()
	}
}

// PaletteEntry returns palette entry i.
func (s *Subsystem) PaletteEntry(i int) (RGBColour, error) {
	if i < 0 || i >= NumPaletteEntries {
		return 0, fmt.Errorf("%w: %d", ErrBadPaletteIndex, i)
	}
	return s.palette[i], nil
}

// SetPaletteEntry reprograms palette entry i. Changing an entry the text
// attributes can reach rebuilds the colour lookup table.
func (s *Subsystem) SetPaletteEntry(i int, c RGBColour) error {
	if i < 0 || i >= NumPaletteEntries {
		return fmt.Errorf("%w: %d", ErrBadPaletteIndex, i)
	}
	s.critical.Lock()
	defer s.critical.Unlock()
	s.palette[i] = c
	if i < 16 {
		fillLookup(s.lut, &s.palette)
	}
	return nil
}

// StepLine runs one scan-line of video generation: timing words play out,
// a visible line shifts its pixels, and any DMA completion runs the
// interrupt sequencer. It returns the line number the pixels belong to
// and the pixels themselves (nil on blanking lines).
func (s *Subsystem) StepLine() (uint32, []uint16, error) {
	s.timingCh.Pump()
	if _, err := s.timingSM.StepLine(); err != nil {
		return 0, nil, err
	}
	s.pixelCh.Pump()
	pixels, _, err := s.pixelSM.StepLine()
	if err != nil {
		return 0, nil, err
	}
	line := s.currentPlayoutLine.Load()
	if s.irqLine != nil && s.irqLine.Raised() {
		s.HandleInterrupt()
	}
	return line, pixels, nil
}

// HandleInterrupt is the DMA completion sequencer. A timing completion
// advances the timing line and re-points the timing channel at the right
// buffer for the next line. A pixel completion advances the playout line,
// queues the opposite buffer for playout and hands the just-played buffer
// back to the render loop with its next assignment, one line ahead of
// playout. A buffer queued before its rendering finished bumps the clash
// counter; the stale line plays out rather than stalling the beam.
func (s *Subsystem) HandleInterrupt() {
	s.critical.Lock()
	defer s.critical.Unlock()

	status := s.ctl.IRQStatus()

	if status&(1<<dma.TimingChan) != 0 {
		s.ctl.Ack(1 << dma.TimingChan)

		old := s.currentTimingLine.Load()
		var next uint32
		if old != s.timing.backPorchEndsAt {
			next = old + 1
		}
		s.currentTimingLine.Store(next)
		s.timingCh.Retrigger(s.timing.bufferForLine(next))
	}

	if status&(1<<dma.PixelChan) != 0 {
		s.ctl.Ack(1 << dma.PixelChan)

		// Only fires on visible lines. Queue the next transfer.
		last := s.currentPlayoutLine.Load()
		var nextPlayout uint32
		if last < s.timing.visibleLinesEndAt {
			nextPlayout = last + 1
		} else {
			s.frameCount.Add(1)
		}
		var nextDraw uint32
		if nextPlayout < s.timing.visibleLinesEndAt {
			nextDraw = nextPlayout + 1
		}

		if last&1 == 0 {
			if !s.buffers[1].IsRenderingDone() {
				s.clashCount.Add(1)
			}
			s.pixelCh.Retrigger(s.buffers[1])
			// Just played an even line, so the even buffer can be drawn
			// into again.
			s.buffers[0].SetReady(nextDraw)
		} else {
			if !s.buffers[0].IsRenderingDone() {
				s.clashCount.Add(1)
			}
			s.pixelCh.Retrigger(s.buffers[0])
			s.buffers[1].SetReady(nextDraw)
		}

		s.currentPlayoutLine.Store(nextPlayout)
	}
}

// Core1Started reports whether the render loop has come up.
func (s *Subsystem) Core1Started() bool {
	return s.core1Started.Load()
}

// Shutdown stops the render loop and releases anything spinning in
// WaitForScanLine.
func (s *Subsystem) Shutdown() {
	s.halt.Store(true)
}

// ClashCount returns how many scan-lines were queued for playout before
// rendering finished.
func (s *Subsystem) ClashCount() uint32 {
	return s.clashCount.Load()
}

// RenderWaits returns how long the render loop has spent waiting for
// buffers, in spin iterations.
func (s *Subsystem) RenderWaits() uint32 {
	return s.renderWaits.Load()
}

// RenderCycles returns the total timer cycles spent rendering.
func (s *Subsystem) RenderCycles() uint64 {
	return s.renderCycles.Load()
}

// FrameCount returns how many complete frames have played out.
func (s *Subsystem) FrameCount() uint32 {
	return s.frameCount.Load()
}

// gridBank adapts the glyph grid to memory.Bank.
type gridBank struct {
	s *Subsystem
}

func (g gridBank) Read(addr uint32) uint8 {
	if addr >= g.Size() {
		return 0
	}
	cell := g.s.grid[addr/2]
	if addr&1 == 0 {
		return cell.Glyph()
	}
	return uint8(cell.Attr())
}

func (g gridBank) Write(addr uint32, val uint8) {
	if addr >= g.Size() {
		return
	}
	cell := g.s.grid[addr/2]
	if addr&1 == 0 {
		g.s.grid[addr/2] = NewGlyphAttr(val, cell.Attr())
	} else {
		g.s.grid[addr/2] = NewGlyphAttr(cell.Glyph(), Attr(val))
	}
}

func (g gridBank) Size() uint32 {
	return MaxTextCols * MaxTextRows * 2
}
