// Package board pulls the video subsystem together into a whole machine:
// it brings up the second core through the boot mailbox, drives the scan
// line pipeline, grabs played-out pixels into frames, and hands the
// finished machine over to an operating system through the BIOS API.
package board

import (
	"errors"
	"fmt"
	"image"
	"log"
	"runtime"
	"sync/atomic"

	"picovga/bios"
	"picovga/io"
	"picovga/memory"
	"picovga/vga"
)

// ApplicationRAMSize is the RAM handed to the loaded OS.
const ApplicationRAMSize = 256 * 1024

// Launch tokens sent over the mailbox after the 0,0,1 preamble. On real
// silicon these are the vector table, stack pointer and entry point; here
// they only have to echo back correctly.
const (
	tokenVectorTable = 0x20000100
	tokenStackTop    = 0x2003FC00
	tokenEntryPoint  = 0x10000001
)

const mailboxDepth = 8

// ErrCore1Timeout is returned when the second core never acknowledges the
// launch sequence.
var ErrCore1Timeout = errors.New("core 1 failed to start")

// syncPin records the level of a sync output and counts leading edges, so
// tests and front-ends can verify pulse trains. Implements io.PinOut1.
type syncPin struct {
	level atomic.Bool
	edges atomic.Uint32
}

func (p *syncPin) Set(level bool) {
	if level && !p.level.Load() {
		p.edges.Add(1)
	}
	p.level.Store(level)
}

// Level returns the current pin level.
func (p *syncPin) Level() bool {
	return p.level.Load()
}

// Edges returns how many rising edges the pin has seen.
func (p *syncPin) Edges() uint32 {
	return p.edges.Load()
}

// mailbox is the pair of FIFOs linking the cores during launch.
type mailbox struct {
	toCore1 chan uint32
	toCore0 chan uint32
}

func newMailbox() *mailbox {
	return &mailbox{
		toCore1: make(chan uint32, mailboxDepth),
		toCore0: make(chan uint32, mailboxDepth),
	}
}

// drain empties the receive side. The launch protocol drains before every
// zero so a stale response can never satisfy the echo check.
func (m *mailbox) drain() {
	for {
		select {
		case <-m.toCore0:
		default:
			return
		}
	}
}

// Def defines a board.
type Def struct {
	// Mode is the video mode to come up in. Zero value is 640x480 text
	// with the 8x16 font.
	Mode vga.Mode
	// FrameDone is called with the assembled image each time the last
	// visible line of a frame plays out. The image is reused, so copy it
	// if it needs to outlive the callback.
	FrameDone func(*image.NRGBA)
	// Timer overrides the render statistics clock.
	Timer vga.Timer
	// Debug enables bring-up and launch tracing.
	Debug bool
}

// Board is the assembled machine.
type Board struct {
	video *vga.Subsystem
	ram   *memory.RAM

	hsync *syncPin
	vsync *syncPin

	frame     *image.NRGBA
	frameDone func(*image.NRGBA)

	mbox  *mailbox
	debug bool
}

// Init builds the board and starts the video subsystem. Core 1 is not
// running yet; call LaunchCore1 before expecting pixels to render.
func Init(def *Def) (*Board, error) {
	b := &Board{
		hsync:     &syncPin{},
		vsync:     &syncPin{},
		frameDone: def.FrameDone,
		mbox:      newMailbox(),
		ram:       memory.NewRAM(ApplicationRAMSize),
		debug:     def.Debug,
	}
	var err error
	b.video, err = vga.Init(&vga.Def{
		HSync: b.hsync,
		VSync: b.vsync,
		Timer: def.Timer,
		Mode:  def.Mode,
		Debug: def.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("video init: %w", err)
	}
	b.resizeFrame()
	return b, nil
}

// Video returns the video subsystem.
func (b *Board) Video() *vga.Subsystem {
	return b.video
}

// HSync returns the horizontal sync pin.
func (b *Board) HSync() io.PinOut1 {
	return b.hsync
}

// HSyncEdges returns how many horizontal sync pulses have been produced.
func (b *Board) HSyncEdges() uint32 {
	return b.hsync.Edges()
}

// VSyncEdges returns how many vertical sync pulses have been produced.
func (b *Board) VSyncEdges() uint32 {
	return b.vsync.Edges()
}

// core1BootROM is what the second core runs out of reset: sit in the
// mailbox echoing words, and once the 0,0,1 preamble and the three launch
// tokens arrive, jump to the entry point. entry is run on this goroutine,
// which becomes core 1.
func (b *Board) core1BootROM(entry func()) {
	sequence := [...]uint32{0, 0, 1, tokenVectorTable, tokenStackTop, tokenEntryPoint}
	idx := 0
	for {
		w := <-b.mbox.toCore1
		b.mbox.toCore0 <- w
		if w == sequence[idx] {
			idx++
			if idx == len(sequence) {
				entry()
				return
			}
		} else if w == sequence[0] {
			idx = 1
		} else {
			idx = 0
		}
	}
}

// LaunchCore1 brings up the second core and starts the render loop on it.
// The launch sequence is sent word by word, each one echoed back; any
// mismatch restarts the whole sequence. Returns once the render loop
// reports it is running.
func (b *Board) LaunchCore1() error {
	go b.core1BootROM(b.video.RenderLoop)

	sequence := [...]uint32{0, 0, 1, tokenVectorTable, tokenStackTop, tokenEntryPoint}
	const maxAttempts = 16

	for attempt := 0; attempt < maxAttempts; attempt++ {
		ok := true
		for _, cmd := range sequence {
			if cmd == 0 {
				// A stale word in the FIFO would alias as a valid echo.
				b.mbox.drain()
			}
			if b.debug {
				log.Printf("core1 launch: sending %#x", cmd)
			}
			b.mbox.toCore1 <- cmd
			if resp := <-b.mbox.toCore0; resp != cmd {
				if b.debug {
					log.Printf("core1 launch: got %#x, restarting", resp)
				}
				ok = false
				break
			}
		}
		if ok {
			// The render loop flags itself started as its first act.
			for i := 0; i < 1<<20; i++ {
				runtime.Gosched()
				if b.video.Core1Started() {
					if b.debug {
						log.Printf("core1 launch: render loop running")
					}
					return nil
				}
			}
			return ErrCore1Timeout
		}
	}
	return ErrCore1Timeout
}

// resizeFrame allocates the frame image for the current mode if the
// dimensions changed.
func (b *Board) resizeFrame() {
	m := b.video.GetMode()
	w, h := m.HorizontalPixels(), m.VisibleLines()
	if b.frame == nil || b.frame.Bounds().Dx() != w || b.frame.Bounds().Dy() != h {
		b.frame = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
}

// Tick steps one scan-line of video. Visible lines are painted into the
// frame image; completing the last visible line fires FrameDone.
func (b *Board) Tick() error {
	line, pixels, err := b.video.StepLine()
	if err != nil {
		return err
	}
	if pixels == nil {
		return nil
	}
	b.resizeFrame()
	b.paintRow(int(line), pixels)
	if int(line) == b.video.VisibleScanLines()-1 && b.frameDone != nil {
		b.frameDone(b.frame)
	}
	return nil
}

// RunFrame steps a whole frame's worth of scan-lines, visible and
// blanking.
func (b *Board) RunFrame() error {
	for i, total := 0, b.video.TotalScanLines(); i < total; i++ {
		if err := b.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// paintRow expands one line of 12 bit pixels into the frame image. Each 4
// bit channel scales to 8 bits.
func (b *Board) paintRow(line int, pixels []uint16) {
	if line >= b.frame.Bounds().Dy() {
		return
	}
	w := b.frame.Bounds().Dx()
	if len(pixels) < w {
		w = len(pixels)
	}
	row := b.frame.Pix[line*b.frame.Stride:]
	for x := 0; x < w; x++ {
		c := vga.RGBColour(pixels[x])
		o := x * 4
		row[o] = c.Red() * 17
		row[o+1] = c.Green() * 17
		row[o+2] = c.Blue() * 17
		row[o+3] = 0xFF
	}
}

// SignOn clears the console and prints the boot banner.
func (b *Board) SignOn() {
	console := b.video.Console()
	console.Clear()
	console.SetAttr(vga.NewAttr(15, 4, false))
	fmt.Fprintf(console, "%-80s", "picovga Version "+bios.Version)
	console.SetAttr(vga.DefaultAttr)
	m := b.video.GetMode()
	cols, rows := console.Size()
	fmt.Fprintf(console, "Video: %s, %d x %d text\n", m, cols, rows)
	fmt.Fprintf(console, "RAM: %d KiB\n", b.ram.Size()/1024)
}

// Boot builds the BIOS API for this board and hands control to the
// operating system entry point. It returns when the OS does.
func (b *Board) Boot(osEntry func(*bios.API)) error {
	api, err := bios.New(&bios.Def{
		Video: b.video,
		RAM:   b.ram,
	})
	if err != nil {
		return fmt.Errorf("bios init: %w", err)
	}
	osEntry(api)
	return nil
}

// PowerOff stops the render loop and any waiters.
func (b *Board) PowerOff() {
	b.video.Shutdown()
}
