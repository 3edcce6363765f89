// Binary vgaterm boots the board headless and mirrors the text console in
// the current terminal, with keystrokes typed straight onto the glyph
// grid. Handy for poking at the video stack without SDL.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-tty"

	"picovga/bios"
	"picovga/board"
	"picovga/vga"
)

var (
	debug  = flag.Bool("debug", false, "If true will emit video bring-up debugging while running")
	use400 = flag.Bool("mode400", false, "Use the 640x400@70 timing instead of 640x480@60")
)

// ansiFor maps the 16 palette indices to ANSI SGR colour codes, normal
// then bright.
var ansiFor = [16]int{30, 31, 32, 33, 34, 35, 36, 37, 90, 91, 92, 93, 94, 95, 96, 97}

func main() {
	flag.Parse()

	timing := vga.Timing640x480
	if *use400 {
		timing = vga.Timing640x400
	}

	b, err := board.Init(&board.Def{
		Mode:  vga.NewMode(timing, vga.FormatText8x16),
		Debug: *debug,
	})
	if err != nil {
		log.Fatalf("Can't init board: %v", err)
	}
	if err := b.LaunchCore1(); err != nil {
		log.Fatalf("Can't launch core 1: %v", err)
	}
	b.SignOn()

	t, err := tty.Open()
	if err != nil {
		log.Fatalf("Can't open tty: %v", err)
	}
	defer t.Close()

	console := b.Video().Console()
	quit := make(chan struct{})
	go func() {
		for {
			r, err := t.ReadRune()
			if err != nil {
				close(quit)
				return
			}
			switch r {
			case 0x03, 0x04: // ^C, ^D
				close(quit)
				return
			case '\r':
				console.WriteByte('\n')
			default:
				if r < 0x80 {
					console.WriteByte(uint8(r))
				}
			}
		}
	}()

	if err := b.Boot(func(api *bios.API) {
		fmt.Fprintf(api.Console(), "BIOS %s ready, type away (^C quits)\n", api.BIOSVersionGet())
	}); err != nil {
		log.Fatalf("Boot error: %v", err)
	}

	out := t.Output()
	fmt.Fprint(out, "\x1b[2J")
	for {
		select {
		case <-quit:
			fmt.Fprint(out, "\x1b[0m\x1b[2J\x1b[H")
			b.PowerOff()
			return
		default:
		}
		if err := b.RunFrame(); err != nil {
			log.Fatalf("Frame error: %v", err)
		}
		drawGrid(out, b)
	}
}

// drawGrid repaints the glyph grid into the terminal using ANSI colours.
// The whole frame is built in one string so the terminal sees a single
// write per refresh.
func drawGrid(out *os.File, b *board.Board) {
	console := b.Video().Console()
	cols, rows := console.Size()
	vram := b.Video().VideoMemory()

	var sb strings.Builder
	sb.WriteString("\x1b[H")
	for row := 0; row < rows; row++ {
		lastAttr := -1
		for col := 0; col < cols; col++ {
			addr := uint32((row*cols + col) * 2)
			glyph := vram.Read(addr)
			attr := int(vram.Read(addr + 1))
			if attr != lastAttr {
				a := vga.Attr(attr)
				fmt.Fprintf(&sb, "\x1b[0;%d;%dm", ansiFor[a.FgColour()], ansiFor[a.BgColour()]+10)
				lastAttr = attr
			}
			if glyph < ' ' || glyph > '~' {
				glyph = ' '
			}
			sb.WriteByte(glyph)
		}
		sb.WriteString("\x1b[0m\r\n")
	}
	fmt.Fprint(out, sb.String())
}
