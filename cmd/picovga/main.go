// Binary picovga boots the board and shows its video output in an SDL
// window, standing in for a VGA monitor.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"log"
	"sync"

	"github.com/veandco/go-sdl2/sdl"

	"picovga/bios"
	"picovga/board"
	"picovga/vga"
)

var (
	debug    = flag.Bool("debug", false, "If true will emit video bring-up and mode change debugging while running")
	use400   = flag.Bool("mode400", false, "Use the 640x400@70 timing instead of 640x480@60")
	useFont8 = flag.Bool("font8", false, "Use the 8x8 font instead of 8x16")
	scale    = flag.Int("scale", 1, "Window scale factor")
)

var window *sdl.Window
var surface *sdl.Surface

func main() {
	flag.Parse()

	timing := vga.Timing640x480
	if *use400 {
		timing = vga.Timing640x400
	}
	format := vga.FormatText8x16
	if *useFont8 {
		format = vga.FormatText8x8
	}
	mode := vga.NewMode(timing, format)

	sdl.Main(func() {
		var wg sync.WaitGroup
		wg.Add(1)
		sdl.Do(func() {
			if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
				log.Fatalf("Can't init SDL: %v", err)
			}

			var err error
			w := int32(mode.HorizontalPixels() * *scale)
			h := int32(mode.VisibleLines() * *scale)
			window, err = sdl.CreateWindow("picovga", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, w, h, sdl.WINDOW_SHOWN)
			if err != nil {
				log.Fatalf("Can't create window: %v", err)
			}
			surface, err = window.GetSurface()
			if err != nil {
				log.Fatalf("Can't get window surface: %v", err)
			}
			wg.Done()
		})
		wg.Wait()
		defer func() {
			window.Destroy()
			sdl.Quit()
		}()

		b, err := board.Init(&board.Def{
			Mode: mode,
			FrameDone: func(frame *image.NRGBA) {
				sdl.Do(func() {
					draw.Draw(surface, surface.Bounds(), frame, image.Point{}, draw.Src)
					window.UpdateSurface()
				})
			},
			Debug: *debug,
		})
		if err != nil {
			log.Fatalf("Can't init board: %v", err)
		}
		if err := b.LaunchCore1(); err != nil {
			log.Fatalf("Can't launch core 1: %v", err)
		}
		b.SignOn()
		if err := b.Boot(demoOS); err != nil {
			log.Fatalf("Boot error: %v", err)
		}

		for {
			if err := b.Tick(); err != nil {
				log.Fatalf("Tick error: %v", err)
			}
		}
	})
}

// demoOS is the stand-in operating system: it reports what the BIOS
// offers and paints an attribute test pattern.
func demoOS(api *bios.API) {
	console := api.Console()
	fmt.Fprintf(console, "BIOS %s (API v%d)\n", api.BIOSVersionGet(), api.APIVersionGet())
	fmt.Fprintf(console, "Mode %s\n\n", api.VideoGetMode())

	for fg := 0; fg < 16; fg++ {
		console.SetAttr(vga.NewAttr(uint8(fg), 0, false))
		fmt.Fprintf(console, " %2d ", fg)
	}
	console.SetAttr(vga.DefaultAttr)
	console.WriteString("\n\n")
	for bg := 0; bg < 8; bg++ {
		console.SetAttr(vga.NewAttr(15, uint8(bg), false))
		fmt.Fprintf(console, " bg%d ", bg)
	}
	console.SetAttr(vga.DefaultAttr)
	console.WriteString("\nReady.\n")
}
