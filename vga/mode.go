// Package vga implements the text-mode video generator: palette and colour
// lookup, scan-line timing, the double-buffered pixel pipeline, the render
// loop that runs on the second core, and the text console drawn on top of
// the glyph grid.
package vga

import "fmt"

// Timing selects the horizontal/vertical scan standard.
type Timing uint8

const (
	// Timing640x480 is the 640x480 @ 60 Hz standard, 25.175 MHz pixel clock.
	Timing640x480 Timing = iota
	// Timing640x400 is the 640x400 @ 70 Hz standard, same pixel clock.
	Timing640x400
	// Timing800x600 is 800x600 @ 60 Hz. Needs a 40 MHz pixel clock the
	// board cannot produce, so it is defined but never accepted.
	Timing800x600
)

// Format selects the pixel format within a scan standard.
type Format uint8

const (
	// FormatText8x16 is text mode with an 8x16 glyph cell.
	FormatText8x16 Format = iota
	// FormatText8x8 is text mode with an 8x8 glyph cell.
	FormatText8x8
	// FormatChunky32 through FormatChunky1 are bitmapped formats. Defined
	// for completeness; none are supported.
	FormatChunky32
	FormatChunky16
	FormatChunky8
	FormatChunky4
	FormatChunky2
	FormatChunky1
)

// Mode is a video mode: a timing, a format, and flags for horizontal and
// vertical line doubling. It packs into one byte the same way the mode
// register reads back.
type Mode struct {
	timing  Timing
	format  Format
	dblHorz bool
	dblVert bool
}

// NewMode returns a mode with no line doubling.
func NewMode(t Timing, f Format) Mode {
	return Mode{timing: t, format: f}
}

// ModeFromByte unpacks a mode register value.
func ModeFromByte(b uint8) Mode {
	return Mode{
		timing:  Timing(b>>5) & 0x7,
		format:  Format(b>>2) & 0x7,
		dblHorz: b&0x2 != 0,
		dblVert: b&0x1 != 0,
	}
}

// AsByte packs the mode into its register value.
func (m Mode) AsByte() uint8 {
	b := uint8(m.timing)<<5 | uint8(m.format)<<2
	if m.dblHorz {
		b |= 0x2
	}
	if m.dblVert {
		b |= 0x1
	}
	return b
}

// Timing returns the scan standard.
func (m Mode) Timing() Timing {
	return m.timing
}

// Format returns the pixel format.
func (m Mode) Format() Format {
	return m.format
}

// IsHorizDouble reports whether pixels are doubled horizontally.
func (m Mode) IsHorizDouble() bool {
	return m.dblHorz
}

// IsVertDouble reports whether scan lines are doubled vertically.
func (m Mode) IsVertDouble() bool {
	return m.dblVert
}

// VisibleLines returns the number of visible scan lines.
func (m Mode) VisibleLines() int {
	var lines int
	switch m.timing {
	case Timing640x480:
		lines = 480
	case Timing640x400:
		lines = 400
	case Timing800x600:
		lines = 600
	}
	if m.dblVert {
		lines /= 2
	}
	return lines
}

// HorizontalPixels returns the number of visible pixels per line.
func (m Mode) HorizontalPixels() int {
	var pixels int
	switch m.timing {
	case Timing800x600:
		pixels = 800
	default:
		pixels = 640
	}
	if m.dblHorz {
		pixels /= 2
	}
	return pixels
}

// FrameRateHz returns the nominal refresh rate.
func (m Mode) FrameRateHz() int {
	if m.timing == Timing640x400 {
		return 70
	}
	return 60
}

// IsText reports whether the format is one of the text formats.
func (m Mode) IsText() bool {
	return m.format == FormatText8x16 || m.format == FormatText8x8
}

// FontHeight returns the glyph cell height for text formats, 0 otherwise.
func (m Mode) FontHeight() int {
	switch m.format {
	case FormatText8x16:
		return 16
	case FormatText8x8:
		return 8
	}
	return 0
}

// TextCols returns the number of text columns, 0 for non-text formats.
func (m Mode) TextCols() int {
	if !m.IsText() {
		return 0
	}
	return m.HorizontalPixels() / 8
}

// TextRows returns the number of text rows, 0 for non-text formats.
func (m Mode) TextRows() int {
	if !m.IsText() {
		return 0
	}
	return m.VisibleLines() / m.FontHeight()
}

func (m Mode) String() string {
	var t, f string
	switch m.timing {
	case Timing640x480:
		t = "640x480@60"
	case Timing640x400:
		t = "640x400@70"
	case Timing800x600:
		t = "800x600@60"
	default:
		t = fmt.Sprintf("timing%d", m.timing)
	}
	switch m.format {
	case FormatText8x16:
		f = "Text8x16"
	case FormatText8x8:
		f = "Text8x8"
	default:
		f = fmt.Sprintf("format%d", m.format)
	}
	return fmt.Sprintf("%s %s dblH=%t dblV=%t", t, f, m.dblHorz, m.dblVert)
}
