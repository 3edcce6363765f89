package vga

import (
	"testing"

	"github.com/go-test/deep"
)

// naiveLine renders one scan-line of the grid pixel by pixel, straight
// from the font and palette. The fast path must agree with it.
func naiveLine(s *Subsystem, line int) []uint32 {
	font := s.font.Load()
	numCols := int(s.numCols.Load())
	textRow := line / font.Height
	fontRow := line % font.Height

	repeat := 1
	if numCols == 40 {
		repeat = 2
	}
	var pixels []RGBColour
	for col := 0; col < numCols; col++ {
		cell := s.grid[textRow*numCols+col]
		fg := s.palette[cell.Attr().FgColour()]
		bg := s.palette[cell.Attr().BgColour()]
		bits := font.Data[int(cell.Glyph())*font.Height+fontRow]
		for b := 7; b >= 0; b-- {
			c := bg
			if bits&(1<<b) != 0 {
				c = fg
			}
			for r := 0; r < repeat; r++ {
				pixels = append(pixels, c)
			}
		}
	}
	words := make([]uint32, len(pixels)/2)
	for i := range words {
		words[i] = uint32(NewRGBPair(pixels[2*i], pixels[2*i+1]))
	}
	return words
}

func fillTestGrid(s *Subsystem) {
	cols := int(s.numCols.Load())
	rows := int(s.numRows.Load())
	for i := 0; i < cols*rows; i++ {
		glyph := uint8(' ' + i%95)
		attr := NewAttr(uint8(i%16), uint8((i/3)%8), false)
		s.grid[i] = NewGlyphAttr(glyph, attr)
	}
}

func TestRender80Cols(t *testing.T) {
	s, err := Init(&Def{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	fillTestGrid(s)

	for _, line := range []uint32{0, 7, 233, 479} {
		buf := s.buffers[line&1]
		buf.SetReady(line)
		s.renderScanline(buf)
		if buf.IsReadyForRendering() {
			t.Fatalf("line %d: buffer not marked done", line)
		}
		if got, want := buf.words[0], uint32(319); got != want {
			t.Errorf("line %d length word: got %d want %d", line, got, want)
		}
		if diff := deep.Equal(buf.PairWords(), naiveLine(s, int(line))); diff != nil {
			t.Errorf("line %d pixels differ: %v", line, diff)
		}
	}
}

func TestRender80ColsFont8(t *testing.T) {
	s, err := Init(&Def{Mode: NewMode(Timing640x480, FormatText8x8)})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	fillTestGrid(s)

	buf := s.buffers[1]
	buf.SetReady(13)
	s.renderScanline(buf)
	if diff := deep.Equal(buf.PairWords(), naiveLine(s, 13)); diff != nil {
		t.Errorf("pixels differ: %v", diff)
	}
}

func TestRender40Cols(t *testing.T) {
	s, err := Init(&Def{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	// No supported mode selects 40 columns, but the render path is kept
	// for the half-width timings. Drive it directly.
	s.numCols.Store(40)
	fillTestGrid(s)

	buf := s.buffers[0]
	buf.SetReady(42)
	s.renderScanline(buf)
	if got, want := buf.words[0], uint32(319); got != want {
		t.Errorf("length word: got %d want %d", got, want)
	}
	if diff := deep.Equal(buf.PairWords(), naiveLine(s, 42)); diff != nil {
		t.Errorf("pixels differ: %v", diff)
	}
}

func TestRenderBlankGrid(t *testing.T) {
	s, err := Init(&Def{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	// Glyph 0 row 0 is empty, so a fresh grid renders to the default
	// background everywhere.
	buf := s.buffers[0]
	buf.SetReady(0)
	s.renderScanline(buf)
	bg := uint32(NewRGBPair(s.palette[0], s.palette[0]))
	for i, w := range buf.PairWords() {
		if w != bg {
			t.Fatalf("pair %d: got %#08x want %#08x", i, w, bg)
		}
	}
}
