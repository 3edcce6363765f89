package vga

import (
	"fmt"
	"strings"
	"testing"
)

func newTestConsole(cols, rows int) (*TextConsole, *[MaxTextCols * MaxTextRows]GlyphAttr) {
	grid := &[MaxTextCols * MaxTextRows]GlyphAttr{}
	tc := &TextConsole{}
	tc.SetFramebuffer(grid, cols, rows)
	return tc, grid
}

// gridRow renders a grid row back to a string for easy comparison.
func gridRow(grid *[MaxTextCols * MaxTextRows]GlyphAttr, cols, row int) string {
	var sb strings.Builder
	for col := 0; col < cols; col++ {
		g := grid[row*cols+col].Glyph()
		if g == 0 {
			g = ' '
		}
		sb.WriteByte(g)
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestConsoleWrite(t *testing.T) {
	tc, grid := newTestConsole(80, 30)
	tc.WriteString("Hello, world")
	if got, want := gridRow(grid, 80, 0), "Hello, world"; got != want {
		t.Errorf("row 0: got %q want %q", got, want)
	}
	if cols, rows := tc.Size(); cols != 80 || rows != 30 {
		t.Errorf("Size: got %dx%d want 80x30", cols, rows)
	}
}

func TestConsoleControlCharacters(t *testing.T) {
	tc, grid := newTestConsole(80, 30)
	tc.WriteString("abc\ndef")
	if got, want := gridRow(grid, 80, 0), "abc"; got != want {
		t.Errorf("row 0: got %q want %q", got, want)
	}
	if got, want := gridRow(grid, 80, 1), "def"; got != want {
		t.Errorf("row 1: got %q want %q", got, want)
	}

	// CR returns to column 0 on the same row, so "def" gets overstruck.
	tc.WriteString("\rDEF")
	if got, want := gridRow(grid, 80, 1), "DEF"; got != want {
		t.Errorf("row 1 after CR: got %q want %q", got, want)
	}
}

func TestConsoleNonASCII(t *testing.T) {
	tc, grid := newTestConsole(80, 30)
	tc.WriteByte(0x07)
	tc.WriteByte(0xC3)
	tc.WriteByte('x')
	if got, want := gridRow(grid, 80, 0), "??x"; got != want {
		t.Errorf("row 0: got %q want %q", got, want)
	}
}

func TestConsoleWrap(t *testing.T) {
	tc, grid := newTestConsole(80, 30)
	tc.WriteString(strings.Repeat("a", 80) + "b")
	if got, want := gridRow(grid, 80, 0), strings.Repeat("a", 80); got != want {
		t.Errorf("row 0: got %q want %q", got, want)
	}
	if got, want := gridRow(grid, 80, 1), "b"; got != want {
		t.Errorf("row 1: got %q want %q", got, want)
	}
}

func TestConsoleScroll(t *testing.T) {
	tc, grid := newTestConsole(80, 30)
	for i := 0; i < 31; i++ {
		fmt.Fprintf(tc, "line %d", i)
		if i < 30 {
			tc.WriteByte('\n')
		}
	}
	// Line 0 scrolled off; line 1 is now the top row.
	if got, want := gridRow(grid, 80, 0), "line 1"; got != want {
		t.Errorf("row 0 after scroll: got %q want %q", got, want)
	}
	if got, want := gridRow(grid, 80, 29), "line 30"; got != want {
		t.Errorf("bottom row after scroll: got %q want %q", got, want)
	}
}

func TestConsoleMoveTo(t *testing.T) {
	tc, grid := newTestConsole(80, 30)
	tc.MoveTo(5, 10)
	tc.WriteByte('X')
	if got := grid[5*80+10].Glyph(); got != 'X' {
		t.Errorf("glyph at (5,10): got %q want 'X'", got)
	}

	// Out of range values are ignored per axis.
	tc.MoveTo(99, 3)
	tc.WriteByte('Y')
	if got := grid[5*80+3].Glyph(); got != 'Y' {
		t.Errorf("glyph at (5,3): got %q want 'Y'", got)
	}
	tc.MoveTo(7, -1)
	tc.WriteByte('Z')
	if got := grid[7*80+4].Glyph(); got != 'Z' {
		t.Errorf("glyph at (7,4): got %q want 'Z'", got)
	}
}

func TestConsoleAttr(t *testing.T) {
	tc, grid := newTestConsole(80, 30)
	attr := NewAttr(2, 4, true)
	tc.SetAttr(attr)
	tc.WriteByte('q')
	cell := grid[0]
	if got := cell.Attr(); got != attr {
		t.Errorf("cell attr: got %#x want %#x", got, attr)
	}
	if got := cell.Attr().FgColour(); got != 2 {
		t.Errorf("fg: got %d want 2", got)
	}
	if got := cell.Attr().BgColour(); got != 4 {
		t.Errorf("bg: got %d want 4", got)
	}
	if !cell.Attr().Blink() {
		t.Error("blink flag lost")
	}
}

func TestConsoleClear(t *testing.T) {
	tc, grid := newTestConsole(80, 30)
	tc.WriteString("residue")
	tc.Clear()
	if got := gridRow(grid, 80, 0); got != "" {
		t.Errorf("row 0 after clear: got %q want empty", got)
	}
	tc.WriteByte('h')
	if got := grid[0].Glyph(); got != 'h' {
		t.Error("cursor not homed by clear")
	}
}
