package vga

import "sync/atomic"

const (
	// MaxTextCols is the widest text grid any mode needs.
	MaxTextCols = 80
	// MaxTextRows is the tallest text grid any mode needs.
	MaxTextRows = 60
)

// DefaultAttr is white on black, no blink.
var DefaultAttr = NewAttr(15, 0, false)

// TextConsole draws characters into the glyph grid, tracking a cursor and
// a current attribute. It scrolls when the bottom row fills and converts
// anything outside printable ASCII to '?'.
//
// The cursor and attribute are atomics so the console can be written from
// either core without locking. Interleaved writers may still interleave
// their characters, but nothing tears.
type TextConsole struct {
	row  atomic.Uint32
	col  atomic.Uint32
	attr atomic.Uint32

	cols atomic.Uint32
	rows atomic.Uint32
	grid atomic.Pointer[[MaxTextCols * MaxTextRows]GlyphAttr]
}

// SetFramebuffer points the console at a glyph grid of the given text
// dimensions and homes the cursor. Called on every mode change.
func (tc *TextConsole) SetFramebuffer(grid *[MaxTextCols * MaxTextRows]GlyphAttr, cols, rows int) {
	tc.cols.Store(uint32(cols))
	tc.rows.Store(uint32(rows))
	tc.grid.Store(grid)
	tc.row.Store(0)
	tc.col.Store(0)
	tc.attr.Store(uint32(DefaultAttr))
}

// Size returns the grid dimensions in (cols, rows).
func (tc *TextConsole) Size() (int, int) {
	return int(tc.cols.Load()), int(tc.rows.Load())
}

// MoveTo places the cursor. Each axis is applied only if in range, so an
// out of range row still moves the column and vice versa.
func (tc *TextConsole) MoveTo(row, col int) {
	if row >= 0 && row < int(tc.rows.Load()) {
		tc.row.Store(uint32(row))
	}
	if col >= 0 && col < int(tc.cols.Load()) {
		tc.col.Store(uint32(col))
	}
}

// SetAttr changes the attribute used for subsequent characters.
func (tc *TextConsole) SetAttr(a Attr) {
	tc.attr.Store(uint32(a))
}

// CurrentAttr returns the attribute in use.
func (tc *TextConsole) CurrentAttr() Attr {
	return Attr(tc.attr.Load())
}

// Clear blanks the grid with the current attribute and homes the cursor.
func (tc *TextConsole) Clear() {
	grid := tc.grid.Load()
	if grid == nil {
		return
	}
	cols, rows := tc.Size()
	blank := NewGlyphAttr(' ', tc.CurrentAttr())
	for i := 0; i < cols*rows; i++ {
		grid[i] = blank
	}
	tc.row.Store(0)
	tc.col.Store(0)
}

// Write implements io.Writer so the console can sit behind fmt.Fprintf.
func (tc *TextConsole) Write(p []byte) (int, error) {
	for _, b := range p {
		tc.WriteByte(b)
	}
	return len(p), nil
}

// WriteString draws a string at the cursor.
func (tc *TextConsole) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		tc.WriteByte(s[i])
	}
}

// WriteByte draws one character. LF moves to the start of the next line,
// CR returns to the start of the current line, everything else prints.
// Bytes outside printable ASCII come out as '?'.
func (tc *TextConsole) WriteByte(b uint8) {
	grid := tc.grid.Load()
	if grid == nil {
		return
	}
	switch b {
	case '\n':
		tc.col.Store(0)
		tc.newline(grid)
	case '\r':
		tc.col.Store(0)
	default:
		if b < ' ' || b > '~' {
			b = '?'
		}
		cols := tc.cols.Load()
		row, col := tc.row.Load(), tc.col.Load()
		grid[row*cols+col] = NewGlyphAttr(b, tc.CurrentAttr())
		if col+1 == cols {
			tc.col.Store(0)
			tc.newline(grid)
		} else {
			tc.col.Store(col + 1)
		}
	}
}

// newline advances the cursor a row, scrolling when it falls off the
// bottom.
func (tc *TextConsole) newline(grid *[MaxTextCols * MaxTextRows]GlyphAttr) {
	row := tc.row.Load()
	if row+1 < tc.rows.Load() {
		tc.row.Store(row + 1)
		return
	}
	tc.scroll(grid)
}

// scroll moves every row up one and blanks the bottom row.
func (tc *TextConsole) scroll(grid *[MaxTextCols * MaxTextRows]GlyphAttr) {
	cols, rows := tc.Size()
	copy(grid[:cols*(rows-1)], grid[cols:cols*rows])
	blank := NewGlyphAttr(' ', tc.CurrentAttr())
	for i := cols * (rows - 1); i < cols*rows; i++ {
		grid[i] = blank
	}
}
