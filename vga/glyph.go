package vga

// Attr is a text cell attribute: foreground palette index in bits 0..3,
// background palette index in bits 4..6, blink flag in bit 7.
type Attr uint8

// NewAttr builds an attribute. Only 3 bits of background are kept.
func NewAttr(fg, bg uint8, blink bool) Attr {
	a := Attr(fg&0xF) | Attr(bg&0x7)<<4
	if blink {
		a |= 0x80
	}
	return a
}

// FgColour returns the foreground palette index.
func (a Attr) FgColour() uint8 {
	return uint8(a) & 0xF
}

// BgColour returns the background palette index.
func (a Attr) BgColour() uint8 {
	return uint8(a>>4) & 0x7
}

// Blink reports the blink flag.
func (a Attr) Blink() bool {
	return a&0x80 != 0
}

// GlyphAttr is one text cell: glyph index in the low byte, attribute in
// the high byte. This is the unit stored in video memory.
type GlyphAttr uint16

// NewGlyphAttr builds a cell.
func NewGlyphAttr(glyph uint8, attr Attr) GlyphAttr {
	return GlyphAttr(attr)<<8 | GlyphAttr(glyph)
}

// Glyph returns the glyph index.
func (ga GlyphAttr) Glyph() uint8 {
	return uint8(ga)
}

// Attr returns the attribute byte.
func (ga GlyphAttr) Attr() Attr {
	return Attr(ga >> 8)
}
