package vga

// RGBColour is a 12 bit colour in the wiring order of the resistor DAC:
// blue in bits 8..11, green in bits 4..7, red in bits 0..3.
type RGBColour uint16

// NewRGBColour converts 8 bit channel values, keeping the top nibble of each.
func NewRGBColour(red, green, blue uint8) RGBColour {
	return RGBColour(blue>>4)<<8 | RGBColour(green>>4)<<4 | RGBColour(red>>4)
}

// Red returns the 4 bit red channel.
func (c RGBColour) Red() uint8 {
	return uint8(c) & 0xF
}

// Green returns the 4 bit green channel.
func (c RGBColour) Green() uint8 {
	return uint8(c>>4) & 0xF
}

// Blue returns the 4 bit blue channel.
func (c RGBColour) Blue() uint8 {
	return uint8(c>>8) & 0xF
}

// RGBPair packs two adjacent pixels into the 32 bit word the pixel state
// machine consumes. The machine shifts right, so the left hand pixel sits
// in the low half.
type RGBPair uint32

// NewRGBPair packs a left and right pixel.
func NewRGBPair(left, right RGBColour) RGBPair {
	return RGBPair(right)<<16 | RGBPair(left)
}

// Left returns the first pixel of the pair.
func (p RGBPair) Left() RGBColour {
	return RGBColour(p) & 0xFFF
}

// Right returns the second pixel of the pair.
func (p RGBPair) Right() RGBColour {
	return RGBColour(p>>16) & 0xFFF
}

// The handful of colours the console and sign-on use directly.
const (
	ColourWhite RGBColour = 0xFFF
	ColourBlack RGBColour = 0x000
	ColourBlue  RGBColour = 0xF00
	ColourGreen RGBColour = 0x0F0
	ColourRed   RGBColour = 0x00F
)

// NumPaletteEntries is the palette size. Only the low 4 bits (foreground)
// or 3 bits (background) of an attribute index it in text mode, but the
// full 256 entries are programmable for the bitmapped formats.
const NumPaletteEntries = 256

// buildPalette returns the default palette, laid out like the xterm
// 256 colour table: 16 named colours, a 6x6x6 colour cube, then 24 greys.
func buildPalette() [NumPaletteEntries]RGBColour {
	var p [NumPaletteEntries]RGBColour

	base := [16][3]uint8{
		{0x00, 0x00, 0x00}, // black
		{0x80, 0x00, 0x00}, // maroon
		{0x00, 0x80, 0x00}, // green
		{0x80, 0x80, 0x00}, // olive
		{0x00, 0x00, 0x80}, // navy
		{0x80, 0x00, 0x80}, // purple
		{0x00, 0x80, 0x80}, // teal
		{0xC0, 0xC0, 0xC0}, // silver
		{0x80, 0x80, 0x80}, // grey
		{0xFF, 0x00, 0x00}, // red
		{0x00, 0xFF, 0x00}, // lime
		{0xFF, 0xFF, 0x00}, // yellow
		{0x00, 0x00, 0xFF}, // blue
		{0xFF, 0x00, 0xFF}, // fuchsia
		{0x00, 0xFF, 0xFF}, // aqua
		{0xFF, 0xFF, 0xFF}, // white
	}
	for i, c := range base {
		p[i] = NewRGBColour(c[0], c[1], c[2])
	}

	levels := [6]uint8{0x00, 0x5F, 0x87, 0xAF, 0xD7, 0xFF}
	i := 16
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				p[i] = NewRGBColour(r, g, b)
				i++
			}
		}
	}

	for n := 0; n < 24; n++ {
		v := uint8(8 + 10*n)
		p[i] = NewRGBColour(v, v, v)
		i++
	}
	return p
}
