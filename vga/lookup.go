package vga

// The render loop converts font bitmaps to pixel pairs through a lookup
// table instead of testing bits one at a time. The table is indexed by the
// low 7 bits of the attribute byte (foreground and background, blink
// dropped) and a 2 bit slice of the font row, and yields the packed pair
// for those two pixels. Bit 1 of the slice is the left hand pixel.

const (
	lookupAttrBits = 7
	lookupEntries  = (1 << lookupAttrBits) * 4
)

// lookupIndex returns the table index for an attribute and a 2 bit font
// row slice.
func lookupIndex(attr Attr, bits uint8) int {
	return int(attr&0x7F)<<2 | int(bits&0x3)
}

// buildLookup fills the pair table from the palette. It is rebuilt
// whenever a palette entry an attribute can reach changes.
func buildLookup(palette *[NumPaletteEntries]RGBColour) *[lookupEntries]RGBPair {
	lut := &[lookupEntries]RGBPair{}
	fillLookup(lut, palette)
	return lut
}

func fillLookup(lut *[lookupEntries]RGBPair, palette *[NumPaletteEntries]RGBColour) {
	for attr := 0; attr < 1<<lookupAttrBits; attr++ {
		fg := palette[attr&0xF]
		bg := palette[(attr>>4)&0x7]
		for bits := 0; bits < 4; bits++ {
			left, right := bg, bg
			if bits&0x2 != 0 {
				left = fg
			}
			if bits&0x1 != 0 {
				right = fg
			}
			lut[attr<<2|bits] = NewRGBPair(left, right)
		}
	}
}
