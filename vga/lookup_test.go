package vga

import "testing"

func TestLookupTable(t *testing.T) {
	palette := buildPalette()
	lut := buildLookup(&palette)

	attr := NewAttr(15, 4, false) // white on navy
	fg := palette[15]
	bg := palette[4]

	tests := []struct {
		name string
		bits uint8
		want RGBPair
	}{
		{"both bg", 0b00, NewRGBPair(bg, bg)},
		{"right fg", 0b01, NewRGBPair(bg, fg)},
		{"left fg", 0b10, NewRGBPair(fg, bg)},
		{"both fg", 0b11, NewRGBPair(fg, fg)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := lut[lookupIndex(attr, test.bits)]; got != test.want {
				t.Errorf("lut entry: got %#08x want %#08x", got, test.want)
			}
		})
	}
}

func TestLookupTableExhaustive(t *testing.T) {
	palette := buildPalette()
	lut := buildLookup(&palette)

	// Every foreground, background and font slice combination must map
	// to the pair built straight from the palette.
	for fg := uint8(0); fg < 16; fg++ {
		for bg := uint8(0); bg < 8; bg++ {
			attr := NewAttr(fg, bg, false)
			for bits := uint8(0); bits < 4; bits++ {
				left, right := palette[bg], palette[bg]
				if bits&0b10 != 0 {
					left = palette[fg]
				}
				if bits&0b01 != 0 {
					right = palette[fg]
				}
				want := NewRGBPair(left, right)
				if got := lut[lookupIndex(attr, bits)]; got != want {
					t.Fatalf("fg %d bg %d bits %02b: got %#08x want %#08x",
						fg, bg, bits, got, want)
				}
			}
		}
	}
}

func TestLookupIgnoresBlink(t *testing.T) {
	palette := buildPalette()
	lut := buildLookup(&palette)

	plain := NewAttr(10, 2, false)
	blink := NewAttr(10, 2, true)
	for bits := uint8(0); bits < 4; bits++ {
		if lut[lookupIndex(plain, bits)] != lut[lookupIndex(blink, bits)] {
			t.Errorf("bits %02b: blink attribute selects different entry", bits)
		}
	}
}

func TestLookupTracksPalette(t *testing.T) {
	palette := buildPalette()
	lut := buildLookup(&palette)

	attr := NewAttr(1, 0, false)
	before := lut[lookupIndex(attr, 0b11)]

	palette[1] = 0x0F0
	fillLookup(lut, &palette)
	after := lut[lookupIndex(attr, 0b11)]

	if before == after {
		t.Error("rebuilding the lookup did not pick up the palette change")
	}
	if got, want := after, NewRGBPair(0x0F0, 0x0F0); got != want {
		t.Errorf("rebuilt entry: got %#08x want %#08x", got, want)
	}
}
