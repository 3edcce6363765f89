package vga

import "testing"

func TestFontShapes(t *testing.T) {
	if got, want := len(font16.Data), 256*16; got != want {
		t.Fatalf("font16 size: got %d want %d", got, want)
	}
	if got, want := len(font8.Data), 256*8; got != want {
		t.Fatalf("font8 size: got %d want %d", got, want)
	}
	if font16.Height != 16 || font8.Height != 8 {
		t.Fatalf("font heights: got %d/%d want 16/8", font16.Height, font8.Height)
	}
}

func TestFontGlyphs(t *testing.T) {
	// 'A' has ink; space does not.
	var ink uint8
	for r := 0; r < 16; r++ {
		ink |= font16.Data['A'*16+r]
	}
	if ink == 0 {
		t.Error("glyph 'A' is blank in font16")
	}
	for r := 0; r < 16; r++ {
		if font16.Data[' '*16+r] != 0 {
			t.Errorf("space row %d not blank: %#08b", r, font16.Data[' '*16+r])
		}
	}

	// Glyphs past ASCII fall back to the block shape.
	if font16.Data[200*16+5] != 0x7E {
		t.Errorf("high glyph row: got %#x want 0x7e", font16.Data[200*16+5])
	}
}

func TestFont8Derivation(t *testing.T) {
	// The 8x8 font folds adjacent 8x16 row pairs together, so every row
	// is the OR of its two source rows.
	for _, glyph := range []int{'A', 'g', '0', '#'} {
		for r := 0; r < 8; r++ {
			want := font16.Data[glyph*16+2*r] | font16.Data[glyph*16+2*r+1]
			if got := font8.Data[glyph*8+r]; got != want {
				t.Errorf("glyph %q row %d: got %#08b want %#08b", glyph, r, got, want)
			}
		}
	}
}
