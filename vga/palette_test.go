package vga

import "testing"

func TestRGBColour(t *testing.T) {
	c := NewRGBColour(0xFF, 0x87, 0x12)
	if got, want := c.Red(), uint8(0xF); got != want {
		t.Errorf("Red: got %#x want %#x", got, want)
	}
	if got, want := c.Green(), uint8(0x8); got != want {
		t.Errorf("Green: got %#x want %#x", got, want)
	}
	if got, want := c.Blue(), uint8(0x1); got != want {
		t.Errorf("Blue: got %#x want %#x", got, want)
	}
}

func TestRGBPairPacking(t *testing.T) {
	p := NewRGBPair(0x123, 0xABC)
	if got, want := p.Left(), RGBColour(0x123); got != want {
		t.Errorf("Left: got %#x want %#x", got, want)
	}
	if got, want := p.Right(), RGBColour(0xABC); got != want {
		t.Errorf("Right: got %#x want %#x", got, want)
	}
	// The left pixel must occupy the low half, the shift direction of the
	// output machine depends on it.
	if got, want := uint32(p)&0xFFFF, uint32(0x123); got != want {
		t.Errorf("low half: got %#x want %#x", got, want)
	}
}

func TestDefaultPalette(t *testing.T) {
	p := buildPalette()
	tests := []struct {
		name string
		idx  int
		want RGBColour
	}{
		{"black", 0, 0x000},
		{"maroon", 1, 0x008},
		{"silver", 7, 0xCCC},
		{"red", 9, 0x00F},
		{"lime", 10, 0x0F0},
		{"blue", 12, 0xF00},
		{"white", 15, 0xFFF},
		{"cube start", 16, 0x000},
		{"cube end", 231, 0xFFF},
		{"first grey", 232, 0x000},
		{"last grey", 255, 0xEEE},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := p[test.idx]; got != test.want {
				t.Errorf("palette[%d]: got %#03x want %#03x", test.idx, got, test.want)
			}
		})
	}
}
