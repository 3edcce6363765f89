// Package memory defines the byte addressed view of memory regions the
// firmware hands to the operating system: the reserved video memory and the
// application RAM window. Each region has its own layout rules (the text
// grid interleaves glyph and attribute bytes) so regions are defined as an
// interface rather than raw slices.
package memory

type Bank interface {
	// Read returns the data byte stored at addr. Reads beyond Size return 0.
	Read(addr uint32) uint8
	// Write updates addr with the new value. Writes beyond Size are a no-op
	// without any error.
	Write(addr uint32, val uint8)
	// Size returns the number of addressable bytes in the bank.
	Size() uint32
}

// RAM is a plain byte bank used for the application memory region.
type RAM struct {
	data []uint8
}

// NewRAM returns a zeroed RAM bank of the given size.
func NewRAM(size uint32) *RAM {
	return &RAM{data: make([]uint8, size)}
}

func (r *RAM) Read(addr uint32) uint8 {
	if addr >= uint32(len(r.data)) {
		return 0
	}
	return r.data[addr]
}

func (r *RAM) Write(addr uint32, val uint8) {
	if addr >= uint32(len(r.data)) {
		return
	}
	r.data[addr] = val
}

func (r *RAM) Size() uint32 {
	return uint32(len(r.data))
}
