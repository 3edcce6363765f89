package memory

import "testing"

func TestRAM(t *testing.T) {
	r := NewRAM(1024)
	if got := r.Size(); got != 1024 {
		t.Errorf("Size: got %d want 1024", got)
	}
	if got := r.Read(10); got != 0 {
		t.Errorf("fresh RAM read: got %#x want 0", got)
	}
	r.Write(10, 0xA5)
	if got := r.Read(10); got != 0xA5 {
		t.Errorf("roundtrip: got %#x want 0xa5", got)
	}

	// Out of range accesses are silent.
	r.Write(1024, 0xFF)
	if got := r.Read(1024); got != 0 {
		t.Errorf("out of range read: got %#x want 0", got)
	}
}
