// Package irq defines the basic interfaces for routing completion
// interrupts between peripherals and their handlers without cross coupling
// component logic. A sender holds its line high until the handler
// acknowledges the underlying status bits, so level triggered semantics are
// assumed throughout.
package irq

type Sender interface {
	// Raised indicates whether the interrupt line is currently held high.
	Raised() bool
}

type Receiver interface {
	// Install takes the given sender and stores it for later checks in
	// appropriate logic.
	Install(s Sender)
}
