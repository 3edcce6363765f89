// Package dma models the two channel DMA controller that keeps the PIO
// FIFOs fed. Each channel reads 32 bit words from a memory source and
// pushes them into its FIFO whenever there is room, raising a completion
// interrupt once the programmed word count has transferred. The interrupt
// handler re-arms a channel by writing a new read address through the
// trigger alias, which restarts the transfer with the same word count.
package dma

import (
	"errors"
	"fmt"

	"picovga/pio"
)

// Timing and pixel channel assignments.
const (
	TimingChan = 0
	PixelChan  = 1

	NumChannels = 2
)

// ReadSource is anything a channel can be pointed at: a scan-line timing
// buffer or a line buffer. Words returns the backing words without copying;
// the channel reads them in order.
type ReadSource interface {
	Words() []uint32
}

// Channel is one DMA channel.
type Channel struct {
	sink     *pio.FIFO
	src      ReadSource
	pos      int
	count    int
	enabled  bool
	complete bool
}

// Arm programs the channel: read source, word count and FIFO sink. The
// transfer does not start until the first Pump.
func (c *Channel) Arm(src ReadSource, count int, sink *pio.FIFO) error {
	if src == nil {
		return errors.New("channel needs a read source")
	}
	if count <= 0 || count > len(src.Words()) {
		return fmt.Errorf("transfer count %d out of range for source of %d words", count, len(src.Words()))
	}
	c.src = src
	c.count = count
	c.sink = sink
	c.pos = 0
	c.enabled = true
	return nil
}

// Retrigger is the read-address trigger alias: point the channel at a new
// source and restart the transfer with the programmed count. Called from
// the interrupt handler, so it must not block or allocate.
func (c *Channel) Retrigger(src ReadSource) {
	c.src = src
	c.pos = 0
}

// Pump pushes words into the FIFO until it fills or the transfer count is
// reached, latching the completion flag on the final word. The FIFO's
// refill hook calls back into Pump as the state machine drains it.
func (c *Channel) Pump() {
	// A finished transfer latches completion exactly once; pumping again
	// before a retrigger must not re-raise it.
	if !c.enabled || c.src == nil || c.pos >= c.count {
		return
	}
	words := c.src.Words()
	for c.pos < c.count {
		if !c.sink.Push(words[c.pos]) {
			return
		}
		c.pos++
	}
	c.complete = true
}

// Busy reports whether a transfer is still in flight.
func (c *Channel) Busy() bool {
	return c.enabled && c.pos < c.count
}

// Source returns the currently armed read source.
func (c *Channel) Source() ReadSource {
	return c.src
}

// Controller is the DMA block: the channels plus the interrupt enable and
// status registers for IRQ line 0.
type Controller struct {
	ch   [NumChannels]Channel
	inte uint32
}

// New returns a reset controller.
func New() *Controller {
	ctl := &Controller{}
	ctl.Reset()
	return ctl
}

// Reset returns every channel and the interrupt registers to power-on
// state. Starting with stale channel state after a warm restart makes the
// video bring-up unreliable, so the board resets the engine before
// configuring it.
func (ctl *Controller) Reset() {
	for i := range ctl.ch {
		ctl.ch[i] = Channel{}
	}
	ctl.inte = 0
}

// Channel returns channel n.
func (ctl *Controller) Channel(n int) *Channel {
	return &ctl.ch[n]
}

// EnableIRQ unmasks completion interrupts for the channels in mask.
func (ctl *Controller) EnableIRQ(mask uint32) {
	ctl.inte |= mask
}

// IRQStatus returns the pending, unmasked completion bits.
func (ctl *Controller) IRQStatus() uint32 {
	var status uint32
	for i := range ctl.ch {
		if ctl.ch[i].complete {
			status |= 1 << i
		}
	}
	return status & ctl.inte
}

// Ack clears the completion bits in mask.
func (ctl *Controller) Ack(mask uint32) {
	for i := range ctl.ch {
		if mask&(1<<i) != 0 {
			ctl.ch[i].complete = false
		}
	}
}

// Raised implements irq.Sender for the DMA interrupt line.
func (ctl *Controller) Raised() bool {
	return ctl.IRQStatus() != 0
}
