// Package interrupt implements the GBA interrupt controller: the
// master-enable, enable-mask and request/acknowledge registers that
// serve the 14 interrupt sources named in addr.InterruptSource.
package interrupt

import "github.com/mirelan/gbacore/gba/addr"

// irqDelayCycles is the fixed delay between IE&IF
// becoming non-zero under IME and the CPU actually dispatching the IRQ.
const irqDelayCycles = 4

// Controller holds IME/IE/IF and the pending-dispatch delay countdown.
// It is owned by the bus and consulted by the CPU on every Step.
type Controller struct {
	ime bool
	ie  uint16
	ifl uint16

	delayRemaining int
	delayArmed     bool
}

// New returns a Controller in its post-reset state (everything masked).
func New() *Controller {
	return &Controller{}
}

// Reset restores power-on state.
func (c *Controller) Reset() {
	*c = Controller{}
}

// IME returns the master interrupt enable bit.
func (c *Controller) IME() bool { return c.ime }

// SetIME writes the master interrupt enable bit.
func (c *Controller) SetIME(v bool) {
	c.ime = v
	c.reevaluateDelay()
}

// IE returns the 14-bit interrupt enable mask.
func (c *Controller) IE() uint16 { return c.ie & 0x3FFF }

// SetIE writes the interrupt enable mask.
func (c *Controller) SetIE(v uint16) {
	c.ie = v & 0x3FFF
	c.reevaluateDelay()
}

// IF returns the 14-bit pending/request register.
func (c *Controller) IF() uint16 { return c.ifl & 0x3FFF }

// WriteIF acknowledges (clears) the bits set in the written value,
// per the GBA's write-one-to-clear semantics for IF.
func (c *Controller) WriteIF(v uint16) {
	c.ifl &^= v & 0x3FFF
	c.reevaluateDelay()
}

// Request raises the IF bit for the given source. This is how every
// other subsystem (PPU, DMA, timers, keypad) signals an interrupt.
func (c *Controller) Request(source addr.InterruptSource) {
	c.ifl |= source.Bit()
	c.ifl &= 0x3FFF
	c.reevaluateDelay()
}

// Pending reports whether IE & IF is non-zero, regardless of IME — this
// is the condition that wakes the CPU from HALT.
func (c *Controller) Pending() bool {
	return c.ie&c.ifl&0x3FFF != 0
}

// reevaluateDelay arms or cancels the 4-cycle IRQ-dispatch delay whenever
// IME, IE or IF changes ("the delay is canceled if the
// condition clears").
func (c *Controller) reevaluateDelay() {
	active := c.ime && c.Pending()
	switch {
	case active && !c.delayArmed:
		c.delayArmed = true
		c.delayRemaining = irqDelayCycles
	case !active:
		c.delayArmed = false
		c.delayRemaining = 0
	}
}

// Tick advances the dispatch-delay countdown by the given number of
// cycles and reports whether the IRQ should now be dispatched by the CPU.
func (c *Controller) Tick(cycles int) bool {
	if !c.delayArmed {
		return false
	}
	c.delayRemaining -= cycles
	if c.delayRemaining <= 0 {
		c.delayRemaining = 0
		return true
	}
	return false
}

// Ready reports whether the IRQ delay has already elapsed without
// advancing it, used by the CPU when deciding whether to service an
// IRQ before the next pipeline advance.
func (c *Controller) Ready() bool {
	return c.delayArmed && c.delayRemaining <= 0
}

// AckDispatch clears the armed delay once the CPU has taken the IRQ
// vector, so a cleared IF/IE doesn't leave a stale delay state behind.
func (c *Controller) AckDispatch() {
	c.delayArmed = false
	c.delayRemaining = 0
}
