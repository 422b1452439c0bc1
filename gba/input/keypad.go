// Package input implements the GBA keypad: a 10-bit active-low state
// register (KEYINPUT) and an interrupt-condition register (KEYCNT)
// that can raise a Keypad IRQ on any-pressed or all-pressed masks.
// The host input device is an external collaborator; this package
// only holds state and exposes Press/Release.
package input

import (
	"github.com/mirelan/gbacore/gba/addr"
	"github.com/mirelan/gbacore/gba/interrupt"
)

// Key identifies one of the ten GBA buttons, ordered to match the
// KEYINPUT/KEYCNT bit layout.
type Key uint8

const (
	KeyA Key = iota
	KeyB
	KeySelect
	KeyStart
	KeyRight
	KeyLeft
	KeyUp
	KeyDown
	KeyR
	KeyL
)

// Keypad holds the live button state and the IRQ-condition register.
type Keypad struct {
	state uint16 // active-low, bit=0 means pressed; bits 10-15 unused, read as 0
	cnt   uint16 // KEYCNT: bits0-9 select mask, bit14 IRQ enable, bit15 AND(1)/OR(0) condition

	irq *interrupt.Controller
}

// New returns a Keypad with every button released (all bits set).
func New(irq *interrupt.Controller) *Keypad {
	return &Keypad{state: 0x3FF, irq: irq}
}

// Reset releases every button and clears KEYCNT.
func (k *Keypad) Reset() {
	k.state = 0x3FF
	k.cnt = 0
}

// KEYINPUT returns the current active-low key state.
func (k *Keypad) KEYINPUT() uint16 { return k.state }

// KEYCNT returns the IRQ-condition register.
func (k *Keypad) KEYCNT() uint16 { return k.cnt }

// SetKEYCNT writes the IRQ-condition register and immediately
// re-evaluates the interrupt condition against current key state.
func (k *Keypad) SetKEYCNT(v uint16) {
	k.cnt = v
	k.evaluateIRQ()
}

// Press marks a key held and re-evaluates the keypad IRQ condition.
func (k *Keypad) Press(key Key) {
	k.state &^= 1 << uint(key)
	k.evaluateIRQ()
}

// Release marks a key released and re-evaluates the keypad IRQ
// condition (releasing a key can also satisfy an AND-mode condition
// built entirely from keys that remain pressed).
func (k *Keypad) Release(key Key) {
	k.state |= 1 << uint(key)
	k.evaluateIRQ()
}

func (k *Keypad) evaluateIRQ() {
	if k.cnt&0x4000 == 0 {
		return
	}
	mask := k.cnt & 0x3FF
	pressed := (^k.state) & 0x3FF
	andMode := k.cnt&0x8000 != 0

	var condition bool
	if andMode {
		condition = pressed&mask == mask
	} else {
		condition = pressed&mask != 0
	}
	if condition {
		k.irq.Request(addr.IRQKeypad)
	}
}
