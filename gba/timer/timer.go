// Package timer implements the GBA's four 16-bit hardware timers: a
// prescaled free-running counter with optional cascade chaining, IRQ on
// overflow, and an overflow hook an audio subsystem could subscribe to
// for FIFO clocking. Rather than ticking every cycle, each active
// non-cascade timer computes the absolute cycle of its next overflow
// and schedules one event for it.
package timer

import (
	"github.com/mirelan/gbacore/gba/addr"
	"github.com/mirelan/gbacore/gba/interrupt"
	"github.com/mirelan/gbacore/gba/scheduler"
)

var prescalers = [4]uint64{1, 64, 256, 1024}

// OverflowFunc is the audio-FIFO hook:
// audio.on_fifo(channel, sample). The core calls it with the timer
// index whenever that timer is configured as a FIFO's clock source; the
// sample itself is supplied by the DMA engine's FIFO refill, not here,
// so this hook only reports which timer fired.
type OverflowFunc func(timerIndex int)

// Timer is a single 16-bit counter/reload/control triplet.
type Timer struct {
	counter uint16
	reload  uint16
	control uint16 // bits: 0-1 prescaler select, 2 cascade, 6 irq-enable, 7 enable

	handle     scheduler.Handle
	hasHandle  bool
	startCycle uint64 // scheduler.Now() when the currently-running period began
}

func (t *Timer) prescaler() uint64    { return prescalers[t.control&0x3] }
func (t *Timer) cascade() bool        { return t.control&0x4 != 0 }
func (t *Timer) irqEnabled() bool     { return t.control&0x40 != 0 }
func (t *Timer) enabled() bool        { return t.control&0x80 != 0 }

// Bank owns all four timers plus the shared scheduler/interrupt wiring.
type Bank struct {
	timers [4]Timer
	sched  *scheduler.Scheduler
	irq    *interrupt.Controller

	OnOverflow OverflowFunc
}

// New wires a Bank to the scheduler and interrupt controller it needs to
// schedule overflow events and raise Timer0..3 IRQs.
func New(sched *scheduler.Scheduler, irq *interrupt.Controller) *Bank {
	b := &Bank{sched: sched, irq: irq}
	sched.SetHandler(scheduler.KindTimerOverflow, b.handleOverflowEvent)
	return b
}

// Reset restores power-on state (all timers disabled, zeroed).
func (b *Bank) Reset() {
	for i := range b.timers {
		b.cancelScheduled(i)
		b.timers[i] = Timer{}
	}
}

// currentCounter computes a timer's live counter value by extrapolating
// from the last time it was (re)started, without needing a per-cycle tick.
func (b *Bank) currentCounter(i int) uint16 {
	t := &b.timers[i]
	if !t.enabled() || t.cascade() {
		return t.counter
	}
	elapsed := (b.sched.Now() - t.startCycle) / t.prescaler()
	period := uint64(0x10000) - uint64(t.counter)
	if elapsed >= period {
		// A read landing exactly on/after an overflow that hasn't been
		// dispatched yet observes t.counter, the value the current period
		// started from; for a period begun by enable or by an overflow,
		// that is the reload value the pending overflow will load.
		return t.counter
	}
	return t.counter + uint16(elapsed)
}

// ReadCounter returns timer i's live 16-bit counter (TMxCNT_L on read).
func (b *Bank) ReadCounter(i int) uint16 { return b.currentCounter(i) }

// ReadControl returns timer i's control word (TMxCNT_H).
func (b *Bank) ReadControl(i int) uint16 { return b.timers[i].control }

// WriteReload sets the reload value (TMxCNT_L on write); it only takes
// effect the next time the counter overflows or is (re)started, per
// real hardware behavior.
func (b *Bank) WriteReload(i int, value uint16) {
	b.timers[i].reload = value
}

// WriteControl writes TMxCNT_H. A 0->1 transition of the enable bit
// reloads the counter immediately and (re)schedules the next overflow.
func (b *Bank) WriteControl(i int, value uint16) {
	t := &b.timers[i]
	wasEnabled := t.enabled()
	t.control = value & 0xC7

	if t.enabled() && !wasEnabled {
		t.counter = t.reload
		t.startCycle = b.sched.Now()
		b.reschedule(i)
	} else if !t.enabled() {
		b.cancelScheduled(i)
	} else if t.enabled() && !t.cascade() {
		// Prescaler/cascade bits may have changed mid-flight; resync
		// the counter to "now" under the old schedule before re-arming.
		t.counter = b.currentCounter(i)
		t.startCycle = b.sched.Now()
		b.reschedule(i)
	}
}

func (b *Bank) cancelScheduled(i int) {
	if b.timers[i].hasHandle {
		b.sched.Cancel(b.timers[i].handle)
		b.timers[i].hasHandle = false
	}
}

// reschedule arms the scheduler event for timer i's next overflow. It is
// a no-op for cascade timers, which overflow only in response to the
// previous channel's overflow.
func (b *Bank) reschedule(i int) {
	b.cancelScheduled(i)
	t := &b.timers[i]
	if !t.enabled() || t.cascade() {
		return
	}
	period := (uint64(0x10000) - uint64(t.counter)) * t.prescaler()
	t.handle = b.sched.Schedule(scheduler.KindTimerOverflow, i, period)
	t.hasHandle = true
}

func (b *Bank) handleOverflowEvent(channel int, late uint64) {
	b.timers[channel].hasHandle = false
	b.overflow(channel)
}

// overflow reloads the counter, raises the channel's IRQ if enabled,
// invokes the FIFO hook, and propagates into a cascaded next channel.
func (b *Bank) overflow(i int) {
	t := &b.timers[i]
	t.counter = t.reload
	t.startCycle = b.sched.Now()

	if t.irqEnabled() {
		b.irq.Request(addr.InterruptSource(int(addr.IRQTimer0) + i))
	}
	if b.OnOverflow != nil {
		b.OnOverflow(i)
	}

	if t.enabled() && !t.cascade() {
		b.reschedule(i)
	}

	if i+1 < 4 {
		next := &b.timers[i+1]
		if next.enabled() && next.cascade() {
			b.cascadeIncrement(i + 1)
		}
	}
}

// cascadeIncrement increments a cascade timer by one count, recursing
// into overflow handling (and further cascades) as needed.
func (b *Bank) cascadeIncrement(i int) {
	t := &b.timers[i]
	t.counter++
	if t.counter == 0 {
		b.overflow(i)
	}
}
