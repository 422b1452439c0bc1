// Package bus implements the GBA's 32-bit address space: the flat
// BIOS/EWRAM/IWRAM/Palette/VRAM/OAM regions, the GamePak ROM/save
// window, the central MMIO register dispatcher, wait-state timing, and
// open-bus synthesis for unmapped reads.
//
// Bus is the "world handle": every other subsystem defines its own
// narrow consumer interface (dma.Bus, video.DMANotifier, cpu.Bus) and
// Bus is the single concrete type that satisfies all of them, letting
// it depend on every subsystem package without any of them depending
// back on bus.
package bus

import (
	"github.com/mirelan/gbacore/gba/addr"
	"github.com/mirelan/gbacore/gba/dma"
	"github.com/mirelan/gbacore/gba/gamepak"
	"github.com/mirelan/gbacore/gba/input"
	"github.com/mirelan/gbacore/gba/interrupt"
	"github.com/mirelan/gbacore/gba/scheduler"
	"github.com/mirelan/gbacore/gba/timer"
	"github.com/mirelan/gbacore/gba/video"
)

// Bus owns every memory region plus the subsystems whose registers live
// in the 1 KiB I/O window.
type Bus struct {
	bios    []byte
	ewram   [addr.EWRAMSize]byte
	iwram   [addr.IWRAMSize]byte
	palette [addr.PaletteSize]byte
	vram    [addr.VRAMSize]byte
	oam     [addr.OAMSize]byte

	pak *gamepak.GamePak

	IRQ     *interrupt.Controller
	DMA     *dma.Controller
	Timers  *timer.Bank
	PPU     *video.PPU
	Keypad  *input.Keypad
	Sched   *scheduler.Scheduler

	waitcnt   uint16
	postflg   byte
	haltcnt   byte
	halted    bool
	soundbias uint16

	// gpioDir/gpioCnt latch the GamePak GPIO port's direction and
	// control registers for cartridges with an RTC chip (// supplemented RTC feature); meaningless when pak.RTC is nil.
	gpioDir byte
	gpioCnt byte

	// openBusLatch is the most recent value fetched by the CPU
	// pipeline, used to synthesize reads from unmapped regions
	//. The CPU package calls LatchOpcode after every fetch.
	openBusLatch uint32
}

// New builds a fully wired Bus: it constructs the interrupt controller,
// scheduler, DMA/timer/PPU/keypad subsystems and plugs each into the
// others' consumer interfaces.
func New(bios []byte) *Bus {
	b := &Bus{bios: bios}

	b.Sched = scheduler.New()
	b.IRQ = interrupt.New()
	b.DMA = dma.New(b, b.Sched, b.IRQ)
	b.Timers = timer.New(b.Sched, b.IRQ)
	b.PPU = video.New(b.vram[:], b.palette[:], b.oam[:], b.IRQ, b.Sched, b.DMA)
	b.Keypad = input.New(b.IRQ)

	return b
}

// SetGamePak installs a loaded cartridge, wiring it into the DMA
// engine's EEPROM disambiguation as well.
func (b *Bus) SetGamePak(pak *gamepak.GamePak) {
	b.pak = pak
	b.DMA.SetGamePak(pak)
}

// GamePak returns the installed cartridge, or nil if none has been
// loaded yet.
func (b *Bus) GamePak() *gamepak.GamePak { return b.pak }

// Start arms the PPU's first scheduled event; called once after every
// subsystem has been wired and (if applicable) a ROM has been loaded.
func (b *Bus) Start() { b.PPU.Start() }

// Reset restores power-on state across every subsystem and region.
func (b *Bus) Reset() {
	b.ewram = [addr.EWRAMSize]byte{}
	b.iwram = [addr.IWRAMSize]byte{}
	b.palette = [addr.PaletteSize]byte{}
	b.vram = [addr.VRAMSize]byte{}
	b.oam = [addr.OAMSize]byte{}
	b.waitcnt, b.postflg, b.haltcnt = 0, 0, 0
	b.halted = false
	b.soundbias = 0
	b.IRQ.Reset()
	b.DMA.Reset()
	b.Timers.Reset()
	b.PPU.Reset()
	b.Keypad.Reset()
	b.Start()
}

// Halted reports whether the CPU is halted awaiting an interrupt
// (HALTCNT was written).
func (b *Bus) Halted() bool { return b.halted }

// Wake clears the halted state; called once Controller.Pending() goes
// true again.
func (b *Bus) Wake() { b.halted = false }

// LatchOpcode records the most recently fetched instruction word, the
// source of open-bus reads from unmapped regions.
func (b *Bus) LatchOpcode(word uint32) { b.openBusLatch = word }

// --- interrupt-controller passthrough, satisfying cpu.Bus ---

// IRQLinePending reports whether IE & IF is non-zero regardless of IME,
// the condition that wakes a halted CPU.
func (b *Bus) IRQLinePending() bool { return b.IRQ.Pending() }

// IRQDispatchReady reports whether IME is set and the 4-cycle dispatch
// delay has elapsed, meaning the CPU should vector to the IRQ handler
// on its next Step.
func (b *Bus) IRQDispatchReady() bool { return b.IRQ.IME() && b.IRQ.Ready() }

// AckIRQDispatch clears the controller's armed dispatch delay once the
// CPU has taken the interrupt vector.
func (b *Bus) AckIRQDispatch() { b.IRQ.AckDispatch() }

// TickIRQDelay advances the interrupt controller's dispatch-delay
// countdown by the given number of cycles, called once per CPU Step.
func (b *Bus) TickIRQDelay(cycles int) { b.IRQ.Tick(cycles) }
