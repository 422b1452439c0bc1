// Package dma implements the GBA's four DMA channels: priority
// arbitration (0 > 1 > 2 > 3), the four start-timing conditions, word
// and half-word transfers with independent source/destination address
// control, and the EEPROM bus-width disambiguation a transfer's word
// count implies.
//
// DMA is modeled as non-preemptive within a unit: "the winner runs
// entirely" rather than interleaving partial transfers between
// channels, an acceptable simplification since nothing else on the bus
// observes a transfer mid-flight.
package dma

import (
	"github.com/mirelan/gbacore/gba/addr"
	"github.com/mirelan/gbacore/gba/gamepak"
	"github.com/mirelan/gbacore/gba/interrupt"
	"github.com/mirelan/gbacore/gba/scheduler"
)

// AddrControl is the 2-bit destination/source address-control field.
type AddrControl uint8

const (
	AddrIncrement AddrControl = iota
	AddrDecrement
	AddrFixed
	AddrReload // dest-only "increment + reload on repeat"; prohibited as a source control
)

// StartTiming is the 2-bit start-condition field.
type StartTiming uint8

const (
	StartImmediate StartTiming = iota
	StartVBlank
	StartHBlank
	StartSpecial
)

// Bus is the narrow memory-access surface DMA needs. Defined here
// (rather than imported from the bus package) so dma has no dependency
// on bus, letting bus depend on dma instead — the "inject a world
// handle" resolution to the cyclic-reference problem
type Bus interface {
	Read8(address uint32) byte
	Read16(address uint32) uint16
	Read32(address uint32) uint32
	Write8(address uint32, value byte)
	Write16(address uint32, value uint16)
	Write32(address uint32, value uint32)
	// AccessCycles returns the wait-state cost of one access of the
	// given width (1, 2 or 4 bytes) to address, sequential or not.
	AccessCycles(address uint32, width int, sequential bool) uint64
}

// channel holds one DMA channel's registers and latched internal
// address pointers. SAD/DAD are latched from register values on
// initial start, and only DAD is relatched on a Reload-controlled
// repeat.
type channel struct {
	index int

	sad, dad   uint32 // register values as last written by the CPU
	srcPtr     uint32 // latched internal source pointer
	dstPtr     uint32 // latched internal destination pointer
	count      uint32
	control    uint16
	started    bool // internal pointers have been latched at least once
}

func (c *channel) destControl() AddrControl   { return AddrControl((c.control >> 5) & 0x3) }
func (c *channel) srcControl() AddrControl    { return AddrControl((c.control >> 7) & 0x3) }
func (c *channel) repeat() bool               { return c.control&0x200 != 0 }
func (c *channel) wordTransfer() bool         { return c.control&0x400 != 0 }
func (c *channel) startTiming() StartTiming   { return StartTiming((c.control >> 12) & 0x3) }
func (c *channel) irqOnComplete() bool        { return c.control&0x4000 != 0 }
func (c *channel) enabled() bool              { return c.control&0x8000 != 0 }

func (c *channel) countMask() uint32 {
	if c.index == 3 {
		return 0x1FFFF
	}
	return 0x3FFF
}

func (c *channel) sadMask() uint32 {
	if c.index == 0 {
		return 0x07FFFFFF
	}
	return 0x0FFFFFFF
}

func (c *channel) dadMask() uint32 {
	if c.index == 3 {
		return 0x0FFFFFFF
	}
	return 0x07FFFFFF
}

// Controller owns all four DMA channels and the priority-arbitration
// logic that decides which ones run in response to a start condition.
type Controller struct {
	channels [4]channel
	bus      Bus
	sched    *scheduler.Scheduler
	irq      *interrupt.Controller
	pak      *gamepak.GamePak

	// stallCycles accumulates the cost of the most recently run
	// transfer(s) so the caller (bus) can bill it against the CPU.
	stallCycles uint64
}

// New wires a Controller to its bus, scheduler and interrupt controller.
func New(bus Bus, sched *scheduler.Scheduler, irq *interrupt.Controller) *Controller {
	c := &Controller{bus: bus, sched: sched, irq: irq}
	for i := range c.channels {
		c.channels[i].index = i
	}
	return c
}

// SetGamePak updates the cartridge reference DMA needs for the EEPROM
// bus-width disambiguation; called whenever a ROM is loaded.
func (c *Controller) SetGamePak(pak *gamepak.GamePak) { c.pak = pak }

// Reset restores power-on state (every channel disabled).
func (c *Controller) Reset() {
	for i := range c.channels {
		c.channels[i] = channel{index: i}
	}
	c.stallCycles = 0
}

// TakeStallCycles returns and clears the accumulated DMA stall cost,
// for the bus to bill against the CPU's next access.
func (c *Controller) TakeStallCycles() uint64 {
	v := c.stallCycles
	c.stallCycles = 0
	return v
}

// --- register access, used by the bus's IO dispatch ---

func (c *Controller) WriteSAD(ch int, value uint32) {
	c.channels[ch].sad = value & c.channels[ch].sadMask()
}
func (c *Controller) WriteDAD(ch int, value uint32) {
	c.channels[ch].dad = value & c.channels[ch].dadMask()
}
func (c *Controller) WriteCount(ch int, value uint16) {
	c.channels[ch].count = uint32(value) & c.channels[ch].countMask()
}
func (c *Controller) ReadControl(ch int) uint16 { return c.channels[ch].control }

// WriteControl writes DMAxCNT_H. A 0->1 transition of the enable bit
// latches SAD/DAD into the internal pointers and, for Immediate timing,
// runs the transfer synchronously right away.
func (c *Controller) WriteControl(ch int, value uint16) {
	ch_ := &c.channels[ch]
	wasEnabled := ch_.enabled()
	ch_.control = value

	if ch_.enabled() && !wasEnabled {
		ch_.srcPtr = ch_.sad
		ch_.dstPtr = ch_.dad
		ch_.started = true

		if ch_.startTiming() == StartImmediate {
			c.run(ch_)
		}
	}
}

// NotifyVBlank runs every enabled VBlank-start channel, lowest index first.
func (c *Controller) NotifyVBlank() { c.notify(StartVBlank) }

// NotifyHBlank runs every enabled HBlank-start channel, lowest index first.
func (c *Controller) NotifyHBlank() { c.notify(StartHBlank) }

// NotifySpecial runs channel-3 Video-Capture DMA (lines 2..161) or
// channels 1-2 Sound-FIFO DMA, both tagged StartSpecial; callers
// distinguish the two cases by line/channel before calling this, but
// arbitration is identical: lowest eligible index runs to completion.
func (c *Controller) NotifySpecial(onlyChannel int) {
	ch := &c.channels[onlyChannel]
	if ch.enabled() && ch.startTiming() == StartSpecial {
		c.run(ch)
	}
}

func (c *Controller) notify(timing StartTiming) {
	for i := range c.channels {
		ch := &c.channels[i]
		if ch.enabled() && ch.startTiming() == timing {
			c.run(ch)
		}
	}
}

// run executes one channel's transfer to completion, charging cycles
// per the N + S + (count-1)*2S access model (applied per unit across
// both the source and destination access).
func (c *Controller) run(ch *channel) {
	unit := uint32(2)
	if ch.wordTransfer() {
		unit = 4
	}

	count := ch.count
	if count == 0 {
		count = ch.countMask() + 1
	}

	srcCtrl := ch.srcControl()
	dstCtrl := ch.destControl()

	if ch.repeat() && dstCtrl == AddrReload {
		ch.dstPtr = ch.dad
	}

	eepromTarget := c.eepromBackend(ch.dstPtr) != nil || c.eepromBackend(ch.srcPtr) != nil
	if ch.index == 3 && eepromTarget {
		c.runEEPROM(ch, count)
		return
	}

	var cycles uint64
	for i := uint32(0); i < count; i++ {
		sequential := i != 0
		if unit == 4 {
			value := c.bus.Read32(ch.srcPtr)
			c.bus.Write32(ch.dstPtr, value)
		} else {
			value := c.bus.Read16(ch.srcPtr)
			c.bus.Write16(ch.dstPtr, value)
		}
		cycles += c.bus.AccessCycles(ch.srcPtr, int(unit), sequential)
		cycles += c.bus.AccessCycles(ch.dstPtr, int(unit), sequential)

		ch.srcPtr = advance(ch.srcPtr, unit, srcCtrl)
		ch.dstPtr = advance(ch.dstPtr, unit, dstCtrl)
	}

	c.finish(ch, cycles)
}

// advanceIfAsync bumps the scheduler's clock directly for transfers that
// ran outside the CPU's own billed instruction slice (HBlank/VBlank/
// Special start conditions, fired from a scheduler event handler).
// Immediate-start transfers instead run synchronously inside a CPU bus
// write, so their cost is only exposed through TakeStallCycles and must
// NOT also be applied here, or the scheduler clock would double-count
// it once directly and once via the CPU's own returned cycle total.
func (c *Controller) advanceIfAsync(ch *channel, cycles uint64) {
	if ch.startTiming() != StartImmediate {
		c.sched.Advance(cycles)
	}
}

func advance(ptr uint32, unit uint32, ctrl AddrControl) uint32 {
	switch ctrl {
	case AddrIncrement, AddrReload:
		return ptr + unit
	case AddrDecrement:
		return ptr - unit
	default: // AddrFixed
		return ptr
	}
}

func (c *Controller) finish(ch *channel, cycles uint64) {
	c.stallCycles += cycles
	c.advanceIfAsync(ch, cycles)

	if ch.irqOnComplete() {
		c.irq.Request(addr.InterruptSource(int(addr.IRQDMA0) + ch.index))
	}

	if !ch.repeat() {
		ch.control &^= 0x8000
	}
}

// eepromBackend reports the EEPROM backend behind addr, if any.
func (c *Controller) eepromBackend(address uint32) eepromBackend {
	if c.pak == nil || c.pak.Save == nil {
		return nil
	}
	if address < addr.SaveStart || address > addr.SaveEnd {
		return nil
	}
	e, ok := c.pak.Save.(eepromBackend)
	if !ok {
		return nil
	}
	return e
}

// eepromBackend is the structural interface satisfied by gamepak's
// unexported eeprom type. The DMA-driven serial protocol is modeled
// here at the double-word level rather than bit-by-bit, since the DMA
// engine is the only caller.
type eepromBackend interface {
	SetAddressBits(bits int)
	ReadDoubleWord(cell int) [8]byte
	WriteDoubleWord(cell int, record [8]byte)
}

// runEEPROM disambiguates the EEPROM bus width from the transfer count
// (counts {9,73} mean a 6-bit address / 512B chip, {17,81} mean a
// 14-bit address / 8KB chip) and translates the half-word DMA units
// into whole
// 8-byte EEPROM records.
func (c *Controller) runEEPROM(ch *channel, count uint32) {
	var backend eepromBackend
	isWrite := false
	if b := c.eepromBackend(ch.dstPtr); b != nil {
		backend = b
		isWrite = true
	} else {
		backend = c.eepromBackend(ch.srcPtr)
	}

	addrBits := 6
	switch count {
	case 17, 81:
		addrBits = 14
	}
	backend.SetAddressBits(addrBits)

	var cycles uint64
	if isWrite {
		// count = 2 (command+address header bits packed by the game's
		// eeprom driver into the first halfwords) + 64 data bits + 1
		// stop bit, simplified here to: read the cell index out of the
		// first address-bit-sized payload and the 8-byte record out of
		// the following 64 bits, one bit per half-word.
		cell, record := decodeEEPROMWrite(ch.srcPtr, addrBits, c.bus)
		backend.WriteDoubleWord(cell, record)
		cycles = uint64(count) * c.bus.AccessCycles(ch.srcPtr, 2, true)
	} else {
		cell := decodeEEPROMReadAddress(ch.srcPtr, addrBits, c.bus)
		record := backend.ReadDoubleWord(cell)
		encodeEEPROMRead(ch.dstPtr, record, c.bus)
		cycles = uint64(count) * c.bus.AccessCycles(ch.dstPtr, 2, true)
	}

	c.finish(ch, cycles)
}

// decodeEEPROMReadAddress reads addrBits one-bit-per-halfword starting
// after the 2-bit read-request header, matching the real serial framing.
func decodeEEPROMReadAddress(base uint32, addrBits int, bus Bus) int {
	cell := 0
	offset := uint32(2) // skip the 2-bit "read request" opcode
	for i := 0; i < addrBits; i++ {
		bitVal := bus.Read16(base+offset*2) & 1
		cell = (cell << 1) | int(bitVal)
		offset++
	}
	return cell
}

// decodeEEPROMWrite reads the write opcode's address then the 64 data
// bits that follow it, one bit per half-word.
func decodeEEPROMWrite(base uint32, addrBits int, bus Bus) (int, [8]byte) {
	cell := 0
	offset := uint32(2)
	for i := 0; i < addrBits; i++ {
		bitVal := bus.Read16(base+offset*2) & 1
		cell = (cell << 1) | int(bitVal)
		offset++
	}

	var record [8]byte
	for byteIdx := 0; byteIdx < 8; byteIdx++ {
		var b byte
		for bitIdx := 0; bitIdx < 8; bitIdx++ {
			bitVal := bus.Read16(base+offset*2) & 1
			b = (b << 1) | byte(bitVal)
			offset++
		}
		record[byteIdx] = b
	}
	return cell, record
}

// encodeEEPROMRead writes a 4-bit don't-care header followed by the 64
// data bits, one bit per half-word, matching the chip's read-reply framing.
func encodeEEPROMRead(base uint32, record [8]byte, bus Bus) {
	offset := uint32(4)
	for byteIdx := 0; byteIdx < 8; byteIdx++ {
		b := record[byteIdx]
		for bitIdx := 7; bitIdx >= 0; bitIdx-- {
			bitVal := uint16((b >> uint(bitIdx)) & 1)
			bus.Write16(base+offset*2, bitVal)
			offset++
		}
	}
}
