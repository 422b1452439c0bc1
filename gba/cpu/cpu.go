// Package cpu implements the ARM7TDMI: the ARM and Thumb instruction
// sets, the banked register file, the barrel shifter, and the 3-stage
// pipeline's PC-ahead-of-execution semantics.
//
// Decode uses bitfield-masked dispatch functions grouped by instruction
// class rather than literal 4096/1024-entry lookup tables; this is not
// a reduction in instruction coverage, only in how the dispatch table
// is expressed.
package cpu

import "github.com/mirelan/gbacore/gba/addr"

// Bus is the narrow memory/interrupt surface the CPU needs. Defined
// here (rather than imported from the bus package) so cpu has no
// dependency on bus, the same "inject a world handle" resolution dma
// and video use.
type Bus interface {
	Read8(address uint32) byte
	Read16(address uint32) uint16
	Read32(address uint32) uint32
	Write8(address uint32, value byte)
	Write16(address uint32, value uint16)
	Write32(address uint32, value uint32)
	AccessCycles(address uint32, width int, sequential bool) uint64
	LatchOpcode(word uint32)

	IRQLinePending() bool
	IRQDispatchReady() bool
	AckIRQDispatch()
	TickIRQDelay(cycles int)
	Halted() bool
	Wake()
}

const (
	irqVector = 0x00000018
	swiVector = 0x00000008
)

// CPU is the top-level ARM7TDMI: registers plus the bus it executes
// against. Step runs exactly one instruction (ARM or Thumb, whichever
// CPSR.T selects) and returns the number of cycles it cost.
type CPU struct {
	regs *Registers
	bus  Bus

	flushed bool // set by any instruction that changes PC directly
}

// New returns a CPU wired to bus, in ARM7TDMI reset state with PC
// pointed at addr.BIOSStart (reset vector).
func New(bus Bus) *CPU {
	c := &CPU{regs: NewRegisters(), bus: bus}
	c.regs.SetPC(addr.BIOSStart + 8)
	return c
}

// Reset restores power-on register state without touching the bus.
func (c *CPU) Reset() {
	c.regs = NewRegisters()
	c.regs.SetPC(addr.BIOSStart + 8)
	c.flushed = false
}

// SkipBIOS fast-forwards past the BIOS boot sequence the way a direct
// boot loader does: System mode, Thumb or ARM per caller, SP set per
// mode, PC at the cartridge entry point (BIOS-skip option).
func (c *CPU) SkipBIOS(entry uint32, thumb bool) {
	c.regs.EnterMode(ModeSystem)
	c.regs.cpsr.SetThumb(thumb)
	c.regs.cpsr.SetIRQDisabled(false)
	c.regs.cpsr.SetFIQDisabled(true)

	c.regs.SetR(13, 0x03007F00) // System/User SP
	c.regs.EnterMode(ModeIRQ)
	c.regs.SetR(13, 0x03007FA0)
	c.regs.EnterMode(ModeSupervisor)
	c.regs.SetR(13, 0x03007FE0)
	c.regs.EnterMode(ModeSystem)

	if thumb {
		c.regs.SetPC(entry + 4)
	} else {
		c.regs.SetPC(entry + 8)
	}
}

// Registers exposes the register file for debug/test inspection.
func (c *CPU) Registers() *Registers { return c.regs }

// execAddr returns the address of the instruction about to execute,
// derived from the pipeline-ahead PC per the current instruction set.
func (c *CPU) execAddr() uint32 {
	if c.regs.cpsr.Thumb() {
		return c.regs.PC() - 4
	}
	return c.regs.PC() - 8
}

// dataCycles bills the wait-state cost of a data access (as opposed to
// an instruction fetch, already billed by Step) at the given width,
// always as non-sequential since data accesses never chain the way
// fetches do (wait-state table).
func (c *CPU) dataCycles(address uint32, width int) uint64 {
	return c.bus.AccessCycles(address, width, false)
}

func (c *CPU) wordSize() uint32 {
	if c.regs.cpsr.Thumb() {
		return 2
	}
	return 4
}

// branchTo redirects execution to target, re-establishing the
// pipeline-ahead PC invariant for whichever instruction set is active
// (any PC write flushes and refills the pipeline).
func (c *CPU) branchTo(target uint32) {
	target &^= c.wordSize() - 1
	if c.regs.cpsr.Thumb() {
		c.regs.SetPC(target + 4)
	} else {
		c.regs.SetPC(target + 8)
	}
	c.flushed = true
}

// Step executes exactly one instruction and returns the cycle cost,
// including the interrupt dispatch it takes instead when one is ready
// (the per-step order is: check IRQ, advance pipeline, evaluate
// condition, execute).
func (c *CPU) Step() uint64 {
	if c.bus.Halted() {
		if c.bus.IRQLinePending() {
			c.bus.Wake()
		} else {
			return 1
		}
	}

	if !c.regs.cpsr.IRQDisabled() && c.bus.IRQDispatchReady() {
		return c.dispatchIRQ()
	}

	c.flushed = false
	addr_ := c.execAddr()

	var cycles uint64
	if c.regs.cpsr.Thumb() {
		opcode := c.bus.Read16(addr_)
		c.bus.LatchOpcode(uint32(opcode) | uint32(opcode)<<16)
		cycles = c.bus.AccessCycles(addr_, 2, !c.flushed)
		cycles += c.executeThumb(opcode)
	} else {
		opcode := c.bus.Read32(addr_)
		c.bus.LatchOpcode(opcode)
		cycles = c.bus.AccessCycles(addr_, 4, !c.flushed)
		cycles += c.executeARM(opcode)
	}

	c.bus.TickIRQDelay(int(cycles))

	if !c.flushed {
		c.regs.SetPC(c.regs.PC() + c.wordSize())
	}
	return cycles
}

// dispatchIRQ vectors to the IRQ handler: banks into IRQ
// mode, saves CPSR to SPSR_irq, computes the return address accounting
// for the pipeline lead, disables further IRQs, and branches to the
// fixed vector (the BIOS' own IRQ trampoline owns vector dispatch in
// reality; the fixed address here is the GBA's exception vector table
// entry, which every BIOS installs a handler at).
func (c *CPU) dispatchIRQ() uint64 {
	lr := c.regs.PC()
	if !c.regs.cpsr.Thumb() {
		lr -= 4
	}
	oldCPSR := c.regs.CPSR()

	c.regs.EnterMode(ModeIRQ)
	c.regs.SetSPSR(oldCPSR)
	c.regs.SetLR(lr)
	c.regs.cpsr.SetThumb(false)
	c.regs.cpsr.SetIRQDisabled(true)

	c.bus.AckIRQDispatch()
	c.branchTo(irqVector)
	return 3
}

// raiseSWI implements the SWI instruction's exception entry: identical
// shape to dispatchIRQ but to Supervisor mode and the SWI vector, with
// no interrupt-controller involvement.
func (c *CPU) raiseSWI() {
	lr := c.regs.PC()
	if !c.regs.cpsr.Thumb() {
		lr -= 4
	} else {
		lr -= 2
	}
	oldCPSR := c.regs.CPSR()

	c.regs.EnterMode(ModeSupervisor)
	c.regs.SetSPSR(oldCPSR)
	c.regs.SetLR(lr)
	c.regs.cpsr.SetThumb(false)
	c.regs.cpsr.SetIRQDisabled(true)

	c.branchTo(swiVector)
}

// raiseUndefined vectors to the undefined-instruction handler, used for
// any ARM/Thumb encoding this core doesn't recognize.
func (c *CPU) raiseUndefined() {
	lr := c.regs.PC()
	if !c.regs.cpsr.Thumb() {
		lr -= 4
	} else {
		lr -= 2
	}
	oldCPSR := c.regs.CPSR()

	c.regs.EnterMode(ModeUndefined)
	c.regs.SetSPSR(oldCPSR)
	c.regs.SetLR(lr)
	c.regs.cpsr.SetThumb(false)
	c.regs.cpsr.SetIRQDisabled(true)

	c.branchTo(0x00000004)
}
