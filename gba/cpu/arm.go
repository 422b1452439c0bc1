package cpu

import "github.com/mirelan/gbacore/gba/bit"

// condition codes, bits[31:28] of every ARM opcode ("Thumb is
// always unconditional except conditional branches and swi").
const (
	condEQ = iota
	condNE
	condCS
	condCC
	condMI
	condPL
	condVS
	condVC
	condHI
	condLS
	condGE
	condLT
	condGT
	condLE
	condAL
	condNV
)

func (c *CPU) conditionPassed(cond uint32) bool {
	p := c.regs.cpsr
	switch cond {
	case condEQ:
		return p.Z()
	case condNE:
		return !p.Z()
	case condCS:
		return p.C()
	case condCC:
		return !p.C()
	case condMI:
		return p.N()
	case condPL:
		return !p.N()
	case condVS:
		return p.V()
	case condVC:
		return !p.V()
	case condHI:
		return p.C() && !p.Z()
	case condLS:
		return !p.C() || p.Z()
	case condGE:
		return p.N() == p.V()
	case condLT:
		return p.N() != p.V()
	case condGT:
		return !p.Z() && p.N() == p.V()
	case condLE:
		return p.Z() || p.N() != p.V()
	case condAL:
		return true
	default: // condNV: reserved, never executes on ARM7TDMI
		return false
	}
}

// executeARM decodes and runs one ARM-state opcode, returning the extra
// cycles it costs beyond the instruction fetch already billed by Step
// (decode-by-bitfield dispatch "a few dozen handler
// families" resolution of the 4096-entry table).
func (c *CPU) executeARM(opcode uint32) uint64 {
	if !c.conditionPassed(opcode >> 28) {
		return 0
	}

	switch {
	case opcode&0x0FFFFFF0 == 0x012FFF10:
		return c.armBranchExchange(opcode)
	case opcode&0x0E000000 == 0x0A000000:
		return c.armBranch(opcode)
	case opcode&0x0FC000F0 == 0x00000090:
		return c.armMultiply(opcode)
	case opcode&0x0F8000F0 == 0x00800090:
		return c.armMultiplyLong(opcode)
	case opcode&0x0FB00FF0 == 0x01000090:
		return c.armSingleDataSwap(opcode)
	case opcode&0x0E000090 == 0x00000090:
		return c.armHalfwordTransfer(opcode)
	case opcode&0x0C000000 == 0x00000000:
		return c.armDataProcessing(opcode)
	case opcode&0x0C000000 == 0x04000000:
		return c.armSingleDataTransfer(opcode)
	case opcode&0x0E000000 == 0x08000000:
		return c.armBlockDataTransfer(opcode)
	case opcode&0x0F000000 == 0x0F000000:
		c.raiseSWI()
		return 3
	default:
		c.raiseUndefined()
		return 3
	}
}

// armBranchExchange implements BX Rn: jump to Rn, switching to Thumb
// state when its bit 0 is set (ARM<->Thumb round-trip law).
func (c *CPU) armBranchExchange(opcode uint32) uint64 {
	target := c.regs.R(int(opcode & 0xF))
	c.regs.cpsr.SetThumb(target&1 != 0)
	c.branchTo(target)
	return 2
}

// armBranch implements B/BL: a PC-relative 24-bit signed word offset,
// optionally saving the return address in LR first (bit 24 = L).
func (c *CPU) armBranch(opcode uint32) uint64 {
	offset := bit.SignExtend(opcode&0xFFFFFF, 24) << 2
	if opcode&(1<<24) != 0 {
		c.regs.SetLR(c.execAddr() + 4)
	}
	c.branchTo(c.regs.PC() + offset)
	return 2
}

// armMultiply implements MUL/MLA (multiplier-cycle model).
func (c *CPU) armMultiply(opcode uint32) uint64 {
	rd := int((opcode >> 16) & 0xF)
	rn := int((opcode >> 12) & 0xF)
	rs := int((opcode >> 8) & 0xF)
	rm := int(opcode & 0xF)
	setFlags := opcode&(1<<20) != 0
	accumulate := opcode&(1<<21) != 0

	result := c.regs.R(rm) * c.regs.R(rs)
	extra := uint64(mulCycles(c.regs.R(rs)))
	if accumulate {
		result += c.regs.R(rn)
		extra++
	}
	c.regs.SetR(rd, result)
	if setFlags {
		c.regs.cpsr.SetNZ(result)
	}
	return extra
}

// armMultiplyLong implements UMULL/UMLAL/SMULL/SMLAL, writing the
// 64-bit product across RdHi:RdLo.
func (c *CPU) armMultiplyLong(opcode uint32) uint64 {
	rdHi := int((opcode >> 16) & 0xF)
	rdLo := int((opcode >> 12) & 0xF)
	rs := int((opcode >> 8) & 0xF)
	rm := int(opcode & 0xF)
	setFlags := opcode&(1<<20) != 0
	accumulate := opcode&(1<<21) != 0
	signed := opcode&(1<<22) != 0

	var result uint64
	if signed {
		result = uint64(int64(int32(c.regs.R(rm))) * int64(int32(c.regs.R(rs))))
	} else {
		result = uint64(c.regs.R(rm)) * uint64(c.regs.R(rs))
	}
	extra := uint64(mulCycles(c.regs.R(rs))) + 1
	if accumulate {
		result += uint64(c.regs.R(rdHi))<<32 | uint64(c.regs.R(rdLo))
		extra++
	}
	c.regs.SetR(rdLo, uint32(result))
	c.regs.SetR(rdHi, uint32(result>>32))
	if setFlags {
		c.regs.cpsr.SetN(result&0x8000000000000000 != 0)
		c.regs.cpsr.SetZ(result == 0)
	}
	return extra
}

// armSingleDataSwap implements SWP/SWPB: an atomic load-then-store
// (trivially atomic here, since the core is single-threaded).
func (c *CPU) armSingleDataSwap(opcode uint32) uint64 {
	rn := int((opcode >> 16) & 0xF)
	rd := int((opcode >> 12) & 0xF)
	rm := int(opcode & 0xF)
	addr := c.regs.R(rn)
	byteWise := opcode&(1<<22) != 0

	var cycles uint64
	if byteWise {
		old := c.bus.Read8(addr)
		c.bus.Write8(addr, byte(c.regs.R(rm)))
		c.regs.SetR(rd, uint32(old))
		cycles = c.dataCycles(addr, 1) * 2
	} else {
		old := c.readRotated32(addr)
		c.bus.Write32(addr, c.regs.R(rm))
		c.regs.SetR(rd, old)
		cycles = c.dataCycles(addr, 4) * 2
	}
	return cycles + 1
}

// operand2Imm decodes a data-processing rotated-immediate operand 2,
// returning the value and the shifter carry-out.
func (c *CPU) operand2Imm(opcode uint32) (uint32, bool) {
	imm := opcode & 0xFF
	rotate := (opcode >> 8) & 0xF
	if rotate == 0 {
		return imm, c.regs.cpsr.C()
	}
	result := bit.RotateRight32(imm, uint8(rotate*2))
	return result, result&0x80000000 != 0
}

// operand2Reg decodes a data-processing register operand 2 (shift-by-
// immediate or shift-by-register), returning the value, the shifter
// carry-out, and the register the shift came from for timing.
func (c *CPU) operand2Reg(opcode uint32) (uint32, bool, bool) {
	shiftType := ShiftType((opcode >> 5) & 0x3)
	rm := int(opcode & 0xF)
	value := c.regs.R(rm)

	if opcode&(1<<4) != 0 {
		rs := int((opcode >> 8) & 0xF)
		amount := c.regs.R(rs) & 0xFF
		if amount == 0 {
			return value, c.regs.cpsr.C(), true
		}
		result, carry := barrelShift(shiftType, value, amount, c.regs.cpsr.C(), false)
		return result, carry, true
	}

	amount := (opcode >> 7) & 0x1F
	result, carry := barrelShift(shiftType, value, amount, c.regs.cpsr.C(), amount == 0)
	return result, carry, false
}

// armDataProcessing implements the sixteen data-processing opcodes plus
// the MRS/MSR PSR-transfer instructions, which steal the otherwise
// unpredictable S=0 TST/TEQ/CMP/CMN encodings.
func (c *CPU) armDataProcessing(opcode uint32) uint64 {
	setFlags := opcode&(1<<20) != 0
	opField := (opcode >> 21) & 0xF

	if !setFlags && (opField == 0x8 || opField == 0x9 || opField == 0xA || opField == 0xB) {
		return c.armPSRTransfer(opcode)
	}

	rn := int((opcode >> 16) & 0xF)
	rd := int((opcode >> 12) & 0xF)

	var op2 uint32
	var carry bool
	var usesRegShift bool
	if opcode&(1<<25) != 0 {
		op2, carry = c.operand2Imm(opcode)
	} else {
		op2, carry, usesRegShift = c.operand2Reg(opcode)
	}

	op1 := c.regs.R(rn)

	var result uint32
	var writesResult = true
	switch opField {
	case 0x0: // AND
		result = op1 & op2
	case 0x1: // EOR
		result = op1 ^ op2
	case 0x2: // SUB
		result, carry, _ = subWithCarry(op1, op2, true)
	case 0x3: // RSB
		result, carry, _ = subWithCarry(op2, op1, true)
	case 0x4: // ADD
		result, carry, _ = addWithCarry(op1, op2, false)
	case 0x5: // ADC
		result, carry, _ = addWithCarry(op1, op2, c.regs.cpsr.C())
	case 0x6: // SBC
		result, carry, _ = subWithCarry(op1, op2, c.regs.cpsr.C())
	case 0x7: // RSC
		result, carry, _ = subWithCarry(op2, op1, c.regs.cpsr.C())
	case 0x8: // TST
		result = op1 & op2
		writesResult = false
	case 0x9: // TEQ
		result = op1 ^ op2
		writesResult = false
	case 0xA: // CMP
		result, carry, _ = subWithCarry(op1, op2, true)
		writesResult = false
	case 0xB: // CMN
		result, carry, _ = addWithCarry(op1, op2, false)
		writesResult = false
	case 0xC: // ORR
		result = op1 | op2
	case 0xD: // MOV
		result = op2
	case 0xE: // BIC
		result = op1 &^ op2
	case 0xF: // MVN
		result = ^op2
	}

	var overflow bool
	switch opField {
	case 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0xA, 0xB:
		_, _, overflow = arithOverflow(opField, op1, op2, c.regs.cpsr.C())
	}

	if setFlags {
		if rd == 15 {
			c.regs.SetCPSR(c.regs.SPSR())
		} else {
			c.regs.cpsr.SetNZ(result)
			c.regs.cpsr.SetC(carry)
			if opField == 0x2 || opField == 0x3 || opField == 0x4 || opField == 0x5 ||
				opField == 0x6 || opField == 0x7 || opField == 0xA || opField == 0xB {
				c.regs.cpsr.SetV(overflow)
			}
		}
	}

	if writesResult {
		if rd == 15 {
			c.branchTo(result)
		} else {
			c.regs.SetR(rd, result)
		}
	}

	if usesRegShift {
		return 1
	}
	return 0
}

// arithOverflow recomputes the signed-overflow flag for the arithmetic
// data-processing opcodes, since TST/TEQ/ORR/etc. share the same switch
// above but never touch V.
func arithOverflow(opField uint32, op1, op2 uint32, carryIn bool) (uint32, bool, bool) {
	switch opField {
	case 0x2: // SUB
		return subWithCarry(op1, op2, true)
	case 0x3: // RSB
		return subWithCarry(op2, op1, true)
	case 0x4: // ADD
		return addWithCarry(op1, op2, false)
	case 0x5: // ADC
		return addWithCarry(op1, op2, carryIn)
	case 0x6: // SBC
		return subWithCarry(op1, op2, carryIn)
	case 0x7: // RSC
		return subWithCarry(op2, op1, carryIn)
	case 0xA: // CMP
		return subWithCarry(op1, op2, true)
	case 0xB: // CMN
		return addWithCarry(op1, op2, false)
	}
	return 0, false, false
}

// armPSRTransfer implements MRS (PSR -> register) and MSR (register or
// immediate -> PSR, optionally flags-only).
func (c *CPU) armPSRTransfer(opcode uint32) uint64 {
	useSPSR := opcode&(1<<22) != 0
	isMSR := opcode&(1<<21) != 0

	if !isMSR {
		rd := int((opcode >> 12) & 0xF)
		if useSPSR {
			c.regs.SetR(rd, uint32(c.regs.SPSR()))
		} else {
			c.regs.SetR(rd, uint32(c.regs.CPSR()))
		}
		return 0
	}

	var value uint32
	if opcode&(1<<25) != 0 {
		value, _ = c.operand2Imm(opcode)
	} else {
		value = c.regs.R(int(opcode & 0xF))
	}

	fieldMask := (opcode >> 16) & 0xF
	var writeMask uint32
	if fieldMask&0x1 != 0 {
		writeMask |= 0x000000FF
	}
	if fieldMask&0x8 != 0 {
		writeMask |= 0xFF000000
	}

	if useSPSR {
		cur := uint32(c.regs.SPSR())
		cur = (cur &^ writeMask) | (value & writeMask)
		c.regs.SetSPSR(PSR(cur))
	} else {
		cur := uint32(c.regs.CPSR())
		// A mode change via MSR CPSR takes effect immediately, banking
		// registers the same way exception entry does.
		if writeMask&0xFF != 0 {
			c.regs.EnterMode(Mode(value & 0x1F))
			cur = (cur &^ 0x1F) | (value & 0x1F)
		}
		cur = (cur &^ writeMask) | (value & writeMask)
		c.regs.cpsr = PSR(cur)
	}
	return 0
}

// ldrShiftedRegOffset computes a single-data-transfer offset given as a
// shifted register (word/byte forms only; bit4 is always 0 here since
// register-specified shift amounts aren't valid in this instruction
// class).
func (c *CPU) ldrShiftedRegOffset(opcode uint32) uint32 {
	shiftType := ShiftType((opcode >> 5) & 0x3)
	amount := (opcode >> 7) & 0x1F
	rm := int(opcode & 0xF)
	result, _ := barrelShift(shiftType, c.regs.R(rm), amount, c.regs.cpsr.C(), amount == 0)
	return result
}

// readRotated32 implements the unaligned-word-read rotate law:
// read32(a) == rotr(read32(a&~3), 8*(a&3)).
func (c *CPU) readRotated32(address uint32) uint32 {
	value := c.bus.Read32(address)
	rotate := uint8(8 * (address & 3))
	return bit.RotateRight32(value, rotate)
}

// readRotated16 implements the unaligned-halfword-read rotate law.
func (c *CPU) readRotated16(address uint32) uint32 {
	value := c.bus.Read16(address)
	if address&1 != 0 {
		return bit.RotateRight32(uint32(value), 8)
	}
	return uint32(value)
}

// armSingleDataTransfer implements LDR/STR (word and byte, every
// addressing mode): immediate or shifted-register offset, pre/post
// indexing, up/down, and writeback (spec LDR-rotate law).
func (c *CPU) armSingleDataTransfer(opcode uint32) uint64 {
	immediate := opcode&(1<<25) == 0
	pre := opcode&(1<<24) != 0
	up := opcode&(1<<23) != 0
	byteWise := opcode&(1<<22) != 0
	writeback := opcode&(1<<21) != 0
	load := opcode&(1<<20) != 0
	rn := int((opcode >> 16) & 0xF)
	rd := int((opcode >> 12) & 0xF)

	var offset uint32
	if immediate {
		offset = opcode & 0xFFF
	} else {
		offset = c.ldrShiftedRegOffset(opcode)
	}

	base := c.regs.R(rn)
	var effective uint32
	if up {
		effective = base + offset
	} else {
		effective = base - offset
	}

	addr := base
	if pre {
		addr = effective
	}

	width := 4
	if byteWise {
		width = 1
	}
	cycles := c.dataCycles(addr, width)

	if load {
		var value uint32
		if byteWise {
			value = uint32(c.bus.Read8(addr))
		} else {
			value = c.readRotated32(addr)
		}
		if rd == 15 {
			c.branchTo(value &^ 3)
		} else {
			c.regs.SetR(rd, value)
		}
	} else {
		value := c.regs.R(rd)
		if rd == 15 {
			value += 4 // STR PC stores PC+12; execAddr+8 already in R(15), +4 more
		}
		if byteWise {
			c.bus.Write8(addr, byte(value))
		} else {
			c.bus.Write32(addr, value)
		}
	}

	if !pre || writeback {
		if rn != 15 {
			c.regs.SetR(rn, effective)
		}
	}

	if load {
		return cycles + 1
	}
	return cycles
}

// armHalfwordTransfer implements LDRH/STRH/LDRSB/LDRSH (// "LDRSH with a misaligned address delivers a sign-extended byte").
func (c *CPU) armHalfwordTransfer(opcode uint32) uint64 {
	pre := opcode&(1<<24) != 0
	up := opcode&(1<<23) != 0
	immOffset := opcode&(1<<22) != 0
	writeback := opcode&(1<<21) != 0
	load := opcode&(1<<20) != 0
	rn := int((opcode >> 16) & 0xF)
	rd := int((opcode >> 12) & 0xF)
	sh := (opcode >> 5) & 0x3

	var offset uint32
	if immOffset {
		offset = ((opcode >> 4) & 0xF0) | (opcode & 0xF)
	} else {
		offset = c.regs.R(int(opcode & 0xF))
	}

	base := c.regs.R(rn)
	var effective uint32
	if up {
		effective = base + offset
	} else {
		effective = base - offset
	}
	addr := base
	if pre {
		addr = effective
	}

	cycles := c.dataCycles(addr, 2)

	if load {
		var value uint32
		switch sh {
		case 0x1: // LDRH
			value = c.readRotated16(addr)
		case 0x2: // LDRSB
			value = bit.SignExtend(uint32(c.bus.Read8(addr)), 8)
		case 0x3: // LDRSH
			if addr&1 != 0 {
				value = bit.SignExtend(uint32(c.bus.Read8(addr)), 8)
			} else {
				value = bit.SignExtend(uint32(c.bus.Read16(addr)), 16)
			}
		}
		c.regs.SetR(rd, value)
	} else {
		c.bus.Write16(addr, uint16(c.regs.R(rd)))
	}

	if !pre || writeback {
		if rn != 15 {
			c.regs.SetR(rn, effective)
		}
	}

	if load {
		return cycles + 1
	}
	return cycles
}

// armBlockDataTransfer implements LDM/STM: the register list iterates
// lowest register first, and base-in-list writeback stores the original
// value when the base is first in a non-empty list.
func (c *CPU) armBlockDataTransfer(opcode uint32) uint64 {
	pre := opcode&(1<<24) != 0
	up := opcode&(1<<23) != 0
	sBit := opcode&(1<<22) != 0
	writeback := opcode&(1<<21) != 0
	load := opcode&(1<<20) != 0
	rn := int((opcode >> 16) & 0xF)
	rlist := opcode & 0xFFFF

	count := 0
	for i := 0; i < 16; i++ {
		if rlist&(1<<uint(i)) != 0 {
			count++
		}
	}
	if count == 0 {
		count = 16
		rlist = 1 << 15
	}

	base := c.regs.R(rn)
	var start uint32
	if up {
		start = base
	} else {
		start = base - uint32(count)*4
	}
	finalBase := base
	if up {
		finalBase = base + uint32(count)*4
	} else {
		finalBase = base - uint32(count)*4
	}

	// userBankTransfer: S-bit set, load without R15 in list (or any
	// store with S set), forces User-mode register access regardless of
	// current mode (block-transfer mode-bank rule).
	userBank := sBit && !(load && rlist&(1<<15) != 0)

	addr := start
	firstReg := true
	var cycles uint64
	for i := 0; i < 16; i++ {
		if rlist&(1<<uint(i)) == 0 {
			continue
		}
		if pre {
			addr += 4
		}
		cycles += c.dataCycles(addr, 4)

		if load {
			value := c.bus.Read32(addr)
			if i == 15 {
				if sBit {
					c.regs.SetCPSR(c.regs.SPSR())
				}
				c.branchTo(value &^ 3)
			} else if userBank {
				c.setUserReg(i, value)
			} else {
				c.regs.SetR(i, value)
			}
		} else {
			var value uint32
			if userBank {
				value = c.userReg(i)
			} else {
				value = c.regs.R(i)
			}
			if i == int(rn) {
				if firstReg || !writeback {
					value = base
				} else {
					value = finalBase
				}
			} else if i == 15 {
				value += 4
			}
			c.bus.Write32(addr, value)
		}
		firstReg = false

		if !pre {
			addr += 4
		}
	}

	if writeback && rn != 15 {
		if !load || rlist&(1<<uint(rn)) == 0 {
			c.regs.SetR(rn, finalBase)
		}
	}

	return cycles + uint64(count)
}

// userReg/setUserReg read or write a register in the User-mode bank
// regardless of the active mode, for S-bit block transfers that target
// user registers from a privileged mode.
func (c *CPU) userReg(i int) uint32 {
	if i < 8 || i == 15 || c.regs.cpsr.Mode() == ModeUser || c.regs.cpsr.Mode() == ModeSystem {
		return c.regs.R(i)
	}
	cur := c.regs.cpsr.Mode()
	c.regs.EnterMode(ModeSystem)
	v := c.regs.R(i)
	c.regs.EnterMode(cur)
	return v
}

func (c *CPU) setUserReg(i int, v uint32) {
	if i < 8 || i == 15 || c.regs.cpsr.Mode() == ModeUser || c.regs.cpsr.Mode() == ModeSystem {
		c.regs.SetR(i, v)
		return
	}
	cur := c.regs.cpsr.Mode()
	c.regs.EnterMode(ModeSystem)
	c.regs.SetR(i, v)
	c.regs.EnterMode(cur)
}
