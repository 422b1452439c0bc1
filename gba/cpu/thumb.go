package cpu

import "github.com/mirelan/gbacore/gba/bit"

// executeThumb decodes and runs one Thumb-state opcode. Thumb has no
// condition field (except format 16's conditional branch and SWI), so
// dispatch is a switch of mask/compare tests on the opcode, one case
// per instruction format.
func (c *CPU) executeThumb(opcode uint16) uint64 {
	switch {
	case opcode&0xF800 == 0x1800:
		return c.thumbAddSubtract(opcode)
	case opcode&0xE000 == 0x0000:
		return c.thumbMoveShifted(opcode)
	case opcode&0xE000 == 0x2000:
		return c.thumbImmediate(opcode)
	case opcode&0xFC00 == 0x4000:
		return c.thumbALU(opcode)
	case opcode&0xFC00 == 0x4400:
		return c.thumbHiRegister(opcode)
	case opcode&0xF800 == 0x4800:
		return c.thumbPCRelativeLoad(opcode)
	case opcode&0xF200 == 0x5000:
		return c.thumbLoadStoreRegOffset(opcode)
	case opcode&0xF200 == 0x5200:
		return c.thumbLoadStoreSignExtended(opcode)
	case opcode&0xE000 == 0x6000:
		return c.thumbLoadStoreImmOffset(opcode)
	case opcode&0xF000 == 0x8000:
		return c.thumbLoadStoreHalfword(opcode)
	case opcode&0xF000 == 0x9000:
		return c.thumbSPRelativeLoadStore(opcode)
	case opcode&0xF000 == 0xA000:
		return c.thumbLoadAddress(opcode)
	case opcode&0xFF00 == 0xB000:
		return c.thumbAddOffsetToSP(opcode)
	case opcode&0xF600 == 0xB400:
		return c.thumbPushPop(opcode)
	case opcode&0xF000 == 0xC000:
		return c.thumbMultipleLoadStore(opcode)
	case opcode&0xFF00 == 0xDF00:
		c.raiseSWI()
		return 3
	case opcode&0xF000 == 0xD000:
		return c.thumbConditionalBranch(opcode)
	case opcode&0xF800 == 0xE000:
		return c.thumbUnconditionalBranch(opcode)
	case opcode&0xF000 == 0xF000:
		return c.thumbLongBranchLink(opcode)
	default:
		c.raiseUndefined()
		return 3
	}
}

// thumbMoveShifted implements format 1: LSL/LSR/ASR Rd, Rs, #imm5.
func (c *CPU) thumbMoveShifted(opcode uint16) uint64 {
	shiftType := ShiftType((opcode >> 11) & 0x3)
	amount := uint32((opcode >> 6) & 0x1F)
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	result, carry := barrelShift(shiftType, c.regs.R(rs), amount, c.regs.cpsr.C(), amount == 0)
	c.regs.SetR(rd, result)
	c.regs.cpsr.SetNZ(result)
	c.regs.cpsr.SetC(carry)
	return 0
}

// thumbAddSubtract implements format 2: ADD/SUB Rd, Rs, Rn|#imm3.
func (c *CPU) thumbAddSubtract(opcode uint16) uint64 {
	immediate := opcode&(1<<10) != 0
	subtract := opcode&(1<<9) != 0
	rn := uint32((opcode >> 6) & 0x7)
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	op1 := c.regs.R(rs)
	var op2 uint32
	if immediate {
		op2 = rn
	} else {
		op2 = c.regs.R(int(rn))
	}

	var result uint32
	var carry, overflow bool
	if subtract {
		result, carry, overflow = subWithCarry(op1, op2, true)
	} else {
		result, carry, overflow = addWithCarry(op1, op2, false)
	}

	c.regs.SetR(rd, result)
	c.regs.cpsr.SetNZ(result)
	c.regs.cpsr.SetC(carry)
	c.regs.cpsr.SetV(overflow)
	return 0
}

// thumbImmediate implements format 3: MOV/CMP/ADD/SUB Rd, #imm8.
func (c *CPU) thumbImmediate(opcode uint16) uint64 {
	op := (opcode >> 11) & 0x3
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode & 0xFF)

	switch op {
	case 0x0: // MOV
		c.regs.SetR(rd, imm)
		c.regs.cpsr.SetNZ(imm)
	case 0x1: // CMP
		result, carry, overflow := subWithCarry(c.regs.R(rd), imm, true)
		c.regs.cpsr.SetNZ(result)
		c.regs.cpsr.SetC(carry)
		c.regs.cpsr.SetV(overflow)
	case 0x2: // ADD
		result, carry, overflow := addWithCarry(c.regs.R(rd), imm, false)
		c.regs.SetR(rd, result)
		c.regs.cpsr.SetNZ(result)
		c.regs.cpsr.SetC(carry)
		c.regs.cpsr.SetV(overflow)
	case 0x3: // SUB
		result, carry, overflow := subWithCarry(c.regs.R(rd), imm, true)
		c.regs.SetR(rd, result)
		c.regs.cpsr.SetNZ(result)
		c.regs.cpsr.SetC(carry)
		c.regs.cpsr.SetV(overflow)
	}
	return 0
}

// thumbALU implements format 4: the sixteen two-register ALU ops, sharing
// the ARM data-processing opcode numbering.
func (c *CPU) thumbALU(opcode uint16) uint64 {
	op := (opcode >> 6) & 0xF
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	op1 := c.regs.R(rd)
	op2 := c.regs.R(rs)
	var result uint32
	var writes = true
	var extra uint64

	switch op {
	case 0x0: // AND
		result = op1 & op2
	case 0x1: // EOR
		result = op1 ^ op2
	case 0x2: // LSL
		r, carry := barrelShift(ShiftLSL, op1, op2&0xFF, c.regs.cpsr.C(), false)
		result = r
		c.regs.cpsr.SetC(carry)
		extra = 1
	case 0x3: // LSR
		r, carry := barrelShift(ShiftLSR, op1, op2&0xFF, c.regs.cpsr.C(), false)
		result = r
		c.regs.cpsr.SetC(carry)
		extra = 1
	case 0x4: // ASR
		r, carry := barrelShift(ShiftASR, op1, op2&0xFF, c.regs.cpsr.C(), false)
		result = r
		c.regs.cpsr.SetC(carry)
		extra = 1
	case 0x5: // ADC
		var carry, overflow bool
		result, carry, overflow = addWithCarry(op1, op2, c.regs.cpsr.C())
		c.regs.cpsr.SetC(carry)
		c.regs.cpsr.SetV(overflow)
	case 0x6: // SBC
		var carry, overflow bool
		result, carry, overflow = subWithCarry(op1, op2, c.regs.cpsr.C())
		c.regs.cpsr.SetC(carry)
		c.regs.cpsr.SetV(overflow)
	case 0x7: // ROR
		r, carry := barrelShift(ShiftROR, op1, op2&0xFF, c.regs.cpsr.C(), false)
		result = r
		c.regs.cpsr.SetC(carry)
		extra = 1
	case 0x8: // TST
		result = op1 & op2
		writes = false
	case 0x9: // NEG
		var carry, overflow bool
		result, carry, overflow = subWithCarry(0, op2, true)
		c.regs.cpsr.SetC(carry)
		c.regs.cpsr.SetV(overflow)
	case 0xA: // CMP
		var carry, overflow bool
		result, carry, overflow = subWithCarry(op1, op2, true)
		c.regs.cpsr.SetC(carry)
		c.regs.cpsr.SetV(overflow)
		writes = false
	case 0xB: // CMN
		var carry, overflow bool
		result, carry, overflow = addWithCarry(op1, op2, false)
		c.regs.cpsr.SetC(carry)
		c.regs.cpsr.SetV(overflow)
		writes = false
	case 0xC: // ORR
		result = op1 | op2
	case 0xD: // MUL
		result = op1 * op2
		extra = uint64(mulCycles(op2))
	case 0xE: // BIC
		result = op1 &^ op2
	case 0xF: // MVN
		result = ^op2
	}

	c.regs.cpsr.SetNZ(result)
	if writes {
		c.regs.SetR(rd, result)
	}
	return extra
}

// thumbHiRegister implements format 5: ADD/CMP/MOV on the high register
// bank (R8-R15), plus BX, the only way Thumb code can reach ARM state.
func (c *CPU) thumbHiRegister(opcode uint16) uint64 {
	op := (opcode >> 8) & 0x3
	hRs := opcode&(1<<6) != 0
	hRd := opcode&(1<<7) != 0
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)
	if hRs {
		rs += 8
	}
	if hRd {
		rd += 8
	}

	switch op {
	case 0x0: // ADD
		result := c.regs.R(rd) + c.regs.R(rs)
		if rd == 15 {
			c.branchTo(result &^ 1)
		} else {
			c.regs.SetR(rd, result)
		}
	case 0x1: // CMP
		result, carry, overflow := subWithCarry(c.regs.R(rd), c.regs.R(rs), true)
		c.regs.cpsr.SetNZ(result)
		c.regs.cpsr.SetC(carry)
		c.regs.cpsr.SetV(overflow)
	case 0x2: // MOV
		value := c.regs.R(rs)
		if rd == 15 {
			c.branchTo(value &^ 1)
		} else {
			c.regs.SetR(rd, value)
		}
	case 0x3: // BX (and BLX in ARMv5, not present on ARM7TDMI)
		target := c.regs.R(rs)
		c.regs.cpsr.SetThumb(target&1 != 0)
		c.branchTo(target)
		return 2
	}
	return 0
}

// thumbPCRelativeLoad implements format 6: LDR Rd, [PC, #imm8*4], where
// PC is word-aligned before the offset is applied.
func (c *CPU) thumbPCRelativeLoad(opcode uint16) uint64 {
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) << 2
	base := c.regs.PC() &^ 3
	c.regs.SetR(rd, c.readRotated32(base+imm))
	return c.dataCycles(base+imm, 4) + 1
}

// thumbLoadStoreRegOffset implements format 7: LDR/STR{B} Rd, [Rb, Ro].
func (c *CPU) thumbLoadStoreRegOffset(opcode uint16) uint64 {
	load := opcode&(1<<11) != 0
	byteWise := opcode&(1<<10) != 0
	ro := int((opcode >> 6) & 0x7)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	addr := c.regs.R(rb) + c.regs.R(ro)
	width := 4
	if byteWise {
		width = 1
	}
	cycles := c.dataCycles(addr, width)
	if load {
		if byteWise {
			c.regs.SetR(rd, uint32(c.bus.Read8(addr)))
		} else {
			c.regs.SetR(rd, c.readRotated32(addr))
		}
		return cycles + 1
	}
	if byteWise {
		c.bus.Write8(addr, byte(c.regs.R(rd)))
	} else {
		c.bus.Write32(addr, c.regs.R(rd))
	}
	return cycles
}

// thumbLoadStoreSignExtended implements format 8: LDRH/LDSB/LDSH/STRH.
func (c *CPU) thumbLoadStoreSignExtended(opcode uint16) uint64 {
	hFlag := opcode&(1<<11) != 0
	signExtend := opcode&(1<<10) != 0
	ro := int((opcode >> 6) & 0x7)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	addr := c.regs.R(rb) + c.regs.R(ro)
	cycles := c.dataCycles(addr, 2)

	switch {
	case !signExtend && !hFlag: // STRH
		c.bus.Write16(addr, uint16(c.regs.R(rd)))
		return cycles
	case !signExtend && hFlag: // LDRH
		c.regs.SetR(rd, c.readRotated16(addr))
	case signExtend && !hFlag: // LDSB
		c.regs.SetR(rd, bit.SignExtend(uint32(c.bus.Read8(addr)), 8))
	default: // LDSH
		if addr&1 != 0 {
			c.regs.SetR(rd, bit.SignExtend(uint32(c.bus.Read8(addr)), 8))
		} else {
			c.regs.SetR(rd, bit.SignExtend(uint32(c.bus.Read16(addr)), 16))
		}
	}
	return cycles + 1
}

// thumbLoadStoreImmOffset implements format 9: LDR/STR{B} Rd, [Rb, #imm].
func (c *CPU) thumbLoadStoreImmOffset(opcode uint16) uint64 {
	byteWise := opcode&(1<<12) != 0
	load := opcode&(1<<11) != 0
	imm := uint32((opcode >> 6) & 0x1F)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	if !byteWise {
		imm <<= 2
	}
	addr := c.regs.R(rb) + imm
	width := 4
	if byteWise {
		width = 1
	}
	cycles := c.dataCycles(addr, width)

	if load {
		if byteWise {
			c.regs.SetR(rd, uint32(c.bus.Read8(addr)))
		} else {
			c.regs.SetR(rd, c.readRotated32(addr))
		}
		return cycles + 1
	}
	if byteWise {
		c.bus.Write8(addr, byte(c.regs.R(rd)))
	} else {
		c.bus.Write32(addr, c.regs.R(rd))
	}
	return cycles
}

// thumbLoadStoreHalfword implements format 10: LDRH/STRH Rd, [Rb, #imm5*2].
func (c *CPU) thumbLoadStoreHalfword(opcode uint16) uint64 {
	load := opcode&(1<<11) != 0
	imm := uint32((opcode>>6)&0x1F) << 1
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	addr := c.regs.R(rb) + imm
	cycles := c.dataCycles(addr, 2)
	if load {
		c.regs.SetR(rd, c.readRotated16(addr))
		return cycles + 1
	}
	c.bus.Write16(addr, uint16(c.regs.R(rd)))
	return cycles
}

// thumbSPRelativeLoadStore implements format 11: LDR/STR Rd, [SP, #imm8*4].
func (c *CPU) thumbSPRelativeLoadStore(opcode uint16) uint64 {
	load := opcode&(1<<11) != 0
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) << 2

	addr := c.regs.SP() + imm
	cycles := c.dataCycles(addr, 4)
	if load {
		c.regs.SetR(rd, c.readRotated32(addr))
		return cycles + 1
	}
	c.bus.Write32(addr, c.regs.R(rd))
	return cycles
}

// thumbLoadAddress implements format 12: ADD Rd, PC|SP, #imm8*4.
func (c *CPU) thumbLoadAddress(opcode uint16) uint64 {
	spSource := opcode&(1<<11) != 0
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) << 2

	var base uint32
	if spSource {
		base = c.regs.SP()
	} else {
		base = c.regs.PC() &^ 3
	}
	c.regs.SetR(rd, base+imm)
	return 0
}

// thumbAddOffsetToSP implements format 13: ADD/SUB SP, #imm7*4.
func (c *CPU) thumbAddOffsetToSP(opcode uint16) uint64 {
	negative := opcode&(1<<7) != 0
	imm := uint32(opcode&0x7F) << 2
	if negative {
		c.regs.SetSP(c.regs.SP() - imm)
	} else {
		c.regs.SetSP(c.regs.SP() + imm)
	}
	return 0
}

// thumbPushPop implements format 14: PUSH/POP {Rlist}{LR/PC}.
func (c *CPU) thumbPushPop(opcode uint16) uint64 {
	load := opcode&(1<<11) != 0
	includeExtra := opcode&(1<<8) != 0
	rlist := opcode & 0xFF

	count := 0
	for i := 0; i < 8; i++ {
		if rlist&(1<<uint(i)) != 0 {
			count++
		}
	}
	if includeExtra {
		count++
	}

	var cycles uint64
	if load {
		sp := c.regs.SP()
		for i := 0; i < 8; i++ {
			if rlist&(1<<uint(i)) != 0 {
				cycles += c.dataCycles(sp, 4)
				c.regs.SetR(i, c.bus.Read32(sp))
				sp += 4
			}
		}
		if includeExtra {
			cycles += c.dataCycles(sp, 4)
			c.branchTo(c.bus.Read32(sp) &^ 1)
			sp += 4
		}
		c.regs.SetSP(sp)
		return cycles + uint64(count)
	}

	sp := c.regs.SP() - uint32(count)*4
	c.regs.SetSP(sp)
	for i := 0; i < 8; i++ {
		if rlist&(1<<uint(i)) != 0 {
			cycles += c.dataCycles(sp, 4)
			c.bus.Write32(sp, c.regs.R(i))
			sp += 4
		}
	}
	if includeExtra {
		cycles += c.dataCycles(sp, 4)
		c.bus.Write32(sp, c.regs.LR())
	}
	return cycles + uint64(count)
}

// thumbMultipleLoadStore implements format 15: LDMIA/STMIA Rb!, {Rlist}.
func (c *CPU) thumbMultipleLoadStore(opcode uint16) uint64 {
	load := opcode&(1<<11) != 0
	rb := int((opcode >> 8) & 0x7)
	rlist := opcode & 0xFF

	addr := c.regs.R(rb)
	count := 0
	var cycles uint64
	for i := 0; i < 8; i++ {
		if rlist&(1<<uint(i)) == 0 {
			continue
		}
		count++
		cycles += c.dataCycles(addr, 4)
		if load {
			c.regs.SetR(i, c.bus.Read32(addr))
		} else {
			c.bus.Write32(addr, c.regs.R(i))
		}
		addr += 4
	}
	if count == 0 {
		// Empty list: hardware quirk transfers R15 and advances by 0x40.
		if load {
			c.branchTo(c.bus.Read32(addr) &^ 1)
		} else {
			c.bus.Write32(addr, c.regs.PC()+2)
		}
		addr += 0x40
		count = 1
	}
	if !load || rlist&(1<<uint(rb)) == 0 {
		c.regs.SetR(rb, addr)
	}
	return cycles + uint64(count)
}

// thumbConditionalBranch implements format 16: Bcc label, the one place
// besides SWI where Thumb honors a condition field.
func (c *CPU) thumbConditionalBranch(opcode uint16) uint64 {
	cond := uint32((opcode >> 8) & 0xF)
	if !c.conditionPassed(cond) {
		return 0
	}
	offset := bit.SignExtend(uint32(opcode&0xFF), 8) << 1
	c.branchTo(c.regs.PC() + offset)
	return 2
}

// thumbUnconditionalBranch implements format 18: B label (11-bit signed
// word*2 offset).
func (c *CPU) thumbUnconditionalBranch(opcode uint16) uint64 {
	offset := bit.SignExtend(uint32(opcode&0x7FF), 11) << 1
	c.branchTo(c.regs.PC() + offset)
	return 2
}

// thumbLongBranchLink implements format 19: BL label, split across two
// 16-bit opcodes (high half sets LR to a PC-relative base, low half
// completes the jump using LR as the base and re-saves the return
// address per the published two-instruction BL sequence).
func (c *CPU) thumbLongBranchLink(opcode uint16) uint64 {
	low := opcode&(1<<11) != 0
	offset11 := uint32(opcode & 0x7FF)

	if !low {
		value := bit.SignExtend(offset11, 11) << 12
		c.regs.SetLR(c.regs.PC() + value)
		return 0
	}

	next := (c.execAddr() + 2) | 1
	target := c.regs.LR() + (offset11 << 1)
	c.regs.SetLR(next)
	c.branchTo(target)
	return 2
}
