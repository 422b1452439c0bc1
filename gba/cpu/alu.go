package cpu

import "github.com/mirelan/gbacore/gba/bit"

// addWithCarry computes a+b+carryIn and reports the carry-out and
// signed-overflow flags data-processing ADD/ADC/CMN need.
func addWithCarry(a, b uint32, carryIn bool) (result uint32, carryOut, overflow bool) {
	var c uint64
	if carryIn {
		c = 1
	}
	sum := uint64(a) + uint64(b) + c
	result = uint32(sum)
	carryOut = sum > 0xFFFFFFFF
	signA := a&0x80000000 != 0
	signB := b&0x80000000 != 0
	signR := result&0x80000000 != 0
	overflow = signA == signB && signR != signA
	return
}

// subWithCarry computes a-b-(1-carryIn) (ARM's inverted-borrow SBC/SUB
// convention: carryIn=1 means "no borrow").
func subWithCarry(a, b uint32, carryIn bool) (result uint32, carryOut, overflow bool) {
	notB := ^b
	return addWithCarry(a, notB, carryIn)
}

// mulCycles computes the extra internal cycles a multiply instruction
// takes, booth-recoded: the cost depends on how many
// of the top bytes of the multiplier are all-0 or all-1.
func mulCycles(multiplier uint32) int {
	if multiplier == 0 || multiplier == 0xFFFFFFFF {
		return 1
	}
	leadingZeros := bit.CountLeadingZeros32(multiplier)
	leadingOnes := bit.CountLeadingOnes32(multiplier)
	leading := leadingZeros
	if leadingOnes > leading {
		leading = leadingOnes
	}
	switch {
	case leading >= 24:
		return 1
	case leading >= 16:
		return 2
	case leading >= 8:
		return 3
	default:
		return 4
	}
}
