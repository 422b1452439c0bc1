package cpu

// ShiftType is the 2-bit barrel-shifter operation selector shared by
// ARM data-processing operand 2 and Thumb move-shifted-register.
type ShiftType uint8

const (
	ShiftLSL ShiftType = iota
	ShiftLSR
	ShiftASR
	ShiftROR
)

// barrelShift applies one of the four shift types to value by amount,
// returning the shifted value and the carry-out the data-processing
// flags logic needs. It implements the three special cases real
// hardware defines for an immediate shift amount of 0:
// LSL #0 is a no-op with carry unchanged, LSR #0 and ASR #0 are treated
// as #32, and ROR #0 is RRX (rotate through carry by one).
func barrelShift(shift ShiftType, value uint32, amount uint32, carryIn bool, immediateZero bool) (result uint32, carryOut bool) {
	switch shift {
	case ShiftLSL:
		return shiftLSL(value, amount, carryIn)
	case ShiftLSR:
		if immediateZero {
			amount = 32
		}
		return shiftLSR(value, amount, carryIn)
	case ShiftASR:
		if immediateZero {
			amount = 32
		}
		return shiftASR(value, amount, carryIn)
	default: // ShiftROR
		if immediateZero {
			return shiftRRX(value, carryIn)
		}
		return shiftROR(value, amount, carryIn)
	}
}

func shiftLSL(value, amount uint32, carryIn bool) (uint32, bool) {
	switch {
	case amount == 0:
		return value, carryIn
	case amount < 32:
		return value << amount, (value>>(32-amount))&1 != 0
	case amount == 32:
		return 0, value&1 != 0
	default:
		return 0, false
	}
}

func shiftLSR(value, amount uint32, carryIn bool) (uint32, bool) {
	switch {
	case amount == 0:
		return value, carryIn
	case amount < 32:
		return value >> amount, (value>>(amount-1))&1 != 0
	case amount == 32:
		return 0, value&0x80000000 != 0
	default:
		return 0, false
	}
}

func shiftASR(value, amount uint32, carryIn bool) (uint32, bool) {
	sval := int32(value)
	switch {
	case amount == 0:
		return value, carryIn
	case amount < 32:
		return uint32(sval >> amount), (value>>(amount-1))&1 != 0
	default:
		if sval < 0 {
			return 0xFFFFFFFF, true
		}
		return 0, false
	}
}

func shiftROR(value, amount uint32, carryIn bool) (uint32, bool) {
	if amount == 0 {
		return value, carryIn
	}
	amount %= 32
	if amount == 0 {
		return value, value&0x80000000 != 0
	}
	result := (value >> amount) | (value << (32 - amount))
	return result, result&0x80000000 != 0
}

func shiftRRX(value uint32, carryIn bool) (uint32, bool) {
	carryOut := value&1 != 0
	result := value >> 1
	if carryIn {
		result |= 0x80000000
	}
	return result, carryOut
}
