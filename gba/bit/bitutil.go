// Package bit holds small bit-twiddling helpers shared by the bus, CPU,
// PPU and DMA packages. None of it is GBA-specific; it is the same kind
// of grab-bag a Z80 core needs, widened to 32 bits for an ARM core.
package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// Combine32 combines two 16 bit values into a single 32 bit value.
func Combine32(high, low uint16) uint32 {
	return (uint32(high) << 16) | uint32(low)
}

// IsSet checks if the bit at the specified index is set to 1 or not.
func IsSet(index uint8, value uint8) bool {
	return ((value >> index) & 1) == 1
}

// IsSet16 checks if the bit at the specified index is set in a 16 bit value.
func IsSet16(index uint8, value uint16) bool {
	return ((value >> index) & 1) == 1
}

// IsSet32 checks if the bit at the specified index is set in a 32 bit value.
func IsSet32(index uint8, value uint32) bool {
	return ((value >> index) & 1) == 1
}

// Set returns the passed byte with the bit at the specified index set to 1.
func Set(index uint8, value uint8) uint8 {
	return value | (1 << index)
}

// Reset returns the passed byte with the bit at the specified index set to 0.
func Reset(index uint8, value uint8) uint8 {
	return value &^ (1 << index)
}

// SetTo sets or clears the bit at index depending on set.
func SetTo(index uint8, value uint8, set bool) uint8 {
	if set {
		return Set(index, value)
	}
	return Reset(index, value)
}

// SetTo32 sets or clears the bit at index in a 32 bit value depending on set.
func SetTo32(index uint8, value uint32, set bool) uint32 {
	if set {
		return value | (1 << index)
	}
	return value &^ (1 << index)
}

// Low returns the low (LSB) byte of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) byte of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// LowHalf returns the low 16 bits of a 32 bit number.
func LowHalf(value uint32) uint16 {
	return uint16(value)
}

// HighHalf returns the high 16 bits of a 32 bit number.
func HighHalf(value uint32) uint16 {
	return uint16(value >> 16)
}

// ExtractBits extracts bits from highBit to lowBit (inclusive) of a 32 bit value.
// Example: ExtractBits(0b11010110, 6, 4) -> 0b101 (extracts bits 6, 5, 4)
func ExtractBits(value uint32, highBit, lowBit uint8) uint32 {
	width := highBit - lowBit + 1
	mask := uint32((1 << width) - 1)
	return (value >> lowBit) & mask
}

// RotateRight32 rotates a 32 bit value right by the given amount (0-31).
func RotateRight32(value uint32, amount uint8) uint32 {
	amount &= 31
	if amount == 0 {
		return value
	}
	return (value >> amount) | (value << (32 - amount))
}

// RotateRight16 rotates a 16 bit value right by the given amount (0-15).
func RotateRight16(value uint16, amount uint8) uint16 {
	amount &= 15
	if amount == 0 {
		return value
	}
	return (value >> amount) | (value << (16 - amount))
}

// SignExtend sign-extends a value held in the low `bits` bits of a uint32
// to a full 32-bit signed range, returned as uint32 two's complement.
func SignExtend(value uint32, bits uint8) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}

// CountLeadingZeros32 returns the number of leading zero bits in a 32 bit
// value, used by the CPU's multiply-cycle model.
func CountLeadingZeros32(value uint32) int {
	if value == 0 {
		return 32
	}
	n := 0
	for value&0x80000000 == 0 {
		value <<= 1
		n++
	}
	return n
}

// CountLeadingOnes32 returns the number of leading one bits in a 32 bit
// value, used for the signed-multiply cycle shortcut.
func CountLeadingOnes32(value uint32) int {
	return CountLeadingZeros32(^value)
}
