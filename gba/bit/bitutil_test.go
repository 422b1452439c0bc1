package bit

import "testing"

func TestCombine(t *testing.T) {
	if got := Combine(0xDE, 0xAD); got != 0xDEAD {
		t.Fatalf("Combine() = 0x%04X, want 0xDEAD", got)
	}
}

func TestRotateRight32(t *testing.T) {
	cases := []struct {
		value  uint32
		amount uint8
		want   uint32
	}{
		{0xDEADBEEF, 0, 0xDEADBEEF},
		{0x00000001, 8, 0x01000000},
		{0x12345678, 32, 0x12345678},
	}

	for _, c := range cases {
		if got := RotateRight32(c.value, c.amount); got != c.want {
			t.Errorf("RotateRight32(0x%08X, %d) = 0x%08X, want 0x%08X", c.value, c.amount, got, c.want)
		}
	}
}

func TestSignExtend(t *testing.T) {
	if got := SignExtend(0xFF, 8); got != 0xFFFFFFFF {
		t.Errorf("SignExtend(0xFF, 8) = 0x%08X, want 0xFFFFFFFF", got)
	}
	if got := SignExtend(0x7F, 8); got != 0x7F {
		t.Errorf("SignExtend(0x7F, 8) = 0x%08X, want 0x7F", got)
	}
}

func TestCountLeadingZeros32(t *testing.T) {
	if got := CountLeadingZeros32(0); got != 32 {
		t.Errorf("CountLeadingZeros32(0) = %d, want 32", got)
	}
	if got := CountLeadingZeros32(1); got != 31 {
		t.Errorf("CountLeadingZeros32(1) = %d, want 31", got)
	}
	if got := CountLeadingZeros32(0x80000000); got != 0 {
		t.Errorf("CountLeadingZeros32(0x80000000) = %d, want 0", got)
	}
}

func TestExtractBits(t *testing.T) {
	if got := ExtractBits(0b11010110, 6, 4); got != 0b101 {
		t.Errorf("ExtractBits = 0b%b, want 0b101", got)
	}
}
