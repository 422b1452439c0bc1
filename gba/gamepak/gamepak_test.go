package gamepak

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func makeROM(size int) []byte {
	rom := make([]byte, size)
	copy(rom[0xA0:], []byte("GAME TITLE  "))
	copy(rom[0xAC:], []byte("ABCE"))
	return rom
}

func TestParseHeader(t *testing.T) {
	rom := makeROM(0x1000)
	gp, err := Load(rom)
	require.NoError(t, err)
	require.Equal(t, "GAME TITLE", gp.Header.Title)
	require.Equal(t, "ABCE", gp.Header.Code)
}

func TestDetectSRAMSignature(t *testing.T) {
	rom := makeROM(0x2000)
	copy(rom[0x500:], []byte("SRAM_V110"))

	kind, size := DetectSaveType(rom, "ABCE")
	require.Equal(t, KindSRAM, kind)
	require.Equal(t, 0x8000, size)
}

func TestDetectEEPROMSignature(t *testing.T) {
	rom := makeROM(0x2000)
	copy(rom[0x800:], []byte("EEPROM_V120"))

	kind, _ := DetectSaveType(rom, "ABCE")
	require.Equal(t, KindEEPROM8K, kind)
}

func TestOverrideTableWins(t *testing.T) {
	rom := makeROM(0x2000)
	copy(rom[0x500:], []byte("SRAM_V110"))

	kind, _ := DetectSaveType(rom, "AXVE")
	require.Equal(t, KindFlash128K, kind)
}

func TestOpenBusBeyondROMEnd(t *testing.T) {
	rom := makeROM(0x100)
	gp, err := Load(rom)
	require.NoError(t, err)

	got := gp.ReadHalfword(0x1000)
	require.Equal(t, uint16((0x1000>>1)&0xFFFF), got)
}

func TestSRAMRoundTrip(t *testing.T) {
	s := newSRAM(0x8000)
	s.Write(0x10, 0x42)
	require.Equal(t, byte(0x42), s.Read(0x10))
	require.True(t, s.Dirty())
}

func TestFlashUnlockSequenceErasesChip(t *testing.T) {
	f := newFlash(KindFlash64K, 0x10000)
	f.Write(0x100, 0x55)
	require.Equal(t, byte(0x55), f.Read(0x100))

	f.Write(0x5555, 0xAA)
	f.Write(0x2AAA, 0x55)
	f.Write(0x5555, 0x80)
	f.Write(0x5555, 0xAA)
	f.Write(0x2AAA, 0x55)
	f.Write(0x5555, 0x10)

	require.Equal(t, byte(0xFF), f.Read(0x100))
}

func TestRTCRollover(t *testing.T) {
	r := NewRTC()
	r.SetDateTime(24, 1, 1, 0, 23, 59, 59)
	r.Tick()
	_, _, day, _, hour, minute, second := r.DateTime()
	require.Equal(t, byte(2), day)
	require.Equal(t, byte(0), hour)
	require.Equal(t, byte(0), minute)
	require.Equal(t, byte(0), second)
}

// clockBits drives the 3-wire serial state machine with CS already
// high: it strobes SCK low-then-high once per bit (MSB first), driving
// SIO only while the GBA owns it (dirSIO), and returns the bits the
// chip drove back on SIO for each clock.
func clockBits(r *RTC, dirSIO bool, out []bool) []bool {
	var dir byte
	if dirSIO {
		dir = pinSIO
	}
	in := make([]bool, len(out))
	for i, bit := range out {
		data := byte(pinCS)
		if bit {
			data |= pinSIO
		}
		r.WritePort(data, dir) // SCK low
		data |= pinSCK
		r.WritePort(data, dir) // SCK rising edge: clocks the bit
		in[i] = r.ReadPort()&pinSIO != 0
	}
	return in
}

func bitsFromByte(b byte) []bool {
	bits := make([]bool, 8)
	for i := 0; i < 8; i++ {
		bits[i] = (b>>(7-i))&1 != 0
	}
	return bits
}

func TestRTCSerialWriteThenReadDateTime(t *testing.T) {
	r := NewRTC()

	// Command byte: reg=DateTime(2), direction=write(0) -> 0b0010_0000.
	cmd := byte(regDateTime<<4) | 0
	clockBits(r, true, bitsFromByte(cmd))

	payload := []byte{
		toBCD(24), toBCD(3), toBCD(15), 5,
		toBCD(13), toBCD(30), toBCD(45),
	}
	var bits []bool
	for _, b := range payload {
		bits = append(bits, bitsFromByte(b)...)
	}
	clockBits(r, true, bits)

	year, month, day, weekday, hour, minute, second := r.DateTime()
	require.Equal(t, byte(24), year)
	require.Equal(t, byte(3), month)
	require.Equal(t, byte(15), day)
	require.Equal(t, byte(5), weekday)
	require.Equal(t, byte(13), hour)
	require.Equal(t, byte(30), minute)
	require.Equal(t, byte(45), second)
}

func TestRTCSerialReadControlRegister(t *testing.T) {
	r := NewRTC()
	r.setControlByte(0x5)

	cmd := byte(regControl<<4) | 1 // direction=read
	clockBits(r, true, bitsFromByte(cmd))

	gotBits := clockBits(r, false, make([]bool, 8))
	var got byte
	for _, b := range gotBits {
		got <<= 1
		if b {
			got |= 1
		}
	}
	require.Equal(t, byte(0x5), got)
}

func TestRTCForceResetCommandClearsFields(t *testing.T) {
	r := NewRTC()
	r.SetDateTime(24, 1, 1, 0, 1, 1, 1)

	cmd := byte(regForceReset << 4)
	clockBits(r, true, bitsFromByte(cmd))

	year, _, _, _, _, _, _ := r.DateTime()
	require.Equal(t, byte(0), year)
}
