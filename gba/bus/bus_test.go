package bus

import (
	"testing"

	"github.com/mirelan/gbacore/gba/addr"
	"github.com/mirelan/gbacore/gba/gamepak"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *Bus {
	b := New(make([]byte, addr.BIOSSize))
	b.Start()
	return b
}

func TestEWRAMReadWriteRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.Write32(addr.EWRAMStart+4, 0xDEADBEEF)
	require.Equal(t, uint32(0xDEADBEEF), b.Read32(addr.EWRAMStart+4))
}

func TestEWRAMMirrors(t *testing.T) {
	b := newTestBus(t)
	b.Write8(addr.EWRAMStart, 0x42)
	require.Equal(t, byte(0x42), b.Read8(addr.EWRAMStart+addr.EWRAMSize))
}

func TestIORegisterRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.Write16(addr.IE, 0x3FFF)
	require.Equal(t, uint16(0x3FFF), b.Read16(addr.IE))

	b.Write16(addr.IME, 1)
	require.True(t, b.IRQ.IME())
}

func TestDMARegistersRouteThroughBus(t *testing.T) {
	b := newTestBus(t)
	b.Write32(addr.DMA3SAD, addr.EWRAMStart)
	b.Write32(addr.DMA3DAD, addr.EWRAMStart+0x1000)
	b.Write16(addr.DMA3CNT_L, 4)

	b.Write32(addr.EWRAMStart, 0x11223344)
	b.Write16(addr.DMA3CNT_H, 0x8400) // enable, word transfer, immediate

	require.Equal(t, uint32(0x11223344), b.Read32(addr.EWRAMStart+0x1000))
}

func TestGamePakReadMirrorsAcrossWaitStateWindows(t *testing.T) {
	b := newTestBus(t)
	rom := make([]byte, 0x200)
	rom[0] = 0xAB
	pak, err := gamepak.Load(rom)
	require.NoError(t, err)
	b.SetGamePak(pak)

	require.Equal(t, byte(0xAB), b.Read8(addr.GamePakStart))
	require.Equal(t, byte(0xAB), b.Read8(addr.GamePakStart+0x02000000))
}

func TestOpenBusBeyondMappedRegions(t *testing.T) {
	b := newTestBus(t)
	b.LatchOpcode(0x12345678)
	require.Equal(t, uint32(0x12345678), b.Read32(0x10000000))
}

func TestPaletteByteWriteReplicatesToHalfword(t *testing.T) {
	b := newTestBus(t)
	b.Write8(addr.PaletteStart+2, 0x7F)
	require.Equal(t, uint16(0x7F7F), b.Read16(addr.PaletteStart+2))
}

func TestVRAMByteWriteReplicatesToHalfword(t *testing.T) {
	b := newTestBus(t)
	b.Write8(addr.VRAMStart, 0x3C)
	require.Equal(t, uint16(0x3C3C), b.Read16(addr.VRAMStart))
}

func TestOAMByteWritesAreDropped(t *testing.T) {
	b := newTestBus(t)
	b.Write16(addr.OAMStart, 0xAAAA)
	b.Write8(addr.OAMStart, 0x11)
	require.Equal(t, uint16(0xAAAA), b.Read16(addr.OAMStart))
}
