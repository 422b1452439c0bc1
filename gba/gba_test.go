package gba

import (
	"testing"

	"github.com/mirelan/gbacore/gba/addr"
	"github.com/mirelan/gbacore/gba/cpu"
	"github.com/mirelan/gbacore/gba/input"
	"github.com/stretchr/testify/require"
)

// minimalROM builds a ROM image just large enough to carry a header,
// with no recognizable save-chip signature.
func minimalROM() []byte {
	rom := make([]byte, 0xC0)
	copy(rom[0xA0:], []byte("TESTGAME"))
	copy(rom[0xAC:], []byte("TEST"))
	return rom
}

func TestNewConsoleStartsUnloaded(t *testing.T) {
	g := New(nil)

	require.Nil(t, g.Bus.GamePak())
	require.Nil(t, g.SaveData())
	require.False(t, g.SaveDirty())
	require.Equal(t, uint64(0), g.FrameCount())
}

func TestLoadROMInstallsGamePak(t *testing.T) {
	g := New(nil)

	err := g.LoadROM(minimalROM())

	require.NoError(t, err)
	require.NotNil(t, g.Bus.GamePak())
	require.Equal(t, "TESTGAME", g.Bus.GamePak().Header.Title)
}

func TestLoadROMRejectsEmptyImage(t *testing.T) {
	g := New(nil)

	err := g.LoadROM(nil)

	require.Error(t, err)
}

func TestSkipBIOSEntersCartridgeCode(t *testing.T) {
	g := New(nil)

	g.SkipBIOS()

	require.Equal(t, addr.GamePakStart+8, g.CPU.Registers().PC())
	require.Equal(t, uint16(0x200), g.Bus.Read16(addr.SOUNDBIAS))
}

func TestPressReleaseKeyForwardsToKeypad(t *testing.T) {
	g := New(nil)

	g.PressKey(input.KeyA)
	require.Equal(t, uint16(0x3FE), g.Bus.Keypad.KEYINPUT())
	g.ReleaseKey(input.KeyA)
	require.Equal(t, uint16(0x3FF), g.Bus.Keypad.KEYINPUT())
}

func TestRunFrameAdvancesFrameCount(t *testing.T) {
	g := New(nil)

	g.RunFrame()

	require.Equal(t, uint64(1), g.FrameCount())
	require.NotNil(t, g.FrameBuffer())
}

// TestHBlankIRQDispatchesWithinDelay drives a full line of HBlank IRQ
// plumbing: DISPSTAT.hblank_irq + IE bit 1 + IME armed, the event
// firing 960 cycles into the line, and the CPU vectoring to 0x18 at
// the first instruction boundary after the controller's 4-cycle
// dispatch delay.
func TestHBlankIRQDispatchesWithinDelay(t *testing.T) {
	g := New(nil)
	g.SkipBIOS()

	g.Bus.Write16(addr.DISPSTAT, 0x10)
	g.Bus.Write16(addr.IE, addr.IRQHBlank.Bit())
	g.Bus.Write16(addr.IME, 1)

	g.Bus.Sched.Run(960, g.runCPU)
	require.Zero(t, g.Bus.IRQ.IF()&addr.IRQHBlank.Bit(), "HBlank IRQ must not be pending before the line's 960th cycle")

	g.Bus.Sched.Run(16, g.runCPU)

	require.NotZero(t, g.Bus.IRQ.IF()&addr.IRQHBlank.Bit())
	require.Equal(t, cpu.ModeIRQ, g.CPU.Registers().CPSR().Mode())
	require.Equal(t, uint32(0x18+8), g.CPU.Registers().PC())
}
