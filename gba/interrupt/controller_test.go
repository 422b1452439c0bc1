package interrupt

import (
	"testing"

	"github.com/mirelan/gbacore/gba/addr"
	"github.com/stretchr/testify/require"
)

func TestRequestSetsIFBit(t *testing.T) {
	c := New()
	c.Request(addr.IRQVBlank)
	require.Equal(t, addr.IRQVBlank.Bit(), c.IF())
}

func TestWriteIFClearsOnlyWrittenBits(t *testing.T) {
	c := New()
	c.Request(addr.IRQVBlank)
	c.Request(addr.IRQTimer0)

	c.WriteIF(addr.IRQVBlank.Bit())

	require.Equal(t, addr.IRQTimer0.Bit(), c.IF())
}

func TestDelayElapsesAfterFourCycles(t *testing.T) {
	c := New()
	c.SetIE(addr.IRQVBlank.Bit())
	c.SetIME(true)
	c.Request(addr.IRQVBlank)

	require.False(t, c.Ready())
	if c.Tick(3) {
		t.Fatal("IRQ dispatched too early")
	}
	require.True(t, c.Tick(1))
}

func TestDelayCanceledWhenConditionClears(t *testing.T) {
	c := New()
	c.SetIE(addr.IRQVBlank.Bit())
	c.SetIME(true)
	c.Request(addr.IRQVBlank)

	c.WriteIF(addr.IRQVBlank.Bit())

	require.False(t, c.Ready())
	require.False(t, c.Tick(4))
}

func TestPendingIgnoresIME(t *testing.T) {
	c := New()
	c.SetIE(addr.IRQKeypad.Bit())
	c.Request(addr.IRQKeypad)

	require.True(t, c.Pending())
}
