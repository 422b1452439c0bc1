package input

import (
	"testing"

	"github.com/mirelan/gbacore/gba/addr"
	"github.com/mirelan/gbacore/gba/interrupt"
	"github.com/stretchr/testify/require"
)

func TestPressClearsBit(t *testing.T) {
	irq := interrupt.New()
	k := New(irq)
	require.Equal(t, uint16(0x3FF), k.KEYINPUT())

	k.Press(KeyA)
	require.Equal(t, uint16(0x3FE), k.KEYINPUT())

	k.Release(KeyA)
	require.Equal(t, uint16(0x3FF), k.KEYINPUT())
}

func TestIRQOrConditionFiresOnAnyMaskedKey(t *testing.T) {
	irq := interrupt.New()
	k := New(irq)

	k.SetKEYCNT(0x4000 | uint16(1<<KeyStart))
	require.False(t, irq.IF()&addr.IRQKeypad.Bit() != 0)

	k.Press(KeyStart)
	require.True(t, irq.IF()&addr.IRQKeypad.Bit() != 0)
}

func TestIRQAndConditionRequiresAllMaskedKeys(t *testing.T) {
	irq := interrupt.New()
	k := New(irq)

	mask := uint16(1<<KeyA) | uint16(1<<KeyB)
	k.SetKEYCNT(0xC000 | mask) // enable + AND mode

	k.Press(KeyA)
	require.False(t, irq.IF()&addr.IRQKeypad.Bit() != 0)

	k.Press(KeyB)
	require.True(t, irq.IF()&addr.IRQKeypad.Bit() != 0)
}
