package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestADDSFlagsOverflow checks that ADDS R0, R1, R2 with
// R1=0x7FFFFFFF, R2=1 sets N, V and clears Z, C.
func TestADDSFlagsOverflow(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.SetR(1, 0x7FFFFFFF)
	c.regs.SetR(2, 1)

	c.executeARM(0xE0910002) // ADDS R0, R1, R2

	require.Equal(t, uint32(0x80000000), c.regs.R(0))
	require.True(t, c.regs.cpsr.N())
	require.False(t, c.regs.cpsr.Z())
	require.False(t, c.regs.cpsr.C())
	require.True(t, c.regs.cpsr.V())
}

// TestLDRRotate checks that an unaligned LDR rotates the word read at
// the aligned address by 8*(address&3).
func TestLDRRotate(t *testing.T) {
	c, bus := newTestCPU()
	bus.Write32(0x03007F00, 0xDEADBEEF)
	c.regs.SetR(1, 0x03007F01)

	c.executeARM(0xE5910000) // LDR R0, [R1]

	require.Equal(t, uint32(0xEFDEADBE), c.regs.R(0))
}

// TestSUBSFlagsNoBorrow checks the inverted-carry SUB convention: a
// subtraction that doesn't borrow sets C.
func TestSUBSFlagsNoBorrow(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.SetR(1, 10)
	c.regs.SetR(2, 3)

	c.executeARM(0xE0510002) // SUBS R0, R1, R2

	require.Equal(t, uint32(7), c.regs.R(0))
	require.True(t, c.regs.cpsr.C())
	require.False(t, c.regs.cpsr.Z())
}

// TestMOVImmediate checks the rotated-immediate operand 2 path.
func TestMOVImmediate(t *testing.T) {
	c, _ := newTestCPU()
	c.executeARM(0xE3A000FF) // MOV R0, #0xFF

	require.Equal(t, uint32(0xFF), c.regs.R(0))
}

// TestBranchAndLink checks B/BL's sign-extended word offset and LR save.
func TestBranchAndLink(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.SetPC(0x08000000 + 8) // pipeline-ahead PC for the instruction at 0x08000000

	c.executeARM(0xEB000002) // BL +8 (word offset 2 -> +8 bytes)

	require.Equal(t, uint32(0x08000004), c.regs.LR())
	require.Equal(t, uint32(0x08000018), c.regs.PC()) // target 0x08000010, branchTo re-primes PC+8
}

// TestBranchExchangeTogglesThumb exercises the ARM<->Thumb round-trip
// law: bx to an odd address switches T and continues there.
func TestBranchExchangeTogglesThumb(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.SetR(0, 0x08000101)

	c.executeARM(0xE12FFF10) // BX R0

	require.True(t, c.regs.cpsr.Thumb())
	require.Equal(t, uint32(0x08000100+4), c.regs.PC())
}

// TestModeSwitchPreservesBankedRegisters exercises invariant:
// mode-switch preserves R0-R7 (and R15), and banked registers read back
// their last stored value after re-entering their mode.
func TestModeSwitchPreservesBankedRegisters(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.SetR(0, 0x11111111)
	c.regs.SetR(13, 0xAAAAAAAA) // User SP

	c.regs.EnterMode(ModeIRQ)
	c.regs.SetR(13, 0xBBBBBBBB) // IRQ SP

	require.Equal(t, uint32(0x11111111), c.regs.R(0), "R0 must survive a mode switch")

	c.regs.EnterMode(ModeUser)
	require.Equal(t, uint32(0xAAAAAAAA), c.regs.R(13), "User SP must be restored")

	c.regs.EnterMode(ModeIRQ)
	require.Equal(t, uint32(0xBBBBBBBB), c.regs.R(13), "IRQ SP must be restored")
}

// TestBlockDataTransferStoreMultiple checks STM's lowest-register-first
// ordering and writeback.
func TestBlockDataTransferStoreMultiple(t *testing.T) {
	c, bus := newTestCPU()
	c.regs.SetR(0, 0x03000000) // base
	c.regs.SetR(1, 0x1111)
	c.regs.SetR(2, 0x2222)
	c.regs.SetR(3, 0x3333)

	// STMIA R0!, {R1-R3}: cond=AL, P=0,U=1,S=0,W=1,L=0, Rn=0, rlist=0b1110
	c.executeARM(0xE8A0000E)

	require.Equal(t, uint32(0x1111), bus.Read32(0x03000000))
	require.Equal(t, uint32(0x2222), bus.Read32(0x03000004))
	require.Equal(t, uint32(0x3333), bus.Read32(0x03000008))
	require.Equal(t, uint32(0x0300000C), c.regs.R(0), "writeback must advance base by transfer count*4")
}

// TestMultiplyAccumulate checks MLA's accumulate-and-multiply behavior.
func TestMultiplyAccumulate(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.SetR(1, 6) // Rm
	c.regs.SetR(2, 7) // Rs
	c.regs.SetR(3, 2) // Rn (accumulator)

	// MLA R0, R1, R2, R3: cond=AL, A=1, S=0
	c.executeARM(0xE0203291)

	require.Equal(t, uint32(6*7+2), c.regs.R(0))
}
