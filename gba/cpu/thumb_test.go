package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestThumbMoveShiftedLSL exercises format 1: LSL Rd, Rs, #imm5.
func TestThumbMoveShiftedLSL(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.SetR(1, 1)

	c.executeThumb(0x0088) // LSL R0, R1, #2

	require.Equal(t, uint32(4), c.regs.R(0))
	require.False(t, c.regs.cpsr.C())
}

// TestThumbAddSubtract exercises format 2's register-operand ADD.
func TestThumbAddSubtract(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.SetR(1, 5)
	c.regs.SetR(2, 3)

	c.executeThumb(0x1888) // ADD R0, R1, R2

	require.Equal(t, uint32(8), c.regs.R(0))
}

// TestThumbImmediateMOV exercises format 3's MOV Rd, #imm8.
func TestThumbImmediateMOV(t *testing.T) {
	c, _ := newTestCPU()

	c.executeThumb(0x2050) // MOV R0, #0x50

	require.Equal(t, uint32(0x50), c.regs.R(0))
	require.False(t, c.regs.cpsr.Z())
}

// TestThumbALUAnd exercises format 4's two-register AND.
func TestThumbALUAnd(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.SetR(0, 0xFF)
	c.regs.SetR(1, 0x0F)

	c.executeThumb(0x4008) // AND R0, R1

	require.Equal(t, uint32(0x0F), c.regs.R(0))
}

// TestThumbHiRegisterBX exercises format 5's BX, the only way Thumb
// code reaches ARM state.
func TestThumbHiRegisterBX(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.SetR(1, 0x08000101)

	c.executeThumb(0x4708) // BX R1

	require.True(t, c.regs.cpsr.Thumb())
	require.Equal(t, uint32(0x08000100+4), c.regs.PC())
}

// TestThumbPCRelativeLoad exercises format 6: PC is word-aligned before
// the scaled immediate offset is applied.
func TestThumbPCRelativeLoad(t *testing.T) {
	c, bus := newTestCPU()
	bus.Write32(0x08000008, 0xCAFEBABE)
	c.regs.SetPC(0x08000004)

	c.executeThumb(0x4801) // LDR R0, [PC, #4]

	require.Equal(t, uint32(0xCAFEBABE), c.regs.R(0))
}

// TestThumbPushPop exercises format 14's PUSH, including its
// decrement-before-store SP convention.
func TestThumbPushPop(t *testing.T) {
	c, bus := newTestCPU()
	c.regs.SetR(0, 0x1111)
	c.regs.SetR(1, 0x2222)
	c.regs.SetSP(0x03007F00)

	c.executeThumb(0xB403) // PUSH {R0, R1}

	require.Equal(t, uint32(0x03007EF8), c.regs.SP())
	require.Equal(t, uint32(0x1111), bus.Read32(0x03007EF8))
	require.Equal(t, uint32(0x2222), bus.Read32(0x03007EFC))
}

// TestThumbLongBranchLink exercises format 19's two-halfword BL
// sequence: the high half stashes a PC-relative base in LR, the low
// half completes the jump and re-saves the return address.
func TestThumbLongBranchLink(t *testing.T) {
	c, _ := newTestCPU()
	c.regs.cpsr.SetThumb(true)

	c.regs.SetPC(0x08000004) // pipeline-ahead PC for the high half at 0x08000000
	c.executeThumb(0xF000)   // BL high half, offset bits = 0

	c.regs.SetPC(0x08000006) // pipeline-ahead PC for the low half at 0x08000002
	c.executeThumb(0xF802)   // BL low half, offset11 = 2 -> +4 bytes

	require.Equal(t, uint32(0x08000005), c.regs.LR())
	require.Equal(t, uint32(0x0800000C), c.regs.PC())
}
