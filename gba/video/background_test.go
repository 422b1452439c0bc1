package video

import (
	"testing"

	"github.com/mirelan/gbacore/gba/interrupt"
	"github.com/mirelan/gbacore/gba/scheduler"
	"github.com/stretchr/testify/require"
)

// stubDMA satisfies DMANotifier without forwarding anywhere; none of
// these tests drive the PPU through a full scanline via the scheduler,
// so the notifications never fire.
type stubDMA struct{}

func (stubDMA) NotifyHBlank()     {}
func (stubDMA) NotifyVBlank()     {}
func (stubDMA) NotifySpecial(int) {}

func newTestPPU() *PPU {
	vram := make([]byte, 0x18000)
	palette := make([]byte, 0x400)
	oam := make([]byte, 0x400)
	return New(vram, palette, oam, interrupt.New(), scheduler.New(), stubDMA{})
}

// TestTextBGScrollAppliesHOFS exercises a 256x256 text background
// scrolled by HOFS=4: pixel (0,0) of the rendered scanline must equal
// the color looked up from tile (0,0)'s column offset 4, not its
// column 0.
func TestTextBGScrollAppliesHOFS(t *testing.T) {
	p := newTestPPU()

	p.SetDISPCNT(0x0100) // mode 0, BG0 enabled
	p.SetBGCNT(0, 0)     // screen base 0, char base 0, 16-color, 32x32 map
	p.SetBGHOFS(0, 4)
	p.SetBGVOFS(0, 0)

	// Map entry for tile (0,0): tile number 1, no flip, palette bank 0.
	p.vram[0] = 0x01
	p.vram[1] = 0x00

	// Tile 1's 4bpp data, row 0: column 4 is the low nibble of byte 2
	// (pixels 4 and 5 share that byte), set to palette index 5.
	tileAddr := 1*32 + 0*4 + 4/2
	p.vram[tileAddr] = 0x05

	// Palette index 5: an arbitrary non-zero BGR555 color.
	const color = bgr555(0x7FFF)
	p.palette[5*2] = byte(color)
	p.palette[5*2+1] = byte(color >> 8)

	p.drawScanline()

	require.False(t, p.bgLine[0][0].transparent)
	require.Equal(t, color, p.bgLine[0][0].color)
	require.Equal(t, ToARGB(color, nil), p.fb.Pixels[0])
}

// TestTextBGScrollWrapsAtMapEdge confirms HOFS wraps within the 256px
// map rather than reading past it.
func TestTextBGScrollWrapsAtMapEdge(t *testing.T) {
	p := newTestPPU()

	p.SetDISPCNT(0x0100)
	p.SetBGCNT(0, 0)
	p.SetBGHOFS(0, 255)
	p.SetBGVOFS(0, 0)

	// Tile (31,0), the last tile in row 0, holds tile number 2.
	mapOffset := 31 * 2
	p.vram[mapOffset] = 0x02
	p.vram[mapOffset+1] = 0x00

	tileAddr := 2*32 + 0*4 + 7/2
	p.vram[tileAddr] = 0x03 << 4 // pixel 7 is the high nibble

	const color = bgr555(0x1234 & 0x7FFF)
	p.palette[3*2] = byte(color)
	p.palette[3*2+1] = byte(color >> 8)

	p.drawScanline()

	// scrolledX = (0 + 255) % 256 = 255, tile 31 pixel 7.
	require.Equal(t, color, p.bgLine[0][0].color)
}
