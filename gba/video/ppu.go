// Package video implements the GBA's pixel processing unit: the
// per-scanline renderer for four background layers, 128 objects, two
// rectangular windows plus an object window, mosaic, alpha blending,
// and the six video modes.
//
// Frame timing matches real hardware exactly: 228 scanlines of 1232
// cycles each (960 visible + 272 HBlank), driven by two alternating
// scheduler events (HBlank, HBlankEnd) rather than a per-cycle tick,
// the same event-scheduling discipline every subsystem in this core
// uses.
package video

import (
	"github.com/mirelan/gbacore/gba/addr"
	"github.com/mirelan/gbacore/gba/bit"
	"github.com/mirelan/gbacore/gba/interrupt"
	"github.com/mirelan/gbacore/gba/scheduler"
)

const (
	cyclesVisible = 960
	cyclesHBlank  = 272
	cyclesPerLine = cyclesVisible + cyclesHBlank
	totalLines    = 228
	firstVBlank   = 160
)

// DMANotifier is the narrow surface the PPU needs from the DMA engine:
// HBlank/VBlank/Video-capture start-condition notifications.
type DMANotifier interface {
	NotifyHBlank()
	NotifyVBlank()
	NotifySpecial(channel int)
}

// affineRef holds a background's latched 28-bit fixed-point (8
// fractional bits) reference point, reloaded from BGxX/BGxY at VBlank
// and advanced by BGxPB/BGxPD every scanline.
type affineRef struct {
	x, y    int32 // live, advancing value
	latchedX, latchedY int32 // value from the last register write, reloaded at VBlank
}

// PPU owns every LCD/video register plus the VRAM/Palette/OAM byte
// arrays it renders from. Those arrays are owned by the bus and handed
// in by reference, avoiding an import cycle back to the bus package.
type PPU struct {
	vram    []byte
	palette []byte
	oam     []byte

	fb      *FrameBuffer
	bgLine  [4][Width]bgPixel
	objLine [Width]objPixel
	winMask [Width]windowFlags

	Gamma GammaCurve

	irq   *interrupt.Controller
	sched *scheduler.Scheduler
	dma   DMANotifier

	line int

	dispcnt  uint16
	dispstat uint16
	bgcnt    [4]uint16
	bgHOFS   [4]uint16
	bgVOFS   [4]uint16
	bgPA, bgPB, bgPC, bgPD [2]int16
	bgRef    [2]affineRef

	win0h, win1h, win0v, win1v uint16
	winin, winout              uint16
	mosaic                     uint16
	bldcnt, bldalpha, bldy     uint16

	hblankHandle scheduler.Handle
}

// New wires a PPU to its backing memory and the interrupt/scheduler/DMA
// collaborators it needs to fire IRQs and start-condition notifications.
func New(vram, palette, oam []byte, irq *interrupt.Controller, sched *scheduler.Scheduler, dma DMANotifier) *PPU {
	p := &PPU{
		vram: vram, palette: palette, oam: oam,
		fb: NewFrameBuffer(),
		irq: irq, sched: sched, dma: dma,
	}
	sched.SetHandler(scheduler.KindHBlank, p.onHBlankEvent)
	sched.SetHandler(scheduler.KindHBlankEnd, p.onHBlankEndEvent)
	return p
}

// Start arms the first HBlank event; called once after the bus/console
// finishes wiring every subsystem together.
func (p *PPU) Start() {
	p.sched.Schedule(scheduler.KindHBlank, 0, cyclesVisible)
}

// Reset restores power-on state: line 0, all registers cleared, and the
// first HBlank event re-armed.
func (p *PPU) Reset() {
	*p = PPU{vram: p.vram, palette: p.palette, oam: p.oam, fb: NewFrameBuffer(), irq: p.irq, sched: p.sched, dma: p.dma, Gamma: p.Gamma}
	p.sched.Schedule(scheduler.KindHBlank, 0, cyclesVisible)
}

// FrameBuffer returns the most recently completed/in-progress frame.
func (p *PPU) FrameBuffer() *FrameBuffer { return p.fb }

// Line returns the current scanline (VCOUNT), 0..227.
func (p *PPU) Line() int { return p.line }

// onHBlankEvent fires 960 cycles into the current line: it renders the
// visible scanline, sets the HBlank STAT flag, raises the HBlank IRQ if
// enabled, and notifies the DMA engine of the HBlank/video-capture start
// conditions, then arms HBlankEnd 272 cycles later.
func (p *PPU) onHBlankEvent(_ int, _ uint64) {
	if p.line < Height {
		p.drawScanline()
	}

	p.dispstat = uint16(bit.SetTo32(1, uint32(p.dispstat), true))
	if p.dispstat&0x10 != 0 {
		p.irq.Request(addr.IRQHBlank)
	}

	p.dma.NotifyHBlank()
	if p.line >= 2 && p.line < 162 {
		p.dma.NotifySpecial(3)
	}

	p.sched.Schedule(scheduler.KindHBlankEnd, 0, cyclesHBlank)
}

// onHBlankEndEvent fires at the end of each line: it advances VCOUNT,
// evaluates the LYC-style VCount match, and at line 160 enters VBlank
//.
func (p *PPU) onHBlankEndEvent(_ int, _ uint64) {
	p.dispstat = uint16(bit.SetTo32(1, uint32(p.dispstat), false))
	p.line = (p.line + 1) % totalLines

	if p.line == firstVBlank {
		p.dispstat = uint16(bit.SetTo32(0, uint32(p.dispstat), true))
		if p.dispstat&0x8 != 0 {
			p.irq.Request(addr.IRQVBlank)
		}
		p.dma.NotifyVBlank()
		p.onVBlankStart()
	}
	if p.line == 0 {
		p.dispstat = uint16(bit.SetTo32(0, uint32(p.dispstat), false))
	}

	p.evaluateVCount()

	p.sched.Schedule(scheduler.KindHBlank, 0, cyclesVisible)
}

// onVBlankStart reloads each affine background's reference point from
// its latched BGxX/BGxY registers
func (p *PPU) onVBlankStart() {
	for i := range p.bgRef {
		p.bgRef[i].x = p.bgRef[i].latchedX
		p.bgRef[i].y = p.bgRef[i].latchedY
	}
}

func (p *PPU) evaluateVCount() {
	compare := int((p.dispstat >> 8) & 0xFF)
	if p.line == compare {
		p.dispstat = uint16(bit.SetTo32(2, uint32(p.dispstat), true))
		if p.dispstat&0x20 != 0 {
			p.irq.Request(addr.IRQVCount)
		}
	} else {
		p.dispstat = uint16(bit.SetTo32(2, uint32(p.dispstat), false))
	}
}

func (p *PPU) blankScanline() {
	for x := 0; x < Width; x++ {
		p.fb.set(x, p.line, 0xFFFFFFFF)
	}
}

// Mode returns the DISPCNT video mode (0-5).
func (p *PPU) Mode() int { return int(p.dispcnt & 0x7) }

func (p *PPU) bgEnabled(i int) bool  { return p.dispcnt&(0x100<<uint(i)) != 0 }
func (p *PPU) objEnabled() bool      { return p.dispcnt&0x1000 != 0 }
func (p *PPU) win0Enabled() bool     { return p.dispcnt&0x2000 != 0 }
func (p *PPU) win1Enabled() bool     { return p.dispcnt&0x4000 != 0 }
func (p *PPU) objWinEnabled() bool   { return p.dispcnt&0x8000 != 0 }
func (p *PPU) anyWindowEnabled() bool {
	return p.win0Enabled() || p.win1Enabled() || p.objWinEnabled()
}
func (p *PPU) obj1D() bool { return p.dispcnt&0x40 != 0 }
func (p *PPU) forcedBlank() bool { return p.dispcnt&0x80 != 0 }

// drawScanline renders one visible line: backgrounds per mode, objects,
// then collapses everything through windows and blending.
func (p *PPU) drawScanline() {
	if p.forcedBlank() {
		p.blankScanline()
		return
	}

	for i := range p.bgLine {
		for x := range p.bgLine[i] {
			p.bgLine[i][x] = bgPixel{transparent: true}
		}
	}

	switch p.Mode() {
	case 0:
		for i := 0; i < 4; i++ {
			if p.bgEnabled(i) {
				p.renderTextBG(i)
			}
		}
	case 1:
		if p.bgEnabled(0) {
			p.renderTextBG(0)
		}
		if p.bgEnabled(1) {
			p.renderTextBG(1)
		}
		if p.bgEnabled(2) {
			p.renderAffineBG(2)
		}
	case 2:
		if p.bgEnabled(2) {
			p.renderAffineBG(2)
		}
		if p.bgEnabled(3) {
			p.renderAffineBG(3)
		}
	case 3:
		p.renderBitmapMode3()
	case 4:
		p.renderBitmapMode4()
	case 5:
		p.renderBitmapMode5()
	}

	p.advanceAffineRefs()

	for x := range p.objLine {
		p.objLine[x] = objPixel{transparent: true}
	}
	if p.objEnabled() {
		p.renderObjects()
	}

	p.computeWindowMasks()
	p.composite()
}

// advanceAffineRefs applies the per-scanline (ix += pb, iy += pd) step
// for the two affine backgrounds, run once per rendered
// line regardless of whether the current mode uses them.
func (p *PPU) advanceAffineRefs() {
	for i := range p.bgRef {
		p.bgRef[i].x += int32(p.bgPB[i])
		p.bgRef[i].y += int32(p.bgPD[i])
	}
}

