package video

import "github.com/mirelan/gbacore/gba/bit"

// bgPixel is one rendered background pixel before compositing: its
// color and whether it's transparent (palette index 0). The layer's
// priority is not stored here; the compositor reads it per layer from
// BGCNT.
type bgPixel struct {
	color       bgr555
	transparent bool
}

func (p *PPU) bgPriority(i int) int { return int(p.bgcnt[i] & 0x3) }
func (p *PPU) bgMosaicEnabled(i int) bool { return p.bgcnt[i]&0x40 != 0 }
func (p *PPU) bg256Color(i int) bool      { return p.bgcnt[i]&0x80 != 0 }
func (p *PPU) bgCharBase(i int) int       { return int((p.bgcnt[i]>>2)&0x3) * 0x4000 }
func (p *PPU) bgScreenBase(i int) int     { return int((p.bgcnt[i]>>8)&0x1F) * 0x800 }
func (p *PPU) bgWraparound(i int) bool    { return p.bgcnt[i]&0x2000 != 0 }
func (p *PPU) bgSize(i int) int           { return int((p.bgcnt[i] >> 14) & 0x3) }

// textScreenDims returns a text background's size in tiles (32x32,
// 64x32, 32x64 or 64x64), keyed by the 2-bit BGCNT size field.
func textScreenDims(size int) (tilesW, tilesH int) {
	switch size {
	case 0:
		return 32, 32
	case 1:
		return 64, 32
	case 2:
		return 32, 64
	default:
		return 64, 64
	}
}

func (p *PPU) mosaicSizes() (bgH, bgV int) {
	return int(p.mosaic&0xF) + 1, int((p.mosaic>>4)&0xF) + 1
}

// applyMosaic maps a screen coordinate to its mosaic-quantized source
// coordinate: (x,y) -> (x - x mod mx, y - y mod my).
func applyMosaic(x, mx int) int {
	return x - x%mx
}

// renderTextBG renders one tile-mode background (modes 0/1) into
// p.bgLine[i] for the current scanline.
func (p *PPU) renderTextBG(i int) {
	tilesW, tilesH := textScreenDims(p.bgSize(i))
	mapW := tilesW * 8
	mapH := tilesH * 8

	y := p.line
	if p.bgMosaicEnabled(i) {
		_, my := p.mosaicSizes()
		y = applyMosaic(y, my)
	}
	scrolledY := (y + int(p.bgVOFS[i])) % mapH

	charBase := p.bgCharBase(i)
	screenBase := p.bgScreenBase(i)
	use256 := p.bg256Color(i)

	for x := 0; x < Width; x++ {
		sx := x
		if p.bgMosaicEnabled(i) {
			mx, _ := p.mosaicSizes()
			sx = applyMosaic(x, mx)
		}
		scrolledX := (sx + int(p.bgHOFS[i])) % mapW

		tileX := scrolledX / 8
		tileY := scrolledY / 8
		pixelX := scrolledX % 8
		pixelY := scrolledY % 8

		screenBlock, blockTileX, blockTileY := textScreenBlock(tileX, tileY, tilesW, tilesH)
		mapOffset := screenBase + screenBlock*0x800 + (blockTileY*32+blockTileX)*2
		entry := p.readVRAM16(mapOffset)

		tileNum := int(entry & 0x3FF)
		flipX := entry&0x400 != 0
		flipY := entry&0x800 != 0
		paletteBank := int((entry >> 12) & 0xF)

		px, py := pixelX, pixelY
		if flipX {
			px = 7 - px
		}
		if flipY {
			py = 7 - py
		}

		var colorIndex int
		if use256 {
			tileAddr := charBase + tileNum*64 + py*8 + px
			colorIndex = int(p.readVRAMByte(tileAddr))
		} else {
			tileAddr := charBase + tileNum*32 + py*4 + px/2
			b := p.readVRAMByte(tileAddr)
			if px%2 == 0 {
				colorIndex = int(b & 0xF)
			} else {
				colorIndex = int(b >> 4)
			}
			if colorIndex != 0 {
				colorIndex += paletteBank * 16
			}
		}

		if colorIndex == 0 {
			p.bgLine[i][x] = bgPixel{transparent: true}
			continue
		}

		p.bgLine[i][x] = bgPixel{color: readColor(p.palette, colorIndex)}
	}
}

// textScreenBlock maps an absolute tile coordinate to which 32x32
// screen block it falls in (for 64-wide/tall maps, which are stored as
// two or four separate 2KB screen blocks) and the tile's coordinate
// within that block.
func textScreenBlock(tileX, tileY, tilesW, tilesH int) (block, bx, by int) {
	blockX := tileX / 32
	blockY := tileY / 32
	bx = tileX % 32
	by = tileY % 32

	switch {
	case tilesW == 32 && tilesH == 32:
		block = 0
	case tilesW == 64 && tilesH == 32:
		block = blockX
	case tilesW == 32 && tilesH == 64:
		block = blockY
	default: // 64x64
		block = blockY*2 + blockX
	}
	return
}

// renderAffineBG renders one rotation/scaling background (modes 1/2)
// using the background's live internal reference point and PA/PC
// matrix row (ix+x*pa, iy+x*pc per pixel).
func (p *PPU) renderAffineBG(i int) {
	refIdx := i - 2
	size := 128 << uint(p.bgSize(i)) // 128,256,512,1024 px square maps
	charBase := p.bgCharBase(i)
	screenBase := p.bgScreenBase(i)
	wrap := p.bgWraparound(i)

	ref := p.bgRef[refIdx]
	pa := int32(p.bgPA[refIdx])
	pc := int32(p.bgPC[refIdx])

	tilesPerSide := size / 8

	for x := 0; x < Width; x++ {
		ix := (ref.x + int32(x)*pa) >> 8
		iy := (ref.y + int32(x)*pc) >> 8

		if wrap {
			ix = wrapCoord(ix, size)
			iy = wrapCoord(iy, size)
		} else if ix < 0 || iy < 0 || int(ix) >= size || int(iy) >= size {
			p.bgLine[i][x] = bgPixel{transparent: true}
			continue
		}

		tileX := int(ix) / 8
		tileY := int(iy) / 8
		pixelX := int(ix) % 8
		pixelY := int(iy) % 8

		mapOffset := screenBase + (tileY*tilesPerSide+tileX)
		tileNum := int(p.readVRAMByte(mapOffset))

		tileAddr := charBase + tileNum*64 + pixelY*8 + pixelX
		colorIndex := int(p.readVRAMByte(tileAddr))

		if colorIndex == 0 {
			p.bgLine[i][x] = bgPixel{transparent: true}
			continue
		}
		p.bgLine[i][x] = bgPixel{color: readColor(p.palette, colorIndex)}
	}
}

func wrapCoord(v int32, size int) int32 {
	m := int32(size)
	v %= m
	if v < 0 {
		v += m
	}
	return v
}

// renderBitmapMode3 renders BG2 as a direct 16-bit BGR555 frame buffer
// (video mode 3): 240x160, no palette indirection.
func (p *PPU) renderBitmapMode3() {
	if !p.bgEnabled(2) {
		return
	}
	base := p.line * Width * 2
	for x := 0; x < Width; x++ {
		c := bgr555(p.readVRAM16(base + x*2))
		p.bgLine[2][x] = bgPixel{color: c}
	}
}

// renderBitmapMode4 renders BG2 as an 8-bit palettized, double-buffered
// bitmap (video mode 4): 240x160, one byte per pixel indexing the
// BG palette, index 0 transparent.
func (p *PPU) renderBitmapMode4() {
	if !p.bgEnabled(2) {
		return
	}
	frameOffset := 0
	if p.dispcnt&0x10 != 0 {
		frameOffset = 0xA000
	}
	base := frameOffset + p.line*Width
	for x := 0; x < Width; x++ {
		idx := int(p.readVRAMByte(base + x))
		if idx == 0 {
			p.bgLine[2][x] = bgPixel{transparent: true}
			continue
		}
		p.bgLine[2][x] = bgPixel{color: readColor(p.palette, idx)}
	}
}

// renderBitmapMode5 renders BG2 as a 16-bit, double-buffered, 160x128
// bitmap (video mode 5); pixels outside the smaller frame are
// transparent.
func (p *PPU) renderBitmapMode5() {
	if !p.bgEnabled(2) {
		return
	}
	const frameW, frameH = 160, 128
	if p.line >= frameH {
		for x := 0; x < Width; x++ {
			p.bgLine[2][x] = bgPixel{transparent: true}
		}
		return
	}
	frameOffset := 0
	if p.dispcnt&0x10 != 0 {
		frameOffset = 0xA000
	}
	base := frameOffset + p.line*frameW*2
	for x := 0; x < Width; x++ {
		if x >= frameW {
			p.bgLine[2][x] = bgPixel{transparent: true}
			continue
		}
		c := bgr555(p.readVRAM16(base + x*2))
		p.bgLine[2][x] = bgPixel{color: c}
	}
}

func (p *PPU) readVRAMByte(offset int) byte {
	if offset < 0 || offset >= len(p.vram) {
		return 0
	}
	return p.vram[offset]
}

func (p *PPU) readVRAM16(offset int) uint16 {
	return bit.Combine(p.readVRAMByte(offset+1), p.readVRAMByte(offset))
}
