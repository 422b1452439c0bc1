package video

import "github.com/mirelan/gbacore/gba/bit"

// objPixel is one rendered object pixel: its color, transparency,
// priority (for collapsing against backgrounds), whether it requested
// alpha blending (semi-transparent OBJ mode, which blends regardless
// of BLDCNT's mode and 1st-target bits), and whether it belongs to the object
// window mask rather than the visible layer.
type objPixel struct {
	color           bgr555
	transparent     bool
	priority        int
	semiTransparent bool
	isWindowObj     bool
}

// objShapeSize maps the OAM shape+size fields to a sprite's pixel
// dimensions, per the OAM layout.
var objShapeSize = [3][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},
}

type objAttrs struct {
	y, x             int
	affine           bool
	doubleSize       bool
	disabled         bool
	mode             int // 0 normal, 1 semi-transparent, 2 obj-window
	mosaic           bool
	colorMode256     bool
	shape, size      int
	affineIndex      int
	flipH, flipV     bool
	tileNum          int
	priority         int
	paletteBank      int
	width, height    int
}

func (p *PPU) readOAMEntry(i int) objAttrs {
	base := i * 8
	attr0 := bit.Combine(p.oam[base+1], p.oam[base])
	attr1 := bit.Combine(p.oam[base+3], p.oam[base+2])
	attr2 := bit.Combine(p.oam[base+5], p.oam[base+4])

	a := objAttrs{}
	a.y = int(attr0 & 0xFF)
	a.affine = attr0&0x100 != 0
	a.doubleSize = a.affine && attr0&0x200 != 0
	a.disabled = !a.affine && attr0&0x200 != 0
	a.mode = int((attr0 >> 10) & 0x3)
	a.mosaic = attr0&0x1000 != 0
	a.colorMode256 = attr0&0x2000 != 0
	a.shape = int((attr0 >> 14) & 0x3)

	a.x = int(attr1 & 0x1FF)
	if a.affine {
		a.affineIndex = int((attr1 >> 9) & 0x1F)
	} else {
		a.flipH = attr1&0x1000 != 0
		a.flipV = attr1&0x2000 != 0
	}
	a.size = int((attr1 >> 14) & 0x3)

	a.tileNum = int(attr2 & 0x3FF)
	a.priority = int((attr2 >> 10) & 0x3)
	a.paletteBank = int((attr2 >> 12) & 0xF)

	if a.shape == 3 {
		a.width, a.height = 0, 0
	} else {
		dims := objShapeSize[a.shape][a.size]
		a.width, a.height = dims[0], dims[1]
	}
	return a
}

// affineParams reads the PA/PB/PC/PD quad for an affine group, stored
// in the attr3 field (OAM offset +6) of that group's four consecutive
// OAM entries.
func (p *PPU) affineParams(group int) (pa, pb, pc, pd int16) {
	read := func(entry int) int16 {
		base := entry*8 + 6
		return int16(bit.Combine(p.oam[base+1], p.oam[base]))
	}
	base := group * 4
	return read(base), read(base + 1), read(base + 2), read(base + 3)
}

// renderObjects scans all 128 OAM entries and composites visible
// object pixels for the current scanline into p.objLine, in reverse
// priority order so index-0 (highest OAM priority on ties) ends up on
// top after the later per-pixel priority comparison in composite.
func (p *PPU) renderObjects() {
	mosaicObjW, mosaicObjH := p.mosaicSizes()

	for i := 127; i >= 0; i-- {
		a := p.readOAMEntry(i)
		if a.disabled {
			continue
		}
		if a.width == 0 {
			continue // prohibited shape
		}

		boundW, boundH := a.width, a.height
		if a.doubleSize {
			boundW *= 2
			boundH *= 2
		}

		y := p.line
		objY := a.y
		if objY+boundH > 256 && objY > 160 {
			objY -= 256
		}
		if y < objY || y >= objY+boundH {
			continue
		}

		rowInBounds := y - objY
		if a.mosaic && mosaicObjH > 1 {
			rowInBounds = applyMosaic(rowInBounds, mosaicObjH)
		}

		var pa, pb, pc, pd int16 = 256, 0, 0, 256
		if a.affine {
			pa, pb, pc, pd = p.affineParams(a.affineIndex)
		}

		halfW, halfH := boundW/2, boundH/2
		centerY := rowInBounds - halfH

		for sx := 0; sx < boundW; sx++ {
			screenX := a.x + sx
			if screenX >= 512 {
				screenX -= 512
			}
			if screenX >= Width {
				continue
			}

			col := sx
			if a.mosaic && mosaicObjW > 1 {
				col = applyMosaic(sx, mosaicObjW)
			}
			centerX := col - halfW

			var texX, texY int
			if a.affine {
				fx := int32(centerX)*int32(pa) + int32(centerY)*int32(pb)
				fy := int32(centerX)*int32(pc) + int32(centerY)*int32(pd)
				texX = int(fx>>8) + a.width/2
				texY = int(fy>>8) + a.height/2
			} else {
				texX = centerX + a.width/2
				texY = centerY + a.height/2
				if a.flipH {
					texX = a.width - 1 - texX
				}
				if a.flipV {
					texY = a.height - 1 - texY
				}
			}

			if texX < 0 || texY < 0 || texX >= a.width || texY >= a.height {
				continue
			}

			colorIndex := p.sampleObjTile(a, texX, texY)
			if colorIndex == 0 {
				continue
			}

			if p.objLine[screenX].transparent || a.priority <= p.objLine[screenX].priority {
				if a.mode == 2 {
					p.objLine[screenX].isWindowObj = true
					continue
				}
				var color bgr555
				if a.colorMode256 {
					color = readColor(p.palette, 0x100+colorIndex)
				} else {
					color = readColor(p.palette, 0x100+a.paletteBank*16+colorIndex)
				}
				p.objLine[screenX] = objPixel{
					color:           color,
					priority:        a.priority,
					semiTransparent: a.mode == 1,
				}
			} else if a.mode == 2 {
				p.objLine[screenX].isWindowObj = true
			}
		}
	}
}

// sampleObjTile resolves one object-space texel to a palette index,
// honoring 1D/2D tile mapping (DISPCNT bit6) and 4bpp/8bpp tiles.
func (p *PPU) sampleObjTile(a objAttrs, texX, texY int) int {
	tileX := texX / 8
	tileY := texY / 8
	px := texX % 8
	py := texY % 8

	tilesWide := a.width / 8
	var tileNum int
	if p.obj1D() {
		tileStride := 1
		if a.colorMode256 {
			tileStride = 2
		}
		tileNum = a.tileNum + (tileY*tilesWide+tileX)*tileStride
	} else {
		rowStride := 32
		if a.colorMode256 {
			tileNum = a.tileNum + tileY*rowStride + tileX*2
		} else {
			tileNum = a.tileNum + tileY*rowStride + tileX
		}
	}

	const objBase = 0x10000
	if a.colorMode256 {
		addr := objBase + tileNum*64 + py*8 + px
		return int(p.readVRAMByte(addr))
	}
	addr := objBase + tileNum*32 + py*4 + px/2
	b := p.readVRAMByte(addr)
	if px%2 == 0 {
		return int(b & 0xF)
	}
	return int(b >> 4)
}
