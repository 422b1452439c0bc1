package video

// windowFlags records, for one screen pixel, which layers and effects
// are enabled by whichever window region (WIN0 > WIN1 > OBJ window >
// outside, in priority order) claims that pixel.
type windowFlags struct {
	bg         [4]bool
	obj        bool
	blendable  bool
}

func allEnabledFlags() windowFlags {
	return windowFlags{bg: [4]bool{true, true, true, true}, obj: true, blendable: true}
}

func decodeWindowControl(bits uint16) windowFlags {
	return windowFlags{
		bg:        [4]bool{bits&0x1 != 0, bits&0x2 != 0, bits&0x4 != 0, bits&0x8 != 0},
		obj:       bits&0x10 != 0,
		blendable: bits&0x20 != 0,
	}
}

// windowRange unpacks a WINxH/WINxV register pair into [start, end),
// clipping an inverted or out-of-range end to the screen edge, matching
// eggvance's window handling which treats start>end as "to edge of
// screen".
func windowRange(reg uint16, edge int) (start, end int) {
	start = int(reg >> 8)
	end = int(reg & 0xFF)
	if end > edge || end < start {
		end = edge
	}
	return
}

// computeWindowMasks fills p.winMask for the current scanline. If no
// window is enabled at all, every pixel is fully enabled, since windows
// only restrict compositing when at least one is turned on.
func (p *PPU) computeWindowMasks() {
	if !p.anyWindowEnabled() {
		full := allEnabledFlags()
		for x := range p.winMask {
			p.winMask[x] = full
		}
		return
	}

	win0X0, win0X1 := windowRange(p.win0h, Width)
	win0Y0, win0Y1 := windowRange(p.win0v, Height)
	win1X0, win1X1 := windowRange(p.win1h, Width)
	win1Y0, win1Y1 := windowRange(p.win1v, Height)

	win0In := decodeWindowControl(p.winin)
	win1In := decodeWindowControl(p.winin >> 8)
	objIn := decodeWindowControl(p.winout >> 8)
	outside := decodeWindowControl(p.winout)

	win0Active := p.win0Enabled() && p.line >= win0Y0 && p.line < win0Y1
	win1Active := p.win1Enabled() && p.line >= win1Y0 && p.line < win1Y1

	for x := 0; x < Width; x++ {
		switch {
		case win0Active && x >= win0X0 && x < win0X1:
			p.winMask[x] = win0In
		case win1Active && x >= win1X0 && x < win1X1:
			p.winMask[x] = win1In
		case p.objWinEnabled() && p.objLine[x].isWindowObj:
			p.winMask[x] = objIn
		default:
			p.winMask[x] = outside
		}
	}
}
