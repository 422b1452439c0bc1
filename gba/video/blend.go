package video

// blendMode is the BLDCNT special-effect selector.
type blendMode int

const (
	blendNone blendMode = iota
	blendAlpha
	blendBrighten
	blendDarken
)

func (p *PPU) blendMode() blendMode { return blendMode((p.bldcnt >> 6) & 0x3) }

func (p *PPU) isTarget1(layerBit int) bool { return p.bldcnt&(1<<uint(layerBit)) != 0 }
func (p *PPU) isTarget2(layerBit int) bool { return p.bldcnt&(1<<uint(layerBit+8)) != 0 }

const (
	layerBG0 = iota
	layerBG1
	layerBG2
	layerBG3
	layerOBJ
	layerBackdrop
)

// layerCandidate is one layer's contribution to a pixel, ready to be
// ranked by priority and collapsed: BG priority field first, then
// BG0<BG1<BG2<BG3 on ties, with objects inserted at their own declared
// priority above same-priority BGs.
type layerCandidate struct {
	bit      int
	priority int
	color    bgr555
	semi     bool
}

func (p *PPU) pixelCandidates(x int) []layerCandidate {
	cands := make([]layerCandidate, 0, 5)
	mask := p.winMask[x]

	for i := 0; i < 4; i++ {
		if !p.bgEnabled(i) || !mask.bg[i] || p.bgLine[i][x].transparent {
			continue
		}
		cands = append(cands, layerCandidate{bit: i, priority: p.bgPriority(i), color: p.bgLine[i][x].color})
	}
	if p.objEnabled() && mask.obj && !p.objLine[x].transparent {
		op := p.objLine[x]
		cands = append(cands, layerCandidate{bit: layerOBJ, priority: op.priority, color: op.color, semi: op.semiTransparent})
	}

	// Stable insertion sort by priority; objects inserted ahead of
	// equal-priority backgrounds since they're appended after BGs and
	// this sort is stable on ties only among same-kind entries - object
	// vs BG tie ordering is handled explicitly below.
	for i := 1; i < len(cands); i++ {
		j := i
		for j > 0 && rankLess(cands[j], cands[j-1]) {
			cands[j], cands[j-1] = cands[j-1], cands[j]
			j--
		}
	}
	return cands
}

// rankLess reports whether a should be drawn above b: lower priority
// value wins; on a tie, an object beats a background of the same
// priority.
func rankLess(a, b layerCandidate) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	aObj := a.bit == layerOBJ
	bObj := b.bit == layerOBJ
	if aObj != bObj {
		return aObj
	}
	return a.bit < b.bit
}

// composite resolves the current scanline's bgLine/objLine/winMask
// state into final ARGB pixels, applying blending where selected.
// Semi-transparent objects always alpha-blend independent of BLDCNT's
// mode/1st-target bits, but still require the layer beneath to be
// flagged as a BLDCNT 2nd target; otherwise they render unblended.
func (p *PPU) composite() {
	eva := float64(p.bldalpha&0x1F) / 16.0
	evb := float64((p.bldalpha>>8)&0x1F) / 16.0
	evy := float64(p.bldy&0x1F) / 16.0

	backdrop := readColor(p.palette, 0)

	for x := 0; x < Width; x++ {
		cands := p.pixelCandidates(x)

		var top, second layerCandidate
		haveTop, haveSecond := false, false
		topColor := backdrop
		topBit := layerBackdrop

		if len(cands) > 0 {
			top = cands[0]
			haveTop = true
			topColor = top.color
			topBit = top.bit
		}
		if len(cands) > 1 {
			second = cands[1]
			haveSecond = true
		}

		blendable := p.winMask[x].blendable
		result := topColor

		switch {
		case haveTop && top.semi && haveSecond && blendable && p.isTarget2(second.bit):
			result = alphaBlend(topColor, second.color, eva, evb)
		case haveTop && top.semi && blendable && !haveSecond && p.isTarget2(layerBackdrop):
			result = alphaBlend(topColor, backdrop, eva, evb)
		case blendable && p.blendMode() != blendNone && p.isTarget1(topBit):
			switch p.blendMode() {
			case blendAlpha:
				if haveSecond && p.isTarget2(second.bit) {
					result = alphaBlend(topColor, second.color, eva, evb)
				} else if !haveSecond && p.isTarget2(layerBackdrop) {
					result = alphaBlend(topColor, backdrop, eva, evb)
				}
			case blendBrighten:
				result = brighten(topColor, evy)
			case blendDarken:
				result = darken(topColor, evy)
			}
		}

		p.fb.set(x, p.line, ToARGB(result, p.Gamma))
	}
}

func blendChannel(a, b uint8, fa, fb float64) uint8 {
	v := int(float64(a)*fa + float64(b)*fb)
	if v > 31 {
		v = 31
	}
	return uint8(v)
}

func alphaBlend(top, bottom bgr555, eva, evb float64) bgr555 {
	r := blendChannel(uint8(top&0x1F), uint8(bottom&0x1F), eva, evb)
	g := blendChannel(uint8((top>>5)&0x1F), uint8((bottom>>5)&0x1F), eva, evb)
	b := blendChannel(uint8((top>>10)&0x1F), uint8((bottom>>10)&0x1F), eva, evb)
	return bgr555(r) | bgr555(g)<<5 | bgr555(b)<<10
}

func brighten(c bgr555, evy float64) bgr555 {
	bump := func(ch uint8) uint8 {
		v := int(float64(ch) + (31-float64(ch))*evy)
		if v > 31 {
			v = 31
		}
		return uint8(v)
	}
	r := bump(uint8(c & 0x1F))
	g := bump(uint8((c >> 5) & 0x1F))
	b := bump(uint8((c >> 10) & 0x1F))
	return bgr555(r) | bgr555(g)<<5 | bgr555(b)<<10
}

func darken(c bgr555, evy float64) bgr555 {
	drop := func(ch uint8) uint8 {
		v := int(float64(ch) - float64(ch)*evy)
		if v < 0 {
			v = 0
		}
		return uint8(v)
	}
	r := drop(uint8(c & 0x1F))
	g := drop(uint8((c >> 5) & 0x1F))
	b := drop(uint8((c >> 10) & 0x1F))
	return bgr555(r) | bgr555(g)<<5 | bgr555(b)<<10
}
