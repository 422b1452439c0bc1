package video

// This file exposes raw register read/write accessors for every
// memory-mapped LCD I/O register, for the bus's central I/O
// dispatcher to delegate to without reaching into PPU internals.

func (p *PPU) DISPCNT() uint16     { return p.dispcnt }
func (p *PPU) SetDISPCNT(v uint16) { p.dispcnt = v }

func (p *PPU) DISPSTAT() uint16 { return p.dispstat }
func (p *PPU) SetDISPSTAT(v uint16) {
	// VCOUNT-trigger value and IRQ-enable bits are writable; HBlank/
	// VBlank/VCount flag bits (0-2) are read-only status.
	p.dispstat = (p.dispstat & 0x7) | (v &^ 0x7)
}

func (p *PPU) VCOUNT() uint16 { return uint16(p.line) }

func (p *PPU) BGCNT(i int) uint16     { return p.bgcnt[i] }
func (p *PPU) SetBGCNT(i int, v uint16) { p.bgcnt[i] = v }

func (p *PPU) SetBGHOFS(i int, v uint16) { p.bgHOFS[i] = v & 0x1FF }
func (p *PPU) SetBGVOFS(i int, v uint16) { p.bgVOFS[i] = v & 0x1FF }

func (p *PPU) SetBGPA(i int, v uint16) { p.bgPA[i] = int16(v) }
func (p *PPU) SetBGPB(i int, v uint16) { p.bgPB[i] = int16(v) }
func (p *PPU) SetBGPC(i int, v uint16) { p.bgPC[i] = int16(v) }
func (p *PPU) SetBGPD(i int, v uint16) { p.bgPD[i] = int16(v) }

// SetBGX/SetBGY write the 28-bit signed fixed-point reference point;
// callers pass the full 32-bit value written to BGxX_L/BGxX_H treated
// as one register. The live value only updates immediately;
// it's re-latched into the running x/y at the next VBlank.
func (p *PPU) SetBGX(i int, v uint32) {
	p.bgRef[i].latchedX = signExtend28(v)
	p.bgRef[i].x = p.bgRef[i].latchedX
}
func (p *PPU) SetBGY(i int, v uint32) {
	p.bgRef[i].latchedY = signExtend28(v)
	p.bgRef[i].y = p.bgRef[i].latchedY
}

func signExtend28(v uint32) int32 {
	v &= 0x0FFFFFFF
	if v&0x08000000 != 0 {
		return int32(v | 0xF0000000)
	}
	return int32(v)
}

func (p *PPU) WIN0H() uint16       { return p.win0h }
func (p *PPU) SetWIN0H(v uint16)   { p.win0h = v }
func (p *PPU) WIN1H() uint16       { return p.win1h }
func (p *PPU) SetWIN1H(v uint16)   { p.win1h = v }
func (p *PPU) WIN0V() uint16       { return p.win0v }
func (p *PPU) SetWIN0V(v uint16)   { p.win0v = v }
func (p *PPU) WIN1V() uint16       { return p.win1v }
func (p *PPU) SetWIN1V(v uint16)   { p.win1v = v }
func (p *PPU) WININ() uint16       { return p.winin }
func (p *PPU) SetWININ(v uint16)   { p.winin = v }
func (p *PPU) WINOUT() uint16      { return p.winout }
func (p *PPU) SetWINOUT(v uint16)  { p.winout = v }
func (p *PPU) MOSAIC() uint16      { return p.mosaic }
func (p *PPU) SetMOSAIC(v uint16)  { p.mosaic = v }
func (p *PPU) BLDCNT() uint16      { return p.bldcnt }
func (p *PPU) SetBLDCNT(v uint16)  { p.bldcnt = v }
func (p *PPU) BLDALPHA() uint16    { return p.bldalpha }
func (p *PPU) SetBLDALPHA(v uint16) { p.bldalpha = v }
func (p *PPU) BLDY() uint16        { return p.bldy }
func (p *PPU) SetBLDY(v uint16)    { p.bldy = v }
