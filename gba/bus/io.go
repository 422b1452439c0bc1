package bus

import "github.com/mirelan/gbacore/gba/addr"

// readIO16 dispatches a 16-bit I/O register read to whichever subsystem
// owns that address (register map).
func (b *Bus) readIO16(address uint32) uint16 {
	switch address {
	case addr.DISPCNT:
		return b.PPU.DISPCNT()
	case addr.DISPSTAT:
		return b.PPU.DISPSTAT()
	case addr.VCOUNT:
		return b.PPU.VCOUNT()
	case addr.BG0CNT:
		return b.PPU.BGCNT(0)
	case addr.BG1CNT:
		return b.PPU.BGCNT(1)
	case addr.BG2CNT:
		return b.PPU.BGCNT(2)
	case addr.BG3CNT:
		return b.PPU.BGCNT(3)
	case addr.WIN0H:
		return b.PPU.WIN0H()
	case addr.WIN1H:
		return b.PPU.WIN1H()
	case addr.WIN0V:
		return b.PPU.WIN0V()
	case addr.WIN1V:
		return b.PPU.WIN1V()
	case addr.WININ:
		return b.PPU.WININ()
	case addr.WINOUT:
		return b.PPU.WINOUT()
	case addr.MOSAIC:
		return b.PPU.MOSAIC()
	case addr.BLDCNT:
		return b.PPU.BLDCNT()
	case addr.BLDALPHA:
		return b.PPU.BLDALPHA()
	case addr.BLDY:
		return b.PPU.BLDY()

	case addr.DMA0CNT_H:
		return b.DMA.ReadControl(0)
	case addr.DMA1CNT_H:
		return b.DMA.ReadControl(1)
	case addr.DMA2CNT_H:
		return b.DMA.ReadControl(2)
	case addr.DMA3CNT_H:
		return b.DMA.ReadControl(3)

	case addr.TM0CNT_L:
		return b.Timers.ReadCounter(0)
	case addr.TM1CNT_L:
		return b.Timers.ReadCounter(1)
	case addr.TM2CNT_L:
		return b.Timers.ReadCounter(2)
	case addr.TM3CNT_L:
		return b.Timers.ReadCounter(3)
	case addr.TM0CNT_H:
		return b.Timers.ReadControl(0)
	case addr.TM1CNT_H:
		return b.Timers.ReadControl(1)
	case addr.TM2CNT_H:
		return b.Timers.ReadControl(2)
	case addr.TM3CNT_H:
		return b.Timers.ReadControl(3)

	case addr.KEYINPUT:
		return b.Keypad.KEYINPUT()
	case addr.KEYCNT:
		return b.Keypad.KEYCNT()

	case addr.IE:
		return b.IRQ.IE()
	case addr.IF:
		return b.IRQ.IF()
	case addr.WAITCNT:
		return b.waitcnt
	case addr.IME:
		if b.IRQ.IME() {
			return 1
		}
		return 0
	case addr.SOUNDBIAS:
		return b.soundbias

	default:
		return b.openBusHalfword(address)
	}
}

func (b *Bus) writeIO16(address uint32, value uint16) {
	switch address {
	case addr.DISPCNT:
		b.PPU.SetDISPCNT(value)
	case addr.DISPSTAT:
		b.PPU.SetDISPSTAT(value)
	case addr.BG0CNT:
		b.PPU.SetBGCNT(0, value)
	case addr.BG1CNT:
		b.PPU.SetBGCNT(1, value)
	case addr.BG2CNT:
		b.PPU.SetBGCNT(2, value)
	case addr.BG3CNT:
		b.PPU.SetBGCNT(3, value)
	case addr.BG0HOFS:
		b.PPU.SetBGHOFS(0, value)
	case addr.BG0VOFS:
		b.PPU.SetBGVOFS(0, value)
	case addr.BG1HOFS:
		b.PPU.SetBGHOFS(1, value)
	case addr.BG1VOFS:
		b.PPU.SetBGVOFS(1, value)
	case addr.BG2HOFS:
		b.PPU.SetBGHOFS(2, value)
	case addr.BG2VOFS:
		b.PPU.SetBGVOFS(2, value)
	case addr.BG3HOFS:
		b.PPU.SetBGHOFS(3, value)
	case addr.BG3VOFS:
		b.PPU.SetBGVOFS(3, value)
	case addr.BG2PA:
		b.PPU.SetBGPA(0, value)
	case addr.BG2PB:
		b.PPU.SetBGPB(0, value)
	case addr.BG2PC:
		b.PPU.SetBGPC(0, value)
	case addr.BG2PD:
		b.PPU.SetBGPD(0, value)
	case addr.BG3PA:
		b.PPU.SetBGPA(1, value)
	case addr.BG3PB:
		b.PPU.SetBGPB(1, value)
	case addr.BG3PC:
		b.PPU.SetBGPC(1, value)
	case addr.BG3PD:
		b.PPU.SetBGPD(1, value)
	case addr.WIN0H:
		b.PPU.SetWIN0H(value)
	case addr.WIN1H:
		b.PPU.SetWIN1H(value)
	case addr.WIN0V:
		b.PPU.SetWIN0V(value)
	case addr.WIN1V:
		b.PPU.SetWIN1V(value)
	case addr.WININ:
		b.PPU.SetWININ(value)
	case addr.WINOUT:
		b.PPU.SetWINOUT(value)
	case addr.MOSAIC:
		b.PPU.SetMOSAIC(value)
	case addr.BLDCNT:
		b.PPU.SetBLDCNT(value)
	case addr.BLDALPHA:
		b.PPU.SetBLDALPHA(value)
	case addr.BLDY:
		b.PPU.SetBLDY(value)

	case addr.DMA0CNT_L:
		b.DMA.WriteCount(0, value)
	case addr.DMA1CNT_L:
		b.DMA.WriteCount(1, value)
	case addr.DMA2CNT_L:
		b.DMA.WriteCount(2, value)
	case addr.DMA3CNT_L:
		b.DMA.WriteCount(3, value)
	case addr.DMA0CNT_H:
		b.DMA.WriteControl(0, value)
	case addr.DMA1CNT_H:
		b.DMA.WriteControl(1, value)
	case addr.DMA2CNT_H:
		b.DMA.WriteControl(2, value)
	case addr.DMA3CNT_H:
		b.DMA.WriteControl(3, value)

	case addr.TM0CNT_L:
		b.Timers.WriteReload(0, value)
	case addr.TM1CNT_L:
		b.Timers.WriteReload(1, value)
	case addr.TM2CNT_L:
		b.Timers.WriteReload(2, value)
	case addr.TM3CNT_L:
		b.Timers.WriteReload(3, value)
	case addr.TM0CNT_H:
		b.Timers.WriteControl(0, value)
	case addr.TM1CNT_H:
		b.Timers.WriteControl(1, value)
	case addr.TM2CNT_H:
		b.Timers.WriteControl(2, value)
	case addr.TM3CNT_H:
		b.Timers.WriteControl(3, value)

	case addr.KEYCNT:
		b.Keypad.SetKEYCNT(value)

	case addr.IE:
		b.IRQ.SetIE(value)
	case addr.IF:
		b.IRQ.WriteIF(value)
	case addr.WAITCNT:
		b.waitcnt = value & 0x3FFF // bit15 is read-only chip-type
	case addr.IME:
		b.IRQ.SetIME(value&1 != 0)
	case addr.SOUNDBIAS:
		b.soundbias = value & 0xC3FE
	case addr.POSTFLG:
		b.postflg = byte(value)
	case addr.HALTCNT:
		b.haltcnt = byte(value)
		b.halted = true
	}
}

// readIO32 combines two 16-bit register reads; every 32-bit I/O
// register's halves can be read independently through readIO16, since
// none of them are write-only in a way that breaks a split read.
func (b *Bus) readIO32(address uint32) uint32 {
	return uint32(b.readIO16(address)) | uint32(b.readIO16(address+2))<<16
}

func (b *Bus) writeIO32(address uint32, value uint32) {
	switch address {
	case addr.BG2X:
		b.PPU.SetBGX(0, value)
	case addr.BG2Y:
		b.PPU.SetBGY(0, value)
	case addr.BG3X:
		b.PPU.SetBGX(1, value)
	case addr.BG3Y:
		b.PPU.SetBGY(1, value)

	case addr.DMA0SAD:
		b.DMA.WriteSAD(0, value)
	case addr.DMA0DAD:
		b.DMA.WriteDAD(0, value)
	case addr.DMA1SAD:
		b.DMA.WriteSAD(1, value)
	case addr.DMA1DAD:
		b.DMA.WriteDAD(1, value)
	case addr.DMA2SAD:
		b.DMA.WriteSAD(2, value)
	case addr.DMA2DAD:
		b.DMA.WriteDAD(2, value)
	case addr.DMA3SAD:
		b.DMA.WriteSAD(3, value)
	case addr.DMA3DAD:
		b.DMA.WriteDAD(3, value)

	default:
		b.writeIO16(address, uint16(value))
		b.writeIO16(address+2, uint16(value>>16))
	}
}
