package bus

import "github.com/mirelan/gbacore/gba/addr"

// Read8 reads one byte from the full 32-bit address space, mirroring
// each region and falling back to open-bus synthesis for
// anything unmapped.
func (b *Bus) Read8(address uint32) byte {
	region := address >> 24
	switch {
	case region == 0x00 && address <= addr.BIOSEnd:
		return readMirrored(b.bios, address)
	case region == 0x02:
		return b.ewram[address%addr.EWRAMSize]
	case region == 0x03:
		return b.iwram[address%addr.IWRAMSize]
	case region == 0x04:
		return b.readIOByte(address)
	case region == 0x05:
		return b.palette[address%addr.PaletteSize]
	case region == 0x06:
		return b.vram[mirrorVRAM(address)]
	case region == 0x07:
		return b.oam[address%addr.OAMSize]
	case region >= 0x08 && region <= 0x0D:
		return b.readGamePakByte(address)
	case region == 0x0E, region == 0x0F:
		return b.readSaveByte(address)
	default:
		return b.openBusByte(address)
	}
}

// Read16 reads a little-endian half-word; address is forced to the
// nearest 2-byte boundary, matching real hardware's bus alignment.
func (b *Bus) Read16(address uint32) uint16 {
	address &^= 1
	region := address >> 24
	if region == 0x04 {
		return b.readIO16(address)
	}
	lo := b.Read8(address)
	hi := b.Read8(address + 1)
	return uint16(lo) | uint16(hi)<<8
}

// Read32 reads a little-endian word; address is forced to the nearest
// 4-byte boundary. Misaligned LDR rotation is a CPU-level concern
// applied by the caller, not here.
func (b *Bus) Read32(address uint32) uint32 {
	address &^= 3
	region := address >> 24
	if region == 0x04 {
		return b.readIO32(address)
	}
	lo := b.Read16(address)
	hi := b.Read16(address + 2)
	return uint32(lo) | uint32(hi)<<16
}

func (b *Bus) Write8(address uint32, value byte) {
	region := address >> 24
	switch {
	case region == 0x02:
		b.ewram[address%addr.EWRAMSize] = value
	case region == 0x03:
		b.iwram[address%addr.IWRAMSize] = value
	case region == 0x04:
		b.writeIOByte(address, value)
	case region == 0x05:
		// A byte write to palette RAM replicates to both bytes of the
		// containing half-word; real hardware has no way to address a
		// single palette byte.
		writeReplicated(b.palette[:], address%addr.PaletteSize, value)
	case region == 0x06:
		writeReplicated(b.vram[:], mirrorVRAM(address), value)
	case region == 0x07:
		// OAM byte writes are silently dropped; only half/word writes
		// reach the object table.
	case region >= 0x08 && region <= 0x0D:
		if b.pak != nil && b.pak.RTC != nil {
			b.writeGPIOByte(address, value)
		}
		// Otherwise ROM is read-only.
	case region == 0x0E, region == 0x0F:
		b.writeSaveByte(address, value)
	}
}

func (b *Bus) Write16(address uint32, value uint16) {
	address &^= 1
	region := address >> 24
	if region == 0x04 {
		b.writeIO16(address, value)
		return
	}
	b.Write8(address, byte(value))
	b.Write8(address+1, byte(value>>8))
}

func (b *Bus) Write32(address uint32, value uint32) {
	address &^= 3
	region := address >> 24
	if region == 0x04 {
		b.writeIO32(address, value)
		return
	}
	b.Write16(address, uint16(value))
	b.Write16(address+2, uint16(value>>16))
}

// writeReplicated stores value into both bytes of the 16-bit cell that
// contains index within data, matching the palette/VRAM byte-write law:
// read16(a&^1) equals the byte broadcast to both halves.
func writeReplicated(data []byte, index uint32, value byte) {
	if len(data) == 0 {
		return
	}
	base := int(index) &^ 1
	lo := base % len(data)
	hi := (base + 1) % len(data)
	data[lo] = value
	data[hi] = value
}

func readMirrored(data []byte, address uint32) byte {
	if len(data) == 0 {
		return 0
	}
	idx := int(address) % len(data)
	if idx >= len(data) {
		return 0
	}
	return data[idx]
}

// mirrorVRAM implements VRAM's odd 96KiB mirroring: the region repeats
// every 128KiB window but wraps the last 32KiB back onto the 64-96KiB
// bank rather than the full 96KiB repeating cleanly.
func mirrorVRAM(address uint32) uint32 {
	offset := address % 0x20000
	if offset >= addr.VRAMSize {
		offset -= 0x8000
	}
	return offset
}

func (b *Bus) readIOByte(address uint32) byte {
	half := b.readIO16(address &^ 1)
	if address&1 != 0 {
		return byte(half >> 8)
	}
	return byte(half)
}

func (b *Bus) writeIOByte(address uint32, value byte) {
	aligned := address &^ 1
	if address == addr.HALTCNT {
		b.haltcnt = value
		b.halted = true
		return
	}
	if aligned == addr.IF {
		b.IRQ.WriteIF(uint16(value) << (8 * (address & 1)))
		return
	}
	half := b.readIO16(aligned)
	if address&1 != 0 {
		half = (half & 0x00FF) | uint16(value)<<8
	} else {
		half = (half & 0xFF00) | uint16(value)
	}
	b.writeIO16(aligned, half)
}

func (b *Bus) readGamePakByte(address uint32) byte {
	if b.pak == nil {
		return b.openBusByte(address)
	}
	if b.pak.RTC != nil {
		if gpio, ok := b.gpioByte(address); ok {
			return gpio
		}
	}
	offset := address % 0x02000000
	return b.pak.ReadByte(offset)
}

// gpioByte services a read of the GPIO port registers a handful of
// cartridges expose at GPIODATA/GPIODIR/GPIOCNT, returning ok=false for
// any other offset so the caller falls through to the flat ROM image
// (supplemented RTC feature; GPIOCNT gates whether the data
// register reads back anything other than open-bus-like ROM content,
// matching real hardware's write-only-unless-enabled behavior).
func (b *Bus) gpioByte(address uint32) (value byte, ok bool) {
	base := (address % 0x02000000) &^ 1
	switch addr.GamePakStart + base {
	case addr.GPIODATA:
		if b.gpioCnt&1 == 0 {
			return 0, false
		}
		half := uint16(b.pak.RTC.ReadPort())
		if address&1 != 0 {
			return byte(half >> 8), true
		}
		return byte(half), true
	case addr.GPIODIR:
		if address&1 != 0 {
			return 0, true
		}
		return b.gpioDir, true
	case addr.GPIOCNT:
		if address&1 != 0 {
			return 0, true
		}
		return b.gpioCnt, true
	}
	return 0, false
}

// writeGPIOByte is the write-side counterpart of gpioByte: writes to
// the odd byte of each 16-bit GPIO register are ignored since every
// real field fits in the low byte.
func (b *Bus) writeGPIOByte(address uint32, value byte) {
	if address&1 != 0 {
		return
	}
	switch addr.GamePakStart + (address%0x02000000)&^1 {
	case addr.GPIODATA:
		b.pak.RTC.WritePort(value, b.gpioDir)
	case addr.GPIODIR:
		b.gpioDir = value & 0x7
	case addr.GPIOCNT:
		b.gpioCnt = value & 0x1
	}
}

func (b *Bus) readSaveByte(address uint32) byte {
	if b.pak == nil || b.pak.Save == nil {
		return 0xFF
	}
	return b.pak.Save.Read((address - addr.SaveStart) % 0x10000)
}

func (b *Bus) writeSaveByte(address uint32, value byte) {
	if b.pak == nil || b.pak.Save == nil {
		return
	}
	b.pak.Save.Write((address-addr.SaveStart)%0x10000, value)
}
