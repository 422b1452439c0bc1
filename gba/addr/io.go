// Package addr holds the GBA's memory map boundaries and the 1 KiB
// MMIO register file's address constants, grouped by subsystem.
package addr

// Memory region boundaries.
const (
	BIOSStart uint32 = 0x00000000
	BIOSEnd   uint32 = 0x00003FFF

	EWRAMStart uint32 = 0x02000000
	EWRAMEnd   uint32 = 0x0203FFFF

	IWRAMStart uint32 = 0x03000000
	IWRAMEnd   uint32 = 0x03007FFF

	IOStart uint32 = 0x04000000
	IOEnd   uint32 = 0x040003FE

	PaletteStart uint32 = 0x05000000
	PaletteEnd   uint32 = 0x050003FF

	VRAMStart uint32 = 0x06000000
	VRAMEnd   uint32 = 0x06017FFF

	OAMStart uint32 = 0x07000000
	OAMEnd   uint32 = 0x070003FF

	GamePakStart uint32 = 0x08000000
	GamePakEnd   uint32 = 0x0DFFFFFF

	// GPIODATA/GPIODIR/GPIOCNT are the three GPIO port registers a
	// handful of cartridges (those with a GPIO-backed RTC chip) expose
	// inside the ROM address window itself rather than the MMIO bank.
	GPIODATA uint32 = 0x080000C4
	GPIODIR  uint32 = 0x080000C6
	GPIOCNT  uint32 = 0x080000C8

	SaveStart uint32 = 0x0E000000
	SaveEnd   uint32 = 0x0E00FFFF
)

// Region sizes.
const (
	BIOSSize    = 0x4000
	EWRAMSize   = 0x40000
	IWRAMSize   = 0x8000
	PaletteSize = 0x400
	VRAMSize    = 0x18000
	OAMSize     = 0x400
)

// PPU / LCD registers.
const (
	DISPCNT  uint32 = 0x04000000
	DISPSTAT uint32 = 0x04000004
	VCOUNT   uint32 = 0x04000006

	BG0CNT uint32 = 0x04000008
	BG1CNT uint32 = 0x0400000A
	BG2CNT uint32 = 0x0400000C
	BG3CNT uint32 = 0x0400000E

	BG0HOFS uint32 = 0x04000010
	BG0VOFS uint32 = 0x04000012
	BG1HOFS uint32 = 0x04000014
	BG1VOFS uint32 = 0x04000016
	BG2HOFS uint32 = 0x04000018
	BG2VOFS uint32 = 0x0400001A
	BG3HOFS uint32 = 0x0400001C
	BG3VOFS uint32 = 0x0400001E

	BG2PA uint32 = 0x04000020
	BG2PB uint32 = 0x04000022
	BG2PC uint32 = 0x04000024
	BG2PD uint32 = 0x04000026
	BG2X  uint32 = 0x04000028
	BG2Y  uint32 = 0x0400002C

	BG3PA uint32 = 0x04000030
	BG3PB uint32 = 0x04000032
	BG3PC uint32 = 0x04000034
	BG3PD uint32 = 0x04000036
	BG3X  uint32 = 0x04000038
	BG3Y  uint32 = 0x0400003C

	WIN0H uint32 = 0x04000040
	WIN1H uint32 = 0x04000042
	WIN0V uint32 = 0x04000044
	WIN1V uint32 = 0x04000046
	WININ uint32 = 0x04000048
	WINOUT uint32 = 0x0400004A

	MOSAIC uint32 = 0x0400004C

	BLDCNT   uint32 = 0x04000050
	BLDALPHA uint32 = 0x04000052
	BLDY     uint32 = 0x04000054
)

// DMA registers (four channels, 12 bytes each starting at 0x040000B0).
const (
	DMA0SAD   uint32 = 0x040000B0
	DMA0DAD   uint32 = 0x040000B4
	DMA0CNT_L uint32 = 0x040000B8
	DMA0CNT_H uint32 = 0x040000BA

	DMA1SAD   uint32 = 0x040000BC
	DMA1DAD   uint32 = 0x040000C0
	DMA1CNT_L uint32 = 0x040000C4
	DMA1CNT_H uint32 = 0x040000C6

	DMA2SAD   uint32 = 0x040000C8
	DMA2DAD   uint32 = 0x040000CC
	DMA2CNT_L uint32 = 0x040000D0
	DMA2CNT_H uint32 = 0x040000D2

	DMA3SAD   uint32 = 0x040000D4
	DMA3DAD   uint32 = 0x040000D8
	DMA3CNT_L uint32 = 0x040000DC
	DMA3CNT_H uint32 = 0x040000DE
)

// Timer registers (four timers, 4 bytes each starting at 0x04000100).
const (
	TM0CNT_L uint32 = 0x04000100
	TM0CNT_H uint32 = 0x04000102
	TM1CNT_L uint32 = 0x04000104
	TM1CNT_H uint32 = 0x04000106
	TM2CNT_L uint32 = 0x04000108
	TM2CNT_H uint32 = 0x0400010A
	TM3CNT_L uint32 = 0x0400010C
	TM3CNT_H uint32 = 0x0400010E
)

// Keypad / serial / interrupt / system registers.
const (
	KEYINPUT uint32 = 0x04000130
	KEYCNT   uint32 = 0x04000132

	IE      uint32 = 0x04000200
	IF      uint32 = 0x04000202
	WAITCNT uint32 = 0x04000204
	IME     uint32 = 0x04000208
	POSTFLG uint32 = 0x04000300
	HALTCNT uint32 = 0x04000301

	// SOUNDBIAS is poked by BIOS-skip direct-boot
	SOUNDBIAS uint32 = 0x04000088

	// FIFO_A / FIFO_B are out of scope for audio synthesis but
	// the DMA engine still needs their addresses to recognize the
	// Sound-FIFO special DMA timing
	FIFO_A uint32 = 0x040000A0
	FIFO_B uint32 = 0x040000A4
)

// InterruptSource enumerates the 14 GBA interrupt sources, bit-indexed
// to match IE/IF directly.
type InterruptSource uint8

const (
	IRQVBlank InterruptSource = iota
	IRQHBlank
	IRQVCount
	IRQTimer0
	IRQTimer1
	IRQTimer2
	IRQTimer3
	IRQSerial
	IRQDMA0
	IRQDMA1
	IRQDMA2
	IRQDMA3
	IRQKeypad
	IRQGamePak
)

// Bit returns the IE/IF bit mask for this interrupt source.
func (s InterruptSource) Bit() uint16 {
	return 1 << uint8(s)
}
