// Package gamepak models the GBA cartridge: the ROM image, its header
// fields, the auto-detected save backend, and the optional real-time
// clock.
package gamepak

import (
	"fmt"
	"log/slog"
)

// MaxROMSize is the largest GamePak ROM the GBA's address space allows
// (three 32 MiB mirrors starting at 0x08000000).
const MaxROMSize = 32 * 1024 * 1024

// Header mirrors the fields of the ROM header the core actually reads:
// a 12-byte title and a 4-byte game code at fixed offsets.
type Header struct {
	Title string
	Code  string
}

const (
	headerTitleOffset = 0xA0
	headerTitleLen    = 12
	headerCodeOffset  = 0xAC
	headerCodeLen     = 4
)

// GamePak owns the ROM bytes and the detected save Backend.
type GamePak struct {
	rom    []byte
	Header Header
	Save   Backend
	RTC    *RTC
}

// Load builds a GamePak from a raw ROM image. It never fails on a
// malformed header (only I/O failures abort init) — a short or
// garbled header simply yields an empty title/code and a no-save
// backend unless the per-game override table (overrideTable) forces one.
func Load(rom []byte) (*GamePak, error) {
	if len(rom) == 0 {
		return nil, fmt.Errorf("gamepak: empty ROM image")
	}
	if len(rom) > MaxROMSize {
		return nil, fmt.Errorf("gamepak: ROM size %d exceeds maximum %d", len(rom), MaxROMSize)
	}

	gp := &GamePak{rom: rom}
	gp.Header = parseHeader(rom)

	kind, size := DetectSaveType(rom, gp.Header.Code)
	gp.Save = NewBackend(kind, size)

	if needsRTC(gp.Header.Code) {
		gp.RTC = NewRTC()
	}

	slog.Debug("GamePak loaded",
		"title", gp.Header.Title, "code", gp.Header.Code,
		"size", len(rom), "save", kind, "rtc", gp.RTC != nil)

	return gp, nil
}

func parseHeader(rom []byte) Header {
	h := Header{}
	if len(rom) >= headerTitleOffset+headerTitleLen {
		h.Title = trimHeaderString(rom[headerTitleOffset : headerTitleOffset+headerTitleLen])
	}
	if len(rom) >= headerCodeOffset+headerCodeLen {
		h.Code = trimHeaderString(rom[headerCodeOffset : headerCodeOffset+headerCodeLen])
	}
	return h
}

func trimHeaderString(b []byte) string {
	n := len(b)
	for n > 0 && (b[n-1] == 0 || b[n-1] == ' ') {
		n--
	}
	return string(b[:n])
}

// Size reports the ROM image length in bytes.
func (g *GamePak) Size() int { return len(g.rom) }

// ReadByte reads a single ROM byte, mirroring three times across the
// GamePak address window as required by the memory map and returning
// the open-bus pattern (addr>>1)&0xFFFF beyond the end of the image
//.
func (g *GamePak) ReadByte(offset uint32) byte {
	if int(offset) < len(g.rom) {
		return g.rom[offset]
	}
	return byte(openBusHalfword(offset) >> (8 * (offset & 1)))
}

// ReadHalfword reads a little-endian 16-bit value at offset (must be
// even; callers are responsible for alignment).
func (g *GamePak) ReadHalfword(offset uint32) uint16 {
	if int(offset)+1 < len(g.rom) {
		return uint16(g.rom[offset]) | uint16(g.rom[offset+1])<<8
	}
	return openBusHalfword(offset)
}

// ReadWord reads a little-endian 32-bit value at offset (must be a
// multiple of 4).
func (g *GamePak) ReadWord(offset uint32) uint32 {
	low := uint32(g.ReadHalfword(offset))
	high := uint32(g.ReadHalfword(offset + 2))
	return low | high<<16
}

func openBusHalfword(offset uint32) uint16 {
	return uint16((offset >> 1) & 0xFFFF)
}
