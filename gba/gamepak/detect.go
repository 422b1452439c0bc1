package gamepak

import "bytes"

// signature strings the core scans for in the ROM body,
// ordered so that more specific Flash-size markers are checked before
// the generic "FLASH_V" one.
var signatures = []struct {
	text []byte
	kind Kind
}{
	{[]byte("SRAM_V"), KindSRAM},
	{[]byte("SRAM_F_V"), KindSRAM},
	{[]byte("EEPROM_V"), KindEEPROM8K}, // disambiguated by DMA transfer count at runtime
	{[]byte("FLASH512_V"), KindFlash64K},
	{[]byte("FLASH1M_V"), KindFlash128K},
	{[]byte("FLASH_V"), KindFlash64K},
}

// overrideTable forces a save type (and/or RTC presence) for games whose
// signature string is absent or misleading, grounded on eggvance's
// per-ROM override database (original_source/eggvance/src/gamepak.h).
var overrideTable = map[string]Kind{
	// Pokémon Ruby/Sapphire/Emerald carry a FLASH128 chip despite using
	// an ambiguous signature string in some ROM revisions.
	"AXVE": KindFlash128K,
	"AXPE": KindFlash128K,
	"BPEE": KindFlash128K,
}

// rtcOverride lists game codes known to carry a GPIO-backed RTC chip,
// which no ROM signature scan can detect (the RTC sits on a separate
// GPIO port, not the save-chip bus).
var rtcOverride = map[string]bool{
	"AXVE": true, // Pokémon Ruby
	"AXPE": true, // Pokémon Sapphire
	"BPEE": true, // Pokémon Emerald
	"BPGE": true, // Pokémon Gold (GBA port titles reusing the code space)
}

// DetectSaveType returns the per-game override table's entry when
// gameCode is listed there, regardless of any signature in the ROM;
// otherwise it scans rom (skipping the header) for a known signature
// string, falling back to KindNone.
func DetectSaveType(rom []byte, gameCode string) (Kind, int) {
	if kind, ok := overrideTable[gameCode]; ok {
		return kind, kind.Size()
	}

	body := rom
	if len(body) > 0x100 {
		body = body[0x100:]
	}

	for _, sig := range signatures {
		if bytes.Contains(body, sig.text) {
			return sig.kind, sig.kind.Size()
		}
	}

	return KindNone, 0
}

func needsRTC(gameCode string) bool {
	return rtcOverride[gameCode]
}
