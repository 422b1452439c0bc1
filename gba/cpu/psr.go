package cpu

// Mode is the 5-bit CPSR mode field: each privileged mode
// banks its own R13/R14 (and FIQ additionally banks R8-R12), plus an
// SPSR that mirrors CPSR on exception entry.
type Mode uint32

const (
	ModeUser       Mode = 0x10
	ModeFIQ        Mode = 0x11
	ModeIRQ        Mode = 0x12
	ModeSupervisor Mode = 0x13
	ModeAbort      Mode = 0x17
	ModeUndefined  Mode = 0x1B
	ModeSystem     Mode = 0x1F
)

// PSR bit positions (spec glossary).
const (
	flagN = 31
	flagZ = 30
	flagC = 29
	flagV = 28
	bitI  = 7
	bitF  = 6
	bitT  = 5
)

// PSR is a full 32-bit program status register: N/Z/C/V condition
// flags, I/F interrupt-disable bits, the T Thumb-state bit, and the
// 5-bit mode field.
type PSR uint32

func (p PSR) N() bool { return p&(1<<flagN) != 0 }
func (p PSR) Z() bool { return p&(1<<flagZ) != 0 }
func (p PSR) C() bool { return p&(1<<flagC) != 0 }
func (p PSR) V() bool { return p&(1<<flagV) != 0 }
func (p PSR) IRQDisabled() bool { return p&(1<<bitI) != 0 }
func (p PSR) FIQDisabled() bool { return p&(1<<bitF) != 0 }
func (p PSR) Thumb() bool       { return p&(1<<bitT) != 0 }
func (p PSR) Mode() Mode        { return Mode(p & 0x1F) }

func (p *PSR) setFlag(bit uint, v bool) {
	if v {
		*p |= 1 << bit
	} else {
		*p &^= 1 << bit
	}
}

func (p *PSR) SetN(v bool) { p.setFlag(flagN, v) }
func (p *PSR) SetZ(v bool) { p.setFlag(flagZ, v) }
func (p *PSR) SetC(v bool) { p.setFlag(flagC, v) }
func (p *PSR) SetV(v bool) { p.setFlag(flagV, v) }
func (p *PSR) SetIRQDisabled(v bool) { p.setFlag(bitI, v) }
func (p *PSR) SetFIQDisabled(v bool) { p.setFlag(bitF, v) }
func (p *PSR) SetThumb(v bool)       { p.setFlag(bitT, v) }
func (p *PSR) SetMode(m Mode)        { *p = (*p &^ 0x1F) | PSR(m) }

// SetNZ sets the N and Z flags from a 32-bit result, the common case
// for data-processing and load instructions that affect flags.
func (p *PSR) SetNZ(result uint32) {
	p.SetN(result&0x80000000 != 0)
	p.SetZ(result == 0)
}
