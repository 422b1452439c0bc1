package cpu

import "testing"

// fakeBus is a flat, map-backed memory used to exercise the CPU in
// isolation from the real bus' region dispatch and wait-state tables,
// the same style the dma/video packages use for their own fakeBus
// fixtures.
type fakeBus struct {
	mem map[uint32]byte

	halted bool
	irqPending bool
	irqReady   bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{mem: make(map[uint32]byte)}
}

func (b *fakeBus) Read8(a uint32) byte { return b.mem[a] }

func (b *fakeBus) Read16(a uint32) uint16 {
	a &^= 1
	return uint16(b.mem[a]) | uint16(b.mem[a+1])<<8
}

func (b *fakeBus) Read32(a uint32) uint32 {
	a &^= 3
	return uint32(b.Read16(a)) | uint32(b.Read16(a+2))<<16
}

func (b *fakeBus) Write8(a uint32, v byte) { b.mem[a] = v }

func (b *fakeBus) Write16(a uint32, v uint16) {
	a &^= 1
	b.mem[a] = byte(v)
	b.mem[a+1] = byte(v >> 8)
}

func (b *fakeBus) Write32(a uint32, v uint32) {
	a &^= 3
	b.Write16(a, uint16(v))
	b.Write16(a+2, uint16(v>>16))
}

func (b *fakeBus) AccessCycles(uint32, int, bool) uint64 { return 1 }
func (b *fakeBus) LatchOpcode(uint32)                    {}
func (b *fakeBus) IRQLinePending() bool                  { return b.irqPending }
func (b *fakeBus) IRQDispatchReady() bool                { return b.irqReady }
func (b *fakeBus) AckIRQDispatch()                       { b.irqReady = false }
func (b *fakeBus) TickIRQDelay(int)                      {}
func (b *fakeBus) Halted() bool                          { return b.halted }
func (b *fakeBus) Wake()                                 { b.halted = false }

func newTestCPU() (*CPU, *fakeBus) {
	bus := newFakeBus()
	c := New(bus)
	return c, bus
}
