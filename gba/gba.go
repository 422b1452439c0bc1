// Package gba ties the CPU, Bus and every subsystem it owns into one
// runnable console.
//
// Console is the thing a front-end actually drives: construct one with
// New, load a ROM with LoadROM, then call RunFrame in a loop, copying
// out FrameBuffer() and polling Keypad between calls.
package gba

import (
	"fmt"

	"github.com/mirelan/gbacore/gba/addr"
	"github.com/mirelan/gbacore/gba/bus"
	"github.com/mirelan/gbacore/gba/cpu"
	"github.com/mirelan/gbacore/gba/gamepak"
	"github.com/mirelan/gbacore/gba/input"
	"github.com/mirelan/gbacore/gba/video"
)

// cyclesPerFrame is 228 scanlines * 1232 cycles.
const cyclesPerFrame = 228 * 1232

// Console is the root struct: a Bus plus the CPU executing against it.
type Console struct {
	Bus *bus.Bus
	CPU *cpu.CPU

	frameCount uint64
}

// New builds a Console with the given BIOS image (pass nil/empty to run
// with an all-zero BIOS region, relying on SkipBIOS for direct boot).
func New(bios []byte) *Console {
	b := bus.New(bios)
	c := cpu.New(b)
	b.Start()
	return &Console{Bus: b, CPU: c}
}

// LoadROM parses and installs a GamePak image, wiring its save backend
// and (if detected) RTC into the bus' DMA-visible address window.
func (g *Console) LoadROM(rom []byte) error {
	pak, err := gamepak.Load(rom)
	if err != nil {
		return fmt.Errorf("gba: loading ROM: %w", err)
	}
	g.Bus.SetGamePak(pak)
	return nil
}

// LoadSave seeds the installed GamePak's save backend from a
// previously written save file. A no-op if no ROM is loaded yet.
func (g *Console) LoadSave(data []byte) {
	if pak := g.Bus.GamePak(); pak != nil {
		pak.Save.LoadData(data)
	}
}

// SaveData returns the current save backend's raw bytes for flushing
// to disk, or nil if no ROM (or no save chip) is present.
func (g *Console) SaveData() []byte {
	if pak := g.Bus.GamePak(); pak != nil {
		return pak.Save.Data()
	}
	return nil
}

// SaveDirty reports whether the save backend has been written to since
// the last LoadSave, so a front-end only flushes when it needs to.
func (g *Console) SaveDirty() bool {
	pak := g.Bus.GamePak()
	return pak != nil && pak.Save.Dirty()
}

// SkipBIOS fast-forwards past the BIOS boot sequence straight to the
// cartridge entry point (the front-end's path when no BIOS is given), also
// priming SOUNDBIAS the way the real BIOS does before handing off.
func (g *Console) SkipBIOS() {
	g.CPU.SkipBIOS(addr.GamePakStart, false)
	g.Bus.Write16(addr.SOUNDBIAS, 0x200)
}

// PressKey/ReleaseKey forward to the keypad (gamepad input is
// an external collaborator driven between frames).
func (g *Console) PressKey(k input.Key)   { g.Bus.Keypad.Press(k) }
func (g *Console) ReleaseKey(k input.Key) { g.Bus.Keypad.Release(k) }

// FrameBuffer returns the most recently completed frame.
func (g *Console) FrameBuffer() *video.FrameBuffer { return g.Bus.PPU.FrameBuffer() }

// FrameCount reports how many frames RunFrame has completed.
func (g *Console) FrameCount() uint64 { return g.frameCount }

// RunFrame advances the scheduler by one frame's worth of cycles (plus
// any overshoot of the last instruction, see runCPU), driving the CPU instruction-by-instruction between scheduled
// PPU/timer/DMA events (per-frame control-flow summary).
func (g *Console) RunFrame() {
	g.Bus.Sched.Run(cyclesPerFrame, g.runCPU)
	g.frameCount++
}

// runCPU is the scheduler.CPURunner closure: it steps the CPU until at
// least maxCycles have been billed. Because instructions are metered
// per-opcode rather than per-cycle, the final Step of a burst can carry
// the running total a handful of cycles past maxCycles; the scheduler
// absorbs that via each event's own "late" tracking rather than the
// runner enforcing an exact cutoff.
func (g *Console) runCPU(maxCycles uint64) uint64 {
	var consumed uint64
	for consumed < maxCycles {
		consumed += g.CPU.Step()
	}
	return consumed
}
