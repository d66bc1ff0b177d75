// Package emu wires the CPU, bus, PPU, and cartridge into a single
// steppable machine and exposes the host-facing surface: instruction
// stepping, framebuffer access, button input, and whole-machine save
// states.
package emu

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/dmgcore/dmgcore/internal/bus"
	"github.com/dmgcore/dmgcore/internal/cart"
	"github.com/dmgcore/dmgcore/internal/cpu"
	"github.com/dmgcore/dmgcore/internal/joypad"
	"github.com/dmgcore/dmgcore/internal/ppu"
)

// Buttons is a host-friendly held-button snapshot, translated to the
// core's internal bitmask by SetButtons.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

func (b Buttons) mask() byte {
	var m byte
	if b.Right {
		m |= joypad.Right
	}
	if b.Left {
		m |= joypad.Left
	}
	if b.Up {
		m |= joypad.Up
	}
	if b.Down {
		m |= joypad.Down
	}
	if b.A {
		m |= joypad.A
	}
	if b.B {
		m |= joypad.B
	}
	if b.Select {
		m |= joypad.Select
	}
	if b.Start {
		m |= joypad.Start
	}
	return m
}

// Machine is a complete DMG core: CPU, bus (which itself owns the PPU,
// timer, joypad, and cartridge), plus host-facing conveniences like a
// palette hint and an instruction-trace history.
type Machine struct {
	CPU *cpu.CPU
	Bus *bus.Bus

	opts    Options
	history *history
	frozen  bool
}

// New loads rom, picks its cartridge controller from the header, and
// returns a Machine ready to step. A truncated header or an unsupported
// cartridge type is a construction-time error. If opts.BootROM is set
// the Machine starts at PC=0x0000 running the boot ROM; otherwise it
// starts at 0x0100 with the documented DMG post-boot register state.
func New(rom []byte, opts Options) (*Machine, error) {
	b, err := bus.New(rom)
	if err != nil {
		return nil, fmt.Errorf("emu: %w", err)
	}
	c := cpu.New(b)

	if !opts.SkipBoot && len(opts.BootROM) >= 0x100 {
		b.SetBootROM(opts.BootROM)
	} else {
		c.ResetPostBoot()
		postBootIO(b)
	}

	m := &Machine{CPU: c, Bus: b, opts: opts}
	if opts.HistoryDepth > 0 {
		m.history = newHistory(opts.HistoryDepth)
	}
	return m, nil
}

// postBootIO applies the documented DMG post-boot I/O register values
// for Machines started without a boot ROM, matching what the real boot
// ROM leaves behind before jumping to 0x0100.
func postBootIO(b *bus.Bus) {
	b.Write(0xFF00, 0xCF)
	b.Write(0xFF05, 0x00)
	b.Write(0xFF06, 0x00)
	b.Write(0xFF07, 0x00)
	b.Write(0xFF40, 0x91)
	b.Write(0xFF42, 0x00)
	b.Write(0xFF43, 0x00)
	b.Write(0xFF45, 0x00)
	b.Write(0xFF47, 0xFC)
	b.Write(0xFF48, 0xFF)
	b.Write(0xFF49, 0xFF)
	b.Write(0xFF4A, 0x00)
	b.Write(0xFF4B, 0x00)
	b.Write(0xFFFF, 0x00)
}

// StepInstruction runs exactly one CPU step — one instruction, one
// interrupt dispatch, or one HALT-idle tick — ticks every bus-owned
// component by the consumed T-cycles, and records it to the debug
// history if enabled. It returns the T-cycles consumed.
func (m *Machine) StepInstruction() int {
	var before traceSnapshot
	var opcode byte
	if m.history != nil {
		before = m.snapshot()
		opcode = m.Bus.Read(m.CPU.PC)
	}
	cycles := m.CPU.StepInstruction()
	m.Bus.Tick(cycles)
	if m.history != nil {
		m.history.push(before, opcode, cycles)
	}
	return cycles
}

// StepFrame runs instructions until the PPU enters VBlank, for hosts
// that want frame-paced stepping instead of raw instruction stepping.
// While the LCD is disabled the PPU never reaches VBlank, so the loop
// also stops after one frame's worth of T-cycles (70224) to keep a
// host's update loop paced.
func (m *Machine) StepFrame() {
	const frameCycles = 456 * 154
	p := m.Bus.PPU()
	startedInVBlank := p.Mode() == ppu.ModeVBlank
	cycles := 0
	for cycles < frameCycles {
		cycles += m.StepInstruction()
		inVBlank := p.Mode() == ppu.ModeVBlank
		if inVBlank && !startedInVBlank {
			return
		}
		startedInVBlank = inVBlank
	}
}

// Framebuffer returns the most recently composed frame as 2-bit DMG
// color indices (0 = lightest, 3 = darkest). Use PaletteRGBA or the
// host's own mapping to colorize it.
func (m *Machine) Framebuffer() *[ppu.ScreenHeight][ppu.ScreenWidth]byte {
	return m.Bus.PPU().Framebuffer()
}

// SetButtons replaces the held-button state for the next step.
func (m *Machine) SetButtons(b Buttons) { m.Bus.SetButtons(b.mask()) }

type machineState struct {
	PC, SP uint16
	Regs   cpu.Registers
	IME    bool
	Bus    []byte
}

// SaveState serializes the whole machine — CPU registers, and every
// bus-owned component — into one gob-encoded blob.
func (m *Machine) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(machineState{
		PC: m.CPU.PC, SP: m.CPU.SP, Regs: m.CPU.Regs, IME: m.CPU.IME,
		Bus: m.Bus.SaveState(),
	})
	return buf.Bytes()
}

// LoadState restores a blob produced by SaveState.
func (m *Machine) LoadState(data []byte) error {
	var s machineState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("emu: decode state: %w", err)
	}
	m.CPU.PC, m.CPU.SP, m.CPU.Regs, m.CPU.IME = s.PC, s.SP, s.Regs, s.IME
	m.Bus.LoadState(s.Bus)
	return nil
}

// CompatPaletteID resolves the ROM's own cartridge header through the
// compat-palette heuristic, falling back to opts.PaletteID when the
// header cannot be parsed. For a parsed header the heuristic always
// picks an id (0 when no title or licensee rule matches).
func (m *Machine) CompatPaletteID(rom []byte) int {
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return m.opts.PaletteID
	}
	if id, ok := autoCompatPaletteFromHeader(h); ok {
		return id
	}
	return m.opts.PaletteID
}
