package cpu

import (
	"github.com/dmgcore/dmgcore/internal/interrupt"
)

const (
	ieAddr = 0xFFFF
	ifAddr = 0xFF0F
)

// CPU is the SM83 decode/execute/interrupt engine. It owns no memory of
// its own beyond the register file; all reads and writes go through bus.
type CPU struct {
	Regs Registers
	SP   uint16
	PC   uint16

	IME bool

	halted    bool
	eiPending bool
	haltBug   bool

	bus Bus
}

// New creates a CPU wired to bus in the cold-boot state: PC, SP, and
// every register zero, as the bootstrap ROM expects.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// ResetPostBoot sets register state to the documented DMG values the real
// boot ROM leaves behind, for running a cartridge without one.
func (c *CPU) ResetPostBoot() {
	c.Regs = Registers{A: 0x01, F: 0xB0, B: 0x00, C: 0x13, D: 0x00, E: 0xD8, H: 0x01, L: 0x4D}
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.IME = false
	c.halted = false
	c.eiPending = false
	c.haltBug = false
}

// Halted reports whether the CPU is in the HALT low-power state.
func (c *CPU) Halted() bool { return c.halted }

func (c *CPU) fetch8() byte {
	b := c.bus.Read(c.PC)
	c.PC++
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

// StepInstruction advances the CPU by exactly one instruction (or one
// interrupt dispatch, or one HALT-idle tick) and returns the T-cycles
// consumed. The eiPending flag set by EI takes effect only after the
// instruction immediately following it has executed.
func (c *CPU) StepInstruction() int {
	wasEIPending := c.eiPending

	cycles := c.stepInner()

	// A DI in the delay slot clears eiPending, cancelling the enable.
	if wasEIPending && c.eiPending {
		c.IME = true
		c.eiPending = false
	}
	return cycles
}

func (c *CPU) stepInner() int {
	ie := c.bus.Read(ieAddr)
	ifReg := c.bus.Read(ifAddr)

	if c.halted {
		if interrupt.Any(ie, ifReg) {
			c.halted = false
		} else {
			return 4
		}
	}

	if c.IME {
		if src, ok := interrupt.Pending(ie, ifReg); ok {
			return c.dispatch(src, ifReg)
		}
	}

	return c.stepOpcode(ie, ifReg)
}

// dispatch pushes PC and jumps to src's vector, consuming the two idle
// machine cycles plus the push real hardware spends acknowledging an
// interrupt: 20 T-cycles total.
func (c *CPU) dispatch(src interrupt.Source, ifReg byte) int {
	c.IME = false
	c.bus.Write(ifAddr, ifReg&^src.Bit())
	c.push16(c.PC)
	c.PC = src.Vector()
	return 20
}

func (c *CPU) stepOpcode(ie, ifReg byte) int {
	opcode := c.fetch8()

	if c.haltBug {
		c.haltBug = false
		c.PC--
	}

	// HALT with IME clear and an interrupt already pending doesn't sleep:
	// hardware fails to advance PC past the following opcode once.
	if opcode == 0x76 && !c.IME && interrupt.Any(ie, ifReg) {
		c.haltBug = true
		return 4
	}

	if opcode == 0xCB {
		cb := c.fetch8()
		inst := DecodeCB(cb)
		return c.execute(inst)
	}

	size := SizeOf(opcode)
	var imm8 byte
	var imm16 uint16
	switch size {
	case 2:
		imm8 = c.fetch8()
	case 3:
		imm16 = c.fetch16()
	}
	inst := Decode(opcode, imm8, imm16)
	return c.execute(inst)
}
