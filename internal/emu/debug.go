package emu

import (
	"fmt"

	"github.com/dmgcore/dmgcore/internal/cpu"
)

// traceSnapshot captures register state before an instruction executes,
// the same fields cmd/cpurunner's ring buffer printed inline.
type traceSnapshot struct {
	PC, SP     uint16
	A, F       byte
	B, C, D, E byte
	H, L       byte
	IME        bool
	IF, IE     byte
}

// traceEntry pairs a snapshot with the opcode fetched and cycles spent.
type traceEntry struct {
	traceSnapshot
	Opcode byte
	Cycles int
}

func (t traceEntry) String() string {
	return fmt.Sprintf(
		"PC=%04X OP=%02X cyc=%d A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t IF=%02X IE=%02X",
		t.PC, t.Opcode, t.Cycles, t.A, t.F, t.B, t.C, t.D, t.E, t.H, t.L, t.SP, t.IME, t.IF, t.IE,
	)
}

// history is a fixed-depth ring buffer of recent instructions, for
// post-mortem dumps when a test ROM fails instead of always tracing.
type history struct {
	entries []traceEntry
	idx     int
	fill    int
}

func newHistory(depth int) *history {
	return &history{entries: make([]traceEntry, depth)}
}

func (h *history) push(snap traceSnapshot, opcode byte, cycles int) {
	h.entries[h.idx] = traceEntry{traceSnapshot: snap, Opcode: opcode, Cycles: cycles}
	h.idx = (h.idx + 1) % len(h.entries)
	if h.fill < len(h.entries) {
		h.fill++
	}
}

// snapshot reads the current register and IF/IE state for history/trace
// purposes. Reading IF/IE goes through the bus so the snapshot matches
// exactly what the CPU itself would have seen.
func (m *Machine) snapshot() traceSnapshot {
	r := m.CPU.Regs
	return traceSnapshot{
		PC: m.CPU.PC, SP: m.CPU.SP,
		A: r.A, F: r.F, B: r.B, C: r.C, D: r.D, E: r.E, H: r.H, L: r.L,
		IME: m.CPU.IME,
		IF:  m.Bus.Read(0xFF0F),
		IE:  m.Bus.Read(0xFFFF),
	}
}

// Recent returns the most recent traced instructions, oldest first. It
// returns nil if HistoryDepth was 0 in Options.
func (m *Machine) Recent() []string {
	if m.history == nil {
		return nil
	}
	h := m.history
	out := make([]string, 0, h.fill)
	start := (h.idx - h.fill + len(h.entries)) % len(h.entries)
	for i := 0; i < h.fill; i++ {
		idx := (start + i) % len(h.entries)
		out = append(out, h.entries[idx].String())
	}
	return out
}

// Breakpoints is a set of PC values that Run checks against before
// every step.
type Breakpoints map[uint16]bool

// Add arms a breakpoint at pc.
func (bp Breakpoints) Add(pc uint16) { bp[pc] = true }

// Remove disarms a breakpoint at pc.
func (bp Breakpoints) Remove(pc uint16) { delete(bp, pc) }

// Hit reports whether pc is an armed breakpoint.
func (bp Breakpoints) Hit(pc uint16) bool { return bp[pc] }

// Run steps the machine until either max instructions have executed, a
// breakpoint is hit (checked against PC before each step), or the
// machine is frozen, whichever comes first. It returns the number of
// instructions actually run and whether a breakpoint stopped it.
func (m *Machine) Run(max int, bp Breakpoints) (ran int, hitBreakpoint bool) {
	for ran = 0; ran < max; ran++ {
		if m.frozen {
			return ran, false
		}
		if bp != nil && bp.Hit(m.CPU.PC) {
			return ran, true
		}
		m.StepInstruction()
	}
	return ran, false
}

// Debugger accessors: a host-side debugger reads machine state through
// these instead of reaching into the CPU and bus fields directly.

// Registers returns a copy of the CPU register file.
func (m *Machine) Registers() cpu.Registers { return m.CPU.Regs }

// PC returns the current program counter.
func (m *Machine) PC() uint16 { return m.CPU.PC }

// SP returns the current stack pointer.
func (m *Machine) SP() uint16 { return m.CPU.SP }

// ReadMemory reads one byte at a CPU address through the bus, seeing
// exactly what the CPU would (boot overlay, banking, mode blocking).
func (m *Machine) ReadMemory(addr uint16) byte { return m.Bus.Read(addr) }

// Freeze stops Run from executing further instructions until Resume.
// Step still works while frozen, so a debugger can single-step.
func (m *Machine) Freeze() { m.frozen = true }

// Resume lifts a Freeze.
func (m *Machine) Resume() { m.frozen = false }

// Frozen reports whether the machine is frozen.
func (m *Machine) Frozen() bool { return m.frozen }

// Step executes exactly one instruction regardless of the frozen flag.
func (m *Machine) Step() int { return m.StepInstruction() }
