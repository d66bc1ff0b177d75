package emu

import "testing"

func newTestMachine(t *testing.T, code ...byte) *Machine {
	t.Helper()
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], code)
	m, err := New(rom, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestPostBootRegisterState(t *testing.T) {
	m := newTestMachine(t, 0x00)
	if m.CPU.PC != 0x0100 {
		t.Fatalf("PC got %#04x want 0x0100", m.CPU.PC)
	}
	if m.CPU.SP != 0xFFFE {
		t.Fatalf("SP got %#04x want 0xFFFE", m.CPU.SP)
	}
	if m.CPU.Regs.A != 0x01 || m.CPU.Regs.F != 0xB0 {
		t.Fatalf("AF got %#02x%#02x want 01B0", m.CPU.Regs.A, m.CPU.Regs.F)
	}
	if m.CPU.Regs.BC() != 0x0013 || m.CPU.Regs.DE() != 0x00D8 || m.CPU.Regs.HL() != 0x014D {
		t.Fatalf("BC/DE/HL got %#04x/%#04x/%#04x want 0013/00D8/014D",
			m.CPU.Regs.BC(), m.CPU.Regs.DE(), m.CPU.Regs.HL())
	}
}

func TestRejectsTooSmallROM(t *testing.T) {
	if _, err := New(make([]byte, 0x10), Options{}); err == nil {
		t.Fatalf("expected error constructing Machine from a too-small ROM")
	}
}

func TestRejectsUnsupportedCartridgeType(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0147] = 0x0B // MMM01, not an implemented bank controller
	if _, err := New(rom, Options{}); err == nil {
		t.Fatalf("expected error constructing Machine from an unsupported cartridge type")
	}
}

// Stepping a frame's worth of NOPs through the full Machine crosses
// LY 143->144, which must both set IF bit 0 and, with IME+IE armed,
// dispatch the CPU to the VBlank vector on the next step.
func TestVBlankDispatchThroughMachine(t *testing.T) {
	rom := make([]byte, 0x8000)
	for i := 0x0100; i < 0x8000; i++ {
		rom[i] = 0x00 // NOP sled
	}
	m, err := New(rom, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.CPU.IME = true
	m.Bus.Write(0xFFFF, 0x01) // enable VBlank

	var dispatched bool
	for i := 0; i < 200000; i++ {
		m.StepInstruction()
		if m.CPU.PC == 0x0040 {
			dispatched = true
			break
		}
	}
	if !dispatched {
		t.Fatalf("CPU never dispatched to the VBlank vector")
	}
}

func TestRunStopsAtBreakpoint(t *testing.T) {
	m := newTestMachine(t, 0x00, 0x00, 0x00, 0x00) // NOP sled
	bp := Breakpoints{}
	bp.Add(0x0102)
	ran, hit := m.Run(100, bp)
	if !hit {
		t.Fatalf("Run should have stopped at the breakpoint")
	}
	if ran != 2 || m.PC() != 0x0102 {
		t.Fatalf("ran=%d PC=%#04x want ran=2 PC=0x0102", ran, m.PC())
	}
}

func TestFreezeBlocksRunButNotStep(t *testing.T) {
	m := newTestMachine(t, 0x00, 0x00)
	m.Freeze()
	if ran, _ := m.Run(100, nil); ran != 0 {
		t.Fatalf("Run while frozen should execute nothing, ran %d", ran)
	}
	m.Step()
	if m.PC() != 0x0101 {
		t.Fatalf("Step while frozen should still execute, PC=%#04x", m.PC())
	}
	m.Resume()
	if ran, _ := m.Run(1, nil); ran != 1 {
		t.Fatalf("Run after Resume should execute, ran %d", ran)
	}
}

func TestHistoryRecordsRecentInstructions(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x3E // LD A,0x07
	rom[0x0101] = 0x07
	rom[0x0102] = 0x00 // NOP
	m, err := New(rom, Options{HistoryDepth: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.StepInstruction()
	m.StepInstruction()
	recent := m.Recent()
	if len(recent) != 2 {
		t.Fatalf("history length got %d want 2", len(recent))
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	m := newTestMachine(t, 0x3E, 0x42) // LD A,0x42
	m.StepInstruction()
	if m.CPU.Regs.A != 0x42 {
		t.Fatalf("setup: A got %#02x want 0x42", m.CPU.Regs.A)
	}
	data := m.SaveState()

	m2 := newTestMachine(t, 0x00)
	if err := m2.LoadState(data); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if m2.CPU.Regs.A != 0x42 {
		t.Fatalf("restored A got %#02x want 0x42", m2.CPU.Regs.A)
	}
	if m2.CPU.PC != m.CPU.PC {
		t.Fatalf("restored PC got %#04x want %#04x", m2.CPU.PC, m.CPU.PC)
	}
}
