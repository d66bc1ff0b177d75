package cart

import "testing"

func TestMBC3BankSwitchSelects7Bits(t *testing.T) {
	rom := buildBankedROM(128)
	m := NewMBC3(rom, 0, false)
	m.Write(0x2000, 0x7F) // max 7-bit bank
	if got := m.Read(0x4000); got != 0x7F {
		t.Fatalf("bank read got %d want 127", got)
	}
}

func TestMBC3Bank0RemapsToBank1(t *testing.T) {
	rom := buildBankedROM(4)
	m := NewMBC3(rom, 0, false)
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 1 {
		t.Fatalf("bank register 0 got %d want 1", got)
	}
}

func TestMBC3RAMBankSwitch(t *testing.T) {
	rom := buildBankedROM(2)
	m := NewMBC3(rom, 4*0x2000, false)
	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0x4000, 0x02) // select RAM bank 2
	m.Write(0xA000, 0x77)
	m.Write(0x4000, 0x00) // back to bank 0
	if got := m.Read(0xA000); got == 0x77 {
		t.Fatalf("bank 0 should not alias bank 2's data")
	}
	m.Write(0x4000, 0x02)
	if got := m.Read(0xA000); got != 0x77 {
		t.Fatalf("RAM bank 2 round-trip got %#02x want 0x77", got)
	}
}

func TestMBC3RTCLatchSequence(t *testing.T) {
	rom := buildBankedROM(2)
	m := NewMBC3(rom, 0, true)
	m.Write(0x0000, 0x0A) // enable RAM+RTC

	// Advance the emulated clock by exactly one in-game second.
	for i := 0; i < cyclesPerSecond; i++ {
		m.Tick()
	}

	// Latch-on-0-then-1 write sequence.
	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01)

	m.Write(0x4000, rtcRegSeconds)
	if got := m.Read(0xA000); got != 1 {
		t.Fatalf("latched seconds got %d want 1", got)
	}
}

func TestMBC3RTCGatedByEnableLatch(t *testing.T) {
	rom := buildBankedROM(2)
	m := NewMBC3(rom, 0, true)
	m.Write(0x4000, rtcRegSeconds)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("RTC read without the enable latch got %#02x want 0xFF", got)
	}
	m.Write(0xA000, 0x17) // must be discarded while disabled
	m.Write(0x0000, 0x0A)
	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01)
	if got := m.Read(0xA000); got != 0 {
		t.Fatalf("discarded RTC write leaked through, seconds got %d want 0", got)
	}
}

func TestMBC3RTCReadWithoutLatchSeesStaleSnapshot(t *testing.T) {
	rom := buildBankedROM(2)
	m := NewMBC3(rom, 0, true)
	m.Write(0x0000, 0x0A)
	m.Write(0x4000, rtcRegSeconds)
	if got := m.Read(0xA000); got != 0 {
		t.Fatalf("unlatched seconds got %d want 0 (never latched yet)", got)
	}
	for i := 0; i < cyclesPerSecond*3; i++ {
		m.Tick()
	}
	if got := m.Read(0xA000); got != 0 {
		t.Fatalf("reading RTC without latching must not observe live ticks, got %d", got)
	}
}
