package bus

import "testing"

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	rom := make([]byte, 0x8000)
	b, err := New(rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

// Writing N to 0xFF46 copies memory[N*0x100 .. N*0x100+0x9F] into
// OAM[0..0xA0].
func TestOAMDMACopiesExactRange(t *testing.T) {
	b := newTestBus(t)
	for i := 0; i < 0xA0; i++ {
		b.Write(0xC300+uint16(i), byte(i^0x55))
	}
	b.Write(0xFF46, 0xC3)

	// The copy is atomic: OAM is fully populated before the write returns.
	for i := 0; i < 0xA0; i++ {
		want := byte(i ^ 0x55)
		if got := b.ppu.CPURead(0xFE00 + uint16(i)); got != want {
			t.Fatalf("OAM[%#02x] got %#02x want %#02x", i, got, want)
		}
	}
}

func TestEchoRAMMirrorsWorkRAM(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xC010, 0x7A)
	if got := b.Read(0xE010); got != 0x7A {
		t.Fatalf("echo read got %#02x want 0x7A", got)
	}
	b.Write(0xE020, 0x3C)
	if got := b.Read(0xC020); got != 0x3C {
		t.Fatalf("write through echo region got %#02x want 0x3C", got)
	}
}

func TestUnusableRegionReadsFFAndDiscardsWrites(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xFEA5, 0x99) // discarded
	if got := b.Read(0xFEA5); got != 0xFF {
		t.Fatalf("unusable region read got %#02x want 0xFF", got)
	}
}

func TestIFTopBitsReadAsOne(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xFF0F, 0x00)
	if got := b.Read(0xFF0F); got&0xE0 != 0xE0 {
		t.Fatalf("IF top bits got %#02x want top 3 bits set", got)
	}
}

func TestBootROMOverlayDisablesPermanently(t *testing.T) {
	b := newTestBus(t)
	boot := make([]byte, 0x100)
	boot[0] = 0xAB
	b.SetBootROM(boot)
	if got := b.Read(0x0000); got != 0xAB {
		t.Fatalf("boot overlay read got %#02x want 0xAB", got)
	}
	b.Write(0xFF50, 0x01)
	if got := b.Read(0x0000); got == 0xAB {
		t.Fatalf("boot overlay should be disabled after writing 0xFF50")
	}
	// Disabling is permanent: a later write to FF50 with 0 must not
	// re-enable it.
	b.Write(0xFF50, 0x00)
	if got := b.Read(0x0000); got == 0xAB {
		t.Fatalf("boot overlay must not re-enable once disabled")
	}
}

func TestHRAMReadWrite(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xFF90, 0x11)
	if got := b.Read(0xFF90); got != 0x11 {
		t.Fatalf("HRAM round trip got %#02x want 0x11", got)
	}
}

func TestSaveStateRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xC000, 0x42)
	b.Write(0xFFFF, 0x1F)
	data := b.SaveState()

	b2 := newTestBus(t)
	b2.LoadState(data)
	if got := b2.Read(0xC000); got != 0x42 {
		t.Fatalf("restored WRAM got %#02x want 0x42", got)
	}
	if got := b2.Read(0xFFFF); got != 0x1F {
		t.Fatalf("restored IE got %#02x want 0x1F", got)
	}
}
