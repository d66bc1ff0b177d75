package ppu

import "testing"

func newTestPPU() (*PPU, *[]int) {
	var requests []int
	p := New(func(bit int) { requests = append(requests, bit) })
	p.CPUWrite(0xFF40, 0x91) // LCD on, BG on, tile data 0x8000 unsigned
	return p, &requests
}

// After 456 T-cycles of PPU stepping, LY increases by exactly 1
// modulo 154.
func TestLYAdvancesOncePerScanline(t *testing.T) {
	p, _ := newTestPPU()
	startLY := p.LY()
	for i := 0; i < 456; i++ {
		p.Tick()
	}
	want := byte((int(startLY) + 1) % 154)
	if p.LY() != want {
		t.Fatalf("LY after 456 cycles got %d want %d", p.LY(), want)
	}
}

// Crossing LY=143->144 requests the VBlank interrupt exactly once, at
// the transition.
func TestVBlankInterruptOnLine144Entry(t *testing.T) {
	p, reqs := newTestPPU()
	for i := 0; i < 144*456; i++ {
		p.Tick()
	}
	if p.LY() != 144 {
		t.Fatalf("LY got %d want 144", p.LY())
	}
	if p.Mode() != ModeVBlank {
		t.Fatalf("mode got %v want VBlank", p.Mode())
	}
	found := false
	for _, b := range *reqs {
		if b == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("VBlank interrupt (bit 0) should have been requested")
	}
}

func TestModeSequenceAcrossOneVisibleLine(t *testing.T) {
	p, _ := newTestPPU()
	if p.Mode() != ModeOAM {
		t.Fatalf("mode at line start got %v want OAMScan", p.Mode())
	}
	for i := 0; i < 79; i++ {
		p.Tick()
	}
	if p.Mode() != ModeOAM {
		t.Fatalf("mode at dot 79 got %v want OAMScan", p.Mode())
	}
	p.Tick() // dot 80: enter Drawing
	if p.Mode() != ModeDraw {
		t.Fatalf("mode at dot 80 got %v want Drawing", p.Mode())
	}
	for i := 0; i < 171; i++ {
		p.Tick()
	}
	if p.Mode() != ModeDraw {
		t.Fatalf("mode at dot 251 got %v want Drawing", p.Mode())
	}
	p.Tick() // dot 252: enter HBlank
	if p.Mode() != ModeHBlank {
		t.Fatalf("mode at dot 252 got %v want HBlank", p.Mode())
	}
}

func TestLCDOffResetsLYAndMode(t *testing.T) {
	p, _ := newTestPPU()
	for i := 0; i < 456*3+10; i++ {
		p.Tick()
	}
	p.CPUWrite(0xFF40, 0x11) // LCD off, BG still on
	if p.LY() != 0 {
		t.Fatalf("LY after LCD off got %d want 0", p.LY())
	}
	if p.Mode() != ModeHBlank {
		t.Fatalf("mode after LCD off got %v want HBlank", p.Mode())
	}
}

func TestLYCCoincidenceSetsSTATBitAndRequestsOnce(t *testing.T) {
	p, reqs := newTestPPU()
	p.CPUWrite(0xFF45, 0) // LYC=0, matches LY=0 already
	p.CPUWrite(0xFF41, p.CPURead(0xFF41)|0x40 | 0x80)
	if p.CPURead(0xFF41)&0x04 == 0 {
		t.Fatalf("coincidence bit should be set when LY==LYC")
	}
	if len(*reqs) != 1 {
		t.Fatalf("enabling the LYC STAT source while already coincident should edge-trigger STAT exactly once, got %d requests", len(*reqs))
	}
}

func TestVRAMBlockedDuringDrawingMode(t *testing.T) {
	p, _ := newTestPPU()
	p.CPUWrite(0x8000, 0x5A)
	for i := 0; i < 80; i++ {
		p.Tick() // move into Drawing
	}
	if p.Mode() != ModeDraw {
		t.Fatalf("expected Drawing mode, got %v", p.Mode())
	}
	if got := p.CPURead(0x8000); got != 0xFF {
		t.Fatalf("VRAM read during Drawing got %#02x want 0xFF (blocked)", got)
	}
	p.CPUWrite(0x8000, 0x33) // should be discarded
	for i := 0; i < 172+204; i++ {
		p.Tick()
	}
	if got := p.CPURead(0x8000); got != 0x5A {
		t.Fatalf("VRAM value after blocked write got %#02x want unchanged 0x5A", got)
	}
}

func TestOAMWriteByteBypassesModeBlocking(t *testing.T) {
	p, _ := newTestPPU()
	for i := 0; i < 80; i++ {
		p.Tick() // dot 80 is Drawing, which blocks normal OAM writes
	}
	p.WriteOAMByte(0x10, 0x42)
	if p.oam[0x10] != 0x42 {
		t.Fatalf("DMA-style OAM write should bypass PPU mode blocking")
	}
}

// Two overlapping sprites: the earlier OAM entry wins the overlap even
// when the later entry sits at a smaller X coordinate.
func TestSpriteOverlapEarliestOAMIndexWins(t *testing.T) {
	p := New(func(bit int) {})

	// Tile 1 row 0 decodes to color 1 across all eight pixels, tile 2 to
	// color 2. Written while the LCD is off, so no mode blocking applies.
	p.CPUWrite(0x8010, 0xFF) // tile 1 low plane
	p.CPUWrite(0x8011, 0x00)
	p.CPUWrite(0x8020, 0x00) // tile 2 low plane
	p.CPUWrite(0x8021, 0xFF)

	// OAM entry 0 at screen x=12 (tile 1), entry 1 at screen x=10
	// (tile 2); they overlap on x=12..17.
	oam := []byte{
		16, 20, 1, 0,
		16, 18, 2, 0,
	}
	for i, v := range oam {
		p.CPUWrite(0xFE00+uint16(i), v)
	}

	p.CPUWrite(0xFF47, 0x00) // BG shade 0 everywhere
	p.CPUWrite(0xFF48, 0xE4) // OBP0: identity shade mapping
	p.CPUWrite(0xFF40, 0x82) // LCD on, sprites on, BG off

	for i := 0; i < 456; i++ {
		p.Tick()
	}

	fb := p.Framebuffer()
	if got := fb[0][10]; got != 2 {
		t.Fatalf("x=10 (entry 1 only) got shade %d want 2", got)
	}
	if got := fb[0][12]; got != 1 {
		t.Fatalf("x=12 overlap got shade %d want 1 (earliest OAM entry wins)", got)
	}
}

func TestSpriteColorZeroIsTransparent(t *testing.T) {
	p := New(func(bit int) {})

	// Tile 1 row 0: left half color 1, right half color 0.
	p.CPUWrite(0x8010, 0xF0)
	p.CPUWrite(0x8011, 0x00)
	p.CPUWrite(0xFE00, 16) // y: covers LY 0
	p.CPUWrite(0xFE01, 8)  // screen x=0
	p.CPUWrite(0xFE02, 1)
	p.CPUWrite(0xFE03, 0)

	p.CPUWrite(0xFF47, 0x00)
	p.CPUWrite(0xFF48, 0xE4)
	p.CPUWrite(0xFF40, 0x82)

	for i := 0; i < 456; i++ {
		p.Tick()
	}

	fb := p.Framebuffer()
	if got := fb[0][0]; got != 1 {
		t.Fatalf("opaque sprite pixel got shade %d want 1", got)
	}
	if got := fb[0][4]; got != 0 {
		t.Fatalf("transparent sprite pixel got shade %d want background 0", got)
	}
}

func TestLCDCRegisterReadBack(t *testing.T) {
	p, _ := newTestPPU()
	if p.LCDC() != 0x91 {
		t.Fatalf("LCDC got %#02x want 0x91", p.LCDC())
	}
}
