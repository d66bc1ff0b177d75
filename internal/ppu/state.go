package ppu

// State is the gob-serializable snapshot of everything a PPU needs to
// resume mid-frame: registers, VRAM/OAM contents, and the dot/line
// counters. The framebuffer itself is not saved; it is fully recomputed
// by the time the next frame completes.
type State struct {
	VRAM [0x2000]byte
	OAM  [0xA0]byte

	LCDC, STAT, SCY, SCX, LY, LYC byte
	BGP, OBP0, OBP1, WY, WX       byte

	Dot        int
	WindowLine int
	StatLine   bool
}

func (p *PPU) Save() State {
	return State{
		VRAM: p.vram, OAM: p.oam,
		LCDC: p.lcdc, STAT: p.stat, SCY: p.scy, SCX: p.scx, LY: p.ly, LYC: p.lyc,
		BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1, WY: p.wy, WX: p.wx,
		Dot: p.dot, WindowLine: p.windowLine, StatLine: p.statLine,
	}
}

func (p *PPU) Restore(s State) {
	p.vram, p.oam = s.VRAM, s.OAM
	p.lcdc, p.stat, p.scy, p.scx, p.ly, p.lyc = s.LCDC, s.STAT, s.SCY, s.SCX, s.LY, s.LYC
	p.bgp, p.obp0, p.obp1, p.wy, p.wx = s.BGP, s.OBP0, s.OBP1, s.WY, s.WX
	p.dot, p.windowLine, p.statLine = s.Dot, s.WindowLine, s.StatLine
}
