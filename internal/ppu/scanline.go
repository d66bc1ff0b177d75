package ppu

// sprite is one OAM entry resolved against the current scanline.
type sprite struct {
	y, x  int
	tile  byte
	flags byte
}

const (
	objFlagPriority = 1 << 7 // 1 = behind BG colors 1-3
	objFlagYFlip    = 1 << 6
	objFlagXFlip    = 1 << 5
	objFlagPalette  = 1 << 4 // 0 = OBP0, 1 = OBP1
)

// renderScanline composes background, window, and sprites for the line
// about to be left (p.ly). Tick calls it once per visible line, at the
// end of the line's 456 dots.
func (p *PPU) renderScanline() {
	if int(p.ly) >= ScreenHeight {
		return
	}
	raw := &p.bgIndex[p.ly]

	bgEnabled := p.lcdc&0x01 != 0
	if bgEnabled {
		p.renderBG(raw)
	} else {
		for x := range raw {
			raw[x] = 0
		}
	}

	windowDrawnThisLine := false
	if bgEnabled && p.lcdc&0x20 != 0 && int(p.wy) <= int(p.ly) && p.wx <= 166 {
		p.renderWindow(raw)
		windowDrawnThisLine = true
	}
	if windowDrawnThisLine {
		p.windowLine++
	}

	line := &p.fb[p.ly]
	for x, ci := range raw {
		line[x] = (p.bgp >> (ci * 2)) & 0x03
	}

	if p.lcdc&0x02 != 0 {
		p.renderSprites(line, raw)
	}
}

func (p *PPU) renderBG(line *[ScreenWidth]byte) {
	mapBase := uint16(0x9800)
	if p.lcdc&0x08 != 0 {
		mapBase = 0x9C00
	}
	tileData8000 := p.lcdc&0x10 != 0

	bgY := uint16(p.ly) + uint16(p.scy)
	fineY := byte(bgY & 7)
	mapY := (bgY >> 3) & 31

	startX := uint16(p.scx)
	tileX := (startX >> 3) & 31
	fineX := int(startX & 7)

	tileIndexAddr := mapBase + mapY*32 + tileX

	var q fifo
	f := newBGFetcher(&p.vram, &q)
	f.configure(tileData8000, tileIndexAddr, fineY)
	f.fetch()
	for i := 0; i < fineX; i++ {
		q.Pop()
	}

	for x := 0; x < ScreenWidth; x++ {
		if q.Len() == 0 {
			tileX = (tileX + 1) & 31
			tileIndexAddr = mapBase + mapY*32 + tileX
			f.configure(tileData8000, tileIndexAddr, fineY)
			f.fetch()
		}
		px, _ := q.Pop()
		line[x] = px
	}
}

func (p *PPU) renderWindow(line *[ScreenWidth]byte) {
	wxStart := int(p.wx) - 7
	if wxStart >= ScreenWidth {
		return
	}
	if wxStart < 0 {
		wxStart = 0
	}

	mapBase := uint16(0x9800)
	if p.lcdc&0x40 != 0 {
		mapBase = 0x9C00
	}
	tileData8000 := p.lcdc&0x10 != 0

	winLine := uint16(p.windowLine)
	mapY := (winLine >> 3) & 31
	fineY := byte(winLine & 7)
	tileX := uint16(0)
	tileIndexAddr := mapBase + mapY*32 + tileX

	var q fifo
	f := newBGFetcher(&p.vram, &q)
	f.configure(tileData8000, tileIndexAddr, fineY)
	f.fetch()

	for x := wxStart; x < ScreenWidth; x++ {
		if q.Len() == 0 {
			tileX = (tileX + 1) & 31
			tileIndexAddr = mapBase + mapY*32 + tileX
			f.configure(tileData8000, tileIndexAddr, fineY)
			f.fetch()
		}
		px, _ := q.Pop()
		line[x] = px
	}
}

// scanOAM finds up to 10 sprites intersecting ly, in OAM order (hardware's
// own priority tie-break for sprites sharing an X coordinate).
func (p *PPU) scanOAM() []sprite {
	height := 8
	if p.lcdc&0x04 != 0 {
		height = 16
	}
	var found []sprite
	for i := 0; i < 40 && len(found) < 10; i++ {
		base := i * 4
		y := int(p.oam[base]) - 16
		if int(p.ly) < y || int(p.ly) >= y+height {
			continue
		}
		x := int(p.oam[base+1]) - 8
		tile := p.oam[base+2]
		flags := p.oam[base+3]
		if height == 16 {
			tile &^= 0x01
		}
		found = append(found, sprite{y: y, x: x, tile: tile, flags: flags})
	}
	return found
}

func (p *PPU) renderSprites(line *[ScreenWidth]byte, bg *[ScreenWidth]byte) {
	sprites := p.scanOAM()
	if len(sprites) == 0 {
		return
	}
	height := 8
	if p.lcdc&0x04 != 0 {
		height = 16
	}

	// Earliest OAM index has the highest priority: paint in reverse scan
	// order so later iterations (lower indices) overwrite.
	for k := len(sprites) - 1; k >= 0; k-- {
		p.blendSprite(line, bg, sprites[k], height)
	}
}

func (p *PPU) blendSprite(line *[ScreenWidth]byte, bg *[ScreenWidth]byte, s sprite, height int) {
	row := int(p.ly) - s.y
	if s.flags&objFlagYFlip != 0 {
		row = height - 1 - row
	}
	tileAddr := 0x8000 + uint16(s.tile)*16 + uint16(row)*2
	lo := p.vramRead(tileAddr)
	hi := p.vramRead(tileAddr + 1)

	palette := p.obp0
	if s.flags&objFlagPalette != 0 {
		palette = p.obp1
	}

	for px := 0; px < 8; px++ {
		sx := s.x + px
		if sx < 0 || sx >= ScreenWidth {
			continue
		}
		bit := px
		if s.flags&objFlagXFlip == 0 {
			bit = 7 - px
		}
		ci := ((hi>>uint(bit))&1)<<1 | ((lo >> uint(bit)) & 1)
		if ci == 0 {
			continue // color 0 is always transparent for sprites
		}
		if s.flags&objFlagPriority != 0 && bg[sx] != 0 {
			continue // behind non-zero BG/window color
		}
		line[sx] = (palette >> (ci * 2)) & 0x03
	}
}
