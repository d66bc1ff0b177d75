package bus

import (
	"bytes"
	"encoding/gob"

	"github.com/dmgcore/dmgcore/internal/joypad"
	"github.com/dmgcore/dmgcore/internal/ppu"
	"github.com/dmgcore/dmgcore/internal/timer"
)

type busState struct {
	WRAM        [0x2000]byte
	HRAM        [0x7F]byte
	IE, IF      byte
	SB, SC      byte
	DMA         byte
	BootEnabled bool

	Timer  timer.State
	Joypad joypad.State
	PPU    ppu.State
	Cart   []byte
}

// SaveState serializes every bus-owned register plus the PPU, timer,
// joypad, and cartridge sub-states into one gob-encoded blob.
func (b *Bus) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(busState{
		WRAM: b.wram, HRAM: b.hram,
		IE: b.ie, IF: b.ifReg,
		SB: b.sb, SC: b.sc,
		DMA:         b.dma,
		BootEnabled: b.bootEnabled,
		Timer:       b.tmr.Save(),
		Joypad:      b.pad.Save(),
		PPU:         b.ppu.Save(),
		Cart:        b.cart.SaveState(),
	})
	return buf.Bytes()
}

// LoadState restores a blob produced by SaveState. A decode failure leaves
// the bus unchanged. A cartridge state whose external RAM size differs
// from this cartridge's still restores the bus, timer, joypad, PPU, and
// banking registers, but keeps the cartridge's current RAM contents.
func (b *Bus) LoadState(data []byte) {
	var s busState
	if gob.NewDecoder(bytes.NewReader(data)).Decode(&s) != nil {
		return
	}
	b.wram, b.hram = s.WRAM, s.HRAM
	b.ie, b.ifReg = s.IE, s.IF
	b.sb, b.sc = s.SB, s.SC
	b.dma = s.DMA
	b.bootEnabled = s.BootEnabled
	b.tmr.Restore(s.Timer)
	b.pad.Restore(s.Joypad)
	b.ppu.Restore(s.PPU)
	b.cart.LoadState(s.Cart)
}
