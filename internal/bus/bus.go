// Package bus wires the CPU-visible address space together: cartridge
// ROM/RAM, work RAM, the PPU's VRAM/OAM and register window, the timer,
// the joypad, the serial port, OAM DMA, and the boot ROM overlay.
package bus

import (
	"io"

	"github.com/dmgcore/dmgcore/internal/cart"
	"github.com/dmgcore/dmgcore/internal/joypad"
	"github.com/dmgcore/dmgcore/internal/ppu"
	"github.com/dmgcore/dmgcore/internal/timer"
)

// Bus implements cpu.Bus plus the host-facing hooks (buttons, serial
// sink, boot ROM, save states) a complete core needs.
type Bus struct {
	cart cart.Cartridge
	ppu  *ppu.PPU
	tmr  *timer.Timer
	pad  *joypad.Joypad

	wram [0x2000]byte // 0xC000-0xDFFF, echoed at 0xE000-0xFDFF
	hram [0x7F]byte   // 0xFF80-0xFFFE

	ie    byte // 0xFFFF
	ifReg byte // 0xFF0F, low 5 bits meaningful

	sb byte // 0xFF01 serial data
	sc byte // 0xFF02 serial control
	sw io.Writer

	dma byte // 0xFF46, last written source page

	bootROM     []byte
	bootEnabled bool
}

// New constructs a Bus around a ROM, picking the cartridge type from its
// header. It fails when the header is unreadable or names a bank
// controller this core does not implement.
func New(rom []byte) (*Bus, error) {
	c, err := cart.NewCartridge(rom)
	if err != nil {
		return nil, err
	}
	return NewWithCartridge(c), nil
}

// NewWithCartridge wires a provided cartridge implementation, useful for
// tests that want a bare RAM/ROM double instead of header-driven banking.
func NewWithCartridge(c cart.Cartridge) *Bus {
	b := &Bus{cart: c, tmr: timer.New(), pad: joypad.New()}
	b.ppu = ppu.New(func(bit int) { b.ifReg |= 1 << uint(bit) })
	return b
}

// PPU exposes the PPU for host-side framebuffer access.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Cart exposes the cartridge for battery-RAM persistence.
func (b *Bus) Cart() cart.Cartridge { return b.cart }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if b.bootEnabled && addr < 0x0100 && len(b.bootROM) >= 0x100 {
			return b.bootROM[addr]
		}
		return b.cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.CPURead(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF:
		return b.wram[addr-0x2000-0xC000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return b.ppu.CPURead(addr)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFF00:
		return b.pad.Read()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | (b.sc & 0x81)
	case addr == 0xFF04:
		return b.tmr.DIV()
	case addr == 0xFF05:
		return b.tmr.TIMA
	case addr == 0xFF06:
		return b.tmr.TMA
	case addr == 0xFF07:
		return 0xF8 | (b.tmr.TAC & 0x07)
	case addr == 0xFF0F:
		return 0xE0 | (b.ifReg & 0x1F)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		return b.ppu.CPURead(addr)
	case addr == 0xFF46:
		return b.dma
	case addr == 0xFF50:
		return 0xFF
	case addr == 0xFFFF:
		return b.ie
	default:
		return 0xFF
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xA000 && addr <= 0xBFFF:
		b.cart.Write(addr, value)
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
	case addr >= 0xE000 && addr <= 0xFDFF:
		b.wram[addr-0x2000-0xC000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	case addr == 0xFF00:
		if b.pad.WriteSelect(value) {
			b.ifReg |= 1 << 4
		}
	case addr == 0xFF01:
		b.sb = value
	case addr == 0xFF02:
		b.sc = value & 0x81
		if b.sc&0x80 != 0 {
			if b.sw != nil {
				b.sw.Write([]byte{b.sb})
			}
			b.ifReg |= 1 << 3
			b.sc &^= 0x80
		}
	case addr == 0xFF04:
		if b.tmr.ResetDIV() {
			b.ifReg |= 1 << 2
		}
	case addr == 0xFF05:
		b.tmr.WriteTIMA(value)
	case addr == 0xFF06:
		b.tmr.WriteTMA(value)
	case addr == 0xFF07:
		if b.tmr.WriteTAC(value) {
			b.ifReg |= 1 << 2
		}
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		b.ppu.CPUWrite(addr, value)
	case addr == 0xFF46:
		b.dma = value
		b.runOAMDMA(uint16(value) << 8)
	case addr == 0xFF50:
		if value != 0x00 {
			b.bootEnabled = false
		}
	case addr == 0xFF0F:
		b.ifReg = value & 0x1F
	case addr == 0xFFFF:
		b.ie = value
	}
}

// SetButtons replaces the held-button mask; bits are internal/joypad's
// Button constants.
func (b *Bus) SetButtons(mask byte) {
	if b.pad.SetButtons(mask) {
		b.ifReg |= 1 << 4
	}
}

// SetSerialWriter installs a sink that receives each byte shifted out the
// serial port. Transfers complete immediately; no link-cable partner is
// simulated.
func (b *Bus) SetSerialWriter(w io.Writer) { b.sw = w }

// SetBootROM maps a 256-byte DMG boot ROM at 0x0000-0x00FF until a
// non-zero write to 0xFF50 disables the overlay.
func (b *Bus) SetBootROM(data []byte) {
	b.bootROM = nil
	b.bootEnabled = false
	if len(data) >= 0x100 {
		b.bootROM = make([]byte, 0x100)
		copy(b.bootROM, data[:0x100])
		b.bootEnabled = true
	}
}

// Tick advances every cycle-driven component — timer, PPU, and cartridge
// RTC — by cycles T-cycles, one T-cycle at a time. emu.Machine calls it
// once per CPU step with the T-cycles that instruction, interrupt
// dispatch, or HALT-idle tick consumed.
func (b *Bus) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		if b.tmr.Tick() {
			b.ifReg |= 1 << 2
		}
		b.ppu.Tick()
		if rtc, ok := b.cart.(cart.RTCTicker); ok {
			rtc.Tick()
		}
	}
}

// runOAMDMA copies the 160-byte source page into OAM in one go. The copy
// is atomic relative to CPU instructions: the CPU cannot run between the
// FF46 write and the copy completing, so it never observes a partial OAM.
// The real 160-cycle transfer window is below this core's timing
// granularity.
func (b *Bus) runOAMDMA(src uint16) {
	for i := uint16(0); i < 0xA0; i++ {
		b.ppu.WriteOAMByte(byte(i), b.Read(src+i))
	}
}
