// Package cart implements DMG cartridge header parsing and the memory
// bank controllers (ROM-only, MBC1, MBC3 with RTC, MBC5) that decode
// CPU-visible ROM/RAM accesses into bank-switched cartridge storage.
package cart

import "fmt"

// Cartridge is the minimal interface the bus needs for ROM/RAM banking.
// Addresses are CPU addresses: 0x0000-0x7FFF is ROM (and MBC control
// writes), 0xA000-0xBFFF is external RAM.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)

	// SaveState/LoadState serialize banking registers, RTC state (if
	// any), and external RAM for whole-machine save states.
	SaveState() []byte
	LoadState(data []byte)
}

// BatteryBacked is implemented by cartridges whose external RAM should
// survive independently of a save state, persisted to a .sav file.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// RTCTicker is implemented by cartridges with an onboard real-time clock
// (MBC3+TIMER). The bus calls Tick once per T-cycle alongside the timer
// and PPU, so the clock advances in lockstep with emulated time rather
// than wall time.
type RTCTicker interface {
	Tick()
}

// NewCartridge picks an implementation based on the ROM header's
// cartridge-type byte. A type byte outside the implemented bank
// controller families is a load failure, not a silent ROM-only
// fallback: banking writes would be misinterpreted and the game would
// corrupt itself in ways far harder to diagnose than a refusal here.
func NewCartridge(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom), nil
	case 0x01, 0x02, 0x03: // MBC1, MBC1+RAM, MBC1+RAM+BATTERY
		return NewMBC1(rom, h.RAMSizeBytes), nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13: // MBC3(+TIMER)(+RAM)(+BATTERY)
		hasRTC := h.CartType == 0x0F || h.CartType == 0x10
		return NewMBC3(rom, h.RAMSizeBytes, hasRTC), nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E: // MBC5 variants
		return NewMBC5(rom, h.RAMSizeBytes), nil
	default:
		return nil, fmt.Errorf("cart: unsupported cartridge type 0x%02X (%s)", h.CartType, h.CartTypeStr)
	}
}
