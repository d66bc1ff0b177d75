package cart

import (
	"encoding/binary"
	"errors"
	"strings"
)

// Header fields live in the 80-byte block at 0x0100-0x014F inside ROM
// bank 0; NewCartridge reads CartType out of it to
// pick a banking implementation, and the compat-palette heuristic reads
// Title and the licensee fields.
const (
	identityStart = 0x0100
	identityEnd   = 0x014F
)

// bootLogo is the 48-byte Nintendo bitmap every licensed ROM repeats at
// 0x0104; real hardware refuses to boot if it doesn't match, but nothing
// here depends on a licensed ROM, so a mismatch is only reported through
// Header.LogoValid, never fatal.
var bootLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header is the decoded 0x0100-0x014F block of a ROM image: the fields
// NewCartridge and the host need are pulled out verbatim, plus a few
// derived conveniences (ROMSizeBytes, CartTypeStr, ...) so callers don't
// re-decode the size/type codes themselves.
type Header struct {
	Title          string
	CGBFlag        byte
	NewLicensee    string
	SGBFlag        byte
	CartType       byte
	ROMSizeCode    byte
	RAMSizeCode    byte
	Destination    byte
	OldLicensee    byte
	ROMVersion     byte
	HeaderChecksum byte
	GlobalChecksum uint16

	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int
	CartTypeStr  string
	LogoValid    bool
}

// hasValidLogo reports whether rom's Nintendo-logo bytes match the
// reference bitmap. Only used for Header.LogoValid; a mismatch never
// aborts parsing since homebrew and test ROMs routinely omit it.
func hasValidLogo(rom []byte) bool {
	if len(rom) < 0x0104+len(bootLogo) {
		return false
	}
	for i, want := range bootLogo {
		if rom[0x0104+i] != want {
			return false
		}
	}
	return true
}

// ParseHeader decodes the identity block out of rom. It only fails when
// rom is too short to hold the block at all; a bad Nintendo logo or a
// failing header checksum are reported through LogoValid/HeaderChecksumOK
// instead, since plenty of real-world ROMs (homebrew, test suites) fail
// one or both without being unreadable.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < identityEnd+1 {
		return nil, errors.New("cart: rom shorter than the 0x0100-0x014F identity block")
	}

	title := strings.TrimRight(string(rom[0x0134:0x0144]), "\x00")
	h := &Header{
		Title:          title,
		CGBFlag:        rom[0x0143],
		NewLicensee:    string(rom[0x0144:0x0146]),
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}
	h.ROMSizeBytes, h.ROMBanks = romSizeFromCode(h.ROMSizeCode)
	h.RAMSizeBytes = ramSizeFromCode(h.RAMSizeCode)
	h.CartTypeStr = describeCartType(h.CartType)
	h.LogoValid = hasValidLogo(rom)
	return h, nil
}

// HeaderChecksumOK recomputes the Pan Docs header checksum (a running
// byte subtraction over 0x0134-0x014C) and compares it against the byte
// stored at 0x014D.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

// romSizeCodes and ramSizeCodes table the handful of header codes real
// cartridges use; romSizeFromCode/ramSizeFromCode fall back to zero for
// anything outside the table rather than guessing.
var romSizeCodes = map[byte]struct {
	bytes, banks int
}{
	0x00: {32 * 1024, 2},
	0x01: {64 * 1024, 4},
	0x02: {128 * 1024, 8},
	0x03: {256 * 1024, 16},
	0x04: {512 * 1024, 32},
	0x05: {1 * 1024 * 1024, 64},
	0x06: {2 * 1024 * 1024, 128},
	0x07: {4 * 1024 * 1024, 256},
	0x08: {8 * 1024 * 1024, 512},
	0x52: {1152 * 1024, 72},
	0x53: {1280 * 1024, 80},
	0x54: {1536 * 1024, 96},
}

func romSizeFromCode(code byte) (size, banks int) {
	if e, ok := romSizeCodes[code]; ok {
		return e.bytes, e.banks
	}
	return 0, 0
}

var ramSizeCodes = map[byte]int{
	0x00: 0,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

func ramSizeFromCode(code byte) int {
	return ramSizeCodes[code]
}

// describeCartType groups the header's cartridge-type byte into the
// banking family NewCartridge switches on, for logs rather than control
// flow (NewCartridge re-tests h.CartType directly).
func describeCartType(code byte) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01, 0x02, 0x03:
		return "MBC1 (variants)"
	case 0x05, 0x06:
		return "MBC2 (variants)"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3 (variants)"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5 (variants)"
	default:
		return "Other/unknown"
	}
}
