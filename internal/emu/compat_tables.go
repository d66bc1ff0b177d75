package emu

import (
	"strings"

	"github.com/dmgcore/dmgcore/internal/cart"
)

// compatTitleExact maps exact, normalized titles to a preferred palette ID.
// Note: IDs index into cgbCompatSetNames/cgbCompatSets below.
var compatTitleExact = map[string]int{
	"TETRIS":              2, // Blue
	"TETRIS DX":           2,
	"SUPER MARIO LAND":    3, // Red
	"SUPER MARIO LAND 2":  3,
	"DR. MARIO":           4, // Pastel
	"DONKEY KONG":         1, // Sepia
	"THE LEGEND OF ZELDA": 0, // Green
	"ZELDA":               0,
	"METROID II":          3, // Red accent
	"KIRBY'S DREAM LAND":  4, // Pastel/soft
	"MEGA MAN":            2, // Blue
	"MEGAMAN":             2,
	"WARIO LAND":          1, // Sepia
	"POKEMON YELLOW":      4, // Pastel
	"POKEMON RED":         4,
	"POKEMON BLUE":        4,
	"POCKET MONSTERS":     4,
}

type containsRule struct {
	substr string
	id     int
}

// compatTitleContains applies broader substring heuristics for families.
var compatTitleContains = []containsRule{
	{"TETRIS", 2},
	{"MARIO", 3},
	{"ZELDA", 0},
	{"KIRBY", 4},
	{"DONKEY KONG", 1},
	{"METROID", 3},
	{"MEGA MAN", 2},
	{"MEGAMAN", 2},
	{"WARIO", 1},
	{"POKEMON", 4},
	{"POCKET MONSTERS", 4},
}

// cgbCompatSetNames/cgbCompatSets are the curated host palettes
// autoCompatPaletteFromHeader indexes into. Host code never has to
// derive these itself — it's purely a convenience on top of the 2-bit
// shade the core already emits.
var cgbCompatSetNames = [6]string{"Green", "Sepia", "Blue", "Red", "Pastel", "Grayscale"}

var cgbCompatSets = [6][4][3]byte{
	{{155, 188, 15}, {139, 172, 15}, {48, 98, 48}, {15, 56, 15}},     // Green
	{{255, 246, 211}, {198, 181, 138}, {122, 99, 62}, {66, 48, 33}},  // Sepia
	{{224, 248, 255}, {148, 196, 255}, {74, 112, 196}, {20, 36, 82}}, // Blue
	{{255, 224, 224}, {224, 122, 122}, {156, 58, 58}, {72, 20, 20}},  // Red
	{{255, 239, 214}, {244, 180, 176}, {168, 142, 200}, {72, 62, 92}},// Pastel
	{{255, 255, 255}, {170, 170, 170}, {85, 85, 85}, {0, 0, 0}},      // Grayscale
}

// PaletteRGBA returns the RGB triple for a 2-bit shade under a named
// compat palette id, for hosts that want to colorize instead of emitting
// the raw DMG grayscale shade directly.
func PaletteRGBA(paletteID int, shade byte) (r, g, b byte) {
	if paletteID < 0 {
		paletteID = 0
	}
	set := cgbCompatSets[paletteID%len(cgbCompatSets)]
	c := set[shade&0x03]
	return c[0], c[1], c[2]
}

// autoCompatPaletteFromHeader tries to pick a good default palette using a small title table
// and then a stable fallback based on licensee/checksum. Returns (id, true) on success.
func autoCompatPaletteFromHeader(h *cart.Header) (int, bool) {
	if h == nil {
		return 0, false
	}
	title := strings.TrimSpace(strings.TrimRight(h.Title, "\x00"))
	t := strings.ToUpper(title)
	if id, ok := compatTitleExact[t]; ok {
		return id, true
	}
	for _, r := range compatTitleContains {
		if strings.Contains(t, r.substr) {
			return r.id, true
		}
	}
	// Fallback: for Nintendo-published titles, vary palette by header checksum; others use default.
	nintendo := false
	if h.OldLicensee == 0x33 {
		nintendo = (strings.ToUpper(h.NewLicensee) == "01")
	} else {
		nintendo = (h.OldLicensee == 0x01)
	}
	if nintendo {
		// Use header checksum to pick a stable palette across sessions.
		// Keep it within available set count (len(cgbCompatSetNames)).
		// We mod by 6 to align with our curated set length.
		return int(h.HeaderChecksum) % 6, true
	}
	return 0, true
}
