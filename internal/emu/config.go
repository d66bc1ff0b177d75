package emu

// Options configures a Machine at construction time. The zero value runs
// without a boot ROM, post-boot register defaults, and no debug history.
type Options struct {
	// BootROM, if non-empty, is mapped at 0x0000-0x00FF until the
	// cartridge disables it via a write to 0xFF50. If empty, the
	// Machine starts from the documented DMG post-boot register state.
	BootROM []byte

	// SkipBoot forces the post-boot register state even when BootROM
	// is provided.
	SkipBoot bool

	// HistoryDepth sizes the instruction-trace ring buffer debug.go
	// keeps for post-mortem inspection; 0 disables tracing entirely.
	HistoryDepth int

	// PaletteID selects a compat palette (see compat_tables.go) a host
	// can use to colorize Framebuffer's 2-bit shades. It has no effect
	// on core behavior.
	PaletteID int
}
