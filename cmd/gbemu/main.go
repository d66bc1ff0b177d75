// Command gbemu is a minimal ebiten host: it loads a ROM (and an optional
// boot ROM), runs the core one frame per host frame, and blits the
// palette-mapped framebuffer to a window.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/dmgcore/dmgcore/internal/cart"
	"github.com/dmgcore/dmgcore/internal/emu"
	"github.com/dmgcore/dmgcore/internal/ppu"
)

type cliFlags struct {
	romPath  string
	bootPath string
	scale    int
	title    string
	palette  int
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.romPath, "rom", "", "path to ROM (.gb)")
	flag.StringVar(&f.bootPath, "bootrom", "", "optional DMG boot ROM to run from 0x0000 until FF50 disables it")
	flag.IntVar(&f.scale, "scale", 3, "window scale factor over the native 160x144 screen")
	flag.StringVar(&f.title, "title", "gbemu", "window title")
	flag.IntVar(&f.palette, "palette", -1, "compat palette id (0=Green,1=Sepia,2=Blue,3=Red,4=Pastel,5=Grayscale); -1 auto-detects from the ROM title")
	flag.Parse()
	return f
}

func mustReadFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return data
}

// game adapts a *emu.Machine to the ebiten.Game interface: one StepFrame
// per Update, keyboard polled straight into emu.Buttons, and the 2-bit
// framebuffer palette-mapped into an RGBA texture on Draw.
type game struct {
	m       *emu.Machine
	palette int
	tex     *ebiten.Image
	pixels  []byte // ScreenWidth*ScreenHeight*4 RGBA, reused across frames
	paused  bool
}

func newGame(m *emu.Machine, paletteID int) *game {
	return &game{
		m:       m,
		palette: paletteID,
		tex:     ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight),
		pixels:  make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4),
	}
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.paused {
		return nil
	}

	var btn emu.Buttons
	btn.Right = ebiten.IsKeyPressed(ebiten.KeyRight)
	btn.Left = ebiten.IsKeyPressed(ebiten.KeyLeft)
	btn.Up = ebiten.IsKeyPressed(ebiten.KeyUp)
	btn.Down = ebiten.IsKeyPressed(ebiten.KeyDown)
	btn.A = ebiten.IsKeyPressed(ebiten.KeyZ)
	btn.B = ebiten.IsKeyPressed(ebiten.KeyX)
	btn.Start = ebiten.IsKeyPressed(ebiten.KeyEnter)
	btn.Select = ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	g.m.SetButtons(btn)

	g.m.StepFrame()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	fb := g.m.Framebuffer()
	i := 0
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			r, gr, b := emu.PaletteRGBA(g.palette, fb[y][x])
			g.pixels[i+0] = r
			g.pixels[i+1] = gr
			g.pixels[i+2] = b
			g.pixels[i+3] = 0xFF
			i += 4
		}
	}
	g.tex.WritePixels(g.pixels)
	screen.DrawImage(g.tex, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.ScreenWidth, ppu.ScreenHeight
}

func main() {
	f := parseFlags()
	if f.romPath == "" {
		log.Fatal("-rom is required")
	}
	rom := mustReadFile(f.romPath)

	h, err := cart.ParseHeader(rom)
	if err != nil {
		log.Fatalf("parse header: %v", err)
	}
	log.Printf("loaded %q: %s, %d ROM banks, %d bytes RAM", h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes)

	var boot []byte
	if f.bootPath != "" {
		boot = mustReadFile(f.bootPath)
	}

	m, err := emu.New(rom, emu.Options{BootROM: boot, PaletteID: f.palette})
	if err != nil {
		log.Fatalf("load rom: %v", err)
	}

	palette := f.palette
	if palette < 0 {
		palette = m.CompatPaletteID(rom)
	}

	ebiten.SetWindowSize(ppu.ScreenWidth*f.scale, ppu.ScreenHeight*f.scale)
	ebiten.SetWindowTitle(f.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(newGame(m, palette)); err != nil {
		log.Fatal(err)
	}
}
