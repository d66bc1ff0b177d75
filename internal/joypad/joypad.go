// Package joypad implements the DMG's JOYP button matrix: eight buttons
// multiplexed onto four active-low bits by a selection nibble, with a
// falling-edge interrupt when any selected button transitions pressed.
package joypad

// Button bitmasks for SetButtons. A set bit means the button is held.
const (
	Right = 1 << iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Joypad tracks which buttons are held and the host's last write to the
// selection nibble (FF00 bits 5-4).
type Joypad struct {
	Select byte // last-written selection nibble, bits 5-4 of FF00
	Held   byte // Button bitmask, 1 = held
	lower4 byte // last computed active-low nibble, for edge detection
}

// New returns a Joypad with no buttons held and both groups deselected.
func New() *Joypad { return &Joypad{Select: 0x30, lower4: 0x0F} }

// Read returns the FF00 register value: bits 7-6 fixed high, bits 5-4 the
// selection, bits 3-0 the active-low state of whichever group(s) are
// selected (both, if both select bits are clear).
func (j *Joypad) Read() byte {
	return 0xC0 | (j.Select & 0x30) | j.activeLow()
}

// WriteSelect applies a write to FF00's bits 5-4 and recomputes the edge
// state, which can itself raise the interrupt if it newly selects a group
// with a button already held.
func (j *Joypad) WriteSelect(v byte) (requestInterrupt bool) {
	j.Select = v & 0x30
	return j.refresh()
}

// SetButtons replaces the held-button mask and recomputes the edge state.
func (j *Joypad) SetButtons(mask byte) (requestInterrupt bool) {
	j.Held = mask
	return j.refresh()
}

func (j *Joypad) activeLow() byte {
	lower := byte(0x0F)
	if j.Select&0x10 == 0 { // P14 low selects the D-pad
		if j.Held&Right != 0 {
			lower &^= 0x01
		}
		if j.Held&Left != 0 {
			lower &^= 0x02
		}
		if j.Held&Up != 0 {
			lower &^= 0x04
		}
		if j.Held&Down != 0 {
			lower &^= 0x08
		}
	}
	if j.Select&0x20 == 0 { // P15 low selects the face/start buttons
		if j.Held&A != 0 {
			lower &^= 0x01
		}
		if j.Held&B != 0 {
			lower &^= 0x02
		}
		if j.Held&Select != 0 {
			lower &^= 0x04
		}
		if j.Held&Start != 0 {
			lower &^= 0x08
		}
	}
	return lower
}

// refresh recomputes the active-low nibble and reports a 1->0 transition
// on any bit, the condition that raises the Joypad interrupt.
func (j *Joypad) refresh() (requestInterrupt bool) {
	newLower := j.activeLow()
	falling := j.lower4 &^ newLower
	j.lower4 = newLower
	return falling != 0
}

// State is the gob-serializable snapshot used by internal/bus's save state.
type State struct {
	Select byte
	Held   byte
	Lower4 byte
}

func (j *Joypad) Save() State { return State{j.Select, j.Held, j.lower4} }

func (j *Joypad) Restore(s State) {
	j.Select, j.Held, j.lower4 = s.Select, s.Held, s.Lower4
}
