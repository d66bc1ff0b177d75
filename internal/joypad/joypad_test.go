package joypad

import "testing"

func TestReadWithNoGroupSelectedReadsAllOnes(t *testing.T) {
	j := New()
	j.WriteSelect(0x30) // both groups deselected
	if got := j.Read() & 0x0F; got != 0x0F {
		t.Fatalf("low nibble got %#02x want 0x0F", got)
	}
}

func TestDirectionGroupReflectsHeldButtons(t *testing.T) {
	j := New()
	j.WriteSelect(0x20) // select direction group (P14 low)
	j.SetButtons(Right | Down)
	got := j.Read() & 0x0F
	want := byte(0x0F) &^ 0x01 &^ 0x08 // Right and Down bits cleared (active low)
	if got != want {
		t.Fatalf("direction nibble got %#04b want %#04b", got, want)
	}
}

func TestButtonGroupReflectsHeldButtons(t *testing.T) {
	j := New()
	j.WriteSelect(0x10) // select button group (P15 low)
	j.SetButtons(A | Start)
	got := j.Read() & 0x0F
	want := byte(0x0F) &^ 0x01 &^ 0x08 // A and Start bits cleared
	if got != want {
		t.Fatalf("button nibble got %#04b want %#04b", got, want)
	}
}

func TestPressEdgeRequestsInterrupt(t *testing.T) {
	j := New()
	j.WriteSelect(0x20) // direction group selected, nothing held yet
	if req := j.SetButtons(0); req {
		t.Fatalf("no transition yet, should not request interrupt")
	}
	if req := j.SetButtons(Up); !req {
		t.Fatalf("newly-pressed Up with its group selected should request an interrupt")
	}
}

func TestReleaseDoesNotRequestInterrupt(t *testing.T) {
	j := New()
	j.WriteSelect(0x20)
	j.SetButtons(Up)
	if req := j.SetButtons(0); req {
		t.Fatalf("releasing a button must not raise the joypad interrupt")
	}
}

func TestSelectingAGroupWithAHeldButtonRaisesEdge(t *testing.T) {
	j := New()
	j.SetButtons(A) // held, but button group not yet selected
	if req := j.WriteSelect(0x20); req {
		t.Fatalf("selecting direction group shouldn't surface the unrelated A press")
	}
	if req := j.WriteSelect(0x10); !req {
		t.Fatalf("selecting button group while A is held should edge the interrupt")
	}
}
