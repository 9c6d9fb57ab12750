package inventory

import (
	"errors"
	"testing"
)

func TestNewInstanceClampsCount(t *testing.T) {
	reg := SampleRegistry()

	wood, err := NewInstance(reg, SampleWood, 50)
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if wood.Count() != 20 {
		t.Fatalf("expected count clamped to 20, got %d", wood.Count())
	}
	low, _ := NewInstance(reg, SampleWood, 0)
	if low.Count() != 1 {
		t.Fatalf("expected count clamped to 1, got %d", low.Count())
	}
	key, _ := NewInstance(reg, SampleKey, 4)
	if key.Count() != 1 {
		t.Fatalf("expected unstackable count 1, got %d", key.Count())
	}
	if _, err := NewInstance(reg, 999, 1); !errors.Is(err, ErrUnknownDefinition) {
		t.Fatalf("expected ErrUnknownDefinition, got %v", err)
	}
}

func TestInstanceDefaultsFromSchema(t *testing.T) {
	reg := SampleRegistry()
	sword, _ := NewInstance(reg, SampleSword, 1)
	v, ok := sword.Property(PropDurability)
	if !ok || v != IntValue(100) {
		t.Fatalf("expected default durability 100, got %+v (ok=%v)", v, ok)
	}
	if sword.SetProperty(PropEnchant, StringValue("x")) {
		t.Fatalf("expected property outside schema to be rejected")
	}
}

func TestSplitCopiesState(t *testing.T) {
	reg := SampleRegistry()
	potion, _ := NewInstance(reg, SamplePotion, 4)
	potion.SetProperty(PropEnchant, StringValue("fire"))
	potion.DisableInteraction(7)
	potion.DisableCombine(SampleWood)

	piece, err := potion.Split(3)
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	if potion.Count() != 1 || piece.Count() != 3 {
		t.Fatalf("expected 1/3 after split, got %d/%d", potion.Count(), piece.Count())
	}
	if piece.ID() == potion.ID() {
		t.Fatalf("expected split to get a fresh id")
	}
	if !piece.IsMatch(potion, true) {
		t.Fatalf("expected split to keep property state")
	}
	if piece.InteractionEnabled(7) || piece.CombineEnabled(SampleWood) {
		t.Fatalf("expected split to keep disabled sets")
	}

	// the copies are independent
	piece.EnableInteraction(7)
	if potion.InteractionEnabled(7) {
		t.Fatalf("expected original disabled set to be unaffected")
	}
}

func TestSplitRejectsInvalidAmounts(t *testing.T) {
	reg := SampleRegistry()
	wood, _ := NewInstance(reg, SampleWood, 3)
	for _, amount := range []int{0, -1, 4} {
		if _, err := wood.Split(amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if wood.Count() != 3 {
		t.Fatalf("expected count unchanged after rejected splits, got %d", wood.Count())
	}

	all, err := wood.Split(3)
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	if all.Count() != 3 || wood.Count() != 0 {
		t.Fatalf("expected whole split to leave original empty, got %d/%d", wood.Count(), all.Count())
	}
}

func TestIsMatch(t *testing.T) {
	reg := SampleRegistry()
	a, _ := NewInstance(reg, SampleSword, 1)
	b, _ := NewInstance(reg, SampleSword, 1)
	if !a.IsMatch(b, true) {
		t.Fatalf("expected default swords to match")
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("expected equal fingerprints for matching instances")
	}

	b.SetProperty(PropOwner, RefValue(12))
	if a.IsMatch(b, true) {
		t.Fatalf("expected different owner references not to match")
	}
	if !a.IsMatch(b, false) {
		t.Fatalf("expected definition-only match to ignore properties")
	}

	wood, _ := NewInstance(reg, SampleWood, 1)
	if a.IsMatch(wood, false) || a.IsMatch(nil, false) {
		t.Fatalf("expected different definitions not to match")
	}
}

func TestCapacityAndStage(t *testing.T) {
	reg := SampleRegistry()
	rope, _ := NewInstance(reg, SampleRope, 2)
	if rope.Capacity() != 1 {
		t.Fatalf("expected capacity 1, got %d", rope.Capacity())
	}
	key, _ := NewInstance(reg, SampleKey, 1)
	if key.Capacity() != 0 {
		t.Fatalf("expected unstackable capacity 0, got %d", key.Capacity())
	}

	rope.Stage(5)
	if rope.Staged() != 2 {
		t.Fatalf("expected stage clamped to 2, got %d", rope.Staged())
	}
	rope.Stage(1)
	piece, err := rope.SplitStaged()
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	if piece.Count() != 1 || rope.Count() != 1 || rope.Staged() != 1 {
		t.Fatalf("expected staged split 1/1 with stage clamped, got piece=%d rope=%d stage=%d",
			piece.Count(), rope.Count(), rope.Staged())
	}
}
