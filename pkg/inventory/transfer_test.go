package inventory

import (
	"errors"
	"testing"
)

func TestTransferDrainsStacksInOrder(t *testing.T) {
	reg := SampleRegistry()
	a := NewCollection(reg, "a")
	a.Restore(Snapshot{Slots: []*SlotRecord{
		{Definition: SampleWood, Count: 3},
		{Definition: SampleWood, Count: 2},
	}})
	b := NewCollection(reg, "b")

	res, err := b.Transfer(a, TransferRequest{Definition: SampleWood, Amount: 4})
	if err != nil {
		t.Fatalf("unexpected transfer error: %v", err)
	}
	if res.Moved != 4 || res.Shortfall != 0 {
		t.Fatalf("expected 4 moved with no shortfall, got %+v", res)
	}
	if b.Len() != 1 || b.SlotAt(0).Count() != 4 {
		t.Fatalf("expected a single stack of 4 in b, got %v", counts(b))
	}
	if a.Len() != 1 || a.SlotAt(0).Count() != 1 {
		t.Fatalf("expected a single unit left in a, got %v", counts(a))
	}
}

func TestTransferReportsShortfall(t *testing.T) {
	reg := SampleRegistry()
	a := NewCollection(reg, "a")
	a.AddNew(SampleNail, 2)
	b := NewCollection(reg, "b")

	res, err := b.Transfer(a, TransferRequest{Definition: SampleNail, Amount: 5})
	if err != nil {
		t.Fatalf("unexpected transfer error: %v", err)
	}
	if res.Moved != 2 || res.Shortfall != 3 {
		t.Fatalf("expected 2 moved and 3 short, got %+v", res)
	}
	if a.Len() != 0 {
		t.Fatalf("expected source emptied, got %v", counts(a))
	}
}

func TestTransferConservesUnitsWhenFull(t *testing.T) {
	reg := SampleRegistry()
	a := NewCollection(reg, "a")
	a.AddNew(SampleWood, 5)
	b := NewCollection(reg, "b", WithMaxSlots(1))
	b.AddNew(SampleNail, 1)

	res, err := b.Transfer(a, TransferRequest{Definition: SampleWood, Amount: 3})
	if !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
	if res.Moved != 0 || res.Shortfall != 3 {
		t.Fatalf("expected nothing moved, got %+v", res)
	}
	if a.Count(SampleWood, true) != 5 || a.Len() != 1 {
		t.Fatalf("expected source restored to one stack of 5, got %v", counts(a))
	}
	if a.TotalCount(true)+b.TotalCount(true) != 6 {
		t.Fatalf("expected units conserved across collections")
	}
}

func TestTransferChecksRulesFirst(t *testing.T) {
	reg := SampleRegistry()
	a := NewCollection(reg, "a")
	a.AddNew(SampleWood, 3)
	a.AddNew(SampleKey, 1)

	tools := NewCollection(reg, "tools", WithCategories(CategoryTool))
	if _, err := tools.Transfer(a, TransferRequest{Definition: SampleWood, Amount: 1}); !errors.Is(err, ErrCategoryBlocked) {
		t.Fatalf("expected ErrCategoryBlocked, got %v", err)
	}
	if a.Count(SampleWood, true) != 3 {
		t.Fatalf("expected source untouched after rejection")
	}

	keys := NewCollection(reg, "keys")
	keys.AddNew(SampleKey, 1)
	if _, err := keys.Transfer(a, TransferRequest{Definition: SampleKey, Amount: 1}); !errors.Is(err, ErrDuplicateUnstackable) {
		t.Fatalf("expected ErrDuplicateUnstackable, got %v", err)
	}
	if _, err := a.Transfer(a, TransferRequest{Definition: SampleWood, Amount: 1}); !errors.Is(err, ErrSameCollection) {
		t.Fatalf("expected ErrSameCollection, got %v", err)
	}
	if _, err := keys.Transfer(a, TransferRequest{Definition: 999, Amount: 1}); !errors.Is(err, ErrUnknownDefinition) {
		t.Fatalf("expected ErrUnknownDefinition, got %v", err)
	}
}

func TestTransferMatchingProperties(t *testing.T) {
	reg := SampleRegistry()
	a := NewCollection(reg, "a")
	a.AddNew(SamplePotion, 2)
	fire := mustInstance(t, reg, SamplePotion, 3)
	fire.SetProperty(PropEnchant, StringValue("fire"))
	a.Add(fire)
	b := NewCollection(reg, "b")

	res, err := b.Transfer(a, TransferRequest{Like: fire, MatchProperties: true, Amount: 5})
	if err != nil {
		t.Fatalf("unexpected transfer error: %v", err)
	}
	if res.Moved != 3 || res.Shortfall != 2 {
		t.Fatalf("expected only the enchanted stack moved, got %+v", res)
	}
	v, _ := b.SlotAt(0).Property(PropEnchant)
	if v != StringValue("fire") {
		t.Fatalf("expected moved potions to keep their enchant, got %+v", v)
	}
	if a.Count(SamplePotion, true) != 2 {
		t.Fatalf("expected plain potions left behind")
	}
}

func TestTransferUnstackableMovesOne(t *testing.T) {
	reg := SampleRegistry()
	a := NewCollection(reg, "a")
	a.AddNew(SampleSword, 1)
	b := NewCollection(reg, "b")

	res, err := b.Transfer(a, TransferRequest{Definition: SampleSword, Amount: 4})
	if err != nil {
		t.Fatalf("unexpected transfer error: %v", err)
	}
	if res.Moved != 1 || !b.Contains(SampleSword) || a.Contains(SampleSword) {
		t.Fatalf("expected the sword to change hands, got %+v", res)
	}
}
