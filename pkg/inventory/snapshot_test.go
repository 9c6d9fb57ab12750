package inventory

import "testing"

func TestSnapshotRoundTrip(t *testing.T) {
	reg := SampleRegistry()
	c := NewCollection(reg, "chest", WithReorder(true))
	c.AddNew(SampleWood, 3)
	potion := mustInstance(t, reg, SamplePotion, 2)
	potion.SetProperty(PropEnchant, StringValue("fire"))
	potion.DisableInteraction(4)
	potion.DisableCombine(SampleNail)
	if _, err := c.Insert(potion, 2, FailTransfer); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	data, err := c.MarshalSnapshot()
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	out := NewCollection(reg, "chest", WithReorder(true))
	if err := out.UnmarshalSnapshot(data); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}

	if out.Len() != 3 || out.SlotAt(1) != nil {
		t.Fatalf("expected slot layout preserved, got len=%d", out.Len())
	}
	if out.SlotAt(0).Definition() != SampleWood || out.SlotAt(0).Count() != 3 {
		t.Fatalf("unexpected slot 0 after round trip")
	}
	got := out.SlotAt(2)
	if got.Definition() != SamplePotion || got.Count() != 2 {
		t.Fatalf("unexpected slot 2 after round trip")
	}
	if !got.IsMatch(potion, true) {
		t.Fatalf("expected properties preserved")
	}
	if got.InteractionEnabled(4) || got.CombineEnabled(SampleNail) {
		t.Fatalf("expected disabled sets preserved")
	}
}

func TestRestoreCompactsAndSkipsUnknown(t *testing.T) {
	reg := SampleRegistry()
	ss := Snapshot{Slots: []*SlotRecord{
		{Definition: SampleWood, Count: 99},
		nil,
		{Definition: 999, Count: 1},
		{Definition: SampleNail, Count: 4},
	}}

	c := NewCollection(reg, "bag")
	c.Restore(ss)
	got := counts(c)
	if len(got) != 2 || got[0] != 20 || got[1] != 4 {
		t.Fatalf("expected [20 4] after compaction and clamping, got %v", got)
	}

	r := NewCollection(reg, "chest", WithReorder(true))
	r.Restore(ss)
	if r.Len() != 4 || r.SlotAt(1) != nil || r.SlotAt(2) != nil {
		t.Fatalf("expected unknown definition kept as an empty slot, got len=%d", r.Len())
	}
}

func TestRestoreDropsRecordsTheCollectionRejects(t *testing.T) {
	reg := SampleRegistry()
	ss := Snapshot{Slots: []*SlotRecord{
		{Definition: SampleWood, Count: 3},
		{Definition: SampleKey, Count: 1},
		{Definition: SampleKey, Count: 1},
		{Definition: SampleRope, Count: 2},
	}}

	tools := NewCollection(reg, "toolbox", WithCategories(CategoryTool, CategoryQuest))
	if dropped := tools.Restore(ss); dropped != 2 {
		t.Fatalf("expected 2 dropped records, got %d", dropped)
	}
	if tools.Len() != 2 || tools.Count(SampleKey, true) != 1 || tools.Contains(SampleWood) {
		t.Fatalf("expected [Key Rope], got len=%d keys=%d", tools.Len(), tools.Count(SampleKey, true))
	}

	strict := NewCollection(reg, "rack", WithCategories(CategoryTool), WithReorder(true))
	if dropped := strict.Restore(ss); dropped != 3 {
		t.Fatalf("expected 3 dropped records, got %d", dropped)
	}
	if strict.Len() != 4 || strict.SlotAt(0) != nil || strict.SlotAt(3).Definition() != SampleRope {
		t.Fatalf("expected rejected records kept as empty slots, got len=%d", strict.Len())
	}
}

func TestRestoreEmitsNoEvents(t *testing.T) {
	reg := SampleRegistry()
	rec := &EventRecorder{}
	c := NewCollection(reg, "bag", WithEventSink(rec))
	c.Restore(Snapshot{Slots: []*SlotRecord{{Definition: SampleWood, Count: 2}}})
	if len(rec.Events()) != 0 {
		t.Fatalf("expected silent restore, got %v", rec.Kinds())
	}
	if err := c.UnmarshalSnapshot([]byte("{")); err == nil {
		t.Fatalf("expected decode error for malformed input")
	}
}
