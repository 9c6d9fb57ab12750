package inventory

import "testing"

func TestRegistryLookupAndExport(t *testing.T) {
	reg := SampleRegistry()
	def, ok := reg.LookupName("  wOOd ")
	if !ok || def.ID != SampleWood {
		t.Fatalf("expected case-insensitive name lookup, got %+v (ok=%v)", def, ok)
	}
	out := reg.Export()
	if len(out) != reg.Len() {
		t.Fatalf("expected %d exported definitions, got %d", reg.Len(), len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].ID >= out[i].ID {
			t.Fatalf("expected export sorted by id")
		}
	}
}

func TestRegistryRejectsConflicts(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(ItemDefinition{ID: 0, Name: "zero"}); err == nil {
		t.Fatalf("expected error for non-positive id")
	}
	if err := reg.Register(ItemDefinition{ID: 1, Name: "Stone"}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if err := reg.Register(ItemDefinition{ID: 2, Name: "stone"}); err == nil {
		t.Fatalf("expected error for name owned by another definition")
	}
	if err := reg.Register(ItemDefinition{ID: 3, Name: "Bad", Properties: []PropertyDef{{ID: 1}, {ID: 1}}}); err == nil {
		t.Fatalf("expected error for duplicate property ids")
	}
	// re-registering the same id may rename it
	if err := reg.Register(ItemDefinition{ID: 1, Name: "Pebble"}); err != nil {
		t.Fatalf("unexpected re-register error: %v", err)
	}
	if _, ok := reg.LookupName("stone"); ok {
		t.Fatalf("expected old name to be released")
	}
	def, _ := reg.Lookup(1)
	if def.MaxStack != 1 {
		t.Fatalf("expected MaxStack normalised to 1, got %d", def.MaxStack)
	}
}

func TestRegistrySuggest(t *testing.T) {
	reg := SampleRegistry()
	got := reg.Suggest("wod", 3)
	if len(got) == 0 || got[0] != "Wood" {
		t.Fatalf("expected Wood as nearest suggestion, got %v", got)
	}
	if got := reg.Suggest("zzzzzzzz", 3); len(got) != 0 {
		t.Fatalf("expected no suggestions for distant names, got %v", got)
	}
}

func TestParseCatalog(t *testing.T) {
	data := []byte(`
items:
  - id: 1
    name: Wood
    stackable: true
    max_stack: 20
    category: 1
  - id: 2
    name: Sword
    properties:
      - id: 1
        name: durability
        default: {kind: int, int: 100}
`)
	reg, err := ParseCatalog(data)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	wood, ok := reg.Lookup(1)
	if !ok || !wood.Stackable || wood.MaxStack != 20 || wood.Category != 1 {
		t.Fatalf("unexpected wood definition: %+v", wood)
	}
	sword, _ := reg.Lookup(2)
	if sword.StackLimit() != 1 {
		t.Fatalf("expected sword stack limit 1, got %d", sword.StackLimit())
	}
	if len(sword.Properties) != 1 || sword.Properties[0].Default != IntValue(100) {
		t.Fatalf("unexpected sword properties: %+v", sword.Properties)
	}

	if _, err := ParseCatalog([]byte("items:\n  - id: 1\n  - id: 1\n")); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if _, err := ParseCatalog([]byte("items:\n  - id: 1\n    properties:\n      - id: 1\n")); err == nil {
		t.Fatalf("expected error for property without kind")
	}
}
