package crafting

import (
	"errors"
	"testing"

	"github.com/gravitas-games/invcore/pkg/inventory"
)

func stage(t *testing.T, recs ...*inventory.SlotRecord) *inventory.Collection {
	t.Helper()
	c := inventory.NewCollection(inventory.SampleRegistry(), "stage", inventory.AsCraftingStage())
	c.Restore(inventory.Snapshot{Slots: recs})
	return c
}

func rec(def inventory.DefinitionID, count int) *inventory.SlotRecord {
	return &inventory.SlotRecord{Definition: def, Count: count}
}

func TestPinnedRecipeShortfall(t *testing.T) {
	recipe := SampleRecipes().Lookup("braced-plank")
	if recipe == nil {
		t.Fatalf("expected sample recipe braced-plank")
	}

	short := stage(t, rec(inventory.SampleWood, 2), rec(inventory.SampleNail, 2))
	if recipe.CanBeCrafted(short) {
		t.Fatalf("expected shortfall at slot 1 to fail the recipe")
	}

	exact := stage(t, rec(inventory.SampleWood, 2), rec(inventory.SampleNail, 3))
	if !recipe.CanBeCrafted(exact) {
		t.Fatalf("expected exact pinned layout to pass")
	}
	// pure predicate: same answer twice
	if !recipe.CanBeCrafted(exact) {
		t.Fatalf("expected repeated check to agree")
	}
}

func TestPinnedRecipeLayout(t *testing.T) {
	recipe := SampleRecipes().Lookup("braced-plank")

	swapped := stage(t, rec(inventory.SampleNail, 3), rec(inventory.SampleWood, 2))
	if recipe.CanBeCrafted(swapped) {
		t.Fatalf("expected swapped slots to fail")
	}
	gap := stage(t, rec(inventory.SampleWood, 2), nil, rec(inventory.SampleNail, 3))
	if recipe.CanBeCrafted(gap) {
		t.Fatalf("expected empty pinned slot to fail")
	}
	missing := stage(t, rec(inventory.SampleWood, 2))
	if recipe.CanBeCrafted(missing) {
		t.Fatalf("expected missing pinned ingredient to fail")
	}
	extra := stage(t, rec(inventory.SampleWood, 5), rec(inventory.SampleNail, 9))
	if !recipe.CanBeCrafted(extra) {
		t.Fatalf("expected surplus amounts to pass")
	}
}

func TestUnpinnedRecipeIgnoresSlots(t *testing.T) {
	recipe := SampleRecipes().Lookup("torch")

	ok := stage(t, nil, rec(inventory.SampleRope, 1), nil, rec(inventory.SampleWood, 1))
	if !recipe.CanBeCrafted(ok) {
		t.Fatalf("expected unpinned recipe to ignore positions")
	}
	stray := stage(t, rec(inventory.SampleRope, 1), rec(inventory.SampleWood, 1), rec(inventory.SampleKey, 1))
	if recipe.CanBeCrafted(stray) {
		t.Fatalf("expected unrelated item to disqualify the recipe")
	}
	if recipe.CanBeCrafted(stage(t, rec(inventory.SampleWood, 3))) {
		t.Fatalf("expected missing tool to fail")
	}
}

func TestConsumeIngredients(t *testing.T) {
	recipes := SampleRecipes()

	c := stage(t, rec(inventory.SampleWood, 3), rec(inventory.SampleNail, 3))
	if err := ConsumeIngredients(c, recipes.Lookup("braced-plank")); err != nil {
		t.Fatalf("unexpected consume error: %v", err)
	}
	if c.Len() != 1 || c.SlotAt(0).Count() != 1 {
		t.Fatalf("expected one wood left in slot 0, got len=%d", c.Len())
	}

	torch := stage(t, rec(inventory.SampleRope, 2), rec(inventory.SampleWood, 1))
	if err := ConsumeIngredients(torch, recipes.Lookup("torch")); err != nil {
		t.Fatalf("unexpected consume error: %v", err)
	}
	if torch.Count(inventory.SampleRope, true) != 2 || torch.Contains(inventory.SampleWood) {
		t.Fatalf("expected wood consumed and rope kept")
	}

	short := stage(t, rec(inventory.SampleWood, 1))
	err := ConsumeIngredients(short, recipes.Lookup("plank"))
	if !errors.Is(err, ErrRecipeUnsatisfied) {
		t.Fatalf("expected ErrRecipeUnsatisfied, got %v", err)
	}
	if short.Count(inventory.SampleWood, true) != 1 {
		t.Fatalf("expected nothing consumed on failure")
	}
}

func TestRecipeRegistry(t *testing.T) {
	reg := NewRecipeRegistry(inventory.SampleRegistry())
	if err := reg.Register(&Recipe{ID: "x"}); err == nil {
		t.Fatalf("expected error for recipe without ingredients")
	}
	err := reg.Register(&Recipe{ID: "x", Ingredients: []Ingredient{{Definition: 999, Amount: 1}}})
	if !errors.Is(err, inventory.ErrUnknownDefinition) {
		t.Fatalf("expected ErrUnknownDefinition, got %v", err)
	}
	err = reg.Register(&Recipe{ID: "x", PinnedSlots: true, Ingredients: []Ingredient{
		{Definition: inventory.SampleWood, Amount: 1, Slot: 0},
		{Definition: inventory.SampleNail, Amount: 1, Slot: 0},
	}})
	if err == nil {
		t.Fatalf("expected error for slot pinned twice")
	}

	sword := &Recipe{
		ID:          "reforge",
		Ingredients: []Ingredient{{Definition: inventory.SampleSword, Amount: 4}},
		Result:      inventory.SampleSword,
	}
	if err := reg.Register(sword); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if sword.Ingredients[0].Amount != 1 || sword.ResultAmount != 1 {
		t.Fatalf("expected unstackable amount forced to 1 and result amount defaulted, got %+v", sword)
	}
	if got := reg.ByResult(inventory.SampleSword); len(got) != 1 || got[0] != "reforge" {
		t.Fatalf("unexpected result index: %v", got)
	}
	if !reg.Remove("reforge") || reg.Len() != 0 || len(reg.ByResult(inventory.SampleSword)) != 0 {
		t.Fatalf("expected recipe and indices removed")
	}
}

func TestRegistryMatchAndOrder(t *testing.T) {
	recipes := SampleRecipes()
	all := recipes.All()
	if len(all) != 3 || all[0].ID != "braced-plank" || all[2].ID != "torch" {
		t.Fatalf("expected recipes sorted by id, got %d", len(all))
	}
	if got := recipes.ByCategory("carpentry"); len(got) != 2 {
		t.Fatalf("expected 2 carpentry recipes, got %v", got)
	}

	match := recipes.Match(stage(t, rec(inventory.SampleWood, 2)))
	if match == nil || match.ID != "plank" {
		t.Fatalf("expected plank to match, got %+v", match)
	}
	if recipes.Match(stage(t, rec(inventory.SampleKey, 1))) != nil {
		t.Fatalf("expected no match for a key")
	}
}

func TestParseRecipes(t *testing.T) {
	data := []byte(`
recipes:
  - id: braced
    pinned_slots: true
    result: 3
    result_amount: 2
    ingredients:
      - {definition: 1, amount: 2, slot: 0}
      - {definition: 2, amount: 3, slot: 1}
`)
	reg, err := ParseRecipes(data, inventory.SampleRegistry())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	r := reg.Lookup("braced")
	if r == nil || !r.PinnedSlots || r.ResultAmount != 2 || r.Ingredients[1].Slot != 1 {
		t.Fatalf("unexpected parsed recipe: %+v", r)
	}

	dup := []byte("recipes:\n  - {id: a, ingredients: [{definition: 1, amount: 1}]}\n  - {id: a, ingredients: [{definition: 1, amount: 1}]}\n")
	if _, err := ParseRecipes(dup, nil); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
