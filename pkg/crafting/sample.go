package crafting

import "github.com/gravitas-games/invcore/pkg/inventory"

// SampleRecipes returns recipes over inventory.SampleRegistry.
func SampleRecipes() *RecipeRegistry {
	reg := NewRecipeRegistry(inventory.SampleRegistry())
	for _, r := range []*Recipe{
		{
			ID:           "plank",
			Name:         "Plank",
			Category:     "carpentry",
			Ingredients:  []Ingredient{{Definition: inventory.SampleWood, Amount: 2}},
			Result:       inventory.SamplePlank,
			ResultAmount: 1,
		},
		{
			ID:       "braced-plank",
			Name:     "Braced plank",
			Category: "carpentry",
			Ingredients: []Ingredient{
				{Definition: inventory.SampleWood, Amount: 2, Slot: 0},
				{Definition: inventory.SampleNail, Amount: 3, Slot: 1},
			},
			Result:       inventory.SamplePlank,
			ResultAmount: 3,
			PinnedSlots:  true,
		},
		{
			ID:   "torch",
			Name: "Torch",
			Ingredients: []Ingredient{
				{Definition: inventory.SampleWood, Amount: 1},
				{Definition: inventory.SampleRope, Amount: 1, Tool: true},
			},
			Result:       inventory.SampleTorch,
			ResultAmount: 2,
		},
	} {
		_ = reg.Register(r) // sample recipes are known to be valid
	}
	return reg
}
