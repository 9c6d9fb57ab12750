package crafting

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gravitas-games/invcore/pkg/inventory"
)

// RecipeID uniquely identifies a recipe.
type RecipeID string

// ErrRecipeUnsatisfied is returned when a collection's contents do not
// satisfy a recipe.
var ErrRecipeUnsatisfied = errors.New("crafting: recipe not satisfied by collection contents")

// Ingredient is one requirement of a recipe.
type Ingredient struct {
	Definition inventory.DefinitionID `json:"definition" yaml:"definition"`
	Amount     int                    `json:"amount" yaml:"amount"`
	// Slot is the staging slot the ingredient must occupy. Only used by
	// recipes with PinnedSlots.
	Slot int `json:"slot,omitempty" yaml:"slot,omitempty"`
	// Tool ingredients must be present but are not consumed.
	Tool bool `json:"tool,omitempty" yaml:"tool,omitempty"`
}

// Recipe converts ingredients held in a staging collection into a result.
type Recipe struct {
	ID           RecipeID               `json:"id" yaml:"id"`
	Name         string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Category     string                 `json:"category,omitempty" yaml:"category,omitempty"`
	Ingredients  []Ingredient           `json:"ingredients" yaml:"ingredients"`
	Result       inventory.DefinitionID `json:"result,omitempty" yaml:"result,omitempty"`
	ResultAmount int                    `json:"resultAmount,omitempty" yaml:"result_amount,omitempty"`
	PinnedSlots  bool                   `json:"pinnedSlots,omitempty" yaml:"pinned_slots,omitempty"`
}

// Contents is the read-only view of a collection that recipes are checked
// against.
type Contents interface {
	Len() int
	SlotAt(i int) *inventory.Instance
	Count(def inventory.DefinitionID, includeStacked bool) int
}

// Consumer is a collection ingredients can be removed from.
type Consumer interface {
	Contents
	ReduceAt(i, amount int) error
	DeleteAmount(def inventory.DefinitionID, amount int) (int, error)
}

// needs sums ingredient amounts per definition.
func (r *Recipe) needs(consumedOnly bool) map[inventory.DefinitionID]int {
	out := make(map[inventory.DefinitionID]int, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if consumedOnly && ing.Tool {
			continue
		}
		out[ing.Definition] += ing.Amount
	}
	return out
}

// CanBeCrafted reports whether the contents satisfy the recipe. Any held
// item the recipe does not ask for disqualifies the match. Unpinned recipes
// only compare totals per definition. Pinned recipes require every
// occupied slot to hold exactly the ingredient pinned there, in at least
// the pinned amount, and every pinned slot to be occupied.
func (r *Recipe) CanBeCrafted(c Contents) bool {
	if r == nil || c == nil {
		return false
	}
	need := r.needs(false)
	for i := 0; i < c.Len(); i++ {
		if s := c.SlotAt(i); s != nil {
			if _, ok := need[s.Definition()]; !ok {
				return false
			}
		}
	}

	if !r.PinnedSlots {
		for def, amount := range need {
			if c.Count(def, true) < amount {
				return false
			}
		}
		return true
	}

	pinned := make(map[int]Ingredient, len(r.Ingredients))
	maxSlot := c.Len() - 1
	for _, ing := range r.Ingredients {
		pinned[ing.Slot] = ing
		maxSlot = max(maxSlot, ing.Slot)
	}
	for i := 0; i <= maxSlot; i++ {
		s := c.SlotAt(i)
		ing, ok := pinned[i]
		if s == nil {
			if ok {
				return false
			}
			continue
		}
		if !ok || ing.Definition != s.Definition() || ing.Amount > s.Count() {
			return false
		}
	}
	return true
}

// ConsumeIngredients removes the recipe's ingredients from the collection.
// The recipe is checked first and nothing is removed when it is not
// satisfied. Tool ingredients are left in place.
func ConsumeIngredients(c Consumer, r *Recipe) error {
	if !r.CanBeCrafted(c) {
		return ErrRecipeUnsatisfied
	}

	if r.PinnedSlots {
		ings := make([]Ingredient, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			if !ing.Tool {
				ings = append(ings, ing)
			}
		}
		// highest slot first so earlier indices stay valid if a slot empties
		sort.Slice(ings, func(i, j int) bool { return ings[i].Slot > ings[j].Slot })
		for _, ing := range ings {
			if err := c.ReduceAt(ing.Slot, ing.Amount); err != nil {
				return fmt.Errorf("failed to consume slot %d: %w", ing.Slot, err)
			}
		}
		return nil
	}

	for def, amount := range r.needs(true) {
		n, err := c.DeleteAmount(def, amount)
		if err != nil {
			return fmt.Errorf("failed to consume %d: %w", def, err)
		}
		if n != amount {
			return fmt.Errorf("failed to consume %d: removed %d of %d", def, n, amount)
		}
	}
	return nil
}
