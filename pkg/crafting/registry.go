package crafting

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gravitas-games/invcore/pkg/inventory"
)

// RecipeRegistry stores recipes with lookup by result and thread-safe access.
type RecipeRegistry struct {
	mu         sync.RWMutex
	catalog    inventory.Catalog
	recipes    map[RecipeID]*Recipe
	byCategory map[string][]RecipeID
	byResult   map[inventory.DefinitionID][]RecipeID
}

// NewRecipeRegistry creates an empty recipe registry. When catalog is not
// nil, registered recipes are checked and normalised against it.
func NewRecipeRegistry(catalog inventory.Catalog) *RecipeRegistry {
	return &RecipeRegistry{
		catalog:    catalog,
		recipes:    make(map[RecipeID]*Recipe),
		byCategory: make(map[string][]RecipeID),
		byResult:   make(map[inventory.DefinitionID][]RecipeID),
	}
}

// Register adds or updates a recipe in the registry.
// Returns an error if the recipe is invalid.
func (r *RecipeRegistry) Register(recipe *Recipe) error {
	if recipe == nil {
		return errors.New("recipe cannot be nil")
	}
	if recipe.ID == "" {
		return errors.New("recipe ID cannot be empty")
	}
	if len(recipe.Ingredients) == 0 {
		return errors.New("recipe needs at least one ingredient")
	}

	slots := make(map[int]struct{}, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		if ing.Amount <= 0 {
			return fmt.Errorf("ingredient %d: amount must be positive", i)
		}
		if r.catalog != nil {
			def, ok := r.catalog.Lookup(ing.Definition)
			if !ok {
				return fmt.Errorf("ingredient %d: %w", i, inventory.ErrUnknownDefinition)
			}
			if !def.Stackable {
				recipe.Ingredients[i].Amount = 1
			}
		}
		if recipe.PinnedSlots {
			if ing.Slot < 0 {
				return fmt.Errorf("ingredient %d: slot cannot be negative", i)
			}
			if _, dup := slots[ing.Slot]; dup {
				return fmt.Errorf("ingredient %d: slot %d pinned twice", i, ing.Slot)
			}
			slots[ing.Slot] = struct{}{}
		}
	}

	if recipe.Result != 0 && r.catalog != nil {
		if _, ok := r.catalog.Lookup(recipe.Result); !ok {
			return fmt.Errorf("result: %w", inventory.ErrUnknownDefinition)
		}
	}
	// Result can be zero for recipes whose completion is handled by the host
	if recipe.Result != 0 && recipe.ResultAmount <= 0 {
		recipe.ResultAmount = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.recipes[recipe.ID]; exists {
		r.removeIndices(existing)
	}
	r.recipes[recipe.ID] = recipe
	if recipe.Category != "" {
		r.byCategory[recipe.Category] = append(r.byCategory[recipe.Category], recipe.ID)
	}
	if recipe.Result != 0 {
		r.byResult[recipe.Result] = append(r.byResult[recipe.Result], recipe.ID)
	}
	return nil
}

// removeIndices removes a recipe from secondary indices (caller must hold lock).
func (r *RecipeRegistry) removeIndices(recipe *Recipe) {
	if recipe.Category != "" {
		r.byCategory[recipe.Category] = removeRecipeID(r.byCategory[recipe.Category], recipe.ID)
		if len(r.byCategory[recipe.Category]) == 0 {
			delete(r.byCategory, recipe.Category)
		}
	}
	if recipe.Result != 0 {
		r.byResult[recipe.Result] = removeRecipeID(r.byResult[recipe.Result], recipe.ID)
		if len(r.byResult[recipe.Result]) == 0 {
			delete(r.byResult, recipe.Result)
		}
	}
}

func removeRecipeID(ids []RecipeID, target RecipeID) []RecipeID {
	result := make([]RecipeID, 0, len(ids))
	for _, id := range ids {
		if id != target {
			result = append(result, id)
		}
	}
	return result
}

// Lookup retrieves a recipe by ID. Returns nil if not found.
func (r *RecipeRegistry) Lookup(id RecipeID) *Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recipes[id]
}

// ByCategory returns all recipe IDs in a category.
func (r *RecipeRegistry) ByCategory(category string) []RecipeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RecipeID(nil), r.byCategory[category]...)
}

// ByResult returns all recipe IDs that produce a given definition.
func (r *RecipeRegistry) ByResult(def inventory.DefinitionID) []RecipeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RecipeID(nil), r.byResult[def]...)
}

// All returns every recipe sorted by ID.
func (r *RecipeRegistry) All() []*Recipe {
	r.mu.RLock()
	result := make([]*Recipe, 0, len(r.recipes))
	for _, recipe := range r.recipes {
		result = append(result, recipe)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Match returns the first recipe, in ID order, that the contents satisfy.
func (r *RecipeRegistry) Match(c Contents) *Recipe {
	for _, recipe := range r.All() {
		if recipe.CanBeCrafted(c) {
			return recipe
		}
	}
	return nil
}

// Len returns the number of recipes in the registry.
func (r *RecipeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recipes)
}

// Remove deletes a recipe from the registry. Returns true if recipe existed.
func (r *RecipeRegistry) Remove(id RecipeID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	recipe, exists := r.recipes[id]
	if !exists {
		return false
	}
	r.removeIndices(recipe)
	delete(r.recipes, id)
	return true
}
