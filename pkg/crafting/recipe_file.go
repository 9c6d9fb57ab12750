package crafting

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/invcore/pkg/inventory"
)

// RecipeDocument is the on-disk layout of a recipe file.
type RecipeDocument struct {
	Recipes []Recipe `json:"recipes" yaml:"recipes"`
}

// ParseRecipes decodes a YAML recipe document into a new registry checked
// against catalog.
func ParseRecipes(data []byte, catalog inventory.Catalog) (*RecipeRegistry, error) {
	var doc RecipeDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse recipes: %w", err)
	}
	reg := NewRecipeRegistry(catalog)
	for i := range doc.Recipes {
		recipe := doc.Recipes[i]
		if reg.Lookup(recipe.ID) != nil {
			return nil, fmt.Errorf("recipe %q: duplicate id", recipe.ID)
		}
		if err := reg.Register(&recipe); err != nil {
			return nil, fmt.Errorf("recipe %q: %w", recipe.ID, err)
		}
	}
	return reg, nil
}

// LoadRecipeFile reads and parses a YAML recipe file.
func LoadRecipeFile(path string, catalog inventory.Catalog) (*RecipeRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}
	return ParseRecipes(data, catalog)
}
