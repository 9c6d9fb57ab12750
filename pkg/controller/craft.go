package controller

import (
	"fmt"

	"github.com/gravitas-games/invcore/pkg/crafting"
	"github.com/gravitas-games/invcore/pkg/inventory"
)

func (c *Controller) stage(id string) (*inventory.Collection, error) {
	col, err := c.Collection(id)
	if err != nil {
		return nil, err
	}
	if !col.IsCraftingStage() {
		return nil, fmt.Errorf("%w: %s", ErrNotStaging, id)
	}
	return col, nil
}

// CraftableRecipe returns the first recipe the staging collection
// satisfies, or nil. The answer is cached until the stage changes.
func (c *Controller) CraftableRecipe(stagingID string) (*crafting.Recipe, error) {
	col, err := c.stage(stagingID)
	if err != nil {
		return nil, err
	}
	if c.dirty[stagingID] {
		c.craftable[stagingID] = c.recipes.Match(col)
		c.dirty[stagingID] = false
	}
	return c.craftable[stagingID], nil
}

// Craft consumes the recipe's ingredients from the staging collection and
// adds its result to the output collection. The output is checked first on
// a copy, so a craft whose result would not fit changes nothing.
func (c *Controller) Craft(stagingID string, recipeID crafting.RecipeID, outputID string) (inventory.Placement, error) {
	none := inventory.Placement{Slot: -1}
	col, err := c.stage(stagingID)
	if err != nil {
		return none, err
	}
	out, err := c.Collection(outputID)
	if err != nil {
		return none, err
	}
	recipe := c.recipes.Lookup(recipeID)
	if recipe == nil {
		return none, fmt.Errorf("%w: %s", ErrUnknownRecipe, recipeID)
	}
	if !recipe.CanBeCrafted(col) {
		return none, crafting.ErrRecipeUnsatisfied
	}

	if recipe.Result != 0 {
		var trial *inventory.Collection
		if out == col {
			trial = col.Clone()
			if err := crafting.ConsumeIngredients(trial, recipe); err != nil {
				return none, err
			}
		} else {
			trial = out.Clone()
		}
		if _, err := trial.AddNew(recipe.Result, recipe.ResultAmount); err != nil {
			c.l.WithError(err).Debugf("Unable to fit result of recipe [%s] into [%s].", recipeID, outputID)
			return none, err
		}
	}

	c.l.Debugf("Attempting to craft recipe [%s] from [%s] into [%s].", recipeID, stagingID, outputID)
	if err := crafting.ConsumeIngredients(col, recipe); err != nil {
		c.l.WithError(err).Errorf("Unable to consume ingredients of recipe [%s].", recipeID)
		return none, err
	}
	p := none
	if recipe.Result != 0 {
		p, err = out.AddNew(recipe.Result, recipe.ResultAmount)
	}
	c.settle()
	if err != nil {
		c.l.WithError(err).Errorf("Unable to add result of recipe [%s] to [%s].", recipeID, outputID)
		return p, err
	}
	c.l.Debugf("Crafted [%d] of item [%d] with recipe [%s].", recipe.ResultAmount, recipe.Result, recipeID)
	return p, nil
}
