// Package controller orchestrates a player collection and any number of
// secondary collections: adding and removing items, moving them between
// collections, selection, combining and crafting. Every change is published
// on the controller's event bus.
package controller

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/invcore/pkg/crafting"
	"github.com/gravitas-games/invcore/pkg/inventory"
)

// PlayerID is the ID of the default player collection.
const PlayerID = "player"

var (
	// ErrUnknownCollection is returned for collection IDs the controller
	// does not manage.
	ErrUnknownCollection = errors.New("controller: unknown collection")
	// ErrDuplicateCollection is returned when a collection ID is registered twice.
	ErrDuplicateCollection = errors.New("controller: collection already registered")
	// ErrUnknownRecipe is returned for recipe IDs missing from the registry.
	ErrUnknownRecipe = errors.New("controller: unknown recipe")
	// ErrNotStaging is returned when crafting from a collection that is not
	// a crafting stage.
	ErrNotStaging = errors.New("controller: collection is not a crafting stage")
)

// Controller owns the collections of one player. It is not safe for
// concurrent use.
type Controller struct {
	catalog inventory.Catalog
	recipes *crafting.RecipeRegistry
	l       logrus.FieldLogger
	bus     inventory.EventBus
	rules   *RuleTable

	player      *inventory.Collection
	collections map[string]*inventory.Collection
	order       []string

	selection *Selection
	// selectionStale is set when the selected instance may have left its
	// collection.
	selectionStale bool

	dirty     map[string]bool
	craftable map[string]*crafting.Recipe
}

// Option configures the controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.l = l
		}
	}
}

// WithEventBus sets the bus events are published on.
func WithEventBus(bus inventory.EventBus) Option {
	return func(c *Controller) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// WithCombineRules sets the table consulted by Combine.
func WithCombineRules(rules *RuleTable) Option {
	return func(c *Controller) {
		if rules != nil {
			c.rules = rules
		}
	}
}

// WithPlayer replaces the default player collection.
func WithPlayer(player *inventory.Collection) Option {
	return func(c *Controller) {
		if player != nil {
			c.player = player
		}
	}
}

// New creates a controller. Without WithPlayer an unbounded player
// collection with ID PlayerID is created. recipes may be nil.
func New(catalog inventory.Catalog, recipes *crafting.RecipeRegistry, opts ...Option) *Controller {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Controller{
		catalog:     catalog,
		recipes:     recipes,
		l:           discard,
		bus:         inventory.NewNullEventBus(),
		rules:       NewRuleTable(),
		collections: make(map[string]*inventory.Collection),
		dirty:       make(map[string]bool),
		craftable:   make(map[string]*crafting.Recipe),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.recipes == nil {
		c.recipes = crafting.NewRecipeRegistry(catalog)
	}
	if c.player == nil {
		c.player = inventory.NewCollection(catalog, PlayerID)
	}
	c.register(c.player)
	return c
}

// Bus returns the event bus.
func (c *Controller) Bus() inventory.EventBus { return c.bus }

// Catalog returns the item catalog.
func (c *Controller) Catalog() inventory.Catalog { return c.catalog }

// Recipes returns the recipe registry.
func (c *Controller) Recipes() *crafting.RecipeRegistry { return c.recipes }

// Rules returns the combine rule table.
func (c *Controller) Rules() *RuleTable { return c.rules }

// Player returns the player collection.
func (c *Controller) Player() *inventory.Collection { return c.player }

// AddCollection registers a secondary collection. The controller becomes
// its event sink.
func (c *Controller) AddCollection(col *inventory.Collection) error {
	if col == nil {
		return errors.New("controller: collection cannot be nil")
	}
	if _, exists := c.collections[col.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCollection, col.ID())
	}
	c.register(col)
	c.l.Debugf("Registered collection [%s] with [%d] slots.", col.ID(), col.MaxSlots())
	return nil
}

func (c *Controller) register(col *inventory.Collection) {
	col.SetEventSink(&forwarder{ctl: c, stage: col.IsCraftingStage()})
	c.collections[col.ID()] = col
	c.order = append(c.order, col.ID())
	if col.IsCraftingStage() {
		c.dirty[col.ID()] = true
	}
}

// Collection returns the managed collection with the given ID.
func (c *Controller) Collection(id string) (*inventory.Collection, error) {
	col, ok := c.collections[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, id)
	}
	return col, nil
}

// Collections returns the managed collection IDs in registration order.
func (c *Controller) Collections() []string {
	return append([]string(nil), c.order...)
}

// Locate returns the collection holding the instance and its slot.
func (c *Controller) Locate(id inventory.InstanceID) (*inventory.Collection, int, bool) {
	for _, cid := range c.order {
		col := c.collections[cid]
		if inst, ok := col.Instance(id); ok {
			return col, col.IndexOf(inst), true
		}
	}
	return nil, -1, false
}

// AddItem creates amount units of the definition in the target collection.
// On inventory.ErrFull the placement reports the units that got in.
func (c *Controller) AddItem(def inventory.DefinitionID, amount int, target string) (inventory.Placement, error) {
	col, err := c.Collection(target)
	if err != nil {
		return inventory.Placement{Slot: -1}, err
	}
	c.l.Debugf("Attempting to add [%d] of item [%d] to collection [%s].", amount, def, target)
	p, err := col.AddNew(def, amount)
	c.settle()
	if err != nil {
		c.l.WithError(err).Debugf("Added [%d] of [%d] requested units of item [%d] to collection [%s].", p.Added, amount, def, target)
		return p, err
	}
	c.l.Debugf("Added [%d] of item [%d] to collection [%s].", amount, def, target)
	return p, nil
}

// RemoveItem removes up to amount units of the definition from the
// collection and returns how many were removed.
func (c *Controller) RemoveItem(def inventory.DefinitionID, amount int, collection string) (int, error) {
	col, err := c.Collection(collection)
	if err != nil {
		return 0, err
	}
	n, err := col.DeleteAmount(def, amount)
	c.settle()
	if err != nil {
		return n, err
	}
	c.l.Debugf("Removed [%d] of item [%d] from collection [%s].", n, def, collection)
	return n, nil
}

// RemoveInstance removes an instance from whichever collection holds it.
func (c *Controller) RemoveInstance(id inventory.InstanceID) error {
	col, _, ok := c.Locate(id)
	if !ok {
		return inventory.ErrNotFound
	}
	inst, _ := col.Instance(id)
	err := col.Delete(inst)
	c.settle()
	return err
}

// Transfer moves units between two managed collections.
func (c *Controller) Transfer(from, to string, req inventory.TransferRequest) (inventory.TransferResult, error) {
	src, err := c.Collection(from)
	if err != nil {
		return inventory.TransferResult{Requested: req.Amount}, err
	}
	dst, err := c.Collection(to)
	if err != nil {
		return inventory.TransferResult{Requested: req.Amount}, err
	}
	c.l.Debugf("Attempting to transfer [%d] of item [%d] from [%s] to [%s].", req.Amount, req.Definition, from, to)
	res, err := dst.Transfer(src, req)
	c.settle()
	if err != nil {
		c.l.WithError(err).Debugf("Transferred [%d] of [%d] units from [%s] to [%s].", res.Moved, res.Requested, from, to)
		return res, err
	}
	if res.Shortfall > 0 {
		c.l.Debugf("Transfer from [%s] to [%s] short by [%d].", from, to, res.Shortfall)
	}
	return res, nil
}

// MoveInstance places an instance at index in the target collection.
// Within one collection this is a move of the whole instance. Across
// collections an instance with a staged quantity only sends that many units
// and keeps the rest; otherwise it leaves its source entirely. A swapped-out resident goes back to the slot
// the instance came from, or is added to the source when that slot is still
// held. A swap is rejected with inventory.ErrSwapRejected when the source
// could not take the resident back, for instance because it already holds
// another copy of an unstackable resident.
func (c *Controller) MoveInstance(id inventory.InstanceID, to string, index int, behavior inventory.OccupiedBehavior) (inventory.Placement, error) {
	src, from, ok := c.Locate(id)
	if !ok {
		return inventory.Placement{Slot: -1}, inventory.ErrNotFound
	}
	dst, err := c.Collection(to)
	if err != nil {
		return inventory.Placement{Slot: -1}, err
	}
	inst := src.SlotAt(from)
	if src == dst {
		p, err := dst.Move(from, index, behavior)
		c.settle()
		return p, err
	}
	amount := inst.Count()
	if staged := inst.Staged(); staged > 0 {
		amount = staged
	}
	whole := amount == inst.Count()

	var leaving *inventory.Instance
	if whole {
		leaving = inst
	}
	resident := dst.SlotAt(index)
	mergeable := resident != nil && resident.Capacity() > 0 && resident.IsMatch(inst, true)
	if resident != nil && !mergeable && behavior == inventory.SwapItems {
		if err := src.Accepts(resident, leaving); err != nil {
			c.l.Debugf("Rejected swap of [%s] with [%s]: %v.", inst.ID(), resident.ID(), err)
			return inventory.Placement{Slot: -1}, fmt.Errorf("%w: %v", inventory.ErrSwapRejected, err)
		}
	}
	var replaced *inventory.Instance
	if resident != nil && !mergeable && (behavior == inventory.SwapItems || behavior == inventory.Overwrite) {
		replaced = resident
	}
	if err := dst.Accepts(inst, replaced); err != nil {
		return inventory.Placement{Slot: -1}, err
	}

	moving, err := src.Take(inst, amount)
	if err != nil {
		return inventory.Placement{Slot: -1}, err
	}
	if !whole {
		inst.Stage(0)
	}
	p, err := dst.Insert(moving, index, behavior)
	if moving.Count() > 0 && dst.IndexOf(moving) < 0 {
		returnTo(src, moving, from)
	}
	if p.Displaced != nil {
		returnTo(src, p.Displaced, from)
	}
	c.settle()
	if err != nil {
		c.l.WithError(err).Debugf("Unable to move [%s] to slot [%d] of [%s].", id, index, to)
		return p, err
	}
	c.l.Debugf("Moved [%d] units of [%s] from slot [%d] of [%s] to slot [%d] of [%s].", amount, id, from, src.ID(), p.Slot, to)
	return p, nil
}

// returnTo puts inst back into col, at slot when positions are kept.
func returnTo(col *inventory.Collection, inst *inventory.Instance, slot int) {
	if col.CanReorder() && col.SlotAt(slot) == nil {
		if _, err := col.Insert(inst, slot, inventory.FailTransfer); err == nil {
			return
		}
	}
	_, _ = col.Add(inst)
}

// settle runs after every controller operation and drops a selection whose
// instance is no longer held.
func (c *Controller) settle() {
	if !c.selectionStale || c.selection == nil {
		c.selectionStale = false
		return
	}
	c.selectionStale = false
	col, _, ok := c.Locate(c.selection.Instance.ID())
	if !ok {
		c.clearSelection()
		return
	}
	c.selection.Collection = col.ID()
}

// forwarder is the event sink installed in every managed collection.
type forwarder struct {
	ctl   *Controller
	stage bool
}

func (f *forwarder) Publish(e inventory.Event) {
	if f.stage {
		f.ctl.dirty[e.Collection] = true
	}
	if sel := f.ctl.selection; sel != nil && sel.Instance.ID() == e.Instance {
		switch e.Kind {
		case inventory.EventRemoved, inventory.EventDestroyed:
			f.ctl.selectionStale = true
		}
	}
	f.ctl.bus.Publish(e)
}

// Refresh drops cached crafting matches and re-checks the selection. Call
// it after changing collections without events, such as after Restore.
func (c *Controller) Refresh() {
	for id, col := range c.collections {
		if col.IsCraftingStage() {
			c.dirty[id] = true
		}
	}
	if c.selection != nil {
		c.selectionStale = true
	}
	c.settle()
}
