package inventory

import (
	"fmt"
	"slices"
	"time"
)

// Collection is an ordered list of optional slots, each holding at most one
// Instance. Slot order is display order. A Collection is owned by a single
// mutator; callers that share one across goroutines must serialize access.
type Collection struct {
	id          string
	catalog     Catalog
	slots       []*Instance
	maxSlots    int
	categories  map[CategoryID]struct{}
	reorderable bool
	stage       bool
	sink        EventSink
}

// Option configures collection construction.
type Option func(*Collection)

// WithMaxSlots bounds the number of slots. Zero means unbounded.
func WithMaxSlots(n int) Option {
	return func(c *Collection) {
		if n < 0 {
			n = 0
		}
		c.maxSlots = n
	}
}

// WithCategories restricts the collection to the given categories. An
// empty list leaves it unrestricted.
func WithCategories(ids ...CategoryID) Option {
	return func(c *Collection) {
		if len(ids) == 0 {
			c.categories = nil
			return
		}
		c.categories = make(map[CategoryID]struct{}, len(ids))
		for _, id := range ids {
			c.categories[id] = struct{}{}
		}
	}
}

// WithReorder lets the collection keep empty interior slots so items can
// sit at arbitrary positions.
func WithReorder(enabled bool) Option {
	return func(c *Collection) { c.reorderable = enabled }
}

// AsCraftingStage marks the collection as a crafting staging area. Staging
// collections are always reorderable so ingredients can occupy pinned slots.
func AsCraftingStage() Option {
	return func(c *Collection) { c.stage = true }
}

// WithEventSink attaches the receiver of change events.
func WithEventSink(sink EventSink) Option {
	return func(c *Collection) { c.sink = sink }
}

// NewCollection creates an empty collection.
func NewCollection(cat Catalog, id string, opts ...Option) *Collection {
	c := &Collection{
		id:      id,
		catalog: cat,
		slots:   make([]*Instance, 0),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Entry is a definition and amount used to pre-populate collections.
type Entry struct {
	Definition DefinitionID `json:"definition" yaml:"definition"`
	Amount     int          `json:"amount" yaml:"amount"`
}

// NewCollectionFrom creates a collection and adds every entry in order.
// Construction stops at the first entry that cannot be placed.
func NewCollectionFrom(cat Catalog, id string, entries []Entry, opts ...Option) (*Collection, error) {
	c := NewCollection(cat, id, opts...)
	for _, e := range entries {
		if _, err := c.AddNew(e.Definition, e.Amount); err != nil {
			return c, fmt.Errorf("entry %d x%d: %w", e.Definition, e.Amount, err)
		}
	}
	return c, nil
}

// ID returns the collection identifier.
func (c *Collection) ID() string { return c.id }

// Catalog returns the catalog the collection resolves definitions with.
func (c *Collection) Catalog() Catalog { return c.catalog }

// MaxSlots returns the slot bound, zero when unbounded.
func (c *Collection) MaxSlots() int { return c.maxSlots }

// IsCraftingStage reports whether the collection is a crafting staging area.
func (c *Collection) IsCraftingStage() bool { return c.stage }

// SetEventSink replaces the receiver of change events.
func (c *Collection) SetEventSink(sink EventSink) { c.sink = sink }

// CanReorder reports whether empty interior slots are retained: either the
// collection is reorderable or it is a crafting staging area.
func (c *Collection) CanReorder() bool { return c.reorderable || c.stage }

// Allows reports whether the category filter admits the category.
func (c *Collection) Allows(cat CategoryID) bool {
	if len(c.categories) == 0 {
		return true
	}
	_, ok := c.categories[cat]
	return ok
}

// Categories returns the allowed categories in ascending order, nil when
// unrestricted.
func (c *Collection) Categories() []CategoryID {
	if len(c.categories) == 0 {
		return nil
	}
	out := make([]CategoryID, 0, len(c.categories))
	for id := range c.categories {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// SetMaxSlots changes the slot bound. Instances beyond the new bound are
// destroyed.
func (c *Collection) SetMaxSlots(n int) {
	if n < 0 {
		n = 0
	}
	c.maxSlots = n
	c.clean()
}

// Len returns the number of slots, including empty interior slots.
func (c *Collection) Len() int { return len(c.slots) }

// SlotAt returns the instance in slot i, or nil for empty or out-of-range slots.
func (c *Collection) SlotAt(i int) *Instance {
	if i < 0 || i >= len(c.slots) {
		return nil
	}
	return c.slots[i]
}

// Slots returns a copy of the slot sequence. Empty slots are nil.
func (c *Collection) Slots() []*Instance {
	out := make([]*Instance, len(c.slots))
	copy(out, c.slots)
	return out
}

// Instances returns the held instances in slot order.
func (c *Collection) Instances() []*Instance {
	out := make([]*Instance, 0, len(c.slots))
	for _, s := range c.slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// IndexOf returns the slot holding inst, or -1.
func (c *Collection) IndexOf(inst *Instance) int {
	if inst == nil {
		return -1
	}
	return c.indexOfID(inst.id)
}

func (c *Collection) indexOfID(id InstanceID) int {
	for i, s := range c.slots {
		if s != nil && s.id == id {
			return i
		}
	}
	return -1
}

// Instance returns the held instance with the given ID.
func (c *Collection) Instance(id InstanceID) (*Instance, bool) {
	if i := c.indexOfID(id); i >= 0 {
		return c.slots[i], true
	}
	return nil, false
}

// Count returns the number of units of a definition when includeStacked
// is set, or the number of instances holding it otherwise.
func (c *Collection) Count(def DefinitionID, includeStacked bool) int {
	total := 0
	for _, s := range c.slots {
		if s == nil || s.def.ID != def {
			continue
		}
		if includeStacked {
			total += s.count
		} else {
			total++
		}
	}
	return total
}

// TotalCount returns the number of units held when includeStacked is set,
// or the number of occupied slots otherwise.
func (c *Collection) TotalCount(includeStacked bool) int {
	total := 0
	for _, s := range c.slots {
		if s == nil {
			continue
		}
		if includeStacked {
			total += s.count
		} else {
			total++
		}
	}
	return total
}

// Contains reports whether any instance of the definition is held.
func (c *Collection) Contains(def DefinitionID) bool {
	return c.FirstInstanceOf(def) != nil
}

// FirstInstanceOf returns the first instance of the definition in slot
// order, or nil.
func (c *Collection) FirstInstanceOf(def DefinitionID) *Instance {
	for _, s := range c.slots {
		if s != nil && s.def.ID == def {
			return s
		}
	}
	return nil
}

// AllInstancesOf returns every instance of the definition in slot order.
func (c *Collection) AllInstancesOf(def DefinitionID) []*Instance {
	var out []*Instance
	for _, s := range c.slots {
		if s != nil && s.def.ID == def {
			out = append(out, s)
		}
	}
	return out
}

// InstancesInCategory returns every instance in the category in slot order.
func (c *Collection) InstancesInCategory(cat CategoryID) []*Instance {
	var out []*Instance
	for _, s := range c.slots {
		if s != nil && s.def.Category == cat {
			out = append(out, s)
		}
	}
	return out
}

// Accepts reports whether inst could enter the collection, ignoring the
// slot currently held by leaving (which is about to be vacated). It checks
// the catalog, the category filter and unstackable duplicates; it does not
// check free space.
func (c *Collection) Accepts(inst, leaving *Instance) error {
	ignore := -1
	if leaving != nil {
		ignore = c.IndexOf(leaving)
	}
	return c.admit(inst, ignore)
}

func (c *Collection) admit(inst *Instance, ignore int) error {
	if c.catalog != nil {
		if _, ok := c.catalog.Lookup(inst.def.ID); !ok {
			return ErrUnknownDefinition
		}
	}
	if !c.Allows(inst.def.Category) {
		return ErrCategoryBlocked
	}
	if !inst.def.Stackable {
		for i, s := range c.slots {
			if i == ignore || s == nil || s == inst {
				continue
			}
			if s.def.ID == inst.def.ID {
				return ErrDuplicateUnstackable
			}
		}
	}
	return nil
}

// freeSlot returns the first empty slot, len(slots) when a new slot may be
// appended, or -1 when the collection is full.
func (c *Collection) freeSlot() int {
	for i, s := range c.slots {
		if s == nil {
			return i
		}
	}
	if c.maxSlots == 0 || len(c.slots) < c.maxSlots {
		return len(c.slots)
	}
	return -1
}

// putAt stores inst at index i, growing the slot sequence with empty slots
// as needed.
func (c *Collection) putAt(i int, inst *Instance) {
	for len(c.slots) <= i {
		c.slots = append(c.slots, nil)
	}
	c.slots[i] = inst
}

func (c *Collection) emit(kind EventKind, inst *Instance, slot, amount int) {
	if c.sink == nil || inst == nil {
		return
	}
	c.sink.Publish(Event{
		Kind:       kind,
		Collection: c.id,
		Instance:   inst.id,
		Definition: inst.def.ID,
		Slot:       slot,
		Amount:     amount,
		Count:      inst.count,
		Timestamp:  time.Now(),
	})
}

// clean runs after every mutation: it truncates slots beyond maxSlots,
// empties slots whose instance reached zero, compacts non-reorderable
// collections and strips trailing empty slots.
func (c *Collection) clean() {
	if c.maxSlots > 0 && len(c.slots) > c.maxSlots {
		for i := c.maxSlots; i < len(c.slots); i++ {
			if s := c.slots[i]; s != nil && s.count > 0 {
				c.emit(EventDestroyed, s, i, s.count)
			}
			c.slots[i] = nil
		}
		c.slots = c.slots[:c.maxSlots]
	}

	for i, s := range c.slots {
		if s != nil && s.count <= 0 {
			c.slots[i] = nil
		}
	}

	if !c.CanReorder() {
		packed := make([]*Instance, 0, len(c.slots))
		for _, s := range c.slots {
			if s != nil {
				packed = append(packed, s)
			}
		}
		c.slots = packed
	}

	end := len(c.slots)
	for end > 0 && c.slots[end-1] == nil {
		end--
	}
	for i := end; i < len(c.slots); i++ {
		c.slots[i] = nil
	}
	c.slots = c.slots[:end]

	c.assertInvariants()
}

// assertInvariants panics when clean left the collection in a state no
// public operation may produce.
func (c *Collection) assertInvariants() {
	if c.maxSlots > 0 && len(c.slots) > c.maxSlots {
		panic(fmt.Sprintf("inventory: collection %q holds %d slots, max %d", c.id, len(c.slots), c.maxSlots))
	}
	for i, s := range c.slots {
		if s == nil {
			if !c.CanReorder() || i == len(c.slots)-1 {
				panic(fmt.Sprintf("inventory: collection %q has stray empty slot %d", c.id, i))
			}
			continue
		}
		if s.count < 1 || s.count > s.def.StackLimit() {
			panic(fmt.Sprintf("inventory: collection %q slot %d count %d outside [1,%d]", c.id, i, s.count, s.def.StackLimit()))
		}
	}
}

// CopyFrom appends copies of other's instances, in slot order, using the
// regular add rules. Copies get fresh IDs.
func (c *Collection) CopyFrom(other *Collection) error {
	if other == nil {
		return nil
	}
	for _, s := range other.slots {
		if s == nil {
			continue
		}
		if _, err := c.Add(s.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a detached copy of the collection with the same settings,
// fresh instance IDs and no event sink. Slot positions are preserved.
func (c *Collection) Clone() *Collection {
	out := &Collection{
		id:          c.id,
		catalog:     c.catalog,
		slots:       make([]*Instance, len(c.slots)),
		maxSlots:    c.maxSlots,
		reorderable: c.reorderable,
		stage:       c.stage,
	}
	if len(c.categories) > 0 {
		out.categories = make(map[CategoryID]struct{}, len(c.categories))
		for k := range c.categories {
			out.categories[k] = struct{}{}
		}
	}
	for i, s := range c.slots {
		if s != nil {
			out.slots[i] = s.Clone()
		}
	}
	return out
}
