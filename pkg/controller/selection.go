package controller

import (
	"time"

	"github.com/gravitas-games/invcore/pkg/inventory"
)

// SelectMode says what a selection is for.
type SelectMode int

const (
	// SelectUse picks an instance to use on something else, such as the
	// first half of a combine.
	SelectUse SelectMode = iota
	// SelectExamine picks an instance for inspection only.
	SelectExamine
)

// String returns a human-readable representation of the mode.
func (m SelectMode) String() string {
	switch m {
	case SelectUse:
		return "Use"
	case SelectExamine:
		return "Examine"
	default:
		return "Unknown"
	}
}

// Selection is the single selected instance across all collections.
type Selection struct {
	Instance   *inventory.Instance
	Collection string
	Mode       SelectMode
}

// Select makes the instance the current selection, replacing any previous
// one.
func (c *Controller) Select(id inventory.InstanceID, mode SelectMode) error {
	col, slot, ok := c.Locate(id)
	if !ok {
		return inventory.ErrNotFound
	}
	inst := col.SlotAt(slot)
	if c.selection != nil {
		if c.selection.Instance.ID() == id && c.selection.Mode == mode {
			return nil
		}
		c.clearSelection()
	}
	c.selection = &Selection{Instance: inst, Collection: col.ID(), Mode: mode}
	c.publish(inventory.EventSelected, col.ID(), inst, slot)
	c.l.Debugf("Selected [%s] in collection [%s] for [%s].", id, col.ID(), mode)
	return nil
}

// DeselectAll clears the selection, if any.
func (c *Controller) DeselectAll() {
	if c.selection != nil {
		c.clearSelection()
	}
}

// Selected returns the current selection.
func (c *Controller) Selected() (Selection, bool) {
	c.settle()
	if c.selection == nil {
		return Selection{}, false
	}
	return *c.selection, true
}

func (c *Controller) clearSelection() {
	sel := c.selection
	c.selection = nil
	slot := -1
	if col, ok := c.collections[sel.Collection]; ok {
		slot = col.IndexOf(sel.Instance)
	}
	c.publish(inventory.EventDeselected, sel.Collection, sel.Instance, slot)
}

func (c *Controller) publish(kind inventory.EventKind, collection string, inst *inventory.Instance, slot int) {
	c.bus.Publish(inventory.Event{
		Kind:       kind,
		Collection: collection,
		Instance:   inst.ID(),
		Definition: inst.Definition(),
		Slot:       slot,
		Count:      inst.Count(),
		Timestamp:  time.Now(),
	})
}
