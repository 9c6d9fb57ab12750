package inventory

import (
	"encoding/json"
	"fmt"
)

// SlotRecord is the persisted form of one occupied slot.
type SlotRecord struct {
	Definition           DefinitionID   `json:"definition"`
	Count                int            `json:"count"`
	Properties           []Property     `json:"properties,omitempty"`
	DisabledInteractions []int          `json:"disabledInteractions,omitempty"`
	DisabledCombines     []DefinitionID `json:"disabledCombines,omitempty"`
}

// Snapshot is the persisted form of a collection's contents. Slots keeps
// slot order; a nil entry (JSON null) marks an empty slot.
type Snapshot struct {
	ID    string        `json:"id"`
	Slots []*SlotRecord `json:"slots"`
}

// Snapshot captures the collection's contents.
func (c *Collection) Snapshot() Snapshot {
	ss := Snapshot{
		ID:    c.id,
		Slots: make([]*SlotRecord, len(c.slots)),
	}
	for i, s := range c.slots {
		if s == nil {
			continue
		}
		ss.Slots[i] = &SlotRecord{
			Definition:           s.def.ID,
			Count:                s.count,
			Properties:           s.Properties(),
			DisabledInteractions: s.DisabledInteractions(),
			DisabledCombines:     s.DisabledCombines(),
		}
	}
	return ss
}

// Restore replaces the collection's contents with the snapshot and returns
// the number of records it dropped. Empty slots are kept only if the
// collection can be reordered. Records whose definition is not in the
// catalog, whose category the collection does not allow, or that would
// duplicate an unstackable item restored earlier are dropped and leave an
// empty slot. Counts are clamped to the stack limit and properties outside
// the schema are ignored. No events are emitted; instances get fresh IDs.
func (c *Collection) Restore(ss Snapshot) int {
	dropped := 0
	c.slots = make([]*Instance, 0, len(ss.Slots))
	for _, rec := range ss.Slots {
		inst := c.instanceFromRecord(rec)
		if inst == nil && rec != nil {
			dropped++
		}
		if inst != nil && c.admit(inst, -1) != nil {
			inst = nil
			dropped++
		}
		if inst == nil && !c.CanReorder() {
			continue
		}
		c.slots = append(c.slots, inst)
	}
	c.clean()
	return dropped
}

func (c *Collection) instanceFromRecord(rec *SlotRecord) *Instance {
	if rec == nil || rec.Count <= 0 || c.catalog == nil {
		return nil
	}
	def, ok := c.catalog.Lookup(rec.Definition)
	if !ok {
		return nil
	}
	inst := newInstance(def, rec.Count)
	for _, p := range rec.Properties {
		inst.SetProperty(p.ID, p.Value)
	}
	for _, id := range rec.DisabledInteractions {
		inst.DisableInteraction(id)
	}
	for _, id := range rec.DisabledCombines {
		inst.DisableCombine(id)
	}
	return inst
}

// MarshalSnapshot encodes the collection's contents as JSON.
func (c *Collection) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

// ParseSnapshot decodes JSON produced by MarshalSnapshot.
func ParseSnapshot(b []byte) (Snapshot, error) {
	var ss Snapshot
	if err := json.Unmarshal(b, &ss); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return ss, nil
}

// UnmarshalSnapshot decodes JSON produced by MarshalSnapshot and restores
// it into the collection.
func (c *Collection) UnmarshalSnapshot(b []byte) error {
	ss, err := ParseSnapshot(b)
	if err != nil {
		return err
	}
	c.Restore(ss)
	return nil
}
