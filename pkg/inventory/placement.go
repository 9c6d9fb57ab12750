package inventory

import "slices"

// OccupiedBehavior decides what Insert does when the target slot holds an
// instance the incoming one cannot merge with.
type OccupiedBehavior int

const (
	// ShiftItems inserts before the resident, shifting later slots right.
	// Only legal in collections that can be reordered.
	ShiftItems OccupiedBehavior = iota
	// SwapItems exchanges incoming and resident. The resident leaves the
	// collection and is returned in Placement.Displaced.
	SwapItems
	// FailTransfer rejects the insert without mutating anything.
	FailTransfer
	// Overwrite discards the resident and emits EventDestroyed for it.
	Overwrite
)

// String returns a human-readable representation of the behavior.
func (b OccupiedBehavior) String() string {
	switch b {
	case ShiftItems:
		return "Shift"
	case SwapItems:
		return "Swap"
	case FailTransfer:
		return "Fail"
	case Overwrite:
		return "Overwrite"
	default:
		return "Unknown"
	}
}

// Placement reports where an add or insert left its units.
type Placement struct {
	// Instance is the final resting instance: the incoming instance when it
	// took a slot, otherwise the last stack that absorbed units.
	Instance *Instance
	// Slot is the index of Instance after compaction, -1 when nothing was placed.
	Slot int
	// Added is the number of units that entered the collection, merged or placed.
	Added int
	// Merged is the part of Added absorbed by resident stacks.
	Merged int
	// Displaced is the resident removed by a swap. The caller owns it.
	Displaced *Instance
	// Destroyed is the resident discarded by an overwrite.
	Destroyed *Instance
}

type mergeStep struct {
	slot   int
	amount int
}

// Add places inst into the collection: first by merging into matching
// stacks with spare capacity in slot order, then by putting the remainder
// into the first empty slot or a new one. When no slot is left ErrFull is
// returned and merges already performed are kept; Placement.Added tells
// how much got in. Units absorbed by merges are removed from inst.
func (c *Collection) Add(inst *Instance) (Placement, error) {
	if inst == nil || inst.count <= 0 {
		return Placement{Slot: -1}, ErrInvalidAmount
	}
	if i := c.IndexOf(inst); i >= 0 {
		return Placement{Instance: inst, Slot: i}, nil
	}
	if err := c.admit(inst, -1); err != nil {
		return Placement{Slot: -1}, err
	}
	p, err := c.place(inst)
	c.clean()
	p.Slot = c.IndexOf(p.Instance)
	return p, err
}

// AddNew creates instances of the definition and adds them, splitting the
// amount into chunks of at most the stack limit. On ErrFull the returned
// Placement reports the units that did get in.
func (c *Collection) AddNew(def DefinitionID, amount int) (Placement, error) {
	if amount <= 0 {
		return Placement{Slot: -1}, ErrInvalidAmount
	}
	if c.catalog == nil {
		return Placement{Slot: -1}, ErrUnknownDefinition
	}
	d, ok := c.catalog.Lookup(def)
	if !ok {
		return Placement{Slot: -1}, ErrUnknownDefinition
	}

	total := Placement{Slot: -1}
	for amount > 0 {
		chunk := min(amount, d.StackLimit())
		p, err := c.Add(newInstance(d, chunk))
		total.Added += p.Added
		total.Merged += p.Merged
		if p.Instance != nil {
			total.Instance = p.Instance
			total.Slot = p.Slot
		}
		if err != nil {
			return total, err
		}
		amount -= chunk
	}
	return total, nil
}

// mergePlan lists the merges that would absorb inst into matching stacks
// with room, in slot order, and the amount left over.
func (c *Collection) mergePlan(inst *Instance) ([]mergeStep, int) {
	remaining := inst.count
	if !inst.def.Stackable {
		return nil, remaining
	}
	var steps []mergeStep
	for i, s := range c.slots {
		if remaining == 0 {
			break
		}
		if s == nil || s == inst {
			continue
		}
		if room := s.Capacity(); room > 0 && s.IsMatch(inst, true) {
			take := min(remaining, room)
			steps = append(steps, mergeStep{slot: i, amount: take})
			remaining -= take
		}
	}
	return steps, remaining
}

func (c *Collection) applyMerges(inst *Instance, steps []mergeStep) Placement {
	p := Placement{Slot: -1}
	for _, st := range steps {
		resident := c.slots[st.slot]
		resident.setCount(resident.count + st.amount)
		inst.setCount(inst.count - st.amount)
		c.emit(EventMerged, resident, st.slot, st.amount)
		p.Merged += st.amount
		p.Instance = resident
		p.Slot = st.slot
	}
	p.Added = p.Merged
	return p
}

// place merges and places inst without admission checks or cleaning.
func (c *Collection) place(inst *Instance) (Placement, error) {
	steps, remaining := c.mergePlan(inst)
	target := -1
	if remaining > 0 {
		target = c.freeSlot()
	}

	p := c.applyMerges(inst, steps)
	if remaining == 0 {
		return p, nil
	}
	if target < 0 {
		return p, ErrFull
	}
	c.putAt(target, inst)
	c.emit(EventAdded, inst, target, inst.count)
	p.Added += inst.count
	p.Instance = inst
	p.Slot = target
	return p, nil
}

// Insert places inst at index. A matching stack at index absorbs what it
// can, with the remainder added as by Add. Otherwise matching stacks
// elsewhere absorb what they can first and only the remainder goes to
// index: an empty target receives it directly and any other resident is
// handled according to behavior. A rejected insert changes nothing.
// Collections that cannot be reordered treat an index past the last slot
// as a plain Add. If inst is already held here the call becomes a Move.
func (c *Collection) Insert(inst *Instance, index int, behavior OccupiedBehavior) (Placement, error) {
	if inst == nil || inst.count <= 0 {
		return Placement{Slot: -1}, ErrInvalidAmount
	}
	if index < 0 || (c.maxSlots > 0 && index >= c.maxSlots) {
		return Placement{Slot: -1}, ErrInvalidSlotIndex
	}
	if from := c.IndexOf(inst); from >= 0 {
		return c.Move(from, index, behavior)
	}
	if index >= len(c.slots) && !c.CanReorder() {
		return c.Add(inst)
	}

	resident := c.SlotAt(index)
	mergeable := resident != nil && resident.Capacity() > 0 && resident.IsMatch(inst, true)
	ignore := -1
	if resident != nil && !mergeable && (behavior == SwapItems || behavior == Overwrite) {
		ignore = index
	}
	if err := c.admit(inst, ignore); err != nil {
		return Placement{Slot: -1}, err
	}

	if mergeable {
		take := min(inst.count, resident.Capacity())
		resident.setCount(resident.count + take)
		inst.setCount(inst.count - take)
		c.emit(EventMerged, resident, index, take)
		p := Placement{Instance: resident, Added: take, Merged: take}
		var err error
		if inst.count > 0 {
			var rest Placement
			rest, err = c.place(inst)
			p.Added += rest.Added
			p.Merged += rest.Merged
			if rest.Instance != nil {
				p.Instance = rest.Instance
			}
		}
		c.clean()
		p.Slot = c.IndexOf(p.Instance)
		return p, err
	}

	steps, remaining := c.mergePlan(inst)
	if remaining > 0 && resident != nil {
		if err := c.canOccupy(index, behavior); err != nil {
			return Placement{Slot: -1}, err
		}
	}
	p := c.applyMerges(inst, steps)
	if remaining > 0 {
		var put Placement
		if resident == nil {
			c.putAt(index, inst)
			c.emit(EventAdded, inst, index, inst.count)
			put = Placement{Instance: inst, Added: inst.count}
		} else {
			put = c.insertOccupied(inst, resident, index, behavior)
		}
		p.Instance = put.Instance
		p.Added += put.Added
		p.Displaced = put.Displaced
		p.Destroyed = put.Destroyed
	}
	c.clean()
	p.Slot = c.IndexOf(p.Instance)
	return p, nil
}

// canOccupy reports whether behavior can put an instance into the occupied
// slot at index.
func (c *Collection) canOccupy(index int, behavior OccupiedBehavior) error {
	switch behavior {
	case ShiftItems:
		if !c.CanReorder() {
			return ErrNotReorderable
		}
		for i := index; i < len(c.slots); i++ {
			if c.slots[i] == nil {
				return nil
			}
		}
		if c.maxSlots > 0 && len(c.slots) >= c.maxSlots {
			return ErrFull
		}
		return nil
	case SwapItems, Overwrite:
		return nil
	default:
		return ErrSlotOccupied
	}
}

// insertOccupied applies behavior once canOccupy has allowed it.
func (c *Collection) insertOccupied(inst, resident *Instance, index int, behavior OccupiedBehavior) Placement {
	switch behavior {
	case SwapItems:
		c.slots[index] = inst
		c.emit(EventRemoved, resident, index, resident.count)
		c.emit(EventAdded, inst, index, inst.count)
		return Placement{Instance: inst, Added: inst.count, Displaced: resident}

	case Overwrite:
		c.slots[index] = inst
		c.emit(EventDestroyed, resident, index, resident.count)
		c.emit(EventAdded, inst, index, inst.count)
		return Placement{Instance: inst, Added: inst.count, Destroyed: resident}

	default:
		gap := -1
		for i := index; i < len(c.slots); i++ {
			if c.slots[i] == nil {
				gap = i
				break
			}
		}
		if gap < 0 {
			c.slots = append(c.slots, nil)
			gap = len(c.slots) - 1
		}
		copy(c.slots[index+1:gap+1], c.slots[index:gap])
		c.slots[index] = inst
		c.emit(EventAdded, inst, index, inst.count)
		return Placement{Instance: inst, Added: inst.count}
	}
}

// Move relocates the instance in slot from to slot to within this
// collection. A matching stack at the target absorbs what it can; other
// residents are handled according to behavior, with SwapItems exchanging
// the two slots. Collections that cannot be reordered only allow merges.
func (c *Collection) Move(from, to int, behavior OccupiedBehavior) (Placement, error) {
	inst := c.SlotAt(from)
	if inst == nil || to < 0 || (c.maxSlots > 0 && to >= c.maxSlots) {
		return Placement{Slot: -1}, ErrInvalidSlotIndex
	}
	if from == to {
		return Placement{Instance: inst, Slot: from}, nil
	}

	target := c.SlotAt(to)
	if target != nil && target.Capacity() > 0 && target.IsMatch(inst, true) {
		take := min(inst.count, target.Capacity())
		target.setCount(target.count + take)
		inst.setCount(inst.count - take)
		c.emit(EventRemoved, inst, from, take)
		c.emit(EventMerged, target, to, take)
		c.clean()
		return Placement{Instance: target, Slot: c.IndexOf(target), Added: take, Merged: take}, nil
	}
	if !c.CanReorder() {
		return Placement{Slot: -1}, ErrNotReorderable
	}

	p := Placement{Instance: inst, Added: inst.count}
	switch {
	case target == nil:
		c.slots[from] = nil
		c.putAt(to, inst)
	case behavior == FailTransfer:
		return Placement{Slot: -1}, ErrSlotOccupied
	case behavior == ShiftItems:
		c.slots = slices.Delete(c.slots, from, from+1)
		c.slots = slices.Insert(c.slots, min(to, len(c.slots)), inst)
	case behavior == SwapItems:
		c.slots[from], c.slots[to] = target, inst
		c.emit(EventRemoved, target, to, target.count)
		c.emit(EventAdded, target, from, target.count)
	case behavior == Overwrite:
		c.slots[from] = nil
		c.slots[to] = inst
		c.emit(EventDestroyed, target, to, target.count)
		p.Destroyed = target
	default:
		return Placement{Slot: -1}, ErrSlotOccupied
	}
	c.emit(EventRemoved, inst, from, inst.count)
	c.emit(EventAdded, inst, to, inst.count)
	c.clean()
	p.Slot = c.IndexOf(inst)
	return p, nil
}
