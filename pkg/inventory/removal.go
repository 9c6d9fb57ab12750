package inventory

// Delete removes inst from the collection.
func (c *Collection) Delete(inst *Instance) error {
	i := c.IndexOf(inst)
	if i < 0 {
		return ErrNotFound
	}
	c.slots[i] = nil
	c.emit(EventRemoved, inst, i, inst.count)
	c.clean()
	return nil
}

type removal struct {
	slot   int
	amount int
}

// removeAll applies removals planned against the current slots. Instances
// reduced to zero are emptied by clean.
func (c *Collection) removeAll(plan []removal) int {
	removed := 0
	for _, r := range plan {
		s := c.slots[r.slot]
		s.setCount(s.count - r.amount)
		c.emit(EventRemoved, s, r.slot, r.amount)
		removed += r.amount
	}
	c.clean()
	return removed
}

// DeleteAmount removes up to amount units of the definition, taking from
// stacks in slot order, and returns how many were removed.
func (c *Collection) DeleteAmount(def DefinitionID, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var plan []removal
	left := amount
	for i, s := range c.slots {
		if left == 0 {
			break
		}
		if s == nil || s.def.ID != def {
			continue
		}
		take := min(left, s.count)
		plan = append(plan, removal{slot: i, amount: take})
		left -= take
	}
	return c.removeAll(plan), nil
}

// DeleteAllOfType removes every instance of the definition and returns the
// number of units removed.
func (c *Collection) DeleteAllOfType(def DefinitionID) int {
	return c.deleteWhere(func(s *Instance) bool { return s.def.ID == def })
}

// DeleteAllInCategory removes every instance in the category and returns
// the number of units removed.
func (c *Collection) DeleteAllInCategory(cat CategoryID) int {
	return c.deleteWhere(func(s *Instance) bool { return s.def.Category == cat })
}

// DeleteAll empties the collection and returns the number of units removed.
func (c *Collection) DeleteAll() int {
	return c.deleteWhere(func(*Instance) bool { return true })
}

func (c *Collection) deleteWhere(match func(*Instance) bool) int {
	var plan []removal
	for i, s := range c.slots {
		if s != nil && match(s) {
			plan = append(plan, removal{slot: i, amount: s.count})
		}
	}
	return c.removeAll(plan)
}

// ReduceAt removes amount units from the instance in slot i.
func (c *Collection) ReduceAt(i, amount int) error {
	s := c.SlotAt(i)
	if s == nil {
		return ErrInvalidSlotIndex
	}
	if amount <= 0 || amount > s.count {
		return ErrInvalidAmount
	}
	c.removeAll([]removal{{slot: i, amount: amount}})
	return nil
}

// Take detaches amount units of inst from the collection and returns them.
// Taking the whole count detaches inst itself; otherwise a split is
// returned and inst keeps the rest.
func (c *Collection) Take(inst *Instance, amount int) (*Instance, error) {
	i := c.IndexOf(inst)
	if i < 0 {
		return nil, ErrNotFound
	}
	if amount <= 0 || amount > inst.count {
		return nil, ErrInvalidAmount
	}
	out := inst
	if amount == inst.count {
		c.slots[i] = nil
	} else {
		piece, err := inst.Split(amount)
		if err != nil {
			return nil, err
		}
		out = piece
	}
	c.emit(EventRemoved, inst, i, amount)
	c.clean()
	return out, nil
}

// TransferRequest selects what a Transfer moves.
type TransferRequest struct {
	// Definition is moved when Like is nil.
	Definition DefinitionID
	// Like selects its definition and, with MatchProperties, only source
	// instances whose property state matches it.
	Like            *Instance
	MatchProperties bool
	Amount          int
}

// TransferResult reports the outcome of a Transfer.
type TransferResult struct {
	Requested int
	Moved     int
	// Shortfall is the number of requested units that were not moved.
	Shortfall int
}

type pick struct {
	inst   *Instance
	slot   int
	amount int
}

// Transfer moves units out of from into c. Matching source instances are
// drained in slot order until the requested amount is met; when the source
// holds less, everything it has is moved and the difference is reported as
// Shortfall. Category and duplicate rules are checked before anything is
// moved. If c fills up mid-way, units that did not fit return to their
// source stack and ErrFull is returned with the partial result.
func (c *Collection) Transfer(from *Collection, req TransferRequest) (TransferResult, error) {
	res := TransferResult{Requested: req.Amount}
	if from == nil || req.Amount <= 0 {
		return res, ErrInvalidAmount
	}
	if from == c {
		return res, ErrSameCollection
	}
	defID := req.Definition
	if req.Like != nil {
		defID = req.Like.def.ID
	}
	if c.catalog == nil {
		return res, ErrUnknownDefinition
	}
	def, ok := c.catalog.Lookup(defID)
	if !ok {
		return res, ErrUnknownDefinition
	}
	if !c.Allows(def.Category) {
		return res, ErrCategoryBlocked
	}
	want := req.Amount
	if !def.Stackable {
		if c.Contains(defID) {
			return res, ErrDuplicateUnstackable
		}
		want = 1
	}

	var picks []pick
	left := want
	for i, s := range from.slots {
		if left == 0 {
			break
		}
		if s == nil || s.def.ID != defID {
			continue
		}
		if req.Like != nil && req.MatchProperties && !s.IsMatch(req.Like, true) {
			continue
		}
		take := min(left, s.count)
		picks = append(picks, pick{inst: s, slot: i, amount: take})
		left -= take
	}

	for _, pk := range picks {
		piece, err := from.Take(pk.inst, pk.amount)
		if err != nil {
			res.Shortfall = res.Requested - res.Moved
			return res, err
		}
		p, err := c.Add(piece)
		res.Moved += p.Added
		if err != nil {
			if piece.count > 0 {
				from.giveBack(piece, pk.inst, pk.slot)
			}
			res.Shortfall = res.Requested - res.Moved
			return res, err
		}
	}
	res.Shortfall = res.Requested - res.Moved
	return res, nil
}

// giveBack returns units that could not be placed elsewhere. When the
// original stack is still held the units merge back into it; otherwise the
// piece goes back to its old slot if that is free, or is added normally.
func (c *Collection) giveBack(piece, origin *Instance, slot int) {
	if origin != piece {
		if i := c.IndexOf(origin); i >= 0 {
			back := min(piece.count, origin.Capacity())
			origin.setCount(origin.count + back)
			piece.setCount(piece.count - back)
			c.emit(EventAdded, origin, i, back)
			if piece.count == 0 {
				return
			}
		}
	}
	if c.CanReorder() && c.SlotAt(slot) == nil && (c.maxSlots == 0 || slot < c.maxSlots) {
		c.putAt(slot, piece)
		c.emit(EventAdded, piece, slot, piece.count)
		c.clean()
		return
	}
	_, _ = c.place(piece)
	c.clean()
}
