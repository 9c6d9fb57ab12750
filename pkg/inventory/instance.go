package inventory

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Instance is a runtime quantity of one item definition together with its
// own property values and disabled interaction sets.
//
// Counts are only changed through Split and collection operations, which
// keep 1 <= count <= StackLimit for every instance held by a collection.
type Instance struct {
	id            InstanceID
	def           ItemDefinition
	count         int
	transferStage int
	properties    []Property

	disabledInteractions map[int]struct{}
	disabledCombines     map[DefinitionID]struct{}
}

// NewInstance creates an instance of the definition with the given count,
// clamped to [1, StackLimit].
func NewInstance(cat Catalog, id DefinitionID, count int) (*Instance, error) {
	if cat == nil {
		return nil, ErrUnknownDefinition
	}
	def, ok := cat.Lookup(id)
	if !ok {
		return nil, ErrUnknownDefinition
	}
	return newInstance(def, count), nil
}

func newInstance(def ItemDefinition, count int) *Instance {
	inst := &Instance{
		id:    InstanceID(uuid.NewString()),
		def:   def,
		count: clampCount(count, def.StackLimit()),
	}
	if len(def.Properties) > 0 {
		inst.properties = make([]Property, len(def.Properties))
		for i, p := range def.Properties {
			inst.properties[i] = Property{ID: p.ID, Value: p.Default}
		}
	}
	return inst
}

func clampCount(count, limit int) int {
	if count < 1 {
		return 1
	}
	if count > limit {
		return limit
	}
	return count
}

// ID returns the instance handle.
func (i *Instance) ID() InstanceID { return i.id }

// Definition returns the definition ID.
func (i *Instance) Definition() DefinitionID { return i.def.ID }

// Def returns the full definition captured at creation.
func (i *Instance) Def() ItemDefinition { return i.def }

// Category returns the definition's category.
func (i *Instance) Category() CategoryID { return i.def.Category }

// Stackable reports whether the definition can carry multiples.
func (i *Instance) Stackable() bool { return i.def.Stackable }

// Count returns the current quantity.
func (i *Instance) Count() int { return i.count }

// Capacity returns how many more units this instance can absorb.
func (i *Instance) Capacity() int {
	room := i.def.StackLimit() - i.count
	if room < 0 {
		return 0
	}
	return room
}

// Staged returns the sub-quantity earmarked for an in-progress move.
func (i *Instance) Staged() int { return i.transferStage }

// Stage earmarks n units for transfer, clamped to [0, count].
func (i *Instance) Stage(n int) {
	switch {
	case n < 0:
		n = 0
	case n > i.count:
		n = i.count
	}
	i.transferStage = n
}

// SplitStaged splits off the staged quantity, or the whole count when
// nothing is staged.
func (i *Instance) SplitStaged() (*Instance, error) {
	amount := i.transferStage
	if amount == 0 {
		amount = i.count
	}
	return i.Split(amount)
}

// Split removes amount units from the receiver and returns them as a new
// instance carrying the same property and interaction state. When amount
// equals the current count the receiver is left empty and must be dropped
// by the caller.
func (i *Instance) Split(amount int) (*Instance, error) {
	if amount <= 0 || amount > i.count {
		return nil, ErrInvalidAmount
	}
	out := i.copyState()
	out.count = amount
	i.setCount(i.count - amount)
	return out, nil
}

// Clone returns a deep copy with a fresh ID.
func (i *Instance) Clone() *Instance {
	out := i.copyState()
	out.count = i.count
	out.transferStage = i.transferStage
	return out
}

func (i *Instance) copyState() *Instance {
	out := &Instance{
		id:  InstanceID(uuid.NewString()),
		def: i.def,
	}
	if len(i.properties) > 0 {
		out.properties = make([]Property, len(i.properties))
		copy(out.properties, i.properties)
	}
	if len(i.disabledInteractions) > 0 {
		out.disabledInteractions = make(map[int]struct{}, len(i.disabledInteractions))
		for k := range i.disabledInteractions {
			out.disabledInteractions[k] = struct{}{}
		}
	}
	if len(i.disabledCombines) > 0 {
		out.disabledCombines = make(map[DefinitionID]struct{}, len(i.disabledCombines))
		for k := range i.disabledCombines {
			out.disabledCombines[k] = struct{}{}
		}
	}
	return out
}

func (i *Instance) setCount(n int) {
	if n < 0 {
		n = 0
	}
	i.count = n
	if i.transferStage > n {
		i.transferStage = n
	}
}

// IsMatch reports whether other has the same definition and, when
// matchProperties is set, identical property values.
func (i *Instance) IsMatch(other *Instance, matchProperties bool) bool {
	if other == nil || i.def.ID != other.def.ID {
		return false
	}
	if !matchProperties {
		return true
	}
	if i.Fingerprint() != other.Fingerprint() {
		return false
	}
	if len(i.properties) != len(other.properties) {
		return false
	}
	for idx, p := range i.properties {
		if other.properties[idx] != p {
			return false
		}
	}
	return true
}

// Fingerprint hashes the definition ID and property state. Matching
// instances always share a fingerprint.
func (i *Instance) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(i.def.ID))
	_, _ = d.Write(buf[:])
	for _, p := range i.properties {
		binary.LittleEndian.PutUint64(buf[:], uint64(p.ID))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(string(p.Value.Kind))
		switch p.Value.Kind {
		case KindInt:
			binary.LittleEndian.PutUint64(buf[:], uint64(p.Value.Int))
		case KindFloat:
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Value.Float))
		case KindBool:
			buf = [8]byte{}
			if p.Value.Bool {
				buf[0] = 1
			}
		case KindRef:
			binary.LittleEndian.PutUint64(buf[:], uint64(p.Value.Ref))
		default:
			_, _ = d.WriteString(p.Value.String)
			continue
		}
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// Properties returns a copy of the property map in schema order.
func (i *Instance) Properties() []Property {
	if len(i.properties) == 0 {
		return nil
	}
	out := make([]Property, len(i.properties))
	copy(out, i.properties)
	return out
}

// Property returns the value of a property.
func (i *Instance) Property(id PropertyID) (PropertyValue, bool) {
	for _, p := range i.properties {
		if p.ID == id {
			return p.Value, true
		}
	}
	return PropertyValue{}, false
}

// SetProperty overrides a property on this instance only. Properties that
// are not part of the definition's schema are rejected.
func (i *Instance) SetProperty(id PropertyID, v PropertyValue) bool {
	for idx := range i.properties {
		if i.properties[idx].ID == id {
			i.properties[idx].Value = v
			return true
		}
	}
	return false
}

// DisableInteraction turns off an interaction for this instance.
func (i *Instance) DisableInteraction(id int) {
	if i.disabledInteractions == nil {
		i.disabledInteractions = make(map[int]struct{})
	}
	i.disabledInteractions[id] = struct{}{}
}

// EnableInteraction re-enables a previously disabled interaction.
func (i *Instance) EnableInteraction(id int) { delete(i.disabledInteractions, id) }

// InteractionEnabled reports whether an interaction is available.
func (i *Instance) InteractionEnabled(id int) bool {
	_, off := i.disabledInteractions[id]
	return !off
}

// DisabledInteractions returns the disabled interaction IDs in ascending order.
func (i *Instance) DisabledInteractions() []int {
	if len(i.disabledInteractions) == 0 {
		return nil
	}
	out := make([]int, 0, len(i.disabledInteractions))
	for k := range i.disabledInteractions {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// DisableCombine stops this instance from combining with the definition.
func (i *Instance) DisableCombine(with DefinitionID) {
	if i.disabledCombines == nil {
		i.disabledCombines = make(map[DefinitionID]struct{})
	}
	i.disabledCombines[with] = struct{}{}
}

// EnableCombine re-enables combining with the definition.
func (i *Instance) EnableCombine(with DefinitionID) { delete(i.disabledCombines, with) }

// CombineEnabled reports whether this instance may combine with the definition.
func (i *Instance) CombineEnabled(with DefinitionID) bool {
	_, off := i.disabledCombines[with]
	return !off
}

// DisabledCombines returns the disabled combine definition IDs in ascending order.
func (i *Instance) DisabledCombines() []DefinitionID {
	if len(i.disabledCombines) == 0 {
		return nil
	}
	out := make([]DefinitionID, 0, len(i.disabledCombines))
	for k := range i.disabledCombines {
		out = append(out, k)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}
