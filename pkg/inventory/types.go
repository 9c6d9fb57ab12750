// Package inventory implements slot-based item collections: stacking,
// capacity and category rules, partial transfers and reordering. Item
// metadata comes from a read-only Catalog supplied by the host.
package inventory

import "errors"

// DefinitionID identifies an item definition in the catalog.
type DefinitionID int

// CategoryID groups definitions for collection filters.
type CategoryID int

// PropertyID identifies a property within a definition's schema.
type PropertyID int

// InstanceID is the stable handle of a runtime item instance. Collections,
// selections and events refer to instances by this value.
type InstanceID string

var (
	// ErrUnknownDefinition is returned when the catalog has no entry for an ID.
	ErrUnknownDefinition = errors.New("inventory: unknown item definition")
	// ErrCategoryBlocked is returned when a collection's category filter
	// excludes the definition.
	ErrCategoryBlocked = errors.New("inventory: category not allowed in collection")
	// ErrDuplicateUnstackable is returned when a collection already holds an
	// instance of a definition that cannot carry multiples.
	ErrDuplicateUnstackable = errors.New("inventory: collection already holds this unstackable item")
	// ErrFull is returned when no slot is available for the unmerged
	// remainder. Merges performed before the rejection are kept.
	ErrFull = errors.New("inventory: collection is full")
	// ErrInvalidSlotIndex is returned for negative or out-of-range indices.
	ErrInvalidSlotIndex = errors.New("inventory: invalid slot index")
	// ErrSwapRejected is returned when a swap would leave a duplicate
	// unstackable item in the collection receiving the displaced instance.
	ErrSwapRejected = errors.New("inventory: swap rejected")
	// ErrSlotOccupied is returned by FailTransfer inserts into occupied slots.
	ErrSlotOccupied = errors.New("inventory: slot occupied")
	// ErrNotReorderable is returned when an operation needs to leave items
	// at arbitrary positions in a collection that cannot be reordered.
	ErrNotReorderable = errors.New("inventory: collection cannot be reordered")
	// ErrInvalidAmount is returned for non-positive or excessive amounts.
	ErrInvalidAmount = errors.New("inventory: invalid amount")
	// ErrNotFound is returned when an instance is not held by the collection.
	ErrNotFound = errors.New("inventory: instance not found")
	// ErrSameCollection is returned when a transfer names one collection as
	// both source and destination.
	ErrSameCollection = errors.New("inventory: source and destination are the same collection")
)

// PropertyKind tags the value held by a PropertyValue.
type PropertyKind string

const (
	KindInt    PropertyKind = "int"
	KindFloat  PropertyKind = "float"
	KindBool   PropertyKind = "bool"
	KindString PropertyKind = "string"
	// KindRef holds an object reference. References are compared by
	// identity, which here is the referenced object's numeric handle.
	KindRef PropertyKind = "ref"
)

// PropertyValue is a comparable tagged value. Two values are equal when
// their kinds and payloads are equal, so == is the property equality used
// by instance matching.
type PropertyValue struct {
	Kind   PropertyKind `json:"kind" yaml:"kind"`
	Int    int64        `json:"int,omitempty" yaml:"int,omitempty"`
	Float  float64      `json:"float,omitempty" yaml:"float,omitempty"`
	Bool   bool         `json:"bool,omitempty" yaml:"bool,omitempty"`
	String string       `json:"string,omitempty" yaml:"string,omitempty"`
	Ref    int64        `json:"ref,omitempty" yaml:"ref,omitempty"`
}

func IntValue(v int64) PropertyValue { return PropertyValue{Kind: KindInt, Int: v} }
func FloatValue(v float64) PropertyValue { return PropertyValue{Kind: KindFloat, Float: v} }
func BoolValue(v bool) PropertyValue { return PropertyValue{Kind: KindBool, Bool: v} }
func StringValue(v string) PropertyValue { return PropertyValue{Kind: KindString, String: v} }
func RefValue(handle int64) PropertyValue { return PropertyValue{Kind: KindRef, Ref: handle} }

// PropertyDef declares a property and the default every new instance
// starts with.
type PropertyDef struct {
	ID      PropertyID    `json:"id" yaml:"id"`
	Name    string        `json:"name,omitempty" yaml:"name,omitempty"`
	Default PropertyValue `json:"default" yaml:"default"`
}

// Property is one entry of an instance's ordered property map.
type Property struct {
	ID    PropertyID    `json:"id"`
	Value PropertyValue `json:"value"`
}

// ItemDefinition is the static, catalog-level description of an item type.
type ItemDefinition struct {
	ID          DefinitionID  `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Stackable   bool          `json:"stackable" yaml:"stackable"`
	MaxStack    int           `json:"maxStack,omitempty" yaml:"max_stack,omitempty"`
	Category    CategoryID    `json:"category,omitempty" yaml:"category,omitempty"`
	Properties  []PropertyDef `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// StackLimit returns the effective per-slot maximum: 1 for definitions that
// cannot carry multiples, otherwise MaxStack (at least 1).
func (d ItemDefinition) StackLimit() int {
	if !d.Stackable || d.MaxStack < 1 {
		return 1
	}
	return d.MaxStack
}

// Catalog resolves definition IDs to static metadata. Implementations must
// be immutable once collections start using them.
type Catalog interface {
	Lookup(id DefinitionID) (ItemDefinition, bool)
}
