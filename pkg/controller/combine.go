package controller

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gravitas-games/invcore/pkg/inventory"
)

var (
	// ErrNoCombineRule is returned when two definitions have no combine rule.
	ErrNoCombineRule = errors.New("controller: no combine rule")
	// ErrCombineDisabled is returned when either instance has combining
	// with the other's definition disabled.
	ErrCombineDisabled = errors.New("controller: combine disabled")
	// ErrSameInstance is returned when an instance is combined with itself.
	ErrSameInstance = errors.New("controller: cannot combine an instance with itself")
)

// OutcomeMerged is the outcome token of a combine that merged two stacks.
const OutcomeMerged = "merged"

// CombineOutcome reports the result of Combine. Token is opaque to the
// controller: it is OutcomeMerged for stack merges and the rule's token
// otherwise, for the host's rule evaluator to act on.
type CombineOutcome struct {
	Token  string
	First  inventory.InstanceID
	Second inventory.InstanceID
	// Merged is the number of units moved by a stack merge.
	Merged int
}

type rulePair struct {
	a, b inventory.DefinitionID
}

func pairOf(a, b inventory.DefinitionID) rulePair {
	if a > b {
		a, b = b, a
	}
	return rulePair{a: a, b: b}
}

// CombineRule maps a pair of definitions to an outcome token.
type CombineRule struct {
	First   inventory.DefinitionID `json:"first" yaml:"first"`
	Second  inventory.DefinitionID `json:"second" yaml:"second"`
	Outcome string                 `json:"outcome" yaml:"outcome"`
}

// RuleTable is an order-insensitive combine rule lookup.
type RuleTable struct {
	mu    sync.RWMutex
	rules map[rulePair]string
}

// NewRuleTable creates a table seeded with rules.
func NewRuleTable(rules ...CombineRule) *RuleTable {
	t := &RuleTable{rules: make(map[rulePair]string, len(rules))}
	for _, r := range rules {
		t.Set(r.First, r.Second, r.Outcome)
	}
	return t
}

// Set adds or replaces the rule for the pair.
func (t *RuleTable) Set(a, b inventory.DefinitionID, outcome string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules[pairOf(a, b)] = outcome
}

// Lookup returns the outcome token for the pair in either order.
func (t *RuleTable) Lookup(a, b inventory.DefinitionID) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out, ok := t.rules[pairOf(a, b)]
	return out, ok
}

// Rules returns the table contents ordered by pair.
func (t *RuleTable) Rules() []CombineRule {
	t.mu.RLock()
	out := make([]CombineRule, 0, len(t.rules))
	for p, o := range t.rules {
		out = append(out, CombineRule{First: p.a, Second: p.b, Outcome: o})
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].First != out[j].First {
			return out[i].First < out[j].First
		}
		return out[i].Second < out[j].Second
	})
	return out
}

// Len returns the number of rules.
func (t *RuleTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rules)
}

// Combine applies first to second. Matching stackable instances merge,
// first into second, as far as second has room. Any other pair is looked
// up in the rule table and its token returned without touching either
// instance.
func (c *Controller) Combine(first, second inventory.InstanceID) (CombineOutcome, error) {
	if first == second {
		return CombineOutcome{}, ErrSameInstance
	}
	srcCol, srcSlot, ok := c.Locate(first)
	if !ok {
		return CombineOutcome{}, fmt.Errorf("first: %w", inventory.ErrNotFound)
	}
	dstCol, dstSlot, ok := c.Locate(second)
	if !ok {
		return CombineOutcome{}, fmt.Errorf("second: %w", inventory.ErrNotFound)
	}
	a, b := srcCol.SlotAt(srcSlot), dstCol.SlotAt(dstSlot)
	out := CombineOutcome{First: first, Second: second}

	if a.Stackable() && a.IsMatch(b, true) {
		amount := min(a.Count(), b.Capacity())
		if amount == 0 {
			return out, inventory.ErrFull
		}
		piece, err := srcCol.Take(a, amount)
		if err != nil {
			return out, err
		}
		if _, err := dstCol.Insert(piece, dstCol.IndexOf(b), inventory.FailTransfer); err != nil {
			returnTo(srcCol, piece, srcSlot)
			c.settle()
			return out, err
		}
		c.settle()
		out.Token = OutcomeMerged
		out.Merged = amount
		c.l.Debugf("Merged [%d] units of [%s] into [%s].", amount, first, second)
		return out, nil
	}

	if !a.CombineEnabled(b.Definition()) || !b.CombineEnabled(a.Definition()) {
		return out, ErrCombineDisabled
	}
	token, ok := c.rules.Lookup(a.Definition(), b.Definition())
	if !ok {
		return out, fmt.Errorf("%w: %d with %d", ErrNoCombineRule, a.Definition(), b.Definition())
	}
	out.Token = token
	c.l.Debugf("Combine of item [%d] with item [%d] resolved to [%s].", a.Definition(), b.Definition(), token)
	return out, nil
}
