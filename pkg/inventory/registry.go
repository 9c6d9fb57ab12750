package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// Registry is the in-memory Catalog. It stores item definitions keyed by
// DefinitionID and indexes them by lower-cased name.
type Registry struct {
	mu     sync.RWMutex
	items  map[DefinitionID]ItemDefinition
	byName map[string]DefinitionID
}

// NewRegistry constructs a registry seeded with the given definitions.
// Invalid or duplicate seeds are skipped.
func NewRegistry(defs ...ItemDefinition) *Registry {
	r := &Registry{
		items:  make(map[DefinitionID]ItemDefinition, len(defs)),
		byName: make(map[string]DefinitionID, len(defs)),
	}
	for _, d := range defs {
		_ = r.Register(d) // ignore duplicates during seed
	}
	return r
}

// Register inserts or replaces a definition. The ID must be positive and a
// non-empty name must not already belong to another definition.
func (r *Registry) Register(def ItemDefinition) error {
	if def.ID <= 0 {
		return errors.New("inventory: definition id must be positive")
	}
	if def.MaxStack < 1 {
		def.MaxStack = 1
	}
	seen := make(map[PropertyID]struct{}, len(def.Properties))
	for _, p := range def.Properties {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("inventory: definition %d declares property %d twice", def.ID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items == nil {
		r.items = make(map[DefinitionID]ItemDefinition)
	}
	if r.byName == nil {
		r.byName = make(map[string]DefinitionID)
	}

	key := nameKey(def.Name)
	if key != "" {
		if owner, taken := r.byName[key]; taken && owner != def.ID {
			return fmt.Errorf("inventory: name %q already assigned to definition %d", def.Name, owner)
		}
	}
	if existing, ok := r.items[def.ID]; ok {
		delete(r.byName, nameKey(existing.Name))
	}
	r.items[def.ID] = def
	if key != "" {
		r.byName[key] = def.ID
	}
	return nil
}

// Lookup returns the definition for id, if present.
func (r *Registry) Lookup(id DefinitionID) (ItemDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.items[id]
	return def, ok
}

// LookupName resolves a definition by its case-insensitive name.
func (r *Registry) LookupName(name string) (ItemDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[nameKey(name)]
	if !ok {
		return ItemDefinition{}, false
	}
	def, ok := r.items[id]
	return def, ok
}

// Suggest returns up to limit definition names closest to name by edit
// distance, nearest first. Names further than half their own length away
// are not considered similar.
func (r *Registry) Suggest(name string, limit int) []string {
	query := nameKey(name)
	if query == "" || limit <= 0 {
		return nil
	}
	type candidate struct {
		name string
		dist int
	}
	r.mu.RLock()
	cands := make([]candidate, 0, len(r.byName))
	for key, id := range r.byName {
		dist := levenshtein.ComputeDistance(query, key)
		if dist > similarityLimit(len(key)) {
			continue
		}
		cands = append(cands, candidate{name: r.items[id].Name, dist: dist})
	}
	r.mu.RUnlock()

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].name < cands[j].name
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.name
	}
	return out
}

func similarityLimit(length int) int {
	if length <= 3 {
		return 1
	}
	return length / 2
}

// Export copies registry contents into a slice sorted by DefinitionID.
func (r *Registry) Export() []ItemDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.items) == 0 {
		return nil
	}
	out := make([]ItemDefinition, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
