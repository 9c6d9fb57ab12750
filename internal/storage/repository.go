package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/invcore/pkg/inventory"
)

// Repository saves and restores collections through a backend.
type Repository struct {
	backend Backend
	l       logrus.FieldLogger
}

// NewRepository creates a repository over the backend.
func NewRepository(backend Backend, l logrus.FieldLogger) *Repository {
	return &Repository{backend: backend, l: l}
}

// Backend returns the underlying backend.
func (r *Repository) Backend() Backend { return r.backend }

// Save stores the collection's snapshot under its ID.
func (r *Repository) Save(ctx context.Context, c *inventory.Collection) error {
	data, err := c.MarshalSnapshot()
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", c.ID(), err)
	}
	if err := r.backend.Put(ctx, c.ID(), data); err != nil {
		return err
	}
	r.l.Debugf("Saved collection [%s] with [%d] slots.", c.ID(), c.Len())
	return nil
}

// Load restores the collection from the snapshot stored under its ID.
func (r *Repository) Load(ctx context.Context, c *inventory.Collection) error {
	data, err := r.backend.Get(ctx, c.ID())
	if err != nil {
		return err
	}
	ss, err := inventory.ParseSnapshot(data)
	if err != nil {
		return fmt.Errorf("failed to restore collection %s: %w", c.ID(), err)
	}
	if dropped := c.Restore(ss); dropped > 0 {
		r.l.Warnf("Dropped [%d] records the collection [%s] no longer accepts.", dropped, c.ID())
	}
	r.l.Debugf("Loaded collection [%s] with [%d] slots.", c.ID(), c.Len())
	return nil
}

// SaveAll stores every collection, stopping at the first failure.
func (r *Repository) SaveAll(ctx context.Context, cols []*inventory.Collection) error {
	for _, c := range cols {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll restores every collection that has a stored snapshot and returns
// how many were restored. Collections without one are left as they are.
func (r *Repository) LoadAll(ctx context.Context, cols []*inventory.Collection) (int, error) {
	n := 0
	for _, c := range cols {
		err := r.Load(ctx, c)
		if errors.Is(err, ErrNotFound) {
			r.l.Debugf("No snapshot stored for collection [%s].", c.ID())
			continue
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
