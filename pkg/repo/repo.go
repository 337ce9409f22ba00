// Package repo defines the generic Repository interface, list options and a
// Neo4j-backed implementation.
package repo

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by Get and Update when no node matches the ID.
var ErrNotFound = errors.New("not found")

// Repository is a generic CRUD interface.
type Repository[T any, ID comparable] interface {
	Get(ctx context.Context, id ID) (T, error)
	List(ctx context.Context, opts ListOpts) ([]T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	Upsert(ctx context.Context, entity T) error
	Delete(ctx context.Context, id ID) error
}

// ListOpts controls pagination and filtering for List operations. Filter
// keys are matched as equality on node properties.
type ListOpts struct {
	Offset int
	Limit  int
	Filter map[string]any
}
