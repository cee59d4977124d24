package server

import (
	"context"

	"github.com/graphbridge/agegraph/pkg/graph"
)

// storeAdapter lifts *graph.Store to the Store interface, whose
// session-returning methods use the Session interface type.
type storeAdapter struct {
	store *graph.Store
}

// AdaptStore wraps a live graph store for use with New.
func AdaptStore(s *graph.Store) Store {
	return &storeAdapter{store: s}
}

func (a *storeAdapter) ListGraphs(ctx context.Context) ([]string, error) {
	return a.store.ListGraphs(ctx)
}

func (a *storeAdapter) CreateGraph(ctx context.Context, name string) (Session, error) {
	sess, err := a.store.CreateGraph(ctx, name)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (a *storeAdapter) DropGraph(ctx context.Context, name string) error {
	return a.store.DropGraph(ctx, name)
}

func (a *storeAdapter) Session(ctx context.Context, name string) (Session, error) {
	sess, err := a.store.Session(ctx, name)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (a *storeAdapter) CreateIndexes(ctx context.Context, name string) ([]string, error) {
	return a.store.CreateIndexes(ctx, name)
}
