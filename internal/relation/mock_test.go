package relation

import (
	"context"
	"fmt"
)

// fakeContext is an in-memory persistence context that records every
// Load and Reconcile call so tests can assert on call counts and
// mutation contents.
type fakeContext struct {
	// edges maps "kind(id).field" to the handles Load returns.
	edges map[string][]*Handle

	loadCalls  map[string]int
	mutations  []Mutation
	loadErr    error
	reconcErr  error
	totalLoads int
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		edges:     make(map[string][]*Handle),
		loadCalls: make(map[string]int),
	}
}

func relKey(owner *Handle, field string) string {
	return fmt.Sprintf("%s.%s", owner, field)
}

func (f *fakeContext) setEdges(owner *Handle, field string, members ...*Handle) {
	f.edges[relKey(owner, field)] = members
}

func (f *fakeContext) Load(ctx context.Context, owner *Handle, field string) ([]*Handle, error) {
	key := relKey(owner, field)
	f.loadCalls[key]++
	f.totalLoads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.edges[key], nil
}

func (f *fakeContext) Reconcile(ctx context.Context, m Mutation) error {
	if f.reconcErr != nil {
		return f.reconcErr
	}
	f.mutations = append(f.mutations, m)
	return nil
}

func (f *fakeContext) loads(owner *Handle, field string) int {
	return f.loadCalls[relKey(owner, field)]
}
