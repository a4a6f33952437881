package tree

import (
	"context"
	"sync"
)

/*
Store is an interface to manage a store where the
trees of a forest being grown are kept by their
index in the forest.

All it methods take a context that may allow
cancelling the operation (thus forcing the return
of an error) if the implementation allows it.
*/
type Store interface {
	// Store takes the index of a tree in its forest
	// and the tree and keeps it in the store, replacing
	// any tree previously stored with that index. It
	// returns an error if the tree cannot be stored.
	Store(ctx context.Context, index int, t *Tree) error
	// Get takes an index and returns the tree in the
	// store with that index (or nil if it cannot be
	// found) or an error if the store cannot be
	// queried
	Get(ctx context.Context, index int) (*Tree, error)
	// Delete takes an index and deletes the tree
	// stored with it. It returns an error if the
	// tree exists but the deletion cannot be
	// performed.
	Delete(ctx context.Context, index int) error
	// Close closes the store, implementations should
	// freeing any resources in use as well as ensure
	// any pending changes are applied before returning
	// (unless the context expires). It returns an error
	// if the Close cannot be completed (because of the
	// context or another error)
	Close(ctx context.Context) error
}

type memoryStore struct {
	trees map[int]*Tree
	lock  *sync.RWMutex
}

// NewMemoryStore returns an implementation
// of Store with the process memory space
// as underlying backend
func NewMemoryStore() Store {
	return &memoryStore{
		trees: make(map[int]*Tree),
		lock:  &sync.RWMutex{},
	}
}

func (ms *memoryStore) Store(ctx context.Context, index int, t *Tree) error {
	return ms.withLock(ctx, func(ctx context.Context) error {
		ms.trees[index] = t
		return nil
	})
}

func (ms *memoryStore) Get(ctx context.Context, index int) (*Tree, error) {
	var t *Tree
	err := ms.withRLock(ctx, func(ctx context.Context) error {
		t = ms.trees[index]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (ms *memoryStore) Delete(ctx context.Context, index int) error {
	return ms.withLock(ctx, func(ctx context.Context) error {
		delete(ms.trees, index)
		return nil
	})
}

func (ms *memoryStore) Close(ctx context.Context) error {
	return nil
}

func (ms *memoryStore) withLock(ctx context.Context, f func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		ms.lock.Lock()
		select {
		case <-ctx.Done():
			ms.lock.Unlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer ms.lock.Unlock()
	}
	return f(ctx)
}

func (ms *memoryStore) withRLock(ctx context.Context, f func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		ms.lock.RLock()
		select {
		case <-ctx.Done():
			ms.lock.RUnlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer ms.lock.RUnlock()
	}
	return f(ctx)
}
