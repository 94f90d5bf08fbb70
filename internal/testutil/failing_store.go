package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexanderramin/dayplanner/internal/kvstore"
)

// ErrInjected is the default failure returned by FailingStore.
var ErrInjected = errors.New("injected storage failure")

// FailingStore wraps a Store and fails selected operations on demand.
// Injected errors wrap kvstore.ErrUnavailable like a real backend failure.
type FailingStore struct {
	kvstore.Store

	mu       sync.Mutex
	failGet  bool
	failSet  bool
	failKeys map[string]bool
	err      error
	sets     int

	// armed turns into failNextGet after the next successful write.
	armed       bool
	failNextGet bool
}

func NewFailingStore(inner kvstore.Store) *FailingStore {
	if inner == nil {
		inner = kvstore.NewMemoryStore()
	}
	return &FailingStore{Store: inner, failKeys: make(map[string]bool), err: ErrInjected}
}

// FailReads makes every Get fail until turned off.
func (f *FailingStore) FailReads(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = on
}

// FailWrites makes every Set, SetMany, Remove and Clear fail until turned off.
func (f *FailingStore) FailWrites(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet = on
}

// FailKey makes reads and writes of a single key fail.
func (f *FailingStore) FailKey(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failKeys[key] = true
}

// FailReadAfterNextWrite lets the next write through and fails the one Get
// that follows it.
func (f *FailingStore) FailReadAfterNextWrite() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = true
}

// Writes returns the number of successful writes passed through.
func (f *FailingStore) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

func (f *FailingStore) check(read bool, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if read && f.failNextGet {
		f.failNextGet = false
		return fmt.Errorf("%w: %w", kvstore.ErrUnavailable, f.err)
	}
	if f.failKeys[key] || (read && f.failGet) || (!read && f.failSet) {
		return fmt.Errorf("%w: %w", kvstore.ErrUnavailable, f.err)
	}
	return nil
}

func (f *FailingStore) wrote() {
	f.mu.Lock()
	f.sets++
	if f.armed {
		f.armed, f.failNextGet = false, true
	}
	f.mu.Unlock()
}

func (f *FailingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := f.check(true, key); err != nil {
		return "", false, err
	}
	return f.Store.Get(ctx, key)
}

func (f *FailingStore) Set(ctx context.Context, key, value string) error {
	if err := f.check(false, key); err != nil {
		return err
	}
	if err := f.Store.Set(ctx, key, value); err != nil {
		return err
	}
	f.wrote()
	return nil
}

func (f *FailingStore) SetMany(ctx context.Context, entries map[string]string) error {
	for k := range entries {
		if err := f.check(false, k); err != nil {
			return err
		}
	}
	if err := f.Store.SetMany(ctx, entries); err != nil {
		return err
	}
	f.wrote()
	return nil
}

func (f *FailingStore) Remove(ctx context.Context, key string) error {
	if err := f.check(false, key); err != nil {
		return err
	}
	if err := f.Store.Remove(ctx, key); err != nil {
		return err
	}
	f.wrote()
	return nil
}

func (f *FailingStore) Clear(ctx context.Context) error {
	if err := f.check(false, ""); err != nil {
		return err
	}
	if err := f.Store.Clear(ctx); err != nil {
		return err
	}
	f.wrote()
	return nil
}
