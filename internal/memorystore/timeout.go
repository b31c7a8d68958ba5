package memorystore

import (
	"context"
	"time"
)

// timeoutStore bounds each store call with a deadline.
//
// The assembler's executor never cancels sibling searches, so per-call
// timeouts are the only thing keeping one slow category from stalling an
// entire assembly. The timeout lives here, in the store client, rather than
// in the executor; it surfaces as a per-category error.
type timeoutStore struct {
	inner   Store
	timeout time.Duration
}

// NewTimeoutStore wraps a store so every Search and ResolveGrouping call is
// bounded by the given timeout. A non-positive timeout returns the store
// unwrapped.
func NewTimeoutStore(inner Store, timeout time.Duration) Store {
	if timeout <= 0 {
		return inner
	}
	return &timeoutStore{inner: inner, timeout: timeout}
}

func (s *timeoutStore) Search(ctx context.Context, q Query) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.Search(ctx, q)
}

func (s *timeoutStore) ResolveGrouping(ctx context.Context, key GroupingKey) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.ResolveGrouping(ctx, key)
}

func (s *timeoutStore) Close() error {
	return s.inner.Close()
}
