package memorystore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryStore is an in-memory Store implementation for testing and local
// development. It ranks by naive term overlap between query text and item
// content, which is deterministic and good enough for exercising the
// assembler's behavior.
type InMemoryStore struct {
	mu        sync.RWMutex
	items     []Item
	groupings map[string]string

	searchErr error
	failTags  map[string]error
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		groupings: make(map[string]string),
		failTags:  make(map[string]error),
	}
}

// AddItem adds an item. Tags are stored on the item's "tags" metadata field
// as a comma-separated list, matching the chromem adapter's convention.
func (s *InMemoryStore) AddItem(item Item, tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Metadata == nil {
		item.Metadata = make(map[string]any)
	}
	if len(tags) > 0 {
		item.Metadata["tags"] = strings.Join(tags, ",")
	}
	s.items = append(s.items, item)
}

// AddGrouping registers a grouping resolution for a deliverable/topic pair.
func (s *InMemoryStore) AddGrouping(key GroupingKey, groupingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupings[groupingKeyString(key)] = groupingID
}

// FailSearches makes every subsequent Search return err. Pass nil to reset.
func (s *InMemoryStore) FailSearches(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchErr = err
}

// FailTag makes searches that require the given tag return err.
// Used to simulate a single failing category.
func (s *InMemoryStore) FailTag(tag string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failTags[tag] = err
}

// Search implements Store.
func (s *InMemoryStore) Search(ctx context.Context, q Query) ([]Item, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.searchErr != nil {
		return nil, s.searchErr
	}
	for _, tag := range q.Tags {
		if err := s.failTags[tag]; err != nil {
			return nil, err
		}
	}

	type scored struct {
		item  Item
		score float32
	}

	terms := strings.Fields(strings.ToLower(q.Text))
	var matches []scored

	for _, item := range s.items {
		tags, _ := item.Metadata["tags"].(string)
		if !matchesTags(tags, q.Tags) {
			continue
		}
		if !s.matchesFilters(item, q.Filters) {
			continue
		}

		var score float32
		content := strings.ToLower(item.Content)
		for _, term := range terms {
			if strings.Contains(content, term) {
				score++
			}
		}
		matches = append(matches, scored{item: item, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	results := make([]Item, 0, q.Limit)
	for _, m := range matches {
		item := m.item
		item.Score = m.score
		results = append(results, item)
		if len(results) == q.Limit {
			break
		}
	}
	return results, nil
}

func (s *InMemoryStore) matchesFilters(item Item, filters []Filter) bool {
	for _, f := range filters {
		val, _ := item.Metadata[f.Field].(string)
		equal := val == f.Value
		if f.Negate && equal {
			return false
		}
		// Non-negated filters are best-effort hints: only exclude items
		// that carry the field with a different value.
		if !f.Negate && val != "" && !equal {
			return false
		}
	}
	return true
}

// ResolveGrouping implements Store.
func (s *InMemoryStore) ResolveGrouping(ctx context.Context, key GroupingKey) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.groupings[groupingKeyString(key)]; ok {
		return id, nil
	}
	return "", ErrGroupingNotFound
}

// Close implements Store.
func (s *InMemoryStore) Close() error {
	return nil
}

func groupingKeyString(key GroupingKey) string {
	return strings.ToLower(key.Deliverable) + "|" + strings.ToLower(key.Topic)
}
