package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/user/vulnrecord/pkg/model"
	"github.com/user/vulnrecord/pkg/schema"
)

// DefaultCapacity bounds a MemoryStore when no capacity is configured.
const DefaultCapacity = 1024

// MemoryStore keeps the most recently stored reports in an LRU cache.
type MemoryStore struct {
	mu        sync.Mutex
	docs      *lru.Cache[string, *Document]
	validator *schema.Validator
}

// NewMemoryStore creates a store holding at most capacity reports.
func NewMemoryStore(capacity int, v *schema.Validator) (*MemoryStore, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	docs, err := lru.New[string, *Document](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &MemoryStore{docs: docs, validator: v}, nil
}

func (s *MemoryStore) Save(ctx context.Context, r *model.Report) (*Document, error) {
	if err := prepare(s.validator, r); err != nil {
		return nil, err
	}
	stored, err := clone(r)
	if err != nil {
		return nil, fmt.Errorf("failed to copy report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs.Contains(r.ReportID) {
		return nil, duplicateID(r.ReportID)
	}
	doc := &Document{ID: uuid.NewString(), StoredAt: time.Now().UTC(), Report: stored}
	s.docs.Add(r.ReportID, doc)
	return copyDocument(doc)
}

func (s *MemoryStore) Get(ctx context.Context, reportID string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs.Peek(reportID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, reportID)
	}
	return copyDocument(doc)
}

// List returns stored documents, oldest first.
func (s *MemoryStore) List(ctx context.Context) ([]*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.docs.Keys()
	out := make([]*Document, 0, len(keys))
	for _, k := range keys {
		doc, ok := s.docs.Peek(k)
		if !ok {
			continue
		}
		c, err := copyDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// copyDocument keeps cached reports private to the store.
func copyDocument(doc *Document) (*Document, error) {
	r, err := clone(doc.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to copy report: %w", err)
	}
	return &Document{ID: doc.ID, StoredAt: doc.StoredAt, Report: r}, nil
}

func (s *MemoryStore) Close() error {
	s.docs.Purge()
	return nil
}
