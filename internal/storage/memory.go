package storage

import (
	"context"
	"sync"

	"github.com/radiusdt/vector-etl/internal/models"
)

// InMemoryFactRepo is a map-backed FactRepo used in tests and when the
// database is unavailable at startup. Rows are keyed by date + ad_id, so
// it carries the same one-row-per-key semantics as the Postgres table.
type InMemoryFactRepo struct {
	mu    sync.RWMutex
	facts map[string]*models.AdFact
}

// NewInMemoryFactRepo creates a new empty in-memory fact repo.
func NewInMemoryFactRepo() *InMemoryFactRepo {
	return &InMemoryFactRepo{facts: make(map[string]*models.AdFact)}
}

func factKey(date, adID string) string {
	return date + "|" + adID
}

// Upsert inserts or replaces the fact row for (date, ad_id). It stores a
// copy to avoid external mutation of the stored value.
func (r *InMemoryFactRepo) Upsert(ctx context.Context, f *models.AdFact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.facts[factKey(f.Date, f.AdID)] = &cp
	return nil
}

// Get returns the fact row for (date, ad_id) or nil if not found.
func (r *InMemoryFactRepo) Get(ctx context.Context, date, adID string) (*models.AdFact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.facts[factKey(date, adID)]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

// ListByDate returns all fact rows for one reporting day.
func (r *InMemoryFactRepo) ListByDate(ctx context.Context, date string) ([]*models.AdFact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []*models.AdFact
	for _, f := range r.facts {
		if f.Date == date {
			cp := *f
			res = append(res, &cp)
		}
	}
	return res, nil
}

// Count returns the number of stored fact rows.
func (r *InMemoryFactRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.facts)
}

// InMemoryMetadataRepo is a map-backed MetadataRepo keyed by ad_code.
type InMemoryMetadataRepo struct {
	mu      sync.RWMutex
	records map[string]*models.AdMetadata
}

// NewInMemoryMetadataRepo creates a new empty in-memory metadata repo.
func NewInMemoryMetadataRepo() *InMemoryMetadataRepo {
	return &InMemoryMetadataRepo{records: make(map[string]*models.AdMetadata)}
}

// Upsert inserts or replaces the metadata row for the record's ad code.
func (r *InMemoryMetadataRepo) Upsert(ctx context.Context, m *models.AdMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.records[m.AdCode] = &cp
	return nil
}

// Get returns the metadata row for an ad code or nil if not found.
func (r *InMemoryMetadataRepo) Get(ctx context.Context, adCode string) (*models.AdMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.records[adCode]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

// ListAll returns every metadata row.
func (r *InMemoryMetadataRepo) ListAll(ctx context.Context) ([]*models.AdMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*models.AdMetadata, 0, len(r.records))
	for _, m := range r.records {
		cp := *m
		res = append(res, &cp)
	}
	return res, nil
}

// Count returns the number of stored metadata rows.
func (r *InMemoryMetadataRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
