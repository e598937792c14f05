package storage

import (
	"context"

	"github.com/radiusdt/vector-etl/internal/models"
)

// FactRepo defines operations for the ad-performance fact table. Upsert
// keys on (date, ad_id) and replaces every non-key column on conflict.
type FactRepo interface {
	Upsert(ctx context.Context, f *models.AdFact) error
	Get(ctx context.Context, date, adID string) (*models.AdFact, error)
	ListByDate(ctx context.Context, date string) ([]*models.AdFact, error)
}

// MetadataRepo defines operations for the ad-metadata table. Upsert keys
// on ad_code and replaces every column on conflict.
type MetadataRepo interface {
	Upsert(ctx context.Context, m *models.AdMetadata) error
	Get(ctx context.Context, adCode string) (*models.AdMetadata, error)
	ListAll(ctx context.Context) ([]*models.AdMetadata, error)
}
