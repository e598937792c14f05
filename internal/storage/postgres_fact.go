package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/radiusdt/vector-etl/internal/models"
)

// PostgresFactRepo implements FactRepo using PostgreSQL.
type PostgresFactRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresFactRepo creates a new PostgreSQL-backed fact repository.
func NewPostgresFactRepo(pool *pgxpool.Pool) *PostgresFactRepo {
	return &PostgresFactRepo{pool: pool}
}

// Upsert inserts or updates one fact row keyed by (date, ad_id).
func (r *PostgresFactRepo) Upsert(ctx context.Context, f *models.AdFact) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO meta_ads_fact (
			date, ad_id, ad_name, ad_code, campaign_name,
			spend, impressions, clicks, ctr, cpc, cpm,
			purchases, purchase_value, roas
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (date, ad_id) DO UPDATE SET
			ad_name = EXCLUDED.ad_name,
			ad_code = EXCLUDED.ad_code,
			campaign_name = EXCLUDED.campaign_name,
			spend = EXCLUDED.spend,
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			ctr = EXCLUDED.ctr,
			cpc = EXCLUDED.cpc,
			cpm = EXCLUDED.cpm,
			purchases = EXCLUDED.purchases,
			purchase_value = EXCLUDED.purchase_value,
			roas = EXCLUDED.roas
	`, f.Date, f.AdID, f.AdName, f.AdCode, f.CampaignName,
		f.Spend, f.Impressions, f.Clicks, f.CTR, f.CPC, f.CPM,
		f.Purchases, f.PurchaseValue, f.ROAS)

	if err != nil {
		return fmt.Errorf("failed to upsert fact: %w", err)
	}

	return nil
}

// Get returns one fact row by its natural key or nil if not found.
func (r *PostgresFactRepo) Get(ctx context.Context, date, adID string) (*models.AdFact, error) {
	var f models.AdFact

	err := r.pool.QueryRow(ctx, `
		SELECT date::text, ad_id, ad_name, ad_code, campaign_name,
			   spend, impressions, clicks, ctr, cpc, cpm,
			   purchases, purchase_value, roas
		FROM meta_ads_fact WHERE date = $1 AND ad_id = $2
	`, date, adID).Scan(
		&f.Date, &f.AdID, &f.AdName, &f.AdCode, &f.CampaignName,
		&f.Spend, &f.Impressions, &f.Clicks, &f.CTR, &f.CPC, &f.CPM,
		&f.Purchases, &f.PurchaseValue, &f.ROAS)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fact: %w", err)
	}

	return &f, nil
}

// ListByDate returns all fact rows for one reporting day.
func (r *PostgresFactRepo) ListByDate(ctx context.Context, date string) ([]*models.AdFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date::text, ad_id, ad_name, ad_code, campaign_name,
			   spend, impressions, clicks, ctr, cpc, cpm,
			   purchases, purchase_value, roas
		FROM meta_ads_fact WHERE date = $1 ORDER BY ad_id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}
	defer rows.Close()

	var facts []*models.AdFact
	for rows.Next() {
		var f models.AdFact
		if err := rows.Scan(
			&f.Date, &f.AdID, &f.AdName, &f.AdCode, &f.CampaignName,
			&f.Spend, &f.Impressions, &f.Clicks, &f.CTR, &f.CPC, &f.CPM,
			&f.Purchases, &f.PurchaseValue, &f.ROAS); err != nil {
			return nil, err
		}
		facts = append(facts, &f)
	}

	return facts, rows.Err()
}
