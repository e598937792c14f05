package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/radiusdt/vector-etl/internal/models"
)

// PostgresMetadataRepo implements MetadataRepo using PostgreSQL.
type PostgresMetadataRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresMetadataRepo creates a new PostgreSQL-backed metadata repository.
func NewPostgresMetadataRepo(pool *pgxpool.Pool) *PostgresMetadataRepo {
	return &PostgresMetadataRepo{pool: pool}
}

const metadataColumns = `
	ad_code, creative_name, creative_link, product, funnel_level,
	objective, format, narrative, hook, tone, language, offer, price,
	season, production_team, author, "cast", title_main, title_sub,
	live, notes, month, date_raw, date, updated_at`

// Upsert inserts or updates one metadata row keyed by ad_code. Every
// column is replaced on conflict so the sheet stays the source of truth.
func (r *PostgresMetadataRepo) Upsert(ctx context.Context, m *models.AdMetadata) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ad_metadata (`+metadataColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
				$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (ad_code) DO UPDATE SET
			creative_name = EXCLUDED.creative_name,
			creative_link = EXCLUDED.creative_link,
			product = EXCLUDED.product,
			funnel_level = EXCLUDED.funnel_level,
			objective = EXCLUDED.objective,
			format = EXCLUDED.format,
			narrative = EXCLUDED.narrative,
			hook = EXCLUDED.hook,
			tone = EXCLUDED.tone,
			language = EXCLUDED.language,
			offer = EXCLUDED.offer,
			price = EXCLUDED.price,
			season = EXCLUDED.season,
			production_team = EXCLUDED.production_team,
			author = EXCLUDED.author,
			"cast" = EXCLUDED."cast",
			title_main = EXCLUDED.title_main,
			title_sub = EXCLUDED.title_sub,
			live = EXCLUDED.live,
			notes = EXCLUDED.notes,
			month = EXCLUDED.month,
			date_raw = EXCLUDED.date_raw,
			date = EXCLUDED.date,
			updated_at = EXCLUDED.updated_at
	`, m.AdCode, m.CreativeName, m.CreativeLink, m.Product, m.FunnelLevel,
		m.Objective, m.Format, m.Narrative, m.Hook, m.Tone, m.Language,
		m.Offer, m.Price, m.Season, m.ProductionTeam, m.Author, m.Cast,
		m.TitleMain, m.TitleSub, m.Live, m.Notes, m.Month, m.DateRaw,
		m.Date, m.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert metadata: %w", err)
	}

	return nil
}

// Get returns one metadata row by ad code or nil if not found.
func (r *PostgresMetadataRepo) Get(ctx context.Context, adCode string) (*models.AdMetadata, error) {
	var m models.AdMetadata

	err := r.pool.QueryRow(ctx, `
		SELECT ad_code, creative_name, creative_link, product, funnel_level,
			   objective, format, narrative, hook, tone, language, offer,
			   price, season, production_team, author, "cast", title_main,
			   title_sub, live, notes, month, date_raw, date::text, updated_at
		FROM ad_metadata WHERE ad_code = $1
	`, adCode).Scan(
		&m.AdCode, &m.CreativeName, &m.CreativeLink, &m.Product, &m.FunnelLevel,
		&m.Objective, &m.Format, &m.Narrative, &m.Hook, &m.Tone, &m.Language,
		&m.Offer, &m.Price, &m.Season, &m.ProductionTeam, &m.Author, &m.Cast,
		&m.TitleMain, &m.TitleSub, &m.Live, &m.Notes, &m.Month, &m.DateRaw,
		&m.Date, &m.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	return &m, nil
}

// ListAll returns every metadata row.
func (r *PostgresMetadataRepo) ListAll(ctx context.Context) ([]*models.AdMetadata, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ad_code, creative_name, creative_link, product, funnel_level,
			   objective, format, narrative, hook, tone, language, offer,
			   price, season, production_team, author, "cast", title_main,
			   title_sub, live, notes, month, date_raw, date::text, updated_at
		FROM ad_metadata ORDER BY ad_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	defer rows.Close()

	var records []*models.AdMetadata
	for rows.Next() {
		var m models.AdMetadata
		if err := rows.Scan(
			&m.AdCode, &m.CreativeName, &m.CreativeLink, &m.Product, &m.FunnelLevel,
			&m.Objective, &m.Format, &m.Narrative, &m.Hook, &m.Tone, &m.Language,
			&m.Offer, &m.Price, &m.Season, &m.ProductionTeam, &m.Author, &m.Cast,
			&m.TitleMain, &m.TitleSub, &m.Live, &m.Notes, &m.Month, &m.DateRaw,
			&m.Date, &m.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, &m)
	}

	return records, rows.Err()
}
