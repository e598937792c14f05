package etl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/radiusdt/vector-etl/internal/metrics"
	"github.com/radiusdt/vector-etl/internal/models"
	"github.com/radiusdt/vector-etl/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

const (
	syncLockKey   = "vector_etl:sync:lock"
	syncLockTTL   = 30 * time.Minute
	syncStatusKey = "vector_etl:sync:last"
)

var (
	// ErrValidation marks malformed request input; handlers map it to 400.
	ErrValidation = errors.New("validation error")
	// ErrSyncBusy is returned when another sync run holds the lock.
	ErrSyncBusy = errors.New("a sync run is already in progress")
)

// InsightsFetcher provides ad-level performance records for one day.
type InsightsFetcher interface {
	FetchDay(ctx context.Context, date string) ([]models.InsightRow, error)
}

// SheetFetcher provides the full metadata sheet as header-keyed rows.
type SheetFetcher interface {
	FetchAll(ctx context.Context) ([]map[string]string, error)
}

// SyncResult reports one single-day sync run.
type SyncResult struct {
	MetadataUpserted int    `json:"metadata_upserted"`
	FactUpserted     int    `json:"fact_upserted"`
	Date             string `json:"date"`
}

// BackfillResult reports one backfill run across an inclusive date range.
type BackfillResult struct {
	TotalProcessed int    `json:"total_processed"`
	Start          string `json:"start"`
	End            string `json:"end"`
}

// IngestResult reports one direct batch ingest.
type IngestResult struct {
	Inserted int `json:"inserted"`
}

// SyncStatus is the last-run record kept in Redis and served by the
// status endpoint.
type SyncStatus struct {
	RunID            string    `json:"run_id"`
	Mode             string    `json:"mode"`
	Date             string    `json:"date,omitempty"`
	Start            string    `json:"start,omitempty"`
	End              string    `json:"end,omitempty"`
	MetadataUpserted int       `json:"metadata_upserted"`
	FactUpserted     int       `json:"fact_upserted"`
	Error            string    `json:"error,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// SyncService drives reconciliation over the two feeds and the row sink.
// Each row's upsert is its own atomic unit and writes are strictly
// sequential; idempotent natural-key upserts make re-runs convergent.
type SyncService struct {
	facts    storage.FactRepo
	meta     storage.MetadataRepo
	insights InsightsFetcher
	sheet    SheetFetcher
	redis    *redis.Client // optional: run lock and status cache
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewSyncService constructs a SyncService. redisClient and m may be nil.
func NewSyncService(
	facts storage.FactRepo,
	meta storage.MetadataRepo,
	insights InsightsFetcher,
	sheet SheetFetcher,
	redisClient *redis.Client,
	logger *zap.Logger,
	m *metrics.Metrics,
) *SyncService {
	return &SyncService{
		facts:    facts,
		meta:     meta,
		insights: insights,
		sheet:    sheet,
		redis:    redisClient,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// SyncDaily pulls yesterday's performance data and the full metadata
// sheet, reconciling both into the store. The metadata sheet is always
// synced whole; it is not date-scoped. A feed without a usable payload
// aborts the whole call.
func (s *SyncService) SyncDaily(ctx context.Context) (*SyncResult, error) {
	runID := uuid.NewString()
	date := s.now().UTC().AddDate(0, 0, -1).Format(dateLayout)
	started := s.now().UTC()

	release, err := s.acquireLock(ctx, runID)
	if err != nil {
		return nil, err
	}
	defer release()

	s.logger.Info("daily sync starting",
		zap.String("run_id", runID),
		zap.String("date", date),
	)

	status := SyncStatus{RunID: runID, Mode: "daily", Date: date, StartedAt: started}

	metaCount, err := s.syncMetadata(ctx)
	if err != nil {
		s.finishRun("daily", &status, started, err)
		return nil, err
	}
	status.MetadataUpserted = metaCount

	factCount, err := s.syncFactsForDay(ctx, date)
	if err != nil {
		s.finishRun("daily", &status, started, err)
		return nil, err
	}
	status.FactUpserted = factCount

	s.finishRun("daily", &status, started, nil)
	s.logger.Info("daily sync finished",
		zap.String("run_id", runID),
		zap.String("date", date),
		zap.Int("metadata_upserted", metaCount),
		zap.Int("fact_upserted", factCount),
	)

	return &SyncResult{
		MetadataUpserted: metaCount,
		FactUpserted:     factCount,
		Date:             date,
	}, nil
}

// Backfill repeats the fact pull for each day of the inclusive range.
// Metadata is not re-synced. A failed day's fetch contributes zero rows
// and the loop continues; a row-sink failure aborts the run.
func (s *SyncService) Backfill(ctx context.Context, startDate, endDate string) (*BackfillResult, error) {
	if startDate == "" || endDate == "" {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", ErrValidation, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date %q", ErrValidation, endDate)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %s precedes start date %s", ErrValidation, endDate, startDate)
	}

	runID := uuid.NewString()
	started := s.now().UTC()

	release, err := s.acquireLock(ctx, runID)
	if err != nil {
		return nil, err
	}
	defer release()

	s.logger.Info("backfill starting",
		zap.String("run_id", runID),
		zap.String("start", startDate),
		zap.String("end", endDate),
	)

	status := SyncStatus{RunID: runID, Mode: "backfill", Start: startDate, End: endDate, StartedAt: started}

	total := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := d.Format(dateLayout)

		count, err := s.syncFactsForDay(ctx, day)
		if err != nil {
			if errors.Is(err, errUpstream) {
				// failed day yields zero rows, the range continues
				s.logger.Warn("backfill day failed, continuing",
					zap.String("run_id", runID),
					zap.String("date", day),
					zap.Error(err),
				)
				continue
			}
			status.FactUpserted = total
			s.finishRun("backfill", &status, started, err)
			return nil, err
		}
		total += count
	}

	status.FactUpserted = total
	s.finishRun("backfill", &status, started, nil)
	s.logger.Info("backfill finished",
		zap.String("run_id", runID),
		zap.Int("total_processed", total),
	)

	return &BackfillResult{TotalProcessed: total, Start: startDate, End: endDate}, nil
}

// IngestBatch upserts externally pre-shaped fact rows. Rows ride the same
// natural-key upsert as the daily pull, so re-posting a batch converges
// instead of failing on duplicate keys.
func (s *SyncService) IngestBatch(ctx context.Context, rows []models.AdFact) (*IngestResult, error) {
	for i := range rows {
		if rows[i].Date == "" || rows[i].AdID == "" {
			return nil, fmt.Errorf("%w: row %d is missing date or ad_id", ErrValidation, i)
		}
	}

	for i := range rows {
		if err := s.facts.Upsert(ctx, &rows[i]); err != nil {
			return nil, fmt.Errorf("failed to ingest row %d: %w", i, err)
		}
	}

	s.metrics.RecordRowsUpserted("meta_ads_fact", len(rows))
	s.logger.Info("batch ingested", zap.Int("rows", len(rows)))

	return &IngestResult{Inserted: len(rows)}, nil
}

// Status returns the last sync run record, or nil when none is known.
func (s *SyncService) Status(ctx context.Context) (*SyncStatus, error) {
	if s.redis == nil {
		return nil, fmt.Errorf("sync status requires Redis")
	}

	raw, err := s.redis.Get(ctx, syncStatusKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync status: %w", err)
	}

	var status SyncStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil, fmt.Errorf("failed to decode sync status: %w", err)
	}

	return &status, nil
}

// errUpstream marks feed failures so Backfill can tell them apart from
// row-sink failures.
var errUpstream = errors.New("upstream feed error")

func (s *SyncService) syncMetadata(ctx context.Context) (int, error) {
	s.metrics.RecordFeedRequest("sheet")

	rows, err := s.sheet.FetchAll(ctx)
	if err != nil {
		s.metrics.RecordFeedError("sheet")
		return 0, fmt.Errorf("%w: %v", errUpstream, err)
	}

	count := 0
	now := s.now().UTC()
	for _, row := range rows {
		rec := ReconcileMetadata(row, now)
		if rec == nil {
			s.metrics.RecordRowSkipped("ad_metadata", "blank_ad_code")
			continue
		}
		if err := s.meta.Upsert(ctx, rec); err != nil {
			return count, fmt.Errorf("failed to upsert metadata %s: %w", rec.AdCode, err)
		}
		count++
	}

	s.metrics.RecordRowsUpserted("ad_metadata", count)
	return count, nil
}

func (s *SyncService) syncFactsForDay(ctx context.Context, date string) (int, error) {
	s.metrics.RecordFeedRequest("insights")

	rows, err := s.insights.FetchDay(ctx, date)
	if err != nil {
		s.metrics.RecordFeedError("insights")
		return 0, fmt.Errorf("%w for %s: %v", errUpstream, date, err)
	}

	for _, row := range rows {
		fact := ReconcileFact(row)
		if err := s.facts.Upsert(ctx, fact); err != nil {
			return 0, fmt.Errorf("failed to upsert fact %s/%s: %w", fact.Date, fact.AdID, err)
		}
	}

	s.metrics.RecordRowsUpserted("meta_ads_fact", len(rows))
	return len(rows), nil
}

// acquireLock takes the Redis run lock when Redis is configured. Without
// Redis it is a no-op; overlapping runs are still convergent, just wasteful.
func (s *SyncService) acquireLock(ctx context.Context, runID string) (func(), error) {
	if s.redis == nil {
		return func() {}, nil
	}

	ok, err := s.redis.SetNX(ctx, syncLockKey, runID, syncLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return nil, ErrSyncBusy
	}

	return func() {
		if err := s.redis.Del(context.Background(), syncLockKey).Err(); err != nil {
			s.logger.Warn("failed to release sync lock", zap.Error(err))
		}
	}, nil
}

func (s *SyncService) finishRun(mode string, status *SyncStatus, started time.Time, runErr error) {
	finished := s.now().UTC()
	status.FinishedAt = finished

	outcome := "ok"
	if runErr != nil {
		outcome = "error"
		status.Error = runErr.Error()
	}
	s.metrics.RecordRun(mode, outcome, finished.Sub(started))

	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := s.redis.Set(context.Background(), syncStatusKey, raw, 0).Err(); err != nil {
		s.logger.Warn("failed to store sync status", zap.Error(err))
	}
}
