package etl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/radiusdt/vector-etl/internal/models"
	"github.com/radiusdt/vector-etl/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInsights struct {
	byDate   map[string][]models.InsightRow
	errDates map[string]error
	calls    []string
}

func (f *fakeInsights) FetchDay(ctx context.Context, date string) ([]models.InsightRow, error) {
	f.calls = append(f.calls, date)
	if err, ok := f.errDates[date]; ok {
		return nil, err
	}
	return f.byDate[date], nil
}

type fakeSheet struct {
	rows []map[string]string
	err  error
}

func (f *fakeSheet) FetchAll(ctx context.Context) ([]map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type failingFactRepo struct {
	storage.FactRepo
	failAdID string
}

func (r *failingFactRepo) Upsert(ctx context.Context, f *models.AdFact) error {
	if f.AdID == r.failAdID {
		return errors.New("connection reset")
	}
	return r.FactRepo.Upsert(ctx, f)
}

// fixed clock: "yesterday" is always 2024-03-10
var fixedNow = time.Date(2024, 3, 11, 8, 30, 0, 0, time.UTC)

func insightRow(adID, name, impressions, clicks, spend string) models.InsightRow {
	return models.InsightRow{
		DateStart:    "2024-03-10",
		AdID:         adID,
		AdName:       name,
		CampaignName: "Spring 2024",
		Impressions:  impressions,
		Clicks:       clicks,
		Spend:        spend,
	}
}

func newTestService(facts storage.FactRepo, meta storage.MetadataRepo, ins InsightsFetcher, sheet SheetFetcher) *SyncService {
	s := NewSyncService(facts, meta, ins, sheet, nil, zap.NewNop(), nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestSyncDaily(t *testing.T) {
	facts := storage.NewInMemoryFactRepo()
	meta := storage.NewInMemoryMetadataRepo()
	ins := &fakeInsights{byDate: map[string][]models.InsightRow{
		"2024-03-10": {
			insightRow("a1", "NK_1 Hero", "1000", "20", "50.0"),
			insightRow("a2", "Generic Ad", "500", "5", "10.0"),
		},
	}}
	sheet := &fakeSheet{rows: []map[string]string{
		{"Ad Code": "NK-1", "Creative Name": "Hero"},
		{"Ad Code": "NK_2", "Creative Name": "Second"},
		{"Ad Code": "", "Creative Name": "Orphan"}, // skipped
	}}

	svc := newTestService(facts, meta, ins, sheet)

	result, err := svc.SyncDaily(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-03-10", result.Date)
	assert.Equal(t, 2, result.MetadataUpserted)
	assert.Equal(t, 2, result.FactUpserted)

	assert.Equal(t, []string{"2024-03-10"}, ins.calls)
	assert.Equal(t, 2, meta.Count())
	assert.Equal(t, 2, facts.Count())

	// underscore code normalized before keying
	rec, err := meta.Get(context.Background(), "NK-2")
	require.NoError(t, err)
	require.NotNil(t, rec)

	f, err := facts.Get(context.Background(), "2024-03-10", "a1")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 2.0, f.CTR)
	require.NotNil(t, f.AdCode)
	assert.Equal(t, "NK-1", *f.AdCode)
}

func TestSyncDailyIdempotent(t *testing.T) {
	facts := storage.NewInMemoryFactRepo()
	meta := storage.NewInMemoryMetadataRepo()
	ins := &fakeInsights{byDate: map[string][]models.InsightRow{
		"2024-03-10": {insightRow("a1", "NK_1 Hero", "1000", "20", "50.0")},
	}}
	sheet := &fakeSheet{rows: []map[string]string{{"Ad Code": "NK-1"}}}

	svc := newTestService(facts, meta, ins, sheet)

	_, err := svc.SyncDaily(context.Background())
	require.NoError(t, err)
	first, err := facts.Get(context.Background(), "2024-03-10", "a1")
	require.NoError(t, err)

	_, err = svc.SyncDaily(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, facts.Count())
	assert.Equal(t, 1, meta.Count())

	second, err := facts.Get(context.Background(), "2024-03-10", "a1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSyncDailyInsightsFeedErrorAborts(t *testing.T) {
	facts := storage.NewInMemoryFactRepo()
	meta := storage.NewInMemoryMetadataRepo()
	ins := &fakeInsights{errDates: map[string]error{
		"2024-03-10": errors.New("meta api error: invalid token"),
	}}
	sheet := &fakeSheet{rows: []map[string]string{{"Ad Code": "NK-1"}}}

	svc := newTestService(facts, meta, ins, sheet)

	_, err := svc.SyncDaily(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// metadata had already been reconciled before the fact pull failed
	assert.Equal(t, 1, meta.Count())
	assert.Equal(t, 0, facts.Count())
}

func TestSyncDailySheetErrorAborts(t *testing.T) {
	facts := storage.NewInMemoryFactRepo()
	meta := storage.NewInMemoryMetadataRepo()
	ins := &fakeInsights{}
	sheet := &fakeSheet{err: errors.New("sheet fetch returned status 403")}

	svc := newTestService(facts, meta, ins, sheet)

	_, err := svc.SyncDaily(context.Background())
	require.Error(t, err)
	assert.Empty(t, ins.calls)
}

func TestBackfill(t *testing.T) {
	facts := storage.NewInMemoryFactRepo()
	meta := storage.NewInMemoryMetadataRepo()
	ins := &fakeInsights{
		byDate: map[string][]models.InsightRow{
			"2024-03-01": {
				{DateStart: "2024-03-01", AdID: "a1", AdName: "NK_1", Impressions: "100"},
				{DateStart: "2024-03-01", AdID: "a2", AdName: "NK_2", Impressions: "200"},
			},
			"2024-03-03": {
				{DateStart: "2024-03-03", AdID: "a1", AdName: "NK_1", Impressions: "300"},
			},
		},
		errDates: map[string]error{
			"2024-03-02": errors.New("meta api returned no data payload (status 500)"),
		},
	}
	sheet := &fakeSheet{}

	svc := newTestService(facts, meta, ins, sheet)

	result, err := svc.Backfill(context.Background(), "2024-03-01", "2024-03-03")
	require.NoError(t, err)

	// failed middle day contributes zero rows but does not stop the range
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, ins.calls)
	assert.Equal(t, 3, facts.Count())

	// backfill never touches metadata
	assert.Equal(t, 0, meta.Count())
}

func TestBackfillValidation(t *testing.T) {
	svc := newTestService(storage.NewInMemoryFactRepo(), storage.NewInMemoryMetadataRepo(), &fakeInsights{}, &fakeSheet{})

	tests := []struct {
		name       string
		start, end string
	}{
		{"missing start", "", "2024-03-03"},
		{"missing end", "2024-03-01", ""},
		{"bad start format", "03/01/2024", "2024-03-03"},
		{"end before start", "2024-03-03", "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Backfill(context.Background(), tt.start, tt.end)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestBackfillSinkErrorAborts(t *testing.T) {
	facts := &failingFactRepo{FactRepo: storage.NewInMemoryFactRepo(), failAdID: "bad"}
	ins := &fakeInsights{byDate: map[string][]models.InsightRow{
		"2024-03-01": {
			{DateStart: "2024-03-01", AdID: "a1", AdName: "NK_1"},
			{DateStart: "2024-03-01", AdID: "bad", AdName: "NK_2"},
		},
	}}

	svc := newTestService(facts, storage.NewInMemoryMetadataRepo(), ins, &fakeSheet{})

	_, err := svc.Backfill(context.Background(), "2024-03-01", "2024-03-02")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	// the sink failure stops the range; day two is never fetched
	assert.Equal(t, []string{"2024-03-01"}, ins.calls)
}

func TestIngestBatch(t *testing.T) {
	facts := storage.NewInMemoryFactRepo()
	svc := newTestService(facts, storage.NewInMemoryMetadataRepo(), &fakeInsights{}, &fakeSheet{})

	code := "NK-1"
	rows := []models.AdFact{
		{Date: "2024-03-10", AdID: "a1", AdName: "NK_1", AdCode: &code, Spend: 50, Impressions: 1000, Clicks: 20},
		{Date: "2024-03-10", AdID: "a2", AdName: "Generic", Spend: 10},
		// duplicate key converges instead of failing
		{Date: "2024-03-10", AdID: "a1", AdName: "NK_1 v2", Spend: 55},
	}

	result, err := svc.IngestBatch(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 2, facts.Count())

	f, err := facts.Get(context.Background(), "2024-03-10", "a1")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 55.0, f.Spend)
}

func TestIngestBatchValidation(t *testing.T) {
	facts := storage.NewInMemoryFactRepo()
	svc := newTestService(facts, storage.NewInMemoryMetadataRepo(), &fakeInsights{}, &fakeSheet{})

	_, err := svc.IngestBatch(context.Background(), []models.AdFact{
		{Date: "2024-03-10", AdID: "a1"},
		{Date: "", AdID: "a2"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	// validation runs before any write
	assert.Equal(t, 0, facts.Count())
}

func TestStatusRequiresRedis(t *testing.T) {
	svc := newTestService(storage.NewInMemoryFactRepo(), storage.NewInMemoryMetadataRepo(), &fakeInsights{}, &fakeSheet{})

	_, err := svc.Status(context.Background())
	require.Error(t, err)
}
