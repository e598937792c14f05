package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/radiusdt/vector-etl/internal/config"
	"github.com/radiusdt/vector-etl/internal/database"
	"github.com/radiusdt/vector-etl/internal/etl"
	"github.com/radiusdt/vector-etl/internal/feed"
	"github.com/radiusdt/vector-etl/internal/metrics"
	"github.com/radiusdt/vector-etl/internal/models"
	"github.com/radiusdt/vector-etl/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB      *database.PostgresDB
	Redis   *database.RedisDB
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Server wraps HTTP handlers around the sync service.
type Server struct {
	syncService *etl.SyncService
	db          *database.PostgresDB
	redis       *database.RedisDB
	logger      *zap.Logger
	config      *config.Config
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	// Initialize repositories
	var factRepo storage.FactRepo
	var metaRepo storage.MetadataRepo

	if deps.DB != nil {
		factRepo = storage.NewPostgresFactRepo(deps.DB.Pool)
		metaRepo = storage.NewPostgresMetadataRepo(deps.DB.Pool)
	} else {
		factRepo = storage.NewInMemoryFactRepo()
		metaRepo = storage.NewInMemoryMetadataRepo()
	}

	// Initialize feed clients
	insightsClient := feed.NewInsightsClient(deps.Config.Meta, deps.Logger)
	sheetClient := feed.NewSheetClient(deps.Config.Sheet, deps.Logger)

	var redisClient *redis.Client
	if deps.Redis != nil {
		redisClient = deps.Redis.Client
	}

	syncService := etl.NewSyncService(
		factRepo,
		metaRepo,
		insightsClient,
		sheetClient,
		redisClient,
		deps.Logger,
		deps.Metrics,
	)

	s := &Server{
		syncService: syncService,
		db:          deps.DB,
		redis:       deps.Redis,
		logger:      deps.Logger,
		config:      deps.Config,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Sync endpoints
	mux.HandleFunc("/run-daily", s.handleRunDaily)
	mux.HandleFunc("/backfill", s.handleBackfill)
	mux.HandleFunc("/ingest-meta", s.handleIngestBatch)
	mux.HandleFunc("/sync/status", s.handleSyncStatus)

	return mux
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}

	if s.db != nil {
		if err := s.db.Health(r.Context()); err != nil {
			resp["status"] = "degraded"
			resp["database"] = err.Error()
		} else {
			resp["database"] = "ok"
		}
	}
	if s.redis != nil {
		if err := s.redis.Health(r.Context()); err != nil {
			resp["redis"] = err.Error()
		} else {
			resp["redis"] = "ok"
		}
	}

	s.jsonResponse(w, resp)
}

// ---- Daily Sync ----

func (s *Server) handleRunDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.syncService.SyncDaily(r.Context())
	if err != nil {
		if errors.Is(err, etl.ErrSyncBusy) {
			s.errorResponse(w, err.Error(), http.StatusConflict)
			return
		}
		s.logger.Error("daily sync failed", zap.Error(err))
		s.errorResponse(w, "sync failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, result)
}

// ---- Backfill ----

type backfillRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := backfillRequest{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}
	if r.Method == http.MethodPost && req.Start == "" && req.End == "" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
	}

	result, err := s.syncService.Backfill(r.Context(), req.Start, req.End)
	if err != nil {
		switch {
		case errors.Is(err, etl.ErrValidation):
			s.errorResponse(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, etl.ErrSyncBusy):
			s.errorResponse(w, err.Error(), http.StatusConflict)
		default:
			s.logger.Error("backfill failed", zap.Error(err))
			s.errorResponse(w, "backfill failed: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	s.jsonResponse(w, result)
}

// ---- Batch Ingest ----

type ingestRequest struct {
	Rows json.RawMessage `json:"rows"`
}

func (s *Server) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid payload", http.StatusBadRequest)
		return
	}

	var rows []models.AdFact
	if !isJSONArray(req.Rows) || json.Unmarshal(req.Rows, &rows) != nil {
		s.errorResponse(w, "invalid payload: rows must be a list", http.StatusBadRequest)
		return
	}

	result, err := s.syncService.IngestBatch(r.Context(), rows)
	if err != nil {
		if errors.Is(err, etl.ErrValidation) {
			s.errorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("batch ingest failed", zap.Error(err))
		s.errorResponse(w, "ingest failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, result)
}

// ---- Sync Status ----

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status, err := s.syncService.Status(r.Context())
	if err != nil {
		s.logger.Error("failed to read sync status", zap.Error(err))
		s.errorResponse(w, "status unavailable: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if status == nil {
		s.errorResponse(w, "no sync run recorded", http.StatusNotFound)
		return
	}

	s.jsonResponse(w, status)
}

// isJSONArray reports whether raw starts with a JSON array. Null, objects
// and scalars are all invalid batch payloads.
func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == '['
		}
	}
	return false
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
