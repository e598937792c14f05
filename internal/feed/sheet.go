package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/radiusdt/vector-etl/internal/config"
	"go.uber.org/zap"
)

// SheetClient fetches the full metadata sheet as published CSV. The feed
// has no filtering or pagination; every sync pulls the whole sheet.
type SheetClient struct {
	httpClient *http.Client
	cfg        config.SheetConfig
	logger     *zap.Logger
}

// NewSheetClient creates a new published-CSV sheet client.
func NewSheetClient(cfg config.SheetConfig, logger *zap.Logger) *SheetClient {
	return &SheetClient{
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// FetchAll returns every sheet row keyed by its trimmed header name.
// Short rows are padded with empty cells; a row longer than the header is
// truncated to it. Human-edited sheets produce both.
func (c *SheetClient) FetchAll(ctx context.Context) ([]map[string]string, error) {
	if c.cfg.CSVURL == "" {
		return nil, fmt.Errorf("sheet CSV URL is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.CSVURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sheet request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet fetch returned status %d", resp.StatusCode)
	}

	rows, err := ParseSheetCSV(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched metadata sheet", zap.Int("rows", len(rows)))

	return rows, nil
}

// ParseSheetCSV parses CSV content into header-keyed rows.
func ParseSheetCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // sheets rows are ragged

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("sheet is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet row: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
