// Package sheets loads the position and daily interest tables from the CSV
// export endpoint of a shared spreadsheet.
package sheets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// defaultMaxExportBytes caps a single downloaded export when Config.MaxBytes is zero.
const defaultMaxExportBytes = 32 << 20

// Source defines the interface for loading the two source tables.
// This interface enables dependency injection and testing with mock implementations.
type Source interface {
	Positions(ctx context.Context) ([]model.PositionRow, error)
	Accruals(ctx context.Context) ([]model.AccrualRow, error)
}

// Config locates the spreadsheet and its two sheets.
type Config struct {
	BaseURL           string
	SheetID           string
	PositionGID       string
	AccrualGID        string
	PositionHeaderRow int
	AccrualHeaderRow  int
	Timeout           time.Duration
	// MaxBytes rejects larger exports. Zero uses a 32 MiB cap.
	MaxBytes          int64
}

// ExportClient downloads sheets through the spreadsheet CSV export URL:
//
//	{BaseURL}/{SheetID}/export?format=csv&gid={gid}
type ExportClient struct {
	httpClient *http.Client
	cfg        Config
	positions  Schema
	accruals   Schema
	maxBytes   int64
}

// NewExportClient creates a new export client.
// A zero Timeout leaves requests bounded only by the caller's context.
//
// Parameters:
//   - cfg: Spreadsheet location and header rows
//
// Returns:
//   - *ExportClient: A new client instance ready for use
func NewExportClient(cfg Config) *ExportClient {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxExportBytes
	}
	return &ExportClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		positions:  PositionSchema(cfg.PositionHeaderRow),
		accruals:   AccrualSchema(cfg.AccrualHeaderRow),
		maxBytes:   maxBytes,
	}
}

// Positions downloads and decodes the position sheet.
func (c *ExportClient) Positions(ctx context.Context) ([]model.PositionRow, error) {
	body, err := c.download(ctx, c.cfg.PositionGID)
	if err != nil {
		return nil, err
	}
	return DecodePositions(bytes.NewReader(body), c.positions)
}

// Accruals downloads and decodes the daily interest sheet.
func (c *ExportClient) Accruals(ctx context.Context) ([]model.AccrualRow, error) {
	body, err := c.download(ctx, c.cfg.AccrualGID)
	if err != nil {
		return nil, err
	}
	return DecodeAccruals(bytes.NewReader(body), c.accruals)
}

// ExportURL returns the CSV export URL of the sheet with the given gid.
func (c *ExportClient) ExportURL(gid string) string {
	q := url.Values{}
	q.Set("format", "csv")
	q.Set("gid", gid)
	return fmt.Sprintf("%s/%s/export?%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.SheetID), q.Encode())
}

// download fetches one export. Non-2xx responses and HTML bodies (sign-in or
// error pages served for private sheets) are reported as ErrSourceUnavailable.
func (c *ExportClient) download(ctx context.Context, gid string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL(gid), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build export request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: gid %s: %w", apperrors.ErrSourceUnavailable, gid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: gid %s: status %d", apperrors.ErrSourceUnavailable, gid, resp.StatusCode)
	}

	// One byte past the cap tells a truncated body from one that fits exactly.
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: gid %s: %w", apperrors.ErrSourceUnavailable, gid, err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: gid %s: export exceeds %d bytes", apperrors.ErrSourceUnavailable, gid, c.maxBytes)
	}

	if isHTML(resp.Header.Get("Content-Type"), data) {
		return nil, fmt.Errorf("%w: gid %s: received HTML instead of CSV", apperrors.ErrSourceUnavailable, gid)
	}
	return data, nil
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
