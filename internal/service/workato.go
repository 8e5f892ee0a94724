package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"multiplicadores/internal/analytics"
	"multiplicadores/internal/config"
	"multiplicadores/internal/storage"
)

// ErrUpstream wraps a non-2xx response from the Workato webhook so the
// handler can echo the provider payload on 502.
type ErrUpstream struct {
	StatusCode int
	Payload    []byte
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

// WorkatoService covers the automation-platform integration: the sales
// feed aggregation report and the outbound webhook proxy.
type WorkatoService interface {
	// Report runs the aggregation pipeline over the raw feed rows.
	// dedup overrides the configured DEDUP_BY_ID when non-nil. The
	// normalized record set is archived as CSV when object storage is
	// configured; archive failures are logged and never fail the report.
	Report(ctx context.Context, rows []map[string]any, dedup *bool) (*analytics.Report, error)

	// Proxy forwards the JSON body to the configured webhook URL.
	Proxy(ctx context.Context, body []byte) (json.RawMessage, error)
}

type workatoService struct {
	cfg     config.WorkatoConfig
	store   storage.ObjectStore // nil disables audit dumps
	http    *http.Client
	logger  *slog.Logger
	nowFunc func() time.Time
}

func NewWorkatoService(cfg config.WorkatoConfig, store storage.ObjectStore, logger *slog.Logger) WorkatoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &workatoService{
		cfg:     cfg,
		store:   store,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:  logger,
		nowFunc: time.Now,
	}
}

// periodStartLayouts accepted by the PERIOD_START setting.
var periodStartLayouts = []string{time.RFC3339, "2006-01-02"}

func (s *workatoService) periodStart() time.Time {
	for _, layout := range periodStartLayouts {
		if t, err := time.Parse(layout, s.cfg.PeriodStart); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (s *workatoService) Report(ctx context.Context, rows []map[string]any, dedup *bool) (*analytics.Report, error) {
	useDedup := s.cfg.DedupByID
	if dedup != nil {
		useDedup = *dedup
	}
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}

	report, used, err := analytics.BuildReport(rows, analytics.Options{
		PeriodStart: s.periodStart(),
		Dedup:       useDedup,
		Now:         s.nowFunc(),
		Location:    loc,
	})
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		s.archive(ctx, used)
	}
	return report, nil
}

// archive dumps the filtered record set to object storage. Failures are
// logged; the report response never depends on the archive.
func (s *workatoService) archive(ctx context.Context, recs []analytics.Record) {
	var buf bytes.Buffer
	if err := analytics.WriteAuditCSV(&buf, recs); err != nil {
		s.logger.Error("feed audit encode failed", "error", err)
		return
	}
	key := fmt.Sprintf("feeds/%s-%s.csv", s.nowFunc().UTC().Format("20060102T150405Z"), uuid.New().String())
	_, err := s.store.Put(ctx, key, &buf, storage.PutOptions{
		Size:        int64(buf.Len()),
		ContentType: "text/csv",
	})
	if err != nil {
		s.logger.Error("feed audit upload failed", "key", key, "error", err)
		return
	}
	s.logger.Info("feed audit stored", "key", key, "rows", len(recs))
}

func (s *workatoService) Proxy(ctx context.Context, body []byte) (json.RawMessage, error) {
	if s.cfg.WebhookURL == "" {
		return nil, fmt.Errorf("WORKATO_WEBHOOK_URL not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.WebhookToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.WebhookToken)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ErrUpstream{StatusCode: resp.StatusCode, Payload: payload}
	}
	if len(payload) == 0 || !json.Valid(payload) {
		quoted, _ := json.Marshal(string(payload))
		return json.RawMessage(quoted), nil
	}
	return json.RawMessage(payload), nil
}
