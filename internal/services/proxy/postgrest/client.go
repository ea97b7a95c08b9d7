// Package postgrest reads and writes the dreams table through a PostgREST
// endpoint such as the one Supabase exposes under /rest/v1.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/somnia/internal/platform/errors"
	"github.com/louisbranch/somnia/internal/services/journal/domain"
)

const (
	tracerName = "github.com/louisbranch/somnia/internal/services/proxy/postgrest"

	tablePath = "/rest/v1/dreams"

	maxErrorBodyBytes = 4096
)

// Config holds the hosted store location and its anonymous key.
type Config struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// Client is a PostgREST client for the dreams table.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient builds a client. An empty URL or key yields a client that
// reports itself as not configured.
func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: cfg.HTTPClient,
		tracer:     otel.Tracer(tracerName),
	}
}

// Configured reports whether both the URL and the key are set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// List returns up to limit dreams, newest first.
func (c *Client) List(ctx context.Context, limit int) ([]domain.Dream, error) {
	ctx, span := c.tracer.Start(ctx, "postgrest.List", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "ts.desc")
	query.Set("limit", strconv.Itoa(limit))

	var rows []domain.Dream
	if err := c.do(ctx, http.MethodGet, query, nil, &rows); err != nil {
		recordError(span, err)
		return nil, err
	}
	if rows == nil {
		rows = []domain.Dream{}
	}
	span.SetAttributes(attribute.Int("somnia.dreams.count", len(rows)))
	return rows, nil
}

// Exists reports whether a row with id is stored.
func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "postgrest.Exists", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("somnia.dream.id", id))

	query := url.Values{}
	query.Set("id", "eq."+id)

	var rows []json.RawMessage
	if err := c.do(ctx, http.MethodGet, query, nil, &rows); err != nil {
		recordError(span, err)
		return false, err
	}
	return len(rows) > 0, nil
}

// Insert stores dream as a new row.
func (c *Client) Insert(ctx context.Context, dream domain.Dream) error {
	ctx, span := c.tracer.Start(ctx, "postgrest.Insert", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("somnia.dream.id", dream.ID))

	body, err := json.Marshal(dream)
	if err != nil {
		recordError(span, err)
		return fmt.Errorf("marshal dream: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, nil, body, nil); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, query url.Values, body []byte, out any) error {
	if !c.Configured() {
		return apperrors.New(apperrors.CodeStorageNotConfigured, "storage not configured")
	}

	endpoint := c.baseURL + tablePath
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build postgrest request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "postgrest request failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		message := strings.TrimSpace(string(detail))
		if message == "" {
			message = fmt.Sprintf("postgrest status %d", res.StatusCode)
		}
		return apperrors.WithMetadata(
			apperrors.CodeUpstreamRejected,
			message,
			map[string]string{"status": strconv.Itoa(res.StatusCode)},
		)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageFailure, "decode postgrest response", err)
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
