// Package remote talks to the dreams proxy that fronts the hosted journal.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
)

const tracerName = "github.com/louisbranch/somnia/internal/services/journal/remote"

// Config configures the proxy endpoint and HTTP behavior.
type Config struct {
	// Endpoint is the full URL of the dreams resource, for example
	// http://localhost:8086/dreams.
	Endpoint   string
	HTTPClient *http.Client
}

// SaveResult reports what the proxy did with a saved entry.
type SaveResult struct {
	Saved   bool
	Message string
}

// Client lists and saves journal entries through the dreams proxy.
type Client struct {
	cfg    Config
	tracer trace.Tracer
}

// NewClient builds a proxy client.
func NewClient(cfg Config) (*Client, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("dreams endpoint is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Client{cfg: cfg, tracer: otel.Tracer(tracerName)}, nil
}

type listResponse struct {
	Dreams  []domain.Dream `json:"dreams"`
	Total   int            `json:"total"`
	Error   string         `json:"error"`
	Message string         `json:"message"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	Saved   bool   `json:"saved"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// List returns the most recent journal entries, newest first. A proxy that
// reports an upstream error is returned as an error.
func (c *Client) List(ctx context.Context) ([]domain.Dream, error) {
	ctx, span := c.tracer.Start(ctx, "remote.List", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var payload listResponse
	if err := c.do(ctx, http.MethodGet, nil, &payload); err != nil {
		recordError(span, err)
		return nil, err
	}
	if payload.Error != "" {
		err := fmt.Errorf("list dreams: %s", payload.Error)
		recordError(span, err)
		return nil, err
	}
	if payload.Dreams == nil {
		payload.Dreams = []domain.Dream{}
	}
	span.SetAttributes(attribute.Int("somnia.dreams.count", len(payload.Dreams)))
	return payload.Dreams, nil
}

// Save posts entry to the proxy.
func (c *Client) Save(ctx context.Context, entry domain.Dream) (SaveResult, error) {
	ctx, span := c.tracer.Start(ctx, "remote.Save", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("somnia.dream.id", entry.ID))

	body, err := json.Marshal(entry)
	if err != nil {
		recordError(span, err)
		return SaveResult{}, fmt.Errorf("marshal dream: %w", err)
	}
	var payload saveResponse
	if err := c.do(ctx, http.MethodPost, body, &payload); err != nil {
		recordError(span, err)
		return SaveResult{}, err
	}
	span.SetAttributes(attribute.Bool("somnia.dream.saved", payload.Saved))
	return SaveResult{Saved: payload.Saved, Message: payload.Message}, nil
}

func (c *Client) do(ctx context.Context, method string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", strings.ToLower(method), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s dreams: %w", strings.ToLower(method), err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("%s dreams status %d: %s", strings.ToLower(method), res.StatusCode, strings.TrimSpace(string(detail)))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", strings.ToLower(method), err)
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
