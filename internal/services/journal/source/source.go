// Package source loads the dream list document that drives the animation.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/somnia/internal/platform/timeouts"
	"github.com/louisbranch/somnia/internal/services/journal/domain"
)

// maxDocumentBytes bounds how much of a dream document is read.
const maxDocumentBytes = 4 << 20

// errNotFound marks a location that answered without a usable document.
var errNotFound = errors.New("dream document not found")

// Loader fetches the dream document from an ordered list of locations.
type Loader struct {
	// Locations are tried in order. Values starting with http:// or https://
	// are fetched; anything else is read from disk.
	Locations []string
	// Client performs HTTP fetches. Defaults to http.DefaultClient.
	Client *http.Client
	// Timeout bounds each attempt. Defaults to timeouts.SourceFetch.
	Timeout time.Duration
}

// NewLoader returns a loader over the non-empty locations.
func NewLoader(locations ...string) *Loader {
	clean := make([]string, 0, len(locations))
	for _, location := range locations {
		if location = strings.TrimSpace(location); location != "" {
			clean = append(clean, location)
		}
	}
	return &Loader{Locations: clean}
}

// Load returns the dreams from the first location that yields a decodable
// document. Every failure is logged and results in an empty list.
func (l *Loader) Load(ctx context.Context) []domain.Dream {
	if l == nil {
		return []domain.Dream{}
	}
	for _, location := range l.Locations {
		data, err := l.fetch(ctx, location)
		if err != nil {
			log.Printf("source: %s: %v", location, err)
			continue
		}
		dreams, err := Parse(data)
		if err != nil {
			log.Printf("source: %s: %v", location, err)
			continue
		}
		return dreams
	}
	return []domain.Dream{}
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = timeouts.SourceFetch
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if isHTTP(location) {
		return l.fetchHTTP(ctx, location)
	}
	return readFile(ctx, location)
}

func (l *Loader) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", errNotFound, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := os.ReadFile(path)
		done <- result{data: data, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("read file: %w", res.err)
		}
		return res.data, nil
	}
}

func isHTTP(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Parse decodes a dream document. The document is either an array of
// strings, which become dreams with ids json-<i>, or an array of objects
// with a string text field and optional id and ascii. Objects without a
// string text are dropped; missing ids are assigned json-<i> by position
// after filtering. Any other JSON value yields an empty list.
func Parse(data []byte) ([]domain.Dream, error) {
	var doc any
	if err := json.Unmarshal(bytes.TrimSpace(data), &doc); err != nil {
		return nil, fmt.Errorf("decode dream document: %w", err)
	}
	items, ok := doc.([]any)
	if !ok || len(items) == 0 {
		return []domain.Dream{}, nil
	}

	if _, isString := items[0].(string); isString {
		dreams := make([]domain.Dream, 0, len(items))
		for i, item := range items {
			text, _ := item.(string)
			dreams = append(dreams, domain.Dream{ID: positionalID(i), Text: text})
		}
		return dreams, nil
	}

	dreams := make([]domain.Dream, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text, ok := obj["text"].(string)
		if !ok {
			continue
		}
		id := scalarString(obj["id"])
		if id == "" {
			id = positionalID(len(dreams))
		}
		ascii, _ := obj["ascii"].(string)
		dreams = append(dreams, domain.Dream{ID: id, Text: text, ASCII: ascii})
	}
	return dreams, nil
}

func positionalID(i int) string {
	return "json-" + strconv.Itoa(i)
}

// scalarString renders string and numeric ids; other values count as absent.
func scalarString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		if value == 0 {
			return ""
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}
