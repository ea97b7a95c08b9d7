package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []domain.Dream
	}{
		{
			name: "strings",
			in:   `["one.", "two."]`,
			want: []domain.Dream{{ID: "json-0", Text: "one."}, {ID: "json-1", Text: "two."}},
		},
		{
			name: "objects with defaults",
			in:   `[{"id":"a","text":"x","ascii":"*"},{"text":"y"}]`,
			want: []domain.Dream{{ID: "a", Text: "x", ASCII: "*"}, {ID: "json-1", Text: "y"}},
		},
		{
			name: "objects without text are dropped before numbering",
			in:   `[{"id":"a"},{"text":5},null,{"text":"kept"}]`,
			want: []domain.Dream{{ID: "json-0", Text: "kept"}},
		},
		{
			name: "empty id falls back",
			in:   `[{"id":"","text":"x"}]`,
			want: []domain.Dream{{ID: "json-0", Text: "x"}},
		},
		{
			name: "numeric id",
			in:   `[{"id":7,"text":"x"}]`,
			want: []domain.Dream{{ID: "7", Text: "x"}},
		},
		{name: "object document", in: `{"dreams":[]}`, want: []domain.Dream{}},
		{name: "empty array", in: `[]`, want: []domain.Dream{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse([]byte(tc.in))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("dream %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	t.Parallel()
	if _, err := Parse([]byte("[oops")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadFallsBackToSecondLocation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dreams.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`["from fallback."]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL+"/missing.json", "", srv.URL+"/dreams.json")
	got := loader.Load(context.Background())
	if len(got) != 1 || got[0].Text != "from fallback." {
		t.Fatalf("dreams = %+v", got)
	}
}

func TestLoadTimesOutSlowLocation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	path := filepath.Join(t.TempDir(), "dreams.json")
	if err := os.WriteFile(path, []byte(`[{"text":"from disk"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loader := NewLoader(slow.URL, path)
	loader.Timeout = 50 * time.Millisecond
	got := loader.Load(context.Background())
	if len(got) != 1 || got[0].Text != "from disk" || got[0].ID != "json-0" {
		t.Fatalf("dreams = %+v", got)
	}
}

func TestLoadAllFailuresYieldEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader := NewLoader(filepath.Join(dir, "missing.json"), corrupt)
	got := loader.Load(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("dreams = %#v, want empty non-nil", got)
	}

	var nilLoader *Loader
	if got := nilLoader.Load(context.Background()); len(got) != 0 {
		t.Fatalf("nil loader dreams = %+v", got)
	}
}
