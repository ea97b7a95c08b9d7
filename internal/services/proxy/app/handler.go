package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/somnia/internal/platform/errors"
	"github.com/louisbranch/somnia/internal/platform/timeouts"
	"github.com/louisbranch/somnia/internal/services/journal/domain"
)

const (
	// listLimit caps how many dreams a GET returns.
	listLimit = 100

	maxBodyBytes = 64 * 1024

	messageNotConfigured  = "Storage not configured"
	messagePostNoStorage  = "Storage not configured. Set SUPABASE_URL and SUPABASE_ANON_KEY"
	messageTextRequired   = "Text is required"
	messageInvalidBody    = "Invalid JSON body"
	messageAlreadyExists  = "Already exists"
	messageSaveFailed     = "Failed to save dream"
	messageMethodNotAllow = "Method not allowed"
)

// Store is the hosted dreams table.
type Store interface {
	Configured() bool
	List(ctx context.Context, limit int) ([]domain.Dream, error)
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, dream domain.Dream) error
}

type handlerOptions struct {
	now             func() time.Time
	upstreamTimeout time.Duration
}

// NewHandler creates the proxy routes over store.
func NewHandler(store Store) http.Handler {
	return newHandler(store, handlerOptions{})
}

func newHandler(store Store, opts handlerOptions) http.Handler {
	if opts.now == nil {
		opts.now = time.Now
	}
	if opts.upstreamTimeout <= 0 {
		opts.upstreamTimeout = timeouts.Upstream
	}
	h := &dreamsHandler{store: store, now: opts.now, upstreamTimeout: opts.upstreamTimeout}

	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/dreams", h)
	mux.Handle("/api/dreams-simple", h)
	return mux
}

type dreamsHandler struct {
	store           Store
	now             func() time.Time
	upstreamTimeout time.Duration
}

type listResponse struct {
	Dreams  []domain.Dream `json:"dreams"`
	Total   *int           `json:"total,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type saveRequest struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	ASCII string `json:"ascii"`
	TS    int64  `json:"ts"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	Saved   bool   `json:"saved"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *dreamsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.save(w, r)
	default:
		writeError(w, apperrors.New(apperrors.CodeMethodNotAllowed, messageMethodNotAllow), "")
	}
}

func (h *dreamsHandler) list(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || !h.store.Configured() {
		writeJSON(w, http.StatusOK, listResponse{Dreams: []domain.Dream{}, Message: messageNotConfigured})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.upstreamTimeout)
	defer cancel()

	dreams, err := h.store.List(ctx, listLimit)
	if err != nil {
		log.Printf("dreams: list failed: %v", err)
		writeJSON(w, http.StatusOK, listResponse{Dreams: []domain.Dream{}, Error: err.Error()})
		return
	}
	total := len(dreams)
	writeJSON(w, http.StatusOK, listResponse{Dreams: dreams, Total: &total})
}

func (h *dreamsHandler) save(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || !h.store.Configured() {
		writeError(w, apperrors.New(apperrors.CodeStorageNotConfigured, messagePostNoStorage), "")
		return
	}

	var req saveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeInvalidBody, messageInvalidBody, err), "")
		return
	}
	if req.Text == "" {
		writeError(w, apperrors.New(apperrors.CodeTextRequired, messageTextRequired), "")
		return
	}

	now := h.now()
	dream := domain.Dream{ID: strings.TrimSpace(req.ID), Text: req.Text, ASCII: req.ASCII, TS: req.TS}
	if dream.ID == "" {
		dream.ID = "dream-" + strconv.FormatInt(domain.ToMillis(now), 10)
	}
	if dream.TS == 0 {
		dream.TS = domain.ToMillis(now)
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.upstreamTimeout)
	defer cancel()

	exists, err := h.store.Exists(ctx, dream.ID)
	if err != nil {
		log.Printf("dreams: duplicate check for %s failed, inserting anyway: %v", dream.ID, err)
	} else if exists {
		writeJSON(w, http.StatusOK, saveResponse{Success: true, Saved: false, Message: messageAlreadyExists})
		return
	}

	if err := h.store.Insert(ctx, dream); err != nil {
		log.Printf("dreams: insert %s failed: %v", dream.ID, err)
		if apperrors.GetCode(err) == apperrors.CodeUpstreamRejected {
			writeError(w, apperrors.Wrap(apperrors.CodeStorageFailure, messageSaveFailed, err), err.Error())
			return
		}
		writeError(w, apperrors.New(apperrors.CodeUpstreamUnavailable, err.Error()), "")
		return
	}
	log.Printf("dreams: saved %s", dream.ID)
	writeJSON(w, http.StatusOK, saveResponse{Success: true, Saved: true})
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, apikey, Authorization")
}

// writeError writes err's message with the status its code maps to.
func writeError(w http.ResponseWriter, err *apperrors.Error, details string) {
	status := err.Code.HTTPStatus()
	if err.Code == apperrors.CodeInvalidBody {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
	}
	writeJSON(w, status, errorResponse{Error: err.Message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("dreams: write response: %v", err)
	}
}
