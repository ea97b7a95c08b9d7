package app

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"time"

	"golang.org/x/net/websocket"
	"golang.org/x/text/language"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/render"
	webi18n "github.com/louisbranch/somnia/internal/services/web/i18n"
	"github.com/louisbranch/somnia/internal/services/web/templates"
)

//go:embed static/*
var staticAssets embed.FS

// FrameSource exposes the frame currently on screen.
type FrameSource interface {
	Current() render.Frame
}

// JournalReader exposes the persisted log, oldest first.
type JournalReader interface {
	Entries(ctx context.Context) ([]domain.Dream, error)
}

type handlerDependencies struct {
	frames  FrameSource
	journal JournalReader
	hub     *frameHub
	now     func() time.Time
}

type handler struct {
	frames  FrameSource
	journal JournalReader
	hub     *frameHub
	now     func() time.Time
}

type journalResponse struct {
	Dreams []domain.Dream `json:"dreams"`
	Total  int            `json:"total"`
}

func newHandler(deps handlerDependencies) (http.Handler, error) {
	if deps.frames == nil {
		return nil, fmt.Errorf("frame source is required")
	}
	if deps.journal == nil {
		return nil, fmt.Errorf("journal reader is required")
	}
	if deps.hub == nil {
		deps.hub = newFrameHub()
	}
	if deps.now == nil {
		deps.now = time.Now
	}
	staticFS, err := fs.Sub(staticAssets, "static")
	if err != nil {
		return nil, fmt.Errorf("resolve static assets: %w", err)
	}

	h := &handler{frames: deps.frames, journal: deps.journal, hub: deps.hub, now: deps.now}
	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/{$}", h.handlePage)
	mux.HandleFunc("/frame", h.handleFrame)
	mux.HandleFunc("/journal", h.handleJournal)

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, h.hub, h.frames)
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})
	return mux, nil
}

func (h *handler) handlePage(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	tag, persist := webi18n.ResolveTag(r)
	if persist {
		webi18n.SetLanguageCookie(w, tag)
	}
	entries, err := h.journal.Entries(r.Context())
	if err != nil {
		log.Printf("web: load journal: %v", err)
		entries = nil
	}

	page := templates.PageContext{
		Lang:      tag.String(),
		Loc:       webi18n.Printer(tag),
		Languages: languageOptions(tag),
		Now:       h.now(),
		Frame:     h.frames.Current(),
		Journal:   entries,
	}
	var buf bytes.Buffer
	if err := templates.Page(page).Render(r.Context(), &buf); err != nil {
		log.Printf("web: render page: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *handler) handleFrame(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, h.frames.Current())
}

func (h *handler) handleJournal(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	entries, err := h.journal.Entries(r.Context())
	if err != nil {
		log.Printf("web: load journal: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "journal unavailable"})
		return
	}
	visible := templates.VisibleEntries(entries)
	writeJSON(w, http.StatusOK, journalResponse{Dreams: visible, Total: len(entries)})
}

func handleWSConn(conn *websocket.Conn, hub *frameHub, frames FrameSource) {
	defer func() {
		_ = conn.Close()
	}()

	peer := hub.join()
	defer hub.leave(peer)

	snapshot, err := encodeEvent(eventFrame, frames.Current())
	if err == nil {
		if _, err := conn.Write(snapshot); err != nil {
			return
		}
	}

	// Inbound messages are ignored; the read loop only detects disconnects.
	gone := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, conn)
		close(gone)
	}()

	for {
		select {
		case <-gone:
			return
		case msg, ok := <-peer.send:
			if !ok {
				return
			}
			if _, err := conn.Write(msg); err != nil {
				return
			}
		}
	}
}

func languageOptions(active language.Tag) []templates.LanguageOption {
	printer := webi18n.Printer(active)
	supported := webi18n.Supported()
	options := make([]templates.LanguageOption, 0, len(supported))
	for _, tag := range supported {
		options = append(options, templates.LanguageOption{
			Tag:    tag.String(),
			Label:  printer.Sprintf("lang." + tag.String()),
			Active: tag == active,
		})
	}
	return options
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("web: write response: %v", err)
	}
}
