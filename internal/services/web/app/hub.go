package app

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/render"
)

const (
	eventFrame  = "frame"
	eventLogged = "logged"

	peerBuffer = 32
)

type wsEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsPeer struct {
	send chan []byte
}

// frameHub fans playback output out to websocket peers. Slow peers drop
// messages rather than stall playback.
type frameHub struct {
	mu     sync.Mutex
	peers  map[*wsPeer]struct{}
	closed bool
}

func newFrameHub() *frameHub {
	return &frameHub{peers: make(map[*wsPeer]struct{})}
}

// ShowFrame broadcasts a frame event.
func (h *frameHub) ShowFrame(frame render.Frame) {
	h.broadcast(eventFrame, frame)
}

// EntryLogged broadcasts a logged event.
func (h *frameHub) EntryLogged(entry domain.Dream) {
	h.broadcast(eventLogged, entry)
}

func (h *frameHub) join() *wsPeer {
	peer := &wsPeer{send: make(chan []byte, peerBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(peer.send)
		return peer
	}
	h.peers[peer] = struct{}{}
	return peer
}

func (h *frameHub) leave(peer *wsPeer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[peer]; ok {
		delete(h.peers, peer)
		close(peer.send)
	}
}

func (h *frameHub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

func (h *frameHub) broadcast(kind string, payload any) {
	msg, err := encodeEvent(kind, payload)
	if err != nil {
		log.Printf("web: encode %s event: %v", kind, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for peer := range h.peers {
		select {
		case peer.send <- msg:
		default:
		}
	}
}

// close disconnects every peer and rejects new ones.
func (h *frameHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for peer := range h.peers {
		close(peer.send)
		delete(h.peers, peer)
	}
}

func encodeEvent(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wsEvent{Type: kind, Payload: raw})
}
