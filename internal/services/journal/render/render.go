// Package render maps the active segment and the time spent in it to what
// is visible on screen. It holds no state.
package render

import (
	"time"

	"github.com/louisbranch/somnia/internal/services/journal/timeline"
)

// Frame is the visible state of the presentation.
type Frame struct {
	Kind          timeline.Kind `json:"kind"`
	DreamIndex    int           `json:"dream_index"`
	SentenceIndex int           `json:"sentence_index"`
	// Text is the portion of the current sentence on the type line.
	Text string `json:"text"`
	// ASCII is the art block, shown only when ShowASCII is set.
	ASCII     string `json:"ascii,omitempty"`
	ShowASCII bool   `json:"show_ascii"`
}

// Blank is the frame shown before any timeline exists.
var Blank = Frame{DreamIndex: -1, SentenceIndex: -1}

// Render computes the frame for seg at offset into the segment.
func Render(seg timeline.Segment, offset time.Duration) Frame {
	frame := Frame{
		Kind:          seg.Kind,
		DreamIndex:    seg.DreamIndex,
		SentenceIndex: seg.SentenceIndex,
	}
	switch seg.Kind {
	case timeline.KindType:
		runes := []rune(seg.Text)
		frame.Text = string(runes[:typed(len(runes), offset, seg.Duration)])
	case timeline.KindHold:
		frame.Text = seg.Text
	case timeline.KindErase:
		runes := []rune(seg.Text)
		keep := len(runes) - typed(len(runes), offset, seg.Duration)
		frame.Text = string(runes[:keep])
	case timeline.KindASCII:
		frame.ASCII = seg.ASCII
		frame.ShowASCII = true
	case timeline.KindLog:
		// Zero-width trigger; nothing changes on screen.
	}
	return frame
}

// typed returns floor(offset/duration * length) clamped to [0, length].
func typed(length int, offset, duration time.Duration) int {
	if duration <= 0 {
		return length
	}
	n := int(int64(length) * int64(offset) / int64(duration))
	if n < 0 {
		return 0
	}
	if n > length {
		return length
	}
	return n
}
