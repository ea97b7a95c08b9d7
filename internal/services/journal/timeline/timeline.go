// Package timeline turns a dream list into a fixed, repeating schedule of
// display segments and resolves which segment is active at a wall-clock time.
package timeline

import (
	"time"
	"unicode/utf8"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/sentence"
)

// Epoch anchors the cycle phase. Every process that shares the dream list
// shows the same segment at the same instant.
var Epoch = time.Date(2025, time.October, 16, 0, 0, 0, 0, time.UTC)

const (
	// TypeRate is the typing time per character.
	TypeRate = 30 * time.Millisecond
	// MinTypeDuration is the floor for one typed sentence.
	MinTypeDuration = 600 * time.Millisecond
	// HoldDuration keeps the full sentence on screen.
	HoldDuration = 4000 * time.Millisecond
	// EraseDuration removes the sentence from the end.
	EraseDuration = 800 * time.Millisecond
	// ASCIIDuration shows the dream's art after its last sentence.
	ASCIIDuration = 1200 * time.Millisecond
	// LogDuration is the nominal width of the persistence trigger.
	LogDuration = time.Millisecond
)

// Kind names the display state of a segment.
type Kind string

const (
	KindType  Kind = "type"
	KindHold  Kind = "hold"
	KindErase Kind = "erase"
	KindASCII Kind = "ascii"
	KindLog   Kind = "log"
)

// Segment is one timed unit of the presentation.
//
// Text holds the sentence for type/hold/erase segments and the full dream
// text for log segments. SentenceIndex is -1 outside sentence segments.
type Segment struct {
	Kind          Kind          `json:"kind"`
	DreamIndex    int           `json:"dream_index"`
	SentenceIndex int           `json:"sentence_index"`
	Text          string        `json:"text,omitempty"`
	ASCII         string        `json:"ascii,omitempty"`
	DreamID       string        `json:"dream_id,omitempty"`
	Start         time.Duration `json:"start"`
	Duration      time.Duration `json:"duration"`
}

// End returns the exclusive end offset of the segment within the cycle.
func (s Segment) End() time.Duration {
	return s.Start + s.Duration
}

// Dream returns the journal entry carried by a log segment.
func (s Segment) Dream() domain.Dream {
	return domain.Dream{ID: s.DreamID, Text: s.Text, ASCII: s.ASCII}
}

// Timeline is the flat, immutable segment sequence for one dream list.
type Timeline struct {
	dreams   []domain.Dream
	segments []Segment
	// cum[i] is the start of segment i; cum[len(segments)] is the total.
	cum   []time.Duration
	total time.Duration
}

// Build lays out every dream as type/hold/erase per sentence followed by one
// ascii and one log segment. An empty list uses domain.FallbackDreams.
func Build(dreams []domain.Dream) *Timeline {
	if len(dreams) == 0 {
		dreams = domain.FallbackDreams()
	}
	source := make([]domain.Dream, len(dreams))
	copy(source, dreams)

	var segments []Segment
	for d, dream := range source {
		for s, text := range sentence.Split(dream.Text) {
			typeDur := time.Duration(utf8.RuneCountInString(text)) * TypeRate
			if typeDur < MinTypeDuration {
				typeDur = MinTypeDuration
			}
			segments = append(segments,
				Segment{Kind: KindType, DreamIndex: d, SentenceIndex: s, Text: text, Duration: typeDur},
				Segment{Kind: KindHold, DreamIndex: d, SentenceIndex: s, Text: text, Duration: HoldDuration},
				Segment{Kind: KindErase, DreamIndex: d, SentenceIndex: s, Text: text, Duration: EraseDuration},
			)
		}
		segments = append(segments,
			Segment{Kind: KindASCII, DreamIndex: d, SentenceIndex: -1, ASCII: dream.ASCII, Duration: ASCIIDuration},
			Segment{Kind: KindLog, DreamIndex: d, SentenceIndex: -1, Text: dream.Text, ASCII: dream.ASCII, DreamID: dream.ID, Duration: LogDuration},
		)
	}

	cum := make([]time.Duration, 0, len(segments)+1)
	var t time.Duration
	for i := range segments {
		segments[i].Start = t
		cum = append(cum, t)
		t += segments[i].Duration
	}
	cum = append(cum, t)

	return &Timeline{dreams: source, segments: segments, cum: cum, total: t}
}

// Segments returns a copy of the segment sequence.
func (tl *Timeline) Segments() []Segment {
	out := make([]Segment, len(tl.segments))
	copy(out, tl.segments)
	return out
}

// Dreams returns the dream list the timeline was built from.
func (tl *Timeline) Dreams() []domain.Dream {
	out := make([]domain.Dream, len(tl.dreams))
	copy(out, tl.dreams)
	return out
}

// Len returns the number of segments.
func (tl *Timeline) Len() int {
	return len(tl.segments)
}

// Segment returns segment i.
func (tl *Timeline) Segment(i int) Segment {
	return tl.segments[i]
}

// Total returns the duration of one full cycle.
func (tl *Timeline) Total() time.Duration {
	return tl.total
}
