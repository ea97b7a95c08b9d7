package player

import (
	"strconv"
	"time"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/render"
	"github.com/louisbranch/somnia/internal/services/journal/timeline"
)

// Session is the playback state for one dream list: its timeline plus the
// runtime guard that keeps a dream from being logged twice in a cycle.
//
// A Session is owned by a single goroutine and replaced wholesale when the
// dream list reloads.
type Session struct {
	timeline *timeline.Timeline

	logged         map[int]struct{}
	lastLoggedIdx  int
	lastTriggerKey string

	started    bool
	prevCursor time.Duration
	prevCycle  int64
}

// NewSession builds the timeline for dreams with a fresh guard.
func NewSession(dreams []domain.Dream) *Session {
	return &Session{
		timeline:      timeline.Build(dreams),
		logged:        make(map[int]struct{}),
		lastLoggedIdx: -1,
	}
}

// Timeline returns the session's timeline.
func (s *Session) Timeline() *timeline.Timeline {
	return s.timeline
}

// Step advances the playhead to now. It returns the frame to show and the
// dreams whose log segment was reached since the previous step.
func (s *Session) Step(now time.Time) (render.Frame, []domain.Dream) {
	pos := s.timeline.Locate(now)
	if pos.Index < 0 {
		return render.Blank, nil
	}
	frame := render.Render(pos.Segment, pos.Offset)

	var due []domain.Dream
	fire := func(indices []int, cycle int64) {
		for _, idx := range indices {
			if d, ok := s.trigger(idx, cycle); ok {
				due = append(due, d)
			}
		}
	}

	switch {
	case !s.started || s.resync(pos):
		// First step, clock went backwards or a full cycle passed:
		// only the segment under the playhead counts.
		s.resetGuard()
		fire(s.timeline.LogsCrossed(pos.Cursor, pos.Cursor), pos.Cycle)
	case pos.Cycle == s.prevCycle+1:
		fire(s.timeline.LogsCrossed(s.prevCursor, s.timeline.Total()), s.prevCycle)
		s.resetGuard()
		fire(s.timeline.LogsCrossed(-1, pos.Cursor), pos.Cycle)
	default:
		fire(s.timeline.LogsCrossed(s.prevCursor, pos.Cursor), pos.Cycle)
	}

	s.started = true
	s.prevCursor = pos.Cursor
	s.prevCycle = pos.Cycle
	return frame, due
}

// resync reports whether the playhead moved backwards or advanced by at
// least one full cycle since the previous step.
func (s *Session) resync(pos timeline.Position) bool {
	switch {
	case pos.Cycle < s.prevCycle:
		return true
	case pos.Cycle == s.prevCycle:
		return pos.Cursor < s.prevCursor
	case pos.Cycle == s.prevCycle+1:
		return pos.Cursor >= s.prevCursor
	default:
		return true
	}
}

// trigger applies the runtime guard to the log segment at idx.
func (s *Session) trigger(idx int, cycle int64) (domain.Dream, bool) {
	key := strconv.FormatInt(cycle, 10) + ":" + strconv.Itoa(idx)
	if key == s.lastTriggerKey {
		return domain.Dream{}, false
	}
	s.lastTriggerKey = key

	seg := s.timeline.Segment(idx)
	if _, ok := s.logged[seg.DreamIndex]; ok || s.lastLoggedIdx >= seg.DreamIndex {
		return domain.Dream{}, false
	}
	s.logged[seg.DreamIndex] = struct{}{}
	s.lastLoggedIdx = seg.DreamIndex
	return seg.Dream(), true
}

func (s *Session) resetGuard() {
	clear(s.logged)
	s.lastLoggedIdx = -1
}
