package timeline

import (
	"sort"
	"time"
)

// Position locates the playhead inside the timeline.
type Position struct {
	// Index of the active segment.
	Index   int
	Segment Segment
	// Offset is the time spent inside the active segment.
	Offset time.Duration
	// Cursor is the playhead offset inside the current cycle.
	Cursor time.Duration
	// Cycle counts completed cycles since Epoch.
	Cycle int64
}

// Locate maps now onto the repeating cycle: elapsed = max(0, now-Epoch),
// cursor = elapsed mod Total.
func (tl *Timeline) Locate(now time.Time) Position {
	elapsed := now.Sub(Epoch)
	if elapsed < 0 {
		elapsed = 0
	}
	var cursor time.Duration
	var cycle int64
	if tl.total > 0 {
		cycle = int64(elapsed / tl.total)
		cursor = elapsed % tl.total
	}
	return tl.At(cursor, cycle)
}

// At resolves the segment containing cursor, which must lie in [0, Total).
func (tl *Timeline) At(cursor time.Duration, cycle int64) Position {
	if len(tl.segments) == 0 {
		return Position{Index: -1, Cycle: cycle}
	}
	// First segment whose end is past the cursor.
	i := sort.Search(len(tl.segments), func(i int) bool { return tl.cum[i+1] > cursor })
	if i >= len(tl.segments) {
		i = len(tl.segments) - 1
	}
	seg := tl.segments[i]
	return Position{
		Index:   i,
		Segment: seg,
		Offset:  cursor - seg.Start,
		Cursor:  cursor,
		Cycle:   cycle,
	}
}

// LogsCrossed returns the indices of log segments the playhead touched while
// moving from prev (exclusive) to cur (inclusive), both cycle positions.
// When cur is behind prev the playhead wrapped into the next cycle. Equal
// positions report the log segment containing cur, if any.
func (tl *Timeline) LogsCrossed(prev, cur time.Duration) []int {
	if len(tl.segments) == 0 {
		return nil
	}
	if cur < prev {
		out := tl.logsWithin(prev, tl.total)
		return append(out, tl.logsWithin(-1, cur)...)
	}
	if cur == prev {
		if pos := tl.At(cur, 0); pos.Segment.Kind == KindLog {
			return []int{pos.Index}
		}
		return nil
	}
	return tl.logsWithin(prev, cur)
}

// logsWithin returns log segments intersecting the interval (lo, hi].
func (tl *Timeline) logsWithin(lo, hi time.Duration) []int {
	var out []int
	start := sort.Search(len(tl.segments), func(i int) bool { return tl.cum[i+1] > lo })
	for i := start; i < len(tl.segments) && tl.segments[i].Start <= hi; i++ {
		seg := tl.segments[i]
		if seg.Kind == KindLog && seg.End() > lo {
			out = append(out, i)
		}
	}
	return out
}
