package player

import (
	"testing"
	"time"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/timeline"
)

var testDreams = []domain.Dream{
	{ID: "a", Text: "First dream."},
	{ID: "b", Text: "Second dream. With two sentences.", ASCII: "(o_o)"},
	{ID: "c", Text: "Third."},
}

func at(d time.Duration) time.Time {
	return timeline.Epoch.Add(d)
}

func ids(dreams []domain.Dream) []string {
	out := make([]string, 0, len(dreams))
	for _, d := range dreams {
		out = append(out, d.ID)
	}
	return out
}

func logStarts(tl *timeline.Timeline) []time.Duration {
	var out []time.Duration
	for _, seg := range tl.Segments() {
		if seg.Kind == timeline.KindLog {
			out = append(out, seg.Start)
		}
	}
	return out
}

func TestStepLogsEachDreamOncePerCycle(t *testing.T) {
	s := NewSession(testDreams)
	total := s.Timeline().Total()

	var got []string
	// One extra tick carries the playhead over the second wrap.
	for elapsed := time.Duration(0); elapsed <= 2*total+50*time.Millisecond; elapsed += 50 * time.Millisecond {
		_, due := s.Step(at(elapsed))
		got = append(got, ids(due)...)
	}

	want := []string{"a", "b", "c", "a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("logged = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("logged = %v, want %v", got, want)
		}
	}
}

func TestStepFirstTickInsideLogSegment(t *testing.T) {
	s := NewSession(testDreams)
	starts := logStarts(s.Timeline())

	_, due := s.Step(at(starts[1]))
	if got := ids(due); len(got) != 1 || got[0] != "b" {
		t.Fatalf("logged = %v, want [b]", got)
	}
	_, due = s.Step(at(starts[1]))
	if len(due) != 0 {
		t.Fatalf("repeat step logged %v", ids(due))
	}
}

func TestStepFirstTickOutsideLogDoesNotFire(t *testing.T) {
	s := NewSession(testDreams)
	starts := logStarts(s.Timeline())

	if _, due := s.Step(at(starts[0] - time.Millisecond)); len(due) != 0 {
		t.Fatalf("logged %v before reaching log segment", ids(due))
	}
	if _, due := s.Step(at(starts[0] + time.Second)); len(ids(due)) != 1 {
		t.Fatalf("crossing not detected")
	}
}

func TestStepAcrossCycleBoundary(t *testing.T) {
	s := NewSession(testDreams)
	total := s.Timeline().Total()
	starts := logStarts(s.Timeline())

	// Start after the second log, then jump past the first log of the next cycle.
	if _, due := s.Step(at(starts[1] + time.Millisecond)); len(due) != 0 {
		t.Fatalf("unexpected log %v", ids(due))
	}
	_, due := s.Step(at(total + starts[0] + time.Millisecond))
	if got := ids(due); len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Fatalf("logged = %v, want [c a]", got)
	}
}

func TestStepLongPauseResyncs(t *testing.T) {
	s := NewSession(testDreams)
	total := s.Timeline().Total()
	starts := logStarts(s.Timeline())

	s.Step(at(0))
	_, due := s.Step(at(3*total + starts[0] + time.Second))
	if len(due) != 0 {
		t.Fatalf("logged %v after multi-cycle pause", ids(due))
	}
}

func TestStepBackwardInSameCycleResyncs(t *testing.T) {
	s := NewSession(testDreams)
	total := s.Timeline().Total()
	base := 10 * total

	s.Step(at(base + 2*time.Second))
	if _, due := s.Step(at(base + time.Second)); len(due) != 0 {
		t.Fatalf("backward step logged %v before their log segments", ids(due))
	}

	var got []string
	for elapsed := base + time.Second; elapsed <= base+total+50*time.Millisecond; elapsed += 50 * time.Millisecond {
		_, due := s.Step(at(elapsed))
		got = append(got, ids(due)...)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("logged = %v, want [a b c]", got)
	}
}

func TestStepFullCycleJumpResyncs(t *testing.T) {
	s := NewSession(testDreams)
	total := s.Timeline().Total()
	starts := logStarts(s.Timeline())

	s.Step(at(time.Second))
	if _, due := s.Step(at(total + 2*time.Second)); len(due) != 0 {
		t.Fatalf("logged %v after a full cycle jump", ids(due))
	}
	_, due := s.Step(at(total + starts[0] + time.Millisecond))
	if got := ids(due); len(got) != 1 || got[0] != "a" {
		t.Fatalf("logged = %v, want [a]", got)
	}
}

func TestStepGuardSkipsEarlierDreamInSameCycle(t *testing.T) {
	s := NewSession(testDreams)
	starts := logStarts(s.Timeline())

	s.Step(at(starts[2]))
	if _, ok := s.trigger(indexOfLog(s.Timeline(), 0), 0); ok {
		t.Fatal("earlier dream logged after a later one in the same cycle")
	}
}

func TestStepBeforeEpochShowsFirstSegment(t *testing.T) {
	s := NewSession(testDreams)
	frame, due := s.Step(timeline.Epoch.Add(-time.Hour))
	if frame.Kind != timeline.KindType || frame.DreamIndex != 0 || frame.Text != "" {
		t.Fatalf("frame = %+v", frame)
	}
	if len(due) != 0 {
		t.Fatalf("logged %v", ids(due))
	}
}

func indexOfLog(tl *timeline.Timeline, dream int) int {
	for i, seg := range tl.Segments() {
		if seg.Kind == timeline.KindLog && seg.DreamIndex == dream {
			return i
		}
	}
	return -1
}
