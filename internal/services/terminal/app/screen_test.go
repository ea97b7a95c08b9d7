package app

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/render"
	"github.com/louisbranch/somnia/internal/services/journal/timeline"
)

func update(t *testing.T, m screen, msgs ...tea.Msg) screen {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		if m, ok = next.(screen); !ok {
			t.Fatalf("update returned %T", next)
		}
	}
	return m
}

func TestScreenShowsTypeLine(t *testing.T) {
	m := update(t, newScreen(time.UTC),
		frameMsg(render.Frame{Kind: timeline.KindType, Text: "I g"}),
		frameMsg(render.Frame{Kind: timeline.KindType, Text: "I go"}),
	)

	view := m.View()
	if !strings.Contains(view, "> I go") {
		t.Fatalf("view = %q, want type line", view)
	}
	if strings.Contains(view, "I g\n") {
		t.Fatalf("view kept stale type line: %q", view)
	}
}

func TestScreenShowsASCIIInPlaceOfTypeLine(t *testing.T) {
	m := update(t, newScreen(time.UTC),
		frameMsg(render.Frame{Kind: timeline.KindType, Text: "I go"}),
		frameMsg(render.Frame{Kind: timeline.KindASCII, DreamIndex: 1, ASCII: "(o_o)\n", ShowASCII: true}),
	)

	view := m.View()
	if !strings.Contains(view, "(o_o)") {
		t.Fatalf("view = %q, want art", view)
	}
	if strings.Contains(view, "I go") || strings.Contains(view, ">") {
		t.Fatalf("art view still shows type line: %q", view)
	}

	m = update(t, m, frameMsg(render.Frame{Kind: timeline.KindType, DreamIndex: 2, Text: "N"}))
	if view := m.View(); strings.Contains(view, "(o_o)") || !strings.Contains(view, "> N") {
		t.Fatalf("view = %q after type frame", view)
	}
}

func TestScreenEntryLogged(t *testing.T) {
	tests := []struct {
		name  string
		entry domain.Dream
		want  string
	}{
		{
			name:  "stamped",
			entry: domain.Dream{Text: "I fly.", TS: time.Date(2025, 10, 20, 7, 5, 9, 0, time.UTC).UnixMilli()},
			want:  "[07:05:09] I fly.",
		},
		{
			name:  "unstamped",
			entry: domain.Dream{Text: "I fall."},
			want:  "[--:--:--] I fall.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := update(t, newScreen(time.UTC), entryMsg(tt.entry))
			if view := m.View(); !strings.Contains(view, tt.want) {
				t.Fatalf("view = %q, want %q", view, tt.want)
			}
		})
	}
}

func TestScreenLogsStayAboveTypeLine(t *testing.T) {
	m := update(t, newScreen(time.UTC),
		entryMsg(domain.Dream{Text: "logged"}),
		frameMsg(render.Frame{Kind: timeline.KindType, Text: "typing"}),
	)

	view := m.View()
	if strings.Index(view, "logged") > strings.Index(view, "typing") {
		t.Fatalf("log line below type line: %q", view)
	}
}

func TestScreenBoundsLogLines(t *testing.T) {
	m := newScreen(time.UTC)
	for i := 0; i < maxLogLines+5; i++ {
		m = update(t, m, entryMsg(domain.Dream{Text: fmt.Sprintf("entry-%d", i)}))
	}
	if len(m.logs) != maxLogLines {
		t.Fatalf("logs = %d, want %d", len(m.logs), maxLogLines)
	}
	if !strings.HasSuffix(m.logs[0], "entry-5") {
		t.Fatalf("oldest kept = %q, want entry-5", m.logs[0])
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 3})
	view := m.View()
	if got := strings.Count(view, "\n") + 1; got != 3 {
		t.Fatalf("view has %d lines, want 3: %q", got, view)
	}
	if !strings.Contains(view, fmt.Sprintf("entry-%d", maxLogLines+4)) {
		t.Fatalf("newest entry missing: %q", view)
	}
}

func TestScreenQuits(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
	}{
		{name: "q key", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}},
		{name: "playback done", msg: playbackDoneMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := newScreen(time.UTC).Update(tt.msg)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Fatal("expected quit message")
			}
		})
	}
}

func TestProgramSinkForwardsMessages(t *testing.T) {
	var got []tea.Msg
	sink := programSink{send: func(msg tea.Msg) { got = append(got, msg) }}

	sink.ShowFrame(render.Frame{Text: "I go"})
	sink.EntryLogged(domain.Dream{ID: "a"})

	if len(got) != 2 {
		t.Fatalf("messages = %d, want 2", len(got))
	}
	if frame, ok := got[0].(frameMsg); !ok || frame.Text != "I go" {
		t.Fatalf("first message = %#v", got[0])
	}
	if entry, ok := got[1].(entryMsg); !ok || entry.ID != "a" {
		t.Fatalf("second message = %#v", got[1])
	}
}

func TestShowRecentReplaysNewestTail(t *testing.T) {
	var got []string
	sink := programSink{send: func(msg tea.Msg) {
		if entry, ok := msg.(entryMsg); ok {
			got = append(got, entry.Text)
		}
	}}

	var entries []domain.Dream
	for _, text := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		entries = append(entries, domain.Dream{Text: text})
	}
	showRecent(sink, entries)

	want := []string{"c", "d", "e", "f", "g"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("replayed = %v, want %v", got, want)
	}
}
