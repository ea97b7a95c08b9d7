package app

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/render"
)

// maxLogLines bounds the log lines kept on screen.
const maxLogLines = 100

type frameMsg render.Frame

type entryMsg domain.Dream

type playbackDoneMsg struct{}

type screenStyles struct {
	prompt lipgloss.Style
	text   lipgloss.Style
	art    lipgloss.Style
	stamp  lipgloss.Style
	entry  lipgloss.Style
}

func newScreenStyles() screenStyles {
	accent := lipgloss.AdaptiveColor{Light: "26", Dark: "81"}
	subtle := lipgloss.AdaptiveColor{Light: "245", Dark: "244"}
	return screenStyles{
		prompt: lipgloss.NewStyle().Bold(true).Foreground(accent),
		text:   lipgloss.NewStyle(),
		art:    lipgloss.NewStyle().Foreground(accent),
		stamp:  lipgloss.NewStyle().Foreground(subtle),
		entry:  lipgloss.NewStyle().Foreground(subtle),
	}
}

// screen is the bubbletea model for playback: logged entries above, then
// either the ascii block or the type line.
type screen struct {
	loc    *time.Location
	styles screenStyles

	typed  string
	art    string
	logs   []string
	height int
}

func newScreen(loc *time.Location) screen {
	if loc == nil {
		loc = time.Local
	}
	return screen{loc: loc, styles: newScreenStyles()}
}

func (m screen) Init() tea.Cmd { return nil }

func (m screen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.ShowASCII {
			m.art = strings.TrimRight(msg.ASCII, "\n")
			m.typed = ""
		} else {
			m.art = ""
			m.typed = msg.Text
		}
	case entryMsg:
		m.logs = append(m.logs, m.formatEntry(domain.Dream(msg)))
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case playbackDoneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m screen) View() string {
	var current string
	if m.art != "" {
		current = m.styles.art.Render(m.art)
	} else {
		current = m.styles.prompt.Render(">") + " " + m.styles.text.Render(m.typed)
	}

	logs := m.logs
	if m.height > 0 {
		room := m.height - lipgloss.Height(current)
		if room < 0 {
			room = 0
		}
		if len(logs) > room {
			logs = logs[len(logs)-room:]
		}
	}
	if len(logs) == 0 {
		return current
	}
	return lipgloss.JoinVertical(lipgloss.Left, strings.Join(logs, "\n"), current)
}

func (m screen) formatEntry(entry domain.Dream) string {
	stamp := "--:--:--"
	if at := entry.CapturedAt(); !at.IsZero() {
		stamp = at.In(m.loc).Format("15:04:05")
	}
	return m.styles.stamp.Render("["+stamp+"]") + " " + m.styles.entry.Render(entry.Text)
}

// programSink forwards controller callbacks into a running program.
type programSink struct {
	send func(tea.Msg)
}

func (s programSink) ShowFrame(frame render.Frame) { s.send(frameMsg(frame)) }

func (s programSink) EntryLogged(entry domain.Dream) { s.send(entryMsg(entry)) }
