package templates

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/render"
)

// MaxVisibleEntries bounds how many log cards a page shows.
const MaxVisibleEntries = 100

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Tag    string
	Label  string
	Active bool
}

// PageContext carries everything the page shell needs.
type PageContext struct {
	Lang      string
	Loc       Localizer
	Languages []LanguageOption
	Now       time.Time
	Frame     render.Frame
	// Journal is the persisted log, oldest first.
	Journal []domain.Dream
}

// Page renders the full document: clock, login banner, tabs, the live
// type line and the journal.
func Page(page PageContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out := &writer{w: w}
		out.raw(`<!DOCTYPE html><html lang="`)
		out.text(page.Lang)
		out.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><meta name="description" content="`)
		out.text(T(page.Loc, "meta.description"))
		out.raw(`"><title>`)
		out.text(T(page.Loc, "title.page"))
		out.raw(`</title></head><body>`)

		out.raw(`<header><span id="clock">`)
		out.text(page.Now.Format("15:04"))
		out.raw(`</span><div id="last-login">`)
		out.text(T(page.Loc, "banner.last_login", LoginStamp(page.Now)))
		out.raw(`</div><nav class="langs">`)
		for _, option := range page.Languages {
			if option.Active {
				out.raw(`<b>`)
				out.text(option.Label)
				out.raw(`</b> `)
				continue
			}
			out.raw(`<a href="?lang=`)
			out.text(option.Tag)
			out.raw(`">`)
			out.text(option.Label)
			out.raw(`</a> `)
		}
		out.raw(`</nav></header>`)

		out.raw(`<nav class="tabs"><a id="tab-today" class="active" href="#today">`)
		out.text(T(page.Loc, "tab.today"))
		out.raw(`</a><a id="tab-log" href="#log">`)
		out.text(T(page.Loc, "tab.log"))
		out.raw(`</a><a id="tab-info" href="#info">`)
		out.text(T(page.Loc, "tab.info"))
		out.raw(`</a></nav>`)
		if out.err != nil {
			return out.err
		}

		out.raw(`<section id="view-today">`)
		if err := FrameView(page.Frame).Render(ctx, w); err != nil {
			return err
		}
		out.raw(`</section><section id="view-log">`)
		if err := Journal(page.Loc, page.Journal).Render(ctx, w); err != nil {
			return err
		}
		out.raw(`</section><section id="view-info"><p>`)
		out.text(T(page.Loc, "info.body"))
		out.raw(`</p></section>`)
		out.raw(`<script src="/static/somnia.js" defer></script></body></html>`)
		return out.err
	})
}

// FrameView renders the type line and the ascii block for one frame.
func FrameView(frame render.Frame) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		out := &writer{w: w}
		out.raw(`<div id="type" class="glow" data-kind="`)
		out.text(string(frame.Kind))
		out.raw(`" data-dream="`)
		out.raw(strconv.Itoa(frame.DreamIndex))
		out.raw(`">`)
		out.text(frame.Text)
		out.raw(`</div><pre id="ascii" class="art"`)
		if !frame.ShowASCII {
			out.raw(` hidden`)
		}
		out.raw(`>`)
		out.text(frame.ASCII)
		out.raw(`</pre>`)
		return out.err
	})
}

// Journal renders log cards newest first, at most MaxVisibleEntries.
func Journal(loc Localizer, entries []domain.Dream) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out := &writer{w: w}
		visible := VisibleEntries(entries)
		if len(visible) == 0 {
			out.raw(`<p id="log-empty" class="muted">`)
			out.text(T(loc, "log.empty"))
			out.raw(`</p>`)
			return out.err
		}
		out.raw(`<p class="muted">`)
		out.text(T(loc, "log.count", len(entries)))
		out.raw(`</p><div id="log-list">`)
		for _, entry := range visible {
			if out.err != nil {
				break
			}
			if err := Card(entry).Render(ctx, w); err != nil {
				return err
			}
		}
		out.raw(`</div>`)
		return out.err
	})
}

// Card renders one journal entry.
func Card(entry domain.Dream) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		out := &writer{w: w}
		out.raw(`<div class="log-item"`)
		if entry.ID != "" {
			out.raw(` data-id="`)
			out.text(entry.ID)
			out.raw(`"`)
		}
		out.raw(`><div class="muted">`)
		if at := entry.CapturedAt(); !at.IsZero() {
			out.text(at.Format("2006-01-02 15:04:05"))
		}
		out.raw(`</div><div class="glow">`)
		out.text(entry.Text)
		out.raw(`</div>`)
		if entry.ASCII != "" {
			out.raw(`<pre class="art">`)
			out.text(entry.ASCII)
			out.raw(`</pre>`)
		}
		out.raw(`</div>`)
		return out.err
	})
}

// VisibleEntries returns the newest MaxVisibleEntries entries, newest first.
func VisibleEntries(entries []domain.Dream) []domain.Dream {
	start := 0
	if len(entries) > MaxVisibleEntries {
		start = len(entries) - MaxVisibleEntries
	}
	out := make([]domain.Dream, 0, len(entries)-start)
	for i := len(entries) - 1; i >= start; i-- {
		out = append(out, entries[i])
	}
	return out
}

// LoginStamp formats t like a console login banner: "Mon Jan 02, 15:04:05".
func LoginStamp(t time.Time) string {
	return t.Format("Mon Jan 02, 15:04:05")
}
