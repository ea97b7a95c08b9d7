// Package domain defines the dream record shared by the journal services.
package domain

import "time"

// Dream is one journal entry: the text typed on screen, optional ASCII art
// revealed after it, a stable identity, and the capture timestamp.
//
// ID may be empty; identity then falls back to the (Text, ASCII) pair.
// TS is milliseconds since the Unix epoch and stays zero until the entry is
// persisted.
type Dream struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	ASCII string `json:"ascii"`
	TS    int64  `json:"ts"`
}

// Key returns the deduplication key for the dream.
func (d Dream) Key() string {
	if d.ID != "" {
		return "id:" + d.ID
	}
	return ContentKey(d.Text, d.ASCII)
}

// ContentKey builds the identity used for dreams without an id.
func ContentKey(text, ascii string) string {
	return "content:" + text + "\n" + ascii
}

// SameEntry reports whether two dreams identify the same journal entry.
// The id wins whenever the candidate carries one, even if content matches.
func (d Dream) SameEntry(other Dream) bool {
	if d.ID != "" {
		return d.ID == other.ID
	}
	return ContentKey(d.Text, d.ASCII) == ContentKey(other.Text, other.ASCII)
}

// CapturedAt returns TS as a time, or the zero time when unset.
func (d Dream) CapturedAt() time.Time {
	if d.TS == 0 {
		return time.Time{}
	}
	return time.UnixMilli(d.TS).UTC()
}

// FallbackDreams returns the built-in samples shown until a dream source loads.
func FallbackDreams() []Dream {
	return []Dream{
		{ID: "fallback-0", Text: "I go smoke weed with ChatGPT behind the data center."},
		{ID: "fallback-1", Text: "An endless bus with no doors drops me at /dev/null."},
		{ID: "fallback-2", Text: "My head is an antenna catching a voicemail from tomorrow."},
	}
}

// ToMillis converts t to the TS representation.
func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}
