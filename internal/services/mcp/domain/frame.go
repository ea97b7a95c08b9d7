package domain

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	journal "github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/render"
	"github.com/louisbranch/somnia/internal/services/journal/timeline"
)

// DreamSource supplies the dream list the timeline is built from.
type DreamSource interface {
	Load(ctx context.Context) []journal.Dream
}

// CurrentFrameInput represents the MCP tool input for the current frame.
type CurrentFrameInput struct {
	At string `json:"at,omitempty" jsonschema:"optional RFC3339 instant to evaluate instead of now"`
}

// CurrentFrameResult represents what the presentation shows at an instant.
type CurrentFrameResult struct {
	At            string `json:"at" jsonschema:"RFC3339 instant evaluated"`
	Kind          string `json:"kind" jsonschema:"segment kind (type, hold, erase, ascii, log)"`
	DreamIndex    int    `json:"dream_index" jsonschema:"index of the active dream"`
	DreamID       string `json:"dream_id" jsonschema:"identifier of the active dream"`
	SentenceIndex int    `json:"sentence_index" jsonschema:"index of the active sentence, -1 outside sentences"`
	Text          string `json:"text" jsonschema:"visible portion of the type line"`
	ASCII         string `json:"ascii,omitempty" jsonschema:"ascii art when shown"`
	ShowASCII     bool   `json:"show_ascii" jsonschema:"whether the ascii block is visible"`
	Cycle         int64  `json:"cycle" jsonschema:"completed cycles since the epoch"`
	CycleMillis   int64  `json:"cycle_ms" jsonschema:"length of one cycle in milliseconds"`
	Dreams        int    `json:"dreams" jsonschema:"number of dreams in the cycle"`
}

// CurrentFrameTool defines the MCP tool schema for the current frame.
func CurrentFrameTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "current_frame",
		Description: "Returns what the dream display shows now. Every viewer computes the same frame from the shared epoch.",
	}
}

// CurrentFrameHandler loads the dream list and locates the playhead.
func CurrentFrameHandler(source DreamSource, now func() time.Time) mcp.ToolHandlerFor[CurrentFrameInput, CurrentFrameResult] {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CurrentFrameInput) (*mcp.CallToolResult, CurrentFrameResult, error) {
		at := now()
		if input.At != "" {
			parsed, err := time.Parse(time.RFC3339, input.At)
			if err != nil {
				return nil, CurrentFrameResult{}, invalidArgument("at", err)
			}
			at = parsed
		}

		var dreams []journal.Dream
		if source != nil {
			dreams = source.Load(ctx)
		}
		tl := timeline.Build(dreams)
		pos := tl.Locate(at)
		frame := render.Render(pos.Segment, pos.Offset)

		result := CurrentFrameResult{
			At:            at.UTC().Format(time.RFC3339),
			Kind:          string(frame.Kind),
			DreamIndex:    frame.DreamIndex,
			SentenceIndex: frame.SentenceIndex,
			Text:          frame.Text,
			ASCII:         frame.ASCII,
			ShowASCII:     frame.ShowASCII,
			Cycle:         pos.Cycle,
			CycleMillis:   tl.Total().Milliseconds(),
			Dreams:        len(tl.Dreams()),
		}
		if d := frame.DreamIndex; d >= 0 && d < len(tl.Dreams()) {
			result.DreamID = tl.Dreams()[d].ID
		}
		return nil, result, nil
	}
}
