// Package app draws the dream animation on a terminal and keeps the same
// journal as the web process.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/louisbranch/somnia/internal/services/journal"
	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/gateway"
	"github.com/louisbranch/somnia/internal/services/journal/player"
	"github.com/louisbranch/somnia/internal/services/journal/source"
)

// recentOnBoot bounds how many persisted entries are replayed at startup.
const recentOnBoot = 5

// Config defines the inputs for the terminal process.
type Config struct {
	DreamSources  []string
	APIEndpoint   string
	JournalDBPath string
	JournalFile   string
	Retention     gateway.Retention
	FrameInterval time.Duration
	// Output receives the drawn frames. Defaults to os.Stdout.
	Output io.Writer
	// Input feeds key presses ("q" quits). Nil disables keyboard input.
	Input io.Reader
}

// Run plays the timeline until ctx ends.
func Run(ctx context.Context, config Config) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	opened, err := journal.Open(journal.StoreOptions{
		DBPath:      config.JournalDBPath,
		File:        config.JournalFile,
		APIEndpoint: config.APIEndpoint,
		Retention:   config.Retention,
		OnSync: func(res gateway.SyncResult) {
			if res.Err != nil {
				log.Printf("terminal: journal sync %s failed: %v", res.Entry.ID, res.Err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if err := opened.Close(); err != nil {
			log.Printf("terminal: close journal: %v", err)
		}
	}()

	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newScreen(nil),
		tea.WithInput(config.Input),
		tea.WithOutput(out),
		tea.WithoutSignalHandler(),
	)
	sink := programSink{send: program.Send}
	controller := player.New(player.Config{
		Persister: opened.Gateway,
		Sinks:     []player.Sink{sink},
		Interval:  config.FrameInterval,
	})

	played := make(chan error, 1)
	go func() {
		err := player.Boot(playCtx, player.BootConfig{
			Controller: controller,
			Journal:    opened.Gateway,
			Source:     source.NewLoader(config.DreamSources...),
			OnJournal: func(entries []domain.Dream) {
				showRecent(sink, entries)
			},
		})
		program.Send(playbackDoneMsg{})
		played <- err
	}()

	_, runErr := program.Run()
	cancel()
	playErr := <-played
	if runErr != nil {
		return fmt.Errorf("draw: %w", runErr)
	}
	if playErr != nil {
		return fmt.Errorf("play: %w", playErr)
	}
	return nil
}

// showRecent replays the newest persisted entries, oldest of them first.
func showRecent(sink player.Sink, entries []domain.Dream) {
	start := len(entries) - recentOnBoot
	if start < 0 {
		start = 0
	}
	for _, entry := range entries[start:] {
		sink.EntryLogged(entry)
	}
}
