package steward

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/steward/internal/store/filestore"
)

// Watcher ingests files dropped into the inbox and runs the controller when
// new work arrives and on a fixed interval.
type Watcher struct {
	intake        *IntakeService
	controller    *Controller
	inbox         string
	matcher       Matcher
	debounce      time.Duration
	interval      time.Duration
	maxIterations int
	log           zerolog.Logger
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	Inbox         string
	Matcher       Matcher
	Debounce      time.Duration
	Interval      time.Duration
	MaxIterations int
}

// NewWatcher creates a Watcher.
func NewWatcher(intake *IntakeService, controller *Controller, opts WatcherOptions, log zerolog.Logger) *Watcher {
	return &Watcher{
		intake:        intake,
		controller:    controller,
		inbox:         opts.Inbox,
		matcher:       opts.Matcher,
		debounce:      opts.Debounce,
		interval:      opts.Interval,
		maxIterations: opts.MaxIterations,
		log:           log.With().Str("component", "watcher").Logger(),
	}
}

// Scan ingests every matching file already in the inbox and returns how many
// new records were created.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read inbox: %w", err)
	}

	created := 0
	for _, e := range entries {
		if e.IsDir() || !w.matcher.Match(e.Name()) {
			continue
		}
		ok, err := w.ingestFile(ctx, filepath.Join(w.inbox, e.Name()))
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	return created, w.intake.Flush(ctx)
}

// Run blocks until ctx is cancelled. Each controller run is reported through
// onReport; events go to observe.
func (w *Watcher) Run(ctx context.Context, observe Observer, onReport func(Report)) error {
	iw, err := filestore.NewInboxWatcher(w.inbox, w.debounce, w.matcher.Match, w.log)
	if err != nil {
		return fmt.Errorf("watch inbox: %w", err)
	}
	defer func() { _ = iw.Close() }()

	if _, err := w.Scan(ctx); err != nil {
		return err
	}
	if err := w.runOnce(ctx, observe, onReport); err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-iw.Events():
			if !ok {
				return nil
			}
			created, err := w.ingestFile(ctx, ev.Path)
			if err != nil {
				return err
			}
			if !created {
				continue
			}
			if err := w.intake.Flush(ctx); err != nil {
				return err
			}
			if err := w.runOnce(ctx, observe, onReport); err != nil {
				return err
			}
		case <-ticker.C:
			if err := w.runOnce(ctx, observe, onReport); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context, observe Observer, onReport func(Report)) error {
	report, err := w.controller.Run(ctx, w.maxIterations, observe)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if onReport != nil && report.Iterations > 0 {
		onReport(report)
	}
	return nil
}

// ingestFile reports whether a new record was created. Unreadable files are
// logged and skipped; only store failures are returned.
func (w *Watcher) ingestFile(ctx context.Context, path string) (bool, error) {
	item, err := FileItem(path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable inbox file")
		return false, nil
	}

	rec, err := w.intake.Ingest(ctx, item)
	switch {
	case errors.Is(err, ErrDuplicate):
		w.log.Debug().Str("path", path).Msg("inbox file already ingested")
		return false, nil
	case err != nil:
		return false, err
	}

	w.log.Info().Str("path", path).Str("record", rec.Name).Msg("inbox file ingested")
	return true, nil
}
