// Package filestore implements record.Store on a directory tree where each
// state is a directory and each record is a markdown file.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/hay-kot/steward/internal/core/record"
	"github.com/hay-kot/steward/pkg/randid"
	"github.com/hay-kot/steward/pkg/utils"
)

// Store implements record.Store under a workspace root.
type Store struct {
	root string
	mu   sync.Mutex
}

var _ record.Store = (*Store)(nil)

// New creates a store rooted at the workspace directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the workspace directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the absolute directory for a state.
func (s *Store) Dir(state record.State) string {
	return filepath.Join(s.root, state.Dir())
}

// Path returns the absolute file path of a record.
func (s *Store) Path(rec *record.Record) string {
	return filepath.Join(s.Dir(rec.State), rec.Name)
}

// Init creates every state directory plus the logs directory.
func (s *Store) Init(ctx context.Context) error {
	dirs := []string{filepath.Join(s.root, record.LogsDir)}
	for _, st := range record.States() {
		dirs = append(dirs, s.Dir(st))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// IsRecordFile reports whether a directory entry name is a record. Hidden
// files, marker files, and in-flight temp files are skipped.
func IsRecordFile(name string) bool {
	switch {
	case name == "", strings.HasPrefix(name, "."):
		return false
	case strings.HasSuffix(name, ".tmp"), strings.HasSuffix(name, "~"):
		return false
	}
	return true
}

// List returns the records in a state ordered by modification time, then
// name.
func (s *Store) List(ctx context.Context, state record.State) ([]*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.Dir(state))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", state, err)
	}

	type item struct {
		rec  *record.Record
		info fs.FileInfo
	}
	items := make([]item, 0, len(entries))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.Type().IsRegular() || !IsRecordFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		rec, err := s.read(state, e.Name())
		if err != nil {
			if errors.Is(err, record.ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, item{rec: rec, info: info})
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].info.ModTime(), items[j].info.ModTime()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return items[i].info.Name() < items[j].info.Name()
	})

	out := make([]*record.Record, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out, nil
}

// Get loads a record by file name from a state.
func (s *Store) Get(ctx context.Context, state record.State, name string) (*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(state, name)
}

// Find locates a record by id, file name, or file stem across all states.
// Later lifecycle states win when the same id appears more than once.
func (s *Store) Find(ctx context.Context, id string) (*record.Record, error) {
	states := record.States()
	for i := len(states) - 1; i >= 0; i-- {
		recs, err := s.List(ctx, states[i])
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			if rec.Name == id || record.Stem(rec.Name) == id || rec.ID() == id {
				return rec, nil
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", id, record.ErrNotFound)
}

// Create writes a new record atomically into a state directory.
func (s *Store) Create(ctx context.Context, state record.State, rec *record.Record) error {
	if !state.IsValid() {
		return fmt.Errorf("create %s: unknown state %q", rec.Name, state)
	}
	if !IsRecordFile(rec.Name) || filepath.Base(rec.Name) != rec.Name {
		return fmt.Errorf("create: invalid record name %q", rec.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.Dir(state), rec.Name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s/%s: %w", state, rec.Name, record.ErrExists)
	}

	if err := utils.WriteFileAtomic(path, rec.Render()); err != nil {
		return fmt.Errorf("create %s: %w", rec.Name, err)
	}
	rec.State = state
	return nil
}

// Update rewrites a record in place.
func (s *Store) Update(ctx context.Context, rec *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(rec)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", rec.State, rec.Name, record.ErrNotFound)
		}
		return err
	}

	if err := utils.WriteFileAtomic(path, rec.Render()); err != nil {
		return fmt.Errorf("update %s: %w", rec.Name, err)
	}
	return nil
}

// Move rewrites the record in its current directory, then renames it into
// the destination directory. The record keeps its id across the move: the
// id is written to the action_id header before the file leaves its source
// directory, and a colliding destination name gets a random suffix.
func (s *Store) Move(ctx context.Context, rec *record.Record, from, to record.State) error {
	if rec.State != from {
		return fmt.Errorf("move %s from %s: %w (in %s)", rec.Name, from, record.ErrStateMismatch, rec.State)
	}
	if !record.CanTransition(from, to) {
		return fmt.Errorf("move %s %s -> %s: %w", rec.Name, from, to, record.ErrInvalidTransition)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src := filepath.Join(s.Dir(from), rec.Name)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", from, rec.Name, record.ErrNotFound)
		}
		return err
	}

	orig, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", rec.Name, err)
	}

	rec.Header.SetDefault(record.KeyActionID, record.Stem(rec.Name))

	if err := utils.WriteFileAtomic(src, rec.Render()); err != nil {
		return fmt.Errorf("rewrite %s: %w", rec.Name, err)
	}

	name := s.freeName(to, rec.Name)
	dst := filepath.Join(s.Dir(to), name)

	if err := os.Rename(src, dst); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			// The record stays in from with the content it had before.
			if rerr := utils.WriteFileAtomic(src, orig); rerr != nil {
				return fmt.Errorf("move %s -> %s: %w (restore: %v)", src, dst, err, rerr)
			}
			return fmt.Errorf("move %s -> %s: %w", src, dst, err)
		}
		// Cross-device: the record exists in both directories until the
		// source is removed.
		if err := utils.WriteFileAtomic(dst, rec.Render()); err != nil {
			return fmt.Errorf("copy %s -> %s: %w", src, dst, err)
		}
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("remove %s after copy: %w", src, err)
		}
	}

	rec.Name = name
	rec.State = to
	return nil
}

// freeName returns name, or name with a random suffix when it is taken in
// the target state.
func (s *Store) freeName(state record.State, name string) string {
	dir := s.Dir(state)
	if _, err := os.Stat(filepath.Join(dir, name)); errors.Is(err, fs.ErrNotExist) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for {
		candidate := stem + "-" + randid.Generate(6) + ext
		if _, err := os.Stat(filepath.Join(dir, candidate)); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
	}
}

func (s *Store) read(state record.State, name string) (*record.Record, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(state), name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", state, name, record.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s/%s: %w", state, name, err)
	}

	rec := record.ParseRecord(name, data)
	rec.State = state
	return rec, nil
}
