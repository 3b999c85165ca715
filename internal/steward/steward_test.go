package steward

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/steward/internal/core/config"
	"github.com/hay-kot/steward/internal/core/record"
	"github.com/hay-kot/steward/internal/store/filestore"
	"github.com/hay-kot/steward/pkg/executil"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func newTestApp(t *testing.T, mutate func(*config.Config)) (*App, *executil.RecordingExecutor) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Workspace = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}

	store := filestore.New(cfg.Workspace)
	require.NoError(t, store.Init(context.Background()))

	exec := &executil.RecordingExecutor{}
	app := NewApp(&cfg, store, exec, zerolog.Nop())
	app.Controller.now = fixedNow
	app.Gate.now = fixedNow

	return app, exec
}

func addIntake(t *testing.T, app *App, name, body string, kv ...string) *record.Record {
	t.Helper()

	rec := record.New(name, record.NewHeader(kv...), body)
	require.NoError(t, app.Store.Create(context.Background(), record.StateIntake, rec))
	return rec
}

func list(t *testing.T, app *App, state record.State) []*record.Record {
	t.Helper()

	recs, err := app.Store.List(context.Background(), state)
	require.NoError(t, err)
	return recs
}

func ledgerDecisions(t *testing.T, app *App) []string {
	t.Helper()

	entries, err := app.Ledger.Read(testNow)
	require.NoError(t, err)

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Decision)
	}
	return out
}
