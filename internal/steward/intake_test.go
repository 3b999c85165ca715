package steward

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/steward/internal/core/dedup"
	"github.com/hay-kot/steward/internal/core/record"
)

func newTestIntake(t *testing.T, app *App, processed dedup.Store) *IntakeService {
	t.Helper()

	svc, err := OpenIntake(context.Background(), app.Store, processed, zerolog.Nop())
	require.NoError(t, err)
	svc.now = fixedNow
	return svc
}

func TestIntake_IngestWritesRecord(t *testing.T) {
	app, _ := newTestApp(t, nil)
	svc := newTestIntake(t, app, &dedup.MemoryStore{})

	rec, err := svc.Ingest(context.Background(), Item{
		ID:      "msg-001",
		Type:    "email",
		Source:  "gmail",
		From:    "jane@example.com",
		Subject: "Invoice for March",
		Fields:  map[string]string{"priority": "high", "message_id": "abc"},
		Body:    "Please pay $120.",
	})
	require.NoError(t, err)

	assert.Equal(t, "gmail_invoice_for_march_2026-03-14_09-30-00.md", rec.Name)

	got, err := app.Store.Get(context.Background(), record.StateIntake, rec.Name)
	require.NoError(t, err)

	keys := make([]string, 0, got.Header.Len())
	for _, f := range got.Header.Fields() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"type", "source", "from", "subject", "created", "message_id", "priority", KeySourceID}, keys)
	assert.Equal(t, "msg-001", got.Header.Get(KeySourceID))
	assert.Contains(t, got.Body, "- **From:** jane@example.com")
	assert.Contains(t, got.Body, "## Content\n\nPlease pay $120.")
}

func TestIntake_ReservedFieldsAreNamespaced(t *testing.T) {
	app, _ := newTestApp(t, nil)
	svc := newTestIntake(t, app, &dedup.MemoryStore{})

	rec, err := svc.Ingest(context.Background(), Item{
		ID:     "msg-002",
		Type:   "email",
		Fields: map[string]string{"decision": "approved", "status": "executed", "Reviewed By": "sender", "label": "sales"},
		Body:   "hello",
	})
	require.NoError(t, err)

	for _, k := range []string{"decision", "status", "reviewed by", "Reviewed By"} {
		_, ok := rec.Header.Lookup(k)
		assert.False(t, ok, k)
	}
	assert.Equal(t, "approved", rec.Header.Get("item_decision"))
	assert.Equal(t, "sender", rec.Header.Get("item_Reviewed By"))
	assert.Equal(t, "sales", rec.Header.Get("label"))
}

func TestIntake_DeduplicatesAcrossReopen(t *testing.T) {
	app, _ := newTestApp(t, nil)
	processed := &dedup.MemoryStore{}

	svc := newTestIntake(t, app, processed)
	_, err := svc.Ingest(context.Background(), Item{ID: "n-1", Type: "linkedin_notification", Body: "hello"})
	require.NoError(t, err)

	_, err = svc.Ingest(context.Background(), Item{ID: "n-1", Type: "linkedin_notification", Body: "hello"})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, svc.Flush(context.Background()))

	reopened := newTestIntake(t, app, processed)
	assert.True(t, reopened.Seen("n-1"))
	_, err = reopened.Ingest(context.Background(), Item{ID: "n-1", Body: "hello"})
	require.ErrorIs(t, err, ErrDuplicate)

	assert.Len(t, list(t, app, record.StateIntake), 1)
}

func TestIntake_NameCollisionGetsSuffix(t *testing.T) {
	app, _ := newTestApp(t, nil)
	svc := newTestIntake(t, app, &dedup.MemoryStore{})

	a, err := svc.Ingest(context.Background(), Item{ID: "1", Source: "gmail", Subject: "Hello"})
	require.NoError(t, err)
	b, err := svc.Ingest(context.Background(), Item{ID: "2", Source: "gmail", Subject: "Hello"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Name, b.Name)
	assert.Len(t, list(t, app, record.StateIntake), 2)
}

func TestIntake_MissingID(t *testing.T) {
	app, _ := newTestApp(t, nil)
	svc := newTestIntake(t, app, &dedup.MemoryStore{})

	_, err := svc.Ingest(context.Background(), Item{Body: "no id"})
	require.ErrorIs(t, err, ErrMissingID)
}

func TestMatcher(t *testing.T) {
	m := Matcher{Patterns: []string{"*.md", "*.txt"}, Ignore: []string{"draft-*"}}

	tests := []struct {
		name string
		want bool
	}{
		{"notes.md", true},
		{"scan.txt", true},
		{"photo.png", false},
		{"draft-notes.md", false},
		{".hidden.md", false},
		{"notes.md.tmp", false},
		{"/inbox/nested/report.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.name))
		})
	}
}

func TestFileItem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("quarterly numbers"), 0o644))

	first, err := FileItem(path)
	require.NoError(t, err)
	assert.Equal(t, "file_drop", first.Type)
	assert.Equal(t, "report.txt", first.Fields["original_name"])
	assert.Equal(t, "17", first.Fields["size"])
	assert.Contains(t, first.Body, "quarterly numbers")

	again, err := FileItem(path)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	require.NoError(t, os.WriteFile(path, []byte("revised numbers"), 0o644))
	changed, err := FileItem(path)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, changed.ID)
}

func TestFileItem_Binary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644))

	item, err := FileItem(path)
	require.NoError(t, err)
	assert.Contains(t, item.Body, "Binary file, 3 bytes")
}

func TestWatcher_ScanIngestsInboxOnce(t *testing.T) {
	app, _ := newTestApp(t, nil)
	inbox := app.Config.InboxPath()
	require.NoError(t, os.MkdirAll(inbox, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(inbox, "receipt.txt"), []byte("payment received"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, ".DS_Store"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "upload.tmp"), []byte("x"), 0o644))

	intake, err := app.Intake(context.Background(), "inbox")
	require.NoError(t, err)
	w := app.Watcher(intake)

	n, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	recs := list(t, app, record.StateIntake)
	require.Len(t, recs, 1)
	assert.Equal(t, "file_drop", recs[0].Type())

	_, err = os.Stat(app.Config.ProcessedFile("inbox"))
	require.NoError(t, err)
}
