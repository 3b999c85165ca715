package steward

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/hay-kot/steward/internal/core/approval"
	"github.com/hay-kot/steward/internal/core/dedup"
	"github.com/hay-kot/steward/internal/core/record"
	"github.com/hay-kot/steward/internal/store/filestore"
	"github.com/hay-kot/steward/pkg/randid"
)

// KeySourceID holds the producer's id for the item a record was made from.
const KeySourceID = "source_id"

var (
	// ErrDuplicate is returned when an item's source id was already ingested.
	ErrDuplicate = errors.New("already ingested")
	// ErrMissingID is returned for items without a source id.
	ErrMissingID = errors.New("item has no id")
)

// Item is a unit of work handed over by a producer such as a mail or social
// poller.
type Item struct {
	ID      string            `json:"id"`
	Name    string            `json:"name,omitempty"` // file name hint
	Type    string            `json:"type"`
	Source  string            `json:"source,omitempty"`
	From    string            `json:"from,omitempty"`
	Subject string            `json:"subject,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Body    string            `json:"body"`
}

// IntakeService turns producer items into intake records, at most once per
// source id.
type IntakeService struct {
	store record.Store
	seen  *dedup.ProcessedSet
	now   func() time.Time
	log   zerolog.Logger
}

// OpenIntake loads the processed set from processed and returns a service
// writing into store.
func OpenIntake(ctx context.Context, store record.Store, processed dedup.Store, log zerolog.Logger) (*IntakeService, error) {
	seen, err := dedup.Open(ctx, processed)
	if err != nil {
		return nil, fmt.Errorf("load processed set: %w", err)
	}
	return &IntakeService{
		store: store,
		seen:  seen,
		now:   time.Now,
		log:   log.With().Str("component", "intake").Logger(),
	}, nil
}

// Ingest writes item into intake. Call Flush after a batch to persist the
// processed set.
func (s *IntakeService) Ingest(ctx context.Context, item Item) (*record.Record, error) {
	if strings.TrimSpace(item.ID) == "" {
		return nil, ErrMissingID
	}
	if s.seen.Has(item.ID) {
		return nil, fmt.Errorf("%s: %w", item.ID, ErrDuplicate)
	}

	now := s.now()
	rec := record.New(recordName(item, now), itemHeader(item, now), itemBody(item))

	err := s.store.Create(ctx, record.StateIntake, rec)
	if errors.Is(err, record.ErrExists) {
		rec.Name = record.Stem(rec.Name) + "-" + randid.Generate(6) + ".md"
		err = s.store.Create(ctx, record.StateIntake, rec)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", item.ID, err)
	}

	s.seen.Add(item.ID)
	s.log.Info().Str("source_id", item.ID).Str("record", rec.Name).Msg("item ingested")
	return rec, nil
}

// Flush persists the processed set if it changed.
func (s *IntakeService) Flush(ctx context.Context) error {
	return s.seen.Flush(ctx)
}

// Seen reports whether a source id was already ingested.
func (s *IntakeService) Seen(id string) bool {
	return s.seen.Has(id)
}

// fieldPrefix namespaces producer fields that collide with approval headers.
const fieldPrefix = "item_"

func itemHeader(item Item, now time.Time) record.Header {
	typ := item.Type
	if typ == "" {
		typ = "task"
	}

	h := record.NewHeader(record.KeyType, typ)
	if item.Source != "" {
		h.Set(record.KeySource, item.Source)
	}
	if item.From != "" {
		h.Set(record.KeyFrom, item.From)
	}
	if item.Subject != "" {
		h.Set(record.KeySubject, item.Subject)
	}
	h.Set(record.KeyCreated, now.Format(time.RFC3339))
	for _, k := range slices.Sorted(maps.Keys(item.Fields)) {
		key := k
		if approval.Reserved(k) {
			key = fieldPrefix + k
		}
		h.SetDefault(key, item.Fields[k])
	}
	h.Set(KeySourceID, item.ID)
	return h
}

func itemBody(item Item) string {
	if item.Subject == "" && item.From == "" {
		return item.Body
	}

	var b strings.Builder
	if item.Subject != "" {
		fmt.Fprintf(&b, "# %s\n\n", item.Subject)
	}
	if item.From != "" {
		fmt.Fprintf(&b, "- **From:** %s\n", item.From)
	}
	if item.Subject != "" {
		fmt.Fprintf(&b, "- **Subject:** %s\n", item.Subject)
	}
	b.WriteString("\n## Content\n\n")
	b.WriteString(strings.TrimRight(item.Body, "\n"))
	b.WriteString("\n")
	return b.String()
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string, n int) string {
	s = unsafeName.ReplaceAllString(strings.ToLower(s), "_")
	s = strings.Trim(s, "_")
	if len(s) > n {
		s = strings.TrimRight(s[:n], "_")
	}
	return s
}

func recordName(item Item, now time.Time) string {
	prefix := slug(item.Source, 20)
	if prefix == "" {
		prefix = slug(item.Type, 20)
	}
	if prefix == "" {
		prefix = "item"
	}

	label := item.Name
	if label == "" {
		label = item.Subject
	}
	if label == "" {
		label = item.ID
	}

	parts := []string{prefix}
	if s := slug(label, 30); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, now.Format("2006-01-02_15-04-05"))
	return strings.Join(parts, "_") + ".md"
}

// Matcher filters inbox file names with doublestar patterns.
type Matcher struct {
	Patterns []string
	Ignore   []string
}

// Match reports whether name is included and not ignored. Invalid patterns
// never match.
func (m Matcher) Match(name string) bool {
	name = filepath.Base(name)
	if !filestore.IsRecordFile(name) {
		return false
	}
	for _, pat := range m.Ignore {
		if ok, _ := doublestar.Match(pat, name); ok {
			return false
		}
	}
	for _, pat := range m.Patterns {
		if ok, _ := doublestar.Match(pat, name); ok {
			return true
		}
	}
	return false
}

// FileItem wraps a dropped file as an item. The source id combines the file
// name with a blake3 digest of its content, so an edited file is a new item
// and a re-dropped identical file is not.
func FileItem(path string) (Item, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Item{}, err
	}

	sum := blake3.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	item := Item{
		ID:     name + ":" + digest[:32],
		Name:   stem,
		Type:   "file_drop",
		Source: "file",
		Fields: map[string]string{
			"original_name": name,
			"size":          strconv.Itoa(len(content)),
			"digest":        digest,
		},
	}

	if utf8.Valid(content) {
		item.Body = fmt.Sprintf("# File: %s\n\n%s", name, content)
	} else {
		item.Body = fmt.Sprintf("# File: %s\n\nBinary file, %d bytes, left in the inbox.\n", name, len(content))
	}
	return item, nil
}
