// Package ledger keeps the daily markdown audit log of gate outcomes.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hay-kot/steward/pkg/utils"
)

// Decisions recorded in the ledger beyond a reviewer's verdict.
const (
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
	DecisionPending  = "PENDING"
	DecisionAuto     = "AUTO"
	DecisionFailed   = "FAILED"
	DecisionFlagged  = "FLAGGED"
	DecisionStuck    = "STUCK"
)

const (
	tableHeader  = "| Time | Action ID | Type | Decision | Executed By |"
	tableDivider = "|------|-----------|------|----------|-------------|"
	detailsTitle = "## Details"
)

// Entry is one ledger line plus its detail block.
type Entry struct {
	Time       time.Time
	ActionID   string
	Type       string
	Decision   string
	ExecutedBy string
	Details    string
}

// Ledger appends entries to one markdown document per day.
type Ledger struct {
	dir string
	mu  sync.Mutex
}

// New creates a ledger writing into dir.
func New(dir string) *Ledger {
	return &Ledger{dir: dir}
}

// Path returns the ledger file for the day of t.
func (l *Ledger) Path(t time.Time) string {
	return filepath.Join(l.dir, "approvals_"+t.Format("2006-01-02")+".md")
}

// Append adds an entry to the day's summary table and details section.
// The file is rewritten atomically.
func (l *Ledger) Append(e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.Path(e.Time)

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read ledger: %w", err)
	}

	doc := string(data)
	if strings.TrimSpace(doc) == "" {
		doc = header(e.Time)
	}

	doc = insertRow(doc, row(e)) + detail(e)

	if err := utils.WriteFileAtomic(path, []byte(doc)); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// Read returns the summary rows of the day's ledger, oldest first.
func (l *Ledger) Read(day time.Time) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.Path(day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	inTable := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == tableDivider:
			inTable = true
			continue
		case !inTable:
			continue
		case !strings.HasPrefix(line, "|"):
			return entries, nil
		}

		cells := splitRow(line)
		if len(cells) != 5 {
			continue
		}
		ts, err := time.ParseInLocation("15:04:05", cells[0], day.Location())
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Time:       time.Date(day.Year(), day.Month(), day.Day(), ts.Hour(), ts.Minute(), ts.Second(), 0, day.Location()),
			ActionID:   cells[1],
			Type:       cells[2],
			Decision:   cells[3],
			ExecutedBy: cells[4],
		})
	}
	return entries, sc.Err()
}

func header(t time.Time) string {
	return "# Approval Ledger - " + t.Format("2006-01-02") + "\n\n" +
		"## Actions Processed\n\n" +
		tableHeader + "\n" +
		tableDivider + "\n\n" +
		detailsTitle + "\n\n"
}

// insertRow places row at the end of the summary table. Documents missing
// the details section get one.
func insertRow(doc, row string) string {
	idx := strings.Index(doc, "\n"+detailsTitle+"\n")
	if idx < 0 {
		return strings.TrimRight(doc, "\n") + "\n" + row + "\n\n" + detailsTitle + "\n\n"
	}
	return strings.TrimRight(doc[:idx], "\n") + "\n" + row + "\n\n" + doc[idx+1:]
}

func row(e Entry) string {
	return "| " + strings.Join([]string{
		e.Time.Format("15:04:05"),
		cell(e.ActionID),
		cell(e.Type),
		cell(e.Decision),
		cell(e.ExecutedBy),
	}, " | ") + " |"
}

func detail(e Entry) string {
	details := e.Details
	if details == "" {
		details = "-"
	}
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "### [%s] %s - %s\n", e.Time.Format("15:04:05"), e.ActionID, e.Decision)
	fmt.Fprintf(&b, "- **Type:** %s\n", e.Type)
	fmt.Fprintf(&b, "- **Details:** %s\n", strings.Join(strings.Fields(details), " "))
	fmt.Fprintf(&b, "- **Timestamp:** %s\n", e.Time.Format(time.RFC3339))
	return b.String()
}

func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	var cells []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' && i+1 < len(line) && line[i+1] == '|' {
			cur.WriteByte('|')
			i++
			continue
		}
		if line[i] == '|' {
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteByte(line[i])
	}
	return append(cells, strings.TrimSpace(cur.String()))
}
