package filestore

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/hay-kot/steward/internal/core/dedup"
	"github.com/hay-kot/steward/pkg/utils"
)

// ProcessedFile persists a dedup set as one id per line.
type ProcessedFile struct {
	path string
}

var _ dedup.Store = (*ProcessedFile)(nil)

// NewProcessedFile creates a processed-set store at path.
func NewProcessedFile(path string) *ProcessedFile {
	return &ProcessedFile{path: path}
}

// Load reads the ids. A missing file is an empty set.
func (p *ProcessedFile) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, sc.Err()
}

// Save rewrites the whole file atomically.
func (p *ProcessedFile) Save(ctx context.Context, ids []string) error {
	var buf bytes.Buffer
	for _, id := range ids {
		buf.WriteString(id)
		buf.WriteByte('\n')
	}
	return utils.WriteFileAtomic(p.path, buf.Bytes())
}
