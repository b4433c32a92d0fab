package portals

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// ErrRecordNotFound is returned by Sink.Load for an unknown identity.
var ErrRecordNotFound = errors.New("portal record not found")

// Sink stores records keyed by identity.
type Sink interface {
	Load(ctx context.Context, id string) (Record, error)
	Save(ctx context.Context, id string, rec Record) error
	List(ctx context.Context) ([]Record, error)
}

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// fileName maps an identity to a flat file name.
func fileName(id string) string {
	return fileNameReplacer.Replace(id) + ".json"
}

func encode(rec Record) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// FileSink keeps one JSON file per record under <dir>/portals.
type FileSink struct {
	dir string
}

// NewFileSink creates a sink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: filepath.Join(dir, "portals")}
}

// Load implements Sink.
func (s *FileSink) Load(_ context.Context, id string) (Record, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, fileName(id)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("failed to read record %s: %w", id, err)
	}
	rec, err := decode(data)
	if err != nil {
		return Record{}, fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return rec, nil
}

// Save implements Sink. The file is replaced atomically.
func (s *FileSink) Save(_ context.Context, id string, rec Record) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}
	data, err := encode(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", id, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".record-*")
	if err != nil {
		return fmt.Errorf("failed to write record %s: %w", id, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write record %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write record %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, fileName(id))); err != nil {
		return fmt.Errorf("failed to write record %s: %w", id, err)
	}
	return nil
}

// List implements Sink. A missing directory yields no records.
func (s *FileSink) List(_ context.Context) ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	var records []Record
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		rec, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", e.Name(), err)
		}
		records = append(records, rec)
	}
	return records, nil
}
