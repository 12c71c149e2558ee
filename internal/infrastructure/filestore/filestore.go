// Package filestore implements ports.RecordStore over a directory of
// per-key JSON files. Each record lives in <normalized-key>.json; the file
// content is the JSON-encoded cache.Record, so external tooling can read the
// directory directly as long as it honors the expiry timestamps.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avatarctic/diskcache/internal/core/domain/cache"
	"github.com/avatarctic/diskcache/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const recordExt = ".json"

// Store is a RecordStore backed by a single flat directory.
type Store struct {
	dir    string
	logger *logrus.Logger
}

// New creates a file-backed record store rooted at dir.
func New(dir string, logger *logrus.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Dir returns the backing directory path.
func (s *Store) Dir() string { return s.dir }

// EnsureDirectory creates the backing directory if needed. Idempotent.
func (s *Store) EnsureDirectory() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory %s: %w", s.dir, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, NormalizeKey(key)+recordExt)
}

// ReadRecord loads and parses the record file for key. Missing files and
// parse failures both report not-found; corruption is handled by the sweep,
// not the read path.
func (s *Store) ReadRecord(_ context.Context, key string) (*cache.Record, bool) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	var rec cache.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Debug("filestore: unreadable record treated as absent")
		}
		return nil, false
	}
	return &rec, true
}

// WriteRecord serializes rec and replaces its file in one rename, so readers
// never observe a partially written record. On failure the temp file is
// removed and the previous content, if any, stays intact.
func (s *Store) WriteRecord(_ context.Context, rec *cache.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", rec.Key, err)
	}
	target := s.path(rec.Key)
	tmp := target + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write record %q: %w", rec.Key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace record %q: %w", rec.Key, err)
	}
	return nil
}

// DeleteRecord removes the file for key. Absence and I/O failures are
// deliberately swallowed; delete is a best-effort no-op on any error.
func (s *Store) DeleteRecord(_ context.Context, key string) {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("filestore: delete failed")
		}
	}
}

// RemoveFile deletes an enumerated file by name. The name is flattened with
// filepath.Base so a listing entry can never escape the cache directory.
func (s *Store) RemoveFile(_ context.Context, filename string) {
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(filename))); err != nil && !os.IsNotExist(err) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"file": filename}).WithError(err).Warn("filestore: remove failed")
		}
	}
}

// ListAll enumerates every record file, parsing each one. Files that fail to
// parse are returned with Err set so the sweep can clear them; in-flight temp
// files are skipped.
func (s *Store) ListAll(_ context.Context) ([]ports.StoredRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list cache directory %s: %w", s.dir, err)
	}
	out := make([]ports.StoredRecord, 0, len(entries))
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		sr := ports.StoredRecord{Filename: name}
		if info, err := ent.Info(); err == nil {
			sr.Size = info.Size()
		}
		b, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			sr.Err = err
			out = append(out, sr)
			continue
		}
		var rec cache.Record
		if err := json.Unmarshal(b, &rec); err != nil {
			sr.Err = err
			out = append(out, sr)
			continue
		}
		sr.Record = &rec
		out = append(out, sr)
	}
	return out, nil
}

// Count returns the number of record files on disk, zero on any I/O failure.
func (s *Store) Count(_ context.Context) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, ent := range entries {
		if !ent.IsDir() && strings.HasSuffix(ent.Name(), recordExt) {
			n++
		}
	}
	return n
}

// Clear deletes every record file. The first failure is returned, but the
// pass keeps going so one stuck file does not keep the rest of the directory
// populated.
func (s *Store) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("clear cache directory %s: %w", s.dir, err)
	}
	var firstErr error
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), recordExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, ent.Name())); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ ports.RecordStore = (*Store)(nil)
