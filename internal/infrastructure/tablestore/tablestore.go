// Package tablestore is the JSON-backed record store consumed alongside the
// cache: one file per table holding a JSON array of rows, queried through a
// typed operation tag instead of query-string matching. Callers hand in a
// ports.TableQuery and get encoded rows back; the store never ascribes
// meaning to row fields beyond the ones a filter names.
package tablestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/avatarctic/diskcache/internal/core/ports"
	"github.com/avatarctic/diskcache/internal/infrastructure/filestore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Store implements ports.TableStore over a directory of <table>.json files.
type Store struct {
	dir    string
	logger *logrus.Logger
	// One writer at a time; table files are whole-file rewrites.
	mu sync.Mutex
}

// New creates a table store rooted at dir. The directory is created lazily on
// first write.
func New(dir string, logger *logrus.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Execute routes the query by its operation tag.
func (s *Store) Execute(ctx context.Context, q ports.TableQuery) ([]json.RawMessage, error) {
	if q.Table == "" {
		return nil, fmt.Errorf("tablestore: query missing table name")
	}
	switch q.Op {
	case ports.OpSelect:
		return s.selectRows(q)
	case ports.OpInsert:
		return s.insertRow(q)
	case ports.OpUpdate:
		return s.updateRows(q)
	case ports.OpDelete:
		return s.deleteRows(q)
	default:
		return nil, fmt.Errorf("tablestore: unknown operation %q", q.Op)
	}
}

func (s *Store) path(table string) string {
	return filepath.Join(s.dir, filestore.NormalizeKey(table)+".json")
}

// loadTable reads a table file into its rows. A missing file is an empty
// table; a corrupt file is an error the caller surfaces rather than a reason
// to clobber data.
func (s *Store) loadTable(table string) ([]json.RawMessage, error) {
	b, err := os.ReadFile(s.path(table))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", table, err)
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(b, &rows); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"table": table}).WithError(err).Error("tablestore: corrupt table file")
		}
		return nil, fmt.Errorf("parse table %q: %w", table, err)
	}
	return rows, nil
}

func (s *Store) saveTable(table string, rows []json.RawMessage) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create tables directory %s: %w", s.dir, err)
	}
	if rows == nil {
		rows = []json.RawMessage{}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode table %q: %w", table, err)
	}
	target := s.path(table)
	tmp := target + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write table %q: %w", table, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace table %q: %w", table, err)
	}
	return nil
}

// matches applies the equality filter to one encoded row. Fields are
// extracted with gjson and compared by canonical string form, so a filter
// value of 42 matches a stored 42 regardless of numeric type. An empty filter
// matches every row.
func matches(row json.RawMessage, filter map[string]any) bool {
	for field, want := range filter {
		got := gjson.GetBytes(row, field)
		if !got.Exists() || got.String() != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func (s *Store) selectRows(q ports.TableQuery) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.loadTable(q.Table)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		if matches(row, q.Filter) {
			out = append(out, row)
		}
	}
	return out, nil
}

// insertRow appends the payload, assigning an "id" field when the row does
// not carry one.
func (s *Store) insertRow(q ports.TableQuery) ([]json.RawMessage, error) {
	if len(q.Row) == 0 {
		return nil, fmt.Errorf("tablestore: insert into %q missing row payload", q.Table)
	}
	var fields map[string]any
	if err := json.Unmarshal(q.Row, &fields); err != nil {
		return nil, fmt.Errorf("tablestore: insert payload for %q is not an object: %w", q.Table, err)
	}
	if _, ok := fields["id"]; !ok {
		fields["id"] = uuid.NewString()
	}
	stored, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode row for %q: %w", q.Table, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.loadTable(q.Table)
	if err != nil {
		return nil, err
	}
	rows = append(rows, stored)
	if err := s.saveTable(q.Table, rows); err != nil {
		return nil, err
	}
	return []json.RawMessage{stored}, nil
}

// updateRows merges the payload's fields into every matching row and returns
// the rows as stored after the merge.
func (s *Store) updateRows(q ports.TableQuery) ([]json.RawMessage, error) {
	var patch map[string]any
	if err := json.Unmarshal(q.Row, &patch); err != nil {
		return nil, fmt.Errorf("tablestore: update payload for %q is not an object: %w", q.Table, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.loadTable(q.Table)
	if err != nil {
		return nil, err
	}
	var touched []json.RawMessage
	for i, row := range rows {
		if !matches(row, q.Filter) {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(row, &fields); err != nil {
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{"table": q.Table}).WithError(err).Warn("tablestore: skipping unreadable row during update")
			}
			continue
		}
		for k, v := range patch {
			fields[k] = v
		}
		merged, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("encode row for %q: %w", q.Table, err)
		}
		rows[i] = merged
		touched = append(touched, merged)
	}
	if len(touched) == 0 {
		return []json.RawMessage{}, nil
	}
	if err := s.saveTable(q.Table, rows); err != nil {
		return nil, err
	}
	return touched, nil
}

// deleteRows removes every matching row and returns what was removed.
func (s *Store) deleteRows(q ports.TableQuery) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.loadTable(q.Table)
	if err != nil {
		return nil, err
	}
	kept := rows[:0]
	var removed []json.RawMessage
	for _, row := range rows {
		if matches(row, q.Filter) {
			removed = append(removed, row)
			continue
		}
		kept = append(kept, row)
	}
	if len(removed) == 0 {
		return []json.RawMessage{}, nil
	}
	if err := s.saveTable(q.Table, kept); err != nil {
		return nil, err
	}
	return removed, nil
}

var _ ports.TableStore = (*Store)(nil)
