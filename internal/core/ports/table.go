package ports

import (
	"context"
	"encoding/json"
)

// TableOp tags the operation a TableQuery performs. Requests are routed by
// this tag rather than by matching query text.
type TableOp string

const (
	OpSelect TableOp = "select"
	OpInsert TableOp = "insert"
	OpUpdate TableOp = "update"
	OpDelete TableOp = "delete"
)

// TableQuery is a typed request against the JSON-backed record store:
// an operation tag, a table name, an optional equality filter over top-level
// row fields, and (for insert/update) the row payload.
type TableQuery struct {
	Op     TableOp
	Table  string
	Filter map[string]any
	Row    json.RawMessage
}

// TableStore executes typed queries against JSON-array table files.
// Rows go in and come out as encoded JSON; the store never interprets fields
// beyond what the filter names.
type TableStore interface {
	// Execute runs the query and returns the affected rows: matches for
	// select, the stored row for insert, and the touched rows for
	// update/delete.
	Execute(ctx context.Context, q TableQuery) ([]json.RawMessage, error)
}
