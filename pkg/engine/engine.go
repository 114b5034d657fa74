// Package engine defines the query engine adapter abstraction shared by every
// supported engine, the registry that selects an adapter by engine kind, and the
// translation of engine failures into a uniform error shape.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a query engine.
type Kind string

const (
	// KindPresto is the interactive MPP engine.
	KindPresto Kind = "presto"

	// KindHive is the batch engine running as cluster jobs.
	KindHive Kind = "hive"
)

// DefaultJobPrefix prefixes batch job names when none is configured.
const DefaultJobPrefix = "gateway-hive"

// Status values recorded for an executed query.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

var (
	// ErrUnknownEngine is returned when no adapter is registered for an engine kind.
	ErrUnknownEngine = errors.New("unknown engine")

	// ErrUnknownDatasource is returned when an adapter has no connection settings
	// for the requested datasource.
	ErrUnknownDatasource = errors.New("unknown datasource")
)

// Query is a statement submitted to an engine.
type Query struct {
	Datasource string
	Text       string
	User       string
}

// Result is the uniform outcome of a successful statement.
//
// A non-empty UpdateType marks a DDL/DML statement; Columns and Rows are not
// meaningful in that case. Cells are nil for SQL NULL.
type Result struct {
	Columns    []string
	Rows       [][]*string
	UpdateType string
	Warning    string
}

// IsUpdate reports whether the statement produced no tabular result.
func (r *Result) IsUpdate() bool {
	return r.UpdateType != ""
}

// Adapter executes statements against one engine.
type Adapter interface {
	// Kind returns the engine kind this adapter serves.
	Kind() Kind

	// RunQuery executes the statement and blocks until the engine reports a
	// terminal state. The returned query id is set whenever the engine assigned
	// one, including when err is non-nil.
	RunQuery(ctx context.Context, q Query) (queryID string, result *Result, err error)
}

// Registry selects adapters by engine kind.
type Registry struct {
	adapters map[Kind]Adapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[Kind]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds an adapter, replacing any adapter of the same kind.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Kind()] = a
}

// Adapter returns the adapter for kind.
func (r *Registry) Adapter(kind Kind) (Adapter, error) {
	a, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, kind)
	}
	return a, nil
}

// Kinds returns the registered engine kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.adapters))
	for k := range r.adapters {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// JobName returns the cluster job name for a batch query. It is the only link
// between a query id and the resource manager's application.
func JobName(prefix, user, queryID string) string {
	prefix = strings.TrimSuffix(prefix, "-")
	if user == "" {
		return prefix + "-" + queryID
	}
	return prefix + "-" + user + "-" + queryID
}

// String returns a pointer to s, for building result cells.
func String(s string) *string {
	return &s
}

// TruncatedWarning is the warning attached to a result cut at maxRows.
func TruncatedWarning(maxRows int) string {
	return fmt.Sprintf("now fetch size is %d. This is not all.", maxRows)
}
