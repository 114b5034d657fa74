// Package gateway dispatches query requests to engine adapters and turns every
// outcome into the uniform response shape, recording each executed query.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/txn2/query-gateway/pkg/engine"
	"github.com/txn2/query-gateway/pkg/sqlref"
	"github.com/txn2/query-gateway/pkg/store"
)

// recordTimeout bounds the query record write, which runs detached from the
// request so a disconnected caller still leaves an audit row.
const recordTimeout = 10 * time.Second

// Adapters selects an engine adapter by kind.
type Adapters interface {
	Adapter(kind engine.Kind) (engine.Adapter, error)
}

// Enricher merges metadata annotations into result rows.
type Enricher interface {
	Enrich(ctx context.Context, serviceURL, schema, table string, rows [][]*string) ([][]*string, *string, error)
}

// Datasource holds the per-datasource settings the gateway needs.
type Datasource struct {
	MetadataServiceURL string

	// DefaultSchema resolves unqualified table names for enrichment.
	DefaultSchema string
}

// Config holds gateway configuration.
type Config struct {
	Datasources map[string]Datasource
}

// Request is one query submission.
type Request struct {
	Engine     engine.Kind
	Datasource string
	Query      string
	User       string
}

// Gateway is the single entry point for query execution.
type Gateway struct {
	cfg      Config
	adapters Adapters
	records  store.QueryStore
	enricher Enricher
	now      func() time.Time
}

// New creates a gateway. enricher may be nil to disable enrichment.
func New(cfg Config, adapters Adapters, records store.QueryStore, enricher Enricher) *Gateway {
	return &Gateway{
		cfg:      cfg,
		adapters: adapters,
		records:  records,
		enricher: enricher,
		now:      time.Now,
	}
}

// Execute runs the request and always returns a response. Failures are
// logged and reported in the response's error field.
func (g *Gateway) Execute(ctx context.Context, req Request) *Response {
	log := slog.With(
		"engine", string(req.Engine),
		"datasource", req.Datasource,
		"user", req.User,
	)

	if strings.TrimSpace(req.Query) == "" {
		return errorResponse("", "query is required", nil)
	}

	adapter, err := g.adapters.Adapter(req.Engine)
	if err != nil {
		log.Error("selecting engine adapter", "error", err)
		return errorResponse("", err.Error(), nil)
	}

	start := g.now()
	queryID, result, runErr := g.run(ctx, adapter, req)
	elapsed := g.now().Sub(start)
	log = log.With("query_id", queryID)

	rec := store.QueryRecord{
		QueryKey: store.QueryKey{
			Datasource: req.Datasource,
			Engine:     string(req.Engine),
			QueryID:    queryID,
		},
		FetchResultTime: store.FormatTime(start),
		QueryText:       req.Query,
		User:            req.User,
		ElapsedMillis:   elapsed.Milliseconds(),
	}

	if runErr != nil {
		failure := engine.Translate(runErr)
		log.Error("query failed", "error", runErr, "elapsed_ms", rec.ElapsedMillis)
		rec.Status = engine.StatusFailed
		if err := g.record(ctx, rec); err != nil {
			log.Error("recording failed query", "error", err)
		}
		return errorResponse(queryID, failure.Message, failure.SourceLine)
	}

	rec.Status = engine.StatusSucceeded
	if !result.IsUpdate() {
		rec.LineCount = int64(len(result.Rows))
		rec.ResultFileSize = resultSize(result)
	}
	if err := g.record(ctx, rec); err != nil {
		log.Error("recording query", "error", err)
		return errorResponse(queryID, err.Error(), nil)
	}

	if result.IsUpdate() {
		log.Info("statement executed", "update_type", result.UpdateType, "elapsed_ms", rec.ElapsedMillis)
		return &Response{QueryID: queryID}
	}

	resp := &Response{
		QueryID: queryID,
		Headers: result.Columns,
		Results: result.Rows,
	}
	if resp.Headers == nil {
		resp.Headers = []string{}
	}
	if result.Warning != "" {
		warn := result.Warning
		resp.Warn = &warn
	}

	if err := g.enrich(ctx, req, resp); err != nil {
		log.Error("enriching result", "error", err)
		return errorResponse(queryID, err.Error(), nil)
	}

	log.Info("query succeeded", "elapsed_ms", rec.ElapsedMillis, "rows", rec.LineCount)
	return resp
}

// run invokes the adapter and reports a panic as an error.
func (*Gateway) run(ctx context.Context, adapter engine.Adapter, req Request) (queryID string, result *engine.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine adapter panicked: %v", r)
		}
	}()

	queryID, result, err = adapter.RunQuery(ctx, engine.Query{
		Datasource: req.Datasource,
		Text:       req.Query,
		User:       req.User,
	})
	if err == nil && result == nil {
		err = errors.New("engine returned no result")
	}
	return queryID, result, err
}

// record writes the query record. Without an engine-assigned id there is no
// key to write under, so nothing is stored.
func (g *Gateway) record(ctx context.Context, rec store.QueryRecord) error {
	if rec.QueryID == "" {
		slog.Warn("query has no engine id, not recorded",
			"engine", rec.Engine, "datasource", rec.Datasource, "status", rec.Status)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := g.records.InsertQuery(ctx, rec); err != nil {
		return fmt.Errorf("recording query %s: %w", rec.QueryID, err)
	}
	return nil
}

// enrich appends metadata annotations when the statement lists the columns
// of a resolvable table and the datasource has a metadata service.
func (g *Gateway) enrich(ctx context.Context, req Request, resp *Response) error {
	if g.enricher == nil {
		return nil
	}
	ds := g.cfg.Datasources[req.Datasource]
	if ds.MetadataServiceURL == "" {
		return nil
	}
	ref, ok := sqlref.Resolve(req.Query)
	if !ok {
		return nil
	}
	schema := ref.Schema
	if schema == "" {
		schema = ds.DefaultSchema
	}
	if schema == "" || ref.Table == "" {
		return nil
	}

	rows, note, err := g.enricher.Enrich(ctx, ds.MetadataServiceURL, schema, ref.Table, resp.Results)
	if err != nil {
		return fmt.Errorf("enriching %s.%s: %w", schema, ref.Table, err)
	}
	resp.Results = rows
	resp.Note = note
	return nil
}

// resultSize estimates the size of the result serialized as TSV with a
// header line. NULL cells count as empty.
func resultSize(r *engine.Result) int64 {
	var size int64
	line := func(n int, cell func(int) int) {
		for i := 0; i < n; i++ {
			size += int64(cell(i))
		}
		if n > 1 {
			size += int64(n - 1)
		}
		size++
	}
	line(len(r.Columns), func(i int) int { return len(r.Columns[i]) })
	for _, row := range r.Rows {
		line(len(row), func(i int) int {
			if row[i] == nil {
				return 0
			}
			return len(*row[i])
		})
	}
	return size
}
