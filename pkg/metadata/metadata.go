// Package metadata enriches query results with column and table annotations
// held by an external metadata service.
//
// Column annotations are merged by position: the Nth descriptor returned by
// the service is assumed to describe the Nth result row of a describe-like
// statement. Nothing checks that correspondence, so a service whose column
// order differs from the engine's yields misplaced notes.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4096
)

// Note is an annotation. An empty object or a null text carries no note.
type Note struct {
	Note *string `json:"note"`
}

// text returns a copy of the note text, nil when n or its text is absent.
func (n *Note) text() *string {
	if n == nil || n.Note == nil {
		return nil
	}
	s := *n.Note
	return &s
}

// ColumnDescriptor describes one column in service order.
type ColumnDescriptor struct {
	Note *Note `json:"note,omitempty"`
}

// Document is the annotation document of one table.
type Document struct {
	Columns []ColumnDescriptor `json:"columns"`
	Note    *Note              `json:"note,omitempty"`
}

// Fetcher retrieves annotation documents.
type Fetcher interface {
	Fetch(ctx context.Context, serviceURL, schema, table string) (*Document, error)
}

// Client fetches documents over HTTP.
type Client struct {
	client *http.Client
}

// NewClient creates a metadata service client. A zero timeout uses the default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClientWithHTTP(&http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a metadata service client using the given HTTP client.
func NewClientWithHTTP(client *http.Client) *Client {
	return &Client{client: client}
}

// Fetch retrieves {serviceURL}/{schema}/{table}.
func (c *Client) Fetch(ctx context.Context, serviceURL, schema, table string) (*Document, error) {
	u := strings.TrimSuffix(serviceURL, "/") + "/" + url.PathEscape(schema) + "/" + url.PathEscape(table)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching metadata for %s.%s: %w", schema, table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("fetching metadata for %s.%s: unexpected status %d: %s",
			schema, table, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding metadata for %s.%s: %w", schema, table, err)
	}
	return &doc, nil
}

// Merge appends the i-th descriptor's note to the i-th row and returns the
// table note. Rows past the last descriptor, or whose descriptor has no note,
// get a nil cell. The input rows are not modified.
func Merge(rows [][]*string, doc *Document) ([][]*string, *string) {
	out := make([][]*string, len(rows))
	for i, row := range rows {
		var cell *string
		if doc != nil && i < len(doc.Columns) {
			cell = doc.Columns[i].Note.text()
		}
		merged := make([]*string, len(row), len(row)+1)
		copy(merged, row)
		out[i] = append(merged, cell)
	}

	if doc == nil {
		return out, nil
	}
	return out, doc.Note.text()
}

// Enricher fetches a table's document and merges it into result rows.
type Enricher struct {
	fetcher Fetcher
}

// NewEnricher creates an enricher over fetcher.
func NewEnricher(fetcher Fetcher) *Enricher {
	return &Enricher{fetcher: fetcher}
}

// Enrich returns rows with one annotation cell appended per row and the table
// note. A fetch or decode failure fails the whole operation.
func (e *Enricher) Enrich(ctx context.Context, serviceURL, schema, table string, rows [][]*string) ([][]*string, *string, error) {
	doc, err := e.fetcher.Fetch(ctx, serviceURL, schema, table)
	if err != nil {
		return nil, nil, err
	}
	merged, note := Merge(rows, doc)
	return merged, note, nil
}

// Verify interface compliance.
var (
	_ Fetcher = (*Client)(nil)
	_ Fetcher = (*CachedFetcher)(nil)
)
