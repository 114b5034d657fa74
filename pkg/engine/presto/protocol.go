package presto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Query states reported in statement stats.
const (
	stateFinished = "FINISHED"
	stateFailed   = "FAILED"
	stateCanceled = "CANCELED"
)

// maxErrorBody bounds how much of an unexpected response is echoed into errors.
const maxErrorBody = 4096

// statementResponse is one page of the statement protocol.
type statementResponse struct {
	ID         string         `json:"id"`
	InfoURI    string         `json:"infoUri"`
	NextURI    string         `json:"nextUri,omitempty"`
	Columns    []column       `json:"columns,omitempty"`
	Data       [][]any        `json:"data,omitempty"`
	Stats      statementStats `json:"stats"`
	Error      *queryError    `json:"error,omitempty"`
	Warnings   []warning      `json:"warnings,omitempty"`
	UpdateType string         `json:"updateType,omitempty"`
}

type column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type statementStats struct {
	State     string `json:"state"`
	Queued    bool   `json:"queued"`
	Scheduled bool   `json:"scheduled"`
}

type queryError struct {
	Message       string         `json:"message"`
	ErrorCode     int            `json:"errorCode"`
	ErrorName     string         `json:"errorName"`
	ErrorType     string         `json:"errorType"`
	ErrorLocation *errorLocation `json:"errorLocation,omitempty"`
}

type errorLocation struct {
	LineNumber   int `json:"lineNumber"`
	ColumnNumber int `json:"columnNumber"`
}

type warning struct {
	WarningCode struct {
		Code int    `json:"code"`
		Name string `json:"name"`
	} `json:"warningCode"`
	Message string `json:"message"`
}

// session carries the per-request protocol headers.
type session struct {
	user    string
	catalog string
	schema  string
}

func (a *Adapter) header(name string) string {
	return a.cfg.HeaderPrefix + name
}

func (a *Adapter) setHeaders(req *http.Request, s session) {
	req.Header.Set(a.header("User"), s.user)
	req.Header.Set(a.header("Source"), a.cfg.Source)
	if s.catalog != "" {
		req.Header.Set(a.header("Catalog"), s.catalog)
	}
	if s.schema != "" {
		req.Header.Set(a.header("Schema"), s.schema)
	}
	req.Header.Set("User-Agent", a.cfg.Source)
}

// submit posts the statement and returns the first page.
func (a *Adapter) submit(ctx context.Context, server, statement string, s session) (*statementResponse, error) {
	url := strings.TrimSuffix(server, "/") + "/v1/statement"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(statement))
	if err != nil {
		return nil, fmt.Errorf("creating statement request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	a.setHeaders(req, s)
	return a.do(req)
}

// advance fetches the page at nextURI.
func (a *Adapter) advance(ctx context.Context, nextURI string, s session) (*statementResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nextURI, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating poll request: %w", err)
	}
	a.setHeaders(req, s)
	return a.do(req)
}

// cancel asks the engine to abandon the query at nextURI. It uses its own
// context so it still goes out after the caller's context is done.
func (a *Adapter) cancel(nextURI string, s session) {
	ctx, done := context.WithTimeout(context.Background(), a.cfg.Timeout)
	defer done()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, nextURI, http.NoBody)
	if err != nil {
		return
	}
	a.setHeaders(req, s)
	resp, err := a.client.Do(req)
	if err != nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func (a *Adapter) do(req *http.Request) (*statementResponse, error) {
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s %s: unexpected status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var page statementResponse
	if err := dec.Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding statement response: %w", err)
	}
	return &page, nil
}
