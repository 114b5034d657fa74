// Package mcptools exposes query dispatch and job correlation as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txn2/query-gateway/pkg/auth"
	"github.com/txn2/query-gateway/pkg/engine"
	"github.com/txn2/query-gateway/pkg/gateway"
	"github.com/txn2/query-gateway/pkg/yarn"
)

// Tool names.
const (
	ToolRunQuery = "run_query"
	ToolFindJob  = "find_job"
	ToolKillJob  = "kill_job"
)

// QueryExecutor runs a query and always answers with a response.
type QueryExecutor interface {
	Execute(ctx context.Context, req gateway.Request) *gateway.Response
}

// JobClient correlates and kills cluster jobs.
type JobClient interface {
	FindJob(ctx context.Context, rmURL, queryID, user string, since time.Duration) (*yarn.Job, error)
	KillJob(ctx context.Context, rmURL, jobID string) (string, error)
}

// Deps holds the toolkit's dependencies. Jobs may be nil when no
// datasource has a resource manager.
type Deps struct {
	Gateway          QueryExecutor
	Jobs             JobClient
	ResourceManagers map[string]string
}

// Toolkit registers the gateway tools on an MCP server.
type Toolkit struct {
	deps Deps
}

// New creates a toolkit.
func New(deps Deps) *Toolkit {
	return &Toolkit{deps: deps}
}

// Tools lists the names of the tools the toolkit registers.
func (t *Toolkit) Tools() []string {
	tools := []string{ToolRunQuery}
	if t.deps.Jobs != nil {
		tools = append(tools, ToolFindJob, ToolKillJob)
	}
	return tools
}

type runQueryInput struct {
	Engine     string `json:"engine" jsonschema:"query engine: presto or hive"`
	Datasource string `json:"datasource" jsonschema:"configured datasource name"`
	Query      string `json:"query" jsonschema:"SQL statement to run"`
	User       string `json:"user,omitempty" jsonschema:"user to run as when the caller is not authenticated"`
}

type findJobInput struct {
	Datasource string `json:"datasource" jsonschema:"configured datasource name"`
	QueryID    string `json:"query_id" jsonschema:"gateway query id of a hive query"`
	User       string `json:"user,omitempty" jsonschema:"user the query ran as"`
	SinceMS    int64  `json:"since_ms,omitempty" jsonschema:"only jobs started within this many milliseconds"`
}

type killJobInput struct {
	Datasource string `json:"datasource" jsonschema:"configured datasource name"`
	JobID      string `json:"job_id,omitempty" jsonschema:"cluster application id"`
	QueryID    string `json:"query_id,omitempty" jsonschema:"gateway query id; used when job_id is empty"`
	User       string `json:"user,omitempty" jsonschema:"user the query ran as"`
}

// RegisterTools adds the toolkit's tools to the server.
func (t *Toolkit) RegisterTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: ToolRunQuery,
		Description: "Run a SQL statement on a presto or hive datasource. Returns headers and results, " +
			"an empty object for statements without a result set, or an error with its line number.",
	}, t.handleRunQuery)

	if t.deps.Jobs == nil {
		return
	}

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolFindJob,
		Description: "Find the cluster job running a hive query by its gateway query id.",
	}, t.handleFindJob)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolKillJob,
		Description: "Kill a cluster job given its application id or the gateway query id of a hive query.",
	}, t.handleKillJob)
}

func (t *Toolkit) handleRunQuery(ctx context.Context, _ *mcp.CallToolRequest, in runQueryInput) (*mcp.CallToolResult, any, error) {
	resp := t.deps.Gateway.Execute(ctx, gateway.Request{
		Engine:     engine.Kind(in.Engine),
		Datasource: in.Datasource,
		Query:      in.Query,
		User:       runAs(ctx, in.User),
	})
	data, err := json.Marshal(resp)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		IsError: resp.Failed(),
	}, nil, nil
}

func (t *Toolkit) handleFindJob(ctx context.Context, _ *mcp.CallToolRequest, in findJobInput) (*mcp.CallToolResult, any, error) {
	rm, err := t.resourceManager(in.Datasource)
	if err != nil {
		return errorResult(err), nil, nil
	}
	if in.QueryID == "" {
		return errorResult(errors.New("query_id is required")), nil, nil
	}
	since := time.Duration(in.SinceMS) * time.Millisecond
	job, err := t.deps.Jobs.FindJob(ctx, rm, in.QueryID, callerOr(ctx, in.User), since)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(job)
}

func (t *Toolkit) handleKillJob(ctx context.Context, _ *mcp.CallToolRequest, in killJobInput) (*mcp.CallToolResult, any, error) {
	rm, err := t.resourceManager(in.Datasource)
	if err != nil {
		return errorResult(err), nil, nil
	}
	jobID := in.JobID
	if jobID == "" {
		if in.QueryID == "" {
			return errorResult(errors.New("job_id or query_id is required")), nil, nil
		}
		job, err := t.deps.Jobs.FindJob(ctx, rm, in.QueryID, callerOr(ctx, in.User), 0)
		if err != nil {
			return errorResult(err), nil, nil
		}
		jobID = job.ID
	}
	result, err := t.deps.Jobs.KillJob(ctx, rm, jobID)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(map[string]string{"jobId": jobID, "result": result})
}

func (t *Toolkit) resourceManager(datasource string) (string, error) {
	rm := t.deps.ResourceManagers[datasource]
	if rm == "" {
		return "", fmt.Errorf("no resource manager for datasource %q", datasource)
	}
	return rm, nil
}

// runAs prefers the authenticated caller over a user named in the arguments.
func runAs(ctx context.Context, user string) string {
	if caller := auth.UserID(ctx); caller != "" {
		return caller
	}
	return user
}

func callerOr(ctx context.Context, user string) string {
	if user != "" {
		return user
	}
	return auth.UserID(ctx)
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
		IsError: true,
	}
}
