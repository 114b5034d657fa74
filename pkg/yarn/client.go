// Package yarn correlates batch queries with the resource manager applications
// that execute them. The only link between the two is the job name the batch
// adapter assigns, see engine.JobName.
package yarn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/txn2/query-gateway/pkg/engine"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4096
	stateKilled    = "KILLED"
)

// ErrJobNotFound is returned when no application carries the expected job name.
var ErrJobNotFound = errors.New("job not found")

// Job is an application as reported by the resource manager.
type Job struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	User            string  `json:"user"`
	Queue           string  `json:"queue,omitempty"`
	State           string  `json:"state"`
	FinalStatus     string  `json:"finalStatus"`
	Progress        float64 `json:"progress"`
	ApplicationType string  `json:"applicationType,omitempty"`
	StartedTime     int64   `json:"startedTime"`
	FinishedTime    int64   `json:"finishedTime"`
	ElapsedTime     int64   `json:"elapsedTime"`
	TrackingURL     string  `json:"trackingUrl"`
}

// appsResponse is the body of GET /ws/v1/cluster/apps. "apps" is null when the
// cluster has no applications.
type appsResponse struct {
	Apps *struct {
		App []Job `json:"app"`
	} `json:"apps"`
}

// Config holds resource manager client configuration.
type Config struct {
	// Timeout bounds each request to the resource manager.
	Timeout time.Duration

	// JobPrefix must match the batch adapter's job prefix.
	JobPrefix string
}

// Client talks to resource manager REST APIs. The resource manager URL is
// passed per call since each datasource has its own cluster.
type Client struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

// New creates a resource manager client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return NewWithClient(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewWithClient creates a resource manager client using the given HTTP client.
func NewWithClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client, now: time.Now}
}

// ListJobs returns the applications known to the resource manager. A positive
// since restricts the list to applications started within that trailing window.
func (c *Client) ListJobs(ctx context.Context, rmURL string, since time.Duration) ([]Job, error) {
	u := strings.TrimSuffix(rmURL, "/") + "/ws/v1/cluster/apps"
	if since > 0 {
		begin := c.now().Add(-since).UnixMilli()
		u += "?" + url.Values{"startedTimeBegin": {strconv.FormatInt(begin, 10)}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("listing jobs", resp)
	}

	var body appsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding job list: %w", err)
	}
	if body.Apps == nil {
		return []Job{}, nil
	}
	return body.Apps.App, nil
}

// FindJob returns the first application named after queryID and user.
func (c *Client) FindJob(ctx context.Context, rmURL, queryID, user string, since time.Duration) (*Job, error) {
	name := engine.JobName(c.jobPrefix(), user, queryID)
	jobs, err := c.ListJobs(ctx, rmURL, since)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].Name == name {
			return &jobs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
}

// KillJob asks the resource manager to move the application to KILLED and
// returns its raw response. It does not wait for the application to stop.
func (c *Client) KillJob(ctx context.Context, rmURL, jobID string) (string, error) {
	if jobID == "" {
		return "", errors.New("job id is required")
	}
	u := strings.TrimSuffix(rmURL, "/") + "/ws/v1/cluster/apps/" + url.PathEscape(jobID) + "/state"

	payload, err := json.Marshal(map[string]string{"state": stateKilled})
	if err != nil {
		return "", fmt.Errorf("encoding kill request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating kill request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("killing job %s: %w", jobID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", statusError("killing job "+jobID, resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading kill response: %w", err)
	}
	return string(body), nil
}

func (c *Client) jobPrefix() string {
	if c.cfg.JobPrefix == "" {
		return engine.DefaultJobPrefix
	}
	return c.cfg.JobPrefix
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
