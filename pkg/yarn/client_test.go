package yarn

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrefix  = "gateway-hive"
	testQueryID = "q123"
	testUser    = "alice"
	testJobID   = "application_1700000000000_0042"
)

type recorded struct {
	method      string
	path        string
	query       string
	contentType string
	body        string
}

// resourceManager serves a fixed app list and records every request.
type resourceManager struct {
	srv      *httptest.Server
	mu       sync.Mutex
	requests []recorded
}

func newResourceManager(t *testing.T, apps string, killStatus int, killBody string) *resourceManager {
	t.Helper()
	rm := &resourceManager{}
	rm.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rm.mu.Lock()
		rm.requests = append(rm.requests, recorded{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			body:        string(b),
		})
		rm.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/ws/v1/cluster/apps":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(apps))
		case r.Method == http.MethodPut && r.URL.Path == "/ws/v1/cluster/apps/"+testJobID+"/state":
			w.WriteHeader(killStatus)
			_, _ = w.Write([]byte(killBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(rm.srv.Close)
	return rm
}

func (rm *resourceManager) recorded() []recorded {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return append([]recorded(nil), rm.requests...)
}

func appsJSON(t *testing.T, jobs ...Job) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"apps": map[string]any{"app": jobs}})
	require.NoError(t, err)
	return string(b)
}

func newTestClient(rm *resourceManager) *Client {
	return NewWithClient(Config{JobPrefix: testPrefix}, rm.srv.Client())
}

func TestListJobs(t *testing.T) {
	jobs := []Job{
		{ID: "application_1", Name: "gateway-hive-bob-q1", User: "bob", State: "RUNNING", TrackingURL: "http://rm/proxy/1"},
		{ID: "application_2", Name: "other", User: "carol", State: "FINISHED", FinalStatus: "SUCCEEDED", StartedTime: 10, FinishedTime: 20},
	}

	t.Run("unfiltered", func(t *testing.T) {
		rm := newResourceManager(t, appsJSON(t, jobs...), http.StatusOK, "")
		got, err := newTestClient(rm).ListJobs(context.Background(), rm.srv.URL, 0)
		require.NoError(t, err)
		assert.Equal(t, jobs, got)

		reqs := rm.recorded()
		require.Len(t, reqs, 1)
		assert.Empty(t, reqs[0].query)
	})

	t.Run("trailing window", func(t *testing.T) {
		rm := newResourceManager(t, appsJSON(t, jobs...), http.StatusOK, "")
		c := newTestClient(rm)
		now := time.UnixMilli(1_700_000_600_000)
		c.now = func() time.Time { return now }

		_, err := c.ListJobs(context.Background(), rm.srv.URL+"/", 10*time.Minute)
		require.NoError(t, err)

		reqs := rm.recorded()
		require.Len(t, reqs, 1)
		assert.Equal(t, "/ws/v1/cluster/apps", reqs[0].path)
		assert.Equal(t, "startedTimeBegin="+strconv.FormatInt(1_700_000_000_000, 10), reqs[0].query)
	})

	t.Run("null apps is an empty list", func(t *testing.T) {
		rm := newResourceManager(t, `{"apps":null}`, http.StatusOK, "")
		got, err := newTestClient(rm).ListJobs(context.Background(), rm.srv.URL, 0)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("decode failure is fatal", func(t *testing.T) {
		rm := newResourceManager(t, `<html>`, http.StatusOK, "")
		_, err := newTestClient(rm).ListJobs(context.Background(), rm.srv.URL, 0)
		assert.ErrorContains(t, err, "decoding job list")
	})

	t.Run("transport failure is fatal", func(t *testing.T) {
		rm := newResourceManager(t, "", http.StatusOK, "")
		url := rm.srv.URL
		rm.srv.Close()
		_, err := newTestClient(rm).ListJobs(context.Background(), url, 0)
		assert.ErrorContains(t, err, "listing jobs")
	})
}

func TestFindJob(t *testing.T) {
	target := Job{ID: testJobID, Name: "gateway-hive-alice-q123", User: testUser, State: "RUNNING"}
	decoys := []Job{
		{ID: "application_a", Name: "gateway-hive-q123", User: testUser},
		{ID: "application_b", Name: "gateway-hive-alice-q1234", User: testUser},
		{ID: "application_c", Name: "gateway-hive-bob-q123", User: "bob"},
	}

	orders := map[string][]Job{
		"first":  {target, decoys[0], decoys[1], decoys[2]},
		"middle": {decoys[0], target, decoys[1], decoys[2]},
		"last":   {decoys[0], decoys[1], decoys[2], target},
	}
	for name, jobs := range orders {
		t.Run("target "+name, func(t *testing.T) {
			rm := newResourceManager(t, appsJSON(t, jobs...), http.StatusOK, "")
			got, err := newTestClient(rm).FindJob(context.Background(), rm.srv.URL, testQueryID, testUser, 0)
			require.NoError(t, err)
			assert.Equal(t, target, *got)
		})
	}

	t.Run("without user", func(t *testing.T) {
		rm := newResourceManager(t, appsJSON(t, append(decoys, target)...), http.StatusOK, "")
		got, err := newTestClient(rm).FindJob(context.Background(), rm.srv.URL, testQueryID, "", 0)
		require.NoError(t, err)
		assert.Equal(t, "application_a", got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		rm := newResourceManager(t, appsJSON(t, decoys[1:]...), http.StatusOK, "")
		_, err := newTestClient(rm).FindJob(context.Background(), rm.srv.URL, testQueryID, testUser, 0)
		assert.ErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("empty cluster", func(t *testing.T) {
		rm := newResourceManager(t, `{"apps":null}`, http.StatusOK, "")
		_, err := newTestClient(rm).FindJob(context.Background(), rm.srv.URL, testQueryID, testUser, 0)
		assert.ErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("list failure propagates", func(t *testing.T) {
		rm := newResourceManager(t, `{`, http.StatusOK, "")
		_, err := newTestClient(rm).FindJob(context.Background(), rm.srv.URL, testQueryID, testUser, 0)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrJobNotFound)
	})
}

func TestKillJob(t *testing.T) {
	t.Run("single state transition request", func(t *testing.T) {
		rm := newResourceManager(t, "", http.StatusAccepted, `{"state":"RUNNING"}`)
		body, err := newTestClient(rm).KillJob(context.Background(), rm.srv.URL, testJobID)
		require.NoError(t, err)
		assert.Equal(t, `{"state":"RUNNING"}`, body)

		reqs := rm.recorded()
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodPut, reqs[0].method)
		assert.Equal(t, "/ws/v1/cluster/apps/"+testJobID+"/state", reqs[0].path)
		assert.Equal(t, "application/json", reqs[0].contentType)
		assert.JSONEq(t, `{"state":"KILLED"}`, reqs[0].body)
	})

	t.Run("rejected", func(t *testing.T) {
		rm := newResourceManager(t, "", http.StatusForbidden, "not the owner")
		_, err := newTestClient(rm).KillJob(context.Background(), rm.srv.URL, testJobID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
		assert.Contains(t, err.Error(), "not the owner")
		assert.Len(t, rm.recorded(), 1)
	})

	t.Run("empty job id", func(t *testing.T) {
		rm := newResourceManager(t, "", http.StatusOK, "")
		_, err := newTestClient(rm).KillJob(context.Background(), rm.srv.URL, "")
		require.Error(t, err)
		assert.Empty(t, rm.recorded())
	})
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, defaultTimeout, c.cfg.Timeout)
	assert.Equal(t, "gateway-hive", c.jobPrefix())
}
