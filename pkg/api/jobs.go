package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/txn2/query-gateway/pkg/auth"
	"github.com/txn2/query-gateway/pkg/yarn"
)

// jobListResponse wraps the jobs of a resource manager.
type jobListResponse struct {
	Jobs  []yarn.Job `json:"jobs"`
	Total int        `json:"total"`
}

// killResponse reports a kill request.
type killResponse struct {
	JobID  string `json:"jobId"`
	Result string `json:"result"`
}

// resourceManager resolves the datasource parameter to a resource manager URL.
func (h *Handler) resourceManager(w http.ResponseWriter, r *http.Request) (string, bool) {
	ds := r.URL.Query().Get("datasource")
	if ds == "" {
		writeError(w, http.StatusBadRequest, "datasource is required")
		return "", false
	}
	rm, ok := h.deps.ResourceManagers[ds]
	if !ok || rm == "" {
		writeError(w, http.StatusNotFound, "no resource manager for datasource "+ds)
		return "", false
	}
	return rm, true
}

// parseSince reads since_ms as a trailing window; absent means unbounded.
func parseSince(r *http.Request) (time.Duration, error) {
	v := r.URL.Query().Get("since_ms")
	if v == "" {
		return 0, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ms < 0 {
		return 0, errors.New("since_ms must be a non-negative integer")
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// listJobs handles GET /api/v1/jobs.
//
// @Summary      List cluster jobs
// @Description  Lists the applications known to the datasource's resource manager.
// @Tags         Jobs
// @Produce      json
// @Param        datasource  query  string   true   "Datasource name"
// @Param        since_ms    query  integer  false  "Only jobs started within this many milliseconds"
// @Success      200  {object}  jobListResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /jobs [get]
func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.resourceManager(w, r)
	if !ok {
		return
	}
	since, err := parseSince(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobs, err := h.deps.Jobs.ListJobs(r.Context(), rm, since)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, jobListResponse{Jobs: jobs, Total: len(jobs)})
}

// findJob handles GET /api/v1/jobs/find.
//
// @Summary      Find the job of a query
// @Description  Correlates a batch query id with its cluster job by the deterministic job name.
// @Tags         Jobs
// @Produce      json
// @Param        datasource  query  string   true   "Datasource name"
// @Param        query_id    query  string   true   "Gateway query id"
// @Param        user        query  string   false  "Submitting user (defaults to the caller)"
// @Param        since_ms    query  integer  false  "Only jobs started within this many milliseconds"
// @Success      200  {object}  yarn.Job
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /jobs/find [get]
func (h *Handler) findJob(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.resourceManager(w, r)
	if !ok {
		return
	}
	queryID := r.URL.Query().Get("query_id")
	if queryID == "" {
		writeError(w, http.StatusBadRequest, "query_id is required")
		return
	}
	since, err := parseSince(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.deps.Jobs.FindJob(r.Context(), rm, queryID, jobUser(r), since)
	if err != nil {
		writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// killJob handles POST /api/v1/jobs/kill.
//
// @Summary      Kill a job
// @Description  Kills a cluster job given its id, or the job correlated with a gateway query id.
// @Tags         Jobs
// @Produce      json
// @Param        datasource  query  string  true   "Datasource name"
// @Param        job_id      query  string  false  "Cluster application id"
// @Param        query_id    query  string  false  "Gateway query id"
// @Param        user        query  string  false  "Submitting user (defaults to the caller)"
// @Success      200  {object}  killResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /jobs/kill [post]
func (h *Handler) killJob(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.resourceManager(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	jobID := q.Get("job_id")
	if jobID == "" {
		queryID := q.Get("query_id")
		if queryID == "" {
			writeError(w, http.StatusBadRequest, "job_id or query_id is required")
			return
		}
		job, err := h.deps.Jobs.FindJob(r.Context(), rm, queryID, jobUser(r), 0)
		if err != nil {
			writeJobError(w, err)
			return
		}
		jobID = job.ID
	}

	result, err := h.deps.Jobs.KillJob(r.Context(), rm, jobID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, killResponse{JobID: jobID, Result: result})
}

func jobUser(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return auth.UserID(r.Context())
}

func writeJobError(w http.ResponseWriter, err error) {
	if errors.Is(err, yarn.ErrJobNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}
