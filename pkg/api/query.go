package api

import (
	"net/http"

	"github.com/txn2/query-gateway/pkg/auth"
	"github.com/txn2/query-gateway/pkg/engine"
	"github.com/txn2/query-gateway/pkg/gateway"
)

// queryResponse documents the uniform query answer. Exactly one shape is
// present: headers and results, error, or nothing for a mutation.
type queryResponse struct {
	Headers         []string    `json:"headers,omitempty"`
	Results         [][]*string `json:"results,omitempty"`
	Warn            string      `json:"warn,omitempty"`
	Note            string      `json:"note,omitempty"`
	Error           string      `json:"error,omitempty"`
	ErrorLineNumber int         `json:"errorLineNumber,omitempty"`
}

// runQuery handles POST /api/v1/query/{engine}.
//
// @Summary      Run a query
// @Description  Dispatches the statement to the engine. Always answers 200; failures are reported in the error field.
// @Tags         Query
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        engine      path      string  true  "Engine (presto or hive)"
// @Param        datasource  query     string  true  "Datasource name"
// @Param        query       formData  string  true  "SQL statement"
// @Success      200  {object}  queryResponse
// @Router       /query/{engine} [post]
func (h *Handler) runQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	resp := h.deps.Gateway.Execute(r.Context(), gateway.Request{
		Engine:     engine.Kind(r.PathValue("engine")),
		Datasource: r.FormValue("datasource"),
		Query:      r.FormValue("query"),
		User:       auth.UserID(r.Context()),
	})
	writeJSON(w, http.StatusOK, resp)
}
