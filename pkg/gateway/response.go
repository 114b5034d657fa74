package gateway

import "encoding/json"

// Response is the uniform answer to a query request. It carries either the
// success shape (headers, results, warn, note), the mutation shape (nothing),
// or the error shape (error, errorLineNumber). It is never empty on failure.
type Response struct {
	Headers         []string
	Results         [][]*string
	Warn            *string
	Note            *string
	Error           *string
	ErrorLineNumber *int

	// QueryID is the engine-assigned id, empty when none was assigned.
	QueryID string
}

// Failed reports whether the response carries an error.
func (r *Response) Failed() bool {
	return r.Error != nil
}

// MarshalJSON emits only the keys present in the response.
func (r *Response) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 4)
	if r.Error != nil {
		out["error"] = *r.Error
		if r.ErrorLineNumber != nil {
			out["errorLineNumber"] = *r.ErrorLineNumber
		}
		return json.Marshal(out)
	}
	if r.Headers != nil {
		out["headers"] = r.Headers
		results := r.Results
		if results == nil {
			results = [][]*string{}
		}
		out["results"] = results
		if r.Warn != nil {
			out["warn"] = *r.Warn
		}
		if r.Note != nil {
			out["note"] = *r.Note
		}
	}
	return json.Marshal(out)
}

func errorResponse(queryID, msg string, line *int) *Response {
	return &Response{QueryID: queryID, Error: &msg, ErrorLineNumber: line}
}
