package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Cell renders a driver or protocol value as a result cell. Nil stays nil.
func Cell(v any) *string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return &val
	case []byte:
		s := string(val)
		return &s
	case json.Number:
		s := val.String()
		return &s
	case bool:
		s := strconv.FormatBool(val)
		return &s
	case int64:
		s := strconv.FormatInt(val, 10)
		return &s
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		return &s
	case time.Time:
		s := val.Format("2006-01-02 15:04:05.000")
		return &s
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			s := fmt.Sprint(val)
			return &s
		}
		s := string(b)
		return &s
	default:
		s := fmt.Sprint(val)
		return &s
	}
}
