package db

import (
	"strconv"
	"time"
)

// Document is a single vector record: id, embedding and scalar fields.
// Field values are string, int, int64, float64 or time.Time.
type Document struct {
	ID     string
	Vector []float32
	Fields map[string]any
}

// FormatValue renders a field value the way string-typed backends store it.
// Timestamps become unix milliseconds so they stay range-filterable.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return strconv.FormatInt(x.UnixMilli(), 10)
	default:
		return ""
	}
}
