package repository

import "time"

// Wire-value readers. Firestore hands back time.Time for timestamps,
// int64 for integers, float64 for doubles and []interface{} for arrays;
// these helpers absorb that variety so entity decoders stay flat.

func docString(d map[string]any, key string) string {
	s, _ := d[key].(string)
	return s
}

func docBool(d map[string]any, key string) bool {
	b, _ := d[key].(bool)
	return b
}

func docInt(d map[string]any, key string) int {
	switch n := d[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func docFloat(d map[string]any, key string) float64 {
	switch n := d[key].(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// docTime normalizes a wire timestamp to time.Time. Unix-millisecond
// numbers are accepted for documents written by older clients.
func docTime(d map[string]any, key string) time.Time {
	switch t := d[key].(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case int64:
		return time.UnixMilli(t)
	case float64:
		return time.UnixMilli(int64(t))
	}
	return time.Time{}
}

func docTimePtr(d map[string]any, key string) *time.Time {
	t := docTime(d, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func docStrings(d map[string]any, key string) []string {
	switch s := d[key].(type) {
	case []string:
		out := make([]string, len(s))
		copy(out, s)
		return out
	case []any:
		out := make([]string, 0, len(s))
		for _, v := range s {
			if str, ok := v.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func docMap(d map[string]any, key string) map[string]any {
	m, _ := d[key].(map[string]any)
	return m
}
