package assembly

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

// Metadata decoding is deliberately forgiving. Some backends store every
// metadata value as a string, so a logically boolean field may arrive as
// true, "true", "yes", or "1", and a list as either []string, []any, or a
// comma-separated string. Missing or malformed fields decode to zero
// values; enhancers never fail on bad metadata.

func metaString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func metaBool(m map[string]any, key string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return false
	}
}

func metaStrings(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}

	var parts []string
	switch t := v.(type) {
	case []string:
		parts = t
	case []any:
		for _, e := range t {
			parts = append(parts, fmt.Sprintf("%v", e))
		}
	case string:
		parts = strings.Split(t, ",")
	default:
		parts = []string{fmt.Sprintf("%v", t)}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// itemText returns the best human-readable description of an item: the
// named metadata field when present, falling back to content.
func itemText(item memorystore.Item, preferredField string) string {
	if s := metaString(item.Metadata, preferredField); s != "" {
		return s
	}
	return strings.TrimSpace(item.Content)
}

// dedupeAppend appends s to list unless it is empty or already present.
func dedupeAppend(list []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return list
	}
	for _, existing := range list {
		if strings.EqualFold(existing, s) {
			return list
		}
	}
	return append(list, s)
}
