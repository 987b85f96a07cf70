package common

import (
	"strings"
)

// GetStringSliceFromArgs reads a list argument. Clients send either a JSON
// array of strings or a single comma-separated string; both are accepted.
// Blank entries are dropped and nil is returned when nothing remains.
func GetStringSliceFromArgs(args map[string]interface{}, key string) []string {
	var raw []string
	switch v := args[key].(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
