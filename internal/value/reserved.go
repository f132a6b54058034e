package value

import (
	"sort"
	"strings"
)

// reservedKeys are the exact top-level result keys an incoming event must
// not shadow, per invariant R1.
var reservedKeys = map[string]bool{
	"total_score":     true,
	"triggered_rules": true,
	"triggered_count": true,
	"action":          true,
	"explanation":     true,
	"context":         true,
}

// reservedPrefixes are the namespace prefixes reserved for collaborator
// results (features, api, service, llm) and internal bookkeeping (sys_).
var reservedPrefixes = []string{"sys_", "features_", "api_", "service_", "llm_"}

// ValidateReservedNames walks event recursively — descending into both
// nested Objects and Arrays of Objects — and reports every field name
// that collides with a reserved top-level key or prefix. It returns the
// offending dotted paths in deterministic sorted order; an empty result
// means the event is clean. Array indices themselves cannot collide with
// a reserved name, but an Object nested inside an Array still can.
func ValidateReservedNames(event Value) []string {
	var bad []string
	walkReserved(event, "", &bad)
	sort.Strings(bad)
	return bad
}

func walkReserved(v Value, path string, bad *[]string) {
	switch val := v.(type) {
	case Object:
		for k, child := range val {
			full := k
			if path != "" {
				full = path + "." + k
			}
			if isReservedName(k) {
				*bad = append(*bad, full)
			}
			walkReserved(child, full, bad)
		}
	case Array:
		for _, elem := range val {
			walkReserved(elem, path, bad)
		}
	}
}

func isReservedName(key string) bool {
	if reservedKeys[key] {
		return true
	}
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
