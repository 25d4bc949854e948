package keypath

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// mergeLookahead bounds how many following segments the greedy merge may
// consume when recovering a key that contains literal dots. Keys spanning
// more than mergeLookahead+1 segments are not resolvable; this is a
// documented limitation of the algorithm, not a bug.
const mergeLookahead = 2

// bracketIndex matches bracket-style array indices like "[0]" so they can
// be normalized to dotted segments before splitting.
var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// Resolve follows a path expression into a decoded JSON value and returns
// the addressed sub-value.
//
// The expression uses dot notation with optional bracket indices:
// "a.b.0.c" and "a.b[0].c" are equivalent. An empty expression addresses
// the root value itself.
//
// The second return value reports whether the path resolved. It is false
// when any segment fails to match, which is distinct from resolving to a
// present JSON null: Resolve(root, "x") on {"x": null} returns (nil, true).
//
// Because real-world APIs emit keys containing literal dots (Alpha Vantage's
// "Global Quote" object uses keys like "09. change"), a plain
// split-and-index walk misresolves such paths. Resolve recovers them with a
// greedy merge: when no key matches the current segment, it rejoins the
// segment with up to two following segments and retries at each join length.
// An exact single-segment match always takes priority, so a key that happens
// to equal one segment is never shadowed by an accidental merge.
func Resolve(root any, expr string) (any, bool) {
	if expr == "" {
		return root, true
	}

	segs := split(expr)
	cur := root

	for i := 0; i < len(segs); {
		seg := segs[i]

		switch node := cur.(type) {
		case map[string]any:
			// exact key wins before any merge heuristic
			if v, ok := node[seg]; ok {
				cur = v
				i++
				continue
			}

			merged := seg
			consumed := 0
			for j := 1; j <= mergeLookahead && i+j < len(segs); j++ {
				merged += "." + segs[i+j]
				if v, ok := node[merged]; ok {
					cur = v
					consumed = j + 1
					break
				}
			}
			if consumed == 0 {
				return nil, false
			}
			i += consumed

		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
			i++

		default:
			// primitive or null with segments remaining
			return nil, false
		}
	}

	return cur, true
}

// split normalizes bracket indices to dotted segments and splits the
// expression on dots. A leading dot produced by a root-level bracket
// ("[0].name") is dropped.
func split(expr string) []string {
	normalized := bracketIndex.ReplaceAllString(expr, ".$1")
	normalized = strings.TrimPrefix(normalized, ".")
	return strings.Split(normalized, ".")
}

// TopKeys returns up to max top-level object keys of v, sorted, for use in
// diagnostics when resolution fails. Returns nil if v is not a JSON object.
func TopKeys(v any, max int) []string {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if max > 0 && len(keys) > max {
		keys = keys[:max]
	}
	return keys
}
