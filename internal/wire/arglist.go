package wire

import "strings"

type argPair struct {
	key   string
	value ArgValue
}

// ArgList is an insertion-ordered, key-deduplicating mapping of argument
// name to ArgValue. A second Set under the same key overwrites the existing
// pair in place — it never appends a duplicate — because canonical queries
// must be reproducible for HMAC signing.
//
// A pair whose key is the empty string is a path segment, not a query
// parameter: it extends the endpoint path with "/<value>" in the order of
// appearance. ArgList keeps path-segment
// pairs and query pairs in the same ordered sequence; callers split them out
// when building the final request via BuildQuery/PathSegments.
type ArgList struct {
	pairs []argPair
	index map[string]int // key -> index into pairs, empty-string key excluded
}

// NewArgList creates an empty argument list.
func NewArgList() *ArgList {
	return &ArgList{index: make(map[string]int)}
}

// Set inserts or overwrites the argument named key. Path-segment pairs
// (key == "") always append, since each occurrence is a distinct segment.
func (a *ArgList) Set(key string, v ArgValue) *ArgList {
	if key == "" {
		a.pairs = append(a.pairs, argPair{key: key, value: v})
		return a
	}
	if i, ok := a.index[key]; ok {
		a.pairs[i].value = v
		return a
	}
	a.index[key] = len(a.pairs)
	a.pairs = append(a.pairs, argPair{key: key, value: v})
	return a
}

// Has reports whether a non-path-segment key is present.
func (a *ArgList) Has(key string) bool {
	_, ok := a.index[key]
	return ok
}

// Len returns the number of pairs, including path segments.
func (a *ArgList) Len() int { return len(a.pairs) }

// BuildQuery emits the canonical query string "k1=v1&k2=v2&…" in insertion
// order, skipping path-segment pairs and empty-string-valued pairs (both
// omitted entirely).
func (a *ArgList) BuildQuery() string {
	var sb strings.Builder
	first := true
	for _, p := range a.pairs {
		if p.key == "" || p.value.empty() {
			continue
		}
		if !first {
			sb.WriteByte('&')
		}
		first = false
		sb.WriteString(p.key)
		sb.WriteByte('=')
		sb.WriteString(p.value.encode())
	}
	return sb.String()
}

// PathSegments returns the ordered list of path-segment values (pairs whose
// key was "" when Set), to be appended to the endpoint path as "/<value>".
func (a *ArgList) PathSegments() []string {
	var segs []string
	for _, p := range a.pairs {
		if p.key == "" && !p.value.empty() {
			segs = append(segs, p.value.encode())
		}
	}
	return segs
}
