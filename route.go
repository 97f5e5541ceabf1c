package bserve

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/advdv/bserve/internal/pathmatch"
	"github.com/cockroachdb/errors"
)

// Segment of a route path.
type Segment = pathmatch.Segment

// SegmentKind tells literal, parameter and catch-all segments apart.
type SegmentKind = pathmatch.Kind

const (
	SegmentLiteral  = pathmatch.Literal
	SegmentParam    = pathmatch.Param
	SegmentCatchAll = pathmatch.CatchAll
)

// AnyMethods are the methods a route declared without a method is registered for.
var AnyMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodOptions,
}

// Route associates a method and path with a handler.
type Route struct {
	Method  string
	Path    []Segment
	Pattern string
	Name    string
	Handler Handler

	// Input and Output optionally describe the types the handler decodes and encodes. They
	// are informational only.
	Input, Output reflect.Type
}

// IsLiteral reports whether every segment of the route's path is literal.
func (rt *Route) IsLiteral() bool {
	for _, seg := range rt.Path {
		if seg.Kind != SegmentLiteral {
			return false
		}
	}

	return true
}

// PathString renders the path back into pattern syntax.
func (rt *Route) PathString() string {
	if len(rt.Path) == 0 {
		return "/"
	}

	var b strings.Builder
	for _, seg := range rt.Path {
		b.WriteByte('/')

		switch seg.Kind {
		case SegmentParam:
			b.WriteString("{" + seg.Value + "}")
		case SegmentCatchAll:
			b.WriteString("{" + seg.Value + "...}")
		default:
			b.WriteString(seg.Value)
		}
	}

	return b.String()
}

// normalized returns a copy of the route without empty literal segments.
func (rt Route) normalized() Route {
	path := make([]Segment, 0, len(rt.Path))
	for _, seg := range rt.Path {
		if seg.Kind == SegmentLiteral && seg.Value == "" {
			continue
		}

		path = append(path, seg)
	}

	rt.Path = path
	rt.Method = strings.ToUpper(rt.Method)

	return rt
}

// ParsePattern parses patterns of the form "[METHOD ]/path/{param}/{rest...}". An asterisk
// segment is an anonymous catch-all and a trailing "{$}" is accepted and ignored. The method is
// empty when the pattern does not specify one.
func ParsePattern(pattern string) (method string, path []Segment, err error) {
	if pattern == "" {
		return "", nil, errors.New("empty pattern")
	}

	str := pattern
	if idx := strings.IndexAny(str, " \t"); idx >= 0 {
		method, str = str[:idx], strings.TrimLeft(str[idx+1:], " \t")
	}

	if !strings.HasPrefix(str, "/") {
		return "", nil, errors.Newf("pattern %q: path must begin with '/'", pattern)
	}

	comps := strings.Split(str[1:], "/")
	seen := map[string]bool{}

	for i, comp := range comps {
		last := i == len(comps)-1

		switch {
		case comp == "":
		case comp == "{$}":
			if !last {
				return "", nil, errors.Newf("pattern %q: {$} must be the last segment", pattern)
			}
		case comp == "*":
			if !last {
				return "", nil, errors.Newf("pattern %q: catch-all must be the last segment", pattern)
			}

			path = append(path, Segment{Kind: SegmentCatchAll, Value: "*"})
		case strings.HasPrefix(comp, "{") && strings.HasSuffix(comp, "}"):
			name, catchAll := strings.CutSuffix(comp[1:len(comp)-1], "...")
			if name == "" {
				return "", nil, errors.Newf("pattern %q: empty parameter name", pattern)
			}

			if seen[name] {
				return "", nil, errors.Newf("pattern %q: duplicate parameter %q", pattern, name)
			}

			seen[name] = true

			if catchAll {
				if !last {
					return "", nil, errors.Newf("pattern %q: catch-all must be the last segment", pattern)
				}

				path = append(path, Segment{Kind: SegmentCatchAll, Value: name})
				continue
			}

			path = append(path, Segment{Kind: SegmentParam, Value: name})
		case strings.ContainsAny(comp, "{}"):
			return "", nil, errors.Newf("pattern %q: bad segment %q", pattern, comp)
		default:
			path = append(path, Segment{Kind: SegmentLiteral, Value: comp})
		}
	}

	return method, path, nil
}

// MustParsePattern is like [ParsePattern] but panics on error.
func MustParsePattern(pattern string) (method string, path []Segment) {
	method, path, err := ParsePattern(pattern)
	if err != nil {
		panic("bserve: " + err.Error())
	}

	return method, path
}
