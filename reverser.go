package bserve

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Reverser keeps track of named patterns and allows building URLS.
type Reverser struct {
	pats map[string][]Segment
}

// NewReverser inits the reverser.
func NewReverser() *Reverser {
	return &Reverser{make(map[string][]Segment)}
}

// Reverse reverses the named pattern into a url. Values are substituted for the parameters in
// order, a catch-all value may contain slashes.
func (r Reverser) Reverse(name string, vals ...string) (string, error) {
	pat, ok := r.pats[name]
	if !ok {
		return "", errors.Newf("no pattern named: %q, got: %v", name, lo.Keys(r.pats))
	}

	res, err := build(pat, vals...)
	if err != nil {
		return "", errors.Wrap(err, "failed to build")
	}

	return res, nil
}

// Named is a convenience method that panics if naming the pattern fails.
func (r Reverser) Named(name, str string) string {
	str, err := r.NamedPattern(name, str)
	if err != nil {
		panic("bserve: " + err.Error())
	}

	return str
}

// NamedPattern will parse 's' as a path pattern while returning it as well.
func (r Reverser) NamedPattern(name, str string) (string, error) {
	if _, exists := r.pats[name]; exists {
		return str, errors.Newf("pattern with name %q already exists", name)
	}

	_, path, err := ParsePattern(str)
	if err != nil {
		return str, errors.Wrap(err, "failed to parse pattern")
	}

	r.pats[name] = path

	return str, nil
}

func build(pat []Segment, vals ...string) (string, error) {
	want := lo.CountBy(pat, func(s Segment) bool { return s.Kind != SegmentLiteral })
	if want != len(vals) {
		return "", errors.Newf("got %d values, pattern has %d parameters", len(vals), want)
	}

	if len(pat) == 0 {
		return "/", nil
	}

	var b strings.Builder
	for _, seg := range pat {
		b.WriteByte('/')

		switch seg.Kind {
		case SegmentLiteral:
			b.WriteString(seg.Value)
		case SegmentParam:
			b.WriteString(url.PathEscape(vals[0]))
			vals = vals[1:]
		case SegmentCatchAll:
			parts := strings.Split(vals[0], "/")
			b.WriteString(strings.Join(lo.Map(parts, func(p string, _ int) string {
				return url.PathEscape(p)
			}), "/"))
			vals = vals[1:]
		}
	}

	return b.String(), nil
}
