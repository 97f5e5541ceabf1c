// Package pathmatch implements a segment trie that associates paths with a payload.
//
// Paths are slices of segments. Literal segments match exactly (or case-insensitively when
// configured), parameter segments match any single non-empty path component and catch-all
// segments match one or more trailing components. On lookup, literal edges are preferred over
// parameters and parameters over catch-alls; the walk backtracks when a preferred branch does
// not lead to a payload.
package pathmatch

import (
	"strings"
)

// Kind describes how a segment matches path components.
type Kind uint8

const (
	Literal  Kind = iota // /users
	Param                // /{id}
	CatchAll             // /{rest...}
)

// Segment of a registered path.
type Segment struct {
	Kind  Kind
	Value string // literal text, or the parameter name
}

// Params collects parameter values extracted during a lookup, in path order.
type Params struct {
	Keys   []string
	Values []string
}

// Get returns the value for key.
func (p *Params) Get(key string) (string, bool) {
	for i := len(p.Keys) - 1; i >= 0; i-- {
		if p.Keys[i] == key {
			return p.Values[i], true
		}
	}

	return "", false
}

// Reset empties the params while keeping the backing arrays.
func (p *Params) Reset() {
	p.Keys = p.Keys[:0]
	p.Values = p.Values[:0]
}

func (p *Params) push(key, val string) {
	p.Keys = append(p.Keys, key)
	p.Values = append(p.Values, val)
}

func (p *Params) truncate(n int) {
	p.Keys = p.Keys[:n]
	p.Values = p.Values[:n]
}

// Option configures a Tree.
type Option func(*options)

type options struct {
	caseInsensitive bool
}

// CaseInsensitive makes literal segments match regardless of ASCII case.
func CaseInsensitive() Option {
	return func(o *options) { o.caseInsensitive = true }
}

type node[T any] struct {
	literals map[string]*node[T]
	param    *node[T]
	catchAll *node[T]

	payload T
	keys    []string // parameter names of the registered path, in order
	leaf    bool
}

// Tree is a segment trie. It must be fully populated before it is read concurrently.
type Tree[T any] struct {
	root node[T]
	opts options
}

// New inits an empty tree.
func New[T any](opts ...Option) *Tree[T] {
	t := &Tree[T]{}
	for _, o := range opts {
		o(&t.opts)
	}

	return t
}

// Register associates payload with the path. Registering the same path twice replaces the
// payload. Parameter segments at the same depth share a node, the names reported by a lookup are
// those of the path that matched.
func (t *Tree[T]) Register(payload T, path []Segment) {
	var keys []string

	n := &t.root
	for _, seg := range path {
		switch seg.Kind {
		case Literal:
			if n.literals == nil {
				n.literals = make(map[string]*node[T])
			}

			key := t.literalKey(seg.Value)
			next, ok := n.literals[key]
			if !ok {
				next = &node[T]{}
				n.literals[key] = next
			}

			n = next
		case Param:
			if n.param == nil {
				n.param = &node[T]{}
			}

			keys = append(keys, seg.Value)
			n = n.param
		case CatchAll:
			if n.catchAll == nil {
				n.catchAll = &node[T]{}
			}

			keys = append(keys, seg.Value)
			n = n.catchAll
		}
	}

	n.payload, n.keys, n.leaf = payload, keys, true
}

// Lookup resolves the path components to a payload. Extracted parameters are appended to
// params, which may be nil when the caller is not interested in them.
func (t *Tree[T]) Lookup(path []string, params *Params) (payload T, ok bool) {
	if params == nil {
		params = &Params{}
	}

	start := len(params.Keys)

	n := t.find(&t.root, path, params)
	if n == nil {
		return payload, false
	}

	copy(params.Keys[start:], n.keys)

	return n.payload, true
}

func (t *Tree[T]) find(n *node[T], path []string, params *Params) *node[T] {
	if len(path) == 0 {
		if n.leaf {
			return n
		}

		return nil
	}

	comp, rest := path[0], path[1:]

	if next, ok := n.literals[t.literalKey(comp)]; ok {
		if found := t.find(next, rest, params); found != nil {
			return found
		}
	}

	if n.param != nil && comp != "" {
		mark := len(params.Keys)
		params.push("", comp)

		if found := t.find(n.param, rest, params); found != nil {
			return found
		}

		params.truncate(mark)
	}

	if n.catchAll != nil && n.catchAll.leaf {
		params.push("", strings.Join(path, "/"))
		return n.catchAll
	}

	return nil
}

func (t *Tree[T]) literalKey(s string) string {
	if t.opts.caseInsensitive {
		return strings.ToLower(s)
	}

	return s
}
