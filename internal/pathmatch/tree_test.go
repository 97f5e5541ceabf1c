package pathmatch_test

import (
	"testing"

	"github.com/advdv/bserve/internal/pathmatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(s string) pathmatch.Segment   { return pathmatch.Segment{Kind: pathmatch.Literal, Value: s} }
func param(s string) pathmatch.Segment { return pathmatch.Segment{Kind: pathmatch.Param, Value: s} }
func catch(s string) pathmatch.Segment { return pathmatch.Segment{Kind: pathmatch.CatchAll, Value: s} }

func TestLookup(t *testing.T) {
	tree := pathmatch.New[string]()
	tree.Register("root", []pathmatch.Segment{lit("GET")})
	tree.Register("users", []pathmatch.Segment{lit("GET"), lit("users")})
	tree.Register("user", []pathmatch.Segment{lit("GET"), lit("users"), param("id")})
	tree.Register("me", []pathmatch.Segment{lit("GET"), lit("users"), lit("me")})
	tree.Register("files", []pathmatch.Segment{lit("GET"), lit("files"), catch("rest")})
	tree.Register("post-user", []pathmatch.Segment{lit("POST"), lit("users"), param("id")})

	for _, tt := range []struct {
		path   []string
		want   string
		ok     bool
		params map[string]string
	}{
		{path: []string{"GET"}, want: "root", ok: true},
		{path: []string{"GET", "users"}, want: "users", ok: true},
		{path: []string{"GET", "users", "me"}, want: "me", ok: true},
		{path: []string{"GET", "users", "42"}, want: "user", ok: true, params: map[string]string{"id": "42"}},
		{path: []string{"POST", "users", "7"}, want: "post-user", ok: true, params: map[string]string{"id": "7"}},
		{path: []string{"GET", "files", "a", "b.txt"}, want: "files", ok: true, params: map[string]string{"rest": "a/b.txt"}},
		{path: []string{"GET", "files"}},
		{path: []string{"PUT", "users"}},
		{path: []string{"GET", "users", "42", "extra"}},
		{path: []string{"GET", "USERS"}},
	} {
		var params pathmatch.Params
		got, ok := tree.Lookup(tt.path, &params)
		require.Equal(t, tt.ok, ok, "%v", tt.path)
		assert.Equal(t, tt.want, got, "%v", tt.path)

		for k, v := range tt.params {
			pv, found := params.Get(k)
			require.True(t, found, "param %s for %v", k, tt.path)
			assert.Equal(t, v, pv)
		}

		if !ok {
			assert.Empty(t, params.Keys, "no params leak on miss for %v", tt.path)
		}
	}
}

func TestLookupBacktracks(t *testing.T) {
	tree := pathmatch.New[string]()
	tree.Register("literal", []pathmatch.Segment{lit("a"), lit("b"), lit("c")})
	tree.Register("param", []pathmatch.Segment{lit("a"), param("x"), lit("d")})

	var params pathmatch.Params
	got, ok := tree.Lookup([]string{"a", "b", "d"}, &params)
	require.True(t, ok)
	assert.Equal(t, "param", got)
	assert.Equal(t, []string{"x"}, params.Keys)
	assert.Equal(t, []string{"b"}, params.Values)
}

func TestCaseInsensitive(t *testing.T) {
	tree := pathmatch.New[int](pathmatch.CaseInsensitive())
	tree.Register(1, []pathmatch.Segment{lit("GET"), lit("Hello")})

	got, ok := tree.Lookup([]string{"get", "HELLO"}, nil)
	require.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestReRegisterReplaces(t *testing.T) {
	tree := pathmatch.New[string]()
	tree.Register("first", []pathmatch.Segment{lit("x")})
	tree.Register("second", []pathmatch.Segment{lit("x")})

	got, ok := tree.Lookup([]string{"x"}, nil)
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestSiblingParamNames(t *testing.T) {
	tree := pathmatch.New[string]()
	tree.Register("b", []pathmatch.Segment{lit("GET"), lit("a"), param("x"), lit("b")})
	tree.Register("c", []pathmatch.Segment{lit("GET"), lit("a"), param("y"), lit("c")})
	tree.Register("rest", []pathmatch.Segment{lit("GET"), lit("a"), param("z"), catch("tail")})

	var params pathmatch.Params

	got, ok := tree.Lookup([]string{"GET", "a", "42", "b"}, &params)
	require.True(t, ok)
	assert.Equal(t, "b", got)
	assert.Equal(t, []string{"x"}, params.Keys)
	assert.Equal(t, []string{"42"}, params.Values)

	params.Reset()
	got, ok = tree.Lookup([]string{"GET", "a", "7", "c"}, &params)
	require.True(t, ok)
	assert.Equal(t, "c", got)
	v, ok := params.Get("y")
	assert.True(t, ok)
	assert.Equal(t, "7", v)
	_, ok = params.Get("x")
	assert.False(t, ok)

	params.Reset()
	got, ok = tree.Lookup([]string{"GET", "a", "1", "d", "e"}, &params)
	require.True(t, ok)
	assert.Equal(t, "rest", got)
	assert.Equal(t, []string{"z", "tail"}, params.Keys)
	assert.Equal(t, []string{"1", "d/e"}, params.Values)
}
