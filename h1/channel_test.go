package h1_test

import (
	"bufio"
	"bytes"
	"net/http"
	"testing"

	"github.com/advdv/bserve"
	"github.com/advdv/bserve/h1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelChunked(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)

	var signaled int
	ch := h1.NewChannel(bw, h1.OnComplete(func() { signaled++ }))

	require.NoError(t, ch.WriteHead(bserve.Head{
		Version: bserve.HTTP11,
		Status:  http.StatusOK,
		Header: http.Header{
			"Date":              {"Sat, 09 Mar 2024 13:05:07 GMT"},
			"Transfer-Encoding": {"chunked"},
		},
	}))
	require.NoError(t, ch.WriteBody([]byte("hello, ")))
	require.NoError(t, ch.WriteBody(nil))
	require.NoError(t, ch.WriteBody([]byte("world")))

	ch.ResponseComplete()
	ch.ResponseComplete()
	require.NoError(t, ch.WriteEnd())

	assert.Empty(t, buf.String(), "nothing reaches the wire before flush")
	require.NoError(t, ch.Flush())

	assert.Equal(t, "HTTP/1.1 200 OK\r\n"+
		"Date: Sat, 09 Mar 2024 13:05:07 GMT\r\n"+
		"Transfer-Encoding: chunked\r\n"+
		"\r\n"+
		"7\r\nhello, \r\n"+
		"5\r\nworld\r\n"+
		"0\r\n\r\n", buf.String())

	assert.Equal(t, 1, signaled)
	assert.True(t, ch.Delimited())

	select {
	case <-ch.Done():
	default:
		assert.Fail(t, "done should be closed after the completion signal")
	}
}

func TestChannelFixed(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	ch := h1.NewChannel(bw, h1.WithClose())

	require.NoError(t, ch.WriteHead(bserve.Head{
		Version: bserve.Version{Major: 1, Minor: 0},
		Status:  http.StatusNotFound,
		Header:  http.Header{"Content-Length": {"3"}},
	}))
	require.NoError(t, ch.WriteBody([]byte("bar")))
	require.NoError(t, ch.WriteEnd())
	require.NoError(t, ch.Flush())

	assert.Equal(t, "HTTP/1.0 404 Not Found\r\n"+
		"Connection: close\r\n"+
		"Content-Length: 3\r\n"+
		"\r\n"+
		"bar", buf.String())
	assert.True(t, ch.Delimited())
}

func TestChannelUndelimited(t *testing.T) {
	var buf bytes.Buffer
	ch := h1.NewChannel(bufio.NewWriter(&buf))

	require.NoError(t, ch.WriteHead(bserve.Head{Version: bserve.Version{Major: 1, Minor: 0}, Status: 200, Header: http.Header{}}))
	assert.False(t, ch.Delimited())
}
