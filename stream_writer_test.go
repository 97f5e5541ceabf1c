package bserve_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/advdv/bserve"
	"github.com/advdv/bserve/bservetest"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamWriterDeclaredLength(t *testing.T) {
	enc, _ := testEncoder(t)

	var writeErrs []error
	var endErr error
	ch, err := bservetest.Encode(t, enc, bserve.NewResponse(http.StatusOK, bserve.StreamBody(func(w *bserve.StreamWriter) {
		for _, chunk := range []string{"abcd", "efghij"} {
			_, werr := w.Write([]byte(chunk))
			writeErrs = append(writeErrs, werr)
		}

		endErr = w.End()
	}, 10)))

	require.NoError(t, err)
	require.NoError(t, endErr)
	assert.Equal(t, []error{nil, nil}, writeErrs)

	head, _ := ch.Head()
	assert.Equal(t, "10", head.Header.Get("Content-Length"))
	assert.Equal(t, [][]byte{[]byte("abcd"), []byte("efghij")}, ch.Bodies())
	assert.Equal(t, 1, ch.Signals())
	assert.Equal(t, []bservetest.Event{
		bservetest.EventHead,
		bservetest.EventBody, bservetest.EventFlush,
		bservetest.EventBody, bservetest.EventFlush,
		bservetest.EventSignal, bservetest.EventEnd, bservetest.EventFlush,
	}, ch.Events())
}

func TestStreamWriterOverflow(t *testing.T) {
	enc, _ := testEncoder(t)

	var writeErr, endErr error
	ch, err := bservetest.Encode(t, enc, bserve.NewResponse(http.StatusOK, bserve.StreamBody(func(w *bserve.StreamWriter) {
		_, writeErr = w.Write([]byte("0123456789"))
		endErr = w.End()
	}, 5)))

	require.ErrorIs(t, err, bserve.ErrTooManyBytes)
	require.ErrorIs(t, writeErr, bserve.ErrNotEnoughBytes)
	require.ErrorIs(t, endErr, bserve.ErrNotEnoughBytes)
	assert.Equal(t, 1, ch.Signals())
}

func TestStreamWriterEndShort(t *testing.T) {
	enc, _ := testEncoder(t)

	var endErr error
	ch, err := bservetest.Encode(t, enc, bserve.NewResponse(http.StatusOK, bserve.StreamBody(func(w *bserve.StreamWriter) {
		_, _ = w.Write([]byte("abcd"))
		endErr = w.End()
	}, 10)))

	require.ErrorIs(t, err, bserve.ErrNotEnoughBytes)
	require.ErrorIs(t, endErr, bserve.ErrNotEnoughBytes)
	assert.Equal(t, 1, ch.Signals())
	assert.Equal(t, 1, ch.Count(bservetest.EventEnd))
}

func TestStreamWriterUnbounded(t *testing.T) {
	enc, _ := testEncoder(t)

	var written int64
	ch, err := bservetest.Encode(t, enc, bserve.NewResponse(http.StatusOK, bserve.ChunkedBody(func(w *bserve.StreamWriter) {
		_, _ = io.Copy(w, strings.NewReader("streamed body"))
		written = w.Written()
		_ = w.End()
	})))

	require.NoError(t, err)
	assert.EqualValues(t, len("streamed body"), written)
	assert.Equal(t, "streamed body", string(ch.Body()))
	assert.Equal(t, 1, ch.Signals())
}

func TestStreamWriterError(t *testing.T) {
	enc, _ := testEncoder(t)
	cause := errors.New("upstream failed")

	var errErr error
	ch, err := bservetest.Encode(t, enc, bserve.NewResponse(http.StatusOK, bserve.ChunkedBody(func(w *bserve.StreamWriter) {
		_, _ = w.Write([]byte("a"))
		errErr = w.Error(cause)
	})))

	require.ErrorIs(t, err, cause)
	require.NoError(t, errErr)
	assert.Equal(t, 1, ch.Signals())
	assert.Equal(t, 1, ch.Count(bservetest.EventEnd))
}

func TestStreamWriterClosed(t *testing.T) {
	enc, _ := testEncoder(t)

	var sw *bserve.StreamWriter
	ch, err := bservetest.Encode(t, enc, bserve.NewResponse(http.StatusOK, bserve.ChunkedBody(func(w *bserve.StreamWriter) {
		sw = w
		_ = w.End()
	})))
	require.NoError(t, err)
	require.True(t, sw.Completed())

	n, err := sw.Write([]byte("x"))
	require.ErrorIs(t, err, bserve.ErrStreamClosed)
	assert.Zero(t, n)
	require.ErrorIs(t, sw.End(), bserve.ErrStreamClosed)
	require.ErrorIs(t, sw.Error(errors.New("late")), bserve.ErrStreamClosed)

	assert.Equal(t, 1, ch.Signals())
	assert.Empty(t, ch.Bodies())
}

func TestStreamWriterBodyWriteFailure(t *testing.T) {
	enc, _ := testEncoder(t)

	ch := bservetest.NewChannel()
	ch.FailWriteBody = errors.New("connection reset")

	var writeErr error
	err := enc.Encode(t.Context(), bserve.NewResponse(http.StatusOK, bserve.ChunkedBody(func(w *bserve.StreamWriter) {
		if _, writeErr = w.Write([]byte("x")); writeErr != nil {
			_ = w.Error(writeErr)
			return
		}

		_ = w.End()
	})), ch).Await()

	require.ErrorContains(t, writeErr, "connection reset")
	require.ErrorContains(t, err, "connection reset")
	assert.Equal(t, 1, ch.Signals())
}

func TestStreamWriterCountsAcceptedFramesOnly(t *testing.T) {
	enc, _ := testEncoder(t)

	ch := bservetest.NewChannel()
	ch.FailWriteBody = errors.New("connection reset")

	var written int64
	var endErr error
	err := enc.Encode(t.Context(), bserve.NewResponse(http.StatusOK, bserve.StreamBody(func(w *bserve.StreamWriter) {
		_, werr := w.Write([]byte("abc"))
		require.ErrorContains(t, werr, "connection reset")

		written = w.Written()
		endErr = w.End()
	}, 3)), ch).Await()

	assert.Zero(t, written)
	require.ErrorIs(t, endErr, bserve.ErrNotEnoughBytes)
	require.ErrorIs(t, err, bserve.ErrNotEnoughBytes)
}
