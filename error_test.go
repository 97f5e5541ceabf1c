package bserve_test

import (
	"testing"

	"github.com/advdv/bserve"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	err1 := bserve.NewError(bserve.CodeBadRequest, errors.New("foo"))
	require.Equal(t, bserve.Code(400), err1.Code())
	require.Equal(t, bserve.CodeBadRequest, bserve.CodeOf(err1))
	require.Equal(t, "Bad Request: foo", err1.Error())

	require.Equal(t, bserve.CodeUnknown, bserve.CodeOf(errors.New("bar")))
	require.Equal(t, "Unknown: rab", bserve.NewError(900, errors.New("rab")).Error())

	wrapped := errors.Wrap(bserve.NewError(bserve.CodeConflict, bserve.ErrStreamClosed), "outer")
	require.Equal(t, bserve.CodeConflict, bserve.CodeOf(wrapped))
	require.ErrorIs(t, wrapped, bserve.ErrStreamClosed)
}

func TestSeverityOf(t *testing.T) {
	d := bserve.Build(nil, nil)
	_, _, notFound := dispatch(t, d, "GET", "/missing")

	require.Equal(t, bserve.SeverityDebug, bserve.SeverityOf(notFound))
	require.Equal(t, bserve.SeverityInfo, bserve.SeverityOf(bserve.NewError(bserve.CodeForbidden, errors.New("no"))))
	require.Equal(t, bserve.SeverityError, bserve.SeverityOf(bserve.NewError(bserve.CodeBadGateway, errors.New("upstream"))))
	require.Equal(t, bserve.SeverityError, bserve.SeverityOf(errors.New("boom")))
}
