package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapOpMatchesKindAndCause(t *testing.T) {
	cause := errors.Wrap(ErrUserNotFound, "load user")
	err := WrapOp(ErrRemoteLoad, cause)

	require.ErrorIs(t, err, ErrRemoteLoad)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.NotErrorIs(t, err, ErrRemoteWrite)
	require.Equal(t, "remote load failed: load user: user not found", err.Error())

	var op *OpError
	require.ErrorAs(t, err, &op)
	require.Equal(t, ErrRemoteLoad, op.Kind)
}

func TestWrapOpNil(t *testing.T) {
	require.NoError(t, WrapOp(ErrRemoteWrite, nil))
}
