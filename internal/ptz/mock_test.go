package ptz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockController(t *testing.T) {
	ctx := context.Background()
	mock := NewMockController()

	require.NoError(t, mock.GoTo(ctx, 45, 10, 8, 3))
	pos, err := mock.Position(ctx)
	require.NoError(t, err)
	assert.Equal(t, Position{Pan: 45, Tilt: 10, Zoom: 8}, pos)

	require.NoError(t, mock.GoToRelative(ctx, 5, -10, 1))
	assert.Equal(t, Position{Pan: 50, Tilt: 0, Zoom: 9}, mock.CurrentPosition())

	require.NoError(t, mock.Move(ctx, 1, 0, 0, 10))
	status, err := mock.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Moving", status["MoveStatus"])

	require.NoError(t, mock.Stop(ctx))
	require.NoError(t, mock.ZoomIn(ctx))
	assert.Equal(t, MaxZoomMultiple, mock.CurrentPosition().Zoom)
	require.NoError(t, mock.ZoomOut(ctx))

	require.NoError(t, mock.GoToPreset(ctx, 2))
	assert.ErrorIs(t, mock.GoToPreset(ctx, 9), ErrUnexpectedResponse)
	assert.ErrorIs(t, mock.GoToPreset(ctx, 0), ErrOutOfRange)

	assert.Equal(t, []string{
		CodePositionABS, ActionGetStatus, CodePosition, CodeContinuously, ActionGetStatus,
		ActionStop, CodeZoomTele, CodeZoomWide, CodeGotoPreset, CodeGotoPreset,
	}, mock.Calls())
}

func TestMockController_Failure(t *testing.T) {
	ctx := context.Background()
	mock := NewMockController()
	boom := errors.New("接続できません")

	mock.SetFailure(boom)
	_, err := mock.Status(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, mock.ZoomIn(ctx), boom)

	mock.SetFailure(nil)
	assert.NoError(t, mock.ZoomIn(ctx))
}
