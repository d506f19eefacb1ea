package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/runcached/internal/adapters/telemetry"
	"go.trai.ch/runcached/internal/app"
	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/core/ports/mocks"
)

func TestApp_Clean(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResultStore(ctrl)
	store.EXPECT().Sweep("/tmp/cache", false).Return(3, nil)

	a := app.New(nil, store, telemetry.NewNoOpTracer())

	removed, err := a.Clean("/tmp/cache", false)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
}

func TestApp_CleanAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResultStore(ctrl)
	store.EXPECT().Sweep("/tmp/cache", true).Return(7, nil)

	a := app.New(nil, store, telemetry.NewNoOpTracer())

	removed, err := a.Clean("/tmp/cache", true)
	require.NoError(t, err)
	assert.Equal(t, 7, removed)
}

func TestApp_CleanError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResultStore(ctrl)
	store.EXPECT().Sweep(gomock.Any(), gomock.Any()).
		Return(0, domain.ErrStoreReadFailed)

	a := app.New(nil, store, telemetry.NewNoOpTracer())

	_, err := a.Clean("/tmp/cache", false)
	require.ErrorIs(t, err, domain.ErrStoreReadFailed)
}

func TestApp_Close(t *testing.T) {
	a := app.New(nil, nil, telemetry.NewNoOpTracer())
	require.NoError(t, a.Close())
}
