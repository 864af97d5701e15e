package app

import (
	"context"
	"testing"
	"time"

	"gopivot/internal/testkit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedState struct {
	Auto   bool     `json:"auto"`
	Fields []string `json:"fields"`
}

func TestPanelStateService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := testkit.NewInMemoryPanelStateRepository()
	svc := NewPanelStateService(repo)
	id := uuid.New()

	var out savedState
	found, err := svc.Load(ctx, id, &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.Save(ctx, id, savedState{Auto: true, Fields: []string{"region"}}))
	found, err = svc.Load(ctx, id, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, savedState{Auto: true, Fields: []string{"region"}}, out)

	require.NoError(t, svc.Forget(ctx, id))
	found, err = svc.Load(ctx, id, &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPanelStateService_DisabledIsNoop(t *testing.T) {
	svc := NewPanelStateService(nil)
	assert.False(t, svc.Enabled())

	require.NoError(t, svc.Save(context.Background(), uuid.New(), savedState{}))
	found, err := svc.Load(context.Background(), uuid.New(), &savedState{})
	require.NoError(t, err)
	assert.False(t, found)

	n, err := svc.PurgeExpired(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPanelStateService_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	repo := testkit.NewInMemoryPanelStateRepository()
	svc := NewPanelStateService(repo)
	require.NoError(t, svc.Save(ctx, uuid.New(), savedState{}))

	n, err := svc.PurgeExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.PurgeExpired(ctx, -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
