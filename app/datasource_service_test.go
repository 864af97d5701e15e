package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gopivot/domain/pivot"
	"gopivot/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDataSourceLoader is a testify mock of ports.DataSourceLoader
type MockDataSourceLoader struct {
	mock.Mock
}

func (m *MockDataSourceLoader) Name() string {
	return "mock"
}

func (m *MockDataSourceLoader) Load(ctx context.Context) (pivot.DataSource, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(pivot.DataSource)
	return ds, args.Error(1)
}

func TestDataSourceService_CachesFirstLoad(t *testing.T) {
	loader := new(MockDataSourceLoader)
	ds := testkit.SmallSales()
	loader.On("Load", mock.Anything).Return(ds, nil).Once()

	svc := NewDataSourceService(loader)
	assert.True(t, svc.LoadedAt().IsZero())

	first, err := svc.DataSource(context.Background())
	require.NoError(t, err)
	second, err := svc.DataSource(context.Background())
	require.NoError(t, err)

	assert.Same(t, ds, first)
	assert.Same(t, first, second)
	assert.False(t, svc.LoadedAt().IsZero())
	loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestDataSourceService_ConcurrentCallersShareLoad(t *testing.T) {
	loader := new(MockDataSourceLoader)
	loader.On("Load", mock.Anything).
		After(50*time.Millisecond).
		Return(testkit.SmallSales(), nil).Once()

	svc := NewDataSourceService(loader)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.DataSource(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestDataSourceService_ErrorsAreNotCached(t *testing.T) {
	loader := new(MockDataSourceLoader)
	loader.On("Load", mock.Anything).Return(nil, errors.New("disk gone")).Once()
	loader.On("Load", mock.Anything).Return(testkit.SmallSales(), nil).Once()

	svc := NewDataSourceService(loader)
	_, err := svc.DataSource(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")

	ds, err := svc.DataSource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, ds.RowCount())
}

func TestDataSourceService_Reload(t *testing.T) {
	loader := new(MockDataSourceLoader)
	loader.On("Load", mock.Anything).Return(testkit.SmallSales(), nil).Twice()

	svc := NewDataSourceService(loader)
	_, err := svc.DataSource(context.Background())
	require.NoError(t, err)
	svc.Reload()
	_, err = svc.DataSource(context.Background())
	require.NoError(t, err)
	loader.AssertExpectations(t)
}

// blockingLoader holds its first load open until released
type blockingLoader struct {
	started chan struct{}
	release chan struct{}
	calls   int32
	ctx     context.Context
}

func (l *blockingLoader) Name() string { return "blocking" }

func (l *blockingLoader) Load(ctx context.Context) (pivot.DataSource, error) {
	if atomic.AddInt32(&l.calls, 1) == 1 {
		l.ctx = ctx
		close(l.started)
	}
	<-l.release
	return testkit.SmallSales(), nil
}

func TestDataSourceService_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	loader := &blockingLoader{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewDataSourceService(loader)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.DataSource(ctx)
		firstErr <- err
	}()
	<-loader.started

	secondErr := make(chan error, 1)
	go func() {
		_, err := svc.DataSource(context.Background())
		secondErr <- err
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	assert.NoError(t, loader.ctx.Err(), "load must not see the caller's cancellation")

	close(loader.release)
	require.NoError(t, <-secondErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loader.calls))

	ds, err := svc.DataSource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, ds.RowCount())
}
