package sculpt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withKernelFactory swaps NewKernelFunc for the test's lifetime.
func withKernelFactory(t *testing.T, f func() (Kernel, error)) {
	t.Helper()
	old := NewKernelFunc
	NewKernelFunc = f
	t.Cleanup(func() { NewKernelFunc = old })
}

func TestProvider_NoKernelRegistered(t *testing.T) {
	withKernelFactory(t, nil)
	_, err := NewProvider().Kernel(context.Background())
	assert.ErrorIs(t, err, ErrNoKernel)
}

func TestProvider_ConcurrentInitCoalesces(t *testing.T) {
	var inits atomic.Int32
	shared := &fakeKernel{}
	withKernelFactory(t, func() (Kernel, error) {
		inits.Add(1)
		time.Sleep(20 * time.Millisecond) // long-running init
		return shared, nil
	})

	p := NewProvider()
	const callers = 16
	got := make([]Kernel, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k, err := p.Kernel(context.Background())
			assert.NoError(t, err)
			got[i] = k
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), inits.Load(), "concurrent requests coalesce into one init")
	for i := 0; i < callers; i++ {
		assert.Same(t, shared, got[i], "caller %d got a different instance", i)
	}
}

func TestProvider_InitFailureIsSticky(t *testing.T) {
	var inits atomic.Int32
	withKernelFactory(t, func() (Kernel, error) {
		inits.Add(1)
		return nil, fmt.Errorf("backend unavailable")
	})

	p := NewProvider()
	_, err1 := p.Kernel(context.Background())
	_, err2 := p.Kernel(context.Background())
	require.Error(t, err1)
	require.Error(t, err2)
	assert.Equal(t, int32(1), inits.Load(), "a failed init is not retried")
}

func TestProvider_CallerContextBoundsOnlyTheWait(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	shared := &fakeKernel{}
	withKernelFactory(t, func() (Kernel, error) {
		close(started)
		<-release
		return shared, nil
	})

	p := NewProvider()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := p.Kernel(ctx)
		errCh <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	// The initialization itself keeps running and later callers still get
	// the ready instance.
	close(release)
	k, err := p.Kernel(context.Background())
	require.NoError(t, err)
	assert.Same(t, shared, k)
}

func TestMeshBounds(t *testing.T) {
	m := &Mesh{Vertices: []float64{-1, 2, 3, 5, -4, 0, 2, 2, 2}}
	min, max, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, -1.0, min.X)
	assert.Equal(t, -4.0, min.Y)
	assert.Equal(t, 0.0, min.Z)
	assert.Equal(t, 5.0, max.X)
	assert.Equal(t, 2.0, max.Y)
	assert.Equal(t, 3.0, max.Z)

	_, _, ok = (&Mesh{}).Bounds()
	assert.False(t, ok)
}

func TestMeshCentroid(t *testing.T) {
	m := &Mesh{Vertices: []float64{0, 0, 0, 2, 0, 0, 1, 3, 0}}
	c, ok := m.Centroid()
	require.True(t, ok)
	assert.InDelta(t, 1.0, c.X, 1e-12)
	assert.InDelta(t, 1.0, c.Y, 1e-12)
	assert.InDelta(t, 0.0, c.Z, 1e-12)
}
