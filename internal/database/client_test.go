package database

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/ledger/internal/config"
)

// countingConstructor opens a fresh SQLite file per call and counts calls.
func countingConstructor(t *testing.T) (Constructor, *int32) {
	t.Helper()
	var calls int32
	var mu sync.Mutex
	var built []*Database

	construct := func() (*Database, error) {
		atomic.AddInt32(&calls, 1)
		db, err := NewDatabase(filepath.Join(t.TempDir(), "client.db"))
		if err != nil {
			return nil, err
		}
		mu.Lock()
		built = append(built, db)
		mu.Unlock()
		return db, nil
	}

	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		for _, db := range built {
			db.Close()
		}
	})
	return construct, &calls
}

func TestProvider_CachedReturnsSameHandle(t *testing.T) {
	construct, calls := countingConstructor(t)
	slot := &Slot{}
	p := NewProvider(construct, slot, true)

	first, err := p.Get()
	require.NoError(t, err)
	second, err := p.Get()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Same(t, first, slot.Load())
}

func TestProvider_CachedSurvivesProviderRecreation(t *testing.T) {
	construct, calls := countingConstructor(t)
	slot := &Slot{}

	first, err := NewProvider(construct, slot, true).Get()
	require.NoError(t, err)

	// A reloaded provider over the same slot must not dial again.
	second, err := NewProvider(construct, slot, true).Get()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestProvider_UncachedLeavesSlotEmpty(t *testing.T) {
	construct, calls := countingConstructor(t)
	slot := &Slot{}
	p := NewProvider(construct, slot, false)

	first, err := p.Get()
	require.NoError(t, err)
	require.NotNil(t, first)
	second, err := p.Get()
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.True(t, slot.IsEmpty())
	assert.Same(t, first, second, "the provider still memoizes its own handle")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestProvider_UncachedRecreationConstructsAgain(t *testing.T) {
	construct, calls := countingConstructor(t)
	slot := &Slot{}

	first, err := NewProvider(construct, slot, false).Get()
	require.NoError(t, err)
	second, err := NewProvider(construct, slot, false).Get()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	assert.True(t, slot.IsEmpty())
}

func TestProvider_UncachedReusesExistingSlotHandle(t *testing.T) {
	construct, calls := countingConstructor(t)
	slot := &Slot{}

	cached, err := NewProvider(construct, slot, true).Get()
	require.NoError(t, err)

	got, err := NewProvider(construct, slot, false).Get()
	require.NoError(t, err)

	assert.Same(t, cached, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestProvider_ReturnsConstructorOutputUnchanged(t *testing.T) {
	want, err := NewDatabase(filepath.Join(t.TempDir(), "exact.db"))
	require.NoError(t, err)
	defer want.Close()

	for _, cache := range []bool{true, false} {
		p := NewProvider(func() (*Database, error) { return want, nil }, &Slot{}, cache)
		got, err := p.Get()
		require.NoError(t, err)
		assert.Same(t, want, got)
	}
}

func TestProvider_ConstructorErrorPropagatesUnchanged(t *testing.T) {
	boom := errors.New("malformed connection string")
	var calls int
	slot := &Slot{}
	p := NewProvider(func() (*Database, error) {
		calls++
		return nil, boom
	}, slot, true)

	db, err := p.Get()
	assert.Nil(t, db)
	assert.Same(t, boom, err)
	assert.True(t, slot.IsEmpty())

	// Failures are not cached; the next call tries again.
	_, err = p.Get()
	assert.Same(t, boom, err)
	assert.Equal(t, 2, calls)
}

func TestProvider_TightLoopYieldsSameHandle(t *testing.T) {
	construct, calls := countingConstructor(t)
	p := NewProvider(construct, &Slot{}, true)

	first, err := p.Get()
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		got, err := p.Get()
		require.NoError(t, err)
		require.Same(t, first, got)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestProvider_ConcurrentFirstAccessConstructsOnce(t *testing.T) {
	construct, calls := countingConstructor(t)
	slot := &Slot{}

	const workers = 16
	results := make([]*Database, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Separate providers share only the slot.
			db, err := NewProvider(construct, slot, true).Get()
			if err == nil {
				results[i] = db
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	for _, db := range results {
		assert.Same(t, results[0], db)
	}
}

func TestProvider_Close(t *testing.T) {
	t.Run("cached handle is removed from slot", func(t *testing.T) {
		construct, calls := countingConstructor(t)
		slot := &Slot{}
		p := NewProvider(construct, slot, true)

		first, err := p.Get()
		require.NoError(t, err)
		require.NoError(t, p.Close())
		assert.True(t, slot.IsEmpty())
		assert.Error(t, first.Ping(t.Context()))

		second, err := p.Get()
		require.NoError(t, err)
		assert.NotSame(t, first, second)
		assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	})

	t.Run("close without handle is a no-op", func(t *testing.T) {
		p := NewProvider(func() (*Database, error) { return nil, errors.New("unused") }, nil, false)
		assert.NoError(t, p.Close())
	})
}

func TestSlot_Clear(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "slot.db"))
	require.NoError(t, err)
	defer db.Close()

	slot := &Slot{}
	assert.True(t, slot.IsEmpty())
	slot.Store(db)
	assert.False(t, slot.IsEmpty())
	assert.Same(t, db, slot.Clear())
	assert.Nil(t, slot.Load())
}

func TestShared(t *testing.T) {
	resetSharedState := func() {
		if db := DefaultSlot.Clear(); db != nil {
			db.Close()
		}
		ResetShared()
	}
	resetSharedState()
	t.Cleanup(resetSharedState)

	t.Run("development caches across provider resets", func(t *testing.T) {
		cfg := config.Database{
			Driver:      config.DriverSQLite,
			DSN:         filepath.Join(t.TempDir(), "shared.db"),
			CacheClient: true,
		}

		first, err := Shared(cfg)
		require.NoError(t, err)
		ResetShared()
		second, err := Shared(cfg)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Same(t, first, DefaultSlot.Load())
		resetSharedState()
	})

	t.Run("production never writes the slot", func(t *testing.T) {
		cfg := config.Database{
			Driver:      config.DriverSQLite,
			DSN:         filepath.Join(t.TempDir(), "shared-prod.db"),
			CacheClient: false,
		}

		first, err := Shared(cfg)
		require.NoError(t, err)
		defer first.Close()
		second, err := Shared(cfg)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.True(t, DefaultSlot.IsEmpty())
		ResetShared()
	})
}
