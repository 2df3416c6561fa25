package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/pdv-backend/pkg/db/models"
	"github.com/angelmondragon/pdv-backend/pkg/redis"
)

type fakeCounterStore struct {
	mu      sync.Mutex
	values  map[string]int64
	failErr error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{values: map[string]int64{}}
}

func (f *fakeCounterStore) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return 0, f.failErr
	}
	f.values[key]++
	return f.values[key], nil
}

func (f *fakeCounterStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return "", f.failErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return strconv.FormatInt(v, 10), nil
}

func (f *fakeCounterStore) SetNX(_ context.Context, key string, value any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return false, f.failErr
	}
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(int64)
	return true, nil
}

func assertDistinctIncreasing(t *testing.T, seq Sequencer, workers, perWorker int) {
	t.Helper()
	ctx := context.Background()
	results := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := int64(0)
			for i := 0; i < perWorker; i++ {
				n, err := seq.Next(ctx)
				if err != nil {
					t.Errorf("next: %v", err)
					return
				}
				if n <= prev {
					t.Errorf("numbers seen by one caller must increase: %d after %d", n, prev)
				}
				prev = n
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make([]int64, 0, workers*perWorker)
	for n := range results {
		seen = append(seen, n)
	}
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })
	require.Len(t, seen, workers*perWorker)
	for i, n := range seen {
		assert.Equal(t, int64(i+1), n, "numbers must be contiguous from 1 without duplicates")
	}
}

func TestRedisNextConcurrentStartsGetDistinctNumbers(t *testing.T) {
	seq := newRedisWithStore(newFakeCounterStore(), "pdv:counter:sale_number")
	assertDistinctIncreasing(t, seq, 16, 50)
}

func TestRedisNextUnavailable(t *testing.T) {
	store := newFakeCounterStore()
	store.failErr = errors.New("dial tcp: connection refused")
	seq := newRedisWithStore(store, "k")

	n, err := seq.Next(context.Background())
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, store.failErr)
}

func TestRedisSeedAndCurrent(t *testing.T) {
	ctx := context.Background()
	seq := newRedisWithStore(newFakeCounterStore(), "k")

	current, err := seq.Current(ctx)
	require.NoError(t, err)
	assert.Zero(t, current)

	seeded, err := seq.Seed(ctx, 41)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = seq.Seed(ctx, 7)
	require.NoError(t, err)
	assert.False(t, seeded, "existing counter must not be lowered")

	n, err := seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	current, err = seq.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), current)

	seeded, err = seq.Seed(ctx, 0)
	require.NoError(t, err)
	assert.False(t, seeded)
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.SaleSequence{}))
	return conn
}

func TestSQLNextCreatesRowAtOne(t *testing.T) {
	ctx := context.Background()
	seq, err := NewSQL(newSQLiteDB(t))
	require.NoError(t, err)

	current, err := seq.Current(ctx)
	require.NoError(t, err)
	assert.Zero(t, current)

	for want := int64(1); want <= 3; want++ {
		n, err := seq.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	current, err = seq.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), current)
}

func TestSQLNextConcurrentCallers(t *testing.T) {
	seq, err := NewSQL(newSQLiteDB(t))
	require.NoError(t, err)
	assertDistinctIncreasing(t, seq, 8, 25)
}

func TestSQLNextUnavailableWithoutTable(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	seq, err := NewSQL(conn)
	require.NoError(t, err)

	_, err = seq.Next(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMemoryNext(t *testing.T) {
	assertDistinctIncreasing(t, NewMemory(0), 16, 50)

	seq := NewMemory(99)
	n, err := seq.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = seq.Next(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	current, _ := seq.Current(context.Background())
	assert.Equal(t, int64(100), current, "a failed call must not spend a number")
}

func TestConstructorsRequireDeps(t *testing.T) {
	_, err := NewRedis(nil)
	assert.Error(t, err)
	_, err = NewSQL(nil)
	assert.Error(t, err)
}
