package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/pdv-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestIncrCreatesAtOne(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	first, err := client.Incr(ctx, client.SaleNumberKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected 1 on first increment, got %d", first)
	}
	second, err := client.Incr(ctx, client.SaleNumberKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != 2 {
		t.Fatalf("expected 2 on second increment, got %d", second)
	}
}

func TestSetNXDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	ok, err := client.SetNX(ctx, "pdv:counter:x", 10)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "pdv:counter:x", 3)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to be refused, ok=%v err=%v", ok, err)
	}
	got, err := client.Get(ctx, "pdv:counter:x")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "10" {
		t.Fatalf("expected original value, got %q", got)
	}
	if _, err := client.Get(ctx, "pdv:missing"); !errors.Is(err, Nil) {
		t.Fatalf("expected redis.Nil for missing key, got %v", err)
	}
}

func TestIncrContinuesFromSeed(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	if _, err := client.SetNX(ctx, client.SaleNumberKey(), 41); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	next, err := client.Incr(ctx, client.SaleNumberKey())
	if err != nil {
		t.Fatalf("incr failed: %v", err)
	}
	if next != 42 {
		t.Fatalf("expected 42 after seed, got %d", next)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if _, err := client.Incr(context.Background(), "k"); err == nil {
		t.Fatal("expected error from nil store")
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error from nil store")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on nil raw should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.CounterKey("hits"); got != "pdv:counter:hits" {
		t.Fatalf("unexpected counter key %s", got)
	}
	if got := client.SaleNumberKey(); got != "pdv:counter:sale_number" {
		t.Fatalf("unexpected sale number key %s", got)
	}
	if got := client.buildKey("a", "", "b"); got != "pdv:a:b" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfigRequiresEndpoint(t *testing.T) {
	if _, err := optionsFromConfig(configWith("", "")); err == nil {
		t.Fatal("expected error without url or address")
	}
	opts, err := optionsFromConfig(configWith("redis://localhost:6379/2", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := int64(0)
	if raw, ok := m.data[key]; ok {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return redis.NewIntResult(0, errors.New("ERR value is not an integer or out of range"))
		}
		current = parsed
	}
	current++
	m.data[key] = strconv.FormatInt(current, 10)
	return redis.NewIntResult(current, nil)
}

func configWith(url, addr string) config.RedisConfig {
	return config.RedisConfig{URL: url, Address: addr}
}
