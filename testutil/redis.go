package testutil

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis server named by TEST_REDIS_ADDR.
// The test is skipped when the variable is not set. The client is closed
// when the test finishes; keys written by the test are not removed, so
// callers should use keys unique to the test.
func NewRedisClient(t *testing.T) *goredis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping integration test")
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		t.Fatalf("testutil.NewRedisClient: ping: %v", err)
	}

	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}
