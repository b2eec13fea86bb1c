package redis

import (
	"testing"

	"github.com/luisocampo/nichesmith-backend/pkg/config"
)

func TestBuildKeyNamespacesAndSkipsEmpty(t *testing.T) {
	c := &Client{}
	if got := c.CacheKey("plan_price", "price_123"); got != "ns:cache:plan_price:price_123" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := c.RateLimitKey("ai:user-1"); got != "ns:rate_limit:ai:user-1" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := c.buildKey("cache", "", "x"); got != "ns:cache:x" {
		t.Fatalf("empty part should be skipped, got %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@localhost:6380/2", PoolSize: 5})
	if err != nil {
		t.Fatalf("optionsFromConfig: %v", err)
	}
	if opts.Addr != "localhost:6380" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
	if opts.PoolSize != 5 {
		t.Fatalf("pool size not applied, got %d", opts.PoolSize)
	}
}
