package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type fakeCmdable struct {
	counts  map[string]int64
	set     map[string]bool
	expired map[string]time.Duration
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{
		counts:  map[string]int64{},
		set:     map[string]bool{},
		expired: map[string]time.Duration{},
	}
}

func (f *fakeCmdable) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (f *fakeCmdable) SetNX(ctx context.Context, key string, _ any, _ time.Duration) *goredis.BoolCmd {
	cmd := goredis.NewBoolCmd(ctx)
	if f.set[key] {
		cmd.SetVal(false)
		return cmd
	}
	f.set[key] = true
	cmd.SetVal(true)
	return cmd
}

func (f *fakeCmdable) Incr(ctx context.Context, key string) *goredis.IntCmd {
	f.counts[key]++
	cmd := goredis.NewIntCmd(ctx)
	cmd.SetVal(f.counts[key])
	return cmd
}

func (f *fakeCmdable) Expire(ctx context.Context, key string, ttl time.Duration) *goredis.BoolCmd {
	f.expired[key] = ttl
	cmd := goredis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	for _, key := range keys {
		delete(f.set, key)
	}
	cmd := goredis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestSetNXClaimsOnce(t *testing.T) {
	client := &Client{store: newFakeCmdable()}

	ok, err := client.SetNX(context.Background(), "wc:idempotency:stripe_webhook:evt_1", "1", time.Hour)
	if err != nil || !ok {
		t.Fatalf("first SetNX = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = client.SetNX(context.Background(), "wc:idempotency:stripe_webhook:evt_1", "1", time.Hour)
	if err != nil || ok {
		t.Fatalf("second SetNX = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestFixedWindowAllow(t *testing.T) {
	store := newFakeCmdable()
	client := &Client{store: store}
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		allowed, count, err := client.FixedWindowAllow(ctx, "checkout_intent:1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !allowed || count != i {
			t.Fatalf("request %d: allowed=%v count=%d", i, allowed, count)
		}
	}

	allowed, count, err := client.FixedWindowAllow(ctx, "checkout_intent:1.2.3.4", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if allowed || count != 4 {
		t.Fatalf("over limit: allowed=%v count=%d", allowed, count)
	}

	if ttl := store.expired["wc:rate_limit:checkout_intent:1.2.3.4"]; ttl != time.Minute {
		t.Fatalf("window ttl not applied on first hit: %v", ttl)
	}
}

func TestFixedWindowScopesAreIndependent(t *testing.T) {
	client := &Client{store: newFakeCmdable()}
	ctx := context.Background()

	if _, _, err := client.FixedWindowAllow(ctx, "a", 1, time.Minute); err != nil {
		t.Fatalf("scope a: %v", err)
	}
	allowed, _, err := client.FixedWindowAllow(ctx, "b", 1, time.Minute)
	if err != nil {
		t.Fatalf("scope b: %v", err)
	}
	if !allowed {
		t.Fatalf("scope b should not share scope a's window")
	}
}

func TestIdempotencyKeyNamespacing(t *testing.T) {
	client := &Client{}
	key := client.IdempotencyKey("stripe_webhook", "evt_1")
	if key != "wc:idempotency:stripe_webhook:evt_1" {
		t.Fatalf("unexpected key %q", key)
	}
}
