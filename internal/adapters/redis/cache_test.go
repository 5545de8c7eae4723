package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "propsite/internal/adapters/redis"
)

type view struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0, "propsite:")
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	var got view
	if ok, err := c.Get(ctx, "property:villa_x:en", &got); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "property:villa_x:en", view{ID: "villa_x", Name: "Villa X"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("propsite:property:villa_x:en") {
		t.Fatalf("expected prefixed key in redis, have %v", mr.Keys())
	}

	ok, err := c.Get(ctx, "property:villa_x:en", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Name != "Villa X" {
		t.Fatalf("unexpected cached view: %+v", got)
	}

	if err := c.Del(ctx, "property:villa_x:en"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "property:villa_x:en", &got); ok {
		t.Fatalf("expected miss after del")
	}
}

func TestCache_CorruptEntryIsAMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0, "propsite:")
	t.Cleanup(func() { _ = c.Close() })
	if err := mr.Set("propsite:property:villa_x:en", `{"id":"villa_x","name":`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got view
	ok, err := c.Get(context.Background(), "property:villa_x:en", &got)
	if ok || err == nil {
		t.Fatalf("expected a decode error, got ok=%v err=%v", ok, err)
	}
}

func TestCache_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0, "")
	ctx := context.Background()

	if err := c.Set(ctx, "k", view{ID: "a"}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var got view
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatalf("expected entry to expire")
	}
}
