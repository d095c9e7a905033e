package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newDeduplicator(t *testing.T) *Deduplicator {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
	})
	return NewDeduplicator(rdb, time.Minute)
}

func TestDeduplicator_LookupMissThenHit(t *testing.T) {
	d := newDeduplicator(t)
	ctx := context.Background()

	sum := HashContent([]byte("image-bytes"))

	url, err := d.Lookup(ctx, sum)
	if err != nil {
		t.Fatalf("lookup miss: %v", err)
	}
	if url != "" {
		t.Fatalf("expected empty url on miss, got %q", url)
	}

	if err := d.Remember(ctx, sum, "https://media.example.com/uploads/a.png", "uploads/a.png"); err != nil {
		t.Fatalf("remember: %v", err)
	}

	url, err = d.Lookup(ctx, sum)
	if err != nil {
		t.Fatalf("lookup hit: %v", err)
	}
	if url != "https://media.example.com/uploads/a.png" {
		t.Fatalf("unexpected cached url %q", url)
	}
}

func TestDeduplicator_ForgetKey(t *testing.T) {
	d := newDeduplicator(t)
	ctx := context.Background()

	sum := HashContent([]byte("to-delete"))
	if err := d.Remember(ctx, sum, "https://media.example.com/uploads/b.png", "uploads/b.png"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := d.ForgetKey(ctx, "uploads/b.png"); err != nil {
		t.Fatalf("forget key: %v", err)
	}

	url, err := d.Lookup(ctx, sum)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if url != "" {
		t.Fatalf("expected miss after deleting the object, got %q", url)
	}
}

func TestDeduplicator_ForgetKeyUnknownKey(t *testing.T) {
	d := newDeduplicator(t)

	if err := d.ForgetKey(context.Background(), "uploads/never-stored.png"); err != nil {
		t.Fatalf("forget unknown key: %v", err)
	}
}

func TestHashContent_Deterministic(t *testing.T) {
	a := HashContent([]byte("same"))
	b := HashContent([]byte("same"))
	c := HashContent([]byte("different"))
	if a != b {
		t.Fatalf("expected identical hashes, got %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("expected different contents to hash differently")
	}
}

func TestDeduplicator_NilSafe(t *testing.T) {
	var d *Deduplicator
	ctx := context.Background()

	if _, err := d.Lookup(ctx, "abc"); err != nil {
		t.Fatalf("nil lookup: %v", err)
	}
	if err := d.Remember(ctx, "abc", "url", "key"); err != nil {
		t.Fatalf("nil remember: %v", err)
	}
	if err := d.ForgetKey(ctx, "key"); err != nil {
		t.Fatalf("nil forget key: %v", err)
	}
}
