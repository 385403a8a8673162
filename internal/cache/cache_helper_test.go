package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/campuslib/library-service/internal/models"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, BookCacheConfig.Prefix), mr
}

func TestCacheHelperRoundTrip(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	book := &models.Book{ID: 7, Title: "Dune", ISBN: "i-1", TotalCopies: 3, AvailableCopies: 2}
	if err := helper.Set(ctx, "id:7", book, BookCacheConfig.TTL); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got models.Book
	if err := helper.Get(ctx, "id:7", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != book.ID || got.Title != book.Title || got.AvailableCopies != book.AvailableCopies {
		t.Fatalf("got %+v, want %+v", got, book)
	}
}

func TestCacheHelperMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got models.Book
	err := helper.Get(context.Background(), "id:404", &got)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("got %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperDelete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "id:7", &models.Book{ID: 7}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := helper.Delete(ctx, "id:7"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var got models.Book
	if err := helper.Get(ctx, "id:7", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("got %v after delete, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperExpiry(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "id:7", &models.Book{ID: 7}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	var got models.Book
	if err := helper.Get(ctx, "id:7", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("got %v after expiry, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperWithoutClient(t *testing.T) {
	helper := NewCacheHelper(nil, "book:")
	ctx := context.Background()

	// Writes and deletes are silent no-ops; reads report unavailability.
	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set without client: %v", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete without client: %v", err)
	}

	var got string
	if err := helper.Get(ctx, "k", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("got %v, want ErrCacheNotAvailable", err)
	}
	if err := helper.HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("health check without client: %v", err)
	}
}
