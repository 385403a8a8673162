package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeDelete deletes cache keys, logging instead of failing; cache
// invalidation must never break a write path.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateBook drops every cached view of a book after a mutation.
func InvalidateBook(ctx context.Context, helper *CacheHelper, bookID uint) {
	SafeDelete(ctx, helper, fmt.Sprintf("id:%d", bookID))
}
