package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campuslib/library-service/internal/cache"
	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
)

type bookPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewBookPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.BookRepository {
	return &bookPostgreSQL{
		db:    db,
		cache: cache.NewCacheHelper(redisClient, cache.BookCacheConfig.Prefix),
	}
}

func (r *bookPostgreSQL) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookPostgreSQL) Update(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return err
	}
	cache.InvalidateBook(ctx, r.cache, book.ID)
	return nil
}

func (r *bookPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateBook(ctx, r.cache, id)
	return nil
}

func (r *bookPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	cacheKey := fmt.Sprintf("id:%d", id)

	var cached models.Book
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}

	// Cache write failures are not read failures.
	_ = r.cache.Set(ctx, cacheKey, &book, cache.BookCacheConfig.TTL)

	return &book, nil
}

func (r *bookPostgreSQL) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookPostgreSQL) List(ctx context.Context, filters repositories.BookFilters) ([]*models.Book, error) {
	query := applyBookFilters(r.db.WithContext(ctx).Model(&models.Book{}), filters)

	var books []*models.Book
	if err := query.Order("id").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func applyBookFilters(query *gorm.DB, filters repositories.BookFilters) *gorm.DB {
	if filters.Title != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(filters.Title)+"%")
	}
	if filters.Author != "" {
		query = query.Where("LOWER(author) LIKE ?", "%"+strings.ToLower(filters.Author)+"%")
	}
	if filters.ISBN != "" {
		query = query.Where("isbn = ?", filters.ISBN)
	}
	return query
}
