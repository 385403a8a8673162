package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
)

type borrowingPostgreSQL struct {
	db *gorm.DB
}

func NewBorrowingPostgreSQL(db *gorm.DB) repositories.BorrowingRepository {
	return &borrowingPostgreSQL{db: db}
}

func (r *borrowingPostgreSQL) Create(ctx context.Context, record *models.BorrowingRecord) error {
	if !models.ValidRecordStatus(record.Status) {
		return repositories.ErrInvalidStatus
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *borrowingPostgreSQL) Update(ctx context.Context, record *models.BorrowingRecord) error {
	if !models.ValidRecordStatus(record.Status) {
		return repositories.ErrInvalidStatus
	}
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *borrowingPostgreSQL) GetByID(ctx context.Context, id uint) (*models.BorrowingRecord, error) {
	var record models.BorrowingRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *borrowingPostgreSQL) GetActiveByStudentAndBook(ctx context.Context, studentID, bookID uint) (*models.BorrowingRecord, error) {
	var record models.BorrowingRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND book_id = ? AND status IN ?",
			studentID, bookID, activeStatuses()).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *borrowingPostgreSQL) CountBorrowedByStudent(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowingRecord{}).
		Where("student_id = ? AND status = ?", studentID, models.RecordBorrowed).
		Count(&count).Error
	return count, err
}

func (r *borrowingPostgreSQL) HasActiveByBook(ctx context.Context, bookID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowingRecord{}).
		Where("book_id = ? AND status IN ?", bookID, activeStatuses()).
		Count(&count).Error
	return count > 0, err
}

func (r *borrowingPostgreSQL) List(ctx context.Context, filters repositories.RecordFilters) ([]*models.BorrowingRecord, error) {
	query := applyRecordFilters(r.db.WithContext(ctx).Model(&models.BorrowingRecord{}), filters)

	var records []*models.BorrowingRecord
	if err := query.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func applyRecordFilters(query *gorm.DB, filters repositories.RecordFilters) *gorm.DB {
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.BookID != nil {
		query = query.Where("book_id = ?", *filters.BookID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ActiveOnly {
		query = query.Where("status IN ?", activeStatuses())
	}
	return query
}

func activeStatuses() []models.RecordStatus {
	return []models.RecordStatus{models.RecordReserved, models.RecordBorrowed}
}
