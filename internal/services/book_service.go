package services

import (
	"context"
	"fmt"

	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
	"github.com/campuslib/library-service/internal/utils"
	"github.com/campuslib/library-service/internal/validator"
)

type bookService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    utils.Logger
	ledger    Ledger
}

func NewBookService(repo repositories.Repository, v *validator.Validator, logger utils.Logger) BookService {
	return &bookService{repo: repo, validator: v, logger: logger}
}

func (s *bookService) Create(ctx context.Context, req *BookCreateRequest) (*models.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.Books().GetByISBN(ctx, req.ISBN)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check ISBN: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateISBN
	}

	// New stock is all on the shelf.
	book := &models.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
	}

	if err := s.repo.Books().Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.logger.Info("book created", "book_id", book.ID, "isbn", book.ISBN)
	return book, nil
}

func (s *bookService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.repo.Books().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

func (s *bookService) List(ctx context.Context, filters repositories.BookFilters) ([]*models.Book, error) {
	books, err := s.repo.Books().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// Update applies the non-nil request fields. Changing total_copies moves
// available_copies by the same delta, so the stock check and the write have
// to be one transaction.
func (s *bookService) Update(ctx context.Context, id uint, req *BookUpdateRequest) (*models.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var updated *models.Book
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		book, err := tx.Books().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrBookNotFound
			}
			return fmt.Errorf("failed to get book: %w", err)
		}

		if req.ISBN != nil && *req.ISBN != book.ISBN {
			other, err := tx.Books().GetByISBN(ctx, *req.ISBN)
			if err != nil && !repositories.IsNotFoundError(err) {
				return fmt.Errorf("failed to check ISBN: %w", err)
			}
			if other != nil && other.ID != book.ID {
				return ErrDuplicateISBN
			}
			book.ISBN = *req.ISBN
		}
		if req.Title != nil {
			book.Title = *req.Title
		}
		if req.Author != nil {
			book.Author = *req.Author
		}
		if req.PublicationYear != nil {
			book.PublicationYear = req.PublicationYear
		}
		if req.TotalCopies != nil {
			if err := s.ledger.AdjustTotalCopies(book, *req.TotalCopies); err != nil {
				return err
			}
		}

		if err := tx.Books().Update(ctx, book); err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book updated", "book_id", updated.ID)
	return updated, nil
}

// Delete removes a book unless any student still holds a claim on it.
func (s *bookService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Books().GetByID(ctx, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrBookNotFound
			}
			return fmt.Errorf("failed to get book: %w", err)
		}

		active, err := tx.Borrowings().HasActiveByBook(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check active records: %w", err)
		}
		if active {
			return ErrBookHasActiveRecords
		}

		if err := tx.Books().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("book deleted", "book_id", id)
	return nil
}
