package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
	pgrepo "github.com/campuslib/library-service/internal/repositories/postgres"
)

// import-books bulk-loads a catalogue CSV into the books table. Rows whose
// ISBN already exists are skipped and reported, so the command is safe to
// re-run on the same file.
func main() {
	var (
		csvPath     string
		databaseURL string
	)

	cmd := &cobra.Command{
		Use:   "import-books",
		Short: "Bulk import books from a CSV file",
		Long: `Imports books from a CSV file with the columns
title,author,isbn,publication_year,total_copies (header row required).
Rows with an ISBN already in the catalogue are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if databaseURL == "" {
				return fmt.Errorf("database URL is required (--database-url or DATABASE_URL)")
			}
			return runImport(cmd.Context(), csvPath, databaseURL, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the CSV file to import")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	cmd.MarkFlagRequired("csv")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runImport(ctx context.Context, csvPath, databaseURL string, out io.Writer) error {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Book{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	repo := pgrepo.NewPostgreSQLRepository(pgrepo.RepositoryConfig{DB: db})

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	books, err := parseBooksCSV(f)
	if err != nil {
		return err
	}

	var imported, skipped int
	for _, book := range books {
		existing, err := repo.Books().GetByISBN(ctx, book.ISBN)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check ISBN %s: %w", book.ISBN, err)
		}
		if existing != nil {
			fmt.Fprintf(out, "skipping %q: ISBN %s already exists\n", book.Title, book.ISBN)
			skipped++
			continue
		}

		if err := repo.Books().Create(ctx, book); err != nil {
			return fmt.Errorf("failed to create %q: %w", book.Title, err)
		}
		imported++
	}

	slog.Info("import finished", "imported", imported, "skipped", skipped)
	fmt.Fprintf(out, "imported %d books, skipped %d duplicates\n", imported, skipped)
	return nil
}

// parseBooksCSV reads the catalogue rows. The header row is required and
// validated so a file with reordered columns fails loudly instead of
// importing garbage.
func parseBooksCSV(r io.Reader) ([]*models.Book, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	expected := []string{"title", "author", "isbn", "publication_year", "total_copies"}
	for i, name := range expected {
		if i >= len(header) || strings.TrimSpace(strings.ToLower(header[i])) != name {
			return nil, fmt.Errorf("unexpected header: want %v", expected)
		}
	}

	var books []*models.Book
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) < 5 {
			return nil, fmt.Errorf("line %d: expected 5 columns, got %d", line, len(record))
		}

		book := &models.Book{
			Title:  strings.TrimSpace(record[0]),
			Author: strings.TrimSpace(record[1]),
			ISBN:   strings.TrimSpace(record[2]),
		}
		if book.Title == "" || book.Author == "" || book.ISBN == "" {
			return nil, fmt.Errorf("line %d: title, author, and isbn are required", line)
		}

		if year := strings.TrimSpace(record[3]); year != "" {
			n, err := strconv.Atoi(year)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid publication_year %q", line, year)
			}
			book.PublicationYear = &n
		}

		copies, err := strconv.Atoi(strings.TrimSpace(record[4]))
		if err != nil || copies < 0 {
			return nil, fmt.Errorf("line %d: invalid total_copies %q", line, record[4])
		}
		book.TotalCopies = copies
		book.AvailableCopies = copies

		books = append(books, book)
	}
	return books, nil
}
