package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/campuslib/library-service/internal/utils"
)

const reportSheet = "Active Borrowings"

type reportService struct {
	borrowings BorrowingService
	logger     utils.Logger
}

func NewReportService(borrowings BorrowingService, logger utils.Logger) ReportService {
	return &reportService{borrowings: borrowings, logger: logger}
}

// WriteActiveRecordsReport renders the current active borrowings and
// reservations as a spreadsheet, one row per record.
func (s *reportService) WriteActiveRecordsReport(ctx context.Context, w io.Writer) error {
	records, err := s.borrowings.ListActive(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", reportSheet)

	headers := []string{"Record ID", "Status", "Book Title", "ISBN", "Student", "Borrow Date", "Due Date"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(reportSheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, record := range records {
		student := ""
		if record.StudentDetails != nil {
			student = record.StudentDetails.Username
		}
		values := []interface{}{
			record.ID,
			string(record.Status),
			record.BookDetails.Title,
			record.BookDetails.ISBN,
			student,
			formatDate(record.BorrowDate),
			formatDate(record.DueDate),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(reportSheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	s.logger.Info("report generated", "records", len(records))
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
