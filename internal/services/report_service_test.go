package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteActiveRecordsReport(t *testing.T) {
	deps := newServiceDeps(t)
	borrowings := deps.borrowingService()
	svc := NewReportService(borrowings, deps.logger)
	ctx := context.Background()

	alice := deps.seedStudent(t, "alice")
	book := deps.seedBook(t, "isbn-1", 2)
	_, err := borrowings.Borrow(ctx, alice.ID, book.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteActiveRecordsReport(ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2) // header plus one record

	assert.Equal(t, "Record ID", rows[0][0])
	assert.Equal(t, "borrowed", rows[1][1])
	assert.Equal(t, "isbn-1", rows[1][3])
	assert.Equal(t, "alice", rows[1][4])
}

func TestWriteActiveRecordsReportEmpty(t *testing.T) {
	deps := newServiceDeps(t)
	svc := NewReportService(deps.borrowingService(), deps.logger)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteActiveRecordsReport(context.Background(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
