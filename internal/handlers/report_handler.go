package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuslib/library-service/internal/services"
	"github.com/campuslib/library-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// BorrowingsReport downloads the active borrowings as a spreadsheet. The
// report is buffered so a mid-generation failure still yields a clean JSON
// error instead of a truncated file.
func (h *ReportHandler) BorrowingsReport(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reportService.WriteActiveRecordsReport(c.Request.Context(), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := "borrowings-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
