package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslib/library-service/internal/services"
	"github.com/campuslib/library-service/internal/utils"
)

type BorrowingHandler struct {
	BaseHandler
	borrowingService services.BorrowingService
}

func NewBorrowingHandler(borrowingService services.BorrowingService, logger utils.Logger) *BorrowingHandler {
	return &BorrowingHandler{
		BaseHandler:      NewBaseHandler(logger),
		borrowingService: borrowingService,
	}
}

// BorrowBook lends a copy to the calling student. Collecting a reservation
// answers 200 on the reused record; a fresh borrow answers 201.
func (h *BorrowingHandler) BorrowBook(c *gin.Context) {
	bookID := h.parseIDParam(c, "book_id")
	if bookID == 0 {
		return
	}
	user := CurrentUser(c)

	result, err := h.borrowingService.Borrow(c.Request.Context(), user.ID, bookID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if result.FromReservation {
		c.JSON(http.StatusOK, gin.H{
			"message": "Reserved book collected and borrowed successfully",
			"record":  result.Record,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Book borrowed successfully",
		"record":  result.Record,
	})
}

// ReserveBook registers the student's claim without holding a copy.
func (h *BorrowingHandler) ReserveBook(c *gin.Context) {
	bookID := h.parseIDParam(c, "book_id")
	if bookID == 0 {
		return
	}
	user := CurrentUser(c)

	record, err := h.borrowingService.Reserve(c.Request.Context(), user.ID, bookID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Book reserved successfully",
		"record":  record,
	})
}

// CancelReservation closes one of the caller's reservations.
func (h *BorrowingHandler) CancelReservation(c *gin.Context) {
	recordID := h.parseIDParam(c, "id")
	if recordID == 0 {
		return
	}
	user := CurrentUser(c)

	record, err := h.borrowingService.CancelReservation(c.Request.Context(), user.ID, recordID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reservation cancelled successfully",
		"record":  record,
	})
}

// ReturnBook closes an active record; librarians call this at the desk.
func (h *BorrowingHandler) ReturnBook(c *gin.Context) {
	recordID := h.parseIDParam(c, "id")
	if recordID == 0 {
		return
	}

	record, err := h.borrowingService.Return(c.Request.Context(), recordID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book returned successfully",
		"record":  record,
	})
}

// MyBooks lists the calling student's active records with book details.
func (h *BorrowingHandler) MyBooks(c *gin.Context) {
	user := CurrentUser(c)

	records, err := h.borrowingService.MyBooks(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// BorrowedBooks lists every active record with book and student details.
func (h *BorrowingHandler) BorrowedBooks(c *gin.Context) {
	records, err := h.borrowingService.ListActive(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}
