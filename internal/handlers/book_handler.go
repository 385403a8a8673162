package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslib/library-service/internal/repositories"
	"github.com/campuslib/library-service/internal/services"
	"github.com/campuslib/library-service/internal/utils"
)

type BookHandler struct {
	BaseHandler
	bookService services.BookService
}

func NewBookHandler(bookService services.BookService, logger utils.Logger) *BookHandler {
	return &BookHandler{
		BaseHandler: NewBaseHandler(logger),
		bookService: bookService,
	}
}

// CreateBook adds a title to the catalogue.
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req services.BookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if req.Title == "" || req.Author == "" || req.ISBN == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing required book details (title, author, isbn)",
		})
		return
	}

	book, err := h.bookService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "book created", "book_id", book.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Book added successfully",
		"book":    book,
	})
}

// ListBooks lists the catalogue, optionally filtered by title, author, or
// isbn query parameters.
func (h *BookHandler) ListBooks(c *gin.Context) {
	filters := repositories.BookFilters{
		Title:  c.Query("title"),
		Author: c.Query("author"),
		ISBN:   c.Query("isbn"),
	}

	books, err := h.bookService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, books)
}

// GetBook fetches one book by id.
func (h *BookHandler) GetBook(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	book, err := h.bookService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

// UpdateBook applies a partial update. Changing total_copies shifts the
// available count by the same delta.
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.BookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	book, err := h.bookService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book updated successfully",
		"book":    book,
	})
}

// DeleteBook removes a book. Books with active borrowings or reservations
// cannot be deleted.
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.bookService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "book deleted", "book_id", id)
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}
