package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslib/library-service/internal/events"
	"github.com/campuslib/library-service/internal/repositories/memory"
	"github.com/campuslib/library-service/internal/services"
	"github.com/campuslib/library-service/internal/utils"
	"github.com/campuslib/library-service/internal/validator"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewRepository()
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	serviceManager := services.NewDefaultServiceManager(
		repo,
		validator.New(),
		logger,
		events.NewMockEventPublisher(nil),
		services.LendingPolicy{MaxBorrowedBooks: 3, LoanPeriodWeeks: 4},
	)

	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(serviceManager, logger, repo.Users()).SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func registerStudent(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	w, body := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"username": username, "password": "pw", "role": "student",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func registerLibrarian(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	w, body := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"username": username, "password": "pw", "role": "librarian",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id, ok := body["user_id"].(float64)
	require.True(t, ok)
	return fmt.Sprintf("%d", int(id))
}

func createBook(t *testing.T, router *gin.Engine, librarianID, isbn string, copies int) float64 {
	t.Helper()
	w, body := doJSON(t, router, http.MethodPost, "/books", gin.H{
		"title": "Title " + isbn, "author": "Author", "isbn": isbn, "total_copies": copies,
	}, map[string]string{"X-User-ID": librarianID})
	require.Equal(t, http.StatusCreated, w.Code)
	book := body["book"].(map[string]interface{})
	return book["id"].(float64)
}

func TestRegisterEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("student gets a token and keeps it", func(t *testing.T) {
		token := registerStudent(t, router, "alice")

		w, body := doJSON(t, router, http.MethodPost, "/register", gin.H{
			"username": "alice", "password": "pw", "role": "student",
		}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Student already registered", body["message"])
		assert.Equal(t, token, body["token"])
	})

	t.Run("missing fields", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/register", gin.H{"username": "x"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing username, password, or role", body["message"])
	})

	t.Run("bad role", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/register", gin.H{
			"username": "y", "password": "pw", "role": "admin",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid role. Must be 'student' or 'librarian'", body["message"])
	})

	t.Run("duplicate librarian conflicts", func(t *testing.T) {
		registerLibrarian(t, router, "head-lib")
		w, body := doJSON(t, router, http.MethodPost, "/register", gin.H{
			"username": "head-lib", "password": "pw", "role": "librarian",
		}, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Librarian already registered", body["message"])
	})
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := registerStudent(t, router, "alice")

	w, body := doJSON(t, router, http.MethodPost, "/login", gin.H{
		"username": "alice", "password": "pw",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, token, body["token"])

	w, body = doJSON(t, router, http.MethodPost, "/login", gin.H{
		"username": "alice", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", body["message"])
}

func TestAuthGating(t *testing.T) {
	router := newTestRouter(t)
	token := registerStudent(t, router, "alice")
	librarianID := registerLibrarian(t, router, "lib")

	t.Run("no credentials", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodGet, "/books", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Authentication required or invalid credentials", body["message"])
	})

	t.Run("bogus token", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodGet, "/books", nil, map[string]string{"X-Auth-Token": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("student cannot manage the catalogue", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/books", gin.H{
			"title": "T", "author": "A", "isbn": "i-x", "total_copies": 1,
		}, map[string]string{"X-Auth-Token": token})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Access denied: librarian role required", body["message"])
	})

	t.Run("librarian cannot borrow", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/borrow/1", nil, map[string]string{"X-User-ID": librarianID})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Access denied: student role required", body["message"])
	})
}

func TestBorrowingFlow(t *testing.T) {
	router := newTestRouter(t)
	token := registerStudent(t, router, "alice")
	librarianID := registerLibrarian(t, router, "lib")
	bookID := createBook(t, router, librarianID, "i-1", 1)
	studentHeaders := map[string]string{"X-Auth-Token": token}
	librarianHeaders := map[string]string{"X-User-ID": librarianID}

	borrowPath := fmt.Sprintf("/borrow/%d", int(bookID))

	// Fresh borrow.
	w, body := doJSON(t, router, http.MethodPost, borrowPath, nil, studentHeaders)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Book borrowed successfully", body["message"])
	record := body["record"].(map[string]interface{})
	recordID := int(record["id"].(float64))
	assert.Equal(t, "borrowed", record["status"])

	// Borrowing it again is rejected.
	w, body = doJSON(t, router, http.MethodPost, borrowPath, nil, studentHeaders)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You have already borrowed this book", body["message"])

	// The student sees it in /my_books.
	req := httptest.NewRequest(http.MethodGet, "/my_books", nil)
	req.Header.Set("X-Auth-Token", token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.NotNil(t, mine[0]["book_details"])

	// Return at the desk.
	w, body = doJSON(t, router, http.MethodPost, fmt.Sprintf("/return/%d", recordID), nil, librarianHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Book returned successfully", body["message"])

	// Returning a closed record is rejected.
	w, body = doJSON(t, router, http.MethodPost, fmt.Sprintf("/return/%d", recordID), nil, librarianHeaders)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Book is not currently borrowed or reserved", body["message"])
}

func TestReservationFlow(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := registerStudent(t, router, "alice")
	bobToken := registerStudent(t, router, "bob")
	librarianID := registerLibrarian(t, router, "lib")
	bookID := int(createBook(t, router, librarianID, "i-1", 1))

	// Bob borrows the only copy; Alice can still reserve.
	w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/borrow/%d", bookID), nil, map[string]string{"X-Auth-Token": bobToken})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := doJSON(t, router, http.MethodPost, fmt.Sprintf("/reserve/%d", bookID), nil, map[string]string{"X-Auth-Token": aliceToken})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Book reserved successfully", body["message"])
	record := body["record"].(map[string]interface{})
	recordID := int(record["id"].(float64))

	// Collecting while the shelf is empty fails; the reservation held
	// nothing back.
	w, body = doJSON(t, router, http.MethodPost, fmt.Sprintf("/borrow/%d", bookID), nil, map[string]string{"X-Auth-Token": aliceToken})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No copies of this book are currently available", body["message"])

	// Cancelling someone else's reservation is a scoped 404.
	w, body = doJSON(t, router, http.MethodPost, fmt.Sprintf("/cancel_reservation/%d", recordID), nil, map[string]string{"X-Auth-Token": bobToken})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Reservation record not found or does not belong to you", body["message"])

	// The owner can cancel.
	w, body = doJSON(t, router, http.MethodPost, fmt.Sprintf("/cancel_reservation/%d", recordID), nil, map[string]string{"X-Auth-Token": aliceToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Reservation cancelled successfully", body["message"])
}

func TestReservationPickup(t *testing.T) {
	router := newTestRouter(t)
	token := registerStudent(t, router, "alice")
	librarianID := registerLibrarian(t, router, "lib")
	bookID := int(createBook(t, router, librarianID, "i-1", 1))
	headers := map[string]string{"X-Auth-Token": token}

	w, body := doJSON(t, router, http.MethodPost, fmt.Sprintf("/reserve/%d", bookID), nil, headers)
	require.Equal(t, http.StatusCreated, w.Code)
	reserved := body["record"].(map[string]interface{})

	w, body = doJSON(t, router, http.MethodPost, fmt.Sprintf("/borrow/%d", bookID), nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Reserved book collected and borrowed successfully", body["message"])

	collected := body["record"].(map[string]interface{})
	assert.Equal(t, reserved["id"], collected["id"])
	assert.Equal(t, "borrowed", collected["status"])
}

func TestBookEndpoints(t *testing.T) {
	router := newTestRouter(t)
	librarianID := registerLibrarian(t, router, "lib")
	headers := map[string]string{"X-User-ID": librarianID}
	bookID := int(createBook(t, router, librarianID, "i-1", 2))

	t.Run("duplicate isbn conflicts", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/books", gin.H{
			"title": "Other", "author": "Other", "isbn": "i-1", "total_copies": 1,
		}, headers)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Book with this ISBN already exists", body["message"])
	})

	t.Run("missing details", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/books", gin.H{"title": "T"}, headers)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required book details (title, author, isbn)", body["message"])
	})

	t.Run("get and update", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodGet, fmt.Sprintf("/books/%d", bookID), nil, headers)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "i-1", body["isbn"])

		w, body = doJSON(t, router, http.MethodPut, fmt.Sprintf("/books/%d", bookID), gin.H{
			"total_copies": 5,
		}, headers)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Book updated successfully", body["message"])
		book := body["book"].(map[string]interface{})
		assert.Equal(t, float64(5), book["total_copies"])
		assert.Equal(t, float64(5), book["available_copies"])
	})

	t.Run("missing book is 404", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodGet, "/books/999", nil, headers)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Book not found", body["message"])
	})

	t.Run("delete", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/books/%d", bookID), nil, headers)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Book deleted successfully", body["message"])
	})
}

func TestBorrowedBooksListing(t *testing.T) {
	router := newTestRouter(t)
	token := registerStudent(t, router, "alice")
	librarianID := registerLibrarian(t, router, "lib")
	bookID := int(createBook(t, router, librarianID, "i-1", 1))

	w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/borrow/%d", bookID), nil, map[string]string{"X-Auth-Token": token})
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/borrowed_books", nil)
	req.Header.Set("X-User-ID", librarianID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)

	student := records[0]["student_details"].(map[string]interface{})
	assert.Equal(t, "alice", student["username"])
	assert.NotNil(t, records[0]["book_details"])
}

func TestReportDownload(t *testing.T) {
	router := newTestRouter(t)
	token := registerStudent(t, router, "alice")
	librarianID := registerLibrarian(t, router, "lib")
	bookID := int(createBook(t, router, librarianID, "i-1", 1))

	w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/borrow/%d", bookID), nil, map[string]string{"X-Auth-Token": token})
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/reports/borrowings", nil)
	req.Header.Set("X-User-ID", librarianID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}
