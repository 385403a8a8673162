package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
	"github.com/campuslib/library-service/internal/services"
	"github.com/campuslib/library-service/internal/utils"
)

type HandlerManager struct {
	userHandler      *UserHandler
	bookHandler      *BookHandler
	borrowingHandler *BorrowingHandler
	reportHandler    *ReportHandler
	authMiddleware   *TokenAuthMiddleware

	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	userRepo repositories.UserRepository,
) *HandlerManager {
	return &HandlerManager{
		userHandler:      NewUserHandler(serviceManager.Users(), logger),
		bookHandler:      NewBookHandler(serviceManager.Books(), logger),
		borrowingHandler: NewBorrowingHandler(serviceManager.Borrowings(), logger),
		reportHandler:    NewReportHandler(serviceManager.Reports(), logger),
		authMiddleware:   NewTokenAuthMiddleware(userRepo),
		serviceManager:   serviceManager,
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Public endpoints
	router.POST("/register", hm.userHandler.Register)
	router.POST("/login", hm.userHandler.Login)

	authed := router.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Catalogue reads are open to any authenticated user
		authed.GET("/books", hm.bookHandler.ListBooks)
		authed.GET("/books/:id", hm.bookHandler.GetBook)

		// Catalogue management is librarian-only
		librarian := hm.authMiddleware.RequireRoleMiddleware(models.RoleLibrarian)
		authed.POST("/books", librarian, hm.bookHandler.CreateBook)
		authed.PUT("/books/:id", librarian, hm.bookHandler.UpdateBook)
		authed.DELETE("/books/:id", librarian, hm.bookHandler.DeleteBook)

		// Borrowing lifecycle
		student := hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent)
		authed.POST("/borrow/:book_id", student, hm.borrowingHandler.BorrowBook)
		authed.POST("/reserve/:book_id", student, hm.borrowingHandler.ReserveBook)
		authed.POST("/cancel_reservation/:id", student, hm.borrowingHandler.CancelReservation)
		authed.GET("/my_books", student, hm.borrowingHandler.MyBooks)

		authed.POST("/return/:id", librarian, hm.borrowingHandler.ReturnBook)
		authed.GET("/borrowed_books", librarian, hm.borrowingHandler.BorrowedBooks)
		authed.GET("/reports/borrowings", librarian, hm.reportHandler.BorrowingsReport)
	}

	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "library-service",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "library-service",
		})
	})
}
