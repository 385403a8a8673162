package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/services"
	"github.com/campuslib/library-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// Register creates a user account. Students get a token; re-registering a
// student returns the original token with a 200 instead of a 201.
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if req.Username == "" || req.Password == "" || req.Role == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing username, password, or role",
		})
		return
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid role. Must be 'student' or 'librarian'",
		})
		return
	}

	result, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyRegistered {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// Login verifies credentials and returns the caller's id, role, and token.
func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing username or password",
		})
		return
	}

	result, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
