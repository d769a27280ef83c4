package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-admin-service/internal/domain/user"
	"user-admin-service/internal/usecase/user"
	apperrors "user-admin-service/pkg/errors"
	"user-admin-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// queryInt parses an integer query parameter, falling back to def when it is
// absent or not a number.
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	req := user.ListUsersRequest{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		PageIndex: queryInt(c, "pageIndex", 0),
		PageSize:  queryInt(c, "pageSize", domain.DefaultPageSize),
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUser handles GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}

	u, err := h.uc.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, u)
}

// UpdateUser handles PATCH and PUT /api/users/:id. Both merge the supplied
// fields onto the stored user.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req user.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	req.ID = id

	u, err := h.uc.UpdateUser(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// DeleteUser handles DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id}); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid user id", zap.String("id", idStr))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a valid number",
		})
		return 0, false
	}
	return id, true
}

func (h *UserHandler) badBody(c *gin.Context, err error) {
	logger.WithContext(c.Request.Context(), h.log).Warn("invalid request body", zap.Error(err))

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "body_too_large",
			Message: "request body is too large",
		})
		return
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_body",
		Message: "request body must be a JSON object",
	})
}

// handleError maps typed application errors to HTTP responses. Internal
// error text is logged, never returned.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	status := apperrors.StatusOf(err)

	switch status {
	case http.StatusBadRequest:
		c.JSON(status, ErrorResponse{Error: "validation_error", Message: validationMessage(err)})
	case http.StatusNotFound:
		c.JSON(status, ErrorResponse{Error: "not_found", Message: err.Error()})
	default:
		logger.WithContext(c.Request.Context(), h.log).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "internal server error",
		})
	}
}

func validationMessage(err error) string {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
