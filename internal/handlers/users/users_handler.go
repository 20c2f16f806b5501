// internal/handlers/users/users_handler.go
package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rbadmin/internal/domain/user"
	"rbadmin/internal/middleware"
	"rbadmin/internal/pkg/response"
	usersvc "rbadmin/internal/service/users"
)

type UserHandler struct {
	userService *usersvc.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *usersvc.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// ListUsers handles GET /users?type=clients|members
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q user.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	rows, err := h.userService.List(c.Request.Context(), middleware.MustGetHandle(c), q)
	if err != nil {
		response.FromError(c, err, "failed to list users")
		return
	}
	response.Paginated(c, "users retrieved", rows, gin.H{
		"type":     q.Type,
		"page":     q.Page,
		"per_page": q.PerPage,
		"count":    len(rows),
	})
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	data, err := h.userService.Get(c.Request.Context(), middleware.MustGetHandle(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "failed to load user")
		return
	}
	response.Success(c, http.StatusOK, "user retrieved", data)
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var form user.UpdateForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	data, err := h.userService.Update(c.Request.Context(), middleware.MustGetHandle(c), c.Param("id"), form)
	if err != nil {
		response.FromError(c, err, "failed to update user")
		return
	}
	response.Success(c, http.StatusOK, "user updated", data)
}

// GetBalances handles GET /users/:id/balances
func (h *UserHandler) GetBalances(c *gin.Context) {
	data, err := h.userService.Balances(c.Request.Context(), middleware.MustGetHandle(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "failed to load balances")
		return
	}
	response.Success(c, http.StatusOK, "balances retrieved", data)
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var form user.RegisterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	data, err := h.userService.Create(c.Request.Context(), middleware.MustGetHandle(c), form)
	if err != nil {
		var verr *usersvc.ValidationError
		if errors.As(err, &verr) {
			response.FieldErrors(c, verr.Message, verr.Fields)
			return
		}
		h.logger.Error("user creation failed", zap.Error(err))
		response.FromError(c, err, "failed to create user")
		return
	}
	response.Success(c, http.StatusCreated, "user created", data)
}
