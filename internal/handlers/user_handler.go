package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/revisa-edu/assessment-service/internal/repositories"
	"github.com/revisa-edu/assessment-service/internal/services"
	"github.com/revisa-edu/assessment-service/internal/utils"
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

// GetUser returns one user profile
// @Summary Get user
// @Description Returns a user; students may only read themselves
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Fetching user", "target_user_id", id)

	user, err := h.userService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers lists users, reviewer roles only
// @Summary List users
// @Description Lists users with optional role and search filters
// @Tags users
// @Produce json
// @Param role query string false "Role filter (student, tutor, admin)"
// @Param search query string false "Name or email search"
// @Success 200 {object} PaginatedResponse
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := repositories.UserFilters{
		Search: c.Query("search"),
	}
	filters.Limit, filters.Offset = parseLimitOffset(c)

	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		filters.Role = &role
	}

	h.LogRequest(c, "Listing users")

	users, total, err := h.userService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{Items: users, Total: total})
}
