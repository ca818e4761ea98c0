package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/gateway/middleware"
	"vgroup-backoffice/internal/services/user"
)

type UserService interface {
	Login(ctx context.Context, email, password string) (*user.LoginResult, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, role models.UserRole, page *database.Pagination) ([]models.User, error)
	Create(ctx context.Context, in user.CreateInput) (*models.User, error)
	Update(ctx context.Context, actorID, id int64, in user.UpdateInput) (*models.User, error)
}

type UserHTTPHandler struct {
	users UserService
}

func NewUserHTTPHandler(users UserService) *UserHTTPHandler {
	return &UserHTTPHandler{users: users}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --- Authentication ---

func (h *UserHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Login successful", result))
}

func (h *UserHTTPHandler) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.users.Get(ctx, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("User retrieved successfully", u))
}

// --- User Management ---

func (h *UserHTTPHandler) ListUsers(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.users.List(ctx, models.UserRole(c.Query("role")), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Users retrieved successfully", users, page))
}

func (h *UserHTTPHandler) GetUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.users.Get(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("User retrieved successfully", u))
}

func (h *UserHTTPHandler) CreateUser(c *gin.Context) {
	var req user.CreateInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.users.Create(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("User created successfully", u))
}

func (h *UserHTTPHandler) UpdateUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	var req user.UpdateInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.users.Update(ctx, middleware.CurrentUserID(c), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("User updated successfully", u))
}
