package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toryoki/jobhub/internal/config"
	"github.com/toryoki/jobhub/internal/domain/user"
	"github.com/toryoki/jobhub/internal/http/middlewares"
	"github.com/toryoki/jobhub/internal/repo/postgres"
)

// ProfileStore is the persistence surface for self-service profile
// operations.
type ProfileStore interface {
	GetByID(ctx context.Context, id string, includeInactive bool) (user.User, error)
	UpdateProfile(ctx context.Context, id string, name, email *string) (user.User, error)
	Deactivate(ctx context.Context, id string) error
}

// UsersHandler serves the /users/me self-service endpoints.
type UsersHandler struct {
	users ProfileStore
	cfg   config.Config
}

func NewUsersHandler(users ProfileStore, cfg config.Config) *UsersHandler {
	return &UsersHandler{users: users, cfg: cfg}
}

// userResponse is the public shape of a user. Credential material never
// leaves the persistence layer.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// CallerID returns the authenticated user's id stashed by the auth
// middleware.
func CallerID(c *gin.Context) string {
	return c.GetString(middlewares.CtxUserIDKey)
}

func (h *UsersHandler) GetMe(c *gin.Context) {
	u, err := h.users.GetByID(c.Request.Context(), CallerID(c), false)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondUnAuthorized(c, "The user belonging to this token no longer exists.")
			return
		}
		RespondInternal(c, "could not load profile", err, !h.cfg.IsProd())
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(u)})
}

type UpdateMeRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email *string `json:"email" binding:"omitempty,email"`

	// Present only to detect misuse; password changes have their own route.
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
}

func (h *UsersHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if !BindJSON(c, &req) {
		return
	}

	if req.Password != nil || req.ConfirmPassword != nil {
		RespondBadRequest(c, "password_update_not_allowed",
			"This route is not for password updates. Please use /users/updatePassword.")
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), CallerID(c), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrEmailAlreadyUsed):
			RespondBadRequest(c, "email_taken", "a user with this email already exists")
		case errors.Is(err, postgres.ErrUserNotFound):
			RespondUnAuthorized(c, "The user belonging to this token no longer exists.")
		default:
			RespondInternal(c, "could not update profile", err, !h.cfg.IsProd())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(u)})
}

// DeleteMe deactivates the account. The row survives for audit purposes
// but disappears from every active-only lookup.
func (h *UsersHandler) DeleteMe(c *gin.Context) {
	if err := h.users.Deactivate(c.Request.Context(), CallerID(c)); err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondUnAuthorized(c, "The user belonging to this token no longer exists.")
			return
		}
		RespondInternal(c, "could not deactivate account", err, !h.cfg.IsProd())
		return
	}
	c.Status(http.StatusNoContent)
}
