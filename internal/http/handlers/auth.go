package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toryoki/jobhub/internal/auth"
	"github.com/toryoki/jobhub/internal/config"
	"github.com/toryoki/jobhub/internal/domain/user"
	"github.com/toryoki/jobhub/internal/jobs"
	"github.com/toryoki/jobhub/internal/mail"
	"github.com/toryoki/jobhub/internal/repo/postgres"
	"github.com/toryoki/jobhub/internal/security"
)

// UserStore is the persistence surface the auth gateway needs.
type UserStore interface {
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
	GetByEmail(ctx context.Context, email string, includeInactive bool) (user.User, error)
	GetByID(ctx context.Context, id string, includeInactive bool) (user.User, error)
	GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
}

// MailEnqueuer schedules a mail job for asynchronous delivery.
type MailEnqueuer interface {
	Enqueue(ctx context.Context, t jobs.JobType, payload any) error
}

// AuthHandler implements signup, login and the password lifecycle.
type AuthHandler struct {
	users  UserStore
	tokens *auth.Manager
	mailer mail.Mailer
	mailq  MailEnqueuer
	cfg    config.Config
	log    *slog.Logger
}

func NewAuthHandler(users UserStore, tokens *auth.Manager, mailer mail.Mailer, mailq MailEnqueuer, cfg config.Config, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, mailer: mailer, mailq: mailq, cfg: cfg, log: log}
}

type SignUpRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	Role            string `json:"role" binding:"omitempty,oneof=user hr-lead hr admin"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !BindJSON(c, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondInternal(c, "could not create user", err, !h.cfg.IsProd())
		return
	}

	role := req.Role
	if role == "" {
		role = auth.DefaultRole
	}

	u, err := h.users.Create(c.Request.Context(), user.CreateParams{
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondBadRequest(c, "email_taken", "a user with this email already exists")
			return
		}
		RespondInternal(c, "could not create user", err, !h.cfg.IsProd())
		return
	}

	h.enqueueMail(c.Request.Context(), jobs.JobWelcomeEmail, jobs.WelcomeEmailPayload{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
	})

	h.sendToken(c, u, http.StatusCreated)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !BindJSON(c, &req) {
		return
	}

	u, err := h.users.GetByEmail(c.Request.Context(), req.Email, false)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondUnAuthorized(c, "Incorrect email or password")
			return
		}
		RespondInternal(c, "could not log in", err, !h.cfg.IsProd())
		return
	}

	if !security.CheckPassword(u.PasswordHash, req.Password) {
		RespondUnAuthorized(c, "Incorrect email or password")
		return
	}

	h.sendToken(c, u, http.StatusOK)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a single-use reset token and mails it to the
// user. The mail is sent synchronously: if delivery fails the stored
// token is cleared again so no orphaned token survives.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !BindJSON(c, &req) {
		return
	}

	u, err := h.users.GetByEmail(c.Request.Context(), req.Email, false)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(c, "There is no user with that email address.")
			return
		}
		RespondInternal(c, "could not process request", err, !h.cfg.IsProd())
		return
	}

	secret, secretHash, expiresAt, err := auth.GenerateResetToken()
	if err != nil {
		RespondInternal(c, "could not process request", err, !h.cfg.IsProd())
		return
	}

	if err := h.users.SetResetToken(c.Request.Context(), u.ID, secretHash, expiresAt); err != nil {
		RespondInternal(c, "could not process request", err, !h.cfg.IsProd())
		return
	}

	resetURL := h.cfg.AppBaseURL + "/users/resetPassword/" + secret
	msg := mail.PasswordResetMessage(u.Email, resetURL)

	sendCtx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	if err := h.mailer.Send(sendCtx, msg); err != nil {
		h.log.Error("reset mail delivery failed", "user_id", u.ID, "error", err)
		// Undo the token so a later attempt starts clean. Uses a fresh
		// context: the cleanup must run even if the request context died.
		clearCtx, clearCancel := config.WithTimeout(5 * time.Second)
		defer clearCancel()
		if clearErr := h.users.ClearResetToken(clearCtx, u.ID); clearErr != nil {
			h.log.Error("reset token rollback failed", "user_id", u.ID, "error", clearErr)
		}
		RespondInternal(c, "There was an error sending the email. Try again later.", err, !h.cfg.IsProd())
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Token sent to email"})
}

type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

// ResetPassword consumes a reset token from the URL and sets a new
// password. The token is single-use: setting the password clears it.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !BindJSON(c, &req) {
		return
	}

	tokenHash := auth.HashResetToken(c.Param("token"))
	u, err := h.users.GetByResetTokenHash(c.Request.Context(), tokenHash, time.Now().UTC())
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondBadRequest(c, "invalid_reset_token", "Token is invalid or has expired")
			return
		}
		RespondInternal(c, "could not reset password", err, !h.cfg.IsProd())
		return
	}

	if err := h.setPassword(c.Request.Context(), u.ID, req.Password); err != nil {
		RespondInternal(c, "could not reset password", err, !h.cfg.IsProd())
		return
	}

	h.enqueueMail(c.Request.Context(), jobs.JobPasswordChangedEmail, jobs.PasswordChangedEmailPayload{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		ChangedAt: time.Now().UTC(),
	})

	h.sendToken(c, u, http.StatusOK)
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

// UpdatePassword lets a logged-in user rotate their password after
// re-proving the current one.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if !BindJSON(c, &req) {
		return
	}

	userID := CallerID(c)
	u, err := h.users.GetByID(c.Request.Context(), userID, false)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondUnAuthorized(c, "The user belonging to this token no longer exists.")
			return
		}
		RespondInternal(c, "could not update password", err, !h.cfg.IsProd())
		return
	}

	if !security.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		RespondUnAuthorized(c, "Your current password is wrong.")
		return
	}

	if err := h.setPassword(c.Request.Context(), u.ID, req.NewPassword); err != nil {
		RespondInternal(c, "could not update password", err, !h.cfg.IsProd())
		return
	}

	h.enqueueMail(c.Request.Context(), jobs.JobPasswordChangedEmail, jobs.PasswordChangedEmailPayload{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		ChangedAt: time.Now().UTC(),
	})

	h.sendToken(c, u, http.StatusOK)
}

// setPassword hashes and stores a new password. The change timestamp is
// backdated one second so a token minted in the same second as the
// change still fails the staleness check.
func (h *AuthHandler) setPassword(ctx context.Context, userID, plain string) error {
	hash, err := security.HashPassword(plain)
	if err != nil {
		return err
	}
	changedAt := time.Now().UTC().Add(-1 * time.Second)
	return h.users.UpdatePassword(ctx, userID, hash, changedAt)
}

// sendToken issues a fresh session token, sets it as a cookie and echoes
// it in the body alongside the user.
func (h *AuthHandler) sendToken(c *gin.Context, u user.User, status int) {
	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		RespondInternal(c, "could not issue session token", err, !h.cfg.IsProd())
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("jwt", token, int(h.tokens.TTL().Seconds()), "/", "", h.cfg.IsProd(), true)

	c.JSON(status, gin.H{
		"status": "success",
		"token":  token,
		"user":   newUserResponse(u),
	})
}

// Mail jobs are best-effort: a queue hiccup must not fail the request
// that triggered the mail.
func (h *AuthHandler) enqueueMail(ctx context.Context, t jobs.JobType, payload any) {
	if h.mailq == nil {
		return
	}
	if err := h.mailq.Enqueue(ctx, t, payload); err != nil {
		h.log.Error("mail enqueue failed", "job_type", string(t), "error", err)
	}
}
