package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyqr/api/internal/auth"
	"github.com/studyqr/api/internal/config"
	"github.com/studyqr/api/internal/domain/user"
	"github.com/studyqr/api/internal/service"
)

// Accounts is the slice of the user service the auth endpoints need.
type Accounts interface {
	Register(ctx context.Context, name, email, password string) (user.User, error)
	Login(ctx context.Context, email, password string) (user.User, error)
}

type AuthHandler struct {
	accounts Accounts
	jwt      *auth.Manager
}

func NewAuthHandler(accounts Accounts, jwt *auth.Manager) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		jwt:      jwt,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.accounts.Register(cctx, req.Name, req.Email, req.Password)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondConflict(ctx, "email_taken", "Email is already in use.")
		case errors.Is(err, service.ErrInvalidInput):
			RespondBadRequest(ctx, "Name, email and password are required.", nil)
		default:
			RespondInternal(ctx, "Could not create user")
		}
		return
	}

	RespondData(ctx, http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.accounts.Login(cctx, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(u.ID, u.Email, u.Name)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{
		"userId":      u.ID,
		"userName":    u.Name,
		"accessToken": accessToken,
	})
}
