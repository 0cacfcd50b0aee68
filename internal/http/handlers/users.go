package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyqr/api/internal/config"
	"github.com/studyqr/api/internal/domain/user"
	"github.com/studyqr/api/internal/service"
)

type UserDirectory interface {
	ListUsers(ctx context.Context) ([]user.User, error)
	RenameUser(ctx context.Context, id int64, newName string) (user.User, error)
	DeleteUser(ctx context.Context, id int64) (user.User, error)
}

type UsersHandler struct {
	users UserDirectory
}

func NewUsersHandler(users UserDirectory) *UsersHandler {
	return &UsersHandler{users: users}
}

func parseID(ctx *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(param), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "id must be a positive integer", nil)
		return 0, false
	}

	return id, true
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.users.ListUsers(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

func (h *UsersHandler) UpdateUserName(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req user.UpdateNameRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.RenameUser(cctx, id, req.Name)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, service.ErrInvalidInput):
			RespondBadRequest(ctx, "Name must not be empty", nil)
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	RespondData(ctx, http.StatusOK, u)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.DeleteUser(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	// prior snapshot back for confirmation
	RespondData(ctx, http.StatusOK, u)
}
