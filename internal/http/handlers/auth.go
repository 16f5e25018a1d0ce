package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/showcasehq/showcase/internal/config"
	"github.com/showcasehq/showcase/internal/domain/user"
)

type UserStore interface {
	GetByUID(ctx context.Context, uid string) (user.User, error)
	Create(ctx context.Context, req user.RegisterRequest) (user.User, error)
}

type AuthHandler struct {
	users UserStore
	log   *slog.Logger
}

func NewAuthHandler(users UserStore, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

// Register syncs an identity-provider user into the local store.
// Idempotent: a second call with the same firebaseUID returns the
// original user with a 200.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.users.GetByUID(cctx, req.FirebaseUID)

	if err == nil {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "User already exists",
			"user":    existing,
		})
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		h.log.Error("user lookup failed", "err", err)
		RespondInternal(ctx)
		return
	}

	created, err := h.users.Create(cctx, req)

	if err != nil {
		// lost a race with a concurrent register for the same uid;
		// honor idempotency by returning the winner's row
		if errors.Is(err, user.ErrDuplicate) {
			winner, readErr := h.users.GetByUID(cctx, req.FirebaseUID)

			if readErr == nil {
				ctx.JSON(http.StatusOK, gin.H{
					"message": "User already exists",
					"user":    winner,
				})
				return
			}
		}

		h.log.Error("user create failed", "err", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    created,
	})
}

func (h *AuthHandler) Profile(ctx *gin.Context) {
	uid := ctx.Query("uid")

	if uid == "" {
		RespondBadRequest(ctx, "uid query parameter is required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByUID(cctx, uid)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.Error("profile lookup failed", "err", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, u)
}
