package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkaraca/userhub/internal/auth"
	"github.com/mkaraca/userhub/internal/config"
	"github.com/mkaraca/userhub/internal/domain/user"
	"github.com/mkaraca/userhub/internal/security"
)

// UserStore is the persistence contract shared by the auth and users
// handlers. Both the postgres and the in-memory repos satisfy it.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string, age *int) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type AuthHandler struct {
	store UserStore
	jwt   *auth.Manager
	log   *slog.Logger
}

func NewAuthHandler(store UserStore, jwtManager *auth.Manager, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		store: store,
		jwt:   jwtManager,
		log:   log,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.log.Error("hash password", "err", err)
		RespondInternal(ctx, "Could not register user")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// No existence pre-check here: the store's unique email index is the
	// only guard that holds under concurrent registration.
	_, err = h.store.Create(cctx, req.Name, req.Email, hash, req.Age)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "email_taken", "Email already in use", nil)
			return
		}

		h.log.Error("create user", "err", err)
		RespondInternal(ctx, "Could not register user")
		return
	}

	// no token on registration; the caller logs in separately
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.store.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// 404 for an unknown account, 400 for a bad password. The split
			// leaks account existence but is part of the published contract.
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.Error("lookup user", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondBadRequest(ctx, "invalid_credentials", "Invalid credentials", nil)
		return
	}

	token, err := h.jwt.GenerateToken(foundUser.ID)

	if err != nil {
		h.log.Error("sign token", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}
