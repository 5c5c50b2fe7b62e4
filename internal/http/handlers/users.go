package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/courseapi/internal/actorctx"
	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/geocoder89/courseapi/internal/http/respond"
	"github.com/geocoder89/courseapi/internal/security"
	"github.com/gin-gonic/gin"
)

type UsersCreator interface {
	Create(ctx context.Context, u user.User) (user.User, error)
}

type UsersHandler struct {
	users   UsersCreator
	hasher  security.Hasher
	timeout time.Duration
}

func NewUsersHandler(users UsersCreator, hasher security.Hasher) *UsersHandler {
	return &UsersHandler{users: users, hasher: hasher, timeout: 5 * time.Second}
}

// CurrentUser returns the caller resolved by the auth middleware.
func (h *UsersHandler) CurrentUser(ctx *gin.Context) {
	identity, ok := actorctx.UserFrom(ctx.Request.Context())
	if !ok {
		respond.Abort(ctx, apierr.Unauthenticated())
		return
	}

	ctx.JSON(http.StatusOK, identity.Summary())
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := user.New(req, h.hasher)
	if err != nil {
		respond.WriteError(ctx, err)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	// the store's unique index is the only uniqueness check
	if _, err := h.users.Create(cctx, u); err != nil {
		respond.WriteError(ctx, err)
		return
	}

	ctx.Header("Location", "/")
	ctx.Status(http.StatusCreated)
}
