package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/courseapi/internal/actorctx"
	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/geocoder89/courseapi/internal/http/respond"
	"github.com/geocoder89/courseapi/internal/observability"
	"github.com/geocoder89/courseapi/internal/security"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type AuthMiddleware struct {
	users     CredentialStore
	hasher    security.Hasher
	prom      *observability.Prom
	timeout   time.Duration
	dummyHash string
}

// fallbackDummyHash is a well-formed cost 10 bcrypt hash, used when the
// hasher cannot produce one at start-up.
const fallbackDummyHash = "$2y$10$.vGA1O9wmRjrwAVXD98HNOgsNpDczlqm3Jq7KnEd1rVAGv3Fykk1a"

func NewAuthMiddleware(users CredentialStore, hasher security.Hasher, prom *observability.Prom) *AuthMiddleware {
	// compared against when the identifier is unknown so that both rejection
	// paths pay for one hash comparison
	dummy, err := hasher.Hash("courseapi-unknown-user")
	if err != nil || dummy == "" {
		dummy = fallbackDummyHash
	}

	return &AuthMiddleware{
		users:     users,
		hasher:    hasher,
		prom:      prom,
		timeout:   2 * time.Second,
		dummyHash: dummy,
	}
}

// RequireAuth verifies Basic credentials and binds the resolved user to the
// request context. Every credential failure produces the same 401 body.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := m.Authenticate(c.Request.Context(), c.Request)
		if err != nil {
			var apiErr *apierr.Error
			if errors.As(err, &apiErr) && apiErr.Kind == apierr.KindUnauthenticated {
				m.observe("rejected")
				respond.Abort(c, apiErr)
				return
			}

			m.observe("error")
			respond.Fail(c, err)
			return
		}

		m.observe("ok")
		c.Request = c.Request.WithContext(actorctx.WithUser(c.Request.Context(), u))

		c.Next()
	}
}

// Authenticate resolves the user named by the Authorization header. Missing or
// malformed headers, unknown identifiers and wrong secrets all return
// apierr.Unauthenticated; store failures are returned as they are.
func (m *AuthMiddleware) Authenticate(ctx context.Context, req *http.Request) (user.User, error) {
	email, password, ok := req.BasicAuth()
	if !ok || email == "" {
		return user.User{}, apierr.Unauthenticated()
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	found, err := m.users.GetByEmail(cctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			m.hasher.Matches(password, m.dummyHash)
			return user.User{}, apierr.Unauthenticated()
		}
		return user.User{}, err
	}

	if !m.hasher.Matches(password, found.PasswordHash) {
		return user.User{}, apierr.Unauthenticated()
	}

	return found, nil
}

func (m *AuthMiddleware) observe(result string) {
	if m.prom != nil {
		m.prom.AuthResults.WithLabelValues(result).Inc()
	}
}
