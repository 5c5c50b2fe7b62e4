package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/courseapi/internal/actorctx"
	"github.com/geocoder89/courseapi/internal/domain/course"
	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// Fake repository implementations of the handler interfaces

type fakeUsersRepo struct {
	createFn func(ctx context.Context, u user.User) (user.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return u, nil
}

type fakeCoursesRepo struct {
	createFn func(ctx context.Context, c course.Course) (course.Course, error)
	listFn   func(ctx context.Context) ([]course.Course, error)
	getFn    func(ctx context.Context, id string) (course.Course, error)
	updateFn func(ctx context.Context, c course.Course) (course.Course, error)
	deleteFn func(ctx context.Context, id, ownerID string) error
}

func (f *fakeCoursesRepo) Create(ctx context.Context, c course.Course) (course.Course, error) {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return c, nil
}

func (f *fakeCoursesRepo) List(ctx context.Context) ([]course.Course, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []course.Course{}, nil
}

func (f *fakeCoursesRepo) GetByID(ctx context.Context, id string) (course.Course, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return course.Course{}, course.ErrNotFound
}

func (f *fakeCoursesRepo) Update(ctx context.Context, c course.Course) (course.Course, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, c)
	}
	return c, nil
}

func (f *fakeCoursesRepo) Delete(ctx context.Context, id, ownerID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, ownerID)
	}
	return nil
}

// plainHasher keeps handler tests away from bcrypt
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Matches(plain, hash string) bool   { return hash == "hashed:"+plain }

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h...)

	return r
}

// as stands in for the auth middleware and, when c is non-nil, the ownership guard.
func as(u user.User, c *course.Course) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rctx := actorctx.WithUser(ctx.Request.Context(), u)
		if c != nil {
			rctx = actorctx.WithCourse(rctx, *c)
		}
		ctx.Request = ctx.Request.WithContext(rctx)
		ctx.Next()
	}
}

func testUser() user.User {
	return user.User{
		ID:           newUUID(),
		FirstName:    "Joe",
		LastName:     "Smith",
		EmailAddress: "joe@smith.com",
		PasswordHash: "hashed:joepassword",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

type errorsBody struct {
	Errors []string `json:"errors"`
}

type envelopeBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeErrors(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()

	var body errorsBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal errors body: %v body=%s", err, w.Body.String())
	}
	return body.Errors
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelopeBody {
	t.Helper()

	var body envelopeBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal error envelope: %v body=%s", err, w.Body.String())
	}
	return body
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
