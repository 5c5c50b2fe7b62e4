package middlewares_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/courseapi/internal/domain/course"
	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCredentialStore struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	calls        int
}

func (f *fakeCredentialStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	f.calls++
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

type fakeCourseFinder struct {
	getFn func(ctx context.Context, id string) (course.Course, error)
	calls int
}

func (f *fakeCourseFinder) GetByID(ctx context.Context, id string) (course.Course, error) {
	f.calls++
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return course.Course{}, course.ErrNotFound
}

// plainHasher counts comparisons so tests can see both rejection paths pay for one.
type plainHasher struct {
	matches int
}

func (h *plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (h *plainHasher) Matches(plain, hash string) bool {
	h.matches++
	return hash == "hashed:"+plain
}

func basic(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal error envelope: %v body=%s", err, w.Body.String())
	}
	return body.Error.Message
}
