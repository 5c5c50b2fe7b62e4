package integration_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/geocoder89/courseapi/internal/cache"
	"github.com/geocoder89/courseapi/internal/db"
	apphttp "github.com/geocoder89/courseapi/internal/http"
	"github.com/geocoder89/courseapi/internal/observability"
	"github.com/geocoder89/courseapi/internal/repo/memory"
	"github.com/geocoder89/courseapi/internal/repo/postgres"
	"github.com/geocoder89/courseapi/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testOptions() apphttp.Options {
	return apphttp.Options{
		Env:          "test",
		ServiceName:  "courseapi-test",
		CORSOrigins:  []string{"*"},
		MaxBodyBytes: 1 << 20,
	}
}

func setupMemoryRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUsersRepo()
	courses := memory.NewCoursesRepo(users)

	return apphttp.NewRouter(testLogger(), testOptions(), apphttp.Deps{
		Users:   users,
		Courses: courses,
		Hasher:  security.NewBcryptHasher(security.MinCost),
		Cache:   cache.NewMemory(cache.DefaultTTL),
		Prom:    observability.NewProm(prometheus.NewRegistry()),
	})
}

// setupPostgresRouter needs TEST_DB_DSN pointing at a disposable database.
func setupPostgresRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	if _, err := pool.Exec(ctx, `TRUNCATE courses, users CASCADE`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	prom := observability.NewProm(prometheus.NewRegistry())

	return apphttp.NewRouter(testLogger(), testOptions(), apphttp.Deps{
		Users:   postgres.NewUsersRepo(pool, prom),
		Courses: postgres.NewCoursesRepo(pool, prom),
		Hasher:  security.NewBcryptHasher(security.MinCost),
		Cache:   cache.Noop{},
		Prom:    prom,
		Ping:    func(ctx context.Context) error { return pool.Ping(ctx) },
	})
}

// helpers

type client struct {
	t      *testing.T
	router http.Handler
}

func (c client) do(method, path, auth string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func basic(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func decodeErrors(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()

	var body struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal errors body: %v body=%s", err, w.Body.String())
	}
	return body.Errors
}

type courseJSON struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	EstimatedTime   *string `json:"estimatedTime"`
	MaterialsNeeded *string `json:"materialsNeeded"`
	Owner           struct {
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		EmailAddress string `json:"emailAddress"`
	} `json:"owner"`
}

func decodeCourse(t *testing.T, w *httptest.ResponseRecorder) courseJSON {
	t.Helper()

	var c courseJSON
	if err := json.Unmarshal(w.Body.Bytes(), &c); err != nil {
		t.Fatalf("failed to unmarshal course: %v body=%s", err, w.Body.String())
	}
	return c
}
