package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/geocoder89/courseapi/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestCreateUserHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		createErr    error
		wantStatus   int
		wantLocation string
		wantErrors   []string
		wantCreated  bool
	}{
		{
			name:         "valid user",
			body:         `{"firstName":"Joe","lastName":"Smith","emailAddress":"Joe@Smith.com","password":"joepassword"}`,
			wantStatus:   http.StatusCreated,
			wantLocation: "/",
			wantCreated:  true,
		},
		{
			name:       "empty first name",
			body:       `{"firstName":"","lastName":"Smith","emailAddress":"joe@smith.com","password":"pw"}`,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"Please provide a first name"},
		},
		{
			name:       "empty body reports every required field",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{
				"A first name is required",
				"A last name is required",
				"An email address is required",
				"A password is required",
			},
		},
		{
			name:       "duplicate email",
			body:       `{"firstName":"Joe","lastName":"Smith","emailAddress":"joe@smith.com","password":"pw"}`,
			createErr:  user.ErrEmailTaken(),
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{user.MsgEmailTaken},
			// the store was called and refused
			wantCreated: true,
		},
		{
			name:       "malformed json",
			body:       `{"firstName":`,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{handlers.MsgInvalidJSON},
		},
		{
			name:       "wrong type",
			body:       `{"firstName":5}`,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"firstName must be of type string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored *user.User
			repo := &fakeUsersRepo{
				createFn: func(ctx context.Context, u user.User) (user.User, error) {
					stored = &u
					if tt.createErr != nil {
						return user.User{}, tt.createErr
					}
					return u, nil
				},
			}

			h := handlers.NewUsersHandler(repo, plainHasher{})
			r := setupRouter(http.MethodPost, "/users", h.CreateUser)

			req := httptest.NewRequest(http.MethodPost, "/users", jsonBody(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if got := w.Header().Get("Location"); got != tt.wantLocation {
				t.Fatalf("got Location %q, want %q", got, tt.wantLocation)
			}

			if (stored != nil) != tt.wantCreated {
				t.Fatalf("store called = %v, want %v", stored != nil, tt.wantCreated)
			}

			if tt.wantStatus == http.StatusCreated {
				if w.Body.Len() != 0 {
					t.Fatalf("expected empty body, got %s", w.Body.String())
				}
				if stored.EmailAddress != "joe@smith.com" {
					t.Fatalf("email not normalized: %q", stored.EmailAddress)
				}
				if stored.PasswordHash != "hashed:joepassword" {
					t.Fatalf("password not hashed through the hasher: %q", stored.PasswordHash)
				}
				return
			}

			errs := decodeErrors(t, w)
			for _, want := range tt.wantErrors {
				if !contains(errs, want) {
					t.Fatalf("errors %v missing %q", errs, want)
				}
			}
		})
	}
}

func TestCreateUserHandler_StoreFailureIsNotTranslated(t *testing.T) {
	boom := errors.New("connection refused")
	repo := &fakeUsersRepo{
		createFn: func(ctx context.Context, u user.User) (user.User, error) {
			return user.User{}, boom
		},
	}

	h := handlers.NewUsersHandler(repo, plainHasher{})

	var attached error
	capture := func(ctx *gin.Context) {
		ctx.Next()
		if len(ctx.Errors) > 0 {
			attached = ctx.Errors.Last().Err
		}
	}
	r := setupRouter(http.MethodPost, "/users", capture, h.CreateUser)

	req := httptest.NewRequest(http.MethodPost, "/users",
		jsonBody(`{"firstName":"Joe","lastName":"Smith","emailAddress":"joe@smith.com","password":"pw"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if !errors.Is(attached, boom) {
		t.Fatalf("got attached error %v, want %v", attached, boom)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected the fault boundary to own the response, got %s", w.Body.String())
	}
}

func TestCurrentUserHandler(t *testing.T) {
	u := testUser()
	h := handlers.NewUsersHandler(&fakeUsersRepo{}, plainHasher{})

	r := setupRouter(http.MethodGet, "/users", as(u, nil), h.CurrentUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := map[string]any{"firstName": "Joe", "lastName": "Smith", "emailAddress": "joe@smith.com"}
	if len(got) != len(want) {
		t.Fatalf("got fields %v, want exactly %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("field %s = %v, want %v", k, got[k], v)
		}
	}
	if strings.Contains(w.Body.String(), "hashed") {
		t.Fatalf("password hash leaked: %s", w.Body.String())
	}
}

func TestCurrentUserHandler_NoIdentity(t *testing.T) {
	h := handlers.NewUsersHandler(&fakeUsersRepo{}, plainHasher{})
	r := setupRouter(http.MethodGet, "/users", h.CurrentUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}
	if got := decodeEnvelope(t, w).Error.Message; got != "Access Denied" {
		t.Fatalf("got message %q", got)
	}
}
