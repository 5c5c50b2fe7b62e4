package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/geocoder89/courseapi/internal/actorctx"
	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/geocoder89/courseapi/internal/cache"
	"github.com/geocoder89/courseapi/internal/domain/course"
	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/geocoder89/courseapi/internal/http/respond"
	"github.com/gin-gonic/gin"
)

const courseListCacheKey = "courses:list"

func courseCacheKey(id string) string {
	return "courses:" + id
}

type CoursesStore interface {
	Create(ctx context.Context, c course.Course) (course.Course, error)
	List(ctx context.Context) ([]course.Course, error)
	GetByID(ctx context.Context, id string) (course.Course, error)
	Update(ctx context.Context, c course.Course) (course.Course, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type CoursesHandler struct {
	repo    CoursesStore
	cache   cache.Cache
	timeout time.Duration

	// writes bump gen under mu before invalidating, so a read that started
	// before a write never repopulates the cache with what it loaded
	mu  sync.Mutex
	gen uint64
}

func NewCoursesHandler(repo CoursesStore) *CoursesHandler {
	return NewCoursesHandlerWithCache(repo, cache.Noop{})
}

func NewCoursesHandlerWithCache(repo CoursesStore, c cache.Cache) *CoursesHandler {
	if c == nil {
		c = cache.Noop{}
	}
	return &CoursesHandler{repo: repo, cache: c, timeout: 5 * time.Second}
}

func (h *CoursesHandler) generation() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gen
}

// fill caches body unless a write has happened since gen was read.
func (h *CoursesHandler) fill(ctx context.Context, gen uint64, key string, body []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.gen != gen {
		return
	}
	h.cache.Set(ctx, key, body)
}

func (h *CoursesHandler) invalidate(ctx context.Context, keys ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.gen++
	h.cache.Delete(ctx, keys...)
}

func (h *CoursesHandler) ListCourses(ctx *gin.Context) {
	if body, ok := h.cache.Get(ctx.Request.Context(), courseListCacheKey); ok {
		RespondEncodedWithETag(ctx, http.StatusOK, body)
		return
	}
	gen := h.generation()

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	courses, err := h.repo.List(cctx)
	if err != nil {
		respond.Fail(ctx, err)
		return
	}

	body, err := json.Marshal(courses)
	if err != nil {
		respond.Fail(ctx, err)
		return
	}

	h.fill(ctx.Request.Context(), gen, courseListCacheKey, body)
	RespondEncodedWithETag(ctx, http.StatusOK, body)
}

func (h *CoursesHandler) GetCourseByID(ctx *gin.Context) {
	id := ctx.Param("id")

	if !course.ValidID(id) {
		respond.Abort(ctx, apierr.NotFound("Course", id))
		return
	}

	if body, ok := h.cache.Get(ctx.Request.Context(), courseCacheKey(id)); ok {
		RespondEncodedWithETag(ctx, http.StatusOK, body)
		return
	}
	gen := h.generation()

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	c, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			respond.Abort(ctx, apierr.NotFound("Course", id))
			return
		}
		respond.Fail(ctx, err)
		return
	}

	body, err := json.Marshal(c)
	if err != nil {
		respond.Fail(ctx, err)
		return
	}

	h.fill(ctx.Request.Context(), gen, courseCacheKey(id), body)
	RespondEncodedWithETag(ctx, http.StatusOK, body)
}

// CreateCourse always makes the caller the owner.
func (h *CoursesHandler) CreateCourse(ctx *gin.Context) {
	identity, ok := actorctx.UserFrom(ctx.Request.Context())
	if !ok {
		respond.Abort(ctx, apierr.Unauthenticated())
		return
	}

	var req course.CreateCourseRequest
	if !BindJSON(ctx, &req) {
		return
	}

	c, err := course.New(req, identity.ID)
	if err != nil {
		respond.WriteError(ctx, err)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	created, err := h.repo.Create(cctx, c)
	if err != nil {
		respond.WriteError(ctx, err)
		return
	}

	h.invalidate(ctx.Request.Context(), courseListCacheKey)

	ctx.Header("Location", "/courses/"+created.ID)
	ctx.Status(http.StatusCreated)
}

// UpdateCourse runs behind the ownership guard, which has already loaded the
// course into the request context.
func (h *CoursesHandler) UpdateCourse(ctx *gin.Context) {
	identity, existing, ok := guarded(ctx)
	if !ok {
		return
	}

	var req course.UpdateCourseRequest
	if !BindJSON(ctx, &req) {
		return
	}

	next, err := existing.Apply(req)
	if err != nil {
		respond.WriteError(ctx, err)
		return
	}
	next.UserID = identity.ID

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	if _, err := h.repo.Update(cctx, next); err != nil {
		if errors.Is(err, course.ErrNotFound) {
			respond.Abort(ctx, apierr.NotFound("Course", existing.ID))
			return
		}
		respond.WriteError(ctx, err)
		return
	}

	h.invalidate(ctx.Request.Context(), courseListCacheKey, courseCacheKey(existing.ID))

	ctx.Status(http.StatusNoContent)
}

func (h *CoursesHandler) DeleteCourse(ctx *gin.Context) {
	identity, existing, ok := guarded(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	if err := h.repo.Delete(cctx, existing.ID, identity.ID); err != nil {
		if errors.Is(err, course.ErrNotFound) {
			respond.Abort(ctx, apierr.NotFound("Course", existing.ID))
			return
		}
		respond.Fail(ctx, err)
		return
	}

	h.invalidate(ctx.Request.Context(), courseListCacheKey, courseCacheKey(existing.ID))

	ctx.Status(http.StatusNoContent)
}

func guarded(ctx *gin.Context) (identity user.User, c course.Course, ok bool) {
	identity, ok = actorctx.UserFrom(ctx.Request.Context())
	if !ok {
		respond.Abort(ctx, apierr.Unauthenticated())
		return identity, c, false
	}

	c, ok = actorctx.CourseFrom(ctx.Request.Context())
	if !ok {
		respond.Fail(ctx, fmt.Errorf("%s %s: ownership guard did not run", ctx.Request.Method, ctx.FullPath()))
		return identity, c, false
	}

	return identity, c, true
}
