package http

import (
	"log/slog"

	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/geocoder89/courseapi/internal/cache"
	"github.com/geocoder89/courseapi/internal/http/handlers"
	"github.com/geocoder89/courseapi/internal/http/middlewares"
	"github.com/geocoder89/courseapi/internal/http/respond"
	"github.com/geocoder89/courseapi/internal/observability"
	"github.com/geocoder89/courseapi/internal/security"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type UsersStore interface {
	middlewares.CredentialStore
	handlers.UsersCreator
}

// Deps are the collaborators the router wires into handlers and guards.
type Deps struct {
	Users   UsersStore
	Courses handlers.CoursesStore
	Hasher  security.Hasher
	Cache   cache.Cache
	Prom    *observability.Prom
	Ping    handlers.Pinger
	// Draining reports that graceful shutdown has begun.
	Draining func() bool
}

type Options struct {
	Env            string
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string
	MaxBodyBytes   int64
}

// NewRouter assembles the guard pipeline once. Global stages run for every
// request; each route then lists its own guards in the order they apply.
func NewRouter(log *slog.Logger, opts Options, deps Deps) *gin.Engine {
	if opts.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// middleware
	r.Use(middlewares.FaultBoundary(log))
	r.Use(middlewares.RequestID())
	if opts.TracingEnabled {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(opts.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(opts.MaxBodyBytes))

	noRoute := func(ctx *gin.Context) { respond.Abort(ctx, apierr.NoRoute()) }
	r.NoRoute(noRoute)
	r.NoMethod(noRoute)

	// health
	h := handlers.NewHealthHandler(deps.Ping, deps.Draining)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	if deps.Prom != nil {
		r.GET("/metrics", gin.WrapH(deps.Prom.Handler()))
	}

	auth := middlewares.NewAuthMiddleware(deps.Users, deps.Hasher, deps.Prom)
	owner := middlewares.NewOwnershipGuard(deps.Courses)
	requireAuth := auth.RequireAuth()
	requireOwner := owner.RequireCourseOwner()
	requireJSON := middlewares.RequireJSON()

	usersHandler := handlers.NewUsersHandler(deps.Users, deps.Hasher)
	coursesHandler := handlers.NewCoursesHandlerWithCache(deps.Courses, deps.Cache)

	r.GET("/users", requireAuth, usersHandler.CurrentUser)
	r.POST("/users", requireJSON, usersHandler.CreateUser)

	r.GET("/courses", coursesHandler.ListCourses)
	r.GET("/courses/:id", coursesHandler.GetCourseByID)
	r.POST("/courses", requireAuth, requireJSON, coursesHandler.CreateCourse)
	r.PUT("/courses/:id", requireAuth, requireOwner, requireJSON, coursesHandler.UpdateCourse)
	r.DELETE("/courses/:id", requireAuth, requireOwner, coursesHandler.DeleteCourse)

	return r
}
