package http

import (
	"context"
	stdhttp "net/http"

	"ats-portal/internal/audit"
	"ats-portal/internal/auth"
	"ats-portal/internal/config"
	"ats-portal/internal/guard"
	"ats-portal/internal/http/handler"
	"ats-portal/internal/http/middleware"
	"ats-portal/internal/rbac"
	"ats-portal/internal/session"
	"ats-portal/pkg/logger"
	"ats-portal/pkg/metrics"
	"ats-portal/pkg/profiling"
	"ats-portal/pkg/validator"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	requestBodyLimit = "1M"
)

type ServerDependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	Checker        *rbac.Checker
	Sessions       *session.Manager
	Authenticator  auth.Authenticator
	Users          handler.UserLister
	Exchange       handler.AssertionVerifier
	CSRFMiddleware *middleware.CSRFMiddleware
	Audit          *audit.Logger
	Metrics        *metrics.Metrics
	Renderer       echo.Renderer
	Validator      *validator.Validator
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Renderer = deps.Renderer
	e.Validator = deps.Validator

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	g := guard.New(deps.Checker, guard.Options{
		Logger:   deps.Logger,
		Recorder: deps.Metrics,
	})

	pageHandler := handler.NewPageHandler(deps.Checker, deps.CSRFMiddleware, deps.Users, deps.Logger)
	authHandler := handler.NewAuthHandler(handler.AuthHandlerDeps{
		Sessions:      deps.Sessions,
		Authenticator: deps.Authenticator,
		Exchange:      deps.Exchange,
		CSRF:          deps.CSRFMiddleware,
		Validator:     deps.Validator,
		Pages:         pageHandler,
		Cookie: handler.CookieConfig{
			Name:   deps.Config.Session.CookieName,
			Secure: deps.Config.Session.CookieSecure,
		},
		Audit:  deps.Audit,
		Logger: deps.Logger,
	})
	apiHandler := handler.NewAPIHandler(deps.Checker)

	e.HTTPErrorHandler = NewHTTPErrorHandler(pageHandler, deps.Logger)

	// Request ID middleware (first, so all logs have request ID)
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(logger.Middleware(deps.Logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))
	e.Use(deps.Metrics.Middleware())
	e.Use(guard.LoadSession(deps.Sessions, deps.Config.Session.CookieName, deps.Logger))

	// Global rate limiting, keyed by session once it is known
	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())
	e.Use(deps.CSRFMiddleware.Middleware())

	// Strict rate limiting for sign-in endpoints
	strictRateLimiter := middleware.NewStrictRateLimiter()

	e.GET("/health", healthCheck)
	e.GET("/login", authHandler.LoginForm)
	e.POST("/login", authHandler.Login, strictRateLimiter.Middleware())
	e.POST("/auth/exchange", authHandler.Exchange, strictRateLimiter.Middleware())
	e.POST("/logout", authHandler.Logout)
	e.GET("/unauthorized", pageHandler.Unauthorized)

	readCandidates := rbac.Can(rbac.ActionRead, rbac.SubjectCandidates)
	readJobs := rbac.Can(rbac.ActionRead, rbac.SubjectJobs)
	readUsers := rbac.Can(rbac.ActionRead, rbac.SubjectUsers)
	readSettings := rbac.Can(rbac.ActionRead, rbac.SubjectSettings)
	readReports := rbac.Can(rbac.ActionRead, rbac.SubjectReports)

	e.GET("/", pageHandler.Dashboard, g.Page())
	e.GET("/candidates", pageHandler.Candidates, g.Page(readCandidates))
	e.GET("/jobs", pageHandler.Jobs, g.Page(readJobs))
	e.GET("/workflow", pageHandler.Workflow, g.Page(readJobs))
	e.GET("/reports", pageHandler.Reports, g.Page(readJobs))
	e.GET("/users", pageHandler.Users, g.Page(readUsers))
	e.GET("/roles", pageHandler.Roles, g.Page(readUsers))
	e.GET("/settings", pageHandler.Settings, g.Page(readSettings))

	api := e.Group("/api")
	api.GET("/me", apiHandler.Me, g.API())
	api.GET("/rbac/table", apiHandler.Table, g.API(readUsers))
	api.GET("/rbac/check", apiHandler.Check, g.API())

	e.GET("/metrics", deps.Metrics.Handler, g.API(readReports))
	e.GET("/metrics/memory", profiling.MemoryHandler, g.API(readReports))
	if deps.Config.Server.Profiling {
		profiling.RegisterPprofRoutes(e.Group("/debug/pprof", g.API(readSettings)))
	}

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
