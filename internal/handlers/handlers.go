package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elretiro/console/internal/config"
	"elretiro/console/internal/middleware"
	"elretiro/console/internal/service"
	"elretiro/console/internal/session"
	"elretiro/console/internal/storage"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Dependencies struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Dashboard *service.DashboardService
	Sessions  *session.Manager
	Assets    *storage.AssetResolver
	Checks    map[string]HealthCheck
}

type HandlerSet struct {
	log              zerolog.Logger
	cfg              *config.AppConfig
	authService      *service.AuthService
	userService      *service.UserService
	dashboardService *service.DashboardService
	sessions         *session.Manager
	assets           *storage.AssetResolver
	checks           map[string]HealthCheck
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, deps Dependencies) HandlerSet {
	return HandlerSet{
		log:              log,
		cfg:              cfg,
		authService:      deps.Auth,
		userService:      deps.Users,
		dashboardService: deps.Dashboard,
		sessions:         deps.Sessions,
		assets:           deps.Assets,
		checks:           deps.Checks,
	}
}

func (h HandlerSet) Register(engine *gin.Engine) {
	loadSession := middleware.Session(h.sessions, h.authService, h.log)

	pages := engine.Group("/")
	pages.Use(loadSession, middleware.Guard())
	{
		pages.GET("/", h.LoginPage)
		pages.POST("/login", h.Login)

		app := pages.Group("/app")
		app.GET("", h.Home)
		app.GET("/profile", h.Profile)
		app.POST("/profile/signout", h.SignOut)
		app.GET("/users/new", h.NewUser)
		app.POST("/users", h.CreateUser)
	}

	api := engine.Group("/api")
	api.Use(middleware.CORS(h.cfg.AllowCORSOrigins))
	api.GET("/healthz", h.Health)

	v1 := api.Group("/v1")
	v1.Use(loadSession)
	{
		v1.POST("/auth/login", h.APILogin)
		v1.GET("/auth/guard", h.APIGuard)

		protected := v1.Group("")
		protected.Use(middleware.RequireSession())
		protected.POST("/auth/logout", h.APILogout)
		protected.POST("/users", h.APICreateUser)
		protected.GET("/dashboard", h.APIDashboard)
	}
}
