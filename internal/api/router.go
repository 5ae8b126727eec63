package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/storefront/catalog-api/internal/api/handler"
	"github.com/storefront/catalog-api/internal/api/middleware"
	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"

	_ "github.com/storefront/catalog-api/docs"
)

const (
	bodyLimit        = "1M"
	defaultAdminRole = "admin"
)

// Dependencies are the collaborators NewRouter wires into the routes.
type Dependencies struct {
	Log      zerolog.Logger
	Identity ports.IdentityService
	Auth     ports.AuthService
	Roles    ports.RoleService
	Catalog  ports.CatalogService

	// Readiness lists the backing services checked by /health/ready.
	Readiness map[string]handler.DependencyCheck

	// AuthRateLimit is the per-IP refill rate (requests/second) of the
	// login and register endpoints; zero disables limiting.
	AuthRateLimit float64
	AuthRateBurst int

	CORSOrigins []string

	// AdminRole names the role allowed on administrator-only routes.
	// Empty selects "admin".
	AdminRole string

	// Metrics receives the HTTP metrics and backs /metrics. Nil selects the
	// default Prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	if len(deps.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: deps.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
	registerMetrics(e, deps.Metrics)

	adminRole := deps.AdminRole
	if adminRole == "" {
		adminRole = defaultAdminRole
	}

	authenticate := middleware.Authenticate(deps.Auth)
	limited := middleware.RateLimit(deps.AuthRateLimit, deps.AuthRateBurst)

	authHandler := handler.NewAuthHandler(deps.Identity, deps.Auth)
	userHandler := handler.NewUserHandler(deps.Identity)
	roleHandler := handler.NewRoleHandler(deps.Roles)
	categoryHandler := handler.NewCategoryHandler(deps.Catalog)
	productHandler := handler.NewProductHandler(deps.Catalog)

	api := e.Group("/api")

	// --- Users ---
	users := api.Group("/user")
	users.POST("/register", authHandler.Register, limited, middleware.OptionalAuthenticate(deps.Auth))
	users.POST("/login", authHandler.Login, limited)
	users.GET("/me", authHandler.Me, authenticate)

	canViewUsers := middleware.RequirePermission(domain.PermManageUsers, domain.PermViewUsers)
	canManageUsers := middleware.RequirePermission(domain.PermManageUsers)
	users.GET("", userHandler.List, authenticate, canViewUsers)
	users.GET("/:id", userHandler.Get, authenticate, canViewUsers)
	users.POST("", userHandler.Create, authenticate, canManageUsers)
	users.PUT("/:id", userHandler.Update, authenticate, canManageUsers)
	users.DELETE("/:id", userHandler.Delete, authenticate, canManageUsers)

	// --- Roles ---
	roles := api.Group("/role", authenticate)
	canManageRoles := middleware.RequirePermission(domain.PermManageRoles)
	roles.GET("", roleHandler.List)
	roles.GET("/:id", roleHandler.Get)
	roles.POST("", roleHandler.Create, canManageRoles)
	roles.PUT("/:id", roleHandler.Update, canManageRoles)
	roles.DELETE("/:id", roleHandler.Delete, canManageRoles)
	api.GET("/permission", roleHandler.Permissions, authenticate, middleware.RequireRole(adminRole))

	// --- Catalog ---
	categories := api.Group("/category")
	canManageCategories := middleware.RequirePermission(domain.PermManageCategories)
	categories.GET("", categoryHandler.List)
	categories.GET("/:id", categoryHandler.Get)
	categories.POST("", categoryHandler.Create, authenticate, canManageCategories)
	categories.PUT("/:id", categoryHandler.Update, authenticate, canManageCategories)
	categories.DELETE("/:id", categoryHandler.Delete, authenticate, canManageCategories)

	products := api.Group("/product")
	canManageProducts := middleware.RequirePermission(domain.PermManageProducts)
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create, authenticate, canManageProducts)
	products.PUT("/:id", productHandler.Update, authenticate, canManageProducts)
	products.DELETE("/:id", productHandler.Delete, authenticate, canManageProducts)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func registerMetrics(e *echo.Echo, registry *prometheus.Registry) {
	if registry == nil {
		e.Use(echoprometheus.NewMiddleware("catalog"))
		e.GET("/metrics", echoprometheus.NewHandler())
		return
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "catalog",
		Registerer: registry,
	}))
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: registry}))
}
