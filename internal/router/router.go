package router

import (
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"blogcms/internal/config"
	apperrors "blogcms/internal/errors"
	"blogcms/internal/handler"
	"blogcms/internal/logging"
	"blogcms/internal/service"
)

// BodyLimit caps request bodies; it leaves room above the 5 MB image limit.
const BodyLimit = "10M"

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth     *handler.AuthHandler
	Post     *handler.PostHandler
	Category *handler.CategoryHandler
	Tag      *handler.TagHandler
	Upload   *handler.UploadHandler
}

// Register wires middleware and routes.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log logrus.FieldLogger,
	authService service.AuthService,
	h Handlers,
) {
	e.HideBanner = true
	e.Validator = NewCustomValidator()
	e.HTTPErrorHandler = ErrorHandler(log, cfg.IsProduction())

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
		},
		AllowCredentials: !containsWildcard(cfg.CORSAllowedOrigins),
	}))
	e.Use(middleware.BodyLimit(BodyLimit))

	e.GET("/health", handler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if cfg.UploadBackend != "s3" && strings.HasPrefix(cfg.UploadBaseURL, "/") {
		e.Static(cfg.UploadBaseURL, cfg.UploadDir)
	}

	api := e.Group("/api")
	if cfg.RateLimitRequests > 0 {
		api.Use(rateLimiter(cfg))
	}
	requireAuth := authMiddleware(authService)

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", h.Auth.Me, requireAuth)

	// Static segments are matched before :slug by echo's router.
	posts := api.Group("/posts")
	posts.GET("", h.Post.List)
	posts.GET("/featured", h.Post.Featured)
	posts.GET("/stats/summary", h.Post.Stats)
	posts.GET("/admin", h.Post.ListAll, requireAuth)
	posts.GET("/id/:id", h.Post.GetByID, requireAuth)
	posts.GET("/:slug", h.Post.GetBySlug)
	posts.POST("", h.Post.Create, requireAuth)
	posts.PUT("/:id", h.Post.Update, requireAuth)
	posts.DELETE("/:id", h.Post.Delete, requireAuth)

	categories := api.Group("/categories")
	categories.GET("", h.Category.List)
	categories.GET("/:slug", h.Category.GetBySlug)
	categories.POST("", h.Category.Create, requireAuth)
	categories.PUT("/:id", h.Category.Update, requireAuth)
	categories.DELETE("/:id", h.Category.Delete, requireAuth)

	tags := api.Group("/tags")
	tags.GET("", h.Tag.List)
	tags.GET("/:slug", h.Tag.GetBySlug)
	tags.POST("", h.Tag.Create, requireAuth)
	tags.PUT("/:id", h.Tag.Update, requireAuth)
	tags.DELETE("/:id", h.Tag.Delete, requireAuth)

	api.POST("/uploads", h.Upload.Upload, requireAuth)

	if cfg.FrontendDir != "" {
		e.Static("/", cfg.FrontendDir)
	}
}

// authMiddleware verifies the bearer token and stores the user id under
// handler.ContextUserIDKey.
func authMiddleware(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ContextUserIDKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authenticate(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if apperrors.CodeOf(err) == apperrors.CodeInternal {
				err = apperrors.Wrap(apperrors.CodeInvalidToken, "access denied, no valid token provided", err)
			}
			return httpError(err)
		},
	})
}

func rateLimiter(cfg *config.Config) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitRequests) / cfg.RateLimitWindow.Seconds())
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitRequests,
		ExpiresIn: cfg.RateLimitWindow,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, apperrors.ErrorResponse{
				Error: "too many requests from this IP, please try again later",
				Code:  codeRateLimited,
			})
		},
	})
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func httpError(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}
