package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/onlinemarketplace/marketplace-api/docs"
	"github.com/onlinemarketplace/marketplace-api/internal/api/handler"
	"github.com/onlinemarketplace/marketplace-api/internal/api/middleware"
	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
	"github.com/onlinemarketplace/marketplace-api/internal/infrastructure/http/handlers"
)

// Dependencies are the services and probes the router mounts.
type Dependencies struct {
	Accounts    ports.AccountService
	Contacts    ports.ContactService
	Chats       ports.ChatService
	Favourites  ports.FavouriteService
	Listings    ports.ListingService
	JobListings ports.JobListingService
	Geo         ports.GeoService
	Tokens      middleware.AccessTokenParser
	Readiness   map[string]handlers.Checker
	Log         zerolog.Logger
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
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	requireAuth := middleware.Auth(deps.Tokens)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Accounts)
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/token", authHandler.Token)
	auth.POST("/token/refresh", authHandler.Refresh)
	auth.GET("/email-verification/verify/", authHandler.VerifyEmail)
	auth.POST("/email-verification/send/", authHandler.SendVerification)
	auth.PUT("/password/change/", authHandler.ChangePassword, requireAuth)

	accountHandler := handler.NewAccountHandler(deps.Accounts)
	me := e.Group("/current-user", requireAuth)
	me.GET("", accountHandler.Get)
	me.PATCH("", accountHandler.Update)
	me.DELETE("", accountHandler.Delete)

	// --- Reference data ---
	geoHandler := handler.NewGeoHandler(deps.Geo)
	e.GET("/regions", geoHandler.Regions)
	e.GET("/cities", geoHandler.Cities)
	e.GET("/categories/listings", geoHandler.ListingCategories)
	e.GET("/categories/job-listings", geoHandler.JobListingCategories)

	// --- Listings ---
	listingHandler := handler.NewListingHandler(deps.Listings)
	listings := e.Group("/listings")
	listings.GET("", listingHandler.List)
	listings.GET("/:id", listingHandler.Get)
	listings.GET("/:id/image", listingHandler.Image)
	listings.POST("", listingHandler.Create, requireAuth)
	listings.PATCH("/:id", listingHandler.Update, requireAuth)
	listings.DELETE("/:id", listingHandler.Delete, requireAuth)
	listings.POST("/:id/image", listingHandler.RequestImageUpload, requireAuth)

	jobHandler := handler.NewJobListingHandler(deps.JobListings)
	jobs := e.Group("/job-listings")
	jobs.GET("", jobHandler.List)
	jobs.GET("/:id", jobHandler.Get)
	jobs.POST("", jobHandler.Create, requireAuth)
	jobs.PATCH("/:id", jobHandler.Update, requireAuth)
	jobs.DELETE("/:id", jobHandler.Delete, requireAuth)

	// --- Favourites ---
	favHandler := handler.NewFavouriteHandler(deps.Favourites)
	favourites := e.Group("/favourites", requireAuth)
	for path, kind := range map[string]domain.FavouriteKind{
		"/listings":     domain.FavouriteListing,
		"/job-listings": domain.FavouriteJobListing,
	} {
		favourites.GET(path, favHandler.List(kind))
		favourites.POST(path, favHandler.Add(kind))
		favourites.DELETE(path+"/:item_id", favHandler.Remove(kind))
	}

	// --- Contacts & chats ---
	contactHandler := handler.NewContactHandler(deps.Contacts)
	contacts := e.Group("/contacts", requireAuth)
	contacts.GET("/me", contactHandler.Me)
	contacts.POST("/me/friends", contactHandler.AddFriend)
	contacts.DELETE("/me/friends/:identity", contactHandler.RemoveFriend)
	contacts.GET("/:identity", contactHandler.Resolve)

	chatHandler := handler.NewChatHandler(deps.Chats)
	chats := e.Group("/chats", requireAuth)
	chats.GET("", chatHandler.List)
	chats.POST("", chatHandler.Create)
	chats.GET("/:id", chatHandler.Get)
	chats.PATCH("/:id", chatHandler.Update)
	chats.DELETE("/:id", chatHandler.Delete)
	chats.GET("/:id/messages", chatHandler.Messages)
	chats.POST("/:id/messages", chatHandler.PostMessage)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)           // liveness
	e.GET("/health/ready", readinessHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
