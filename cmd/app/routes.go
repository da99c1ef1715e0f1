package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"tripwise/internal/api/controllers"
	"tripwise/internal/infra"
	"tripwise/pkg/metrics"
	"tripwise/pkg/middleware"
	"tripwise/pkg/utils"
)

type routerParams struct {
	fx.In

	Config  *infra.Config
	Log     *zap.Logger
	Issuer  *utils.TokenIssuer
	Limiter *middleware.RateLimiter

	Health    *controllers.HealthController
	Account   *controllers.AccountController
	Itinerary *controllers.ItineraryController
	Expense   *controllers.ExpenseController
	Voice     *controllers.VoiceController
	Map       *controllers.MapController
}

func ProvideRouter(p routerParams) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(p.Log.Named("http")))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	RegisterRoutes(r.Group("/api"), p)

	return r
}

func RegisterRoutes(api *gin.RouterGroup, p routerParams) {
	auth := middleware.JWTAuthMiddleware(p.Issuer)
	optionalAuth := middleware.OptionalAuth(p.Issuer)
	limit := p.Limiter.Limit()

	api.GET("/health", p.Health.Health)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", p.Account.Register)
	authGroup.POST("/login", p.Account.Login)
	authGroup.POST("/refresh", p.Account.Refresh)
	authGroup.POST("/logout", auth, p.Account.Logout)
	authGroup.GET("/me", auth, p.Account.Me)

	itineraryGroup := api.Group("/itinerary")
	itineraryGroup.POST("/generate", optionalAuth, limit, p.Itinerary.Generate)
	itineraryGroup.POST("/save", auth, p.Itinerary.Save)
	itineraryGroup.GET("/list", auth, p.Itinerary.List)
	itineraryGroup.GET("/:id", p.Itinerary.Get)
	itineraryGroup.PUT("/:id", auth, p.Itinerary.Update)
	itineraryGroup.DELETE("/:id", auth, p.Itinerary.Delete)
	itineraryGroup.GET("/:id/similar", auth, p.Itinerary.Similar)
	itineraryGroup.GET("/:id/pdf", p.Itinerary.ExportPDF)

	expenseGroup := api.Group("/expenses")
	expenseGroup.POST("/voice-parse", optionalAuth, limit, p.Expense.VoiceParse)
	expenseGroup.POST("", auth, p.Expense.Create)
	expenseGroup.GET("", auth, p.Expense.List)
	expenseGroup.GET("/stats", auth, p.Expense.Stats)
	expenseGroup.GET("/budget-comparison", auth, p.Expense.BudgetComparison)
	expenseGroup.POST("/ai-analysis", auth, limit, p.Expense.Analyze)
	expenseGroup.GET("/:id", auth, p.Expense.Get)
	expenseGroup.PUT("/:id", auth, p.Expense.Update)
	expenseGroup.DELETE("/:id", auth, p.Expense.Delete)

	api.POST("/voice/transcribe", optionalAuth, limit, p.Voice.Transcribe)

	mapGroup := api.Group("/map")
	mapGroup.GET("/geocode", p.Map.Geocode)
	mapGroup.GET("/search", p.Map.Search)
	mapGroup.GET("/route", p.Map.Route)
	mapGroup.GET("/weather", p.Map.Weather)
	mapGroup.GET("/staticmap", p.Map.StaticMap)
}
