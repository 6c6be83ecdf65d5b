package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Registry *prometheus.Registry

	AuthService       service.IAuthService
	UserService       service.IUserService
	RecipeService     service.IRecipeService
	MembershipService service.IMembershipService
	ShoppingService   service.IShoppingService
	CatalogService    service.ICatalogService
}

// NewDependencies builds every service on one database. rdb and images may be nil.
func NewDependencies(cfg *config.Config, db *gorm.DB, rdb *redis.Client, images service.ImageStore) Dependencies {
	return Dependencies{
		Config:            cfg,
		DB:                db,
		Redis:             rdb,
		AuthService:       service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, rdb),
		UserService:       service.NewUserService(db),
		RecipeService:     service.NewRecipeService(db, images),
		MembershipService: service.NewMembershipService(db),
		ShoppingService:   service.NewShoppingService(db),
		CatalogService:    service.NewCatalogService(db),
	}
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	validation.InstallGinValidator()

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics := middleware.NewMetrics(registry)

	router := gin.New()
	router.Use(
		middleware.RequestLogger(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(deps.Config.CORSAllowedOrigins),
	)
	router.NoRoute(middleware.NoRoute)

	health := api.NewHealthHandler(deps.DB)
	router.GET("/health", health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	authHandler := api.NewAuthHandler(deps.AuthService)
	userHandler := api.NewUserHandler(deps.UserService, deps.Config.PageSize)
	catalogHandler := api.NewCatalogHandler(deps.CatalogService)
	recipeHandler := api.NewRecipeHandler(deps.RecipeService, deps.MembershipService, deps.ShoppingService, deps.Config.PageSize)

	requireAuth := middleware.RequireAuth(deps.AuthService)
	optionalAuth := middleware.OptionalAuth(deps.AuthService)
	recipeRead := optionalAuth
	if !deps.Config.AllowAnonymousRecipes {
		recipeRead = requireAuth
	}
	writeLimit := middleware.NewRecipeWriteRateLimiter(deps.Redis, deps.Config.RecipeWriteLimit).RateLimitMiddleware()

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.GET("/health", health.HealthCheck)

	auth := v1.Group("/auth/token")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", requireAuth, authHandler.Logout)
	}

	users := v1.Group("/users")
	{
		users.POST("", authHandler.Register)
		users.GET("", optionalAuth, userHandler.ListUsers)
		users.GET("/me", requireAuth, userHandler.Me)
		users.POST("/set_password", requireAuth, authHandler.SetPassword)
		users.GET("/subscriptions", requireAuth, userHandler.Subscriptions)
		users.GET("/:id", optionalAuth, userHandler.GetUser)
		users.POST("/:id/subscribe", requireAuth, userHandler.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth, userHandler.Unsubscribe)
	}

	tags := v1.Group("/tags")
	{
		tags.GET("", catalogHandler.ListTags)
		tags.GET("/:id", catalogHandler.GetTag)
		tags.POST("", requireAuth, catalogHandler.CreateTag)
	}

	ingredients := v1.Group("/ingredients")
	{
		ingredients.GET("", catalogHandler.ListIngredients)
		ingredients.GET("/:id", catalogHandler.GetIngredient)
		ingredients.POST("", requireAuth, catalogHandler.CreateIngredient)
	}

	recipes := v1.Group("/recipes")
	{
		recipes.GET("", recipeRead, recipeHandler.ListRecipes)
		recipes.GET("/download_shopping_cart", requireAuth, recipeHandler.DownloadShoppingCart)
		recipes.GET("/:id", recipeRead, recipeHandler.GetRecipe)
		recipes.POST("", requireAuth, writeLimit, recipeHandler.CreateRecipe)
		recipes.PATCH("/:id", requireAuth, writeLimit, recipeHandler.UpdateRecipe)
		recipes.PUT("/:id", requireAuth, writeLimit, recipeHandler.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, writeLimit, recipeHandler.DeleteRecipe)

		recipes.POST("/:id/favorite", requireAuth, recipeHandler.Membership(service.Favorite, service.Add))
		recipes.DELETE("/:id/favorite", requireAuth, recipeHandler.Membership(service.Favorite, service.Remove))
		recipes.POST("/:id/shopping_cart", requireAuth, recipeHandler.Membership(service.ShoppingCart, service.Add))
		recipes.DELETE("/:id/shopping_cart", requireAuth, recipeHandler.Membership(service.ShoppingCart, service.Remove))
	}

	return router
}
