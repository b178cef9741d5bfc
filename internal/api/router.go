package api

import (
	"time"

	"expense_tracker/internal/config"     // Custom package for configuration
	"expense_tracker/internal/expense"    // Expense store, queries and summaries
	"expense_tracker/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	DB       *gorm.DB     // Connection pool
	Throttle LoginLimiter // Nil disables login throttling

	JWTSecret     string
	JWTTTL        time.Duration
	CategoryOrder expense.CategoryOrder
	CORSOrigins   []string
}

// DepsFromConfig copies the relevant settings out of cfg
func DepsFromConfig(cfg *config.Config, db *gorm.DB, throttle LoginLimiter) Deps {
	order := expense.ByTotal
	if cfg.CategoryOrder == config.CategoryOrderName {
		order = expense.ByCategory
	}
	return Deps{
		DB:            db,
		Throttle:      throttle,
		JWTSecret:     cfg.JWTSecret,
		JWTTTL:        cfg.JWTTTL,
		CategoryOrder: order,
		CORSOrigins:   cfg.CORSOrigins,
	}
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(d Deps) *gin.Engine {
	store := expense.NewStore(d.DB)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(d.CORSOrigins))

	r.GET("/health", HealthHandler(store)) // Store liveness

	api := r.Group("/api")

	// Auth routes
	api.POST("/auth/register", RegisterHandler(d.DB))
	api.POST("/auth/login", LoginHandler(d.DB, d.JWTSecret, d.JWTTTL, d.Throttle))

	// Expense routes, scoped to the caller when a token is present
	expenses := api.Group("/expenses", middleware.OptionalJWTAuthMiddleware(d.JWTSecret))
	expenses.GET("", ListExpensesHandler(store))
	expenses.POST("", CreateExpenseHandler(store))
	expenses.GET("/:id", GetExpenseHandler(store))
	expenses.PUT("/:id", UpdateExpenseHandler(store))
	expenses.DELETE("/:id", DeleteExpenseHandler(store))

	// Summary routes (protected by JWT)
	summary := api.Group("/summary", middleware.JWTAuthMiddleware(d.JWTSecret))
	summary.GET("/month", MonthSummaryHandler(store))
	summary.GET("/by_category", CategorySummaryHandler(store, d.CategoryOrder))

	return r
}
