package httpserver

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	authsvc "github.com/justasSav/eeps/internal/service/auth"
)

const sessionCookie = "eeps_session"

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	api.Use(sessionMiddleware())
	{
		api.GET("/menu", h.getMenu)

		api.GET("/cart", h.getCart)
		api.POST("/cart/items", h.addCartItem)
		api.PATCH("/cart/items/:key", h.updateCartItem)
		api.DELETE("/cart/items/:key", h.removeCartItem)
		api.DELETE("/cart", h.clearCart)
		api.PUT("/cart/info", h.setCheckoutInfo)

		api.POST("/orders", h.submitOrder)
		api.GET("/orders", h.listOrders)
		api.GET("/orders/:id", h.getOrder)
		api.GET("/orders/:id/events", h.orderEvents)

		api.POST("/admin/login", h.adminLogin)

		admin := api.Group("/admin")
		admin.Use(staffMiddleware(deps.Auth))
		{
			admin.GET("/orders", h.activeOrders)
			admin.GET("/orders/all", h.allOrders)
			admin.POST("/orders/:id/advance", h.advanceOrder)
			admin.POST("/orders/:id/cancel", h.cancelOrder)
		}
	}

	return router
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// sessionMiddleware assigns each browser a stable anonymous session id via
// cookie. The id doubles as the cart slot and the owner key on orders.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(sessionCookie)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(sessionCookie, sid, int((30 * 24 * time.Hour).Seconds()), "/", "", false, true)
		}
		c.Set("session_id", sid)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString("session_id")
}

func staffMiddleware(auth *authsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		username, err := auth.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("staff_username", username)
		c.Next()
	}
}
