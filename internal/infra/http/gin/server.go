package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"studyreserve/internal/infra/config"
	"studyreserve/internal/infra/obs"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
	Extend(c *gin.Context)
	Mine(c *gin.Context)
	Upcoming(c *gin.Context)
	BySpace(c *gin.Context)
	Availability(c *gin.Context)
}

type SpaceHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Search(c *gin.Context)
	Filter(c *gin.Context)
}

type Handlers struct {
	Reservations   ReservationHTTP
	Spaces         SpaceHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Spaces != nil {
		api.GET("/spaces", h.Spaces.List)
		api.GET("/spaces/search", h.Spaces.Search)
		api.GET("/spaces/filter", h.Spaces.Filter)
		api.GET("/spaces/:id", h.Spaces.Get)
	}
	if h.Reservations != nil {
		api.POST("/reservations", h.Reservations.Create)
		api.GET("/reservations", h.Reservations.Mine)
		api.GET("/reservations/upcoming", h.Reservations.Upcoming)
		api.GET("/reservations/space/:spaceId", h.Reservations.BySpace)
		api.DELETE("/reservations/:id", h.Reservations.Cancel)
		api.PUT("/reservations/:id", h.Reservations.Extend)
		api.POST("/availability", h.Reservations.Availability)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
