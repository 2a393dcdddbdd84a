package bootstrap

import (
	"time"

	httpapi "github.com/GoSim-25-26J-441/image-studio-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/api/http/middleware"
	arthttp "github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/http"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	DB             *pgxpool.Pool
	Redis          *redis.Client
	Artifacts      *arthttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  dep.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", arthttp.SessionHeader, "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)
	httpapi.RegisterMetrics(r)

	api := r.Group("/api")
	dep.Artifacts.Register(api)
	dep.Artifacts.RegisterFiles(r)

	return r
}
