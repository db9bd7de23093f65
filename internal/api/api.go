package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/middleware"
	"github.com/plateful/backend/internal/service"
)

// SetupAPI wires services and handlers onto /api/v1. The redis client and the
// S3 config are optional: without redis mutations run unthrottled, without S3
// inline image payloads are rejected.
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, s3Config *config.S3Config, jwtSecret string) {
	v1 := router.Group("/api/v1")
	{
		authService := service.NewAuthService(db, jwtSecret)
		recipeService := service.NewRecipeService(db)
		relationService := service.NewRelationService(db)
		userService := service.NewUserService(db)

		var imageService *service.ImageService
		if s3Config != nil {
			imageService = service.NewImageService(s3Config)
		}
		var rateLimiter *middleware.RateLimiter
		if redisClient != nil {
			rateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
				Window:    time.Minute,
				Limit:     60,
				KeyPrefix: "ratelimit",
			})
		}

		NewAuthHandler(authService).RegisterRoutes(v1)
		NewReferenceHandler(db).RegisterRoutes(v1)
		NewRecipeHandler(db, recipeService, relationService, imageService, authService, rateLimiter).RegisterRoutes(v1)
		NewUserHandler(db, userService, relationService, authService).RegisterRoutes(v1)
	}
}
