// middlewares/middlewares.go
package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"sekolahku_backend/internals/middlewares/logger"
)

// SetupMiddlewares daftarin middleware global, urutannya penting:
// CORS → logger → recovery → rate limiter
func SetupMiddlewares(app *fiber.App) {
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(RecoveryMiddleware())
	app.Use(GlobalRateLimiter())
}
