// file: internals/route/index.go
package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/cache"
	authMw "sekolahku_backend/internals/middlewares/auth"
	routeDetails "sekolahku_backend/internals/route/details"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, ch *cache.Cache) {
	// ===================== PROTECTED (JWT wajib) =====================
	log.Println("[INFO] Setting up PROTECTED group (JWT)...")
	protected := app.Group("/", authMw.AuthMiddleware())

	log.Println("[INFO] Mounting School routes...")
	routeDetails.SchoolRoutes(protected, db, ch)
}
