// file: internals/route/details/school_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/cache"
	attRoute "sekolahku_backend/internals/features/school/attendance/route"
)

// SchoolRoutes: fitur sekolah yang sudah di belakang JWT auth.
func SchoolRoutes(api fiber.Router, db *gorm.DB, ch *cache.Cache) {
	attRoute.AttendanceRoutes(api, db, ch)
}
