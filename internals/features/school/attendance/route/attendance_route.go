// internals/features/school/attendance/route/attendance_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/cache"
	"sekolahku_backend/internals/constants"
	attController "sekolahku_backend/internals/features/school/attendance/controller"
	secController "sekolahku_backend/internals/features/school/grade_sections/controller"
	"sekolahku_backend/internals/middlewares"
	authMw "sekolahku_backend/internals/middlewares/auth"
)

// AttendanceRoutes: seluruh surface absensi. Group sudah di belakang JWT auth;
// gate role halus (teacher vs admin) dikerjakan service + OnlyRoles di sini.
func AttendanceRoutes(api fiber.Router, db *gorm.DB, ch *cache.Cache) {
	ctl := attController.NewAttendanceController(db, ch)
	secCtl := secController.NewGradeSectionController(db)

	grp := api.Group("/attendance")

	// Reads (cache-checked, header X-Cache HIT/MISS)
	grp.Get("/grade-sections", secCtl.ListGradeSections)
	grp.Get("/grade-sections/daily", ctl.GetSchoolDailyOverview)
	grp.Get("/stats", ctl.GetRangeStats)
	grp.Get("/history", ctl.GetStudentHistory)
	grp.Get("/config", ctl.GetConfig)
	grp.Get("/", ctl.GetDailyAttendance)

	// Writes
	grp.Post("/bulk-mark", middlewares.MarkRateLimiter(), ctl.BulkMark)
	grp.Post("/reset",
		middlewares.MarkRateLimiter(),
		authMw.OnlyRoles(constants.RoleErrorAdmin("reset absensi"), constants.AdminAndAbove...),
		ctl.Reset,
	)
	grp.Put("/config",
		authMw.OnlyRoles(constants.RoleErrorAdmin("konfigurasi absensi"), constants.AdminAndAbove...),
		ctl.UpdateConfig,
	)
}
