// internals/features/school/grade_sections/controller/grade_section_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	secDTO "sekolahku_backend/internals/features/school/grade_sections/dto"
	secRepo "sekolahku_backend/internals/features/school/grade_sections/repository"
	helper "sekolahku_backend/internals/helpers"
)

type GradeSectionController struct {
	DB   *gorm.DB
	Repo *secRepo.GradeSectionRepository
}

func NewGradeSectionController(db *gorm.DB) *GradeSectionController {
	return &GradeSectionController{
		DB:   db,
		Repo: secRepo.NewGradeSectionRepository(db),
	}
}

/* =========================================================
   GET /attendance/grade-sections
   Section yang boleh ditandai caller (admin: semua, teacher: miliknya)
========================================================= */

func (ctl *GradeSectionController) ListGradeSections(c *fiber.Ctx) error {
	role := helper.GetRoleFromToken(c)
	if role != constants.RoleTeacher && !constants.IsElevated(role) {
		return helper.JsonError(c, fiber.StatusForbidden, "Anda tidak diizinkan mengakses daftar section")
	}
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return helper.JsonError(c, fe.Code, fe.Message)
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	rows, err := ctl.Repo.VisibleTo(c.UserContext(), role, uid)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	out := make([]secDTO.GradeSectionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, secDTO.GradeSectionResponse{
			GradeSectionID:   row.GradeSectionID,
			GradeSectionName: row.GradeSectionName,
			GradeSectionSlug: row.GradeSectionSlug,
			TeacherID:        row.GradeSectionTeacherID,
			StudentCount:     row.StudentCount,
		})
	}
	return helper.JsonList(c, "Daftar grade section berhasil diambil", out, nil)
}
