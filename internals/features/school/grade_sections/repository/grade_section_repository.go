// internals/features/school/grade_sections/repository/grade_section_repository.go
package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	secModel "sekolahku_backend/internals/features/school/grade_sections/model"
)

type GradeSectionRepository struct {
	DB *gorm.DB
}

func NewGradeSectionRepository(db *gorm.DB) *GradeSectionRepository {
	return &GradeSectionRepository{DB: db}
}

// SectionWithCount: baris list section + jumlah enrollment aktif (subquery,
// bukan satu query per section).
type SectionWithCount struct {
	GradeSectionID        uuid.UUID  `gorm:"column:grade_section_id"`
	GradeSectionName      string     `gorm:"column:grade_section_name"`
	GradeSectionSlug      string     `gorm:"column:grade_section_slug"`
	GradeSectionTeacherID *uuid.UUID `gorm:"column:grade_section_teacher_id"`
	StudentCount          int        `gorm:"column:student_count"`
}

// FindByID: section aktif by id. gorm.ErrRecordNotFound diteruskan apa adanya.
func (r *GradeSectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*secModel.GradeSectionModel, error) {
	var sec secModel.GradeSectionModel
	err := r.DB.WithContext(ctx).
		Where("grade_section_id = ?", id).
		First(&sec).Error
	if err != nil {
		return nil, err
	}
	return &sec, nil
}

// VisibleTo: section yang boleh di-mark caller.
// admin/owner → semua section aktif; teacher → hanya yang dia wali-kelasi.
// Role lain tidak sampai sini (sudah ditolak di service/middleware).
func (r *GradeSectionRepository) VisibleTo(ctx context.Context, role string, userID uuid.UUID) ([]SectionWithCount, error) {
	tx := r.DB.WithContext(ctx).
		Table("grade_sections gs").
		Select(`gs.grade_section_id,
		        gs.grade_section_name,
		        gs.grade_section_slug,
		        gs.grade_section_teacher_id,
		        (SELECT COUNT(*) FROM student_enrollments e
		          WHERE e.student_enrollment_section_id = gs.grade_section_id
		            AND e.student_enrollment_is_active = ?) AS student_count`, true).
		Where("gs.grade_section_is_active = ?", true).
		Where("gs.grade_section_deleted_at IS NULL")

	if !constants.IsElevated(role) {
		tx = tx.Where("gs.grade_section_teacher_id = ?", userID)
	}

	var out []SectionWithCount
	if err := tx.Order("LOWER(gs.grade_section_name) ASC").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
