// internals/features/school/grade_sections/model/grade_section_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GradeSectionModel: rombongan belajar dengan absensi harian bersama
// (bukan kelas per mata pelajaran).
type GradeSectionModel struct {
	// PK
	GradeSectionID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:grade_section_id" json:"grade_section_id"`

	GradeSectionName string `gorm:"type:varchar(80);not null;column:grade_section_name" json:"grade_section_name"`
	GradeSectionSlug string `gorm:"type:varchar(100);uniqueIndex:uq_grade_section_slug;column:grade_section_slug" json:"grade_section_slug"`

	// Wali kelas pemilik section (nullable selama belum di-assign)
	GradeSectionTeacherID *uuid.UUID `gorm:"type:uuid;column:grade_section_teacher_id;index:idx_grade_section_teacher" json:"grade_section_teacher_id,omitempty"`

	GradeSectionIsActive bool `gorm:"not null;default:true;column:grade_section_is_active" json:"grade_section_is_active"`

	// Timestamps
	GradeSectionCreatedAt time.Time      `gorm:"column:grade_section_created_at;autoCreateTime" json:"grade_section_created_at"`
	GradeSectionUpdatedAt time.Time      `gorm:"column:grade_section_updated_at;autoUpdateTime" json:"grade_section_updated_at"`
	GradeSectionDeletedAt gorm.DeletedAt `gorm:"column:grade_section_deleted_at;index" json:"grade_section_deleted_at,omitempty"`
}

func (GradeSectionModel) TableName() string {
	return "grade_sections"
}
