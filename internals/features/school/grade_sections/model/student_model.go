// internals/features/school/grade_sections/model/student_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentModel struct {
	// PK
	StudentID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:student_id" json:"student_id"`

	StudentName string `gorm:"type:varchar(120);not null;column:student_name;index:idx_student_name" json:"student_name"`

	// Akun user milik siswa (nullable; akun dikelola service auth terpisah)
	StudentUserID *uuid.UUID `gorm:"type:uuid;column:student_user_id;index:idx_student_user" json:"student_user_id,omitempty"`

	// Timestamps
	StudentCreatedAt time.Time      `gorm:"column:student_created_at;autoCreateTime" json:"student_created_at"`
	StudentUpdatedAt time.Time      `gorm:"column:student_updated_at;autoUpdateTime" json:"student_updated_at"`
	StudentDeletedAt gorm.DeletedAt `gorm:"column:student_deleted_at;index" json:"student_deleted_at,omitempty"`
}

func (StudentModel) TableName() string {
	return "students"
}

// StudentEnrollmentModel: keanggotaan siswa di satu grade section.
// Roster absensi = semua enrollment yang is_active, ada/tidaknya record harian.
type StudentEnrollmentModel struct {
	// PK
	StudentEnrollmentID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:student_enrollment_id" json:"student_enrollment_id"`

	// FKs
	StudentEnrollmentStudentID uuid.UUID `gorm:"type:uuid;not null;column:student_enrollment_student_id;index:idx_student_enrollment_student;uniqueIndex:uq_student_enrollment" json:"student_enrollment_student_id"`
	StudentEnrollmentSectionID uuid.UUID `gorm:"type:uuid;not null;column:student_enrollment_section_id;index:idx_student_enrollment_section;uniqueIndex:uq_student_enrollment" json:"student_enrollment_section_id"`

	StudentEnrollmentIsActive bool `gorm:"not null;default:true;column:student_enrollment_is_active;index:idx_student_enrollment_active" json:"student_enrollment_is_active"`

	// Timestamps
	StudentEnrollmentCreatedAt time.Time `gorm:"column:student_enrollment_created_at;autoCreateTime" json:"student_enrollment_created_at"`
	StudentEnrollmentUpdatedAt time.Time `gorm:"column:student_enrollment_updated_at;autoUpdateTime" json:"student_enrollment_updated_at"`
}

func (StudentEnrollmentModel) TableName() string {
	return "student_enrollments"
}
