// internals/features/school/attendance/model/attendance_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ClassAttendanceStatus string

const (
	ClassAttendancePresent ClassAttendanceStatus = "present"
	ClassAttendanceAbsent  ClassAttendanceStatus = "absent"
	ClassAttendanceLate    ClassAttendanceStatus = "late"
	ClassAttendanceExcused ClassAttendanceStatus = "excused"
)

// StatusUnmarked TIDAK pernah disimpan: siswa roster tanpa row untuk satu
// tanggal = unmarked. Clear mark lewat reset (hapus row), bukan sentinel.
const StatusUnmarked = "unmarked"

func (s ClassAttendanceStatus) Valid() bool {
	switch s {
	case ClassAttendancePresent, ClassAttendanceAbsent, ClassAttendanceLate, ClassAttendanceExcused:
		return true
	}
	return false
}

// ClassAttendanceModel: satu status per siswa per section per tanggal.
// Unique key (section, student, date); mark ulang = overwrite (upsert),
// bukan row baru.
type ClassAttendanceModel struct {
	// PK
	ClassAttendanceID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:class_attendance_id" json:"class_attendance_id"`

	// FKs + tanggal (kunci unik gabungan)
	ClassAttendanceSectionID uuid.UUID      `gorm:"type:uuid;not null;column:class_attendance_section_id;uniqueIndex:uq_class_attendance_day;index:idx_class_attendance_section" json:"class_attendance_section_id"`
	ClassAttendanceStudentID uuid.UUID      `gorm:"type:uuid;not null;column:class_attendance_student_id;uniqueIndex:uq_class_attendance_day;index:idx_class_attendance_student" json:"class_attendance_student_id"`
	ClassAttendanceDate      datatypes.Date `gorm:"not null;column:class_attendance_date;uniqueIndex:uq_class_attendance_day;index:idx_class_attendance_date" json:"class_attendance_date"`

	// Status (DB constraint via CHECK)
	ClassAttendanceStatus ClassAttendanceStatus `gorm:"type:varchar(16);not null;column:class_attendance_status;index:idx_class_attendance_status" json:"class_attendance_status"`

	// Notes (nullable)
	ClassAttendanceNotes *string `gorm:"type:text;column:class_attendance_notes" json:"class_attendance_notes,omitempty"`

	// Siapa & kapan menandai (last writer menang)
	ClassAttendanceMarkedBy uuid.UUID `gorm:"type:uuid;not null;column:class_attendance_marked_by" json:"class_attendance_marked_by"`
	ClassAttendanceMarkedAt time.Time `gorm:"not null;column:class_attendance_marked_at" json:"class_attendance_marked_at"`

	// Timestamps (tanpa soft delete: reset harian = hard delete)
	ClassAttendanceCreatedAt time.Time `gorm:"column:class_attendance_created_at;autoCreateTime" json:"class_attendance_created_at"`
	ClassAttendanceUpdatedAt time.Time `gorm:"column:class_attendance_updated_at;autoUpdateTime" json:"class_attendance_updated_at"`
}

func (ClassAttendanceModel) TableName() string {
	return "class_attendances"
}
