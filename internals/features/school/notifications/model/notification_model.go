// internals/features/school/notifications/model/notification_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// AttendanceNotificationModel: jejak dispatch notifikasi hasil penandaan.
// Delivery push ke device dikerjakan service terpisah; row ini seam-nya.
type AttendanceNotificationModel struct {
	// PK
	AttendanceNotificationID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:attendance_notification_id" json:"attendance_notification_id"`

	AttendanceNotificationSectionID uuid.UUID      `gorm:"type:uuid;not null;column:attendance_notification_section_id;index:idx_attendance_notification_section" json:"attendance_notification_section_id"`
	AttendanceNotificationDate      datatypes.Date `gorm:"not null;column:attendance_notification_date" json:"attendance_notification_date"`

	// Siswa yang ditandai pada dispatch ini
	AttendanceNotificationStudentIDs pq.StringArray `gorm:"type:text[];column:attendance_notification_student_ids" json:"attendance_notification_student_ids"`

	AttendanceNotificationMarkedBy uuid.UUID `gorm:"type:uuid;not null;column:attendance_notification_marked_by" json:"attendance_notification_marked_by"`

	// Best-effort, at-most-once: false = webhook gagal/belum terkirim
	AttendanceNotificationSent bool `gorm:"not null;default:false;column:attendance_notification_sent" json:"attendance_notification_sent"`

	AttendanceNotificationCreatedAt time.Time `gorm:"column:attendance_notification_created_at;autoCreateTime" json:"attendance_notification_created_at"`
}

func (AttendanceNotificationModel) TableName() string {
	return "attendance_notifications"
}
