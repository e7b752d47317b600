// internals/features/school/attendance/model/attendance_setting_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// ClassAttendanceSettingModel: kebijakan penandaan.
// Row dengan section_id NULL = default global; row per-section menimpa global.
type ClassAttendanceSettingModel struct {
	// PK
	ClassAttendanceSettingID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:class_attendance_setting_id" json:"class_attendance_setting_id"`

	// NULL = default sekolah
	ClassAttendanceSettingSectionID *uuid.UUID `gorm:"type:uuid;column:class_attendance_setting_section_id;uniqueIndex:uq_class_attendance_setting_section" json:"class_attendance_setting_section_id,omitempty"`

	// Jam rollover hari absensi, format HH:MM (bukan timezone-aware)
	ClassAttendanceSettingResetTime string `gorm:"type:varchar(5);not null;default:'04:00';column:class_attendance_setting_reset_time" json:"class_attendance_setting_reset_time"`

	// Telat berapa menit masih dihitung "late" (bukan "absent")
	ClassAttendanceSettingLateThresholdMinutes int `gorm:"not null;default:15;column:class_attendance_setting_late_threshold_minutes" json:"class_attendance_setting_late_threshold_minutes"`

	// Status default yang disarankan UI saat buka roster
	ClassAttendanceSettingDefaultStatus ClassAttendanceStatus `gorm:"type:varchar(16);not null;default:'present';column:class_attendance_setting_default_status" json:"class_attendance_setting_default_status"`

	// Kirim notifikasi kalau ada siswa absent?
	ClassAttendanceSettingNotifyOnAbsent bool `gorm:"not null;default:true;column:class_attendance_setting_notify_on_absent" json:"class_attendance_setting_notify_on_absent"`

	// Timestamps
	ClassAttendanceSettingCreatedAt time.Time `gorm:"column:class_attendance_setting_created_at;autoCreateTime" json:"class_attendance_setting_created_at"`
	ClassAttendanceSettingUpdatedAt time.Time `gorm:"column:class_attendance_setting_updated_at;autoUpdateTime" json:"class_attendance_setting_updated_at"`
}

func (ClassAttendanceSettingModel) TableName() string {
	return "class_attendance_settings"
}
