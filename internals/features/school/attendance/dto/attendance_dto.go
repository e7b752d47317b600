// internals/features/school/attendance/dto/attendance_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

/* =========================================================
   Bulk mark (POST /attendance/bulk-mark)
========================================================= */

// BulkMarkRecord: student_id sengaja string, biar id rusak cuma
// menggagalkan record itu (per-record error), bukan seluruh batch.
type BulkMarkRecord struct {
	StudentID string  `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required"`
	Notes     *string `json:"notes,omitempty"`
}

type BulkMarkRequest struct {
	GradeSectionID    uuid.UUID        `json:"grade_section_id" validate:"required"`
	Date              string           `json:"date" validate:"required"`
	AttendanceRecords []BulkMarkRecord `json:"attendance_records" validate:"required,min=1,dive"`
}

type BulkMarkError struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

type BulkMarkResponse struct {
	MarkedCount int             `json:"marked_count"`
	Errors      []BulkMarkError `json:"errors"`
}

/* =========================================================
   Reset (POST /attendance/reset)
========================================================= */

type ResetRequest struct {
	GradeSectionID uuid.UUID `json:"grade_section_id" validate:"required"`
	Date           string    `json:"date" validate:"required"`
}

type ResetResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

/* =========================================================
   Roster & statistik harian
========================================================= */

// DailyRosterEntry: satu baris per siswa roster per tanggal.
// Status "unmarked" hasil derive (tidak ada row), bukan nilai tersimpan.
type DailyRosterEntry struct {
	StudentID   uuid.UUID  `json:"student_id"`
	StudentName string     `json:"student_name"`
	Status      string     `json:"status"`
	Notes       *string    `json:"notes,omitempty"`
	MarkedAt    *time.Time `json:"marked_at,omitempty"`
}

type DailyStatistics struct {
	Date           string  `json:"date"`
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Excused        int     `json:"excused"`
	Unmarked       int     `json:"unmarked"`
	AttendanceRate float64 `json:"attendance_rate"`
}

type DailyRosterResponse struct {
	GradeSectionID uuid.UUID          `json:"grade_section_id"`
	Date           string             `json:"date"`
	Entries        []DailyRosterEntry `json:"entries"`
	Stats          DailyStatistics    `json:"stats"`
}

/* =========================================================
   Overview satu sekolah (GET /attendance/grade-sections/daily)
========================================================= */

type SectionDailyOverview struct {
	GradeSectionID   uuid.UUID `json:"grade_section_id"`
	GradeSectionName string    `json:"grade_section_name"`
	Present          int       `json:"present"`
	Absent           int       `json:"absent"`
	Late             int       `json:"late"`
	Excused          int       `json:"excused"`
	Unmarked         int       `json:"unmarked"`
	Total            int       `json:"total"`
	AttendanceRate   float64   `json:"attendance_rate"`
}

/* =========================================================
   Riwayat per siswa (GET /attendance/history)
========================================================= */

// Hanya hari yang punya record; hari unmarked tidak muncul di riwayat.
type StudentHistoryEntry struct {
	Date             string    `json:"date"`
	GradeSectionName string    `json:"grade_section_name"`
	Status           string    `json:"status"`
	Notes            *string   `json:"notes,omitempty"`
	MarkedAt         time.Time `json:"marked_at"`
}

/* =========================================================
   Kebijakan penandaan (GET/PUT /attendance/config)
========================================================= */

type AttendanceSettingResponse struct {
	GradeSectionID       *uuid.UUID `json:"grade_section_id,omitempty"` // nil = default global
	ResetTime            string     `json:"reset_time"`
	LateThresholdMinutes int        `json:"late_threshold_minutes"`
	DefaultStatus        string     `json:"default_status"`
	NotifyOnAbsent       bool       `json:"notify_on_absent"`
}

type UpdateAttendanceSettingRequest struct {
	GradeSectionID       *uuid.UUID `json:"grade_section_id,omitempty"`
	ResetTime            *string    `json:"reset_time,omitempty" validate:"omitempty,len=5"`
	LateThresholdMinutes *int       `json:"late_threshold_minutes,omitempty" validate:"omitempty,gte=0,lte=240"`
	DefaultStatus        *string    `json:"default_status,omitempty" validate:"omitempty,oneof=present absent late excused"`
	NotifyOnAbsent       *bool      `json:"notify_on_absent,omitempty"`
}
