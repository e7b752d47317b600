// internals/features/school/attendance/repository/attendance_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	attModel "sekolahku_backend/internals/features/school/attendance/model"
)

// AttendanceRepository: kontrak persistensi absensi harian.
// Semua agregasi dikerjakan sebagai query eksplisit di sini (tanpa stored
// procedure), jadi engine relational apapun yang punya upsert + range scan bisa.
type AttendanceRepository struct {
	DB *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

/* =========================================================
   Tulis
========================================================= */

// Upsert: satu row per (section, student, date). Konflik di unique key →
// overwrite status/notes/marked_by/marked_at (last writer menang, tanpa
// optimistic lock).
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *attModel.ClassAttendanceModel) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "class_attendance_section_id"},
				{Name: "class_attendance_student_id"},
				{Name: "class_attendance_date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"class_attendance_status",
				"class_attendance_notes",
				"class_attendance_marked_by",
				"class_attendance_marked_at",
				"class_attendance_updated_at",
			}),
		}).
		Create(rec).Error
}

// DeleteAllForDate: reset harian = hard delete semua row section+tanggal.
// "Unmarked" balik lagi dari ketiadaan row, bukan dari status sentinel.
func (r *AttendanceRepository) DeleteAllForDate(ctx context.Context, sectionID uuid.UUID, date time.Time) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Where("class_attendance_section_id = ? AND class_attendance_date = ?", sectionID, datatypes.Date(date)).
		Delete(&attModel.ClassAttendanceModel{})
	return tx.RowsAffected, tx.Error
}

/* =========================================================
   Baca flat (derive "unmarked" urusan layer atas)
========================================================= */

func (r *AttendanceRepository) RangeQuery(ctx context.Context, sectionID uuid.UUID, from, to time.Time) ([]attModel.ClassAttendanceModel, error) {
	var out []attModel.ClassAttendanceModel
	err := r.DB.WithContext(ctx).
		Where("class_attendance_section_id = ?", sectionID).
		Where("class_attendance_date BETWEEN ? AND ?", datatypes.Date(from), datatypes.Date(to)).
		Order("class_attendance_date ASC").
		Find(&out).Error
	return out, err
}

// StudentHistoryRow: riwayat per siswa + nama section (join).
type StudentHistoryRow struct {
	Date        time.Time  `gorm:"column:att_date"`
	SectionName string     `gorm:"column:section_name"`
	Status      string     `gorm:"column:att_status"`
	Notes       *string    `gorm:"column:att_notes"`
	MarkedAt    time.Time  `gorm:"column:att_marked_at"`
}

func (r *AttendanceRepository) ByStudent(ctx context.Context, studentID uuid.UUID, from, to time.Time, limit, offset int) ([]StudentHistoryRow, error) {
	tx := r.DB.WithContext(ctx).
		Table("class_attendances a").
		Select(`a.class_attendance_date  AS att_date,
		        gs.grade_section_name    AS section_name,
		        a.class_attendance_status AS att_status,
		        a.class_attendance_notes  AS att_notes,
		        a.class_attendance_marked_at AS att_marked_at`).
		Joins("JOIN grade_sections gs ON gs.grade_section_id = a.class_attendance_section_id").
		Where("a.class_attendance_student_id = ?", studentID).
		Where("a.class_attendance_date BETWEEN ? AND ?", datatypes.Date(from), datatypes.Date(to)).
		Order("a.class_attendance_date ASC")
	if limit > 0 {
		tx = tx.Limit(limit).Offset(offset)
	}
	var out []StudentHistoryRow
	err := tx.Scan(&out).Error
	return out, err
}

/* =========================================================
   Roster harian (left join enrollment aktif × record)
========================================================= */

// RosterRow: Status/Notes/MarkedAt nullable — NULL = belum ditandai.
type RosterRow struct {
	StudentID   uuid.UUID  `gorm:"column:student_id"`
	StudentName string     `gorm:"column:student_name"`
	Status      *string    `gorm:"column:att_status"`
	Notes       *string    `gorm:"column:att_notes"`
	MarkedAt    *time.Time `gorm:"column:att_marked_at"`
}

// DailyRoster: SEMUA siswa enrollment aktif muncul tepat sekali, ada record
// atau tidak. Urut nama case-insensitive biar stabil untuk UI & test.
func (r *AttendanceRepository) DailyRoster(ctx context.Context, sectionID uuid.UUID, date time.Time) ([]RosterRow, error) {
	var out []RosterRow
	err := r.DB.WithContext(ctx).
		Table("student_enrollments e").
		Select(`s.student_id,
		        s.student_name,
		        a.class_attendance_status    AS att_status,
		        a.class_attendance_notes     AS att_notes,
		        a.class_attendance_marked_at AS att_marked_at`).
		Joins("JOIN students s ON s.student_id = e.student_enrollment_student_id AND s.student_deleted_at IS NULL").
		Joins(`LEFT JOIN class_attendances a
		         ON a.class_attendance_student_id = e.student_enrollment_student_id
		        AND a.class_attendance_section_id = e.student_enrollment_section_id
		        AND a.class_attendance_date = ?`, datatypes.Date(date)).
		Where("e.student_enrollment_section_id = ?", sectionID).
		Where("e.student_enrollment_is_active = ?", true).
		Order("LOWER(s.student_name) ASC").
		Scan(&out).Error
	return out, err
}

// ActiveStudentIDs: set siswa roster aktif (validasi bulk-mark per record).
func (r *AttendanceRepository) ActiveStudentIDs(ctx context.Context, sectionID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	err := r.DB.WithContext(ctx).
		Table("student_enrollments").
		Where("student_enrollment_section_id = ?", sectionID).
		Where("student_enrollment_is_active = ?", true).
		Pluck("student_enrollment_student_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *AttendanceRepository) ActiveRosterCount(ctx context.Context, sectionID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Table("student_enrollments").
		Where("student_enrollment_section_id = ?", sectionID).
		Where("student_enrollment_is_active = ?", true).
		Count(&n).Error
	return n, err
}

/* =========================================================
   Agregasi (grouped, satu pass — tanpa N+1)
========================================================= */

type DateStatusCount struct {
	Date   time.Time `gorm:"column:att_date"`
	Status string    `gorm:"column:att_status"`
	Cnt    int       `gorm:"column:cnt"`
}

// CountsByDateRange: hitung per tanggal+status untuk satu section.
// Hari tanpa aktivitas memang tidak muncul di sini; enumerasi kalender
// urusan Aggregator (total tetap dari ukuran roster).
func (r *AttendanceRepository) CountsByDateRange(ctx context.Context, sectionID uuid.UUID, from, to time.Time) ([]DateStatusCount, error) {
	var out []DateStatusCount
	err := r.DB.WithContext(ctx).
		Table("class_attendances").
		Select(`class_attendance_date   AS att_date,
		        class_attendance_status AS att_status,
		        COUNT(*)                AS cnt`).
		Where("class_attendance_section_id = ?", sectionID).
		Where("class_attendance_date BETWEEN ? AND ?", datatypes.Date(from), datatypes.Date(to)).
		Group("class_attendance_date").
		Group("class_attendance_status").
		Scan(&out).Error
	return out, err
}

type SectionStatusCount struct {
	SectionID uuid.UUID `gorm:"column:section_id"`
	Status    string    `gorm:"column:att_status"`
	Cnt       int       `gorm:"column:cnt"`
}

// CountsBySectionsForDate: satu query grouped untuk overview seluruh sekolah,
// menggantikan pola satu-query-per-section di dashboard.
func (r *AttendanceRepository) CountsBySectionsForDate(ctx context.Context, sectionIDs []uuid.UUID, date time.Time) ([]SectionStatusCount, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	var out []SectionStatusCount
	err := r.DB.WithContext(ctx).
		Table("class_attendances").
		Select(`class_attendance_section_id AS section_id,
		        class_attendance_status     AS att_status,
		        COUNT(*)                    AS cnt`).
		Where("class_attendance_section_id IN ?", sectionIDs).
		Where("class_attendance_date = ?", datatypes.Date(date)).
		Group("class_attendance_section_id").
		Group("class_attendance_status").
		Scan(&out).Error
	return out, err
}
// CountByStudent: total row riwayat (untuk pagination).
func (r *AttendanceRepository) CountByStudent(ctx context.Context, studentID uuid.UUID, from, to time.Time) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&attModel.ClassAttendanceModel{}).
		Where("class_attendance_student_id = ?", studentID).
		Where("class_attendance_date BETWEEN ? AND ?", datatypes.Date(from), datatypes.Date(to)).
		Count(&n).Error
	return n, err
}
