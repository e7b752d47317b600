// internals/features/school/attendance/service/attendance_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sekolahku_backend/internals/cache"
	"sekolahku_backend/internals/constants"
	attDTO "sekolahku_backend/internals/features/school/attendance/dto"
)

// Skema test ditulis tangan: DDL produksi pakai default Postgres yang
// tidak dimengerti SQLite.
const testSchema = `
CREATE TABLE grade_sections (
  grade_section_id         TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  grade_section_name       TEXT NOT NULL,
  grade_section_slug       TEXT,
  grade_section_teacher_id TEXT,
  grade_section_is_active  BOOLEAN NOT NULL DEFAULT 1,
  grade_section_created_at DATETIME,
  grade_section_updated_at DATETIME,
  grade_section_deleted_at DATETIME
);
CREATE TABLE students (
  student_id         TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  student_name       TEXT NOT NULL,
  student_user_id    TEXT,
  student_created_at DATETIME,
  student_updated_at DATETIME,
  student_deleted_at DATETIME
);
CREATE TABLE student_enrollments (
  student_enrollment_id         TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  student_enrollment_student_id TEXT NOT NULL,
  student_enrollment_section_id TEXT NOT NULL,
  student_enrollment_is_active  BOOLEAN NOT NULL DEFAULT 1,
  student_enrollment_created_at DATETIME,
  student_enrollment_updated_at DATETIME,
  UNIQUE (student_enrollment_student_id, student_enrollment_section_id)
);
CREATE TABLE class_attendances (
  class_attendance_id         TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  class_attendance_section_id TEXT NOT NULL,
  class_attendance_student_id TEXT NOT NULL,
  class_attendance_date       DATE NOT NULL,
  class_attendance_status     TEXT NOT NULL,
  class_attendance_notes      TEXT,
  class_attendance_marked_by  TEXT NOT NULL,
  class_attendance_marked_at  DATETIME NOT NULL,
  class_attendance_created_at DATETIME,
  class_attendance_updated_at DATETIME,
  UNIQUE (class_attendance_section_id, class_attendance_student_id, class_attendance_date)
);
CREATE TABLE class_attendance_settings (
  class_attendance_setting_id                     TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  class_attendance_setting_section_id             TEXT UNIQUE,
  class_attendance_setting_reset_time             TEXT NOT NULL DEFAULT '04:00',
  class_attendance_setting_late_threshold_minutes INTEGER NOT NULL DEFAULT 15,
  class_attendance_setting_default_status         TEXT NOT NULL DEFAULT 'present',
  class_attendance_setting_notify_on_absent       BOOLEAN NOT NULL DEFAULT 1,
  class_attendance_setting_created_at             DATETIME,
  class_attendance_setting_updated_at             DATETIME
);
`

func newTestService(t *testing.T) (*AttendanceService, *gorm.DB, *cache.Cache) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_loc=UTC"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS class_attendance_settings",
		"DROP TABLE IF EXISTS class_attendances",
		"DROP TABLE IF EXISTS student_enrollments",
		"DROP TABLE IF EXISTS students",
		"DROP TABLE IF EXISTS grade_sections",
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	require.NoError(t, db.Exec(testSchema).Error)

	ch := cache.New(cache.NewMemoryStore(), time.Minute)
	return NewAttendanceService(db, ch), db, ch
}

func ymd(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedSection(t *testing.T, db *gorm.DB, name string, teacherID *uuid.UUID, studentNames ...string) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	sectionID := uuid.New()
	require.NoError(t, db.Exec(
		"INSERT INTO grade_sections (grade_section_id, grade_section_name, grade_section_slug, grade_section_teacher_id) VALUES (?, ?, ?, ?)",
		sectionID, name, name, teacherID,
	).Error)

	studentIDs := make([]uuid.UUID, 0, len(studentNames))
	for _, sn := range studentNames {
		sid := uuid.New()
		require.NoError(t, db.Exec(
			"INSERT INTO students (student_id, student_name) VALUES (?, ?)", sid, sn,
		).Error)
		require.NoError(t, db.Exec(
			"INSERT INTO student_enrollments (student_enrollment_id, student_enrollment_student_id, student_enrollment_section_id, student_enrollment_is_active) VALUES (?, ?, ?, 1)",
			uuid.New(), sid, sectionID,
		).Error)
		studentIDs = append(studentIDs, sid)
	}
	return sectionID, studentIDs
}

func fiberCode(t *testing.T, err error) int {
	t.Helper()
	fe, ok := err.(*fiber.Error)
	require.True(t, ok, "expected *fiber.Error, got %T: %v", err, err)
	return fe.Code
}

func recs(pairs ...[2]string) []attDTO.BulkMarkRecord {
	out := make([]attDTO.BulkMarkRecord, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, attDTO.BulkMarkRecord{StudentID: p[0], Status: p[1]})
	}
	return out
}

/* =========================================================
   Akses
========================================================= */

func TestSectionAccessRules(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, _ := seedSection(t, db, "7A", &wali, "Ani")
	day := ymd("2026-08-31")

	// Student & parent: selalu 403
	_, err := svc.DailyRoster(ctx, sectionID, day, constants.RoleStudent, uuid.New())
	assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))
	_, err = svc.DailyRoster(ctx, sectionID, day, constants.RoleParent, uuid.New())
	assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))

	// Teacher lain: 403
	_, err = svc.DailyRoster(ctx, sectionID, day, constants.RoleTeacher, uuid.New())
	assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))

	// Wali kelas & admin: boleh
	_, err = svc.DailyRoster(ctx, sectionID, day, constants.RoleTeacher, wali)
	assert.NoError(t, err)
	_, err = svc.DailyRoster(ctx, sectionID, day, constants.RoleAdmin, uuid.New())
	assert.NoError(t, err)

	// Section tidak ada: 404
	_, err = svc.DailyRoster(ctx, uuid.New(), day, constants.RoleAdmin, uuid.New())
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))
}

/* =========================================================
   RosterView + statistik
========================================================= */

func TestDailyRosterDerivesUnmarked(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, students := seedSection(t, db, "7A", &wali, "Ani", "Budi", "Citra", "Dewi")
	day := ymd("2026-08-31")

	resp, _, err := svc.MarkBatch(ctx, sectionID, day, recs(
		[2]string{students[0].String(), "present"},
		[2]string{students[1].String(), "late"},
		[2]string{students[2].String(), "absent"},
	), wali, constants.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.MarkedCount)

	roster, err := svc.DailyRoster(ctx, sectionID, day, constants.RoleTeacher, wali)
	require.NoError(t, err)
	require.Len(t, roster.Entries, 4)

	byName := map[string]string{}
	for _, e := range roster.Entries {
		byName[e.StudentName] = e.Status
	}
	assert.Equal(t, "present", byName["Ani"])
	assert.Equal(t, "late", byName["Budi"])
	assert.Equal(t, "absent", byName["Citra"])
	assert.Equal(t, "unmarked", byName["Dewi"], "siswa tanpa row → unmarked")

	st := roster.Stats
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 1, st.Present)
	assert.Equal(t, 1, st.Late)
	assert.Equal(t, 1, st.Absent)
	assert.Equal(t, 0, st.Excused)
	assert.Equal(t, 1, st.Unmarked)
	assert.Equal(t, st.Total, st.Present+st.Absent+st.Late+st.Excused+st.Unmarked)
	// rate = (present+late+excused)/total = 2/4
	assert.InDelta(t, 50.0, st.AttendanceRate, 0.001)
}

func TestDailyRosterEmptySection(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	sectionID, _ := seedSection(t, db, "8B", nil) // tanpa siswa

	roster, err := svc.DailyRoster(ctx, sectionID, ymd("2026-08-31"), constants.RoleAdmin, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, roster.Entries)
	assert.Equal(t, 0, roster.Stats.Total)
	assert.Equal(t, 0.0, roster.Stats.AttendanceRate, "roster kosong → rate 0, bukan NaN")
}

/* =========================================================
   BulkMutator
========================================================= */

func TestMarkBatchBestEffortPerRecord(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, students := seedSection(t, db, "7A", &wali, "Ani", "Budi")
	day := ymd("2026-08-31")
	outsider := uuid.New()

	resp, markedIDs, err := svc.MarkBatch(ctx, sectionID, day, []attDTO.BulkMarkRecord{
		{StudentID: students[0].String(), Status: "present"},
		{StudentID: "bukan-uuid", Status: "present"},
		{StudentID: students[1].String(), Status: "hadir"},        // status di luar enum
		{StudentID: outsider.String(), Status: "present"},         // bukan anggota roster
		{StudentID: students[1].String(), Status: "EXCUSED"},      // case-insensitive tetap sah
	}, wali, constants.RoleTeacher)
	require.NoError(t, err, "record rusak tidak boleh menggagalkan batch")

	assert.Equal(t, 2, resp.MarkedCount)
	require.Len(t, resp.Errors, 3)
	assert.ElementsMatch(t, []uuid.UUID{students[0], students[1]}, markedIDs)

	reasons := map[string]string{}
	for _, e := range resp.Errors {
		reasons[e.StudentID] = e.Reason
	}
	assert.Contains(t, reasons["bukan-uuid"], "student_id tidak valid")
	assert.Contains(t, reasons[students[1].String()], "status tidak valid")
	assert.Contains(t, reasons[outsider.String()], "tidak terdaftar aktif")
}

func TestMarkBatchRemarkOverwrites(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, students := seedSection(t, db, "7A", &wali, "Ani")
	day := ymd("2026-08-31")

	_, _, err := svc.MarkBatch(ctx, sectionID, day, recs([2]string{students[0].String(), "absent"}), wali, constants.RoleTeacher)
	require.NoError(t, err)

	// Koreksi di hari yang sama: last writer menang
	_, _, err = svc.MarkBatch(ctx, sectionID, day, recs([2]string{students[0].String(), "present"}), wali, constants.RoleTeacher)
	require.NoError(t, err)

	roster, err := svc.DailyRoster(ctx, sectionID, day, constants.RoleTeacher, wali)
	require.NoError(t, err)
	require.Len(t, roster.Entries, 1)
	assert.Equal(t, "present", roster.Entries[0].Status)

	var n int64
	require.NoError(t, db.Table("class_attendances").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestMarkBatchRejectsUnmarkedStatus(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, students := seedSection(t, db, "7A", &wali, "Ani")

	// "unmarked" bukan status yang bisa ditulis; clear lewat reset
	resp, _, err := svc.MarkBatch(ctx, sectionID, ymd("2026-08-31"),
		recs([2]string{students[0].String(), "unmarked"}), wali, constants.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.MarkedCount)
	require.Len(t, resp.Errors, 1)
}

func TestMarkBatchInvalidatesCache(t *testing.T) {
	svc, db, ch := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, students := seedSection(t, db, "7A", &wali, "Ani")
	day := ymd("2026-08-31")

	key := cache.BuildKey("daily", "teacher", wali, map[string]string{"section": sectionID.String()})
	ch.Set(ctx, key, []byte("stale"), []string{cache.SectionTag(sectionID, day)})
	ovwKey := cache.BuildKey("overview", "admin", uuid.Nil, map[string]string{"date": "2026-08-31"})
	ch.Set(ctx, ovwKey, []byte("stale"), []string{cache.OverviewTag(day)})

	_, _, err := svc.MarkBatch(ctx, sectionID, day, recs([2]string{students[0].String(), "present"}), wali, constants.RoleTeacher)
	require.NoError(t, err)

	_, ok := ch.Get(ctx, key)
	assert.False(t, ok, "cache section+tanggal harus gugur setelah mark")
	_, ok = ch.Get(ctx, ovwKey)
	assert.False(t, ok, "cache overview tanggal itu harus ikut gugur")
}

func TestMarkBatchStoreErrorStillInvalidatesCache(t *testing.T) {
	svc, db, ch := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, students := seedSection(t, db, "7A", &wali, "Ani", "Budi")
	day := ymd("2026-08-31")

	// Bangun ulang tabel dengan CHECK yang menolak "late": record kedua bakal
	// gagal di store SETELAH record pertama komit (per-record, tanpa transaksi)
	require.NoError(t, db.Exec("DROP TABLE class_attendances").Error)
	require.NoError(t, db.Exec(`
CREATE TABLE class_attendances (
  class_attendance_id         TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  class_attendance_section_id TEXT NOT NULL,
  class_attendance_student_id TEXT NOT NULL,
  class_attendance_date       DATE NOT NULL,
  class_attendance_status     TEXT NOT NULL CHECK (class_attendance_status <> 'late'),
  class_attendance_notes      TEXT,
  class_attendance_marked_by  TEXT NOT NULL,
  class_attendance_marked_at  DATETIME NOT NULL,
  class_attendance_created_at DATETIME,
  class_attendance_updated_at DATETIME,
  UNIQUE (class_attendance_section_id, class_attendance_student_id, class_attendance_date)
)`).Error)

	key := "roster-cache"
	ch.Set(ctx, key, []byte("stale"), []string{cache.SectionTag(sectionID, day)})

	_, _, err := svc.MarkBatch(ctx, sectionID, day, recs(
		[2]string{students[0].String(), "present"},
		[2]string{students[1].String(), "late"},
	), wali, constants.RoleTeacher)
	assert.Equal(t, fiber.StatusInternalServerError, fiberCode(t, err), "error store = 500, bukan per-record")

	// Record pertama sudah komit walau batch berakhir error
	var n int64
	require.NoError(t, db.Table("class_attendances").Count(&n).Error)
	assert.EqualValues(t, 1, n)

	// DB sudah berubah → cache section+tanggal harus gugur juga di jalur error
	_, ok := ch.Get(ctx, key)
	assert.False(t, ok)
}

func TestMarkBatchAllInvalidKeepsCache(t *testing.T) {
	svc, db, ch := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, _ := seedSection(t, db, "7A", &wali, "Ani")
	day := ymd("2026-08-31")

	key := "k"
	ch.Set(ctx, key, []byte("fresh"), []string{cache.SectionTag(sectionID, day)})

	resp, _, err := svc.MarkBatch(ctx, sectionID, day, recs([2]string{"bukan-uuid", "present"}), wali, constants.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.MarkedCount)

	// Tidak ada yang tersimpan → tidak ada alasan membuang cache
	_, ok := ch.Get(ctx, key)
	assert.True(t, ok)
}

/* =========================================================
   Reset
========================================================= */

func TestResetDeletesDayAndRestoresUnmarked(t *testing.T) {
	svc, db, ch := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, students := seedSection(t, db, "7A", &wali, "Ani", "Budi")
	day := ymd("2026-08-31")

	_, _, err := svc.MarkBatch(ctx, sectionID, day, recs(
		[2]string{students[0].String(), "present"},
		[2]string{students[1].String(), "absent"},
	), wali, constants.RoleTeacher)
	require.NoError(t, err)

	key := "roster-cache"
	ch.Set(ctx, key, []byte("stale"), []string{cache.SectionTag(sectionID, day)})

	// Teacher tidak boleh reset
	_, err = svc.Reset(ctx, sectionID, day, constants.RoleTeacher, wali)
	assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))

	n, err := svc.Reset(ctx, sectionID, day, constants.RoleAdmin, uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, ok := ch.Get(ctx, key)
	assert.False(t, ok)

	roster, err := svc.DailyRoster(ctx, sectionID, day, constants.RoleTeacher, wali)
	require.NoError(t, err)
	for _, e := range roster.Entries {
		assert.Equal(t, "unmarked", e.Status)
	}

	// Reset hari yang sudah kosong: sukses, deleted 0
	n, err = svc.Reset(ctx, sectionID, day, constants.RoleOwner, uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

/* =========================================================
   Aggregator
========================================================= */

func TestRangeStatsEnumeratesCalendarDays(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, students := seedSection(t, db, "7A", &wali, "Ani", "Budi")

	_, _, err := svc.MarkBatch(ctx, sectionID, ymd("2026-08-31"), recs(
		[2]string{students[0].String(), "present"},
		[2]string{students[1].String(), "excused"},
	), wali, constants.RoleTeacher)
	require.NoError(t, err)
	_, _, err = svc.MarkBatch(ctx, sectionID, ymd("2026-09-02"), recs(
		[2]string{students[0].String(), "absent"},
	), wali, constants.RoleTeacher)
	require.NoError(t, err)

	stats, err := svc.RangeStats(ctx, sectionID, ymd("2026-08-31"), ymd("2026-09-02"), constants.RoleTeacher, wali)
	require.NoError(t, err)
	require.Len(t, stats, 3, "satu entry per hari kalender, termasuk hari kosong")

	assert.Equal(t, "2026-08-31", stats[0].Date)
	assert.Equal(t, 1, stats[0].Present)
	assert.Equal(t, 1, stats[0].Excused)
	assert.Equal(t, 0, stats[0].Unmarked)
	assert.InDelta(t, 100.0, stats[0].AttendanceRate, 0.001)

	// Hari tanpa aktivitas: semua unmarked, total tetap ukuran roster
	assert.Equal(t, "2026-09-01", stats[1].Date)
	assert.Equal(t, 2, stats[1].Total)
	assert.Equal(t, 2, stats[1].Unmarked)
	assert.Equal(t, 0.0, stats[1].AttendanceRate)

	assert.Equal(t, "2026-09-02", stats[2].Date)
	assert.Equal(t, 1, stats[2].Absent)
	assert.Equal(t, 1, stats[2].Unmarked)

	for _, st := range stats {
		assert.Equal(t, st.Total, st.Present+st.Absent+st.Late+st.Excused+st.Unmarked)
		assert.GreaterOrEqual(t, st.AttendanceRate, 0.0)
		assert.LessOrEqual(t, st.AttendanceRate, 100.0)
	}
}

func TestRangeStatsValidatesRange(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	sectionID, _ := seedSection(t, db, "7A", nil, "Ani")

	_, err := svc.RangeStats(ctx, sectionID, ymd("2026-09-02"), ymd("2026-08-31"), constants.RoleAdmin, uuid.New())
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err), "end < start harus 400")

	_, err = svc.RangeStats(ctx, sectionID, ymd("2025-01-01"), ymd("2026-08-31"), constants.RoleAdmin, uuid.New())
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err), "rentang > 1 tahun harus 400")
}

func TestSchoolDailyOverviewVisibility(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	waliA := uuid.New()
	waliB := uuid.New()
	secA, studentsA := seedSection(t, db, "7A", &waliA, "Ani", "Budi")
	secB, _ := seedSection(t, db, "7B", &waliB, "Citra")

	_, _, err := svc.MarkBatch(ctx, secA, ymd("2026-08-31"), recs(
		[2]string{studentsA[0].String(), "present"},
	), waliA, constants.RoleTeacher)
	require.NoError(t, err)

	// Admin melihat semua section
	all, err := svc.SchoolDailyOverview(ctx, ymd("2026-08-31"), constants.RoleAdmin, uuid.New())
	require.NoError(t, err)
	require.Len(t, all, 2)

	bySec := map[uuid.UUID]attDTO.SectionDailyOverview{}
	for _, o := range all {
		bySec[o.GradeSectionID] = o
	}
	assert.Equal(t, 1, bySec[secA].Present)
	assert.Equal(t, 1, bySec[secA].Unmarked)
	assert.Equal(t, 2, bySec[secA].Total)
	assert.Equal(t, 1, bySec[secB].Unmarked)
	assert.Equal(t, 0.0, bySec[secB].AttendanceRate)

	// Teacher hanya section miliknya
	mine, err := svc.SchoolDailyOverview(ctx, ymd("2026-08-31"), constants.RoleTeacher, waliA)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, secA, mine[0].GradeSectionID)

	// Student: 403
	_, err = svc.SchoolDailyOverview(ctx, ymd("2026-08-31"), constants.RoleStudent, uuid.New())
	assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))
}

func TestStudentHistoryOnlyMarkedDays(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	wali := uuid.New()
	sectionID, students := seedSection(t, db, "7A", &wali, "Ani")

	_, _, err := svc.MarkBatch(ctx, sectionID, ymd("2026-08-25"), recs([2]string{students[0].String(), "late"}), wali, constants.RoleTeacher)
	require.NoError(t, err)
	_, _, err = svc.MarkBatch(ctx, sectionID, ymd("2026-08-27"), recs([2]string{students[0].String(), "present"}), wali, constants.RoleTeacher)
	require.NoError(t, err)

	items, total, err := svc.StudentHistory(ctx, students[0], ymd("2026-08-01"), ymd("2026-08-31"), constants.RoleTeacher, 50, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2, "hari unmarked tidak muncul di riwayat")
	assert.Equal(t, "2026-08-25", items[0].Date)
	assert.Equal(t, "late", items[0].Status)
	assert.Equal(t, "7A", items[0].GradeSectionName)
	assert.Equal(t, "2026-08-27", items[1].Date)

	_, _, err = svc.StudentHistory(ctx, students[0], ymd("2026-08-01"), ymd("2026-08-31"), constants.RoleParent, 50, 0)
	assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))
}

/* =========================================================
   Kebijakan penandaan
========================================================= */

func TestSettingFallbackChain(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	sectionID, _ := seedSection(t, db, "7A", nil, "Ani")

	// Belum ada row apapun → default bawaan
	got, err := svc.GetSetting(ctx, &sectionID)
	require.NoError(t, err)
	assert.Equal(t, "04:00", got.ResetTime)
	assert.Equal(t, 15, got.LateThresholdMinutes)
	assert.Equal(t, "present", got.DefaultStatus)
	assert.True(t, got.NotifyOnAbsent)

	// Set global (tanpa section) → dipakai semua section
	rt := "05:30"
	_, err = svc.UpdateSetting(ctx, attDTO.UpdateAttendanceSettingRequest{ResetTime: &rt})
	require.NoError(t, err)

	got, err = svc.GetSetting(ctx, &sectionID)
	require.NoError(t, err)
	assert.Equal(t, "05:30", got.ResetTime)

	// Override per-section menimpa global
	lt := 30
	_, err = svc.UpdateSetting(ctx, attDTO.UpdateAttendanceSettingRequest{GradeSectionID: &sectionID, LateThresholdMinutes: &lt})
	require.NoError(t, err)

	got, err = svc.GetSetting(ctx, &sectionID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.LateThresholdMinutes)

	// Global tidak berubah
	got, err = svc.GetSetting(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, got.LateThresholdMinutes)
	assert.Equal(t, "05:30", got.ResetTime)
}

func TestUpdateSettingValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	bad := "8 pagi"
	_, err := svc.UpdateSetting(ctx, attDTO.UpdateAttendanceSettingRequest{ResetTime: &bad})
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))

	missing := uuid.New()
	rt := "05:00"
	_, err = svc.UpdateSetting(ctx, attDTO.UpdateAttendanceSettingRequest{GradeSectionID: &missing, ResetTime: &rt})
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))
}
