// internals/features/school/attendance/service/attendance_service.go
package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sekolahku_backend/internals/cache"
	"sekolahku_backend/internals/constants"
	attDTO "sekolahku_backend/internals/features/school/attendance/dto"
	attModel "sekolahku_backend/internals/features/school/attendance/model"
	attRepo "sekolahku_backend/internals/features/school/attendance/repository"
	secModel "sekolahku_backend/internals/features/school/grade_sections/model"
	secRepo "sekolahku_backend/internals/features/school/grade_sections/repository"

	"github.com/gofiber/fiber/v2"
)

const maxRangeDays = 366

type AttendanceService struct {
	Repo     *attRepo.AttendanceRepository
	Sections *secRepo.GradeSectionRepository
	Cache    *cache.Cache
}

func NewAttendanceService(db *gorm.DB, ch *cache.Cache) *AttendanceService {
	return &AttendanceService{
		Repo:     attRepo.NewAttendanceRepository(db),
		Sections: secRepo.NewGradeSectionRepository(db),
		Cache:    ch,
	}
}

/* =========================================================
   Akses section
========================================================= */

// ensureSectionAccess: admin/owner bebas; teacher hanya section yang dia
// wali-kelasi; student/parent selalu 403. Section tidak ada → 404.
func (s *AttendanceService) ensureSectionAccess(ctx context.Context, sectionID uuid.UUID, role string, userID uuid.UUID) (*secModel.GradeSectionModel, error) {
	if role != constants.RoleTeacher && !constants.IsElevated(role) {
		return nil, fiber.NewError(fiber.StatusForbidden, "Anda tidak diizinkan mengakses absensi section")
	}

	sec, err := s.Sections.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Grade section tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if role == constants.RoleTeacher {
		if sec.GradeSectionTeacherID == nil || *sec.GradeSectionTeacherID != userID {
			return nil, fiber.NewError(fiber.StatusForbidden, "Section ini bukan milik Anda")
		}
	}
	return sec, nil
}

/* =========================================================
   RosterView
========================================================= */

// DailyRoster: left join enrollment aktif × record harian; siswa tanpa row
// tampil "unmarked". Section kosong → list kosong, bukan error.
func (s *AttendanceService) DailyRoster(ctx context.Context, sectionID uuid.UUID, date time.Time, role string, userID uuid.UUID) (*attDTO.DailyRosterResponse, error) {
	if _, err := s.ensureSectionAccess(ctx, sectionID, role, userID); err != nil {
		return nil, err
	}

	rows, err := s.Repo.DailyRoster(ctx, sectionID, date)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	entries := make([]attDTO.DailyRosterEntry, 0, len(rows))
	var present, absent, late, excused int
	for _, row := range rows {
		status := attModel.StatusUnmarked
		if row.Status != nil {
			status = *row.Status
		}
		switch attModel.ClassAttendanceStatus(status) {
		case attModel.ClassAttendancePresent:
			present++
		case attModel.ClassAttendanceAbsent:
			absent++
		case attModel.ClassAttendanceLate:
			late++
		case attModel.ClassAttendanceExcused:
			excused++
		}
		entries = append(entries, attDTO.DailyRosterEntry{
			StudentID:   row.StudentID,
			StudentName: row.StudentName,
			Status:      status,
			Notes:       row.Notes,
			MarkedAt:    row.MarkedAt,
		})
	}

	return &attDTO.DailyRosterResponse{
		GradeSectionID: sectionID,
		Date:           date.Format("2006-01-02"),
		Entries:        entries,
		Stats:          buildDailyStatistics(date, len(rows), present, absent, late, excused),
	}, nil
}

/* =========================================================
   BulkMutator
========================================================= */

// MarkBatch: best-effort per record — satu record rusak (status invalid,
// siswa di luar roster) tidak membatalkan sisanya. Guru tidak boleh
// kehilangan satu hari kerja gara-gara satu baris salah.
// Invalidasi cache jalan SINKRON sebelum return kalau ada yang tersimpan.
// Return kedua: daftar student id yang benar-benar tersimpan (buat dispatch
// notifikasi), sengaja di luar body response.
func (s *AttendanceService) MarkBatch(ctx context.Context, sectionID uuid.UUID, date time.Time, records []attDTO.BulkMarkRecord, markedBy uuid.UUID, role string) (*attDTO.BulkMarkResponse, []uuid.UUID, error) {
	if _, err := s.ensureSectionAccess(ctx, sectionID, role, markedBy); err != nil {
		return nil, nil, err
	}

	roster, err := s.Repo.ActiveStudentIDs(ctx, sectionID)
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	resp := &attDTO.BulkMarkResponse{Errors: []attDTO.BulkMarkError{}}
	markedIDs := make([]uuid.UUID, 0, len(records))
	now := time.Now().UTC()

	// Invalidasi SEBELUM response di-ack, di JALUR KELUAR APAPUN: error store
	// di tengah batch tetap meninggalkan record awal yang sudah komit, jadi
	// cache pre-write tetap harus gugur. Read-after-write tidak boleh ketemu
	// nilai pre-write.
	defer func() {
		if resp.MarkedCount > 0 {
			s.Cache.InvalidateSectionDate(ctx, sectionID, date)
		}
	}()

	for _, rec := range records {
		studentID, err := uuid.Parse(strings.TrimSpace(rec.StudentID))
		if err != nil {
			resp.Errors = append(resp.Errors, attDTO.BulkMarkError{
				StudentID: rec.StudentID,
				Reason:    "student_id tidak valid",
			})
			continue
		}

		// Klien tidak boleh set "unmarked" eksplisit; clear mark lewat reset.
		status := attModel.ClassAttendanceStatus(strings.ToLower(strings.TrimSpace(rec.Status)))
		if !status.Valid() {
			resp.Errors = append(resp.Errors, attDTO.BulkMarkError{
				StudentID: rec.StudentID,
				Reason:    "status tidak valid (present/absent/late/excused)",
			})
			continue
		}

		if _, ok := roster[studentID]; !ok {
			resp.Errors = append(resp.Errors, attDTO.BulkMarkError{
				StudentID: rec.StudentID,
				Reason:    "siswa tidak terdaftar aktif di section ini",
			})
			continue
		}

		row := attModel.ClassAttendanceModel{
			ClassAttendanceSectionID: sectionID,
			ClassAttendanceStudentID: studentID,
			ClassAttendanceDate:      datatypes.Date(date),
			ClassAttendanceStatus:    status,
			ClassAttendanceNotes:     rec.Notes,
			ClassAttendanceMarkedBy:  markedBy,
			ClassAttendanceMarkedAt:  now,
		}
		if err := s.Repo.Upsert(ctx, &row); err != nil {
			// Store gagal = correctness tidak bisa dijamin → 500, bukan per-record.
			return nil, nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		resp.MarkedCount++
		markedIDs = append(markedIDs, studentID)
	}

	return resp, markedIDs, nil
}

/* =========================================================
   Reset harian
========================================================= */

// Reset: hard delete semua row section+tanggal (bukan soft-mark), balikin
// jumlah terhapus. Invalidasi cache sama persis dengan MarkBatch.
func (s *AttendanceService) Reset(ctx context.Context, sectionID uuid.UUID, date time.Time, role string, resetBy uuid.UUID) (int64, error) {
	if !constants.IsElevated(role) {
		return 0, fiber.NewError(fiber.StatusForbidden, "Reset absensi hanya untuk admin")
	}
	if _, err := s.ensureSectionAccess(ctx, sectionID, role, resetBy); err != nil {
		return 0, err
	}

	n, err := s.Repo.DeleteAllForDate(ctx, sectionID, date)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	s.Cache.InvalidateSectionDate(ctx, sectionID, date)
	return n, nil
}

/* =========================================================
   Aggregator
========================================================= */

// RangeStats: satu entry per hari kalender, termasuk hari tanpa aktivitas —
// total dari ukuran roster, bukan dari jumlah record.
func (s *AttendanceService) RangeStats(ctx context.Context, sectionID uuid.UUID, from, to time.Time, role string, userID uuid.UUID) ([]attDTO.DailyStatistics, error) {
	if to.Before(from) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "end_date harus >= start_date")
	}
	if int(to.Sub(from).Hours()/24) > maxRangeDays {
		return nil, fiber.NewError(fiber.StatusBadRequest, "rentang tanggal maksimal 1 tahun")
	}
	if _, err := s.ensureSectionAccess(ctx, sectionID, role, userID); err != nil {
		return nil, err
	}

	total64, err := s.Repo.ActiveRosterCount(ctx, sectionID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	total := int(total64)

	counts, err := s.Repo.CountsByDateRange(ctx, sectionID, from, to)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	byDay := map[string]map[string]int{}
	for _, c := range counts {
		key := c.Date.Format("2006-01-02")
		if byDay[key] == nil {
			byDay[key] = map[string]int{}
		}
		byDay[key][c.Status] += c.Cnt
	}

	out := make([]attDTO.DailyStatistics, 0, 31)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		m := byDay[d.Format("2006-01-02")]
		out = append(out, buildDailyStatistics(d, total,
			m[string(attModel.ClassAttendancePresent)],
			m[string(attModel.ClassAttendanceAbsent)],
			m[string(attModel.ClassAttendanceLate)],
			m[string(attModel.ClassAttendanceExcused)],
		))
	}
	return out, nil
}

// StudentHistory: hanya hari yang PUNYA record (beda dengan RangeStats yang
// enumerasi seluruh kalender).
func (s *AttendanceService) StudentHistory(ctx context.Context, studentID uuid.UUID, from, to time.Time, role string, limit, offset int) ([]attDTO.StudentHistoryEntry, int64, error) {
	if role != constants.RoleTeacher && !constants.IsElevated(role) {
		return nil, 0, fiber.NewError(fiber.StatusForbidden, "Anda tidak diizinkan mengakses riwayat absensi")
	}
	if to.Before(from) {
		return nil, 0, fiber.NewError(fiber.StatusBadRequest, "end_date harus >= start_date")
	}

	total, err := s.Repo.CountByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, 0, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	rows, err := s.Repo.ByStudent(ctx, studentID, from, to, limit, offset)
	if err != nil {
		return nil, 0, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	out := make([]attDTO.StudentHistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, attDTO.StudentHistoryEntry{
			Date:             row.Date.Format("2006-01-02"),
			GradeSectionName: row.SectionName,
			Status:           row.Status,
			Notes:            row.Notes,
			MarkedAt:         row.MarkedAt,
		})
	}
	return out, total, nil
}

// SchoolDailyOverview: agregat seluruh section yang visible untuk caller,
// dihitung satu pass grouped (pengganti satu-query-per-section di dashboard).
func (s *AttendanceService) SchoolDailyOverview(ctx context.Context, date time.Time, role string, userID uuid.UUID) ([]attDTO.SectionDailyOverview, error) {
	if role != constants.RoleTeacher && !constants.IsElevated(role) {
		return nil, fiber.NewError(fiber.StatusForbidden, "Anda tidak diizinkan mengakses overview absensi")
	}

	sections, err := s.Sections.VisibleTo(ctx, role, userID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	ids := make([]uuid.UUID, 0, len(sections))
	for _, sec := range sections {
		ids = append(ids, sec.GradeSectionID)
	}

	counts, err := s.Repo.CountsBySectionsForDate(ctx, ids, date)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	bySection := map[uuid.UUID]map[string]int{}
	for _, c := range counts {
		if bySection[c.SectionID] == nil {
			bySection[c.SectionID] = map[string]int{}
		}
		bySection[c.SectionID][c.Status] += c.Cnt
	}

	out := make([]attDTO.SectionDailyOverview, 0, len(sections))
	for _, sec := range sections {
		m := bySection[sec.GradeSectionID]
		st := buildDailyStatistics(date, sec.StudentCount,
			m[string(attModel.ClassAttendancePresent)],
			m[string(attModel.ClassAttendanceAbsent)],
			m[string(attModel.ClassAttendanceLate)],
			m[string(attModel.ClassAttendanceExcused)],
		)
		out = append(out, attDTO.SectionDailyOverview{
			GradeSectionID:   sec.GradeSectionID,
			GradeSectionName: sec.GradeSectionName,
			Present:          st.Present,
			Absent:           st.Absent,
			Late:             st.Late,
			Excused:          st.Excused,
			Unmarked:         st.Unmarked,
			Total:            st.Total,
			AttendanceRate:   st.AttendanceRate,
		})
	}
	return out, nil
}

/* =========================================================
   Helpers
========================================================= */

// buildDailyStatistics: unmarked = total - semua yang tertanda;
// rate = round((present+late+excused)/total*100, 2), 0 kalau roster kosong
// (bukan NaN/null).
func buildDailyStatistics(date time.Time, total, present, absent, late, excused int) attDTO.DailyStatistics {
	unmarked := total - present - absent - late - excused
	if unmarked < 0 {
		unmarked = 0
	}
	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(present+late+excused)/float64(total)*100*100) / 100
	}
	return attDTO.DailyStatistics{
		Date:           date.Format("2006-01-02"),
		Total:          total,
		Present:        present,
		Absent:         absent,
		Late:           late,
		Excused:        excused,
		Unmarked:       unmarked,
		AttendanceRate: rate,
	}
}
