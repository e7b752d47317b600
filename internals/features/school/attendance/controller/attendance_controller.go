// internals/features/school/attendance/controller/attendance_controller.go
package controller

import (
	"encoding/json"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/cache"
	attDTO "sekolahku_backend/internals/features/school/attendance/dto"
	attService "sekolahku_backend/internals/features/school/attendance/service"
	notifService "sekolahku_backend/internals/features/school/notifications/service"
	helper "sekolahku_backend/internals/helpers"
)

type AttendanceController struct {
	DB         *gorm.DB
	Validator  *validator.Validate
	Service    *attService.AttendanceService
	Cache      *cache.Cache
	Dispatcher *notifService.Dispatcher
}

func NewAttendanceController(db *gorm.DB, ch *cache.Cache) *AttendanceController {
	return &AttendanceController{
		DB:         db,
		Validator:  validator.New(),
		Service:    attService.NewAttendanceService(db, ch),
		Cache:      ch,
		Dispatcher: notifService.NewDispatcher(db),
	}
}

// respondErr: fiber.Error dari service → envelope JSON standar.
func respondErr(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
}

// caller: identitas dari token (role + user id) untuk key cache & akses.
func caller(c *fiber.Ctx) (string, uuid.UUID, error) {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return "", uuid.Nil, err
	}
	return helper.GetRoleFromToken(c), uid, nil
}

// serveCached: read-through — cek cache dulu (HIT header + body tersimpan),
// miss → fetch live, simpan best-effort, MISS header. Cache error tidak
// pernah menggagalkan request.
func (ctl *AttendanceController) serveCached(c *fiber.Ctx, route string, params map[string]string, tags []string, message string, fetch func() (any, error)) error {
	role, uid, err := caller(c)
	if err != nil {
		return respondErr(c, err)
	}
	key := cache.BuildKey(route, role, uid, params)
	ctx := c.UserContext()

	if b, ok := ctl.Cache.Get(ctx, key); ok {
		c.Set("X-Cache", "HIT")
		return helper.JsonOK(c, message, json.RawMessage(b))
	}

	data, err := fetch()
	if err != nil {
		return respondErr(c, err)
	}
	if b, mErr := sonic.Marshal(data); mErr == nil {
		ctl.Cache.Set(ctx, key, b, tags)
	}
	c.Set("X-Cache", "MISS")
	return helper.JsonOK(c, message, data)
}

/* =========================================================
   GET /attendance?grade_section_id=&date=
   Roster harian + statistik satu section
========================================================= */

func (ctl *AttendanceController) GetDailyAttendance(c *fiber.Ctx) error {
	sectionID, err := uuid.Parse(strings.TrimSpace(c.Query("grade_section_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "grade_section_id tidak valid")
	}
	date, err := helper.ParseDateYMD(c.Query("date"), "date")
	if err != nil {
		return respondErr(c, err)
	}
	role, uid, err := caller(c)
	if err != nil {
		return respondErr(c, err)
	}

	return ctl.serveCached(c, "daily",
		map[string]string{"section": sectionID.String(), "date": date.Format(helper.DateLayout)},
		[]string{cache.SectionTag(sectionID, date)},
		"Roster absensi harian berhasil diambil",
		func() (any, error) {
			return ctl.Service.DailyRoster(c.UserContext(), sectionID, date, role, uid)
		},
	)
}

/* =========================================================
   GET /attendance/grade-sections/daily?date=
   Overview seluruh sekolah, satu panggilan
========================================================= */

func (ctl *AttendanceController) GetSchoolDailyOverview(c *fiber.Ctx) error {
	date, err := helper.ParseDateYMD(c.Query("date"), "date")
	if err != nil {
		return respondErr(c, err)
	}
	role, uid, err := caller(c)
	if err != nil {
		return respondErr(c, err)
	}

	return ctl.serveCached(c, "overview",
		map[string]string{"date": date.Format(helper.DateLayout)},
		[]string{cache.OverviewTag(date)},
		"Overview absensi sekolah berhasil diambil",
		func() (any, error) {
			return ctl.Service.SchoolDailyOverview(c.UserContext(), date, role, uid)
		},
	)
}

/* =========================================================
   POST /attendance/bulk-mark
========================================================= */

func (ctl *AttendanceController) BulkMark(c *fiber.Ctx) error {
	var req attDTO.BulkMarkRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	date, err := helper.ParseDateYMD(req.Date, "date")
	if err != nil {
		return respondErr(c, err)
	}
	role, uid, err := caller(c)
	if err != nil {
		return respondErr(c, err)
	}

	resp, markedIDs, err := ctl.Service.MarkBatch(c.UserContext(), req.GradeSectionID, date, req.AttendanceRecords, uid, role)
	if err != nil {
		return respondErr(c, err)
	}

	// Notifikasi fire-and-forget SETELAH response path; goroutine lepas,
	// tanpa retry, tanpa propagasi error ke request.
	if resp.MarkedCount > 0 {
		go ctl.Dispatcher.Dispatch(req.GradeSectionID, date, markedIDs, uid)
	}

	return helper.JsonOK(c, "Absensi berhasil ditandai", resp)
}

/* =========================================================
   POST /attendance/reset
========================================================= */

func (ctl *AttendanceController) Reset(c *fiber.Ctx) error {
	var req attDTO.ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	date, err := helper.ParseDateYMD(req.Date, "date")
	if err != nil {
		return respondErr(c, err)
	}
	role, uid, err := caller(c)
	if err != nil {
		return respondErr(c, err)
	}

	n, err := ctl.Service.Reset(c.UserContext(), req.GradeSectionID, date, role, uid)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "Absensi hari ini berhasil direset", attDTO.ResetResponse{DeletedCount: n})
}

/* =========================================================
   GET /attendance/stats?grade_section_id=&start_date=&end_date=
========================================================= */

// Range panjang tidak dicache: tag per-hari membengkak, dan read stats
// jangka panjang memang jarang dibaca ulang dalam satu window TTL.
const maxCachedRangeDays = 62

func (ctl *AttendanceController) GetRangeStats(c *fiber.Ctx) error {
	sectionID, err := uuid.Parse(strings.TrimSpace(c.Query("grade_section_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "grade_section_id tidak valid")
	}
	from, err := helper.ParseDateYMD(c.Query("start_date"), "start_date")
	if err != nil {
		return respondErr(c, err)
	}
	to, err := helper.ParseDateYMD(c.Query("end_date"), "end_date")
	if err != nil {
		return respondErr(c, err)
	}
	role, uid, err := caller(c)
	if err != nil {
		return respondErr(c, err)
	}

	fetch := func() (any, error) {
		return ctl.Service.RangeStats(c.UserContext(), sectionID, from, to, role, uid)
	}

	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 || days > maxCachedRangeDays {
		data, err := fetch()
		if err != nil {
			return respondErr(c, err)
		}
		c.Set("X-Cache", "BYPASS")
		return helper.JsonOK(c, "Statistik absensi berhasil diambil", data)
	}

	tags := make([]string, 0, days)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		tags = append(tags, cache.SectionTag(sectionID, d))
	}
	return ctl.serveCached(c, "stats",
		map[string]string{
			"section": sectionID.String(),
			"from":    from.Format(helper.DateLayout),
			"to":      to.Format(helper.DateLayout),
		},
		tags, "Statistik absensi berhasil diambil", fetch)
}

/* =========================================================
   GET /attendance/history?student_id=&start_date=&end_date=
========================================================= */

// Riwayat tidak dicache: scope (section, tanggal) record-nya baru ketahuan
// setelah query, jadi tidak bisa ditag dengan benar sebelum fetch.
func (ctl *AttendanceController) GetStudentHistory(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(strings.TrimSpace(c.Query("student_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "student_id tidak valid")
	}
	from, err := helper.ParseDateYMD(c.Query("start_date"), "start_date")
	if err != nil {
		return respondErr(c, err)
	}
	to, err := helper.ParseDateYMD(c.Query("end_date"), "end_date")
	if err != nil {
		return respondErr(c, err)
	}
	role, _, err := caller(c)
	if err != nil {
		return respondErr(c, err)
	}

	p := helper.ResolvePaging(c, 50, 200)
	items, total, err := ctl.Service.StudentHistory(c.UserContext(), studentID, from, to, role, p.Limit, p.Offset)
	if err != nil {
		return respondErr(c, err)
	}

	c.Set("X-Cache", "BYPASS")
	return helper.JsonList(c, "Riwayat absensi siswa berhasil diambil", items,
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

/* =========================================================
   GET/PUT /attendance/config
========================================================= */

func (ctl *AttendanceController) GetConfig(c *fiber.Ctx) error {
	var sectionID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("grade_section_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "grade_section_id tidak valid")
		}
		sectionID = &id
	}

	resp, err := ctl.Service.GetSetting(c.UserContext(), sectionID)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "Kebijakan absensi berhasil diambil", resp)
}

func (ctl *AttendanceController) UpdateConfig(c *fiber.Ctx) error {
	var req attDTO.UpdateAttendanceSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := ctl.Service.UpdateSetting(c.UserContext(), req)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonUpdated(c, "Kebijakan absensi berhasil diperbarui", resp)
}
