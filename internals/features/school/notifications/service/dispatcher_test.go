// internals/features/school/notifications/service/dispatcher_test.go
package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	notifModel "sekolahku_backend/internals/features/school/notifications/model"
)

const testSchema = `
CREATE TABLE attendance_notifications (
  attendance_notification_id          TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  attendance_notification_section_id  TEXT NOT NULL,
  attendance_notification_date        DATE NOT NULL,
  attendance_notification_student_ids TEXT,
  attendance_notification_marked_by   TEXT NOT NULL,
  attendance_notification_sent        BOOLEAN NOT NULL DEFAULT 0,
  attendance_notification_created_at  DATETIME
);
`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_loc=UTC"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("DROP TABLE IF EXISTS attendance_notifications").Error)
	require.NoError(t, db.Exec(testSchema).Error)
	return db
}

func TestDispatchPostsWebhookAndMarksSent(t *testing.T) {
	db := newTestDB(t)

	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := &Dispatcher{
		DB:         db,
		WebhookURL: srv.URL,
		Client:     &http.Client{Timeout: 5 * time.Second},
	}

	sectionID := uuid.New()
	markedBy := uuid.New()
	studentIDs := []uuid.UUID{uuid.New(), uuid.New()}
	day, _ := time.Parse("2006-01-02", "2026-08-31")

	// Dipanggil langsung (produksi: go d.Dispatch) biar deterministik
	d.Dispatch(sectionID, day, studentIDs, markedBy)

	assert.Equal(t, "application/json", gotContentType)

	var payload struct {
		GradeSectionID uuid.UUID   `json:"grade_section_id"`
		Date           string      `json:"date"`
		StudentIDs     []uuid.UUID `json:"student_ids"`
		MarkedBy       uuid.UUID   `json:"marked_by"`
	}
	require.NoError(t, sonic.Unmarshal(gotBody, &payload))
	assert.Equal(t, sectionID, payload.GradeSectionID)
	assert.Equal(t, "2026-08-31", payload.Date)
	assert.Equal(t, studentIDs, payload.StudentIDs)
	assert.Equal(t, markedBy, payload.MarkedBy)

	// Jejak dispatch tersimpan
	var rows []notifModel.AttendanceNotificationModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, sectionID, rows[0].AttendanceNotificationSectionID)
	assert.Len(t, rows[0].AttendanceNotificationStudentIDs, 2)
}

func TestDispatchWithoutWebhookStillPersists(t *testing.T) {
	db := newTestDB(t)
	d := &Dispatcher{DB: db, WebhookURL: "", Client: &http.Client{Timeout: time.Second}}

	day, _ := time.Parse("2006-01-02", "2026-08-31")
	d.Dispatch(uuid.New(), day, []uuid.UUID{uuid.New()}, uuid.New())

	var n int64
	require.NoError(t, db.Table("attendance_notifications").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestDispatchSwallowsWebhookFailure(t *testing.T) {
	db := newTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := &Dispatcher{DB: db, WebhookURL: srv.URL, Client: &http.Client{Timeout: time.Second}}

	day, _ := time.Parse("2006-01-02", "2026-08-31")
	// Tidak boleh panic/error keluar; jejak tetap tersimpan dengan sent=false
	d.Dispatch(uuid.New(), day, []uuid.UUID{uuid.New()}, uuid.New())

	var rows []notifModel.AttendanceNotificationModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].AttendanceNotificationSent)
}
