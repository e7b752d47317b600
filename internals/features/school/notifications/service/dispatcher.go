// internals/features/school/notifications/service/dispatcher.go
package service

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	notifModel "sekolahku_backend/internals/features/school/notifications/model"
)

// Dispatcher: fan-out hasil penandaan ke service push eksternal.
// At-most-once, best-effort: gagal ya sudah — dilog, tidak diretry, dan tidak
// pernah mempengaruhi kebenaran absensi maupun latency response.
type Dispatcher struct {
	DB         *gorm.DB
	WebhookURL string
	Client     *http.Client
}

func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{
		DB:         db,
		WebhookURL: configs.NotifyWebhookURL,
		Client:     &http.Client{Timeout: 5 * time.Second},
	}
}

type notifyPayload struct {
	GradeSectionID uuid.UUID   `json:"grade_section_id"`
	Date           string      `json:"date"`
	StudentIDs     []uuid.UUID `json:"student_ids"`
	MarkedBy       uuid.UUID   `json:"marked_by"`
}

// Dispatch: dipanggil `go d.Dispatch(...)` SETELAH response tertulis.
// Pakai context sendiri — request context sudah selesai/cancel di titik ini.
func (d *Dispatcher) Dispatch(sectionID uuid.UUID, date time.Time, studentIDs []uuid.UUID, markedBy uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ids := make(pq.StringArray, 0, len(studentIDs))
	for _, id := range studentIDs {
		ids = append(ids, id.String())
	}

	row := notifModel.AttendanceNotificationModel{
		AttendanceNotificationSectionID:  sectionID,
		AttendanceNotificationDate:       datatypes.Date(date),
		AttendanceNotificationStudentIDs: ids,
		AttendanceNotificationMarkedBy:   markedBy,
	}
	if err := d.DB.WithContext(ctx).Create(&row).Error; err != nil {
		log.Printf("[WARN] notif: gagal simpan row dispatch: %v", err)
		// lanjut — jejak DB bukan prasyarat kirim webhook
	}

	if d.WebhookURL == "" {
		return
	}

	body, err := sonic.Marshal(notifyPayload{
		GradeSectionID: sectionID,
		Date:           date.Format("2006-01-02"),
		StudentIDs:     studentIDs,
		MarkedBy:       markedBy,
	})
	if err != nil {
		log.Printf("[WARN] notif: marshal payload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("[WARN] notif: build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		log.Printf("[WARN] notif: webhook gagal: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("[WARN] notif: webhook status %d", resp.StatusCode)
		return
	}

	if row.AttendanceNotificationID != uuid.Nil {
		if err := d.DB.WithContext(ctx).
			Model(&notifModel.AttendanceNotificationModel{}).
			Where("attendance_notification_id = ?", row.AttendanceNotificationID).
			Update("attendance_notification_sent", true).Error; err != nil {
			log.Printf("[WARN] notif: update sent flag: %v", err)
		}
	}
}
