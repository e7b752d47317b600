package helper

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const DateLayout = "2006-01-02"

// ParseDateYMD parse "YYYY-MM-DD" → time.Time (UTC, jam 00:00).
// fieldName dipakai di pesan error 400.
func ParseDateYMD(raw, fieldName string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, fieldName+" wajib diisi (format YYYY-MM-DD)")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, fieldName+" invalid format, expected YYYY-MM-DD")
	}
	return t.UTC(), nil
}

// NormalizeDate buang komponen jam (kunci konsistensi kolom date).
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
