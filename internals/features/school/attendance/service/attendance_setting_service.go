// internals/features/school/attendance/service/attendance_setting_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	attDTO "sekolahku_backend/internals/features/school/attendance/dto"
	attModel "sekolahku_backend/internals/features/school/attendance/model"
)

// defaultSetting: fallback kalau belum ada row global maupun per-section.
func defaultSetting() attModel.ClassAttendanceSettingModel {
	return attModel.ClassAttendanceSettingModel{
		ClassAttendanceSettingResetTime:            "04:00",
		ClassAttendanceSettingLateThresholdMinutes: 15,
		ClassAttendanceSettingDefaultStatus:        attModel.ClassAttendancePresent,
		ClassAttendanceSettingNotifyOnAbsent:       true,
	}
}

func settingToResponse(m attModel.ClassAttendanceSettingModel) *attDTO.AttendanceSettingResponse {
	return &attDTO.AttendanceSettingResponse{
		GradeSectionID:       m.ClassAttendanceSettingSectionID,
		ResetTime:            m.ClassAttendanceSettingResetTime,
		LateThresholdMinutes: m.ClassAttendanceSettingLateThresholdMinutes,
		DefaultStatus:        string(m.ClassAttendanceSettingDefaultStatus),
		NotifyOnAbsent:       m.ClassAttendanceSettingNotifyOnAbsent,
	}
}

func (s *AttendanceService) findSetting(ctx context.Context, sectionID *uuid.UUID) (*attModel.ClassAttendanceSettingModel, error) {
	tx := s.Repo.DB.WithContext(ctx).Model(&attModel.ClassAttendanceSettingModel{})
	if sectionID == nil {
		tx = tx.Where("class_attendance_setting_section_id IS NULL")
	} else {
		tx = tx.Where("class_attendance_setting_section_id = ?", *sectionID)
	}
	var m attModel.ClassAttendanceSettingModel
	if err := tx.Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetSetting: kebijakan efektif — row per-section menimpa global, global
// menimpa default bawaan.
func (s *AttendanceService) GetSetting(ctx context.Context, sectionID *uuid.UUID) (*attDTO.AttendanceSettingResponse, error) {
	if sectionID != nil {
		m, err := s.findSetting(ctx, sectionID)
		if err == nil {
			return settingToResponse(*m), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	m, err := s.findSetting(ctx, nil)
	if err == nil {
		resp := settingToResponse(*m)
		resp.GradeSectionID = sectionID
		return resp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	resp := settingToResponse(defaultSetting())
	resp.GradeSectionID = sectionID
	return resp, nil
}

// UpdateSetting: upsert kebijakan untuk scope yang diminta (global kalau
// grade_section_id kosong). Field nil tidak disentuh.
func (s *AttendanceService) UpdateSetting(ctx context.Context, req attDTO.UpdateAttendanceSettingRequest) (*attDTO.AttendanceSettingResponse, error) {
	if req.ResetTime != nil {
		if _, err := time.Parse("15:04", *req.ResetTime); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "reset_time invalid format, expected HH:MM")
		}
	}
	if req.GradeSectionID != nil {
		// Scope harus section yang ada
		if _, err := s.Sections.FindByID(ctx, *req.GradeSectionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fiber.NewError(fiber.StatusNotFound, "Grade section tidak ditemukan")
			}
			return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	m, err := s.findSetting(ctx, req.GradeSectionID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		fresh := defaultSetting()
		fresh.ClassAttendanceSettingSectionID = req.GradeSectionID
		m = &fresh
	}

	if req.ResetTime != nil {
		m.ClassAttendanceSettingResetTime = *req.ResetTime
	}
	if req.LateThresholdMinutes != nil {
		m.ClassAttendanceSettingLateThresholdMinutes = *req.LateThresholdMinutes
	}
	if req.DefaultStatus != nil {
		m.ClassAttendanceSettingDefaultStatus = attModel.ClassAttendanceStatus(*req.DefaultStatus)
	}
	if req.NotifyOnAbsent != nil {
		m.ClassAttendanceSettingNotifyOnAbsent = *req.NotifyOnAbsent
	}

	if err := s.Repo.DB.WithContext(ctx).Save(m).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return settingToResponse(*m), nil
}
