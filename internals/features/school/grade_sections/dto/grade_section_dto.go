// internals/features/school/grade_sections/dto/grade_section_dto.go
package dto

import (
	"github.com/google/uuid"
)

// GradeSectionResponse: item list section yang boleh ditandai caller.
type GradeSectionResponse struct {
	GradeSectionID   uuid.UUID  `json:"grade_section_id"`
	GradeSectionName string     `json:"grade_section_name"`
	GradeSectionSlug string     `json:"grade_section_slug"`
	TeacherID        *uuid.UUID `json:"teacher_id,omitempty"`
	StudentCount     int        `json:"student_count"` // enrollment aktif
}
