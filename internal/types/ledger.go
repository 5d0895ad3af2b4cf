package types

import (
	"time"

	"github.com/google/uuid"
)

// CourseProgress tracks a student's score for a course. One row per
// (student, course); updates overwrite all score fields together.
type CourseProgress struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_student_course" json:"student_id"`
	Student       *User     `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_student_course" json:"course_id"`
	Course        *Course   `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	ObtainedScore float64   `gorm:"not null;default:0" json:"obtained_score"`
	TotalScore    float64   `gorm:"not null;default:0" json:"total_score"`
	IsCompleted   bool      `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CourseProgress) TableName() string { return "course_progress" }

// Percentage is obtained/total*100, or 0 before any graded update.
func (p *CourseProgress) Percentage() float64 {
	if p == nil || p.TotalScore <= 0 {
		return 0
	}
	return p.ObtainedScore / p.TotalScore * 100
}

// Certificate is the immutable completion record. The (student, course)
// unique index is what makes issuance idempotent under races.
type Certificate struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificate_student_course" json:"student_id"`
	Student           *User     `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
	CourseID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificate_student_course" json:"course_id"`
	Course            *Course   `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	CertificateNumber string    `gorm:"size:32;uniqueIndex;not null" json:"certificate_number"`
	IssuedAt          time.Time `gorm:"autoCreateTime" json:"issued_at"`
}

func (Certificate) TableName() string { return "certificates" }
