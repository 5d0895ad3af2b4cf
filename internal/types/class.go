package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TeacherClass is a teacher-owned cohort; its class code is minted
// server-side and is the only thing a student needs to join.
type TeacherClass struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"teacher_id"`
	Teacher     *User           `gorm:"foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `json:"description"`
	Duration    string          `gorm:"size:100" json:"duration"`
	StartDate   *datatypes.Date `json:"start_date,omitempty"`
	EndDate     *datatypes.Date `json:"end_date,omitempty"`
	Capacity    *int            `json:"capacity,omitempty"`
	ClassCode   string          `gorm:"size:10;uniqueIndex;not null" json:"class_code"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TeacherClass) TableName() string { return "teacher_classes" }

// ClassEnrollment grants a student visibility into every course attached
// to the class. Unique per (student, class); never auto-deleted.
type ClassEnrollment struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID      uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_class" json:"student_id"`
	Student        *User         `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
	TeacherClassID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_class" json:"teacher_class_id"`
	TeacherClass   *TeacherClass `gorm:"foreignKey:TeacherClassID;references:ID" json:"teacher_class,omitempty"`
	EnrolledAt     time.Time     `gorm:"autoCreateTime" json:"enrolled_at"`
}

func (ClassEnrollment) TableName() string { return "class_enrollments" }
