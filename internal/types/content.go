package types

import (
	"time"

	"github.com/google/uuid"
)

// HeroMediaType is the optional media banner on lessons and topics.
type HeroMediaType string

const (
	HeroMediaImage HeroMediaType = "image"
	HeroMediaVideo HeroMediaType = "video"
)

func (h HeroMediaType) Valid() bool {
	return h == HeroMediaImage || h == HeroMediaVideo
}

// Course is the root of the content tree. A nil TeacherClassID marks a
// global course readable by everyone, including anonymous visitors.
type Course struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherClassID *uuid.UUID    `gorm:"type:uuid;index" json:"teacher_class_id,omitempty"`
	TeacherClass   *TeacherClass `gorm:"foreignKey:TeacherClassID;references:ID" json:"teacher_class,omitempty"`
	Title          string        `gorm:"size:255;not null" json:"title"`
	Description    string        `json:"description"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Course) TableName() string { return "courses" }

type CourseModule struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;index;not null" json:"course_id"`
	Course      *Course   `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `json:"description"`
	Order       int       `gorm:"column:sort_order;not null;default:1" json:"order"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CourseModule) TableName() string { return "course_modules" }

type Lesson struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"module_id"`
	Module        *CourseModule  `gorm:"foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Content       string         `json:"content"`
	HeroMediaType *HeroMediaType `gorm:"size:10" json:"hero_media_type,omitempty"`
	HeroMediaURL  *string        `gorm:"size:500" json:"hero_media_url,omitempty"`
	Order         int            `gorm:"column:sort_order;not null;default:1" json:"order"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Lesson) TableName() string { return "lessons" }

// Topic rows form a parent-pointer tree under a lesson. Every row points at
// its lesson even when nested, so the ownership walk never depends on
// recursion.
type Topic struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"lesson_id"`
	Lesson        *Lesson        `gorm:"foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	ParentID      *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Content       string         `json:"content"`
	HeroMediaType *HeroMediaType `gorm:"size:10" json:"hero_media_type,omitempty"`
	HeroMediaURL  *string        `gorm:"size:500" json:"hero_media_url,omitempty"`
	Order         int            `gorm:"column:sort_order;not null;default:1" json:"order"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Topic) TableName() string { return "topics" }

// KeyTakeaway attaches to exactly one of a lesson or a topic.
type KeyTakeaway struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID  *uuid.UUID `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	TopicID   *uuid.UUID `gorm:"type:uuid;index" json:"topic_id,omitempty"`
	Content   string     `gorm:"not null" json:"content"`
	Order     int        `gorm:"column:sort_order;not null;default:1" json:"order"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KeyTakeaway) TableName() string { return "key_takeaways" }

type Exercise struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID    *uuid.UUID `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	TopicID     *uuid.UUID `gorm:"type:uuid;index" json:"topic_id,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `json:"description"`
	Order       int        `gorm:"column:sort_order;not null;default:1" json:"order"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Exercise) TableName() string { return "exercises" }

type Resource struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID    *uuid.UUID `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	TopicID     *uuid.UUID `gorm:"type:uuid;index" json:"topic_id,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `json:"description"`
	URL         string     `gorm:"size:500;not null" json:"url"`
	Order       int        `gorm:"column:sort_order;not null;default:1" json:"order"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Resource) TableName() string { return "resources" }
