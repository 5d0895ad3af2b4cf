package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

// API-facing shapes. Field names are camelCase on the wire regardless of
// how the rows are stored.

type UserDTO struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Role            string    `json:"role"`
	IsStaff         bool      `json:"isStaff"`
	IsActive        bool      `json:"isActive"`
	AdminSecretCode *string   `json:"adminSecretCode,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type AuthResponse struct {
	User    UserDTO `json:"user"`
	Access  string  `json:"access"`
	Refresh string  `json:"refresh"`
}

// SessionDTO answers "who am I": anonymous callers get
// authenticated=false rather than an error.
type SessionDTO struct {
	Authenticated bool     `json:"authenticated"`
	User          *UserDTO `json:"user,omitempty"`
}

type ClassDTO struct {
	ID            uuid.UUID       `json:"id"`
	TeacherID     uuid.UUID       `json:"teacherId"`
	TeacherName   string          `json:"teacherName"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Duration      string          `json:"duration"`
	StartDate     *datatypes.Date `json:"startDate,omitempty"`
	EndDate       *datatypes.Date `json:"endDate,omitempty"`
	Capacity      *int            `json:"capacity,omitempty"`
	ClassCode     string          `json:"classCode"`
	EnrolledCount int64           `json:"enrolledCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type EnrollmentDTO struct {
	ID              uuid.UUID `json:"id"`
	StudentID       uuid.UUID `json:"studentId"`
	StudentUsername string    `json:"studentUsername"`
	StudentName     string    `json:"studentName"`
	TeacherClassID  uuid.UUID `json:"teacherClassId"`
	ClassName       string    `json:"className"`
	ClassCode       string    `json:"classCode"`
	EnrolledAt      time.Time `json:"enrolledAt"`
}

type CourseDTO struct {
	ID             uuid.UUID   `json:"id"`
	TeacherClassID *uuid.UUID  `json:"teacherClassId,omitempty"`
	ClassName      string      `json:"className,omitempty"`
	TeacherName    string      `json:"teacherName,omitempty"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Modules        []ModuleDTO `json:"modules,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type ModuleDTO struct {
	ID          uuid.UUID   `json:"id"`
	CourseID    uuid.UUID   `json:"courseId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Order       int         `json:"order"`
	Lessons     []LessonDTO `json:"lessons,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type LessonDTO struct {
	ID            uuid.UUID            `json:"id"`
	ModuleID      uuid.UUID            `json:"moduleId"`
	Title         string               `json:"title"`
	Content       string               `json:"content"`
	HeroMediaType *types.HeroMediaType `json:"heroMediaType,omitempty"`
	HeroMediaURL  *string              `json:"heroMediaUrl,omitempty"`
	Order         int                  `json:"order"`
	Topics        []TopicDTO           `json:"topics,omitempty"`
	KeyTakeaways  []KeyTakeawayDTO     `json:"keyTakeaways,omitempty"`
	Exercises     []ExerciseDTO        `json:"exercises,omitempty"`
	Resources     []ResourceDTO        `json:"resources,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

type TopicDTO struct {
	ID            uuid.UUID            `json:"id"`
	LessonID      uuid.UUID            `json:"lessonId"`
	ParentID      *uuid.UUID           `json:"parentId,omitempty"`
	Title         string               `json:"title"`
	Content       string               `json:"content"`
	HeroMediaType *types.HeroMediaType `json:"heroMediaType,omitempty"`
	HeroMediaURL  *string              `json:"heroMediaUrl,omitempty"`
	Order         int                  `json:"order"`
	Children      []TopicDTO           `json:"children,omitempty"`
	KeyTakeaways  []KeyTakeawayDTO     `json:"keyTakeaways,omitempty"`
	Exercises     []ExerciseDTO        `json:"exercises,omitempty"`
	Resources     []ResourceDTO        `json:"resources,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

type KeyTakeawayDTO struct {
	ID       uuid.UUID  `json:"id"`
	LessonID *uuid.UUID `json:"lessonId,omitempty"`
	TopicID  *uuid.UUID `json:"topicId,omitempty"`
	Content  string     `json:"content"`
	Order    int        `json:"order"`
}

type ExerciseDTO struct {
	ID          uuid.UUID  `json:"id"`
	LessonID    *uuid.UUID `json:"lessonId,omitempty"`
	TopicID     *uuid.UUID `json:"topicId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Order       int        `json:"order"`
}

type ResourceDTO struct {
	ID          uuid.UUID  `json:"id"`
	LessonID    *uuid.UUID `json:"lessonId,omitempty"`
	TopicID     *uuid.UUID `json:"topicId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Order       int        `json:"order"`
}

type ProgressDTO struct {
	ID            uuid.UUID `json:"id"`
	StudentID     uuid.UUID `json:"studentId"`
	CourseID      uuid.UUID `json:"courseId"`
	ObtainedScore float64   `json:"obtainedScore"`
	TotalScore    float64   `json:"totalScore"`
	Percentage    float64   `json:"percentage"`
	IsCompleted   bool      `json:"isCompleted"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type CertificateDTO struct {
	ID                uuid.UUID `json:"id"`
	CertificateNumber string    `json:"certificateNumber"`
	StudentID         uuid.UUID `json:"studentId"`
	StudentName       string    `json:"studentName"`
	CourseID          uuid.UUID `json:"courseId"`
	CourseTitle       string    `json:"courseTitle"`
	IssuedAt          time.Time `json:"issuedAt"`
}

// CertificateVerificationDTO is the public verification snapshot. Scores
// are read live at lookup time, not frozen at issuance.
type CertificateVerificationDTO struct {
	Valid             bool      `json:"valid"`
	CertificateNumber string    `json:"certificateNumber"`
	CertificateStatus string    `json:"certificateStatus"`
	StudentName       string    `json:"studentName"`
	CourseTitle       string    `json:"courseTitle"`
	IssuedAt          time.Time `json:"issuedAt"`
	ObtainedScore     float64   `json:"obtainedScore"`
	TotalScore        float64   `json:"totalScore"`
	Percentage        float64   `json:"percentage"`
	IsCompleted       bool      `json:"isCompleted"`
}

// Requests.

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Role            string `json:"role"`
	AdminSecretCode string `json:"adminSecretCode"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// CreateUserRequest is the staff-side account creation payload. With
// PasswordAuthEnabled false the account is stored without a usable
// password and can never log in with one.
type CreateUserRequest struct {
	Username            string `json:"username"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Role                string `json:"role"`
	AdminSecretCode     string `json:"adminSecretCode"`
	PasswordAuthEnabled *bool  `json:"passwordAuthEnabled"`
}

type UpdateUserRequest struct {
	Email           *string `json:"email"`
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Password        *string `json:"password"`
	Role            *string `json:"role"`
	AdminSecretCode *string `json:"adminSecretCode"`
	IsActive        *bool   `json:"isActive"`
}

type CreateClassRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Duration    string          `json:"duration"`
	StartDate   *datatypes.Date `json:"startDate"`
	EndDate     *datatypes.Date `json:"endDate"`
	Capacity    *int            `json:"capacity"`
}

type UpdateClassRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Duration    *string         `json:"duration"`
	StartDate   *datatypes.Date `json:"startDate"`
	EndDate     *datatypes.Date `json:"endDate"`
	Capacity    *int            `json:"capacity"`
}

type EnrollRequest struct {
	ClassCode string `json:"classCode"`
}

type CreateCourseRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	TeacherClassID *uuid.UUID `json:"teacherClassId"`
}

type UpdateCourseRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	TeacherClassID *uuid.UUID `json:"teacherClassId"`
}

type CreateModuleRequest struct {
	CourseID    uuid.UUID `json:"courseId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
}

type UpdateModuleRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

type NestedTakeaway struct {
	Content string `json:"content"`
	Order   int    `json:"order"`
}

type NestedExercise struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type NestedResource struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Order       int    `json:"order"`
}

type NestedTopic struct {
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	HeroMediaType *string          `json:"heroMediaType"`
	HeroMediaURL  *string          `json:"heroMediaUrl"`
	Order         int              `json:"order"`
	Children      []NestedTopic    `json:"children"`
	KeyTakeaways  []NestedTakeaway `json:"keyTakeaways"`
	Exercises     []NestedExercise `json:"exercises"`
	Resources     []NestedResource `json:"resources"`
}

type CreateLessonRequest struct {
	ModuleID      uuid.UUID        `json:"moduleId"`
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	HeroMediaType *string          `json:"heroMediaType"`
	HeroMediaURL  *string          `json:"heroMediaUrl"`
	Order         int              `json:"order"`
	Topics        []NestedTopic    `json:"topics"`
	KeyTakeaways  []NestedTakeaway `json:"keyTakeaways"`
	Exercises     []NestedExercise `json:"exercises"`
	Resources     []NestedResource `json:"resources"`
}

type UpdateLessonRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	HeroMediaType *string `json:"heroMediaType"`
	HeroMediaURL  *string `json:"heroMediaUrl"`
	Order         *int    `json:"order"`
}

type CreateTopicRequest struct {
	LessonID      uuid.UUID        `json:"lessonId"`
	ParentID      *uuid.UUID       `json:"parentId"`
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	HeroMediaType *string          `json:"heroMediaType"`
	HeroMediaURL  *string          `json:"heroMediaUrl"`
	Order         int              `json:"order"`
	Children      []NestedTopic    `json:"children"`
	KeyTakeaways  []NestedTakeaway `json:"keyTakeaways"`
	Exercises     []NestedExercise `json:"exercises"`
	Resources     []NestedResource `json:"resources"`
}

type UpdateTopicRequest struct {
	ParentID      *uuid.UUID `json:"parentId"`
	Title         *string    `json:"title"`
	Content       *string    `json:"content"`
	HeroMediaType *string    `json:"heroMediaType"`
	HeroMediaURL  *string    `json:"heroMediaUrl"`
	Order         *int       `json:"order"`
}

type CreateTakeawayRequest struct {
	LessonID *uuid.UUID `json:"lessonId"`
	TopicID  *uuid.UUID `json:"topicId"`
	Content  string     `json:"content"`
	Order    int        `json:"order"`
}

type UpdateTakeawayRequest struct {
	Content *string `json:"content"`
	Order   *int    `json:"order"`
}

type CreateExerciseRequest struct {
	LessonID    *uuid.UUID `json:"lessonId"`
	TopicID     *uuid.UUID `json:"topicId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Order       int        `json:"order"`
}

type UpdateExerciseRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

type CreateResourceRequest struct {
	LessonID    *uuid.UUID `json:"lessonId"`
	TopicID     *uuid.UUID `json:"topicId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Order       int        `json:"order"`
}

type UpdateResourceRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Order       *int    `json:"order"`
}

type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type UpdateProgressRequest struct {
	ObtainedScore float64 `json:"obtainedScore"`
	TotalScore    float64 `json:"totalScore"`
}

// Row-to-DTO builders shared across the services.

func userDTO(user *types.User, profile *types.RoleProfile) UserDTO {
	dto := UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsStaff:   user.IsStaff,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
	if profile != nil {
		dto.Role = string(profile.Role)
		dto.AdminSecretCode = profile.AdminSecretCode
	}
	return dto
}

func classDTO(class *types.TeacherClass, enrolled int64) ClassDTO {
	dto := ClassDTO{
		ID:            class.ID,
		TeacherID:     class.TeacherID,
		Name:          class.Name,
		Description:   class.Description,
		Duration:      class.Duration,
		StartDate:     class.StartDate,
		EndDate:       class.EndDate,
		Capacity:      class.Capacity,
		ClassCode:     class.ClassCode,
		EnrolledCount: enrolled,
		CreatedAt:     class.CreatedAt,
		UpdatedAt:     class.UpdatedAt,
	}
	if class.Teacher != nil {
		dto.TeacherName = class.Teacher.DisplayName()
	}
	return dto
}

func enrollmentDTO(enrollment *types.ClassEnrollment) EnrollmentDTO {
	dto := EnrollmentDTO{
		ID:             enrollment.ID,
		StudentID:      enrollment.StudentID,
		TeacherClassID: enrollment.TeacherClassID,
		EnrolledAt:     enrollment.EnrolledAt,
	}
	if enrollment.Student != nil {
		dto.StudentUsername = enrollment.Student.Username
		dto.StudentName = enrollment.Student.DisplayName()
	}
	if enrollment.TeacherClass != nil {
		dto.ClassName = enrollment.TeacherClass.Name
		dto.ClassCode = enrollment.TeacherClass.ClassCode
	}
	return dto
}

func courseDTO(course *types.Course) CourseDTO {
	dto := CourseDTO{
		ID:             course.ID,
		TeacherClassID: course.TeacherClassID,
		Title:          course.Title,
		Description:    course.Description,
		CreatedAt:      course.CreatedAt,
		UpdatedAt:      course.UpdatedAt,
	}
	if course.TeacherClass != nil {
		dto.ClassName = course.TeacherClass.Name
		if course.TeacherClass.Teacher != nil {
			dto.TeacherName = course.TeacherClass.Teacher.DisplayName()
		}
	}
	return dto
}

func moduleDTO(module *types.CourseModule) ModuleDTO {
	return ModuleDTO{
		ID:          module.ID,
		CourseID:    module.CourseID,
		Title:       module.Title,
		Description: module.Description,
		Order:       module.Order,
		CreatedAt:   module.CreatedAt,
		UpdatedAt:   module.UpdatedAt,
	}
}

func lessonDTO(lesson *types.Lesson) LessonDTO {
	return LessonDTO{
		ID:            lesson.ID,
		ModuleID:      lesson.ModuleID,
		Title:         lesson.Title,
		Content:       lesson.Content,
		HeroMediaType: lesson.HeroMediaType,
		HeroMediaURL:  lesson.HeroMediaURL,
		Order:         lesson.Order,
		CreatedAt:     lesson.CreatedAt,
		UpdatedAt:     lesson.UpdatedAt,
	}
}

func topicDTO(topic *types.Topic) TopicDTO {
	return TopicDTO{
		ID:            topic.ID,
		LessonID:      topic.LessonID,
		ParentID:      topic.ParentID,
		Title:         topic.Title,
		Content:       topic.Content,
		HeroMediaType: topic.HeroMediaType,
		HeroMediaURL:  topic.HeroMediaURL,
		Order:         topic.Order,
		CreatedAt:     topic.CreatedAt,
		UpdatedAt:     topic.UpdatedAt,
	}
}

func takeawayDTO(row *types.KeyTakeaway) KeyTakeawayDTO {
	return KeyTakeawayDTO{
		ID:       row.ID,
		LessonID: row.LessonID,
		TopicID:  row.TopicID,
		Content:  row.Content,
		Order:    row.Order,
	}
}

func exerciseDTO(row *types.Exercise) ExerciseDTO {
	return ExerciseDTO{
		ID:          row.ID,
		LessonID:    row.LessonID,
		TopicID:     row.TopicID,
		Title:       row.Title,
		Description: row.Description,
		Order:       row.Order,
	}
}

func resourceDTO(row *types.Resource) ResourceDTO {
	return ResourceDTO{
		ID:          row.ID,
		LessonID:    row.LessonID,
		TopicID:     row.TopicID,
		Title:       row.Title,
		Description: row.Description,
		URL:         row.URL,
		Order:       row.Order,
	}
}

func progressDTO(row *types.CourseProgress) ProgressDTO {
	return ProgressDTO{
		ID:            row.ID,
		StudentID:     row.StudentID,
		CourseID:      row.CourseID,
		ObtainedScore: row.ObtainedScore,
		TotalScore:    row.TotalScore,
		Percentage:    row.Percentage(),
		IsCompleted:   row.IsCompleted,
		UpdatedAt:     row.UpdatedAt,
	}
}

func certificateDTO(cert *types.Certificate) CertificateDTO {
	dto := CertificateDTO{
		ID:                cert.ID,
		CertificateNumber: cert.CertificateNumber,
		StudentID:         cert.StudentID,
		CourseID:          cert.CourseID,
		IssuedAt:          cert.IssuedAt,
	}
	if cert.Student != nil {
		dto.StudentName = cert.Student.DisplayName()
	}
	if cert.Course != nil {
		dto.CourseTitle = cert.Course.Title
	}
	return dto
}
