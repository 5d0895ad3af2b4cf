package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/repos"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

// AccessService answers two questions for every content row: can this
// caller see it, and can this caller change it. Write checks always walk
// up to the owning course; a broken ancestor chain denies rather than
// allows.
type AccessService interface {
	// VisibleClassIDs returns the classes the caller can see. The bool is
	// true when the caller sees everything (admins).
	VisibleClassIDs(ctx context.Context, tx *gorm.DB, id *requestdata.Identity) ([]uuid.UUID, bool, error)
	CanReadCourse(ctx context.Context, tx *gorm.DB, id *requestdata.Identity, course *types.Course) (bool, error)
	AuthorizeCourseWrite(ctx context.Context, tx *gorm.DB, id *requestdata.Identity, course *types.Course) error
	AuthorizeClassWrite(ctx context.Context, id *requestdata.Identity, class *types.TeacherClass) error

	CourseForModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (*types.Course, error)
	CourseForLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Course, error)
	CourseForTopic(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) (*types.Course, error)
	CourseForLeaf(ctx context.Context, tx *gorm.DB, lessonID, topicID *uuid.UUID) (*types.Course, error)
}

type accessService struct {
	courseRepo repos.CourseRepo
	moduleRepo repos.CourseModuleRepo
	lessonRepo repos.LessonRepo
	topicRepo  repos.TopicRepo
	enrollRepo repos.EnrollmentRepo
	classRepo  repos.TeacherClassRepo
	log        *logger.Logger
}

func NewAccessService(
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	lessonRepo repos.LessonRepo,
	topicRepo repos.TopicRepo,
	enrollRepo repos.EnrollmentRepo,
	classRepo repos.TeacherClassRepo,
	baseLog *logger.Logger,
) AccessService {
	return &accessService{
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
		lessonRepo: lessonRepo,
		topicRepo:  topicRepo,
		enrollRepo: enrollRepo,
		classRepo:  classRepo,
		log:        baseLog.With("service", "AccessService"),
	}
}

func (s *accessService) VisibleClassIDs(ctx context.Context, tx *gorm.DB, id *requestdata.Identity) ([]uuid.UUID, bool, error) {
	switch {
	case id == nil:
		return nil, false, nil
	case id.IsAdmin():
		return nil, true, nil
	case id.IsTeacher():
		classes, err := s.classRepo.ListByTeacher(ctx, tx, id.UserID)
		if err != nil {
			return nil, false, err
		}
		ids := make([]uuid.UUID, 0, len(classes))
		for _, class := range classes {
			ids = append(ids, class.ID)
		}
		return ids, false, nil
	default:
		ids, err := s.enrollRepo.ClassIDsForStudent(ctx, tx, id.UserID)
		if err != nil {
			return nil, false, err
		}
		return ids, false, nil
	}
}

// CanReadCourse: global courses (nil class) are public, including for
// anonymous callers. Class-bound courses need admin, the owning teacher,
// or an enrolled student.
func (s *accessService) CanReadCourse(ctx context.Context, tx *gorm.DB, id *requestdata.Identity, course *types.Course) (bool, error) {
	if course.TeacherClassID == nil {
		return true, nil
	}
	if id == nil {
		return false, nil
	}
	if id.IsAdmin() {
		return true, nil
	}
	if id.IsTeacher() {
		class, err := s.classFor(ctx, tx, course)
		if err != nil {
			return false, err
		}
		return class != nil && class.TeacherID == id.UserID, nil
	}
	return s.enrollRepo.Exists(ctx, tx, id.UserID, *course.TeacherClassID)
}

// AuthorizeCourseWrite: admins manage everything, including the global
// catalogue. Teachers manage only courses attached to their own classes,
// so a global course is out of reach for them.
func (s *accessService) AuthorizeCourseWrite(ctx context.Context, tx *gorm.DB, id *requestdata.Identity, course *types.Course) error {
	if id == nil {
		return apierr.Permission("not_authenticated", "authentication required")
	}
	if id.IsAdmin() {
		return nil
	}
	if !id.IsTeacher() {
		return apierr.Permission("forbidden", "students cannot modify course content")
	}
	if course.TeacherClassID == nil {
		return apierr.Permission("forbidden", "only admins manage global courses")
	}
	class, err := s.classFor(ctx, tx, course)
	if err != nil {
		return err
	}
	if class == nil || class.TeacherID != id.UserID {
		return apierr.Permission("forbidden", "course belongs to another teacher's class")
	}
	return nil
}

func (s *accessService) AuthorizeClassWrite(ctx context.Context, id *requestdata.Identity, class *types.TeacherClass) error {
	if id == nil {
		return apierr.Permission("not_authenticated", "authentication required")
	}
	if id.IsAdmin() {
		return nil
	}
	if id.IsTeacher() && class.TeacherID == id.UserID {
		return nil
	}
	return apierr.Permission("forbidden", "class belongs to another teacher")
}

func (s *accessService) classFor(ctx context.Context, tx *gorm.DB, course *types.Course) (*types.TeacherClass, error) {
	if course.TeacherClassID == nil {
		return nil, nil
	}
	if course.TeacherClass != nil {
		return course.TeacherClass, nil
	}
	return s.classRepo.GetByID(ctx, tx, *course.TeacherClassID)
}

func (s *accessService) CourseForModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (*types.Course, error) {
	module, err := s.moduleRepo.GetByID(ctx, tx, moduleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, apierr.NotFound("module_not_found", "module %s not found", moduleID)
	}
	course, err := s.courseRepo.GetByID(ctx, tx, module.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apierr.NotFound("course_not_found", "course for module %s not found", moduleID)
	}
	return course, nil
}

func (s *accessService) CourseForLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Course, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, tx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, apierr.NotFound("lesson_not_found", "lesson %s not found", lessonID)
	}
	return s.CourseForModule(ctx, tx, lesson.ModuleID)
}

// CourseForTopic uses the topic's direct lesson pointer; nesting depth
// never lengthens the walk.
func (s *accessService) CourseForTopic(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) (*types.Course, error) {
	topic, err := s.topicRepo.GetByID(ctx, tx, topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, apierr.NotFound("topic_not_found", "topic %s not found", topicID)
	}
	return s.CourseForLesson(ctx, tx, topic.LessonID)
}

func (s *accessService) CourseForLeaf(ctx context.Context, tx *gorm.DB, lessonID, topicID *uuid.UUID) (*types.Course, error) {
	switch {
	case lessonID != nil:
		return s.CourseForLesson(ctx, tx, *lessonID)
	case topicID != nil:
		return s.CourseForTopic(ctx, tx, *topicID)
	default:
		return nil, apierr.Validation("missing_owner", "either lessonId or topicId is required")
	}
}
