package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/repos"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type CourseService interface {
	Create(ctx context.Context, id *requestdata.Identity, req CreateCourseRequest) (*CourseDTO, error)
	List(ctx context.Context, id *requestdata.Identity) ([]CourseDTO, error)
	Get(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) (*CourseDTO, error)
	Update(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID, req UpdateCourseRequest) (*CourseDTO, error)
	BulkDelete(ctx context.Context, id *requestdata.Identity, courseIDs []uuid.UUID) (int64, error)
}

type courseService struct {
	db           *gorm.DB
	courseRepo   repos.CourseRepo
	classRepo    repos.TeacherClassRepo
	moduleRepo   repos.CourseModuleRepo
	lessonRepo   repos.LessonRepo
	topicRepo    repos.TopicRepo
	takeawayRepo repos.KeyTakeawayRepo
	exerciseRepo repos.ExerciseRepo
	resourceRepo repos.ResourceRepo
	progressRepo repos.CourseProgressRepo
	certRepo     repos.CertificateRepo
	access       AccessService
	assembler    contentAssembler
	log          *logger.Logger
}

func NewCourseService(
	db *gorm.DB,
	courseRepo repos.CourseRepo,
	classRepo repos.TeacherClassRepo,
	moduleRepo repos.CourseModuleRepo,
	lessonRepo repos.LessonRepo,
	topicRepo repos.TopicRepo,
	takeawayRepo repos.KeyTakeawayRepo,
	exerciseRepo repos.ExerciseRepo,
	resourceRepo repos.ResourceRepo,
	progressRepo repos.CourseProgressRepo,
	certRepo repos.CertificateRepo,
	access AccessService,
	baseLog *logger.Logger,
) CourseService {
	return &courseService{
		db:           db,
		courseRepo:   courseRepo,
		classRepo:    classRepo,
		moduleRepo:   moduleRepo,
		lessonRepo:   lessonRepo,
		topicRepo:    topicRepo,
		takeawayRepo: takeawayRepo,
		exerciseRepo: exerciseRepo,
		resourceRepo: resourceRepo,
		progressRepo: progressRepo,
		certRepo:     certRepo,
		access:       access,
		assembler: contentAssembler{
			topicRepo:    topicRepo,
			takeawayRepo: takeawayRepo,
			exerciseRepo: exerciseRepo,
			resourceRepo: resourceRepo,
		},
		log: baseLog.With("service", "CourseService"),
	}
}

// Create always binds the new course to a class. Global courses exist
// in the catalogue but are seeded, never minted through the API.
func (s *courseService) Create(ctx context.Context, id *requestdata.Identity, req CreateCourseRequest) (*CourseDTO, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apierr.Validation("missing_title", "course title is required")
	}
	if req.TeacherClassID == nil {
		return nil, apierr.Validation("missing_class", "teacherClassId is required")
	}
	class, err := s.classRepo.GetByID(ctx, nil, *req.TeacherClassID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apierr.NotFound("class_not_found", "class %s not found", *req.TeacherClassID)
	}
	course := &types.Course{
		ID:             uuid.New(),
		TeacherClassID: req.TeacherClassID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
	}
	if err := s.access.AuthorizeCourseWrite(ctx, nil, id, course); err != nil {
		return nil, err
	}
	if err := s.courseRepo.Create(ctx, nil, course); err != nil {
		return nil, err
	}
	s.log.Info("Created course", "courseId", course.ID.String())

	created, err := s.courseRepo.GetByID(ctx, nil, course.ID)
	if err != nil {
		return nil, err
	}
	dto := courseDTO(created)
	return &dto, nil
}

// List returns the shallow course catalogue visible to the caller:
// global courses for everyone, plus class-bound ones the caller owns,
// administers or is enrolled in.
func (s *courseService) List(ctx context.Context, id *requestdata.Identity) ([]CourseDTO, error) {
	classIDs, all, err := s.access.VisibleClassIDs(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	var courses []*types.Course
	if all {
		courses, err = s.courseRepo.List(ctx, nil)
	} else {
		courses, err = s.courseRepo.ListVisible(ctx, nil, classIDs)
	}
	if err != nil {
		return nil, err
	}

	out := make([]CourseDTO, 0, len(courses))
	for _, course := range courses {
		out = append(out, courseDTO(course))
	}
	return out, nil
}

// Get serves the full nested tree: modules, lessons, topic trees and
// their takeaways, exercises and resources.
func (s *courseService) Get(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) (*CourseDTO, error) {
	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apierr.NotFound("course_not_found", "course %s not found", courseID)
	}
	visible, err := s.access.CanReadCourse(ctx, nil, id, course)
	if err != nil {
		return nil, err
	}
	if !visible {
		// Invisible and missing look identical to the caller.
		return nil, apierr.NotFound("course_not_found", "course %s not found", courseID)
	}

	dto := courseDTO(course)

	modules, err := s.moduleRepo.ListByCourseIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, err
	}
	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, module := range modules {
		moduleIDs = append(moduleIDs, module.ID)
	}
	lessons, err := s.lessonRepo.ListByModuleIDs(ctx, nil, moduleIDs)
	if err != nil {
		return nil, err
	}
	lessonDTOs, err := s.assembler.lessonTrees(ctx, nil, lessons)
	if err != nil {
		return nil, err
	}
	byModule := make(map[uuid.UUID][]LessonDTO)
	for _, lesson := range lessonDTOs {
		byModule[lesson.ModuleID] = append(byModule[lesson.ModuleID], lesson)
	}
	for _, module := range modules {
		mdto := moduleDTO(module)
		mdto.Lessons = byModule[module.ID]
		dto.Modules = append(dto.Modules, mdto)
	}
	return &dto, nil
}

func (s *courseService) Update(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID, req UpdateCourseRequest) (*CourseDTO, error) {
	var dto CourseDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.courseRepo.GetByID(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return apierr.NotFound("course_not_found", "course %s not found", courseID)
		}
		if err := s.access.AuthorizeCourseWrite(ctx, tx, id, course); err != nil {
			return err
		}

		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return apierr.Validation("missing_title", "course title is required")
			}
			course.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			course.Description = *req.Description
		}
		if req.TeacherClassID != nil {
			// Moving a course to another class requires write access to the
			// destination too.
			moved := *course
			moved.TeacherClassID = req.TeacherClassID
			moved.TeacherClass = nil
			if err := s.access.AuthorizeCourseWrite(ctx, tx, id, &moved); err != nil {
				return err
			}
			course.TeacherClassID = req.TeacherClassID
			course.TeacherClass = nil
		}
		if err := s.courseRepo.Save(ctx, tx, course); err != nil {
			return err
		}
		dto = courseDTO(course)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// BulkDelete is all-or-nothing: every course must exist and be writable
// by the caller, otherwise nothing is removed. The content tree and the
// ledgers under each course go with it.
func (s *courseService) BulkDelete(ctx context.Context, id *requestdata.Identity, courseIDs []uuid.UUID) (int64, error) {
	if len(courseIDs) == 0 {
		return 0, apierr.Validation("missing_ids", "ids is required")
	}
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses, err := s.courseRepo.GetByIDs(ctx, tx, courseIDs)
		if err != nil {
			return err
		}
		if len(courses) != len(courseIDs) {
			return apierr.NotFound("course_not_found", "one or more courses do not exist")
		}
		for _, course := range courses {
			if err := s.access.AuthorizeCourseWrite(ctx, tx, id, course); err != nil {
				return err
			}
		}
		if err := s.deleteCourseContent(ctx, tx, courseIDs); err != nil {
			return err
		}
		deleted, err = s.courseRepo.DeleteByIDs(ctx, tx, courseIDs)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Deleted courses", "count", deleted)
	return deleted, nil
}

// deleteCourseContent removes everything hanging off the courses,
// bottom-up. Postgres would cascade most of this, the sqlite-backed
// tests would not, and the ledgers must go regardless.
func (s *courseService) deleteCourseContent(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	modules, err := s.moduleRepo.ListByCourseIDs(ctx, tx, courseIDs)
	if err != nil {
		return err
	}
	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, module := range modules {
		moduleIDs = append(moduleIDs, module.ID)
	}
	lessons, err := s.lessonRepo.ListByModuleIDs(ctx, tx, moduleIDs)
	if err != nil {
		return err
	}
	lessonIDs := make([]uuid.UUID, 0, len(lessons))
	for _, lesson := range lessons {
		lessonIDs = append(lessonIDs, lesson.ID)
	}
	topics, err := s.topicRepo.ListByLessonIDs(ctx, tx, lessonIDs)
	if err != nil {
		return err
	}
	topicIDs := make([]uuid.UUID, 0, len(topics))
	for _, topic := range topics {
		topicIDs = append(topicIDs, topic.ID)
	}

	if err := s.takeawayRepo.DeleteByOwners(ctx, tx, lessonIDs, topicIDs); err != nil {
		return err
	}
	if err := s.exerciseRepo.DeleteByOwners(ctx, tx, lessonIDs, topicIDs); err != nil {
		return err
	}
	if err := s.resourceRepo.DeleteByOwners(ctx, tx, lessonIDs, topicIDs); err != nil {
		return err
	}
	if err := s.topicRepo.DeleteByLessonIDs(ctx, tx, lessonIDs); err != nil {
		return err
	}
	if err := s.lessonRepo.DeleteByModuleIDs(ctx, tx, moduleIDs); err != nil {
		return err
	}
	if err := s.moduleRepo.DeleteByCourseIDs(ctx, tx, courseIDs); err != nil {
		return err
	}
	if err := s.progressRepo.DeleteByCourseIDs(ctx, tx, courseIDs); err != nil {
		return err
	}
	return s.certRepo.DeleteByCourseIDs(ctx, tx, courseIDs)
}
