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

type ModuleService interface {
	Create(ctx context.Context, id *requestdata.Identity, req CreateModuleRequest) (*ModuleDTO, error)
	Get(ctx context.Context, id *requestdata.Identity, moduleID uuid.UUID) (*ModuleDTO, error)
	Update(ctx context.Context, id *requestdata.Identity, moduleID uuid.UUID, req UpdateModuleRequest) (*ModuleDTO, error)
	BulkDelete(ctx context.Context, id *requestdata.Identity, moduleIDs []uuid.UUID) (int64, error)
}

type moduleService struct {
	db           *gorm.DB
	courseRepo   repos.CourseRepo
	moduleRepo   repos.CourseModuleRepo
	lessonRepo   repos.LessonRepo
	topicRepo    repos.TopicRepo
	takeawayRepo repos.KeyTakeawayRepo
	exerciseRepo repos.ExerciseRepo
	resourceRepo repos.ResourceRepo
	access       AccessService
	assembler    contentAssembler
	log          *logger.Logger
}

func NewModuleService(
	db *gorm.DB,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	lessonRepo repos.LessonRepo,
	topicRepo repos.TopicRepo,
	takeawayRepo repos.KeyTakeawayRepo,
	exerciseRepo repos.ExerciseRepo,
	resourceRepo repos.ResourceRepo,
	access AccessService,
	baseLog *logger.Logger,
) ModuleService {
	return &moduleService{
		db:           db,
		courseRepo:   courseRepo,
		moduleRepo:   moduleRepo,
		lessonRepo:   lessonRepo,
		topicRepo:    topicRepo,
		takeawayRepo: takeawayRepo,
		exerciseRepo: exerciseRepo,
		resourceRepo: resourceRepo,
		access:       access,
		assembler: contentAssembler{
			topicRepo:    topicRepo,
			takeawayRepo: takeawayRepo,
			exerciseRepo: exerciseRepo,
			resourceRepo: resourceRepo,
		},
		log: baseLog.With("service", "ModuleService"),
	}
}

func (s *moduleService) Create(ctx context.Context, id *requestdata.Identity, req CreateModuleRequest) (*ModuleDTO, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apierr.Validation("missing_title", "module title is required")
	}
	course, err := s.courseRepo.GetByID(ctx, nil, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apierr.NotFound("course_not_found", "course %s not found", req.CourseID)
	}
	if err := s.access.AuthorizeCourseWrite(ctx, nil, id, course); err != nil {
		return nil, err
	}

	module := &types.CourseModule{
		ID:          uuid.New(),
		CourseID:    req.CourseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Order:       orderOrDefault(req.Order),
	}
	if err := s.moduleRepo.Create(ctx, nil, module); err != nil {
		return nil, err
	}
	s.log.Info("Created module", "moduleId", module.ID.String())
	dto := moduleDTO(module)
	return &dto, nil
}

func (s *moduleService) Get(ctx context.Context, id *requestdata.Identity, moduleID uuid.UUID) (*ModuleDTO, error) {
	module, err := s.moduleRepo.GetByID(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, apierr.NotFound("module_not_found", "module %s not found", moduleID)
	}
	course, err := s.courseRepo.GetByID(ctx, nil, module.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apierr.NotFound("module_not_found", "module %s not found", moduleID)
	}
	visible, err := s.access.CanReadCourse(ctx, nil, id, course)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apierr.NotFound("module_not_found", "module %s not found", moduleID)
	}

	dto := moduleDTO(module)
	lessons, err := s.lessonRepo.ListByModuleIDs(ctx, nil, []uuid.UUID{moduleID})
	if err != nil {
		return nil, err
	}
	dto.Lessons, err = s.assembler.lessonTrees(ctx, nil, lessons)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *moduleService) Update(ctx context.Context, id *requestdata.Identity, moduleID uuid.UUID, req UpdateModuleRequest) (*ModuleDTO, error) {
	var dto ModuleDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := s.moduleRepo.GetByID(ctx, tx, moduleID)
		if err != nil {
			return err
		}
		if module == nil {
			return apierr.NotFound("module_not_found", "module %s not found", moduleID)
		}
		course, err := s.access.CourseForModule(ctx, tx, moduleID)
		if err != nil {
			return err
		}
		if err := s.access.AuthorizeCourseWrite(ctx, tx, id, course); err != nil {
			return err
		}

		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return apierr.Validation("missing_title", "module title is required")
			}
			module.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			module.Description = *req.Description
		}
		if req.Order != nil {
			if *req.Order < 1 {
				return apierr.Validation("invalid_order", "order must be at least 1")
			}
			module.Order = *req.Order
		}
		if err := s.moduleRepo.Save(ctx, tx, module); err != nil {
			return err
		}
		dto = moduleDTO(module)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *moduleService) BulkDelete(ctx context.Context, id *requestdata.Identity, moduleIDs []uuid.UUID) (int64, error) {
	if len(moduleIDs) == 0 {
		return 0, apierr.Validation("missing_ids", "ids is required")
	}
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		modules, err := s.moduleRepo.GetByIDs(ctx, tx, moduleIDs)
		if err != nil {
			return err
		}
		if len(modules) != len(moduleIDs) {
			return apierr.NotFound("module_not_found", "one or more modules do not exist")
		}
		for _, module := range modules {
			course, err := s.courseRepo.GetByID(ctx, tx, module.CourseID)
			if err != nil {
				return err
			}
			if course == nil {
				return apierr.NotFound("course_not_found", "course for module %s not found", module.ID)
			}
			if err := s.access.AuthorizeCourseWrite(ctx, tx, id, course); err != nil {
				return err
			}
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
		deleted, err = s.moduleRepo.DeleteByIDs(ctx, tx, moduleIDs)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Deleted modules", "count", deleted)
	return deleted, nil
}

func orderOrDefault(order int) int {
	if order < 1 {
		return 1
	}
	return order
}
