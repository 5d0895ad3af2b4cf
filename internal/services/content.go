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

// ContentService manages the leaf rows: key takeaways, exercises and
// resources. Every leaf belongs to exactly one lesson or one topic, and
// writes are authorized against the course at the top of that chain.
type ContentService interface {
	CreateTakeaway(ctx context.Context, id *requestdata.Identity, req CreateTakeawayRequest) (*KeyTakeawayDTO, error)
	UpdateTakeaway(ctx context.Context, id *requestdata.Identity, takeawayID uuid.UUID, req UpdateTakeawayRequest) (*KeyTakeawayDTO, error)
	BulkDeleteTakeaways(ctx context.Context, id *requestdata.Identity, ids []uuid.UUID) (int64, error)

	CreateExercise(ctx context.Context, id *requestdata.Identity, req CreateExerciseRequest) (*ExerciseDTO, error)
	UpdateExercise(ctx context.Context, id *requestdata.Identity, exerciseID uuid.UUID, req UpdateExerciseRequest) (*ExerciseDTO, error)
	BulkDeleteExercises(ctx context.Context, id *requestdata.Identity, ids []uuid.UUID) (int64, error)

	CreateResource(ctx context.Context, id *requestdata.Identity, req CreateResourceRequest) (*ResourceDTO, error)
	UpdateResource(ctx context.Context, id *requestdata.Identity, resourceID uuid.UUID, req UpdateResourceRequest) (*ResourceDTO, error)
	BulkDeleteResources(ctx context.Context, id *requestdata.Identity, ids []uuid.UUID) (int64, error)
}

type contentService struct {
	db           *gorm.DB
	takeawayRepo repos.KeyTakeawayRepo
	exerciseRepo repos.ExerciseRepo
	resourceRepo repos.ResourceRepo
	access       AccessService
	log          *logger.Logger
}

func NewContentService(
	db *gorm.DB,
	takeawayRepo repos.KeyTakeawayRepo,
	exerciseRepo repos.ExerciseRepo,
	resourceRepo repos.ResourceRepo,
	access AccessService,
	baseLog *logger.Logger,
) ContentService {
	return &contentService{
		db:           db,
		takeawayRepo: takeawayRepo,
		exerciseRepo: exerciseRepo,
		resourceRepo: resourceRepo,
		access:       access,
		log:          baseLog.With("service", "ContentService"),
	}
}

// checkLeafOwner enforces the exactly-one-owner rule and authorizes the
// write against the owning course.
func (s *contentService) checkLeafOwner(ctx context.Context, tx *gorm.DB, id *requestdata.Identity, lessonID, topicID *uuid.UUID) error {
	if (lessonID == nil) == (topicID == nil) {
		return apierr.Validation("invalid_owner", "exactly one of lessonId or topicId is required")
	}
	course, err := s.access.CourseForLeaf(ctx, tx, lessonID, topicID)
	if err != nil {
		return err
	}
	return s.access.AuthorizeCourseWrite(ctx, tx, id, course)
}

func (s *contentService) CreateTakeaway(ctx context.Context, id *requestdata.Identity, req CreateTakeawayRequest) (*KeyTakeawayDTO, error) {
	if req.Content == "" {
		return nil, apierr.Validation("missing_content", "takeaway content is required")
	}
	if err := s.checkLeafOwner(ctx, nil, id, req.LessonID, req.TopicID); err != nil {
		return nil, err
	}
	row := &types.KeyTakeaway{
		ID:       uuid.New(),
		LessonID: req.LessonID,
		TopicID:  req.TopicID,
		Content:  req.Content,
		Order:    orderOrDefault(req.Order),
	}
	if err := s.takeawayRepo.CreateBatch(ctx, nil, []*types.KeyTakeaway{row}); err != nil {
		return nil, err
	}
	dto := takeawayDTO(row)
	return &dto, nil
}

func (s *contentService) UpdateTakeaway(ctx context.Context, id *requestdata.Identity, takeawayID uuid.UUID, req UpdateTakeawayRequest) (*KeyTakeawayDTO, error) {
	var dto KeyTakeawayDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.takeawayRepo.GetByID(ctx, tx, takeawayID)
		if err != nil {
			return err
		}
		if row == nil {
			return apierr.NotFound("takeaway_not_found", "takeaway %s not found", takeawayID)
		}
		if err := s.checkLeafOwner(ctx, tx, id, row.LessonID, row.TopicID); err != nil {
			return err
		}
		if req.Content != nil {
			if *req.Content == "" {
				return apierr.Validation("missing_content", "takeaway content is required")
			}
			row.Content = *req.Content
		}
		if req.Order != nil {
			if *req.Order < 1 {
				return apierr.Validation("invalid_order", "order must be at least 1")
			}
			row.Order = *req.Order
		}
		if err := s.takeawayRepo.Save(ctx, tx, row); err != nil {
			return err
		}
		dto = takeawayDTO(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *contentService) BulkDeleteTakeaways(ctx context.Context, id *requestdata.Identity, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apierr.Validation("missing_ids", "ids is required")
	}
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.takeawayRepo.GetByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		if len(rows) != len(ids) {
			return apierr.NotFound("takeaway_not_found", "one or more takeaways do not exist")
		}
		for _, row := range rows {
			if err := s.checkLeafOwner(ctx, tx, id, row.LessonID, row.TopicID); err != nil {
				return err
			}
		}
		deleted, err = s.takeawayRepo.DeleteByIDs(ctx, tx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *contentService) CreateExercise(ctx context.Context, id *requestdata.Identity, req CreateExerciseRequest) (*ExerciseDTO, error) {
	if req.Title == "" {
		return nil, apierr.Validation("missing_title", "exercise title is required")
	}
	if err := s.checkLeafOwner(ctx, nil, id, req.LessonID, req.TopicID); err != nil {
		return nil, err
	}
	row := &types.Exercise{
		ID:          uuid.New(),
		LessonID:    req.LessonID,
		TopicID:     req.TopicID,
		Title:       req.Title,
		Description: req.Description,
		Order:       orderOrDefault(req.Order),
	}
	if err := s.exerciseRepo.CreateBatch(ctx, nil, []*types.Exercise{row}); err != nil {
		return nil, err
	}
	dto := exerciseDTO(row)
	return &dto, nil
}

func (s *contentService) UpdateExercise(ctx context.Context, id *requestdata.Identity, exerciseID uuid.UUID, req UpdateExerciseRequest) (*ExerciseDTO, error) {
	var dto ExerciseDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.exerciseRepo.GetByID(ctx, tx, exerciseID)
		if err != nil {
			return err
		}
		if row == nil {
			return apierr.NotFound("exercise_not_found", "exercise %s not found", exerciseID)
		}
		if err := s.checkLeafOwner(ctx, tx, id, row.LessonID, row.TopicID); err != nil {
			return err
		}
		if req.Title != nil {
			if *req.Title == "" {
				return apierr.Validation("missing_title", "exercise title is required")
			}
			row.Title = *req.Title
		}
		if req.Description != nil {
			row.Description = *req.Description
		}
		if req.Order != nil {
			if *req.Order < 1 {
				return apierr.Validation("invalid_order", "order must be at least 1")
			}
			row.Order = *req.Order
		}
		if err := s.exerciseRepo.Save(ctx, tx, row); err != nil {
			return err
		}
		dto = exerciseDTO(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *contentService) BulkDeleteExercises(ctx context.Context, id *requestdata.Identity, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apierr.Validation("missing_ids", "ids is required")
	}
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.exerciseRepo.GetByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		if len(rows) != len(ids) {
			return apierr.NotFound("exercise_not_found", "one or more exercises do not exist")
		}
		for _, row := range rows {
			if err := s.checkLeafOwner(ctx, tx, id, row.LessonID, row.TopicID); err != nil {
				return err
			}
		}
		deleted, err = s.exerciseRepo.DeleteByIDs(ctx, tx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *contentService) CreateResource(ctx context.Context, id *requestdata.Identity, req CreateResourceRequest) (*ResourceDTO, error) {
	if req.Title == "" || req.URL == "" {
		return nil, apierr.Validation("missing_fields", "resource title and url are required")
	}
	if err := s.checkLeafOwner(ctx, nil, id, req.LessonID, req.TopicID); err != nil {
		return nil, err
	}
	row := &types.Resource{
		ID:          uuid.New(),
		LessonID:    req.LessonID,
		TopicID:     req.TopicID,
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Order:       orderOrDefault(req.Order),
	}
	if err := s.resourceRepo.CreateBatch(ctx, nil, []*types.Resource{row}); err != nil {
		return nil, err
	}
	dto := resourceDTO(row)
	return &dto, nil
}

func (s *contentService) UpdateResource(ctx context.Context, id *requestdata.Identity, resourceID uuid.UUID, req UpdateResourceRequest) (*ResourceDTO, error) {
	var dto ResourceDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.resourceRepo.GetByID(ctx, tx, resourceID)
		if err != nil {
			return err
		}
		if row == nil {
			return apierr.NotFound("resource_not_found", "resource %s not found", resourceID)
		}
		if err := s.checkLeafOwner(ctx, tx, id, row.LessonID, row.TopicID); err != nil {
			return err
		}
		if req.Title != nil {
			if *req.Title == "" {
				return apierr.Validation("missing_title", "resource title is required")
			}
			row.Title = *req.Title
		}
		if req.Description != nil {
			row.Description = *req.Description
		}
		if req.URL != nil {
			if *req.URL == "" {
				return apierr.Validation("missing_url", "resource url is required")
			}
			row.URL = *req.URL
		}
		if req.Order != nil {
			if *req.Order < 1 {
				return apierr.Validation("invalid_order", "order must be at least 1")
			}
			row.Order = *req.Order
		}
		if err := s.resourceRepo.Save(ctx, tx, row); err != nil {
			return err
		}
		dto = resourceDTO(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *contentService) BulkDeleteResources(ctx context.Context, id *requestdata.Identity, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apierr.Validation("missing_ids", "ids is required")
	}
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.resourceRepo.GetByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		if len(rows) != len(ids) {
			return apierr.NotFound("resource_not_found", "one or more resources do not exist")
		}
		for _, row := range rows {
			if err := s.checkLeafOwner(ctx, tx, id, row.LessonID, row.TopicID); err != nil {
				return err
			}
		}
		deleted, err = s.resourceRepo.DeleteByIDs(ctx, tx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
