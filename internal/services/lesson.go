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

type LessonService interface {
	Create(ctx context.Context, id *requestdata.Identity, req CreateLessonRequest) (*LessonDTO, error)
	Get(ctx context.Context, id *requestdata.Identity, lessonID uuid.UUID) (*LessonDTO, error)
	Update(ctx context.Context, id *requestdata.Identity, lessonID uuid.UUID, req UpdateLessonRequest) (*LessonDTO, error)
	BulkDelete(ctx context.Context, id *requestdata.Identity, lessonIDs []uuid.UUID) (int64, error)
}

type lessonService struct {
	db           *gorm.DB
	lessonRepo   repos.LessonRepo
	topicRepo    repos.TopicRepo
	takeawayRepo repos.KeyTakeawayRepo
	exerciseRepo repos.ExerciseRepo
	resourceRepo repos.ResourceRepo
	access       AccessService
	assembler    contentAssembler
	creator      nestedCreator
	log          *logger.Logger
}

func NewLessonService(
	db *gorm.DB,
	lessonRepo repos.LessonRepo,
	topicRepo repos.TopicRepo,
	takeawayRepo repos.KeyTakeawayRepo,
	exerciseRepo repos.ExerciseRepo,
	resourceRepo repos.ResourceRepo,
	access AccessService,
	baseLog *logger.Logger,
) LessonService {
	return &lessonService{
		db:           db,
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
		creator: nestedCreator{
			topicRepo:    topicRepo,
			takeawayRepo: takeawayRepo,
			exerciseRepo: exerciseRepo,
			resourceRepo: resourceRepo,
		},
		log: baseLog.With("service", "LessonService"),
	}
}

// Create accepts the lesson plus an inline payload of topics (nested to
// any allowed depth), takeaways, exercises and resources. Either the
// whole payload lands or none of it does.
func (s *lessonService) Create(ctx context.Context, id *requestdata.Identity, req CreateLessonRequest) (*LessonDTO, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apierr.Validation("missing_title", "lesson title is required")
	}
	mediaType, mediaURL, err := parseHeroMedia(req.HeroMediaType, req.HeroMediaURL)
	if err != nil {
		return nil, err
	}

	var lessonID uuid.UUID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.access.CourseForModule(ctx, tx, req.ModuleID)
		if err != nil {
			return err
		}
		if err := s.access.AuthorizeCourseWrite(ctx, tx, id, course); err != nil {
			return err
		}

		lesson := &types.Lesson{
			ID:            uuid.New(),
			ModuleID:      req.ModuleID,
			Title:         strings.TrimSpace(req.Title),
			Content:       req.Content,
			HeroMediaType: mediaType,
			HeroMediaURL:  mediaURL,
			Order:         orderOrDefault(req.Order),
		}
		if err := s.lessonRepo.Create(ctx, tx, lesson); err != nil {
			return err
		}
		lessonID = lesson.ID

		if err := s.creator.createLeaves(ctx, tx, &lesson.ID, nil, req.KeyTakeaways, req.Exercises, req.Resources); err != nil {
			return err
		}
		for _, topic := range req.Topics {
			if _, err := s.creator.createTopicTree(ctx, tx, lesson.ID, nil, topic, 1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Created lesson", "lessonId", lessonID.String())
	return s.Get(ctx, id, lessonID)
}

func (s *lessonService) Get(ctx context.Context, id *requestdata.Identity, lessonID uuid.UUID) (*LessonDTO, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, apierr.NotFound("lesson_not_found", "lesson %s not found", lessonID)
	}
	course, err := s.access.CourseForLesson(ctx, nil, lessonID)
	if err != nil {
		return nil, err
	}
	visible, err := s.access.CanReadCourse(ctx, nil, id, course)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apierr.NotFound("lesson_not_found", "lesson %s not found", lessonID)
	}

	trees, err := s.assembler.lessonTrees(ctx, nil, []*types.Lesson{lesson})
	if err != nil {
		return nil, err
	}
	return &trees[0], nil
}

func (s *lessonService) Update(ctx context.Context, id *requestdata.Identity, lessonID uuid.UUID, req UpdateLessonRequest) (*LessonDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lesson, err := s.lessonRepo.GetByID(ctx, tx, lessonID)
		if err != nil {
			return err
		}
		if lesson == nil {
			return apierr.NotFound("lesson_not_found", "lesson %s not found", lessonID)
		}
		course, err := s.access.CourseForLesson(ctx, tx, lessonID)
		if err != nil {
			return err
		}
		if err := s.access.AuthorizeCourseWrite(ctx, tx, id, course); err != nil {
			return err
		}

		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return apierr.Validation("missing_title", "lesson title is required")
			}
			lesson.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			lesson.Content = *req.Content
		}
		if req.HeroMediaType != nil || req.HeroMediaURL != nil {
			mediaType, mediaURL, err := parseHeroMedia(req.HeroMediaType, req.HeroMediaURL)
			if err != nil {
				return err
			}
			lesson.HeroMediaType = mediaType
			lesson.HeroMediaURL = mediaURL
		}
		if req.Order != nil {
			if *req.Order < 1 {
				return apierr.Validation("invalid_order", "order must be at least 1")
			}
			lesson.Order = *req.Order
		}
		return s.lessonRepo.Save(ctx, tx, lesson)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id, lessonID)
}

func (s *lessonService) BulkDelete(ctx context.Context, id *requestdata.Identity, lessonIDs []uuid.UUID) (int64, error) {
	if len(lessonIDs) == 0 {
		return 0, apierr.Validation("missing_ids", "ids is required")
	}
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lessons, err := s.lessonRepo.GetByIDs(ctx, tx, lessonIDs)
		if err != nil {
			return err
		}
		if len(lessons) != len(lessonIDs) {
			return apierr.NotFound("lesson_not_found", "one or more lessons do not exist")
		}
		for _, lesson := range lessons {
			course, err := s.access.CourseForModule(ctx, tx, lesson.ModuleID)
			if err != nil {
				return err
			}
			if err := s.access.AuthorizeCourseWrite(ctx, tx, id, course); err != nil {
				return err
			}
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
		deleted, err = s.lessonRepo.DeleteByIDs(ctx, tx, lessonIDs)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Deleted lessons", "count", deleted)
	return deleted, nil
}
