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

type TopicService interface {
	Create(ctx context.Context, id *requestdata.Identity, req CreateTopicRequest) (*TopicDTO, error)
	Get(ctx context.Context, id *requestdata.Identity, topicID uuid.UUID) (*TopicDTO, error)
	Update(ctx context.Context, id *requestdata.Identity, topicID uuid.UUID, req UpdateTopicRequest) (*TopicDTO, error)
	BulkDelete(ctx context.Context, id *requestdata.Identity, topicIDs []uuid.UUID) (int64, error)
}

type topicService struct {
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

func NewTopicService(
	db *gorm.DB,
	lessonRepo repos.LessonRepo,
	topicRepo repos.TopicRepo,
	takeawayRepo repos.KeyTakeawayRepo,
	exerciseRepo repos.ExerciseRepo,
	resourceRepo repos.ResourceRepo,
	access AccessService,
	baseLog *logger.Logger,
) TopicService {
	return &topicService{
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
		log: baseLog.With("service", "TopicService"),
	}
}

func (s *topicService) Create(ctx context.Context, id *requestdata.Identity, req CreateTopicRequest) (*TopicDTO, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apierr.Validation("missing_title", "topic title is required")
	}

	var topicID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.access.CourseForLesson(ctx, tx, req.LessonID)
		if err != nil {
			return err
		}
		if err := s.access.AuthorizeCourseWrite(ctx, tx, id, course); err != nil {
			return err
		}

		depth := 1
		if req.ParentID != nil {
			if err := checkTopicParent(ctx, tx, s.topicRepo, req.LessonID, uuid.Nil, *req.ParentID); err != nil {
				return err
			}
			parentDepth, err := s.chainDepth(ctx, tx, *req.ParentID)
			if err != nil {
				return err
			}
			depth = parentDepth + 1
		}

		node := NestedTopic{
			Title:         strings.TrimSpace(req.Title),
			Content:       req.Content,
			HeroMediaType: req.HeroMediaType,
			HeroMediaURL:  req.HeroMediaURL,
			Order:         req.Order,
			Children:      req.Children,
			KeyTakeaways:  req.KeyTakeaways,
			Exercises:     req.Exercises,
			Resources:     req.Resources,
		}
		created, err := s.creator.createTopicTree(ctx, tx, req.LessonID, req.ParentID, node, depth)
		if err != nil {
			return err
		}
		topicID = created.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Created topic", "topicId", topicID.String())
	return s.Get(ctx, id, topicID)
}

// chainDepth is the 1-based depth of the topic within its lesson.
func (s *topicService) chainDepth(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) (int, error) {
	depth := 1
	cur := topicID
	for {
		topic, err := s.topicRepo.GetByID(ctx, tx, cur)
		if err != nil {
			return 0, err
		}
		if topic == nil || topic.ParentID == nil {
			return depth, nil
		}
		depth++
		if depth > maxTopicDepth {
			return depth, nil
		}
		cur = *topic.ParentID
	}
}

func (s *topicService) Get(ctx context.Context, id *requestdata.Identity, topicID uuid.UUID) (*TopicDTO, error) {
	topic, err := s.topicRepo.GetByID(ctx, nil, topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, apierr.NotFound("topic_not_found", "topic %s not found", topicID)
	}
	course, err := s.access.CourseForLesson(ctx, nil, topic.LessonID)
	if err != nil {
		return nil, err
	}
	visible, err := s.access.CanReadCourse(ctx, nil, id, course)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apierr.NotFound("topic_not_found", "topic %s not found", topicID)
	}

	lesson, err := s.lessonRepo.GetByID(ctx, nil, topic.LessonID)
	if err != nil {
		return nil, err
	}
	trees, err := s.assembler.lessonTrees(ctx, nil, []*types.Lesson{lesson})
	if err != nil {
		return nil, err
	}
	if node := findTopic(trees[0].Topics, topicID); node != nil {
		return node, nil
	}
	return nil, apierr.NotFound("topic_not_found", "topic %s not found", topicID)
}

func findTopic(nodes []TopicDTO, topicID uuid.UUID) *TopicDTO {
	for i := range nodes {
		if nodes[i].ID == topicID {
			return &nodes[i]
		}
		if found := findTopic(nodes[i].Children, topicID); found != nil {
			return found
		}
	}
	return nil
}

func (s *topicService) Update(ctx context.Context, id *requestdata.Identity, topicID uuid.UUID, req UpdateTopicRequest) (*TopicDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topic, err := s.topicRepo.GetByID(ctx, tx, topicID)
		if err != nil {
			return err
		}
		if topic == nil {
			return apierr.NotFound("topic_not_found", "topic %s not found", topicID)
		}
		course, err := s.access.CourseForLesson(ctx, tx, topic.LessonID)
		if err != nil {
			return err
		}
		if err := s.access.AuthorizeCourseWrite(ctx, tx, id, course); err != nil {
			return err
		}

		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return apierr.Validation("missing_title", "topic title is required")
			}
			topic.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			topic.Content = *req.Content
		}
		if req.HeroMediaType != nil || req.HeroMediaURL != nil {
			mediaType, mediaURL, err := parseHeroMedia(req.HeroMediaType, req.HeroMediaURL)
			if err != nil {
				return err
			}
			topic.HeroMediaType = mediaType
			topic.HeroMediaURL = mediaURL
		}
		if req.Order != nil {
			if *req.Order < 1 {
				return apierr.Validation("invalid_order", "order must be at least 1")
			}
			topic.Order = *req.Order
		}
		if req.ParentID != nil {
			if err := checkTopicParent(ctx, tx, s.topicRepo, topic.LessonID, topic.ID, *req.ParentID); err != nil {
				return err
			}
			// The subtree below the moved topic must still fit under the cap.
			parentDepth, err := s.chainDepth(ctx, tx, *req.ParentID)
			if err != nil {
				return err
			}
			height, err := s.subtreeHeight(ctx, tx, topic)
			if err != nil {
				return err
			}
			if parentDepth+height > maxTopicDepth {
				return apierr.Validation("topic_too_deep", "topic nesting exceeds %d levels", maxTopicDepth)
			}
			topic.ParentID = req.ParentID
		}
		return s.topicRepo.Save(ctx, tx, topic)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id, topicID)
}

func (s *topicService) subtreeHeight(ctx context.Context, tx *gorm.DB, topic *types.Topic) (int, error) {
	all, err := s.topicRepo.ListByLessonIDs(ctx, tx, []uuid.UUID{topic.LessonID})
	if err != nil {
		return 0, err
	}
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, row := range all {
		if row.ParentID != nil {
			children[*row.ParentID] = append(children[*row.ParentID], row.ID)
		}
	}
	var height func(id uuid.UUID, depth int) int
	height = func(id uuid.UUID, depth int) int {
		if depth > maxTopicDepth {
			return depth
		}
		max := depth
		for _, child := range children[id] {
			if h := height(child, depth+1); h > max {
				max = h
			}
		}
		return max
	}
	return height(topic.ID, 1), nil
}

// BulkDelete removes the named topics and their entire subtrees. Every
// named topic is authorized before any row is touched.
func (s *topicService) BulkDelete(ctx context.Context, id *requestdata.Identity, topicIDs []uuid.UUID) (int64, error) {
	if len(topicIDs) == 0 {
		return 0, apierr.Validation("missing_ids", "ids is required")
	}
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topics, err := s.topicRepo.GetByIDs(ctx, tx, topicIDs)
		if err != nil {
			return err
		}
		if len(topics) != len(topicIDs) {
			return apierr.NotFound("topic_not_found", "one or more topics do not exist")
		}
		lessonSet := make(map[uuid.UUID]bool)
		for _, topic := range topics {
			course, err := s.access.CourseForLesson(ctx, tx, topic.LessonID)
			if err != nil {
				return err
			}
			if err := s.access.AuthorizeCourseWrite(ctx, tx, id, course); err != nil {
				return err
			}
			lessonSet[topic.LessonID] = true
		}

		lessonIDs := make([]uuid.UUID, 0, len(lessonSet))
		for lessonID := range lessonSet {
			lessonIDs = append(lessonIDs, lessonID)
		}
		all, err := s.topicRepo.ListByLessonIDs(ctx, tx, lessonIDs)
		if err != nil {
			return err
		}
		children := make(map[uuid.UUID][]uuid.UUID)
		for _, row := range all {
			if row.ParentID != nil {
				children[*row.ParentID] = append(children[*row.ParentID], row.ID)
			}
		}
		doomed := make(map[uuid.UUID]bool)
		var mark func(id uuid.UUID)
		mark = func(id uuid.UUID) {
			if doomed[id] {
				return
			}
			doomed[id] = true
			for _, child := range children[id] {
				mark(child)
			}
		}
		for _, topicID := range topicIDs {
			mark(topicID)
		}
		doomedIDs := make([]uuid.UUID, 0, len(doomed))
		for topicID := range doomed {
			doomedIDs = append(doomedIDs, topicID)
		}

		if err := s.takeawayRepo.DeleteByOwners(ctx, tx, nil, doomedIDs); err != nil {
			return err
		}
		if err := s.exerciseRepo.DeleteByOwners(ctx, tx, nil, doomedIDs); err != nil {
			return err
		}
		if err := s.resourceRepo.DeleteByOwners(ctx, tx, nil, doomedIDs); err != nil {
			return err
		}
		deleted, err = s.topicRepo.DeleteByIDs(ctx, tx, doomedIDs)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Deleted topics", "count", deleted)
	return deleted, nil
}
