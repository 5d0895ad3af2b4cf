package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/repos"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

// maxTopicDepth bounds topic nesting. Checked when topics are created or
// re-parented, so reads never have to defend against runaway chains.
const maxTopicDepth = 10

// contentAssembler batch-loads the rows under a set of lessons and
// reassembles the nested shape the API serves. One query per table, no
// per-node fetches.
type contentAssembler struct {
	topicRepo    repos.TopicRepo
	takeawayRepo repos.KeyTakeawayRepo
	exerciseRepo repos.ExerciseRepo
	resourceRepo repos.ResourceRepo
}

func (a *contentAssembler) lessonTrees(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]LessonDTO, error) {
	lessonIDs := make([]uuid.UUID, 0, len(lessons))
	for _, lesson := range lessons {
		lessonIDs = append(lessonIDs, lesson.ID)
	}

	topics, err := a.topicRepo.ListByLessonIDs(ctx, tx, lessonIDs)
	if err != nil {
		return nil, err
	}
	topicIDs := make([]uuid.UUID, 0, len(topics))
	for _, topic := range topics {
		topicIDs = append(topicIDs, topic.ID)
	}

	lessonTakeaways, err := a.takeawayRepo.ListByLessonIDs(ctx, tx, lessonIDs)
	if err != nil {
		return nil, err
	}
	topicTakeaways, err := a.takeawayRepo.ListByTopicIDs(ctx, tx, topicIDs)
	if err != nil {
		return nil, err
	}
	lessonExercises, err := a.exerciseRepo.ListByLessonIDs(ctx, tx, lessonIDs)
	if err != nil {
		return nil, err
	}
	topicExercises, err := a.exerciseRepo.ListByTopicIDs(ctx, tx, topicIDs)
	if err != nil {
		return nil, err
	}
	lessonResources, err := a.resourceRepo.ListByLessonIDs(ctx, tx, lessonIDs)
	if err != nil {
		return nil, err
	}
	topicResources, err := a.resourceRepo.ListByTopicIDs(ctx, tx, topicIDs)
	if err != nil {
		return nil, err
	}

	topicNodes := make(map[uuid.UUID]*TopicDTO, len(topics))
	for _, topic := range topics {
		dto := topicDTO(topic)
		topicNodes[topic.ID] = &dto
	}
	for _, row := range topicTakeaways {
		if node, ok := topicNodes[*row.TopicID]; ok {
			node.KeyTakeaways = append(node.KeyTakeaways, takeawayDTO(row))
		}
	}
	for _, row := range topicExercises {
		if node, ok := topicNodes[*row.TopicID]; ok {
			node.Exercises = append(node.Exercises, exerciseDTO(row))
		}
	}
	for _, row := range topicResources {
		if node, ok := topicNodes[*row.TopicID]; ok {
			node.Resources = append(node.Resources, resourceDTO(row))
		}
	}

	// Children are attached deepest-first so every parent's subtree is
	// already complete when it is copied in.
	ordered := make([]*types.Topic, len(topics))
	copy(ordered, topics)
	depths := topicDepths(topics)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if depths[ordered[j].ID] > depths[ordered[i].ID] {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	rootsByLesson := make(map[uuid.UUID][]TopicDTO)
	for _, topic := range ordered {
		node := topicNodes[topic.ID]
		if topic.ParentID == nil {
			continue
		}
		if parent, ok := topicNodes[*topic.ParentID]; ok {
			parent.Children = append(parent.Children, *node)
		}
	}
	// Roots are appended in original (sort_order) sequence.
	for _, topic := range topics {
		if topic.ParentID == nil {
			rootsByLesson[topic.LessonID] = append(rootsByLesson[topic.LessonID], *topicNodes[topic.ID])
		}
	}

	out := make([]LessonDTO, 0, len(lessons))
	for _, lesson := range lessons {
		dto := lessonDTO(lesson)
		dto.Topics = rootsByLesson[lesson.ID]
		for _, row := range lessonTakeaways {
			if *row.LessonID == lesson.ID {
				dto.KeyTakeaways = append(dto.KeyTakeaways, takeawayDTO(row))
			}
		}
		for _, row := range lessonExercises {
			if *row.LessonID == lesson.ID {
				dto.Exercises = append(dto.Exercises, exerciseDTO(row))
			}
		}
		for _, row := range lessonResources {
			if *row.LessonID == lesson.ID {
				dto.Resources = append(dto.Resources, resourceDTO(row))
			}
		}
		out = append(out, dto)
	}
	return out, nil
}

// topicDepths computes each topic's distance from its root within the
// loaded set. Rows whose parent is missing or cyclic are treated as
// depth zero; they render as orphans rather than looping.
func topicDepths(topics []*types.Topic) map[uuid.UUID]int {
	parents := make(map[uuid.UUID]*uuid.UUID, len(topics))
	for _, topic := range topics {
		parents[topic.ID] = topic.ParentID
	}
	depths := make(map[uuid.UUID]int, len(topics))
	for _, topic := range topics {
		depth := 0
		seen := map[uuid.UUID]bool{topic.ID: true}
		cur := topic.ParentID
		for cur != nil && depth <= maxTopicDepth {
			if seen[*cur] {
				depth = 0
				break
			}
			seen[*cur] = true
			depth++
			cur = parents[*cur]
		}
		depths[topic.ID] = depth
	}
	return depths
}

// parseHeroMedia validates the optional hero media pair: a type needs a
// URL and vice versa.
func parseHeroMedia(mediaType, mediaURL *string) (*types.HeroMediaType, *string, error) {
	if mediaType == nil && mediaURL == nil {
		return nil, nil, nil
	}
	if mediaType == nil || mediaURL == nil {
		return nil, nil, apierr.Validation("invalid_hero_media", "heroMediaType and heroMediaUrl must be set together")
	}
	parsed := types.HeroMediaType(*mediaType)
	if !parsed.Valid() {
		return nil, nil, apierr.Validation("invalid_hero_media", "heroMediaType must be image or video")
	}
	if *mediaURL == "" {
		return nil, nil, apierr.Validation("invalid_hero_media", "heroMediaUrl cannot be empty")
	}
	return &parsed, mediaURL, nil
}

// nestedCreator persists the inline topic/leaf payloads accepted by the
// lesson and topic create operations. Callers run it inside a
// transaction so a bad node aborts the whole payload.
type nestedCreator struct {
	topicRepo    repos.TopicRepo
	takeawayRepo repos.KeyTakeawayRepo
	exerciseRepo repos.ExerciseRepo
	resourceRepo repos.ResourceRepo
}

func (c *nestedCreator) createLeaves(ctx context.Context, tx *gorm.DB, lessonID, topicID *uuid.UUID, takeaways []NestedTakeaway, exercises []NestedExercise, resources []NestedResource) error {
	takeawayRows := make([]*types.KeyTakeaway, 0, len(takeaways))
	for _, t := range takeaways {
		if t.Content == "" {
			return apierr.Validation("missing_content", "takeaway content is required")
		}
		takeawayRows = append(takeawayRows, &types.KeyTakeaway{
			ID:       uuid.New(),
			LessonID: lessonID,
			TopicID:  topicID,
			Content:  t.Content,
			Order:    orderOrDefault(t.Order),
		})
	}
	if err := c.takeawayRepo.CreateBatch(ctx, tx, takeawayRows); err != nil {
		return err
	}

	exerciseRows := make([]*types.Exercise, 0, len(exercises))
	for _, e := range exercises {
		if e.Title == "" {
			return apierr.Validation("missing_title", "exercise title is required")
		}
		exerciseRows = append(exerciseRows, &types.Exercise{
			ID:          uuid.New(),
			LessonID:    lessonID,
			TopicID:     topicID,
			Title:       e.Title,
			Description: e.Description,
			Order:       orderOrDefault(e.Order),
		})
	}
	if err := c.exerciseRepo.CreateBatch(ctx, tx, exerciseRows); err != nil {
		return err
	}

	resourceRows := make([]*types.Resource, 0, len(resources))
	for _, r := range resources {
		if r.Title == "" || r.URL == "" {
			return apierr.Validation("missing_fields", "resource title and url are required")
		}
		resourceRows = append(resourceRows, &types.Resource{
			ID:          uuid.New(),
			LessonID:    lessonID,
			TopicID:     topicID,
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			Order:       orderOrDefault(r.Order),
		})
	}
	return c.resourceRepo.CreateBatch(ctx, tx, resourceRows)
}

func (c *nestedCreator) createTopicTree(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, parentID *uuid.UUID, node NestedTopic, depth int) (*types.Topic, error) {
	if depth > maxTopicDepth {
		return nil, apierr.Validation("topic_too_deep", "topic nesting exceeds %d levels", maxTopicDepth)
	}
	if node.Title == "" {
		return nil, apierr.Validation("missing_title", "topic title is required")
	}
	mediaType, mediaURL, err := parseHeroMedia(node.HeroMediaType, node.HeroMediaURL)
	if err != nil {
		return nil, err
	}

	topic := &types.Topic{
		ID:            uuid.New(),
		LessonID:      lessonID,
		ParentID:      parentID,
		Title:         node.Title,
		Content:       node.Content,
		HeroMediaType: mediaType,
		HeroMediaURL:  mediaURL,
		Order:         orderOrDefault(node.Order),
	}
	if err := c.topicRepo.Create(ctx, tx, topic); err != nil {
		return nil, err
	}
	if err := c.createLeaves(ctx, tx, nil, &topic.ID, node.KeyTakeaways, node.Exercises, node.Resources); err != nil {
		return nil, err
	}
	for _, child := range node.Children {
		if _, err := c.createTopicTree(ctx, tx, lessonID, &topic.ID, child, depth+1); err != nil {
			return nil, err
		}
	}
	return topic, nil
}

// checkTopicParent validates a prospective parent for a topic: same
// lesson, no self-reference, no cycle, and the combined chain stays
// within maxTopicDepth.
func checkTopicParent(ctx context.Context, tx *gorm.DB, topicRepo repos.TopicRepo, lessonID uuid.UUID, topicID uuid.UUID, parentID uuid.UUID) error {
	if parentID == topicID {
		return apierr.Validation("topic_cycle", "a topic cannot be its own parent")
	}
	depth := 1
	cur := parentID
	for {
		if depth > maxTopicDepth {
			return apierr.Validation("topic_too_deep", "topic nesting exceeds %d levels", maxTopicDepth)
		}
		parent, err := topicRepo.GetByID(ctx, tx, cur)
		if err != nil {
			return err
		}
		if parent == nil {
			return apierr.NotFound("topic_not_found", "parent topic %s not found", cur)
		}
		if parent.LessonID != lessonID {
			return apierr.Validation("cross_lesson_parent", "parent topic belongs to a different lesson")
		}
		if parent.ID == topicID {
			return apierr.Validation("topic_cycle", "re-parenting would create a cycle")
		}
		if parent.ParentID == nil {
			return nil
		}
		cur = *parent.ParentID
		depth++
	}
}
