package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

// seedCourseTree seeds admin/course/module and returns both.
func seedCourseTree(t *testing.T, env *testEnv) (*requestdata.Identity, *ModuleDTO) {
	t.Helper()
	ctx := context.Background()
	admin, course := seedGlobalCourse(t, env)
	module, err := env.modules.Create(ctx, admin, CreateModuleRequest{CourseID: course.ID, Title: "Week 1"})
	if err != nil {
		t.Fatalf("Create module: %v", err)
	}
	return admin, module
}

func TestLessonCreateBuildsNestedTree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, module := seedCourseTree(t, env)

	lesson, err := env.lessons.Create(ctx, admin, CreateLessonRequest{
		ModuleID: module.ID,
		Title:    "Intro",
		Content:  "Welcome",
		KeyTakeaways: []NestedTakeaway{
			{Content: "Lesson-level takeaway", Order: 1},
		},
		Topics: []NestedTopic{
			{
				Title: "Variables",
				Order: 1,
				Children: []NestedTopic{
					{
						Title: "Zero values",
						Order: 1,
						Children: []NestedTopic{
							{Title: "Pointers", Order: 1},
						},
						Exercises: []NestedExercise{
							{Title: "Declare three vars", Order: 1},
						},
					},
				},
			},
			{
				Title: "Constants",
				Order: 2,
				Resources: []NestedResource{
					{Title: "Spec link", URL: "https://example.com/spec", Order: 1},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("Create lesson: %v", err)
	}

	if len(lesson.KeyTakeaways) != 1 {
		t.Fatalf("lesson takeaways: want=1 got=%d", len(lesson.KeyTakeaways))
	}
	if len(lesson.Topics) != 2 {
		t.Fatalf("root topics: want=2 got=%d", len(lesson.Topics))
	}
	if lesson.Topics[0].Title != "Variables" || lesson.Topics[1].Title != "Constants" {
		t.Fatalf("root topic order: got %q, %q", lesson.Topics[0].Title, lesson.Topics[1].Title)
	}

	variables := lesson.Topics[0]
	if len(variables.Children) != 1 {
		t.Fatalf("variables children: want=1 got=%d", len(variables.Children))
	}
	zero := variables.Children[0]
	if zero.Title != "Zero values" || len(zero.Exercises) != 1 {
		t.Fatalf("nested topic payload wrong: title=%q exercises=%d", zero.Title, len(zero.Exercises))
	}
	if len(zero.Children) != 1 || zero.Children[0].Title != "Pointers" {
		t.Fatalf("depth-3 topic missing")
	}
	if len(lesson.Topics[1].Resources) != 1 {
		t.Fatalf("topic resources: want=1 got=%d", len(lesson.Topics[1].Resources))
	}
}

func TestLessonCreateRejectsTooDeepNesting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, module := seedCourseTree(t, env)

	node := NestedTopic{Title: "level-11"}
	for i := 10; i >= 1; i-- {
		node = NestedTopic{Title: fmt.Sprintf("level-%d", i), Children: []NestedTopic{node}}
	}

	_, err := env.lessons.Create(ctx, admin, CreateLessonRequest{
		ModuleID: module.ID,
		Title:    "Too deep",
		Topics:   []NestedTopic{node},
	})
	assertAPIError(t, err, http.StatusBadRequest, "topic_too_deep")

	// The whole create rolls back, lesson included.
	var lessons int64
	if err := env.db.Model(&types.Lesson{}).Where("module_id = ?", module.ID).Count(&lessons).Error; err != nil {
		t.Fatalf("count lessons: %v", err)
	}
	if lessons != 0 {
		t.Fatalf("lesson row survived a failed nested create")
	}
}

func TestTopicChainDepthCap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, module := seedCourseTree(t, env)

	lesson, err := env.lessons.Create(ctx, admin, CreateLessonRequest{ModuleID: module.ID, Title: "Deep"})
	if err != nil {
		t.Fatalf("Create lesson: %v", err)
	}

	var parent *uuid.UUID
	for i := 1; i <= maxTopicDepth; i++ {
		topic, err := env.topics.Create(ctx, admin, CreateTopicRequest{
			LessonID: lesson.ID,
			ParentID: parent,
			Title:    fmt.Sprintf("level-%d", i),
		})
		if err != nil {
			t.Fatalf("Create topic at depth %d: %v", i, err)
		}
		parent = uuidptr(topic.ID)
	}

	_, err = env.topics.Create(ctx, admin, CreateTopicRequest{
		LessonID: lesson.ID,
		ParentID: parent,
		Title:    "one too many",
	})
	assertAPIError(t, err, http.StatusBadRequest, "topic_too_deep")
}

func TestTopicReparentCycleRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, module := seedCourseTree(t, env)

	lesson, err := env.lessons.Create(ctx, admin, CreateLessonRequest{ModuleID: module.ID, Title: "Cycles"})
	if err != nil {
		t.Fatalf("Create lesson: %v", err)
	}
	parent, err := env.topics.Create(ctx, admin, CreateTopicRequest{LessonID: lesson.ID, Title: "A"})
	if err != nil {
		t.Fatalf("Create topic A: %v", err)
	}
	child, err := env.topics.Create(ctx, admin, CreateTopicRequest{
		LessonID: lesson.ID,
		ParentID: uuidptr(parent.ID),
		Title:    "B",
	})
	if err != nil {
		t.Fatalf("Create topic B: %v", err)
	}

	// A topic cannot become its own descendant's child.
	_, err = env.topics.Update(ctx, admin, parent.ID, UpdateTopicRequest{ParentID: uuidptr(child.ID)})
	assertAPIError(t, err, http.StatusBadRequest, "topic_cycle")

	// Or its own parent.
	_, err = env.topics.Update(ctx, admin, parent.ID, UpdateTopicRequest{ParentID: uuidptr(parent.ID)})
	assertAPIError(t, err, http.StatusBadRequest, "topic_cycle")
}

func TestTopicCrossLessonParentRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, module := seedCourseTree(t, env)

	lessonA, err := env.lessons.Create(ctx, admin, CreateLessonRequest{ModuleID: module.ID, Title: "A"})
	if err != nil {
		t.Fatalf("Create lesson A: %v", err)
	}
	lessonB, err := env.lessons.Create(ctx, admin, CreateLessonRequest{ModuleID: module.ID, Title: "B"})
	if err != nil {
		t.Fatalf("Create lesson B: %v", err)
	}
	foreign, err := env.topics.Create(ctx, admin, CreateTopicRequest{LessonID: lessonB.ID, Title: "Foreign"})
	if err != nil {
		t.Fatalf("Create foreign topic: %v", err)
	}

	_, err = env.topics.Create(ctx, admin, CreateTopicRequest{
		LessonID: lessonA.ID,
		ParentID: uuidptr(foreign.ID),
		Title:    "Orphan",
	})
	assertAPIError(t, err, http.StatusBadRequest, "cross_lesson_parent")
}

func TestTopicBulkDeleteRemovesDescendants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, module := seedCourseTree(t, env)

	lesson, err := env.lessons.Create(ctx, admin, CreateLessonRequest{ModuleID: module.ID, Title: "Doomed"})
	if err != nil {
		t.Fatalf("Create lesson: %v", err)
	}
	root, err := env.topics.Create(ctx, admin, CreateTopicRequest{
		LessonID: lesson.ID,
		Title:    "Root",
		Children: []NestedTopic{
			{
				Title: "Child",
				Children: []NestedTopic{
					{Title: "Grandchild", KeyTakeaways: []NestedTakeaway{{Content: "deep note"}}},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("Create topic tree: %v", err)
	}
	keeper, err := env.topics.Create(ctx, admin, CreateTopicRequest{LessonID: lesson.ID, Title: "Keeper"})
	if err != nil {
		t.Fatalf("Create keeper topic: %v", err)
	}

	deleted, err := env.topics.BulkDelete(ctx, admin, []uuid.UUID{root.ID})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("deleted count (root+descendants): want=3 got=%d", deleted)
	}

	var topics int64
	if err := env.db.Model(&types.Topic{}).Where("lesson_id = ?", lesson.ID).Count(&topics).Error; err != nil {
		t.Fatalf("count topics: %v", err)
	}
	if topics != 1 {
		t.Fatalf("topic count after subtree delete: want=1 got=%d", topics)
	}
	var takeaways int64
	if err := env.db.Model(&types.KeyTakeaway{}).Count(&takeaways).Error; err != nil {
		t.Fatalf("count takeaways: %v", err)
	}
	if takeaways != 0 {
		t.Fatalf("descendant takeaways survived: %d", takeaways)
	}

	if _, err := env.topics.Get(ctx, admin, keeper.ID); err != nil {
		t.Fatalf("unrelated topic vanished: %v", err)
	}
}

func TestHeroMediaValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, module := seedCourseTree(t, env)

	_, err := env.lessons.Create(ctx, admin, CreateLessonRequest{
		ModuleID:      module.ID,
		Title:         "Half media",
		HeroMediaType: strptr("image"),
	})
	assertAPIError(t, err, http.StatusBadRequest, "invalid_hero_media")

	_, err = env.lessons.Create(ctx, admin, CreateLessonRequest{
		ModuleID:      module.ID,
		Title:         "Bad type",
		HeroMediaType: strptr("gif"),
		HeroMediaURL:  strptr("https://example.com/x.gif"),
	})
	assertAPIError(t, err, http.StatusBadRequest, "invalid_hero_media")

	lesson, err := env.lessons.Create(ctx, admin, CreateLessonRequest{
		ModuleID:      module.ID,
		Title:         "Good media",
		HeroMediaType: strptr("video"),
		HeroMediaURL:  strptr("https://example.com/intro.mp4"),
	})
	if err != nil {
		t.Fatalf("Create lesson with media: %v", err)
	}
	if lesson.HeroMediaType == nil || *lesson.HeroMediaType != types.HeroMediaVideo {
		t.Fatalf("hero media type not persisted: %v", lesson.HeroMediaType)
	}
}
