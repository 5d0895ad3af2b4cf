package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

func TestLeafRequiresExactlyOneOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, module := seedCourseTree(t, env)

	lesson, err := env.lessons.Create(ctx, admin, CreateLessonRequest{ModuleID: module.ID, Title: "Intro"})
	if err != nil {
		t.Fatalf("Create lesson: %v", err)
	}
	topic, err := env.topics.Create(ctx, admin, CreateTopicRequest{LessonID: lesson.ID, Title: "Variables"})
	if err != nil {
		t.Fatalf("Create topic: %v", err)
	}

	// Neither owner.
	_, err = env.content.CreateTakeaway(ctx, admin, CreateTakeawayRequest{Content: "floating"})
	assertAPIError(t, err, http.StatusBadRequest, "invalid_owner")

	// Both owners.
	_, err = env.content.CreateTakeaway(ctx, admin, CreateTakeawayRequest{
		LessonID: uuidptr(lesson.ID),
		TopicID:  uuidptr(topic.ID),
		Content:  "torn",
	})
	assertAPIError(t, err, http.StatusBadRequest, "invalid_owner")

	// Exactly one of each works.
	onLesson, err := env.content.CreateTakeaway(ctx, admin, CreateTakeawayRequest{
		LessonID: uuidptr(lesson.ID),
		Content:  "lesson note",
	})
	if err != nil {
		t.Fatalf("CreateTakeaway on lesson: %v", err)
	}
	if onLesson.LessonID == nil || onLesson.TopicID != nil {
		t.Fatalf("lesson takeaway owners wrong: lesson=%v topic=%v", onLesson.LessonID, onLesson.TopicID)
	}
	onTopic, err := env.content.CreateTakeaway(ctx, admin, CreateTakeawayRequest{
		TopicID: uuidptr(topic.ID),
		Content: "topic note",
	})
	if err != nil {
		t.Fatalf("CreateTakeaway on topic: %v", err)
	}
	if onTopic.TopicID == nil || onTopic.LessonID != nil {
		t.Fatalf("topic takeaway owners wrong: lesson=%v topic=%v", onTopic.LessonID, onTopic.TopicID)
	}
}

func TestLeafWritesWalkUpToCourseAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "teacher1", types.RoleTeacher)
	class, err := env.classes.Create(ctx, teacher, CreateClassRequest{Name: "Algebra"})
	if err != nil {
		t.Fatalf("Create class: %v", err)
	}
	course, err := env.courses.Create(ctx, teacher, CreateCourseRequest{
		Title:          "Class Course",
		TeacherClassID: uuidptr(class.ID),
	})
	if err != nil {
		t.Fatalf("Create course: %v", err)
	}
	module, err := env.modules.Create(ctx, teacher, CreateModuleRequest{CourseID: course.ID, Title: "Week 1"})
	if err != nil {
		t.Fatalf("Create module: %v", err)
	}
	lesson, err := env.lessons.Create(ctx, teacher, CreateLessonRequest{ModuleID: module.ID, Title: "Intro"})
	if err != nil {
		t.Fatalf("Create lesson: %v", err)
	}

	rival := env.seedUser(t, "teacher2", types.RoleTeacher)
	_, err = env.content.CreateExercise(ctx, rival, CreateExerciseRequest{
		LessonID: uuidptr(lesson.ID),
		Title:    "Not yours",
	})
	assertAPIError(t, err, http.StatusForbidden, "forbidden")

	exercise, err := env.content.CreateExercise(ctx, teacher, CreateExerciseRequest{
		LessonID: uuidptr(lesson.ID),
		Title:    "Solve for x",
	})
	if err != nil {
		t.Fatalf("CreateExercise as owner: %v", err)
	}

	_, err = env.content.UpdateExercise(ctx, rival, exercise.ID, UpdateExerciseRequest{Title: strptr("Hijacked")})
	assertAPIError(t, err, http.StatusForbidden, "forbidden")
}

func TestResourceRequiresURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, module := seedCourseTree(t, env)

	lesson, err := env.lessons.Create(ctx, admin, CreateLessonRequest{ModuleID: module.ID, Title: "Intro"})
	if err != nil {
		t.Fatalf("Create lesson: %v", err)
	}

	_, err = env.content.CreateResource(ctx, admin, CreateResourceRequest{
		LessonID: uuidptr(lesson.ID),
		Title:    "No link",
	})
	assertAPIError(t, err, http.StatusBadRequest, "missing_fields")
}

func TestContentBulkDeleteAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, module := seedCourseTree(t, env)

	lesson, err := env.lessons.Create(ctx, admin, CreateLessonRequest{ModuleID: module.ID, Title: "Intro"})
	if err != nil {
		t.Fatalf("Create lesson: %v", err)
	}
	takeaway, err := env.content.CreateTakeaway(ctx, admin, CreateTakeawayRequest{
		LessonID: uuidptr(lesson.ID),
		Content:  "keep or kill together",
	})
	if err != nil {
		t.Fatalf("CreateTakeaway: %v", err)
	}

	_, err = env.content.BulkDeleteTakeaways(ctx, admin, []uuid.UUID{takeaway.ID, uuid.New()})
	assertAPIError(t, err, http.StatusNotFound, "takeaway_not_found")

	var rows int64
	if err := env.db.Model(&types.KeyTakeaway{}).Count(&rows).Error; err != nil {
		t.Fatalf("count takeaways: %v", err)
	}
	if rows != 1 {
		t.Fatalf("takeaway deleted by a failed batch")
	}

	deleted, err := env.content.BulkDeleteTakeaways(ctx, admin, []uuid.UUID{takeaway.ID})
	if err != nil {
		t.Fatalf("BulkDeleteTakeaways: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted count: want=1 got=%d", deleted)
	}
}
