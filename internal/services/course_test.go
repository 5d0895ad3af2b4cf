package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

func TestCourseCreateRequiresClass(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Omitting the class fails regardless of role.
	teacher := env.seedUser(t, "teacher1", types.RoleTeacher)
	_, err := env.courses.Create(ctx, teacher, CreateCourseRequest{Title: "Go Basics"})
	assertAPIError(t, err, http.StatusBadRequest, "missing_class")

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	_, err = env.courses.Create(ctx, admin, CreateCourseRequest{Title: "Go Basics"})
	assertAPIError(t, err, http.StatusBadRequest, "missing_class")

	// A class id that points nowhere is a 404, not a silent global.
	_, err = env.courses.Create(ctx, admin, CreateCourseRequest{
		Title:          "Go Basics",
		TeacherClassID: uuidptr(uuid.New()),
	})
	assertAPIError(t, err, http.StatusNotFound, "class_not_found")

	var rows int64
	if err := env.db.Model(&types.Course{}).Count(&rows).Error; err != nil {
		t.Fatalf("count courses: %v", err)
	}
	if rows != 0 {
		t.Fatalf("rejected create left a course row behind")
	}
}

func TestAnonymousSeesOnlyGlobalCourses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, global := seedGlobalCourse(t, env)

	teacher := env.seedUser(t, "teacher1", types.RoleTeacher)
	class, err := env.classes.Create(ctx, teacher, CreateClassRequest{Name: "Algebra"})
	if err != nil {
		t.Fatalf("Create class: %v", err)
	}
	bound, err := env.courses.Create(ctx, teacher, CreateCourseRequest{
		Title:          "Class Only",
		TeacherClassID: uuidptr(class.ID),
	})
	if err != nil {
		t.Fatalf("Create class course: %v", err)
	}

	list, err := env.courses.List(ctx, nil)
	if err != nil {
		t.Fatalf("List anonymous: %v", err)
	}
	if len(list) != 1 || list[0].ID != global.ID {
		t.Fatalf("anonymous list: want only global course, got %d entries", len(list))
	}

	// Invisible and missing look identical.
	if _, err := env.courses.Get(ctx, nil, bound.ID); err == nil {
		t.Fatalf("anonymous read of class course must fail")
	} else {
		assertAPIError(t, err, http.StatusNotFound, "course_not_found")
	}

	got, err := env.courses.Get(ctx, nil, global.ID)
	if err != nil {
		t.Fatalf("Get global anonymous: %v", err)
	}
	if got.ID != global.ID {
		t.Fatalf("global course id mismatch")
	}
}

func TestEnrollmentGrantsCourseVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "teacher1", types.RoleTeacher)
	class, err := env.classes.Create(ctx, teacher, CreateClassRequest{Name: "Algebra"})
	if err != nil {
		t.Fatalf("Create class: %v", err)
	}
	course, err := env.courses.Create(ctx, teacher, CreateCourseRequest{
		Title:          "Class Only",
		TeacherClassID: uuidptr(class.ID),
	})
	if err != nil {
		t.Fatalf("Create course: %v", err)
	}

	student := env.seedUser(t, "student1", types.RoleStudent)
	_, err = env.courses.Get(ctx, student, course.ID)
	assertAPIError(t, err, http.StatusNotFound, "course_not_found")

	if _, err := env.classes.Enroll(ctx, student, class.ClassCode); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	got, err := env.courses.Get(ctx, student, course.ID)
	if err != nil {
		t.Fatalf("Get after enrollment: %v", err)
	}
	if got.ID != course.ID {
		t.Fatalf("course id mismatch after enrollment")
	}

	// Enrollment grants reads, never writes.
	_, err = env.courses.Update(ctx, student, course.ID, UpdateCourseRequest{Title: strptr("Hacked")})
	assertAPIError(t, err, http.StatusForbidden, "forbidden")
}

func TestCourseWriteRequiresClassOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.seedUser(t, "teacher_a", types.RoleTeacher)
	rival := env.seedUser(t, "teacher_b", types.RoleTeacher)
	class, err := env.classes.Create(ctx, owner, CreateClassRequest{Name: "Algebra"})
	if err != nil {
		t.Fatalf("Create class: %v", err)
	}

	_, err = env.courses.Create(ctx, rival, CreateCourseRequest{
		Title:          "Not Yours",
		TeacherClassID: uuidptr(class.ID),
	})
	assertAPIError(t, err, http.StatusForbidden, "forbidden")

	course, err := env.courses.Create(ctx, owner, CreateCourseRequest{
		Title:          "Mine",
		TeacherClassID: uuidptr(class.ID),
	})
	if err != nil {
		t.Fatalf("Create as owner: %v", err)
	}

	// Rival cannot even see it, let alone edit it.
	_, err = env.courses.Update(ctx, rival, course.ID, UpdateCourseRequest{Title: strptr("Hijacked")})
	if err == nil {
		t.Fatalf("rival update must fail")
	}
}

func TestCourseBulkDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, course := seedGlobalCourse(t, env)
	module, err := env.modules.Create(ctx, admin, CreateModuleRequest{
		CourseID: course.ID,
		Title:    "Week 1",
	})
	if err != nil {
		t.Fatalf("Create module: %v", err)
	}
	lesson, err := env.lessons.Create(ctx, admin, CreateLessonRequest{
		ModuleID: module.ID,
		Title:    "Intro",
		Topics: []NestedTopic{
			{Title: "Setup", KeyTakeaways: []NestedTakeaway{{Content: "Install the toolchain"}}},
		},
	})
	if err != nil {
		t.Fatalf("Create lesson: %v", err)
	}

	deleted, err := env.courses.BulkDelete(ctx, admin, []uuid.UUID{course.ID})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted count: want=1 got=%d", deleted)
	}

	// Everything under the course is gone.
	var topics int64
	if err := env.db.Model(&types.Topic{}).Where("lesson_id = ?", lesson.ID).Count(&topics).Error; err != nil {
		t.Fatalf("count topics: %v", err)
	}
	if topics != 0 {
		t.Fatalf("topics survived course deletion: %d", topics)
	}
	var lessons int64
	if err := env.db.Model(&types.Lesson{}).Where("module_id = ?", module.ID).Count(&lessons).Error; err != nil {
		t.Fatalf("count lessons: %v", err)
	}
	if lessons != 0 {
		t.Fatalf("lessons survived course deletion: %d", lessons)
	}
}

func TestCourseUpdateRevalidatesDestinationClass(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.seedUser(t, "teacher_a", types.RoleTeacher)
	rival := env.seedUser(t, "teacher_b", types.RoleTeacher)
	ownClass, err := env.classes.Create(ctx, owner, CreateClassRequest{Name: "Algebra"})
	if err != nil {
		t.Fatalf("Create own class: %v", err)
	}
	rivalClass, err := env.classes.Create(ctx, rival, CreateClassRequest{Name: "Biology"})
	if err != nil {
		t.Fatalf("Create rival class: %v", err)
	}
	course, err := env.courses.Create(ctx, owner, CreateCourseRequest{
		Title:          "Mine",
		TeacherClassID: uuidptr(ownClass.ID),
	})
	if err != nil {
		t.Fatalf("Create course: %v", err)
	}

	// Moving the course into someone else's class is a write on the
	// destination, so it fails.
	_, err = env.courses.Update(ctx, owner, course.ID, UpdateCourseRequest{
		TeacherClassID: uuidptr(rivalClass.ID),
	})
	assertAPIError(t, err, http.StatusForbidden, "forbidden")
}
