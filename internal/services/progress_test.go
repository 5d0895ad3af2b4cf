package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

// seedGlobalCourse inserts a classless catalogue course directly.
// Global courses are seeded data; the API only creates class-bound
// ones.
func seedGlobalCourse(t *testing.T, env *testEnv) (*requestdata.Identity, *CourseDTO) {
	t.Helper()
	ctx := context.Background()
	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	row := &types.Course{ID: uuid.New(), Title: "Go Basics"}
	if err := env.courseRepo.Create(ctx, nil, row); err != nil {
		t.Fatalf("seed global course: %v", err)
	}
	course, err := env.courses.Get(ctx, admin, row.ID)
	if err != nil {
		t.Fatalf("Get seeded course: %v", err)
	}
	return admin, course
}

func TestProgressRejectsBadScores(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, course := seedGlobalCourse(t, env)
	student := env.seedUser(t, "student1", types.RoleStudent)

	_, err := env.progress.Update(ctx, student, course.ID, UpdateProgressRequest{ObtainedScore: 5, TotalScore: 0})
	assertAPIError(t, err, http.StatusBadRequest, "invalid_total")

	_, err = env.progress.Update(ctx, student, course.ID, UpdateProgressRequest{ObtainedScore: -1, TotalScore: 10})
	assertAPIError(t, err, http.StatusBadRequest, "invalid_obtained")
}

func TestProgressStudentOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, course := seedGlobalCourse(t, env)

	_, err := env.progress.Update(ctx, admin, course.ID, UpdateProgressRequest{ObtainedScore: 5, TotalScore: 10})
	assertAPIError(t, err, http.StatusForbidden, "forbidden")

	_, err = env.progress.Update(ctx, nil, course.ID, UpdateProgressRequest{ObtainedScore: 5, TotalScore: 10})
	assertAPIError(t, err, http.StatusForbidden, "not_authenticated")
}

func TestProgressClampsAndCompletes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, course := seedGlobalCourse(t, env)
	student := env.seedUser(t, "student1", types.RoleStudent)

	halfway, err := env.progress.Update(ctx, student, course.ID, UpdateProgressRequest{ObtainedScore: 5, TotalScore: 10})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if halfway.IsCompleted {
		t.Fatalf("halfway progress marked complete")
	}
	if halfway.Percentage != 50 {
		t.Fatalf("percentage: want=50 got=%v", halfway.Percentage)
	}

	// Obtained beyond total clamps to total and completes the course.
	done, err := env.progress.Update(ctx, student, course.ID, UpdateProgressRequest{ObtainedScore: 12, TotalScore: 10})
	if err != nil {
		t.Fatalf("Update overshoot: %v", err)
	}
	if done.ObtainedScore != 10 {
		t.Fatalf("obtained clamp: want=10 got=%v", done.ObtainedScore)
	}
	if !done.IsCompleted {
		t.Fatalf("full score must mark completion")
	}

	// Updates overwrite the single row, never add a second one.
	var rows int64
	if err := env.db.Model(&types.CourseProgress{}).Where("student_id = ?", student.UserID).Count(&rows).Error; err != nil {
		t.Fatalf("count progress rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("progress rows: want=1 got=%d", rows)
	}
	if done.ID != halfway.ID {
		t.Fatalf("upsert minted a new row id")
	}
}

func TestProgressGetAndListMine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, course := seedGlobalCourse(t, env)
	student := env.seedUser(t, "student1", types.RoleStudent)

	_, err := env.progress.Get(ctx, student, course.ID)
	assertAPIError(t, err, http.StatusNotFound, "progress_not_found")

	if _, err := env.progress.Update(ctx, student, course.ID, UpdateProgressRequest{ObtainedScore: 3, TotalScore: 10}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := env.progress.Get(ctx, student, course.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ObtainedScore != 3 || got.TotalScore != 10 {
		t.Fatalf("scores: got obtained=%v total=%v", got.ObtainedScore, got.TotalScore)
	}

	mine, err := env.progress.ListMine(ctx, student)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 1 || mine[0].CourseID != course.ID {
		t.Fatalf("ListMine: want one row for course, got %d", len(mine))
	}
}

func TestProgressInvisibleCourseLooksAbsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "teacher1", types.RoleTeacher)
	class, err := env.classes.Create(ctx, teacher, CreateClassRequest{Name: "Algebra"})
	if err != nil {
		t.Fatalf("Create class: %v", err)
	}
	course, err := env.courses.Create(ctx, teacher, CreateCourseRequest{
		Title:          "Hidden",
		TeacherClassID: uuidptr(class.ID),
	})
	if err != nil {
		t.Fatalf("Create course: %v", err)
	}

	outsider := env.seedUser(t, "student1", types.RoleStudent)
	_, err = env.progress.Update(ctx, outsider, course.ID, UpdateProgressRequest{ObtainedScore: 1, TotalScore: 10})
	assertAPIError(t, err, http.StatusNotFound, "course_not_found")
}
