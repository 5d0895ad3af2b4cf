package services

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

func TestGenerateClassCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateClassCode()
		if err != nil {
			t.Fatalf("GenerateClassCode: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("class code %q does not match %s", code, pattern)
		}
	}
}

func TestCreateClassForbiddenForStudents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "student1", types.RoleStudent)
	_, err := env.classes.Create(ctx, student, CreateClassRequest{Name: "Algebra"})
	assertAPIError(t, err, http.StatusForbidden, "forbidden")

	_, err = env.classes.Create(ctx, nil, CreateClassRequest{Name: "Algebra"})
	assertAPIError(t, err, http.StatusForbidden, "not_authenticated")
}

func TestCreateClassMintsCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "teacher1", types.RoleTeacher)
	class, err := env.classes.Create(ctx, teacher, CreateClassRequest{
		Name:        "Algebra",
		Description: "Linear equations and friends",
		Duration:    "8 weeks",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if class.TeacherID != teacher.UserID {
		t.Fatalf("class owner: want=%s got=%s", teacher.UserID, class.TeacherID)
	}
	if len(class.ClassCode) != 6 {
		t.Fatalf("class code length: want=6 got=%q", class.ClassCode)
	}
}

func TestEnrollAndDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "teacher1", types.RoleTeacher)
	student := env.seedUser(t, "student1", types.RoleStudent)
	class, err := env.classes.Create(ctx, teacher, CreateClassRequest{Name: "Algebra"})
	if err != nil {
		t.Fatalf("Create class: %v", err)
	}

	// Codes are case-insensitive on the way in.
	enrollment, err := env.classes.Enroll(ctx, student, strings.ToLower(class.ClassCode))
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.TeacherClassID != class.ID {
		t.Fatalf("enrollment class: want=%s got=%s", class.ID, enrollment.TeacherClassID)
	}

	_, err = env.classes.Enroll(ctx, student, class.ClassCode)
	assertAPIError(t, err, http.StatusConflict, "already_enrolled")
}

func TestEnrollRespectsCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "teacher1", types.RoleTeacher)
	class, err := env.classes.Create(ctx, teacher, CreateClassRequest{
		Name:     "Tiny Seminar",
		Capacity: intptr(1),
	})
	if err != nil {
		t.Fatalf("Create class: %v", err)
	}

	first := env.seedUser(t, "student1", types.RoleStudent)
	if _, err := env.classes.Enroll(ctx, first, class.ClassCode); err != nil {
		t.Fatalf("first Enroll: %v", err)
	}

	second := env.seedUser(t, "student2", types.RoleStudent)
	_, err = env.classes.Enroll(ctx, second, class.ClassCode)
	assertAPIError(t, err, http.StatusConflict, "class_full")
}

func TestEnrollRejectsNonStudents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "teacher1", types.RoleTeacher)
	class, err := env.classes.Create(ctx, teacher, CreateClassRequest{Name: "Algebra"})
	if err != nil {
		t.Fatalf("Create class: %v", err)
	}
	_, err = env.classes.Enroll(ctx, teacher, class.ClassCode)
	assertAPIError(t, err, http.StatusForbidden, "forbidden")
}

func TestClassListIsRoleScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacherA := env.seedUser(t, "teacher_a", types.RoleTeacher)
	teacherB := env.seedUser(t, "teacher_b", types.RoleTeacher)
	classA, err := env.classes.Create(ctx, teacherA, CreateClassRequest{Name: "Algebra"})
	if err != nil {
		t.Fatalf("Create class A: %v", err)
	}
	if _, err := env.classes.Create(ctx, teacherB, CreateClassRequest{Name: "Biology"}); err != nil {
		t.Fatalf("Create class B: %v", err)
	}

	own, err := env.classes.List(ctx, teacherA)
	if err != nil {
		t.Fatalf("List as teacher: %v", err)
	}
	if len(own) != 1 || own[0].ID != classA.ID {
		t.Fatalf("teacher list: want only own class, got %d entries", len(own))
	}

	student := env.seedUser(t, "student1", types.RoleStudent)
	if _, err := env.classes.Enroll(ctx, student, classA.ClassCode); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	enrolled, err := env.classes.List(ctx, student)
	if err != nil {
		t.Fatalf("List as student: %v", err)
	}
	if len(enrolled) != 1 || enrolled[0].ID != classA.ID {
		t.Fatalf("student list: want enrolled class only, got %d entries", len(enrolled))
	}
	if enrolled[0].EnrolledCount != 1 {
		t.Fatalf("enrolled count: want=1 got=%d", enrolled[0].EnrolledCount)
	}

	admin := env.seedUser(t, "admin1", types.RoleAdmin)
	all, err := env.classes.List(ctx, admin)
	if err != nil {
		t.Fatalf("List as admin: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin list: want=2 got=%d", len(all))
	}
}

func TestClassUpdateOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.seedUser(t, "teacher_a", types.RoleTeacher)
	rival := env.seedUser(t, "teacher_b", types.RoleTeacher)
	class, err := env.classes.Create(ctx, owner, CreateClassRequest{Name: "Algebra"})
	if err != nil {
		t.Fatalf("Create class: %v", err)
	}

	_, err = env.classes.Update(ctx, rival, class.ID, UpdateClassRequest{Name: strptr("Hijacked")})
	assertAPIError(t, err, http.StatusForbidden, "forbidden")

	updated, err := env.classes.Update(ctx, owner, class.ID, UpdateClassRequest{Name: strptr("Algebra II")})
	if err != nil {
		t.Fatalf("Update as owner: %v", err)
	}
	if updated.Name != "Algebra II" {
		t.Fatalf("class name: want=%q got=%q", "Algebra II", updated.Name)
	}
}
