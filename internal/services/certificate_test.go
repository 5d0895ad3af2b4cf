package services

import (
	"bytes"
	"context"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

var certNumberPattern = regexp.MustCompile(`^CH-\d{8}-[A-Z0-9]{6}$`)

func TestGenerateCertificateNumberFormat(t *testing.T) {
	issued := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		number, err := GenerateCertificateNumber(issued)
		if err != nil {
			t.Fatalf("GenerateCertificateNumber: %v", err)
		}
		if !certNumberPattern.MatchString(number) {
			t.Fatalf("certificate number %q does not match %s", number, certNumberPattern)
		}
		if !strings.HasPrefix(number, "CH-20260314-") {
			t.Fatalf("certificate number %q has wrong date part", number)
		}
	}
}

func TestCertificateIssuesWithoutCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, course := seedGlobalCourse(t, env)
	student := env.seedUser(t, "student1", types.RoleStudent)

	// No progress row at all: issuance succeeds and backfills one at
	// zero.
	cert, err := env.certs.Generate(ctx, student, course.ID)
	if err != nil {
		t.Fatalf("Generate without progress: %v", err)
	}
	if !certNumberPattern.MatchString(cert.CertificateNumber) {
		t.Fatalf("certificate number %q malformed", cert.CertificateNumber)
	}
	progress, err := env.progressRepo.GetByStudentCourse(ctx, nil, student.UserID, course.ID)
	if err != nil {
		t.Fatalf("read progress: %v", err)
	}
	if progress == nil {
		t.Fatalf("issuance did not create the zero-score progress row")
	}
	if progress.ObtainedScore != 0 || progress.TotalScore != 0 || progress.IsCompleted {
		t.Fatalf("backfilled progress not zeroed: obtained=%v total=%v completed=%v",
			progress.ObtainedScore, progress.TotalScore, progress.IsCompleted)
	}

	// Partial progress issues too, and the scores stay untouched.
	other := env.seedUser(t, "student2", types.RoleStudent)
	if _, err := env.progress.Update(ctx, other, course.ID, UpdateProgressRequest{ObtainedScore: 4, TotalScore: 10}); err != nil {
		t.Fatalf("Update progress: %v", err)
	}
	if _, err := env.certs.Generate(ctx, other, course.ID); err != nil {
		t.Fatalf("Generate with partial progress: %v", err)
	}
	partial, err := env.progressRepo.GetByStudentCourse(ctx, nil, other.UserID, course.ID)
	if err != nil {
		t.Fatalf("read partial progress: %v", err)
	}
	if partial.ObtainedScore != 4 || partial.TotalScore != 10 {
		t.Fatalf("issuance rewrote existing scores: obtained=%v total=%v", partial.ObtainedScore, partial.TotalScore)
	}
}

func TestCertificateRequiresEnrollment(t *testing.T) {
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

	student := env.seedUser(t, "student1", types.RoleStudent)
	_, err = env.certs.Generate(ctx, student, course.ID)
	assertAPIError(t, err, http.StatusForbidden, "not_enrolled")

	if _, err := env.classes.Enroll(ctx, student, class.ClassCode); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	cert, err := env.certs.Generate(ctx, student, course.ID)
	if err != nil {
		t.Fatalf("Generate after enrollment: %v", err)
	}
	if !certNumberPattern.MatchString(cert.CertificateNumber) {
		t.Fatalf("certificate number %q malformed", cert.CertificateNumber)
	}
}

func TestCertificateGenerateIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, course := seedGlobalCourse(t, env)
	student := env.seedUser(t, "student1", types.RoleStudent)

	if _, err := env.progress.Update(ctx, student, course.ID, UpdateProgressRequest{ObtainedScore: 10, TotalScore: 10}); err != nil {
		t.Fatalf("Update progress: %v", err)
	}

	first, err := env.certs.Generate(ctx, student, course.ID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !certNumberPattern.MatchString(first.CertificateNumber) {
		t.Fatalf("certificate number %q malformed", first.CertificateNumber)
	}
	if first.CourseTitle != "Go Basics" {
		t.Fatalf("course title: want=%q got=%q", "Go Basics", first.CourseTitle)
	}

	second, err := env.certs.Generate(ctx, student, course.ID)
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if second.ID != first.ID || second.CertificateNumber != first.CertificateNumber {
		t.Fatalf("Generate is not idempotent: %s vs %s", first.CertificateNumber, second.CertificateNumber)
	}
}

func TestCertificateStudentsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, course := seedGlobalCourse(t, env)

	_, err := env.certs.Generate(ctx, admin, course.ID)
	assertAPIError(t, err, http.StatusForbidden, "forbidden")
}

func TestCertificateVerifyReportsLiveScores(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, course := seedGlobalCourse(t, env)
	student := env.seedUser(t, "student1", types.RoleStudent)

	if _, err := env.progress.Update(ctx, student, course.ID, UpdateProgressRequest{ObtainedScore: 10, TotalScore: 10}); err != nil {
		t.Fatalf("Update progress: %v", err)
	}
	cert, err := env.certs.Generate(ctx, student, course.ID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Lowercase lookup works; verification is public (no identity).
	verified, err := env.certs.Verify(ctx, strings.ToLower(cert.CertificateNumber))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !verified.Valid {
		t.Fatalf("certificate must verify as valid")
	}
	if verified.CertificateStatus != "Valid and Active" {
		t.Fatalf("status: want=%q got=%q", "Valid and Active", verified.CertificateStatus)
	}
	if verified.ObtainedScore != 10 || verified.Percentage != 100 {
		t.Fatalf("scores: obtained=%v percentage=%v", verified.ObtainedScore, verified.Percentage)
	}

	// Later progress updates show up in verification without reissuing.
	if _, err := env.progress.Update(ctx, student, course.ID, UpdateProgressRequest{ObtainedScore: 8, TotalScore: 16}); err != nil {
		t.Fatalf("Update progress again: %v", err)
	}
	verified, err = env.certs.Verify(ctx, cert.CertificateNumber)
	if err != nil {
		t.Fatalf("second Verify: %v", err)
	}
	if verified.TotalScore != 16 || verified.Percentage != 50 {
		t.Fatalf("live scores not reflected: total=%v percentage=%v", verified.TotalScore, verified.Percentage)
	}
	if verified.IsCompleted {
		t.Fatalf("verification must report the current completion state")
	}
}

func TestCertificateVerifyUnknownNumber(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.certs.Verify(context.Background(), "CH-20260101-ZZZZZZ")
	assertAPIError(t, err, http.StatusNotFound, "certificate_not_found")

	_, err = env.certs.Verify(context.Background(), "  ")
	assertAPIError(t, err, http.StatusBadRequest, "missing_number")
}

func TestCertificateDownloadRendersPNG(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, course := seedGlobalCourse(t, env)
	student := env.seedUser(t, "student1", types.RoleStudent)

	if _, err := env.progress.Update(ctx, student, course.ID, UpdateProgressRequest{ObtainedScore: 10, TotalScore: 10}); err != nil {
		t.Fatalf("Update progress: %v", err)
	}
	if _, err := env.certs.Generate(ctx, student, course.ID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	png, err := env.certs.Download(ctx, student, course.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	magic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if len(png) < len(magic) || !bytes.Equal(png[:len(magic)], magic) {
		t.Fatalf("download did not produce a PNG (%d bytes)", len(png))
	}
}

func TestCertificateListMine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, course := seedGlobalCourse(t, env)
	student := env.seedUser(t, "student1", types.RoleStudent)
	other := env.seedUser(t, "student2", types.RoleStudent)

	if _, err := env.progress.Update(ctx, student, course.ID, UpdateProgressRequest{ObtainedScore: 10, TotalScore: 10}); err != nil {
		t.Fatalf("Update progress: %v", err)
	}
	if _, err := env.certs.Generate(ctx, student, course.ID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	mine, err := env.certs.ListMine(ctx, student)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("certificate list: want=1 got=%d", len(mine))
	}

	none, err := env.certs.ListMine(ctx, other)
	if err != nil {
		t.Fatalf("ListMine other: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("other student sees someone else's certificate")
	}
}
