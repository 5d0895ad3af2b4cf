package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/db"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/repos"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

// testEnv wires the full service stack against an in-memory sqlite
// database. Each test gets its own database, named after the test so
// parallel packages never collide.
type testEnv struct {
	db *gorm.DB

	auth     AuthService
	users    UserService
	classes  ClassService
	courses  CourseService
	modules  ModuleService
	lessons  LessonService
	topics   TopicService
	content  ContentService
	progress ProgressService
	certs    CertificateService

	userRepo     repos.UserRepo
	profileRepo  repos.RoleProfileRepo
	classRepo    repos.TeacherClassRepo
	enrollRepo   repos.EnrollmentRepo
	courseRepo   repos.CourseRepo
	topicRepo    repos.TopicRepo
	progressRepo repos.CourseProgressRepo
	certRepo     repos.CertificateRepo

	adminSeq int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userRepo := repos.NewUserRepo(gdb, log)
	profileRepo := repos.NewRoleProfileRepo(gdb, log)
	tokenRepo := repos.NewUserTokenRepo(gdb, log)
	classRepo := repos.NewTeacherClassRepo(gdb, log)
	enrollRepo := repos.NewEnrollmentRepo(gdb, log)
	courseRepo := repos.NewCourseRepo(gdb, log)
	moduleRepo := repos.NewCourseModuleRepo(gdb, log)
	lessonRepo := repos.NewLessonRepo(gdb, log)
	topicRepo := repos.NewTopicRepo(gdb, log)
	takeawayRepo := repos.NewKeyTakeawayRepo(gdb, log)
	exerciseRepo := repos.NewExerciseRepo(gdb, log)
	resourceRepo := repos.NewResourceRepo(gdb, log)
	progressRepo := repos.NewCourseProgressRepo(gdb, log)
	certRepo := repos.NewCertificateRepo(gdb, log)

	access := NewAccessService(courseRepo, moduleRepo, lessonRepo, topicRepo, enrollRepo, classRepo, log)

	return &testEnv{
		db:       gdb,
		auth:     NewAuthService(gdb, userRepo, profileRepo, tokenRepo, log),
		users:    NewUserService(gdb, userRepo, profileRepo, tokenRepo, log),
		classes:  NewClassService(gdb, classRepo, enrollRepo, access, log),
		courses:  NewCourseService(gdb, courseRepo, classRepo, moduleRepo, lessonRepo, topicRepo, takeawayRepo, exerciseRepo, resourceRepo, progressRepo, certRepo, access, log),
		modules:  NewModuleService(gdb, courseRepo, moduleRepo, lessonRepo, topicRepo, takeawayRepo, exerciseRepo, resourceRepo, access, log),
		lessons:  NewLessonService(gdb, lessonRepo, topicRepo, takeawayRepo, exerciseRepo, resourceRepo, access, log),
		topics:   NewTopicService(gdb, lessonRepo, topicRepo, takeawayRepo, exerciseRepo, resourceRepo, access, log),
		content:  NewContentService(gdb, takeawayRepo, exerciseRepo, resourceRepo, access, log),
		progress: NewProgressService(gdb, courseRepo, progressRepo, certRepo, access, nil, log),
		certs:    NewCertificateService(gdb, courseRepo, progressRepo, certRepo, enrollRepo, nil, log),

		userRepo:     userRepo,
		profileRepo:  profileRepo,
		classRepo:    classRepo,
		enrollRepo:   enrollRepo,
		courseRepo:   courseRepo,
		topicRepo:    topicRepo,
		progressRepo: progressRepo,
		certRepo:     certRepo,
	}
}

// seedUser inserts a user plus role profile directly and returns the
// identity the middleware would have resolved for them. Seeded admin
// codes count up from 987A; tests that mint their own codes should pick
// from the top of the range.
func (e *testEnv) seedUser(t *testing.T, username string, role types.Role) *requestdata.Identity {
	t.Helper()

	user := &types.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
		LastName:  "Test",
		IsStaff:   role == types.RoleAdmin,
		IsActive:  true,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	profile := &types.RoleProfile{ID: uuid.New(), UserID: user.ID, Role: role}
	if role == types.RoleAdmin {
		code := "987" + string(rune('A'+e.adminSeq%26))
		e.adminSeq++
		profile.AdminSecretCode = &code
	}
	if err := e.db.Create(profile).Error; err != nil {
		t.Fatalf("seed profile %s: %v", username, err)
	}

	return &requestdata.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     role,
		IsStaff:  user.IsStaff,
	}
}

func assertAPIError(t *testing.T, err error, wantStatus int, wantCode string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status=%d code=%q, got nil", wantStatus, wantCode)
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %T: %v", err, err)
	}
	if got := apierr.StatusOf(err); got != wantStatus {
		t.Fatalf("error status: want=%d got=%d (%v)", wantStatus, got, err)
	}
	if got := apierr.CodeOf(err); got != wantCode {
		t.Fatalf("error code: want=%q got=%q (%v)", wantCode, got, err)
	}
}

func strptr(s string) *string { return &s }

func intptr(i int) *int { return &i }

func uuidptr(id uuid.UUID) *uuid.UUID { return &id }
