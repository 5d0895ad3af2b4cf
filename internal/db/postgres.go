package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/envutil"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := envutil.String("POSTGRES_HOST", "localhost")
	port := envutil.String("POSTGRES_PORT", "5432")
	user := envutil.String("POSTGRES_USER", "postgres")
	password := envutil.String("POSTGRES_PASSWORD", "")
	name := envutil.String("POSTGRES_NAME", "coursehub")
	sslmode := envutil.String("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)

	serviceLog.Info("Connecting to Postgres...", "host", host, "db", name)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// Duplicate-key races (class codes, certificates, enrollments) are
		// detected via gorm.ErrDuplicatedKey, so translation must stay on.
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrate(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	s.log.Info("Configuring cascade deletes...")
	for _, stmt := range cascadeFKs {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add cascade fk: %w", err)
		}
	}
	return nil
}

// AutoMigrate creates the schema. Shared with the sqlite-backed tests,
// which skip the postgres-only cascade statements and rely on explicit
// cascade deletes in the services.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.User{},
		&types.RoleProfile{},
		&types.UserToken{},
		&types.TeacherClass{},
		&types.ClassEnrollment{},
		&types.Course{},
		&types.CourseModule{},
		&types.Lesson{},
		&types.Topic{},
		&types.KeyTakeaway{},
		&types.Exercise{},
		&types.Resource{},
		&types.CourseProgress{},
		&types.Certificate{},
	)
}

var cascadeFKs = []string{
	`ALTER TABLE "role_profiles" DROP CONSTRAINT IF EXISTS "fk_role_profiles_user_id";
	 ALTER TABLE "role_profiles" ADD CONSTRAINT "fk_role_profiles_user_id"
	 FOREIGN KEY ("user_id") REFERENCES "users"("id") ON DELETE CASCADE`,
	`ALTER TABLE "user_tokens" DROP CONSTRAINT IF EXISTS "fk_user_tokens_user_id";
	 ALTER TABLE "user_tokens" ADD CONSTRAINT "fk_user_tokens_user_id"
	 FOREIGN KEY ("user_id") REFERENCES "users"("id") ON DELETE CASCADE`,
	`ALTER TABLE "teacher_classes" DROP CONSTRAINT IF EXISTS "fk_teacher_classes_teacher_id";
	 ALTER TABLE "teacher_classes" ADD CONSTRAINT "fk_teacher_classes_teacher_id"
	 FOREIGN KEY ("teacher_id") REFERENCES "users"("id") ON DELETE CASCADE`,
	`ALTER TABLE "class_enrollments" DROP CONSTRAINT IF EXISTS "fk_class_enrollments_class_id";
	 ALTER TABLE "class_enrollments" ADD CONSTRAINT "fk_class_enrollments_class_id"
	 FOREIGN KEY ("teacher_class_id") REFERENCES "teacher_classes"("id") ON DELETE CASCADE`,
	`ALTER TABLE "courses" DROP CONSTRAINT IF EXISTS "fk_courses_teacher_class_id";
	 ALTER TABLE "courses" ADD CONSTRAINT "fk_courses_teacher_class_id"
	 FOREIGN KEY ("teacher_class_id") REFERENCES "teacher_classes"("id") ON DELETE CASCADE`,
	`ALTER TABLE "course_modules" DROP CONSTRAINT IF EXISTS "fk_course_modules_course_id";
	 ALTER TABLE "course_modules" ADD CONSTRAINT "fk_course_modules_course_id"
	 FOREIGN KEY ("course_id") REFERENCES "courses"("id") ON DELETE CASCADE`,
	`ALTER TABLE "lessons" DROP CONSTRAINT IF EXISTS "fk_lessons_module_id";
	 ALTER TABLE "lessons" ADD CONSTRAINT "fk_lessons_module_id"
	 FOREIGN KEY ("module_id") REFERENCES "course_modules"("id") ON DELETE CASCADE`,
	`ALTER TABLE "topics" DROP CONSTRAINT IF EXISTS "fk_topics_lesson_id";
	 ALTER TABLE "topics" ADD CONSTRAINT "fk_topics_lesson_id"
	 FOREIGN KEY ("lesson_id") REFERENCES "lessons"("id") ON DELETE CASCADE`,
	`ALTER TABLE "topics" DROP CONSTRAINT IF EXISTS "fk_topics_parent_id";
	 ALTER TABLE "topics" ADD CONSTRAINT "fk_topics_parent_id"
	 FOREIGN KEY ("parent_id") REFERENCES "topics"("id") ON DELETE CASCADE`,
	`ALTER TABLE "key_takeaways" DROP CONSTRAINT IF EXISTS "fk_key_takeaways_lesson_id";
	 ALTER TABLE "key_takeaways" ADD CONSTRAINT "fk_key_takeaways_lesson_id"
	 FOREIGN KEY ("lesson_id") REFERENCES "lessons"("id") ON DELETE CASCADE`,
	`ALTER TABLE "key_takeaways" DROP CONSTRAINT IF EXISTS "fk_key_takeaways_topic_id";
	 ALTER TABLE "key_takeaways" ADD CONSTRAINT "fk_key_takeaways_topic_id"
	 FOREIGN KEY ("topic_id") REFERENCES "topics"("id") ON DELETE CASCADE`,
	`ALTER TABLE "exercises" DROP CONSTRAINT IF EXISTS "fk_exercises_lesson_id";
	 ALTER TABLE "exercises" ADD CONSTRAINT "fk_exercises_lesson_id"
	 FOREIGN KEY ("lesson_id") REFERENCES "lessons"("id") ON DELETE CASCADE`,
	`ALTER TABLE "exercises" DROP CONSTRAINT IF EXISTS "fk_exercises_topic_id";
	 ALTER TABLE "exercises" ADD CONSTRAINT "fk_exercises_topic_id"
	 FOREIGN KEY ("topic_id") REFERENCES "topics"("id") ON DELETE CASCADE`,
	`ALTER TABLE "resources" DROP CONSTRAINT IF EXISTS "fk_resources_lesson_id";
	 ALTER TABLE "resources" ADD CONSTRAINT "fk_resources_lesson_id"
	 FOREIGN KEY ("lesson_id") REFERENCES "lessons"("id") ON DELETE CASCADE`,
	`ALTER TABLE "resources" DROP CONSTRAINT IF EXISTS "fk_resources_topic_id";
	 ALTER TABLE "resources" ADD CONSTRAINT "fk_resources_topic_id"
	 FOREIGN KEY ("topic_id") REFERENCES "topics"("id") ON DELETE CASCADE`,
	`ALTER TABLE "course_progress" DROP CONSTRAINT IF EXISTS "fk_course_progress_course_id";
	 ALTER TABLE "course_progress" ADD CONSTRAINT "fk_course_progress_course_id"
	 FOREIGN KEY ("course_id") REFERENCES "courses"("id") ON DELETE CASCADE`,
	`ALTER TABLE "certificates" DROP CONSTRAINT IF EXISTS "fk_certificates_course_id";
	 ALTER TABLE "certificates" ADD CONSTRAINT "fk_certificates_course_id"
	 FOREIGN KEY ("course_id") REFERENCES "courses"("id") ON DELETE CASCADE`,
}
