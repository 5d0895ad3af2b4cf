package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	redisclient "github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/clients/redis"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/db"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/handlers"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/middleware"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/observability"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/envutil"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/repos"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/server"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/services"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: envutil.String("SERVICE_NAME", "coursehub"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	})
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Failed to initialize postgres", "error", err)
		return
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration incomplete", "error", err)
	}
	gdb := pg.DB()

	// Repos
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

	// Optional redis-backed verification cache (nil means disabled)
	certCache := redisclient.NewCertCacheFromEnv(log)
	if certCache != nil {
		defer certCache.Close()
	}

	// Services
	accessService := services.NewAccessService(courseRepo, moduleRepo, lessonRepo, topicRepo, enrollRepo, classRepo, log)
	authService := services.NewAuthService(gdb, userRepo, profileRepo, tokenRepo, log)
	userService := services.NewUserService(gdb, userRepo, profileRepo, tokenRepo, log)
	classService := services.NewClassService(gdb, classRepo, enrollRepo, accessService, log)
	courseService := services.NewCourseService(gdb, courseRepo, classRepo, moduleRepo, lessonRepo, topicRepo, takeawayRepo, exerciseRepo, resourceRepo, progressRepo, certRepo, accessService, log)
	moduleService := services.NewModuleService(gdb, courseRepo, moduleRepo, lessonRepo, topicRepo, takeawayRepo, exerciseRepo, resourceRepo, accessService, log)
	lessonService := services.NewLessonService(gdb, lessonRepo, topicRepo, takeawayRepo, exerciseRepo, resourceRepo, accessService, log)
	topicService := services.NewTopicService(gdb, lessonRepo, topicRepo, takeawayRepo, exerciseRepo, resourceRepo, accessService, log)
	contentService := services.NewContentService(gdb, takeawayRepo, exerciseRepo, resourceRepo, accessService, log)
	progressService := services.NewProgressService(gdb, courseRepo, progressRepo, certRepo, accessService, certCache, log)
	certService := services.NewCertificateService(gdb, courseRepo, progressRepo, certRepo, enrollRepo, certCache, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(log, authService)
	userHandler := handlers.NewUserHandler(log, userService)
	classHandler := handlers.NewClassHandler(log, classService)
	courseHandler := handlers.NewCourseHandler(log, courseService, progressService, certService)
	moduleHandler := handlers.NewModuleHandler(log, moduleService)
	lessonHandler := handlers.NewLessonHandler(log, lessonService)
	topicHandler := handlers.NewTopicHandler(log, topicService)
	contentHandler := handlers.NewContentHandler(log, contentService)

	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware: authMiddleware,
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		ClassHandler:   classHandler,
		CourseHandler:  courseHandler,
		ModuleHandler:  moduleHandler,
		LessonHandler:  lessonHandler,
		TopicHandler:   topicHandler,
		ContentHandler: contentHandler,
	})

	port := envutil.String("PORT", "8080")
	log.Info("Starting HTTP server...", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("HTTP server exited", "error", err)
	}
}
