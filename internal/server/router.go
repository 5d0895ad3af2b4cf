package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/handlers"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/middleware"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/envutil"
)

type RouterConfig struct {
	AuthMiddleware *middleware.AuthMiddleware
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	ClassHandler   *handlers.ClassHandler
	CourseHandler  *handlers.CourseHandler
	ModuleHandler  *handlers.ModuleHandler
	LessonHandler  *handlers.LessonHandler
	TopicHandler   *handlers.TopicHandler
	ContentHandler *handlers.ContentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(envutil.String("SERVICE_NAME", "coursehub")))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")

	// ===============
	// || Public    ||
	// ===============
	api.POST("/register", cfg.AuthHandler.Register)
	api.POST("/login", cfg.AuthHandler.Login)
	api.POST("/token/refresh", cfg.AuthHandler.Refresh)
	api.GET("/certificates/verify/:number", cfg.CourseHandler.VerifyCertificate)

	// Course reads are public for the global catalogue; a token widens
	// the view to class-bound content.
	public := api.Group("/")
	public.Use(cfg.AuthMiddleware.OptionalAuth())
	public.GET("/auth/session", cfg.AuthHandler.Session)
	public.GET("/courses", cfg.CourseHandler.List)
	public.GET("/courses/:id", cfg.CourseHandler.Get)
	public.GET("/modules/:id", cfg.ModuleHandler.Get)
	public.GET("/lessons/:id", cfg.LessonHandler.Get)
	public.GET("/topics/:id", cfg.TopicHandler.Get)

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/logout", cfg.AuthHandler.Logout)

	// Classes & enrollment
	protected.POST("/classes", cfg.ClassHandler.Create)
	protected.GET("/classes", cfg.ClassHandler.List)
	protected.GET("/classes/:id", cfg.ClassHandler.Get)
	protected.PATCH("/classes/:id", cfg.ClassHandler.Update)
	protected.POST("/classes/bulk-delete", cfg.ClassHandler.BulkDelete)
	protected.POST("/enrollments", cfg.ClassHandler.Enroll)
	protected.GET("/enrollments", cfg.ClassHandler.ListEnrollments)

	// Content tree
	protected.POST("/courses", cfg.CourseHandler.Create)
	protected.PATCH("/courses/:id", cfg.CourseHandler.Update)
	protected.POST("/courses/bulk-delete", cfg.CourseHandler.BulkDelete)
	protected.POST("/modules", cfg.ModuleHandler.Create)
	protected.PATCH("/modules/:id", cfg.ModuleHandler.Update)
	protected.POST("/modules/bulk-delete", cfg.ModuleHandler.BulkDelete)
	protected.POST("/lessons", cfg.LessonHandler.Create)
	protected.PATCH("/lessons/:id", cfg.LessonHandler.Update)
	protected.POST("/lessons/bulk-delete", cfg.LessonHandler.BulkDelete)
	protected.POST("/topics", cfg.TopicHandler.Create)
	protected.PATCH("/topics/:id", cfg.TopicHandler.Update)
	protected.POST("/topics/bulk-delete", cfg.TopicHandler.BulkDelete)

	// Leaf content
	protected.POST("/key-takeaways", cfg.ContentHandler.CreateTakeaway)
	protected.PATCH("/key-takeaways/:id", cfg.ContentHandler.UpdateTakeaway)
	protected.POST("/key-takeaways/bulk-delete", cfg.ContentHandler.BulkDeleteTakeaways)
	protected.POST("/exercises", cfg.ContentHandler.CreateExercise)
	protected.PATCH("/exercises/:id", cfg.ContentHandler.UpdateExercise)
	protected.POST("/exercises/bulk-delete", cfg.ContentHandler.BulkDeleteExercises)
	protected.POST("/resources", cfg.ContentHandler.CreateResource)
	protected.PATCH("/resources/:id", cfg.ContentHandler.UpdateResource)
	protected.POST("/resources/bulk-delete", cfg.ContentHandler.BulkDeleteResources)

	// Progress & certificates
	protected.POST("/courses/:id/progress", cfg.CourseHandler.UpdateProgress)
	protected.GET("/courses/:id/progress", cfg.CourseHandler.GetProgress)
	protected.GET("/progress", cfg.CourseHandler.ListMyProgress)
	protected.POST("/courses/:id/generate-certificate", cfg.CourseHandler.GenerateCertificate)
	protected.GET("/courses/:id/certificate-info", cfg.CourseHandler.CertificateInfo)
	protected.GET("/courses/:id/certificate/download", cfg.CourseHandler.DownloadCertificate)
	protected.GET("/certificates", cfg.CourseHandler.ListMyCertificates)

	// ===============
	// || Staff     ||
	// ===============
	staff := api.Group("/users")
	staff.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireStaff())
	staff.GET("", cfg.UserHandler.List)
	staff.POST("", cfg.UserHandler.Create)
	staff.GET("/:id", cfg.UserHandler.Get)
	staff.PATCH("/:id", cfg.UserHandler.Update)
	staff.DELETE("/:id", cfg.UserHandler.Delete)
	staff.POST("/bulk-delete", cfg.UserHandler.BulkDelete)

	return router
}
