package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campuskit/college-admin-api/api/swagger"
	"github.com/campuskit/college-admin-api/internal/handler"
	"github.com/campuskit/college-admin-api/internal/middleware"
	"github.com/campuskit/college-admin-api/internal/repository"
	"github.com/campuskit/college-admin-api/internal/service"
	"github.com/campuskit/college-admin-api/pkg/cache"
	"github.com/campuskit/college-admin-api/pkg/config"
	"github.com/campuskit/college-admin-api/pkg/database"
	"github.com/campuskit/college-admin-api/pkg/jobs"
	"github.com/campuskit/college-admin-api/pkg/logger"
	corsmiddleware "github.com/campuskit/college-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuskit/college-admin-api/pkg/middleware/requestid"
)

// @title College Admin API
// @version 1.0.0
// @description Academic enrollment & progression engine for the college administration platform
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	students := repository.NewStudentRepository(db)
	departments := repository.NewDepartmentRepository(db)
	years := repository.NewAcademicYearRepository(db)
	courses := repository.NewCourseRepository(db)
	offerings := repository.NewOfferingRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled)
	calendar := service.NewCalendarService(years, logr)
	curriculum := service.NewCurriculumService(courses, logr)
	progression := service.NewProgressionService(students, offerings, enrollments, calendar, curriculum, metrics, logr)
	pool := jobs.NewPool(jobs.PoolConfig{Workers: cfg.Bulk.WorkerConcurrency, Logger: logr})
	bulk := service.NewBulkProgressionService(progression, pool, validate, logr)
	catalog := service.NewCatalogService(curriculum, offerings, years, departments, cacheSvc, logr)
	studentSvc := service.NewStudentService(students, logr)

	progressionHandler := handler.NewProgressionHandler(progression, bulk)
	catalogHandler := handler.NewCatalogHandler(catalog)
	yearHandler := handler.NewAcademicYearHandler(calendar)
	studentHandler := handler.NewStudentHandler(studentSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT))
	{
		api.GET("/students", studentHandler.List)
		api.GET("/students/:id", studentHandler.Get)
		api.POST("/students/:id/enrollments", progressionHandler.EnrollForSemester)
		api.POST("/students/:id/enrollments/first-year", progressionHandler.EnrollFirstYear)
		api.POST("/students/:id/promote", progressionHandler.Promote)
		api.POST("/progression/bulk", progressionHandler.BulkRun)
		api.GET("/colleges/:id/academic-years", yearHandler.List)
		api.GET("/colleges/:id/academic-years/active", yearHandler.ListActive)
		api.GET("/colleges/:id/departments/:deptId/catalog", catalogHandler.CoursesBySemester)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
