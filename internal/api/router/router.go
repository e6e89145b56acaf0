package router

import (
	"tutor-registry/internal/api/handlers"
	"tutor-registry/internal/api/middleware"
	"tutor-registry/internal/config"
	"tutor-registry/internal/infrastructure/cache"
	"tutor-registry/internal/infrastructure/repository"
	interfaces "tutor-registry/internal/interfaces/infrastructure"
	"tutor-registry/internal/service"
	"tutor-registry/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter wires the gateway, the seat cache and the workflow service
// into the HTTP surface.
func NewRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(cors.Default())
	r.Use(gin.Recovery())

	cfg := config.Get()

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	availRepo := repository.NewAvailabilityRepository(db)
	slotRepo := repository.NewSubjectAvailabilityRepository(db)
	enrolRepo := repository.NewEnrolmentRepository(db)

	var seatCache interfaces.SlotSeatCache
	if cfg.Cache.Type == "memory" {
		seatCache = cache.NewMemorySeatCache()
		logger.Info("Using in-memory slot seat cache")
	} else {
		seatCache = cache.NewRedisSeatCacheWithConfig(&cfg.Cache)
		logger.Info("Using Redis slot seat cache")
	}

	registryService := service.NewRegistryService(
		userRepo,
		subjectRepo,
		availRepo,
		slotRepo,
		enrolRepo,
		seatCache,
		cfg.Registry.SlotCapacity,
	)

	registryHandler := handlers.NewRegistryHandler(registryService)
	healthHandler := handlers.NewHealthHandler()

	r.GET("/health", healthHandler.HealthCheck)

	r.GET("/users", registryHandler.GetUsers)
	r.POST("/users", registryHandler.CreateUser)
	r.DELETE("/users/:id", registryHandler.DeleteUser)

	r.GET("/subjects", registryHandler.GetSubjects)
	r.POST("/subjects", registryHandler.CreateSubject)

	r.GET("/availabilities", registryHandler.GetAvailabilities)

	r.POST("/enrolment", registryHandler.Enrol)
	r.GET("/group", registryHandler.GetGroup)

	return r
}
