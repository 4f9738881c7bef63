package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"afri_portal_backend/internal/config"
	"afri_portal_backend/internal/controller"
	"afri_portal_backend/internal/repository"
	"afri_portal_backend/internal/service"
	"afri_portal_backend/pkg/database"
	"afri_portal_backend/pkg/logger"
	"afri_portal_backend/pkg/monitoring"
	"afri_portal_backend/pkg/security"
	"afri_portal_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	progress *repository.ProgressRepository
	snapshot *repository.SnapshotRepository
}

type services struct {
	sheets      *service.SheetsService
	progress    *service.ProgressService
	publisher   *service.PublisherService
	state       *service.StateService
	ai          *service.AIService
	transcripts *service.TranscriptService
	dashboard   *service.DashboardService
}

type controllers struct {
	auth       *controller.AuthController
	curriculum *controller.CurriculumController
	progress   *controller.ProgressController
	students   *controller.StudentsController
	dashboard  *controller.DashboardController
	session    *controller.SessionController
	tutor      *controller.TutorController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		progress: repository.NewProgressRepository(db),
		snapshot: repository.NewSnapshotRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.sheets = service.NewSheetsService(cfg.Sheets)
	s.progress = service.NewProgressService(repos.progress)
	s.publisher = service.NewPublisherService(cfg.Script)
	s.state = service.NewStateService(s.sheets, s.progress, s.publisher, repos.snapshot, cfg.Sync.PollInterval)
	s.ai = service.NewAIService(cfg.AI)
	s.transcripts = service.NewTranscriptService(cfg.Transcripts, rdb)
	s.dashboard = service.NewDashboardService(s.state, s.progress)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, cfg *config.Config) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.state, cfg.JWT),
		curriculum: controller.NewCurriculumController(s.state, s.progress, cfg.Resources),
		progress:   controller.NewProgressController(s.state),
		students:   controller.NewStudentsController(s.state),
		dashboard:  controller.NewDashboardController(s.dashboard),
		session:    controller.NewSessionController(s.transcripts, s.ai),
		tutor:      controller.NewTutorController(s.ai),
		health:     controller.NewHealthController(db, s.state),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// ApplyConfig picks up a reloaded config file. Only credentials that services
// read per-request are swapped; server topology changes need a restart.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.services.ai.SetConfig(cfg.AI)
	logger.Log.Info("Config reloaded")
}

func (a *App) startBackgroundTasks(s *services) {
	// First roster load is blocking so login works immediately; the store
	// being down degrades to the last snapshot.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.state.Bootstrap(ctx)

	s.state.Start()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, cfg)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("afri-portal", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop the roster poller before the listener so no refresh races the
	// connection teardown.
	if a.services != nil && a.services.state != nil {
		a.services.state.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
