package app

import (
	"caregiver_support_backend/internal/config"
	"caregiver_support_backend/internal/controller"
	"caregiver_support_backend/internal/repository"
	"caregiver_support_backend/internal/service"
	"caregiver_support_backend/pkg/database"
	"caregiver_support_backend/pkg/logger"
	"caregiver_support_backend/pkg/monitoring"
	"caregiver_support_backend/pkg/security"
	"caregiver_support_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	structure   *repository.StructureRepository
	translation *repository.TranslationRepository
	program     *repository.ProgramRepository
	waitConfig  *repository.WaitConfigRepository
	media       *repository.MediaRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	composer   *service.ComposerService
	branch     *service.BranchService
	unlock     *service.UnlockService
	progress   *service.ProgressService
	assessment *service.AssessmentService
	reminder   *service.ReminderService
	program    *service.ProgramService
	content    *service.ContentService
	media      *service.MediaService
}

type controllers struct {
	auth    *controller.AuthController
	user    *controller.UserController
	program *controller.ProgramController
	content *controller.ContentController
	media   *controller.MediaController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，由 configwatcher 回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		structure:   repository.NewStructureRepository(db),
		translation: repository.NewTranslationRepository(db),
		program:     repository.NewProgramRepository(db),
		waitConfig:  repository.NewWaitConfigRepository(db),
		media:       repository.NewMediaRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.composer = service.NewComposerService(
		repos.structure,
		repos.translation,
		rdb,
		cfg.Program.FallbackLanguage,
		time.Duration(cfg.Program.CacheTTLMinutes)*time.Minute,
	)
	s.branch = service.NewBranchService()
	s.unlock = service.NewUnlockService(repos.waitConfig)
	s.progress = service.NewProgressService(repos.program, s.composer, s.branch, s.unlock)
	s.assessment = service.NewAssessmentService(repos.program, s.composer, s.progress)
	s.reminder = service.NewReminderService(repos.program, s.composer)
	s.program = service.NewProgramService(repos.program, repos.structure, s.composer, s.branch, s.unlock)
	s.content = service.NewContentService(repos.structure, repos.translation, repos.waitConfig, s.composer)
	s.media = service.NewMediaService(cfg, repos.media)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		user:    controller.NewUserController(s.user),
		program: controller.NewProgramController(s.program, s.progress, s.assessment, s.reminder, s.user),
		content: controller.NewContentController(s.content, s.program),
		media:   controller.NewMediaController(s.media),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存不可用时仍可直接读库合成
		logger.Log.Warn("Redis unavailable, composed day cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("caregiver-support-program", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

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

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
