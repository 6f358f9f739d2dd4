package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"toast_backend/internal/config"
	"toast_backend/internal/controller"
	"toast_backend/internal/repository"
	"toast_backend/internal/service"
	"toast_backend/pkg/database"
	"toast_backend/pkg/logger"
	"toast_backend/pkg/monitoring"
	"toast_backend/pkg/security"
	"toast_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
	cron     *cron.Cron
}

type repositories struct {
	user         *repository.UserRepository
	note         *repository.NoteRepository
	toast        *repository.ToastRepository
	badge        *repository.BadgeRepository
	activity     *repository.ActivityRepository
	friendship   *repository.FriendshipRepository
	share        *repository.ShareRepository
	notification *repository.NotificationRepository
	stats        *repository.StatsRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	storage      *service.StorageService
	generation   *service.GenerationService
	speech       *service.SpeechService
	note         *service.NoteService
	toast        *service.ToastService
	badge        *service.BadgeService
	share        *service.ShareService
	friendship   *service.FriendshipService
	notification *service.NotificationService
	notifyHub    *service.NotifyHub
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	note         *controller.NoteController
	toast        *controller.ToastController
	badge        *controller.BadgeController
	share        *controller.ShareController
	friendship   *controller.FriendshipController
	notification *controller.NotificationController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		note:         repository.NewNoteRepository(db),
		toast:        repository.NewToastRepository(db),
		badge:        repository.NewBadgeRepository(db),
		activity:     repository.NewActivityRepository(db),
		friendship:   repository.NewFriendshipRepository(db),
		share:        repository.NewShareRepository(db),
		notification: repository.NewNotificationRepository(db),
		stats:        repository.NewStatsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.generation = service.NewGenerationService(cfg.AI)
	s.speech = service.NewSpeechService(cfg.Speech)

	s.notifyHub = service.NewNotifyHub(rdb)
	go s.notifyHub.Run()
	s.notification = service.NewNotificationService(repos.notification, s.notifyHub)

	s.badge = service.NewBadgeService(repos.badge, repos.badge, repos.badge, repos.stats, repos.user, s.notification)

	s.toast = service.NewToastService(
		repos.note,
		repos.toast,
		repos.user,
		repos.activity,
		s.generation,
		s.speech,
		s.storage,
		s.badge,
		s.notification,
		cfg.Toast.GenerationTimeout,
		cfg.AI.Model,
	)

	s.note = service.NewNoteService(repos.note, repos.user, repos.activity, s.badge, s.storage)
	s.share = service.NewShareService(repos.share, repos.toast, repos.friendship, repos.activity, s.badge, s.notification)
	s.friendship = service.NewFriendshipService(repos.friendship, repos.user)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, s.storage)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		note:         controller.NewNoteController(s.note),
		toast:        controller.NewToastController(s.toast, repos.toast),
		badge:        controller.NewBadgeController(s.badge, repos.badge),
		share:        controller.NewShareController(s.share),
		friendship:   controller.NewFriendshipController(s.friendship),
		notification: controller.NewNotificationController(s.notification, s.notifyHub),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
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

// startBackgroundTasks schedules the weekly toast run. Generation is
// idempotent per (user, week), so a restart mid-run or a second firing just
// skips the users already served.
func (a *App) startBackgroundTasks(s *services, repos *repositories, cfg *config.Config) {
	a.cron = cron.New()

	_, err := a.cron.AddFunc(cfg.Toast.CronSpec, func() {
		users, err := repos.user.ListActive()
		if err != nil {
			logger.Log.Error("weekly toast run: listing users failed", zap.Error(err))
			return
		}
		logger.Log.Info("weekly toast run started", zap.Int("users", len(users)))
		s.toast.GenerateForAllUsers(context.Background(), users)
		logger.Log.Info("weekly toast run finished")
	})
	if err != nil {
		logger.Log.Fatal("invalid toast cron spec", zap.String("spec", cfg.Toast.CronSpec), zap.Error(err))
	}

	a.cron.Start()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db, rdb)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("toast-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services, repos, cfg)

	return app
}

// OnConfigReload applies hot-reloadable settings from a rewritten config
// file. The JWT secret and rate limits are read per request through the
// shared pointer, so updating them in place is enough; anything wired into a
// service at construction time still needs a restart.
func (a *App) OnConfigReload(newCfg interface{}) {
	cfg, ok := newCfg.(*config.Config)
	if !ok {
		return
	}
	a.Config.JWT = cfg.JWT
	a.Config.RateLimit = cfg.RateLimit
	a.Config.Toast = cfg.Toast
	logger.Log.Info("configuration reloaded")
}

func ginMode(mode string) string {
	switch mode {
	case "release", "test", "debug":
		return mode
	}
	return gin.DebugMode
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

	if a.cron != nil {
		// Let an in-flight weekly run finish; generations are idempotent, so
		// losing the rest of the batch only delays those users to the next run.
		a.cron.Stop()
	}

	if a.services != nil && a.services.notifyHub != nil {
		a.services.notifyHub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
