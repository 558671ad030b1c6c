package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/flocknet/flock-backend/internal/config"
	"github.com/flocknet/flock-backend/internal/domain"
	"github.com/flocknet/flock-backend/internal/handler"
	"github.com/flocknet/flock-backend/internal/middleware"
	"github.com/flocknet/flock-backend/internal/realtime"
	"github.com/flocknet/flock-backend/internal/repository"
	"github.com/flocknet/flock-backend/internal/routes"
	"github.com/flocknet/flock-backend/internal/service"
	"github.com/flocknet/flock-backend/internal/visibility"
	pkgcache "github.com/flocknet/flock-backend/pkg/cache"
	"github.com/flocknet/flock-backend/pkg/jwt"
	pkglogger "github.com/flocknet/flock-backend/pkg/logger"
	pkgredis "github.com/flocknet/flock-backend/pkg/redis"
	pkgstorage "github.com/flocknet/flock-backend/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// MySQL
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")

	// Redis (optional: realtime fan-out and caching degrade without it)
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	// S3-compatible storage (optional: media endpoints fail cleanly without it)
	var s3Client *pkgstorage.S3Client
	if cfg.Storage.Enabled && cfg.Storage.Bucket != "" {
		s3Client, err = pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if err != nil {
			pkglogger.Warn("S3 storage init failed: %v (continuing without S3)", err)
			s3Client = nil
		}
	}

	// Realtime hub and typing presence
	hub := realtime.NewHub(redisClient)
	go hub.Run()

	presence := realtime.NewCoordinator(realtime.TypingTTL)

	// JWT
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.RefreshIn)

	// Repositories
	convRepo := repository.NewConversationRepository(db)
	partRepo := repository.NewParticipantRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	reactRepo := repository.NewReactionRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	userRepo := repository.NewUserRepository(db)
	mentionRepo := repository.NewMentionRepository(db)

	// Services
	loader := visibility.NewLoader(relRepo, cacheService)
	convService := service.NewConversationService(convRepo, partRepo, msgRepo, reactRepo, userRepo, loader, presence, hub)
	notifService := service.NewNotificationService(notifRepo, userRepo, mentionRepo, loader, hub)
	relService := service.NewRelationshipService(relRepo, userRepo, notifService, loader)
	mediaService := service.NewMediaService(s3Client)

	// Typing broadcasts flow through the conversation service
	presence.OnChange(convService.PublishTyping)
	go presence.Run()

	// Handlers
	convHandler := handler.NewConversationHandler(convService)
	notifHandler := handler.NewNotificationHandler(notifService)
	relHandler := handler.NewRelationshipHandler(relService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	wsHandler := handler.NewWSHandler(hub, presence, cfg.CORS.AllowOrigins)

	// Router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     splitAndTrim(cfg.CORS.AllowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())
	if redisClient != nil && !cfg.IsDevelopment() {
		router.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.App.Name,
			"time":    time.Now().Unix(),
		})
	})

	routes.Setup(router, convHandler, notifHandler, relHandler, mediaHandler, wsHandler, jwtManager)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		pkglogger.Info("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	pkglogger.Info("Shutting down")

	presence.Stop()
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		pkglogger.Error("Forced shutdown: %v", err)
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Conversation{},
		&domain.ConversationParticipant{},
		&domain.Message{},
		&domain.MessageReaction{},
		&domain.Notification{},
		&domain.Follow{},
		&domain.Block{},
		&domain.Mute{},
		&domain.PostMention{},
	); err != nil {
		return nil, err
	}
	return db, nil
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
