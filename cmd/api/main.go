package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/config"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/handler"
	"github.com/annonstorg/annonstorg-backend/internal/middleware"
	"github.com/annonstorg/annonstorg-backend/internal/repository"
	"github.com/annonstorg/annonstorg-backend/internal/routes"
	"github.com/annonstorg/annonstorg-backend/internal/service"
	"github.com/annonstorg/annonstorg-backend/pkg/jwt"
	pkglogger "github.com/annonstorg/annonstorg-backend/pkg/logger"
	pkgredis "github.com/annonstorg/annonstorg-backend/pkg/redis"
	pkgsearch "github.com/annonstorg/annonstorg-backend/pkg/search"
	pkgstorage "github.com/annonstorg/annonstorg-backend/pkg/storage"
	"github.com/annonstorg/annonstorg-backend/pkg/wordfilter"
)

// @title           Annonstorg API
// @version         1.0
// @description     Classifieds marketplace backend with encrypted buyer-seller messaging
//
// @license.name    MIT
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

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
	logger := pkglogger.GetLogger()
	logger.Info().Str("env", env).Strs("dotenv", dotenvFiles).Msg("starting annonstorg-backend")

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", configPath, err)
	}

	db, err := initDB(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("database connection failed, continuing without DB")
		db = nil
	} else {
		logger.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.Name).Msg("connected to Postgres")
		if err := db.AutoMigrate(
			&domain.User{},
			&domain.Ad{},
			&domain.Image{},
			&domain.Conversation{},
			&domain.Message{},
			&domain.Report{},
		); err != nil {
			logger.Warn().Err(err).Msg("auto-migration warning")
		}
	}

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without rate limiting")
		redisClient = nil
	} else {
		logger.Info().Str("host", cfg.Redis.Host).Msg("connected to Redis")
	}

	// Optional search index. Services fall back to SQL matching when nil.
	var adIndex service.AdIndex
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) > 0 {
		esClient, esErr := pkgsearch.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if esErr != nil {
			logger.Warn().Err(esErr).Msg("elasticsearch init failed, continuing with SQL search")
		} else {
			adIndex = esClient
			logger.Info().Strs("addresses", cfg.Elasticsearch.Addresses).Msg("connected to Elasticsearch")
		}
	}

	// Optional object storage. Image uploads are rejected when nil.
	var blobs service.BlobStorage
	if cfg.Storage.Enabled && cfg.Storage.Bucket != "" {
		s3Client, s3Err := pkgstorage.NewClient(pkgstorage.Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if s3Err != nil {
			logger.Warn().Err(s3Err).Msg("object storage init failed, continuing without image uploads")
		} else {
			blobs = s3Client
		}
	}

	taxonomy, err := domain.LoadTaxonomy("configs/taxonomy.yaml")
	if err != nil {
		log.Fatalf("Failed to load taxonomy: %v", err)
	}
	logger.Info().Int("categories", len(taxonomy.Categories())).Int("counties", len(taxonomy.Counties())).Msg("taxonomy loaded")

	filter := wordfilter.New(nil)

	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiresIn,
		cfg.JWT.RefreshIn,
	)

	if db == nil {
		log.Fatal("Cannot serve the API without a database connection")
	}

	userRepo := repository.NewUserRepository(db)
	adRepo := repository.NewAdRepository(db)
	imageRepo := repository.NewImageRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	reportRepo := repository.NewReportRepository(db)

	adService := service.NewAdService(adRepo, imageRepo, taxonomy, blobs, adIndex, cfg.Messaging.AdTTLDays)
	convService := service.NewConversationService(convRepo, msgRepo, adRepo, filter, cfg.Messaging.Secret, cfg.Messaging.ConversationTTLDays)
	reportService := service.NewReportService(reportRepo, adRepo)
	moderationService := service.NewModerationService(adRepo, reportRepo, adIndex)
	authService := service.NewAuthService(userRepo, jwtManager)

	handlers := &routes.Handlers{
		Ads:           handler.NewAdHandler(adService),
		Conversations: handler.NewConversationHandler(convService),
		Reports:       handler.NewReportHandler(reportService),
		Admin:         handler.NewAdminHandler(reportService, moderationService),
		Auth:          handler.NewAuthHandler(authService),
		Taxonomy:      handler.NewTaxonomyHandler(taxonomy),
	}

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           86400,
	}))

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.InputSanitizer())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	if redisClient != nil && !cfg.IsDevelopment() {
		router.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "annonstorg-backend",
			"time":    time.Now().Unix(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, handlers, jwtManager, redisClient)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// initDB opens the Postgres connection. TranslateError maps unique
// violations to gorm.ErrDuplicatedKey, which the conversation service
// relies on for idempotent creation.
func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
