package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/config"
	"github.com/annonstorg/annonstorg-backend/internal/middleware"
	"github.com/annonstorg/annonstorg-backend/internal/repository"
	"github.com/annonstorg/annonstorg-backend/internal/service"
	pkglogger "github.com/annonstorg/annonstorg-backend/pkg/logger"
	pkgsearch "github.com/annonstorg/annonstorg-backend/pkg/search"
	pkgstorage "github.com/annonstorg/annonstorg-backend/pkg/storage"
)

// The sweep removes ads that have sat in a terminal state past the grace
// period, together with their images, conversations and messages. Run it
// from cron; -dry-run reports what would go without touching anything.
func main() {
	dryRun := flag.Bool("dry-run", false, "report purge candidates without deleting")
	flag.Parse()

	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	logger := pkglogger.GetLogger()

	configPath := fmt.Sprintf("configs/config.%s.yaml", env)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", configPath, err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

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
			logger.Warn().Err(s3Err).Msg("object storage init failed, image blobs will be left behind")
		} else {
			blobs = s3Client
		}
	}

	var adIndex service.AdIndex
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) > 0 {
		esClient, esErr := pkgsearch.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if esErr != nil {
			logger.Warn().Err(esErr).Msg("elasticsearch init failed, index entries will be left behind")
		} else {
			adIndex = esClient
		}
	}

	purge := service.NewPurgeService(
		repository.NewAdRepository(db),
		repository.NewImageRepository(db),
		repository.NewConversationRepository(db),
		repository.NewMessageRepository(db),
		blobs,
		adIndex,
		cfg.Messaging.PurgeGraceDays,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := purge.Run(ctx, *dryRun)
	if err != nil {
		log.Fatalf("Purge sweep failed: %v", err)
	}

	middleware.AddAdsPurged(stats.AdsPurged)

	logger.Info().
		Bool("dry_run", *dryRun).
		Int("candidates", stats.Candidates).
		Int("ads_purged", stats.AdsPurged).
		Int("conversations", stats.Conversations).
		Int("images", stats.Images).
		Int("errors", stats.Errors).
		Msg("sweep finished")

	if stats.Errors > 0 {
		os.Exit(1)
	}
}
