// Command api runs the Online Marketplace HTTP API.
//
// @title                       Online Marketplace API
// @version                     1.0
// @description                 Accounts, classified and job listings, favourites and chats.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/onlinemarketplace/marketplace-api/internal/api"
	"github.com/onlinemarketplace/marketplace-api/internal/api/metrics"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
	"github.com/onlinemarketplace/marketplace-api/internal/core/service"
	"github.com/onlinemarketplace/marketplace-api/internal/infrastructure/auth"
	"github.com/onlinemarketplace/marketplace-api/internal/infrastructure/config"
	mongodb "github.com/onlinemarketplace/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/onlinemarketplace/marketplace-api/internal/infrastructure/db/redis"
	"github.com/onlinemarketplace/marketplace-api/internal/infrastructure/http/handlers"
	"github.com/onlinemarketplace/marketplace-api/internal/infrastructure/mail"
	"github.com/onlinemarketplace/marketplace-api/internal/infrastructure/queue"
	"github.com/onlinemarketplace/marketplace-api/internal/infrastructure/storage/s3"
	"github.com/onlinemarketplace/marketplace-api/internal/pkg/idgen"
	"github.com/onlinemarketplace/marketplace-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "marketplace-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	if err := mongodb.SeedReferenceData(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	ids, err := idgen.New(cfg.SnowflakeNode)
	if err != nil {
		return err
	}

	var images ports.ImageStore
	if cfg.S3.Bucket != "" {
		store, err := s3.NewImageStore(ctx, s3.Config{
			Endpoint:   cfg.S3.Endpoint,
			Region:     cfg.S3.Region,
			AccessKey:  cfg.S3.AccessKey,
			SecretKey:  cfg.S3.SecretKey,
			Bucket:     cfg.S3.Bucket,
			PresignTTL: cfg.S3.PresignTTL,
		})
		if err != nil {
			return err
		}
		images = store
	} else {
		log.Warn().Msg("S3_BUCKET not set, listing images are disabled")
	}

	// --- Mail ---
	mailLog := logger.Component(log, "mail")
	var sender ports.EmailSender
	if cfg.SMTP.Host != "" {
		smtp, err := mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			return err
		}
		sender = smtp
	} else {
		mailLog.Warn().Msg("SMTP_HOST not set, emails are logged instead of sent")
		sender = mail.NewLogSender(mailLog)
	}

	dispatcher := queue.NewDispatcher(cfg.SMTP.Workers, sender, func(_ ports.Email, err error) {
		if err != nil {
			metrics.VerificationMailsTotal.WithLabelValues("failed").Inc()
			return
		}
		metrics.VerificationMailsTotal.WithLabelValues("sent").Inc()
	}, mailLog)
	dispatcher.Start(context.Background())
	defer dispatcher.Close()
	metrics.RegisterMailQueueDepth(dispatcher.Depth)

	notifier := mail.NewVerificationNotifier(mail.Composer{PublicDomain: cfg.PublicDomain}, dispatcher)

	// --- Repositories & services ---
	accountRepo := mongodb.NewAccountRepository(db, ids)
	contactRepo := mongodb.NewContactRepository(db, ids)
	favouriteRepo := mongodb.NewFavouriteRepository(db)
	listingRepo := mongodb.NewListingRepository(db, ids)
	jobRepo := mongodb.NewJobListingRepository(db, ids)
	geoRepo := mongodb.NewGeoRepository(db)
	categoryRepo := mongodb.NewCategoryRepository(db)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	credentials := service.NewCredentialManager(service.NewPasswordPolicy(), cfg.Auth.BcryptCost)

	accounts := service.NewAccountService(
		accountRepo,
		credentials,
		tokens,
		notifier,
		redisdb.NewResendThrottle(rdb, cfg.Auth.ResendCooldown),
		logger.Component(log, "accounts"),
	)
	contacts := service.NewContactService(accountRepo, contactRepo, logger.Component(log, "contacts"))
	chats := service.NewChatService(
		contacts,
		mongodb.NewChatRepository(db, ids),
		mongodb.NewMessageRepository(db, ids),
		logger.Component(log, "chats"),
	)
	listingLog := logger.Component(log, "listings")

	e := api.NewRouter(api.Dependencies{
		Accounts:    accounts,
		Contacts:    contacts,
		Chats:       chats,
		Favourites:  service.NewFavouriteService(favouriteRepo, listingRepo, jobRepo, logger.Component(log, "favourites")),
		Listings:    service.NewListingService(listingRepo, favouriteRepo, geoRepo, categoryRepo, images, listingLog),
		JobListings: service.NewJobListingService(jobRepo, favouriteRepo, geoRepo, categoryRepo, logger.Component(log, "job_listings")),
		Geo:         service.NewGeoService(geoRepo, categoryRepo),
		Tokens:      tokens,
		Readiness: map[string]handlers.Checker{
			"mongodb": handlers.MongoChecker(db),
			"redis":   handlers.RedisChecker(rdb),
		},
		Log: logger.Component(log, "http"),
	})

	// --- Serve until a signal arrives ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("http server stopped, draining mail queue")
	return nil
}
