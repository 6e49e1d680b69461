package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	api "github.com/portfolio-site/backend/api"
	"github.com/portfolio-site/backend/auth"
	"github.com/portfolio-site/backend/blob"
	"github.com/portfolio-site/backend/config"
	"github.com/portfolio-site/backend/database"
	"github.com/portfolio-site/backend/services"
)

const startupTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)
	log.Info().Msg("Initializing app...")

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	log.Info().Str("dbType", cfg.DB.Type).Msg("Connecting to database...")
	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	currentDB := database.New(db)
	defer func() {
		if err := currentDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	if err := currentDB.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}
	// repos also migrate lazily, this just surfaces schema problems at boot
	if err := currentDB.EnsureSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("Schema check failed, will retry on first request")
	}

	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Blob.Backend).Msg("Error initializing blob store")
	}

	authenticator, err := newAuthenticator(ctx, cfg.Auth, cfg.S3.Region)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing admin authentication")
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing admin tokens")
	}
	if cfg.Auth.TokenSecret == "" {
		log.Warn().Msg("ADMIN_TOKEN_SECRET not set, admin sessions will not survive a restart")
	}

	deps := api.Dependencies{
		Database:      currentDB,
		Blobs:         store,
		Authenticator: authenticator,
		Tokens:        tokens,
	}
	if cfg.NotificationsEnabled() {
		sender := services.NewEmailSender(cfg.ResendAPIKey, cfg.ResendFromEmail)
		deps.Notifier = services.NewFeedbackNotifier(sender, cfg.NotifyEmail)
		log.Info().Str("recipient", cfg.NotifyEmail).Msg("Feedback notifications enabled")
	}

	// buffered so the server and signal goroutines never block after shutdown
	errChannel := make(chan error, 2)

	server, err := api.NewServer(cfg, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(cfg.ShutdownTimeout)
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(cfg.LogFormat, "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func newBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	switch cfg.Blob.Backend {
	case "s3":
		store, err := blob.NewS3Store(ctx, blob.S3Options{
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			UsePathStyle:  cfg.S3.UsePathStyle,
			PresignExpire: cfg.S3.PresignExpire,
		})
		if err != nil {
			return nil, err
		}
		if cfg.S3.CreateBucket {
			if err := store.EnsureBucket(ctx, cfg.S3.Region); err != nil {
				return nil, err
			}
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Storing images in S3")
		return store, nil
	case "inline":
		log.Info().Msg("Storing images inline in the database")
		return blob.InlineStore{}, nil
	default:
		store, err := blob.NewDiskStore(cfg.Blob.UploadDir, cfg.Blob.BaseURL)
		if err != nil {
			return nil, err
		}
		log.Info().Str("dir", cfg.Blob.UploadDir).Msg("Storing images on disk")
		return store, nil
	}
}

func newAuthenticator(ctx context.Context, cfg config.AuthConfig, region string) (auth.Authenticator, error) {
	if cfg.SSMParam != "" {
		client, err := auth.NewSSMClient(ctx, region)
		if err != nil {
			return nil, err
		}
		log.Info().Str("parameter", cfg.SSMParam).Msg("Admin password hash read from SSM")
		return auth.NewSSMAuthenticator(client, cfg.SSMParam, cfg.Username, cfg.SSMCacheTTL), nil
	}
	return auth.NewStaticAuthenticator(cfg.Username, cfg.Password, cfg.PasswordHash)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
