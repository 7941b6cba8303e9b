package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"causeboard/internal/db"
	"causeboard/internal/fieldtype"
	"causeboard/internal/identity"
	"causeboard/internal/media"
	"causeboard/internal/notify"
	"causeboard/internal/server"
	"causeboard/internal/service"
	"causeboard/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	if config.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)
	s3Client := s3.NewFromConfig(awsConfig)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	categoryRepo := store.NewCategoryRepository(pool)
	fieldRepo := store.NewFieldRepository(pool)
	causeRepo := store.NewCauseRepository(pool)
	valueRepo := store.NewValueRepository(pool)
	foodRepo := store.NewFoodDetailsRepository(pool)
	clothesRepo := store.NewClothesDetailsRepository(pool)
	educationRepo := store.NewEducationDetailsRepository(pool)

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initilaize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register jwks url with cache: %w", err)
	}

	verifier := identity.NewVerifier(jwkCache, jwksURL, config.AdminGroupName)
	authenticator := identity.NewAuthenticator(cognitoClient, config.CognitoClientID)
	mediaStore := media.NewStore(s3Client, config.MediaBucketName, config.MediaBaseURL)

	core := service.New(
		logger,
		pool,
		fieldtype.NewRegistry(),
		categoryRepo,
		fieldRepo,
		causeRepo,
		valueRepo,
		foodRepo,
		clothesRepo,
		educationRepo,
		mediaStore,
		notify.NewLogNotifier(logger),
	)

	srv, err := server.New(
		config,
		logger,
		core,
		authenticator,
		verifier,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
