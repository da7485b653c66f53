package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/famwell-api/internal/config"
	"github.com/famwell-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/famwell-api/internal/infrastructure/jwt"
	s3infra "github.com/famwell-api/internal/infrastructure/s3"
	"github.com/famwell-api/internal/infrastructure/ses"
	"github.com/famwell-api/internal/infrastructure/smtp"
	"github.com/famwell-api/internal/infrastructure/sns"
	transporthttp "github.com/famwell-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for avatars.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// Mailer: SES when configured, SMTP otherwise.
	var mailer smtp.Mailer
	if cfg.MailerDriver == "ses" {
		m, err := ses.NewMailer(cfg)
		if err != nil {
			log.Fatalf("SES mailer init failed: %v", err)
		}
		mailer = m
	} else {
		mailer = smtp.NewMailer(cfg)
	}

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		IdentityRepo:     dynamo.NewIdentityRepo(dynamoClient, cfg.DynamoTables.Identities),
		OneTimeCodeRepo:  dynamo.NewOneTimeCodeRepo(dynamoClient, cfg.DynamoTables.OneTimeCodes),
		FamilyLinkRepo:   dynamo.NewFamilyLinkRepo(dynamoClient, cfg.DynamoTables.FamilyLinks),
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		DeviceRepo:       dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices),
		MoodRepo:         dynamo.NewMoodRepo(dynamoClient, cfg.DynamoTables.MoodEntries),
		ActivityRepo:     dynamo.NewActivityRepo(dynamoClient, cfg.DynamoTables.Activities),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		S3Store:          s3Store,
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
