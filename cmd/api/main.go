package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/med-reminder-api/internal/application/dispatch"
	"github.com/med-reminder-api/internal/config"
	"github.com/med-reminder-api/internal/infrastructure/dynamo"
	s3infra "github.com/med-reminder-api/internal/infrastructure/s3"
	"github.com/med-reminder-api/internal/infrastructure/smtp"
	"github.com/med-reminder-api/internal/infrastructure/sns"
	transporthttp "github.com/med-reminder-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	reminderRepo := dynamo.NewReminderRepo(dynamoClient, cfg.DynamoTables.Reminders)
	destinationRepo := dynamo.NewDestinationRepo(dynamoClient, cfg.DynamoTables.Destinations)
	medicationRepo := dynamo.NewMedicationRepo(dynamoClient, cfg.DynamoTables.Medications)

	// SNS push sender (optional — graceful fallback).
	var pushSender sns.PushSender
	if sender, err := sns.NewSender(cfg); err == nil {
		pushSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// Run report archive (optional).
	var archiver dispatch.ReportArchiver
	if cfg.S3ReportBucket != "" {
		archiver = s3infra.NewReportArchive(s3infra.NewClient(cfg), cfg.S3ReportBucket)
	}

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	dispatcher := dispatch.NewService(reminderRepo, destinationRepo, pushSender, archiver, dispatch.Options{
		PageSize:    cfg.DispatchPageSize,
		Timeout:     cfg.DispatchTimeout,
		Concurrency: cfg.SendConcurrency,
		QPS:         cfg.SendQPS,
		Burst:       cfg.SendBurst,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Internal minute ticker; an external scheduler can hit /v1/dispatch/run
	// instead when DISPATCH_INTERVAL=0.
	if cfg.DispatchInterval > 0 {
		go dispatcher.Start(rootCtx, cfg.DispatchInterval)
	}

	deps := &transporthttp.Deps{
		ReminderRepo:    reminderRepo,
		DestinationRepo: destinationRepo,
		MedicationRepo:  medicationRepo,
		Dispatcher:      dispatcher,
		Mailer:          mailer,
		SnoozeMinutes:   cfg.SnoozeMinutes,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
