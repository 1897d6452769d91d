package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/staff-scheduler/internal/application"
	"github.com/example/staff-scheduler/internal/config"
	httptransport "github.com/example/staff-scheduler/internal/http"
	"github.com/example/staff-scheduler/internal/mail"
	"github.com/example/staff-scheduler/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	staffRepo := sqlite.NewStaffRepository(storage)
	taskRepo := sqlite.NewTaskRepository(storage)
	scheduleRepo := sqlite.NewScheduleRepository(storage)

	var sender mail.Sender
	if cfg.NotificationsEnabled() {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			From: cfg.SMTPFrom,
		})
		logger.Info("notifications enabled", "smtp_host", cfg.SMTPHost, "rate_per_second", cfg.NotifyRatePerSecond)
	} else {
		logger.Warn("notifications disabled, no SMTP endpoint configured")
	}
	dispatcher := application.NewNotificationDispatcher(sender, cfg.NotifyRatePerSecond, logger)

	staffService := application.NewStaffService(staffRepo, idGenerator, now, logger)
	taskService := application.NewTaskService(taskRepo, idGenerator, now, logger)
	scheduleService := application.NewScheduleService(scheduleRepo, staffRepo, taskRepo, dispatcher, location, idGenerator, now, logger)
	reportService := application.NewReportService(scheduleRepo, staffRepo, location, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Schedules:  httptransport.NewScheduleHandler(scheduleService, reportService, cfg.StrictAvailability, logger),
		Staff:      httptransport.NewStaffHandler(staffService, logger),
		Tasks:      httptransport.NewTaskHandler(taskService, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("staff scheduler API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
