package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smarttasker/internal/api"
	"smarttasker/internal/config"
	"smarttasker/internal/notify"
	"smarttasker/internal/repository"
	"smarttasker/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	recurringRepo := repository.NewRecurringRepository(db)

	taskSvc := service.NewTaskService(taskRepo)
	recurringSvc := service.NewRecurringService(recurringRepo, taskRepo)
	generationSvc := service.NewGenerationService(taskRepo, recurringRepo)

	var notifier *notify.TelegramNotifier
	if cfg.TelegramEnabled() {
		notifier, err = notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("notifier: %v", err)
		}
	}

	scheduler := service.NewSchedulerService(time.UTC)
	if _, err := scheduler.ScheduleInterval(cfg.GenerateInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		report, err := generationSvc.GenerateDueTasks(jobCtx, time.Now(), cfg.LookAheadDays)
		if err != nil {
			log.Printf("generation sweep: %v", err)
			return
		}
		log.Printf("generation sweep: %d configs, %d tasks created, %d errors",
			report.Processed, report.TasksCreated(), report.Errors())
		if notifier != nil {
			if err := notifier.SendRunReport(report, time.Now()); err != nil {
				log.Printf("run report: %v", err)
			}
		}
	}); err != nil {
		log.Fatalf("schedule generation: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := api.NewServer(cfg, userRepo, taskSvc, recurringSvc, generationSvc)
	httpServer := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: server.Engine,
	}

	go func() {
		log.Printf("SmartTasker recurrence service listening on %s", cfg.ServerAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}
