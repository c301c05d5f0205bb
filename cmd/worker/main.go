package main

import (
	"context"
	"log"
	"time"

	"wewearapi/config"
	"wewearapi/dbhelper"
	"wewearapi/logger"
	"wewearapi/services"
	"wewearapi/tasks"
	"wewearapi/telegram"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
)

func runScheduler(redis asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redis, &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})

	entries := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "0 9 * * *",
			task: tasks.NewLaundryReminderTask(),
			desc: "Daily laundry reminder",
		},
		{
			cron: "0 20 * * *",
			task: tasks.NewOutfitReminderTask(),
			desc: "Evening outfit reminder",
		},
	}

	for _, t := range entries {
		entryID, err := scheduler.Register(t.cron, t.task, asynq.Queue(tasks.QueueNotifications))
		if err != nil {
			logger.L().Fatal("failed to register scheduled task", "task", t.desc, "error", err)
		}
		logger.L().Info("registered scheduled task", "task", t.desc, "entry_id", entryID, "cron", t.cron)
	}

	if err := scheduler.Run(); err != nil {
		logger.L().Fatal("scheduler failed", "error", err)
	}
}

func main() {
	cfg := config.Load()
	if _, err := logger.Init(cfg.Env); err != nil {
		log.Fatalf("logger.Init: %s", err)
	}
	defer logger.L().Sync()
	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	redis := asynq.RedisClientOpt{Addr: cfg.BrokerAddress}
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			tasks.QueueNotifications: 6,
			tasks.QueueImages:        4,
		},
	})

	ctx := context.Background()
	db := dbhelper.SetupDB()
	awsService := &services.AWSService{}
	if err := awsService.InitPresignClient(ctx); err != nil {
		logger.L().Warn("storage not configured, image processing will fail", "error", err)
	}

	notifiers := tasks.Notifiers{Push: services.NewFirebasePushNotifier(ctx, db)}
	if token := config.GetEnv("TELEGRAM_BOT_TOKEN", ""); token != "" {
		sender, err := telegram.NewBotSender(token)
		if err != nil {
			logger.L().Warn("telegram disabled", "error", err)
		} else {
			notifiers.Telegram = sender
		}
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeUrgencyAlert, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleUrgencyAlertTask(ctx, t, db, notifiers)
	})
	mux.HandleFunc(tasks.TypeLaundryReminder, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleLaundryReminderTask(ctx, t, db, notifiers, time.Now())
	})
	mux.HandleFunc(tasks.TypeOutfitReminder, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleOutfitReminderTask(ctx, t, db, notifiers, time.Now())
	})
	mux.HandleFunc(tasks.TypeProcessImage, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleProcessImageTask(ctx, t, db, awsService, cfg.R2BucketName)
	})

	go runScheduler(redis)
	if err := srv.Run(mux); err != nil {
		logger.L().Fatal("worker stopped", "error", err)
	}
}
