package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wewearapi/config"
	"wewearapi/controllers"
	"wewearapi/dbhelper"
	"wewearapi/laundry"
	"wewearapi/logger"
	"wewearapi/outfit"
	"wewearapi/packing"
	"wewearapi/services"
	"wewearapi/style"
	"wewearapi/tasks"
	"wewearapi/telegram"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()
	if _, err := logger.Init(cfg.Env); err != nil {
		log.Fatalf("logger.Init: %s", err)
	}
	defer logger.L().Sync()

	err := sentry.Init(sentry.ClientOptions{
		// empty DSN disables reporting
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		Release:          "wewearapi@1.0.0",
		Debug:            false,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := dbhelper.SetupDB()

	palette := style.DefaultPalette().WithOverrides(cfg.ColorWheel, cfg.ColorAliases)
	engineOpts := []outfit.Option{outfit.WithTimeout(cfg.GeneratorTimeout), outfit.WithPalette(palette)}
	plannerOpts := []packing.Option{packing.WithTimeout(cfg.GeneratorTimeout)}
	if apiKey := config.GetEnv("GEMINI_API_KEY", ""); apiKey != "" {
		generator, err := outfit.NewGeminiGenerator(ctx, apiKey, cfg.GeminiModel)
		if err != nil {
			logger.L().Warn("gemini unavailable, suggestions are rule-based", "error", err)
		} else {
			engineOpts = append(engineOpts, outfit.WithGenerator(generator))
		}
		packer, err := packing.NewGeminiGenerator(ctx, apiKey, cfg.GeminiModel)
		if err != nil {
			logger.L().Warn("gemini unavailable, packing lists are rule-based", "error", err)
		} else {
			plannerOpts = append(plannerOpts, packing.WithGenerator(packer))
		}
	}

	mock := services.NewMockWeather(time.Now().UnixNano())
	var upstream services.WeatherProvider = mock
	if apiKey := config.GetEnv("OPENWEATHER_API_KEY", ""); apiKey != "" {
		upstream = services.NewOpenWeatherClient(apiKey)
	}
	weather, err := services.NewWeatherService(upstream, mock, cfg.WeatherCacheTTL)
	if err != nil {
		logger.L().Fatal("failed to initialize weather service", "error", err)
	}

	awsService := &services.AWSService{}
	urlCache, err := services.NewURLCacheService(awsService, cfg.R2BucketName)
	if err != nil {
		logger.L().Fatal("failed to initialize URL cache service", "error", err)
	}

	asynqClient := tasks.NewClient(cfg.BrokerAddress)
	defer asynqClient.Close()

	thresholds := laundry.DefaultThresholds()
	e := controllers.SetupServer(db, controllers.ServerDeps{
		Google:     services.GoogleService{},
		AWS:        awsService,
		URLCache:   urlCache,
		Weather:    weather,
		Engine:     outfit.NewEngine(engineOpts...),
		Packing:    packing.NewPlanner(plannerOpts...),
		Tasks:      asynqClient,
		Thresholds: thresholds,
		Config:     cfg,
	})

	if config.GetEnv("TELEGRAM_BOT", "") == "true" {
		sender, err := telegram.NewBotSender(config.GetEnv("TELEGRAM_BOT_TOKEN", ""))
		if err != nil {
			logger.L().Fatal("failed to start telegram bot", "error", err)
		}
		telegram.RunBot(ctx, sender, db, thresholds)
		return
	}

	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10)))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.L().Error("shutdown failed", "error", err)
		}
	}()
	logger.L().Info("api listening", "addr", cfg.HTTPAddr)
	e.Logger.Fatal(e.Start(cfg.HTTPAddr))
}
