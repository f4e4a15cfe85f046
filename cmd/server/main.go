package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Player_Progression/internal/config"
	"github.com/Dias221467/Player_Progression/internal/database"
	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/Dias221467/Player_Progression/internal/feed"
	"github.com/Dias221467/Player_Progression/internal/handlers"
	"github.com/Dias221467/Player_Progression/internal/jobs"
	"github.com/Dias221467/Player_Progression/internal/ranking"
	"github.com/Dias221467/Player_Progression/internal/repository"
	"github.com/Dias221467/Player_Progression/internal/scheduler"
	"github.com/Dias221467/Player_Progression/internal/services"
	"github.com/Dias221467/Player_Progression/internal/store"
	"github.com/Dias221467/Player_Progression/pkg/email"
	"github.com/Dias221467/Player_Progression/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Store ---
	var docs store.Store
	switch cfg.StoreDriver {
	case "memory":
		logger.Log.Warn("Using in-memory store, data is lost on restart")
		docs = store.NewMemoryStore(repository.UniqueIndexes...)
	default:
		db, err := database.ConnectDB(cfg)
		if err != nil {
			logger.Log.Fatalf("Database connection error: %v", err)
		}
		defer db.Client().Disconnect(context.Background())
		docs = store.NewMongoStore(db)
	}

	// --- Ranking index ---
	var index ranking.Index
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Log.Fatalf("Redis connection error: %v", err)
		}
		redisIndex := ranking.NewRedisIndex(client, cfg.RankingKey)
		defer redisIndex.Close()
		index = redisIndex
		logger.Log.WithField("addr", cfg.RedisAddr).Info("Ranking index enabled")
	}

	// --- Repositories ---
	playerRepo := repository.NewPlayerRepository(docs)
	friendRepo := repository.NewFriendRepository(docs)
	notificationRepo := repository.NewNotificationRepository(docs)
	activityRepo := repository.NewActivityRepository(docs)

	// --- Event sinks ---
	notificationService := services.NewNotificationService(notificationRepo)
	activityService := services.NewActivityService(activityRepo)
	hub := feed.NewHub()
	go hub.Run(ctx)

	// Kafka and SMTP are slow and remote, so they are fed from queues and
	// never hold up a request.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	var dispatchers []*events.Async
	dispatch := func(name string, sink events.Publisher) events.Publisher {
		async := events.NewAsync(name, sink, cfg.EventQueueSize, cfg.EventTimeout)
		go async.Run(workerCtx)
		dispatchers = append(dispatchers, async)
		return async
	}

	publisher := events.Multi{hub, notificationService, activityService}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.Log.Fatalf("Kafka connection error: %v", err)
		}
		defer kafka.Close()
		publisher = append(publisher, dispatch("kafka", kafka))
		logger.Log.WithField("topic", cfg.KafkaTopic).Info("Event streaming enabled")
	}

	if cfg.SMTPHost != "" {
		mailer := email.NewSMTPSender(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Sender:   cfg.SMTPSender,
			Password: cfg.SMTPPassword,
			Timeout:  cfg.SMTPTimeout,
		})
		publisher = append(publisher, dispatch("email", services.NewEmailNotifier(playerRepo, mailer)))
		logger.Log.WithField("host", cfg.SMTPHost).Info("Email notifications enabled")
	}

	// --- Services ---
	rankingService := services.NewRankingService(playerRepo, index, publisher)
	progressService := services.NewProgressService(playerRepo, rankingService, publisher)
	achievementService := services.NewAchievementService(playerRepo, publisher)
	friendService := services.NewFriendService(friendRepo, playerRepo, publisher)
	playerService := services.NewPlayerService(playerRepo, friendService, rankingService, index, services.AuthSettings{
		JWTSecret:   cfg.JWTSecret,
		TokenExpiry: cfg.TokenExpiry,
		BcryptCost:  cfg.BcryptCost,
	})

	// --- Jobs ---
	reconciler := jobs.NewReconciler(friendService, rankingService, notificationService)
	if _, err := reconciler.Run(ctx); err != nil {
		logger.Log.WithError(err).Warn("Startup reconcile pass failed")
	}
	cronJobs, err := scheduler.StartReconcileCron(reconciler, cfg.ReconcileSchedule)
	if err != nil {
		logger.Log.Fatalf("Scheduler error: %v", err)
	}
	defer cronJobs.Stop()

	// --- Handlers ---
	router := handlers.NewRouter(handlers.Handlers{
		Players:       handlers.NewPlayerHandler(playerService),
		Progress:      handlers.NewProgressHandler(progressService, achievementService, rankingService),
		Friends:       handlers.NewFriendHandler(friendService),
		Notifications: handlers.NewNotificationHandler(notificationService, activityService),
		Feed:          handlers.NewRankingFeedHandler(hub, cfg.JWTSecret),
	}, cfg.JWTSecret)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}

	stopWorkers()
	for _, d := range dispatchers {
		select {
		case <-d.Done():
		case <-shutdownCtx.Done():
			logger.Log.Warn("Event queues not flushed before shutdown deadline")
			return
		}
	}
}
