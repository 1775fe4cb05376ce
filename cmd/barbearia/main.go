package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/app"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/broadcast"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/config"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/controller"
	httpserver "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/lock"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/policy"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository/memory"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/service"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-telegram/bot"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Service stopped", zap.Error(err))
	}
	logger.Info("Service stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := cfg.Location()
	if err != nil {
		return err
	}
	hours, err := cfg.OpeningHours()
	if err != nil {
		return err
	}

	logger.Info("Starting barbearia",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage),
		zap.String("timezone", location.String()))

	store, people, settings, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	origin := instanceID()
	broadcaster := broadcast.New(logger.Named("broadcast"))
	defer broadcaster.Close()

	var (
		locker lock.Locker = lock.Local{}
		relay  *broadcast.Relay
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		redisLock, err := lock.NewRedisLock(ctx, client, origin)
		if err != nil {
			return err
		}
		locker = redisLock
		relay = broadcast.NewRelay(client, cfg.Redis.Channel, origin, broadcaster, logger.Named("relay"))
		logger.Info("Redis enabled", zap.String("addr", cfg.Redis.Addr))
	}
	publisher := broadcast.NewPublisher(broadcaster, relay, origin, logger.Named("publisher"))

	releaseTime, err := model.ParseTimeOfDay(cfg.Scheduling.ReleaseTime)
	if err != nil {
		return err
	}
	rules := policy.New(policy.Config{
		Location:      location,
		ReleaseTime:   releaseTime,
		CooldownDays:  cfg.Scheduling.CooldownDays,
		OpeningMargin: cfg.Scheduling.OpeningMargin,
		ClosingMargin: cfg.Scheduling.ClosingMargin,
	})

	response.SetLimits(releaseTime, cfg.Scheduling.CooldownDays, cfg.Scheduling.CancelLeadTime)

	svc := service.NewAvailabilityService(store, people, settings, rules, publisher, logger.Named("availability"),
		service.WithCancelLeadTime(cfg.Scheduling.CancelLeadTime),
		service.WithDefaultHours(hours))
	reconciler := service.NewStatusReconciler(store, location, publisher, logger.Named("reconciler"), nil)

	scheduler, err := app.NewScheduler(location, locker, logger.Named("scheduler"),
		app.Job{
			Name:       service.JobCompleteElapsed,
			Spec:       cfg.Jobs.CompletionSchedule,
			RunOnStart: true,
			Run:        reconciler.CompleteElapsed,
		},
		app.Job{
			Name: service.JobResetSlots,
			Spec: cfg.Jobs.ResetSchedule,
			Run:  reconciler.ResetSlots,
		},
	)
	if err != nil {
		return err
	}

	router := httpserver.NewRouter(logger, svc, broadcaster, cfg.HTTPServer)
	server := httpserver.NewServer(router, cfg.HTTPServer)

	supervisor := app.NewSupervisor(logger, cfg.HTTPServer.ShutdownTimeout)
	supervisor.AddWorker(scheduler)
	if relay != nil {
		supervisor.AddWorker(relay)
	}
	supervisor.AddAPI(app.NewHTTPService(server, cfg.HTTPServer.ShutdownTimeout))

	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token)
		if err != nil {
			logger.Warn("Telegram disabled", zap.Error(err))
		} else {
			supervisor.AddAPI(controller.NewBotController(b, svc, location, logger))
			if len(cfg.Telegram.AdminChats) > 0 {
				supervisor.AddWorker(controller.NewNotifier(broadcaster, b, controller.NotifierConfig{
					Chats: cfg.Telegram.AdminChats,
					Rate:  cfg.Telegram.NotifyRate,
					Burst: cfg.Telegram.NotifyBurst,
				}, logger))
			}
		}
	}

	logger.Info("HTTP server listening", zap.String("address", cfg.HTTPServer.Address))
	return supervisor.Serve(ctx)
}

// openStorage returns the transactional store plus the person directory and
// settings backends for the configured storage kind.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (
	repository.Store, repository.PersonDirectory, repository.SettingsStore, func(), error,
) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage; data is lost on restart")
		return memory.NewStore(), memory.NewDirectory(), memory.NewSettings(nil), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, nil, err
	}
	logger.Info("Database connected")

	if cfg.MigrationsEnabled {
		migrator, err := app.NewMigrator(pool, logger.Named("migrator"))
		if err != nil {
			pool.Close()
			return nil, nil, nil, nil, err
		}
		err = migrator.Run(ctx)
		migrator.Close()
		if err != nil {
			pool.Close()
			return nil, nil, nil, nil, err
		}
	}

	return repository.NewPgStore(pool),
		repository.NewPersonRepository(pool),
		repository.NewSettingsRepository(pool),
		pool.Close,
		nil
}

// instanceID tags relayed events and lock values with this replica.
func instanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "barbearia"
	}
	return host + "-" + uuid.NewString()[:8]
}
