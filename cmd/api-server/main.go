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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/vet-appointment-scheduling/internal/api"
	"github.com/hackgods/vet-appointment-scheduling/internal/appointment"
	"github.com/hackgods/vet-appointment-scheduling/internal/auth"
	"github.com/hackgods/vet-appointment-scheduling/internal/config"
	"github.com/hackgods/vet-appointment-scheduling/internal/db"
	"github.com/hackgods/vet-appointment-scheduling/internal/events"
	"github.com/hackgods/vet-appointment-scheduling/internal/logger"
	"github.com/hackgods/vet-appointment-scheduling/internal/metrics"
	"github.com/hackgods/vet-appointment-scheduling/internal/practitioner"
	redisclient "github.com/hackgods/vet-appointment-scheduling/internal/redis"
	"github.com/hackgods/vet-appointment-scheduling/internal/telemetry"
)

const serviceName = "vet-scheduling"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("api-server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	log.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("http_port", cfg.HTTPPort),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(rootCtx, telemetry.Config{
		Enabled:     cfg.OTelEnabled,
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: serviceName,
		Version:     cfg.Version,
		SampleRate:  cfg.OTelSampleRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	loc, err := cfg.Business.Location()
	if err != nil {
		return err
	}
	policy, err := appointment.NewPolicy(
		cfg.Business.OpeningHour,
		cfg.Business.ClosingHour,
		cfg.Business.SlotMinutes,
		cfg.Business.CancelNoticeHours,
		loc,
	)
	if err != nil {
		return err
	}

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, cfg.PostgresPool.Options())
	cancelPg()
	if err != nil {
		return err
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	if cfg.MigrateOnStart {
		if err := db.Migrate(rootCtx, pgPool, log); err != nil {
			return err
		}
	}

	var (
		locker redisclient.Locker
		rdb    *redis.Client
	)
	if cfg.RedisEnabled {
		rdb, err = redisclient.NewRedisClient(rootCtx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("error closing redis", zap.Error(err))
			}
		}()
		locker = redisclient.NewRedisLocker(rdb, cfg.LockTTL, cfg.LockWait)
		log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
	} else {
		locker = redisclient.NewLocalLocker(cfg.LockWait)
		log.Warn("redis disabled, using in-process locks; run a single instance only")
	}

	checks := []api.DependencyCheck{{Name: "postgres", Critical: true, Ping: pgPool.Ping}}
	if rdb != nil {
		checks = append(checks, api.DependencyCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	publishers := events.Fanout{events.NewPgLog(pgPool)}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer amqpPub.Close()
		publishers = append(publishers, amqpPub)
		checks = append(checks, api.DependencyCheck{Name: "rabbitmq", Ping: amqpPub.Ping})
		log.Info("publishing events to RabbitMQ", zap.String("exchange", cfg.AMQPExchange))
	}

	collector := metrics.NewCollector("vet")

	practitioners := practitioner.NewService(practitioner.NewPgRepository(pgPool), log.Named("practitioner"))
	appointments := appointment.NewService(
		appointment.NewPgRepository(pgPool),
		practitioner.Lookup(practitioners),
		locker,
		policy,
		appointment.WithPublisher(publishers),
		appointment.WithObserver(collector),
		appointment.WithLogger(log.Named("appointment")),
		appointment.WithTracer(tp.Tracer(serviceName)),
		appointment.WithLookupTimeout(cfg.PractitionerLookupTimeout),
	)

	var validator auth.Validator
	if cfg.AuthEnabled {
		validator = auth.NewClient(cfg.IdentityURL, cfg.AuthTimeout, log.Named("auth"))
	} else {
		log.Warn("authentication disabled")
	}

	router := api.NewRouter(api.RouterConfig{
		Appointments:  appointments,
		Practitioners: practitioners,
		Health:        api.NewHealthHandler(cfg.Env, cfg.Version, checks...),
		Metrics:       collector,
		Validator:     validator,
		Location:      loc,
		Logger:        log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-rootCtx.Done():
	}

	log.Info("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
