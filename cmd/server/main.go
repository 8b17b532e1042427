package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	attendancehandler "timeclock/internal/attendance/handler"
	attendancemetrics "timeclock/internal/attendance/metrics"
	attendanceservice "timeclock/internal/attendance/service"
	auditstore "timeclock/internal/attendance/store/audit"
	entrystore "timeclock/internal/attendance/store/entry"
	"timeclock/internal/platform/config"
	"timeclock/internal/platform/httpserver"
	"timeclock/internal/platform/jwttoken"
	"timeclock/internal/platform/lock"
	"timeclock/internal/platform/logger"
	"timeclock/internal/platform/postgres"
	"timeclock/internal/platform/redis"
	httptransport "timeclock/internal/transport/http"
)

// main wires dependencies and owns their lifecycle. Business logic lives in
// the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Single-instance deployments without Redis fall back to the in-process
	// locker; the database's partial unique indexes stay authoritative either
	// way.
	var locker lock.Locker = lock.NewMemory()
	if redisClient != nil {
		locker = lock.NewRedis(redisClient.Client)
	}

	svc := attendanceservice.New(
		entrystore.NewPostgres(db),
		auditstore.NewPostgres(db),
		attendanceservice.WithTx(newAttendancePostgresTx(db)),
		attendanceservice.WithLocker(locker),
		attendanceservice.WithLogger(log),
		attendanceservice.WithMetrics(attendancemetrics.New()),
	)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)
	router := httptransport.NewRouter(httptransport.Dependencies{
		Attendance: attendancehandler.New(svc, log),
		Tokens:     tokens,
		Logger:     log,
		DBHealth:   db.PingContext,
		RedisHealth: func(ctx context.Context) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Health(ctx)
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := httpserver.New(cfg.MetricsAddr, metricsMux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting timeclock server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting metrics server", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
