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

	"github.com/cmlabs-hris/hris-finalization-go/internal/config"
	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	appHTTP "github.com/cmlabs-hris/hris-finalization-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/idempotency"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-finalization-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-finalization-go/internal/repository/postgresql"
	finalizationService "github.com/cmlabs-hris/hris-finalization-go/internal/service/finalization"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	finalizationSvc, closeStorage, err := newFinalizationService(cfg)
	if err != nil {
		slog.Error("Error initializing storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			slog.Warn("Redis unreachable, idempotency keys will not be honored until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		cancel()
	} else {
		slog.Info("REDIS_ADDR not set, idempotency cache disabled")
	}
	idempotencyStore := idempotency.NewStore(rdb, cfg.Redis.IdempotencyTTL)

	scheduler := cron.NewScheduler()
	cron.NewFinalizationJobs(finalizationSvc, cfg.Finalization.RepairBatchLimit).
		RegisterJobs(scheduler, cfg.Finalization.RepairInterval)
	scheduler.Start()
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	finalizationHandler := appHTTP.NewFinalizationHandler(finalizationSvc)
	router := appHTTP.NewRouter(cfg, JWTService, finalizationHandler, idempotencyStore)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

// newFinalizationService wires the engine to the configured storage driver.
func newFinalizationService(cfg *config.Config) (finalization.FinalizationService, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		if cfg.Storage.SeedFile == "" {
			slog.Warn("Memory storage starts empty; use it for tests and demos only")
		} else {
			if err := store.LoadSeedFile(cfg.Storage.SeedFile); err != nil {
				return nil, nil, err
			}
			slog.Info("Memory storage seeded", "file", cfg.Storage.SeedFile)
		}
		svc := finalizationService.NewFinalizationService(
			store.UnitOfWork(),
			store.Employees(),
			store.TimeEntries(),
			store.AttendanceExceptions(),
			store.LeaveRequests(),
			store.Salaries(),
			store.FinalizationRecords(),
			store.TimesheetSubmissions(),
			store.LeaveTransactionRecords(),
		)
		return svc, func() {}, nil

	default:
		db, err := database.NewPostgreSQLDBWithOptions(cfg.DatabaseURL(), database.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		svc := finalizationService.NewFinalizationService(
			postgresql.NewUnitOfWork(db),
			postgresql.NewEmployeeRepository(db),
			postgresql.NewTimeEntryRepository(db),
			postgresql.NewAttendanceExceptionRepository(db),
			postgresql.NewLeaveRequestRepository(db),
			postgresql.NewSalaryRepository(db),
			postgresql.NewFinalizationRepository(db),
			postgresql.NewTimesheetRepository(db),
			postgresql.NewLeaveTransactionRepository(db),
		)
		return svc, db.Close, nil
	}
}
