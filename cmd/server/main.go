package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "volunteerhub/internal/jwt_token"
	"volunteerhub/internal/leaderboard"
	participationhandler "volunteerhub/internal/participation/handler"
	participationmetrics "volunteerhub/internal/participation/metrics"
	"volunteerhub/internal/participation/service"
	"volunteerhub/internal/participation/store/memory"
	"volunteerhub/internal/participation/store/postgres"
	"volunteerhub/internal/platform/config"
	"volunteerhub/internal/platform/httpserver"
	"volunteerhub/internal/platform/logger"
	"volunteerhub/internal/platform/metrics"
	"volunteerhub/internal/platform/redis"
	"volunteerhub/pkg/platform/audit"
	"volunteerhub/pkg/platform/audit/outbox"
	"volunteerhub/pkg/platform/audit/publisher"
	kafkastore "volunteerhub/pkg/platform/audit/store/kafka"
	auditpostgres "volunteerhub/pkg/platform/audit/store/postgres"
	"volunteerhub/pkg/platform/audit/store/logstore"
	"volunteerhub/pkg/platform/httputil"
	"volunteerhub/pkg/platform/middleware/auth"
	"volunteerhub/pkg/platform/middleware/request"
	"volunteerhub/pkg/platform/middleware/requesttime"
)

const shutdownTimeout = 10 * time.Second

// outboxStore is written by the service inside its transactions and drained
// by the relay.
type outboxStore interface {
	service.Outbox
	outbox.Source
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run wires dependencies and serves until ctx is cancelled.
func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tx, stores, complianceOutbox, closeStore, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	board, closeBoard, err := buildLeaderboard(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBoard()

	auditStore, closeAudit, err := buildAuditStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.AuditBuffer),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()
	relay := outbox.NewRelay(complianceOutbox, auditStore,
		outbox.WithLogger(log),
		outbox.WithInterval(cfg.OutboxInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
	)

	svc, err := service.New(tx, stores,
		service.WithLogger(log),
		service.WithOutbox(complianceOutbox),
		service.WithAuditPublisher(auditPublisher),
		service.WithLeaderboard(board),
		service.WithMetrics(participationmetrics.New(reg)),
		service.WithSessionCap(cfg.SessionHoursCap),
	)
	if err != nil {
		return fmt.Errorf("build participation service: %w", err)
	}
	if err := svc.SeedBadges(ctx); err != nil {
		return fmt.Errorf("seed badges: %w", err)
	}
	if err := svc.RebuildLeaderboard(ctx); err != nil {
		log.Warn("leaderboard rebuild failed", "error", err)
	}

	validator := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience))
	httpMetrics := metrics.New(reg)

	router := chi.NewRouter()
	router.Use(request.RequestID)
	router.Use(requesttime.Middleware)
	router.Use(chimiddleware.Recoverer)
	router.Use(httpMetrics.Middleware)
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(validator, log))
		participationhandler.New(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return relay.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting volunteerhub", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildStores selects Postgres when DATABASE_URL is set and the in-memory
// store otherwise. The compliance outbox lives in the same database.
func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (service.StoreTx, service.Stores, outboxStore, func(), error) {
	if cfg.Database.URL == "" {
		log.Info("using in-memory participation store")
		db := memory.NewDB(memory.WithTxTimeout(cfg.TxTimeout))
		return db, service.Stores{
			Participations: db.Participations(),
			TimeLogs:       db.TimeLogs(),
			Events:         db.Events(),
			Users:          db.Users(),
			Badges:         db.Badges(),
		}, db.Outbox(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, service.Stores{}, nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLife)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, service.Stores{}, nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, service.Stores{}, nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}
	if err := auditpostgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, service.Stores{}, nil, nil, fmt.Errorf("migrate audit outbox: %w", err)
	}
	log.Info("using postgres participation store")
	return postgres.NewTx(db, cfg.TxTimeout), service.Stores{
		Participations: postgres.NewParticipationStore(db),
		TimeLogs:       postgres.NewTimeLogStore(db),
		Events:         postgres.NewEventStore(db),
		Users:          postgres.NewUserStore(db),
		Badges:         postgres.NewBadgeStore(db),
	}, auditpostgres.New(db), func() { _ = db.Close() }, nil
}

func buildLeaderboard(ctx context.Context, cfg config.Server, log *slog.Logger) (service.Leaderboard, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		log.Info("using in-memory leaderboard")
		return leaderboard.NewInMemory(), func() {}, nil
	}
	log.Info("using redis leaderboard")
	return leaderboard.NewRedis(client.Client, leaderboard.DefaultKey), func() { _ = client.Close() }, nil
}

// buildAuditStore streams audit events to Kafka when brokers are configured
// and writes them to the structured log otherwise. It is the sink for both
// the post-commit publisher and the outbox relay.
func buildAuditStore(cfg config.Server, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return logstore.New(log), func() {}, nil
	}
	client, err := kafkastore.NewClient(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.AuditTopic)
	if err != nil {
		return nil, nil, fmt.Errorf("connect kafka: %w", err)
	}
	log.Info("streaming audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	return kafkastore.New(client, cfg.Kafka.AuditTopic), client.Close, nil
}
