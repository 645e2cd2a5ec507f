// Command server runs the payshield API: contract ledgers, invoice
// processing, and the threat intelligence network endpoints.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	analyticsHandler "payshield/internal/analytics/handler"
	analyticsService "payshield/internal/analytics/service"
	"payshield/internal/audit"
	"payshield/internal/contract"
	"payshield/internal/contract/jsonbackend"
	invoiceCache "payshield/internal/invoice/cache"
	invoiceHandler "payshield/internal/invoice/handler"
	invoiceService "payshield/internal/invoice/service"
	invoiceStore "payshield/internal/invoice/store"
	jwttoken "payshield/internal/jwt_token"
	mandateHandler "payshield/internal/mandate/handler"
	mandateService "payshield/internal/mandate/service"
	"payshield/internal/platform/config"
	"payshield/internal/platform/httpserver"
	"payshield/internal/platform/logger"
	"payshield/internal/platform/metrics"
	platformredis "payshield/internal/platform/redis"
	"payshield/internal/platform/tracing"
	threatHandler "payshield/internal/threat/handler"
	"payshield/internal/threat/publisher"
	threatService "payshield/internal/threat/service"
	treasuryHandler "payshield/internal/treasury/handler"
	treasuryService "payshield/internal/treasury/service"
	vendorHandler "payshield/internal/vendors/handler"
	vendorService "payshield/internal/vendors/service"
	vendorStore "payshield/internal/vendors/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("init tracing", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("shutdown tracing", "error", err.Error())
		}
	}()

	m := metrics.New()

	// Contract backend: the JSON-file ledgers, registered as the process
	// default so any late consumer resolves the same instance.
	backend, err := jsonbackend.New(cfg.ContractsDir,
		jsonbackend.WithLogger(log),
		jsonbackend.WithMetrics(m),
	)
	if err != nil {
		log.Error("init contract backend", "error", err.Error())
		os.Exit(1)
	}
	contract.SetDefault(backend)

	// Postgres is optional; without it the stores fall back to memory.
	var db *sql.DB
	if cfg.PostgresURL != "" {
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("open postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err.Error())
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("init redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var threatFeed publisher.Publisher = publisher.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := publisher.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.ThreatTopic, log)
		if err != nil {
			log.Error("init kafka publisher", "error", err.Error())
			os.Exit(1)
		}
		threatFeed = kafka
	}
	defer threatFeed.Close()

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "payshield", "payshield-api")
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	var vendors vendorStore.Store = vendorStore.NewMemory()
	var invoices invoiceStore.Store = invoiceStore.NewMemory()
	if db != nil {
		vendors = vendorStore.NewPostgres(db)
		invoices = invoiceStore.NewPostgres(db)
	}

	trail := audit.NewTrail(256, log)
	auditStore := audit.NewMemory(1000)
	auditWorker := audit.NewWorker(auditStore, trail, log)
	go func() {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err.Error())
		}
	}()

	vendorSvc := vendorService.New(vendors, log)
	threatSvc := threatService.New(backend, threatFeed, log, cfg.ReporterID, cfg.FraudBlockThreshold)
	mandateSvc := mandateService.New(backend, log)
	treasurySvc := treasuryService.New(backend, log, treasuryService.WithAudit(trail))
	invoiceSvc := invoiceService.New(invoiceService.Config{
		Store:          invoices,
		Vendors:        vendorSvc,
		Network:        threatSvc,
		Backend:        backend,
		Cache:          invoiceCache.New(redisClient, cfg.Redis.VendorRiskTTL),
		Audit:          trail,
		Logger:         log,
		Metrics:        m,
		BlockThreshold: cfg.FraudBlockThreshold,
		HoldThreshold:  cfg.FraudHoldThreshold,
	})
	analyticsSvc := analyticsService.New(backend, vendorSvc, log,
		analyticsService.WithAuditStore(auditStore))

	router := chi.NewRouter()
	vendorHandler.New(vendorSvc, log, m, jwtValidator).Register(router)
	threatHandler.New(threatSvc, log, m, jwtValidator).Register(router)
	mandateHandler.New(mandateSvc, log, m, jwtValidator).Register(router)
	treasuryHandler.New(treasurySvc, log, m, jwtValidator).Register(router)
	invoiceHandler.New(invoiceSvc, log, m, jwtValidator).Register(router)
	analyticsHandler.New(analyticsSvc, log, m, jwtValidator).Register(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, otelhttp.NewHandler(router, "payshield"))

	log.Info("starting payshield", "addr", cfg.Addr, "contracts_dir", cfg.ContractsDir)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
