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

	"golang.org/x/sync/errgroup"

	"dvi/internal/audit"
	"dvi/internal/authz"
	bodyhandler "dvi/internal/body/handler"
	bodymetrics "dvi/internal/body/metrics"
	bodyservice "dvi/internal/body/service"
	httpapi "dvi/internal/http"
	idhandler "dvi/internal/identification/handler"
	idmetrics "dvi/internal/identification/metrics"
	idservice "dvi/internal/identification/service"
	jwttoken "dvi/internal/jwt_token"
	morguehandler "dvi/internal/morgue/handler"
	morgueservice "dvi/internal/morgue/service"
	"dvi/internal/platform/config"
	"dvi/internal/platform/httpserver"
	"dvi/internal/platform/logger"
	"dvi/internal/platform/metrics"
	recoveryhandler "dvi/internal/recovery/handler"
	recoverymetrics "dvi/internal/recovery/metrics"
	recoveryservice "dvi/internal/recovery/service"
	reportshandler "dvi/internal/reports/handler"
	reportsmetrics "dvi/internal/reports/metrics"
	reportsservice "dvi/internal/reports/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("dvi server stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the process: config, storage, adapters, services, router, and
// the audit relay. It returns when the server and relay have both stopped.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	auditMetrics := audit.NewMetrics()
	publisher := audit.NewPublisher(audit.WithLogger(log), audit.WithMetrics(auditMetrics))
	policy := authz.NewRolePolicy(authz.DefaultGrants(), authz.WithLogger(log))
	persons, locations, tracker := buildAdapters(cfg, infra, log)

	recovery := recoveryservice.New(infra.store, policy, persons, locations,
		recoveryservice.WithLogger(log),
		recoveryservice.WithMetrics(recoverymetrics.New()),
		recoveryservice.WithAuditPublisher(publisher),
	)
	morgues := morgueservice.New(infra.store, policy, locations,
		morgueservice.WithLogger(log),
		morgueservice.WithAuditPublisher(publisher),
	)
	bodies := bodyservice.New(infra.store, policy, persons, locations, tracker,
		bodyservice.WithLogger(log),
		bodyservice.WithMetrics(bodymetrics.New()),
		bodyservice.WithAuditPublisher(publisher),
	)
	claims := idservice.New(infra.store, policy, persons,
		idservice.WithLogger(log),
		idservice.WithMetrics(idmetrics.New()),
		idservice.WithAuditPublisher(publisher),
	)
	reports := reportsservice.New(infra.store,
		reportsservice.WithLogger(log),
		reportsservice.WithMetrics(reportsmetrics.New()),
	)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Metrics:        metrics.New(),
		Tokens:         tokens,
		RequestTimeout: cfg.Server.RequestTimeout,
		Health:         infra.health,
	},
		recoveryhandler.New(recovery, log),
		morguehandler.New(morgues, log),
		bodyhandler.New(bodies, log),
		idhandler.New(claims, log),
		reportshandler.New(reports, log),
	)

	producer, err := buildProducer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer producer.Close()
	relay := audit.NewRelay(infra.store, producer,
		audit.WithRelayLogger(log),
		audit.WithRelayMetrics(auditMetrics),
		audit.WithBatch(cfg.Kafka.RelayBatch),
		audit.WithPeriod(cfg.Kafka.RelayPeriod),
	)

	srv := httpserver.New(cfg.Server.Addr, router)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting dvi server", "addr", cfg.Server.Addr, "store", cfg.Database.Store, "tracker", cfg.Tracker.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
