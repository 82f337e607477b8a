// Package main is the entrypoint for the vehicle service.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/fleetlink/fleetlink/internal/config"
	"github.com/fleetlink/fleetlink/internal/customerclient"
	"github.com/fleetlink/fleetlink/internal/discovery"
	"github.com/fleetlink/fleetlink/internal/handler"
	"github.com/fleetlink/fleetlink/internal/logging"
	"github.com/fleetlink/fleetlink/internal/metrics"
	"github.com/fleetlink/fleetlink/internal/repository"
	"github.com/fleetlink/fleetlink/internal/server"
	"github.com/fleetlink/fleetlink/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadVehicle()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", logging.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", logging.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize service registry
	registry, err := discovery.Open(ctx, cfg.RedisURL, cfg.RegistryTTL, logger)
	if err != nil {
		logger.Error("failed to connect to Redis",
			slog.String("error", logging.SanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", logging.RedactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	var resolver discovery.Resolver
	if cfg.UsesStaticCustomerURL() {
		resolver = discovery.StaticResolver(cfg.CustomerServiceURL)
		logger.Info("customer service at fixed URL", "url", cfg.CustomerServiceURL)
	} else {
		resolver = registry.Resolver(cfg.CustomerServiceName)
		logger.Info("customer service resolved through registry", "name", cfg.CustomerServiceName)
	}

	// Initialize services
	recorder := metrics.NewInMemory()
	customers := customerclient.New(resolver, customerclient.Options{
		ConnectTimeout: cfg.CustomerConnectTimeout,
		ReadTimeout:    cfg.CustomerReadTimeout,
		Recorder:       recorder,
	})
	enrichment := service.NewEnrichmentService(repo, customers, recorder, logger)
	vehicles := service.NewVehicleService(repo, recorder)

	router := handler.NewVehicleRouter(handler.RouterConfig{
		ServiceName:        cfg.ServiceName,
		Logger:             logger,
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		Metrics:            recorder,
		Checks: []handler.Check{
			{Name: "postgres", Checker: repo},
			{Name: "redis", Checker: registry},
		},
	}, handler.NewVehicleHandler(enrichment, vehicles, logger))

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return registry.Close()
	})

	// Register this instance so other services can find it
	stopRegistration, err := registry.Announce(ctx, discovery.NewInstance(cfg.ServiceName, cfg.AdvertiseURL))
	if err != nil {
		logger.Error("failed to register instance", "error", err)
		_ = registry.Close()
		repo.Close()
		os.Exit(1)
	}
	srv.OnShutdown("registration", stopRegistration)

	logger.Info("starting vehicle service",
		"port", cfg.AppPort,
		"advertise_url", cfg.AdvertiseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
