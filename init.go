package main

import (
	"context"

	"github.com/tournevent/upslink/internal/config"
	"github.com/tournevent/upslink/internal/telemetry"
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/mock"
	"github.com/tournevent/upslink/pkg/shipper/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := connection.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
	return shutdown, err
}

func tracerFor(cfg *config.Config) trace.Tracer {
	return otel.GetTracerProvider().Tracer(cfg.ServiceName)
}

func initUPSClient(cfg *config.Config, logger *otelzap.Logger) *ups.Client {
	return ups.New(cfg.UPS(), logger, tracerFor(cfg))
}

func initShipperRegistry(cfg *config.Config, logger *otelzap.Logger) *shipper.Registry {
	registry := shipper.NewRegistry()

	if cfg.UPSEnabled {
		registry.Register(ups.NewCarrier(initUPSClient(cfg, logger)))
	}

	if cfg.MockCarrierEnabled {
		registry.Register(mock.New("mock"))
	}

	return registry
}
