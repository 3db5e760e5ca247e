package main

import (
	"context"
	"fmt"
	"log/slog"

	"signup/internal/platform/config"
	"signup/internal/platform/health"
	"signup/internal/platform/kafka"
	"signup/internal/platform/kafka/producer"
	"signup/internal/platform/redis"
	"signup/internal/platform/tracer"
	"signup/internal/registration/metrics"
	"signup/internal/registration/orchestrator"
	"signup/internal/registration/postalcode"
	"signup/internal/registration/sink"
	"signup/pkg/platform/circuit"
)

// dependencies holds the external collaborators main owns and must release.
type dependencies struct {
	lookups  postalcode.Client
	sink     orchestrator.Sink
	redis    *redis.Client
	producer *producer.Producer
}

func (d *dependencies) Close() {
	if d.producer != nil {
		_ = d.producer.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

func buildDependencies(ctx context.Context, cfg config.Server, log *slog.Logger, m *metrics.Metrics, t tracer.Tracer, h *health.Handler) (*dependencies, error) {
	deps := &dependencies{}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		deps.redis = rdb
		h.RegisterCheck("redis", rdb.Health)
		log.Info("postal code cache enabled", "ttl", cfg.Lookup.CacheTTL)
	}

	deps.lookups = buildLookups(cfg.Lookup, rdb, log, m, t)

	snk, prod, err := buildSink(cfg.Sink, log)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.sink = snk
	if prod != nil {
		deps.producer = prod
		h.RegisterCheck("kafka", prod.Health)
	}
	return deps, nil
}

// buildLookups layers tracing over the optional cache over ViaCEP.
func buildLookups(cfg config.LookupConfig, rdb *redis.Client, log *slog.Logger, m *metrics.Metrics, t tracer.Tracer) postalcode.Client {
	breaker := circuit.New("viacep",
		circuit.WithFailureThreshold(cfg.FailureThreshold),
		circuit.WithCooldown(cfg.Cooldown),
	)
	var client postalcode.Client = postalcode.NewViaCEPClient(postalcode.ViaCEPConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Breaker: breaker,
		Metrics: m,
		Logger:  log,
	})
	if rdb != nil {
		client = postalcode.NewCachedClient(client, rdb, cfg.CacheTTL, m, log)
	}
	return postalcode.NewTraced(client, t)
}

func buildSink(cfg config.SinkConfig, log *slog.Logger) (orchestrator.Sink, *producer.Producer, error) {
	switch cfg.Kind {
	case config.SinkMemory:
		return sink.NewMemory(), nil, nil
	case config.SinkLog:
		return sink.NewLog(log), nil, nil
	case config.SinkKafka:
		prod, err := producer.New(kafka.DefaultProducerConfig(cfg.KafkaBrokers), log)
		if err != nil {
			return nil, nil, fmt.Errorf("create kafka producer: %w", err)
		}
		return sink.NewKafka(prod, cfg.Topic), prod, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink %q", cfg.Kind)
	}
}
