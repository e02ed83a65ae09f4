package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/vulnrecord/pkg/config"
	"github.com/user/vulnrecord/pkg/engine"
	"github.com/user/vulnrecord/pkg/logging"
	"github.com/user/vulnrecord/pkg/metrics"
	"github.com/user/vulnrecord/pkg/notify"
	"github.com/user/vulnrecord/pkg/schema"
	"github.com/user/vulnrecord/pkg/store"
)

// app holds the collaborators shared by the pipeline commands.
type app struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	validator *schema.Validator
	store     store.Store
	publisher *notify.Publisher
	parser    *engine.Parser
	ingestor  *engine.Ingestor
}

func newApp(ctx context.Context) (*app, error) {
	log, err := logging.New(DebugMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	cfg, err := config.LoadRuntime()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	v, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, cfg.Store.Capacity, v, log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, registry: reg, metrics: m, validator: v, store: st}
	a.parser = engine.NewParser(log)
	a.parser.SetMetrics(m)
	a.ingestor = engine.NewIngestor(a.parser, st, log)
	a.ingestor.SetMetrics(m)

	if cfg.Nats.URL != "" {
		pub, err := notify.Connect(cfg.Nats.URL, cfg.Nats.Subject, log)
		if err != nil {
			// Events are optional; the pipeline still runs.
			log.Warnw("NATS unavailable, report events disabled", "url", cfg.Nats.URL, "error", err)
		} else {
			a.publisher = pub
			a.ingestor.SetPublisher(pub)
		}
	}
	return a, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if err := a.store.Close(); err != nil {
		a.log.Warnw("Failed to close store", "error", err)
	}
	_ = a.log.Sync()
}
