package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/subsurfacelabs/potfield/config"
	"github.com/subsurfacelabs/potfield/core"
	"github.com/subsurfacelabs/potfield/internal/api"
	"github.com/subsurfacelabs/potfield/internal/logging"
	"github.com/subsurfacelabs/potfield/internal/observability"
	"github.com/subsurfacelabs/potfield/kb"
	"github.com/subsurfacelabs/potfield/model"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML server configuration file")
	httpAddr := flag.String("http-addr", "", "Override for the HTTP listen address")
	metricsAddr := flag.String("metrics-addr", "", "Override for the Prometheus /metrics address")
	scenarioPath := flag.String("scenario", "", "Override for the JSON survey scenario preloaded at startup")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootstrapFail("failed to load config", err)
	}
	if *httpAddr != "" {
		cfg.Server.HTTPAddr = *httpAddr
	}
	if *metricsAddr != "" {
		cfg.Server.MetricsAddr = *metricsAddr
	}
	if *scenarioPath != "" {
		cfg.Survey.ScenarioPath = *scenarioPath
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	collector, err := observability.NewCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(cfg.Server.MetricsAddr, collector, log)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	store := kb.NewModelStore()
	store.Subscribe(func(kb.Event) {
		collector.SetModelCounts(store.Counts())
	})

	ambient := model.AmbientField{
		InclinationDeg: cfg.Survey.AmbientInclination,
		DeclinationDeg: cfg.Survey.AmbientDeclination,
	}
	if cfg.Survey.ScenarioPath != "" {
		scenario := loadScenario(ctx, log, store, cfg.Survey.ScenarioPath)
		if scenario.Ambient != (model.AmbientField{}) {
			ambient = scenario.Ambient
		}
	}

	engine := core.NewEngine(cfg.Survey.Workers, log, collector)
	server := api.NewServer(store, engine, ambient, log)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: server.Handler(collector),
	}

	log.Info(ctx, "starting field server",
		logging.String("addr", cfg.Server.HTTPAddr),
		logging.Float64("ambient_inclination", ambient.InclinationDeg),
		logging.Float64("ambient_declination", ambient.DeclinationDeg),
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down field server")
	grace := time.Duration(cfg.Server.ShutdownGraceSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func loadScenario(ctx context.Context, log logging.Logger, store *kb.ModelStore, path string) *core.SurveyScenario {
	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "failed to open survey scenario", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	scenario, err := core.LoadSurveyScenario(store, f)
	if err != nil {
		log.Error(ctx, "failed to load survey scenario", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info(ctx, "loaded survey scenario",
		logging.String("path", path),
		logging.Int("spheres", len(scenario.SphereIDs)),
		logging.Int("points", scenario.Obs.Len()),
	)
	return scenario
}

func serveMetrics(addr string, collector *observability.Collector, log logging.Logger) *http.Server {
	if collector == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func bootstrapFail(msg string, err error) {
	log := logging.NewFromEnv()
	log.Error(context.Background(), msg, logging.String("error", err.Error()))
	os.Exit(1)
}
