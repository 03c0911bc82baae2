package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/config"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/executor"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/httpclient"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/observability"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/server"
	"github.com/mohammed-shakir/biomart-gateway/internal/logger"
	"github.com/mohammed-shakir/biomart-gateway/internal/metrics"
	"github.com/mohammed-shakir/biomart-gateway/internal/queryevents"
	"github.com/mohammed-shakir/biomart-gateway/internal/scenarios"
	_ "github.com/mohammed-shakir/biomart-gateway/internal/scenarios/cached"
	_ "github.com/mohammed-shakir/biomart-gateway/internal/scenarios/direct"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// ready reports the gateway as serving once the backend is wired.
type ready struct{ scenario string }

func (r ready) Readiness() (bool, string) { return true, r.scenario }

func run() int {
	// overriding scenario via flag
	scenarioFlag := flag.String("scenario", "", "scenario name")
	flag.Parse()

	cfg := config.FromEnv()
	if *scenarioFlag != "" {
		cfg.Scenario = strings.TrimSpace(*scenarioFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		SampleN:   envInt("LOG_SAMPLE_N", 0),
		Scenario:  cfg.Scenario,
		Component: "gateway",
	}, os.Stdout)

	appLog := logger.NewSlog(&zl)

	observability.SetScenario(cfg.Scenario)
	appLog.Info("starting gateway",
		"addr", cfg.Addr,
		"version", Version,
		"mart", cfg.MartURL,
		"scenario", cfg.Scenario)

	httpClient := httpclient.NewOutbound(cfg.MartTimeout)

	exec, err := executor.New(appLog, httpClient, cfg.MartURL)
	if err != nil {
		appLog.Error("failed to initialize executor", "err", err)
		return 1
	}

	// selected scenario
	backend, err := scenarios.New(cfg.Scenario, cfg, appLog, exec)
	if err != nil {
		appLog.Error("scenario setup failed", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := server.Options{Ready: ready{scenario: cfg.Scenario}}

	if cfg.Metrics.Enabled {
		p := metrics.Init(metrics.Config{
			Enabled: true,
			Addr:    cfg.Metrics.Addr,
			Path:    cfg.Metrics.Path,
			Build: metrics.BuildInfo{
				Version:   os.Getenv("BUILD_VERSION"),
				Revision:  os.Getenv("BUILD_REVISION"),
				Branch:    os.Getenv("BUILD_BRANCH"),
				BuildDate: os.Getenv("BUILD_DATE"),
			},
		})

		observability.Init(p.Registerer(), true)
		observability.SetScenario(cfg.Scenario)
		opts.Metrics = p.Handler()

		srv := p.Server(cfg.Metrics.Addr, cfg.Metrics.Path)

		// start server
		go func() {
			log.Printf("metrics: listening on %s%s", cfg.Metrics.Addr, cfg.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server exited: %v", err)
			}
		}()

		// shutdown on signal
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("metrics: shutdown error: %v", err)
			}
		}()
	} else {
		observability.Init(nil, false)
	}

	if cfg.Events.Enabled {
		pub, err := queryevents.NewPublisher(
			strings.Split(cfg.Events.Brokers, ","),
			cfg.Events.Topic,
			cfg.Events.Queue,
		)
		if err != nil {
			// events are best effort; run without them
			appLog.Warn("query event publisher unavailable", "err", err)
		} else {
			queryevents.InitGlobal(pub)
			defer func() {
				if err := queryevents.CloseGlobal(); err != nil {
					appLog.Warn("query event publisher close", "err", err)
				}
			}()
		}
	}

	if err := server.Run(ctx, cfg, appLog, backend, opts); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
