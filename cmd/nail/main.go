// Command nail plays a text adventure by running the decision-module
// arbiter against a single environment session until the game ends or
// the step budget is exhausted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nail-agent/nail/internal/affordance"
	"github.com/nail-agent/nail/internal/agent"
	"github.com/nail-agent/nail/internal/agent/modules"
	"github.com/nail-agent/nail/internal/config"
	"github.com/nail-agent/nail/internal/engine"
	"github.com/nail-agent/nail/internal/engine/instrumented"
	"github.com/nail-agent/nail/internal/engine/mock"
	"github.com/nail-agent/nail/internal/engine/resilient"
	"github.com/nail-agent/nail/internal/engine/textenv"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/fuzzy"
	"github.com/nail-agent/nail/internal/health"
	"github.com/nail-agent/nail/internal/kg"
	"github.com/nail-agent/nail/internal/kgstore/postgres"
	"github.com/nail-agent/nail/internal/mcpintrospect"
	"github.com/nail-agent/nail/internal/ngram"
	ngrammock "github.com/nail-agent/nail/internal/ngram/mock"
	"github.com/nail-agent/nail/internal/ngram/nativelm"
	"github.com/nail-agent/nail/internal/nlp"
	"github.com/nail-agent/nail/internal/observe"
	"github.com/nail-agent/nail/internal/resilience"
	"github.com/nail-agent/nail/internal/session"
	"github.com/nail-agent/nail/internal/validity"
	"github.com/nail-agent/nail/internal/validity/fasttext"
	validitymock "github.com/nail-agent/nail/internal/validity/mock"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	gamePath := flag.String("game", "", "path or URL of the game to play (overrides environment.game_path)")
	steps := flag.Int("steps", 300, "maximum number of environment steps to take")
	seed := flag.Int64("seed", 1010, "seed for every random source in the agent")
	serve := flag.Bool("serve", false, "expose /healthz, /readyz, /metrics, and the MCP introspection tool while playing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "nail: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "nail: %v\n", err)
		}
		return 1
	}
	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if *gamePath != "" {
		cfg.Environment.GamePath = *gamePath
	} else if flag.NArg() > 0 {
		cfg.Environment.GamePath = flag.Arg(0)
	}
	if setFlags["steps"] && *steps > 0 {
		cfg.Agent.StepBudget = *steps
	}
	if setFlags["seed"] || cfg.Agent.Seed == 0 {
		cfg.Agent.Seed = *seed
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("nail starting",
		"config", *configPath,
		"environment", cfg.Environment.Transport,
		"game", cfg.Environment.GamePath,
		"step_budget", cfg.Agent.StepBudget,
		"seed", cfg.Agent.Seed,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve {
		shutdownProvider, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "nail"})
		if err != nil {
			slog.Error("failed to initialise telemetry", "err", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownProvider(shutdownCtx)
		}()
	}
	metrics := observe.DefaultMetrics()

	sessionMgr := session.NewManager()
	if _, err := sessionMgr.Start(cfg.Environment.GamePath); err != nil {
		slog.Error("failed to start session", "err", err)
		return 1
	}

	bus := event.NewBus()

	var graphOpts []kg.Option
	graphOpts = append(graphOpts, kg.WithSimilarity(fuzzy.PartialRatio))

	var store *postgres.Store
	if cfg.Memory.PostgresDSN != "" {
		store, err = postgres.Open(ctx, cfg.Memory.PostgresDSN, cfg.Memory.EmbeddingDimensions)
		if err != nil {
			slog.Error("failed to open location-embedding store", "err", err)
			return 1
		}
		sessionMgr.AddCloser(func() error { store.Close(); return nil })
		graphOpts = append(graphOpts, store.Options()...)
	}

	graph := kg.New(bus, graphOpts...)

	env, err := buildEnvironment(ctx, cfg, metrics)
	if err != nil {
		slog.Error("failed to build environment", "err", err)
		return 1
	}
	sessionMgr.AddCloser(env.Close)

	classifier, err := buildClassifier(cfg)
	if err != nil {
		slog.Error("failed to load validity classifier", "err", err)
		return 1
	}
	if closer, ok := classifier.(interface{ Close() error }); ok {
		sessionMgr.AddCloser(closer.Close)
	}

	scorer, err := buildScorer(cfg, rand.New(rand.NewSource(cfg.Agent.Seed)))
	if err != nil {
		slog.Error("failed to build affordance scorer", "err", err)
		return 1
	}

	mods := buildModules(graph, classifier, scorer, rand.New(rand.NewSource(cfg.Agent.Seed+1)))

	a := agent.New(graph, bus, env, classifier, mods,
		agent.WithLogger(logger),
		agent.WithOnStep(func(score int, _ bool) { sessionMgr.RecordStep(score) }),
	)

	var introspect *mcpintrospect.Server
	if *serve && cfg.MCP.Enabled {
		introspect = mcpintrospect.New(graph)
		if cfg.MCP.Transport == "stdio" {
			go func() {
				if err := introspect.ServeStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
					slog.Warn("mcp introspection server stopped", "err", err)
				}
			}()
		}
	}

	var httpServer, mcpServer *http.Server
	if *serve {
		httpServer = buildHTTPServer(cfg, metrics)
		go func() {
			slog.Info("serving health/metrics", "addr", cfg.Server.ListenAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server error", "err", err)
			}
		}()

		if introspect != nil && cfg.MCP.Transport == "streamable-http" {
			mcpServer = &http.Server{Addr: cfg.MCP.ListenAddr, Handler: introspect.HTTPHandler()}
			go func() {
				slog.Info("serving knowledge graph introspection", "addr", cfg.MCP.ListenAddr)
				if err := mcpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("mcp http server error", "err", err)
				}
			}()
		}
	}

	slog.Info("playthrough starting — press Ctrl+C to stop early")
	runErr := a.Run(ctx, cfg.Agent.StepBudget)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("run error", "err", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}
	if mcpServer != nil {
		_ = mcpServer.Shutdown(shutdownCtx)
	}
	cancel()

	if err := writeRunArtifacts(cfg, sessionMgr, graph); err != nil {
		slog.Warn("failed to write run artefacts", "err", err)
	}

	slog.Info("playthrough finished", "steps", sessionMgr.Steps(), "score", sessionMgr.Score())
	if err := sessionMgr.Stop(); err != nil {
		slog.Error("session teardown error", "err", err)
		return 1
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return 1
	}
	return 0
}

// buildEnvironment selects the environment transport and wraps it with
// the resilience and observability decorators.
func buildEnvironment(ctx context.Context, cfg *config.Config, metrics *observe.Metrics) (engine.Environment, error) {
	var inner engine.Environment
	isMock := cfg.Environment.Transport == "mock"
	switch cfg.Environment.Transport {
	case "mock":
		inner = mock.New("You are standing in an open field.")
	case "textenv", "":
		dialed, err := textenv.Dial(ctx, cfg.Environment.URL)
		if err != nil {
			return nil, fmt.Errorf("dial environment: %w", err)
		}
		inner = dialed
	default:
		return nil, fmt.Errorf("unknown environment transport %q", cfg.Environment.Transport)
	}

	breakerCfg := resilience.CircuitBreakerConfig{
		Name:         "environment",
		MaxFailures:  5,
		ResetTimeout: 30 * time.Second,
		HalfOpenMax:  1,
	}

	var guarded engine.Environment
	if isMock {
		guarded = resilient.New(inner, breakerCfg)
	} else {
		primaryName := cfg.Environment.Transport
		if primaryName == "" {
			primaryName = "textenv"
		}
		// Once the primary connection's breaker trips, fail over to the
		// offline mock environment instead of leaving the playthrough
		// stuck until an operator restarts with environment.transport
		// set to mock.
		guarded = resilient.NewFallback(inner, primaryName, breakerCfg,
			mock.New("You are standing in an open field."), "mock")
	}
	return instrumented.New(guarded, metrics, cfg.Environment.Transport), nil
}

// buildClassifier loads the trained fastText validity classifier, or
// falls back to a permissive in-memory mock when no model path is
// configured. config.Load rejects an empty model path, so the fallback
// is reached only with a Config that did not pass through Load.
func buildClassifier(cfg *config.Config) (validity.Classifier, error) {
	if cfg.Data.FastTextModelPath == "" {
		slog.Warn("no fasttext model configured; using a permissive mock validity classifier")
		return validitymock.New(), nil
	}
	path := filepath.Join(cfg.Data.Dir, cfg.Data.FastTextModelPath)
	return fasttext.Load(path)
}

// buildScorer loads the n-gram model and affordance tables, tolerating
// an absent calibration file via CalibrationTable's safe zero value.
func buildScorer(cfg *config.Config, rng *rand.Rand) (*affordance.Scorer, error) {
	var model ngram.Model
	if cfg.Data.NgramModelPath == "" {
		slog.Warn("no n-gram model configured; using a flat-probability mock language model")
		model = ngrammock.New(map[string]float64{}, -5.0)
	} else {
		opener := nativelm.NewOpener()
		opened, err := opener.Open(filepath.Join(cfg.Data.Dir, cfg.Data.NgramModelPath), cfg.Data.NgramPad, cfg.Data.NgramOrder)
		if err != nil {
			return nil, fmt.Errorf("open n-gram model: %w", err)
		}
		model = opened
	}

	verbs, err := affordance.LoadAttributeDetectionVerbs(filepath.Join(cfg.Data.Dir, "attribute_detection_verbs.csv"))
	if err != nil {
		return nil, fmt.Errorf("load attribute detection verbs: %w", err)
	}
	priors, err := affordance.LoadActionPriors(filepath.Join(cfg.Data.Dir, "action_priors.csv"))
	if err != nil {
		return nil, fmt.Errorf("load action priors: %w", err)
	}

	calibPath := cfg.Data.CalibrationPath
	if calibPath == "" {
		calibPath = "calibration_thresholds.tsv"
	}
	calib, found, err := affordance.LoadCalibrationThresholds(filepath.Join(cfg.Data.Dir, calibPath))
	if err != nil {
		return nil, fmt.Errorf("load calibration thresholds: %w", err)
	}
	if !found {
		slog.Warn("no calibration thresholds found; affordance probabilities will be degenerate until one is trained")
	}

	return affordance.New(model, verbs, priors, calib, rng), nil
}

// buildModules constructs the nine cooperative decision modules in the
// arbiter's registration order.
func buildModules(g *kg.KnowledgeGraph, classifier validity.Classifier, scorer *affordance.Scorer, rng *rand.Rand) []agent.Module {
	extractor := nlp.NewExtractor()
	return []agent.Module{
		modules.NewRestart(g),
		modules.NewDarkness(g, classifier),
		modules.NewYouHaveTo(g, classifier),
		modules.NewYesNo(g, rng),
		modules.NewHoarder(g, classifier),
		modules.NewExaminer(g, extractor, classifier, fuzzy.PartialRatio),
		modules.NewNavigator(g, classifier, fuzzy.PartialRatio, modules.WithRNG(rng)),
		modules.NewInteractor(g, scorer, classifier),
		modules.NewIdler(g, classifier, rng),
	}
}

// buildHTTPServer wires /healthz, /readyz, and /metrics onto a single
// mux, wrapped in observe.Middleware for request tracing, correlation
// IDs, and duration metrics. The MCP introspection endpoint, when
// configured for streamable-http, gets its own listener on
// cfg.MCP.ListenAddr instead (see cfg.MCP.Transport handling in run).
func buildHTTPServer(cfg *config.Config, metrics *observe.Metrics) *http.Server {
	mux := http.NewServeMux()
	health.New().Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{Addr: addr, Handler: observe.Middleware(metrics)(mux)}
}

// writeRunArtifacts persists the final knowledge-graph snapshot to
// cfg.Agent.LogDir, named after the playthrough's session ID.
func writeRunArtifacts(cfg *config.Config, sessionMgr *session.Manager, graph *kg.KnowledgeGraph) error {
	if cfg.Agent.LogDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Agent.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(cfg.Agent.LogDir, sessionMgr.Info().ID+".kng")
	return os.WriteFile(path, []byte(kg.Render(graph)), 0o644)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
