package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/genstudio/internal/config"
	"github.com/vbonduro/genstudio/internal/gemini"
	"github.com/vbonduro/genstudio/internal/imagestore/local"
	"github.com/vbonduro/genstudio/internal/logging"
	"github.com/vbonduro/genstudio/internal/metrics"
	"github.com/vbonduro/genstudio/internal/recipe"
	"github.com/vbonduro/genstudio/internal/service"
	"github.com/vbonduro/genstudio/internal/shell"
	"github.com/vbonduro/genstudio/internal/textgen"
	"github.com/vbonduro/genstudio/internal/textgen/claude"
	"github.com/vbonduro/genstudio/internal/textgen/ollama"
	"github.com/vbonduro/genstudio/internal/translate"
	"github.com/vbonduro/genstudio/internal/web"
)

const usage = `usage: genstudio <command> [flags]

commands:
  serve    run the translation proxy in the foreground
  image    generate an image from --prompt
  recipe   generate a recipe from the photo at --image
  shell    interactive session (default)`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "genstudio:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "shell"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetNormalizeFunc(config.NormalizeFlagName)
	configPath := fs.String("config", "", "config file (dotenv, yaml or json); defaults to ./.env if present")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-format", "", "json or text")
	fs.String("log-file", "", "also append logs to this file")

	var prompt, imagePath *string
	switch cmd {
	case "serve":
		fs.String("listen-addr", "", "translation proxy address")
		fs.String("metrics-addr", "", "Prometheus metrics address; empty disables")
		fs.String("text-backend", "", "gemini, claude or ollama")
	case "image":
		prompt = fs.String("prompt", "", "image description")
	case "recipe":
		imagePath = fs.String("image", "", "path to a food photo")
	case "shell":
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		return err
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		return serve(ctx, cfg, logger)
	case "image":
		p := *prompt
		if p == "" {
			p = strings.Join(fs.Args(), " ")
		}
		return generateImage(ctx, cfg, logger, p)
	case "recipe":
		return generateRecipe(ctx, cfg, logger, *imagePath)
	default:
		return runShell(ctx, cfg, logger, *configPath)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.ValidateTextBackend(); err != nil {
		return err
	}

	gen, err := newTextGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	server := web.NewServer(translate.NewHandler(gen, cfg.GenerationTimeout, m, logger), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(cfg.ListenAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	serveMetrics(gctx, g, cfg, prometheus.DefaultGatherer, logger)

	return g.Wait()
}

// serveMetrics adds the optional /metrics listener to g; it shuts down with
// ctx.
func serveMetrics(ctx context.Context, g *errgroup.Group, cfg *config.Config, gatherer prometheus.Gatherer, logger *slog.Logger) {
	if cfg.MetricsAddr == "" {
		return
	}
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux(gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.Info("metrics server starting", "addr", "http://"+cfg.MetricsAddr+"/metrics")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})
}

func metricsMux(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler(gatherer))
	return mux
}

func generateImage(ctx context.Context, cfg *config.Config, logger *slog.Logger, prompt string) error {
	studio, err := newStudio(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	path, err := studio.GenerateImage(ctx, prompt)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func generateRecipe(ctx context.Context, cfg *config.Config, logger *slog.Logger, imagePath string) error {
	if imagePath == "" {
		return errors.New("--image is required")
	}
	studio, err := newStudio(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	r, err := studio.GenerateRecipe(ctx, imagePath)
	if err != nil {
		return err
	}
	fmt.Println(recipe.Format(r))
	return nil
}

// runShell serves the image and recipe series itself on METRICS_ADDR, so the
// supervised serve child is started with its metrics listener disabled.
func runShell(ctx context.Context, cfg *config.Config, logger *slog.Logger, configPath string) error {
	if err := cfg.ValidateTextBackend(); err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	studio, err := newStudio(ctx, cfg, metrics.New(reg), logger)
	if err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	sup := shell.NewSupervisor(exe, childArgs(configPath), cfg.ShutdownTimeout, logger)
	sup.Output = os.Stderr

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	serveMetrics(gctx, g, cfg, reg, logger)
	g.Go(func() error {
		defer cancel()
		return shell.New(studio, sup, os.Stdout, logger).Run(gctx, os.Stdin)
	})
	return g.Wait()
}

func childArgs(configPath string) []string {
	args := []string{"serve", "--metrics-addr="}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	return args
}

func newStudio(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*service.StudioService, error) {
	if err := cfg.RequireGemini(); err != nil {
		return nil, err
	}
	client, err := newGeminiClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := local.NewLocalImageStore(cfg.ImageOutputPath)
	if err != nil {
		return nil, err
	}
	return service.NewStudioService(client, client, store, m, logger), nil
}

func newGeminiClient(ctx context.Context, cfg *config.Config) (*gemini.Client, error) {
	return gemini.New(ctx, gemini.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.GeminiBaseURL,
		TextModel:   cfg.GeminiTextModel,
		ImageModel:  cfg.GeminiImageModel,
		RecipeModel: cfg.GeminiRecipeModel,
	})
}

func newTextGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (textgen.Generator, error) {
	switch cfg.TextBackend {
	case "claude":
		logger.Info("using Claude text backend", "model", cfg.ClaudeModel)
		return claude.NewClaudeGenerator(cfg.ClaudeAPIKey, cfg.ClaudeModel, cfg.ClaudeBaseURL), nil
	case "ollama":
		logger.Info("using Ollama text backend", "model", cfg.OllamaModel)
		return ollama.NewOllamaGenerator(cfg.OllamaHost, cfg.OllamaModel), nil
	default:
		logger.Info("using Gemini text backend", "model", cfg.GeminiTextModel)
		client, err := newGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
