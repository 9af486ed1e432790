package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/pathfinder/internal/handler"
	appI18n "github.com/pavelanni/pathfinder/internal/i18n"
	"github.com/pavelanni/pathfinder/internal/llm"
	"github.com/pavelanni/pathfinder/internal/llm/prompts"
	"github.com/pavelanni/pathfinder/internal/metrics"
	"github.com/pavelanni/pathfinder/internal/model"
	"github.com/pavelanni/pathfinder/internal/pathfinder"
	"github.com/pavelanni/pathfinder/internal/session"
)

// Supported gateway providers.
const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pathfinder",
		Short: "Personalized learning paths powered by generative AI",
	}

	serve := serveCmd()
	root.AddCommand(serve, askCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `pathfinder --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", "localhost:8080", "HTTP listen address")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /pathfinder)")
	addGatewayFlags(cmd)
	return cmd
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask QUERY",
		Short: "Print the guidance package for a profile query as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	addGatewayFlags(cmd)
	return cmd
}

func addGatewayFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("provider", providerGemini, "Model provider (gemini, openai)")
	f.String("api-key", "", "Model API key (or set PATHFINDER_API_KEY or API_KEY)")
	f.String("llm-url", "", "OpenAI-compatible API base URL (openai provider only)")
	f.String("llm-model", "", "Model name (default depends on provider)")
	f.StringP("lang", "l", appI18n.DefaultLang, "Language of user-facing messages (es, en)")
	f.String("env-file", ".env", "Dotenv file loaded before reading the environment")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd loads the dotenv file, then binds a command's flags and environment
// to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		// Variables already set in the environment win over the file.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("error reading env file", "path", envFile, "error", err)
		}
	}

	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PATHFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api-key", "PATHFINDER_API_KEY", "API_KEY")

	v.SetConfigName("pathfinder")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/pathfinder")
	v.AddConfigPath("/etc/pathfinder")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// appConfig reads the gateway settings shared by all commands.
func appConfig(v *viper.Viper) (model.AppConfig, error) {
	cfg := model.AppConfig{
		Provider: strings.ToLower(strings.TrimSpace(v.GetString("provider"))),
		Model:    v.GetString("llm-model"),
		Lang:     v.GetString("lang"),
	}
	switch cfg.Provider {
	case providerGemini:
		if cfg.Model == "" {
			cfg.Model = llm.DefaultGeminiModel
		}
	case providerOpenAI:
		if cfg.Model == "" {
			return cfg, errors.New("llm-model is required for the openai provider")
		}
	default:
		return cfg, fmt.Errorf("unknown provider %q (want %s or %s)", cfg.Provider, providerGemini, providerOpenAI)
	}
	return cfg, nil
}

// newGateway builds the configured gateway. It returns nil when no API key is set.
func newGateway(ctx context.Context, v *viper.Viper, cfg model.AppConfig) (llm.Gateway, error) {
	apiKey := strings.TrimSpace(v.GetString("api-key"))
	if apiKey == "" {
		slog.Warn("no API key configured: every AI request will fail until PATHFINDER_API_KEY or API_KEY is set")
		return nil, nil
	}
	switch cfg.Provider {
	case providerOpenAI:
		return llm.NewOpenAI(v.GetString("llm-url"), apiKey, cfg.Model), nil
	default:
		gw, err := llm.NewGemini(ctx, apiKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return gw, nil
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	cfg, err := appConfig(v)
	if err != nil {
		return err
	}

	if err := appI18n.Init(cfg.Lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	if err := prompts.Load(prompts.FS); err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	gw, err := newGateway(ctx, v, cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}
	if gw != nil {
		gw = m.Gateway(gw)
	}
	ctl := pathfinder.New(session.New(), llm.New(gw))

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	h := handler.New(ctl, basePath)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(appI18n.Middleware(cfg.Lang))
	r.Method(http.MethodGet, "/metrics", m.Handler())

	if basePath != "" {
		r.Route(basePath, h.Routes)
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("starting server",
		"addr", addr,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"configured", gw != nil,
		"lang", cfg.Lang,
		"base_path", basePath,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	cfg, err := appConfig(v)
	if err != nil {
		return err
	}
	if err := prompts.Load(prompts.FS); err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	ctx := cmd.Context()
	gw, err := newGateway(ctx, v, cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	pkg, err := llm.New(gw).GenerateGuidance(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(out)
	return nil
}
