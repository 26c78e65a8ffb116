package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"diffusiond/internal/config"
	"diffusiond/internal/device"
	"diffusiond/internal/engine"
	"diffusiond/internal/httpapi"
	"diffusiond/internal/manager"
	"diffusiond/internal/registry"
	"diffusiond/internal/strategy"
)

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "diffusiond",
		Short:         "Resource-aware Stable Diffusion serving daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newModelsCmd())
	return root
}

// serveOptions collects everything the serve command needs. Flag defaults
// come from the environment; a config file fills in whatever flags left unset.
type serveOptions struct {
	addr         string
	modelsDir    string
	defaultModel string
	configPath   string
	logLevel     string

	corsEnabled bool
	corsOrigins string
	corsMethods string
	corsHeaders string

	maxBodyBytes    int64
	generateTimeout int64

	largeLoadMinFreeGB  float64
	offloadBelowFreeGB  float64
	turboAccelMinFreeGB float64
	systemMinFreeGB     float64
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", envOr("DIFFUSIOND_ADDR", ":7860"), "HTTP listen address, e.g. :7860")
	f.StringVar(&opts.modelsDir, "models-dir", envOr("DIFFUSIOND_MODELS_DIR", "~/models/stable-diffusion"), "Directory to scan for *.safetensors / *.ckpt checkpoints")
	f.StringVar(&opts.defaultModel, "default-model", envOr("DIFFUSIOND_DEFAULT_MODEL", ""), "Model to load at startup (empty: start without a model)")
	f.StringVar(&opts.configPath, "config", envOr("DIFFUSIOND_CONFIG", ""), "Optional config file (.yaml/.json/.toml); flags take precedence")
	f.StringVar(&opts.logLevel, "log-level", envOr("DIFFUSIOND_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	f.BoolVar(&opts.corsEnabled, "cors", envBool("DIFFUSIOND_CORS"), "Enable CORS middleware")
	f.StringVar(&opts.corsOrigins, "cors-origins", os.Getenv("DIFFUSIOND_CORS_ORIGINS"), "Comma-separated allowed CORS origins")
	f.StringVar(&opts.corsMethods, "cors-methods", os.Getenv("DIFFUSIOND_CORS_METHODS"), "Comma-separated allowed CORS methods")
	f.StringVar(&opts.corsHeaders, "cors-headers", os.Getenv("DIFFUSIOND_CORS_HEADERS"), "Comma-separated allowed CORS headers")
	f.Int64Var(&opts.maxBodyBytes, "max-body-bytes", 0, "Maximum JSON request body size in bytes (0: 1MiB default)")
	f.Int64Var(&opts.generateTimeout, "generate-timeout", 0, "txt2img timeout in seconds (0: unbounded)")
	f.Float64Var(&opts.largeLoadMinFreeGB, "large-load-min-free-gb", 0, "Free accelerator GB required for large-model loads (0: default 3.0)")
	f.Float64Var(&opts.offloadBelowFreeGB, "offload-below-free-gb", 0, "Free accelerator GB below which offload is recommended (0: default 6.0)")
	f.Float64Var(&opts.turboAccelMinFreeGB, "turbo-accel-min-free-gb", 0, "Free accelerator GB required to place turbo models on it (0: default 1.5)")
	f.Float64Var(&opts.systemMinFreeGB, "system-min-free-gb", 0, "Free system GB required for forced-CPU large loads (0: default 2.0)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	log := newLogger(opts.logLevel)

	if opts.configPath != "" {
		fileCfg, err := config.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", opts.configPath, err)
		}
		mergeConfig(cmd, opts, fileCfg)
		log.Info().Str("path", opts.configPath).Msg("config file loaded")
	}

	reg := registry.New(opts.modelsDir, log)
	catalog := reg.Discover()
	log.Info().Int("models", len(catalog)).Str("dir", opts.modelsDir).Msg("model discovery complete")

	eng := engine.NewUnavailable()
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry: reg,
		Engine:   eng,
		Device: device.Thresholds{
			LargeLoadMinFreeGB: opts.largeLoadMinFreeGB,
			OffloadBelowFreeGB: opts.offloadBelowFreeGB,
		},
		Strategy: strategy.Config{
			TurboAccelMinFreeGB: opts.turboAccelMinFreeGB,
			SystemMinFreeGB:     opts.systemMinFreeGB,
		},
		Logger: log,
	})

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(opts.maxBodyBytes)
	httpapi.SetGenerateTimeoutSeconds(opts.generateTimeout)
	httpapi.SetCORSOptions(opts.corsEnabled, splitCSV(opts.corsOrigins), splitCSV(opts.corsMethods), splitCSV(opts.corsHeaders))

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	if opts.defaultModel != "" {
		if err := mgr.SwitchTo(baseCtx, opts.defaultModel); err != nil {
			// Placeholder serving still works without a model; keep going.
			log.Warn().Err(err).Str("model", opts.defaultModel).Msg("initial model load failed")
		}
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", opts.addr).Msg("diffusiond listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	// Cancel in-flight generations, then drain connections.
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	mgr.Unload(context.Background())
	return nil
}

func newModelsCmd() *cobra.Command {
	var modelsDir string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models visible to the daemon and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger("error")
			reg := registry.New(modelsDir, log)
			for _, d := range reg.Discover() {
				origin := "built-in"
				if d.Local {
					origin = d.Source
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %-10s %-10s %s\n", d.Name, d.Arch, d.Hash, origin)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modelsDir, "models-dir", envOr("DIFFUSIOND_MODELS_DIR", "~/models/stable-diffusion"), "Directory to scan for checkpoints")
	return cmd
}

// mergeConfig applies file values for flags the user did not set explicitly.
func mergeConfig(cmd *cobra.Command, opts *serveOptions, fileCfg config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("addr") && fileCfg.Addr != "" {
		opts.addr = fileCfg.Addr
	}
	if !flags.Changed("models-dir") && fileCfg.ModelsDir != "" {
		opts.modelsDir = fileCfg.ModelsDir
	}
	if !flags.Changed("default-model") && fileCfg.DefaultModel != "" {
		opts.defaultModel = fileCfg.DefaultModel
	}
	if !flags.Changed("large-load-min-free-gb") && fileCfg.LargeLoadMinFreeGB > 0 {
		opts.largeLoadMinFreeGB = fileCfg.LargeLoadMinFreeGB
	}
	if !flags.Changed("offload-below-free-gb") && fileCfg.OffloadBelowFreeGB > 0 {
		opts.offloadBelowFreeGB = fileCfg.OffloadBelowFreeGB
	}
	if !flags.Changed("turbo-accel-min-free-gb") && fileCfg.TurboAccelMinFreeGB > 0 {
		opts.turboAccelMinFreeGB = fileCfg.TurboAccelMinFreeGB
	}
	if !flags.Changed("system-min-free-gb") && fileCfg.SystemMinFreeGB > 0 {
		opts.systemMinFreeGB = fileCfg.SystemMinFreeGB
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty items.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
