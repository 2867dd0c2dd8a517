// Command vibe-api serves the styling workflow over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/vibe-fashion/internal/cli"
	"github.com/fpang/vibe-fashion/internal/config"
	"github.com/fpang/vibe-fashion/internal/httpapi"
	"github.com/fpang/vibe-fashion/internal/logging"
	"github.com/fpang/vibe-fashion/internal/stylist"
)

// CLI flags
var (
	hostFlag        string
	portFlag        int
	validateKeyFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "vibe-api",
	Short: "HTTP API for outfit suggestions on your own photo",
	Long: `Vibe API accepts a photo and a styling request and answers with a short
summary plus several edited versions of the photo, each showing a different
outfit.

Configuration comes from the environment (and .env / .env.local). Flags
override the listen address.

Examples:
  vibe-api
  vibe-api --port 9000
  TEXT_BACKEND=none vibe-api   # no text model; keyword intent and template plans
  vibe-api --validate-key      # check GEMINI_API_KEY before serving`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVar(&hostFlag, "host", "", "Listen host (overrides API_HOST)")
	rootCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "Listen port (overrides PORT and API_PORT)")
	rootCmd.Flags().BoolVar(&validateKeyFlag, "validate-key", false, "Validate the Gemini API key at startup and exit on failure")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	initStart := time.Now()
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.Debug {
		logging.EnableDebug()
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = hostFlag
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = strconv.Itoa(portFlag)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiKey := cli.ResolveAPIKey(cfg)
	clients, err := cli.BuildClients(ctx, cfg, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build model clients")
	}
	if validateKeyFlag {
		if err := cli.ValidateAPIKey(ctx, cfg, apiKey, clients.Metrics); err != nil {
			cli.HandleValidationError(err)
		}
	}

	workflow := stylist.NewWorkflow(clients.Text, clients.Image, cli.WorkflowOptions(cfg, clients.Metrics))
	handler := httpapi.NewRouter(workflow, httpapi.Options{
		MaxUploadBytes:    cfg.MaxUpload,
		MaxImageDimension: cfg.MaxImageDimension,
		CORSOrigins:       cfg.CORSOrigins,
		Metrics:           clients.Metrics,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Classify, plan and summarize are sequential text calls; edits run in parallel.
		WriteTimeout: 3*cfg.TextTimeout + cfg.ImageTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cli.DescribeStartup(logging.NewStartupLogger("vibe-api"), cfg, clients).
		Version(version()).
		Config("addr", cfg.Addr()).
		InitDuration(time.Since(initStart)).
		Log()

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Graceful shutdown did not finish")
		}
	}()

	log.Info().Str("addr", cfg.Addr()).Msg("Starting API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
