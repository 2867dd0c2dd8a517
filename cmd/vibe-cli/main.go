// Command vibe-cli runs the styling workflow on a local photo and writes the
// generated looks to disk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/fpang/vibe-fashion/internal/cli"
	"github.com/fpang/vibe-fashion/internal/config"
	"github.com/fpang/vibe-fashion/internal/imageutil"
	"github.com/fpang/vibe-fashion/internal/logging"
	"github.com/fpang/vibe-fashion/internal/stylist"
)

// CLI flags
var (
	imageFlag   string
	requestFlag string
	outFlag     string
)

var rootCmd = &cobra.Command{
	Use:     "vibe-cli",
	Short:   "Outfit suggestions for a photo, from the command line",
	Version: version(),
}

var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "Generate outfit variants of a photo",
	Long: `Style sends a photo and a styling request through the workflow and writes
each generated look to the output directory as look-<n>.<ext>, then prints
the summary.

Examples:
  vibe-cli style --image me.jpg --request "outfits for a summer wedding"
  vibe-cli style -i me.png -r "make this more professional" -o ./interview
  vibe-cli style -i me.jpg   # prompts for the request`,
	Run: runStyle,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the Gemini API key",
	Run:   runCheck,
}

func init() {
	styleCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Photo to restyle (JPEG, PNG or WEBP)")
	styleCmd.Flags().StringVarP(&requestFlag, "request", "r", "", "Styling request, e.g. 'outfits for a summer wedding'")
	styleCmd.Flags().StringVarP(&outFlag, "out", "o", "./looks", "Directory for the generated looks")
	styleCmd.MarkFlagRequired("image")

	rootCmd.AddCommand(styleCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	logging.Init()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.Debug {
		logging.EnableDebug()
	}
	return cfg
}

func runStyle(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	raw, err := os.ReadFile(imageFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", imageFlag).Msg("Failed to read image")
	}
	if _, err := imageutil.Validate(raw); err != nil {
		log.Fatal().Err(err).Str("path", imageFlag).Msg("Not a supported image")
	}
	log.Info().Object("image", imageutil.Inspect(raw)).Msg("Photo loaded")

	normalized, err := imageutil.Normalize(raw, cfg.MaxImageDimension)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to process image")
	}

	request := requestFlag
	if request == "" {
		request = cli.PromptForRequest(os.Stdin, os.Stdout)
	}
	if request == "" {
		log.Fatal().Msg("A styling request is required")
	}

	workflow, _, err := cli.BuildWorkflow(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build styling workflow")
	}

	start := time.Now()
	result := workflow.Process(ctx, stylist.Request{
		Image:    chat.Image{Data: normalized, MIMEType: "image/jpeg"},
		UserText: request,
	})

	paths, err := writeLooks(outFlag, result.Variants)
	if err != nil {
		log.Fatal().Err(err).Str("dir", outFlag).Msg("Failed to write looks")
	}
	printResult(os.Stdout, result, paths, time.Since(start))

	if !result.Success {
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	if err := cli.ValidateAPIKey(ctx, cfg, cli.ResolveAPIKey(cfg), cli.NewMetrics(cfg)); err != nil {
		cli.HandleValidationError(err)
	}
	fmt.Println("API key is valid.")
}
