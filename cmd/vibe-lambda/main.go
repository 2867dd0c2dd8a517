// Command vibe-lambda runs the styling API behind API Gateway (HTTP API,
// payload v2). The Gemini key comes from SSM Parameter Store unless
// GEMINI_API_KEY is already set.
package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/vibe-fashion/internal/cli"
	"github.com/fpang/vibe-fashion/internal/config"
	"github.com/fpang/vibe-fashion/internal/httpapi"
	"github.com/fpang/vibe-fashion/internal/lambdaboot"
	"github.com/fpang/vibe-fashion/internal/logging"
)

func main() {
	initStart := time.Now()
	if os.Getenv("VIBE_LOG_FORMAT") == "" {
		os.Setenv("VIBE_LOG_FORMAT", "json")
	}
	logging.Init()

	ctx := context.Background()
	aws := lambdaboot.InitAWS(ctx)
	if err := lambdaboot.LoadGeminiKey(ctx, aws.SSM); err != nil {
		log.Fatal().Err(err).Msg("Failed to load Gemini API key")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.Debug {
		logging.EnableDebug()
	}

	workflow, clients, err := cli.BuildWorkflow(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build styling workflow")
	}
	router := httpapi.NewRouter(workflow, httpapi.Options{
		MaxUploadBytes:    cfg.MaxUpload,
		MaxImageDimension: cfg.MaxImageDimension,
		CORSOrigins:       cfg.CORSOrigins,
		Metrics:           clients.Metrics,
	})

	cli.DescribeStartup(lambdaboot.StartupLog("vibe-lambda", initStart), cfg, clients).
		Version(version()).
		SSMParam("geminiApiKey", lambdaboot.APIKeyParam()).
		Log()

	adapter := httpadapter.NewV2(router)
	lambda.Start(adapter.ProxyWithContext)
}
