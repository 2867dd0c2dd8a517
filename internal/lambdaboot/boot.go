// Package lambdaboot holds the cold-start bootstrap shared by the Lambda
// entry point: AWS config, the SSM-sourced Gemini key and startup logging.
package lambdaboot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/vibe-fashion/internal/logging"
)

// DefaultAPIKeyParam is the SSM parameter read when SSM_API_KEY_PARAM is unset.
const DefaultAPIKeyParam = "/vibe-fashion/prod/gemini-api-key"

// AWSClients holds the AWS SDK clients used at cold start.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// ParameterGetter is the subset of the SSM client used to read secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS(ctx context.Context) AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// APIKeyParam returns the SSM parameter name holding the Gemini API key.
func APIKeyParam() string {
	if p := os.Getenv("SSM_API_KEY_PARAM"); p != "" {
		return p
	}
	return DefaultAPIKeyParam
}

// LoadGeminiKey fetches the Gemini API key from SSM Parameter Store unless
// GEMINI_API_KEY is already set, and exports it to the environment so the
// regular config path picks it up.
func LoadGeminiKey(ctx context.Context, params ParameterGetter) error {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return nil
	}
	name := APIKeyParam()

	start := time.Now()
	result, err := params.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("read api key from ssm %s: %w", name, err)
	}
	if result.Parameter == nil || aws.ToString(result.Parameter.Value) == "" {
		return fmt.Errorf("ssm parameter %s is empty", name)
	}
	if err := os.Setenv("GEMINI_API_KEY", aws.ToString(result.Parameter.Value)); err != nil {
		return fmt.Errorf("export api key: %w", err)
	}
	log.Debug().Str("param", name).Dur("elapsed", time.Since(start)).Msg("Gemini API key loaded from SSM")
	return nil
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
