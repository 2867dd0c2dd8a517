package cli

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/fpang/vibe-fashion/internal/auth"
)

// ValidationMessage turns an API key validation error into operator advice.
func ValidationMessage(err error) string {
	if errors.Is(err, auth.ErrNoAPIKey) {
		return "No API key configured. Set GEMINI_API_KEY or create ~/.vibe-fashion/credentials.gpg"
	}
	var validationErr *auth.ValidationError
	if !errors.As(err, &validationErr) {
		return "Unexpected error during API key validation"
	}
	switch validationErr.Type {
	case auth.ErrTypeInvalidKey:
		return "Invalid API key. Please check your API key and try again"
	case auth.ErrTypeNetworkError:
		return "Network error. Please check your internet connection"
	case auth.ErrTypeQuotaExceeded:
		return "API quota exceeded. Please try again later or check your usage limits"
	default:
		return "API key validation failed"
	}
}

// HandleValidationError logs the advice for err and exits.
func HandleValidationError(err error) {
	log.Fatal().Err(err).Msg(ValidationMessage(err))
}
