// Package cli holds the interactive helpers shared by the roomedit commands:
// client setup, prompts, input validation and human-readable output.
package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/roomedit/internal/auth"
	"github.com/fpang/roomedit/internal/chat"
)

// InitGeminiClient creates a Gemini client and validates the key with a
// small call to model. Exits fatally on failure.
func InitGeminiClient(ctx context.Context, model string) *genai.Client {
	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to retrieve API key. Set GEMINI_API_KEY or store it in ~/.roomedit/credentials.gpg")
	}

	client, err := chat.NewClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}
	log.Info().Msg("connection successful - Gemini client initialized")

	if err := auth.ValidateAPIKey(ctx, client, model); err != nil {
		HandleValidationError(err)
	}
	log.Info().Msg("API key validation complete - ready for operations")
	return client
}
