// Package llm wraps the external analysis models behind a single Provider
// interface. The service treats them as opaque oracles: a prompt goes in,
// free text (or a failure) comes out. Model name, temperature, and token
// limits are caller options, not part of the contract.
package llm

import (
	"context"
	"os"
)

// Provider is the interface every analysis model implements.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats.
	AdaptInstructions(rawInstructions string) string
}

// Option keys recognized by all providers.
const (
	OptModel       = "model"
	OptTemperature = "temperature"
	OptMaxTokens   = "max_tokens"
	OptJSONMode    = "json_mode"
	OptAPIKey      = "api_key"
)

func stringOpt(options map[string]interface{}, key, fallback string) string {
	if v, ok := options[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func floatOpt(options map[string]interface{}, key string, fallback float64) float64 {
	switch v := options[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return fallback
}

func intOpt(options map[string]interface{}, key string, fallback int) int {
	switch v := options[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

func boolOpt(options map[string]interface{}, key string) bool {
	v, _ := options[key].(bool)
	return v
}

// apiKey resolves the key from options first, then the environment.
func apiKey(options map[string]interface{}, envVar string) string {
	if v, ok := options[OptAPIKey].(string); ok && v != "" {
		return v
	}
	return os.Getenv(envVar)
}
