package main

import (
	"context"
	"fmt"

	"chatrelay"
	"chatrelay/gemini"
	"chatrelay/groq"
)

// resolveProvider selects and constructs the upstream provider from the
// configuration. Returns the provider and its name for logging.
func resolveProvider(ctx context.Context, cfg config) (chatrelay.Provider, string, error) {
	name := cfg.Provider

	// Auto-detect from the configured keys when PROVIDER is unset.
	if name == "" {
		hasGroq := cfg.GroqAPIKey != ""
		hasGemini := cfg.GeminiAPIKey != ""
		switch {
		case hasGroq && hasGemini:
			return nil, "", fmt.Errorf("multiple API keys found (GROQ_API_KEY, GEMINI_API_KEY): set PROVIDER to select")
		case hasGroq:
			name = "groq"
		case hasGemini:
			name = "gemini"
		default:
			return nil, "", fmt.Errorf("no API key found: set GROQ_API_KEY or GEMINI_API_KEY")
		}
	}

	switch name {
	case "groq":
		if cfg.GroqAPIKey == "" {
			return nil, "", fmt.Errorf("GROQ_API_KEY not set")
		}
		var opts []groq.Option
		if cfg.ModelID != "" {
			opts = append(opts, groq.WithModel(cfg.ModelID))
		}
		return groq.New(cfg.GroqAPIKey, opts...), name, nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, "", fmt.Errorf("GEMINI_API_KEY not set")
		}
		var opts []gemini.Option
		if cfg.ModelID != "" {
			opts = append(opts, gemini.WithModel(cfg.ModelID))
		}
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("gemini: %w", err)
		}
		return client, name, nil
	default:
		return nil, "", fmt.Errorf("unknown provider %q: must be \"groq\" or \"gemini\"", name)
	}
}
