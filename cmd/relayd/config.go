package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// config is the process configuration, parsed from the environment.
// Neither API key is individually required: resolveProvider fails fast when
// no usable credential is present.
type config struct {
	GroqAPIKey   string `env:"GROQ_API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	Provider     string `env:"PROVIDER"`
	ModelID      string `env:"MODEL_ID"`
	Addr         string `env:"ADDR" envDefault:":5000"`
	Debug        bool   `env:"DEBUG" envDefault:"false"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
