package ai

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("model provider is not configured")

// Unconfigured stands in for the provider when no API key is set, so the
// server can still serve recommendations.
type Unconfigured struct{}

func (Unconfigured) Embed(context.Context, string) ([]float32, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) Generate(context.Context, string, GenerationConfig) (string, error) {
	return "", ErrNotConfigured
}
