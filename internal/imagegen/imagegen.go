// Package imagegen defines the image generation collaborator used by the
// presentation shell.
package imagegen

import (
	"context"

	"github.com/vbonduro/genstudio/internal/domain"
)

// Options control a single image generation call.
type Options struct {
	NumberOfImages    int
	AspectRatio       string
	NegativePrompt    string
	SafetyFilterLevel string
	PersonGeneration  string
}

// DefaultOptions are the settings the studio has always generated with: one
// portrait image of an indoor scene, only high-risk content blocked.
func DefaultOptions() Options {
	return Options{
		NumberOfImages:    1,
		AspectRatio:       "3:4",
		NegativePrompt:    "Outside",
		SafetyFilterLevel: "BLOCK_ONLY_HIGH",
		PersonGeneration:  "ALLOW_ADULT",
	}
}

type Generator interface {
	// GenerateImage returns the first image the model produced for prompt.
	GenerateImage(ctx context.Context, prompt string, opts Options) (*domain.Image, error)
}
