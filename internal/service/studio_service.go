package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/vbonduro/genstudio/internal/domain"
	"github.com/vbonduro/genstudio/internal/imagegen"
	"github.com/vbonduro/genstudio/internal/imagestore"
	"github.com/vbonduro/genstudio/internal/metrics"
	"github.com/vbonduro/genstudio/internal/recipe"
)

// maxImageSize caps uploaded photos sent inline to the recipe model.
const maxImageSize = 20 * 1024 * 1024 // 20 MB

var (
	ErrEmptyPrompt      = errors.New("prompt is required")
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image too large")
)

// StudioService runs the image and recipe flows for the presentation shell.
type StudioService struct {
	images  imagegen.Generator
	recipes recipe.Generator
	store   imagestore.ImageStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewStudioService(
	images imagegen.Generator,
	recipes recipe.Generator,
	store imagestore.ImageStore,
	m *metrics.Metrics,
	logger *slog.Logger,
) *StudioService {
	return &StudioService{
		images:  images,
		recipes: recipes,
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// GenerateImage asks the image model for one picture, saves it and returns the
// file path.
func (s *StudioService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	s.logger.Info("image generation started", "prompt_bytes", len(prompt))
	start := time.Now()
	img, err := s.images.GenerateImage(ctx, prompt, imagegen.DefaultOptions())
	s.metrics.ObserveGeneration("image", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("failed to generate image: %w", err)
	}

	key, err := s.store.Save(ctx, "image", img)
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	path, err := s.store.Path(key)
	if err != nil {
		return "", fmt.Errorf("failed to resolve image path: %w", err)
	}

	s.logger.Info("image generation complete", "path", path, "bytes", len(img.Data))
	return path, nil
}

// GenerateRecipe reads the photo at imagePath and returns the first recipe the
// model suggests for it.
func (s *StudioService) GenerateRecipe(ctx context.Context, imagePath string) (*domain.Recipe, error) {
	info, err := os.Stat(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if info.Size() > maxImageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, info.Size())
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	mimeType, ok := recipe.DetectImageMIME(imageData)
	if !ok {
		return nil, ErrUnsupportedImage
	}

	s.logger.Info("recipe generation started", "path", imagePath, "mime_type", mimeType, "bytes", len(imageData))
	start := time.Now()
	raw, err := s.recipes.GenerateRecipe(ctx, imageData, mimeType)
	s.metrics.ObserveGeneration("recipe", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipe: %w", err)
	}
	s.logger.Debug("recipe response", "raw", raw)

	r, err := recipe.Parse(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe generation complete", "recipe", r.Name)
	return r, nil
}
