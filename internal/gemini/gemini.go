// Package gemini adapts the Google Gen AI SDK to the studio's text, image and
// recipe generators.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/genstudio/internal/domain"
	"github.com/vbonduro/genstudio/internal/imagegen"
	"github.com/vbonduro/genstudio/internal/recipe"
	"google.golang.org/genai"
)

const (
	DefaultTextModel   = "gemini-1.5-flash"
	DefaultImageModel  = "imagen-3.0-generate-001"
	DefaultRecipeModel = "gemini-1.5-flash"
)

// ErrEmptyResponse is returned when the model produced no usable content.
var ErrEmptyResponse = errors.New("no content returned from model")

type Config struct {
	APIKey      string
	BaseURL     string // optional endpoint override
	TextModel   string
	ImageModel  string
	RecipeModel string
}

// Client implements textgen.Generator, imagegen.Generator and
// recipe.Generator on top of one genai client.
type Client struct {
	genai       *genai.Client
	textModel   string
	imageModel  string
	recipeModel string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		genai:       client,
		textModel:   orDefault(cfg.TextModel, DefaultTextModel),
		imageModel:  orDefault(cfg.ImageModel, DefaultImageModel),
		recipeModel: orDefault(cfg.RecipeModel, DefaultRecipeModel),
	}, nil
}

// Generate sends prompt as a single user turn and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}
	return responseText(resp)
}

// GenerateImage calls the Imagen model and returns the first image.
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts imagegen.Options) (*domain.Image, error) {
	if prompt == "" {
		return nil, errors.New("prompt is required")
	}

	cfg := &genai.GenerateImagesConfig{
		NumberOfImages:    int32(opts.NumberOfImages),
		AspectRatio:       opts.AspectRatio,
		NegativePrompt:    opts.NegativePrompt,
		SafetyFilterLevel: genai.SafetyFilterLevel(opts.SafetyFilterLevel),
		PersonGeneration:  genai.PersonGeneration(opts.PersonGeneration),
	}

	resp, err := c.genai.Models.GenerateImages(ctx, c.imageModel, prompt, cfg)
	if err != nil {
		return nil, fmt.Errorf("error generating image: %w", err)
	}

	for _, generated := range resp.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		mimeType := generated.Image.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return &domain.Image{Data: generated.Image.ImageBytes, MimeType: mimeType}, nil
	}
	return nil, fmt.Errorf("error generating image: %w", ErrEmptyResponse)
}

// GenerateRecipe sends the image inline with recipe.Prompt and asks for JSON
// matching the recipe list schema.
func (c *Client) GenerateRecipe(ctx context.Context, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{Data: image, MIMEType: mimeType}},
			{Text: "\n\n"},
			{Text: recipe.Prompt},
		},
	}}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   recipeSchema(),
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.recipeModel, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("error generating recipe: %w", err)
	}
	return responseText(resp)
}

// recipeSchema mirrors domain.Recipe as a list.
func recipeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"recipe_name":  {Type: genai.TypeString},
				"ingredients":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"instructions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"recipe_name", "ingredients", "instructions"},
		},
	}
}

// responseText concatenates the text parts of the first candidate, skipping
// thought summaries.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

func orDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
