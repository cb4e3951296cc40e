// Package recipe turns a food photo into a structured recipe: the prompt and
// response schema sent to the model, parsing of the JSON reply, and rendering
// for display.
package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vbonduro/genstudio/internal/domain"
)

// Prompt is sent after the image in the same user turn.
const Prompt = `Given this image:

First, describe the image

Then, detail the recipe to cook this food in JSON format. Include item names and quantities for the recipe, as well as step-by-step cooking instructions.`

// ErrNoRecipe is returned when the model replied with an empty list.
var ErrNoRecipe = errors.New("no recipe data found")

// Generator returns the raw JSON reply for an image: a list of objects with
// recipe_name, ingredients and instructions.
type Generator interface {
	GenerateRecipe(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Parse decodes the model reply and returns its first recipe.
func Parse(raw string) (*domain.Recipe, error) {
	var recipes []domain.Recipe
	if err := json.Unmarshal([]byte(raw), &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse recipe response: %w", err)
	}
	if len(recipes) == 0 {
		return nil, ErrNoRecipe
	}
	return &recipes[0], nil
}

// Format renders r as markdown-flavoured text.
func Format(r *domain.Recipe) string {
	var b strings.Builder
	b.WriteString("**Recipe Name:** " + r.Name + "\n\n")
	b.WriteString("### Ingredients:\n")
	for _, ingredient := range r.Ingredients {
		b.WriteString("- " + ingredient + "\n")
	}
	b.WriteString("\n### Instructions:\n")
	for i, step := range r.Instructions {
		b.WriteString(strconv.Itoa(i+1) + ". " + step + "\n")
	}
	return strings.TrimSpace(b.String())
}
