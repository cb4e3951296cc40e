package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/genstudio/internal/imagegen"
	"github.com/vbonduro/genstudio/internal/recipe"
)

// fakeGemini mimics the Gemini REST surface used by Client. Each handler
// records the last request path and body.
type fakeGemini struct {
	mu       sync.Mutex
	lastPath string
	lastBody string
	lastKey  string

	status  int
	payload any
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.lastPath = r.URL.Path
	f.lastBody = string(body)
	f.lastKey = r.Header.Get("x-goog-api-key")
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	if err := json.NewEncoder(w).Encode(f.payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (f *fakeGemini) last() (path, body, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPath, f.lastBody, f.lastKey
}

func textReply(parts ...string) map[string]any {
	ps := make([]map[string]any, 0, len(parts))
	for _, p := range parts {
		ps = append(ps, map[string]any{"text": p})
	}
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": ps}, "finishReason": "STOP"},
		},
	}
}

func newTestClient(t *testing.T, fake *fakeGemini) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := New(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	fake := &fakeGemini{payload: textReply("Welcome to ", "Chang'an.")}
	client := newTestClient(t, fake)

	text, err := client.Generate(context.Background(), "translate 欢迎")
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Chang'an.", text)

	path, body, key := fake.last()
	assert.True(t, strings.HasSuffix(path, "models/"+DefaultTextModel+":generateContent"), path)
	assert.Contains(t, body, "translate 欢迎")
	assert.Equal(t, "test-key", key)
}

func TestGenerateNoCandidates(t *testing.T) {
	fake := &fakeGemini{payload: map[string]any{"candidates": []any{}}}
	client := newTestClient(t, fake)

	_, err := client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateAPIError(t *testing.T) {
	fake := &fakeGemini{
		status: http.StatusForbidden,
		payload: map[string]any{
			"error": map[string]any{"code": 403, "message": "API key not valid", "status": "PERMISSION_DENIED"},
		},
	}
	client := newTestClient(t, fake)

	_, err := client.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestGenerateImage(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	fake := &fakeGemini{payload: map[string]any{
		"predictions": []map[string]any{
			{"bytesBase64Encoded": base64.StdEncoding.EncodeToString(png), "mimeType": "image/png"},
		},
	}}
	client := newTestClient(t, fake)

	img, err := client.GenerateImage(context.Background(), "a lantern festival", imagegen.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, png, img.Data)
	assert.Equal(t, "image/png", img.MimeType)

	path, body, _ := fake.last()
	assert.True(t, strings.HasSuffix(path, DefaultImageModel+":predict"), path)
	assert.Contains(t, body, "a lantern festival")
	assert.Contains(t, body, "3:4")
}

func TestGenerateImageNoImages(t *testing.T) {
	fake := &fakeGemini{payload: map[string]any{"predictions": []any{}}}
	client := newTestClient(t, fake)

	_, err := client.GenerateImage(context.Background(), "a lantern", imagegen.DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateImageEmptyPrompt(t *testing.T) {
	client := newTestClient(t, &fakeGemini{})

	_, err := client.GenerateImage(context.Background(), "", imagegen.DefaultOptions())
	assert.Error(t, err)
}

func TestGenerateRecipe(t *testing.T) {
	reply := `[{"recipe_name":"Mapo Tofu","ingredients":["tofu"],"instructions":["Cook."]}]`
	fake := &fakeGemini{payload: textReply(reply)}
	client := newTestClient(t, fake)

	raw, err := client.GenerateRecipe(context.Background(), []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	require.NoError(t, err)

	r, err := recipe.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Mapo Tofu", r.Name)


	path, body, _ := fake.last()
	assert.True(t, strings.HasSuffix(path, DefaultRecipeModel+":generateContent"), path)
	assert.Contains(t, body, "application/json")
	assert.Contains(t, body, "recipe_name")
	assert.Contains(t, body, base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF}))
}
