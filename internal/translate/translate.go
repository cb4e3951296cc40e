// Package translate handles one translation request: decode the query value,
// ask the text model, and romanize what comes back.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/vbonduro/genstudio/internal/metrics"
	"github.com/vbonduro/genstudio/internal/romanize"
	"github.com/vbonduro/genstudio/internal/textgen"
)

var (
	// ErrDecode covers a missing text parameter and malformed percent-encoding.
	ErrDecode = errors.New("decode error")
	// ErrGeneration covers a failed, empty, timed out or panicking model call.
	ErrGeneration = errors.New("generation error")
	// ErrNormalization is returned when the model output cannot be romanized.
	ErrNormalization = errors.New("normalization error")
)

// Request carries the raw, still percent-encoded query value. Text is nil when
// the parameter was absent.
type Request struct {
	Text *string
}

// Result is either a success carrying the translated text or a failure
// carrying the error that ended the request.
type Result struct {
	text string
	err  error
}

func Success(text string) Result { return Result{text: text} }

func Failure(err error) Result { return Result{err: err} }

func (r Result) OK() bool { return r.err == nil }

// Text returns the translation; empty on failure.
func (r Result) Text() string { return r.text }

// Err returns the failure cause; nil on success.
func (r Result) Err() error { return r.err }

// Message describes the failure for logs; empty on success.
func (r Result) Message() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

type Handler struct {
	generator textgen.Generator
	timeout   time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewHandler returns a Handler calling gen. A zero timeout waits for the model
// indefinitely. m may be nil.
func NewHandler(gen textgen.Generator, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		generator: gen,
		timeout:   timeout,
		metrics:   m,
		logger:    logger,
	}
}

// Handle never returns an error; every failure is logged and folded into the
// Result.
func (h *Handler) Handle(ctx context.Context, req Request) Result {
	start := time.Now()

	result := h.handle(ctx, req)

	outcome := metrics.OutcomeSuccess
	if !result.OK() {
		outcome = outcomeFor(result.Err())
		h.logger.Error("there was a problem with the request", "outcome", outcome, "error", result.Err())
	}
	h.metrics.ObserveTranslation(outcome, time.Since(start))
	return result
}

func (h *Handler) handle(ctx context.Context, req Request) Result {
	if req.Text == nil {
		return Failure(fmt.Errorf("%w: missing text parameter", ErrDecode))
	}

	text, err := url.QueryUnescape(*req.Text)
	if err != nil {
		return Failure(fmt.Errorf("%w: %v", ErrDecode, err))
	}
	h.logger.Info("received text", "text", text)

	translation, err := h.generate(ctx, BuildPrompt(text))
	if err != nil {
		return Failure(err)
	}

	if !utf8.ValidString(translation) {
		return Failure(fmt.Errorf("%w: model output is not valid UTF-8", ErrNormalization))
	}

	normalized := romanize.Normalize(translation)
	h.logger.Info("translation response", "text", normalized)
	return Success(normalized)
}

type generation struct {
	text string
	err  error
}

// generate runs the model call on its own goroutine and waits for it, bounded
// by the handler timeout.
func (h *Handler) generate(ctx context.Context, prompt string) (string, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	// Buffered so the worker never blocks if we stop waiting.
	done := make(chan generation, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- generation{err: fmt.Errorf("%w: generator panicked: %v", ErrGeneration, p)}
			}
		}()
		start := time.Now()
		text, err := h.generator.Generate(ctx, prompt)
		h.metrics.ObserveGeneration("text", time.Since(start))
		done <- generation{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, ErrGeneration) {
				return "", res.err
			}
			return "", fmt.Errorf("%w: %w", ErrGeneration, res.err)
		}
		if res.text == "" {
			return "", fmt.Errorf("%w: empty response", ErrGeneration)
		}
		return res.text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrGeneration, ctx.Err())
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrDecode):
		return metrics.OutcomeDecodeError
	case errors.Is(err, ErrNormalization):
		return metrics.OutcomeNormalizationError
	default:
		return metrics.OutcomeGenerationError
	}
}
