// Package shell is the terminal front end of genstudio: a line-oriented
// session that switches between image, recipe and translation modes.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/genstudio/internal/domain"
	"github.com/vbonduro/genstudio/internal/recipe"
)

type Mode string

const (
	ModeImage     Mode = "image"
	ModeRecipe    Mode = "recipe"
	ModeTranslate Mode = "translate"
)

func (m Mode) label() string {
	switch m {
	case ModeImage:
		return "Image Generation"
	case ModeRecipe:
		return "Recipe Generation"
	default:
		return "Text Translation"
	}
}

func parseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(s)) {
	case ModeImage:
		return ModeImage, true
	case ModeRecipe:
		return ModeRecipe, true
	case ModeTranslate:
		return ModeTranslate, true
	}
	return "", false
}

// commandModes lists the mode each mode-bound command belongs to.
var commandModes = map[string]Mode{
	"generate": ModeImage,
	"upload":   ModeRecipe,
	"start":    ModeTranslate,
	"stop":     ModeTranslate,
}

const timestampLayout = "2006-01-02 15:04:05"

const usage = `commands:
  mode image|recipe|translate   switch generation type
  generate <prompt>             generate an image (image mode)
  upload <path>                 generate a recipe from a photo (recipe mode)
  start | stop                  toggle the translation proxy (translate mode)
  help                          show this help
  quit                          leave the shell`

// Studio runs the image and recipe flows.
type Studio interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
	GenerateRecipe(ctx context.Context, imagePath string) (*domain.Recipe, error)
}

// Process is the supervised translation proxy.
type Process interface {
	Start() error
	Stop() error
	Running() bool
}

type Shell struct {
	studio Studio
	proc   Process
	out    io.Writer
	logger *slog.Logger
	mode   Mode
	now    func() time.Time
}

// New returns a Shell in recipe mode.
func New(studio Studio, proc Process, out io.Writer, logger *slog.Logger) *Shell {
	return &Shell{
		studio: studio,
		proc:   proc,
		out:    out,
		logger: logger,
		mode:   ModeRecipe,
		now:    time.Now,
	}
}

func (s *Shell) Mode() Mode { return s.mode }

// Run reads commands from in until quit, EOF or ctx is cancelled. A running
// translation process is stopped on the way out.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	defer s.shutdown()

	s.logf("Selected Generation Type: %s", s.mode.label())

	lines := make(chan string)
	scanErr := make(chan error, 1)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-quit:
				return
			}
		}
		scanErr <- sc.Err()
		close(lines)
	}()

	for {
		s.prompt()
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(s.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				_, _ = fmt.Fprintln(s.out)
				return <-scanErr
			}
			if !s.Exec(ctx, line) {
				return nil
			}
		}
	}
}

func (s *Shell) prompt() {
	_, _ = fmt.Fprintf(s.out, "genstudio[%s]> ", s.mode)
}

// Exec runs a single command line. It returns false when the shell should
// exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	if cmd == "" {
		return true
	}

	if want, ok := commandModes[cmd]; ok && want != s.mode {
		s.logf("%q is not available in %s mode", cmd, s.mode)
		return true
	}

	switch cmd {
	case "help":
		_, _ = fmt.Fprintln(s.out, usage)
	case "quit", "exit":
		return false
	case "mode":
		s.setMode(arg)
	case "generate":
		s.generateImage(ctx, arg)
	case "upload":
		s.uploadImage(ctx, arg)
	case "start":
		s.startTranslator()
	case "stop":
		s.stopTranslator()
	default:
		s.logf("unknown command %q, type help for a list", cmd)
	}
	return true
}

func (s *Shell) setMode(arg string) {
	m, ok := parseMode(arg)
	if !ok {
		s.logf("unknown mode %q, choose image, recipe or translate", arg)
		return
	}
	s.mode = m
	s.logf("Selected Generation Type: %s", m.label())
}

func (s *Shell) generateImage(ctx context.Context, prompt string) {
	s.logf("Generating %s content...", s.mode.label())
	path, err := s.studio.GenerateImage(ctx, prompt)
	if err != nil {
		s.fail(err)
		return
	}
	s.logf("Image saved to %s", path)
}

func (s *Shell) uploadImage(ctx context.Context, path string) {
	if path == "" {
		s.logf("usage: upload <path>")
		return
	}
	s.logf("Recipe generation started...")
	r, err := s.studio.GenerateRecipe(ctx, path)
	if err != nil {
		s.fail(err)
		return
	}
	_, _ = fmt.Fprintln(s.out, recipe.Format(r))
	s.logf("Recipe generation completed successfully.")
}

func (s *Shell) startTranslator() {
	s.logf("Starting translation process...")
	if err := s.proc.Start(); err != nil {
		s.logf("Failed to manage translation process: %v", err)
		return
	}
	s.logf("Translation process started.")
}

func (s *Shell) stopTranslator() {
	s.logf("Stopping translation process...")
	if err := s.proc.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		s.logf("Failed to manage translation process: %v", err)
		return
	}
	s.logf("Translation process stopped.")
}

func (s *Shell) shutdown() {
	if s.proc == nil || !s.proc.Running() {
		return
	}
	if err := s.proc.Stop(); err != nil {
		s.logger.Error("failed to stop translation process", "error", err)
	}
}

func (s *Shell) fail(err error) {
	s.logger.Error("generation failed", "mode", s.mode, "error", err)
	s.logf("Error occurred: %v", err)
}

func (s *Shell) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(s.out, "%s - %s\n", s.now().Format(timestampLayout), msg)
}
