// Package logger builds the slog loggers used by graphwalk commands.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// successMarkers pick out info messages that report completed work; they
// are printed in green.
var successMarkers = []string{"finished", "loaded", "listening", "completed"}

// ColorHandler is a text handler that colors whole lines by level when
// writing to a terminal: errors red, warnings yellow, completion messages
// green.
type ColorHandler struct {
	text  slog.Handler
	w     io.Writer
	color bool
	mu    *sync.Mutex
	buf   *lineBuffer
}

// lineBuffer captures one formatted record so it can be wrapped in color
// codes before reaching the real writer.
type lineBuffer struct {
	strings.Builder
}

// NewColorHandler creates a ColorHandler writing to w. Color is enabled
// only when w is a terminal.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	buf := &lineBuffer{}
	return &ColorHandler{
		text:  slog.NewTextHandler(buf, opts),
		w:     w,
		color: isTerminal(w),
		mu:    &sync.Mutex{},
		buf:   buf,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Enabled implements slog.Handler
func (h *ColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.text.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ColorHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.text.Handle(ctx, r); err != nil {
		return err
	}
	line := h.buf.String()

	if color := h.colorFor(r); color != "" {
		line = color + strings.TrimSuffix(line, "\n") + colorReset + "\n"
	}
	_, err := io.WriteString(h.w, line)
	return err
}

func (h *ColorHandler) colorFor(r slog.Record) string {
	if !h.color {
		return ""
	}
	switch {
	case r.Level >= slog.LevelError:
		return colorRed
	case r.Level >= slog.LevelWarn:
		return colorYellow
	}
	msg := strings.ToLower(r.Message)
	for _, m := range successMarkers {
		if strings.Contains(msg, m) {
			return colorGreen
		}
	}
	return ""
}

// WithAttrs implements slog.Handler
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.text = h.text.WithAttrs(attrs)
	return &c
}

// WithGroup implements slog.Handler
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.text = h.text.WithGroup(name)
	return &c
}

// NewDefaultLogger returns a colored logger on stderr at level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// New returns a logger writing to w in format "json" or "text" (colored on
// terminals) at the named level. Unknown levels fall back to info.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(NewColorHandler(w, opts))
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
