package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ActionsHandler writes records as GitHub Actions workflow commands so that
// warnings and errors are annotated in the job log. Info records are written
// as plain lines.
type ActionsHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Level
	attrs  []slog.Attr
	prefix string
}

// NewActionsHandler creates a handler that only emits records at or above level.
func NewActionsHandler(w io.Writer, level slog.Level) *ActionsHandler {
	return &ActionsHandler{mu: &sync.Mutex{}, w: w, level: level}
}

// Enabled implements slog.Handler.
func (h *ActionsHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *ActionsHandler) Handle(_ context.Context, r slog.Record) error {
	pairs := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		pairs = append(pairs, formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		pairs = append(pairs, formatAttr(a))
		return true
	})
	sort.Strings(pairs)

	line := r.Message
	if len(pairs) > 0 {
		line += " " + strings.Join(pairs, " ")
	}

	var out string
	switch {
	case r.Level >= slog.LevelError:
		out = "::error::" + escapeData(line)
	case r.Level >= slog.LevelWarn:
		out = "::warning::" + escapeData(line)
	case r.Level < slog.LevelInfo:
		out = "::debug::" + escapeData(line)
	default:
		out = line
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, out)
	return err
}

// WithAttrs implements slog.Handler.
func (h *ActionsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *ActionsHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func formatAttr(a slog.Attr) string {
	return fmt.Sprintf("%s=%v", a.Key, a.Value.Resolve().Any())
}

// escapeData applies the workflow command data escaping rules.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
