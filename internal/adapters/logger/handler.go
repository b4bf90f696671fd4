package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/daybook/internal/ui/output"
	"go.trai.ch/daybook/internal/ui/style"
)

// EntityKeyAttr names the attribute carrying the cache key a record is
// about. At the top level it is rendered as a "[todos/42]" prefix instead
// of a key=value pair.
const EntityKeyAttr = "key"

// PrettyHandler is a slog.Handler that writes one colored line per record.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	prefix string
	attrs  []string
	groups []string
}

// NewPrettyHandler creates a new PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record as "<icon> [key] message attrs...".
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	prefix := h.prefix
	attrs := append([]string(nil), h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		if p, ok := h.entityKey(attr); ok {
			prefix = p
			return true
		}
		attrs = appendAttr(attrs, h.groups, attr)
		return true
	})

	var icon string
	var color termenv.Color
	switch {
	case r.Level >= slog.LevelError:
		icon = style.Cross
		color = termenv.RGBColor(string(style.Red))
	case r.Level >= slog.LevelWarn:
		icon = style.Warning
		color = termenv.RGBColor(string(style.Yellow))
	default:
		color = termenv.RGBColor(string(style.Slate))
	}

	parts := make([]string, 0, len(attrs)+3)
	if icon != "" {
		parts = append(parts, icon)
	}
	if prefix != "" {
		parts = append(parts, "["+prefix+"]")
	}
	parts = append(parts, r.Message)
	parts = append(parts, attrs...)

	styled := h.out.String(strings.Join(parts, " ")).Foreground(color)
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs returns a new Handler with the given attributes appended. They
// are qualified by the groups opened so far.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]string(nil), h.attrs...)
	for _, attr := range attrs {
		if p, ok := h.entityKey(attr); ok {
			next.prefix = p
			continue
		}
		next.attrs = appendAttr(next.attrs, h.groups, attr)
	}
	return &next
}

// WithGroup returns a new Handler that qualifies later attributes with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func (h *PrettyHandler) entityKey(attr slog.Attr) (string, bool) {
	if len(h.groups) > 0 || attr.Key != EntityKeyAttr {
		return "", false
	}
	v := attr.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		return "", false
	}
	return v.String(), true
}

// appendAttr formats attr as dotted key=value pairs, flattening groups and
// dropping empty attributes.
func appendAttr(dst []string, groups []string, attr slog.Attr) []string {
	v := attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}

	if v.Kind() == slog.KindGroup {
		inner := groups
		if attr.Key != "" {
			inner = append(append([]string(nil), groups...), attr.Key)
		}
		for _, a := range v.Group() {
			dst = appendAttr(dst, inner, a)
		}
		return dst
	}

	key := strings.Join(append(append([]string(nil), groups...), attr.Key), ".")
	return append(dst, key+"="+v.String())
}
