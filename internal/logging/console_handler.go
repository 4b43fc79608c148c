package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHiddenKeys identify the run rather than the event. The JSON log
// keeps them; the terminal already knows which run it is looking at.
var consoleHiddenKeys = map[string]struct{}{
	FieldRunID:  {},
	FieldMode:   {},
	FieldTarget: {},
}

// consolePathKeys hold file system paths that are shown relative to the
// target folder when they sit inside it.
var consolePathKeys = map[string]struct{}{
	"source":          {},
	"destination":     {},
	"path":            {},
	"dir":             {},
	"destination_dir": {},
	"folder":          {},
}

// prettyHandler renders one line per record:
//
//	2006-01-02 15:04:05 [INFO] organizer: file moved source=a.jpg destination=Images/2023/Mar/a.jpg
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	fields := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&fields, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&fields, h.groups, attr)
		return true
	})

	line := consoleLine{
		ts:    record.Time,
		level: record.Level,
		msg:   strings.TrimSpace(record.Message),
	}
	line.split(fields)
	if h.addSource {
		if src := record.Source(); src != nil {
			line.source = filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)
		}
	}

	buf := line.render()
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf)
	return err
}

// consoleLine is a record broken into the parts the terminal shows.
type consoleLine struct {
	ts        time.Time
	level     slog.Level
	component string
	target    string
	msg       string
	source    string
	fields    []kv
}

// split pulls the component and target out of fields and keeps the rest in
// order, dropping run-identity keys.
func (l *consoleLine) split(fields []kv) {
	kept := fields[:0]
	for _, f := range fields {
		switch {
		case f.key == "":
			continue
		case f.key == FieldComponent:
			if l.component == "" {
				l.component = attrString(f.value)
			}
			continue
		case f.key == FieldTarget:
			l.target = attrString(f.value)
		}
		if _, hidden := consoleHiddenKeys[f.key]; hidden {
			continue
		}
		kept = append(kept, f)
	}
	l.fields = kept
}

func (l *consoleLine) render() []byte {
	ts := l.ts
	if ts.IsZero() {
		ts = time.Now()
	}
	var buf bytes.Buffer
	buf.Grow(128 + len(l.fields)*24)

	buf.WriteString(clockText(ts))
	buf.WriteString(" [")
	buf.WriteString(levelLabel(l.level))
	buf.WriteString("] ")
	if l.component != "" {
		buf.WriteString(l.component)
		buf.WriteString(": ")
	}
	if l.msg != "" {
		buf.WriteString(l.msg)
	} else {
		buf.WriteString("(no message)")
	}
	if l.source != "" {
		buf.WriteString(" [")
		buf.WriteString(l.source)
		buf.WriteByte(']')
	}
	for _, f := range l.fields {
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		if _, isPath := consolePathKeys[f.key]; isPath && l.target != "" && f.value.Kind() == slog.KindString {
			buf.WriteString(formatValue(slog.StringValue(relativeTo(l.target, f.value.String()))))
			continue
		}
		buf.WriteString(formatValue(f.value))
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// relativeTo shortens path when it lies inside root and returns it unchanged
// otherwise.
func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *prettyHandler) clone() *prettyHandler {
	return &prettyHandler{
		mu:        h.mu,
		writer:    h.writer,
		level:     h.level,
		addSource: h.addSource,
		attrs:     append([]slog.Attr(nil), h.attrs...),
		groups:    append([]string(nil), h.groups...),
	}
}

type kv struct {
	key   string
	value slog.Value
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		flattenAttrs(dst, next, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		parts := append(append([]string(nil), prefix...), key)
		if key == "" {
			parts = parts[:len(parts)-1]
		}
		key = strings.Join(parts, ".")
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
