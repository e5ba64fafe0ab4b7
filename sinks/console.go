package sinks

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/internal/formatters"
)

// consoleMu serializes writes to stdout/stderr across every console
// transport in the process, matching the process-global console mutex
// contract (spec.md §4.4.1) so two console sinks (e.g. one on stdout for
// info and below, one on stderr for warnings and up) never interleave
// partial lines.
var consoleMu sync.Mutex

// ConsoleTransport writes formatted lines to a terminal, applying
// per-level ANSI color when the destination is a real TTY and color
// hasn't been suppressed.
type ConsoleTransport struct {
	w        io.Writer
	theme    *ConsoleTheme
	useColor bool
}

// NewConsoleTransport wraps w (typically os.Stdout or os.Stderr). Color is
// auto-detected: disabled when NO_COLOR or LUNAR_LOG_NO_COLOR is set, when
// w isn't backed by a terminal file descriptor, or when theme is nil.
func NewConsoleTransport(w io.Writer, theme *ConsoleTheme) *ConsoleTransport {
	useColor := theme != nil && colorAllowed(w)
	out := w
	if useColor {
		out = colorable.NewColorable(fdOf(w))
	}
	return &ConsoleTransport{w: out, theme: theme, useColor: useColor}
}

func fdOf(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return os.Stdout
}

func colorAllowed(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set || os.Getenv("LUNAR_LOG_NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WriteLine implements Transport.
func (t *ConsoleTransport) WriteLine(line string) error {
	consoleMu.Lock()
	defer consoleMu.Unlock()
	_, err := fmt.Fprintln(t.w, line)
	return err
}

// coloredHumanFormatter renders the default human layout with the
// timestamp, level, and properties colorized per the theme. It composes
// formatters.Human's plain layout by re-deriving the same pieces rather
// than regexing its output, so a future change to the human formatter's
// field order isn't silently duplicated here.
type coloredHumanFormatter struct {
	theme *ConsoleTheme
	plain *formatters.Human
}

func newColoredHumanFormatter(theme *ConsoleTheme) *coloredHumanFormatter {
	return &coloredHumanFormatter{theme: theme, plain: formatters.NewHuman()}
}

func (f *coloredHumanFormatter) Format(entry *core.LogEntry) string {
	if f.theme == nil {
		return f.plain.Format(entry)
	}

	var b strings.Builder
	b.WriteString(f.theme.Timestamp.Sprint(entry.Timestamp.Format("2006-01-02 15:04:05.000")))
	b.WriteByte(' ')
	b.WriteString(f.theme.LevelColor(entry.Level).Sprintf("[%s]", entry.Level.String()))
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	if entry.File != "" {
		b.WriteByte(' ')
		b.WriteString(entry.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(entry.Line))
		if entry.Function != "" {
			b.WriteByte(' ')
			b.WriteString(entry.Function)
		}
	}

	if len(entry.CustomContext) > 0 {
		b.WriteString(" {")
		keys := make([]string, 0, len(entry.CustomContext))
		for k := range entry.CustomContext {
			keys = append(keys, k)
		}
		sortKeysConsole(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			v := entry.CustomContext[k]
			if strings.ContainsAny(v, ",=") {
				v = strconv.Quote(v)
			}
			b.WriteString(f.theme.PropKey.Sprint(k))
			b.WriteByte('=')
			b.WriteString(f.theme.PropValue.Sprint(v))
		}
		b.WriteByte('}')
	}

	if entry.Exception != nil {
		b.WriteString(" | ")
		if entry.Exception.Chain != "" {
			b.WriteString(entry.Exception.Chain)
		} else {
			b.WriteString(entry.Exception.Type)
			b.WriteString(": ")
			b.WriteString(entry.Exception.Message)
		}
	}

	return b.String()
}

func sortKeysConsole(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// NewConsole builds a console sink on os.Stdout using the default theme
// and human-readable formatting.
func NewConsole() *TextSink {
	return NewConsoleWithWriter(os.Stdout, DefaultTheme())
}

// NewConsoleWithWriter builds a console sink writing to w with theme
// (pass nil to force uncolored output regardless of terminal detection).
func NewConsoleWithWriter(w io.Writer, theme *ConsoleTheme) *TextSink {
	transport := NewConsoleTransport(w, theme)
	var formatter core.Formatter
	if transport.useColor {
		formatter = newColoredHumanFormatter(theme)
	} else {
		formatter = formatters.NewHuman()
	}
	return NewTextSink("console", formatter, transport)
}

// NewConsoleWithFormatter builds a console sink writing to w through a
// caller-supplied formatter (e.g. JSON or CLEF to stdout), bypassing the
// theme-aware human renderer entirely.
func NewConsoleWithFormatter(w io.Writer, formatter core.Formatter) *TextSink {
	transport := NewConsoleTransport(w, nil)
	return NewTextSink("console", formatter, transport)
}
