package sinks

import (
	"github.com/fatih/color"

	"github.com/corelogio/corelog/core"
)

// ConsoleTheme maps each severity level to a fatih/color style, plus the
// accent colors used for the timestamp and context-property rendering.
// Grounded on the teacher library's ConsoleTheme (sinks/console_theme.go),
// reworked to drive the real color library instead of hand-rolled ANSI
// escape constants.
type ConsoleTheme struct {
	Trace *color.Color
	Debug *color.Color
	Info  *color.Color
	Warn  *color.Color
	Error *color.Color
	Fatal *color.Color

	Timestamp *color.Color
	PropKey   *color.Color
	PropValue *color.Color
}

// LevelColor returns the theme's style for level.
func (t *ConsoleTheme) LevelColor(level core.Level) *color.Color {
	switch level {
	case core.Trace:
		return t.Trace
	case core.Debug:
		return t.Debug
	case core.Info:
		return t.Info
	case core.Warn:
		return t.Warn
	case core.Error:
		return t.Error
	case core.Fatal:
		return t.Fatal
	default:
		return color.New()
	}
}

// DefaultTheme mirrors Serilog's conventional console palette: calm colors
// for the low-severity levels, red/bold for faults.
func DefaultTheme() *ConsoleTheme {
	return &ConsoleTheme{
		Trace: color.New(color.FgHiBlack),
		Debug: color.New(color.FgCyan),
		Info:  color.New(color.FgGreen),
		Warn:  color.New(color.FgYellow),
		Error: color.New(color.FgRed),
		Fatal: color.New(color.FgHiRed, color.Bold),

		Timestamp: color.New(color.FgHiBlack),
		PropKey:   color.New(color.FgHiBlue),
		PropValue: color.New(color.Reset),
	}
}

// NoColorTheme disables every style; used when color output is suppressed
// by NO_COLOR/LUNAR_LOG_NO_COLOR or the destination isn't a terminal.
func NoColorTheme() *ConsoleTheme {
	plain := color.New()
	return &ConsoleTheme{
		Trace: plain, Debug: plain, Info: plain, Warn: plain, Error: plain, Fatal: plain,
		Timestamp: plain, PropKey: plain, PropValue: plain,
	}
}
