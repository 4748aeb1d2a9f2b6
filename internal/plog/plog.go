// Package plog is PetalFlow's ambient logger: a thin wrapper around the
// standard log package with a minimum-level filter and a tag-suppression
// flag, without pulling in a structured logging library the rest of the
// retrieval pack never uses. It has no separate on/off switch and no
// time- or level-suppression flag.
package plog

import (
	"log"
	"os"
)

// Level orders PetalFlow's four log levels, lowest-severity first.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "???"
	}
}

// Logger is a leveled logger matching the original's logger(level, where,
// fmt, ...) call shape. Construct one with New; the zero value has no
// underlying log.Logger and cannot log.
type Logger struct {
	Min         Level
	std         *log.Logger
	suppressTag bool
}

// New builds a Logger with the given minimum level, writing through the
// standard library's log.Logger so call sites look like the rest of the
// pack's Go code (log.Fatalf-style), not a third-party structured logger.
func New(min Level) *Logger {
	return &Logger{Min: min, std: log.New(os.Stderr, "", log.LstdFlags)}
}

// Default is the process-wide logger, analogous to the engine's
// process-wide PRNG: available but never mandatory.
var Default = New(Info)

// Log emits a message at the given level and location tag if the level
// clears the logger's minimum.
func (l *Logger) Log(level Level, where, format string, args ...any) {
	if level < l.Min {
		return
	}
	prefix := "[" + level.String() + "]"
	if !l.suppressTag && where != "" {
		prefix += " " + where + ":"
	}
	l.std.Printf(prefix+" "+format, args...)
}

func (l *Logger) Debugf(where, format string, args ...any) { l.Log(Debug, where, format, args...) }
func (l *Logger) Infof(where, format string, args ...any)  { l.Log(Info, where, format, args...) }
func (l *Logger) Warnf(where, format string, args ...any)  { l.Log(Warn, where, format, args...) }
func (l *Logger) Errorf(where, format string, args ...any) { l.Log(Error, where, format, args...) }

// SuppressTag disables the " where:" tag in the prefix, matching the
// original build's tag-suppression knob; the "[LEVEL]" part is still
// printed.
func (l *Logger) SuppressTag(suppress bool) {
	l.suppressTag = suppress
}
