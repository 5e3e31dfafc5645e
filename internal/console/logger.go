// Package console renders the user-facing run log.
//
// Every component logs through zerolog. Lines are tagged with a kind so the
// console writer can style success and title lines apart from plain info.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// KindField is the event field carrying the line kind.
const KindField = "kind"

const (
	KindInfo    = "info"
	KindSuccess = "success"
	KindWarning = "warning"
	KindError   = "error"
	KindTitle   = "title"
	KindDebug   = "debug"
)

// Options configure New.
type Options struct {
	Out     io.Writer
	Verbose bool
	NoColor bool
	Theme   *Theme

	// File, when set, receives the same events as JSON lines with rotation.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New builds the root logger. The returned closer flushes the file sink, if any.
func New(opts Options) (zerolog.Logger, io.Closer) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	var w io.Writer = NewWriter(out, theme, opts.NoColor)
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		w = zerolog.MultiLevelWriter(w, lj)
		closer = lj
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), closer
}

// NewWriter returns a zerolog.ConsoleWriter that prints "<icon> <message>" lines.
func NewWriter(out io.Writer, theme Theme, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       noColor,
		PartsOrder:    []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FieldsExclude: []string{KindField, "component"},
		FormatPrepare: func(evt map[string]interface{}) error {
			kind := kindOf(evt)
			prefix := theme.Icon(kind)
			msg := fmt.Sprint(evt[zerolog.MessageFieldName])
			if !noColor {
				prefix = theme.style(kind).Render(prefix)
				msg = theme.style(kind).Render(msg)
			}
			evt[zerolog.LevelFieldName] = prefix
			evt[zerolog.MessageFieldName] = msg
			return nil
		},
		FormatLevel: func(i interface{}) string {
			return fmt.Sprint(i)
		},
	}
}

func kindOf(evt map[string]interface{}) string {
	if kind, ok := evt[KindField].(string); ok && kind != "" {
		return kind
	}
	switch evt[zerolog.LevelFieldName] {
	case zerolog.LevelWarnValue:
		return KindWarning
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		return KindError
	case zerolog.LevelDebugValue, zerolog.LevelTraceValue:
		return KindDebug
	default:
		return KindInfo
	}
}

// Success starts an info event rendered as a success line.
func Success(l zerolog.Logger) *zerolog.Event {
	return l.Info().Str(KindField, KindSuccess)
}

// Title starts an info event rendered as a section heading.
func Title(l zerolog.Logger) *zerolog.Event {
	return l.Info().Str(KindField, KindTitle)
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
