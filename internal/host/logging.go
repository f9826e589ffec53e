package host

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoggingConvention configures application logging.
type LoggingConvention interface {
	ConfigureLogging(b *LoggingBuilder) error
}

// LoggingDelegate is the delegate form of LoggingConvention.
type LoggingDelegate func(b *LoggingBuilder) error

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LoggingBuilder accumulates logger settings.
//
// The builder starts from the "logging.level" and "logging.format"
// configuration keys when they are set.
type LoggingBuilder struct {
	// Configuration is the configuration built in the previous stage.
	Configuration *Configuration

	level  slog.Level
	format string
	writer io.Writer
	attrs  []any
}

// NewLoggingBuilder creates a builder seeded from conf. conf may be nil.
func NewLoggingBuilder(conf *Configuration) (*LoggingBuilder, error) {
	b := &LoggingBuilder{
		Configuration: conf,
		level:         slog.LevelInfo,
		format:        FormatText,
		writer:        os.Stderr,
	}
	if s := conf.GetString("logging.level"); s != "" {
		if err := b.SetLevelString(s); err != nil {
			return nil, err
		}
	}
	if s := conf.GetString("logging.format"); s != "" {
		if err := b.SetFormat(s); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// SetLevel sets the minimum level.
func (b *LoggingBuilder) SetLevel(level slog.Level) { b.level = level }

// SetLevelString sets the minimum level from its name (debug, info, warn, error).
func (b *LoggingBuilder) SetLevelString(s string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", s, err)
	}
	b.level = level
	return nil
}

// Level returns the configured minimum level.
func (b *LoggingBuilder) Level() slog.Level { return b.level }

// SetFormat selects text or json output.
func (b *LoggingBuilder) SetFormat(format string) error {
	switch f := strings.ToLower(format); f {
	case FormatText, FormatJSON:
		b.format = f
		return nil
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", format)
	}
}

// Format returns the configured output format.
func (b *LoggingBuilder) Format() string { return b.format }

// SetWriter sets the log destination. Default: os.Stderr.
func (b *LoggingBuilder) SetWriter(w io.Writer) { b.writer = w }

// With adds attributes attached to every record, as key/value pairs or
// slog.Attr values.
func (b *LoggingBuilder) With(args ...any) { b.attrs = append(b.attrs, args...) }

// Build returns the logger described by the builder.
func (b *LoggingBuilder) Build() *slog.Logger {
	opts := &slog.HandlerOptions{Level: b.level}
	var h slog.Handler
	if b.format == FormatJSON {
		h = slog.NewJSONHandler(b.writer, opts)
	} else {
		h = slog.NewTextHandler(b.writer, opts)
	}
	logger := slog.New(h)
	if len(b.attrs) > 0 {
		logger = logger.With(b.attrs...)
	}
	return logger
}
