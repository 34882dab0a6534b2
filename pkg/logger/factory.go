package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs structured logs for production log aggregation systems.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for development debugging.
	FormatText Format = "text"
)

// Option configures logger creation.
type Option func(*config)

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat sets output format. Panics for invalid formats so that
// misconfiguration prevents startup rather than causing runtime errors.
func WithFormat(f Format) Option {
	return func(c *config) {
		switch f {
		case FormatJSON, FormatText:
			c.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatJSON, FormatText))
		}
	}
}

// WithOutput sets a custom output destination, ignoring nil writers.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		if len(attrs) > 0 {
			c.attrs = append(c.attrs, attrs...)
		}
	}
}

// WithDevelopment configures development defaults: text format for
// readability and debug level for detailed diagnostics.
func WithDevelopment(service string) Option {
	return func(c *config) {
		if service == "" {
			return
		}
		c.level = slog.LevelDebug
		c.format = FormatText
		c.attrs = append(c.attrs,
			slog.String("service", service),
			slog.String("env", "development"),
		)
	}
}

// WithProduction configures production defaults: JSON format for structured
// logging and info level to reduce noise.
func WithProduction(service string) Option {
	return func(c *config) {
		if service == "" {
			return
		}
		c.level = slog.LevelInfo
		c.format = FormatJSON
		c.attrs = append(c.attrs,
			slog.String("service", service),
			slog.String("env", "production"),
		)
	}
}

func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

type config struct {
	level  slog.Level
	format Format
	output io.Writer
	attrs  []slog.Attr
}

func defaultConfig() *config {
	return &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
}

// New creates a configured slog.Logger.
func New(opts ...Option) *slog.Logger {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}

	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record. Components use it as the
// default so logging stays optional in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
