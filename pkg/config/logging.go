package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	rlog "github.com/ETCLabs/rdmnet-go/pkg/log"
)

// LoggingConfig selects operational and protocol logging.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`

	// ProtocolLog is the path of a protocol capture file; empty disables it.
	ProtocolLog string `yaml:"protocol_log"`
}

func (l *LoggingConfig) validate() error {
	if _, ok := parseLevel(l.Level); !ok {
		return fmt.Errorf("level %q must be debug, info, warn or error", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("format %q must be text or json", l.Format)
	}
}

// NewLogger builds the operational logger writing to w.
func (l *LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(l.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// NewProtocolLogger opens the protocol capture file, if configured, with a
// session described by header, and mirrors protocol events to logger at
// debug level. The result is nil when both are off. The returned close
// function releases the file.
func (l *LoggingConfig) NewProtocolLogger(logger *slog.Logger, header rlog.CaptureHeader) (rlog.Logger, func() error, error) {
	var sinks []rlog.Logger
	closeFn := func() error { return nil }

	if l.ProtocolLog != "" {
		fl, err := rlog.NewFileLogger(l.ProtocolLog, header)
		if err != nil {
			return nil, nil, fmt.Errorf("opening protocol log: %w", err)
		}
		sinks = append(sinks, fl)
		closeFn = fl.Close
	}
	if logger != nil && logger.Enabled(context.Background(), slog.LevelDebug) {
		sinks = append(sinks, rlog.NewSlogAdapter(logger))
	}
	return rlog.Tee(sinks...), closeFn, nil
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
