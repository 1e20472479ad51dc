// Package log provides structured logging with run context.
//
// Two logger variants are available:
//   - Logger: non-sugared zap.Logger for the streaming core (structured fields)
//   - SugaredLogger: printf-style logging for CLI surfaces
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// Logger provides structured logging with run context.
// Every entry carries the run identity fields.
type Logger struct {
	zap    *zap.Logger
	level  zapcore.Level
	fields []zap.Field
}

// SugaredLogger provides printf-style logging for CLI surfaces.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a new logger with run context.
// Output defaults to os.Stderr.
func NewLogger(runMeta *types.RunMeta) *Logger {
	return newLoggerWithWriter(runMeta, os.Stderr, zapcore.DebugLevel)
}

// NewLoggerWithLevel creates a run logger that drops entries below level.
// Unknown level names fall back to info.
func NewLoggerWithLevel(runMeta *types.RunMeta, level string) *Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	return newLoggerWithWriter(runMeta, os.Stderr, lvl)
}

// NewCLILogger creates a logger without run context, for entries that
// belong to a whole CLI session rather than one run.
func NewCLILogger(level string) *Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	return build(os.Stderr, lvl, []zap.Field{zap.String("component", "cli")})
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zap: zap.NewNop(), level: zapcore.FatalLevel}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
}

// WithOutput returns a new logger with a different output writer.
// Context fields live in the core, so they are re-applied to the new one.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	return build(w, l.level, l.fields)
}

// With returns a logger that adds a component name to every entry.
func (l *Logger) With(component string) *Logger {
	fields := append(append([]zap.Field{}, l.fields...), zap.String("component", component))
	return &Logger{zap: l.zap.With(zap.String("component", component)), level: l.level, fields: fields}
}

func build(w io.Writer, level zapcore.Level, fields []zap.Field) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return &Logger{zap: zap.New(core).With(fields...), level: level, fields: fields}
}

func newLoggerWithWriter(runMeta *types.RunMeta, w io.Writer, level zapcore.Level) *Logger {
	contextFields := []zap.Field{
		zap.String("run_id", runMeta.RunID),
		zap.String("tool", runMeta.Tool),
		zap.Int("batch", runMeta.Batch),
	}
	if runMeta.ParentRunID != nil {
		contextFields = append(contextFields, zap.String("parent_run_id", *runMeta.ParentRunID))
	}

	return build(w, level, contextFields)
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs a debug message with printf-style formatting.
func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

// Errorf logs an error message with printf-style formatting.
func (s *SugaredLogger) Errorf(template string, args ...any) {
	s.sugar.Errorf(template, args...)
}

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
