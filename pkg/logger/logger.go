package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It is a no-op until Initialize runs so
// packages can log from tests without setup.
var Logger *zap.SugaredLogger

func init() {
	Logger = zap.NewNop().Sugar()
}

// Bootstrap points the global logger at w until Initialize runs, so startup
// failures before the config is read are still reported.
func Bootstrap(w io.Writer) {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.InfoLevel)
	Logger = zap.New(core).Sugar()
}

// Initialize builds the global logger. JSON output is meant for containers,
// the console encoder for local runs.
func Initialize(jsonOutput bool, level string) error {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return err
		}
	}

	var cfg zap.Config
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = lvl

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = l.Sugar()
	return nil
}

// Named returns a child logger tagged with a component name.
func Named(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// Sync flushes buffered entries; errors from syncing stdout are ignored.
func Sync() {
	_ = Logger.Sync()
}
