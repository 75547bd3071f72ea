package utils

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
}

// InitLogger swaps the global logger for a production logger at level.
// An unparsable level keeps info.
func InitLogger(level string) error {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			zap.L().Warn("unknown log level, using info", zap.String("level", level))
		} else {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}

func GetLogger(ctx context.Context) *zap.Logger {
	return zap.L()
}

func GetPanicInfo() string {
	buf := make([]byte, 16384)
	l := runtime.Stack(buf, false)
	return string(buf[:l])
}
