// Package logger builds the process-wide zap logger.
package logger

import (
    "fmt"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// New returns a JSON production logger for prod environments and a
// colourised console logger otherwise.  level is a zap level name such as
// "debug" or "warn"; an empty string keeps the environment default.
func New(env, level string) (*zap.Logger, error) {
    var cfg zap.Config
    if env == "prod" || env == "production" {
        cfg = zap.NewProductionConfig()
        cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
    } else {
        cfg = zap.NewDevelopmentConfig()
        cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
        cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
    }
    if level != "" {
        lvl, err := zapcore.ParseLevel(level)
        if err != nil {
            return nil, fmt.Errorf("parse log level: %w", err)
        }
        cfg.Level = zap.NewAtomicLevelAt(lvl)
    }
    return cfg.Build()
}
