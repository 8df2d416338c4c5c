package logger

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide logger. Production JSON output by default;
// APP_ENV=dev switches to the human-readable development encoder.
func New() (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if env := os.Getenv("APP_ENV"); env == "dev" || env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "time"
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Named("connectd-billing").Sugar(), nil
}

var Module = fx.Options(
	fx.Provide(New),
)
