// Package logx bootstraps the module's structured logger: a production
// JSON logger outside development, a human-readable console logger in it.
package logx

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a *zap.SugaredLogger appropriate to env ("development",
// "production", or anything else, which is treated as production).
func New(env string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch env {
	case "development":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logx: build logger: %w", err)
	}
	return logger.Sugar(), nil
}
