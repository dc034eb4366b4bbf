package utils

import "go.uber.org/zap"

// NewLogger builds the application logger. Debug mode uses zap's development
// config (console encoder, debug level); otherwise production (JSON, info
// level, sampling).
func NewLogger(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	return cfg.Build()
}
