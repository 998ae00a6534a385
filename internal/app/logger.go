package app

import "go.uber.org/zap"

// NewLogger returns a JSON production logger when APP_ENV=production, a console one otherwise.
func NewLogger(cfg Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
