package server

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger: console output for development
// and testing, JSON for everything else.
func NewLogger(env string) (*zap.Logger, error) {
	switch env {
	case EnvDevelopment, EnvTesting:
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}
