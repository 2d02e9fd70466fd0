// Package logging builds the root zap logger and provides sanitizers for
// values that may carry credentials.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the root logger for the given environment. Local environments
// get the human-readable development encoder; everything else logs JSON.
func New(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
