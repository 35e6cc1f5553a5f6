package logger

import (
	"go.uber.org/zap"
)

// NewNamed builds a zap logger appropriate for the environment and names
// it after the service. Development gets console output, everything else
// JSON.
func NewNamed(env, name string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Named(name), nil
}
