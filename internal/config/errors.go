package config

import (
	"errors"
)

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig  = errors.New("invalid config")
	ErrInvalidWeights = errors.New("invalid match weights")
	ErrLoadConfig     = errors.New("load config failed")
)
