package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrInvalidWeights = errors.New("invalid weights")
)
