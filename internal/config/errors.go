package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures reading a config source.
	ErrLoadConfig = errors.New("load config failed")
	// ErrDotenv marks a dotenv file that exists but could not be parsed.
	ErrDotenv = errors.New("dotenv file unreadable")
)
