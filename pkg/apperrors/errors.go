package apperrors

import "errors"

var (
	ErrMissingColumns    = errors.New("missing required columns")
	ErrMissingAPIKey     = errors.New("an LLM API key is required")
	ErrUnsupportedChart  = errors.New("unsupported chart kind")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
