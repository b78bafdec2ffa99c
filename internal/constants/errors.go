package constants

import "errors"

// Configuration errors.
var (
	ErrNoRootConfigured     = errors.New("no root URI configured, use --root or 'linkwalk config set root <uri>'")
	ErrUnknownConfigKey     = errors.New("unknown configuration key")
	ErrInvalidOutputFormat  = errors.New("invalid output format, expected table, json or yaml")
	ErrInvalidEmbeddedValue = errors.New("invalid embedded policy, expected trust or require-self")
)

// Argument errors.
var (
	ErrInvalidHeader      = errors.New("invalid header, expected 'Name: value'")
	ErrInvalidParam       = errors.New("invalid parameter, expected rel:key=value")
	ErrNoStdinData        = errors.New("--data - requires data piped on standard input")
	ErrDataRequired       = errors.New("--data flag is required")
	ErrInvalidJSONPayload = errors.New("--data is not valid JSON")
)

// File system errors.
var (
	ErrNotRegularFile = errors.New("path is not a regular file")
)

// Events errors.
var (
	ErrEventsURLRequired = errors.New("events URL is required")
)
