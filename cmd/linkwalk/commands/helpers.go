package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fivetwenty-io/linkwalk/internal/constants"
	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"golang.org/x/term"
)

// WalkParams holds template parameters from --param flags: walk-wide ones
// ("key=value") and per-relation ones ("rel:key=value").
type WalkParams struct {
	Global     linkwalk.Params
	ByRelation map[string]linkwalk.Params
}

func validateOutput(format string) error {
	switch format {
	case "", constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}
}

// parseHeaders parses "Name: value" flag values into a header set.
func parseHeaders(values []string) (http.Header, error) {
	headers := make(http.Header)

	for _, value := range values {
		name, val, ok := strings.Cut(value, ":")
		name = strings.TrimSpace(name)

		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeader, value)
		}

		headers.Add(name, strings.TrimSpace(val))
	}

	return headers, nil
}

// parseParams parses --param values of the form "key=value" or
// "rel:key=value". A repeated key on the same scope becomes a list.
func parseParams(values []string) (WalkParams, error) {
	params := WalkParams{
		Global:     linkwalk.Params{},
		ByRelation: map[string]linkwalk.Params{},
	}

	for _, value := range values {
		assignment, val, ok := strings.Cut(value, "=")
		if !ok || assignment == "" {
			return WalkParams{}, fmt.Errorf("%w: %q", constants.ErrInvalidParam, value)
		}

		target := params.Global
		key := assignment

		if rel, k, scoped := strings.Cut(assignment, ":"); scoped {
			if rel == "" || k == "" {
				return WalkParams{}, fmt.Errorf("%w: %q", constants.ErrInvalidParam, value)
			}

			if params.ByRelation[rel] == nil {
				params.ByRelation[rel] = linkwalk.Params{}
			}

			target = params.ByRelation[rel]
			key = k
		}

		addParam(target, key, val)
	}

	return params, nil
}

func addParam(params linkwalk.Params, key, value string) {
	switch existing := params[key].(type) {
	case nil:
		params[key] = value
	case string:
		params[key] = []string{existing, value}
	case []string:
		params[key] = append(existing, value)
	}
}

// readData resolves a --data value: inline JSON, "@file" or "-" for stdin.
// The result is sent as application/json.
func readData(value string, stdin *os.File) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)

	switch {
	case value == constants.StdinArgument:
		data, err = readStdin(stdin)
	case strings.HasPrefix(value, constants.FileArgumentPrefix):
		data, err = readDataFile(strings.TrimPrefix(value, constants.FileArgumentPrefix))
	default:
		data = []byte(value)
	}

	if err != nil {
		return nil, err
	}

	if !json.Valid(data) {
		return nil, constants.ErrInvalidJSONPayload
	}

	return json.RawMessage(data), nil
}

func readStdin(stdin *os.File) ([]byte, error) {
	if stdin == nil || term.IsTerminal(int(stdin.Fd())) {
		return nil, constants.ErrNoStdinData
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read standard input: %w", err)
	}

	return data, nil
}

func readDataFile(path string) ([]byte, error) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
	}

	// #nosec G304 -- the path is supplied by the user on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	return data, nil
}

// buildWalkConfig turns CLI configuration into a client configuration.
func buildWalkConfig(config *Config, extraHeaders []string, verbose bool, logger linkwalk.Logger) (*linkwalk.Config, error) {
	if config.Root == "" {
		return nil, constants.ErrNoRootConfigured
	}

	headers := make(http.Header)
	for name, value := range config.Headers {
		headers.Set(name, value)
	}

	flagHeaders, err := parseHeaders(extraHeaders)
	if err != nil {
		return nil, err
	}

	for name, values := range flagHeaders {
		headers[name] = values
	}

	policy, err := linkwalk.ParseEmbeddedPolicy(config.EmbeddedPolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidEmbeddedValue, err)
	}

	var timeout time.Duration
	if config.Timeout != "" {
		timeout, err = time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", config.Timeout, err)
		}
	}

	return &linkwalk.Config{
		RootURI:        config.Root,
		MediaType:      config.MediaType,
		Headers:        headers,
		UserAgent:      config.UserAgent,
		HTTPTimeout:    timeout,
		RetryMax:       config.RetryMax,
		RateLimit:      config.RateLimit,
		Debug:          verbose,
		Logger:         logger,
		EventsURL:      config.EventsURL,
		EventsSubject:  config.EventsSubject,
		EmbeddedPolicy: policy,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n-3] + "..."
}
