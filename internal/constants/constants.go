package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ProbeTimeout bounds the optional root probe done on client construction.
	ProbeTimeout = 10 * time.Second

	// EventsConnectTimeout bounds the initial NATS connection.
	EventsConnectTimeout = 5 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Identification.
const (
	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "linkwalk/1.0"

	// DefaultScheme is prepended to root URIs without a scheme.
	DefaultScheme = "https://"

	// DefaultEventsSubject is the subject prefix for walk transitions.
	DefaultEventsSubject = "linkwalk.walks"
)

// Format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// Display constants.
const (
	// StringTruncationLength is the default length for truncating strings.
	StringTruncationLength = 80

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// CheckMarkSymbol marks steps satisfied from an embedded resource.
	CheckMarkSymbol = "✓"
)

// Parsing constants.
const (
	// KeyValueSplitParts is the number of parts when splitting key=value strings.
	KeyValueSplitParts = 2

	// StdinArgument selects standard input for --data.
	StdinArgument = "-"

	// FileArgumentPrefix marks a --data value naming a file.
	FileArgumentPrefix = "@"
)
