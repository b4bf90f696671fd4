package domain

import (
	"slices"
	"time"
)

// Remote store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the resolved application configuration.
type Config struct {
	Remote    RemoteConfig
	Toast     ToastConfig
	App       AppConfig
	Telemetry TelemetryConfig
	Resources map[ResourceType]Schema
}

// RemoteConfig selects and bounds the remote store.
type RemoteConfig struct {
	Driver  string
	DSN     string
	Timeout time.Duration
}

// ToastConfig configures the notification queue.
type ToastConfig struct {
	TTL time.Duration
}

// AppConfig holds settings of the hosted application.
type AppConfig struct {
	// URL is the base used for links sent by email, e.g. the password reset redirect.
	URL string
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	// Trace logs every finished span, e.g. each remote mutation with its
	// outcome and duration.
	Trace bool
}

// Rule is a boolean expression over a proposed payload. Message is shown
// when the expression evaluates to false.
type Rule struct {
	Expr    string
	Message string
}

// Schema decides which fields of a resource take part in change detection
// and which rules a proposed payload must satisfy.
//
// When Compare is non-empty only those fields are compared. Otherwise every
// field not listed in Ignore is compared.
type Schema struct {
	Resource ResourceType
	Ignore   []string
	Compare  []string
	Rules    []Rule
}

// Relevant reports whether field takes part in change detection.
func (s Schema) Relevant(field string) bool {
	if len(s.Compare) > 0 {
		return slices.Contains(s.Compare, field)
	}
	return !slices.Contains(s.Ignore, field)
}

// SystemFields are maintained by the remote store and never compared.
var SystemFields = []string{"id", "user_id", "created_at", "updated_at"}

// DefaultSchemas returns the built-in schema of every resource.
func DefaultSchemas() map[ResourceType]Schema {
	schemas := make(map[ResourceType]Schema, len(Resources()))
	for _, r := range Resources() {
		schemas[r] = Schema{Resource: r, Ignore: slices.Clone(SystemFields)}
	}

	todo := schemas[ResourceTodo]
	todo.Compare = []string{"content", "tags", "reminder_time"}
	schemas[ResourceTodo] = todo

	recipe := schemas[ResourceRecipe]
	recipe.Rules = []Rule{
		{
			Expr:    `dynamic_range == nil || dynamic_range == "DR-Auto" || dynamic_range matches "^DR-[0-9]+$"`,
			Message: `dynamic range must be "DR-Auto" or "DR-<number>"`,
		},
		{
			Expr:    `iso == nil || iso matches "^up to ISO [0-9]+$"`,
			Message: `iso must look like "up to ISO <number>"`,
		},
		{
			Expr:    `exposure_compensation == nil || exposure_compensation == "0" || exposure_compensation matches "^.+ to .+$"`,
			Message: `exposure compensation must be "0" or "<from> to <to>"`,
		},
		{
			Expr:    `wb == nil || wb matches "^.+, -?[0-9]+ Red & -?[0-9]+ Blue$"`,
			Message: `white balance must look like "<mode>, <n> Red & <n> Blue"`,
		},
	}
	schemas[ResourceRecipe] = recipe

	return schemas
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Remote: RemoteConfig{
			Driver:  DriverSQLite,
			DSN:     DefaultDatabasePath(),
			Timeout: DefaultRemoteTimeout,
		},
		Toast:     ToastConfig{TTL: DefaultToastTTL},
		App:       AppConfig{URL: DefaultAppURL},
		Resources: DefaultSchemas(),
	}
}

// Schema returns the schema of a resource, falling back to the default.
func (c Config) Schema(r ResourceType) Schema {
	if s, ok := c.Resources[r]; ok {
		return s
	}
	return Schema{Resource: r, Ignore: slices.Clone(SystemFields)}
}
