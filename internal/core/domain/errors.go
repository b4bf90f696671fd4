package domain

import "go.trai.ch/zerr"

var (
	// ErrEntityNotFound is returned when the remote store has no row for a key.
	ErrEntityNotFound = zerr.New("entity not found")

	// ErrRevisionMismatch is returned when a write is based on a revision the remote store no longer holds.
	ErrRevisionMismatch = zerr.New("entity was changed by someone else, reload and try again")

	// ErrUnknownResource is returned when a resource type is not one of the known tables.
	ErrUnknownResource = zerr.New("unknown resource type")

	// ErrInvalidKey is returned when an entity key cannot be parsed.
	ErrInvalidKey = zerr.New("invalid entity key, expected <resource>/<id>")

	// ErrMissingEntityID is returned when an update or delete intent carries no entity id.
	ErrMissingEntityID = zerr.New("missing entity id")

	// ErrMissingPrevious is returned when an update or delete intent carries no previous value.
	ErrMissingPrevious = zerr.New("update and delete intents require the previous entity")

	// ErrValidationFailed is returned when a proposed payload violates a resource rule.
	ErrValidationFailed = zerr.New("validation failed")

	// ErrInvalidRule is returned when a validation rule expression does not compile.
	ErrInvalidRule = zerr.New("invalid validation rule")

	// ErrNoChanges is returned when a proposed payload matches the current value.
	ErrNoChanges = zerr.New("no changes to save")

	// ErrUserNotFound is returned when no account is registered for an email address.
	ErrUserNotFound = zerr.New("no account is registered with this email")

	// ErrInvalidEmail is returned when an email address is empty or malformed.
	ErrInvalidEmail = zerr.New("invalid email address")

	// ErrMutationFailed is returned by the CLI when a submitted mutation did not succeed.
	ErrMutationFailed = zerr.New("mutation failed")

	// ErrInvalidAssignment is returned when a field assignment is not of the form field=value.
	ErrInvalidAssignment = zerr.New("invalid field assignment, expected <field>=<value>")

	// ErrPayloadReadFailed is returned when a payload file cannot be read or parsed.
	ErrPayloadReadFailed = zerr.New("failed to read payload file")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrUnsupportedDriver is returned when the remote driver is neither sqlite nor postgres.
	ErrUnsupportedDriver = zerr.New("unsupported remote driver, expected 'sqlite' or 'postgres'")

	// ErrMissingDSN is returned when the postgres driver is selected without a DSN.
	ErrMissingDSN = zerr.New("remote dsn is required for the postgres driver")

	// ErrInvalidDuration is returned when a configured duration is not positive.
	ErrInvalidDuration = zerr.New("duration must be positive")

	// ErrInvalidAppURL is returned when app.url is not an absolute URL.
	ErrInvalidAppURL = zerr.New("app url must be absolute")

	// ErrStoreOpenFailed is returned when the remote store connection cannot be opened.
	ErrStoreOpenFailed = zerr.New("failed to open remote store")

	// ErrStoreMigrateFailed is returned when the remote store schema cannot be created.
	ErrStoreMigrateFailed = zerr.New("failed to prepare remote store schema")

	// ErrStoreQueryFailed is returned when a remote store statement fails.
	ErrStoreQueryFailed = zerr.New("remote store query failed")

	// ErrPayloadEncodeFailed is returned when entity fields cannot be encoded.
	ErrPayloadEncodeFailed = zerr.New("failed to encode entity payload")

	// ErrPayloadDecodeFailed is returned when a stored payload cannot be decoded.
	ErrPayloadDecodeFailed = zerr.New("failed to decode entity payload")
)
