// Package logging builds the shared slog logger and provides the
// standardized attribute keys used across vodkeep components.
package logging
