package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures of an external stage process.
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks invalid caller input (an unresolvable URL).
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing or inconsistent configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks lookups that produced no record.
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks external invocations that exceeded their wall-clock bound.
	ErrTimeout = errors.New("timeout")
	// ErrDegraded marks best-effort auxiliary services that failed and were
	// recovered with a documented fallback.
	ErrDegraded = errors.New("service degraded")
	// ErrTransient marks failures with no better classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Detail captures the human-readable portion of a classified error.
type Detail struct {
	Message string
}

func (d Detail) String() string { return d.Message }

// Details extracts a display message from a stage error, trimming the
// sentinel prefix when present.
func Details(err error) Detail {
	if err == nil {
		return Detail{}
	}
	message := err.Error()
	for _, marker := range []error{ErrExternalTool, ErrValidation, ErrConfiguration, ErrNotFound, ErrTimeout, ErrDegraded, ErrTransient} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(message, prefix) {
			message = strings.TrimPrefix(message, prefix)
			break
		}
	}
	return Detail{Message: strings.TrimSpace(message)}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
