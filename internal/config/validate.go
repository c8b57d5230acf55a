package config

import (
	"errors"
	"fmt"
	"strings"
)

var errInvalidConfig = errors.New("invalid configuration")

// Validate checks the normalized configuration for internal consistency.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.LibraryDir == "" {
		problems = append(problems, "paths.library_dir must be set")
	}
	if c.Paths.LogDir == "" {
		problems = append(problems, "paths.log_dir must be set")
	}
	if c.Paths.APIBind == "" {
		problems = append(problems, "paths.api_bind must be set")
	}

	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path must be set for the sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.backend %q is not one of memory, sqlite", c.Store.Backend))
	}

	if c.Pipeline.SubtitleLanguage == "" {
		problems = append(problems, "pipeline.subtitle_language must be set")
	}
	if c.Pipeline.MaxLogLines <= 0 {
		problems = append(problems, "pipeline.max_log_lines must be positive")
	}
	if c.Pipeline.UploadEnabled && !c.Pipeline.BurnInEnabled {
		problems = append(problems, "pipeline.upload_enabled requires pipeline.burnin_enabled (upload publishes the burned-in video)")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of console, json", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
