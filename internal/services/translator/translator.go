// Package translator produces translated video metadata for the upload
// stage by shelling out to an external translation command. The service
// is best-effort: when translation fails, the untranslated metadata is
// used as a documented fallback and the job records a warning.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"vodkeep/internal/logging"
	"vodkeep/internal/workdir"
)

// commandContext allows tests to stub subprocess creation.
var commandContext = exec.CommandContext

// Translation is the payload exchanged with the translator command on
// stdin and stdout.
type Translation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Service invokes the configured translator binary.
type Service struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// New returns a translator Service. timeout bounds a single
// translation call.
func New(binary string, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{binary: binary, timeout: timeout, logger: logger}
}

// Ensure makes sure the translated metadata file exists in the working
// directory. An existing file is reused so resumed jobs never
// re-translate. On translation failure the original metadata is
// written as the fallback and a warning is returned; the error return
// is reserved for problems reading or writing local files.
func (s *Service) Ensure(ctx context.Context, layout workdir.Layout) (string, error) {
	if layout.Exists(workdir.TranslatedMetadataFile) {
		return "", nil
	}

	original, err := readOriginal(layout)
	if err != nil {
		return "", err
	}

	translated, translateErr := s.translate(ctx, original)
	if translateErr != nil {
		s.logger.Warn("translation failed, using original metadata", logging.Error(translateErr))
		if err := writeTranslation(layout, original); err != nil {
			return "", err
		}
		return fmt.Sprintf("metadata translation unavailable, using original title: %v", translateErr), nil
	}

	if err := writeTranslation(layout, translated); err != nil {
		return "", err
	}
	return "", nil
}

func (s *Service) translate(ctx context.Context, input Translation) (Translation, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if s.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return Translation{}, fmt.Errorf("encode translation request: %w", err)
	}

	cmd := commandContext(runCtx, s.binary)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			return Translation{}, fmt.Errorf("translator timed out after %s", s.timeout)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return Translation{}, fmt.Errorf("translator exited with an error: %s", detail)
	}

	var result Translation
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return Translation{}, fmt.Errorf("translator printed invalid JSON: %w", err)
	}
	if strings.TrimSpace(result.Title) == "" {
		return Translation{}, fmt.Errorf("translator returned an empty title")
	}
	return result, nil
}

func readOriginal(layout workdir.Layout) (Translation, error) {
	data, err := os.ReadFile(layout.Path(workdir.MetadataFile))
	if err != nil {
		return Translation{}, fmt.Errorf("read metadata: %w", err)
	}
	var original Translation
	if err := json.Unmarshal(data, &original); err != nil {
		return Translation{}, fmt.Errorf("parse metadata: %w", err)
	}
	return original, nil
}

func writeTranslation(layout workdir.Layout, t Translation) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode translated metadata: %w", err)
	}
	if err := os.WriteFile(layout.Path(workdir.TranslatedMetadataFile), data, 0o644); err != nil {
		return fmt.Errorf("write translated metadata: %w", err)
	}
	return nil
}
