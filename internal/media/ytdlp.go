package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"vodkeep/internal/logging"
	"vodkeep/internal/services"
	"vodkeep/internal/workdir"
)

// commandContext allows tests to stub subprocess creation.
var commandContext = exec.CommandContext

// Metadata holds the fields the pipeline cares about from yt-dlp's
// info JSON.
type Metadata struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Resolver shells out to yt-dlp for video identity and metadata.
type Resolver struct {
	binary string
	logger *slog.Logger
}

// NewResolver returns a Resolver that invokes the given yt-dlp binary.
func NewResolver(binary string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{binary: binary, logger: logger}
}

// ResolveID extracts the canonical video id for a source URL without
// downloading anything. The id becomes part of the job identifier and
// names the working directory.
func (r *Resolver) ResolveID(ctx context.Context, sourceURL string) (string, error) {
	args := []string{
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--print", "%(id)s",
		"--skip-download",
		sourceURL,
	}
	r.logger.Debug("resolving video id",
		logging.String("binary", r.binary),
		logging.String("url", sourceURL))

	cmd := commandContext(ctx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", services.Wrap(services.ErrTimeout, "resolve", "resolve_id", "video id resolution timed out", ctx.Err())
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", services.Wrap(services.ErrValidation, "resolve", "resolve_id",
			fmt.Sprintf("could not resolve video id for %q: %s", sourceURL, detail), err)
	}

	id := lastNonEmptyLine(stdout.String())
	if id == "" {
		return "", services.Wrap(services.ErrValidation, "resolve", "resolve_id",
			fmt.Sprintf("yt-dlp printed no id for %q", sourceURL), nil)
	}
	return id, nil
}

// FetchMetadata dumps the video's info JSON and writes it to the
// working directory's metadata file. Already-present metadata is left
// untouched so a resumed job never re-queries the remote service.
func (r *Resolver) FetchMetadata(ctx context.Context, sourceURL string, layout workdir.Layout) (*Metadata, error) {
	path := layout.Path(workdir.MetadataFile)
	if layout.Exists(workdir.MetadataFile) {
		return readMetadata(path)
	}

	args := []string{
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--dump-json",
		"--skip-download",
		sourceURL,
	}
	cmd := commandContext(ctx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, services.Wrap(services.ErrExternalTool, "resolve", "fetch_metadata",
			fmt.Sprintf("yt-dlp metadata dump failed: %s", detail), err)
	}

	raw := []byte(lastNonEmptyLine(stdout.String()))
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "resolve", "fetch_metadata", "yt-dlp printed invalid metadata JSON", err)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, fmt.Errorf("write metadata file: %w", err)
	}
	return &meta, nil
}

func readMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata file: %w", err)
	}
	return &meta, nil
}

func lastNonEmptyLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
