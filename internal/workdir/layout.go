// Package workdir defines the on-disk layout of a per-video working
// directory. Checkpoint files written here are how the pipeline decides
// which stages a resumed job may skip.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Well-known file names inside a working directory.
const (
	MetadataFile           = "meta.json"
	BurnInFile             = "burnin.mp4"
	NotesFile              = "notes.md"
	UploadInfoFile         = "upload_info.json"
	ArchiveInfoFile        = "archive_info.json"
	TranslatedMetadataFile = "metadata_translated.json"
	LogsDir                = "logs"
)

// SubtitleFile returns the subtitle checkpoint name for a language code,
// e.g. "ko.srt".
func SubtitleFile(language string) string {
	return language + ".srt"
}

// Layout resolves paths inside one video's working directory.
type Layout struct {
	root string
}

// New returns the layout for a video under the library directory. The
// directory is not created; call Ensure before writing into it.
func New(libraryDir, videoID string) Layout {
	return Layout{root: filepath.Join(libraryDir, videoID)}
}

// Root returns the working directory path.
func (l Layout) Root() string { return l.root }

// Path joins name onto the working directory.
func (l Layout) Path(name string) string { return filepath.Join(l.root, name) }

// Ensure creates the working directory and its logs subdirectory.
func (l Layout) Ensure() error {
	if err := os.MkdirAll(filepath.Join(l.root, LogsDir), 0o755); err != nil {
		return fmt.Errorf("create working directory %q: %w", l.root, err)
	}
	return nil
}

// Exists reports whether name is present and non-empty in the working
// directory. Zero-byte checkpoints are treated as absent so a crashed
// write does not mask a stage on resume.
func (l Layout) Exists(name string) bool {
	info, err := os.Stat(l.Path(name))
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

// SourceFiles returns downloaded source media files, matched as
// "source.*" in the working directory.
func (l Layout) SourceFiles() ([]string, error) {
	matches, err := filepath.Glob(l.Path("source.*"))
	if err != nil {
		return nil, fmt.Errorf("glob source files: %w", err)
	}
	return matches, nil
}

// RemoveSourceFiles deletes downloaded source media after the pipeline
// no longer needs it.
func (l Layout) RemoveSourceFiles() error {
	files, err := l.SourceFiles()
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("remove source file %q: %w", file, err)
		}
	}
	return nil
}
