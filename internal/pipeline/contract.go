// Package pipeline runs a submitted video through the processing
// stages. Stages are ordered, checkpoint-gated external tools: a stage
// whose checkpoint files already exist is skipped, which is what makes
// re-submitting a partially processed video cheap.
package pipeline

import (
	"regexp"
	"time"

	"vodkeep/internal/config"
	"vodkeep/internal/workdir"
)

// Request carries per-job inputs into a stage command.
type Request struct {
	SourceURL string
	WorkDir   string
	Language  string
	DryRun    bool
}

// Stage describes one pipeline step.
type Stage struct {
	// Ordinal is the stage's fixed position (1-based). Disabling a
	// stage never renumbers the others, so job progress stays
	// comparable across configurations.
	Ordinal int
	Name    string
	// Label is the human-readable progress string shown in the API.
	Label string
	// Checkpoints are working-directory files whose presence proves
	// the stage already ran.
	Checkpoints []string
	// Progress matches tool output lines announcing this stage.
	Progress *regexp.Regexp
	Command  func(Request) (string, []string)
	// Timeout bounds the stage; zero means the job context governs.
	Timeout time.Duration
	// BestEffort stages record failure as a warning instead of
	// failing the job.
	BestEffort bool
}

// Satisfied reports whether every checkpoint of the stage exists.
func (s Stage) Satisfied(layout workdir.Layout) bool {
	if len(s.Checkpoints) == 0 {
		return false
	}
	for _, name := range s.Checkpoints {
		if !layout.Exists(name) {
			return false
		}
	}
	return true
}

// Stages builds the stage list for the current configuration. Disabled
// stages are omitted; ordinals are fixed regardless.
func Stages(cfg *config.Config) []Stage {
	lang := cfg.Pipeline.SubtitleLanguage

	all := []Stage{
		{
			Ordinal:     1,
			Name:        "subtitles",
			Label:       "Generating subtitles",
			Checkpoints: []string{workdir.SubtitleFile(lang)},
			Progress:    regexp.MustCompile(`(?i)step\s*1\b.*subtitle`),
			Command: func(req Request) (string, []string) {
				return cfg.Tools.Subtitles, stageArgs(req, "--lang", req.Language)
			},
		},
		{
			Ordinal:     2,
			Name:        "burnin",
			Label:       "Burning in subtitles",
			Checkpoints: []string{workdir.BurnInFile},
			Progress:    regexp.MustCompile(`(?i)step\s*2\b.*burn`),
			Command: func(req Request) (string, []string) {
				return cfg.Tools.BurnIn, stageArgs(req)
			},
		},
		{
			Ordinal:     3,
			Name:        "notes",
			Label:       "Generating notes",
			Checkpoints: []string{workdir.NotesFile},
			Progress:    regexp.MustCompile(`(?i)step\s*3\b.*(markdown|notes)`),
			Command: func(req Request) (string, []string) {
				return cfg.Tools.Notes, stageArgs(req)
			},
		},
		{
			Ordinal:     4,
			Name:        "upload",
			Label:       "Uploading video",
			Checkpoints: []string{workdir.UploadInfoFile},
			Progress:    regexp.MustCompile(`(?i)step\s*4\b.*upload`),
			Command: func(req Request) (string, []string) {
				return cfg.Tools.Upload, stageArgs(req)
			},
		},
		{
			Ordinal:     5,
			Name:        "archive",
			Label:       "Adding to archive",
			Checkpoints: []string{workdir.ArchiveInfoFile},
			Progress:    regexp.MustCompile(`(?i)step\s*5\b.*(archive|web)`),
			Command: func(req Request) (string, []string) {
				return cfg.Tools.Archive, stageArgs(req)
			},
			Timeout:    time.Duration(cfg.Pipeline.ArchiveTimeout) * time.Second,
			BestEffort: true,
		},
	}

	enabled := map[string]bool{
		"subtitles": true,
		"burnin":    cfg.Pipeline.BurnInEnabled,
		"notes":     cfg.Pipeline.NotesEnabled,
		"upload":    cfg.Pipeline.UploadEnabled,
		"archive":   cfg.Pipeline.ArchiveEnabled,
	}

	stages := make([]Stage, 0, len(all))
	for _, stage := range all {
		if enabled[stage.Name] {
			stages = append(stages, stage)
		}
	}
	return stages
}

// FinalOrdinal returns the highest ordinal in the stage list, used to
// mark completed jobs.
func FinalOrdinal(stages []Stage) int {
	final := 0
	for _, stage := range stages {
		if stage.Ordinal > final {
			final = stage.Ordinal
		}
	}
	return final
}

func stageArgs(req Request, extra ...string) []string {
	args := []string{req.SourceURL, "--out-dir", req.WorkDir}
	args = append(args, extra...)
	if req.DryRun {
		args = append(args, "--dry-run")
	}
	return args
}

// CachedLabel annotates a stage label for the checkpoint-skip path.
func CachedLabel(s Stage) string {
	return s.Label + " (cached)"
}
