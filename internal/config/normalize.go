package config

import (
	"path/filepath"
	"strings"
)

// normalize expands user paths, fills empty fields from defaults, and trims
// whitespace so validation sees canonical values.
func (c *Config) normalize() error {
	defaults := Default()

	c.Paths.LibraryDir = strings.TrimSpace(c.Paths.LibraryDir)
	c.Paths.LogDir = strings.TrimSpace(c.Paths.LogDir)
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.LibraryDir == "" {
		c.Paths.LibraryDir = defaults.Paths.LibraryDir
	}
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = defaults.Paths.LogDir
	}
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaults.Paths.APIBind
	}

	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaults.Store.Backend
	}
	c.Store.Path = strings.TrimSpace(c.Store.Path)
	if c.Store.Backend == "sqlite" && c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.Paths.LogDir, "jobs.db")
	}
	if c.Store.Path != "" {
		if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
			return err
		}
	}

	normalizeTool(&c.Tools.YtDlp, defaults.Tools.YtDlp)
	normalizeTool(&c.Tools.Subtitles, defaults.Tools.Subtitles)
	normalizeTool(&c.Tools.BurnIn, defaults.Tools.BurnIn)
	normalizeTool(&c.Tools.Notes, defaults.Tools.Notes)
	normalizeTool(&c.Tools.Upload, defaults.Tools.Upload)
	normalizeTool(&c.Tools.Archive, defaults.Tools.Archive)
	normalizeTool(&c.Tools.Translator, defaults.Tools.Translator)

	c.Pipeline.SubtitleLanguage = strings.ToLower(strings.TrimSpace(c.Pipeline.SubtitleLanguage))
	if c.Pipeline.SubtitleLanguage == "" {
		c.Pipeline.SubtitleLanguage = defaults.Pipeline.SubtitleLanguage
	}
	if c.Pipeline.ArchiveTimeout <= 0 {
		c.Pipeline.ArchiveTimeout = defaults.Pipeline.ArchiveTimeout
	}
	if c.Pipeline.TranslateTimeout <= 0 {
		c.Pipeline.TranslateTimeout = defaults.Pipeline.TranslateTimeout
	}
	if c.Pipeline.ResolveTimeout <= 0 {
		c.Pipeline.ResolveTimeout = defaults.Pipeline.ResolveTimeout
	}
	if c.Pipeline.MaxLogLines <= 0 {
		c.Pipeline.MaxLogLines = defaults.Pipeline.MaxLogLines
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	return nil
}

func normalizeTool(value *string, fallback string) {
	*value = strings.TrimSpace(*value)
	if *value == "" {
		*value = fallback
	}
}
