package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Store selects the job store backend.
type Store struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// Tools names the external executables each stage invokes.
type Tools struct {
	YtDlp      string `toml:"ytdlp"`
	Subtitles  string `toml:"subtitles"`
	BurnIn     string `toml:"burnin"`
	Notes      string `toml:"notes"`
	Upload     string `toml:"upload"`
	Archive    string `toml:"archive"`
	Translator string `toml:"translator"`
}

// Pipeline contains stage toggles and execution limits.
type Pipeline struct {
	SubtitleLanguage string `toml:"subtitle_language"`
	BurnInEnabled    bool   `toml:"burnin_enabled"`
	NotesEnabled     bool   `toml:"notes_enabled"`
	UploadEnabled    bool   `toml:"upload_enabled"`
	ArchiveEnabled   bool   `toml:"archive_enabled"`
	// ArchiveTimeout bounds the archive agent in seconds; the archive stage
	// is best-effort and a timeout does not fail the job.
	ArchiveTimeout   int  `toml:"archive_timeout"`
	TranslateTimeout int  `toml:"translate_timeout"`
	ResolveTimeout   int  `toml:"resolve_timeout"`
	KeepSource       bool `toml:"keep_source"`
	DryRun           bool `toml:"dry_run"`
	// MaxLogLines caps the per-job lines retained in the store; the full
	// stream always lands in the per-run log file.
	MaxLogLines int `toml:"max_log_lines"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vodkeep.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Store    Store    `toml:"store"`
	Tools    Tools    `toml:"tools"`
	Pipeline Pipeline `toml:"pipeline"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vodkeep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized, and VODKEEP_*
// environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; absence is not an error.
	_ = godotenv.Load()
	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("VODKEEP_API_BIND")); v != "" {
		c.Paths.APIBind = v
	}
	if v := strings.TrimSpace(os.Getenv("VODKEEP_LIBRARY_DIR")); v != "" {
		c.Paths.LibraryDir = v
	}
	if v := strings.TrimSpace(os.Getenv("VODKEEP_LOG_DIR")); v != "" {
		c.Paths.LogDir = v
	}
	if v := strings.TrimSpace(os.Getenv("VODKEEP_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("vodkeep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LibraryDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
