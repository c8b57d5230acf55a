package config

const (
	defaultLibraryDir       = "~/.local/share/vodkeep/videos"
	defaultLogDir           = "~/.local/share/vodkeep/logs"
	defaultAPIBind          = "127.0.0.1:32500"
	defaultStoreBackend     = "memory"
	defaultSubtitleLanguage = "ko"
	defaultArchiveTimeout   = 1800
	defaultTranslateTimeout = 120
	defaultResolveTimeout   = 60
	defaultMaxLogLines      = 2000
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"

	defaultYtDlpBinary      = "yt-dlp"
	defaultSubtitlesBinary  = "vk-subtitles"
	defaultBurnInBinary     = "vk-burnin"
	defaultNotesBinary      = "vk-notes"
	defaultUploadBinary     = "vk-upload"
	defaultArchiveBinary    = "vk-archive"
	defaultTranslatorBinary = "vk-translate"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Store: Store{
			Backend: defaultStoreBackend,
		},
		Tools: Tools{
			YtDlp:      defaultYtDlpBinary,
			Subtitles:  defaultSubtitlesBinary,
			BurnIn:     defaultBurnInBinary,
			Notes:      defaultNotesBinary,
			Upload:     defaultUploadBinary,
			Archive:    defaultArchiveBinary,
			Translator: defaultTranslatorBinary,
		},
		Pipeline: Pipeline{
			SubtitleLanguage: defaultSubtitleLanguage,
			BurnInEnabled:    true,
			NotesEnabled:     true,
			UploadEnabled:    true,
			ArchiveEnabled:   true,
			ArchiveTimeout:   defaultArchiveTimeout,
			TranslateTimeout: defaultTranslateTimeout,
			ResolveTimeout:   defaultResolveTimeout,
			MaxLogLines:      defaultMaxLogLines,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
