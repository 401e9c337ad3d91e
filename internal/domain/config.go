package domain

// Config is the application configuration loaded from YAML.
type Config struct {
	ConfigFormatVersion string          `yaml:"config_format_version"`
	Server              ServerSettings  `yaml:"server"`
	Parser              ParserSettings  `yaml:"parser"`
	Storage             StorageSettings `yaml:"storage"`
	Cleaner             CleanerSettings `yaml:"cleaner"`
	Log                 LogSettings     `yaml:"log"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string `yaml:"addr"`
}

// ParserSettings selects and bounds the session reconstructor.
type ParserSettings struct {
	// Strategy selects the reconstructor: "titles" (default) harvests OSC
	// window-title sequences, "linebuffer" replays output lines.
	Strategy string `yaml:"strategy"`
	// MaxEvents caps how many commands a parse may emit before failing.
	MaxEvents int `yaml:"max_events"`
	// MaxUploadBytes caps recording size before the parser is invoked.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	// PromptDenylist lists window-title payloads that are shell prompts
	// rather than commands and must not be emitted.
	PromptDenylist []string `yaml:"prompt_denylist"`
}

// StorageSettings configures persistence and the artifact store.
type StorageSettings struct {
	DatabasePath  string `yaml:"database_path"`
	ArtifactDir   string `yaml:"artifact_dir"`
	URLTTLSeconds int    `yaml:"url_ttl_seconds"`
}

// CleanerSettings configures the optional AI cleanup collaborator.
type CleanerSettings struct {
	// Provider is "openai", "anthropic" or empty to disable cleaning.
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Endpoint    string `yaml:"endpoint"`
	APIKeyEnv   string `yaml:"api_key_env"`
	MaxCommands int    `yaml:"max_commands"`
}

// LogSettings configures logging output.
type LogSettings struct {
	Level string `yaml:"level"`
}
