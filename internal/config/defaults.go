package config

const (
	defaultConfigPath            = "~/.config/sortdl/config.toml"
	defaultLogDir                = "~/.local/share/sortdl/logs"
	defaultStateDir              = "~/.local/share/sortdl"
	defaultTMDBLanguage          = "en"
	defaultTMDBBaseURL           = "https://api.themoviedb.org/3"
	defaultTMDBRequestsPerSecond = 4
	defaultTMDBTimeoutSeconds    = 15
	defaultCleanupMaxPasses      = 16
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// DefaultVideoExtensions lists the extensions classified as video.
func DefaultVideoExtensions() []string { return []string{"mp4", "mkv", "avi"} }

// DefaultAudioExtensions lists the extensions classified as audio.
func DefaultAudioExtensions() []string {
	return []string{"mp3", "flac", "alac", "aac", "aiff", "wav"}
}

// DefaultSubtitleExtensions lists the extensions classified as subtitles.
func DefaultSubtitleExtensions() []string { return []string{"srt", "sub", "stl"} }

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			Language:          defaultTMDBLanguage,
			RequestsPerSecond: defaultTMDBRequestsPerSecond,
			TimeoutSeconds:    defaultTMDBTimeoutSeconds,
		},
		Media: Media{
			VideoExtensions:    DefaultVideoExtensions(),
			AudioExtensions:    DefaultAudioExtensions(),
			SubtitleExtensions: DefaultSubtitleExtensions(),
		},
		Cleanup: Cleanup{
			MaxPasses: defaultCleanupMaxPasses,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
