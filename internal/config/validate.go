package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateCleanup(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'sortdl config init')", defaultPath)
	}
	if c.TMDB.RequestsPerSecond < 0 {
		return errors.New("tmdb.requests_per_second must be zero (unlimited) or positive")
	}
	if c.TMDB.TimeoutSeconds < 0 {
		return errors.New("tmdb.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMedia() error {
	owner := make(map[string]string)
	lists := []struct {
		name string
		exts []string
	}{
		{"media.video_extensions", c.Media.VideoExtensions},
		{"media.audio_extensions", c.Media.AudioExtensions},
		{"media.subtitle_extensions", c.Media.SubtitleExtensions},
	}
	for _, list := range lists {
		for _, ext := range list.exts {
			if prev, ok := owner[ext]; ok && prev != list.name {
				return fmt.Errorf("%s: extension %q is already listed in %s", list.name, ext, prev)
			}
			owner[ext] = list.name
		}
	}
	return nil
}

func (c *Config) validateCleanup() error {
	if c.Cleanup.MaxPasses < 1 {
		return errors.New("cleanup.max_passes must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
