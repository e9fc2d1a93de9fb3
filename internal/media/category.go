package media

import (
	"path/filepath"
	"strings"

	"sortdl/internal/config"
)

// Category is the media kind assigned to a file from its extension.
type Category string

const (
	CategoryVideo        Category = "video"
	CategoryAudio        Category = "audio"
	CategorySubtitle     Category = "subtitle"
	CategoryUnrecognized Category = "unrecognized"
)

// Classifier maps file extensions to categories. The zero value is not
// usable; construct with NewClassifier or Default.
type Classifier struct {
	byExt map[string]Category
}

// NewClassifier builds a classifier from extension lists. Extensions are
// matched case-insensitively and may carry a leading dot. An empty list
// selects the built-in defaults for that category.
func NewClassifier(video, audio, subtitle []string) *Classifier {
	c := &Classifier{byExt: make(map[string]Category)}
	c.add(CategoryVideo, video, config.DefaultVideoExtensions())
	c.add(CategoryAudio, audio, config.DefaultAudioExtensions())
	c.add(CategorySubtitle, subtitle, config.DefaultSubtitleExtensions())
	return c
}

// Default returns a classifier using the built-in extension lists.
func Default() *Classifier {
	return NewClassifier(nil, nil, nil)
}

// FromConfig builds a classifier from the [media] configuration section.
func FromConfig(cfg config.Media) *Classifier {
	return NewClassifier(cfg.VideoExtensions, cfg.AudioExtensions, cfg.SubtitleExtensions)
}

func (c *Classifier) add(category Category, exts, fallback []string) {
	if len(exts) == 0 {
		exts = fallback
	}
	for _, ext := range exts {
		key := normalizeExt(ext)
		if key == "" {
			continue
		}
		if _, taken := c.byExt[key]; taken {
			continue
		}
		c.byExt[key] = category
	}
}

// Classify returns the category for ext. Any extension that is not listed,
// including the empty string, is unrecognized.
func (c *Classifier) Classify(ext string) Category {
	if category, ok := c.byExt[normalizeExt(ext)]; ok {
		return category
	}
	return CategoryUnrecognized
}

// ClassifyPath classifies a file by the extension after its last dot.
func (c *Classifier) ClassifyPath(path string) Category {
	return c.Classify(Extension(path))
}

// Extension returns the lowercased text after the last dot of the base name,
// or "" when there is none.
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
