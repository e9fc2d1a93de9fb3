package titleparse

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/moistari/rls"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sortdl/internal/services"
)

// ParsedTitle is the structured reading of a release file name. Season and
// Episode are both set for episodes; Year is set when the name carries one.
type ParsedTitle struct {
	Title   string
	Year    *int
	Season  *int
	Episode *int
}

// IsEpisode reports whether both a season and an episode number were found.
func (p ParsedTitle) IsEpisode() bool {
	return p.Season != nil && p.Episode != nil
}

// Parser turns a file name into a ParsedTitle.
type Parser interface {
	Parse(filename string) (ParsedTitle, error)
}

// ReleaseParser understands scene-style release names such as
// "The.Matrix.1999.1080p.BluRay.x264.mkv" and "show.name.s01e02.720p.mkv".
type ReleaseParser struct{}

// New returns a ReleaseParser.
func New() *ReleaseParser { return &ReleaseParser{} }

// marker is an episode pattern. Patterns without a season group imply
// season 1.
type marker struct {
	re        *regexp.Regexp
	hasSeason bool
}

var (
	episodeMarkers = []marker{
		{regexp.MustCompile(`(?i)\bS(\d{1,3}) ?E(\d{1,4})(?:-?E\d{1,4})*\b`), true},
		{regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2,3})\b`), true},
		{regexp.MustCompile(`(?i)\bSeason ?(\d{1,3}) ?-? ?Episode ?(\d{1,4})\b`), true},
		{regexp.MustCompile(`(?i)\bE[Pp]?(\d{1,4})\b`), false},
	}
	leadingTagPattern = regexp.MustCompile(`^(?:\[[^\]]*\]\s*)+`)
	separatorReplacer = strings.NewReplacer(".", " ", "_", " ")
	titleCaser        = cases.Title(language.Und)
)

// Parse extracts a title, optional year, and optional season/episode from
// filename. Directory components and the extension are ignored.
//
// The release lexer does the heavy lifting; the episode markers above only
// fill in numbering it left out and trim any marker left in the title.
func (ReleaseParser) Parse(filename string) (ParsedTitle, error) {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.TrimSpace(leadingTagPattern.ReplaceAllString(name, ""))
	if name == "" {
		return ParsedTitle{}, parseFailure(base)
	}

	release := rls.ParseString(name)
	season, episode := release.Series, release.Episode
	if season == 0 || episode == 0 {
		if s, e, ok := findMarker(normalize(name)); ok {
			if season == 0 {
				season = s
			}
			if episode == 0 {
				episode = e
			}
		}
	}
	if episode > 0 && season == 0 {
		season = 1
	}

	title := cleanTitle(trimAtMarker(normalize(release.Title)))
	if title == "" {
		return ParsedTitle{}, parseFailure(base)
	}

	parsed := ParsedTitle{Title: title}
	if release.Year > 0 {
		year := release.Year
		parsed.Year = &year
	}
	if season > 0 {
		parsed.Season = &season
	}
	if episode > 0 {
		parsed.Episode = &episode
	}
	return parsed, nil
}

func parseFailure(base string) error {
	return services.Wrap(services.ErrParseFailure, "classifying", "parse title", fmt.Sprintf("no title in %q", base), nil)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(separatorReplacer.Replace(s)), " ")
}

// findMarker returns the season and episode of the first marker in s. The
// season is 0 for bare episode markers.
func findMarker(s string) (season, episode int, ok bool) {
	for _, m := range episodeMarkers {
		sub := m.re.FindStringSubmatch(s)
		if sub == nil {
			continue
		}
		if m.hasSeason {
			season, _ = strconv.Atoi(sub[1])
			episode, _ = strconv.Atoi(sub[2])
		} else {
			episode, _ = strconv.Atoi(sub[1])
		}
		return season, episode, true
	}
	return 0, 0, false
}

func trimAtMarker(title string) string {
	cut := len(title)
	for _, m := range episodeMarkers {
		if loc := m.re.FindStringIndex(title); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	return title[:cut]
}

func cleanTitle(raw string) string {
	title := strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '(' || r == '[' || r == ','
	})
	title = strings.Join(strings.Fields(title), " ")
	if title != "" && title == strings.ToLower(title) {
		title = titleCaser.String(title)
	}
	return title
}
