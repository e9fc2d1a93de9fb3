package placement

import (
	"fmt"
	"path/filepath"

	"sortdl/internal/textutil"
)

// Kind identifies what a plan relocates.
type Kind string

const (
	KindMovie    Kind = "movie"
	KindEpisode  Kind = "episode"
	KindSubtitle Kind = "subtitle"
)

// Plan pairs a source file with its destination in the library.
type Plan struct {
	Source      string
	Destination string
	Kind        Kind
}

// Dir returns the directory that will hold the destination.
func (p Plan) Dir() string {
	return filepath.Dir(p.Destination)
}

// MovieFolderName returns "Title (Year)" with the title sanitized.
func MovieFolderName(title string, year int) string {
	return fmt.Sprintf("%s (%d)", textutil.SanitizeFileName(title), year)
}

// SeasonFolderName returns "Season NN".
func SeasonFolderName(season int) string {
	return fmt.Sprintf("Season %02d", season)
}

// EpisodeCode returns "SNNENN". Numbers wider than two digits are kept whole.
func EpisodeCode(season, episode int) string {
	return fmt.Sprintf("S%02dE%02d", season, episode)
}

// PlanMovie places a movie at destRoot/"T (Y)"/"T (Y)"+ext. The source
// extension is kept exactly as written.
func PlanMovie(title string, year int, destRoot, sourcePath string) Plan {
	name := MovieFolderName(title, year)
	return Plan{
		Source:      sourcePath,
		Destination: filepath.Join(destRoot, name, name+filepath.Ext(sourcePath)),
		Kind:        KindMovie,
	}
}

// PlanEpisode places an episode at
// destRoot/Show/"Season NN"/"SNNENN - Episode Title"+ext.
func PlanEpisode(show string, season, episode int, episodeTitle, destRoot, sourcePath string) Plan {
	file := fmt.Sprintf("%s - %s%s", EpisodeCode(season, episode), textutil.SanitizeFileName(episodeTitle), filepath.Ext(sourcePath))
	return Plan{
		Source:      sourcePath,
		Destination: filepath.Join(destRoot, textutil.SanitizeFileName(show), SeasonFolderName(season), file),
		Kind:        KindEpisode,
	}
}

// PlanSubtitle places a subtitle next to the movie in movie, keeping the
// subtitle's own file name.
func PlanSubtitle(subtitlePath string, movie Plan) Plan {
	return Plan{
		Source:      subtitlePath,
		Destination: filepath.Join(movie.Dir(), filepath.Base(subtitlePath)),
		Kind:        KindSubtitle,
	}
}
