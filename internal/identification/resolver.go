package identification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sortdl/internal/identification/tmdb"
	"sortdl/internal/logging"
	"sortdl/internal/services"
	"sortdl/internal/textutil"
	"sortdl/internal/titleparse"
)

const lowSimilarityThreshold = 0.3

// MovieMetadata is the canonical identity of a movie.
type MovieMetadata struct {
	TMDBID int64
	Title  string
	Year   int
}

// EpisodeMetadata is the canonical identity of a TV episode.
type EpisodeMetadata struct {
	ShowID       int64
	ShowTitle    string
	Season       int
	Episode      int
	EpisodeTitle string
}

// Resolver maps parsed titles to canonical metadata. A lookup with no usable
// candidate fails with services.ErrNoMatch.
type Resolver interface {
	ResolveMovie(ctx context.Context, parsed titleparse.ParsedTitle) (MovieMetadata, error)
	ResolveEpisode(ctx context.Context, parsed titleparse.ParsedTitle) (EpisodeMetadata, error)
}

// TMDBResolver resolves titles through TMDB and remembers lookups for the
// lifetime of the resolver, which is one run.
type TMDBResolver struct {
	client tmdb.Searcher
	logger *slog.Logger
	cache  *lookupCache
}

var _ Resolver = (*TMDBResolver)(nil)

// NewTMDBResolver builds a resolver around client.
func NewTMDBResolver(client tmdb.Searcher, logger *slog.Logger) *TMDBResolver {
	return &TMDBResolver{
		client: client,
		logger: logging.NewComponentLogger(logger, "identification"),
		cache:  newLookupCache(),
	}
}

// ResolveMovie searches TMDB for the parsed title. When the name carried a
// year, the first result released that year wins; otherwise the first
// result does.
func (r *TMDBResolver) ResolveMovie(ctx context.Context, parsed titleparse.ParsedTitle) (MovieMetadata, error) {
	logger := logging.WithContext(ctx, r.logger)
	query := strings.TrimSpace(parsed.Title)

	results, err := r.cache.movieSearch(query, func() ([]tmdb.Result, error) {
		resp, err := r.client.SearchMovie(ctx, query, tmdb.SearchOptions{})
		if err != nil {
			return nil, err
		}
		return resp.Results, nil
	})
	if err != nil {
		return MovieMetadata{}, services.Wrap(services.ErrExternalTool, "resolving", "tmdb movie search", query, err)
	}
	if len(results) == 0 {
		return MovieMetadata{}, services.Wrap(services.ErrNoMatch, "resolving", "tmdb movie search", fmt.Sprintf("no results for %q", query), nil)
	}

	chosen, reason := pickMovie(results, parsed.Year)
	title := strings.TrimSpace(chosen.Title)
	if title == "" {
		title = strings.TrimSpace(chosen.OriginalTitle)
	}
	year := chosen.ReleaseYear()
	if title == "" || year == 0 {
		return MovieMetadata{}, services.Wrap(services.ErrNoMatch, "resolving", "tmdb movie search", fmt.Sprintf("result %d for %q lacks title or release year", chosen.ID, query), nil)
	}

	logger.Debug("movie resolved", logging.Args(append(logging.DecisionAttrs("movie_match", title, reason),
		logging.Int("year", year),
		logging.Int("candidates", len(results)),
	)...)...)
	r.warnIfDissimilar(logger, query, title)

	return MovieMetadata{TMDBID: chosen.ID, Title: title, Year: year}, nil
}

// ResolveEpisode finds the show by the parsed title, then fetches the
// episode title for the parsed season and episode.
func (r *TMDBResolver) ResolveEpisode(ctx context.Context, parsed titleparse.ParsedTitle) (EpisodeMetadata, error) {
	if !parsed.IsEpisode() {
		return EpisodeMetadata{}, services.Wrap(services.ErrValidation, "resolving", "episode lookup", "season and episode are required", nil)
	}
	logger := logging.WithContext(ctx, r.logger)
	query := strings.TrimSpace(parsed.Title)
	season, episode := *parsed.Season, *parsed.Episode

	results, err := r.cache.tvSearch(query, func() ([]tmdb.Result, error) {
		resp, err := r.client.SearchTV(ctx, query, tmdb.SearchOptions{})
		if err != nil {
			return nil, err
		}
		return resp.Results, nil
	})
	if err != nil {
		return EpisodeMetadata{}, services.Wrap(services.ErrExternalTool, "resolving", "tmdb tv search", query, err)
	}
	if len(results) == 0 {
		return EpisodeMetadata{}, services.Wrap(services.ErrNoMatch, "resolving", "tmdb tv search", fmt.Sprintf("no results for %q", query), nil)
	}

	show := results[0]
	showTitle := strings.TrimSpace(show.OriginalName)
	if showTitle == "" {
		showTitle = strings.TrimSpace(show.Name)
	}
	if showTitle == "" {
		return EpisodeMetadata{}, services.Wrap(services.ErrNoMatch, "resolving", "tmdb tv search", fmt.Sprintf("result %d for %q has no name", show.ID, query), nil)
	}

	details, err := r.cache.episode(show.ID, season, episode, func() (*tmdb.Episode, error) {
		return r.client.GetEpisodeDetails(ctx, show.ID, season, episode)
	})
	if err != nil {
		if tmdb.IsNotFound(err) {
			return EpisodeMetadata{}, services.Wrap(services.ErrNoMatch, "resolving", "tmdb episode fetch", fmt.Sprintf("%s S%02dE%02d not found", showTitle, season, episode), err)
		}
		return EpisodeMetadata{}, services.Wrap(services.ErrExternalTool, "resolving", "tmdb episode fetch", showTitle, err)
	}

	episodeTitle := strings.TrimSpace(details.Name)
	if episodeTitle == "" {
		episodeTitle = fmt.Sprintf("Episode %02d", episode)
	}

	logger.Debug("episode resolved",
		logging.String("show", showTitle),
		logging.Int("season", season),
		logging.Int("episode", episode),
		logging.String("episode_title", episodeTitle),
	)
	r.warnIfDissimilar(logger, query, showTitle, show.Name)

	return EpisodeMetadata{
		ShowID:       show.ID,
		ShowTitle:    showTitle,
		Season:       season,
		Episode:      episode,
		EpisodeTitle: episodeTitle,
	}, nil
}

func pickMovie(results []tmdb.Result, year *int) (tmdb.Result, string) {
	if year != nil {
		for _, candidate := range results {
			if candidate.ReleaseYear() == *year {
				return candidate, "year_match"
			}
		}
	}
	return results[0], "first_result"
}

func (r *TMDBResolver) warnIfDissimilar(logger *slog.Logger, query, matched string, aliases ...string) {
	score := textutil.TitleSimilarity(query, matched)
	for _, alias := range aliases {
		score = max(score, textutil.TitleSimilarity(query, alias))
	}
	if score >= lowSimilarityThreshold {
		return
	}
	logging.WarnWithContext(logger, "metadata match differs from file name",
		"metadata_low_similarity",
		logging.String("query", query),
		logging.String("matched", matched),
		logging.Any("similarity", score),
		logging.String(logging.FieldErrorHint, "verify the destination and rename the source if TMDB picked the wrong title"),
		logging.String(logging.FieldImpact, "file placed using the first TMDB result"),
	)
}
