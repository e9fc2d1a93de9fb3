// Package identification resolves parsed release names to canonical movie and
// episode metadata.
//
// TMDBResolver queries TMDB through the tmdb client, applies the selection
// rules (year match first, otherwise the first result), and caches responses
// for the duration of a run so a season pack costs one show search. Callers
// classify failures with errors.Is: services.ErrNoMatch means TMDB had no
// usable candidate, services.ErrExternalTool means the lookup itself failed.
package identification
