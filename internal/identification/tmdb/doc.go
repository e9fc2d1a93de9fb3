// Package tmdb provides the minimal TMDB API client used to resolve
// downloaded files to canonical titles.
//
// It authenticates requests, throttles them with a token-bucket limiter, and
// exposes movie and TV search plus single-episode lookups. Non-200 responses
// surface as *StatusError so callers can tell a missing episode (404) from a
// transport failure. Options allow tests to supply custom HTTP clients.
package tmdb
