// Package titleparse reads titles, years, and season/episode numbers out of
// downloaded release file names.
//
// Release names are lexed with github.com/moistari/rls. SxxEyy (including
// multi-episode SxxEyyEzz), NxNN, "Season N Episode N", and bare Eyy markers
// back it up when the lexer leaves the numbering out; a bare episode marker
// implies season 1. Names that yield no title fail with
// services.ErrParseFailure.
package titleparse
