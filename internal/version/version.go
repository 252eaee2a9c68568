// Package version contains information on the current version of the
// program. It is split from the main program for easy use.
package version

// Current is the string representing the current version of gizzard.
const Current = "0.1.0"

// CacheTag is the monotonic version tag embedded in every cache file. Bump
// it whenever the on-disk shape of a persisted automaton or parse table
// changes; files carrying any other tag are invalid and get rebuilt.
const CacheTag = 1
