// Package version models release versions and the tag names derived from them.
//
// Versions follow the {major}.{minor}.{patch}[-rc.N] grammar with an optional v
// prefix. Ordering delegates to golang.org/x/mod/semver so a final release sorts
// after all of its release candidates. TagName classifies remote tag names into
// release candidates, releases, and qualification markers from a single parser.
package version
