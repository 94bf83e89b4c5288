package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	versionPatternConstant              = `^(v)?(\d+)\.(\d+)(?:\.(\d+))?(?:-rc\.(\d+))?$`
	releaseBranchPatternConstant        = `^(\d+)\.(\d+)\.x$`
	releaseVersionTemplateConstant      = "%s%d.%d.%d"
	releaseCandidateSuffixTemplate      = "-rc.%d"
	branchTemplateConstant              = "%d.%d.x"
	tagPatternTemplateConstant          = "%d.%d.%d*"
	linePatternTemplateConstant         = "%d.%d.*"
	canonicalSemverPrefixConstant       = "v"
	invalidVersionErrorTemplateConstant = "invalid version %q"
	firstReleaseCandidateConstant       = 1
)

var (
	versionExpression       = regexp.MustCompile(versionPatternConstant)
	releaseBranchExpression = regexp.MustCompile(releaseBranchPatternConstant)
)

// Version describes a release version with an optional prefix and release-candidate number.
type Version struct {
	Prefix           string
	Major            int
	Minor            int
	Patch            int
	ReleaseCandidate *int
}

// InvalidVersionError reports text that does not follow the release version grammar.
type InvalidVersionError struct {
	Value string
}

// Error describes the invalid value.
func (invalidError InvalidVersionError) Error() string {
	return fmt.Sprintf(invalidVersionErrorTemplateConstant, invalidError.Value)
}

// Parse converts text into a Version. The boolean is false when the text does not match the grammar.
func Parse(text string) (Version, bool) {
	matches := versionExpression.FindStringSubmatch(strings.TrimSpace(text))
	if matches == nil {
		return Version{}, false
	}

	components := make([]int, len(matches))
	for index := 2; index < len(matches); index++ {
		if len(matches[index]) == 0 {
			continue
		}
		value, conversionError := strconv.Atoi(matches[index])
		if conversionError != nil {
			return Version{}, false
		}
		components[index] = value
	}

	parsed := Version{Prefix: matches[1], Major: components[2], Minor: components[3], Patch: components[4]}
	if len(matches[5]) > 0 {
		releaseCandidate := components[5]
		parsed.ReleaseCandidate = &releaseCandidate
	}
	return parsed, true
}

// ParseStrict converts text into a Version and reports malformed input as InvalidVersionError.
func ParseStrict(text string) (Version, error) {
	parsed, ok := Parse(text)
	if !ok {
		return Version{}, InvalidVersionError{Value: text}
	}
	return parsed, nil
}

// MustParse parses text and panics on malformed input. Intended for constants and tests.
func MustParse(text string) Version {
	parsed, parseError := ParseStrict(text)
	if parseError != nil {
		panic(parseError)
	}
	return parsed
}

// New builds a final release version.
func New(major int, minor int, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// WithReleaseCandidate returns a copy of the version carrying the provided release-candidate number.
func (current Version) WithReleaseCandidate(releaseCandidate int) Version {
	updated := current
	updated.ReleaseCandidate = &releaseCandidate
	return updated
}

// IsReleaseCandidate reports whether the version carries a release-candidate number.
func (current Version) IsReleaseCandidate() bool {
	return current.ReleaseCandidate != nil
}

// String serializes the version as {prefix}{major}.{minor}.{patch}[-rc.{rc}].
func (current Version) String() string {
	formatted := fmt.Sprintf(releaseVersionTemplateConstant, current.Prefix, current.Major, current.Minor, current.Patch)
	if current.ReleaseCandidate != nil {
		formatted += fmt.Sprintf(releaseCandidateSuffixTemplate, *current.ReleaseCandidate)
	}
	return formatted
}

// Branch derives the release branch name {major}.{minor}.x.
func (current Version) Branch() string {
	return fmt.Sprintf(branchTemplateConstant, current.Major, current.Minor)
}

// TagPattern derives the tag glob {major}.{minor}.{patch}* matching every candidate of the version.
func (current Version) TagPattern() string {
	return fmt.Sprintf(tagPatternTemplateConstant, current.Major, current.Minor, current.Patch)
}

// LinePattern derives the tag glob {major}.{minor}.* matching every version of the release line.
func (current Version) LinePattern() string {
	return fmt.Sprintf(linePatternTemplateConstant, current.Major, current.Minor)
}

// ParseReleaseBranch reads a {major}.{minor}.x branch name as the first version of its line.
func ParseReleaseBranch(branch string) (Version, bool) {
	matches := releaseBranchExpression.FindStringSubmatch(strings.TrimSpace(branch))
	if matches == nil {
		return Version{}, false
	}
	major, majorError := strconv.Atoi(matches[1])
	minor, minorError := strconv.Atoi(matches[2])
	if majorError != nil || minorError != nil {
		return Version{}, false
	}
	return New(major, minor, 0), true
}

// NextReleaseCandidate returns the release candidate following the version.
// A release candidate increments its number; a final release starts rc.1 of the next patch.
func (current Version) NextReleaseCandidate() Version {
	if current.ReleaseCandidate != nil {
		return current.WithReleaseCandidate(*current.ReleaseCandidate + 1)
	}
	next := current
	next.Patch++
	return next.WithReleaseCandidate(firstReleaseCandidateConstant)
}

// NextFinal drops the release-candidate number.
func (current Version) NextFinal() Version {
	final := current
	final.ReleaseCandidate = nil
	return final
}

// Less reports whether the version orders strictly before other.
func (current Version) Less(other Version) bool {
	return Compare(current, other) < 0
}

// Compare orders two versions, returning -1, 0, or 1. The prefix is ignored and a
// final release orders after every release candidate of the same major.minor.patch.
func Compare(first Version, second Version) int {
	return semver.Compare(first.canonical(), second.canonical())
}

// SameRelease reports whether both versions share major, minor and patch, whatever
// their release-candidate numbers.
func (current Version) SameRelease(other Version) bool {
	return current.Major == other.Major && current.Minor == other.Minor && current.Patch == other.Patch
}

func (current Version) canonical() string {
	unprefixed := current
	unprefixed.Prefix = canonicalSemverPrefixConstant
	return unprefixed.String()
}
