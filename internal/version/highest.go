package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	compatibleVersionPatternTemplateConstant = `^(%s)\.%d\.\d+(-rc\.\d+)?$`
	alternationSeparatorConstant             = "|"
	notFoundErrorTemplateConstant            = "no tag found for minor version %d with majors %v"
	unknownMajorErrorTemplateConstant        = "no compatible majors configured for major version %d"
)

// ErrNotFound indicates that no tag matched the requested version filter.
var ErrNotFound = errors.New("version not found")

// NotFoundError reports that no tag matched the requested minor version under the allowed majors.
type NotFoundError struct {
	Minor  int
	Majors []int
}

// Error describes the missing match.
func (notFoundError NotFoundError) Error() string {
	return fmt.Sprintf(notFoundErrorTemplateConstant, notFoundError.Minor, notFoundError.Majors)
}

// Is allows errors.Is(err, ErrNotFound).
func (notFoundError NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CompatibilityTable maps a project major version to the dependency majors it accepts, in preference order.
type CompatibilityTable map[int][]int

// DefaultCompatibilityTable returns the table used when configuration does not provide one.
func DefaultCompatibilityTable() CompatibilityTable {
	return CompatibilityTable{
		6: {6, 7},
		7: {7},
	}
}

// CompatibleMajors returns the accepted majors for the provided major version.
func (table CompatibilityTable) CompatibleMajors(major int) ([]int, error) {
	majors, exists := table[major]
	if !exists || len(majors) == 0 {
		return nil, fmt.Errorf(unknownMajorErrorTemplateConstant, major)
	}
	return append([]int{}, majors...), nil
}

// CompatibleVersionExpression matches {major}.{minor}.{patch}[-rc.N] tags for any of the majors.
func CompatibleVersionExpression(majors []int, minor int) *regexp.Regexp {
	majorAlternatives := make([]string, 0, len(majors))
	for _, major := range majors {
		majorAlternatives = append(majorAlternatives, strconv.Itoa(major))
	}
	return regexp.MustCompile(fmt.Sprintf(compatibleVersionPatternTemplateConstant, strings.Join(majorAlternatives, alternationSeparatorConstant), minor))
}

// HighestVersion selects the greatest version among tag names matching the minor version.
// Majors are tried in preference order and the first major with any matching tag wins.
// Tags with suffixes other than -rc.N never match.
func HighestVersion(tagNames []string, majors []int, minor int) (Version, error) {
	compatibleExpression := CompatibleVersionExpression(majors, minor)

	for _, major := range majors {
		candidates := make([]Version, 0, len(tagNames))
		for _, tagName := range tagNames {
			trimmedName := strings.TrimSpace(tagName)
			if !compatibleExpression.MatchString(trimmedName) {
				continue
			}
			candidate, ok := Parse(trimmedName)
			if !ok || candidate.Major != major {
				continue
			}
			candidates = append(candidates, candidate)
		}
		if highest, found := Highest(candidates); found {
			return highest, nil
		}
	}

	return Version{}, NotFoundError{Minor: minor, Majors: append([]int{}, majors...)}
}

// Highest returns the greatest version in the slice and false when the slice is empty.
func Highest(versions []Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	highest := versions[0]
	for _, candidate := range versions[1:] {
		if highest.Less(candidate) {
			highest = candidate
		}
	}
	return highest, true
}
