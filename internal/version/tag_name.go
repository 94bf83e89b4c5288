package version

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	qualificationTagPrefixConstant   = "qualification-"
	qualificationTagTemplateConstant = qualificationTagPrefixConstant + "%d"
	// QualificationTagPatternConstant is the ls-remote glob matching every qualification tag.
	QualificationTagPatternConstant = qualificationTagPrefixConstant + "*"
)

// TagKind enumerates the variants a tag name can take.
type TagKind int

// Supported tag kinds.
const (
	TagKindUnknown TagKind = iota
	TagKindReleaseCandidate
	TagKindRelease
	TagKindQualification
)

// TagName is the parsed form of a tag name. Exactly one of Version or Timestamp is
// meaningful, selected by Kind.
type TagName struct {
	Kind      TagKind
	Raw       string
	Version   Version
	Timestamp int64
}

// ParseTagName classifies a tag name as a release candidate, a release, a qualification marker, or unknown.
func ParseTagName(name string) TagName {
	trimmedName := strings.TrimSpace(name)
	if strings.HasPrefix(trimmedName, qualificationTagPrefixConstant) {
		timestamp, parseError := strconv.ParseInt(strings.TrimPrefix(trimmedName, qualificationTagPrefixConstant), 10, 64)
		if parseError != nil {
			return TagName{Kind: TagKindUnknown, Raw: trimmedName}
		}
		return TagName{Kind: TagKindQualification, Raw: trimmedName, Timestamp: timestamp}
	}

	parsedVersion, ok := Parse(trimmedName)
	if !ok {
		return TagName{Kind: TagKindUnknown, Raw: trimmedName}
	}
	if parsedVersion.IsReleaseCandidate() {
		return TagName{Kind: TagKindReleaseCandidate, Raw: trimmedName, Version: parsedVersion}
	}
	return TagName{Kind: TagKindRelease, Raw: trimmedName, Version: parsedVersion}
}

// QualificationTagName formats the qualification marker for the provided unix timestamp.
func QualificationTagName(timestamp int64) string {
	return fmt.Sprintf(qualificationTagTemplateConstant, timestamp)
}

// IsQualification reports whether the tag marks a qualification window.
func (tagName TagName) IsQualification() bool {
	return tagName.Kind == TagKindQualification
}

// IsVersion reports whether the tag carries a release or release-candidate version.
func (tagName TagName) IsVersion() bool {
	return tagName.Kind == TagKindRelease || tagName.Kind == TagKindReleaseCandidate
}

func (tagName TagName) String() string {
	return tagName.Raw
}

// SortQualificationTags orders qualification tags by timestamp, newest first. Other kinds are dropped.
func SortQualificationTags(tagNames []TagName) []TagName {
	qualificationTags := make([]TagName, 0, len(tagNames))
	for _, tagName := range tagNames {
		if tagName.IsQualification() {
			qualificationTags = append(qualificationTags, tagName)
		}
	}
	sort.SliceStable(qualificationTags, func(left int, right int) bool {
		return qualificationTags[left].Timestamp > qualificationTags[right].Timestamp
	})
	return qualificationTags
}
