package gitremote

import (
	"bufio"
	"strings"
)

const (
	headsReferencePrefixConstant  = "refs/heads/"
	tagsReferencePrefixConstant   = "refs/tags/"
	peeledReferenceSuffixConstant = "^{}"
)

// ReferenceKind selects heads or tags in a remote listing.
type ReferenceKind string

// Supported reference kinds.
const (
	ReferenceKindHeads ReferenceKind = ReferenceKind("heads")
	ReferenceKindTags  ReferenceKind = ReferenceKind("tags")
)

// Reference is one line of a remote listing. Name is the short branch or tag name;
// Peeled marks the dereferenced commit of an annotated tag.
type Reference struct {
	Commit string
	Name   string
	Peeled bool
}

// TagRecord pairs a tag name with the commit it points at.
type TagRecord struct {
	Commit string
	Name   string
}

// ParseReferences converts ls-remote output into references, preserving listing order.
// Lines outside refs/heads and refs/tags are skipped.
func ParseReferences(output string) []Reference {
	references := make([]Reference, 0)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		commit, fullName := fields[0], fields[1]

		var shortName string
		switch {
		case strings.HasPrefix(fullName, headsReferencePrefixConstant):
			shortName = strings.TrimPrefix(fullName, headsReferencePrefixConstant)
		case strings.HasPrefix(fullName, tagsReferencePrefixConstant):
			shortName = strings.TrimPrefix(fullName, tagsReferencePrefixConstant)
		default:
			continue
		}

		peeled := strings.HasSuffix(shortName, peeledReferenceSuffixConstant)
		references = append(references, Reference{
			Commit: commit,
			Name:   strings.TrimSuffix(shortName, peeledReferenceSuffixConstant),
			Peeled: peeled,
		})
	}
	return references
}

// collapseTags folds references into one record per tag name, in first-seen order.
// A later line for the same name overrides an earlier one, so the dereferenced
// commit listed after a lightweight entry wins.
func collapseTags(references []Reference) []TagRecord {
	positions := make(map[string]int, len(references))
	records := make([]TagRecord, 0, len(references))
	for _, reference := range references {
		if position, seen := positions[reference.Name]; seen {
			records[position].Commit = reference.Commit
			continue
		}
		positions[reference.Name] = len(records)
		records = append(records, TagRecord{Commit: reference.Commit, Name: reference.Name})
	}
	return records
}
