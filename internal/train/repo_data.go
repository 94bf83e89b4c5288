package train

import (
	"gopkg.in/yaml.v3"

	"github.com/temirov/releasetrain/internal/manifest"
	"github.com/temirov/releasetrain/internal/version"
)

const (
	branchFieldConstant      = "branch"
	previousTagFieldConstant = "previous_tag"
)

// RepoEntry is the per-repository release state rebuilt on every run. An empty
// PreviousTag means there is no recorded release to compare against.
type RepoEntry struct {
	Repository  string
	Branch      string
	PreviousTag string
}

// RepoData is the ordered set of tracked repositories. It renders as a YAML mapping
// keyed by repository name.
type RepoData []RepoEntry

// MarshalYAML renders the entries as repository: {branch, previous_tag} in tracking order.
func (data RepoData) MarshalYAML() (any, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range data {
		mapping.Content = append(mapping.Content,
			scalarNode(entry.Repository),
			&yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
				scalarNode(branchFieldConstant), scalarNode(entry.Branch),
				scalarNode(previousTagFieldConstant), scalarNode(entry.PreviousTag),
			}},
		)
	}
	return mapping, nil
}

// PreviousTagSource reads recorded release tags from the release manifest.
type PreviousTagSource interface {
	PreviousTags(section string, keys []string, repositories []string) (map[string]string, error)
	StringValue(key string) (string, error)
}

// GenerateRepoData lists the repositories that travel with nextVersion and the branch
// each one is released from. On the default branch, repositories keep their own
// default branch unless they follow the release branch; on a release branch every
// repository uses it. With includeIntegrationsOnly only the project and repositories
// flagged as integrations are listed. Repositories excluding the major of nextVersion
// are never listed.
func GenerateRepoData(configuration Configuration, previousTags PreviousTagSource, includeIntegrationsOnly bool, nextVersion version.Version, targetBranch string) (RepoData, error) {
	onDefaultBranch := targetBranch == configuration.DefaultBranch

	tracked := make([]RepositoryConfiguration, 0, len(configuration.Repositories)+1)
	for index, repository := range configuration.TrackedRepositories() {
		if index > 0 && (!repository.TravelsWith(nextVersion.Major) || (includeIntegrationsOnly && !repository.Integrations)) {
			continue
		}
		tracked = append(tracked, repository)
	}

	repositoryNames := make([]string, 0, len(tracked))
	keys := make([]string, 0, len(tracked))
	for _, repository := range tracked {
		repositoryNames = append(repositoryNames, repository.Name)
		if len(repository.ManifestKey) > 0 {
			keys = append(keys, repository.ManifestKey)
		}
	}

	recordedTags, lookupError := previousTags.PreviousTags(configuration.ManifestSection, keys, repositoryNames)
	if lookupError != nil {
		return nil, lookupError
	}
	// A configured key that names no repository is read for its own repository.
	for _, repository := range tracked {
		if _, recorded := recordedTags[repository.Name]; recorded || len(repository.ManifestKey) == 0 {
			continue
		}
		tag, valueError := previousTags.StringValue(configuration.ManifestSection + manifest.KeySeparator + repository.ManifestKey)
		if valueError != nil {
			return nil, valueError
		}
		recordedTags[repository.Name] = tag
	}

	data := make(RepoData, 0, len(tracked))
	for index, repository := range tracked {
		entry := RepoEntry{Repository: repository.Name, Branch: targetBranch, PreviousTag: recordedTags[repository.Name]}
		isProject := index == 0
		if onDefaultBranch {
			switch {
			case isProject:
				entry.PreviousTag = ""
			case repository.FollowsReleaseBranch:
				entry.Branch = nextVersion.Branch()
			case len(repository.DefaultBranch) > 0:
				entry.Branch = repository.DefaultBranch
			default:
				entry.Branch = configuration.DefaultBranch
			}
		}
		data = append(data, entry)
	}
	return data, nil
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
