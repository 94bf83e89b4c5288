package train

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/releasetrain/internal/gitrepo"
	"github.com/temirov/releasetrain/internal/manifest"
	"github.com/temirov/releasetrain/internal/version"
)

const (
	defaultRemoteBaseURLConstant        = "https://github.com"
	defaultBranchConstant               = "main"
	defaultManifestPathConstant         = "release.json"
	ownerPathSeparatorConstant          = "/"
	scpOwnerSeparatorConstant           = ":"
	invalidMajorKeyTemplateConstant     = "compatible_majors key %q is not a major version"
	projectNotConfiguredMessageConstant = "train.project must name the repository being released"
	ownerNotConfiguredMessageConstant   = "train.owner must name the organization hosting the repositories"
	duplicateRepositoryTemplateConstant = "repository %s is configured more than once"
)

// Configuration describes the release train: the project being released and the
// repositories whose branches and tags travel with it.
type Configuration struct {
	Project          string                    `mapstructure:"project"`
	Owner            string                    `mapstructure:"owner"`
	RemoteBaseURL    string                    `mapstructure:"remote_base_url"`
	DefaultBranch    string                    `mapstructure:"default_branch"`
	ManifestPath     string                    `mapstructure:"manifest_path"`
	ManifestSection  string                    `mapstructure:"manifest_section"`
	Repositories     []RepositoryConfiguration `mapstructure:"repositories"`
	CompatibleMajors map[string][]int          `mapstructure:"compatible_majors"`
}

// RepositoryConfiguration describes one tracked repository.
type RepositoryConfiguration struct {
	Name                 string `mapstructure:"name"`
	ManifestKey          string `mapstructure:"manifest_key"`
	DefaultBranch        string `mapstructure:"default_branch"`
	FollowsReleaseBranch bool   `mapstructure:"follows_release_branch"`
	Integrations         bool   `mapstructure:"integrations"`
	// ExcludedMajors lists release majors the repository does not travel with.
	ExcludedMajors []int `mapstructure:"excluded_majors"`
}

// TravelsWith reports whether the repository is released alongside the major.
func (repository RepositoryConfiguration) TravelsWith(major int) bool {
	for _, excludedMajor := range repository.ExcludedMajors {
		if excludedMajor == major {
			return false
		}
	}
	return true
}

// DefaultConfiguration supplies baseline values for the release train.
func DefaultConfiguration() Configuration {
	return Configuration{
		RemoteBaseURL:   defaultRemoteBaseURLConstant,
		DefaultBranch:   defaultBranchConstant,
		ManifestPath:    defaultManifestPathConstant,
		ManifestSection: manifest.DefaultDependenciesSection,
	}
}

// Sanitize trims values and fills defaults for empty fields.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration
	sanitized.Project = strings.TrimSpace(configuration.Project)
	sanitized.Owner = strings.TrimSpace(configuration.Owner)
	sanitized.RemoteBaseURL = selectValue(configuration.RemoteBaseURL, defaults.RemoteBaseURL)
	sanitized.DefaultBranch = selectValue(configuration.DefaultBranch, defaults.DefaultBranch)
	sanitized.ManifestPath = selectValue(configuration.ManifestPath, defaults.ManifestPath)
	sanitized.ManifestSection = selectValue(configuration.ManifestSection, defaults.ManifestSection)

	sanitized.Repositories = make([]RepositoryConfiguration, 0, len(configuration.Repositories))
	for _, repository := range configuration.Repositories {
		repository.Name = strings.TrimSpace(repository.Name)
		if len(repository.Name) == 0 {
			continue
		}
		repository.ManifestKey = strings.TrimSpace(repository.ManifestKey)
		repository.DefaultBranch = strings.TrimSpace(repository.DefaultBranch)
		sanitized.Repositories = append(sanitized.Repositories, repository)
	}
	return sanitized
}

// Validate reports configuration that cannot describe a release train.
func (configuration Configuration) Validate() error {
	if len(configuration.Project) == 0 {
		return errors.New(projectNotConfiguredMessageConstant)
	}
	if len(configuration.Owner) == 0 {
		return errors.New(ownerNotConfiguredMessageConstant)
	}
	seen := make(map[string]struct{}, len(configuration.Repositories))
	for _, repository := range configuration.Repositories {
		if _, duplicate := seen[repository.Name]; duplicate {
			return fmt.Errorf(duplicateRepositoryTemplateConstant, repository.Name)
		}
		seen[repository.Name] = struct{}{}
	}
	if _, compatibilityError := configuration.CompatibilityTable(); compatibilityError != nil {
		return compatibilityError
	}
	_, locationError := configuration.OwnerLocation()
	return locationError
}

// OwnerLocation resolves where the train's repositories are hosted.
func (configuration Configuration) OwnerLocation() (gitrepo.OwnerLocation, error) {
	baseURL := strings.TrimSuffix(configuration.RemoteBaseURL, ownerPathSeparatorConstant)
	separator := ownerPathSeparatorConstant
	if strings.HasSuffix(baseURL, scpOwnerSeparatorConstant) {
		separator = ""
	}
	return gitrepo.ParseOwnerLocation(baseURL + separator + configuration.Owner)
}

// CompatibilityTable converts the configured compatible majors; an empty table falls back to the default.
func (configuration Configuration) CompatibilityTable() (version.CompatibilityTable, error) {
	if len(configuration.CompatibleMajors) == 0 {
		return version.DefaultCompatibilityTable(), nil
	}
	table := make(version.CompatibilityTable, len(configuration.CompatibleMajors))
	for majorKey, majors := range configuration.CompatibleMajors {
		major, parseError := strconv.Atoi(strings.TrimSpace(majorKey))
		if parseError != nil {
			return nil, fmt.Errorf(invalidMajorKeyTemplateConstant, majorKey)
		}
		table[major] = append([]int{}, majors...)
	}
	return table, nil
}

// TrackedRepositories returns the project followed by every other configured repository.
// The project is listed first even when absent from the repositories list.
func (configuration Configuration) TrackedRepositories() []RepositoryConfiguration {
	tracked := []RepositoryConfiguration{{Name: configuration.Project, DefaultBranch: configuration.DefaultBranch}}
	for _, repository := range configuration.Repositories {
		if repository.Name == configuration.Project {
			tracked[0] = repository
			continue
		}
		tracked = append(tracked, repository)
	}
	return tracked
}

func selectValue(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}
