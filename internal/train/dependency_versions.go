package train

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/version"
)

const (
	dependencyVersionErrorTemplateConstant = "pick version of %s: %w"
	candidateForFinalLogMessageConstant    = "Final release picks a release candidate dependency"
	dependencyVersionLogMessageConstant    = "Picked dependency version"
	releaseLogFieldConstant                = "release"
	manifestKeyLogFieldConstant            = "manifest_key"
)

// DependencyVersions picks, for every tracked repository with a manifest key other than
// the project, the highest tag of the release's minor line across compatible majors.
// The result maps manifest keys to versions. A final release that picks a release
// candidate is logged as a warning.
func DependencyVersions(executionContext context.Context, configuration Configuration, source VersionSource, release version.Version, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	table, tableError := configuration.CompatibilityTable()
	if tableError != nil {
		return nil, tableError
	}
	compatibleMajors, majorsError := table.CompatibleMajors(release.Major)
	if majorsError != nil {
		return nil, majorsError
	}

	versions := make(map[string]string)
	for _, repository := range configuration.TrackedRepositories() {
		if repository.Name == configuration.Project || len(repository.ManifestKey) == 0 {
			continue
		}
		highest, highestError := source.HighestVersion(executionContext, configuration.Owner, repository.Name, compatibleMajors, release.Minor)
		if highestError != nil {
			return nil, fmt.Errorf(dependencyVersionErrorTemplateConstant, repository.Name, highestError)
		}
		if !release.IsReleaseCandidate() && highest.IsReleaseCandidate() {
			logger.Warn(
				candidateForFinalLogMessageConstant,
				zap.String(repositoryLogFieldConstant, repository.Name),
				zap.String(releaseLogFieldConstant, release.String()),
				zap.String(tagLogFieldConstant, highest.String()),
			)
		}
		logger.Info(
			dependencyVersionLogMessageConstant,
			zap.String(repositoryLogFieldConstant, repository.Name),
			zap.String(manifestKeyLogFieldConstant, repository.ManifestKey),
			zap.String(tagLogFieldConstant, highest.String()),
		)
		versions[repository.ManifestKey] = highest.String()
	}
	return versions, nil
}

// ReleaseBranchKeys lists the manifest keys that follow the release branch when one is cut:
// those of every tracked repository other than the project.
func ReleaseBranchKeys(configuration Configuration) []string {
	keys := make([]string, 0, len(configuration.Repositories))
	for _, repository := range configuration.TrackedRepositories() {
		if repository.Name == configuration.Project || len(repository.ManifestKey) == 0 {
			continue
		}
		keys = append(keys, repository.ManifestKey)
	}
	return keys
}
