package train

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/temirov/releasetrain/internal/manifest"
	"github.com/temirov/releasetrain/internal/version"
)

const (
	manifestCommandUseConstant              = "manifest"
	manifestCommandShortDescriptionConstant = "Read and update the release manifest"
	manifestCommandLongDescriptionConstant  = "manifest reads values from the release manifest and records release branches, milestones and dependency versions in it."

	manifestGetUseConstant              = "get KEY"
	manifestGetShortDescriptionConstant = "Print a manifest value; nested keys are joined with ::"
	manifestGetErrorTemplateConstant    = "manifest get failed: %w"

	manifestSetBranchUseConstant              = "set-branch BRANCH"
	manifestSetBranchShortDescriptionConstant = "Record a new release branch for the project and its dependencies"
	manifestSetBranchErrorTemplateConstant    = "manifest set-branch failed: %w"
	emptyBranchMessageConstant                = "branch name must not be empty"

	manifestMilestoneUseConstant              = "milestone VERSION"
	manifestMilestoneShortDescriptionConstant = "Record the milestone of the ongoing release"
	manifestMilestoneErrorTemplateConstant    = "manifest milestone failed: %w"

	manifestUpdateUseConstant              = "update"
	manifestUpdateShortDescriptionConstant = "Pin dependency versions for a release from GitHub tags"
	manifestUpdateErrorTemplateConstant    = "manifest update failed: %w"
	releaseVersionFlagNameConstant         = "version"
	releaseVersionFlagUsageConstant        = "Release the dependencies are pinned for, e.g. 7.55.0-rc.2"
	missingReleaseVersionMessageConstant   = "manifest update requires --version"

	manifestEnvUseConstant              = "env"
	manifestEnvShortDescriptionConstant = "Print dependency versions as NAME=value lines"
	manifestEnvErrorTemplateConstant    = "manifest env failed: %w"

	unexpectedManifestArgumentsConstant = "manifest %s does not accept positional arguments"
	updatedPairTemplateConstant         = "%s=%s\n"
)

// ManifestCommandBuilder assembles the manifest command hierarchy.
type ManifestCommandBuilder struct {
	CommandDependencies
	// EnvironmentLookup supplies overrides for manifest env; nil uses the process environment.
	EnvironmentLookup manifest.EnvironmentLookup
	// OperatingSystem selects platform-specific keys for manifest env; empty uses runtime.GOOS.
	OperatingSystem string
}

// Build constructs the manifest command with its subcommands.
func (builder *ManifestCommandBuilder) Build() (*cobra.Command, error) {
	manifestCommand := &cobra.Command{
		Use:   manifestCommandUseConstant,
		Short: manifestCommandShortDescriptionConstant,
		Long:  manifestCommandLongDescriptionConstant,
	}

	getCommand := &cobra.Command{
		Use:   manifestGetUseConstant,
		Short: manifestGetShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runGet,
	}
	setBranchCommand := &cobra.Command{
		Use:   manifestSetBranchUseConstant,
		Short: manifestSetBranchShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runSetBranch,
	}
	milestoneCommand := &cobra.Command{
		Use:   manifestMilestoneUseConstant,
		Short: manifestMilestoneShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runMilestone,
	}
	updateCommand := &cobra.Command{
		Use:   manifestUpdateUseConstant,
		Short: manifestUpdateShortDescriptionConstant,
		RunE:  builder.runUpdate,
	}
	updateCommand.Flags().String(releaseVersionFlagNameConstant, "", releaseVersionFlagUsageConstant)
	envCommand := &cobra.Command{
		Use:   manifestEnvUseConstant,
		Short: manifestEnvShortDescriptionConstant,
		RunE:  builder.runEnv,
	}

	manifestCommand.AddCommand(getCommand, setBranchCommand, milestoneCommand, updateCommand, envCommand)
	return manifestCommand, nil
}

func (builder *ManifestCommandBuilder) runGet(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	standardOutput, _ := outputWriters(command)

	releaseManifest, loadError := builder.loadManifest(configuration.Train)
	if loadError != nil {
		return fmt.Errorf(manifestGetErrorTemplateConstant, loadError)
	}
	value, valueError := releaseManifest.StringValue(arguments[0])
	if valueError != nil {
		return fmt.Errorf(manifestGetErrorTemplateConstant, valueError)
	}
	_, printError := fmt.Fprintln(standardOutput, value)
	return printError
}

func (builder *ManifestCommandBuilder) runSetBranch(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	branch := trimmedArguments(arguments)
	if len(branch) != 1 {
		return fmt.Errorf(manifestSetBranchErrorTemplateConstant, errors.New(emptyBranchMessageConstant))
	}

	releaseManifest, loadError := builder.loadManifest(configuration.Train)
	if loadError != nil {
		return fmt.Errorf(manifestSetBranchErrorTemplateConstant, loadError)
	}
	if setError := releaseManifest.SetValue(manifest.BaseBranchKey, branch[0]); setError != nil {
		return fmt.Errorf(manifestSetBranchErrorTemplateConstant, setError)
	}
	branches := make(map[string]string)
	for _, key := range ReleaseBranchKeys(configuration.Train) {
		branches[key] = branch[0]
	}
	if updateError := releaseManifest.UpdateDependencies(configuration.Train.ManifestSection, branches); updateError != nil {
		return fmt.Errorf(manifestSetBranchErrorTemplateConstant, updateError)
	}
	if saveError := releaseManifest.Save(); saveError != nil {
		return fmt.Errorf(manifestSetBranchErrorTemplateConstant, saveError)
	}
	return nil
}

func (builder *ManifestCommandBuilder) runMilestone(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	milestone, parseError := version.ParseStrict(arguments[0])
	if parseError != nil {
		return fmt.Errorf(manifestMilestoneErrorTemplateConstant, parseError)
	}

	releaseManifest, loadError := builder.loadManifest(configuration.Train)
	if loadError != nil {
		return fmt.Errorf(manifestMilestoneErrorTemplateConstant, loadError)
	}
	if setError := releaseManifest.SetValue(manifest.CurrentMilestoneKey, milestone.String()); setError != nil {
		return fmt.Errorf(manifestMilestoneErrorTemplateConstant, setError)
	}
	if saveError := releaseManifest.Save(); saveError != nil {
		return fmt.Errorf(manifestMilestoneErrorTemplateConstant, saveError)
	}
	return nil
}

func (builder *ManifestCommandBuilder) runUpdate(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf(unexpectedManifestArgumentsConstant, manifestUpdateUseConstant)
	}
	releaseValue, flagError := command.Flags().GetString(releaseVersionFlagNameConstant)
	if flagError != nil {
		return flagError
	}
	if len(trimmedArguments([]string{releaseValue})) == 0 {
		return errors.New(missingReleaseVersionMessageConstant)
	}
	release, parseError := version.ParseStrict(releaseValue)
	if parseError != nil {
		return fmt.Errorf(manifestUpdateErrorTemplateConstant, parseError)
	}

	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()
	standardOutput, _ := outputWriters(command)

	releaseManifest, loadError := builder.loadManifest(configuration.Train)
	if loadError != nil {
		return fmt.Errorf(manifestUpdateErrorTemplateConstant, loadError)
	}
	source, sourceError := builder.resolveVersionSource(command.Context(), logger, configuration)
	if sourceError != nil {
		return fmt.Errorf(manifestUpdateErrorTemplateConstant, sourceError)
	}
	versions, versionsError := DependencyVersions(command.Context(), configuration.Train, source, release, logger)
	if versionsError != nil {
		return fmt.Errorf(manifestUpdateErrorTemplateConstant, versionsError)
	}
	if updateError := releaseManifest.UpdateDependencies(configuration.Train.ManifestSection, versions); updateError != nil {
		return fmt.Errorf(manifestUpdateErrorTemplateConstant, updateError)
	}
	if saveError := releaseManifest.Save(); saveError != nil {
		return fmt.Errorf(manifestUpdateErrorTemplateConstant, saveError)
	}

	for _, key := range ReleaseBranchKeys(configuration.Train) {
		if pinned, found := versions[key]; found {
			if _, printError := fmt.Fprintf(standardOutput, updatedPairTemplateConstant, key, pinned); printError != nil {
				return printError
			}
		}
	}
	return nil
}

func (builder *ManifestCommandBuilder) runEnv(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf(unexpectedManifestArgumentsConstant, manifestEnvUseConstant)
	}
	configuration := builder.resolveConfiguration()
	standardOutput, standardError := outputWriters(command)

	releaseManifest, loadError := builder.loadManifest(configuration.Train)
	if loadError != nil {
		return fmt.Errorf(manifestEnvErrorTemplateConstant, loadError)
	}

	lookup := builder.EnvironmentLookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	operatingSystem := builder.OperatingSystem
	if len(operatingSystem) == 0 {
		operatingSystem = runtime.GOOS
	}

	environment, environmentError := releaseManifest.DependenciesEnv(configuration.Train.ManifestSection, operatingSystem, lookup)
	if environmentError != nil {
		return fmt.Errorf(manifestEnvErrorTemplateConstant, environmentError)
	}
	for _, note := range environment.Notes {
		if _, printError := fmt.Fprintln(standardError, note); printError != nil {
			return printError
		}
	}
	for _, variable := range environment.Variables {
		if _, printError := fmt.Fprintln(standardOutput, variable.String()); printError != nil {
			return printError
		}
	}
	return nil
}
