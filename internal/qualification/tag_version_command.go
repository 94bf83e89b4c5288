package qualification

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/utils"
	"github.com/temirov/releasetrain/internal/utils/flags"
	"github.com/temirov/releasetrain/internal/version"
)

const (
	tagVersionCommandUseConstant              = "tag-version"
	tagVersionCommandShortDescriptionConstant = "Tag every project module with a release version and push the tags"
	tagVersionCommandLongDescriptionConstant  = "tag-version tags the configured modules of the project checkout with the release version, opens or continues a qualification window with a qualification-{timestamp} tag, and ends the window when a final version is tagged during it."
	tagVersionUnexpectedArgumentsConstant     = "tag-version does not accept positional arguments"
	tagVersionExecutionErrorTemplateConstant  = "tag-version failed: %w"
	tagVersionFlagNameConstant                = "version"
	tagVersionFlagUsageConstant               = "Release version to tag, e.g. 7.55.0-rc.3"
	startQualificationFlagNameConstant        = "start-qual"
	startQualificationFlagUsageConstant       = "Open a qualification window with this release"
	missingTagVersionMessageConstant          = "tag-version requires --version"
	tagVersionStartedLogMessageConstant       = "Tagging release version"
	versionLogFieldConstant                   = "version"
	remoteLogFieldConstant                    = "remote"
)

// TagVersionCommandBuilder assembles the tag-version command.
type TagVersionCommandBuilder struct {
	CommandDependencies
}

// Build constructs the tag-version command.
func (builder *TagVersionCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   tagVersionCommandUseConstant,
		Short: tagVersionCommandShortDescriptionConstant,
		Long:  tagVersionCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	command.Flags().String(tagVersionFlagNameConstant, "", tagVersionFlagUsageConstant)
	command.Flags().Bool(startQualificationFlagNameConstant, false, startQualificationFlagUsageConstant)
	flags.BindExecutionFlags(command, flags.ExecutionDefaults{}, flags.DryRunDefinition())
	flags.EnsureRemoteFlag(command, "", remoteFlagUsageConstant)
	return command, nil
}

func (builder *TagVersionCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(tagVersionUnexpectedArgumentsConstant)
	}
	releaseValue, versionError := command.Flags().GetString(tagVersionFlagNameConstant)
	if versionError != nil {
		return versionError
	}
	if len(strings.TrimSpace(releaseValue)) == 0 {
		return errors.New(missingTagVersionMessageConstant)
	}
	release, parseError := version.ParseStrict(releaseValue)
	if parseError != nil {
		return fmt.Errorf(tagVersionExecutionErrorTemplateConstant, parseError)
	}
	startQualification, startError := command.Flags().GetBool(startQualificationFlagNameConstant)
	if startError != nil {
		return startError
	}
	dryRun, dryRunError := flags.ResolveBool(command, flags.DryRunFlagName, false)
	if dryRunError != nil {
		return dryRunError
	}

	logger := builder.resolveLogger()
	configuration, overrideError := applyRemoteOverride(command, builder.resolveConfiguration())
	if overrideError != nil {
		return overrideError
	}
	logger.Info(tagVersionStartedLogMessageConstant,
		utils.NewCommandContextAccessor().ConfigurationFileField(command.Context()),
		zap.String(versionLogFieldConstant, release.String()),
		zap.String(remoteLogFieldConstant, configuration.Qualification.Remote),
	)
	service, serviceError := builder.resolveService(logger, configuration)
	if serviceError != nil {
		return fmt.Errorf(tagVersionExecutionErrorTemplateConstant, serviceError)
	}

	result, tagError := service.TagVersion(command.Context(), release, TagOptions{StartQualification: startQualification, DryRun: dryRun})
	if tagError != nil {
		return fmt.Errorf(tagVersionExecutionErrorTemplateConstant, tagError)
	}

	standardOutput := outputWriter(command)
	for _, tag := range result.Tags {
		if _, printError := fmt.Fprintln(standardOutput, tag); printError != nil {
			return printError
		}
	}
	return nil
}
