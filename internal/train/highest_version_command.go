package train

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	highestVersionCommandUseConstant              = "highest-version"
	highestVersionCommandShortDescriptionConstant = "Print the highest compatible version tag of a repository"
	highestVersionCommandLongDescriptionConstant  = "highest-version lists a repository's tags through the GitHub API and prints the greatest version of the minor release line, preferring compatible majors in configured order."
	highestVersionUnexpectedArgumentsConstant     = "highest-version does not accept positional arguments"
	highestVersionExecutionErrorTemplateConstant  = "highest-version failed: %w"
	repositoryFlagNameConstant                    = "repo"
	repositoryFlagUsageConstant                   = "Repository whose tags are listed"
	majorFlagNameConstant                         = "major"
	majorFlagUsageConstant                        = "Major version of the release"
	minorFlagNameConstant                         = "minor"
	minorFlagUsageConstant                        = "Minor version of the release"
	missingRepositoryMessageConstant              = "highest-version requires --repo"
)

// HighestVersionCommandBuilder assembles the highest-version command.
type HighestVersionCommandBuilder struct {
	CommandDependencies
}

// Build constructs the highest-version command.
func (builder *HighestVersionCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   highestVersionCommandUseConstant,
		Short: highestVersionCommandShortDescriptionConstant,
		Long:  highestVersionCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	command.Flags().Int(majorFlagNameConstant, 0, majorFlagUsageConstant)
	command.Flags().Int(minorFlagNameConstant, 0, minorFlagUsageConstant)
	return command, nil
}

func (builder *HighestVersionCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(highestVersionUnexpectedArgumentsConstant)
	}
	repository, repositoryError := command.Flags().GetString(repositoryFlagNameConstant)
	if repositoryError != nil {
		return repositoryError
	}
	repository = strings.TrimSpace(repository)
	if len(repository) == 0 {
		return errors.New(missingRepositoryMessageConstant)
	}
	major, majorError := command.Flags().GetInt(majorFlagNameConstant)
	if majorError != nil {
		return majorError
	}
	minor, minorError := command.Flags().GetInt(minorFlagNameConstant)
	if minorError != nil {
		return minorError
	}

	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()
	standardOutput, _ := outputWriters(command)

	table, tableError := configuration.Train.CompatibilityTable()
	if tableError != nil {
		return fmt.Errorf(highestVersionExecutionErrorTemplateConstant, tableError)
	}
	compatibleMajors, majorsError := table.CompatibleMajors(major)
	if majorsError != nil {
		return fmt.Errorf(highestVersionExecutionErrorTemplateConstant, majorsError)
	}

	source, sourceError := builder.resolveVersionSource(command.Context(), logger, configuration)
	if sourceError != nil {
		return fmt.Errorf(highestVersionExecutionErrorTemplateConstant, sourceError)
	}
	highest, highestError := source.HighestVersion(command.Context(), configuration.Train.Owner, repository, compatibleMajors, minor)
	if highestError != nil {
		return fmt.Errorf(highestVersionExecutionErrorTemplateConstant, highestError)
	}

	_, printError := fmt.Fprintln(standardOutput, highest.String())
	return printError
}
