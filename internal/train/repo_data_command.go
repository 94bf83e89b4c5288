package train

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/releasetrain/internal/utils/flags"
)

const (
	repoDataCommandUseConstant              = "repo-data"
	repoDataCommandShortDescriptionConstant = "Print the branch and previous tag of each tracked repository"
	repoDataCommandLongDescriptionConstant  = "repo-data prints, as YAML, the branch each tracked repository is released from and the tag recorded for it in the release manifest."
	repoDataUnexpectedArgumentsConstant     = "repo-data does not accept positional arguments"
	repoDataExecutionErrorTemplateConstant  = "repo-data failed: %w"
	integrationsOnlyFlagNameConstant        = "integrations-only"
	integrationsOnlyFlagUsageConstant       = "List only the project and integration repositories"
	yamlIndentConstant                      = 4

	nextReleaseCommandUseConstant              = "next-rc"
	nextReleaseCommandShortDescriptionConstant = "Print the next release candidate"
	nextReleaseCommandLongDescriptionConstant  = "next-rc derives the release candidate to build next from the release branch or manifest milestone and the project's existing tags."
	nextReleaseUnexpectedArgumentsConstant     = "next-rc does not accept positional arguments"
	nextReleaseExecutionErrorTemplateConstant  = "next-rc failed: %w"
)

// RepoDataCommandBuilder assembles the repo-data command.
type RepoDataCommandBuilder struct {
	CommandDependencies
}

// Build constructs the repo-data command.
func (builder *RepoDataCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   repoDataCommandUseConstant,
		Short: repoDataCommandShortDescriptionConstant,
		Long:  repoDataCommandLongDescriptionConstant,
	}
	branchValues := bindReleaseBranchFlag(command)
	command.Flags().Bool(integrationsOnlyFlagNameConstant, false, integrationsOnlyFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, branchValues)
	}
	return command, nil
}

func (builder *RepoDataCommandBuilder) run(command *cobra.Command, arguments []string, branchValues *flags.BranchFlagValues) error {
	if len(arguments) > 0 {
		return errors.New(repoDataUnexpectedArgumentsConstant)
	}
	integrationsOnly, flagError := flags.ResolveBool(command, integrationsOnlyFlagNameConstant, false)
	if flagError != nil {
		return flagError
	}

	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()
	standardOutput, standardError := outputWriters(command)
	targetBranch := selectBranch(branchValues, configuration.Train)

	service, serviceError := builder.resolveService(logger, configuration, standardError)
	if serviceError != nil {
		return fmt.Errorf(repoDataExecutionErrorTemplateConstant, serviceError)
	}
	nextVersion, nextError := service.NextReleaseCandidate(command.Context(), targetBranch)
	if nextError != nil {
		return fmt.Errorf(repoDataExecutionErrorTemplateConstant, nextError)
	}
	data, dataError := service.GenerateRepoData(command.Context(), integrationsOnly, nextVersion, targetBranch)
	if dataError != nil {
		return fmt.Errorf(repoDataExecutionErrorTemplateConstant, dataError)
	}

	encoder := yaml.NewEncoder(standardOutput)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(data); encodeError != nil {
		return fmt.Errorf(repoDataExecutionErrorTemplateConstant, encodeError)
	}
	return encoder.Close()
}

// NextReleaseCandidateCommandBuilder assembles the next-rc command.
type NextReleaseCandidateCommandBuilder struct {
	CommandDependencies
}

// Build constructs the next-rc command.
func (builder *NextReleaseCandidateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   nextReleaseCommandUseConstant,
		Short: nextReleaseCommandShortDescriptionConstant,
		Long:  nextReleaseCommandLongDescriptionConstant,
	}
	branchValues := bindReleaseBranchFlag(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		if len(arguments) > 0 {
			return errors.New(nextReleaseUnexpectedArgumentsConstant)
		}
		logger := builder.resolveLogger()
		configuration := builder.resolveConfiguration()
		standardOutput, standardError := outputWriters(command)

		service, serviceError := builder.resolveService(logger, configuration, standardError)
		if serviceError != nil {
			return fmt.Errorf(nextReleaseExecutionErrorTemplateConstant, serviceError)
		}
		nextVersion, nextError := service.NextReleaseCandidate(command.Context(), selectBranch(branchValues, configuration.Train))
		if nextError != nil {
			return fmt.Errorf(nextReleaseExecutionErrorTemplateConstant, nextError)
		}
		_, printError := fmt.Fprintln(standardOutput, nextVersion.String())
		return printError
	}
	return command, nil
}
