package qualification

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/utils/flags"
)

const (
	isQualificationCommandUseConstant              = "is-qualification"
	isQualificationCommandShortDescriptionConstant = "Report whether a release branch is in a qualification window"
	isQualificationUnexpectedArgumentsConstant     = "is-qualification does not accept positional arguments"
	isQualificationExecutionErrorTemplateConstant  = "is-qualification failed: %w"
	releaseBranchFlagUsageConstant                 = "Release branch to inspect, e.g. 7.55.x"
	missingReleaseBranchMessageConstant            = "is-qualification requires --release-branch"
	outputFlagNameConstant                         = "output"
	outputFlagUsageConstant                        = "Print true or false"
	qualificationVerdictLogMessageConstant         = "Qualification window"

	qualificationTagsCommandUseConstant              = "qualification-tags"
	qualificationTagsCommandShortDescriptionConstant = "List qualification tags of the project, newest first"
	qualificationTagsUnexpectedArgumentsConstant     = "qualification-tags does not accept positional arguments"
	qualificationTagsExecutionErrorTemplateConstant  = "qualification-tags failed: %w"
	latestFlagNameConstant                           = "latest"
	latestFlagUsageConstant                          = "Print only the newest qualification tag"
	tagLineTemplateConstant                          = "%s\t%s\n"

	verdictTrueConstant  = "true"
	verdictFalseConstant = "false"
)

// IsQualificationCommandBuilder assembles the is-qualification command.
type IsQualificationCommandBuilder struct {
	CommandDependencies
}

// Build constructs the is-qualification command.
func (builder *IsQualificationCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   isQualificationCommandUseConstant,
		Short: isQualificationCommandShortDescriptionConstant,
		RunE:  builder.run,
	}
	flags.BindBranchFlags(command, flags.BranchFlagValues{}, flags.BranchFlagDefinition{
		Name:    flags.ReleaseBranchFlagName,
		Usage:   releaseBranchFlagUsageConstant,
		Enabled: true,
	})
	command.Flags().Bool(outputFlagNameConstant, false, outputFlagUsageConstant)
	return command, nil
}

func (builder *IsQualificationCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(isQualificationUnexpectedArgumentsConstant)
	}
	branch, branchError := command.Flags().GetString(flags.ReleaseBranchFlagName)
	if branchError != nil {
		return branchError
	}
	branch = strings.TrimSpace(branch)
	if len(branch) == 0 {
		return errors.New(missingReleaseBranchMessageConstant)
	}
	printVerdict, outputError := command.Flags().GetBool(outputFlagNameConstant)
	if outputError != nil {
		return outputError
	}

	logger := builder.resolveLogger()
	service, serviceError := builder.resolveService(logger, builder.resolveConfiguration())
	if serviceError != nil {
		return fmt.Errorf(isQualificationExecutionErrorTemplateConstant, serviceError)
	}
	active, stateError := service.IsQualification(command.Context(), branch)
	if stateError != nil {
		return fmt.Errorf(isQualificationExecutionErrorTemplateConstant, stateError)
	}
	logger.Info(qualificationVerdictLogMessageConstant, zap.String(branchLogFieldConstant, branch), zap.Bool(activeLogFieldConstant, active))

	if !printVerdict {
		return nil
	}
	verdict := verdictFalseConstant
	if active {
		verdict = verdictTrueConstant
	}
	_, printError := fmt.Fprintln(outputWriter(command), verdict)
	return printError
}

// QualificationTagsCommandBuilder assembles the qualification-tags command.
type QualificationTagsCommandBuilder struct {
	CommandDependencies
}

// Build constructs the qualification-tags command.
func (builder *QualificationTagsCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   qualificationTagsCommandUseConstant,
		Short: qualificationTagsCommandShortDescriptionConstant,
		RunE:  builder.run,
	}
	command.Flags().Bool(latestFlagNameConstant, false, latestFlagUsageConstant)
	return command, nil
}

func (builder *QualificationTagsCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(qualificationTagsUnexpectedArgumentsConstant)
	}
	latestOnly, latestError := command.Flags().GetBool(latestFlagNameConstant)
	if latestError != nil {
		return latestError
	}

	logger := builder.resolveLogger()
	service, serviceError := builder.resolveService(logger, builder.resolveConfiguration())
	if serviceError != nil {
		return fmt.Errorf(qualificationTagsExecutionErrorTemplateConstant, serviceError)
	}
	records, listError := service.QualificationTags(command.Context(), latestOnly)
	if listError != nil {
		return fmt.Errorf(qualificationTagsExecutionErrorTemplateConstant, listError)
	}

	standardOutput := outputWriter(command)
	for _, record := range records {
		if _, printError := fmt.Fprintf(standardOutput, tagLineTemplateConstant, record.Commit, record.Name); printError != nil {
			return printError
		}
	}
	return nil
}
