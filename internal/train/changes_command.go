package train

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/utils"
	"github.com/temirov/releasetrain/internal/utils/flags"
)

const (
	changesCommandUseConstant              = "check-for-changes"
	changesCommandShortDescriptionConstant = "Report whether tracked repositories changed since the last release candidate"
	changesCommandLongDescriptionConstant  = "check-for-changes compares each tracked repository with the tag recorded for the last release candidate. It tags the project when it has untagged commits, warns the owners of other repositories, and prints true or false as its last line."
	changesUnexpectedArgumentsConstant     = "check-for-changes does not accept positional arguments"
	changesExecutionErrorTemplateConstant  = "check-for-changes failed: %w"
	warningFlagNameConstant                = "warning"
	warningFlagUsageConstant               = "Only warn integration owners; never tag"
	changesStartedLogMessageConstant       = "Checking release train for changes"
	warningModeLogFieldConstant            = "warning_mode"
	dryRunLogFieldConstant                 = "dry_run"
)

// ChangesCommandBuilder assembles the check-for-changes command.
type ChangesCommandBuilder struct {
	CommandDependencies
}

// Build constructs the check-for-changes command.
func (builder *ChangesCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   changesCommandUseConstant,
		Short: changesCommandShortDescriptionConstant,
		Long:  changesCommandLongDescriptionConstant,
	}
	branchValues := bindReleaseBranchFlag(command)
	command.Flags().Bool(warningFlagNameConstant, false, warningFlagUsageConstant)
	flags.BindExecutionFlags(command, flags.ExecutionDefaults{}, flags.DryRunDefinition())

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, branchValues)
	}
	return command, nil
}

func (builder *ChangesCommandBuilder) run(command *cobra.Command, arguments []string, branchValues *flags.BranchFlagValues) error {
	if len(arguments) > 0 {
		return errors.New(changesUnexpectedArgumentsConstant)
	}

	warningMode, warningError := flags.ResolveBool(command, warningFlagNameConstant, false)
	if warningError != nil {
		return warningError
	}
	dryRun, dryRunError := flags.ResolveBool(command, flags.DryRunFlagName, false)
	if dryRunError != nil {
		return dryRunError
	}

	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()
	standardOutput, standardError := outputWriters(command)
	logger.Info(changesStartedLogMessageConstant,
		utils.NewCommandContextAccessor().ConfigurationFileField(command.Context()),
		zap.Bool(warningModeLogFieldConstant, warningMode),
		zap.Bool(dryRunLogFieldConstant, dryRun),
	)

	service, serviceError := builder.resolveService(logger, configuration, standardError)
	if serviceError != nil {
		return fmt.Errorf(changesExecutionErrorTemplateConstant, serviceError)
	}

	changed, checkError := service.CheckForChanges(command.Context(), selectBranch(branchValues, configuration.Train), CheckOptions{WarningMode: warningMode, DryRun: dryRun})
	if checkError != nil {
		return fmt.Errorf(changesExecutionErrorTemplateConstant, checkError)
	}

	_, printError := fmt.Fprintln(standardOutput, formatVerdict(changed))
	return printError
}
