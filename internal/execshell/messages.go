package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	referenceListSeparatorConstant          = ", "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitLSRemoteSubcommandNameConstant   = "ls-remote"
	gitCloneSubcommandNameConstant      = "clone"
	gitTagSubcommandNameConstant        = "tag"
	gitPushSubcommandNameConstant       = "push"
	gitFetchSubcommandNameConstant      = "fetch"
	gitForEachRefSubcommandNameConstant = "for-each-ref"
	gitHeadsShortFlagConstant           = "-h"
	gitHeadsFlagConstant                = "--heads"
	gitTagsShortFlagConstant            = "-t"
	gitTagsFlagConstant                 = "--tags"
	gitDeleteFlagConstant               = "--delete"
	gitBranchFlagConstant               = "-b"
	gitTagKeywordConstant               = "tag"
)

const (
	lsRemoteHeadsStartTemplateConstant            = "Looking up branch %s on %s"
	lsRemoteHeadsSuccessTemplateConstant          = "Resolved branch %s on %s"
	lsRemoteHeadsFailureTemplateConstant          = "Failed to look up branch %s on %s (exit code %d%s)"
	lsRemoteHeadsExecutionFailureTemplateConstant = "Unable to look up branch %s on %s: %s"
	lsRemoteTagsStartTemplateConstant             = "Listing tags matching %s on %s"
	lsRemoteTagsSuccessTemplateConstant           = "Listed tags matching %s on %s"
	lsRemoteTagsFailureTemplateConstant           = "Failed to list tags matching %s on %s (exit code %d%s)"
	lsRemoteTagsExecutionFailureTemplateConstant  = "Unable to list tags matching %s on %s: %s"
	cloneStartTemplateConstant                    = "Cloning %s at %s without checkout"
	cloneSuccessTemplateConstant                  = "Cloned %s at %s"
	cloneFailureTemplateConstant                  = "Failed to clone %s at %s (exit code %d%s)"
	cloneExecutionFailureTemplateConstant         = "Unable to clone %s at %s: %s"
	tagStartTemplateConstant                      = "Creating tag %s in %s"
	tagSuccessTemplateConstant                    = "Created tag %s in %s"
	tagFailureTemplateConstant                    = "Failed to create tag %s in %s (exit code %d%s)"
	tagExecutionFailureTemplateConstant           = "Unable to create tag %s in %s: %s"
	pushStartTemplateConstant                     = "Pushing %s to %s from %s"
	pushSuccessTemplateConstant                   = "Pushed %s to %s from %s"
	pushFailureTemplateConstant                   = "Failed to push %s to %s from %s (exit code %d%s)"
	pushExecutionFailureTemplateConstant          = "Unable to push %s to %s from %s: %s"
	pushDeletionStartTemplateConstant             = "Deleting %s from %s"
	pushDeletionSuccessTemplateConstant           = "Deleted %s from %s"
	pushDeletionFailureTemplateConstant           = "Failed to delete %s from %s (exit code %d%s)"
	pushDeletionExecutionFailureTemplateConstant  = "Unable to delete %s from %s: %s"
	fetchTagsStartTemplateConstant                = "Fetching tags from %s in %s"
	fetchTagsSuccessTemplateConstant              = "Fetched tags from %s in %s"
	fetchTagsFailureTemplateConstant              = "Failed to fetch tags from %s in %s (exit code %d%s)"
	fetchTagsExecutionFailureTemplateConstant     = "Unable to fetch tags from %s in %s: %s"
	forEachRefStartTemplateConstant               = "Reading tag dates for %s in %s"
	forEachRefSuccessTemplateConstant             = "Read tag dates for %s in %s"
	forEachRefFailureTemplateConstant             = "Failed to read tag dates for %s in %s (exit code %d%s)"
	forEachRefExecutionFailureTemplateConstant    = "Unable to read tag dates for %s in %s: %s"
	allReferencesLabelConstant                    = "all references"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitLSRemoteSubcommandNameConstant:
		return formatter.describeLSRemoteMessage(command, result, failure, stage)
	case gitCloneSubcommandNameConstant:
		return formatter.describeCloneMessage(command, result, failure, stage)
	case gitTagSubcommandNameConstant:
		return formatter.describeTagMessage(command, result, failure, stage)
	case gitPushSubcommandNameConstant:
		return formatter.describePushMessage(command, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		return formatter.describeFetchMessage(command, result, failure, stage)
	case gitForEachRefSubcommandNameConstant:
		return formatter.describeForEachRefMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeLSRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments[1:]
	positional := nonFlagArguments(arguments)
	remote := formatter.ensureValue(formatter.argumentAtIndex(positional, 0))
	pattern := formatter.argumentAtIndex(positional, 1)
	if len(strings.TrimSpace(pattern)) == 0 {
		pattern = allReferencesLabelConstant
	}

	if containsArgument(arguments, gitHeadsShortFlagConstant) || containsArgument(arguments, gitHeadsFlagConstant) {
		return formatter.formatStage(stage, result, failure,
			[]any{pattern, remote},
			lsRemoteHeadsStartTemplateConstant,
			lsRemoteHeadsSuccessTemplateConstant,
			lsRemoteHeadsFailureTemplateConstant,
			lsRemoteHeadsExecutionFailureTemplateConstant,
		)
	}
	if containsArgument(arguments, gitTagsShortFlagConstant) || containsArgument(arguments, gitTagsFlagConstant) {
		return formatter.formatStage(stage, result, failure,
			[]any{pattern, remote},
			lsRemoteTagsStartTemplateConstant,
			lsRemoteTagsSuccessTemplateConstant,
			lsRemoteTagsFailureTemplateConstant,
			lsRemoteTagsExecutionFailureTemplateConstant,
		)
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeCloneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments[1:]
	branch := formatter.ensureValue(findFlagValue(arguments, gitBranchFlagConstant))
	positional := nonFlagArguments(withoutFlagValues(arguments, gitBranchFlagConstant))
	repository := formatter.ensureValue(formatter.argumentAtIndex(positional, 0))
	return formatter.formatStage(stage, result, failure,
		[]any{repository, branch},
		cloneStartTemplateConstant,
		cloneSuccessTemplateConstant,
		cloneFailureTemplateConstant,
		cloneExecutionFailureTemplateConstant,
	)
}

func (formatter CommandMessageFormatter) describeTagMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	tagName := formatter.ensureValue(formatter.argumentAtIndex(nonFlagArguments(command.Details.Arguments[1:]), 0))
	return formatter.formatStage(stage, result, failure,
		[]any{tagName, formatter.describeWorkingDirectory(command)},
		tagStartTemplateConstant,
		tagSuccessTemplateConstant,
		tagFailureTemplateConstant,
		tagExecutionFailureTemplateConstant,
	)
}

func (formatter CommandMessageFormatter) describePushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments[1:]
	positional := nonFlagArguments(arguments)
	remote := formatter.ensureValue(formatter.argumentAtIndex(positional, 0))
	references := make([]string, 0, len(positional))
	for _, reference := range positional[min(1, len(positional)):] {
		if reference == gitTagKeywordConstant {
			continue
		}
		references = append(references, reference)
	}
	joinedReferences := formatter.ensureValue(strings.Join(references, referenceListSeparatorConstant))

	if containsArgument(arguments, gitDeleteFlagConstant) {
		return formatter.formatStage(stage, result, failure,
			[]any{joinedReferences, remote},
			pushDeletionStartTemplateConstant,
			pushDeletionSuccessTemplateConstant,
			pushDeletionFailureTemplateConstant,
			pushDeletionExecutionFailureTemplateConstant,
		)
	}
	return formatter.formatStage(stage, result, failure,
		[]any{joinedReferences, remote, formatter.describeWorkingDirectory(command)},
		pushStartTemplateConstant,
		pushSuccessTemplateConstant,
		pushFailureTemplateConstant,
		pushExecutionFailureTemplateConstant,
	)
}

func (formatter CommandMessageFormatter) describeFetchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	remote := formatter.ensureValue(formatter.argumentAtIndex(nonFlagArguments(command.Details.Arguments[1:]), 0))
	return formatter.formatStage(stage, result, failure,
		[]any{remote, formatter.describeWorkingDirectory(command)},
		fetchTagsStartTemplateConstant,
		fetchTagsSuccessTemplateConstant,
		fetchTagsFailureTemplateConstant,
		fetchTagsExecutionFailureTemplateConstant,
	)
}

func (formatter CommandMessageFormatter) describeForEachRefMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	pattern := formatter.ensureValue(formatter.argumentAtIndex(nonFlagArguments(command.Details.Arguments[1:]), 0))
	return formatter.formatStage(stage, result, failure,
		[]any{pattern, formatter.describeWorkingDirectory(command)},
		forEachRefStartTemplateConstant,
		forEachRefSuccessTemplateConstant,
		forEachRefFailureTemplateConstant,
		forEachRefExecutionFailureTemplateConstant,
	)
}

// formatStage renders one of four templates. Failure templates receive the exit code and
// stderr suffix after the subject values; execution failure templates receive the failure text.
func (formatter CommandMessageFormatter) formatStage(stage messageStage, result ExecutionResult, failure error, subjects []any, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, subjects...)
	case messageStageFailure:
		failureValues := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(failureTemplate, failureValues...)
	case messageStageExecutionFailure:
		executionFailureValues := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(executionFailureTemplate, executionFailureValues...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

func withoutFlagValues(arguments []string, flag string) []string {
	filtered := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			index++
			continue
		}
		filtered = append(filtered, arguments[index])
	}
	return filtered
}

func nonFlagArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}
