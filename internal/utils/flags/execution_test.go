package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestResolveBool(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		fallback  bool
		expected  bool
	}{
		{name: "unset_uses_fallback", fallback: true, expected: true},
		{name: "explicit_true", arguments: []string{"--" + DryRunFlagName}, expected: true},
		{name: "explicit_false_overrides_fallback", arguments: []string{"--" + DryRunFlagName + "=false"}, fallback: true, expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := &cobra.Command{}
			BindExecutionFlags(command, ExecutionDefaults{}, DryRunDefinition())
			require.NoError(testInstance, command.ParseFlags(testCase.arguments))

			resolved, resolveError := ResolveBool(command, DryRunFlagName, testCase.fallback)
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expected, resolved)
		})
	}
}

func TestBindExecutionFlagsSkipsDisabledAndDuplicates(testInstance *testing.T) {
	command := &cobra.Command{}

	BindExecutionFlags(command, ExecutionDefaults{}, ExecutionFlagDefinitions{DryRun: ExecutionFlagDefinition{Name: DryRunFlagName}})
	require.Nil(testInstance, command.Flags().Lookup(DryRunFlagName))

	BindExecutionFlags(command, ExecutionDefaults{DryRun: true}, DryRunDefinition())
	BindExecutionFlags(command, ExecutionDefaults{}, DryRunDefinition())
	require.Equal(testInstance, "true", command.Flags().Lookup(DryRunFlagName).DefValue)
}
