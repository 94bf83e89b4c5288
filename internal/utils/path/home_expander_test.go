package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/releasetrain/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/release"

func TestHomeExpanderExpand(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return testHomeDirectoryConstant, nil })

	testCases := []struct {
		name         string
		input        string
		expectedPath string
	}{
		{name: "tilde_only", input: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", input: "~/.slack-token", expectedPath: filepath.Join(testHomeDirectoryConstant, ".slack-token")},
		{name: "absolute", input: "/run/secrets/token", expectedPath: "/run/secrets/token"},
		{name: "other_user", input: "~other/token", expectedPath: "~other/token"},
		{name: "empty", input: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderFallsBackWhenHomeUnavailable(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return "", errors.New("no home") })
	require.Equal(testInstance, "~/token", expander.Expand("~/token"))
}

func TestHomeExpanderResolve(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return testHomeDirectoryConstant, nil })

	require.Equal(testInstance, filepath.Join("/work/checkout", "release.json"), expander.Resolve("release.json", "/work/checkout"))
	require.Equal(testInstance, "/etc/release.json", expander.Resolve("/etc/../etc/release.json", "/work/checkout"))
	require.Equal(testInstance, filepath.Join(testHomeDirectoryConstant, "release.json"), expander.Resolve("~/release.json", "/work/checkout"))
	require.Equal(testInstance, "release.json", expander.Resolve(" release.json ", ""))
}
