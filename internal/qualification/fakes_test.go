package qualification_test

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/execshell"
	"github.com/temirov/releasetrain/internal/qualification"
	"github.com/temirov/releasetrain/internal/train"
)

const (
	testProjectConstant          = "datadog-agent"
	testOwnerConstant            = "DataDog"
	testProjectURLConstant       = "https://github.com/DataDog/datadog-agent"
	testQualificationListingKey  = "ls-remote -t " + testProjectURLConstant + " qualification-*"
	testCreationTimesKeyTemplate = "for-each-ref --format=%(refname:short) %(creatordate:unix) refs/tags/"
	testNowUnixConstant          = 2345
	testOlderQualificationCommit = "1111111111111111111111111111111111111111"
	testNewerQualificationCommit = "2222222222222222222222222222222222222222"
)

var errTestGitFailure = errors.New("git failure")

type recordingExecutor struct {
	responses map[string]execshell.ExecutionResult
	failures  map[string]error
	recorded  []string
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{
		responses: map[string]execshell.ExecutionResult{},
		failures:  map[string]error{},
	}
}

func (executor *recordingExecutor) respond(arguments string, output string) *recordingExecutor {
	executor.responses[arguments] = execshell.ExecutionResult{StandardOutput: output}
	return executor
}

func (executor *recordingExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	key := strings.Join(details.Arguments, " ")
	executor.recorded = append(executor.recorded, key)
	if failure, found := executor.failures[key]; found {
		return execshell.ExecutionResult{}, failure
	}
	return executor.responses[key], nil
}

func (executor *recordingExecutor) withSubcommand(subcommand string) []string {
	matching := make([]string, 0)
	for _, line := range executor.recorded {
		if strings.HasPrefix(line, subcommand+" ") {
			matching = append(matching, line)
		}
	}
	return matching
}

func qualificationListing(tags ...string) string {
	commits := []string{testOlderQualificationCommit, testNewerQualificationCommit}
	lines := make([]string, 0, len(tags))
	for index, tag := range tags {
		lines = append(lines, commits[index%len(commits)]+"\trefs/tags/"+tag)
	}
	return strings.Join(lines, "\n")
}

func testTrainConfiguration() train.Configuration {
	configuration := train.DefaultConfiguration()
	configuration.Project = testProjectConstant
	configuration.Owner = testOwnerConstant
	return configuration
}

func fixedClock() time.Time {
	return time.Unix(testNowUnixConstant, 0)
}

func newTestService(executor *recordingExecutor, configuration qualification.Configuration, logger *zap.Logger) (*qualification.Service, error) {
	resolver := &qualification.DefaultServiceResolver{Executor: executor, Clock: fixedClock}
	return resolver.Resolve(logger, qualification.CommandConfiguration{
		Train:         testTrainConfiguration(),
		Qualification: configuration,
	})
}
