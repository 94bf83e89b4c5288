package train_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/releasetrain/internal/gitremote"
	"github.com/temirov/releasetrain/internal/manifest"
	"github.com/temirov/releasetrain/internal/train"
	"github.com/temirov/releasetrain/internal/version"
)

const (
	testOwnerConstant            = "DataDog"
	testProjectConstant          = "datadog-agent"
	testOmnibusConstant          = "omnibus-ruby"
	testIntegrationsConstant     = "integrations-core"
	testReleaseBranchConstant    = "7.55.x"
	testDefaultBranchConstant    = "main"
	testProjectURLConstant       = "https://github.com/DataDog/datadog-agent"
	testOmnibusURLConstant       = "https://github.com/DataDog/omnibus-ruby"
	testIntegrationsURLConstant  = "https://github.com/DataDog/integrations-core"
	testManifestDocumentConstant = `{
    // bookkeeping for the ongoing release
    "base_branch": "main",
    "current_milestone": "7.56.0",
    "dependencies": {
        "DATADOG_AGENT_VERSION": "7.55.0-rc.1",
        "OMNIBUS_RUBY_VERSION": "7.55.0-rc.1",
        "INTEGRATIONS_CORE_VERSION": "7.55.0-rc.1",
    },
}`
	fakeKeySeparatorConstant = "|"
)

func testConfiguration() train.Configuration {
	return train.Configuration{
		Project: testProjectConstant,
		Owner:   testOwnerConstant,
		Repositories: []train.RepositoryConfiguration{
			{Name: testProjectConstant, ManifestKey: "DATADOG_AGENT_VERSION"},
			{Name: testOmnibusConstant, ManifestKey: "OMNIBUS_RUBY_VERSION", DefaultBranch: "datadog-5.5.0"},
			{Name: testIntegrationsConstant, ManifestKey: "INTEGRATIONS_CORE_VERSION", FollowsReleaseBranch: true, Integrations: true},
		},
	}
}

func testManifest(testInstance *testing.T, document string) *manifest.Manifest {
	testInstance.Helper()
	parsed, parseError := manifest.Parse("release.json", []byte(document))
	require.NoError(testInstance, parseError)
	return parsed
}

func fakeKey(parts ...string) string {
	return strings.Join(parts, fakeKeySeparatorConstant)
}

type fakeRemote struct {
	heads      map[string]string
	latestTags map[string]gitremote.TagRecord
	tags       map[string]string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		heads:      map[string]string{},
		latestTags: map[string]gitremote.TagRecord{},
		tags:       map[string]string{},
	}
}

func (remote *fakeRemote) withHead(remoteURL string, branch string, commit string) *fakeRemote {
	remote.heads[fakeKey(remoteURL, branch)] = commit
	return remote
}

func (remote *fakeRemote) withLatestTag(remoteURL string, glob string, name string, commit string) *fakeRemote {
	remote.latestTags[fakeKey(remoteURL, glob)] = gitremote.TagRecord{Commit: commit, Name: name}
	return remote
}

func (remote *fakeRemote) withTag(remoteURL string, name string, commit string) *fakeRemote {
	remote.tags[fakeKey(remoteURL, name)] = commit
	return remote
}

func (remote *fakeRemote) LatestCommitOnBranch(_ context.Context, remoteURL string, branch string) (string, error) {
	commit, found := remote.heads[fakeKey(remoteURL, branch)]
	if !found {
		return "", gitremote.BranchNotFoundError{URL: remoteURL, Branch: branch}
	}
	return commit, nil
}

func (remote *fakeRemote) LatestTag(_ context.Context, remoteURL string, glob string) (gitremote.TagRecord, bool, error) {
	record, found := remote.latestTags[fakeKey(remoteURL, glob)]
	return record, found, nil
}

func (remote *fakeRemote) LatestCandidateTag(executionContext context.Context, remoteURL string, release version.Version) (gitremote.TagRecord, bool, error) {
	return remote.LatestTag(executionContext, remoteURL, release.TagPattern())
}

func (remote *fakeRemote) ResolveTag(_ context.Context, remoteURL string, tag string) (string, error) {
	commit, found := remote.tags[fakeKey(remoteURL, tag)]
	if !found {
		return "", gitremote.TagNotFoundError{URL: remoteURL, Tag: tag}
	}
	return commit, nil
}

type taggedBranch struct {
	URL    string
	Branch string
	Tag    string
}

type fakeTagger struct {
	tagged []taggedBranch
	err    error
}

func (tagger *fakeTagger) TagAndPushRemote(_ context.Context, remoteURL string, branch string, tag string) error {
	if tagger.err != nil {
		return tagger.err
	}
	tagger.tagged = append(tagger.tagged, taggedBranch{URL: remoteURL, Branch: branch, Tag: tag})
	return nil
}

type warning struct {
	Repositories []string
	Tag          string
	Branch       string
}

type fakeNotifier struct {
	warnings []warning
}

func (notifier *fakeNotifier) WarnNewCommits(_ context.Context, repositories []string, tag string, branch string) {
	notifier.warnings = append(notifier.warnings, warning{Repositories: append([]string{}, repositories...), Tag: tag, Branch: branch})
}
