package notify

import (
	"context"
	"net/http"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/temirov/releasetrain/internal/credentials"
	"github.com/temirov/releasetrain/internal/gitrepo"
)

const (
	defaultChannelConstant              = "#agent-release-sync"
	defaultTokenSourceConstant          = "env:SLACK_BOT_TOKEN"
	tokenUnavailableLogMessageConstant  = "Slack token unavailable; skipping notification"
	postFailedLogMessageConstant        = "Unable to post Slack notification"
	postSucceededLogMessageConstant     = "Posted Slack notification"
	emptyNotificationLogMessageConstant = "No repositories to notify about"
	channelLogFieldConstant             = "channel"
	repositoriesLogFieldConstant        = "repositories"
	tagLogFieldConstant                 = "tag"
	timestampLogFieldConstant           = "timestamp"
	tokenSourceLogFieldConstant         = "token_source"
)

// Configuration selects where notifications go and how the bot token is found.
type Configuration struct {
	Channel     string `mapstructure:"channel"`
	TokenSource string `mapstructure:"token_source"`
	APIURL      string `mapstructure:"api_url"`
}

// DefaultConfiguration supplies the default channel and token source.
func DefaultConfiguration() Configuration {
	return Configuration{Channel: defaultChannelConstant, TokenSource: defaultTokenSourceConstant}
}

// Sanitize trims values and fills defaults for empty fields.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		Channel:     strings.TrimSpace(configuration.Channel),
		TokenSource: strings.TrimSpace(configuration.TokenSource),
		APIURL:      strings.TrimSpace(configuration.APIURL),
	}
	if len(sanitized.Channel) == 0 {
		sanitized.Channel = defaults.Channel
	}
	if len(sanitized.TokenSource) == 0 {
		sanitized.TokenSource = defaults.TokenSource
	}
	return sanitized
}

// SlackNotifier posts release warnings to a Slack channel. Delivery is best-effort:
// failures are logged and never returned.
type SlackNotifier struct {
	configuration Configuration
	location      gitrepo.OwnerLocation
	resolver      credentials.Resolver
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewSlackNotifier constructs a SlackNotifier. A nil httpClient uses http.DefaultClient.
func NewSlackNotifier(configuration Configuration, location gitrepo.OwnerLocation, resolver credentials.Resolver, httpClient *http.Client, logger *zap.Logger) *SlackNotifier {
	if resolver == nil {
		resolver = credentials.NewResolver(nil, nil)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlackNotifier{
		configuration: configuration.Sanitize(),
		location:      location,
		resolver:      resolver,
		httpClient:    httpClient,
		logger:        logger,
	}
}

// WarnNewCommits asks the owners of repositories to tag the head of branch with tag.
// Nothing is posted when repositories is empty.
func (notifier *SlackNotifier) WarnNewCommits(executionContext context.Context, repositories []string, tag string, branch string) {
	if len(repositories) == 0 {
		notifier.logger.Debug(emptyNotificationLogMessageConstant)
		return
	}

	token, tokenError := notifier.resolveToken(executionContext)
	if tokenError != nil {
		notifier.logger.Warn(tokenUnavailableLogMessageConstant, zap.String(tokenSourceLogFieldConstant, notifier.configuration.TokenSource), zap.Error(tokenError))
		return
	}

	options := []slack.Option{slack.OptionHTTPClient(notifier.httpClient)}
	if len(notifier.configuration.APIURL) > 0 {
		options = append(options, slack.OptionAPIURL(withTrailingSlash(notifier.configuration.APIURL)))
	}
	client := slack.New(token, options...)

	message := BuildWarningMessage(notifier.location, repositories, tag, branch)
	_, timestamp, postError := client.PostMessageContext(executionContext, notifier.configuration.Channel, slack.MsgOptionText(message, false))
	if postError != nil {
		notifier.logger.Warn(
			postFailedLogMessageConstant,
			zap.String(channelLogFieldConstant, notifier.configuration.Channel),
			zap.Strings(repositoriesLogFieldConstant, repositories),
			zap.Error(postError),
		)
		return
	}
	notifier.logger.Info(
		postSucceededLogMessageConstant,
		zap.String(channelLogFieldConstant, notifier.configuration.Channel),
		zap.Strings(repositoriesLogFieldConstant, repositories),
		zap.String(tagLogFieldConstant, tag),
		zap.String(timestampLogFieldConstant, timestamp),
	)
}

func (notifier *SlackNotifier) resolveToken(executionContext context.Context) (string, error) {
	source, parseError := credentials.ParseSource(notifier.configuration.TokenSource)
	if parseError != nil {
		return "", parseError
	}
	return notifier.resolver.Resolve(executionContext, source)
}

func withTrailingSlash(value string) string {
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
