// Package credentials resolves API tokens from declarations such as
// env:SLACK_BOT_TOKEN or file:~/.config/releasetrain/token.
package credentials
