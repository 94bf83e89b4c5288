// Package notify tells repository owners in Slack which tags a release candidate still needs.
package notify
