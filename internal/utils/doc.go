// Package utils holds the CLI plumbing shared by every command: layered
// configuration loading, zap logger construction, command context values and
// output flushing.
package utils
