// Package cli builds the releasetrain command-line interface: the Cobra root
// command with its shared --config, --log-level and --log-format flags, layered
// configuration, zap logging, and the release train and qualification commands.
package cli
