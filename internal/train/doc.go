// Package train reconciles release candidates across the repositories that ship
// together with a project.
//
// Service compares each tracked repository's branch tip and latest candidate tag
// with the tag recorded in the release manifest, tags the project when it has
// untagged commits, and warns the owners of other repositories. The command
// builders expose these operations, together with manifest maintenance, to the CLI.
package train
