// Package gitrepo resolves where tracked repositories live.
//
// OwnerLocation turns a configured base such as https://github.com/DataDog into
// per-repository RemoteURL values, which format into clone URLs for git and
// commit-history links for chat notifications.
package gitrepo
