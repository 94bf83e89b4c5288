// Package gitremote queries and tags remote repositories through the git CLI.
//
// Client answers questions with git ls-remote only: the tip of a branch, the
// newest tag matching a glob, the commit behind a tag. Annotated tags are
// resolved through their ^{} dereference lines. Tagger writes tags, either in a
// local checkout (batched pushes, deletions, creation dates) or in a throwaway
// blobless clone when only the tip of a remote branch needs a tag.
package gitremote
