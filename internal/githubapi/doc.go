// Package githubapi reads repository tags through the GitHub REST API.
//
// Dependency versions written into the release manifest are picked from these
// listings with version.HighestVersion.
package githubapi
