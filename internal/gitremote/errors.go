package gitremote

import (
	"fmt"
	"strings"
)

const (
	remoteQueryErrorTemplateConstant    = "%s on %s failed: %v"
	branchNotFoundErrorTemplateConstant = "branch %s not found on %s"
	tagNotFoundErrorTemplateConstant    = "tag %s not found on %s"
	batchPushErrorTemplateConstant      = "pushed %d of %d tags, failed at [%s]: %v"
	tagListSeparatorConstant            = " "
)

// Operation names used in RemoteQueryError.
const (
	OperationListHeads = "list heads"
	OperationListTags  = "list tags"
)

// RemoteQueryError reports a remote listing that failed or could not run.
type RemoteQueryError struct {
	URL       string
	Operation string
	Err       error
}

// Error describes the failed query.
func (queryError RemoteQueryError) Error() string {
	return fmt.Sprintf(remoteQueryErrorTemplateConstant, queryError.Operation, queryError.URL, queryError.Err)
}

// Unwrap exposes the command failure.
func (queryError RemoteQueryError) Unwrap() error {
	return queryError.Err
}

// BranchNotFoundError indicates the remote has no head with the requested name.
type BranchNotFoundError struct {
	URL    string
	Branch string
}

// Error describes the missing branch.
func (notFoundError BranchNotFoundError) Error() string {
	return fmt.Sprintf(branchNotFoundErrorTemplateConstant, notFoundError.Branch, notFoundError.URL)
}

// TagNotFoundError indicates the remote has no tag with the requested name.
type TagNotFoundError struct {
	URL string
	Tag string
}

// Error describes the missing tag.
func (notFoundError TagNotFoundError) Error() string {
	return fmt.Sprintf(tagNotFoundErrorTemplateConstant, notFoundError.Tag, notFoundError.URL)
}

// BatchPushError reports a batch that failed to push. Tags in Pushed reached the
// remote before the failure and are not rolled back.
type BatchPushError struct {
	Pushed []string
	Failed []string
	Err    error
}

// Error describes the partial push.
func (pushError BatchPushError) Error() string {
	total := len(pushError.Pushed) + len(pushError.Failed)
	return fmt.Sprintf(batchPushErrorTemplateConstant, len(pushError.Pushed), total, strings.Join(pushError.Failed, tagListSeparatorConstant), pushError.Err)
}

// Unwrap exposes the push failure.
func (pushError BatchPushError) Unwrap() error {
	return pushError.Err
}
