package notify

import (
	"fmt"
	"strings"

	"github.com/temirov/releasetrain/internal/gitrepo"
)

const (
	warningHeaderTemplateConstant = ":warning: Please add the `%s` tag on the head of `%s` for:\n"
	warningLineTemplateConstant   = " - <%s|%s>\n"
	warningFooterConstant         = "Make sure to tag them before merging the next RC PR."
)

// BuildWarningMessage renders the request to tag the head of branch in each repository.
func BuildWarningMessage(location gitrepo.OwnerLocation, repositories []string, tag string, branch string) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(warningHeaderTemplateConstant, tag, branch))
	for _, repository := range repositories {
		builder.WriteString(fmt.Sprintf(warningLineTemplateConstant, location.Repository(repository).CommitsURL(branch), repository))
	}
	builder.WriteString(warningFooterConstant)
	return builder.String()
}
