package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant       = "ssh://"
	sshUserDelimiterConstant        = "@"
	sshPathDelimiterConstant        = ":"
	httpsProtocolPrefixConstant     = "https://"
	gitUserPrefixConstant           = "git@"
	pathSeparatorConstant           = "/"
	gitSuffixConstant               = ".git"
	parseErrorTemplateConstant      = "%s: %s"
	invalidRemoteURLMessageConstant = "invalid remote url"
	invalidBaseURLMessageConstant   = "base url must name a host and an owner"
	unknownProtocolMessageConstant  = "unsupported remote protocol"
	requiredValueMessageConstant    = "value required"
	httpsRepositoryTemplateConstant = "https://%s/%s/%s"
	sshRepositoryTemplateConstant   = "git@%s:%s/%s.git"
	commitsURLTemplateConstant      = "https://%s/%s/%s/commits/%s/"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL identifies a hosted repository and the protocol used to reach it.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// OwnerLocation names the host and owner under which tracked repositories live,
// e.g. https://github.com/DataDog or git@github.com:DataDog.
type OwnerLocation struct {
	Protocol RemoteProtocol
	Host     string
	Owner    string
}

// ParseOwnerLocation interprets a base URL naming a host and an owner.
func ParseOwnerLocation(baseURL string) (OwnerLocation, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(baseURL), pathSeparatorConstant)
	if len(trimmed) == 0 {
		return OwnerLocation{}, RemoteURLParseError{Input: baseURL, Message: requiredValueMessageConstant}
	}

	if strings.HasPrefix(trimmed, httpsProtocolPrefixConstant) {
		segments := strings.Split(strings.TrimPrefix(trimmed, httpsProtocolPrefixConstant), pathSeparatorConstant)
		if len(segments) != 2 || len(segments[0]) == 0 || len(segments[1]) == 0 {
			return OwnerLocation{}, RemoteURLParseError{Input: baseURL, Message: invalidBaseURLMessageConstant}
		}
		return OwnerLocation{Protocol: RemoteProtocolHTTPS, Host: segments[0], Owner: segments[1]}, nil
	}

	sshRemainder := strings.TrimPrefix(trimmed, sshProtocolPrefixConstant)
	userSplitIndex := strings.Index(sshRemainder, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return OwnerLocation{}, RemoteURLParseError{Input: baseURL, Message: invalidBaseURLMessageConstant}
	}
	host, owner, found := strings.Cut(sshRemainder[userSplitIndex+1:], sshPathDelimiterConstant)
	if !found {
		host, owner, found = strings.Cut(sshRemainder[userSplitIndex+1:], pathSeparatorConstant)
	}
	if !found || len(host) == 0 || len(owner) == 0 || strings.Contains(owner, pathSeparatorConstant) {
		return OwnerLocation{}, RemoteURLParseError{Input: baseURL, Message: invalidBaseURLMessageConstant}
	}
	return OwnerLocation{Protocol: RemoteProtocolSSH, Host: host, Owner: owner}, nil
}

// Repository returns the remote coordinates of a repository under the owner.
func (location OwnerLocation) Repository(name string) RemoteURL {
	return RemoteURL{Protocol: location.Protocol, Host: location.Host, Owner: location.Owner, Repository: strings.TrimSpace(name)}
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	if strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant) {
		segments := strings.Split(strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant), pathSeparatorConstant)
		if len(segments) < 3 {
			return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
		}
		repository, nameError := normalizeRepositoryName(remote, strings.Join(segments[2:], pathSeparatorConstant))
		if nameError != nil {
			return RemoteURL{}, nameError
		}
		return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: segments[0], Owner: segments[1], Repository: repository}, nil
	}

	if strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant) || strings.HasPrefix(trimmedRemote, gitUserPrefixConstant) {
		location, locationError := ParseOwnerLocation(pathParent(trimmedRemote))
		if locationError != nil {
			return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
		}
		repository, nameError := normalizeRepositoryName(remote, pathBase(trimmedRemote))
		if nameError != nil {
			return RemoteURL{}, nameError
		}
		return location.Repository(repository), nil
	}

	return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
}

// FormatRemoteURL renders the clone URL git uses for the remote.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	if validationError := remote.validate(); validationError != nil {
		return "", validationError
	}

	switch remote.Protocol {
	case RemoteProtocolSSH:
		return fmt.Sprintf(sshRepositoryTemplateConstant, remote.Host, remote.Owner, remote.Repository), nil
	case RemoteProtocolHTTPS:
		return fmt.Sprintf(httpsRepositoryTemplateConstant, remote.Host, remote.Owner, remote.Repository), nil
	default:
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
}

// CommitsURL links to the commit history of the branch in the hosting web interface.
func (remote RemoteURL) CommitsURL(branch string) string {
	return fmt.Sprintf(commitsURLTemplateConstant, remote.Host, remote.Owner, remote.Repository, branch)
}

func (remote RemoteURL) validate() error {
	if len(strings.TrimSpace(remote.Host)) == 0 {
		return RemoteURLParseError{Input: remote.Host, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Owner)) == 0 {
		return RemoteURLParseError{Input: remote.Owner, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Repository)) == 0 {
		return RemoteURLParseError{Input: remote.Repository, Message: requiredValueMessageConstant}
	}
	return nil
}

func normalizeRepositoryName(input string, repository string) (string, error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(repository, pathSeparatorConstant), gitSuffixConstant)
	if len(trimmed) == 0 {
		return "", RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	return trimmed, nil
}

func pathParent(remote string) string {
	separatorIndex := strings.LastIndex(remote, pathSeparatorConstant)
	if separatorIndex == -1 {
		return remote
	}
	return remote[:separatorIndex]
}

func pathBase(remote string) string {
	separatorIndex := strings.LastIndex(remote, pathSeparatorConstant)
	if separatorIndex == -1 {
		return ""
	}
	return remote[separatorIndex+1:]
}
