package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	pathutils "github.com/temirov/releasetrain/internal/utils/path"
)

const (
	tokenSourceSeparatorConstant               = ":"
	environmentTokenSourceTypeValueConstant    = "env"
	fileTokenSourceTypeValueConstant           = "file"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "token file path must be provided"
	fileReadErrorTemplateConstant              = "unable to read token file %s: %w"
	unsupportedTokenSourceTemplateConstant     = "unsupported token source type %q"
	missingTokenTemplateConstant               = "%s %s yielded no token"
)

// ErrTokenSourceMissing indicates no token source declaration was configured.
var ErrTokenSourceMissing = errors.New("token source must be provided")

// ErrTokenUnavailable indicates the declared source exists but holds no token.
var ErrTokenUnavailable = errors.New("token unavailable")

// SourceType enumerates the supported token retrieval mechanisms.
type SourceType string

// Token source type enumerations.
const (
	SourceTypeEnvironment SourceType = SourceType(environmentTokenSourceTypeValueConstant)
	SourceTypeFile        SourceType = SourceType(fileTokenSourceTypeValueConstant)
)

// Source specifies where a credentials token lives, e.g. env:SLACK_BOT_TOKEN or file:~/.slack-token.
type Source struct {
	Type      SourceType
	Reference string
}

// String renders the source in its declaration form.
func (source Source) String() string {
	return string(source.Type) + tokenSourceSeparatorConstant + source.Reference
}

// MissingTokenError reports a source that yielded no token.
type MissingTokenError struct {
	Source Source
}

// Error describes the empty source.
func (missingError MissingTokenError) Error() string {
	return fmt.Sprintf(missingTokenTemplateConstant, missingError.Source.Type, missingError.Source.Reference)
}

// Unwrap exposes ErrTokenUnavailable.
func (missingError MissingTokenError) Unwrap() error {
	return ErrTokenUnavailable
}

// Resolver retrieves authentication tokens from configured sources.
type Resolver interface {
	Resolve(resolutionContext context.Context, source Source) (string, error)
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// NewResolver creates a token resolver; nil dependencies fall back to the process environment and file system.
func NewResolver(environmentLookup EnvironmentLookup, fileReader FileReader) Resolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	return &tokenResolver{
		environmentLookup: environmentLookup,
		fileReader:        fileReader,
		homeExpander:      pathutils.NewHomeExpander(),
	}
}

// ParseSource interprets textual token source declarations. A bare value names an environment variable.
func ParseSource(sourceValue string) (Source, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return Source{}, ErrTokenSourceMissing
	}

	sourceType, reference, hasType := strings.Cut(trimmedValue, tokenSourceSeparatorConstant)
	if !hasType {
		return Source{Type: SourceTypeEnvironment, Reference: trimmedValue}, nil
	}
	reference = strings.TrimSpace(reference)

	switch SourceType(strings.ToLower(strings.TrimSpace(sourceType))) {
	case SourceTypeEnvironment:
		if len(reference) == 0 {
			return Source{}, errors.New(environmentNameMissingErrorMessageConstant)
		}
		return Source{Type: SourceTypeEnvironment, Reference: reference}, nil
	case SourceTypeFile:
		if len(reference) == 0 {
			return Source{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return Source{Type: SourceTypeFile, Reference: reference}, nil
	default:
		return Source{}, fmt.Errorf(unsupportedTokenSourceTemplateConstant, sourceType)
	}
}

type tokenResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
	homeExpander      *pathutils.HomeExpander
}

func (resolver *tokenResolver) Resolve(resolutionContext context.Context, source Source) (string, error) {
	if contextError := resolutionContext.Err(); contextError != nil {
		return "", contextError
	}

	switch source.Type {
	case SourceTypeEnvironment:
		value, _ := resolver.environmentLookup(source.Reference)
		return nonEmptyToken(source, value)
	case SourceTypeFile:
		contents, readError := resolver.fileReader(resolver.homeExpander.Expand(source.Reference))
		if readError != nil {
			return "", fmt.Errorf(fileReadErrorTemplateConstant, source.Reference, readError)
		}
		return nonEmptyToken(source, string(contents))
	default:
		return "", fmt.Errorf(unsupportedTokenSourceTemplateConstant, source.Type)
	}
}

func nonEmptyToken(source Source, value string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return "", MissingTokenError{Source: source}
	}
	return trimmedValue, nil
}
