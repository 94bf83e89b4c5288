package manifest

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const (
	// KeySeparator joins nested manifest keys, as in dependencies::INTEGRATIONS_CORE_VERSION.
	KeySeparator = "::"
	// DefaultDependenciesSection names the manifest section holding dependency versions.
	DefaultDependenciesSection = "dependencies"
	// BaseBranchKey stores the branch the release is cut from.
	BaseBranchKey = "base_branch"
	// CurrentMilestoneKey stores the milestone of the ongoing release.
	CurrentMilestoneKey = "current_milestone"

	gjsonPathSeparatorConstant      = "."
	gjsonEscapedCharactersConstant  = `\.*?|#@!=<>%`
	gjsonEscapePrefixConstant       = `\`
	versionKeySuffixConstant        = "_version"
	keyWordSeparatorConstant        = "_"
	repositoryWordSeparatorConstant = "-"
	indentationConstant             = "    "
	documentWidthConstant           = 80
	fileModeConstant                = 0o644
	readErrorTemplateConstant       = "read manifest %s: %w"
	writeErrorTemplateConstant      = "write manifest %s: %w"
	setValueErrorTemplateConstant   = "set %s: %w"
	decodeErrorTemplateConstant     = "decode manifest summary: %w"
	invalidDocumentTemplateConstant = "manifest %s is not valid JSON"
	keyNotFoundTemplateConstant     = "couldn't find '%s' in manifest"
	notObjectTemplateConstant       = "manifest key '%s' is not an object"
)

// InvalidDocumentError indicates the manifest could not be parsed even after comments were stripped.
type InvalidDocumentError struct {
	Path string
}

// Error describes the invalid document.
func (invalidError InvalidDocumentError) Error() string {
	return fmt.Sprintf(invalidDocumentTemplateConstant, invalidError.Path)
}

// KeyNotFoundError indicates a manifest key path does not exist.
type KeyNotFoundError struct {
	Key string
}

// Error describes the missing key.
func (notFoundError KeyNotFoundError) Error() string {
	return fmt.Sprintf(keyNotFoundTemplateConstant, notFoundError.Key)
}

// NotObjectError indicates a key path that was expected to hold an object holds a scalar or array.
type NotObjectError struct {
	Key string
}

// Error describes the mismatch.
func (notObjectError NotObjectError) Error() string {
	return fmt.Sprintf(notObjectTemplateConstant, notObjectError.Key)
}

// Summary holds the top-level release bookkeeping fields.
type Summary struct {
	BaseBranch       string `mapstructure:"base_branch"`
	CurrentMilestone string `mapstructure:"current_milestone"`
}

// Manifest is a release manifest document. Comments and trailing commas are
// accepted on load; edits keep key order.
type Manifest struct {
	path     string
	document []byte
}

// Load reads the manifest at path.
func Load(path string) (*Manifest, error) {
	contents, readError := os.ReadFile(path)
	if readError != nil {
		return nil, fmt.Errorf(readErrorTemplateConstant, path, readError)
	}
	return Parse(path, contents)
}

// Parse builds a manifest from contents. The path is used when saving.
func Parse(path string, contents []byte) (*Manifest, error) {
	document := jsonc.ToJSON(contents)
	if !gjson.ValidBytes(document) || !gjson.ParseBytes(document).IsObject() {
		return nil, InvalidDocumentError{Path: path}
	}
	return &Manifest{path: path, document: document}, nil
}

// Path returns the file the manifest was loaded from.
func (manifest *Manifest) Path() string {
	return manifest.path
}

// Value returns the value at a key path such as dependencies::JMXFETCH_VERSION.
func (manifest *Manifest) Value(key string) (gjson.Result, error) {
	result := gjson.GetBytes(manifest.document, gjsonPath(key))
	if !result.Exists() {
		return gjson.Result{}, KeyNotFoundError{Key: key}
	}
	return result, nil
}

// StringValue returns the value at a key path rendered as a string.
func (manifest *Manifest) StringValue(key string) (string, error) {
	result, valueError := manifest.Value(key)
	if valueError != nil {
		return "", valueError
	}
	return result.String(), nil
}

// Summary decodes the top-level bookkeeping fields.
func (manifest *Manifest) Summary() (Summary, error) {
	var summary Summary
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &summary,
	})
	if decoderError != nil {
		return Summary{}, fmt.Errorf(decodeErrorTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(gjson.ParseBytes(manifest.document).Value()); decodeError != nil {
		return Summary{}, fmt.Errorf(decodeErrorTemplateConstant, decodeError)
	}
	return summary, nil
}

// PreviousTags maps repositories to the tags recorded for them in a manifest section.
// Each key is lowercased, stripped of its _version suffix and hyphenated, and the
// first repository whose name contains the result receives the key's value.
func (manifest *Manifest) PreviousTags(section string, keys []string, repositories []string) (map[string]string, error) {
	previousTags := make(map[string]string, len(keys))
	for _, key := range keys {
		repositoryFragment := repositoryFragmentForKey(key)
		for _, repository := range repositories {
			if !strings.Contains(repository, repositoryFragment) {
				continue
			}
			tag, valueError := manifest.StringValue(section + KeySeparator + key)
			if valueError != nil {
				return nil, valueError
			}
			previousTags[repository] = tag
			break
		}
	}
	return previousTags, nil
}

// SetValue writes value at a key path, creating missing objects along the way.
func (manifest *Manifest) SetValue(key string, value any) error {
	updatedDocument, setError := sjson.SetBytes(manifest.document, gjsonPath(key), value)
	if setError != nil {
		return fmt.Errorf(setValueErrorTemplateConstant, key, setError)
	}
	manifest.document = updatedDocument
	return nil
}

// UpdateDependencies writes versions into the section, keyed by manifest key.
func (manifest *Manifest) UpdateDependencies(section string, versions map[string]string) error {
	sectionResult, sectionError := manifest.Value(section)
	if sectionError != nil {
		return sectionError
	}
	if !sectionResult.IsObject() {
		return NotObjectError{Key: section}
	}

	keys := make([]string, 0, len(versions))
	for key := range versions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if setError := manifest.SetValue(section+KeySeparator+key, versions[key]); setError != nil {
			return setError
		}
	}
	return nil
}

// Bytes renders the manifest with four-space indentation and a trailing newline.
func (manifest *Manifest) Bytes() []byte {
	return pretty.PrettyOptions(manifest.document, &pretty.Options{
		Width:    documentWidthConstant,
		Indent:   indentationConstant,
		SortKeys: false,
	})
}

// Save writes the manifest back to the file it was loaded from.
func (manifest *Manifest) Save() error {
	if writeError := os.WriteFile(manifest.path, manifest.Bytes(), fileModeConstant); writeError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, manifest.path, writeError)
	}
	return nil
}

func repositoryFragmentForKey(key string) string {
	lowered := strings.TrimSuffix(strings.ToLower(key), versionKeySuffixConstant)
	return strings.ReplaceAll(lowered, keyWordSeparatorConstant, repositoryWordSeparatorConstant)
}

func gjsonPath(key string) string {
	components := strings.Split(key, KeySeparator)
	for index, component := range components {
		components[index] = escapePathComponent(component)
	}
	return strings.Join(components, gjsonPathSeparatorConstant)
}

func escapePathComponent(component string) string {
	var builder strings.Builder
	for _, character := range component {
		if strings.ContainsRune(gjsonEscapedCharactersConstant, character) {
			builder.WriteString(gjsonEscapePrefixConstant)
		}
		builder.WriteRune(character)
	}
	return builder.String()
}
