package manifest

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/goliatone/go-navigation/internal/seed"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaSource string

var ErrManifestInvalid = errors.New("manifest: validation failed")

// ValidationIssue captures a single schema violation inside a manifest.
type ValidationIssue struct {
	Location string
	Message  string
}

// ManifestValidationError reports every schema violation found in a
// manifest so callers can surface them all at once.
type ManifestValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *ManifestValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrManifestInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *ManifestValidationError) Unwrap() error {
	return ErrManifestInvalid
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var manifestErr *ManifestValidationError
	if errors.As(err, &manifestErr) && manifestErr != nil {
		return manifestErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// Load reads a manifest file and returns the seeding options it
// describes. Both YAML and JSON bodies are accepted.
func Load(path string) (seed.Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return seed.Options{}, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates raw manifest bytes against the embedded schema and
// decodes them into seeding options. JSON manifests parse through the
// same path because JSON is a YAML subset.
func Parse(raw []byte) (seed.Options, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return seed.Options{}, fmt.Errorf("manifest: parse: %w", err)
	}

	normalized, err := toJSONValue(doc)
	if err != nil {
		return seed.Options{}, fmt.Errorf("manifest: normalize: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return seed.Options{}, err
	}
	if err := schema.Validate(normalized); err != nil {
		return seed.Options{}, &ManifestValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}

	var envelope manifestEnvelope
	if err := yaml.Unmarshal(raw, &envelope); err != nil {
		return seed.Options{}, fmt.Errorf("manifest: decode: %w", err)
	}
	return envelope.options(), nil
}

type manifestEnvelope struct {
	Menu        string            `yaml:"menu"`
	Location    *string           `yaml:"location"`
	Description *string           `yaml:"description"`
	Locale      string            `yaml:"locale"`
	Ensure      bool              `yaml:"ensure"`
	Prune       bool              `yaml:"prune"`
	Sections    []sectionEnvelope `yaml:"sections"`
}

type sectionEnvelope struct {
	Ref          string                `yaml:"ref"`
	Title        string                `yaml:"title"`
	URL          string                `yaml:"url"`
	Kind         string                `yaml:"kind"`
	Position     *int                  `yaml:"position"`
	Hidden       bool                  `yaml:"hidden"`
	Target       map[string]any        `yaml:"target"`
	Icon         string                `yaml:"icon"`
	Classes      []string              `yaml:"classes"`
	Summary      string                `yaml:"summary"`
	Metadata     map[string]any        `yaml:"metadata"`
	Translations []translationEnvelope `yaml:"translations"`
	Children     []sectionEnvelope     `yaml:"children"`
}

type translationEnvelope struct {
	Locale   string  `yaml:"locale"`
	Title    string  `yaml:"title"`
	TitleKey string  `yaml:"title_key"`
	URL      *string `yaml:"url"`
	Summary  string  `yaml:"summary"`
}

func (m manifestEnvelope) options() seed.Options {
	return seed.Options{
		Code:             m.Menu,
		Location:         m.Location,
		Description:      m.Description,
		Locale:           m.Locale,
		Sections:         sectionsFromEnvelopes(m.Sections),
		Ensure:           m.Ensure,
		PruneUnspecified: m.Prune,
	}
}

func sectionsFromEnvelopes(items []sectionEnvelope) []seed.Section {
	if len(items) == 0 {
		return nil
	}
	out := make([]seed.Section, 0, len(items))
	for _, item := range items {
		out = append(out, seed.Section{
			Ref:          item.Ref,
			Title:        item.Title,
			URL:          item.URL,
			Kind:         item.Kind,
			Position:     item.Position,
			Hidden:       item.Hidden,
			Target:       item.Target,
			Icon:         item.Icon,
			Classes:      item.Classes,
			Summary:      item.Summary,
			Metadata:     item.Metadata,
			Translations: translationsFromEnvelopes(item.Translations),
			Children:     sectionsFromEnvelopes(item.Children),
		})
	}
	return out
}

func translationsFromEnvelopes(items []translationEnvelope) []seed.Translation {
	if len(items) == 0 {
		return nil
	}
	out := make([]seed.Translation, 0, len(items))
	for _, item := range items {
		out = append(out, seed.Translation{
			Locale:      item.Locale,
			Title:       item.Title,
			TitleKey:    item.TitleKey,
			URLOverride: item.URL,
			Summary:     item.Summary,
		})
	}
	return out
}

// toJSONValue round-trips the YAML document through encoding/json so the
// schema validator sees canonical JSON types.
func toJSONValue(doc any) (any, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var normalized any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("manifest.schema.json", strings.NewReader(schemaSource)); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = compiler.Compile("manifest.schema.json")
	})
	if compileErr != nil {
		return nil, fmt.Errorf("manifest: compile schema: %w", compileErr)
	}
	return compiled, nil
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
