// Package prompts holds the stage instructions appended to each extraction
// prompt. They live in an embedded JSON file so wording can change without
// touching the pipeline.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// File is the embedded prompt file used by the onboarding stages
const File = "onboarding.json"

// Stage instruction keys in File
const (
	CoarseEntities = "coarse-entities"
	FineParameters = "fine-parameters"
)

//go:embed *.json
var promptFiles embed.FS

var placeholderPattern = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9_]*)\}\}`)

var (
	cacheMu sync.Mutex
	cache   = map[string]map[string]string{}
)

// UnfilledError reports template fields that Render had no value for
type UnfilledError struct {
	Key    string
	Fields []string
}

func (e *UnfilledError) Error() string {
	return fmt.Sprintf("prompt %q: no value for %s", e.Key, strings.Join(e.Fields, ", "))
}

// Get returns the raw template stored under key in file
func Get(file, key string) (string, error) {
	templates, err := load(file)
	if err != nil {
		return "", err
	}
	tmpl, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return tmpl, nil
}

// MustGet is Get for templates the binary cannot run without
func MustGet(file, key string) string {
	tmpl, err := Get(file, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return tmpl
}

// Format substitutes {{.Field}} placeholders from data. Fields without a value
// are left in place.
func Format(template string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		field := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := data[field]; ok {
			return v
		}
		return match
	})
}

// Placeholders lists the distinct fields a template expects, sorted
func Placeholders(template string) []string {
	seen := map[string]bool{}
	var fields []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			fields = append(fields, m[1])
		}
	}
	sort.Strings(fields)
	return fields
}

// Render fills the template under key in file. Every placeholder must have a
// value; otherwise an *UnfilledError is returned.
func Render(file, key string, data map[string]string) (string, error) {
	tmpl, err := Get(file, key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, field := range Placeholders(tmpl) {
		if _, ok := data[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return "", &UnfilledError{Key: key, Fields: missing}
	}
	return Format(tmpl, data), nil
}

// Stage renders an onboarding stage instruction from File. A missing key or
// field is a build defect, so it panics.
func Stage(key string, data map[string]string) string {
	out, err := Render(File, key, data)
	if err != nil {
		panic(fmt.Sprintf("stage prompt: %v", err))
	}
	return out
}

// List returns the keys defined in file, sorted
func List(file string) ([]string, error) {
	templates, err := load(file)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// ClearCache drops parsed files; tests use it to start clean
func ClearCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = map[string]map[string]string{}
}

func load(file string) (map[string]string, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if templates, ok := cache[file]; ok {
		return templates, nil
	}

	data, err := promptFiles.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}
	cache[file] = templates
	return templates, nil
}
