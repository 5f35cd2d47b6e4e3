package merge

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/openfroyo/froyo-merge/pkg/value"
)

// ExtraKey is the key of the settings block inside a manifest's extra section.
const ExtraKey = "merge-plugin"

var validate = validator.New()

// Settings are the merge options declared by the root manifest. They are read
// once per pass and do not change during it.
type Settings struct {
	// Include lists glob patterns of optional satellite manifests.
	Include []string `json:"include" validate:"dive,required"`

	// Require lists glob patterns that must each match at least one file.
	Require []string `json:"require" validate:"dive,required"`

	// Recurse merges the include and require patterns of satellites too.
	Recurse bool `json:"recurse"`

	// Replace lets later sources win requirement and extra collisions.
	Replace bool `json:"replace"`

	// IgnoreDuplicates drops colliding requirements instead of deferring them.
	IgnoreDuplicates bool `json:"ignore-duplicates"`

	// MergeDev merges require-dev and autoload-dev sections.
	MergeDev bool `json:"merge-dev"`

	// MergeExtra merges extra sections.
	MergeExtra bool `json:"merge-extra"`

	// MergeExtraDeep merges colliding extra keys recursively.
	MergeExtraDeep bool `json:"merge-extra-deep"`

	// MergeScripts merges scripts sections.
	MergeScripts bool `json:"merge-scripts"`
}

// DefaultSettings returns the settings used when the root declares none.
func DefaultSettings() Settings {
	return Settings{
		Recurse:  true,
		MergeDev: true,
	}
}

// LoadSettings reads the merge-plugin block of a root extra section.
func LoadSettings(extra *value.Map) (Settings, error) {
	s := DefaultSettings()
	block, ok := extra.GetMap(ExtraKey)
	if !ok {
		if extra.Has(ExtraKey) {
			return s, NewInvalidSettingsError(fmt.Errorf("extra.%s must be an object", ExtraKey))
		}
		return s, nil
	}

	s.Include, s.Require = readPatterns(block)

	flags := []struct {
		key    string
		target *bool
	}{
		{"recurse", &s.Recurse},
		{"replace", &s.Replace},
		{"ignore-duplicates", &s.IgnoreDuplicates},
		{"merge-dev", &s.MergeDev},
		{"merge-extra", &s.MergeExtra},
		{"merge-extra-deep", &s.MergeExtraDeep},
		{"merge-scripts", &s.MergeScripts},
	}
	for _, f := range flags {
		raw, present := block.Get(f.key)
		if !present {
			continue
		}
		b, ok := raw.(value.Bool)
		if !ok {
			return s, NewInvalidSettingsError(fmt.Errorf("%s.%s must be a boolean, got %s", ExtraKey, f.key, raw.Kind()))
		}
		*f.target = bool(b)
	}

	if err := validate.Struct(s); err != nil {
		return s, NewInvalidSettingsError(err)
	}
	return s, nil
}

// readPatterns returns the include and require patterns of a settings block.
// Either key may hold a single string or a list of strings.
func readPatterns(block *value.Map) (include, require []string) {
	if raw, ok := block.Get("include"); ok {
		include = value.Strings(raw)
	}
	if raw, ok := block.Get("require"); ok {
		require = value.Strings(raw)
	}
	return include, require
}
