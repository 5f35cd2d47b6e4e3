package manifest

import (
	"github.com/openfroyo/froyo-merge/pkg/value"
)

// Section names one mergeable part of a manifest.
type Section string

const (
	SectionRequires       Section = "require"
	SectionDevRequires    Section = "require-dev"
	SectionConflicts      Section = "conflict"
	SectionReplaces       Section = "replace"
	SectionProvides       Section = "provide"
	SectionSuggests       Section = "suggest"
	SectionRepositories   Section = "repositories"
	SectionAutoload       Section = "autoload"
	SectionDevAutoload    Section = "autoload-dev"
	SectionScripts        Section = "scripts"
	SectionExtra          Section = "extra"
	SectionAliases        Section = "aliases"
	SectionReferences     Section = "references"
	SectionStabilityFlags Section = "stability-flags"
)

// Sections lists every mergeable section in commit order.
var Sections = []Section{
	SectionRequires,
	SectionDevRequires,
	SectionConflicts,
	SectionReplaces,
	SectionProvides,
	SectionSuggests,
	SectionRepositories,
	SectionAutoload,
	SectionDevAutoload,
	SectionScripts,
	SectionExtra,
	SectionAliases,
	SectionReferences,
	SectionStabilityFlags,
}

// LinkSections maps link-typed sections to the link relationship they hold.
var LinkSections = map[Section]LinkType{
	SectionRequires:    LinkRequire,
	SectionDevRequires: LinkDevRequire,
	SectionConflicts:   LinkConflict,
	SectionReplaces:    LinkReplace,
	SectionProvides:    LinkProvide,
}

// DefaultVersion is assigned to manifests that do not declare one.
const DefaultVersion = "1.0.0"

// Manifest is one parsed package manifest.
type Manifest struct {
	// Path is the file the manifest was read from, empty for in-memory manifests.
	Path string

	Name             string
	Version          string
	MinimumStability Stability

	Requires    *Links
	DevRequires *Links
	Conflicts   *Links
	Replaces    *Links
	Provides    *Links

	// Suggests maps package names to a free-form reason.
	Suggests *value.Map

	// Repositories is a list of repository definitions, each a map.
	Repositories value.List

	Autoload    *value.Map
	DevAutoload *value.Map

	// Scripts maps event names to a list of commands.
	Scripts *value.Map

	Extra *value.Map

	Aliases        []Alias
	References     map[string]string
	StabilityFlags StabilityTable
}

// New returns an empty manifest with every section initialized.
func New(name string) *Manifest {
	return &Manifest{
		Name:             name,
		Version:          DefaultVersion,
		MinimumStability: StabilityStable,
		Requires:         NewLinks(),
		DevRequires:      NewLinks(),
		Conflicts:        NewLinks(),
		Replaces:         NewLinks(),
		Provides:         NewLinks(),
		Suggests:         value.NewMap(),
		Repositories:     value.List{},
		Autoload:         value.NewMap(),
		DevAutoload:      value.NewMap(),
		Scripts:          value.NewMap(),
		Extra:            value.NewMap(),
		References:       map[string]string{},
		StabilityFlags:   StabilityTable{},
	}
}

// LinksFor returns the link set backing a link-typed section.
func (m *Manifest) LinksFor(section Section) *Links {
	switch section {
	case SectionRequires:
		return m.Requires
	case SectionDevRequires:
		return m.DevRequires
	case SectionConflicts:
		return m.Conflicts
	case SectionReplaces:
		return m.Replaces
	case SectionProvides:
		return m.Provides
	default:
		return nil
	}
}

// Clone returns a deep copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	out := *m
	out.Requires = m.Requires.Clone()
	out.DevRequires = m.DevRequires.Clone()
	out.Conflicts = m.Conflicts.Clone()
	out.Replaces = m.Replaces.Clone()
	out.Provides = m.Provides.Clone()
	out.Suggests = cloneMap(m.Suggests)
	out.Repositories = m.Repositories.Clone().(value.List)
	out.Autoload = cloneMap(m.Autoload)
	out.DevAutoload = cloneMap(m.DevAutoload)
	out.Scripts = cloneMap(m.Scripts)
	out.Extra = cloneMap(m.Extra)
	out.Aliases = append([]Alias(nil), m.Aliases...)
	out.References = make(map[string]string, len(m.References))
	for k, v := range m.References {
		out.References[k] = v
	}
	out.StabilityFlags = m.StabilityFlags.Clone()
	return &out
}

func cloneMap(m *value.Map) *value.Map {
	if m == nil {
		return value.NewMap()
	}
	return m.Copy()
}
