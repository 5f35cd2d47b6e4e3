package manifest

import (
	"fmt"
	"os"
	"sort"

	"github.com/openfroyo/froyo-merge/pkg/value"
)

var linkSectionOrder = []Section{
	SectionRequires,
	SectionDevRequires,
	SectionConflicts,
	SectionReplaces,
	SectionProvides,
}

// Load reads and decodes the JSON manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	doc, err := value.ParseMap(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}
	return Decode(doc, path)
}

// Decode builds a Manifest from a decoded JSON object. Unknown top-level keys
// are ignored. Aliases and references are derived from the requirement
// sections; stability flags are left empty.
func Decode(doc *value.Map, path string) (*Manifest, error) {
	m := New("")
	m.Path = path

	if name, ok := doc.GetString("name"); ok {
		m.Name = name
	}
	if version, ok := doc.GetString("version"); ok && version != "" {
		m.Version = version
	}
	if raw, ok := doc.GetString("minimum-stability"); ok {
		s, known := ParseStability(raw)
		if !known {
			return nil, fmt.Errorf("unknown minimum-stability %q", raw)
		}
		m.MinimumStability = s
	}

	for _, section := range linkSectionOrder {
		links, err := decodeLinks(doc, string(section), LinkSections[section], m.Name, path)
		if err != nil {
			return nil, err
		}
		switch section {
		case SectionRequires:
			m.Requires = links
		case SectionDevRequires:
			m.DevRequires = links
		case SectionConflicts:
			m.Conflicts = links
		case SectionReplaces:
			m.Replaces = links
		case SectionProvides:
			m.Provides = links
		}
	}

	var err error
	if m.Suggests, err = optionalMap(doc, string(SectionSuggests)); err != nil {
		return nil, err
	}
	if m.Autoload, err = optionalMap(doc, string(SectionAutoload)); err != nil {
		return nil, err
	}
	if m.DevAutoload, err = optionalMap(doc, string(SectionDevAutoload)); err != nil {
		return nil, err
	}
	if m.Extra, err = optionalMap(doc, string(SectionExtra)); err != nil {
		return nil, err
	}
	if m.Repositories, err = decodeRepositories(doc); err != nil {
		return nil, err
	}
	if m.Scripts, err = decodeScripts(doc); err != nil {
		return nil, err
	}

	m.Aliases = ExtractAliases(m.Requires, m.DevRequires)
	m.References = ExtractReferences(m.Requires, m.DevRequires)
	return m, nil
}

func decodeLinks(doc *value.Map, key string, typ LinkType, source, origin string) (*Links, error) {
	links := NewLinks()
	raw, ok := doc.Get(key)
	if !ok {
		return links, nil
	}
	section, ok := raw.(*value.Map)
	if !ok {
		return nil, fmt.Errorf("%s must be an object, got %s", key, raw.Kind())
	}
	var err error
	section.Range(func(target string, v value.Value) bool {
		constraint, ok := v.(value.String)
		if !ok {
			err = fmt.Errorf("%s.%s: constraint must be a string, got %s", key, target, v.Kind())
			return false
		}
		links.Set(NewLink(source, target, string(constraint), typ, origin))
		return true
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

func optionalMap(doc *value.Map, key string) (*value.Map, error) {
	raw, ok := doc.Get(key)
	if !ok {
		return value.NewMap(), nil
	}
	switch t := raw.(type) {
	case *value.Map:
		return t, nil
	case value.List:
		// An empty JSON array is a common spelling of an empty section.
		if len(t) == 0 {
			return value.NewMap(), nil
		}
	}
	return nil, fmt.Errorf("%s must be an object, got %s", key, raw.Kind())
}

func decodeRepositories(doc *value.Map) (value.List, error) {
	raw, ok := doc.Get(string(SectionRepositories))
	if !ok {
		return value.List{}, nil
	}
	var out value.List
	switch t := raw.(type) {
	case value.List:
		for i, item := range t {
			if _, ok := item.(*value.Map); !ok {
				return nil, fmt.Errorf("repositories[%d] must be an object, got %s", i, item.Kind())
			}
			out = append(out, item)
		}
	case *value.Map:
		t.Range(func(_ string, item value.Value) bool {
			if repo, ok := item.(*value.Map); ok {
				out = append(out, repo)
			}
			return true
		})
	default:
		return nil, fmt.Errorf("repositories must be a list or an object, got %s", raw.Kind())
	}
	if out == nil {
		out = value.List{}
	}
	return out, nil
}

// decodeScripts normalizes every script to a list of commands so that two
// definitions of the same event concatenate when merged.
func decodeScripts(doc *value.Map) (*value.Map, error) {
	scripts, err := optionalMap(doc, string(SectionScripts))
	if err != nil {
		return nil, err
	}
	out := value.NewMap()
	scripts.Range(func(event string, v value.Value) bool {
		switch t := v.(type) {
		case value.String:
			out.Set(event, value.List{t})
		case value.List:
			out.Set(event, t)
		default:
			err = fmt.Errorf("scripts.%s must be a string or a list, got %s", event, v.Kind())
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Encode renders the manifest back into a JSON object. Empty sections are
// omitted. Derived sections (stability flags, references, aliases) are
// emitted under their section names so merge results can be inspected.
func Encode(m *Manifest) *value.Map {
	doc := value.NewMap()
	if m.Name != "" {
		doc.Set("name", value.String(m.Name))
	}
	if m.Version != "" {
		doc.Set("version", value.String(m.Version))
	}
	if m.MinimumStability != StabilityStable {
		doc.Set("minimum-stability", value.String(m.MinimumStability.String()))
	}

	for _, section := range linkSectionOrder {
		links := m.LinksFor(section)
		if links.Len() == 0 {
			continue
		}
		out := value.NewMap()
		for _, link := range links.All() {
			out.Set(link.Target, value.String(link.PrettyConstraint))
		}
		doc.Set(string(section), out)
	}

	setMap := func(section Section, v *value.Map) {
		if v.Len() > 0 {
			doc.Set(string(section), v)
		}
	}
	setMap(SectionSuggests, m.Suggests)
	if len(m.Repositories) > 0 {
		doc.Set(string(SectionRepositories), m.Repositories)
	}
	setMap(SectionAutoload, m.Autoload)
	setMap(SectionDevAutoload, m.DevAutoload)
	setMap(SectionScripts, m.Scripts)
	setMap(SectionExtra, m.Extra)

	if len(m.StabilityFlags) > 0 {
		flags := value.NewMap()
		for _, name := range m.StabilityFlags.Names() {
			flags.Set(name, value.String(m.StabilityFlags[name].String()))
		}
		doc.Set(string(SectionStabilityFlags), flags)
	}
	if len(m.References) > 0 {
		refs := value.NewMap()
		names := make([]string, 0, len(m.References))
		for name := range m.References {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			refs.Set(name, value.String(m.References[name]))
		}
		doc.Set(string(SectionReferences), refs)
	}
	if len(m.Aliases) > 0 {
		aliases := make(value.List, 0, len(m.Aliases))
		for _, a := range m.Aliases {
			entry := value.NewMap()
			entry.Set("package", value.String(a.Package))
			entry.Set("version", value.String(a.Version))
			entry.Set("alias", value.String(a.Alias))
			aliases = append(aliases, entry)
		}
		doc.Set(string(SectionAliases), aliases)
	}
	return doc
}
