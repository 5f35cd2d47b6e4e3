package manifest

import (
	"regexp"
	"strings"
)

// LinkType names the relationship a Link expresses.
type LinkType string

const (
	LinkRequire    LinkType = "requires"
	LinkDevRequire LinkType = "devRequires"
	LinkConflict   LinkType = "conflicts"
	LinkReplace    LinkType = "replaces"
	LinkProvide    LinkType = "provides"
)

// Link is a version constraint from one package onto another.
type Link struct {
	// Source is the name of the declaring package.
	Source string `json:"source"`

	// Target is the constrained package name as spelled by the declaring manifest.
	Target string `json:"target"`

	// Constraint is the constraint with any branch alias and source reference removed.
	Constraint string `json:"constraint"`

	// PrettyConstraint is the constraint exactly as written.
	PrettyConstraint string `json:"pretty_constraint"`

	// Origin is the manifest file the link was read from.
	Origin string `json:"origin,omitempty"`

	// Reference is the VCS commit pinned with a `#<ref>` suffix, if any.
	Reference string `json:"reference,omitempty"`

	// Type is the relationship kind.
	Type LinkType `json:"type"`
}

var (
	aliasPattern     = regexp.MustCompile(`^([^,\s#]+)(#[^ ]+)? +as +([^,\s]+)$`)
	referencePattern = regexp.MustCompile(`^([^,\s@]+?)#([a-fA-F0-9]+)$`)
)

// NewLink builds a link and splits the pretty constraint into its bare
// constraint and source reference.
func NewLink(source, target, pretty string, typ LinkType, origin string) Link {
	pretty = strings.TrimSpace(pretty)
	l := Link{
		Source:           source,
		Target:           target,
		Constraint:       pretty,
		PrettyConstraint: pretty,
		Origin:           origin,
		Type:             typ,
	}
	bare := StripAlias(pretty)
	if m := referencePattern.FindStringSubmatch(bare); m != nil {
		bare = m[1]
		l.Reference = m[2]
	}
	l.Constraint = bare
	return l
}

// StripAlias removes an inline `<version> as <alias>` declaration and returns
// the aliased version.
func StripAlias(constraint string) string {
	if m := aliasPattern.FindStringSubmatch(constraint); m != nil {
		return m[1] + m[2]
	}
	return constraint
}

// Links is a set of links keyed case-insensitively by target name that
// keeps insertion order.
type Links struct {
	names  []string
	byName map[string]Link
}

// NewLinks returns an empty set.
func NewLinks(links ...Link) *Links {
	l := &Links{byName: make(map[string]Link, len(links))}
	for _, link := range links {
		l.Set(link)
	}
	return l
}

// Len returns the number of links.
func (l *Links) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Names returns the lower-cased target names in insertion order.
func (l *Links) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Get looks up a link by target name, ignoring case.
func (l *Links) Get(name string) (Link, bool) {
	if l == nil {
		return Link{}, false
	}
	link, ok := l.byName[strings.ToLower(name)]
	return link, ok
}

// Has reports whether a link to name exists.
func (l *Links) Has(name string) bool {
	_, ok := l.Get(name)
	return ok
}

// Set adds link or replaces the existing link with the same target, keeping
// the original position.
func (l *Links) Set(link Link) {
	key := strings.ToLower(link.Target)
	if _, ok := l.byName[key]; !ok {
		l.names = append(l.names, key)
	}
	l.byName[key] = link
}

// Delete removes the link to name.
func (l *Links) Delete(name string) {
	if l == nil {
		return
	}
	key := strings.ToLower(name)
	if _, ok := l.byName[key]; !ok {
		return
	}
	delete(l.byName, key)
	for i, n := range l.names {
		if n == key {
			l.names = append(l.names[:i], l.names[i+1:]...)
			break
		}
	}
}

// All returns the links in insertion order.
func (l *Links) All() []Link {
	if l == nil {
		return nil
	}
	out := make([]Link, 0, len(l.names))
	for _, n := range l.names {
		out = append(out, l.byName[n])
	}
	return out
}

// Clone returns a copy of the set. A nil set clones to an empty set.
func (l *Links) Clone() *Links {
	if l == nil {
		return NewLinks()
	}
	return NewLinks(l.All()...)
}

// Constraints maps lower-cased target names to pretty constraints.
func (l *Links) Constraints() map[string]string {
	out := make(map[string]string, l.Len())
	for _, link := range l.All() {
		out[strings.ToLower(link.Target)] = link.PrettyConstraint
	}
	return out
}

// Alias is a branch alias declared inline in a requirement.
type Alias struct {
	Package string `json:"package"`
	Version string `json:"version"`
	Alias   string `json:"alias"`
}

// ExtractAliases returns the inline aliases declared by the given links.
func ExtractAliases(links ...*Links) []Alias {
	var out []Alias
	for _, set := range links {
		for _, link := range set.All() {
			m := aliasPattern.FindStringSubmatch(link.PrettyConstraint)
			if m == nil {
				continue
			}
			out = append(out, Alias{
				Package: strings.ToLower(link.Target),
				Version: m[1],
				Alias:   m[3],
			})
		}
	}
	return out
}

// ExtractReferences returns the pinned source references of dev constraints,
// keyed by lower-cased package name.
func ExtractReferences(links ...*Links) map[string]string {
	out := make(map[string]string)
	for _, set := range links {
		for _, link := range set.All() {
			if link.Reference == "" {
				continue
			}
			out[strings.ToLower(link.Target)] = link.Reference
		}
	}
	return out
}
