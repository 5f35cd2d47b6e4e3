package manifest

import (
	"github.com/openfroyo/froyo-merge/pkg/value"
)

// RootPackage is the mutation surface a host exposes for its root manifest.
//
// Hosts differ in which sections they can update. Supports is the capability
// probe: a merge never calls a setter for a section the host reports as
// unsupported, and otherwise calls each setter at most once per pass.
type RootPackage interface {
	Name() string
	Version() string
	MinimumStability() Stability

	// Supports reports whether the section's setter may be called.
	Supports(section Section) bool

	Requires() *Links
	SetRequires(*Links)
	DevRequires() *Links
	SetDevRequires(*Links)
	Conflicts() *Links
	SetConflicts(*Links)
	Replaces() *Links
	SetReplaces(*Links)
	Provides() *Links
	SetProvides(*Links)

	Suggests() *value.Map
	SetSuggests(*value.Map)
	Repositories() value.List
	SetRepositories(value.List)
	Autoload() *value.Map
	SetAutoload(*value.Map)
	DevAutoload() *value.Map
	SetDevAutoload(*value.Map)
	Scripts() *value.Map
	SetScripts(*value.Map)
	Extra() *value.Map
	SetExtra(*value.Map)

	Aliases() []Alias
	SetAliases([]Alias)
	References() map[string]string
	SetReferences(map[string]string)
	StabilityFlags() StabilityTable
	SetStabilityFlags(StabilityTable)
}

// MemoryRoot is a RootPackage backed by a Manifest held in memory.
type MemoryRoot struct {
	m           *Manifest
	unsupported map[Section]bool
}

// NewMemoryRoot wraps m. Sections listed in unsupported are reported as not
// settable, which models hosts with a narrower root package API.
func NewMemoryRoot(m *Manifest, unsupported ...Section) *MemoryRoot {
	r := &MemoryRoot{m: m, unsupported: make(map[Section]bool, len(unsupported))}
	for _, s := range unsupported {
		r.unsupported[s] = true
	}
	return r
}

// Manifest returns the backing manifest.
func (r *MemoryRoot) Manifest() *Manifest { return r.m }

func (r *MemoryRoot) Name() string                  { return r.m.Name }
func (r *MemoryRoot) Version() string               { return r.m.Version }
func (r *MemoryRoot) MinimumStability() Stability   { return r.m.MinimumStability }
func (r *MemoryRoot) Supports(section Section) bool { return !r.unsupported[section] }

func (r *MemoryRoot) Requires() *Links        { return r.m.Requires }
func (r *MemoryRoot) SetRequires(l *Links)    { r.m.Requires = l }
func (r *MemoryRoot) DevRequires() *Links     { return r.m.DevRequires }
func (r *MemoryRoot) SetDevRequires(l *Links) { r.m.DevRequires = l }
func (r *MemoryRoot) Conflicts() *Links       { return r.m.Conflicts }
func (r *MemoryRoot) SetConflicts(l *Links)   { r.m.Conflicts = l }
func (r *MemoryRoot) Replaces() *Links        { return r.m.Replaces }
func (r *MemoryRoot) SetReplaces(l *Links)    { r.m.Replaces = l }
func (r *MemoryRoot) Provides() *Links        { return r.m.Provides }
func (r *MemoryRoot) SetProvides(l *Links)    { r.m.Provides = l }

func (r *MemoryRoot) Suggests() *value.Map          { return r.m.Suggests }
func (r *MemoryRoot) SetSuggests(v *value.Map)      { r.m.Suggests = v }
func (r *MemoryRoot) Repositories() value.List      { return r.m.Repositories }
func (r *MemoryRoot) SetRepositories(v value.List)  { r.m.Repositories = v }
func (r *MemoryRoot) Autoload() *value.Map          { return r.m.Autoload }
func (r *MemoryRoot) SetAutoload(v *value.Map)      { r.m.Autoload = v }
func (r *MemoryRoot) DevAutoload() *value.Map       { return r.m.DevAutoload }
func (r *MemoryRoot) SetDevAutoload(v *value.Map)   { r.m.DevAutoload = v }
func (r *MemoryRoot) Scripts() *value.Map           { return r.m.Scripts }
func (r *MemoryRoot) SetScripts(v *value.Map)       { r.m.Scripts = v }
func (r *MemoryRoot) Extra() *value.Map             { return r.m.Extra }
func (r *MemoryRoot) SetExtra(v *value.Map)         { r.m.Extra = v }
func (r *MemoryRoot) Aliases() []Alias              { return r.m.Aliases }
func (r *MemoryRoot) SetAliases(v []Alias)          { r.m.Aliases = v }
func (r *MemoryRoot) References() map[string]string { return r.m.References }

func (r *MemoryRoot) SetReferences(v map[string]string)  { r.m.References = v }
func (r *MemoryRoot) StabilityFlags() StabilityTable     { return r.m.StabilityFlags }
func (r *MemoryRoot) SetStabilityFlags(v StabilityTable) { r.m.StabilityFlags = v }

var _ RootPackage = (*MemoryRoot)(nil)
