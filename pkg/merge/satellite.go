package merge

import (
	"path/filepath"
	"strings"

	"github.com/openfroyo/froyo-merge/pkg/manifest"
	"github.com/openfroyo/froyo-merge/pkg/value"
	"github.com/rs/zerolog"
)

const selfVersion = "self.version"

// Loader reads one satellite manifest.
type Loader interface {
	Load(path string) (*manifest.Manifest, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (*manifest.Manifest, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (*manifest.Manifest, error) {
	return f(path)
}

// Satellite is a loaded satellite manifest ready to fold into a root.
type Satellite struct {
	// Path is the cleaned absolute path used as the dedup key.
	Path string

	// Manifest holds the satellite sections.
	Manifest *manifest.Manifest

	// Include and Require are the satellite's own merge patterns, used when
	// recursion is enabled.
	Include []string
	Require []string

	// prefix is prepended to relative autoload paths.
	prefix string
}

// NewSatellite wraps m loaded from path. baseDir is the root directory that
// relative autoload paths of the satellite are rebased onto.
func NewSatellite(path, baseDir string, m *manifest.Manifest) *Satellite {
	s := &Satellite{Path: path, Manifest: m}

	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	if dir := filepath.ToSlash(filepath.Dir(rel)); dir != "." {
		s.prefix = dir + "/"
	}

	if m.Name == "" {
		m.Name = "merge-plugin/" + strings.ReplaceAll(rel, "/", "-")
		for _, section := range linkSectionsInOrder {
			set := m.LinksFor(section)
			renamed := manifest.NewLinks()
			for _, link := range set.All() {
				link.Source = m.Name
				renamed.Set(link)
			}
			setLinks(m, section, renamed)
		}
	}

	if block, ok := m.Extra.GetMap(ExtraKey); ok {
		s.Include, s.Require = readPatterns(block)
	}
	return s
}

// Name returns the satellite package name.
func (s *Satellite) Name() string {
	return s.Manifest.Name
}

var linkSectionsInOrder = []manifest.Section{
	manifest.SectionRequires,
	manifest.SectionDevRequires,
	manifest.SectionConflicts,
	manifest.SectionReplaces,
	manifest.SectionProvides,
}

func setLinks(m *manifest.Manifest, section manifest.Section, links *manifest.Links) {
	switch section {
	case manifest.SectionRequires:
		m.Requires = links
	case manifest.SectionDevRequires:
		m.DevRequires = links
	case manifest.SectionConflicts:
		m.Conflicts = links
	case manifest.SectionReplaces:
		m.Replaces = links
	case manifest.SectionProvides:
		m.Provides = links
	}
}

// folder applies one satellite to a draft under the pass settings.
type folder struct {
	draft    *draft
	pass     *pass
	settings Settings
	logger   zerolog.Logger
}

// mergeInto folds every non-dev section of s, plus the dev sections when the
// run is in dev mode.
func (f *folder) mergeInto(s *Satellite) {
	f.prependRepositories(s)
	f.mergeRequires(s, manifest.SectionRequires)
	f.mergePackageLinks(s, manifest.SectionConflicts)
	f.mergePackageLinks(s, manifest.SectionReplaces)
	f.mergePackageLinks(s, manifest.SectionProvides)
	f.mergeSuggests(s)
	f.mergeAutoload(s, manifest.SectionAutoload)
	f.mergeExtra(s)
	f.mergeScripts(s)
	if f.pass.run.DevMode {
		f.mergeDevInto(s)
	}
}

// mergeDevInto folds the dev requirements and dev autoload rules of s.
func (f *folder) mergeDevInto(s *Satellite) {
	if !f.settings.MergeDev {
		return
	}
	f.mergeRequires(s, manifest.SectionDevRequires)
	f.mergeAutoload(s, manifest.SectionDevAutoload)
}

func (f *folder) mergeRequires(s *Satellite, section manifest.Section) {
	incoming := s.Manifest.LinksFor(section)
	if incoming.Len() == 0 {
		return
	}
	f.mergeStabilityFlags(incoming)
	incoming = f.replaceSelfVersion(incoming)

	target := f.draft.m.LinksFor(section)
	applied := manifest.NewLinks()
	for _, link := range incoming.All() {
		f.pass.allow(strings.ToLower(link.Target))
		if !target.Has(link.Target) {
			target.Set(link)
			applied.Set(link)
			continue
		}
		switch {
		case f.settings.IgnoreDuplicates:
			f.logger.Info().Str("package", link.Target).Msg("Ignoring duplicate requirement")
		case f.settings.Replace:
			f.logger.Info().Str("package", link.Target).Msg("Replacing requirement")
			target.Set(link)
			applied.Set(link)
		default:
			f.logger.Info().Str("package", link.Target).Msg("Deferring duplicate requirement to the solver")
			f.pass.deferLink(section, link)
		}
	}
	if applied.Len() == 0 {
		return
	}
	f.draft.touch(section)
	f.mergeReferences(applied)
	f.mergeAliases(applied)
}

func (f *folder) mergePackageLinks(s *Satellite, section manifest.Section) {
	incoming := s.Manifest.LinksFor(section)
	if incoming.Len() == 0 {
		return
	}
	target := f.draft.m.LinksFor(section)
	for _, link := range f.replaceSelfVersion(incoming).All() {
		target.Set(link)
	}
	f.draft.touch(section)
}

// replaceSelfVersion pins self.version constraints to the root version.
func (f *folder) replaceSelfVersion(links *manifest.Links) *manifest.Links {
	out := manifest.NewLinks()
	for _, link := range links.All() {
		if link.PrettyConstraint == selfVersion {
			link = manifest.NewLink(link.Source, link.Target, f.draft.m.Version, link.Type, link.Origin)
		}
		out.Set(link)
	}
	return out
}

func (f *folder) mergeStabilityFlags(links *manifest.Links) {
	resolver := NewStabilityResolver(f.draft.m.MinimumStability, f.draft.m.StabilityFlags)
	merged := f.draft.m.StabilityFlags.Clone()
	for name, level := range resolver.ResolveLinks(links) {
		merged[name] = level
	}
	if merged.Equal(f.draft.m.StabilityFlags) {
		return
	}
	f.draft.m.StabilityFlags = merged
	f.draft.touch(manifest.SectionStabilityFlags)
}

func (f *folder) mergeReferences(links *manifest.Links) {
	refs := manifest.ExtractReferences(links)
	if len(refs) == 0 {
		return
	}
	for name, ref := range refs {
		f.draft.m.References[name] = ref
	}
	f.draft.touch(manifest.SectionReferences)
}

func (f *folder) mergeAliases(links *manifest.Links) {
	aliases := manifest.ExtractAliases(links)
	if len(aliases) == 0 {
		return
	}
	f.draft.m.Aliases = append(f.draft.m.Aliases, aliases...)
	f.draft.touch(manifest.SectionAliases)
}

func (f *folder) mergeSuggests(s *Satellite) {
	if s.Manifest.Suggests.Len() == 0 {
		return
	}
	s.Manifest.Suggests.Range(func(name string, v value.Value) bool {
		f.draft.m.Suggests.Set(name, v.Clone())
		return true
	})
	f.draft.touch(manifest.SectionSuggests)
}

// prependRepositories places the satellite repositories ahead of the ones
// already known.
func (f *folder) prependRepositories(s *Satellite) {
	if len(s.Manifest.Repositories) == 0 {
		return
	}
	f.draft.m.Repositories = AppendLists(s.Manifest.Repositories, f.draft.m.Repositories)
	f.draft.touch(manifest.SectionRepositories)
}

func (f *folder) mergeAutoload(s *Satellite, section manifest.Section) {
	incoming := s.Manifest.Autoload
	if section == manifest.SectionDevAutoload {
		incoming = s.Manifest.DevAutoload
	}
	if incoming.Len() == 0 {
		return
	}
	fixed := rebasePaths(incoming, s.prefix).(*value.Map)
	if section == manifest.SectionDevAutoload {
		f.draft.m.DevAutoload = MergeDeep(f.draft.m.DevAutoload, fixed)
	} else {
		f.draft.m.Autoload = MergeDeep(f.draft.m.Autoload, fixed)
	}
	f.draft.touch(section)
}

// rebasePaths prefixes every relative path string leaf of v. An empty path
// names the satellite directory itself and becomes the prefix.
func rebasePaths(v value.Value, prefix string) value.Value {
	switch t := v.(type) {
	case value.String:
		p := string(t)
		if prefix == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
			return t
		}
		return value.String(prefix + p)
	case value.List:
		out := make(value.List, len(t))
		for i, item := range t {
			out[i] = rebasePaths(item, prefix)
		}
		return out
	case *value.Map:
		out := value.NewMap()
		t.Range(func(name string, item value.Value) bool {
			out.Set(name, rebasePaths(item, prefix))
			return true
		})
		return out
	default:
		return v.Clone()
	}
}

func (f *folder) mergeExtra(s *Satellite) {
	if !f.settings.MergeExtra {
		return
	}
	incoming := s.Manifest.Extra.Copy()
	incoming.Delete(ExtraKey)
	if incoming.Len() == 0 {
		return
	}

	root := f.draft.m.Extra
	switch {
	case f.settings.Replace && f.settings.MergeExtraDeep:
		f.draft.m.Extra = MergeDeep(root, incoming)
	case f.settings.Replace:
		merged := root.Copy()
		incoming.Range(func(name string, v value.Value) bool {
			merged.Set(name, v)
			return true
		})
		f.draft.m.Extra = merged
	case f.settings.MergeExtraDeep:
		f.draft.m.Extra = MergeDeep(incoming, root)
	default:
		merged := root.Copy()
		incoming.Range(func(name string, v value.Value) bool {
			if merged.Has(name) {
				f.logger.Info().Str("key", name).Msg("Ignoring duplicate extra key")
				return true
			}
			merged.Set(name, v)
			return true
		})
		f.draft.m.Extra = merged
	}
	f.draft.touch(manifest.SectionExtra)
}

func (f *folder) mergeScripts(s *Satellite) {
	if !f.settings.MergeScripts || s.Manifest.Scripts.Len() == 0 {
		return
	}
	if f.settings.Replace {
		merged := f.draft.m.Scripts.Copy()
		s.Manifest.Scripts.Range(func(name string, v value.Value) bool {
			merged.Set(name, v.Clone())
			return true
		})
		f.draft.m.Scripts = merged
	} else {
		f.draft.m.Scripts = MergeDeep(f.draft.m.Scripts, s.Manifest.Scripts)
	}
	f.draft.touch(manifest.SectionScripts)
}
