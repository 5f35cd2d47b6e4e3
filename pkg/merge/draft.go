package merge

import (
	"github.com/openfroyo/froyo-merge/pkg/manifest"
	"github.com/rs/zerolog"
)

// draft is a working copy of the root package sections. Satellites fold into
// the draft, and only sections that received data are written back to the
// root, once, after the whole pass succeeded.
type draft struct {
	m     *manifest.Manifest
	dirty map[manifest.Section]bool
}

func newDraft(root manifest.RootPackage) *draft {
	snapshot := &manifest.Manifest{
		Name:             root.Name(),
		Version:          root.Version(),
		MinimumStability: root.MinimumStability(),
		Requires:         root.Requires(),
		DevRequires:      root.DevRequires(),
		Conflicts:        root.Conflicts(),
		Replaces:         root.Replaces(),
		Provides:         root.Provides(),
		Suggests:         root.Suggests(),
		Repositories:     root.Repositories(),
		Autoload:         root.Autoload(),
		DevAutoload:      root.DevAutoload(),
		Scripts:          root.Scripts(),
		Extra:            root.Extra(),
		Aliases:          root.Aliases(),
		References:       root.References(),
		StabilityFlags:   root.StabilityFlags(),
	}
	return &draft{
		m:     snapshot.Clone(),
		dirty: make(map[manifest.Section]bool),
	}
}

func (d *draft) touch(section manifest.Section) {
	d.dirty[section] = true
}

// commit writes the dirty sections to root in manifest.Sections order and
// returns the sections it wrote.
func (d *draft) commit(root manifest.RootPackage, logger zerolog.Logger) []manifest.Section {
	var committed []manifest.Section
	for _, section := range manifest.Sections {
		if !d.dirty[section] {
			continue
		}
		if !root.Supports(section) {
			logger.Debug().
				Str("section", string(section)).
				Msg("Root package cannot update section, skipping")
			continue
		}
		d.set(root, section)
		committed = append(committed, section)
	}
	return committed
}

func (d *draft) set(root manifest.RootPackage, section manifest.Section) {
	switch section {
	case manifest.SectionRequires:
		root.SetRequires(d.m.Requires)
	case manifest.SectionDevRequires:
		root.SetDevRequires(d.m.DevRequires)
	case manifest.SectionConflicts:
		root.SetConflicts(d.m.Conflicts)
	case manifest.SectionReplaces:
		root.SetReplaces(d.m.Replaces)
	case manifest.SectionProvides:
		root.SetProvides(d.m.Provides)
	case manifest.SectionSuggests:
		root.SetSuggests(d.m.Suggests)
	case manifest.SectionRepositories:
		root.SetRepositories(d.m.Repositories)
	case manifest.SectionAutoload:
		root.SetAutoload(d.m.Autoload)
	case manifest.SectionDevAutoload:
		root.SetDevAutoload(d.m.DevAutoload)
	case manifest.SectionScripts:
		root.SetScripts(d.m.Scripts)
	case manifest.SectionExtra:
		root.SetExtra(d.m.Extra)
	case manifest.SectionAliases:
		root.SetAliases(d.m.Aliases)
	case manifest.SectionReferences:
		root.SetReferences(d.m.References)
	case manifest.SectionStabilityFlags:
		root.SetStabilityFlags(d.m.StabilityFlags)
	}
}
