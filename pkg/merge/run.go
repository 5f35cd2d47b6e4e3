package merge

import (
	"sort"

	"github.com/google/uuid"
	"github.com/openfroyo/froyo-merge/pkg/manifest"
)

// Run is the merge state of one host command. A fresh Run is created for
// every command and passed to each merge pass the command triggers, so the
// same satellite file is never merged twice in the same mode.
type Run struct {
	// ID identifies the run in logs and traces.
	ID string

	// DevMode is true when dev sections should be merged.
	DevMode bool

	// FirstInstall is set when the merge package itself was installed
	// during this command, which schedules a follow-up resolution.
	FirstInstall bool

	// DumpAutoloader and OptimizeAutoloader carry the autoload dump flags
	// into the follow-up resolution.
	DumpAutoloader     bool
	OptimizeAutoloader bool

	loaded      map[string]bool
	loadedNoDev map[string]bool
	allowList   []string
	allowSet    map[string]bool
	duplicates  map[manifest.Section][]manifest.Link
}

// NewRun returns an empty run with dev mode off.
func NewRun() *Run {
	return &Run{
		ID:          uuid.New().String(),
		loaded:      make(map[string]bool),
		loadedNoDev: make(map[string]bool),
		allowSet:    make(map[string]bool),
		duplicates:  make(map[manifest.Section][]manifest.Link),
	}
}

// IsMerged reports whether path was merged including its dev sections.
func (r *Run) IsMerged(path string) bool {
	return r.loaded[path]
}

// IsPartiallyMerged reports whether only the non-dev sections of path were merged.
func (r *Run) IsPartiallyMerged(path string) bool {
	return r.loadedNoDev[path]
}

// MergedFiles returns the fully and partially merged paths, sorted.
func (r *Run) MergedFiles() (full, partial []string) {
	for p := range r.loaded {
		full = append(full, p)
	}
	for p := range r.loadedNoDev {
		partial = append(partial, p)
	}
	sort.Strings(full)
	sort.Strings(partial)
	return full, partial
}

// AllowList returns the package names introduced by merged satellites, in
// first-seen order. It scopes the follow-up resolution run.
func (r *Run) AllowList() []string {
	out := make([]string, len(r.allowList))
	copy(out, r.allowList)
	return out
}

// DuplicateLinks returns the satellite links that collided with an existing
// requirement of the given section and were left to the host's solver.
func (r *Run) DuplicateLinks(section manifest.Section) []manifest.Link {
	return append([]manifest.Link(nil), r.duplicates[section]...)
}

// pass stages the run changes of one merge pass. They are applied to the run
// only when the pass succeeds.
type pass struct {
	run         *Run
	loaded      map[string]bool
	loadedNoDev map[string]bool
	allowList   []string
	allowSet    map[string]bool
	duplicates  map[manifest.Section][]manifest.Link
}

func newPass(run *Run) *pass {
	return &pass{
		run:         run,
		loaded:      make(map[string]bool),
		loadedNoDev: make(map[string]bool),
		allowSet:    make(map[string]bool),
		duplicates:  make(map[manifest.Section][]manifest.Link),
	}
}

func (p *pass) isMerged(path string) bool {
	return p.run.loaded[path] || p.loaded[path]
}

func (p *pass) isPartiallyMerged(path string) bool {
	return (p.run.loadedNoDev[path] || p.loadedNoDev[path]) && !p.isMerged(path)
}

// alreadyMerged implements the skip rule: a fully merged path is never
// revisited and a partially merged one only once dev mode is on.
func (p *pass) alreadyMerged(path string) bool {
	return p.isMerged(path) || (p.isPartiallyMerged(path) && !p.run.DevMode)
}

func (p *pass) markMerged(path string) {
	if p.run.DevMode {
		p.loaded[path] = true
		delete(p.loadedNoDev, path)
		return
	}
	p.loadedNoDev[path] = true
}

func (p *pass) allow(names ...string) {
	for _, name := range names {
		if p.run.allowSet[name] || p.allowSet[name] {
			continue
		}
		p.allowSet[name] = true
		p.allowList = append(p.allowList, name)
	}
}

func (p *pass) deferLink(section manifest.Section, link manifest.Link) {
	p.duplicates[section] = append(p.duplicates[section], link)
}

func (p *pass) commit() {
	r := p.run
	for path := range p.loaded {
		r.loaded[path] = true
		delete(r.loadedNoDev, path)
	}
	for path := range p.loadedNoDev {
		if !r.loaded[path] {
			r.loadedNoDev[path] = true
		}
	}
	for _, name := range p.allowList {
		if !r.allowSet[name] {
			r.allowSet[name] = true
			r.allowList = append(r.allowList, name)
		}
	}
	for section, links := range p.duplicates {
		r.duplicates[section] = append(r.duplicates[section], links...)
	}
}
