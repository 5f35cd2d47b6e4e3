package merge

import (
	"regexp"
	"strings"

	"github.com/openfroyo/froyo-merge/pkg/manifest"
)

var (
	orSeparator     = regexp.MustCompile(`\s*\|\|?\s*`)
	andSeparator    = regexp.MustCompile(`[\s,]+`)
	explicitFlag    = regexp.MustCompile(`(?i)^[^@]*?@(stable|rc|beta|alpha|dev)$`)
	versionModifier = regexp.MustCompile(`(?i)\d[._-]?(alpha|a|beta|b|rc)(?:[.-]?\d+)*$`)
)

// StabilityResolver computes per-package minimum stability from requirement
// constraints.
type StabilityResolver struct {
	// Floor is the manifest-wide minimum stability. Stabilities implied only
	// by a pre-release version spelling are ignored unless they are at or
	// below the floor.
	Floor manifest.Stability

	// Existing holds previously recorded flags. A computed flag never
	// tightens an existing looser one.
	Existing manifest.StabilityTable
}

// NewStabilityResolver returns a resolver for the given floor and defaults.
func NewStabilityResolver(floor manifest.Stability, existing manifest.StabilityTable) *StabilityResolver {
	return &StabilityResolver{Floor: floor, Existing: existing}
}

// Resolve maps each package whose constraint carries a stability opinion to
// its reconciled minimum stability. Packages without an opinion are omitted.
func (r *StabilityResolver) Resolve(constraints map[string]string) manifest.StabilityTable {
	out := make(manifest.StabilityTable)
	for name, constraint := range constraints {
		r.resolveOne(out, name, constraint)
	}
	return out
}

// ResolveLinks is Resolve over the pretty constraints of a link set.
func (r *StabilityResolver) ResolveLinks(links ...*manifest.Links) manifest.StabilityTable {
	out := make(manifest.StabilityTable)
	for _, set := range links {
		for name, constraint := range set.Constraints() {
			r.resolveOne(out, name, constraint)
		}
	}
	return out
}

func (r *StabilityResolver) resolveOne(out manifest.StabilityTable, name, constraint string) {
	name = strings.ToLower(name)
	computed, ok := ConstraintStability(constraint)
	if !ok {
		computed, ok = r.parsedStability(constraint)
	}
	if !ok {
		return
	}
	if prev, seen := out[name]; seen {
		computed = manifest.Looser(prev, computed)
	}
	if existing, has := r.Existing.Lookup(name); has {
		computed = manifest.Looser(computed, existing)
	}
	out[name] = computed
}

// parsedStability derives stability from pre-release version spellings such
// as 1.0.0-beta2, honouring the floor. Every part of every alternative is
// inspected and the loosest level found wins.
func (r *StabilityResolver) parsedStability(constraint string) (s manifest.Stability, ok bool) {
	for _, alternative := range orSeparator.Split(strings.TrimSpace(constraint), -1) {
		alternative = manifest.StripAlias(alternative)
		for _, part := range andSeparator.Split(alternative, -1) {
			level, found := versionStability(part)
			if !found || level > r.Floor {
				continue
			}
			if !ok || level < s {
				s = level
			}
			ok = true
		}
	}
	return s, ok
}

func versionStability(part string) (manifest.Stability, bool) {
	m := versionModifier.FindStringSubmatch(part)
	if m == nil {
		return 0, false
	}
	switch strings.ToLower(m[1]) {
	case "alpha", "a":
		return manifest.StabilityAlpha, true
	case "beta", "b":
		return manifest.StabilityBeta, true
	default:
		return manifest.StabilityRC, true
	}
}

// ConstraintStability returns the loosest stability explicitly requested by
// any alternative of constraint. An alternative expresses an opinion through
// an @<level> suffix or an unstable branch spelling (dev-<name>, <name>-dev,
// or a #<ref> suffix), all of which imply dev. Alternatives without such a
// marker are ignored; ok is false when none has one.
func ConstraintStability(constraint string) (s manifest.Stability, ok bool) {
	for _, alternative := range orSeparator.Split(strings.TrimSpace(constraint), -1) {
		alternative = manifest.StripAlias(alternative)
		for _, part := range andSeparator.Split(alternative, -1) {
			level, found := partStability(part)
			if !found {
				continue
			}
			if !ok || level < s {
				s = level
			}
			ok = true
		}
	}
	return s, ok
}

func partStability(part string) (manifest.Stability, bool) {
	if part == "" {
		return 0, false
	}
	if m := explicitFlag.FindStringSubmatch(part); m != nil {
		return manifest.ParseStability(m[1])
	}
	lower := strings.ToLower(strings.TrimLeft(part, "=<>!~^"))
	if strings.HasPrefix(lower, "dev-") || strings.HasSuffix(lower, "-dev") || strings.Contains(lower, "#") {
		return manifest.StabilityDev, true
	}
	return 0, false
}
