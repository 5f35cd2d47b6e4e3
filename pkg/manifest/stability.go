package manifest

import (
	"fmt"
	"sort"
	"strings"
)

// Stability is the acceptability tier of a package release. Levels are
// ordered from most permissive (StabilityDev) to strictest (StabilityStable).
type Stability int

const (
	StabilityDev Stability = iota
	StabilityAlpha
	StabilityBeta
	StabilityRC
	StabilityStable
)

var stabilityNames = map[Stability]string{
	StabilityDev:    "dev",
	StabilityAlpha:  "alpha",
	StabilityBeta:   "beta",
	StabilityRC:     "rc",
	StabilityStable: "stable",
}

// String returns the canonical lower-case spelling.
func (s Stability) String() string {
	if name, ok := stabilityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stability(%d)", int(s))
}

// ParseStability maps a stability spelling to its level. Matching is case
// insensitive; unknown spellings report false.
func ParseStability(s string) (Stability, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev":
		return StabilityDev, true
	case "alpha":
		return StabilityAlpha, true
	case "beta":
		return StabilityBeta, true
	case "rc":
		return StabilityRC, true
	case "stable":
		return StabilityStable, true
	default:
		return 0, false
	}
}

// Looser returns the more permissive of a and b.
func Looser(a, b Stability) Stability {
	if a < b {
		return a
	}
	return b
}

// StabilityTable maps lower-cased package names to their minimum accepted
// stability.
type StabilityTable map[string]Stability

// Clone returns a copy of the table.
func (t StabilityTable) Clone() StabilityTable {
	out := make(StabilityTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Lookup returns the level recorded for name.
func (t StabilityTable) Lookup(name string) (Stability, bool) {
	s, ok := t[strings.ToLower(name)]
	return s, ok
}

// Names returns the package names in lexical order.
func (t StabilityTable) Names() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both tables hold the same entries.
func (t StabilityTable) Equal(other StabilityTable) bool {
	if len(t) != len(other) {
		return false
	}
	for k, v := range t {
		if o, ok := other[k]; !ok || o != v {
			return false
		}
	}
	return true
}
