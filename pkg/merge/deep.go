package merge

import (
	"github.com/openfroyo/froyo-merge/pkg/value"
)

// MergeDeep folds maps left to right into a new map.
//
// For each named key, when both the accumulated value and the incoming value
// are maps they are merged recursively, and when both are lists the incoming
// items are appended after the accumulated ones. Any other combination is
// replaced outright by the incoming value. Named keys keep first-seen order.
// The inputs are never modified.
func MergeDeep(maps ...*value.Map) *value.Map {
	result := value.NewMap()
	for _, m := range maps {
		m.Range(func(key string, incoming value.Value) bool {
			if existing, ok := result.Get(key); ok {
				if merged, ok := mergeContainers(existing, incoming); ok {
					result.Set(key, merged)
					return true
				}
			}
			result.Set(key, incoming.Clone())
			return true
		})
	}
	return result
}

// AppendLists concatenates positional sequences into a new list. Positions
// are renumbered from zero in the order the items are encountered.
func AppendLists(lists ...value.List) value.List {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make(value.List, 0, n)
	for _, l := range lists {
		for _, item := range l {
			out = append(out, item.Clone())
		}
	}
	return out
}

func mergeContainers(existing, incoming value.Value) (value.Value, bool) {
	switch e := existing.(type) {
	case *value.Map:
		if in, ok := incoming.(*value.Map); ok {
			return MergeDeep(e, in), true
		}
	case value.List:
		if in, ok := incoming.(value.List); ok {
			return AppendLists(e, in), true
		}
	}
	return nil, false
}
