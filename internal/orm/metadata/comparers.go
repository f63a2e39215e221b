package metadata

import (
	"cmp"
	"slices"
	"strings"
)

// ComparePropertyLists orders property lists by length, then pairwise by name
func ComparePropertyLists(a, b []*Property) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	for i := range a {
		if c := strings.Compare(a[i].Name(), b[i].Name()); c != 0 {
			return c
		}
	}
	return 0
}

// CompareForeignKeys orders foreign keys by dependent properties, principal key, then principal entity name
func CompareForeignKeys(a, b *ForeignKey) int {
	if c := ComparePropertyLists(a.properties, b.properties); c != 0 {
		return c
	}
	if c := ComparePropertyLists(a.principalKey.properties, b.principalKey.properties); c != 0 {
		return c
	}
	return strings.Compare(a.principalEntity.Name(), b.principalEntity.Name())
}

// sortProperties orders declared properties: primary key properties first in
// key order, then the remaining properties by name.
func sortProperties(properties []*Property, primaryKey *Key) {
	position := func(p *Property) int {
		if primaryKey == nil {
			return -1
		}
		return slices.Index(primaryKey.properties, p)
	}

	slices.SortStableFunc(properties, func(a, b *Property) int {
		ai, bi := position(a), position(b)
		switch {
		case ai < 0 && bi < 0:
			return strings.Compare(a.name, b.name)
		case ai >= 0 && bi >= 0:
			return cmp.Compare(ai, bi)
		case ai >= 0:
			return -1
		default:
			return 1
		}
	})
}
