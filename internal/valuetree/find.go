package valuetree

// DefaultMaxDepth bounds FindDataArray when callers have no better limit
const DefaultMaxDepth = 5

// DataField is the field name FindDataArray looks for
const DataField = "data"

// Predicate tests the shape of an object
type Predicate func(Value) bool

// HasFields returns a predicate matching objects that carry every named field
func HasFields(names ...string) Predicate {
	return func(v Value) bool {
		if !v.IsObject() {
			return false
		}
		for _, n := range names {
			if !v.Has(n) {
				return false
			}
		}
		return true
	}
}

// FindDataArray searches v depth-first for an object field named "data"
// holding a non-empty array whose first element is an object accepted by
// pred, and returns that array. The root is at depth 0; nodes deeper than
// maxDepth are not inspected.
func FindDataArray(v Value, pred Predicate, maxDepth int) ([]Value, bool) {
	return findDataArray(v, pred, 0, maxDepth)
}

func findDataArray(v Value, pred Predicate, depth, maxDepth int) ([]Value, bool) {
	if depth > maxDepth {
		return nil, false
	}

	switch v.kind {
	case Object:
		for _, k := range v.keys {
			child := v.fields[k]
			if k == DataField && child.kind == Array && len(child.items) > 0 {
				first := child.items[0]
				if first.kind == Object && pred(first) {
					return child.items, true
				}
			}
			if found, ok := findDataArray(child, pred, depth+1, maxDepth); ok {
				return found, true
			}
		}
	case Array:
		for _, item := range v.items {
			if found, ok := findDataArray(item, pred, depth+1, maxDepth); ok {
				return found, true
			}
		}
	}
	return nil, false
}
