package document

import "strings"

// MetaPath is an ordered list of object keys locating a header value,
// e.g. {"fileHeader", "processingDate"}.
type MetaPath []string

// ParseMetaPath splits a dotted path such as "fileHeader.fileNumber".
func ParseMetaPath(dotted string) MetaPath {
	if dotted == "" {
		return nil
	}
	return MetaPath(strings.Split(dotted, "."))
}

// Column is the column name the resolved value is stored under.
func (p MetaPath) Column() string {
	return strings.Join(p, ".")
}

// Lookup walks doc along path. It reports false as soon as a step is not an
// object or the key is absent.
func Lookup(doc Value, path MetaPath) (Value, bool) {
	cur := doc
	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Resolve returns the scalar found at path. Missing paths and non-scalar
// targets resolve to Null; Resolve never fails.
func Resolve(doc Value, path MetaPath) Value {
	v, ok := Lookup(doc, path)
	if !ok || !v.IsScalar() {
		return Null()
	}
	return v
}
