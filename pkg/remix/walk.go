package remix

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Path locates a value inside a decoded tree. Mapping steps are field names,
// sequence steps are decimal positions.
type Path []string

// String renders the path with "." separators, quoting names that contain one.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, step := range p {
		if strings.ContainsAny(step, ". ") {
			parts[i] = strconv.Quote(step)
		} else {
			parts[i] = step
		}
	}
	return strings.Join(parts, ".")
}

// Lookup descends through mappings by field name.
func Lookup(v Value, names ...string) (Value, bool) {
	cur := v
	for _, name := range names {
		m, ok := cur.(Mapping)
		if !ok {
			return nil, false
		}
		if cur, ok = m.Get(name); !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// Walk visits v and every value below it depth-first, in field order.
// Returning false from fn skips the children of that value.
func Walk(v Value, fn func(path Path, v Value) bool) {
	walk(nil, v, fn)
}

func walk(path Path, v Value, fn func(Path, Value) bool) {
	if v == nil || !fn(path, v) {
		return
	}
	switch t := v.(type) {
	case Mapping:
		t.Each(func(name string, child Value) bool {
			walk(append(path[:len(path):len(path)], name), child, fn)
			return true
		})
	case Sequence:
		for i, child := range t {
			walk(append(path[:len(path):len(path)], strconv.Itoa(i)), child, fn)
		}
	}
}

// Find returns the first value, in walk order, for which match is true.
func Find(v Value, match func(Value) bool) (Value, Path, bool) {
	var (
		found     Value
		foundPath Path
	)
	Walk(v, func(path Path, cur Value) bool {
		if found != nil {
			return false
		}
		if match(cur) {
			found, foundPath = cur, path
			return false
		}
		return true
	})
	return found, foundPath, found != nil
}

// Depth returns the maximum nesting depth; scalars have depth 0.
func Depth(v Value) int {
	maxDepth := 0
	switch t := v.(type) {
	case Mapping:
		t.Each(func(_ string, child Value) bool {
			maxDepth = max(maxDepth, Depth(child))
			return true
		})
		return maxDepth + 1
	case Sequence:
		for _, child := range t {
			maxDepth = max(maxDepth, Depth(child))
		}
		return maxDepth + 1
	default:
		return 0
	}
}

// UnknownNode is an Unknown placeholder and where it was found.
type UnknownNode struct {
	Path  Path
	Index int
}

// Unknowns lists every Unknown placeholder in v.
func Unknowns(v Value) []UnknownNode {
	var out []UnknownNode
	Walk(v, func(path Path, cur Value) bool {
		if u, ok := cur.(Unknown); ok {
			out = append(out, UnknownNode{Path: append(Path(nil), path...), Index: u.Index})
		}
		return true
	})
	return out
}

// Query evaluates a JSONPath expression against the native form of v.
func Query(v Value, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	return x.Get(Native(v)), nil
}
