// Package remix decodes the index-referenced payloads served by Remix
// ".data" routes.
//
// The first line of a payload is a flat JSON array, the node table. Entry 0
// is the root. An object entry maps name references ("_<k>", where entry k is
// the name string) to value indices. A value index points at another entry:
// objects nest, lists hold further indices, and anything else is a scalar.
// Negative indices are sentinels: -5 is null, others are unknown and decode
// to an Unknown placeholder. The "P" marker inside a list starts a metadata
// run that is not decoded. Lines after the first are ignored.
//
// Decode is a pure function of its input and is safe for concurrent use.
package remix

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
)

const (
	// NullIndex is the sentinel index for an explicit null.
	NullIndex = -5

	// MaxNodes caps the values produced by one Decode. Shared children are
	// expanded at every reference, so a small table can describe a huge tree.
	MaxNodes = 1 << 20

	// nameMarker prefixes every name reference.
	nameMarker = "_"

	// metadataMarker starts a list run that is skipped.
	metadataMarker = "P"
)

// Decode expands the node table on the first line of text into a Value.
func Decode(text string) (Value, error) {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, malformed(-1, "payload is empty", nil)
	}
	if !gjson.Valid(line) {
		return nil, malformed(-1, "first line is not valid JSON", nil)
	}

	root := gjson.Parse(line)
	if !root.IsArray() {
		return nil, malformed(-1, "first line is not a JSON array", nil)
	}

	d := &decoder{
		table:    root.Array(),
		visiting: make(map[int]bool),
	}
	return d.root()
}

// DecodeBytes is Decode for a byte slice.
func DecodeBytes(data []byte) (Value, error) {
	return Decode(string(data))
}

// decoder holds the per-call state of a single Decode. The table is never
// modified; visiting tracks the entries on the current expansion path.
type decoder struct {
	table    []gjson.Result
	visiting map[int]bool
	produced int
}

func (d *decoder) root() (Value, error) {
	if len(d.table) == 0 {
		return nil, malformed(-1, "node table is empty", nil)
	}
	raw := d.table[0]
	if raw.IsArray() {
		return nil, malformed(0, "root entry is a list", nil)
	}
	return d.expand(0)
}

// expand decodes the entry at index i.
func (d *decoder) expand(i int) (Value, error) {
	d.produced++
	if d.produced > MaxNodes {
		return nil, malformed(i, fmt.Sprintf("expansion exceeds %d nodes", MaxNodes), nil)
	}
	if i == NullIndex {
		return Null{}, nil
	}
	if i < 0 {
		return Unknown{Index: i}, nil
	}
	if i >= len(d.table) {
		return nil, malformed(i, fmt.Sprintf("index out of range (table has %d entries)", len(d.table)), nil)
	}

	raw := d.table[i]
	switch {
	case raw.IsObject():
		return d.expandObject(i)
	case raw.IsArray():
		return nil, malformed(i, "list entry referenced where a node was expected", nil)
	default:
		return scalar(raw), nil
	}
}

func (d *decoder) expandObject(i int) (Value, error) {
	if d.visiting[i] {
		return nil, malformed(i, "cycle detected", nil)
	}
	d.visiting[i] = true
	defer delete(d.visiting, i)

	out := NewMapping()
	var err error
	d.table[i].ForEach(func(key, val gjson.Result) bool {
		var name string
		name, err = d.resolveName(key.String())
		if err != nil {
			return false
		}

		var idx int
		idx, err = index(val)
		if err != nil {
			err = malformed(i, fmt.Sprintf("value of %q", name), err)
			return false
		}

		var v Value
		v, err = d.expandField(idx)
		if err != nil {
			return false
		}
		out.Set(name, v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// expandField decodes the value referenced by a name. Lists are only legal
// here, where their elements are further indices.
func (d *decoder) expandField(idx int) (Value, error) {
	if idx < 0 || idx >= len(d.table) || !d.table[idx].IsArray() {
		return d.expand(idx)
	}

	items := Sequence{}
	for _, elem := range d.table[idx].Array() {
		if elem.Type == gjson.String && elem.Str == metadataMarker {
			break
		}
		n, err := index(elem)
		if err != nil {
			return nil, malformed(idx, "unrecognized list element "+elem.Raw, nil)
		}
		v, err := d.expand(n)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// resolveName turns a "_<k>" reference into the string stored at entry k.
func (d *decoder) resolveName(ref string) (string, error) {
	digits, ok := strings.CutPrefix(ref, nameMarker)
	if !ok {
		return "", malformed(-1, fmt.Sprintf("name reference %q lacks the %q marker", ref, nameMarker), nil)
	}
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return "", malformed(-1, fmt.Sprintf("name reference %q is not a non-negative integer", ref), nil)
	}
	k, err := strconv.Atoi(digits)
	if err != nil {
		return "", malformed(-1, fmt.Sprintf("name reference %q is not a non-negative integer", ref), err)
	}
	if k >= len(d.table) {
		return "", malformed(k, fmt.Sprintf("name reference %q is out of range", ref), nil)
	}
	entry := d.table[k]
	if entry.Type != gjson.String {
		return "", malformed(k, fmt.Sprintf("name reference %q does not resolve to a string", ref), nil)
	}
	return entry.Str, nil
}

// index reads a JSON integer node reference.
func index(r gjson.Result) (int, error) {
	if r.Type != gjson.Number || !Number(r.Raw).IsInteger() {
		return 0, fmt.Errorf("node reference %s is not an integer", r.Raw)
	}
	n, err := strconv.Atoi(r.Raw)
	if err != nil {
		return 0, fmt.Errorf("node reference %s: %w", r.Raw, err)
	}
	return n, nil
}

func scalar(r gjson.Result) Value {
	switch r.Type {
	case gjson.String:
		return String(r.Str)
	case gjson.Number:
		return Number(r.Raw)
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	default:
		return Null{}
	}
}

func malformed(i int, reason string, err error) error {
	return &pkgerrs.MalformedInputError{Index: i, Reason: reason, Err: err}
}
