package test_helpers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field is one named member of an Obj.
type Field struct {
	Name  string
	Value any
}

// Obj is an ordered object for EncodeNodeTable.
type Obj []Field

// O builds an Obj from alternating names and values.
func O(pairs ...any) Obj {
	if len(pairs)%2 != 0 {
		panic("O needs name/value pairs")
	}
	obj := make(Obj, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		obj = append(obj, Field{Name: pairs[i].(string), Value: pairs[i+1]})
	}
	return obj
}

// Ref is emitted verbatim as a node reference, for sentinels such as -5.
type Ref int

// EncodeNodeTable flattens root into the Remix node table format followed
// by a newline. Values may be Obj, []any (only as field values), string,
// int, float64, bool, nil (emitted as the -5 null sentinel) or Ref.
// Strings are shared between names and values.
func EncodeNodeTable(root Obj) string {
	t := &nodeTable{strings: make(map[string]int)}
	t.object(root)

	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range t.entries {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(e)
	}
	sb.WriteString("]\n")
	return sb.String()
}

type nodeTable struct {
	entries []string
	strings map[string]int
}

func (t *nodeTable) add(raw string) int {
	t.entries = append(t.entries, raw)
	return len(t.entries) - 1
}

func (t *nodeTable) str(s string) int {
	if i, ok := t.strings[s]; ok {
		return i
	}
	b, _ := json.Marshal(s)
	i := t.add(string(b))
	t.strings[s] = i
	return i
}

func (t *nodeTable) object(obj Obj) int {
	slot := t.add("")
	parts := make([]string, 0, len(obj))
	for _, f := range obj {
		name := t.str(f.Name)
		parts = append(parts, fmt.Sprintf(`"_%d":%d`, name, t.field(f.Value)))
	}
	t.entries[slot] = "{" + strings.Join(parts, ",") + "}"
	return slot
}

func (t *nodeTable) field(v any) int {
	items, ok := v.([]any)
	if !ok {
		return t.value(v)
	}
	slot := t.add("")
	refs := make([]string, len(items))
	for i, item := range items {
		refs[i] = strconv.Itoa(t.value(item))
	}
	t.entries[slot] = "[" + strings.Join(refs, ",") + "]"
	return slot
}

func (t *nodeTable) value(v any) int {
	switch x := v.(type) {
	case nil:
		return -5
	case Ref:
		return int(x)
	case Obj:
		return t.object(x)
	case string:
		return t.str(x)
	case int:
		return t.add(strconv.Itoa(x))
	case float64:
		return t.add(strconv.FormatFloat(x, 'g', -1, 64))
	case bool:
		return t.add(strconv.FormatBool(x))
	default:
		panic(fmt.Sprintf("EncodeNodeTable: unsupported value %T", v))
	}
}
