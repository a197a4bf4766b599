package helpers

import (
	"fmt"
	"math/rand"
	"strings"
)

// TableGenerator creates hostile and malformed node tables for testing
type TableGenerator struct {
	rnd *rand.Rand
}

// NewTableGenerator creates a generator with the given seed
func NewTableGenerator(seed int64) *TableGenerator {
	return &TableGenerator{rnd: rand.New(rand.NewSource(seed))}
}

func join(entries []string) string {
	return "[" + strings.Join(entries, ",") + "]\n"
}

// DeepChain nests depth objects, each holding the next under "child". The
// innermost holds "leaf": "end". Decoded depth is depth + 1.
func (g *TableGenerator) DeepChain(depth int) string {
	// Objects 0..depth, then the strings "child", "leaf" and "end".
	child, leaf, end := depth+1, depth+2, depth+3
	entries := make([]string, 0, depth+4)
	for i := 0; i < depth; i++ {
		entries = append(entries, fmt.Sprintf(`{"_%d":%d}`, child, i+1))
	}
	entries = append(entries, fmt.Sprintf(`{"_%d":%d}`, leaf, end))
	entries = append(entries, `"child"`, `"leaf"`, `"end"`)
	return join(entries)
}

// SelfCycle is an object whose only field refers back to itself.
func (g *TableGenerator) SelfCycle() string {
	return `[{"_1":0},"self"]` + "\n"
}

// MutualCycle is two objects that refer to each other.
func (g *TableGenerator) MutualCycle() string {
	return `[{"_1":2},"next",{"_1":0}]` + "\n"
}

// ListCycle reaches the root again through a list element.
func (g *TableGenerator) ListCycle() string {
	return `[{"_1":2},"items",[3],{"_4":0},"back"]` + "\n"
}

// WideList is a root object with one list of n shared string entries.
func (g *TableGenerator) WideList(n int) string {
	refs := make([]string, n)
	for i := range refs {
		refs[i] = "3"
	}
	return join([]string{`{"_1":2}`, `"items"`, "[" + strings.Join(refs, ",") + "]", `"x"`})
}

// Bomb is a chain of depth objects where every object refers to the next
// one twice, so the decoded tree has 2^depth leaves.
func (g *TableGenerator) Bomb(depth int) string {
	// 0: root object, 1: "a", 2: "b", then objects 3.. and a final leaf.
	entries := make([]string, 0, depth+4)
	entries = append(entries, `{"_1":3,"_2":3}`, `"a"`, `"b"`)
	for i := 1; i < depth; i++ {
		next := 3 + i
		entries = append(entries, fmt.Sprintf(`{"_1":%d,"_2":%d}`, next, next))
	}
	entries = append(entries, `"leaf"`)
	return join(entries)
}

// Random builds a table of size entries with random shapes and references,
// most of them in range. The result may or may not decode.
func (g *TableGenerator) Random(size int) string {
	if size < 1 {
		size = 1
	}
	ref := func() int {
		if g.rnd.Intn(10) == 0 {
			return g.rnd.Intn(2*size+10) - 10
		}
		return g.rnd.Intn(size)
	}

	entries := make([]string, size)
	for i := range entries {
		switch g.rnd.Intn(7) {
		case 0, 1:
			var fields []string
			for f := g.rnd.Intn(4); f > 0; f-- {
				fields = append(fields, fmt.Sprintf(`"_%d":%d`, ref(), ref()))
			}
			entries[i] = "{" + strings.Join(fields, ",") + "}"
		case 2:
			var items []string
			for n := g.rnd.Intn(4); n > 0; n-- {
				items = append(items, fmt.Sprintf("%d", ref()))
			}
			if g.rnd.Intn(5) == 0 {
				items = append(items, `"P"`)
			}
			entries[i] = "[" + strings.Join(items, ",") + "]"
		case 3:
			entries[i] = fmt.Sprintf("%d", g.rnd.Intn(1000))
		case 4:
			entries[i] = fmt.Sprintf("%g", g.rnd.Float64()*100)
		case 5:
			entries[i] = []string{"true", "false", "null"}[g.rnd.Intn(3)]
		default:
			entries[i] = fmt.Sprintf("%q", fmt.Sprintf("name%d", g.rnd.Intn(size)))
		}
	}
	return join(entries)
}

// MalformedTables returns inputs the decoder must reject
func (g *TableGenerator) MalformedTables() map[string]string {
	return map[string]string{
		"empty":              "",
		"blank line":         "\n\n",
		"not json":           "<html></html>\n",
		"object root":        `{"_1":2}` + "\n",
		"empty table":        "[]\n",
		"list root":          `[[1],"x"]` + "\n",
		"name out of range":  `[{"_9":1},"x"]` + "\n",
		"name not string":    `[{"_1":1},7]` + "\n",
		"bad name marker":    `[{"1":1},"x"]` + "\n",
		"negative name":      `[{"_-1":1},"x"]` + "\n",
		"value out of range": `[{"_1":9},"x"]` + "\n",
		"float reference":    `[{"_1":1.5},"x"]` + "\n",
		"string reference":   `[{"_1":"1"},"x"]` + "\n",
		"nested list":        `[{"_1":2},"x",[3],[4],"y"]` + "\n",
		"list element type":  `[{"_1":2},"x",[{"a":1}]]` + "\n",
		"truncated":          `[{"_1":2},"x","y"`,
	}
}
