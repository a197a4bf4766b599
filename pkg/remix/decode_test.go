package remix

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
)

// searchPayload is trimmed from an events.search response.
const searchPayload = `[{"_1":2},"routes/_main.events.search",{"_3":4},"data",{"_5":6,"_9":10},"events",[7],{"_8":11,"_12":13,"_14":15,"_16":-5},"id","total",1,"041c2d52-1230-4f82-be89-fb6abdec970f","title","rvy_racing Race 12","laps",3,"organizer"]
P1:[{"_7":8}]
`

func mustDecode(t *testing.T, text string) Value {
	t.Helper()
	v, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	return v
}

func TestDecode_NameValue(t *testing.T) {
	got := mustDecode(t, `[{"_1":2},"name","value"]`)

	want := map[string]any{"name": "value"}
	if diff := cmp.Diff(want, Native(got)); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_SearchPayload(t *testing.T) {
	got := mustDecode(t, searchPayload)

	want := map[string]any{
		"routes/_main.events.search": map[string]any{
			"data": map[string]any{
				"events": []any{
					map[string]any{
						"id":        "041c2d52-1230-4f82-be89-fb6abdec970f",
						"title":     "rvy_racing Race 12",
						"laps":      int64(3),
						"organizer": nil,
					},
				},
				"total": int64(1),
			},
		},
	}
	if diff := cmp.Diff(want, Native(got)); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_PreservesFieldOrder(t *testing.T) {
	got := mustDecode(t, `[{"_1":4,"_2":4,"_3":4},"zeta","alpha","mid",true]`)

	m, ok := got.(Mapping)
	if !ok {
		t.Fatalf("expected Mapping, got %T", got)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, m.Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(out) != `{"zeta":true,"alpha":true,"mid":true}` {
		t.Errorf("unexpected JSON %s", out)
	}
}

func TestDecode_Sentinels(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]any
	}{
		{
			name: "null sentinel as field value",
			text: `[{"_1":-5},"name"]`,
			want: map[string]any{"name": nil},
		},
		{
			name: "null sentinel in list",
			text: `[{"_1":2},"name",[-5,3],"x"]`,
			want: map[string]any{"name": []any{nil, "x"}},
		},
		{
			name: "unknown negative index",
			text: `[{"_1":-7},"name"]`,
			want: map[string]any{"name": map[string]any{"unknownNode": int64(-7)}},
		},
		{
			name: "unknown negative index in list",
			text: `[{"_1":2},"name",[-1]]`,
			want: map[string]any{"name": []any{map[string]any{"unknownNode": int64(-1)}}},
		},
		{
			name: "json null entry",
			text: `[{"_1":2},"name",null]`,
			want: map[string]any{"name": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustDecode(t, tt.text)
			if diff := cmp.Diff(tt.want, Native(got)); diff != "" {
				t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_UnknownKeepsIndex(t *testing.T) {
	got := mustDecode(t, `[{"_1":-3},"name"]`)

	v, ok := Lookup(got, "name")
	if !ok {
		t.Fatal("expected name field")
	}
	u, ok := v.(Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", v)
	}
	if u.Index != -3 {
		t.Errorf("Index = %d, want -3", u.Index)
	}
}

func TestDecode_MetadataMarkerTruncatesList(t *testing.T) {
	// 99 is out of range; it must never be looked at.
	got := mustDecode(t, `[{"_1":2},"name",[3,"P",99],"first"]`)

	want := map[string]any{"name": []any{"first"}}
	if diff := cmp.Diff(want, Native(got)); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_EmptyAndTruncatedLists(t *testing.T) {
	got := mustDecode(t, `[{"_1":3,"_2":4},"empty","marked",[],["P",1]]`)

	for _, name := range []string{"empty", "marked"} {
		v, ok := Lookup(got, name)
		if !ok {
			t.Fatalf("expected %q to be present", name)
		}
		seq, ok := v.(Sequence)
		if !ok {
			t.Fatalf("expected Sequence for %q, got %T", name, v)
		}
		if len(seq) != 0 {
			t.Errorf("expected %q to be empty, got %d items", name, len(seq))
		}
	}
}

func TestDecode_SharedChild(t *testing.T) {
	got := mustDecode(t, `[{"_1":3,"_2":3},"a","b",{"_4":5},"leaf",42]`)

	want := map[string]any{
		"a": map[string]any{"leaf": int64(42)},
		"b": map[string]any{"leaf": int64(42)},
	}
	if diff := cmp.Diff(want, Native(got)); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}

	a, _ := Lookup(got, "a")
	b, _ := Lookup(got, "b")
	a.(Mapping).Set("leaf", String("changed"))
	if leaf, _ := Lookup(b, "leaf"); !Equal(leaf, Number("42")) {
		t.Errorf("expanding a shared child twice must not alias, got %v", leaf)
	}
}

func TestDecode_ScalarTypes(t *testing.T) {
	got := mustDecode(t, `[{"_1":5,"_2":6,"_3":7,"_4":8},"s","f","t","n","text",1.5,true,false]`)

	m := got.(Mapping)
	checks := []struct {
		name string
		want Value
	}{
		{"s", String("text")},
		{"f", Number("1.5")},
		{"t", Bool(true)},
		{"n", Bool(false)},
	}
	for _, c := range checks {
		v, _ := m.Get(c.name)
		if !Equal(v, c.want) {
			t.Errorf("%s = %#v, want %#v", c.name, v, c.want)
		}
	}
}

func TestDecode_ScalarRoot(t *testing.T) {
	got := mustDecode(t, `["just a string"]`)
	if !Equal(got, String("just a string")) {
		t.Errorf("expected scalar root, got %#v", got)
	}
}

func TestDecode_IgnoresTrailingLines(t *testing.T) {
	got := mustDecode(t, "[{\"_1\":2},\"name\",\"value\"]\r\nnot json at all\n{")
	if diff := cmp.Diff(map[string]any{"name": "value"}, Native(got)); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantIndex int
		reason    string
	}{
		{name: "empty text", text: "", wantIndex: -1, reason: "empty"},
		{name: "invalid json", text: `[{"_1":`, wantIndex: -1, reason: "not valid JSON"},
		{name: "not an array", text: `{"_1":2}`, wantIndex: -1, reason: "not a JSON array"},
		{name: "empty table", text: `[]`, wantIndex: -1, reason: "empty"},
		{name: "root is a list", text: `[[1],"x"]`, wantIndex: 0, reason: "root entry is a list"},
		{name: "name without marker", text: `[{"1":2},"name","value"]`, wantIndex: -1, reason: "marker"},
		{name: "name not integer", text: `[{"_x":2},"name","value"]`, wantIndex: -1, reason: "non-negative integer"},
		{name: "name negative", text: `[{"_-1":2},"name","value"]`, wantIndex: -1, reason: "non-negative integer"},
		{name: "name out of range", text: `[{"_9":2},"name","value"]`, wantIndex: 9, reason: "out of range"},
		{name: "name not a string", text: `[{"_1":2},7,"value"]`, wantIndex: 1, reason: "does not resolve to a string"},
		{name: "value not integer", text: `[{"_1":"2"},"name","value"]`, wantIndex: 0, reason: "value of"},
		{name: "value index fractional", text: `[{"_1":1.5},"name"]`, wantIndex: 0, reason: "value of"},
		{name: "value out of range", text: `[{"_1":8},"name"]`, wantIndex: 8, reason: "out of range"},
		{name: "string list element", text: `[{"_1":2},"name",["Q"]]`, wantIndex: 2, reason: "unrecognized list element"},
		{name: "object list element", text: `[{"_1":2},"name",[{"a":1}]]`, wantIndex: 2, reason: "unrecognized list element"},
		{name: "list of lists", text: `[{"_1":2},"name",[3],[4],"x"]`, wantIndex: 3, reason: "list entry"},
		{name: "self cycle", text: `[{"_1":0},"self"]`, wantIndex: 0, reason: "cycle"},
		{name: "mutual cycle", text: `[{"_1":2},"next",{"_1":0}]`, wantIndex: 0, reason: "cycle"},
		{name: "cycle through list", text: `[{"_1":2},"items",[0]]`, wantIndex: 0, reason: "cycle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.text)
			if err == nil {
				t.Fatal("expected error")
			}

			var malformedErr *pkgerrs.MalformedInputError
			if !errors.As(err, &malformedErr) {
				t.Fatalf("expected MalformedInputError, got %T: %v", err, err)
			}
			if malformedErr.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d (%v)", malformedErr.Index, tt.wantIndex, err)
			}
			if !strings.Contains(malformedErr.Reason, tt.reason) {
				t.Errorf("Reason = %q, want to contain %q", malformedErr.Reason, tt.reason)
			}
		})
	}
}

func TestDecode_Idempotent(t *testing.T) {
	first := mustDecode(t, searchPayload)
	second := mustDecode(t, searchPayload)

	if !Equal(first, second) {
		t.Error("decoding the same text twice produced different values")
	}
}

func TestDecode_Concurrent(t *testing.T) {
	want := mustDecode(t, searchPayload)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Decode(searchPayload)
			if err != nil {
				errs <- err.Error()
				return
			}
			if !Equal(want, got) {
				errs <- "concurrent decode diverged"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}

func TestDecodeBytes(t *testing.T) {
	got, err := DecodeBytes([]byte(`[{"_1":2},"name","value"]`))
	if err != nil {
		t.Fatalf("DecodeBytes returned error: %v", err)
	}
	if v, _ := Lookup(got, "name"); !Equal(v, String("value")) {
		t.Errorf("name = %#v", v)
	}
}
