package remix

import (
	"errors"
	"strings"
	"testing"

	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
)

// FuzzDecode checks that arbitrary input either decodes or fails with a
// MalformedInputError, and never panics or loops.
func FuzzDecode(f *testing.F) {
	seeds := []string{
		searchPayload,
		`[{"_1":2},"name","value"]`,
		`[{"_1":0},"self"]`,
		`[{"_1":2},"name",[3,"P",99],"first"]`,
		`[{"_1":-5,"_2":-9},"a","b"]`,
		`[]`,
		`{}`,
		``,
		"[1]\n[2]",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, text string) {
		v, err := Decode(text)
		if err != nil {
			var malformedErr *pkgerrs.MalformedInputError
			if !errors.As(err, &malformedErr) {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			return
		}
		if v == nil {
			t.Fatal("nil value without error")
		}
		again, err := Decode(text)
		if err != nil || !Equal(v, again) {
			t.Fatalf("decode is not deterministic for %q", text)
		}
	})
}

func BenchmarkDecode(b *testing.B) {
	// One root with many events sharing the same field names.
	var sb strings.Builder
	sb.WriteString(`[{"_1":2},"events",[`)
	const n = 500
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("4")
	}
	sb.WriteString(`],"title",{"_3":5},"rvy_racing"]`)
	payload := sb.String()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(payload); err != nil {
			b.Fatal(err)
		}
	}
}
