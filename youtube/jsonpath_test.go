package youtube

import (
	"encoding/json"
	"testing"
)

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return doc
}

func TestFromPath(t *testing.T) {
	doc := mustDecode(t, `{
		"contents": {
			"items": [
				{"id": "first"},
				{"id": "second", "nested": {"deep": 42}}
			]
		},
		"empty": {}
	}`)

	tests := []struct {
		name string
		path []string
		want any
		ok   bool
	}{
		{"object key", []string{"empty"}, map[string]any{}, true},
		{"array index", []string{"contents", "items", "0", "id"}, "first", true},
		{"deep mixed path", []string{"contents", "items", "1", "nested", "deep"}, float64(42), true},
		{"missing key", []string{"contents", "nope"}, nil, false},
		{"index out of range", []string{"contents", "items", "2"}, nil, false},
		{"negative index", []string{"contents", "items", "-1"}, nil, false},
		{"non-numeric index on array", []string{"contents", "items", "id"}, nil, false},
		{"descend into scalar", []string{"contents", "items", "0", "id", "x"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromPath(doc, tt.path...)
			if ok != tt.ok {
				t.Fatalf("FromPath ok = %v, want %v", ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			switch want := tt.want.(type) {
			case map[string]any:
				if _, isMap := got.(map[string]any); !isMap {
					t.Errorf("FromPath = %T, want map", got)
				}
			default:
				if got != want {
					t.Errorf("FromPath = %v, want %v", got, want)
				}
			}
		})
	}
}

func TestFromPath_EmptyPath(t *testing.T) {
	doc := map[string]any{"a": 1}
	got, ok := FromPath(doc)
	if !ok {
		t.Fatal("empty path should resolve to the document itself")
	}
	if _, isMap := got.(map[string]any); !isMap {
		t.Errorf("FromPath = %T, want map", got)
	}
}

func TestTextFromPath(t *testing.T) {
	doc := mustDecode(t, `{
		"plain": "hello",
		"verified": true,
		"hidden": false,
		"title": {"simpleText": "1,234 views"},
		"styled": {"runs": [{"text": "Pinned by "}, {"text": "Channel"}]},
		"emptyRuns": {"runs": []},
		"number": 7,
		"noText": {"other": "x"}
	}`)

	tests := []struct {
		name string
		path []string
		want string
		ok   bool
	}{
		{"string verbatim", []string{"plain"}, "hello", true},
		{"bool true", []string{"verified"}, "true", true},
		{"bool false", []string{"hidden"}, "false", true},
		{"simpleText", []string{"title"}, "1,234 views", true},
		{"runs concatenated", []string{"styled"}, "Pinned by Channel", true},
		{"empty runs are absent", []string{"emptyRuns"}, "", false},
		{"number is not text", []string{"number"}, "", false},
		{"object without text", []string{"noText"}, "", false},
		{"missing path", []string{"nope"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TextFromPath(doc, tt.path...)
			if ok != tt.ok {
				t.Fatalf("TextFromPath ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("TextFromPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextOr(t *testing.T) {
	doc := map[string]any{"name": "abc"}

	if got := TextOr(doc, "FALLBACK", "name"); got != "abc" {
		t.Errorf("TextOr = %q, want %q", got, "abc")
	}
	if got := TextOr(doc, "FALLBACK", "missing"); got != "FALLBACK" {
		t.Errorf("TextOr = %q, want %q", got, "FALLBACK")
	}
}
