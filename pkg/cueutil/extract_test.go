// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractJSON_PreservesOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	expr, err := ExtractJSON([]byte(`{"b": "1", "a": "2", "b": "3"}`), WithFilename("map.json"))
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}

	members, err := Members(expr)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}

	wantKeys := []string{"b", "a", "b"}
	wantValues := []string{"1", "2", "3"}
	if len(members) != len(wantKeys) {
		t.Fatalf("got %d members, want %d", len(members), len(wantKeys))
	}
	for i, m := range members {
		if m.Key != wantKeys[i] {
			t.Errorf("members[%d].Key = %q, want %q", i, m.Key, wantKeys[i])
		}
		v, err := StringValue(m.Value)
		if err != nil {
			t.Fatalf("StringValue(members[%d]) error = %v", i, err)
		}
		if v != wantValues[i] {
			t.Errorf("members[%d] value = %q, want %q", i, v, wantValues[i])
		}
	}

	last, ok := Lookup(members, "b")
	if !ok {
		t.Fatal("Lookup(b) not found")
	}
	if v, _ := StringValue(last.Value); v != "3" {
		t.Errorf("Lookup(b) = %q, want last definition %q", v, "3")
	}
	if _, ok := Lookup(members, "missing"); ok {
		t.Error("Lookup(missing) should not be found")
	}
}

func TestExtractJSON_KeysNeedingQuotes(t *testing.T) {
	t.Parallel()

	doc := `{"https://example.com/": "x", "@std/assert": "y", "null": "z", "é\/": "w"}`
	expr, err := ExtractJSON([]byte(doc))
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	members, err := Members(expr)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}

	want := []string{"https://example.com/", "@std/assert", "null", "é/"}
	for i, m := range members {
		if m.Key != want[i] {
			t.Errorf("members[%d].Key = %q, want %q", i, m.Key, want[i])
		}
	}
}

func TestExtractJSON_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"truncated", `{"imports": {`},
		{"trailing comma", `{"imports": {},}`},
		{"comment", "{\n// note\n\"imports\": {}}"},
		{"not json", `imports: {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ExtractJSON([]byte(tt.data), WithFilename("map.json")); err == nil {
				t.Errorf("ExtractJSON(%q) should fail", tt.data)
			} else if !strings.Contains(err.Error(), "map.json") {
				t.Errorf("error should name the file, got: %v", err)
			}
		})
	}
}

func TestExtractJSON_JSONC(t *testing.T) {
	t.Parallel()

	doc := "{\n  // pinned versions\n  \"imports\": {\"a\": \"./a.js\",},\n}\n"
	expr, err := ExtractJSON([]byte(doc), WithJSONC(), WithFilename("deno.jsonc"))
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	members, err := Members(expr)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	if len(members) != 1 || members[0].Key != "imports" {
		t.Fatalf("unexpected members: %+v", members)
	}
	if members[0].Kind() != KindObject {
		t.Errorf("imports kind = %s, want object", members[0].Kind())
	}
}

func TestExtractJSON_JSONCComments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"block comment", `{/* c */ "imports": {"a": "./a.js"}}`},
		{"multiline block comment", "{\n  /*\n   * deno settings\n   */\n  \"imports\": {\"a\": \"./a.js\"}\n}"},
		{"comment markers inside strings", `{"imports": {"a": "./a.js"}} // "/* not closed`},
		{"trailing comma after comment", "{\"imports\": {\"a\": \"./a.js\", /* last */}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			expr, err := ExtractJSON([]byte(tt.doc), WithJSONC())
			if err != nil {
				t.Fatalf("ExtractJSON() error = %v", err)
			}
			members, err := Members(expr)
			if err != nil {
				t.Fatalf("Members() error = %v", err)
			}
			if len(members) != 1 || members[0].Key != "imports" {
				t.Fatalf("unexpected members: %+v", members)
			}
			inner, err := Members(members[0].Value)
			if err != nil {
				t.Fatalf("Members(imports) error = %v", err)
			}
			if v, _ := StringValue(inner[0].Value); v != "./a.js" {
				t.Errorf("imports.a = %q, want ./a.js", v)
			}
		})
	}
}

func TestExtractJSON_JSONCRejectsNonJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"unquoted key", `{imports: {"a": "./a.js"}}`},
		{"string concatenation", `{"imports": {"a": "./a" + ".js"}}`},
		{"unification", `{"lock": true & true}`},
		{"unterminated block comment", `{"imports": {}} /* open`},
		{"single quoted string", `{"imports": {'a': "./a.js"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ExtractJSON([]byte(tt.doc), WithJSONC(), WithFilename("deno.jsonc")); err == nil {
				t.Errorf("ExtractJSON(%q) should fail", tt.doc)
			} else if !strings.Contains(err.Error(), "deno.jsonc") {
				t.Errorf("error should name the file, got: %v", err)
			}
		})
	}
}

func TestExtractJSON_JSONCKeepsPositions(t *testing.T) {
	t.Parallel()

	doc := "{\n/* one\n   two */ \"imports\": {}}"
	expr, err := ExtractJSON([]byte(doc), WithJSONC(), WithFilename("deno.jsonc"))
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	members, err := Members(expr)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	if got := members[0].Pos(); got != "deno.jsonc:3:11" {
		t.Errorf("Pos() = %q, want deno.jsonc:3:11", got)
	}
}

func TestExtractJSON_SizeLimit(t *testing.T) {
	t.Parallel()

	_, err := ExtractJSON([]byte(`{"imports": {}}`), WithMaxFileSize(4))
	if !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("expected ErrInputTooLarge, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	doc := `{"s": "x", "n": null, "t": true, "f": false, "i": 1, "d": 1.5, "neg": -2, "o": {}, "a": []}`
	expr, err := ExtractJSON([]byte(doc))
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	members, err := Members(expr)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}

	want := map[string]JSONKind{
		"s": KindString, "n": KindNull, "t": KindBoolean, "f": KindBoolean,
		"i": KindNumber, "d": KindNumber, "neg": KindNumber, "o": KindObject, "a": KindArray,
	}
	for _, m := range members {
		if got := m.Kind(); got != want[m.Key] {
			t.Errorf("KindOf(%s) = %s, want %s", m.Key, got, want[m.Key])
		}
	}
}

func TestMembers_NotObject(t *testing.T) {
	t.Parallel()

	expr, err := ExtractJSON([]byte(`["a"]`))
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	if _, err := Members(expr); err == nil {
		t.Error("Members() on an array should fail")
	} else if !strings.Contains(err.Error(), "array") {
		t.Errorf("error should name the actual kind, got: %v", err)
	}
}

func TestStringValue_NotString(t *testing.T) {
	t.Parallel()

	expr, err := ExtractJSON([]byte(`42`))
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	if _, err := StringValue(expr); err == nil {
		t.Error("StringValue() on a number should fail")
	}
}

func TestMember_Pos(t *testing.T) {
	t.Parallel()

	expr, err := ExtractJSON([]byte("{\n  \"a\": \"x\"\n}"), WithFilename("map.json"))
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	members, err := Members(expr)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	if got := members[0].Pos(); got != "map.json:2:3" {
		t.Errorf("Pos() = %q, want %q", got, "map.json:2:3")
	}
	if got := (Member{}).Pos(); got != "" {
		t.Errorf("zero Member Pos() = %q, want empty", got)
	}
}
