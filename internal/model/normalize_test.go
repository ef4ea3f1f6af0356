package model

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"list generated_text", `[{"generated_text":"hello"}]`, "hello"},
		{"list output", `[{"output":"from output"}]`, "from output"},
		{"list generated_text beats output", `[{"output":"no","generated_text":"yes"}]`, "yes"},
		{"list other element", `[{"label":"POSITIVE","score":0.99}]`, `{"label":"POSITIVE","score":0.99}`},
		{"list scalar element", `["first","second"]`, "first"},
		{"list numeric element", `[42]`, "42"},
		{"object generated_text", `{"generated_text":"gt"}`, "gt"},
		{"object output", `{"output":"out"}`, "out"},
		{"object generated_text beats output", `{"output":"no","generated_text":"yes"}`, "yes"},
		{"object output beats error", `{"output":"fine","error":"ignored"}`, "fine"},
		{"object fallback", `{"answer":"x","n":1}`, `{"answer":"x","n":1}`},
		{"non-string generated_text", `{"generated_text":{"a":1}}`, `{"a":1}`},
		{"empty list", `[]`, "[]"},
		{"string scalar", `"plain"`, "plain"},
		{"number scalar", `3.50`, "3.50"},
		{"raw text", `not json at all`, "not json at all"},
		{"html is not escaped", `{"x":"<b>&</b>"}`, `{"x":"<b>&</b>"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(ParsePayload([]byte(tt.body)))
			if err != nil {
				t.Fatalf("Normalize(%s) error: %v", tt.body, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%s) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

// TestNormalize_ListWinsOverObjectRules feeds a value matching rule 1 and
// rule 3 at once (a list whose first element has "output"); the list rule
// must be the one applied.
func TestNormalize_ListWinsOverObjectRules(t *testing.T) {
	p := ParsePayload([]byte(`[{"output":"from list"},{"output":"second"}]`))
	if p.Kind != KindList {
		t.Fatalf("Kind = %v, want list", p.Kind)
	}
	got, err := Normalize(p)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != "from list" {
		t.Errorf("got %q, want %q", got, "from list")
	}
}

func TestNormalize_ErrorField(t *testing.T) {
	_, err := Normalize(ParsePayload([]byte(`{"error":"x"}`)))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var perr *PayloadError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not a *PayloadError", err)
	}
	if perr.Value != "x" {
		t.Errorf("Value = %v, want x", perr.Value)
	}
}

func TestParsePayload_Kinds(t *testing.T) {
	tests := []struct {
		body string
		want Kind
	}{
		{`[1,2]`, KindList},
		{`{"a":1}`, KindObject},
		{`"s"`, KindScalar},
		{`null`, KindScalar},
		{`{"a":1} trailing`, KindScalar},
		{``, KindScalar},
	}
	for _, tt := range tests {
		if got := ParsePayload([]byte(tt.body)).Kind; got != tt.want {
			t.Errorf("ParsePayload(%q).Kind = %v, want %v", tt.body, got, tt.want)
		}
	}
}
