package textutil

import "testing"

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  desconto10 "); got != "DESCONTO10" {
		t.Fatalf("expected DESCONTO10, got %q", got)
	}
	if got := NormalizeCode(""); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
}

func TestHasPrefixFold(t *testing.T) {
	t.Run("matches ignoring case and padding", func(t *testing.T) {
		if !HasPrefixFold("Carlos Souza", "  car ") {
			t.Fatalf("expected prefix match")
		}
		if !HasPrefixFold("Ângela Reis", "ÂNG") {
			t.Fatalf("expected accented prefix match")
		}
	})

	t.Run("rejects non-prefix", func(t *testing.T) {
		if HasPrefixFold("Ana Silva", "silva") {
			t.Fatalf("expected no match for inner substring")
		}
	})

	t.Run("empty prefix matches", func(t *testing.T) {
		if !HasPrefixFold("Mariana Lima", "") {
			t.Fatalf("expected empty prefix to match")
		}
	})
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Ana Silva":         "ana-silva",
		"  João   Conceição": "joao-conceicao",
		"---":               "",
	}
	for input, want := range cases {
		if got := Slug(input); got != want {
			t.Errorf("Slug(%q) = %q, want %q", input, got, want)
		}
	}
}
