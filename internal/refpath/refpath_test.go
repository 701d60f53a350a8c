package refpath

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"cs/ai_books":        "cs/ai_books",
		"/cs/ai_books/":      "cs/ai_books",
		"./cs//ai_books":     "cs/ai_books",
		"":                   "",
		"/":                  "",
		"cs\\win":            "cs\\win", // backslash is literal on non-Windows input
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Run("accepts plain nested paths", func(t *testing.T) {
		for _, p := range []string{"cs", "cs/ai_books/sutton_barto", "math/y"} {
			if err := Validate(p); err != nil {
				t.Errorf("Validate(%q) = %v, want nil", p, err)
			}
		}
	})

	t.Run("rejects traversal and hidden segments", func(t *testing.T) {
		for _, p := range []string{"", "/abs/path", "a/../b", ".", "a/.mimir/b", ".trash"} {
			if err := Validate(p); err == nil {
				t.Errorf("Validate(%q) = nil, want error", p)
			}
		}
	})
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"cs/ai_books":          "cs/ai_books",
		"CS/AI Books":          "cs/ai-books",
		"physics//Quantum Opt": "physics/quantum-opt",
		"a b/c:d":              "a-b/c-d",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("cs", "", "ai_books/"); got != "cs/ai_books" {
		t.Errorf("Join = %q, want %q", got, "cs/ai_books")
	}
}
