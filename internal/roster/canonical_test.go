package roster

import "testing"

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "lowercases and trims",
			input:  "  Jane Doe ",
			expect: "jane doe",
		},
		{
			name:   "drops middle names",
			input:  "Jane A. Doe",
			expect: "jane doe",
		},
		{
			name:   "strips parenthetical notes",
			input:  "Jane Doe (on leave)",
			expect: "jane doe",
		},
		{
			name:   "singularizes the last token",
			input:  "jane does",
			expect: "jane doe",
		},
		{
			name:   "normalizes hyphen spacing",
			input:  "anne -marie",
			expect: "anne-marie",
		},
		{
			name:   "empty input",
			input:  "   ",
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Canonical(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestCanonicalIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"  Jane A. Doe ",
		"jane doe",
		"Ross Gellers",
		"Anne -Marie van der Berg (partner)",
	}

	for _, input := range inputs {
		once := Canonical(input)
		if twice := Canonical(once); twice != once {
			t.Fatalf("Canonical not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestCanonicalMatchesAcrossVariants(t *testing.T) {
	t.Parallel()

	if Canonical("  Jane A. Doe ") != Canonical("jane doe") {
		t.Fatalf("expected variants of the same name to share a key")
	}
}
