package matches

import "testing"

func TestParseWellFormedBlock(t *testing.T) {
	t.Parallel()

	text := `Some preamble the backend added.

<match>
rank: 1
name: Jane Doe
expertise: Trademark prosecution
reason: A decade of trademark filings
availability: Immediately
education: Osgoode Hall
</match>
`

	results, malformed := Parse(text)

	if malformed != 0 {
		t.Fatalf("expected no malformed blocks, got %d", malformed)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.Rank != 1 || got.Name != "Jane Doe" {
		t.Fatalf("unexpected result: %+v", got)
	}

	if got.Availability != "Immediately" || got.Education != "Osgoode Hall" {
		t.Fatalf("optional fields not captured: %+v", got)
	}
}

func TestParseDropsBlockMissingRequiredField(t *testing.T) {
	t.Parallel()

	text := `<match>
rank: 1
name: Jane Doe
expertise: Trademark prosecution
reason: Solid record
</match>
<match>
rank: 2
name: John Roe
expertise: Employment law
</match>
`

	results, malformed := Parse(text)

	if len(results) != 1 {
		t.Fatalf("expected exactly the well-formed block, got %d results", len(results))
	}

	if results[0].Name != "Jane Doe" {
		t.Fatalf("unexpected surviving block: %+v", results[0])
	}

	if malformed != 1 {
		t.Fatalf("expected 1 malformed drop, got %d", malformed)
	}
}

func TestParseSentinelMarkers(t *testing.T) {
	t.Parallel()

	text := `MATCH:
rank: 1
name: Jane Doe
expertise: SaaS agreements
reason: Negotiated dozens of them
END MATCH
`

	results, malformed := Parse(text)

	if malformed != 0 || len(results) != 1 {
		t.Fatalf("expected one result from sentinel markers, got %d results and %d malformed", len(results), malformed)
	}
}

func TestParseTagWrappedFields(t *testing.T) {
	t.Parallel()

	text := `<match>
<rank>2</rank>
<name>Jane Doe</name>
<expertise>Financing</expertise>
<reason>Led multiple rounds</reason>
</match>
`

	results, malformed := Parse(text)

	if malformed != 0 || len(results) != 1 {
		t.Fatalf("expected one result, got %d results and %d malformed", len(results), malformed)
	}

	if results[0].Rank != 2 || results[0].Expertise != "Financing" {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestParseCountsUnterminatedBlock(t *testing.T) {
	t.Parallel()

	text := `<match>
rank: 1
name: Jane Doe
expertise: Trademark
reason: Good fit
`

	results, malformed := Parse(text)

	if len(results) != 0 {
		t.Fatalf("expected no results from an unterminated block, got %d", len(results))
	}

	if malformed != 1 {
		t.Fatalf("expected 1 malformed drop, got %d", malformed)
	}
}

func TestParseRejectsBadRanks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rank string
		ok   bool
	}{
		{name: "plain", rank: "3", ok: true},
		{name: "trailing dot", rank: "2.", ok: true},
		{name: "zero", rank: "0", ok: false},
		{name: "words", rank: "first", ok: false},
		{name: "empty", rank: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, ok := parseRank(tt.rank); ok != tt.ok {
				t.Fatalf("parseRank(%q): expected ok=%v", tt.rank, tt.ok)
			}
		})
	}
}

func TestParseIgnoresProseBetweenBlocks(t *testing.T) {
	t.Parallel()

	text := `Here are my recommendations:

<match>
rank: 1
name: Jane Doe
expertise: Startups
reason: Worked with dozens of founders
</match>

I hope this helps! Let me know if you need anything else.
`

	results, malformed := Parse(text)

	if malformed != 0 || len(results) != 1 {
		t.Fatalf("expected prose to be ignored, got %d results and %d malformed", len(results), malformed)
	}
}
