package roster

import (
	"testing"

	"go.uber.org/zap"
)

func record(source, name string, extra map[string]string) RawRecord {
	fields := map[string]string{"Name": name}
	for k, v := range extra {
		fields[k] = v
	}
	return RawRecord{Source: source, Fields: fields}
}

func TestResolveJoinsByCanonicalKey(t *testing.T) {
	t.Parallel()

	sourceA := []RawRecord{
		record("bio", "Jane A. Doe", map[string]string{"Education": "Osgoode Hall"}),
		record("bio", "Only In Bio", nil),
	}
	sourceB := []RawRecord{
		record("practice", "jane doe", map[string]string{"Availability": "2 weeks"}),
		record("practice", "Only In Practice", nil),
	}

	resolver := NewResolver("Name", "Name", zap.NewNop())
	res := resolver.Resolve(sourceA, sourceB)

	if len(res.Profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(res.Profiles))
	}

	profile := res.Profiles[0]
	if profile.Key != "jane doe" {
		t.Fatalf("unexpected key: %q", profile.Key)
	}

	if profile.Name != "Jane A. Doe" {
		t.Fatalf("expected display name from the primary source, got %q", profile.Name)
	}

	if profile.Get("Education") != "Osgoode Hall" {
		t.Fatalf("expected education from source A, got %q", profile.Get("Education"))
	}

	if profile.Get("Availability") != "2 weeks" {
		t.Fatalf("expected availability from source B, got %q", profile.Get("Availability"))
	}

	if len(res.UnmatchedA) != 1 || Canonical(res.UnmatchedA[0].Get("Name")) != "only bio" {
		t.Fatalf("unexpected unmatched A: %+v", res.UnmatchedA)
	}

	if len(res.UnmatchedB) != 1 || Canonical(res.UnmatchedB[0].Get("Name")) != "only practice" {
		t.Fatalf("unexpected unmatched B: %+v", res.UnmatchedB)
	}
}

func TestResolveSecondSourceWinsOnCollision(t *testing.T) {
	t.Parallel()

	sourceA := []RawRecord{record("bio", "Jane Doe", map[string]string{"Practice Areas": "old"})}
	sourceB := []RawRecord{record("practice", "Jane Doe", map[string]string{"Practice Areas": "new"})}

	res := NewResolver("Name", "Name", nil).Resolve(sourceA, sourceB)

	if len(res.Profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(res.Profiles))
	}

	if got := res.Profiles[0].Get("Practice Areas"); got != "new" {
		t.Fatalf("expected source B to win the collision, got %q", got)
	}
}

func TestResolveZeroMatchesIsNotFatal(t *testing.T) {
	t.Parallel()

	res := NewResolver("Name", "Name", nil).Resolve(
		[]RawRecord{record("bio", "Alice Smith", nil)},
		[]RawRecord{record("practice", "Bob Jones", nil)},
	)

	if len(res.Profiles) != 0 {
		t.Fatalf("expected no profiles, got %d", len(res.Profiles))
	}

	if len(res.UnmatchedA) != 1 || len(res.UnmatchedB) != 1 {
		t.Fatalf("expected both records unmatched, got %d/%d", len(res.UnmatchedA), len(res.UnmatchedB))
	}
}

func TestResolveKeepsNamelessRecordsAsUnmatched(t *testing.T) {
	t.Parallel()

	res := NewResolver("Name", "Name", nil).Resolve(
		[]RawRecord{{Source: "bio", Fields: map[string]string{"Name": "  "}}},
		nil,
	)

	if len(res.Profiles) != 0 {
		t.Fatalf("expected no profiles, got %d", len(res.Profiles))
	}

	if len(res.UnmatchedA) != 1 {
		t.Fatalf("expected the nameless record in unmatched A, got %d", len(res.UnmatchedA))
	}
}

func TestProfileDecode(t *testing.T) {
	t.Parallel()

	profile := &Profile{
		Key:  "jane doe",
		Name: "Jane Doe",
		Fields: map[string]string{
			"Availability": "Immediately",
			"Education":    "McGill",
		},
	}

	var details struct {
		Availability string `mapstructure:"availability"`
		Education    string `mapstructure:"education"`
	}

	if err := profile.Decode(&details); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if details.Availability != "Immediately" || details.Education != "McGill" {
		t.Fatalf("unexpected decoded details: %+v", details)
	}
}
