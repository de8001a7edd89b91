package roster

import (
	"maps"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Resolver joins person identities across two record sources by canonical
// name key. The join is one-to-one: records whose key shows up in both
// sources merge into a single Profile, everything else is reported back as
// unmatched.
type Resolver struct {
	nameFieldA string
	nameFieldB string
	logger     *zap.Logger
}

// Resolution holds the outcome of a resolver run. Unmatched records are a
// diagnostic, not an error: a roster entry without a counterpart in the other
// source simply cannot be recommended.
type Resolution struct {
	Profiles   []*Profile
	UnmatchedA []RawRecord
	UnmatchedB []RawRecord
}

func NewResolver(nameFieldA, nameFieldB string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{
		nameFieldA: nameFieldA,
		nameFieldB: nameFieldB,
		logger:     logger,
	}
}

// Resolve merges the two sources. Fields from source B take precedence when
// both sources carry the same field name. Profiles come back sorted by
// canonical key so repeated runs over the same input produce the same order.
func (r *Resolver) Resolve(sourceA, sourceB []RawRecord) *Resolution {
	byKeyA, skippedA := r.group(sourceA, r.nameFieldA)
	byKeyB, skippedB := r.group(sourceB, r.nameFieldB)

	res := &Resolution{
		UnmatchedA: skippedA,
		UnmatchedB: skippedB,
	}

	keys := make([]string, 0, len(byKeyA))
	for key := range byKeyA {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		recA := byKeyA[key]
		recB, ok := byKeyB[key]
		if !ok {
			res.UnmatchedA = append(res.UnmatchedA, recA)
			continue
		}

		fields := make(map[string]string, len(recA.Fields)+len(recB.Fields))
		maps.Copy(fields, recA.Fields)
		maps.Copy(fields, recB.Fields)

		res.Profiles = append(res.Profiles, &Profile{
			Key:    key,
			Name:   strings.TrimSpace(recA.Get(r.nameFieldA)),
			Fields: fields,
		})
	}

	keysB := make([]string, 0, len(byKeyB))
	for key := range byKeyB {
		if _, ok := byKeyA[key]; !ok {
			keysB = append(keysB, key)
		}
	}
	sort.Strings(keysB)

	for _, key := range keysB {
		res.UnmatchedB = append(res.UnmatchedB, byKeyB[key])
	}

	r.logger.Debug("resolved rosters",
		zap.Int("profiles", len(res.Profiles)),
		zap.Int("unmatched_a", len(res.UnmatchedA)),
		zap.Int("unmatched_b", len(res.UnmatchedB)),
	)

	return res
}

// group indexes records by canonical key. Records without a usable name are
// returned separately so they end up in the unmatched diagnostics. When two
// records of the same source canonicalize to the same key the later one wins;
// that collision is logged because it usually means two distinct people share
// a normalized name.
func (r *Resolver) group(records []RawRecord, nameField string) (map[string]RawRecord, []RawRecord) {
	grouped := make(map[string]RawRecord, len(records))
	var skipped []RawRecord

	for _, rec := range records {
		key := Canonical(rec.Get(nameField))
		if key == "" {
			skipped = append(skipped, rec)
			continue
		}

		if prev, ok := grouped[key]; ok {
			r.logger.Debug("canonical key collision within one source",
				zap.String("key", key),
				zap.String("kept", rec.Get(nameField)),
				zap.String("replaced", prev.Get(nameField)),
			)
		}

		grouped[key] = rec
	}

	return grouped, skipped
}
