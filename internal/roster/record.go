package roster

import (
	"github.com/mitchellh/mapstructure"
)

// RawRecord is a single row from one of the record sources. Fields are kept
// as an opaque string map because the two rosters do not share a schema.
type RawRecord struct {
	Source string
	Fields map[string]string
}

// Get returns the named field or an empty string when it is absent.
func (r RawRecord) Get(key string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[key]
}

// Profile is a merged record for one identity, combining fields from both
// sources. It is immutable after resolution.
type Profile struct {
	// Key is the canonical identity key shared by the source records.
	Key string
	// Name is the display name, taken from the primary source.
	Name string
	// Fields is the union of both source rows. On a field name collision the
	// secondary source wins.
	Fields map[string]string
}

// Get returns the named field or an empty string when it is absent.
func (p *Profile) Get(key string) string {
	if p == nil || p.Fields == nil {
		return ""
	}
	return p.Fields[key]
}

// Decode maps the profile fields onto the provided struct. Field names are
// matched case-insensitively via mapstructure tags.
func (p *Profile) Decode(target any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(p.Fields)
}
