package models

import "time"

// Document is a single result record as returned by the search service.
// The index schema lives in the service, not here, so records stay
// string-keyed maps and the typed accessors tolerate missing or
// differently typed fields instead of failing.
type Document map[string]any

// Has reports whether the record carries the named field at all, which
// is distinct from carrying a zero value.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Str returns the named field as a string, or "" when it is absent or
// not a string.
func (d Document) Str(key string) string {
	s, _ := d[key].(string)
	return s
}

// Float returns the named field as a float64. JSON numbers decode to
// float64, so this covers sizes, scores and sentiment alike.
func (d Document) Float(key string) float64 {
	f, _ := d[key].(float64)
	return f
}

// Strs returns the named field as a list of strings, for collection
// fields such as key phrases, locations and image tags.
func (d Document) Strs(key string) []string {
	return toStrings(d[key])
}

// Time parses the named field as an RFC 3339 timestamp. Absent or
// malformed values yield the zero time.
func (d Document) Time(key string) time.Time {
	t, _ := time.Parse(time.RFC3339, d.Str(key))
	return t
}

// Score returns the relevance score the service assigned to the record.
func (d Document) Score() float64 {
	return d.Float("@search.score")
}

// Highlights returns the highlight fragments the service produced for
// one field, or nil when the field was not highlighted.
func (d Document) Highlights(field string) []string {
	hl, ok := d["@search.highlights"].(map[string]any)
	if !ok {
		return nil
	}
	return toStrings(hl[field])
}

func toStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Facet is one bucket of a facet result, e.g. one author and the number
// of matching documents attributed to them.
type Facet struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}
