// Package qr decodes the text content of scanned specimen labels.
//
// A label carries a small JSON object with a summary of the specimen and,
// usually, a URL pointing at the full catalog record. Parsing is strict and
// all-or-nothing: a malformed label is actionable by re-scanning, so there is
// no value in salvaging half of one.
package qr

import "encoding/json"

// Payload is the decoded content of a scanned code. Every field is optional;
// an empty string means the label does not carry that field. A label that
// fails to parse at all is represented by the absence of a Payload (nil), not
// by a Payload with empty fields.
type Payload struct {
	URL            string `json:"url,omitempty"`
	CatalogNumber  string `json:"catalogNumber,omitempty"`
	ScientificName string `json:"scientificName,omitempty"`
	Family         string `json:"family,omitempty"`
	Locality       string `json:"locality,omitempty"`
	RecordedBy     string `json:"recordedBy,omitempty"`
	Image          string `json:"image,omitempty"`
}

// HasURL reports whether the label links to a full catalog record. Labels
// without a URL are valid and render without a "view full details" action.
func (p *Payload) HasURL() bool {
	return p.URL != ""
}

// payloadFields maps JSON keys to their destination, in render order.
func payloadFields(p *Payload) []struct {
	key string
	dst *string
} {
	return []struct {
		key string
		dst *string
	}{
		{"url", &p.URL},
		{"catalogNumber", &p.CatalogNumber},
		{"scientificName", &p.ScientificName},
		{"family", &p.Family},
		{"locality", &p.Locality},
		{"recordedBy", &p.RecordedBy},
		{"image", &p.Image},
	}
}

// Parse attempts to decode raw scanned text into a Payload.
//
// Parse is total and pure: for any input it returns either a well-formed
// payload or (nil, false); it never panics and touches no I/O. A value of the
// wrong type in any known field fails the whole parse — no coercion. Unknown
// keys are ignored. A payload with every field absent is still present: the
// renderer distinguishes "empty label" from "unreadable label".
func Parse(raw string) (*Payload, bool) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false
	}
	if doc == nil {
		// the literal "null" decodes without error but carries nothing
		return nil, false
	}

	p := &Payload{}
	for _, f := range payloadFields(p) {
		rawVal, ok := doc[f.key]
		if !ok || string(rawVal) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(rawVal, &s); err != nil {
			return nil, false
		}
		*f.dst = s
	}
	return p, true
}
