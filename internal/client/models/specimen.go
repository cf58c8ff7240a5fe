package models

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// ErrNotAnObject is returned by DecodeSpecimen when the document is not a
// JSON object at all. Anything less broken degrades field by field instead.
var ErrNotAnObject = errors.New("specimen document is not an object")

// Taxonomy is the taxonomic block of a specimen record. Every field is
// optional; an empty string means the catalog has no information.
type Taxonomy struct {
	Kingdom                  string
	Phylum                   string
	Class                    string
	Order                    string
	Family                   string
	Genus                    string
	SpecificEpithet          string
	ScientificName           string
	ScientificNameAuthorship string
	VernacularName           string
}

// Image is one photograph of the specimen. URL is relative to the catalog
// origin.
type Image struct {
	URL string
}

// SpecimenRecord is the full detail document fetched from a scanned label's
// URL. All fields are optional; the renderer shows a placeholder for every
// absent value rather than dropping the row.
type SpecimenRecord struct {
	Taxonomy Taxonomy

	CatalogNumber   string
	OccurrenceID    string
	InstitutionCode string
	RightsHolder    string

	EventDate    string
	RecordedBy   string
	IdentifiedBy string

	Country       string
	StateProvince string
	Locality      string

	// Coordinates are kept in the string form the server sent and only
	// parsed at the point of use, see Coordinates.
	DecimalLatitude  string
	DecimalLongitude string

	// ScientificName at the top level of the document; the taxonomy block
	// usually carries the authoritative one.
	ScientificName string

	Images []Image
}

// Title returns the name to display for the record, preferring the taxonomy
// block over the top-level field. Empty when neither is present.
func (r *SpecimenRecord) Title() string {
	if r.Taxonomy.ScientificName != "" {
		return r.Taxonomy.ScientificName
	}
	return r.ScientificName
}

// Coordinates parses the decimal coordinate pair. ok is false unless both
// latitude and longitude are present and numeric; a record with only one of
// the two must not render a coordinate row or a map.
func (r *SpecimenRecord) Coordinates() (lat, lon float64, ok bool) {
	if r.DecimalLatitude == "" || r.DecimalLongitude == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(r.DecimalLatitude, 64)
	lon, errLon := strconv.ParseFloat(r.DecimalLongitude, 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// EventTime parses the collecting-event date. ok is false when the field is
// absent or not in a recognized form; the raw string stays available in
// EventDate.
func (r *SpecimenRecord) EventTime() (time.Time, bool) {
	if r.EventDate == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, r.EventDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DecodeSpecimen builds a SpecimenRecord from a raw JSON document.
//
// Decoding is tolerant field by field: a present-but-wrong-typed value is
// treated as absent for that field only, never as a whole-record failure.
// Partial specimen data is still useful to the reader, unlike a malformed
// QR payload which is actionable by re-scanning. Only a document that is not
// a JSON object fails with ErrNotAnObject.
func DecodeSpecimen(raw json.RawMessage) (*SpecimenRecord, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrNotAnObject
	}

	r := &SpecimenRecord{
		CatalogNumber:    optString(doc, "catalogNumber"),
		OccurrenceID:     optString(doc, "occurrenceID"),
		InstitutionCode:  optString(doc, "institutionCode"),
		RightsHolder:     optString(doc, "rightsHolder"),
		EventDate:        optString(doc, "eventDate"),
		RecordedBy:       optString(doc, "recordedBy"),
		IdentifiedBy:     optString(doc, "identifiedBy"),
		Country:          optString(doc, "country"),
		StateProvince:    optString(doc, "stateProvince"),
		Locality:         optString(doc, "locality"),
		DecimalLatitude:  optNumericString(doc, "decimalLatitude"),
		DecimalLongitude: optNumericString(doc, "decimalLongitude"),
		ScientificName:   optString(doc, "scientificName"),
	}

	if rawTax, ok := doc["taxonomy"]; ok {
		var tax map[string]json.RawMessage
		if err := json.Unmarshal(rawTax, &tax); err == nil {
			r.Taxonomy = Taxonomy{
				Kingdom:                  optString(tax, "kingdom"),
				Phylum:                   optString(tax, "phylum"),
				Class:                    optString(tax, "class"),
				Order:                    optString(tax, "order"),
				Family:                   optString(tax, "family"),
				Genus:                    optString(tax, "genus"),
				SpecificEpithet:          optString(tax, "specificEpithet"),
				ScientificName:           optString(tax, "scientificName"),
				ScientificNameAuthorship: optString(tax, "scientificNameAuthorship"),
				VernacularName:           optString(tax, "vernacularName"),
			}
		}
	}

	if rawImages, ok := doc["images"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(rawImages, &items); err == nil {
			for _, item := range items {
				var img map[string]json.RawMessage
				if err := json.Unmarshal(item, &img); err != nil {
					continue
				}
				if url := optString(img, "url"); url != "" {
					r.Images = append(r.Images, Image{URL: url})
				}
			}
		}
	}

	return r, nil
}

// optString extracts a string field from a decoded object, returning "" when
// the key is missing or the value is not a string.
func optString(doc map[string]json.RawMessage, key string) string {
	raw, ok := doc[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// optNumericString extracts a field that servers send either as a numeric
// string or as a bare number, normalizing to string form. Returns "" for any
// other type.
func optNumericString(doc map[string]json.RawMessage, key string) string {
	raw, ok := doc[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
