package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jpalacios/herbascan/internal/client/api"
	"github.com/jpalacios/herbascan/internal/client/models"
)

// placeholder is printed for every field the catalog has no information on.
// Rows are never dropped; the reader should see what is missing.
const placeholder = "no information"

func printRow(w io.Writer, label, value string) {
	if value == "" {
		value = placeholder
	}
	fmt.Fprintf(w, "  %-18s %s\n", label+":", value)
}

// absoluteURL resolves a catalog-relative path against the configured origin.
func (a *App) absoluteURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(a.config.BaseURL, "/") + path
}

// Detail resolves the live scan's URL into the full specimen record and
// renders it. The two failure kinds keep distinct messages so the user can
// tell a bad label from a connectivity problem.
func (a *App) Detail(ctx context.Context) error {
	scan := a.scans.Current()
	if scan == nil {
		fmt.Fprintln(a.out, "No scan is open. Type 'scan' first.")
		return nil
	}
	if scan.Payload == nil {
		fmt.Fprintln(a.out, "The open scan is not a valid code. Type 'reset' and scan again.")
		return nil
	}
	if !scan.Payload.HasURL() {
		fmt.Fprintln(a.out, "This label does not link to a full record.")
		return nil
	}

	rec, err := a.catalog.Resolve(ctx, scan.Payload.URL)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrInvalidShape):
			fmt.Fprintln(a.out, "The catalog record behind this label is missing or malformed.")
		case errors.Is(err, api.ErrUnavailable):
			fmt.Fprintln(a.out, "Could not reach the catalog service. Check your connection and type 'detail' to retry.")
		default:
			fmt.Fprintln(a.out, "Could not load the record:", err)
		}
		return err
	}

	a.renderSpecimen(a.out, rec)
	return nil
}

func (a *App) renderSpecimen(w io.Writer, rec *models.SpecimenRecord) {
	title := rec.Title()
	if title == "" {
		title = placeholder
	}
	fmt.Fprintln(w, title)
	if rec.Taxonomy.ScientificNameAuthorship != "" {
		fmt.Fprintln(w, " ", rec.Taxonomy.ScientificNameAuthorship)
	}

	fmt.Fprintln(w, "Taxonomy")
	printRow(w, "Kingdom", rec.Taxonomy.Kingdom)
	printRow(w, "Phylum", rec.Taxonomy.Phylum)
	printRow(w, "Class", rec.Taxonomy.Class)
	printRow(w, "Order", rec.Taxonomy.Order)
	printRow(w, "Family", rec.Taxonomy.Family)
	printRow(w, "Genus", rec.Taxonomy.Genus)
	printRow(w, "Specific epithet", rec.Taxonomy.SpecificEpithet)
	printRow(w, "Common name", rec.Taxonomy.VernacularName)

	fmt.Fprintln(w, "Specimen")
	printRow(w, "Catalog number", rec.CatalogNumber)
	printRow(w, "Occurrence ID", rec.OccurrenceID)
	printRow(w, "Institution", rec.InstitutionCode)
	printRow(w, "Rights holder", rec.RightsHolder)

	fmt.Fprintln(w, "Collecting event")
	if when, ok := rec.EventTime(); ok {
		printRow(w, "Date", when.Format("2 January 2006"))
	} else {
		printRow(w, "Date", rec.EventDate)
	}
	printRow(w, "Recorded by", rec.RecordedBy)
	printRow(w, "Identified by", rec.IdentifiedBy)

	fmt.Fprintln(w, "Locality")
	printRow(w, "Country", rec.Country)
	printRow(w, "Province", rec.StateProvince)
	printRow(w, "Locality", rec.Locality)
	// the coordinate row and the map hint render together or not at all
	if lat, lon, ok := rec.Coordinates(); ok {
		printRow(w, "Coordinates", fmt.Sprintf("%s, %s", rec.DecimalLatitude, rec.DecimalLongitude))
		printRow(w, "Map", fmt.Sprintf("https://www.openstreetmap.org/?mlat=%v&mlon=%v", lat, lon))
	}

	if len(rec.Images) > 0 {
		fmt.Fprintln(w, "Images")
		for _, img := range rec.Images {
			fmt.Fprintln(w, "  -", a.absoluteURL(img.URL))
		}
	}
}
