package cli

import (
	"context"
	"fmt"
)

// Scan reads one line of scanned label text and submits it to the
// single-flight controller. While a scan is live, further submissions are
// ignored until 'reset' — the terminal equivalent of the camera staying
// muted while the result modal is open.
func (a *App) Scan(ctx context.Context) error {
	if a.scans.Busy() {
		fmt.Fprintln(a.out, "A scan is already open. Type 'reset' to scan another label.")
		return nil
	}

	raw, err := getSimpleText(a.reader, "Paste the label text", a.out)
	if err != nil {
		return err
	}

	scan, ok := a.scans.Submit(raw)
	if !ok {
		fmt.Fprintln(a.out, "A scan is already open. Type 'reset' to scan another label.")
		return nil
	}

	if scan.Payload == nil {
		fmt.Fprintln(a.out, "Invalid code: the scanned text does not contain valid specimen information.")
		fmt.Fprintln(a.out, "Type 'reset' and scan the label again.")
		return nil
	}

	fmt.Fprintln(a.out, "Scan result:")
	printRow(a.out, "Catalog number", scan.Payload.CatalogNumber)
	printRow(a.out, "Scientific name", scan.Payload.ScientificName)
	printRow(a.out, "Family", scan.Payload.Family)
	printRow(a.out, "Locality", scan.Payload.Locality)
	printRow(a.out, "Recorded by", scan.Payload.RecordedBy)
	if scan.Payload.Image != "" {
		printRow(a.out, "Image", a.absoluteURL(scan.Payload.Image))
	}

	if scan.Payload.HasURL() {
		fmt.Fprintln(a.out, "Type 'detail' for the full record, or 'reset' to scan another label.")
	} else {
		fmt.Fprintln(a.out, "This label does not link to a full record. Type 'reset' to scan another label.")
	}
	return nil
}

// ResetScan closes the current scan cycle and re-arms the scanner.
func (a *App) ResetScan() {
	a.scans.Reset()
	fmt.Fprintln(a.out, "Ready to scan.")
}
