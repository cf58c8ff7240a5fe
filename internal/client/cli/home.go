package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jpalacios/herbascan/internal/client/api"
)

// Stats shows the public collection statistics. A fetch failure renders an
// error line and leaves the shell usable.
func (a *App) Stats(ctx context.Context) error {
	stats, err := a.catalog.Stats(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnavailable) {
			fmt.Fprintln(a.out, "Could not reach the catalog service. Check your connection and try again.")
		} else {
			fmt.Fprintln(a.out, "Could not load statistics:", err)
		}
		return err
	}

	collection := stats.Collection
	if collection == "" {
		collection = placeholder
	}
	fmt.Fprintf(a.out, "Collection: %s\n", collection)
	fmt.Fprintf(a.out, "  Specimens: %d\n", stats.Statistics.TotalSpecimens)
	fmt.Fprintf(a.out, "  Families:  %d\n", stats.Statistics.TotalFamilies)
	fmt.Fprintf(a.out, "  Genera:    %d\n", stats.Statistics.TotalGenera)
	return nil
}
