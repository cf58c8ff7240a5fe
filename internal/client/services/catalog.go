package services

import (
	"context"
	"fmt"

	"github.com/jpalacios/herbascan/internal/client/api"
	"github.com/jpalacios/herbascan/internal/client/models"
	"github.com/jpalacios/herbascan/internal/logging"
)

// CatalogService exposes the read side of the catalog: public collection
// statistics and the expansion of a scanned label into a full specimen
// record.
type CatalogService struct {
	client api.Client
	log    logging.Logger
}

func NewCatalogService(client api.Client, log logging.Logger) *CatalogService {
	return &CatalogService{client: client, log: log.With("component", "catalog")}
}

// Stats fetches the aggregate collection statistics shown on the home screen.
func (s *CatalogService) Stats(ctx context.Context) (*models.CollectionStats, error) {
	stats, err := s.client.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("collection stats: %w", err)
	}
	return stats, nil
}

// Resolve expands the URL carried by a scanned label into a full specimen
// record. One GET, no retries; re-scanning is the caller's recovery path.
// Failures come back as api.ErrUnavailable (transport) or api.ErrInvalidShape
// (a response that transported fine but is not a usable record).
func (s *CatalogService) Resolve(ctx context.Context, url string) (*models.SpecimenRecord, error) {
	rec, err := s.client.FetchSpecimen(ctx, url)
	if err != nil {
		s.log.Warn(ctx, "specimen resolution failed", "err", err)
		return nil, fmt.Errorf("resolve specimen: %w", err)
	}
	return rec, nil
}
