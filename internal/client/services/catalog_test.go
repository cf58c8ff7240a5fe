package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jpalacios/herbascan/internal/client/api"
	"github.com/jpalacios/herbascan/internal/client/models"
)

func TestResolve_Success(t *testing.T) {
	fc := &fakeClient{FetchRet: &models.SpecimenRecord{CatalogNumber: "QCA-001"}}
	svc := NewCatalogService(fc, testLogger())

	rec, err := svc.Resolve(context.Background(), "https://catalog/public/specimen/1")
	require.NoError(t, err)
	require.Equal(t, "QCA-001", rec.CatalogNumber)
	require.Equal(t, "https://catalog/public/specimen/1", fc.LastFetchURL)
	require.EqualValues(t, 1, fc.FetchCalls.Load())
}

func TestResolve_NoRetryOnFailure(t *testing.T) {
	fc := &fakeClient{FetchErr: api.ErrUnavailable}
	svc := NewCatalogService(fc, testLogger())

	_, err := svc.Resolve(context.Background(), "https://catalog/public/specimen/1")
	require.ErrorIs(t, err, api.ErrUnavailable)
	require.EqualValues(t, 1, fc.FetchCalls.Load())
}

func TestResolve_ShapeErrorPassesThrough(t *testing.T) {
	fc := &fakeClient{FetchErr: api.ErrInvalidShape}
	svc := NewCatalogService(fc, testLogger())

	_, err := svc.Resolve(context.Background(), "https://catalog/public/specimen/1")
	require.ErrorIs(t, err, api.ErrInvalidShape)
}

func TestStats(t *testing.T) {
	fc := &fakeClient{StatsRet: &models.CollectionStats{
		Collection: "Herbario QCA",
		Statistics: models.StatsTotals{TotalSpecimens: 48210, TotalFamilies: 312, TotalGenera: 2105},
	}}
	svc := NewCatalogService(fc, testLogger())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Herbario QCA", stats.Collection)

	fc.StatsErr = api.ErrUnavailable
	fc.StatsRet = nil
	_, err = svc.Stats(context.Background())
	require.ErrorIs(t, err, api.ErrUnavailable)
}

// Two accepted-and-resolved cycles require an explicit reset in between:
// the controller gates resolution attempts, so a burst of deliveries funnels
// into exactly one fetch.
func TestSingleFlight_OneResolutionPerCycle(t *testing.T) {
	fc := &fakeClient{FetchRet: &models.SpecimenRecord{}}
	svc := NewCatalogService(fc, testLogger())
	ctrl := NewScanController()
	ctx := context.Background()

	scan, ok := ctrl.Submit(validLabel)
	require.True(t, ok)

	// deliveries racing the in-flight resolution are dropped
	_, ok = ctrl.Submit(`{"url":"https://catalog/public/specimen/2"}`)
	require.False(t, ok)

	_, err := svc.Resolve(ctx, scan.Payload.URL)
	require.NoError(t, err)
	require.EqualValues(t, 1, fc.FetchCalls.Load())

	// still gated after the fetch settled: the modal is open until reset
	_, ok = ctrl.Submit(`{"url":"https://catalog/public/specimen/2"}`)
	require.False(t, ok)

	ctrl.Reset()
	next, ok := ctrl.Submit(`{"url":"https://catalog/public/specimen/2"}`)
	require.True(t, ok)

	_, err = svc.Resolve(ctx, next.Payload.URL)
	require.NoError(t, err)
	require.EqualValues(t, 2, fc.FetchCalls.Load())
}
