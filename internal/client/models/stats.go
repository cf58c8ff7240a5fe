package models

// StatsTotals holds the aggregate counters shown on the home screen.
type StatsTotals struct {
	TotalSpecimens int64 `json:"totalSpecimens"`
	TotalFamilies  int64 `json:"totalFamilies"`
	TotalGenera    int64 `json:"totalGenera"`
}

// CollectionStats is the public statistics document of the catalog.
type CollectionStats struct {
	Collection string      `json:"collection"`
	Statistics StatsTotals `json:"statistics"`
}
